package bootstrap

import (
	"context"
	"log"
	"time"

	"policygen/internal/config"
	"policygen/internal/controller"
	"policygen/internal/pkg/logger"
	"policygen/internal/repository/memory"
	"policygen/internal/repository/unitofwork"
	"policygen/internal/service"
	"policygen/pkg/events"
	"policygen/pkg/generation"
	"policygen/pkg/gist"
	"policygen/pkg/llm"
	"policygen/pkg/llm/factory"
	"policygen/pkg/lock"

	pktNats "policygen/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	AuthController     controller.IAuthController
	WizardController   controller.IWizardController
	ProjectController  controller.IProjectController
	GenerateController controller.IGenerateController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService

	closers []func()
}

// Close releases the connections opened by NewContainer.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
}

func NewContainer(ctx context.Context, db *gorm.DB, cfg *config.Config) *Container {
	c := &Container{}

	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")
	auditLogger := logger.NewIsolatedLogger(cfg.App.AuditLogFilePath)
	c.closers = append(c.closers, func() {
		_ = sysLogger.Sync()
		_ = auditLogger.Sync()
	})

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{OutputChannelBuffer: 64},
		watermillLogger,
	)
	c.closers = append(c.closers, func() { _ = pubSub.Close() })

	// 3. Infrastructure
	// LLM
	llmProvider, err := factory.NewLLMProvider(ctx, factory.Config{
		Provider: cfg.Ai.LLMProvider,
		Model:    cfg.Ai.LLMModel,
		BaseURL:  cfg.Ai.BaseURLFor(),
		APIKey:   apiKeyFor(cfg),
	})
	if err != nil {
		// Generation answers 503 until the provider is fixed
		log.Printf("[WARN] Failed to initialize LLM Provider: %v", err)
		llmProvider = nil
	} else {
		log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)
	}

	// NATS
	var eventPublisher events.Publisher = events.NopPublisher{}
	if cfg.App.NatsURL != "" {
		natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
		if err != nil {
			log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
		} else {
			eventPublisher = natsPub
			c.closers = append(c.closers, natsPub.Close)
		}
	}

	// Redis
	var locker lock.Locker = lock.NewMemoryLocker()
	if cfg.App.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.App.RedisURL)
		if err != nil {
			log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
			opt = &redis.Options{
				Addr: cfg.App.RedisURL,
			}
		}
		rdb := redis.NewClient(opt)
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		if _, err := rdb.Ping(pingCtx).Result(); err != nil {
			log.Printf("[WARN] Failed to connect to Redis: %v", err)
		}
		cancel()
		locker = lock.NewRedisLocker(rdb)
		c.closers = append(c.closers, func() { _ = rdb.Close() })
	}

	// In-Memory Session Storage
	sessionRepo := memory.NewSessionRepository(cfg.Generation.SessionTTL)

	// 4. Services
	generator := generation.NewGenerator(llmProvider, generation.NewBuilder(nil), cfg.Generation.Timeout, modelOptions(cfg)...)
	gistClient := gist.NewClient(cfg.Keys.GitHubToken)

	publisherService := service.NewPublisherService(cfg.Generation.EventTopic, pubSub)
	consumerService := service.NewConsumerService(
		pubSub,
		cfg.Generation.EventTopic,
		uowFactory,
		eventPublisher,
		auditLogger,
	)

	wizardService := service.NewWizardService(
		sessionRepo,
		uowFactory,
		generator,
		locker,
		gistClient,
		publisherService,
		eventPublisher,
		sysLogger,
		cfg.Generation.Timeout,
	)
	generateService := service.NewGenerateService(generator, publisherService)
	projectService := service.NewProjectService(uowFactory)
	authService := service.NewAuthService(uowFactory, cfg.Auth, sysLogger)

	// 5. Controllers
	c.AuthController = controller.NewAuthController(authService, cfg.App.ClientURL)
	c.WizardController = controller.NewWizardController(wizardService)
	c.ProjectController = controller.NewProjectController(projectService)
	c.GenerateController = controller.NewGenerateController(generateService)
	c.ConsumerService = consumerService

	return c
}

func modelOptions(cfg *config.Config) []llm.Option {
	var opts []llm.Option
	if cfg.Generation.MaxTokens > 0 {
		opts = append(opts, llm.WithMaxTokens(cfg.Generation.MaxTokens))
	}
	if cfg.Generation.Temperature > 0 {
		opts = append(opts, llm.WithTemperature(cfg.Generation.Temperature))
	}
	return opts
}

func apiKeyFor(cfg *config.Config) string {
	switch cfg.Ai.LLMProvider {
	case "huggingface":
		return cfg.Keys.HuggingFace
	case "ollama":
		return ""
	}
	return cfg.Keys.GoogleGemini
}
