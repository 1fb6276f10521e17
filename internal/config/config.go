package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"policygen/internal/constant"
)

type Config struct {
	App        AppConfig
	Database   DatabaseConfig
	Keys       APIKeys
	Ai         AIConfig
	Auth       AuthConfig
	Generation GenerationConfig
	Tracing    TracingConfig
}

type AppConfig struct {
	Port               string
	ClientURL          string
	Environment        string
	LogFilePath        string
	AuditLogFilePath   string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
}

type DatabaseConfig struct {
	Connection string
}

type APIKeys struct {
	GoogleGemini string
	HuggingFace  string
	GitHubToken  string // Gist export
}

type AIConfig struct {
	LLMProvider   string // "gemini", "ollama" or "huggingface"
	LLMModel      string
	OllamaBaseURL string
	LLMBaseURL    string
}

type AuthConfig struct {
	JWTSecret          string
	TokenTTL           time.Duration
	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string
}

type GenerationConfig struct {
	Timeout     time.Duration
	SessionTTL  time.Duration
	EventTopic  string
	MaxTokens   int     // 0 keeps the provider default
	Temperature float64 // 0 keeps the provider default
}

type TracingConfig struct {
	Enabled     bool
	Endpoint    string
	ServiceName string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			ClientURL:          getEnv("CLIENT_URL", "http://localhost:5173"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			AuditLogFilePath:   getEnv("AUDIT_LOG_FILE_PATH", "logs/generation.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", ""),
			RedisURL:           getEnv("REDIS_URL", ""),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Keys: APIKeys{
			GoogleGemini: getEnv("GEMINI_API_KEY", getEnv("GOOGLE_GEMINI_API_KEY", "")),
			HuggingFace:  getEnv("HUGGINGFACE_API_KEY", ""),
			GitHubToken:  getEnv("GITHUB_TOKEN", ""),
		},
		Ai: AIConfig{
			LLMProvider:   getEnv("LLM_PROVIDER", "gemini"),
			LLMModel:      getEnv("LLM_MODEL", "gemini-2.5-flash"),
			OllamaBaseURL: getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			LLMBaseURL:    getEnv("LLM_BASE_URL", ""),
		},
		Auth: AuthConfig{
			JWTSecret:          getEnv("JWT_SECRET", ""),
			TokenTTL:           getEnvAsDuration("JWT_TTL", 72*time.Hour),
			GoogleClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
			GoogleClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
			GoogleRedirectURL:  getEnv("GOOGLE_REDIRECT_URL", "http://localhost:3000/api/auth/v1/google/callback"),
		},
		Generation: GenerationConfig{
			Timeout:     getEnvAsDuration("GENERATION_TIMEOUT", 90*time.Second),
			SessionTTL:  getEnvAsDuration("WIZARD_SESSION_TTL", constant.SessionTTLMinutes*time.Minute),
			EventTopic:  getEnv("GENERATION_EVENT_TOPIC", "GENERATION_EVENTS"),
			MaxTokens:   getEnvAsInt("GENERATION_MAX_TOKENS", 0),
			Temperature: getEnvAsFloat("GENERATION_TEMPERATURE", 0),
		},
		Tracing: TracingConfig{
			Enabled:     getEnv("OTEL_ENABLED", "false") == "true",
			Endpoint:    getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318"),
			ServiceName: getEnv("OTEL_SERVICE_NAME", "policygen"),
		},
	}
}

// BaseURLFor picks the provider endpoint override.
func (c AIConfig) BaseURLFor() string {
	if c.LLMProvider == "ollama" {
		return c.OllamaBaseURL
	}
	return c.LLMBaseURL
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsFloat(key string, fallback float64) float64 {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseFloat(strValue, 64); err == nil {
		return value
	}
	return fallback
}

// getEnvAsDuration accepts Go durations ("90s") or plain seconds ("90").
func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if strValue == "" {
		return fallback
	}
	if d, err := time.ParseDuration(strValue); err == nil && d > 0 {
		return d
	}
	if secs := getEnvAsInt(key, 0); secs > 0 {
		return time.Duration(secs) * time.Second
	}
	return fallback
}
