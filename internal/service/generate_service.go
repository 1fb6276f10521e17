package service

import (
	"context"
	"time"

	"policygen/internal/dto"
	"policygen/pkg/events"
	"policygen/pkg/generation"
	"policygen/pkg/wizard"
)

// IGenerateService is the stateless generation endpoint: answers in,
// documents out, nothing kept.
type IGenerateService interface {
	Generate(ctx context.Context, userID string, answers wizard.Answers) (*dto.GenerateResponse, error)
}

type generateService struct {
	generator        DocumentGenerator
	publisherService IPublisherService
}

func NewGenerateService(generator DocumentGenerator, publisherService IPublisherService) IGenerateService {
	return &generateService{
		generator:        generator,
		publisherService: publisherService,
	}
}

func (s *generateService) Generate(ctx context.Context, userID string, answers wizard.Answers) (*dto.GenerateResponse, error) {
	start := time.Now()
	result, err := s.generator.Generate(ctx, answers)

	event := events.GenerationEvent{
		Type:       events.TypeGenerationCompleted,
		UserID:     userID,
		Kinds:      kindNames(generation.ResolveKinds(answers.DocumentTypes)),
		DurationMs: time.Since(start).Milliseconds(),
		OccurredAt: time.Now(),
	}
	if err != nil {
		event.Type = events.TypeGenerationFailed
		event.Error = err.Error()
	}
	if s.publisherService != nil {
		_ = s.publisherService.Publish(ctx, event)
	}
	if err != nil {
		return nil, err
	}

	return &dto.GenerateResponse{Documents: result.Documents}, nil
}
