// FILE: internal/service/consumer_service.go
package service

import (
	"context"
	"encoding/json"
	"time"

	"policygen/internal/entity"
	"policygen/internal/pkg/logger"
	"policygen/internal/repository/unitofwork"
	"policygen/pkg/events"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// consumerService drains generation events: one log row each, a line in
// the audit log and a copy on the outward event bus.
type consumerService struct {
	subscriber     message.Subscriber
	topicName      string
	uowFactory     unitofwork.RepositoryFactory
	eventPublisher events.Publisher
	auditLogger    logger.ILogger
}

func NewConsumerService(
	subscriber message.Subscriber,
	topicName string,
	uowFactory unitofwork.RepositoryFactory,
	eventPublisher events.Publisher,
	auditLogger logger.ILogger,
) IConsumerService {
	if eventPublisher == nil {
		eventPublisher = events.NopPublisher{}
	}
	return &consumerService{
		subscriber:     subscriber,
		topicName:      topicName,
		uowFactory:     uowFactory,
		eventPublisher: eventPublisher,
		auditLogger:    auditLogger,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.subscriber.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var event events.GenerationEvent
	if err := json.Unmarshal(msg.Payload, &event); err != nil {
		cs.auditLogger.Error("CONSUMER", "Failed to unmarshal generation event", map[string]interface{}{
			"message_id": msg.UUID,
			"error":      err.Error(),
		})
		// Ack invalid messages to prevent infinite retry
		msg.Ack()
		return
	}

	cs.auditLogger.Info("GENERATION", event.Type, map[string]interface{}{
		"session_id":  event.SessionID,
		"project_id":  event.ProjectID,
		"user_id":     event.UserID,
		"kinds":       event.Kinds,
		"duration_ms": event.DurationMs,
		"error":       event.Error,
	})

	record := toGenerationLog(event)
	uow := cs.uowFactory.NewUnitOfWork(ctx)
	if err := uow.GenerationLogRepository().Create(ctx, record); err != nil {
		cs.auditLogger.Error("CONSUMER", "Failed to store generation log", map[string]interface{}{
			"session_id": event.SessionID,
			"error":      err.Error(),
		})
		msg.Nack()
		return
	}

	if err := cs.eventPublisher.Publish(ctx, event); err != nil {
		cs.auditLogger.Warn("CONSUMER", "Failed to forward generation event", map[string]interface{}{
			"session_id": event.SessionID,
			"error":      err.Error(),
		})
	}

	msg.Ack()
}

func toGenerationLog(event events.GenerationEvent) *entity.GenerationLog {
	outcome := entity.GenerationSucceeded
	switch event.Type {
	case events.TypeGenerationFailed:
		outcome = entity.GenerationFailed
	case events.TypeGenerationDiscarded:
		outcome = entity.GenerationDiscarded
	}

	createdAt := event.OccurredAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	return &entity.GenerationLog{
		Id:        uuid.New(),
		SessionId: event.SessionID,
		ProjectId: parseOptionalUUID(event.ProjectID),
		UserId:    parseOptionalUUID(event.UserID),
		Kinds:     event.Kinds,
		Outcome:   outcome,
		Error:     event.Error,
		Duration:  time.Duration(event.DurationMs) * time.Millisecond,
		CreatedAt: createdAt,
	}
}

func parseOptionalUUID(s string) *uuid.UUID {
	if s == "" {
		return nil
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return nil
	}
	return &id
}
