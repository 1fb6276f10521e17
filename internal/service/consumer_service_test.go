package service

import (
	"context"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"policygen/internal/entity"
	"policygen/internal/pkg/logger"
	"policygen/internal/repository/specification"
	"policygen/internal/repository/unitofwork"
	"policygen/pkg/events"
)

func TestConsumerStoresAndForwardsGenerationEvents(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	defer pubSub.Close()

	uow := unitofwork.NewRepositoryFactory(newTestDB(t))
	bus := &recordingBus{}
	consumer := NewConsumerService(pubSub, "generation-test", uow, bus, logger.NewNopLogger())
	require.NoError(t, consumer.Consume(ctx))

	publisher := NewPublisherService("generation-test", pubSub)
	user := uuid.New()
	require.NoError(t, publisher.Publish(ctx, events.GenerationEvent{
		Type:       events.TypeGenerationFailed,
		SessionID:  "s-1",
		UserID:     user.String(),
		Kinds:      []string{"privacy_policy", "terms_of_use"},
		Error:      "generation timed out",
		DurationMs: 1500,
		OccurredAt: time.Now(),
	}))

	var logs []*entity.GenerationLog
	require.Eventually(t, func() bool {
		var err error
		logs, err = uow.NewUnitOfWork(ctx).GenerationLogRepository().FindAll(ctx, specification.BySessionID{SessionID: "s-1"})
		return err == nil && len(logs) == 1
	}, 2*time.Second, 20*time.Millisecond)

	assert.Equal(t, entity.GenerationFailed, logs[0].Outcome)
	assert.Equal(t, []string{"privacy_policy", "terms_of_use"}, logs[0].Kinds)
	assert.Equal(t, 1500*time.Millisecond, logs[0].Duration)
	require.NotNil(t, logs[0].UserId)
	assert.Equal(t, user, *logs[0].UserId)
	assert.Nil(t, logs[0].ProjectId)

	require.Eventually(t, func() bool {
		bus.mu.Lock()
		defer bus.mu.Unlock()
		return len(bus.events) == 1
	}, time.Second, 10*time.Millisecond)
}

func TestToGenerationLogOutcome(t *testing.T) {
	cases := map[string]entity.GenerationOutcome{
		events.TypeGenerationCompleted: entity.GenerationSucceeded,
		events.TypeGenerationFailed:    entity.GenerationFailed,
		events.TypeGenerationDiscarded: entity.GenerationDiscarded,
	}
	for eventType, want := range cases {
		got := toGenerationLog(events.GenerationEvent{Type: eventType, ProjectID: "not-a-uuid"})
		assert.Equal(t, want, got.Outcome, eventType)
		assert.Nil(t, got.ProjectId)
		assert.False(t, got.CreatedAt.IsZero())
	}
}
