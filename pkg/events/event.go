package events

import (
	"context"
	"time"
)

const (
	TypeGenerationCompleted = "GENERATION_COMPLETED"
	TypeGenerationFailed    = "GENERATION_FAILED"
	TypeGenerationDiscarded = "GENERATION_DISCARDED"
	TypeProjectSaved        = "PROJECT_SAVED"
)

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "PROJECT_SAVED").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

// Publisher sends events to the outside world.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// NopPublisher drops every event. It stands in when NATS is not configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }

// GenerationEvent is the outcome of one generator call.
type GenerationEvent struct {
	Type       string    `json:"type"`
	SessionID  string    `json:"session_id"`
	ProjectID  string    `json:"project_id,omitempty"`
	UserID     string    `json:"user_id,omitempty"`
	Kinds      []string  `json:"kinds"`
	Error      string    `json:"error,omitempty"`
	DurationMs int64     `json:"duration_ms"`
	OccurredAt time.Time `json:"occurred_at"`
}

func (e GenerationEvent) EventType() string {
	return e.Type
}

func (e GenerationEvent) Payload() map[string]interface{} {
	data := map[string]interface{}{
		"session_id":  e.SessionID,
		"kinds":       e.Kinds,
		"duration_ms": e.DurationMs,
	}
	if e.ProjectID != "" {
		data["project_id"] = e.ProjectID
	}
	if e.UserID != "" {
		data["user_id"] = e.UserID
	}
	if e.Error != "" {
		data["error"] = e.Error
	}
	return data
}

func (e GenerationEvent) Timestamp() time.Time {
	return e.OccurredAt
}

// NewProjectSaved announces a created or updated project.
func NewProjectSaved(projectID, userID string, created bool) BaseEvent {
	return BaseEvent{
		Type: TypeProjectSaved,
		Data: map[string]interface{}{
			"project_id": projectID,
			"user_id":    userID,
			"created":    created,
		},
		OccurredAt: time.Now(),
	}
}
