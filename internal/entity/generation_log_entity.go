package entity

import (
	"time"

	"github.com/google/uuid"
)

type GenerationOutcome string

const (
	GenerationSucceeded GenerationOutcome = "succeeded"
	GenerationFailed    GenerationOutcome = "failed"
	GenerationDiscarded GenerationOutcome = "discarded"
)

type GenerationLog struct {
	Id        uuid.UUID
	SessionId string
	ProjectId *uuid.UUID
	UserId    *uuid.UUID
	Kinds     []string
	Outcome   GenerationOutcome
	Error     string
	Duration  time.Duration
	CreatedAt time.Time
}
