package entity

import (
	"time"

	"github.com/google/uuid"

	"policygen/pkg/wizard"
)

type ProjectStatus string

const (
	ProjectStatusDraft ProjectStatus = "draft"
	ProjectStatusPaid  ProjectStatus = "paid"
)

// DefaultProjectName is used when a project is saved without a name.
const DefaultProjectName = "Projeto Sem Nome"

type Project struct {
	Id        uuid.UUID
	UserId    uuid.UUID
	Name      string
	Status    ProjectStatus
	Answers   wizard.Answers
	Documents wizard.DocumentSet
	CreatedAt time.Time
	UpdatedAt *time.Time
	DeletedAt *time.Time
	IsDeleted bool
}
