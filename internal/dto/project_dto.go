package dto

import (
	"time"

	"github.com/google/uuid"

	"policygen/pkg/wizard"
)

type GetAllProjectRequest struct {
	Status string `query:"status" validate:"omitempty,oneof=draft paid"`
	Limit  int    `query:"limit" validate:"omitempty,min=1,max=100"`
	Offset int    `query:"offset" validate:"omitempty,min=0"`
}

type GetAllProjectResponse struct {
	Id        uuid.UUID  `json:"id"`
	Name      string     `json:"name"`
	Status    string     `json:"status"`
	Documents []string   `json:"documents"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at"`
}

type ShowProjectResponse struct {
	Id        uuid.UUID      `json:"id"`
	Name      string         `json:"name"`
	Status    string         `json:"status"`
	Answers   wizard.Answers `json:"answers"`
	Tabs      []wizard.Tab   `json:"tabs"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt *time.Time     `json:"updated_at"`
}
