package dto

import (
	"policygen/pkg/wizard"
)

type StartSessionRequest struct {
	ProjectId string `json:"project_id" validate:"omitempty,uuid"`
}

// SessionResponse is the state of one wizard session.
type SessionResponse struct {
	wizard.View
	Active *wizard.Tab `json:"active,omitempty"`
	Notice string      `json:"notice,omitempty"`
}

type SaveProjectResponse struct {
	ProjectId string `json:"project_id"`
	Created   bool   `json:"created"`
}

type DocumentsResponse struct {
	Tabs   []wizard.Tab `json:"tabs"`
	Active *wizard.Tab  `json:"active,omitempty"`
}

type GistResponse struct {
	Kind    wizard.DocumentKind `json:"kind"`
	HtmlURL string              `json:"html_url"`
}
