package dto

import (
	"github.com/google/uuid"
)

type LoginURLResponse struct {
	URL   string `json:"url"`
	State string `json:"state"`
}

type OAuthCallbackRequest struct {
	Code  string `query:"code" validate:"required"`
	State string `query:"state"`
}

type UserResponse struct {
	Id        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	AvatarURL *string   `json:"avatar_url,omitempty"`
}

type LoginResponse struct {
	AccessToken string       `json:"access_token"`
	User        UserResponse `json:"user"`
}
