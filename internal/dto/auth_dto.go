package dto

import (
	"github.com/google/uuid"

	"github.com/crisisconnect/moderation/internal/models"
)

type RegisterModeratorRequest struct {
	Email           string               `json:"email"`
	Password        string               `json:"password"`
	DisplayName     string               `json:"display_name,omitempty"`
	Role            models.ModeratorRole `json:"role,omitempty"`
	Specializations []models.ContentType `json:"specializations,omitempty"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type LogoutRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type AuthResponse struct {
	AccessToken  string            `json:"access_token"`
	RefreshToken string            `json:"refresh_token"`
	Moderator    ModeratorResponse `json:"moderator"`
}

type ModeratorResponse struct {
	ID          uuid.UUID            `json:"id"`
	Email       string               `json:"email"`
	DisplayName string               `json:"display_name,omitempty"`
	Role        models.ModeratorRole `json:"role"`
}

type ErrorResponse struct {
	Error   bool   `json:"error"`
	Message string `json:"message"`
}

type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	DB        string `json:"db"`
	Filters   int    `json:"filters"`
	Rules     int    `json:"rules"`
}
