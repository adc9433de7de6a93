package dto

import "consultlink_backend/internal/session"

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse - ответ бэкенда на /auth/login
type LoginResponse struct {
	AccessToken string              `json:"access_token"`
	User        session.UserSummary `json:"user"`
}

// SessionResponse - то, что оркестратор отдает клиенту после входа
type SessionResponse struct {
	User      session.UserSummary `json:"user"`
	ExpiresAt string              `json:"expires_at,omitempty"`
}
