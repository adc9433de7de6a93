package dto

import "consultlink_backend/internal/models"

// ======================
// Request DTOs
// ======================

type CreateConsultationRequest struct {
	Type     models.ConsultationType   `json:"type" validate:"required,consultation_type"`
	Method   models.ConsultationMethod `json:"method" validate:"required,consultation_method"`
	Content  string                    `json:"content" validate:"required,notblank,min=10,max=5000"`
	Amount   int64                     `json:"amount" validate:"required,gt=0"`
	Currency string                    `json:"currency,omitempty" validate:"omitempty,iso4217"`
}

type RejectConsultationRequest struct {
	Reason string `json:"reason" validate:"omitempty,max=1000"`
}

type ConsultationListQuery struct {
	Status string `form:"status" validate:"omitempty,oneof=requested matched scheduled completed cancelled"`
}

// ======================
// Response DTOs
// ======================

const (
	AcceptOutcomeAccepted       = "accepted"
	AcceptOutcomeAlreadyMatched = "already_matched"
)

// AcceptResult - конфликт при accept не ошибка: клиент получает актуальное состояние.
type AcceptResult struct {
	Outcome      string               `json:"outcome"`
	Consultation *models.Consultation `json:"consultation"`
}
