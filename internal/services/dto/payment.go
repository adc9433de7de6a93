package dto

import "consultlink_backend/internal/models"

type InitiatePaymentRequest struct {
	Method models.PaymentMethod `json:"method" validate:"omitempty,payment_method"`
}

// CreatePaymentRequest - тело POST /payments бэкенда
type CreatePaymentRequest struct {
	ConsultationID string               `json:"consultation_id" validate:"required"`
	Method         models.PaymentMethod `json:"method" validate:"required,payment_method"`
	Amount         int64                `json:"amount" validate:"required,gt=0"`
	PaymentKey     string               `json:"payment_key,omitempty" validate:"omitempty,max=200"`
}

// ConfirmPaymentRequest - тело POST /payments/confirm бэкенда
type ConfirmPaymentRequest struct {
	PaymentKey string `json:"payment_key" validate:"required,max=200"`
	OrderID    string `json:"order_id" validate:"required"`
	Amount     int64  `json:"amount" validate:"required,gt=0"`
	Status     string `json:"status" validate:"required"`
}

type PaymentQuery struct {
	ConsultationID string `form:"consultation_id" validate:"required"`
}

type ConfirmPaymentResponse struct {
	Payment      *models.Payment      `json:"payment"`
	Consultation *models.Consultation `json:"consultation"`
}

const (
	ReconcileOutcomeConfirmed        = "confirmed"
	ReconcileOutcomeAlreadyConfirmed = "already_confirmed"
)

type ReconcileResult struct {
	Outcome      string               `json:"outcome"`
	Payment      *models.Payment      `json:"payment"`
	Consultation *models.Consultation `json:"consultation"`
}

// FailureResult - ответ на неуспешный редирект: повторить оплату или вернуться к списку.
type FailureResult struct {
	Code        string `json:"code,omitempty"`
	Message     string `json:"message"`
	OrderID     string `json:"order_id,omitempty"`
	RetryPath   string `json:"retry_path,omitempty"`
	AbandonPath string `json:"abandon_path"`
}
