package apperrors

import (
	"net/http"
)

/*
Фабрики и предопределенные переменные для доменных ошибок.
Набор кодов закрыт: любой ответ бэкенда сводится к одному из них.
*/

// =========================================================================
// Фабричные ФУНКЦИИ
// =========================================================================

// ErrNotFound - фабрика для ошибки "не найдено" (404)
func ErrNotFound(err error) *AppError {
	return Wrap(err, CodeNotFound, "resource", "Resource not found", http.StatusNotFound)
}

// ErrConflict - общая фабрика для конфликтов (409)
func ErrConflict(err error, domain, message string) *AppError {
	return Wrap(err, CodeConflict, domain, message, http.StatusConflict)
}

// ErrInvalidTransition - попытка перехода из терминального или несовпадающего статуса.
func ErrInvalidTransition(status, action string) *AppError {
	return New(CodeInvalidTransition, "consultation",
		"This action is not available for the consultation in its current state",
		http.StatusConflict,
	).WithDetails(map[string]string{"status": status, "action": action})
}

// ErrNetworkUnavailable - бэкенд не ответил вовсе. Можно повторить.
func ErrNetworkUnavailable(err error) *AppError {
	return Wrap(err, CodeNetworkUnavailable, "gateway",
		"The service is temporarily unreachable. Please try again.",
		http.StatusServiceUnavailable,
	).WithDetails(map[string]bool{"retryable": true})
}

// ErrPaymentFinalizationFailed - шлюз мог списать средства, а подтверждение не прошло.
func ErrPaymentFinalizationFailed(err error, orderID, paymentKey string) *AppError {
	return Wrap(err, CodePaymentFinalizationFailed, "payment",
		"Your payment could not be finalized. Our support team has been notified and will contact you.",
		http.StatusBadGateway,
	).WithDetails(map[string]string{"order_id": orderID, "payment_key": paymentKey})
}

// =========================================================================
// Предопределенные ПЕРЕМЕННЫЕ
// =========================================================================

var (
	ErrConsultationNotFound = NewNotFoundError("consultation", "Consultation not found")
	ErrPaymentNotFound      = NewNotFoundError("payment", "Payment not found")
	ErrReviewNotFound       = NewNotFoundError("review", "Review not found")
	ErrUserNotFound         = NewNotFoundError("user", "User not found")
)

var (
	ErrAlreadyMatched = New(CodeAlreadyMatched, "consultation",
		"This consultation has already been taken by another consultant", http.StatusConflict)

	ErrNotParty = New(CodeForbidden, "consultation",
		"You are not a participant of this consultation", http.StatusForbidden)
)

var (
	ErrMalformedCallback = New(CodeMalformedCallback, "payment",
		"The payment response is incomplete and cannot be processed", http.StatusBadRequest)

	ErrAmountMismatch = New(CodeAmountMismatch, "payment",
		"The paid amount does not match the consultation amount", http.StatusUnprocessableEntity)
)

var ErrChannelInactive = New(CodeChannelInactive, "message",
	"Messaging is available only after a consultant accepts the consultation", http.StatusConflict)

var (
	ErrNotEligible = New(CodeNotEligible, "review",
		"Only the requester of a completed consultation can leave a review", http.StatusForbidden)

	ErrAlreadyReviewed = New(CodeAlreadyReviewed, "review",
		"This consultation has already been reviewed", http.StatusConflict)
)

var (
	ErrInvalidCredentials = New(CodeInvalidCredentials, "auth",
		"Invalid email or password", http.StatusUnauthorized)

	ErrSessionExpired = New(CodeUnauthenticated, "auth",
		"Your session has expired. Please sign in again.", http.StatusUnauthorized)
)
