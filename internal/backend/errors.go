package backend

import (
	"fmt"
	"net/http"

	"consultlink_backend/internal/gateway"
)

// Rejection - отказ бэкенда: статус и строка detail из контракта с оркестратором.
type Rejection struct {
	Status int
	Detail string
}

func (r *Rejection) Error() string {
	return fmt.Sprintf("%d %s", r.Status, r.Detail)
}

func reject(status int, detail string) *Rejection {
	return &Rejection{Status: status, Detail: detail}
}

var (
	errInvalidCredentials   = reject(http.StatusUnauthorized, gateway.DetailInvalidCredentials)
	errNotParty             = reject(http.StatusForbidden, gateway.DetailNotParty)
	errConsultationNotFound = reject(http.StatusNotFound, gateway.DetailConsultationNotFound)
	errPaymentNotFound      = reject(http.StatusNotFound, gateway.DetailPaymentNotFound)
	errReviewNotFound       = reject(http.StatusNotFound, gateway.DetailReviewNotFound)
	errAlreadyMatched       = reject(http.StatusConflict, gateway.DetailAlreadyMatched)
	errAlreadyRejected      = reject(http.StatusConflict, gateway.DetailAlreadyRejected)
	errInvalidTransition    = reject(http.StatusConflict, gateway.DetailInvalidTransition)
	errPaymentExists        = reject(http.StatusConflict, gateway.DetailPaymentExists)
	errAmountMismatch       = reject(http.StatusUnprocessableEntity, gateway.DetailAmountMismatch)
	errNotAwaitingPayment   = reject(http.StatusConflict, gateway.DetailNotAwaitingPayment)
	errUnsupportedConfirm   = reject(http.StatusBadRequest, gateway.DetailUnsupportedConfirm)
	errPaymentKeyMismatch   = reject(http.StatusConflict, gateway.DetailPaymentKeyMismatch)
	errPaymentNotPending    = reject(http.StatusConflict, gateway.DetailPaymentNotPending)
	errChannelInactive      = reject(http.StatusConflict, gateway.DetailChannelInactive)
	errNotCompleted         = reject(http.StatusForbidden, gateway.DetailNotCompleted)
	errNotRequester         = reject(http.StatusForbidden, gateway.DetailNotRequester)
	errAlreadyReviewed      = reject(http.StatusConflict, gateway.DetailAlreadyReviewed)
)
