package services

import (
	"context"
	"fmt"
	"time"

	"consultlink_backend/internal/email"
	"consultlink_backend/internal/logger"
)

type IncidentReason string

const (
	IncidentAmountMismatch     IncidentReason = "amount_mismatch"
	IncidentFinalizationFailed IncidentReason = "finalization_failed"
)

// PaymentIncident - случай, когда деньги могли быть списаны, а консультация не оплачена.
type PaymentIncident struct {
	Reason         IncidentReason
	OrderID        string
	PaymentKey     string
	CallbackAmount int64
	ExpectedAmount int64
	UserID         string
	Err            error
	OccurredAt     time.Time
}

// SupportNotifier сообщает поддержке о платежах, требующих ручного разбора.
type SupportNotifier interface {
	NotifyPaymentIncident(ctx context.Context, incident PaymentIncident)
}

type EmailSupportNotifier struct {
	provider email.Provider
	to       []string
}

func NewEmailSupportNotifier(provider email.Provider, supportEmail string) *EmailSupportNotifier {
	return &EmailSupportNotifier{
		provider: provider,
		to:       []string{supportEmail},
	}
}

// NotifyPaymentIncident отправляет письмо синхронно. Ошибка отправки только логируется:
// пользователь уже получает свою ошибку, вторая ему не нужна.
func (n *EmailSupportNotifier) NotifyPaymentIncident(ctx context.Context, incident PaymentIncident) {
	if incident.OccurredAt.IsZero() {
		incident.OccurredAt = time.Now().UTC()
	}

	data := email.TemplateData{
		"reason":          string(incident.Reason),
		"order_id":        incident.OrderID,
		"payment_key":     incident.PaymentKey,
		"callback_amount": incident.CallbackAmount,
		"expected_amount": incident.ExpectedAmount,
		"user_id":         incident.UserID,
		"occurred_at":     incident.OccurredAt.Format(time.RFC3339),
	}
	if incident.Err != nil {
		data["error"] = incident.Err.Error()
	}

	subject := fmt.Sprintf("[payments] %s: order %s", incident.Reason, incident.OrderID)
	if err := n.provider.SendTemplate(n.to, subject, email.TemplatePaymentIncident, data); err != nil {
		logger.CtxWithError(ctx, "Failed to notify support about payment incident", err,
			"order_id", incident.OrderID,
			"reason", incident.Reason,
		)
		return
	}
	logger.CtxWarn(ctx, "Support notified about payment incident",
		"order_id", incident.OrderID,
		"reason", incident.Reason,
	)
}
