package paygate

import (
	"net/url"
	"strconv"
	"strings"

	"consultlink_backend/pkg/apperrors"
)

// SuccessCallback - параметры редиректа успешной оплаты.
type SuccessCallback struct {
	PaymentKey string `json:"payment_key"`
	OrderID    string `json:"order_id"`
	Amount     int64  `json:"amount"`
}

// FailureCallback - параметры редиректа неуспешной оплаты. paymentKey в нем нет.
type FailureCallback struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	OrderID string `json:"order_id,omitempty"`
}

// ParseSuccess проверяет наличие paymentKey, orderId и amount.
// Отсутствие любого из них - ErrMalformedCallback, повторять бессмысленно.
func ParseSuccess(q url.Values) (SuccessCallback, error) {
	cb := SuccessCallback{
		PaymentKey: strings.TrimSpace(q.Get("paymentKey")),
		OrderID:    strings.TrimSpace(q.Get("orderId")),
	}
	rawAmount := strings.TrimSpace(q.Get("amount"))

	var missing []string
	if cb.PaymentKey == "" {
		missing = append(missing, "paymentKey")
	}
	if cb.OrderID == "" {
		missing = append(missing, "orderId")
	}
	if rawAmount == "" {
		missing = append(missing, "amount")
	}
	if len(missing) > 0 {
		return SuccessCallback{}, apperrors.ErrMalformedCallback.WithDetails(map[string][]string{"missing": missing})
	}

	amount, err := strconv.ParseInt(rawAmount, 10, 64)
	if err != nil || amount < 0 {
		return SuccessCallback{}, apperrors.ErrMalformedCallback.WithDetails(map[string]string{"amount": rawAmount})
	}
	cb.Amount = amount
	return cb, nil
}

// ParseFailure разбирает редирект неуспешной оплаты.
func ParseFailure(q url.Values) FailureCallback {
	return FailureCallback{
		Code:    strings.TrimSpace(q.Get("code")),
		Message: strings.TrimSpace(q.Get("message")),
		OrderID: strings.TrimSpace(q.Get("orderId")),
	}
}
