package paygate

import (
	"fmt"
	"net/url"

	"consultlink_backend/internal/models"
)

// Config - параметры виджета оплаты.
type Config struct {
	ClientKey       string
	SuccessURL      string
	FailURL         string
	OrderNamePrefix string
	Currency        string
}

// Widget описывает вызов requestPayment на стороне клиента.
// Сам виджет работает в браузере, сервер только готовит параметры.
type Widget struct {
	cfg Config
}

// CheckoutSession - параметры requestPayment. После вызова браузер уходит
// на страницу шлюза, поэтому на сервере ничего не сохраняется.
type CheckoutSession struct {
	ClientKey   string `json:"client_key"`
	CustomerKey string `json:"customer_key"`
	OrderID     string `json:"order_id"`
	OrderName   string `json:"order_name"`
	Amount      int64  `json:"amount"`
	Currency    string `json:"currency"`
	SuccessURL  string `json:"success_url"`
	FailURL     string `json:"fail_url"`
}

func New(cfg Config) (*Widget, error) {
	if cfg.ClientKey == "" {
		return nil, fmt.Errorf("paygate: client key is required")
	}
	for name, raw := range map[string]string{"success": cfg.SuccessURL, "fail": cfg.FailURL} {
		if err := requireAbsolute(raw); err != nil {
			return nil, fmt.Errorf("paygate: %s url: %w", name, err)
		}
	}
	if cfg.Currency == "" {
		cfg.Currency = "KRW"
	}
	return &Widget{cfg: cfg}, nil
}

func requireAbsolute(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if !u.IsAbs() || u.Host == "" {
		return fmt.Errorf("%q is not an absolute url", raw)
	}
	return nil
}

// Checkout строит параметры оплаты для консультации.
// order id и customer key равны id консультации.
func (w *Widget) Checkout(c *models.Consultation) CheckoutSession {
	currency := c.Currency
	if currency == "" {
		currency = w.cfg.Currency
	}
	return CheckoutSession{
		ClientKey:   w.cfg.ClientKey,
		CustomerKey: c.ID,
		OrderID:     c.ID,
		OrderName:   fmt.Sprintf("%s: %s", w.cfg.OrderNamePrefix, c.Type),
		Amount:      c.Amount,
		Currency:    currency,
		SuccessURL:  w.cfg.SuccessURL,
		FailURL:     w.cfg.FailURL,
	}
}
