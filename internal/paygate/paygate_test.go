package paygate

import (
	"net/url"
	"testing"

	"consultlink_backend/internal/models"
	"consultlink_backend/pkg/apperrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() Config {
	return Config{
		ClientKey:       "test_ck",
		SuccessURL:      "https://consultlink.example/api/v1/payments/success",
		FailURL:         "https://consultlink.example/api/v1/payments/fail",
		OrderNamePrefix: "Legal consultation",
	}
}

func TestNew_ValidatesConfig(t *testing.T) {
	_, err := New(testConfig())
	require.NoError(t, err)

	cfg := testConfig()
	cfg.ClientKey = ""
	_, err = New(cfg)
	assert.Error(t, err)

	cfg = testConfig()
	cfg.SuccessURL = "/payments/success"
	_, err = New(cfg)
	assert.Error(t, err, "relative success url")

	cfg = testConfig()
	cfg.FailURL = "not a url"
	_, err = New(cfg)
	assert.Error(t, err)
}

func TestWidget_Checkout(t *testing.T) {
	w, err := New(testConfig())
	require.NoError(t, err)

	c := &models.Consultation{Type: models.ConsultationTypeVisa, Amount: 50000}
	c.ID = "c-1"

	checkout := w.Checkout(c)

	assert.Equal(t, "c-1", checkout.OrderID)
	assert.Equal(t, "c-1", checkout.CustomerKey)
	assert.Equal(t, int64(50000), checkout.Amount)
	assert.Equal(t, "KRW", checkout.Currency)
	assert.Equal(t, "Legal consultation: visa", checkout.OrderName)
	assert.Equal(t, "test_ck", checkout.ClientKey)
	assert.Equal(t, testConfig().SuccessURL, checkout.SuccessURL)
}

func TestParseSuccess(t *testing.T) {
	cb, err := ParseSuccess(url.Values{"paymentKey": {" pk_1 "}, "orderId": {"c-1"}, "amount": {"50000"}})
	require.NoError(t, err)
	assert.Equal(t, SuccessCallback{PaymentKey: "pk_1", OrderID: "c-1", Amount: 50000}, cb)

	tests := []struct {
		name  string
		query url.Values
	}{
		{"empty", url.Values{}},
		{"no key", url.Values{"orderId": {"c-1"}, "amount": {"1"}}},
		{"no order", url.Values{"paymentKey": {"pk"}, "amount": {"1"}}},
		{"no amount", url.Values{"paymentKey": {"pk"}, "orderId": {"c-1"}}},
		{"bad amount", url.Values{"paymentKey": {"pk"}, "orderId": {"c-1"}, "amount": {"12.5"}}},
		{"negative amount", url.Values{"paymentKey": {"pk"}, "orderId": {"c-1"}, "amount": {"-1"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseSuccess(tt.query)
			assert.True(t, apperrors.HasCode(err, apperrors.CodeMalformedCallback))
		})
	}
}

func TestParseFailure(t *testing.T) {
	cb := ParseFailure(url.Values{"code": {"PAY_PROCESS_ABORTED"}, "message": {"declined"}, "orderId": {"c-1"}})

	assert.Equal(t, FailureCallback{Code: "PAY_PROCESS_ABORTED", Message: "declined", OrderID: "c-1"}, cb)
	assert.Equal(t, FailureCallback{}, ParseFailure(url.Values{}))
}
