package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Type    string `json:"type" validate:"required,consultation_type"`
	Method  string `json:"method" validate:"omitempty,payment_method"`
	Role    string `json:"role" validate:"omitempty,user_role"`
	Content string `json:"content" validate:"required,notblank,min=10"`
}

func TestValidator_CustomRules(t *testing.T) {
	v := New()

	assert.NoError(t, v.Validate(&sample{Type: "visa", Method: "card", Role: "consultant", Content: "long enough text"}))

	err := v.Validate(&sample{Type: "astrology", Method: "cash", Role: "guest", Content: "          "})
	require.Error(t, err)

	vErr, ok := err.(*ValidationError)
	require.True(t, ok)
	assert.Contains(t, vErr.Errors, "type")
	assert.Contains(t, vErr.Errors, "method")
	assert.Contains(t, vErr.Errors, "role")
	assert.Contains(t, vErr.Errors, "content", "blank content fails notblank")
}

func TestValidator_UsesJSONNames(t *testing.T) {
	err := New().Validate(&sample{})

	vErr, ok := err.(*ValidationError)
	require.True(t, ok)
	assert.Equal(t, "This field is required", vErr.Errors["type"])
	assert.NotContains(t, vErr.Errors, "Type")
}
