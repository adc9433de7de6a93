package auth

import (
	"strings"
	"testing"
	"time"

	"consultlink_backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testUser() *models.User {
	u := &models.User{Name: "Requester", Role: models.UserRoleRequester}
	u.ID = "u-1"
	return u
}

func TestTokenManager_RoundTrip(t *testing.T) {
	m := NewTokenManager("secret", time.Hour)

	token, err := m.Generate(testUser())
	require.NoError(t, err)

	claims, err := m.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "u-1", claims.UserID())
	assert.Equal(t, models.UserRoleRequester, claims.Role)
	assert.Equal(t, "Requester", claims.Name)
}

func TestTokenManager_Rejects(t *testing.T) {
	m := NewTokenManager("secret", time.Hour)
	token, err := m.Generate(testUser())
	require.NoError(t, err)

	_, err = NewTokenManager("other", time.Hour).Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	expired, err := NewTokenManager("secret", -time.Minute).Generate(testUser())
	require.NoError(t, err)
	_, err = m.Parse(expired)
	assert.ErrorIs(t, err, ErrInvalidToken)

	claims, err := ParseUnverified(expired)
	require.NoError(t, err, "signature and expiry are checked by the backend")
	assert.Equal(t, "u-1", claims.UserID())
}

func TestPassword(t *testing.T) {
	t.Parallel()

	assert.ErrorIs(t, ValidatePassword("short"), ErrWeakPassword)
	assert.ErrorIs(t, ValidatePassword("  abc   def  "), ErrWeakPassword, "surrounding spaces do not count")
	assert.NoError(t, ValidatePassword("пароль-ок"), "length counts characters, not bytes")
	assert.ErrorIs(t, ValidatePassword(strings.Repeat("x", 73)), ErrPasswordTooLong)

	_, err := HashPassword("short")
	assert.ErrorIs(t, err, ErrWeakPassword)

	hash, err := HashPassword("long-enough")
	require.NoError(t, err)
	assert.True(t, CheckPasswordHash("long-enough", hash))
	assert.False(t, CheckPasswordHash("wrong-password", hash))
	assert.False(t, CheckPasswordHash("", hash))
	assert.False(t, CheckPasswordHash("long-enough", ""))
}

func TestHasPermission(t *testing.T) {
	assert.True(t, HasPermission(models.UserRoleRequester, PermPaymentCreate))
	assert.False(t, HasPermission(models.UserRoleConsultant, PermPaymentCreate))
	assert.True(t, HasPermission(models.UserRoleConsultant, PermConsultationMatch))
	assert.True(t, HasPermission(models.UserRoleAdmin, PermConsultationAdmin))
	assert.False(t, HasPermission(models.UserRole("guest"), PermConsultationCreate))
}
