package session

import (
	"context"
	"testing"
	"time"

	"consultlink_backend/internal/auth"
	"consultlink_backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_CreateGetDelete(t *testing.T) {
	store := NewMemoryStore(time.Hour)
	user := UserSummary{ID: "u-1", Name: "Requester", Role: models.UserRoleRequester}

	sess, err := store.Create("tok", user)
	require.NoError(t, err)
	assert.NotEmpty(t, sess.ID)
	assert.Equal(t, "tok", sess.AccessToken)
	assert.False(t, sess.Ephemeral)

	got, ok := store.Get(sess.ID)
	require.True(t, ok)
	assert.Equal(t, user, got.User)
	assert.True(t, got.HasRole(models.UserRoleRequester))

	store.Delete(sess.ID)
	_, ok = store.Get(sess.ID)
	assert.False(t, ok)
}

func TestMemoryStore_Expiry(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	store := NewMemoryStore(time.Minute)
	store.now = func() time.Time { return now }

	expired, _ := store.Create("old", UserSummary{ID: "u-1"})
	now = now.Add(2 * time.Minute)
	fresh, _ := store.Create("new", UserSummary{ID: "u-2"})

	_, ok := store.Get(expired.ID)
	assert.False(t, ok)
	assert.Equal(t, 1, store.Len(), "expired session is dropped on read")

	_, ok = store.Get(fresh.ID)
	assert.True(t, ok)

	now = now.Add(2 * time.Minute)
	assert.Equal(t, 1, store.purgeExpired())
	assert.Zero(t, store.Len())
}

func TestMemoryStore_JanitorStopsWithContext(t *testing.T) {
	store := NewMemoryStore(time.Millisecond)
	_, _ = store.Create("tok", UserSummary{ID: "u-1"})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	store.StartJanitor(ctx, 5*time.Millisecond)

	assert.Eventually(t, func() bool { return store.Len() == 0 }, time.Second, 5*time.Millisecond)
}

func TestFromBearer(t *testing.T) {
	tokens := auth.NewTokenManager("secret", time.Hour)
	user := &models.User{Name: "Consultant", Role: models.UserRoleConsultant}
	user.ID = "u-9"
	token, err := tokens.Generate(user)
	require.NoError(t, err)

	sess, err := FromBearer(token)
	require.NoError(t, err)
	assert.True(t, sess.Ephemeral)
	assert.Equal(t, "u-9", sess.UserID())
	assert.Equal(t, token, sess.AccessToken)
	assert.True(t, sess.HasRole(models.UserRoleConsultant))
	assert.False(t, sess.Expired(time.Now()))

	_, err = FromBearer("not-a-jwt")
	assert.Error(t, err)
}

func TestSession_NilSafe(t *testing.T) {
	var sess *Session
	assert.Empty(t, sess.UserID())
	assert.False(t, sess.HasRole(models.UserRoleAdmin))
}
