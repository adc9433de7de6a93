package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"consultlink_backend/internal/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_CallSendsTokenAndRequestID(t *testing.T) {
	var got *http.Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"id": "c-1"})
	}))
	defer srv.Close()

	client := NewClient(srv.URL+"/api/v1/", time.Second)
	ctx := logger.WithRequestID(context.Background(), "req-42")
	ctx = logger.WithCorrelationID(ctx, "corr-7")

	var out struct {
		ID string `json:"id"`
	}
	err := client.Call(ctx, http.MethodGet, "/consultations", url.Values{"status": {"matched"}}, nil, "tok", &out)

	require.NoError(t, err)
	assert.Equal(t, "c-1", out.ID)
	assert.Equal(t, "/api/v1/consultations", got.URL.Path)
	assert.Equal(t, "matched", got.URL.Query().Get("status"))
	assert.Equal(t, "Bearer tok", got.Header.Get("Authorization"))
	assert.Equal(t, "req-42", got.Header.Get("X-Request-ID"))
	assert.Equal(t, "corr-7", got.Header.Get("X-Correlation-ID"))
}

func TestClient_CallWithoutTokenIsNotSent(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	err := NewClient(srv.URL, time.Second).Call(context.Background(), http.MethodGet, "/consultations", nil, nil, "", nil)

	assert.True(t, IsUnauthenticated(err))
	assert.False(t, called)
}

func TestClient_BackendRejection(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		detail string
	}{
		{"detail string", http.StatusConflict, `{"detail":"consultation already matched"}`, DetailAlreadyMatched},
		{"detail list", http.StatusUnprocessableEntity, `{"detail":[{"msg":"amount mismatch"}]}`, DetailAmountMismatch},
		{"nested error", http.StatusBadRequest, `{"error":{"message":"invalid request body"}}`, DetailInvalidBody},
		{"plain error", http.StatusForbidden, `{"error":"access denied"}`, DetailForbidden},
		{"message", http.StatusNotFound, `{"message":"review not found"}`, DetailReviewNotFound},
		{"not json", http.StatusBadGateway, "upstream down", "upstream down"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			err := NewClient(srv.URL, time.Second).Call(context.Background(), http.MethodPost, "/x", nil, map[string]int{"a": 1}, "tok", nil)

			gwErr, ok := AsError(err)
			require.True(t, ok)
			assert.Equal(t, KindBackendRejected, gwErr.Kind)
			assert.Equal(t, tt.status, gwErr.Status)
			assert.Equal(t, tt.detail, DetailOf(err))
			assert.True(t, HasStatus(err, tt.status))
		})
	}
}

func TestClient_NetworkUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	base := srv.URL
	srv.Close()

	err := NewClient(base, time.Second).Public(context.Background(), http.MethodPost, "/auth/login", map[string]string{"email": "a@b.c"}, nil)

	assert.True(t, IsNetwork(err))
	assert.False(t, IsUnauthenticated(err))
}

func TestClient_ContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewClient(srv.URL, time.Second).Call(ctx, http.MethodGet, "/slow", nil, nil, "tok", nil)
	assert.True(t, IsNetwork(err))
}

func TestIsUnauthenticated_Backend401(t *testing.T) {
	err := &Error{Kind: KindBackendRejected, Status: http.StatusUnauthorized, RawDetail: DetailInvalidToken}
	assert.True(t, IsUnauthenticated(err))
	assert.False(t, IsConflict(err))
}
