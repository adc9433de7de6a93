package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Глобальный логгер, поэтому без t.Parallel.
func TestFromContext_WritesContextFields(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter("production", &buf)
	t.Cleanup(func() { InitWithWriter("test", &bytes.Buffer{}) })

	// 1. все три значения в контексте
	ctx := WithRequestID(context.Background(), "req-1")
	ctx = WithCorrelationID(ctx, "corr-1")
	ctx = WithUserID(ctx, "u-1")
	CtxInfo(ctx, "hello")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "req-1", rec["request_id"])
	assert.Equal(t, "corr-1", rec["correlation_id"])
	assert.Equal(t, "u-1", rec["user_id"])

	// 2. пустые значения не пишутся и не затирают старые
	buf.Reset()
	ctx = WithCorrelationID(ctx, "")
	CtxWithError(ctx, "boom", errors.New("bad"))
	rec = map[string]any{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "corr-1", rec["correlation_id"])
	assert.Equal(t, "bad", rec["error"])

	// 3. nil error и пустой контекст
	buf.Reset()
	CtxWithError(context.Background(), "no error", nil)
	rec = map[string]any{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.NotContains(t, rec, "error")
	assert.NotContains(t, rec, "request_id")
	assert.Empty(t, GetCorrelationID(context.Background()))
}
