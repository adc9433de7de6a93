package logger

import (
	"context"
	"log/slog"
)

type ctxKey int

const (
	requestIDKey ctxKey = iota
	correlationIDKey
	userIDKey
)

// ctxFields - какие значения контекста попадают в запись лога и под каким именем.
var ctxFields = []struct {
	key   ctxKey
	field string
}{
	{requestIDKey, "request_id"},
	{correlationIDKey, "correlation_id"},
	{userIDKey, "user_id"},
}

func withValue(ctx context.Context, key ctxKey, v string) context.Context {
	if v == "" {
		return ctx
	}
	return context.WithValue(ctx, key, v)
}

func value(ctx context.Context, key ctxKey) string {
	if ctx == nil {
		return ""
	}
	v, _ := ctx.Value(key).(string)
	return v
}

// WithRequestID - id одного HTTP запроса (или одного ws соединения).
func WithRequestID(ctx context.Context, id string) context.Context {
	return withValue(ctx, requestIDKey, id)
}

// WithCorrelationID - id цепочки вызовов оркестратор -> бэкенд.
// Переживает переход между сервисами, request id - нет.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	return withValue(ctx, correlationIDKey, id)
}

func WithUserID(ctx context.Context, userID string) context.Context {
	return withValue(ctx, userIDKey, userID)
}

func GetRequestID(ctx context.Context) string     { return value(ctx, requestIDKey) }
func GetCorrelationID(ctx context.Context) string { return value(ctx, correlationIDKey) }
func GetUserID(ctx context.Context) string        { return value(ctx, userIDKey) }

// FromContext возвращает глобальный логгер с полями из ctx.
// Пустые значения не пишутся.
func FromContext(ctx context.Context) *slog.Logger {
	l := GetLogger()
	var attrs []any
	for _, f := range ctxFields {
		if v := value(ctx, f.key); v != "" {
			attrs = append(attrs, slog.String(f.field, v))
		}
	}
	if len(attrs) == 0 {
		return l
	}
	return l.With(attrs...)
}

func CtxDebug(ctx context.Context, msg string, args ...any) { FromContext(ctx).Debug(msg, args...) }
func CtxInfo(ctx context.Context, msg string, args ...any)  { FromContext(ctx).Info(msg, args...) }
func CtxWarn(ctx context.Context, msg string, args ...any)  { FromContext(ctx).Warn(msg, args...) }
func CtxError(ctx context.Context, msg string, args ...any) { FromContext(ctx).Error(msg, args...) }

// CtxWithError пишет ошибку полем "error". nil допускается.
func CtxWithError(ctx context.Context, msg string, err error, args ...any) {
	if err != nil {
		args = append([]any{slog.String("error", err.Error())}, args...)
	}
	FromContext(ctx).Error(msg, args...)
}
