package services

import (
	"context"
	"fmt"

	"consultlink_backend/internal/models"
	"consultlink_backend/internal/session"
	"consultlink_backend/internal/validator"
	"consultlink_backend/pkg/apperrors"

	"golang.org/x/sync/singleflight"
)

// requireSession - без сессии сервисы не вызываются.
func requireSession(sess *session.Session) error {
	if sess == nil || sess.AccessToken == "" {
		return apperrors.ErrSessionExpired
	}
	return nil
}

func validate(v *validator.Validator, req interface{}) error {
	if err := v.Validate(req); err != nil {
		if vErr, ok := err.(*validator.ValidationError); ok {
			return apperrors.ValidationError(vErr.Errors)
		}
		return apperrors.InternalError(err)
	}
	return nil
}

// transitionError - InvalidTransition с актуальным состоянием консультации.
func transitionError(c *models.Consultation, action string) error {
	return apperrors.ErrInvalidTransition(string(c.Status), action).WithDetails(map[string]interface{}{
		"status":       c.Status,
		"action":       action,
		"consultation": c,
	})
}

// inflight схлопывает повторные нажатия одного клиента в один вызов бэкенда.
type inflight struct {
	group singleflight.Group
}

func inflightKey(action string, sess *session.Session, id string) string {
	return fmt.Sprintf("%s:%s:%s", action, sess.ID, id)
}

func doOnce[T any](ctx context.Context, f *inflight, key string, fn func(ctx context.Context) (T, error)) (T, error) {
	v, err, _ := f.group.Do(key, func() (interface{}, error) {
		return fn(ctx)
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return v.(T), nil
}
