package gateway

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind - класс сбоя вызова бэкенда.
type Kind int

const (
	// KindUnauthenticated - токена нет, запрос не отправлялся.
	KindUnauthenticated Kind = iota + 1
	// KindBackendRejected - бэкенд ответил не-2xx.
	KindBackendRejected
	// KindNetworkUnavailable - ответа не было вовсе.
	KindNetworkUnavailable
)

func (k Kind) String() string {
	switch k {
	case KindUnauthenticated:
		return "unauthenticated"
	case KindBackendRejected:
		return "backend_rejected"
	case KindNetworkUnavailable:
		return "network_unavailable"
	}
	return "unknown"
}

// Error - нормализованная ошибка вызова бэкенда.
// RawDetail никогда не показывается пользователю напрямую, см. Translator.
type Error struct {
	Kind      Kind
	Status    int
	RawDetail string
	Method    string
	Path      string
	Err       error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindBackendRejected:
		return fmt.Sprintf("gateway: %s %s rejected with %d: %s", e.Method, e.Path, e.Status, e.RawDetail)
	case KindNetworkUnavailable:
		return fmt.Sprintf("gateway: %s %s: network unavailable: %v", e.Method, e.Path, e.Err)
	default:
		return fmt.Sprintf("gateway: %s %s: %s", e.Method, e.Path, e.Kind)
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// AsError извлекает *Error из цепочки.
func AsError(err error) (*Error, bool) {
	var gwErr *Error
	if errors.As(err, &gwErr) {
		return gwErr, true
	}
	return nil, false
}

// HasStatus - бэкенд отклонил запрос с указанным статусом.
func HasStatus(err error, status int) bool {
	gwErr, ok := AsError(err)
	return ok && gwErr.Kind == KindBackendRejected && gwErr.Status == status
}

// IsConflict - 409 от бэкенда.
func IsConflict(err error) bool {
	return HasStatus(err, http.StatusConflict)
}

// IsNotFound - 404 от бэкенда.
func IsNotFound(err error) bool {
	return HasStatus(err, http.StatusNotFound)
}

// IsUnauthenticated - нет токена или бэкенд вернул 401.
// В обоих случаях сессия должна быть очищена.
func IsUnauthenticated(err error) bool {
	gwErr, ok := AsError(err)
	if !ok {
		return false
	}
	return gwErr.Kind == KindUnauthenticated ||
		(gwErr.Kind == KindBackendRejected && gwErr.Status == http.StatusUnauthorized)
}

// IsNetwork - транспортный сбой, можно повторить.
func IsNetwork(err error) bool {
	gwErr, ok := AsError(err)
	return ok && gwErr.Kind == KindNetworkUnavailable
}

// DetailOf возвращает RawDetail, если это отказ бэкенда.
func DetailOf(err error) string {
	if gwErr, ok := AsError(err); ok {
		return gwErr.RawDetail
	}
	return ""
}
