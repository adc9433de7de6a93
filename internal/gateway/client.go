package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"consultlink_backend/internal/logger"
)

const maxResponseBytes = 1 << 20

// Client - тонкий слой пересылки запросов в бэкенд.
// Состояния не хранит: токен передается в каждый вызов.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return NewClientWithHTTP(baseURL, &http.Client{Timeout: timeout})
}

func NewClientWithHTTP(baseURL string, hc *http.Client) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    hc,
	}
}

// Call выполняет авторизованный вызов. Без токена запрос не отправляется.
func (c *Client) Call(ctx context.Context, method, path string, query url.Values, body any, token string, out any) error {
	if token == "" {
		return &Error{Kind: KindUnauthenticated, Method: method, Path: path}
	}
	return c.do(ctx, method, path, query, body, token, out)
}

// Public - единственный анонимный вызов, обмен логина и пароля на токен.
func (c *Client) Public(ctx context.Context, method, path string, body any, out any) error {
	return c.do(ctx, method, path, nil, body, "", out)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any, token string, out any) error {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("gateway: encode %s %s body: %w", method, path, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return fmt.Errorf("gateway: build %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if requestID := logger.GetRequestID(ctx); requestID != "" {
		req.Header.Set("X-Request-ID", requestID)
	}
	if correlationID := logger.GetCorrelationID(ctx); correlationID != "" {
		req.Header.Set("X-Correlation-ID", correlationID)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		logger.GatewayLog(method, path, 0, time.Since(start), err)
		return &Error{Kind: KindNetworkUnavailable, Method: method, Path: path, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	logger.GatewayLog(method, path, resp.StatusCode, time.Since(start), err)
	if err != nil {
		return &Error{Kind: KindNetworkUnavailable, Method: method, Path: path, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &Error{
			Kind:      KindBackendRejected,
			Status:    resp.StatusCode,
			RawDetail: extractDetail(data),
			Method:    method,
			Path:      path,
		}
	}

	if out != nil && len(bytes.TrimSpace(data)) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("gateway: decode %s %s response: %w", method, path, err)
		}
	}
	return nil
}

// extractDetail понимает несколько форм тела ошибки:
// {"detail": "..."}, {"detail": [{"msg": "..."}]}, {"error": {"message": "..."}},
// {"error": "..."}, {"message": "..."}.
func extractDetail(data []byte) string {
	var payload struct {
		Detail  json.RawMessage `json:"detail"`
		Error   json.RawMessage `json:"error"`
		Message string          `json:"message"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return strings.TrimSpace(string(data))
	}

	if s, ok := rawString(payload.Detail); ok {
		return s
	}
	if len(payload.Detail) > 0 {
		var items []struct {
			Msg string `json:"msg"`
		}
		if err := json.Unmarshal(payload.Detail, &items); err == nil && len(items) > 0 {
			return items[0].Msg
		}
	}
	if s, ok := rawString(payload.Error); ok {
		return s
	}
	if len(payload.Error) > 0 {
		var nested struct {
			Message string `json:"message"`
		}
		if err := json.Unmarshal(payload.Error, &nested); err == nil && nested.Message != "" {
			return nested.Message
		}
	}
	return payload.Message
}

func rawString(raw json.RawMessage) (string, bool) {
	if len(raw) == 0 {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, s != ""
}
