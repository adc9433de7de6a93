package services

import (
	"context"
	"net/http"
	"net/url"

	"consultlink_backend/internal/models"
	"consultlink_backend/internal/services/dto"
	"consultlink_backend/internal/session"
)

// Caller - то, что сервисам нужно от gateway.Client.
type Caller interface {
	Call(ctx context.Context, method, path string, query url.Values, body any, token string, out any) error
	Public(ctx context.Context, method, path string, body any, out any) error
}

// BackendAPI - типизированные вызовы эндпоинтов бэкенда.
type BackendAPI struct {
	gw Caller
}

func NewBackendAPI(gw Caller) *BackendAPI {
	return &BackendAPI{gw: gw}
}

func consultationPath(id string, suffix string) string {
	return "/consultations/" + url.PathEscape(id) + suffix
}

func (a *BackendAPI) Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error) {
	var out dto.LoginResponse
	if err := a.gw.Public(ctx, http.MethodPost, "/auth/login", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *BackendAPI) CreateConsultation(ctx context.Context, sess *session.Session, req *dto.CreateConsultationRequest) (*models.Consultation, error) {
	var out models.Consultation
	if err := a.gw.Call(ctx, http.MethodPost, "/consultations", nil, req, sess.AccessToken, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *BackendAPI) ListConsultations(ctx context.Context, sess *session.Session, status string) ([]models.Consultation, error) {
	var query url.Values
	if status != "" {
		query = url.Values{"status": {status}}
	}
	var out []models.Consultation
	if err := a.gw.Call(ctx, http.MethodGet, "/consultations", query, nil, sess.AccessToken, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (a *BackendAPI) ListIncoming(ctx context.Context, sess *session.Session) ([]models.Consultation, error) {
	var out []models.Consultation
	if err := a.gw.Call(ctx, http.MethodGet, "/consultations/incoming", nil, nil, sess.AccessToken, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (a *BackendAPI) GetConsultation(ctx context.Context, sess *session.Session, id string) (*models.Consultation, error) {
	var out models.Consultation
	if err := a.gw.Call(ctx, http.MethodGet, consultationPath(id, ""), nil, nil, sess.AccessToken, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Transition вызывает accept, reject, complete или cancel.
func (a *BackendAPI) Transition(ctx context.Context, sess *session.Session, id, action string, body any) (*models.Consultation, error) {
	var out models.Consultation
	if err := a.gw.Call(ctx, http.MethodPost, consultationPath(id, "/"+action), nil, body, sess.AccessToken, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *BackendAPI) CreatePayment(ctx context.Context, sess *session.Session, req *dto.CreatePaymentRequest) (*models.Payment, error) {
	var out models.Payment
	if err := a.gw.Call(ctx, http.MethodPost, "/payments", nil, req, sess.AccessToken, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *BackendAPI) GetPayment(ctx context.Context, sess *session.Session, consultationID string) (*models.Payment, error) {
	var out models.Payment
	query := url.Values{"consultation_id": {consultationID}}
	if err := a.gw.Call(ctx, http.MethodGet, "/payments", query, nil, sess.AccessToken, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *BackendAPI) ConfirmPayment(ctx context.Context, sess *session.Session, req *dto.ConfirmPaymentRequest) (*dto.ConfirmPaymentResponse, error) {
	var out dto.ConfirmPaymentResponse
	if err := a.gw.Call(ctx, http.MethodPost, "/payments/confirm", nil, req, sess.AccessToken, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *BackendAPI) ListMessages(ctx context.Context, sess *session.Session, consultationID string) ([]models.Message, error) {
	var out []models.Message
	if err := a.gw.Call(ctx, http.MethodGet, consultationPath(consultationID, "/messages"), nil, nil, sess.AccessToken, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (a *BackendAPI) PostMessage(ctx context.Context, sess *session.Session, consultationID string, req *dto.SendMessageRequest) (*models.Message, error) {
	var out models.Message
	if err := a.gw.Call(ctx, http.MethodPost, consultationPath(consultationID, "/messages"), nil, req, sess.AccessToken, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *BackendAPI) MarkMessagesRead(ctx context.Context, sess *session.Session, consultationID string) (*dto.MarkReadResponse, error) {
	var out dto.MarkReadResponse
	if err := a.gw.Call(ctx, http.MethodPost, consultationPath(consultationID, "/messages/read"), nil, nil, sess.AccessToken, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *BackendAPI) CreateReview(ctx context.Context, sess *session.Session, consultationID string, req *dto.SubmitReviewRequest) (*models.Review, error) {
	var out models.Review
	if err := a.gw.Call(ctx, http.MethodPost, consultationPath(consultationID, "/review"), nil, req, sess.AccessToken, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *BackendAPI) GetReview(ctx context.Context, sess *session.Session, consultationID string) (*models.Review, error) {
	var out models.Review
	if err := a.gw.Call(ctx, http.MethodGet, consultationPath(consultationID, "/review"), nil, nil, sess.AccessToken, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
