package services

import (
	"context"
	"net/http"

	"consultlink_backend/internal/gateway"
	"consultlink_backend/internal/logger"
	"consultlink_backend/internal/services/dto"
	"consultlink_backend/internal/session"
	"consultlink_backend/internal/validator"
	"consultlink_backend/pkg/apperrors"
)

type AuthService interface {
	// Login обменивает email и пароль на токен бэкенда и заводит сессию.
	Login(ctx context.Context, req *dto.LoginRequest) (*session.Session, error)
	Logout(ctx context.Context, sess *session.Session)
	// Invalidate очищает сессию после 401 от бэкенда.
	Invalidate(ctx context.Context, sess *session.Session)
}

type authService struct {
	api       *BackendAPI
	store     session.Store
	validator *validator.Validator
}

func NewAuthService(api *BackendAPI, store session.Store, v *validator.Validator) AuthService {
	return &authService{
		api:       api,
		store:     store,
		validator: v,
	}
}

func (s *authService) Login(ctx context.Context, req *dto.LoginRequest) (*session.Session, error) {
	if err := validate(s.validator, req); err != nil {
		return nil, err
	}

	resp, err := s.api.Login(ctx, req)
	if err != nil {
		if gateway.HasStatus(err, http.StatusUnauthorized) {
			return nil, apperrors.ErrInvalidCredentials.WithError(err)
		}
		return nil, err
	}

	sess, err := s.store.Create(resp.AccessToken, resp.User)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	logger.CtxInfo(ctx, "User signed in", "user_id", resp.User.ID, "role", resp.User.Role)
	return sess, nil
}

func (s *authService) Logout(ctx context.Context, sess *session.Session) {
	if sess == nil {
		return
	}
	if !sess.Ephemeral {
		s.store.Delete(sess.ID)
	}
	logger.CtxInfo(ctx, "User signed out", "user_id", sess.UserID())
}

func (s *authService) Invalidate(ctx context.Context, sess *session.Session) {
	if sess == nil {
		return
	}
	if !sess.Ephemeral {
		s.store.Delete(sess.ID)
	}
	logger.CtxWarn(ctx, "Session invalidated after backend 401", "user_id", sess.UserID())
}
