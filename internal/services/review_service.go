package services

import (
	"context"

	"consultlink_backend/internal/gateway"
	"consultlink_backend/internal/logger"
	"consultlink_backend/internal/models"
	"consultlink_backend/internal/services/dto"
	"consultlink_backend/internal/session"
	"consultlink_backend/internal/validator"
	"consultlink_backend/pkg/apperrors"
)

type ReviewService interface {
	Submit(ctx context.Context, sess *session.Session, consultationID string, req *dto.SubmitReviewRequest) (*models.Review, error)
	Get(ctx context.Context, sess *session.Session, consultationID string) (*models.Review, error)
}

type reviewService struct {
	api       *BackendAPI
	validator *validator.Validator
}

func NewReviewService(api *BackendAPI, v *validator.Validator) ReviewService {
	return &reviewService{
		api:       api,
		validator: v,
	}
}

func (s *reviewService) Submit(ctx context.Context, sess *session.Session, consultationID string, req *dto.SubmitReviewRequest) (*models.Review, error) {
	if err := requireSession(sess); err != nil {
		return nil, err
	}
	if err := validate(s.validator, req); err != nil {
		return nil, err
	}

	c, err := s.api.GetConsultation(ctx, sess, consultationID)
	if err != nil {
		return nil, err
	}
	if c.RequesterID != sess.UserID() || c.Status != models.ConsultationStatusCompleted {
		return nil, apperrors.ErrNotEligible.WithDetails(map[string]string{"status": string(c.Status)})
	}

	review, err := s.api.CreateReview(ctx, sess, consultationID, req)
	if err != nil {
		switch {
		case gateway.IsConflict(err):
			return nil, apperrors.ErrAlreadyReviewed.WithError(err)
		case gateway.DetailOf(err) == gateway.DetailNotCompleted, gateway.DetailOf(err) == gateway.DetailNotRequester:
			return nil, apperrors.ErrNotEligible.WithError(err)
		}
		return nil, err
	}

	logger.CtxInfo(ctx, "Review submitted", "consultation_id", consultationID, "rating", review.Rating)
	return review, nil
}

func (s *reviewService) Get(ctx context.Context, sess *session.Session, consultationID string) (*models.Review, error) {
	if err := requireSession(sess); err != nil {
		return nil, err
	}
	review, err := s.api.GetReview(ctx, sess, consultationID)
	if err != nil {
		if gateway.IsNotFound(err) && gateway.DetailOf(err) == gateway.DetailReviewNotFound {
			return nil, apperrors.ErrReviewNotFound.WithError(err)
		}
		return nil, err
	}
	return review, nil
}
