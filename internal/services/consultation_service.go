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

// Действия над консультацией, они же суффиксы путей бэкенда.
const (
	ActionAccept   = "accept"
	ActionReject   = "reject"
	ActionComplete = "complete"
	ActionCancel   = "cancel"
	ActionCheckout = "checkout"
)

type ConsultationService interface {
	Create(ctx context.Context, sess *session.Session, req *dto.CreateConsultationRequest) (*models.Consultation, error)
	Get(ctx context.Context, sess *session.Session, id string) (*models.Consultation, error)
	List(ctx context.Context, sess *session.Session, query *dto.ConsultationListQuery) ([]models.Consultation, error)
	ListIncoming(ctx context.Context, sess *session.Session) ([]models.Consultation, error)

	// Accept - первый принявший выигрывает. Проигравший получает
	// AcceptOutcomeAlreadyMatched и свежую консультацию, без ошибки.
	Accept(ctx context.Context, sess *session.Session, id string) (*dto.AcceptResult, error)
	Reject(ctx context.Context, sess *session.Session, id string, req *dto.RejectConsultationRequest) (*models.Consultation, error)
	MarkCompleted(ctx context.Context, sess *session.Session, id string) (*models.Consultation, error)
	Cancel(ctx context.Context, sess *session.Session, id string) (*models.Consultation, error)
}

type consultationService struct {
	api       *BackendAPI
	validator *validator.Validator
	inflight  inflight
}

func NewConsultationService(api *BackendAPI, v *validator.Validator) ConsultationService {
	return &consultationService{
		api:       api,
		validator: v,
	}
}

// ---------------- Read operations ----------------

func (s *consultationService) Get(ctx context.Context, sess *session.Session, id string) (*models.Consultation, error) {
	if err := requireSession(sess); err != nil {
		return nil, err
	}
	return s.api.GetConsultation(ctx, sess, id)
}

func (s *consultationService) List(ctx context.Context, sess *session.Session, query *dto.ConsultationListQuery) ([]models.Consultation, error) {
	if err := requireSession(sess); err != nil {
		return nil, err
	}
	if query == nil {
		query = &dto.ConsultationListQuery{}
	}
	if err := validate(s.validator, query); err != nil {
		return nil, err
	}
	return s.api.ListConsultations(ctx, sess, query.Status)
}

func (s *consultationService) ListIncoming(ctx context.Context, sess *session.Session) ([]models.Consultation, error) {
	if err := requireSession(sess); err != nil {
		return nil, err
	}
	if !sess.HasRole(models.UserRoleConsultant) {
		return nil, apperrors.NewForbiddenError("Only consultants can view incoming requests")
	}
	return s.api.ListIncoming(ctx, sess)
}

// ---------------- Lifecycle ----------------

func (s *consultationService) Create(ctx context.Context, sess *session.Session, req *dto.CreateConsultationRequest) (*models.Consultation, error) {
	if err := requireSession(sess); err != nil {
		return nil, err
	}
	if !sess.HasRole(models.UserRoleRequester) {
		return nil, apperrors.NewForbiddenError("Only requesters can create consultations")
	}
	if err := validate(s.validator, req); err != nil {
		return nil, err
	}

	c, err := s.api.CreateConsultation(ctx, sess, req)
	if err != nil {
		return nil, err
	}
	logger.CtxInfo(ctx, "Consultation created", "consultation_id", c.ID, "type", c.Type, "amount", c.Amount)
	return c, nil
}

func (s *consultationService) Accept(ctx context.Context, sess *session.Session, id string) (*dto.AcceptResult, error) {
	if err := requireSession(sess); err != nil {
		return nil, err
	}
	if !sess.HasRole(models.UserRoleConsultant) {
		return nil, apperrors.NewForbiddenError("Only consultants can accept consultations")
	}

	return doOnce(ctx, &s.inflight, inflightKey(ActionAccept, sess, id), func(ctx context.Context) (*dto.AcceptResult, error) {
		c, err := s.api.GetConsultation(ctx, sess, id)
		if err != nil {
			return nil, err
		}
		if c.Status != models.ConsultationStatusRequested {
			return s.acceptOutcome(ctx, sess, c)
		}

		updated, err := s.api.Transition(ctx, sess, id, ActionAccept, nil)
		if err == nil {
			logger.CtxInfo(ctx, "Consultation matched", "consultation_id", id, "consultant_id", sess.UserID())
			return &dto.AcceptResult{Outcome: dto.AcceptOutcomeAccepted, Consultation: updated}, nil
		}
		if !gateway.IsConflict(err) {
			return nil, err
		}

		// Проиграли гонку: повторять не нужно, только показать актуальное состояние.
		fresh, ferr := s.api.GetConsultation(ctx, sess, id)
		if ferr != nil {
			return nil, ferr
		}
		return s.acceptOutcome(ctx, sess, fresh)
	})
}

// acceptOutcome решает исход accept по уже не-requested консультации.
// Из completed и cancelled accept невозможен ни для кого.
func (s *consultationService) acceptOutcome(ctx context.Context, sess *session.Session, c *models.Consultation) (*dto.AcceptResult, error) {
	if c.Status.IsTerminal() {
		return nil, transitionError(c, ActionAccept)
	}
	if c.IsAssignedTo(sess.UserID()) {
		return &dto.AcceptResult{Outcome: dto.AcceptOutcomeAccepted, Consultation: c}, nil
	}
	if c.ConsultantID != nil {
		logger.CtxInfo(ctx, "Accept lost to another consultant", "consultation_id", c.ID)
		return &dto.AcceptResult{Outcome: dto.AcceptOutcomeAlreadyMatched, Consultation: c}, nil
	}
	return nil, transitionError(c, ActionAccept)
}

func (s *consultationService) Reject(ctx context.Context, sess *session.Session, id string, req *dto.RejectConsultationRequest) (*models.Consultation, error) {
	if err := requireSession(sess); err != nil {
		return nil, err
	}
	if !sess.HasRole(models.UserRoleConsultant) {
		return nil, apperrors.NewForbiddenError("Only consultants can decline consultations")
	}
	if req == nil {
		req = &dto.RejectConsultationRequest{}
	}
	if err := validate(s.validator, req); err != nil {
		return nil, err
	}

	return s.transition(ctx, sess, id, ActionReject, req, func(c *models.Consultation) error {
		if c.Status != models.ConsultationStatusRequested || c.IsAssignedTo(sess.UserID()) {
			return transitionError(c, ActionReject)
		}
		return nil
	})
}

func (s *consultationService) MarkCompleted(ctx context.Context, sess *session.Session, id string) (*models.Consultation, error) {
	if err := requireSession(sess); err != nil {
		return nil, err
	}

	return s.transition(ctx, sess, id, ActionComplete, nil, func(c *models.Consultation) error {
		if !c.IsAssignedTo(sess.UserID()) {
			return apperrors.NewForbiddenError("Only the assigned consultant can complete the consultation")
		}
		if !models.CanTransition(c.Status, models.ConsultationStatusCompleted) {
			return transitionError(c, ActionComplete)
		}
		return nil
	})
}

func (s *consultationService) Cancel(ctx context.Context, sess *session.Session, id string) (*models.Consultation, error) {
	if err := requireSession(sess); err != nil {
		return nil, err
	}

	return s.transition(ctx, sess, id, ActionCancel, nil, func(c *models.Consultation) error {
		if !c.IsParty(sess.UserID()) && !sess.HasRole(models.UserRoleAdmin) {
			return apperrors.ErrNotParty
		}
		if c.Status.IsTerminal() {
			return transitionError(c, ActionCancel)
		}
		return nil
	})
}

// transition читает консультацию, проверяет guard и вызывает действие бэкенда.
// Если бэкенд ответил конфликтом, состояние успело измениться: перечитываем
// и возвращаем InvalidTransition со свежей консультацией.
func (s *consultationService) transition(
	ctx context.Context,
	sess *session.Session,
	id, action string,
	body any,
	guard func(c *models.Consultation) error,
) (*models.Consultation, error) {
	c, err := s.api.GetConsultation(ctx, sess, id)
	if err != nil {
		return nil, err
	}
	if err := guard(c); err != nil {
		return nil, err
	}

	updated, err := s.api.Transition(ctx, sess, id, action, body)
	if err == nil {
		logger.CtxInfo(ctx, "Consultation transition", "consultation_id", id, "action", action, "status", updated.Status)
		return updated, nil
	}
	if gateway.IsConflict(err) && gateway.DetailOf(err) == gateway.DetailInvalidTransition {
		fresh, ferr := s.api.GetConsultation(ctx, sess, id)
		if ferr != nil {
			return nil, ferr
		}
		return nil, transitionError(fresh, action)
	}
	return nil, err
}
