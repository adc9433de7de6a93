package services

import (
	"context"
	"net/url"
	"time"

	"consultlink_backend/internal/gateway"
	"consultlink_backend/internal/logger"
	"consultlink_backend/internal/models"
	"consultlink_backend/internal/paygate"
	"consultlink_backend/internal/services/dto"
	"consultlink_backend/internal/session"
	"consultlink_backend/internal/validator"
	"consultlink_backend/pkg/apperrors"

	"golang.org/x/sync/errgroup"
)

const (
	consultationsPath = "/api/v1/consultations"
	defaultFailReason = "The payment was not completed"

	actionReconcile = "reconcile"
)

type PaymentService interface {
	// Initiate создает pending-платеж (или находит существующий) и отдает параметры виджета.
	Initiate(ctx context.Context, sess *session.Session, consultationID string, req *dto.InitiatePaymentRequest) (*paygate.CheckoutSession, error)

	// ReconcileSuccess идемпотентно подтверждает оплату по параметрам редиректа.
	ReconcileSuccess(ctx context.Context, sess *session.Session, query url.Values) (*dto.ReconcileResult, error)

	// ReconcileFailure ничего не меняет, только предлагает повторить или отказаться.
	ReconcileFailure(ctx context.Context, sess *session.Session, query url.Values) *dto.FailureResult
}

type paymentService struct {
	api       *BackendAPI
	widget    *paygate.Widget
	notifier  SupportNotifier
	validator *validator.Validator
	inflight  inflight
	now       func() time.Time
}

func NewPaymentService(api *BackendAPI, widget *paygate.Widget, notifier SupportNotifier, v *validator.Validator) PaymentService {
	return &paymentService{
		api:       api,
		widget:    widget,
		notifier:  notifier,
		validator: v,
		now:       time.Now,
	}
}

func (s *paymentService) Initiate(ctx context.Context, sess *session.Session, consultationID string, req *dto.InitiatePaymentRequest) (*paygate.CheckoutSession, error) {
	if err := requireSession(sess); err != nil {
		return nil, err
	}
	if req == nil {
		req = &dto.InitiatePaymentRequest{}
	}
	if err := validate(s.validator, req); err != nil {
		return nil, err
	}
	method := req.Method
	if method == "" {
		method = models.PaymentMethodCard
	}

	return doOnce(ctx, &s.inflight, inflightKey(ActionCheckout, sess, consultationID), func(ctx context.Context) (*paygate.CheckoutSession, error) {
		c, err := s.api.GetConsultation(ctx, sess, consultationID)
		if err != nil {
			return nil, err
		}
		if c.RequesterID != sess.UserID() {
			return nil, apperrors.ErrNotParty
		}
		if c.Status != models.ConsultationStatusMatched {
			return nil, transitionError(c, ActionCheckout)
		}

		_, err = s.api.CreatePayment(ctx, sess, &dto.CreatePaymentRequest{
			ConsultationID: c.ID,
			Method:         method,
			Amount:         c.Amount,
		})
		if err != nil && !gateway.IsConflict(err) {
			return nil, err
		}
		if err != nil {
			logger.CtxDebug(ctx, "Payment already exists, continuing checkout", "consultation_id", c.ID)
		}

		checkout := s.widget.Checkout(c)
		return &checkout, nil
	})
}

func (s *paymentService) ReconcileSuccess(ctx context.Context, sess *session.Session, query url.Values) (*dto.ReconcileResult, error) {
	if err := requireSession(sess); err != nil {
		return nil, err
	}
	cb, err := paygate.ParseSuccess(query)
	if err != nil {
		logger.CtxWarn(ctx, "Malformed payment callback", "query", query.Encode())
		return nil, err
	}

	key := inflightKey(actionReconcile, sess, cb.OrderID+":"+cb.PaymentKey)
	v, err, shared := s.inflight.group.Do(key, func() (interface{}, error) {
		return s.reconcile(ctx, sess, cb)
	})
	if shared {
		logger.CtxDebug(ctx, "Duplicate payment callback collapsed", "order_id", cb.OrderID)
	}
	if err != nil {
		return nil, err
	}
	return v.(*dto.ReconcileResult), nil
}

func (s *paymentService) reconcile(ctx context.Context, sess *session.Session, cb paygate.SuccessCallback) (*dto.ReconcileResult, error) {
	// Между редиректами ничего не хранится: состояние читаем заново.
	var (
		c       *models.Consultation
		payment *models.Payment
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		c, err = s.api.GetConsultation(gctx, sess, cb.OrderID)
		return err
	})
	g.Go(func() error {
		p, err := s.api.GetPayment(gctx, sess, cb.OrderID)
		if gateway.IsNotFound(err) {
			return nil
		}
		payment = p
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if c.RequesterID != sess.UserID() {
		return nil, apperrors.ErrNotParty
	}

	incident := PaymentIncident{
		OrderID:        cb.OrderID,
		PaymentKey:     cb.PaymentKey,
		CallbackAmount: cb.Amount,
		ExpectedAmount: c.Amount,
		UserID:         sess.UserID(),
		OccurredAt:     s.now().UTC(),
	}

	if cb.Amount != c.Amount {
		logger.CtxWarn(ctx, "Payment callback amount mismatch",
			"order_id", cb.OrderID,
			"callback_amount", cb.Amount,
			"expected_amount", c.Amount,
		)
		incident.Reason = IncidentAmountMismatch
		s.notifier.NotifyPaymentIncident(ctx, incident)
		return nil, apperrors.ErrAmountMismatch.WithDetails(map[string]int64{
			"callback_amount": cb.Amount,
			"expected_amount": c.Amount,
		})
	}

	if payment != nil && payment.Status == models.PaymentStatusDone {
		if payment.HasKey(cb.PaymentKey) {
			return &dto.ReconcileResult{
				Outcome:      dto.ReconcileOutcomeAlreadyConfirmed,
				Payment:      payment,
				Consultation: c,
			}, nil
		}
		return nil, s.finalizationFailed(ctx, incident, apperrors.ErrConflict(nil, "payment", "payment already confirmed with another key"))
	}

	if c.Status != models.ConsultationStatusMatched {
		return nil, s.finalizationFailed(ctx, incident, apperrors.ErrInvalidTransition(string(c.Status), "confirm"))
	}

	_, err := s.api.CreatePayment(ctx, sess, &dto.CreatePaymentRequest{
		ConsultationID: c.ID,
		Method:         paymentMethodOf(payment),
		Amount:         c.Amount,
		PaymentKey:     cb.PaymentKey,
	})
	if err != nil && !gateway.IsConflict(err) {
		if retryable(err) {
			return nil, err
		}
		return nil, s.finalizationFailed(ctx, incident, err)
	}

	confirmed, err := s.api.ConfirmPayment(ctx, sess, &dto.ConfirmPaymentRequest{
		PaymentKey: cb.PaymentKey,
		OrderID:    cb.OrderID,
		Amount:     cb.Amount,
		Status:     models.ConfirmStatusDone,
	})
	if err != nil {
		if retryable(err) {
			return nil, err
		}
		return nil, s.finalizationFailed(ctx, incident, err)
	}

	logger.CtxInfo(ctx, "Payment confirmed", "order_id", cb.OrderID, "payment_id", confirmed.Payment.ID)
	return &dto.ReconcileResult{
		Outcome:      dto.ReconcileOutcomeConfirmed,
		Payment:      confirmed.Payment,
		Consultation: confirmed.Consultation,
	}, nil
}

// finalizationFailed - шлюз уже принял оплату, а бэкенд ее не подтвердил.
// Автоматических повторов нет: поддержка получает письмо.
func (s *paymentService) finalizationFailed(ctx context.Context, incident PaymentIncident, cause error) error {
	logger.CtxWithError(ctx, "Payment finalization failed", cause,
		"order_id", incident.OrderID,
		"payment_key", incident.PaymentKey,
	)
	incident.Reason = IncidentFinalizationFailed
	incident.Err = cause
	s.notifier.NotifyPaymentIncident(ctx, incident)
	return apperrors.ErrPaymentFinalizationFailed(cause, incident.OrderID, incident.PaymentKey)
}

func (s *paymentService) ReconcileFailure(ctx context.Context, sess *session.Session, query url.Values) *dto.FailureResult {
	cb := paygate.ParseFailure(query)
	logger.CtxInfo(ctx, "Payment failed at gateway",
		"order_id", cb.OrderID,
		"code", cb.Code,
		"user_id", sess.UserID(),
	)

	result := &dto.FailureResult{
		Code:        cb.Code,
		Message:     cb.Message,
		OrderID:     cb.OrderID,
		AbandonPath: consultationsPath,
	}
	if result.Message == "" {
		result.Message = defaultFailReason
	}
	if cb.OrderID != "" {
		result.RetryPath = consultationsPath + "/" + url.PathEscape(cb.OrderID) + "/" + ActionCheckout
	}
	return result
}

// retryable - сеть или истекшая сессия: подтверждение не состоялось,
// повторный заход на страницу успеха безопасен.
func retryable(err error) bool {
	return gateway.IsNetwork(err) || gateway.IsUnauthenticated(err)
}

func paymentMethodOf(p *models.Payment) models.PaymentMethod {
	if p != nil && p.Method != "" {
		return p.Method
	}
	return models.PaymentMethodCard
}
