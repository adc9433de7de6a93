package backend

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"consultlink_backend/internal/auth"
	"consultlink_backend/internal/logger"
	"consultlink_backend/internal/models"
	"consultlink_backend/internal/repositories"
	"consultlink_backend/internal/services/dto"
	"consultlink_backend/internal/session"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Actor - пользователь из проверенного JWT.
type Actor struct {
	ID   string
	Role models.UserRole
}

// IsAdmin - видит и отменяет любые консультации.
func (a Actor) IsAdmin() bool {
	return auth.HasPermission(a.Role, auth.PermConsultationAdmin)
}

// Service - бизнес-логика эталонного бэкенда. Состояние хранит только БД:
// конфликтующие записи разводятся условными UPDATE.
type Service struct {
	users         repositories.UserRepository
	consultations repositories.ConsultationRepository
	payments      repositories.PaymentRepository
	messages      repositories.MessageRepository
	reviews       repositories.ReviewRepository
	tokens        *auth.TokenManager
	now           func() time.Time
}

func NewService(
	users repositories.UserRepository,
	consultations repositories.ConsultationRepository,
	payments repositories.PaymentRepository,
	messages repositories.MessageRepository,
	reviews repositories.ReviewRepository,
	tokens *auth.TokenManager,
) *Service {
	return &Service{
		users:         users,
		consultations: consultations,
		payments:      payments,
		messages:      messages,
		reviews:       reviews,
		tokens:        tokens,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// ---------------- Auth ----------------

func (s *Service) Login(db *gorm.DB, req *dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := s.users.FindByEmail(db, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, errInvalidCredentials
		}
		return nil, err
	}
	if !auth.CheckPasswordHash(req.Password, user.PasswordHash) {
		return nil, errInvalidCredentials
	}

	token, err := s.tokens.Generate(user)
	if err != nil {
		return nil, err
	}
	return &dto.LoginResponse{
		AccessToken: token,
		User:        session.UserSummary{ID: user.ID, Name: user.Name, Role: user.Role},
	}, nil
}

// ---------------- Consultations ----------------

func (s *Service) CreateConsultation(db *gorm.DB, actor Actor, req *dto.CreateConsultationRequest) (*models.Consultation, error) {
	currency := strings.ToUpper(req.Currency)
	if currency == "" {
		currency = "KRW"
	}
	c := &models.Consultation{
		RequesterID: actor.ID,
		Type:        req.Type,
		Method:      req.Method,
		Content:     strings.TrimSpace(req.Content),
		Amount:      req.Amount,
		Currency:    currency,
		Status:      models.ConsultationStatusRequested,
	}
	if err := s.consultations.Create(db, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Service) ListConsultations(db *gorm.DB, actor Actor, status models.ConsultationStatus) ([]models.Consultation, error) {
	if actor.IsAdmin() {
		return s.consultations.FindAll(db, status)
	}
	return s.consultations.FindByParty(db, actor.ID, status)
}

func (s *Service) ListIncoming(db *gorm.DB, actor Actor) ([]models.Consultation, error) {
	return s.consultations.FindIncoming(db, actor.ID)
}

// GetConsultation. Консультант видит любой запрос в статусе requested; чужую
// консультацию после назначения он видит без текста запроса, чтобы проигравший
// гонку за accept увидел, кто ее принял.
func (s *Service) GetConsultation(db *gorm.DB, actor Actor, id string) (*models.Consultation, error) {
	c, err := s.findConsultation(db, id)
	if err != nil {
		return nil, err
	}
	switch {
	case actor.IsAdmin(), c.IsParty(actor.ID):
		return c, nil
	case actor.Role == models.UserRoleConsultant:
		if c.Status != models.ConsultationStatusRequested {
			c.Content = ""
		}
		return c, nil
	}
	return nil, errConsultationNotFound
}

func (s *Service) findConsultation(db *gorm.DB, id string) (*models.Consultation, error) {
	c, err := s.consultations.FindByID(db, id)
	if err != nil {
		if errors.Is(err, repositories.ErrConsultationNotFound) {
			return nil, errConsultationNotFound
		}
		return nil, err
	}
	return c, nil
}

// Accept - compare-and-set по status='requested' AND consultant_id IS NULL.
func (s *Service) Accept(db *gorm.DB, actor Actor, id string) (*models.Consultation, error) {
	c, err := s.findConsultation(db, id)
	if err != nil {
		return nil, err
	}
	if c.Status.IsTerminal() {
		return nil, errInvalidTransition
	}
	if c.IsAssignedTo(actor.ID) {
		return c, nil
	}
	if c.Status != models.ConsultationStatusRequested {
		if c.ConsultantID != nil {
			return nil, errAlreadyMatched
		}
		return nil, errInvalidTransition
	}

	err = s.consultations.Match(db, id, actor.ID, s.now())
	if errors.Is(err, repositories.ErrAlreadyMatched) {
		fresh, ferr := s.findConsultation(db, id)
		if ferr != nil {
			return nil, ferr
		}
		switch {
		case fresh.Status.IsTerminal():
			return nil, errInvalidTransition
		case fresh.IsAssignedTo(actor.ID):
			return fresh, nil
		case fresh.ConsultantID != nil:
			return nil, errAlreadyMatched
		}
		return nil, errInvalidTransition
	}
	if err != nil {
		return nil, err
	}

	logger.Info("Consultation matched", "consultation_id", id, "consultant_id", actor.ID)
	return s.findConsultation(db, id)
}

func (s *Service) Reject(db *gorm.DB, actor Actor, id, reason string) (*models.Consultation, error) {
	c, err := s.findConsultation(db, id)
	if err != nil {
		return nil, err
	}
	if c.Status != models.ConsultationStatusRequested || c.IsAssignedTo(actor.ID) {
		return nil, errInvalidTransition
	}

	err = s.consultations.CreateRejection(db, &models.ConsultationRejection{
		ConsultationID: id,
		ConsultantID:   actor.ID,
		Reason:         reason,
	})
	if errors.Is(err, repositories.ErrAlreadyRejected) {
		return nil, errAlreadyRejected
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Service) Complete(db *gorm.DB, actor Actor, id string) (*models.Consultation, error) {
	c, err := s.findConsultation(db, id)
	if err != nil {
		return nil, err
	}
	if !c.IsAssignedTo(actor.ID) {
		return nil, errNotParty
	}
	return s.transition(db, c, models.ConsultationStatusCompleted, "completed_at")
}

func (s *Service) Cancel(db *gorm.DB, actor Actor, id string) (*models.Consultation, error) {
	c, err := s.findConsultation(db, id)
	if err != nil {
		return nil, err
	}
	if !c.IsParty(actor.ID) && !actor.IsAdmin() {
		return nil, errNotParty
	}
	return s.transition(db, c, models.ConsultationStatusCancelled, "cancelled_at")
}

// transition - условный переход из прочитанного статуса. Если статус успел
// измениться, UPDATE ничего не затронет и вернется invalid status transition.
func (s *Service) transition(db *gorm.DB, c *models.Consultation, to models.ConsultationStatus, stampField string) (*models.Consultation, error) {
	if !models.CanTransition(c.Status, to) {
		return nil, errInvalidTransition
	}
	err := s.consultations.Transition(db, c.ID, c.Status, to, map[string]interface{}{stampField: s.now()})
	if errors.Is(err, repositories.ErrStaleStatus) {
		return nil, errInvalidTransition
	}
	if err != nil {
		return nil, err
	}
	return s.findConsultation(db, c.ID)
}

// ---------------- Payments ----------------

// CreatePayment - не более одного активного платежа на консультацию.
// Повтор с той же суммой - 409, с другой - 422.
func (s *Service) CreatePayment(db *gorm.DB, actor Actor, req *dto.CreatePaymentRequest) (*models.Payment, error) {
	var (
		created *models.Payment
		exists  bool
	)
	err := db.Transaction(func(tx *gorm.DB) error {
		c, err := s.findConsultation(tx, req.ConsultationID)
		if err != nil {
			return err
		}
		if c.RequesterID != actor.ID {
			return errNotParty
		}

		existing, err := s.payments.FindActiveByConsultation(tx, c.ID)
		switch {
		case err == nil:
			if existing.Amount != req.Amount {
				return errAmountMismatch
			}
			if req.PaymentKey != "" && existing.PaymentKey == nil {
				if err := s.payments.AttachKey(tx, existing.ID, req.PaymentKey); err != nil {
					return err
				}
			}
			// ключ должен сохраниться, поэтому транзакцию не откатываем
			exists = true
			return nil
		case !errors.Is(err, repositories.ErrPaymentNotFound):
			return err
		}

		if c.Status != models.ConsultationStatusMatched {
			return errNotAwaitingPayment
		}
		if req.Amount != c.Amount {
			return errAmountMismatch
		}

		payment := &models.Payment{
			ConsultationID: c.ID,
			OrderID:        c.ID,
			Method:         req.Method,
			Amount:         c.Amount,
			Currency:       c.Currency,
			Status:         models.PaymentStatusPending,
		}
		if req.PaymentKey != "" {
			key := req.PaymentKey
			payment.PaymentKey = &key
		}
		if err := s.payments.Create(tx, payment); err != nil {
			if errors.Is(err, repositories.ErrPaymentExists) {
				return errPaymentExists
			}
			return err
		}
		created = payment
		return nil
	})
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, errPaymentExists
	}
	return created, nil
}

func (s *Service) GetPayment(db *gorm.DB, actor Actor, consultationID string) (*models.Payment, error) {
	c, err := s.findConsultation(db, consultationID)
	if err != nil {
		return nil, err
	}
	if !c.IsParty(actor.ID) && !actor.IsAdmin() {
		return nil, errNotParty
	}
	p, err := s.payments.FindActiveByConsultation(db, c.ID)
	if errors.Is(err, repositories.ErrPaymentNotFound) {
		return nil, errPaymentNotFound
	}
	return p, err
}

// ConfirmPayment финализирует платеж и консультацию в одной транзакции.
// Повтор с тем же ключом после успеха - 200 без изменений.
func (s *Service) ConfirmPayment(db *gorm.DB, actor Actor, req *dto.ConfirmPaymentRequest) (*dto.ConfirmPaymentResponse, error) {
	if req.Status != models.ConfirmStatusDone {
		return nil, errUnsupportedConfirm
	}

	var resp dto.ConfirmPaymentResponse
	err := db.Transaction(func(tx *gorm.DB) error {
		c, err := s.findConsultation(tx, req.OrderID)
		if err != nil {
			return err
		}
		if c.RequesterID != actor.ID {
			return errNotParty
		}
		p, err := s.payments.FindActiveByConsultation(tx, c.ID)
		if errors.Is(err, repositories.ErrPaymentNotFound) {
			return errPaymentNotFound
		}
		if err != nil {
			return err
		}

		if p.Status == models.PaymentStatusDone {
			if !p.HasKey(req.PaymentKey) {
				return errPaymentKeyMismatch
			}
			resp = dto.ConfirmPaymentResponse{Payment: p, Consultation: c}
			return nil
		}
		if p.PaymentKey != nil && !p.HasKey(req.PaymentKey) {
			return errPaymentKeyMismatch
		}
		if p.Status != models.PaymentStatusPending {
			return errPaymentNotPending
		}
		if req.Amount != p.Amount || req.Amount != c.Amount {
			return errAmountMismatch
		}
		if c.Status != models.ConsultationStatusMatched {
			return errNotAwaitingPayment
		}

		metadata, err := json.Marshal(map[string]interface{}{
			"payment_key": req.PaymentKey,
			"order_id":    req.OrderID,
			"amount":      req.Amount,
			"status":      req.Status,
		})
		if err != nil {
			return err
		}
		now := s.now()
		if err := s.payments.MarkDone(tx, p.ID, req.PaymentKey, datatypes.JSON(metadata), now); err != nil {
			if errors.Is(err, repositories.ErrPaymentNotPending) {
				return errPaymentNotPending
			}
			return err
		}
		err = s.consultations.Transition(tx, c.ID, models.ConsultationStatusMatched, models.ConsultationStatusScheduled, nil)
		if errors.Is(err, repositories.ErrStaleStatus) {
			return errNotAwaitingPayment
		}
		if err != nil {
			return err
		}

		if resp.Payment, err = s.payments.FindActiveByConsultation(tx, c.ID); err != nil {
			return err
		}
		resp.Consultation, err = s.findConsultation(tx, c.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	logger.Info("Payment confirmed", "order_id", req.OrderID, "payment_id", resp.Payment.ID)
	return &resp, nil
}

// ExpirePendingPayments - политика для брошенных оплат.
func (s *Service) ExpirePendingPayments(db *gorm.DB, olderThan time.Time) (int64, error) {
	return s.payments.ExpirePending(db, olderThan)
}

// ---------------- Messages ----------------

func (s *Service) partyConsultation(db *gorm.DB, actor Actor, id string) (*models.Consultation, error) {
	c, err := s.findConsultation(db, id)
	if err != nil {
		return nil, err
	}
	if !c.IsParty(actor.ID) {
		return nil, errNotParty
	}
	return c, nil
}

func (s *Service) ListMessages(db *gorm.DB, actor Actor, consultationID string) ([]models.Message, error) {
	c, err := s.partyConsultation(db, actor, consultationID)
	if err != nil {
		return nil, err
	}
	if !c.ChannelVisible() {
		return nil, errChannelInactive
	}
	return s.messages.FindByConsultation(db, c.ID)
}

func (s *Service) PostMessage(db *gorm.DB, actor Actor, consultationID string, req *dto.SendMessageRequest) (*models.Message, error) {
	c, err := s.partyConsultation(db, actor, consultationID)
	if err != nil {
		return nil, err
	}
	if !c.ChannelOpen() {
		return nil, errChannelInactive
	}
	msg := &models.Message{
		ConsultationID: c.ID,
		SenderID:       actor.ID,
		Body:           req.Body,
		FileURL:        req.FileURL,
	}
	if err := s.messages.Create(db, msg); err != nil {
		return nil, err
	}
	return msg, nil
}

func (s *Service) MarkMessagesRead(db *gorm.DB, actor Actor, consultationID string) (*dto.MarkReadResponse, error) {
	c, err := s.partyConsultation(db, actor, consultationID)
	if err != nil {
		return nil, err
	}
	updated, err := s.messages.MarkRead(db, c.ID, actor.ID, s.now())
	if err != nil {
		return nil, err
	}
	return &dto.MarkReadResponse{Updated: updated}, nil
}

// ---------------- Reviews ----------------

func (s *Service) CreateReview(db *gorm.DB, actor Actor, consultationID string, req *dto.SubmitReviewRequest) (*models.Review, error) {
	c, err := s.findConsultation(db, consultationID)
	if err != nil {
		return nil, err
	}
	if c.RequesterID != actor.ID {
		return nil, errNotRequester
	}
	if c.Status != models.ConsultationStatusCompleted || c.ConsultantID == nil {
		return nil, errNotCompleted
	}

	review := &models.Review{
		ConsultationID: c.ID,
		ReviewerID:     actor.ID,
		ConsultantID:   *c.ConsultantID,
		Rating:         req.Rating,
		Comment:        req.Comment,
	}
	if err := s.reviews.CreateReview(db, review); err != nil {
		if errors.Is(err, repositories.ErrReviewAlreadyExists) {
			return nil, errAlreadyReviewed
		}
		return nil, err
	}
	return review, nil
}

func (s *Service) GetReview(db *gorm.DB, actor Actor, consultationID string) (*models.Review, error) {
	c, err := s.findConsultation(db, consultationID)
	if err != nil {
		return nil, err
	}
	if !c.IsParty(actor.ID) && !actor.IsAdmin() {
		return nil, errNotParty
	}
	review, err := s.reviews.FindByConsultation(db, c.ID)
	if errors.Is(err, repositories.ErrReviewNotFound) {
		return nil, errReviewNotFound
	}
	return review, err
}

// ---------------- Seeding ----------------

// SeedUser - пользователь из конфигурации, пароль в открытом виде.
type SeedUser struct {
	Email    string
	Name     string
	Password string
	Role     models.UserRole
}

// SeedUsers создает недостающих пользователей. Существующие не трогаются.
func (s *Service) SeedUsers(db *gorm.DB, seeds []SeedUser) ([]models.User, error) {
	var users []models.User
	for _, seed := range seeds {
		email := strings.ToLower(strings.TrimSpace(seed.Email))
		existing, err := s.users.FindByEmail(db, email)
		if err == nil {
			users = append(users, *existing)
			continue
		}
		if !errors.Is(err, repositories.ErrUserNotFound) {
			return nil, err
		}

		if err := auth.ValidatePassword(seed.Password); err != nil {
			return nil, fmt.Errorf("seed user %s: %w", email, err)
		}
		hash, err := auth.HashPassword(seed.Password)
		if err != nil {
			return nil, err
		}
		user := &models.User{Email: email, Name: seed.Name, PasswordHash: hash, Role: seed.Role}
		if err := s.users.Create(db, user); err != nil {
			return nil, err
		}
		logger.Info("Seeded user", "email", email, "role", seed.Role)
		users = append(users, *user)
	}
	return users, nil
}
