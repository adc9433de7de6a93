package services

import (
	"context"

	"consultlink_backend/internal/gateway"
	"consultlink_backend/internal/models"
	"consultlink_backend/internal/services/dto"
	"consultlink_backend/internal/session"
	"consultlink_backend/internal/validator"
	"consultlink_backend/pkg/apperrors"
)

type MessageService interface {
	Send(ctx context.Context, sess *session.Session, consultationID string, req *dto.SendMessageRequest) (*models.Message, error)
	// Poll возвращает всю переписку по возрастанию created_at, при равенстве по id.
	Poll(ctx context.Context, sess *session.Session, consultationID string) ([]models.Message, error)
	MarkRead(ctx context.Context, sess *session.Session, consultationID string) (*dto.MarkReadResponse, error)
}

type messageService struct {
	api       *BackendAPI
	validator *validator.Validator
}

func NewMessageService(api *BackendAPI, v *validator.Validator) MessageService {
	return &messageService{
		api:       api,
		validator: v,
	}
}

func (s *messageService) Send(ctx context.Context, sess *session.Session, consultationID string, req *dto.SendMessageRequest) (*models.Message, error) {
	if err := requireSession(sess); err != nil {
		return nil, err
	}
	if err := validate(s.validator, req); err != nil {
		return nil, err
	}

	c, err := s.partyConsultation(ctx, sess, consultationID)
	if err != nil {
		return nil, err
	}
	if !c.ChannelOpen() {
		return nil, apperrors.ErrChannelInactive.WithDetails(map[string]string{"status": string(c.Status)})
	}

	msg, err := s.api.PostMessage(ctx, sess, consultationID, req)
	if err != nil {
		return nil, channelError(err)
	}
	return msg, nil
}

func (s *messageService) Poll(ctx context.Context, sess *session.Session, consultationID string) ([]models.Message, error) {
	if err := requireSession(sess); err != nil {
		return nil, err
	}
	c, err := s.partyConsultation(ctx, sess, consultationID)
	if err != nil {
		return nil, err
	}
	if !c.ChannelVisible() {
		return nil, apperrors.ErrChannelInactive.WithDetails(map[string]string{"status": string(c.Status)})
	}

	msgs, err := s.api.ListMessages(ctx, sess, consultationID)
	if err != nil {
		return nil, channelError(err)
	}
	SortMessages(msgs)
	return msgs, nil
}

func (s *messageService) MarkRead(ctx context.Context, sess *session.Session, consultationID string) (*dto.MarkReadResponse, error) {
	if err := requireSession(sess); err != nil {
		return nil, err
	}
	if _, err := s.partyConsultation(ctx, sess, consultationID); err != nil {
		return nil, err
	}
	resp, err := s.api.MarkMessagesRead(ctx, sess, consultationID)
	if err != nil {
		return nil, channelError(err)
	}
	return resp, nil
}

func (s *messageService) partyConsultation(ctx context.Context, sess *session.Session, consultationID string) (*models.Consultation, error) {
	c, err := s.api.GetConsultation(ctx, sess, consultationID)
	if err != nil {
		return nil, err
	}
	if !c.IsParty(sess.UserID()) {
		return nil, apperrors.ErrNotParty
	}
	return c, nil
}

// channelError - статус мог смениться между чтением и записью.
func channelError(err error) error {
	switch gateway.DetailOf(err) {
	case gateway.DetailChannelInactive:
		return apperrors.ErrChannelInactive.WithError(err)
	case gateway.DetailNotParty:
		return apperrors.ErrNotParty.WithError(err)
	}
	return err
}
