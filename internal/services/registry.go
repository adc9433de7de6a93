package services

import (
	"consultlink_backend/internal/paygate"
	"consultlink_backend/internal/session"
	"consultlink_backend/internal/validator"
)

// ServiceContainer содержит все сервисы оркестратора.
type ServiceContainer struct {
	AuthService         AuthService
	ConsultationService ConsultationService
	PaymentService      PaymentService
	MessageService      MessageService
	ReviewService       ReviewService
	SupportNotifier     SupportNotifier
}

// NewServiceContainer собирает сервисы поверх одного клиента бэкенда.
func NewServiceContainer(
	gw Caller,
	store session.Store,
	widget *paygate.Widget,
	notifier SupportNotifier,
	v *validator.Validator,
) *ServiceContainer {
	api := NewBackendAPI(gw)
	return &ServiceContainer{
		AuthService:         NewAuthService(api, store, v),
		ConsultationService: NewConsultationService(api, v),
		PaymentService:      NewPaymentService(api, widget, notifier, v),
		MessageService:      NewMessageService(api, v),
		ReviewService:       NewReviewService(api, v),
		SupportNotifier:     notifier,
	}
}
