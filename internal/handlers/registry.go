package handlers

// AppHandlers содержит все хэндлеры оркестратора.
type AppHandlers struct {
	AuthHandler         *AuthHandler
	ConsultationHandler *ConsultationHandler
	PaymentHandler      *PaymentHandler
	MessageHandler      *MessageHandler
	ReviewHandler       *ReviewHandler
}
