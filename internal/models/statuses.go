package models

// UserRole - роль пользователя платформы
type UserRole string

const (
	UserRoleRequester  UserRole = "requester"
	UserRoleConsultant UserRole = "consultant"
	UserRoleAdmin      UserRole = "admin"
)

func (r UserRole) IsValid() bool {
	switch r {
	case UserRoleRequester, UserRoleConsultant, UserRoleAdmin:
		return true
	}
	return false
}

// ConsultationStatus - статус консультации
type ConsultationStatus string

const (
	ConsultationStatusRequested ConsultationStatus = "requested"
	ConsultationStatusMatched   ConsultationStatus = "matched"   // консультант назначен, оплата ожидается
	ConsultationStatusScheduled ConsultationStatus = "scheduled" // оплата подтверждена
	ConsultationStatusCompleted ConsultationStatus = "completed"
	ConsultationStatusCancelled ConsultationStatus = "cancelled"
)

// ConsultationType - категория консультации
type ConsultationType string

const (
	ConsultationTypeVisa        ConsultationType = "visa"
	ConsultationTypeLabor       ConsultationType = "labor"
	ConsultationTypeResidence   ConsultationType = "residence"
	ConsultationTypeImmigration ConsultationType = "immigration"
	ConsultationTypeCivil       ConsultationType = "civil"
	ConsultationTypeCriminal    ConsultationType = "criminal"
	ConsultationTypeFamily      ConsultationType = "family"
	ConsultationTypeBusiness    ConsultationType = "business"
	ConsultationTypeOther       ConsultationType = "other"
)

func (t ConsultationType) IsValid() bool {
	switch t {
	case ConsultationTypeVisa, ConsultationTypeLabor, ConsultationTypeResidence,
		ConsultationTypeImmigration, ConsultationTypeCivil, ConsultationTypeCriminal,
		ConsultationTypeFamily, ConsultationTypeBusiness, ConsultationTypeOther:
		return true
	}
	return false
}

// ConsultationMethod - канал проведения консультации
type ConsultationMethod string

const (
	ConsultationMethodMessage  ConsultationMethod = "message"
	ConsultationMethodDocument ConsultationMethod = "document"
	ConsultationMethodVoice    ConsultationMethod = "voice"
	ConsultationMethodVideo    ConsultationMethod = "video"
)

func (m ConsultationMethod) IsValid() bool {
	switch m {
	case ConsultationMethodMessage, ConsultationMethodDocument, ConsultationMethodVoice, ConsultationMethodVideo:
		return true
	}
	return false
}

// PaymentStatus - статус платежа
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusDone      PaymentStatus = "done"
	PaymentStatusFailed    PaymentStatus = "failed"
	PaymentStatusCancelled PaymentStatus = "cancelled"
)

// PaymentMethod - способ оплаты, выбранный в виджете
type PaymentMethod string

const (
	PaymentMethodCard           PaymentMethod = "card"
	PaymentMethodTransfer       PaymentMethod = "transfer"
	PaymentMethodVirtualAccount PaymentMethod = "virtual_account"
	PaymentMethodMobile         PaymentMethod = "mobile"
	PaymentMethodEasyPay        PaymentMethod = "easy_pay"
)

func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodCard, PaymentMethodTransfer, PaymentMethodVirtualAccount,
		PaymentMethodMobile, PaymentMethodEasyPay:
		return true
	}
	return false
}

// ConfirmStatusDone - маркер подтверждения, передаваемый в confirm.
const ConfirmStatusDone = "DONE"
