package apperrors

// ErrorCode - тип для кодов ошибок
type ErrorCode string

// Общие, не-доменные коды ошибок
const (
	// Системные и неизвестные ошибки
	CodeInternalError        ErrorCode = "INTERNAL_ERROR"
	CodeDatabaseError        ErrorCode = "DATABASE_ERROR"
	CodeExternalServiceError ErrorCode = "EXTERNAL_SERVICE_ERROR"

	// Общие ошибки бизнес-логики
	CodeNotFound         ErrorCode = "NOT_FOUND"
	CodeAlreadyExists    ErrorCode = "ALREADY_EXISTS"
	CodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	CodeConflict         ErrorCode = "CONFLICT"

	// Аутентификация и Авторизация (они сквозные)
	CodeUnauthenticated    ErrorCode = "UNAUTHENTICATED"
	CodeForbidden          ErrorCode = "FORBIDDEN"
	CodeInvalidCredentials ErrorCode = "INVALID_CREDENTIALS"
	CodeInvalidToken       ErrorCode = "INVALID_TOKEN"
)

// Коды жизненного цикла консультации
const (
	CodeInvalidTransition ErrorCode = "INVALID_TRANSITION"
	CodeAlreadyMatched    ErrorCode = "ALREADY_MATCHED"
	CodeAlreadyReviewed   ErrorCode = "ALREADY_REVIEWED"
	CodeNotEligible       ErrorCode = "NOT_ELIGIBLE"
	CodeChannelInactive   ErrorCode = "CHANNEL_INACTIVE"
)

// Коды оплаты. Нарушения целостности всегда фатальны.
const (
	CodeMalformedCallback         ErrorCode = "MALFORMED_CALLBACK"
	CodeAmountMismatch            ErrorCode = "AMOUNT_MISMATCH"
	CodePaymentFinalizationFailed ErrorCode = "PAYMENT_FINALIZATION_FAILED"
)

// Коды транспорта до бэкенда
const (
	CodeNetworkUnavailable ErrorCode = "NETWORK_UNAVAILABLE"
	CodeBackendRejected    ErrorCode = "BACKEND_REJECTED"
)
