package gateway

// Строки detail, которые возвращает бэкенд. Это часть контракта:
// каждая имеет запись в таблице переводов.
const (
	DetailInvalidBody          = "invalid request body"
	DetailValidationFailed     = "validation failed"
	DetailMissingToken         = "authorization header missing or invalid"
	DetailInvalidToken         = "invalid token"
	DetailInvalidCredentials   = "invalid email or password"
	DetailForbidden            = "access denied"
	DetailNotParty             = "not a participant of this consultation"
	DetailConsultationNotFound = "consultation not found"
	DetailPaymentNotFound      = "payment not found"
	DetailReviewNotFound       = "review not found"
	DetailAlreadyMatched       = "consultation already matched"
	DetailAlreadyRejected      = "consultation already rejected"
	DetailInvalidTransition    = "invalid status transition"
	DetailPaymentExists        = "payment already exists"
	DetailAmountMismatch       = "amount mismatch"
	DetailNotAwaitingPayment   = "consultation is not awaiting payment"
	DetailUnsupportedConfirm   = "unsupported confirm status"
	DetailPaymentKeyMismatch   = "payment key mismatch"
	DetailPaymentNotPending    = "payment is not pending"
	DetailChannelInactive      = "messaging channel is not active"
	DetailNotCompleted         = "consultation is not completed"
	DetailNotRequester         = "only the requester can review"
	DetailAlreadyReviewed      = "already reviewed"
	DetailInternal             = "internal error"
)
