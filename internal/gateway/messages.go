package gateway

import (
	"net/http"

	"consultlink_backend/pkg/apperrors"

	"golang.org/x/text/language"
)

// classification - к какому коду таксономии относится detail бэкенда.
type classification struct {
	code   apperrors.ErrorCode
	domain string
	status int
}

var detailCodes = map[string]classification{
	DetailInvalidBody:          {apperrors.CodeValidationFailed, "request", http.StatusBadRequest},
	DetailValidationFailed:     {apperrors.CodeValidationFailed, "validation", http.StatusBadRequest},
	DetailMissingToken:         {apperrors.CodeUnauthenticated, "auth", http.StatusUnauthorized},
	DetailInvalidToken:         {apperrors.CodeUnauthenticated, "auth", http.StatusUnauthorized},
	DetailInvalidCredentials:   {apperrors.CodeInvalidCredentials, "auth", http.StatusUnauthorized},
	DetailForbidden:            {apperrors.CodeForbidden, "auth", http.StatusForbidden},
	DetailNotParty:             {apperrors.CodeForbidden, "consultation", http.StatusForbidden},
	DetailConsultationNotFound: {apperrors.CodeNotFound, "consultation", http.StatusNotFound},
	DetailPaymentNotFound:      {apperrors.CodeNotFound, "payment", http.StatusNotFound},
	DetailReviewNotFound:       {apperrors.CodeNotFound, "review", http.StatusNotFound},
	DetailAlreadyMatched:       {apperrors.CodeAlreadyMatched, "consultation", http.StatusConflict},
	DetailAlreadyRejected:      {apperrors.CodeConflict, "consultation", http.StatusConflict},
	DetailInvalidTransition:    {apperrors.CodeInvalidTransition, "consultation", http.StatusConflict},
	DetailPaymentExists:        {apperrors.CodeConflict, "payment", http.StatusConflict},
	DetailAmountMismatch:       {apperrors.CodeAmountMismatch, "payment", http.StatusUnprocessableEntity},
	DetailNotAwaitingPayment:   {apperrors.CodeInvalidTransition, "payment", http.StatusConflict},
	DetailUnsupportedConfirm:   {apperrors.CodeValidationFailed, "payment", http.StatusBadRequest},
	DetailPaymentKeyMismatch:   {apperrors.CodeConflict, "payment", http.StatusConflict},
	DetailPaymentNotPending:    {apperrors.CodeConflict, "payment", http.StatusConflict},
	DetailChannelInactive:      {apperrors.CodeChannelInactive, "message", http.StatusConflict},
	DetailNotCompleted:         {apperrors.CodeNotEligible, "review", http.StatusForbidden},
	DetailNotRequester:         {apperrors.CodeNotEligible, "review", http.StatusForbidden},
	DetailAlreadyReviewed:      {apperrors.CodeAlreadyReviewed, "review", http.StatusConflict},
}

// catalog - сообщения одного языка.
type catalog struct {
	details         map[string]string
	fallback        string
	network         string
	unauthenticated string
}

var supported = []language.Tag{language.English, language.Korean, language.Russian}

var catalogs = map[language.Tag]catalog{
	language.English: {
		fallback:        "Something went wrong. Please try again later.",
		network:         "The service is temporarily unreachable. Please try again.",
		unauthenticated: "Please sign in to continue.",
		details: map[string]string{
			DetailInvalidBody:          "The request could not be read.",
			DetailValidationFailed:     "Some fields are invalid. Please check the form.",
			DetailMissingToken:         "Please sign in to continue.",
			DetailInvalidToken:         "Your session has expired. Please sign in again.",
			DetailInvalidCredentials:   "Invalid email or password.",
			DetailForbidden:            "You do not have permission to do this.",
			DetailNotParty:             "You are not a participant of this consultation.",
			DetailConsultationNotFound: "The consultation was not found.",
			DetailPaymentNotFound:      "The payment was not found.",
			DetailReviewNotFound:       "The review was not found.",
			DetailAlreadyMatched:       "This consultation has already been taken by another consultant.",
			DetailAlreadyRejected:      "You have already declined this consultation.",
			DetailInvalidTransition:    "This action is not available for the consultation in its current state.",
			DetailPaymentExists:        "A payment for this consultation already exists.",
			DetailAmountMismatch:       "The paid amount does not match the consultation amount.",
			DetailNotAwaitingPayment:   "This consultation is not awaiting payment.",
			DetailUnsupportedConfirm:   "The payment confirmation is not valid.",
			DetailPaymentKeyMismatch:   "The payment confirmation does not match the recorded payment.",
			DetailPaymentNotPending:    "This payment can no longer be confirmed.",
			DetailChannelInactive:      "Messaging is available only after a consultant accepts the consultation.",
			DetailNotCompleted:         "You can leave a review once the consultation is completed.",
			DetailNotRequester:         "Only the requester can review this consultation.",
			DetailAlreadyReviewed:      "You have already reviewed this consultation.",
		},
	},
	language.Korean: {
		fallback:        "문제가 발생했습니다. 잠시 후 다시 시도해 주세요.",
		network:         "서비스에 일시적으로 연결할 수 없습니다. 다시 시도해 주세요.",
		unauthenticated: "계속하려면 로그인해 주세요.",
		details: map[string]string{
			DetailInvalidBody:          "요청을 읽을 수 없습니다.",
			DetailValidationFailed:     "입력값을 확인해 주세요.",
			DetailMissingToken:         "계속하려면 로그인해 주세요.",
			DetailInvalidToken:         "세션이 만료되었습니다. 다시 로그인해 주세요.",
			DetailInvalidCredentials:   "이메일 또는 비밀번호가 올바르지 않습니다.",
			DetailForbidden:            "권한이 없습니다.",
			DetailNotParty:             "이 상담의 참여자가 아닙니다.",
			DetailConsultationNotFound: "상담을 찾을 수 없습니다.",
			DetailPaymentNotFound:      "결제 정보를 찾을 수 없습니다.",
			DetailReviewNotFound:       "후기를 찾을 수 없습니다.",
			DetailAlreadyMatched:       "이미 다른 상담사가 수락한 상담입니다.",
			DetailAlreadyRejected:      "이미 거절한 상담입니다.",
			DetailInvalidTransition:    "현재 상태에서는 이 작업을 할 수 없습니다.",
			DetailPaymentExists:        "이 상담의 결제가 이미 존재합니다.",
			DetailAmountMismatch:       "결제 금액이 상담 금액과 일치하지 않습니다.",
			DetailNotAwaitingPayment:   "결제 대기 중인 상담이 아닙니다.",
			DetailUnsupportedConfirm:   "결제 승인 정보가 올바르지 않습니다.",
			DetailPaymentKeyMismatch:   "결제 승인 정보가 기록된 결제와 일치하지 않습니다.",
			DetailPaymentNotPending:    "이 결제는 더 이상 승인할 수 없습니다.",
			DetailChannelInactive:      "상담사가 수락한 후에 메시지를 보낼 수 있습니다.",
			DetailNotCompleted:         "상담이 완료된 후에 후기를 남길 수 있습니다.",
			DetailNotRequester:         "상담 신청자만 후기를 남길 수 있습니다.",
			DetailAlreadyReviewed:      "이미 후기를 남겼습니다.",
		},
	},
	language.Russian: {
		fallback:        "Что-то пошло не так. Попробуйте позже.",
		network:         "Сервис временно недоступен. Попробуйте еще раз.",
		unauthenticated: "Войдите, чтобы продолжить.",
		details: map[string]string{
			DetailInvalidBody:          "Не удалось прочитать запрос.",
			DetailValidationFailed:     "Проверьте правильность заполнения полей.",
			DetailMissingToken:         "Войдите, чтобы продолжить.",
			DetailInvalidToken:         "Сессия истекла. Войдите снова.",
			DetailInvalidCredentials:   "Неверный email или пароль.",
			DetailForbidden:            "Недостаточно прав.",
			DetailNotParty:             "Вы не участник этой консультации.",
			DetailConsultationNotFound: "Консультация не найдена.",
			DetailPaymentNotFound:      "Платеж не найден.",
			DetailReviewNotFound:       "Отзыв не найден.",
			DetailAlreadyMatched:       "Эту консультацию уже принял другой консультант.",
			DetailAlreadyRejected:      "Вы уже отклонили эту консультацию.",
			DetailInvalidTransition:    "Действие недоступно в текущем статусе консультации.",
			DetailPaymentExists:        "Платеж по этой консультации уже создан.",
			DetailAmountMismatch:       "Сумма оплаты не совпадает с суммой консультации.",
			DetailNotAwaitingPayment:   "Консультация не ожидает оплаты.",
			DetailUnsupportedConfirm:   "Некорректное подтверждение платежа.",
			DetailPaymentKeyMismatch:   "Подтверждение не совпадает с записанным платежом.",
			DetailPaymentNotPending:    "Этот платеж больше нельзя подтвердить.",
			DetailChannelInactive:      "Переписка доступна после того, как консультант примет запрос.",
			DetailNotCompleted:         "Отзыв можно оставить после завершения консультации.",
			DetailNotRequester:         "Отзыв может оставить только заявитель.",
			DetailAlreadyReviewed:      "Вы уже оставили отзыв.",
		},
	},
}

// Translator - граница перевода: сырой detail бэкенда -> код таксономии + сообщение.
// Несопоставленные detail всегда получают фиксированный fallback.
type Translator struct {
	matcher language.Matcher
}

func NewTranslator() *Translator {
	return &Translator{matcher: language.NewMatcher(supported)}
}

func (t *Translator) catalogFor(acceptLanguage string) catalog {
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return catalogs[language.English]
	}
	_, idx, _ := t.matcher.Match(tags...)
	return catalogs[supported[idx]]
}

// Message возвращает локализованное сообщение для detail или fallback.
func (t *Translator) Message(detail, acceptLanguage string) string {
	cat := t.catalogFor(acceptLanguage)
	if msg, ok := cat.details[detail]; ok {
		return msg
	}
	return cat.fallback
}

// Translate сводит любую ошибку к *apperrors.AppError закрытой таксономии.
func (t *Translator) Translate(err error, acceptLanguage string) *apperrors.AppError {
	if err == nil {
		return nil
	}
	if appErr, ok := apperrors.AsAppError(err); ok {
		return appErr
	}

	gwErr, ok := AsError(err)
	if !ok {
		return apperrors.InternalError(err)
	}

	cat := t.catalogFor(acceptLanguage)

	switch gwErr.Kind {
	case KindUnauthenticated:
		return apperrors.Wrap(err, apperrors.CodeUnauthenticated, "auth", cat.unauthenticated, http.StatusUnauthorized)
	case KindNetworkUnavailable:
		appErr := apperrors.ErrNetworkUnavailable(err)
		appErr.Message = cat.network
		return appErr
	}

	message, mapped := cat.details[gwErr.RawDetail]
	if !mapped {
		message = cat.fallback
	}

	if cls, ok := detailCodes[gwErr.RawDetail]; ok {
		return apperrors.Wrap(err, cls.code, cls.domain, message, cls.status)
	}

	code, domain, status := classifyStatus(gwErr.Status)
	if status == http.StatusUnauthorized {
		message = cat.unauthenticated
	}
	return apperrors.Wrap(err, code, domain, message, status)
}

// classifyStatus - для detail без записи в таблице решает статус ответа.
func classifyStatus(status int) (apperrors.ErrorCode, string, int) {
	switch status {
	case http.StatusUnauthorized:
		return apperrors.CodeUnauthenticated, "auth", http.StatusUnauthorized
	case http.StatusForbidden:
		return apperrors.CodeForbidden, "auth", http.StatusForbidden
	case http.StatusNotFound:
		return apperrors.CodeNotFound, "resource", http.StatusNotFound
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return apperrors.CodeValidationFailed, "validation", status
	}
	if status >= 400 && status < 600 {
		return apperrors.CodeBackendRejected, "gateway", status
	}
	return apperrors.CodeBackendRejected, "gateway", http.StatusBadGateway
}
