package handlers

import (
	"consultlink_backend/internal/gateway"
	"consultlink_backend/internal/logger"
	"consultlink_backend/internal/middleware"
	"consultlink_backend/internal/services"
	"consultlink_backend/internal/session"
	"consultlink_backend/internal/validator"
	"consultlink_backend/pkg/apperrors"

	"github.com/gin-gonic/gin"
)

// ============================================================================
// 1. Базовая структура обработчика
// ============================================================================

type BaseHandler struct {
	validator  *validator.Validator
	translator *gateway.Translator
	auth       services.AuthService
	sessions   middleware.SessionOptions
}

func NewBaseHandler(
	v *validator.Validator,
	translator *gateway.Translator,
	authService services.AuthService,
	sessions middleware.SessionOptions,
) *BaseHandler {
	return &BaseHandler{
		validator:  v,
		translator: translator,
		auth:       authService,
		sessions:   sessions,
	}
}

// ============================================================================
// 2. Методы привязки и валидации (с контекстным логгированием)
// ============================================================================

func (h *BaseHandler) BindAndValidate_JSON(c *gin.Context, obj interface{}) bool {
	ctx := c.Request.Context()

	if err := c.ShouldBindJSON(obj); err != nil {
		logger.CtxWithError(ctx, "Failed to bind JSON body", err, "path", c.Request.URL.Path)
		apperrors.HandleError(c, apperrors.NewBadRequestError("Invalid request body"))
		return false
	}
	return h.validate(c, obj)
}

func (h *BaseHandler) BindAndValidate_Query(c *gin.Context, obj interface{}) bool {
	ctx := c.Request.Context()

	if err := c.ShouldBindQuery(obj); err != nil {
		logger.CtxWithError(ctx, "Failed to bind query params", err, "path", c.Request.URL.Path)
		apperrors.HandleError(c, apperrors.NewBadRequestError("Invalid query parameters"))
		return false
	}
	return h.validate(c, obj)
}

// BindOptional_JSON - тело необязательно, пустой запрос оставляет obj нулевым.
func (h *BaseHandler) BindOptional_JSON(c *gin.Context, obj interface{}) bool {
	if c.Request.ContentLength == 0 {
		return h.validate(c, obj)
	}
	return h.BindAndValidate_JSON(c, obj)
}

func (h *BaseHandler) validate(c *gin.Context, obj interface{}) bool {
	ctx := c.Request.Context()

	if err := h.validator.Validate(obj); err != nil {
		if vErr, ok := err.(*validator.ValidationError); ok {
			logger.CtxWarn(ctx, "Validation failed", "errors", vErr.Errors, "path", c.Request.URL.Path)
			apperrors.HandleError(c, apperrors.ValidationError(vErr.Errors))
		} else {
			logger.CtxWithError(ctx, "Internal validator error", err, "path", c.Request.URL.Path)
			apperrors.HandleError(c, apperrors.InternalError(err))
		}
		return false
	}
	return true
}

// ============================================================================
// 3. Обработчики ошибок (с контекстным логгированием)
// ============================================================================

// HandleServiceError сводит ошибку к одному сообщению на языке клиента.
// 401 от бэкенда очищает сессию и отправляет на страницу входа.
func (h *BaseHandler) HandleServiceError(c *gin.Context, err error) {
	ctx := c.Request.Context()
	appErr := h.translator.Translate(err, c.GetHeader("Accept-Language"))

	if appErr.Code == apperrors.CodeUnauthenticated {
		logger.CtxWarn(ctx, "Backend rejected session", "path", c.Request.URL.Path)
		h.auth.Invalidate(ctx, middleware.GetSession(c))
		middleware.AbortUnauthenticated(c, h.sessions, appErr)
		return
	}

	if appErr.HTTPCode >= 500 {
		logger.CtxWithError(ctx, "Service error", err, "code", appErr.Code, "path", c.Request.URL.Path)
	} else {
		logger.CtxWarn(ctx, "Service error",
			"code", appErr.Code,
			"error", appErr.Message,
			"path", c.Request.URL.Path,
		)
	}
	apperrors.HandleError(c, appErr)
}

// ============================================================================
// 4. Вспомогательные функции
// ============================================================================

// GetSession - сессия, загруженная SessionMiddleware. Без нее отвечает 401.
func (h *BaseHandler) GetSession(c *gin.Context) (*session.Session, bool) {
	sess := middleware.GetSession(c)
	if sess == nil {
		logger.CtxWarn(c.Request.Context(), "Unauthorized access: no session",
			"path", c.Request.URL.Path,
			"ip", c.ClientIP(),
		)
		middleware.AbortUnauthenticated(c, h.sessions, apperrors.ErrSessionExpired)
		return nil, false
	}
	return sess, true
}

func (h *BaseHandler) requireSession() gin.HandlerFunc {
	return middleware.RequireSession(h.sessions)
}

// RequireSession - то же для маршрутов вне пакета (websocket).
func (h *BaseHandler) RequireSession() gin.HandlerFunc {
	return h.requireSession()
}

// TranslateError - перевод ошибки без HTTP ответа, язык по умолчанию.
func (h *BaseHandler) TranslateError(err error) *apperrors.AppError {
	return h.translator.Translate(err, "")
}
