package backend

import (
	"errors"
	"fmt"
	"net/http"

	"consultlink_backend/internal/auth"
	"consultlink_backend/internal/gateway"
	"consultlink_backend/internal/logger"
	"consultlink_backend/internal/middleware"
	"consultlink_backend/internal/models"
	"consultlink_backend/internal/services/dto"
	"consultlink_backend/internal/validator"
	"consultlink_backend/pkg/contextkeys"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Handler - HTTP-слой эталонного бэкенда. Ошибки отдаются как {"detail": "..."}.
type Handler struct {
	service   *Service
	validator *validator.Validator
	tokens    *auth.TokenManager
}

func NewHandler(service *Service, v *validator.Validator, tokens *auth.TokenManager) *Handler {
	return &Handler{
		service:   service,
		validator: v,
		tokens:    tokens,
	}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/auth/login", h.Login)

	protected := r.Group("")
	protected.Use(middleware.AuthMiddleware(h.tokens))
	{
		consultations := protected.Group("/consultations")
		consultations.POST("", middleware.RequirePermission(auth.PermConsultationCreate), h.CreateConsultation)
		consultations.GET("", h.ListConsultations)
		consultations.GET("/incoming", middleware.RequirePermission(auth.PermConsultationMatch), h.ListIncoming)
		consultations.GET("/:id", h.GetConsultation)
		consultations.POST("/:id/accept", middleware.RequirePermission(auth.PermConsultationMatch), h.Accept)
		consultations.POST("/:id/reject", middleware.RequirePermission(auth.PermConsultationMatch), h.Reject)
		consultations.POST("/:id/complete", middleware.RequireRoles(models.UserRoleConsultant), h.Complete)
		consultations.POST("/:id/cancel", middleware.RequirePermission(auth.PermConsultationCancel), h.Cancel)

		consultations.GET("/:id/messages", h.ListMessages)
		consultations.POST("/:id/messages", middleware.RequirePermission(auth.PermMessageWrite), h.PostMessage)
		consultations.POST("/:id/messages/read", h.MarkRead)

		consultations.POST("/:id/review", middleware.RequirePermission(auth.PermReviewCreate), h.CreateReview)
		consultations.GET("/:id/review", h.GetReview)

		payments := protected.Group("/payments")
		payments.POST("", middleware.RequirePermission(auth.PermPaymentCreate), h.CreatePayment)
		payments.GET("", h.GetPayment)
		payments.POST("/confirm", middleware.RequirePermission(auth.PermPaymentCreate), h.ConfirmPayment)
	}
}

// ---------------- helpers ----------------

// getDB извлекает *gorm.DB (пул или транзакцию) из gin.Context
func (h *Handler) getDB(c *gin.Context) *gorm.DB {
	dbKey := string(contextkeys.DBContextKey)

	val, ok := c.Get(dbKey)
	if !ok {
		logger.CtxError(c.Request.Context(), "critical error: db key not found in context", "key", dbKey)
		panic("critical error: DBMiddleware did not set the db key")
	}
	db, ok := val.(*gorm.DB)
	if !ok {
		logger.CtxError(c.Request.Context(), "critical error: db in context is not *gorm.DB", "key", dbKey, "type", fmt.Sprintf("%T", val))
		panic("critical error: db in context has incorrect type")
	}
	return db.WithContext(c.Request.Context())
}

func actorOf(c *gin.Context) Actor {
	return Actor{ID: middleware.GetUserID(c), Role: middleware.GetRole(c)}
}

func (h *Handler) bind(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		logger.CtxWarn(c.Request.Context(), "Failed to bind JSON body", "error", err, "path", c.Request.URL.Path)
		c.JSON(http.StatusBadRequest, gin.H{"detail": gateway.DetailInvalidBody})
		return false
	}
	return h.validate(c, obj)
}

func (h *Handler) validate(c *gin.Context, obj interface{}) bool {
	if err := h.validator.Validate(obj); err != nil {
		var vErr *validator.ValidationError
		if errors.As(err, &vErr) {
			c.JSON(http.StatusBadRequest, gin.H{"detail": gateway.DetailValidationFailed, "errors": vErr.Errors})
		} else {
			h.fail(c, err)
		}
		return false
	}
	return true
}

func (h *Handler) fail(c *gin.Context, err error) {
	var rej *Rejection
	if errors.As(err, &rej) {
		logger.CtxDebug(c.Request.Context(), "Request rejected", "status", rej.Status, "detail", rej.Detail)
		c.JSON(rej.Status, gin.H{"detail": rej.Detail})
		return
	}
	logger.CtxWithError(c.Request.Context(), "Internal server error", err, "path", c.Request.URL.Path)
	c.JSON(http.StatusInternalServerError, gin.H{"detail": gateway.DetailInternal})
}

func (h *Handler) respond(c *gin.Context, status int, body interface{}, err error) {
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(status, body)
}

// ---------------- auth ----------------

func (h *Handler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if !h.bind(c, &req) {
		return
	}
	resp, err := h.service.Login(h.getDB(c), &req)
	h.respond(c, http.StatusOK, resp, err)
}

// ---------------- consultations ----------------

func (h *Handler) CreateConsultation(c *gin.Context) {
	var req dto.CreateConsultationRequest
	if !h.bind(c, &req) {
		return
	}
	consultation, err := h.service.CreateConsultation(h.getDB(c), actorOf(c), &req)
	h.respond(c, http.StatusCreated, consultation, err)
}

func (h *Handler) ListConsultations(c *gin.Context) {
	var query dto.ConsultationListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": gateway.DetailInvalidBody})
		return
	}
	if !h.validate(c, &query) {
		return
	}
	list, err := h.service.ListConsultations(h.getDB(c), actorOf(c), models.ConsultationStatus(query.Status))
	h.respond(c, http.StatusOK, nonNil(list), err)
}

func (h *Handler) ListIncoming(c *gin.Context) {
	list, err := h.service.ListIncoming(h.getDB(c), actorOf(c))
	h.respond(c, http.StatusOK, nonNil(list), err)
}

func (h *Handler) GetConsultation(c *gin.Context) {
	consultation, err := h.service.GetConsultation(h.getDB(c), actorOf(c), c.Param("id"))
	h.respond(c, http.StatusOK, consultation, err)
}

func (h *Handler) Accept(c *gin.Context) {
	consultation, err := h.service.Accept(h.getDB(c), actorOf(c), c.Param("id"))
	h.respond(c, http.StatusOK, consultation, err)
}

func (h *Handler) Reject(c *gin.Context) {
	var req dto.RejectConsultationRequest
	if c.Request.ContentLength != 0 && !h.bind(c, &req) {
		return
	}
	consultation, err := h.service.Reject(h.getDB(c), actorOf(c), c.Param("id"), req.Reason)
	h.respond(c, http.StatusOK, consultation, err)
}

func (h *Handler) Complete(c *gin.Context) {
	consultation, err := h.service.Complete(h.getDB(c), actorOf(c), c.Param("id"))
	h.respond(c, http.StatusOK, consultation, err)
}

func (h *Handler) Cancel(c *gin.Context) {
	consultation, err := h.service.Cancel(h.getDB(c), actorOf(c), c.Param("id"))
	h.respond(c, http.StatusOK, consultation, err)
}

// ---------------- payments ----------------

func (h *Handler) CreatePayment(c *gin.Context) {
	var req dto.CreatePaymentRequest
	if !h.bind(c, &req) {
		return
	}
	payment, err := h.service.CreatePayment(h.getDB(c), actorOf(c), &req)
	h.respond(c, http.StatusCreated, payment, err)
}

func (h *Handler) GetPayment(c *gin.Context) {
	var query dto.PaymentQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": gateway.DetailInvalidBody})
		return
	}
	if !h.validate(c, &query) {
		return
	}
	payment, err := h.service.GetPayment(h.getDB(c), actorOf(c), query.ConsultationID)
	h.respond(c, http.StatusOK, payment, err)
}

func (h *Handler) ConfirmPayment(c *gin.Context) {
	var req dto.ConfirmPaymentRequest
	if !h.bind(c, &req) {
		return
	}
	resp, err := h.service.ConfirmPayment(h.getDB(c), actorOf(c), &req)
	h.respond(c, http.StatusOK, resp, err)
}

// ---------------- messages ----------------

func (h *Handler) ListMessages(c *gin.Context) {
	msgs, err := h.service.ListMessages(h.getDB(c), actorOf(c), c.Param("id"))
	h.respond(c, http.StatusOK, nonNil(msgs), err)
}

func (h *Handler) PostMessage(c *gin.Context) {
	var req dto.SendMessageRequest
	if !h.bind(c, &req) {
		return
	}
	msg, err := h.service.PostMessage(h.getDB(c), actorOf(c), c.Param("id"), &req)
	h.respond(c, http.StatusCreated, msg, err)
}

func (h *Handler) MarkRead(c *gin.Context) {
	resp, err := h.service.MarkMessagesRead(h.getDB(c), actorOf(c), c.Param("id"))
	h.respond(c, http.StatusOK, resp, err)
}

// ---------------- reviews ----------------

func (h *Handler) CreateReview(c *gin.Context) {
	var req dto.SubmitReviewRequest
	if !h.bind(c, &req) {
		return
	}
	review, err := h.service.CreateReview(h.getDB(c), actorOf(c), c.Param("id"), &req)
	h.respond(c, http.StatusCreated, review, err)
}

func (h *Handler) GetReview(c *gin.Context) {
	review, err := h.service.GetReview(h.getDB(c), actorOf(c), c.Param("id"))
	h.respond(c, http.StatusOK, review, err)
}

// nonNil - пустой список отдается как [], а не null.
func nonNil[T any](list []T) []T {
	if list == nil {
		return []T{}
	}
	return list
}
