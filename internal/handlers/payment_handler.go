package handlers

import (
	"net/http"

	"consultlink_backend/internal/services"
	"consultlink_backend/internal/services/dto"

	"github.com/gin-gonic/gin"
)

type PaymentHandler struct {
	*BaseHandler
	paymentService services.PaymentService
}

func NewPaymentHandler(base *BaseHandler, paymentService services.PaymentService) *PaymentHandler {
	return &PaymentHandler{
		BaseHandler:    base,
		paymentService: paymentService,
	}
}

func (h *PaymentHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/consultations/:id/checkout", h.requireSession(), h.Checkout)

	// Сюда возвращает браузер после страницы шлюза. Cookie сессии переживает редирект.
	payments := r.Group("/payments")
	payments.Use(h.requireSession())
	{
		payments.GET("/success", h.Success)
		payments.GET("/fail", h.Fail)
	}
}

func (h *PaymentHandler) Checkout(c *gin.Context) {
	sess, ok := h.GetSession(c)
	if !ok {
		return
	}
	var req dto.InitiatePaymentRequest
	if !h.BindOptional_JSON(c, &req) {
		return
	}

	checkout, err := h.paymentService.Initiate(c.Request.Context(), sess, c.Param("id"), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, checkout)
}

func (h *PaymentHandler) Success(c *gin.Context) {
	sess, ok := h.GetSession(c)
	if !ok {
		return
	}
	result, err := h.paymentService.ReconcileSuccess(c.Request.Context(), sess, c.Request.URL.Query())
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *PaymentHandler) Fail(c *gin.Context) {
	sess, ok := h.GetSession(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, h.paymentService.ReconcileFailure(c.Request.Context(), sess, c.Request.URL.Query()))
}
