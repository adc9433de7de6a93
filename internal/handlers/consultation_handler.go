package handlers

import (
	"net/http"

	"consultlink_backend/internal/services"
	"consultlink_backend/internal/services/dto"

	"github.com/gin-gonic/gin"
)

type ConsultationHandler struct {
	*BaseHandler
	consultationService services.ConsultationService
}

func NewConsultationHandler(base *BaseHandler, consultationService services.ConsultationService) *ConsultationHandler {
	return &ConsultationHandler{
		BaseHandler:         base,
		consultationService: consultationService,
	}
}

func (h *ConsultationHandler) RegisterRoutes(r *gin.RouterGroup) {
	consultations := r.Group("/consultations")
	consultations.Use(h.requireSession())
	{
		consultations.POST("", h.Create)
		consultations.GET("", h.List)
		consultations.GET("/incoming", h.ListIncoming)
		consultations.GET("/:id", h.Get)
		consultations.POST("/:id/accept", h.Accept)
		consultations.POST("/:id/reject", h.Reject)
		consultations.POST("/:id/complete", h.Complete)
		consultations.POST("/:id/cancel", h.Cancel)
	}
}

func (h *ConsultationHandler) Create(c *gin.Context) {
	sess, ok := h.GetSession(c)
	if !ok {
		return
	}
	var req dto.CreateConsultationRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	consultation, err := h.consultationService.Create(c.Request.Context(), sess, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, consultation)
}

func (h *ConsultationHandler) List(c *gin.Context) {
	sess, ok := h.GetSession(c)
	if !ok {
		return
	}
	var query dto.ConsultationListQuery
	if !h.BindAndValidate_Query(c, &query) {
		return
	}

	list, err := h.consultationService.List(c.Request.Context(), sess, &query)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"consultations": list, "total": len(list)})
}

func (h *ConsultationHandler) ListIncoming(c *gin.Context) {
	sess, ok := h.GetSession(c)
	if !ok {
		return
	}
	list, err := h.consultationService.ListIncoming(c.Request.Context(), sess)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"consultations": list, "total": len(list)})
}

func (h *ConsultationHandler) Get(c *gin.Context) {
	sess, ok := h.GetSession(c)
	if !ok {
		return
	}
	consultation, err := h.consultationService.Get(c.Request.Context(), sess, c.Param("id"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, consultation)
}

// Accept. Проигранная гонка отдается как 200 с outcome=already_matched.
func (h *ConsultationHandler) Accept(c *gin.Context) {
	sess, ok := h.GetSession(c)
	if !ok {
		return
	}
	result, err := h.consultationService.Accept(c.Request.Context(), sess, c.Param("id"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *ConsultationHandler) Reject(c *gin.Context) {
	sess, ok := h.GetSession(c)
	if !ok {
		return
	}
	var req dto.RejectConsultationRequest
	if !h.BindOptional_JSON(c, &req) {
		return
	}
	consultation, err := h.consultationService.Reject(c.Request.Context(), sess, c.Param("id"), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, consultation)
}

func (h *ConsultationHandler) Complete(c *gin.Context) {
	sess, ok := h.GetSession(c)
	if !ok {
		return
	}
	consultation, err := h.consultationService.MarkCompleted(c.Request.Context(), sess, c.Param("id"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, consultation)
}

func (h *ConsultationHandler) Cancel(c *gin.Context) {
	sess, ok := h.GetSession(c)
	if !ok {
		return
	}
	consultation, err := h.consultationService.Cancel(c.Request.Context(), sess, c.Param("id"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, consultation)
}
