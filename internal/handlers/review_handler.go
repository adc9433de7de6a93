package handlers

import (
	"net/http"

	"consultlink_backend/internal/services"
	"consultlink_backend/internal/services/dto"

	"github.com/gin-gonic/gin"
)

type ReviewHandler struct {
	*BaseHandler
	reviewService services.ReviewService
}

func NewReviewHandler(base *BaseHandler, reviewService services.ReviewService) *ReviewHandler {
	return &ReviewHandler{
		BaseHandler:   base,
		reviewService: reviewService,
	}
}

func (h *ReviewHandler) RegisterRoutes(r *gin.RouterGroup) {
	reviews := r.Group("/consultations/:id/review")
	reviews.Use(h.requireSession())
	{
		reviews.POST("", h.Submit)
		reviews.GET("", h.Get)
	}
}

func (h *ReviewHandler) Submit(c *gin.Context) {
	sess, ok := h.GetSession(c)
	if !ok {
		return
	}
	var req dto.SubmitReviewRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}
	review, err := h.reviewService.Submit(c.Request.Context(), sess, c.Param("id"), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, review)
}

func (h *ReviewHandler) Get(c *gin.Context) {
	sess, ok := h.GetSession(c)
	if !ok {
		return
	}
	review, err := h.reviewService.Get(c.Request.Context(), sess, c.Param("id"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, review)
}
