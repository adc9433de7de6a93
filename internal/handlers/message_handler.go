package handlers

import (
	"net/http"

	"consultlink_backend/internal/services"
	"consultlink_backend/internal/services/dto"

	"github.com/gin-gonic/gin"
)

type MessageHandler struct {
	*BaseHandler
	messageService services.MessageService
}

func NewMessageHandler(base *BaseHandler, messageService services.MessageService) *MessageHandler {
	return &MessageHandler{
		BaseHandler:    base,
		messageService: messageService,
	}
}

func (h *MessageHandler) RegisterRoutes(r *gin.RouterGroup) {
	messages := r.Group("/consultations/:id/messages")
	messages.Use(h.requireSession())
	{
		messages.GET("", h.List)
		messages.POST("", h.Send)
		messages.POST("/read", h.MarkRead)
	}
}

func (h *MessageHandler) List(c *gin.Context) {
	sess, ok := h.GetSession(c)
	if !ok {
		return
	}
	msgs, err := h.messageService.Poll(c.Request.Context(), sess, c.Param("id"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": msgs, "total": len(msgs)})
}

func (h *MessageHandler) Send(c *gin.Context) {
	sess, ok := h.GetSession(c)
	if !ok {
		return
	}
	var req dto.SendMessageRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}
	msg, err := h.messageService.Send(c.Request.Context(), sess, c.Param("id"), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, msg)
}

func (h *MessageHandler) MarkRead(c *gin.Context) {
	sess, ok := h.GetSession(c)
	if !ok {
		return
	}
	resp, err := h.messageService.MarkRead(c.Request.Context(), sess, c.Param("id"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
