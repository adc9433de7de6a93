package ws

import (
	"context"
	"net/http"
	"time"

	"consultlink_backend/internal/logger"
	"consultlink_backend/internal/middleware"
	"consultlink_backend/internal/services"
	"consultlink_backend/pkg/apperrors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

type WebSocketHandler struct {
	Manager        *WebSocketManager
	MessageService services.MessageService
	PollInterval   time.Duration

	// HandleError отвечает на ошибку до апгрейда соединения.
	HandleError func(c *gin.Context, err error)
	// Translate сводит ошибку к сообщению для клиента уже по сокету.
	Translate func(err error) *apperrors.AppError

	upgrader websocket.Upgrader
}

func NewWebSocketHandler(
	manager *WebSocketManager,
	messageService services.MessageService,
	pollInterval time.Duration,
	handleError func(c *gin.Context, err error),
	translate func(err error) *apperrors.AppError,
	allowedOrigins []string,
) *WebSocketHandler {
	return &WebSocketHandler{
		Manager:        manager,
		MessageService: messageService,
		PollInterval:   pollInterval,
		HandleError:    handleError,
		Translate:      translate,
		// Сокет авторизуется cookie сессии, поэтому чужой Origin отклоняем.
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return middleware.OriginAllowed(allowedOrigins, r.Header.Get("Origin"))
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

func (h *WebSocketHandler) RegisterRoutes(r *gin.RouterGroup, requireSession gin.HandlerFunc) {
	r.GET("/ws/consultations/:id/messages", requireSession, h.ServeWS)
}

// ServeWS открывает поток сообщений консультации.
// Доступ проверяется первым опросом до апгрейда, чтобы ошибка ушла обычным JSON.
func (h *WebSocketHandler) ServeWS(c *gin.Context) {
	sess := middleware.GetSession(c)
	consultationID := c.Param("id")

	if _, err := h.MessageService.Poll(c.Request.Context(), sess, consultationID); err != nil {
		h.HandleError(c, err)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.CtxWarn(c.Request.Context(), "WebSocket upgrade error", "error", err)
		return
	}

	// Контекст запроса завершится вместе с хендлером, поэтому свой.
	reqCtx := c.Request.Context()
	ctx := logger.WithRequestID(context.Background(), logger.GetRequestID(reqCtx))
	ctx = logger.WithCorrelationID(ctx, logger.GetCorrelationID(reqCtx))
	ctx, cancel := context.WithCancel(ctx)
	client := &Client{
		ID:             uuid.NewString(),
		ConsultationID: consultationID,
		Session:        sess,
		Conn:           conn,
		Send:           make(chan any, 256),
		ctx:            ctx,
		cancel:         cancel,
		Manager:        h.Manager,
		MessageService: h.MessageService,
		Translate:      h.Translate,
	}

	h.Manager.register <- client
	logger.CtxInfo(ctx, "WebSocket client connected", "consultation_id", consultationID, "user_id", sess.UserID())

	go client.readPump()
	go client.writePump()
	go client.pollPump(h.PollInterval)
}
