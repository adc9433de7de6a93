package ws

import (
	"context"
	"encoding/json"
	"time"

	"consultlink_backend/internal/logger"
	"consultlink_backend/internal/models"
	"consultlink_backend/internal/services"
	"consultlink_backend/internal/services/dto"
	"consultlink_backend/internal/session"
	"consultlink_backend/internal/workers"
	"consultlink_backend/pkg/apperrors"

	"github.com/gorilla/websocket"
)

const (
	ActionSendMessage = "send_message"
	ActionMarkAsRead  = "mark_as_read"
	ActionMessages    = "messages"
	ActionError       = "error"

	writeWait = 10 * time.Second
)

type IncomingWSMessage struct {
	Action string          `json:"action"`
	Data   json.RawMessage `json:"data"`
}

type OutgoingWSMessage struct {
	Action string `json:"action"`
	Data   any    `json:"data"`
}

// Client - один открытый просмотр переписки консультации.
// Пока он жив, работает поллер; закрытие отменяет ctx и останавливает опрос.
type Client struct {
	ID             string
	ConsultationID string
	Session        *session.Session
	Conn           *websocket.Conn
	Send           chan any

	ctx    context.Context
	cancel context.CancelFunc

	Manager        *WebSocketManager
	MessageService services.MessageService
	Translate      func(err error) *apperrors.AppError
}

func (c *Client) readPump() {
	defer func() {
		c.Manager.unregister <- c
		c.Conn.Close()
	}()

	for {
		_, msgBytes, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.CtxWarn(c.ctx, "WebSocket read error", "error", err)
			}
			break
		}

		var msg IncomingWSMessage
		if err := json.Unmarshal(msgBytes, &msg); err != nil {
			logger.CtxWarn(c.ctx, "Failed to parse message", "error", err)
			continue
		}

		c.handleMessage(msg)
	}
}

func (c *Client) writePump() {
	defer c.Conn.Close()
	for msg := range c.Send {
		_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.Conn.WriteJSON(msg); err != nil {
			logger.CtxWarn(c.ctx, "WebSocket write error", "error", err)
			return
		}
	}
	_ = c.Conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
}

// pollPump - опрос переписки, пока открыт просмотр.
func (c *Client) pollPump(interval time.Duration) {
	poller := workers.NewMessagePoller(interval, func(ctx context.Context) ([]models.Message, error) {
		return c.MessageService.Poll(ctx, c.Session, c.ConsultationID)
	})
	poller.Run(c.ctx,
		func(fresh []models.Message) {
			c.Manager.BroadcastToClient(c.ID, OutgoingWSMessage{Action: ActionMessages, Data: fresh})
		},
		func(err error) bool {
			appErr := c.Translate(err)
			c.Manager.BroadcastToClient(c.ID, OutgoingWSMessage{Action: ActionError, Data: appErr})
			// Сеть может вернуться, а отказ бэкенда - нет
			return appErr.Code == apperrors.CodeNetworkUnavailable
		},
	)
}

// Централизованный обработчик
func (c *Client) handleMessage(msg IncomingWSMessage) {
	switch msg.Action {

	case ActionSendMessage:
		var input dto.SendMessageRequest
		if err := json.Unmarshal(msg.Data, &input); err != nil {
			c.reply(ActionError, apperrors.NewBadRequestError("Invalid send_message payload"))
			return
		}
		created, err := c.MessageService.Send(c.ctx, c.Session, c.ConsultationID, &input)
		if err != nil {
			c.reply(ActionError, c.Translate(err))
			return
		}
		// Отправителю и остальным зрителям сразу; поллеры отфильтруют дубль.
		c.Manager.BroadcastToConsultation(c.ConsultationID, OutgoingWSMessage{
			Action: ActionMessages,
			Data:   []models.Message{*created},
		})

	case ActionMarkAsRead:
		resp, err := c.MessageService.MarkRead(c.ctx, c.Session, c.ConsultationID)
		if err != nil {
			c.reply(ActionError, c.Translate(err))
			return
		}
		c.reply(ActionMarkAsRead, resp)

	default:
		logger.CtxDebug(c.ctx, "Unhandled action", "action", msg.Action)
	}
}

func (c *Client) reply(action string, data any) {
	c.Manager.BroadcastToClient(c.ID, OutgoingWSMessage{Action: action, Data: data})
}
