package workers

import (
	"context"
	"time"

	"consultlink_backend/internal/logger"
	"consultlink_backend/internal/models"
	"consultlink_backend/internal/services"
)

const messagePollerName = "message_poller"

// FetchFunc возвращает текущую переписку целиком.
type FetchFunc func(ctx context.Context) ([]models.Message, error)

// MessagePoller - опрос переписки с фиксированным интервалом, пока открыт просмотр.
// Наружу отдаются только сообщения, которых еще не было.
type MessagePoller struct {
	interval time.Duration
	fetch    FetchFunc
	view     *services.MessageView
}

func NewMessagePoller(interval time.Duration, fetch FetchFunc) *MessagePoller {
	return &MessagePoller{
		interval: interval,
		fetch:    fetch,
		view:     services.NewMessageView(),
	}
}

// View - накопленная переписка.
func (p *MessagePoller) View() *services.MessageView {
	return p.view
}

// Run опрашивает сразу и затем каждые interval до отмены ctx.
// onError решает, продолжать ли после ошибки опроса.
func (p *MessagePoller) Run(ctx context.Context, onNew func([]models.Message), onError func(error) bool) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		if !p.poll(ctx, onNew, onError) {
			return
		}
		select {
		case <-ctx.Done():
			logger.WorkerLog(messagePollerName, "stop", nil)
			return
		case <-ticker.C:
		}
	}
}

func (p *MessagePoller) poll(ctx context.Context, onNew func([]models.Message), onError func(error) bool) bool {
	msgs, err := p.fetch(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return false
		}
		logger.WorkerLog(messagePollerName, "fetch", err)
		return onError != nil && onError(err)
	}
	if fresh := p.view.Merge(msgs); len(fresh) > 0 {
		onNew(fresh)
	}
	return true
}
