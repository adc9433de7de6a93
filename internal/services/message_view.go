package services

import (
	"sort"
	"sync"

	"consultlink_backend/internal/models"
)

// SortMessages упорядочивает по created_at, при равенстве по id.
// Порядок один и тот же при каждом опросе.
func SortMessages(msgs []models.Message) {
	sort.SliceStable(msgs, func(i, j int) bool {
		if !msgs[i].CreatedAt.Equal(msgs[j].CreatedAt) {
			return msgs[i].CreatedAt.Before(msgs[j].CreatedAt)
		}
		return msgs[i].ID < msgs[j].ID
	})
}

// MessageView - клиентская копия переписки, собранная из результатов опроса.
// Только кэш для чтения: отправка всегда подтверждается бэкендом.
type MessageView struct {
	mu   sync.Mutex
	seen map[string]struct{}
	msgs []models.Message
}

func NewMessageView() *MessageView {
	return &MessageView{seen: make(map[string]struct{})}
}

// Merge добавляет сообщения, которых еще не было, и возвращает только их.
func (v *MessageView) Merge(batch []models.Message) []models.Message {
	v.mu.Lock()
	defer v.mu.Unlock()

	var fresh []models.Message
	for _, m := range batch {
		if _, ok := v.seen[m.ID]; ok {
			continue
		}
		v.seen[m.ID] = struct{}{}
		fresh = append(fresh, m)
	}
	if len(fresh) == 0 {
		return nil
	}

	SortMessages(fresh)
	v.msgs = append(v.msgs, fresh...)
	SortMessages(v.msgs)
	return fresh
}

func (v *MessageView) Messages() []models.Message {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := make([]models.Message, len(v.msgs))
	copy(out, v.msgs)
	return out
}

func (v *MessageView) Len() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.msgs)
}
