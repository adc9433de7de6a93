package workers

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"consultlink_backend/internal/models"

	"github.com/stretchr/testify/assert"
)

func msg(id string, offset time.Duration) models.Message {
	m := models.Message{Body: id}
	m.ID = id
	m.CreatedAt = time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC).Add(offset)
	return m
}

// fakeFeed отдает заранее заданные ответы по очереди, последний повторяется.
type fakeFeed struct {
	mu      sync.Mutex
	batches [][]models.Message
	errs    []error
	calls   int
}

func (f *fakeFeed) fetch(ctx context.Context) ([]models.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.calls
	f.calls++
	if i < len(f.errs) && f.errs[i] != nil {
		return nil, f.errs[i]
	}
	if i >= len(f.batches) {
		i = len(f.batches) - 1
	}
	return f.batches[i], nil
}

func (f *fakeFeed) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func TestMessagePoller_DeliversOnlyNewMessages(t *testing.T) {
	feed := &fakeFeed{batches: [][]models.Message{
		{msg("m1", 0)},
		{msg("m1", 0), msg("m2", time.Second)},
		{msg("m1", 0), msg("m2", time.Second)},
		{msg("m1", 0), msg("m2", time.Second), msg("m3", 2 * time.Second)},
	}}
	poller := NewMessagePoller(time.Millisecond, feed.fetch)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var (
		mu        sync.Mutex
		delivered []string
	)
	done := make(chan struct{})
	go func() {
		defer close(done)
		poller.Run(ctx, func(fresh []models.Message) {
			mu.Lock()
			defer mu.Unlock()
			for _, m := range fresh {
				delivered = append(delivered, m.ID)
			}
		}, nil)
	}()

	assert.Eventually(t, func() bool { return poller.View().Len() == 3 }, time.Second, time.Millisecond)
	cancel()
	<-done

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"m1", "m2", "m3"}, delivered, "each message is delivered once")
}

func TestMessagePoller_StopsOnCancel(t *testing.T) {
	feed := &fakeFeed{batches: [][]models.Message{{}}}
	poller := NewMessagePoller(time.Hour, feed.fetch)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		poller.Run(ctx, func([]models.Message) {}, nil)
	}()

	assert.Eventually(t, func() bool { return feed.count() == 1 }, time.Second, time.Millisecond, "polls immediately")
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("poller did not stop after cancel")
	}
	assert.Equal(t, 1, feed.count())
}

func TestMessagePoller_ErrorHandling(t *testing.T) {
	boom := errors.New("backend unavailable")

	t.Run("stops when onError declines", func(t *testing.T) {
		feed := &fakeFeed{batches: [][]models.Message{{}}, errs: []error{boom}}
		poller := NewMessagePoller(time.Millisecond, feed.fetch)

		var seen error
		poller.Run(context.Background(), func([]models.Message) {}, func(err error) bool {
			seen = err
			return false
		})

		assert.ErrorIs(t, seen, boom)
		assert.Equal(t, 1, feed.count())
	})

	t.Run("continues when onError allows", func(t *testing.T) {
		feed := &fakeFeed{batches: [][]models.Message{{}, {msg("m1", 0)}}, errs: []error{boom}}
		poller := NewMessagePoller(time.Millisecond, feed.fetch)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go poller.Run(ctx, func([]models.Message) {}, func(error) bool { return true })

		assert.Eventually(t, func() bool { return poller.View().Len() == 1 }, time.Second, time.Millisecond)
	})

	t.Run("nil onError stops", func(t *testing.T) {
		feed := &fakeFeed{batches: [][]models.Message{{}}, errs: []error{boom}}
		NewMessagePoller(time.Millisecond, feed.fetch).Run(context.Background(), func([]models.Message) {}, nil)
		assert.Equal(t, 1, feed.count())
	})
}
