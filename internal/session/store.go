package session

import (
	"context"
	"sync"
	"time"

	"consultlink_backend/internal/logger"

	"github.com/google/uuid"
)

// Store хранит сессии оркестратора. Очищается при logout и при любом 401.
type Store interface {
	Create(token string, user UserSummary) (*Session, error)
	Get(id string) (*Session, bool)
	Delete(id string)
}

// MemoryStore - Store в памяти процесса с TTL.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	ttl      time.Duration
	now      func() time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]*Session),
		ttl:      ttl,
		now:      time.Now,
	}
}

func (s *MemoryStore) Create(token string, user UserSummary) (*Session, error) {
	now := s.now()
	sess := &Session{
		ID:          uuid.NewString(),
		AccessToken: token,
		User:        user,
		CreatedAt:   now,
		ExpiresAt:   now.Add(s.ttl),
	}

	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()
	return sess, nil
}

func (s *MemoryStore) Get(id string) (*Session, bool) {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if sess.Expired(s.now()) {
		s.Delete(id)
		return nil, false
	}
	return sess, true
}

func (s *MemoryStore) Delete(id string) {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
}

func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// purgeExpired удаляет истекшие сессии и возвращает их количество.
func (s *MemoryStore) purgeExpired() int {
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, sess := range s.sessions {
		if sess.Expired(now) {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

// StartJanitor периодически чистит истекшие сессии до отмены ctx.
func (s *MemoryStore) StartJanitor(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := s.purgeExpired(); n > 0 {
					logger.WorkerLog("session_janitor", "purge_expired", nil, "removed", n)
				}
			}
		}
	}()
}
