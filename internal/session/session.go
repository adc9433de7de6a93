package session

import (
	"time"

	"consultlink_backend/internal/auth"
	"consultlink_backend/internal/models"
)

// UserSummary - минимальные сведения о пользователе, которые держит сессия.
type UserSummary struct {
	ID   string          `json:"id"`
	Name string          `json:"name"`
	Role models.UserRole `json:"role"`
}

// Session - явный контекст пользователя: токен доступа и краткие сведения.
// Передается в каждый сервис вместо глобального состояния.
type Session struct {
	ID          string
	AccessToken string
	User        UserSummary
	CreatedAt   time.Time
	ExpiresAt   time.Time
	// Ephemeral - сессия собрана из заголовка Authorization и не хранится в Store.
	Ephemeral bool
}

func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && now.After(s.ExpiresAt)
}

func (s *Session) UserID() string {
	if s == nil {
		return ""
	}
	return s.User.ID
}

func (s *Session) HasRole(role models.UserRole) bool {
	return s != nil && s.User.Role == role
}

// FromBearer собирает эфемерную сессию из bearer-токена.
// Подпись не проверяется: это делает бэкенд при каждом вызове.
func FromBearer(token string) (*Session, error) {
	claims, err := auth.ParseUnverified(token)
	if err != nil {
		return nil, err
	}
	s := &Session{
		ID:          "bearer:" + claims.UserID(),
		AccessToken: token,
		User: UserSummary{
			ID:   claims.UserID(),
			Name: claims.Name,
			Role: claims.Role,
		},
		Ephemeral: true,
	}
	if claims.ExpiresAt != nil {
		s.ExpiresAt = claims.ExpiresAt.Time
	}
	if claims.IssuedAt != nil {
		s.CreatedAt = claims.IssuedAt.Time
	}
	return s, nil
}
