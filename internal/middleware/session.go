package middleware

import (
	"net/http"
	"time"

	"consultlink_backend/internal/logger"
	"consultlink_backend/internal/session"
	"consultlink_backend/pkg/apperrors"
	"consultlink_backend/pkg/contextkeys"

	"github.com/gin-gonic/gin"
)

// LoginRedirect - куда отправлять клиента после 401.
const LoginRedirect = "/login"

// SessionOptions - параметры cookie сессии оркестратора.
type SessionOptions struct {
	CookieName string
	TTL        time.Duration
	Secure     bool
}

// SessionMiddleware загружает сессию из cookie, а если ее нет - из bearer-заголовка.
// Отсутствие сессии здесь не ошибка, это решает RequireSession.
func SessionMiddleware(store session.Store, opts SessionOptions) gin.HandlerFunc {
	return func(c *gin.Context) {
		var sess *session.Session

		if id, err := c.Cookie(opts.CookieName); err == nil && id != "" {
			if s, ok := store.Get(id); ok {
				sess = s
			} else {
				ExpireSessionCookie(c, opts)
			}
		}

		if sess == nil {
			if token, ok := bearerToken(c); ok {
				s, err := session.FromBearer(token)
				if err != nil {
					logger.CtxWarn(c.Request.Context(), "Unreadable bearer token", "error", err)
				} else if !s.Expired(time.Now()) {
					sess = s
				}
			}
		}

		if sess != nil {
			c.Set(string(contextkeys.SessionContextKey), sess)
			c.Request = c.Request.WithContext(logger.WithUserID(c.Request.Context(), sess.UserID()))
		}
		c.Next()
	}
}

func RequireSession(opts SessionOptions) gin.HandlerFunc {
	return func(c *gin.Context) {
		if GetSession(c) == nil {
			AbortUnauthenticated(c, opts, apperrors.ErrSessionExpired)
			return
		}
		c.Next()
	}
}

func GetSession(c *gin.Context) *session.Session {
	val, ok := c.Get(string(contextkeys.SessionContextKey))
	if !ok {
		return nil
	}
	sess, _ := val.(*session.Session)
	return sess
}

func SetSessionCookie(c *gin.Context, opts SessionOptions, sess *session.Session) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(opts.CookieName, sess.ID, int(opts.TTL.Seconds()), "/", "", opts.Secure, true)
}

func ExpireSessionCookie(c *gin.Context, opts SessionOptions) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(opts.CookieName, "", -1, "/", "", opts.Secure, true)
}

// AbortUnauthenticated - 401 с указанием перейти на страницу входа.
func AbortUnauthenticated(c *gin.Context, opts SessionOptions, appErr *apperrors.AppError) {
	ExpireSessionCookie(c, opts)
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"error":    appErr,
		"redirect": LoginRedirect,
	})
}
