package middleware

import (
	"net/http"
	"strings"

	"consultlink_backend/internal/auth"
	"consultlink_backend/internal/gateway"
	"consultlink_backend/internal/logger"
	"consultlink_backend/internal/models"

	"github.com/gin-gonic/gin"
)

const (
	userIDKey = "userID"
	roleKey   = "role"
)

// bearerToken достает токен из заголовка Authorization.
func bearerToken(c *gin.Context) (string, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	return token, token != ""
}

// AuthMiddleware - middleware проверки JWT на стороне бэкенда
func AuthMiddleware(tokens *auth.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr, ok := bearerToken(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": gateway.DetailMissingToken})
			return
		}

		claims, err := tokens.Parse(tokenStr)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": gateway.DetailInvalidToken})
			return
		}

		// Сохраняем claims в контекст
		c.Set(userIDKey, claims.UserID())
		c.Set(roleKey, claims.Role)
		c.Request = c.Request.WithContext(logger.WithUserID(c.Request.Context(), claims.UserID()))
		c.Next()
	}
}

// RequireRoles - middleware для проверки нескольких возможных ролей
func RequireRoles(roles ...models.UserRole) gin.HandlerFunc {
	roleSet := make(map[models.UserRole]bool)
	for _, r := range roles {
		roleSet[r] = true
	}

	return func(c *gin.Context) {
		if !roleSet[GetRole(c)] {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"detail": gateway.DetailForbidden})
			return
		}
		c.Next()
	}
}

// RequirePermission - то же по таблице прав
func RequirePermission(permission string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !auth.HasPermission(GetRole(c), permission) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"detail": gateway.DetailForbidden})
			return
		}
		c.Next()
	}
}

// GetUserID извлекает ID пользователя из контекста
func GetUserID(c *gin.Context) string {
	return c.GetString(userIDKey)
}

func GetRole(c *gin.Context) models.UserRole {
	roleVal, exists := c.Get(roleKey)
	if !exists {
		return ""
	}
	switch role := roleVal.(type) {
	case models.UserRole:
		return role
	case string:
		return models.UserRole(role)
	}
	return ""
}
