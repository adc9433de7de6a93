package routes

import (
	"net/http"

	"consultlink_backend/internal/backend"
	"consultlink_backend/internal/handlers"
	"consultlink_backend/internal/logger"
	"consultlink_backend/ws"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes регистрирует все HTTP и WebSocket маршруты оркестратора.
func RegisterRoutes(
	ginRouter *gin.Engine,
	appHandlers *handlers.AppHandlers,
	wsHandler *ws.WebSocketHandler,
	requireSession gin.HandlerFunc,
) {
	ginRouter.GET("/health", health)

	// Регистрация HTTP API v1
	api := ginRouter.Group("/api/v1")
	{
		appHandlers.AuthHandler.RegisterRoutes(api)
		appHandlers.ConsultationHandler.RegisterRoutes(api)
		appHandlers.PaymentHandler.RegisterRoutes(api)
		appHandlers.MessageHandler.RegisterRoutes(api)
		appHandlers.ReviewHandler.RegisterRoutes(api)
	}

	// Регистрация WebSocket
	wsHandler.RegisterRoutes(api, requireSession)
	logger.Info("WebSocket route /api/v1/ws/consultations/:id/messages registered")
}

// RegisterBackendRoutes регистрирует маршруты эталонного бэкенда.
func RegisterBackendRoutes(ginRouter *gin.Engine, handler *backend.Handler) {
	ginRouter.GET("/health", health)

	api := ginRouter.Group("/api/v1")
	handler.RegisterRoutes(api)
}

func health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
