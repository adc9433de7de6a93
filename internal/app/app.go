package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"consultlink_backend/internal/config"
	"consultlink_backend/internal/email"
	"consultlink_backend/internal/gateway"
	"consultlink_backend/internal/handlers"
	"consultlink_backend/internal/logger"
	"consultlink_backend/internal/middleware"
	"consultlink_backend/internal/paygate"
	"consultlink_backend/internal/routes"
	"consultlink_backend/internal/services"
	"consultlink_backend/internal/session"
	"consultlink_backend/internal/validator"
	"consultlink_backend/ws"

	"github.com/gin-gonic/gin"
)

const shutdownTimeout = 10 * time.Second

// Options - зависимости, которые тесты подменяют. Пустые поля берутся из конфигурации.
type Options struct {
	HTTPClient   *http.Client
	Email        email.Provider
	SessionStore session.Store
}

// Run запускает оркестратор и блокируется до SIGINT/SIGTERM.
func Run() {
	config.LoadConfig()
	cfg := config.AppConfig
	logger.Init(cfg.Server.Env)
	logger.Info("Logger initialized", "env", cfg.Server.Env)

	ctx, stop := signalContext()
	defer stop()

	ginRouter, err := SetupRouter(ctx, cfg, Options{})
	if err != nil {
		logger.Fatal("Failed to set up orchestrator", "error", err)
	}

	address := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	logger.Info(fmt.Sprintf("🚀 Orchestrator starting on %s", address), "backend", cfg.Backend.BaseURL)
	serve(ctx, address, ginRouter)
}

// SetupRouter собирает оркестратор: клиент бэкенда, сессии, сервисы, хэндлеры и маршруты.
// Фоновые горутины (janitor сессий, websocket manager) живут до отмены ctx.
func SetupRouter(ctx context.Context, cfg *config.Config, opts Options) (*gin.Engine, error) {
	widget, err := paygate.New(paygate.Config{
		ClientKey:       cfg.Gateway.ClientKey,
		SuccessURL:      cfg.Gateway.SuccessURL,
		FailURL:         cfg.Gateway.FailURL,
		OrderNamePrefix: cfg.Gateway.OrderNamePrefix,
		Currency:        cfg.Gateway.Currency,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize payment widget: %w", err)
	}

	var gw *gateway.Client
	if opts.HTTPClient != nil {
		gw = gateway.NewClientWithHTTP(cfg.Backend.BaseURL, opts.HTTPClient)
	} else {
		gw = gateway.NewClient(cfg.Backend.BaseURL, cfg.BackendTimeout())
	}

	store := opts.SessionStore
	if store == nil {
		memory := session.NewMemoryStore(cfg.SessionTTL())
		memory.StartJanitor(ctx, time.Minute)
		store = memory
	}

	sessionOpts := middleware.SessionOptions{
		CookieName: cfg.Session.CookieName,
		TTL:        cfg.SessionTTL(),
		Secure:     cfg.Session.Secure,
	}

	// 1. Инициализируем сервисы
	customValidator := validator.New()
	notifier := services.NewEmailSupportNotifier(emailProvider(cfg, opts.Email), cfg.Email.SupportEmail)
	serviceContainer := services.NewServiceContainer(gw, store, widget, notifier, customValidator)

	// 2. Инициализируем хэндлеры
	baseHandler := handlers.NewBaseHandler(customValidator, gateway.NewTranslator(), serviceContainer.AuthService, sessionOpts)
	appHandlers := initializeHandlers(baseHandler, serviceContainer)

	// 3. Инициализируем WebSocket
	wsManager := ws.NewWebSocketManager()
	go wsManager.Run(ctx)
	wsHandler := ws.NewWebSocketHandler(
		wsManager,
		serviceContainer.MessageService,
		cfg.PollInterval(),
		baseHandler.HandleServiceError,
		baseHandler.TranslateError,
		cfg.Server.AllowedOrigins,
	)

	// 4. Инициализируем Gin
	ginRouter := initializeGinRouter(cfg)
	ginRouter.Use(middleware.SessionMiddleware(store, sessionOpts))

	// 5. Регистрация маршрутов
	routes.RegisterRoutes(ginRouter, appHandlers, wsHandler, baseHandler.RequireSession())

	return ginRouter, nil
}

func initializeHandlers(base *handlers.BaseHandler, container *services.ServiceContainer) *handlers.AppHandlers {
	return &handlers.AppHandlers{
		AuthHandler:         handlers.NewAuthHandler(base, container.AuthService),
		ConsultationHandler: handlers.NewConsultationHandler(base, container.ConsultationService),
		PaymentHandler:      handlers.NewPaymentHandler(base, container.PaymentService),
		MessageHandler:      handlers.NewMessageHandler(base, container.MessageService),
		ReviewHandler:       handlers.NewReviewHandler(base, container.ReviewService),
	}
}

func initializeGinRouter(cfg *config.Config) *gin.Engine {
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggingMiddleware())
	router.Use(middleware.CORSMiddleware(cfg.Server.AllowedOrigins))
	return router
}

// emailProvider - SMTP, если он настроен, иначе письма только логируются.
func emailProvider(cfg *config.Config, override email.Provider) email.Provider {
	if override != nil {
		return override
	}
	smtp := email.SMTPConfig{
		Host:      cfg.Email.SMTPHost,
		Port:      cfg.Email.SMTPPort,
		Username:  cfg.Email.SMTPUsername,
		Password:  cfg.Email.SMTPPassword,
		FromEmail: cfg.Email.FromEmail,
		FromName:  cfg.Email.FromName,
	}
	if !smtp.Enabled() {
		logger.Warn("SMTP is not configured, support emails are only logged")
		return &MockEmailProvider{}
	}
	provider := email.NewGomailProvider(smtp, email.NewTemplateManager())
	if err := provider.Validate(); err != nil {
		logger.Warn("SMTP config is invalid, support emails are only logged", "error", err)
		return &MockEmailProvider{}
	}
	return provider
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// serve держит http.Server до отмены ctx и затем мягко его останавливает.
func serve(ctx context.Context, address string, handler http.Handler) {
	srv := &http.Server{
		Addr:              address,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server startup error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}
}
