package app

import (
	"context"
	"fmt"

	"consultlink_backend/internal/auth"
	"consultlink_backend/internal/backend"
	"consultlink_backend/internal/config"
	"consultlink_backend/internal/database"
	"consultlink_backend/internal/logger"
	"consultlink_backend/internal/middleware"
	"consultlink_backend/internal/models"
	"consultlink_backend/internal/repositories"
	"consultlink_backend/internal/routes"
	"consultlink_backend/internal/validator"
	"consultlink_backend/internal/workers"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// RunBackend запускает эталонный бэкенд: БД, миграции, сиды и воркер платежей.
func RunBackend() {
	config.LoadConfig()
	cfg := config.AppConfig
	logger.Init(cfg.Server.Env)
	logger.Info("Logger initialized", "env", cfg.Server.Env)

	logger.Info("Connecting to database...", "driver", cfg.Database.Driver)
	db, err := database.Open(cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		logger.Fatal("Failed to connect to database", "error", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("Failed to get *sql.DB from GORM", "error", err)
	}
	if err = sqlDB.Ping(); err != nil {
		logger.Fatal("Database unavailable", "error", err)
	}
	logger.Info("Database connected")

	if err := database.AutoMigrate(db); err != nil {
		logger.Fatal("Failed to migrate database", "error", err)
	}

	ctx, stop := signalContext()
	defer stop()

	ginRouter, err := SetupBackendRouter(ctx, cfg, db)
	if err != nil {
		logger.Fatal("Failed to set up backend", "error", err)
	}

	address := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Backend.Port)
	logger.Info(fmt.Sprintf("🚀 Backend starting on %s", address))
	serve(ctx, address, ginRouter)
}

// SetupBackendRouter собирает бэкенд поверх уже мигрированной БД.
// Воркер истечения платежей работает до отмены ctx.
func SetupBackendRouter(ctx context.Context, cfg *config.Config, db *gorm.DB) (*gin.Engine, error) {
	if cfg.JWT.Secret == "" {
		return nil, fmt.Errorf("jwt secret is required")
	}
	tokens := auth.NewTokenManager(cfg.JWT.Secret, cfg.TokenTTL())

	service := backend.NewService(
		repositories.NewUserRepository(),
		repositories.NewConsultationRepository(),
		repositories.NewPaymentRepository(),
		repositories.NewMessageRepository(),
		repositories.NewReviewRepository(),
		tokens,
	)

	if err := seedUsers(db, service, cfg.SeedUsers); err != nil {
		return nil, err
	}

	workers.NewPaymentExpiryWorker(db, service, cfg.PendingPaymentTTL(), cfg.ExpiryCheckInterval()).Start(ctx)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggingMiddleware())
	router.Use(middleware.DBMiddleware(db))

	routes.RegisterBackendRoutes(router, backend.NewHandler(service, validator.New(), tokens))
	return router, nil
}

func seedUsers(db *gorm.DB, service *backend.Service, seeds []config.SeedUser) error {
	if len(seeds) == 0 {
		logger.Warn("No seed users configured. Skipping seeding.")
		return nil
	}

	list := make([]backend.SeedUser, 0, len(seeds))
	for _, s := range seeds {
		role := models.UserRole(s.Role)
		if !role.IsValid() {
			return fmt.Errorf("seed user %s: unknown role %q", s.Email, s.Role)
		}
		list = append(list, backend.SeedUser{
			Email:    s.Email,
			Name:     s.Name,
			Password: s.Password,
			Role:     role,
		})
	}

	users, err := service.SeedUsers(db, list)
	if err != nil {
		return fmt.Errorf("failed to seed users: %w", err)
	}
	logger.Info("Seed users ready", "count", len(users))
	return nil
}
