package workers_test

import (
	"context"
	"io"
	"testing"
	"time"

	"consultlink_backend/internal/auth"
	"consultlink_backend/internal/backend"
	"consultlink_backend/internal/database"
	"consultlink_backend/internal/logger"
	"consultlink_backend/internal/models"
	"consultlink_backend/internal/repositories"
	"consultlink_backend/internal/workers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaymentExpiryWorker_RunOnce(t *testing.T) {
	logger.InitWithWriter("test", io.Discard)

	// 1. Подготовка: один старый и один свежий pending-платеж
	db, err := database.Open(database.DriverSQLite, ":memory:")
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))

	service := backend.NewService(
		repositories.NewUserRepository(),
		repositories.NewConsultationRepository(),
		repositories.NewPaymentRepository(),
		repositories.NewMessageRepository(),
		repositories.NewReviewRepository(),
		auth.NewTokenManager("secret", time.Hour),
	)

	now := time.Now().UTC()
	stale := &models.Payment{ConsultationID: "c-old", OrderID: "c-old", Method: models.PaymentMethodCard, Amount: 1000, Currency: "KRW", Status: models.PaymentStatusPending}
	stale.CreatedAt = now.Add(-2 * time.Hour)
	fresh := &models.Payment{ConsultationID: "c-new", OrderID: "c-new", Method: models.PaymentMethodCard, Amount: 1000, Currency: "KRW", Status: models.PaymentStatusPending}
	fresh.CreatedAt = now
	require.NoError(t, db.Create(stale).Error)
	require.NoError(t, db.Create(fresh).Error)

	worker := workers.NewPaymentExpiryWorker(db, service, time.Hour, time.Minute)

	// 2. Действие
	expired, err := worker.RunOnce(context.Background())

	// 3. Проверка
	require.NoError(t, err)
	assert.Equal(t, int64(1), expired)

	var reloaded models.Payment
	require.NoError(t, db.First(&reloaded, "id = ?", stale.ID).Error)
	assert.Equal(t, models.PaymentStatusFailed, reloaded.Status)
	require.NoError(t, db.First(&reloaded, "id = ?", fresh.ID).Error)
	assert.Equal(t, models.PaymentStatusPending, reloaded.Status)

	again, err := worker.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Zero(t, again)
}
