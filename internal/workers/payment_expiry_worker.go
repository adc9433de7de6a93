package workers

import (
	"context"
	"time"

	"consultlink_backend/internal/logger"

	"gorm.io/gorm"
)

const paymentExpiryWorkerName = "payment_expiry"

// PaymentExpirer - то, что воркеру нужно от сервиса бэкенда.
type PaymentExpirer interface {
	ExpirePendingPayments(db *gorm.DB, olderThan time.Time) (int64, error)
}

// PaymentExpiryWorker переводит брошенные pending-платежи в failed,
// чтобы консультацию можно было оплатить заново.
type PaymentExpiryWorker struct {
	db       *gorm.DB
	expirer  PaymentExpirer
	ttl      time.Duration
	interval time.Duration
	now      func() time.Time
}

func NewPaymentExpiryWorker(db *gorm.DB, expirer PaymentExpirer, ttl, interval time.Duration) *PaymentExpiryWorker {
	return &PaymentExpiryWorker{
		db:       db,
		expirer:  expirer,
		ttl:      ttl,
		interval: interval,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Start запускает фоновую проверку
func (w *PaymentExpiryWorker) Start(ctx context.Context) {
	go w.loop(ctx)
}

func (w *PaymentExpiryWorker) loop(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.WorkerLog(paymentExpiryWorkerName, "stop", nil)
			return
		case <-ticker.C:
			_, _ = w.RunOnce(ctx)
		}
	}
}

// RunOnce выполняет одну проверку и возвращает число истекших платежей.
func (w *PaymentExpiryWorker) RunOnce(ctx context.Context) (int64, error) {
	cutoff := w.now().Add(-w.ttl)
	expired, err := w.expirer.ExpirePendingPayments(w.db.WithContext(ctx), cutoff)
	if err != nil {
		logger.WorkerLog(paymentExpiryWorkerName, "expire_pending", err)
		return 0, err
	}
	if expired > 0 {
		logger.Info("Expired abandoned payments", "count", expired, "cutoff", cutoff)
	}
	logger.WorkerLog(paymentExpiryWorkerName, "expire_pending", nil, "expired", expired)
	return expired, nil
}
