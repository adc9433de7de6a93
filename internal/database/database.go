package database

import (
	"fmt"
	"strings"
	"time"

	"consultlink_backend/internal/logger"
	"consultlink_backend/internal/models"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

const (
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
	DriverSQLite   = "sqlite"
)

// activePaymentIndex - не более одного не-failed платежа на консультацию.
// MySQL частичные индексы не поддерживает, там проверка идет в транзакции.
const activePaymentIndex = `CREATE UNIQUE INDEX IF NOT EXISTS ux_payments_active_consultation
	ON payments (consultation_id) WHERE status <> 'failed'`

func dialector(driver, dsn string) (gorm.Dialector, error) {
	switch strings.ToLower(driver) {
	case DriverPostgres, "":
		return postgres.Open(dsn), nil
	case DriverMySQL:
		return mysql.Open(dsn), nil
	case DriverSQLite:
		return sqlite.Open(dsn), nil
	}
	return nil, fmt.Errorf("unsupported database driver %q", driver)
}

// Open подключает GORM. Время всегда в UTC.
func Open(driver, dsn string) (*gorm.DB, error) {
	d, err := dialector(driver, dsn)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(d, &gorm.Config{
		Logger:         newGormLogger(200 * time.Millisecond),
		NowFunc:        func() time.Time { return time.Now().UTC() },
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to GORM: %w", err)
	}

	if strings.EqualFold(driver, DriverSQLite) {
		// :memory: живет в рамках одного соединения
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}
	return db, nil
}

// AutoMigrate выполняет миграцию всех моделей
func AutoMigrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.Consultation{},
		&models.ConsultationRejection{},
		&models.Payment{},
		&models.Message{},
		&models.Review{},
	)
	if err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	if SupportsPartialIndex(db) {
		if err := db.Exec(activePaymentIndex).Error; err != nil {
			return fmt.Errorf("create active payment index: %w", err)
		}
	}

	logger.Info("AutoMigrate completed", "dialect", db.Dialector.Name())
	return nil
}

func SupportsPartialIndex(db *gorm.DB) bool {
	switch db.Dialector.Name() {
	case DriverPostgres, DriverSQLite:
		return true
	}
	return false
}
