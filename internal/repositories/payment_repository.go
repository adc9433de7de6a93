package repositories

import (
	"time"

	"consultlink_backend/internal/models"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type PaymentRepository interface {
	Create(db *gorm.DB, payment *models.Payment) error
	FindActiveByConsultation(db *gorm.DB, consultationID string) (*models.Payment, error)
	// AttachKey записывает payment key, если он еще не задан.
	AttachKey(db *gorm.DB, paymentID, paymentKey string) error
	MarkDone(db *gorm.DB, paymentID, paymentKey string, metadata datatypes.JSON, at time.Time) error
	// ExpirePending переводит зависшие pending-платежи в failed.
	ExpirePending(db *gorm.DB, olderThan time.Time) (int64, error)
}

type PaymentRepositoryImpl struct{}

func NewPaymentRepository() PaymentRepository {
	return &PaymentRepositoryImpl{}
}

// Create проверяет активный платеж сам: на MySQL частичного индекса нет.
// Вызывать внутри транзакции.
func (r *PaymentRepositoryImpl) Create(db *gorm.DB, payment *models.Payment) error {
	var count int64
	err := db.Model(&models.Payment{}).
		Where("consultation_id = ? AND status <> ?", payment.ConsultationID, models.PaymentStatusFailed).
		Count(&count).Error
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrPaymentExists
	}

	if err := db.Create(payment).Error; err != nil {
		if isDuplicate(err) {
			return ErrPaymentExists
		}
		return err
	}
	return nil
}

func (r *PaymentRepositoryImpl) FindActiveByConsultation(db *gorm.DB, consultationID string) (*models.Payment, error) {
	var payment models.Payment
	err := db.Where("consultation_id = ? AND status <> ?", consultationID, models.PaymentStatusFailed).
		Order("created_at DESC").
		First(&payment).Error
	if err != nil {
		return nil, notFound(err, ErrPaymentNotFound)
	}
	return &payment, nil
}

func (r *PaymentRepositoryImpl) AttachKey(db *gorm.DB, paymentID, paymentKey string) error {
	res := db.Model(&models.Payment{}).
		Where("id = ? AND payment_key IS NULL", paymentID).
		Update("payment_key", paymentKey)
	if res.Error != nil {
		if isDuplicate(res.Error) {
			return ErrPaymentExists
		}
		return res.Error
	}
	return nil
}

func (r *PaymentRepositoryImpl) MarkDone(db *gorm.DB, paymentID, paymentKey string, metadata datatypes.JSON, at time.Time) error {
	res := db.Model(&models.Payment{}).
		Where("id = ? AND status = ?", paymentID, models.PaymentStatusPending).
		Updates(map[string]interface{}{
			"status":      models.PaymentStatusDone,
			"payment_key": paymentKey,
			"metadata":    metadata,
			"approved_at": at,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrPaymentNotPending
	}
	return nil
}

func (r *PaymentRepositoryImpl) ExpirePending(db *gorm.DB, olderThan time.Time) (int64, error) {
	res := db.Model(&models.Payment{}).
		Where("status = ? AND created_at < ?", models.PaymentStatusPending, olderThan).
		Update("status", models.PaymentStatusFailed)
	return res.RowsAffected, res.Error
}
