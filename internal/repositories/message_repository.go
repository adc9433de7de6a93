package repositories

import (
	"time"

	"consultlink_backend/internal/models"

	"gorm.io/gorm"
)

type MessageRepository interface {
	Create(db *gorm.DB, msg *models.Message) error
	FindByConsultation(db *gorm.DB, consultationID string) ([]models.Message, error)
	// MarkRead отмечает прочитанными сообщения собеседника. Флаг только false -> true.
	MarkRead(db *gorm.DB, consultationID, readerID string, at time.Time) (int64, error)
}

type MessageRepositoryImpl struct{}

func NewMessageRepository() MessageRepository {
	return &MessageRepositoryImpl{}
}

func (r *MessageRepositoryImpl) Create(db *gorm.DB, msg *models.Message) error {
	return db.Create(msg).Error
}

func (r *MessageRepositoryImpl) FindByConsultation(db *gorm.DB, consultationID string) ([]models.Message, error) {
	var msgs []models.Message
	err := db.Where("consultation_id = ?", consultationID).
		Order("created_at ASC, id ASC").
		Find(&msgs).Error
	if err != nil {
		return nil, err
	}
	return msgs, nil
}

func (r *MessageRepositoryImpl) MarkRead(db *gorm.DB, consultationID, readerID string, at time.Time) (int64, error) {
	res := db.Model(&models.Message{}).
		Where("consultation_id = ? AND sender_id <> ? AND is_read = ?", consultationID, readerID, false).
		Updates(map[string]interface{}{"is_read": true, "read_at": at})
	return res.RowsAffected, res.Error
}
