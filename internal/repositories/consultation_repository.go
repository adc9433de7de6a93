package repositories

import (
	"time"

	"consultlink_backend/internal/models"

	"gorm.io/gorm"
)

type ConsultationRepository interface {
	Create(db *gorm.DB, c *models.Consultation) error
	FindByID(db *gorm.DB, id string) (*models.Consultation, error)
	FindByParty(db *gorm.DB, userID string, status models.ConsultationStatus) ([]models.Consultation, error)
	FindAll(db *gorm.DB, status models.ConsultationStatus) ([]models.Consultation, error)
	// FindIncoming - запросы без консультанта, которые он не отклонял.
	FindIncoming(db *gorm.DB, consultantID string) ([]models.Consultation, error)

	// Match - условное обновление: выигрывает первый. Иначе ErrAlreadyMatched.
	Match(db *gorm.DB, id, consultantID string, at time.Time) error
	// Transition меняет статус, только если он все еще равен from. Иначе ErrStaleStatus.
	Transition(db *gorm.DB, id string, from, to models.ConsultationStatus, fields map[string]interface{}) error

	CreateRejection(db *gorm.DB, rejection *models.ConsultationRejection) error
	HasRejection(db *gorm.DB, consultationID, consultantID string) (bool, error)
}

type ConsultationRepositoryImpl struct{}

func NewConsultationRepository() ConsultationRepository {
	return &ConsultationRepositoryImpl{}
}

func (r *ConsultationRepositoryImpl) Create(db *gorm.DB, c *models.Consultation) error {
	return db.Create(c).Error
}

func (r *ConsultationRepositoryImpl) FindByID(db *gorm.DB, id string) (*models.Consultation, error) {
	var c models.Consultation
	if err := db.First(&c, "id = ?", id).Error; err != nil {
		return nil, notFound(err, ErrConsultationNotFound)
	}
	return &c, nil
}

func (r *ConsultationRepositoryImpl) FindByParty(db *gorm.DB, userID string, status models.ConsultationStatus) ([]models.Consultation, error) {
	query := db.Where("(requester_id = ? OR consultant_id = ?)", userID, userID)
	return r.list(query, status)
}

func (r *ConsultationRepositoryImpl) FindAll(db *gorm.DB, status models.ConsultationStatus) ([]models.Consultation, error) {
	return r.list(db, status)
}

func (r *ConsultationRepositoryImpl) list(query *gorm.DB, status models.ConsultationStatus) ([]models.Consultation, error) {
	if status != "" {
		query = query.Where("status = ?", status)
	}
	var list []models.Consultation
	if err := query.Order("created_at DESC, id DESC").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *ConsultationRepositoryImpl) FindIncoming(db *gorm.DB, consultantID string) ([]models.Consultation, error) {
	declined := db.Model(&models.ConsultationRejection{}).
		Select("consultation_id").
		Where("consultant_id = ?", consultantID)

	var list []models.Consultation
	err := db.Where("status = ? AND consultant_id IS NULL", models.ConsultationStatusRequested).
		Where("id NOT IN (?)", declined).
		Order("created_at ASC, id ASC").
		Find(&list).Error
	if err != nil {
		return nil, err
	}
	return list, nil
}

func (r *ConsultationRepositoryImpl) Match(db *gorm.DB, id, consultantID string, at time.Time) error {
	res := db.Model(&models.Consultation{}).
		Where("id = ? AND status = ? AND consultant_id IS NULL", id, models.ConsultationStatusRequested).
		Updates(map[string]interface{}{
			"status":        models.ConsultationStatusMatched,
			"consultant_id": consultantID,
			"matched_at":    at,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrAlreadyMatched
	}
	return nil
}

func (r *ConsultationRepositoryImpl) Transition(db *gorm.DB, id string, from, to models.ConsultationStatus, fields map[string]interface{}) error {
	updates := map[string]interface{}{"status": to}
	for k, v := range fields {
		updates[k] = v
	}

	res := db.Model(&models.Consultation{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStaleStatus
	}
	return nil
}

func (r *ConsultationRepositoryImpl) CreateRejection(db *gorm.DB, rejection *models.ConsultationRejection) error {
	exists, err := r.HasRejection(db, rejection.ConsultationID, rejection.ConsultantID)
	if err != nil {
		return err
	}
	if exists {
		return ErrAlreadyRejected
	}
	if err := db.Create(rejection).Error; err != nil {
		if isDuplicate(err) {
			return ErrAlreadyRejected
		}
		return err
	}
	return nil
}

func (r *ConsultationRepositoryImpl) HasRejection(db *gorm.DB, consultationID, consultantID string) (bool, error) {
	var count int64
	err := db.Model(&models.ConsultationRejection{}).
		Where("consultation_id = ? AND consultant_id = ?", consultationID, consultantID).
		Count(&count).Error
	return count > 0, err
}
