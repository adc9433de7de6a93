package repositories

import (
	"consultlink_backend/internal/models"

	"gorm.io/gorm"
)

type ReviewRepository interface {
	CreateReview(db *gorm.DB, review *models.Review) error
	FindByConsultation(db *gorm.DB, consultationID string) (*models.Review, error)
}

type ReviewRepositoryImpl struct{}

func NewReviewRepository() ReviewRepository {
	return &ReviewRepositoryImpl{}
}

// CreateReview - один отзыв на консультацию.
func (r *ReviewRepositoryImpl) CreateReview(db *gorm.DB, review *models.Review) error {
	var count int64
	if err := db.Model(&models.Review{}).Where("consultation_id = ?", review.ConsultationID).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return ErrReviewAlreadyExists
	}
	if err := db.Create(review).Error; err != nil {
		if isDuplicate(err) {
			return ErrReviewAlreadyExists
		}
		return err
	}
	return nil
}

func (r *ReviewRepositoryImpl) FindByConsultation(db *gorm.DB, consultationID string) (*models.Review, error) {
	var review models.Review
	if err := db.Where("consultation_id = ?", consultationID).First(&review).Error; err != nil {
		return nil, notFound(err, ErrReviewNotFound)
	}
	return &review, nil
}
