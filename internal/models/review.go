package models

const MaxReviewCommentLength = 500

type Review struct {
	BaseModel
	ConsultationID string `gorm:"type:varchar(36);not null;uniqueIndex" json:"consultation_id"`
	ReviewerID     string `gorm:"type:varchar(36);not null;index" json:"reviewer_id"`
	ConsultantID   string `gorm:"type:varchar(36);not null;index" json:"consultant_id"`
	Rating         int    `gorm:"not null" json:"rating"`
	Comment        string `gorm:"type:text" json:"comment"`
}
