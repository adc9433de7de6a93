package models

import "time"

type Message struct {
	BaseModel
	ConsultationID string     `gorm:"type:varchar(36);not null;index" json:"consultation_id"`
	SenderID       string     `gorm:"type:varchar(36);not null" json:"sender_id"`
	Body           string     `gorm:"type:text;not null" json:"body"`
	FileURL        *string    `gorm:"type:text" json:"file_url,omitempty"`
	IsRead         bool       `gorm:"not null;default:false" json:"is_read"`
	ReadAt         *time.Time `json:"read_at,omitempty"`
}
