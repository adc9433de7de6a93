package models

import (
	"time"

	"gorm.io/datatypes"
)

type Payment struct {
	BaseModel
	ConsultationID string         `gorm:"type:varchar(36);not null;index" json:"consultation_id"`
	OrderID        string         `gorm:"type:varchar(64);not null;index" json:"order_id"`
	PaymentKey     *string        `gorm:"type:varchar(200);uniqueIndex" json:"payment_key"`
	Method         PaymentMethod  `gorm:"type:varchar(32);not null" json:"method"`
	Amount         int64          `gorm:"not null" json:"amount"`
	Currency       string         `gorm:"type:varchar(3);not null;default:'KRW'" json:"currency"`
	Status         PaymentStatus  `gorm:"type:varchar(20);not null;index" json:"status"`
	Metadata       datatypes.JSON `json:"metadata,omitempty"`
	ApprovedAt     *time.Time     `json:"approved_at,omitempty"`
}

func (p *Payment) HasKey(key string) bool {
	return p.PaymentKey != nil && *p.PaymentKey == key
}

// Active - не failed; на консультацию допускается ровно один такой платеж.
func (p *Payment) Active() bool {
	return p.Status != PaymentStatusFailed
}
