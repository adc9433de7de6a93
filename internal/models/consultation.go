package models

import "time"

// MinConsultationContentLength - минимальная длина текста запроса.
const MinConsultationContentLength = 10

type Consultation struct {
	BaseModel
	RequesterID  string             `gorm:"type:varchar(36);not null;index" json:"requester_id"`
	Type         ConsultationType   `gorm:"type:varchar(32);not null" json:"type"`
	Method       ConsultationMethod `gorm:"type:varchar(32);not null" json:"method"`
	Content      string             `gorm:"type:text;not null" json:"content"`
	Amount       int64              `gorm:"not null" json:"amount"`
	Currency     string             `gorm:"type:varchar(3);not null;default:'KRW'" json:"currency"`
	Status       ConsultationStatus `gorm:"type:varchar(20);not null;index" json:"status"`
	ConsultantID *string            `gorm:"type:varchar(36);index" json:"consultant_id"`
	MatchedAt    *time.Time         `json:"matched_at,omitempty"`
	CompletedAt  *time.Time         `json:"completed_at,omitempty"`
	CancelledAt  *time.Time         `json:"cancelled_at,omitempty"`
}

// ConsultationRejection - отказ консультанта от запроса.
type ConsultationRejection struct {
	BaseModel
	ConsultationID string `gorm:"type:varchar(36);not null;uniqueIndex:idx_rejection_pair" json:"consultation_id"`
	ConsultantID   string `gorm:"type:varchar(36);not null;uniqueIndex:idx_rejection_pair" json:"consultant_id"`
	Reason         string `gorm:"type:text" json:"reason"`
}

// transitions - единственная таблица допустимых переходов.
var transitions = map[ConsultationStatus][]ConsultationStatus{
	ConsultationStatusRequested: {ConsultationStatusMatched, ConsultationStatusCancelled},
	ConsultationStatusMatched:   {ConsultationStatusScheduled, ConsultationStatusCancelled},
	ConsultationStatusScheduled: {ConsultationStatusCompleted, ConsultationStatusCancelled},
}

// CanTransition сообщает, разрешен ли переход from -> to.
func CanTransition(from, to ConsultationStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsTerminal - из completed и cancelled переходов нет.
func (s ConsultationStatus) IsTerminal() bool {
	return s == ConsultationStatusCompleted || s == ConsultationStatusCancelled
}

func (s ConsultationStatus) IsValid() bool {
	switch s {
	case ConsultationStatusRequested, ConsultationStatusMatched, ConsultationStatusScheduled,
		ConsultationStatusCompleted, ConsultationStatusCancelled:
		return true
	}
	return false
}

// IsParty - является ли пользователь заявителем или назначенным консультантом.
func (c *Consultation) IsParty(userID string) bool {
	return userID != "" && (c.RequesterID == userID || c.IsAssignedTo(userID))
}

func (c *Consultation) IsAssignedTo(userID string) bool {
	return c.ConsultantID != nil && *c.ConsultantID == userID
}

// ChannelOpen - переписка возможна после назначения консультанта.
func (c *Consultation) ChannelOpen() bool {
	switch c.Status {
	case ConsultationStatusMatched, ConsultationStatusScheduled, ConsultationStatusCompleted:
		return true
	}
	return false
}

// ChannelVisible - история видна всегда, когда консультант был назначен.
func (c *Consultation) ChannelVisible() bool {
	return c.ChannelOpen() || (c.Status == ConsultationStatusCancelled && c.ConsultantID != nil)
}
