package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Message lifecycle states.
const (
	MessageStatusQueued = "queued"
	MessageStatusSent   = "sent"
	MessageStatusFailed = "failed"
)

// MessageLog records one rendered message through the dispatch pipeline.
// Source and VariantID are kept for anti-ban auditing: they show which
// template tier and variation each recipient actually received.
type MessageLog struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	ClientID  string    `gorm:"type:text;not null;index" json:"client_id"`
	Event     string    `gorm:"type:text;not null" json:"event"`
	Phone     string    `gorm:"type:text;not null" json:"phone"`
	Source    string    `gorm:"type:text;not null" json:"source"`
	VariantID string    `gorm:"type:text" json:"variant_id,omitempty"`

	Status   string `gorm:"type:text;default:'queued';index" json:"status"`
	Error    string `gorm:"type:text" json:"error,omitempty"`
	Provider string `gorm:"type:text" json:"provider,omitempty"`
	Instance string `gorm:"type:text" json:"instance,omitempty"`

	QueuedAt time.Time  `gorm:"autoCreateTime" json:"queued_at"`
	SentAt   *time.Time `json:"sent_at,omitempty"`
}

func (MessageLog) TableName() string {
	return "message_logs"
}

func (m *MessageLog) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
