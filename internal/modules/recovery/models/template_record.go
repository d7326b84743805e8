package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// TemplateRecord is the database representation of one variant set:
// the full variant list for a (client, event) pair stored as JSONB.
// Weights are data here, not code, so clients can tune them without
// a deploy.
type TemplateRecord struct {
	ID         uuid.UUID      `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	ClientSlug string         `gorm:"type:text;not null;uniqueIndex:idx_template_client_event" json:"client_slug"`
	Event      string         `gorm:"type:text;not null;uniqueIndex:idx_template_client_event" json:"event"`
	Variants   datatypes.JSON `gorm:"type:jsonb;not null" json:"variants"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (TemplateRecord) TableName() string {
	return "message_templates"
}

func (t *TemplateRecord) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}
