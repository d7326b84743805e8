package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Instance is one WhatsApp gateway instance in the dispatch pool.
type Instance struct {
	ID       uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	Name     string    `gorm:"type:text;unique;not null" json:"name"`
	Provider string    `gorm:"type:text;not null" json:"provider"` // "evolution" or "zapi"
	Status   string    `gorm:"type:text;default:'active'" json:"status"`

	// Evolution API credentials
	BaseURL string `gorm:"type:text" json:"base_url,omitempty"`
	APIKey  string `gorm:"type:text" json:"-"`

	// Z-API credentials
	InstanceID    string `gorm:"type:text" json:"instance_id,omitempty"`
	InstanceToken string `gorm:"type:text" json:"-"`

	LastHealthyAt *time.Time `json:"last_healthy_at,omitempty"`
	CreatedAt     time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Instance) TableName() string {
	return "instances"
}

func (i *Instance) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}
