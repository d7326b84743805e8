package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Client is one tenant of the recovery pipeline. Slug is the external
// identifier webhooks arrive under (e.g. "imperio").
type Client struct {
	ID     uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	Slug   string    `gorm:"type:text;unique;not null" json:"slug"`
	Name   string    `gorm:"type:text;not null" json:"name"`
	Status string    `gorm:"type:text;default:'active'" json:"status"`

	// Per-event payload transformer maps: event -> output field -> dotted
	// JSON path into the upstream payload. Empty means the standard
	// multi-shape extraction applies.
	Transformers datatypes.JSON `gorm:"type:jsonb" json:"transformers,omitempty"`

	// PhoneFormat "brazilian" enables length validation on extraction.
	PhoneFormat string `gorm:"type:text" json:"phone_format,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Client) TableName() string {
	return "clients"
}

func (c *Client) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// IsActive reports whether webhooks for this client should be processed.
func (c *Client) IsActive() bool {
	return c.Status == "active"
}
