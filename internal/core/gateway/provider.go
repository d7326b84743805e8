// internal/core/gateway/provider.go
package gateway

import (
	"context"
	"errors"
	"fmt"

	"github.com/oraclewa/oraclewa/internal/template"
)

// ErrButtonsUnsupported is returned by providers whose channel has no
// interactive affordances. Callers should fall back to SendText.
var ErrButtonsUnsupported = errors.New("provider does not support button messages")

// Provider is one connected WhatsApp gateway instance. Each value is bound
// to a single instance's credentials; the pool round-robins across them.
type Provider interface {
	// GetProviderName returns the provider name for logging
	GetProviderName() string

	// InstanceName returns the gateway instance this provider is bound to
	InstanceName() string

	// Capabilities reports what the channel supports (buttons etc.)
	Capabilities() template.ChannelCapabilities

	// SendText sends a plain text message
	SendText(ctx context.Context, phone, text string) error

	// SendButtons sends a text message with quick-reply buttons
	SendButtons(ctx context.Context, phone, text string, buttons []template.Button) error

	// CheckHealth verifies the instance is connected
	CheckHealth(ctx context.Context) error

	// PairingCode returns the current pairing/QR code payload for the
	// instance, for rendering on the management API
	PairingCode(ctx context.Context) (string, error)
}

// ProviderType for the factory
type ProviderType string

const (
	ProviderEvolution ProviderType = "evolution"
	ProviderZAPI      ProviderType = "zapi"
)

// ProviderConfig holds one instance's connection settings.
type ProviderConfig struct {
	Type ProviderType

	// Evolution API
	BaseURL      string
	APIKey       string
	InstanceName string

	// Z-API
	ZAPIBaseURL   string
	InstanceID    string
	InstanceToken string
}

// NewProvider builds a provider for a single instance based on config.
func NewProvider(cfg *ProviderConfig) (Provider, error) {
	switch cfg.Type {
	case ProviderEvolution:
		if cfg.BaseURL == "" || cfg.InstanceName == "" {
			return nil, fmt.Errorf("evolution provider requires base URL and instance name")
		}
		return NewEvolutionProvider(cfg.BaseURL, cfg.APIKey, cfg.InstanceName), nil

	case ProviderZAPI:
		if cfg.InstanceID == "" || cfg.InstanceToken == "" {
			return nil, fmt.Errorf("zapi provider requires instance id and token")
		}
		return NewZAPIProvider(cfg.ZAPIBaseURL, cfg.InstanceID, cfg.InstanceToken), nil

	default:
		return nil, fmt.Errorf("unknown provider type: %s", cfg.Type)
	}
}
