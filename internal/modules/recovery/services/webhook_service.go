package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"

	"github.com/oraclewa/oraclewa/internal/core/queue"
	"github.com/oraclewa/oraclewa/internal/modules/recovery/models"
	"github.com/oraclewa/oraclewa/internal/modules/recovery/repositories"
	"github.com/oraclewa/oraclewa/internal/template"
	"github.com/oraclewa/oraclewa/pkg/metrics"
)

// WebhookService turns normalized commerce events into queued WhatsApp
// messages: extract payload data, render through the template engine,
// record the message and publish it for the dispatch worker.
type WebhookService struct {
	clientRepo repositories.ClientRepo
	logRepo    repositories.MessageLogRepo
	engine     *template.Engine
	producer   queue.Producer
}

func NewWebhookService(
	clientRepo repositories.ClientRepo,
	logRepo repositories.MessageLogRepo,
	engine *template.Engine,
	producer queue.Producer,
) *WebhookService {
	return &WebhookService{
		clientRepo: clientRepo,
		logRepo:    logRepo,
		engine:     engine,
		producer:   producer,
	}
}

// EventResult is returned to the webhook caller for acknowledgement.
type EventResult struct {
	MessageID string          `json:"message_id"`
	Client    string          `json:"client"`
	Event     string          `json:"event"`
	Customer  string          `json:"customer"`
	Phone     string          `json:"phone"`
	Source    template.Source `json:"source"`
	VariantID string          `json:"variant_id,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

// ProcessEvent handles one webhook event end to end (minus the actual
// send, which the worker owns). Unknown clients still get a message via
// the fallback chain: mid-onboarding clients must never drop events.
func (s *WebhookService) ProcessEvent(ctx context.Context, clientSlug string, event template.EventType, payload map[string]interface{}) (*EventResult, error) {
	log.Printf("📥 Processing webhook: %s/%s", clientSlug, event)

	client, err := s.clientRepo.GetBySlug(clientSlug)
	if err != nil && err != gorm.ErrRecordNotFound {
		metrics.RecordWebhook(clientSlug, string(event), "error")
		return nil, fmt.Errorf("failed to look up client %s: %w", clientSlug, err)
	}
	if client != nil && !client.IsActive() {
		metrics.RecordWebhook(clientSlug, string(event), "inactive")
		return nil, fmt.Errorf("client %s is not active", clientSlug)
	}

	data := s.extract(client, event, payload)
	phoneFormat := ""
	if client != nil {
		phoneFormat = client.PhoneFormat
	}
	if err := validateExtracted(data, phoneFormat); err != nil {
		metrics.RecordWebhook(clientSlug, string(event), "invalid")
		return nil, err
	}

	rctx := buildRenderContext(data, payload)

	// Render with affordances attached; the worker strips buttons when
	// the chosen instance cannot carry them.
	msg, err := s.engine.RenderForChannel(clientSlug, event, rctx, template.ChannelCapabilities{
		SupportsInteractiveAffordances: true,
	})
	if err != nil {
		metrics.RecordWebhook(clientSlug, string(event), "render_failed")
		return nil, fmt.Errorf("failed to render message for %s/%s: %w", clientSlug, event, err)
	}

	entry := &models.MessageLog{
		ClientID:  clientSlug,
		Event:     string(event),
		Phone:     data.Phone,
		Source:    string(msg.Source),
		VariantID: msg.VariantID,
		Status:    models.MessageStatusQueued,
	}
	if err := s.logRepo.Create(entry); err != nil {
		return nil, fmt.Errorf("failed to record message: %w", err)
	}

	job := queue.OutboundMessage{
		ID:        entry.ID.String(),
		ClientID:  clientSlug,
		Event:     string(event),
		Phone:     data.Phone,
		Text:      msg.Text,
		Source:    string(msg.Source),
		VariantID: msg.VariantID,
	}
	if msg.SupportsButtons {
		job.Buttons = msg.Buttons
	}
	if err := s.producer.PublishOutbound(ctx, job); err != nil {
		_ = s.logRepo.MarkFailed(entry.ID.String(), "publish failed: "+err.Error())
		metrics.RecordWebhook(clientSlug, string(event), "publish_failed")
		return nil, fmt.Errorf("failed to enqueue message: %w", err)
	}

	metrics.RecordWebhook(clientSlug, string(event), "queued")
	log.Printf("✅ Webhook processed: %s/%s -> %s (source=%s variant=%s)", clientSlug, event, data.Phone, msg.Source, msg.VariantID)

	return &EventResult{
		MessageID: entry.ID.String(),
		Client:    clientSlug,
		Event:     string(event),
		Customer:  data.CustomerName,
		Phone:     data.Phone,
		Source:    msg.Source,
		VariantID: msg.VariantID,
		Timestamp: time.Now(),
	}, nil
}

// extract picks the client's configured transformer map for the event if
// one exists, otherwise the standard multi-shape extraction.
func (s *WebhookService) extract(client *models.Client, event template.EventType, payload map[string]interface{}) ExtractedData {
	if client != nil && len(client.Transformers) > 0 {
		var byEvent map[string]map[string]string
		if err := json.Unmarshal(client.Transformers, &byEvent); err == nil {
			if transformers, ok := byEvent[string(event)]; ok {
				return extractWithTransformers(payload, transformers)
			}
		} else {
			log.Printf("⚠️ Invalid transformer config for client %s: %v", client.Slug, err)
		}
	}
	return extractStandard(payload)
}

// buildRenderContext maps extracted data into the template context,
// carrying custom top-level payload fields through for client templates
// that reference them.
func buildRenderContext(data ExtractedData, payload map[string]interface{}) *template.RenderContext {
	custom := map[string]interface{}{}
	if extra, ok := payload["customFields"].(map[string]interface{}); ok {
		for k, v := range extra {
			custom[k] = v
		}
	}

	return &template.RenderContext{
		User: template.User{
			Name:  data.CustomerName,
			Phone: data.Phone,
			Email: data.Email,
			CPF:   data.CPF,
		},
		Product: template.Product{
			Title: data.ProductName,
		},
		Order: template.Order{
			ID:           data.OrderID,
			Total:        data.Total,
			ExpirationAt: data.ExpirationAt,
			CreatedAt:    time.Now(),
		},
		Custom: custom,
	}
}
