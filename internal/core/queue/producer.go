// internal/core/queue/producer.go
package queue

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/oraclewa/oraclewa/internal/template"
)

// OutboundMessage is the job published per rendered message. The worker
// only needs what is here: rendering already happened in the API process.
type OutboundMessage struct {
	ID        string            `json:"id"`
	ClientID  string            `json:"client_id"`
	Event     string            `json:"event"`
	Phone     string            `json:"phone"`
	Text      string            `json:"text"`
	Source    string            `json:"source"`
	VariantID string            `json:"variant_id,omitempty"`
	Buttons   []template.Button `json:"buttons,omitempty"`
}

// Producer publishes outbound message jobs.
type Producer interface {
	PublishOutbound(ctx context.Context, msg OutboundMessage) error
}

type RabbitMQProducer struct {
	ch *amqp.Channel
}

func NewProducer(rmq *RabbitMQ) *RabbitMQProducer {
	return &RabbitMQProducer{ch: rmq.Ch}
}

func (p *RabbitMQProducer) PublishOutbound(ctx context.Context, msg OutboundMessage) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal outbound message: %w", err)
	}

	err = p.ch.PublishWithContext(ctx,
		ExchangeName,
		RoutingKey,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish outbound message: %w", err)
	}
	return nil
}
