// internal/core/queue/worker.go
package queue

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/oraclewa/oraclewa/internal/core/antiban"
	"github.com/oraclewa/oraclewa/internal/core/gateway"
	"github.com/oraclewa/oraclewa/pkg/metrics"
)

// DeliveryRecorder persists the outcome of each dispatch attempt.
// Implemented by repositories.MessageLogRepo.
type DeliveryRecorder interface {
	MarkSent(id, provider, instance string) error
	MarkFailed(id, reason string) error
}

// Worker consumes outbound jobs, paces them through the anti-ban delay
// manager and sends via the instance pool.
type Worker struct {
	ch     *amqp.Channel
	pool   *gateway.Pool
	delays *antiban.DelayManager
	logs   DeliveryRecorder
}

func NewWorker(rmq *RabbitMQ, pool *gateway.Pool, delays *antiban.DelayManager, logs DeliveryRecorder) *Worker {
	return &Worker{ch: rmq.Ch, pool: pool, delays: delays, logs: logs}
}

// Start consumes from the outbound queue until ctx is cancelled.
func (w *Worker) Start(ctx context.Context) error {
	// One unacked message at a time: the anti-ban pacing is the
	// throughput limit anyway.
	if err := w.ch.Qos(1, 0, false); err != nil {
		return err
	}

	msgs, err := w.ch.Consume(
		QueueName,
		"",    // consumer
		false, // manual ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return err
	}

	log.Println("📬 Dispatch worker consuming outbound queue")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-msgs:
			if !ok {
				return errors.New("outbound channel closed")
			}
			w.handle(ctx, d)
		}
	}
}

func (w *Worker) handle(ctx context.Context, d amqp.Delivery) {
	var msg OutboundMessage
	if err := json.Unmarshal(d.Body, &msg); err != nil {
		log.Printf("❌ Malformed outbound job, sending to DLQ: %v", err)
		_ = d.Nack(false, false)
		return
	}

	if err := w.delays.Wait(ctx); err != nil {
		// Shutting down mid-delay: requeue so the job survives.
		_ = d.Nack(false, true)
		return
	}

	provider, err := w.pool.Acquire()
	if err != nil {
		log.Printf("❌ No instance for message %s: %v", msg.ID, err)
		_ = w.logs.MarkFailed(msg.ID, err.Error())
		_ = d.Nack(false, false)
		return
	}

	start := time.Now()
	err = w.send(ctx, provider, msg)
	metrics.ObserveSendDuration(time.Since(start).Seconds())

	if err != nil {
		log.Printf("❌ Send failed via %s/%s: %v", provider.GetProviderName(), provider.InstanceName(), err)
		metrics.RecordMessageSent(provider.GetProviderName(), "failed")
		w.pool.MarkDown(provider.InstanceName())
		_ = w.logs.MarkFailed(msg.ID, err.Error())
		_ = d.Nack(false, false)
		return
	}

	metrics.RecordMessageSent(provider.GetProviderName(), "sent")
	_ = w.logs.MarkSent(msg.ID, provider.GetProviderName(), provider.InstanceName())
	_ = d.Ack(false)
	log.Printf("✅ Message %s sent to %s via %s/%s", msg.ID, msg.Phone, provider.GetProviderName(), provider.InstanceName())
}

// send prefers a button message when both the job and the instance support
// it, degrading to plain text otherwise.
func (w *Worker) send(ctx context.Context, provider gateway.Provider, msg OutboundMessage) error {
	if len(msg.Buttons) > 0 && provider.Capabilities().SupportsInteractiveAffordances {
		err := provider.SendButtons(ctx, msg.Phone, msg.Text, msg.Buttons)
		if err == nil || !errors.Is(err, gateway.ErrButtonsUnsupported) {
			return err
		}
	}
	return provider.SendText(ctx, msg.Phone, msg.Text)
}
