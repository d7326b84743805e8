package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	rendersTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "template_renders_total",
			Help: "Total number of template renders by source tier",
		},
		[]string{"event", "source"},
	)

	variantSelections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "template_variant_selections_total",
			Help: "Total number of variant selections by client and variant",
		},
		[]string{"client", "event", "variant"},
	)

	templateParseFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "template_parse_failures_total",
			Help: "Total number of template bodies rejected at parse time",
		},
		[]string{"event"},
	)

	webhooksReceived = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "webhooks_received_total",
			Help: "Total number of webhook events received",
		},
		[]string{"client", "event", "status"},
	)

	messagesSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "messages_sent_total",
			Help: "Total number of WhatsApp messages dispatched",
		},
		[]string{"provider", "status"},
	)

	sendDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "message_send_duration_seconds",
			Help:    "Duration of gateway send calls in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	antibanDelay = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "antiban_delay_seconds",
			Help:    "Anti-ban delay applied before each send in seconds",
			Buckets: []float64{1, 5, 15, 30, 60, 90, 120, 300, 600, 900},
		},
	)
)

func RecordRender(event, source string) {
	rendersTotal.WithLabelValues(event, source).Inc()
}

func RecordVariantSelection(client, event, variant string) {
	variantSelections.WithLabelValues(client, event, variant).Inc()
}

func RecordTemplateParseFailure(event string) {
	templateParseFailures.WithLabelValues(event).Inc()
}

func RecordWebhook(client, event, status string) {
	webhooksReceived.WithLabelValues(client, event, status).Inc()
}

func RecordMessageSent(provider, status string) {
	messagesSent.WithLabelValues(provider, status).Inc()
}

func ObserveSendDuration(seconds float64) {
	sendDuration.Observe(seconds)
}

func ObserveAntibanDelay(seconds float64) {
	antibanDelay.Observe(seconds)
}
