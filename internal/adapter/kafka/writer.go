// Package kafka publishes entity mutation audit events.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/weather-gateway/internal/config"
	"github.com/couchcryptid/weather-gateway/internal/observability"
)

// AuditEvent records one mutation of a stored entity.
type AuditEvent struct {
	Entity     string    `json:"entity"`
	Action     string    `json:"action"`
	EntityID   string    `json:"entity_id"`
	ActorID    string    `json:"actor_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Writer produces audit events to the configured Kafka topic. Publishing is
// best effort: failures are logged and counted, never surfaced to the request
// that triggered the mutation.
type Writer struct {
	writer  *kafkago.Writer
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewWriter creates a Kafka producer for the audit topic.
func NewWriter(cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaAuditTopic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, logger: logger, metrics: metrics}
}

// Publish serializes and writes one audit event.
func (w *Writer) Publish(ctx context.Context, event AuditEvent) {
	msg, err := serializeToMessage(event)
	if err != nil {
		w.metrics.AuditEventErrors.Inc()
		w.logger.Error("serialize audit event failed", "error", err,
			"entity", event.Entity, "action", event.Action)
		return
	}

	if err := w.writer.WriteMessages(ctx, msg); err != nil {
		w.metrics.AuditEventErrors.Inc()
		w.logger.Error("publish audit event failed", "error", err,
			"entity", event.Entity, "action", event.Action, "entity_id", event.EntityID)
		return
	}
	w.metrics.AuditEventsPublished.Inc()
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals an AuditEvent into a Kafka message keyed by the
// mutated entity's id so events for one entity stay in partition order.
func serializeToMessage(event AuditEvent) (kafkago.Message, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize audit event: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(event.EntityID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "entity", Value: []byte(event.Entity)},
			{Key: "action", Value: []byte(event.Action)},
			{Key: "occurred_at", Value: []byte(event.OccurredAt.Format(time.RFC3339))},
		},
	}, nil
}
