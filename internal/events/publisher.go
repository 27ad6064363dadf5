package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

const Topic = "storefront.orders"

// Publisher emits order lifecycle events. Publishing is best-effort from
// the HTTP handlers' point of view: a broker outage must not fail a
// purchase, so errors are logged and swallowed by the callers.
type Publisher struct {
	writer   *kafka.Writer
	producer string
	log      *slog.Logger
}

func NewPublisher(brokers []string, producer string, log *slog.Logger) *Publisher {
	if log == nil {
		log = slog.Default()
	}
	return &Publisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        Topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
		},
		producer: producer,
		log:      log,
	}
}

// Publish wraps the payload in an envelope keyed by correlation id, so
// all events of one order land in the same partition, in order.
func (p *Publisher) Publish(ctx context.Context, eventType, correlationID string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal event payload: %w", err)
	}

	envelope := Envelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      p.producer,
		CorrelationID: correlationID,
		Payload:       data,
	}

	value, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("marshal event envelope: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(correlationID),
		Value: value,
		Time:  envelope.OccurredAt,
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write event %s: %w", eventType, err)
	}

	p.log.Info("event published", "event_type", eventType, "correlation_id", correlationID)
	return nil
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}
