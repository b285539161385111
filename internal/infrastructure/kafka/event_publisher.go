package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/bibbank/pricing-service/internal/domain/event"
	pkgevents "github.com/bibbank/pricing-service/pkg/events"
	pkgkafka "github.com/bibbank/pricing-service/pkg/kafka"
)

// MessagePublisher is satisfied by *pkgkafka.Producer.
type MessagePublisher interface {
	Publish(ctx context.Context, topic string, messages ...pkgkafka.Message) error
}

// EventPublisher implements port.EventPublisher by writing events to Kafka.
// Events are keyed by aggregate id so one scenario's events stay ordered.
type EventPublisher struct {
	producer MessagePublisher
	topic    string
	logger   *slog.Logger
}

func NewEventPublisher(producer MessagePublisher, topic string, logger *slog.Logger) *EventPublisher {
	return &EventPublisher{
		producer: producer,
		topic:    topic,
		logger:   logger,
	}
}

// Publish serialises and sends domain events to Kafka.
func (p *EventPublisher) Publish(ctx context.Context, events ...event.DomainEvent) error {
	messages := make([]pkgkafka.Message, 0, len(events))
	for _, evt := range events {
		payload, err := json.Marshal(evt)
		if err != nil {
			return fmt.Errorf("marshal event %s: %w", evt.EventType(), err)
		}

		p.logger.DebugContext(ctx, "publishing domain event",
			"event_type", evt.EventType(),
			"aggregate_id", evt.AggregateID(),
			"topic", p.topic,
			"payload_size", len(payload),
		)

		headers := pkgevents.Headers(evt)
		headers["content_type"] = "application/json"
		messages = append(messages, pkgkafka.Message{
			Key:     []byte(evt.AggregateID()),
			Value:   payload,
			Headers: headers,
		})
	}

	if len(messages) == 0 {
		return nil
	}

	if err := p.producer.Publish(ctx, p.topic, messages...); err != nil {
		return fmt.Errorf("failed to publish events to topic %s: %w", p.topic, err)
	}
	return nil
}
