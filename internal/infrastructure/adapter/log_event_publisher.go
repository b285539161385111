package adapter

import (
	"context"
	"log/slog"

	"github.com/bibbank/pricing-service/internal/domain/event"
)

// LogEventPublisher implements port.EventPublisher by logging events. It is
// used when no Kafka brokers are configured.
type LogEventPublisher struct {
	logger *slog.Logger
}

func NewLogEventPublisher(logger *slog.Logger) *LogEventPublisher {
	return &LogEventPublisher{logger: logger}
}

func (p *LogEventPublisher) Publish(ctx context.Context, events ...event.DomainEvent) error {
	for _, evt := range events {
		p.logger.InfoContext(ctx, "domain event",
			"event_type", evt.EventType(),
			"event_id", evt.EventID(),
			"aggregate_id", evt.AggregateID(),
		)
	}
	return nil
}
