// Package events defines the domain event envelope published by the pricing
// service. Event metadata travels in message headers; the event struct
// itself is the JSON payload.
package events

import (
	"time"

	"github.com/google/uuid"
)

// DomainEvent is implemented by every event the service publishes.
type DomainEvent interface {
	EventID() string
	EventType() string
	AggregateID() string
	AggregateType() string
	OccurredAt() time.Time
}

// BaseEvent carries the envelope fields. Embed it in concrete events.
type BaseEvent struct {
	occurredAt    time.Time
	id            string
	eventType     string
	aggregateID   string
	aggregateType string
}

// NewBaseEvent stamps a new event with a random ID. occurredAt is normalised
// to UTC.
func NewBaseEvent(eventType, aggregateID, aggregateType string, occurredAt time.Time) BaseEvent {
	return BaseEvent{
		id:            uuid.NewString(),
		eventType:     eventType,
		aggregateID:   aggregateID,
		aggregateType: aggregateType,
		occurredAt:    occurredAt.UTC(),
	}
}

func (e BaseEvent) EventID() string       { return e.id }
func (e BaseEvent) EventType() string     { return e.eventType }
func (e BaseEvent) AggregateID() string   { return e.aggregateID }
func (e BaseEvent) AggregateType() string { return e.aggregateType }
func (e BaseEvent) OccurredAt() time.Time { return e.occurredAt }

// Headers returns the message headers describing evt.
func Headers(evt DomainEvent) map[string]string {
	return map[string]string{
		"event_id":       evt.EventID(),
		"event_type":     evt.EventType(),
		"aggregate_id":   evt.AggregateID(),
		"aggregate_type": evt.AggregateType(),
		"occurred_at":    evt.OccurredAt().Format(time.RFC3339Nano),
	}
}
