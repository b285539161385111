package events

// EventCollector is embedded in aggregates that raise events while being
// built. The owning use case drains it after a successful write.
type EventCollector struct {
	pending []DomainEvent
}

// Record queues evt for publication.
func (c *EventCollector) Record(evt DomainEvent) {
	c.pending = append(c.pending, evt)
}

// Events returns the queued events without draining them.
func (c *EventCollector) Events() []DomainEvent {
	return c.pending
}

// Drain returns the queued events and empties the queue.
func (c *EventCollector) Drain() []DomainEvent {
	out := c.pending
	c.pending = nil
	return out
}
