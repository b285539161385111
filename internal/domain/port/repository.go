package port

import (
	"context"

	"github.com/bibbank/pricing-service/internal/domain/event"
	"github.com/bibbank/pricing-service/internal/domain/model"
)

// ---------------------------------------------------------------------------
// Repository ports (driven/secondary adapters)
// ---------------------------------------------------------------------------

// ScenarioRepository persists and retrieves priced scenarios.
type ScenarioRepository interface {
	// Save writes s keyed by its ID. Saving the same ID twice overwrites the
	// first write, so a retried save never produces a duplicate.
	Save(ctx context.Context, s model.Scenario) error
	// FindByID returns valueobject.ErrScenarioNotFound when no scenario has id.
	FindByID(ctx context.Context, id string) (model.Scenario, error)
	// List returns the scenarios whose owner refs match filter, newest first.
	List(ctx context.Context, filter model.OwnerRefs) ([]model.Scenario, error)
}

// RateConfigRepository stores published rate configuration versions.
type RateConfigRepository interface {
	// Publish stores cfg and makes it the active version.
	Publish(ctx context.Context, cfg model.RateConfig) error
	// Active returns the active version.
	Active(ctx context.Context) (model.RateConfig, error)
}

// ---------------------------------------------------------------------------
// Rate configuration ports
// ---------------------------------------------------------------------------

// RateConfigSource loads the authoritative rate configuration.
type RateConfigSource interface {
	Load(ctx context.Context) (model.RateConfig, error)
}

// RateConfigCache keeps the last configuration that loaded successfully so a
// restarted instance can quote while its source is down.
type RateConfigCache interface {
	Get(ctx context.Context) (model.RateConfig, error)
	Put(ctx context.Context, cfg model.RateConfig) error
}

// RateConfigProvider hands out immutable configuration snapshots.
type RateConfigProvider interface {
	// Snapshot returns the current configuration. stale is true when the
	// source could not be reached and a last-known-good copy is served.
	Snapshot(ctx context.Context) (cfg model.RateConfig, stale bool, err error)
	// Reload re-reads the source and swaps the snapshot.
	Reload(ctx context.Context) error
}

// ---------------------------------------------------------------------------
// Event publisher port
// ---------------------------------------------------------------------------

// EventPublisher publishes domain events to external consumers.
type EventPublisher interface {
	Publish(ctx context.Context, events ...event.DomainEvent) error
}
