package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/bibbank/pricing-service/internal/domain/event"
	"github.com/bibbank/pricing-service/internal/domain/port"
	pkgkafka "github.com/bibbank/pricing-service/pkg/kafka"
)

// NewRateConfigListener returns a consumer handler that reloads provider
// whenever a rate configuration version is published. Other event types on
// the topic are acknowledged and ignored.
func NewRateConfigListener(provider port.RateConfigProvider, logger *slog.Logger) pkgkafka.Handler {
	return func(ctx context.Context, msg pkgkafka.Message) error {
		if msg.Headers["event_type"] != event.TypeRateConfigPublished {
			return nil
		}

		var published struct {
			Version string `json:"version"`
		}
		if err := json.Unmarshal(msg.Value, &published); err != nil {
			// Reload anyway; the payload is informational.
			logger.WarnContext(ctx, "undecodable rate config event", "error", err)
		}

		if err := provider.Reload(ctx); err != nil {
			return fmt.Errorf("reload rate config %s: %w", published.Version, err)
		}
		logger.InfoContext(ctx, "rate config reloaded from event",
			"version", published.Version,
			"event_id", msg.Headers["event_id"],
		)
		return nil
	}
}
