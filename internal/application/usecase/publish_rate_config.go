package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/bibbank/pricing-service/internal/application/dto"
	"github.com/bibbank/pricing-service/internal/domain/event"
	"github.com/bibbank/pricing-service/internal/domain/port"
)

// PublishRateConfigUseCase validates and activates a new rate configuration
// version, then tells every instance to reload.
type PublishRateConfigUseCase struct {
	repo      port.RateConfigRepository
	provider  port.RateConfigProvider
	publisher port.EventPublisher
	logger    *slog.Logger
	now       func() time.Time
}

// NewPublishRateConfigUseCase wires dependencies.
func NewPublishRateConfigUseCase(
	repo port.RateConfigRepository,
	provider port.RateConfigProvider,
	publisher port.EventPublisher,
	logger *slog.Logger,
) *PublishRateConfigUseCase {
	return &PublishRateConfigUseCase{
		repo:      repo,
		provider:  provider,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}
}

// Execute stores the configuration and publishes RateConfigPublished.
func (uc *PublishRateConfigUseCase) Execute(
	ctx context.Context,
	req dto.PublishRateConfigRequest,
) (dto.PublishRateConfigResponse, error) {
	ctx, span := tracer.Start(ctx, "PublishRateConfig")
	defer span.End()

	now := uc.now().UTC()
	cfg := req.Config
	if cfg.EffectiveAt.IsZero() {
		cfg.EffectiveAt = now
	}

	// 1. Reject configurations that cannot quote deterministically.
	if err := cfg.Validate(); err != nil {
		return dto.PublishRateConfigResponse{}, fmt.Errorf("validate rate config: %w", err)
	}

	// 2. Persist as the active version.
	if err := uc.repo.Publish(ctx, cfg); err != nil {
		span.RecordError(err)
		return dto.PublishRateConfigResponse{}, fmt.Errorf("store rate config: %w", err)
	}

	// 3. Reload locally so this instance does not wait for its own event.
	if err := uc.provider.Reload(ctx); err != nil {
		uc.logger.Warn("local rate config reload failed", "version", cfg.Version, "error", err)
	}

	// 4. Notify the other instances.
	evt := event.NewRateConfigPublished(cfg.Version, cfg.EffectiveAt, req.PublishedBy, now)
	if err := uc.publisher.Publish(ctx, evt); err != nil {
		return dto.PublishRateConfigResponse{}, fmt.Errorf("publish events: %w", err)
	}

	uc.logger.Info("rate config published", "version", cfg.Version, "published_by", req.PublishedBy)
	return dto.PublishRateConfigResponse{Version: cfg.Version, EffectiveAt: cfg.EffectiveAt}, nil
}
