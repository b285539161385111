package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"

	"github.com/bibbank/pricing-service/internal/application/dto"
	"github.com/bibbank/pricing-service/internal/domain/port"
	"github.com/bibbank/pricing-service/internal/domain/service"
)

// QuoteRateUseCase prices a risk-adjusted rate against the current rate
// configuration snapshot.
type QuoteRateUseCase struct {
	provider port.RateConfigProvider
	engine   *service.RateQuoteEngine
	logger   *slog.Logger
}

// NewQuoteRateUseCase wires dependencies.
func NewQuoteRateUseCase(
	provider port.RateConfigProvider,
	engine *service.RateQuoteEngine,
	logger *slog.Logger,
) *QuoteRateUseCase {
	return &QuoteRateUseCase{provider: provider, engine: engine, logger: logger}
}

// Execute returns the quote. The only error is an unavailable configuration;
// request problems are reported in the result.
func (uc *QuoteRateUseCase) Execute(
	ctx context.Context,
	req dto.RateQuoteRequest,
) (dto.RateQuoteResponse, error) {
	ctx, span := tracer.Start(ctx, "QuoteRate")
	defer span.End()

	// 1. Snapshot the configuration once for the whole quote.
	cfg, stale, err := uc.provider.Snapshot(ctx)
	if err != nil {
		span.RecordError(err)
		return dto.RateQuoteResponse{}, fmt.Errorf("load rate config: %w", err)
	}

	// 2. Quote.
	result := uc.engine.Quote(cfg, req)
	if stale {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("Rate configuration could not be refreshed; quoted with last known version %s", cfg.Version))
		uc.logger.Warn("quoted with stale rate configuration", "version", cfg.Version)
	}

	span.SetAttributes(
		attribute.String("pricing.config_version", cfg.Version),
		attribute.Bool("pricing.is_valid", result.IsValid),
		attribute.Bool("pricing.stale_config", stale),
	)
	uc.logger.Debug("rate quoted",
		"version", cfg.Version,
		"is_valid", result.IsValid,
		"final_rate", result.FinalRate.String(),
	)
	return result, nil
}
