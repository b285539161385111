package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/bibbank/pricing-service/internal/application/dto"
	"github.com/bibbank/pricing-service/internal/domain/model"
	"github.com/bibbank/pricing-service/internal/domain/port"
	"github.com/bibbank/pricing-service/internal/domain/valueobject"
)

// DefaultStoreTimeout bounds a single scenario store call.
const DefaultStoreTimeout = 3 * time.Second

// SaveScenarioUseCase persists a calculation that has already been priced.
type SaveScenarioUseCase struct {
	repo      port.ScenarioRepository
	publisher port.EventPublisher
	logger    *slog.Logger
	now       func() time.Time
	timeout   time.Duration
}

// NewSaveScenarioUseCase wires dependencies. A non-positive timeout uses
// DefaultStoreTimeout.
func NewSaveScenarioUseCase(
	repo port.ScenarioRepository,
	publisher port.EventPublisher,
	logger *slog.Logger,
	timeout time.Duration,
) *SaveScenarioUseCase {
	if timeout <= 0 {
		timeout = DefaultStoreTimeout
	}
	return &SaveScenarioUseCase{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
		timeout:   timeout,
	}
}

// WithClock overrides the clock used for created_at.
func (uc *SaveScenarioUseCase) WithClock(now func() time.Time) *SaveScenarioUseCase {
	uc.now = now
	return uc
}

// Execute stores the scenario and publishes ScenarioSaved. Passing the same
// ScenarioID again overwrites the earlier write.
func (uc *SaveScenarioUseCase) Execute(
	ctx context.Context,
	req dto.SaveScenarioRequest,
) (dto.ScenarioResponse, error) {
	ctx, span := tracer.Start(ctx, "SaveScenario")
	defer span.End()

	// 1. Build the aggregate.
	s, err := model.NewScenario(req.ScenarioID, req.Name, req.Inputs, req.Result, req.Owner, uc.now())
	if err != nil {
		return dto.ScenarioResponse{}, fmt.Errorf("create scenario: %w", err)
	}

	// 2. Persist within the store time box.
	storeCtx, cancel := context.WithTimeout(ctx, uc.timeout)
	defer cancel()
	if err := uc.repo.Save(storeCtx, s); err != nil {
		span.RecordError(err)
		return dto.ScenarioResponse{ID: s.ID()}, fmt.Errorf("save scenario: %w: %w", valueobject.ErrPersistence, err)
	}

	// 3. Publish domain events. The scenario is durable at this point so a
	// publish failure is logged, not returned.
	if err := uc.publisher.Publish(ctx, s.DomainEvents()...); err != nil {
		uc.logger.Warn("scenario saved but event publish failed",
			"scenario_id", s.ID(),
			"error", err,
		)
	}

	uc.logger.Debug("scenario saved", "scenario_id", s.ID(), "product_type", s.ProductType().String())
	return toScenarioResponse(s), nil
}
