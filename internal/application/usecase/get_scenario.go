package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/bibbank/pricing-service/internal/application/dto"
	"github.com/bibbank/pricing-service/internal/domain/port"
	"github.com/bibbank/pricing-service/internal/domain/valueobject"
)

// GetScenarioUseCase retrieves a scenario by ID.
type GetScenarioUseCase struct {
	repo    port.ScenarioRepository
	timeout time.Duration
}

// NewGetScenarioUseCase wires dependencies.
func NewGetScenarioUseCase(repo port.ScenarioRepository, timeout time.Duration) *GetScenarioUseCase {
	if timeout <= 0 {
		timeout = DefaultStoreTimeout
	}
	return &GetScenarioUseCase{repo: repo, timeout: timeout}
}

// Execute returns the scenario with the given ID.
func (uc *GetScenarioUseCase) Execute(
	ctx context.Context,
	req dto.GetScenarioRequest,
) (dto.ScenarioResponse, error) {
	if req.ScenarioID == "" {
		return dto.ScenarioResponse{}, &valueobject.InvalidInputError{Field: "scenario_id", Reason: "is required"}
	}

	ctx, cancel := context.WithTimeout(ctx, uc.timeout)
	defer cancel()

	s, err := uc.repo.FindByID(ctx, req.ScenarioID)
	if err != nil {
		return dto.ScenarioResponse{}, fmt.Errorf("find scenario: %w", err)
	}
	return toScenarioResponse(s), nil
}

// ListScenariosUseCase lists scenarios by owner reference.
type ListScenariosUseCase struct {
	repo    port.ScenarioRepository
	timeout time.Duration
}

// NewListScenariosUseCase wires dependencies.
func NewListScenariosUseCase(repo port.ScenarioRepository, timeout time.Duration) *ListScenariosUseCase {
	if timeout <= 0 {
		timeout = DefaultStoreTimeout
	}
	return &ListScenariosUseCase{repo: repo, timeout: timeout}
}

// Execute returns matching scenarios, newest first.
func (uc *ListScenariosUseCase) Execute(
	ctx context.Context,
	req dto.ListScenariosRequest,
) (dto.ScenarioListResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, uc.timeout)
	defer cancel()

	scenarios, err := uc.repo.List(ctx, req.Owner)
	if err != nil {
		return dto.ScenarioListResponse{}, fmt.Errorf("list scenarios: %w: %w", valueobject.ErrPersistence, err)
	}

	resp := dto.ScenarioListResponse{Scenarios: make([]dto.ScenarioResponse, 0, len(scenarios))}
	for _, s := range scenarios {
		resp.Scenarios = append(resp.Scenarios, toScenarioResponse(s))
	}
	return resp, nil
}
