// Package adapter holds in-process implementations of the domain ports used
// for local development and as a fallback when no database is configured.
package adapter

import (
	"context"
	"sort"
	"sync"

	"github.com/bibbank/pricing-service/internal/domain/model"
	"github.com/bibbank/pricing-service/internal/domain/valueobject"
)

// MemoryScenarioRepo is a ScenarioRepository backed by a map. Contents are
// lost on restart.
type MemoryScenarioRepo struct {
	mu        sync.RWMutex
	scenarios map[string]model.Scenario
}

func NewMemoryScenarioRepo() *MemoryScenarioRepo {
	return &MemoryScenarioRepo{scenarios: make(map[string]model.Scenario)}
}

// Save upserts s. The original creation time is kept on overwrite.
func (r *MemoryScenarioRepo) Save(ctx context.Context, s model.Scenario) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if prev, ok := r.scenarios[s.ID()]; ok {
		s = model.ReconstructScenario(s.ID(), s.Name(), s.Inputs(), s.Result(), s.Owner(), prev.CreatedAt())
	}
	r.scenarios[s.ID()] = s
	return nil
}

func (r *MemoryScenarioRepo) FindByID(ctx context.Context, id string) (model.Scenario, error) {
	if err := ctx.Err(); err != nil {
		return model.Scenario{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.scenarios[id]
	if !ok {
		return model.Scenario{}, valueobject.ErrScenarioNotFound
	}
	return s, nil
}

// List returns matching scenarios newest first, ties broken by id.
func (r *MemoryScenarioRepo) List(ctx context.Context, filter model.OwnerRefs) ([]model.Scenario, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	out := make([]model.Scenario, 0, len(r.scenarios))
	for _, s := range r.scenarios {
		if s.Owner().Matches(filter) {
			out = append(out, s)
		}
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt().Equal(out[j].CreatedAt()) {
			return out[i].CreatedAt().After(out[j].CreatedAt())
		}
		return out[i].ID() < out[j].ID()
	})
	return out, nil
}

// Ping always succeeds.
func (r *MemoryScenarioRepo) Ping(context.Context) error { return nil }
