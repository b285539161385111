package usecase_test

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/bibbank/pricing-service/internal/domain/event"
	"github.com/bibbank/pricing-service/internal/domain/model"
	"github.com/bibbank/pricing-service/internal/domain/valueobject"
)

// --- Mock implementations ---

type mockScenarioRepository struct {
	mu           sync.Mutex
	saveFunc     func(ctx context.Context, s model.Scenario) error
	findByIDFunc func(ctx context.Context, id string) (model.Scenario, error)
	listFunc     func(ctx context.Context, filter model.OwnerRefs) ([]model.Scenario, error)
	saved        map[string]model.Scenario
	saveCalls    int
}

func (m *mockScenarioRepository) Save(ctx context.Context, s model.Scenario) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saveCalls++
	if m.saveFunc != nil {
		if err := m.saveFunc(ctx, s); err != nil {
			return err
		}
	}
	if m.saved == nil {
		m.saved = make(map[string]model.Scenario)
	}
	m.saved[s.ID()] = s
	return nil
}

func (m *mockScenarioRepository) FindByID(ctx context.Context, id string) (model.Scenario, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.saved[id]
	if !ok {
		return model.Scenario{}, valueobject.ErrScenarioNotFound
	}
	return s, nil
}

func (m *mockScenarioRepository) List(ctx context.Context, filter model.OwnerRefs) ([]model.Scenario, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, filter)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Scenario
	for _, s := range m.saved {
		if s.Owner().Matches(filter) {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt().After(out[j].CreatedAt()) })
	return out, nil
}

type mockEventPublisher struct {
	publishFunc     func(ctx context.Context, events ...event.DomainEvent) error
	publishedEvents []event.DomainEvent
}

func (m *mockEventPublisher) Publish(ctx context.Context, evts ...event.DomainEvent) error {
	if m.publishFunc != nil {
		return m.publishFunc(ctx, evts...)
	}
	m.publishedEvents = append(m.publishedEvents, evts...)
	return nil
}

type mockRateConfigProvider struct {
	snapshotFunc func(ctx context.Context) (model.RateConfig, bool, error)
	reloadFunc   func(ctx context.Context) error
	reloads      int
}

func (m *mockRateConfigProvider) Snapshot(ctx context.Context) (model.RateConfig, bool, error) {
	if m.snapshotFunc != nil {
		return m.snapshotFunc(ctx)
	}
	return rateConfig(), false, nil
}

func (m *mockRateConfigProvider) Reload(ctx context.Context) error {
	m.reloads++
	if m.reloadFunc != nil {
		return m.reloadFunc(ctx)
	}
	return nil
}

type mockRateConfigRepository struct {
	publishFunc func(ctx context.Context, cfg model.RateConfig) error
	published   []model.RateConfig
}

func (m *mockRateConfigRepository) Publish(ctx context.Context, cfg model.RateConfig) error {
	if m.publishFunc != nil {
		return m.publishFunc(ctx, cfg)
	}
	m.published = append(m.published, cfg)
	return nil
}

func (m *mockRateConfigRepository) Active(_ context.Context) (model.RateConfig, error) {
	if len(m.published) == 0 {
		return model.RateConfig{}, valueobject.ErrConfigurationUnavailable
	}
	return m.published[len(m.published)-1], nil
}

// --- Fixtures ---

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func rateConfig() model.RateConfig {
	return model.RateConfig{
		Version: "v-test",
		CreditScoreTiers: model.TierSet{
			{Label: "740+", Min: dec("740"), Max: decPtr("850"), RateAdjustment: dec("-0.25")},
			{Label: "680-739", Min: dec("680"), Max: decPtr("739"), RateAdjustment: dec("0.25")},
		},
		LTVTiers: model.TierSet{
			{Label: "<=70", Min: dec("0"), Max: decPtr("70"), RateAdjustment: dec("0")},
			{Label: "70-80", Min: dec("70.01"), Max: decPtr("80"), RateAdjustment: dec("0.25")},
		},
		LoanAmountTiers: model.TierSet{
			{Label: "Any", Min: dec("0"), RateAdjustment: dec("0")},
		},
		PropertyTypes: []model.RiskFactor{{Name: "SFR", RiskMultiplier: dec("1")}},
		LoanPurposes:  []model.RiskFactor{{Name: "Purchase", RiskMultiplier: dec("1")}},
		Products:      []model.Product{{Code: "DSCR30", Name: "DSCR 30", BaseRate: dec("8")}},
		MinAdjustment: dec("-1"),
		MaxAdjustment: dec("2"),
	}
}
