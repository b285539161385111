package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/bibbank/pricing-service/internal/domain/model"
	"github.com/bibbank/pricing-service/internal/domain/valueobject"
	pkgpostgres "github.com/bibbank/pricing-service/pkg/postgres"
)

// ScenarioRepo implements port.ScenarioRepository. Inputs and results are
// stored as JSONB; decimals encode as strings so no precision is lost.
type ScenarioRepo struct {
	db pkgpostgres.Querier
}

// NewScenarioRepo creates a new repository backed by PostgreSQL.
func NewScenarioRepo(db pkgpostgres.Querier) *ScenarioRepo {
	return &ScenarioRepo{db: db}
}

// Save upserts by ID. A retried save replaces the payload and keeps the
// original created_at.
func (r *ScenarioRepo) Save(ctx context.Context, s model.Scenario) error {
	inputs, err := json.Marshal(s.Inputs())
	if err != nil {
		return fmt.Errorf("marshal scenario inputs: %w", err)
	}
	results, err := json.Marshal(s.Result())
	if err != nil {
		return fmt.Errorf("marshal scenario results: %w", err)
	}

	query := `
		INSERT INTO pricing_scenarios (
			id, name, product_type, contact_id, opportunity_id,
			inputs, results, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,now())
		ON CONFLICT (id) DO UPDATE SET
			name           = EXCLUDED.name,
			product_type   = EXCLUDED.product_type,
			contact_id     = EXCLUDED.contact_id,
			opportunity_id = EXCLUDED.opportunity_id,
			inputs         = EXCLUDED.inputs,
			results        = EXCLUDED.results,
			updated_at     = now()
	`
	_, err = r.db.Exec(ctx, query,
		s.ID(), s.Name(), s.ProductType().String(),
		s.Owner().ContactID, s.Owner().OpportunityID,
		inputs, results, s.CreatedAt(),
	)
	if err != nil {
		return fmt.Errorf("save scenario: %w", err)
	}
	return nil
}

// FindByID retrieves a single scenario.
func (r *ScenarioRepo) FindByID(ctx context.Context, id string) (model.Scenario, error) {
	query := `
		SELECT id, name, contact_id, opportunity_id, inputs, results, created_at
		FROM pricing_scenarios
		WHERE id::text = $1
	`
	s, err := scanScenario(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Scenario{}, fmt.Errorf("scenario %s: %w", id, valueobject.ErrScenarioNotFound)
	}
	return s, err
}

// List returns scenarios matching filter, newest first. Blank filter fields
// match every row.
func (r *ScenarioRepo) List(ctx context.Context, filter model.OwnerRefs) ([]model.Scenario, error) {
	query := `
		SELECT id, name, contact_id, opportunity_id, inputs, results, created_at
		FROM pricing_scenarios
		WHERE ($1::text = '' OR contact_id = $1)
		  AND ($2::text = '' OR opportunity_id = $2)
		ORDER BY created_at DESC, id
	`
	rows, err := r.db.Query(ctx, query, filter.ContactID, filter.OpportunityID)
	if err != nil {
		return nil, fmt.Errorf("query scenarios: %w", err)
	}
	defer rows.Close()

	var result []model.Scenario
	for rows.Next() {
		s, err := scanScenario(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, s)
	}
	return result, rows.Err()
}

// ---------------------------------------------------------------------------
// scan helpers
// ---------------------------------------------------------------------------

type scannable interface {
	Scan(dest ...any) error
}

func scanScenario(s scannable) (model.Scenario, error) {
	var (
		id, name                 string
		contactID, opportunityID string
		inputsJSON, resultsJSON  []byte
		createdAt                time.Time
	)
	if err := s.Scan(&id, &name, &contactID, &opportunityID, &inputsJSON, &resultsJSON, &createdAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Scenario{}, err
		}
		return model.Scenario{}, fmt.Errorf("scan scenario: %w", err)
	}

	var inputs model.LoanInputs
	if err := json.Unmarshal(inputsJSON, &inputs); err != nil {
		return model.Scenario{}, fmt.Errorf("decode scenario %s inputs: %w", id, err)
	}
	var result model.PricingResult
	if err := json.Unmarshal(resultsJSON, &result); err != nil {
		return model.Scenario{}, fmt.Errorf("decode scenario %s results: %w", id, err)
	}

	return model.ReconstructScenario(
		id, name, inputs, result,
		model.OwnerRefs{ContactID: contactID, OpportunityID: opportunityID},
		createdAt.UTC(),
	), nil
}
