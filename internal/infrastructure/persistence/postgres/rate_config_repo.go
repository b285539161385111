package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bibbank/pricing-service/internal/domain/model"
	"github.com/bibbank/pricing-service/internal/domain/valueobject"
	pkgpostgres "github.com/bibbank/pricing-service/pkg/postgres"
)

// RateConfigRepo implements port.RateConfigRepository and, through Load,
// port.RateConfigSource.
type RateConfigRepo struct {
	pool *pgxpool.Pool
}

// NewRateConfigRepo creates a new repository backed by PostgreSQL.
func NewRateConfigRepo(pool *pgxpool.Pool) *RateConfigRepo {
	return &RateConfigRepo{pool: pool}
}

// Publish stores cfg and flips the active flag in one transaction.
// Republishing an existing version replaces its document.
func (r *RateConfigRepo) Publish(ctx context.Context, cfg model.RateConfig) error {
	doc, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal rate config: %w", err)
	}

	return pkgpostgres.WithTransaction(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `UPDATE rate_configs SET is_active = FALSE WHERE is_active`); err != nil {
			return fmt.Errorf("deactivate rate configs: %w", err)
		}
		_, err := tx.Exec(ctx, `
			INSERT INTO rate_configs (version, effective_at, document, is_active, published_at)
			VALUES ($1, $2, $3, TRUE, now())
			ON CONFLICT (version) DO UPDATE SET
				effective_at = EXCLUDED.effective_at,
				document     = EXCLUDED.document,
				is_active    = TRUE,
				published_at = now()
		`, cfg.Version, cfg.EffectiveAt, doc)
		if err != nil {
			return fmt.Errorf("insert rate config %s: %w", cfg.Version, err)
		}
		return nil
	})
}

// Active returns the active configuration.
func (r *RateConfigRepo) Active(ctx context.Context) (model.RateConfig, error) {
	var doc []byte
	err := r.pool.QueryRow(ctx, `SELECT document FROM rate_configs WHERE is_active`).Scan(&doc)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.RateConfig{}, fmt.Errorf("no active rate config: %w", valueobject.ErrConfigurationUnavailable)
	}
	if err != nil {
		return model.RateConfig{}, fmt.Errorf("query active rate config: %w", err)
	}

	var cfg model.RateConfig
	if err := json.Unmarshal(doc, &cfg); err != nil {
		return model.RateConfig{}, fmt.Errorf("decode rate config: %w", err)
	}
	return cfg, nil
}

// Load implements port.RateConfigSource.
func (r *RateConfigRepo) Load(ctx context.Context) (model.RateConfig, error) {
	return r.Active(ctx)
}

// Ping reports database reachability for readiness probes.
func (r *RateConfigRepo) Ping(ctx context.Context) error {
	return pkgpostgres.HealthCheck(ctx, r.pool)
}
