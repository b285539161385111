package tierconfig

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/bibbank/pricing-service/internal/domain/model"
	"github.com/bibbank/pricing-service/internal/domain/port"
	"github.com/bibbank/pricing-service/internal/domain/valueobject"
)

// snapshot pairs a configuration with whether it is a fallback copy.
type snapshot struct {
	cfg   model.RateConfig
	stale bool
}

// DefaultRetryInterval bounds how often a stale provider retries its source
// from the quote path.
const DefaultRetryInterval = 5 * time.Second

// Provider implements port.RateConfigProvider. Readers load the current
// snapshot pointer once and never observe a partially applied reload.
type Provider struct {
	source  port.RateConfigSource
	cache   port.RateConfigCache
	logger  *slog.Logger
	current atomic.Pointer[snapshot]
	retry   time.Duration
	// unix nanos of the last failed load
	lastFailure atomic.Int64
	// reloads are serialised so an older read cannot overwrite a newer one
	reloadMu sync.Mutex
	// quote-path reloads share one source load
	refresh singleflight.Group
}

// NewProvider builds a provider. cache may be nil.
func NewProvider(source port.RateConfigSource, cache port.RateConfigCache, logger *slog.Logger) *Provider {
	return &Provider{source: source, cache: cache, logger: logger, retry: DefaultRetryInterval}
}

// WithRetryInterval overrides DefaultRetryInterval.
func (p *Provider) WithRetryInterval(d time.Duration) *Provider {
	p.retry = d
	return p
}

// Snapshot returns the current configuration, loading it on first use.
// Concurrent callers that find the snapshot missing or due for a retry wait
// on a single reload instead of each loading the source.
func (p *Provider) Snapshot(ctx context.Context) (model.RateConfig, bool, error) {
	s := p.current.Load()
	if s != nil && (!s.stale || time.Since(time.Unix(0, p.lastFailure.Load())) < p.retry) {
		return s.cfg, s.stale, nil
	}
	_, err, _ := p.refresh.Do("reload", func() (interface{}, error) {
		return nil, p.Reload(ctx)
	})
	if err != nil {
		s = p.current.Load()
		if s == nil {
			return model.RateConfig{}, false, err
		}
		return s.cfg, true, nil
	}
	s = p.current.Load()
	return s.cfg, s.stale, nil
}

// Reload reads and validates the source and swaps the snapshot. On failure
// the previous snapshot stays in place, marked stale; with no previous
// snapshot the cache is consulted.
func (p *Provider) Reload(ctx context.Context) error {
	p.reloadMu.Lock()
	defer p.reloadMu.Unlock()

	cfg, err := p.source.Load(ctx)
	if err == nil {
		err = cfg.Validate()
	}
	if err != nil {
		return p.fallback(ctx, err)
	}

	prev := p.current.Swap(&snapshot{cfg: cfg})
	if prev == nil || prev.cfg.Version != cfg.Version || prev.stale {
		p.logger.Info("rate config loaded", slog.String("version", cfg.Version))
	}

	if p.cache != nil {
		if err := p.cache.Put(ctx, cfg); err != nil {
			p.logger.Warn("failed to cache rate config", slog.String("version", cfg.Version), slog.String("error", err.Error()))
		}
	}
	return nil
}

func (p *Provider) fallback(ctx context.Context, cause error) error {
	p.lastFailure.Store(time.Now().UnixNano())
	loadErr := fmt.Errorf("%w: %w", valueobject.ErrConfigurationUnavailable, cause)

	if prev := p.current.Load(); prev != nil {
		if !prev.stale {
			p.current.Store(&snapshot{cfg: prev.cfg, stale: true})
		}
		p.logger.Warn("rate config reload failed, keeping last known version",
			slog.String("version", prev.cfg.Version),
			slog.String("error", cause.Error()),
		)
		return loadErr
	}

	if p.cache == nil {
		return loadErr
	}
	cached, err := p.cache.Get(ctx)
	if err == nil {
		err = cached.Validate()
	}
	if err != nil {
		return errors.Join(loadErr, fmt.Errorf("rate config cache: %w", err))
	}

	p.current.Store(&snapshot{cfg: cached, stale: true})
	p.logger.Warn("rate config source unavailable, serving cached version",
		slog.String("version", cached.Version),
		slog.String("error", cause.Error()),
	)
	return loadErr
}

// Ready reports whether any configuration, fresh or stale, can be served.
func (p *Provider) Ready(context.Context) error {
	if p.current.Load() == nil {
		return valueobject.ErrConfigurationUnavailable
	}
	return nil
}

// Poll reloads the configuration every interval until ctx is done. Reload
// failures are logged; the provider keeps serving its last snapshot.
func (p *Provider) Poll(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := p.Reload(ctx); err != nil && ctx.Err() == nil {
				p.logger.Error("scheduled rate config reload failed", slog.String("error", err.Error()))
			}
		}
	}
}
