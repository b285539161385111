package tierconfig_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bibbank/pricing-service/internal/domain/model"
	"github.com/bibbank/pricing-service/internal/domain/valueobject"
	"github.com/bibbank/pricing-service/internal/infrastructure/tierconfig"
)

// ---------------------------------------------------------------------------
// Mocks
// ---------------------------------------------------------------------------

type mockSource struct {
	mu    sync.Mutex
	cfg   model.RateConfig
	err   error
	loads int
}

func (m *mockSource) Load(context.Context) (model.RateConfig, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loads++
	return m.cfg, m.err
}

func (m *mockSource) set(cfg model.RateConfig, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cfg, m.err = cfg, err
}

func (m *mockSource) loadCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loads
}

type mockCache struct {
	mu     sync.Mutex
	stored *model.RateConfig
	putErr error
}

func (m *mockCache) Get(context.Context) (model.RateConfig, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.stored == nil {
		return model.RateConfig{}, valueobject.ErrConfigurationUnavailable
	}
	return *m.stored, nil
}

func (m *mockCache) Put(_ context.Context, cfg model.RateConfig) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.putErr != nil {
		return m.putErr
	}
	m.stored = &cfg
	return nil
}

func validConfig(version string) model.RateConfig {
	return model.RateConfig{
		Version:       version,
		Products:      []model.Product{{Code: "DSCR30", BaseRate: decimal.RequireFromString("7.5")}},
		MinAdjustment: decimal.NewFromInt(-1),
		MaxAdjustment: decimal.NewFromInt(2),
	}
}

var errSourceDown = errors.New("source down")

// ---------------------------------------------------------------------------
// Tests
// ---------------------------------------------------------------------------

func TestProvider_LazyLoadAndCache(t *testing.T) {
	src := &mockSource{cfg: validConfig("v1")}
	cache := &mockCache{}
	p := tierconfig.NewProvider(src, cache, discardLogger())

	cfg, stale, err := p.Snapshot(context.Background())
	require.NoError(t, err)
	assert.False(t, stale)
	assert.Equal(t, "v1", cfg.Version)
	require.NotNil(t, cache.stored)
	assert.Equal(t, "v1", cache.stored.Version)

	_, _, err = p.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, src.loadCount(), "fresh snapshot is not reloaded")
}

func TestProvider_ReloadSwapsVersion(t *testing.T) {
	src := &mockSource{cfg: validConfig("v1")}
	p := tierconfig.NewProvider(src, nil, discardLogger())
	require.NoError(t, p.Reload(context.Background()))

	src.set(validConfig("v2"), nil)
	require.NoError(t, p.Reload(context.Background()))

	cfg, stale, err := p.Snapshot(context.Background())
	require.NoError(t, err)
	assert.False(t, stale)
	assert.Equal(t, "v2", cfg.Version)
}

func TestProvider_FailedReloadKeepsLastKnownGood(t *testing.T) {
	src := &mockSource{cfg: validConfig("v1")}
	p := tierconfig.NewProvider(src, nil, discardLogger()).WithRetryInterval(time.Hour)
	require.NoError(t, p.Reload(context.Background()))

	src.set(model.RateConfig{}, errSourceDown)
	err := p.Reload(context.Background())
	require.ErrorIs(t, err, valueobject.ErrConfigurationUnavailable)
	require.ErrorIs(t, err, errSourceDown)

	cfg, stale, err := p.Snapshot(context.Background())
	require.NoError(t, err)
	assert.True(t, stale)
	assert.Equal(t, "v1", cfg.Version)
	assert.Equal(t, 2, src.loadCount(), "stale snapshot within retry interval is served without reloading")
}

func TestProvider_InvalidConfigIsRejected(t *testing.T) {
	src := &mockSource{cfg: validConfig("v1")}
	p := tierconfig.NewProvider(src, nil, discardLogger())
	require.NoError(t, p.Reload(context.Background()))

	bad := validConfig("v2")
	bad.MaxAdjustment = decimal.NewFromInt(-5)
	src.set(bad, nil)

	err := p.Reload(context.Background())
	require.ErrorIs(t, err, valueobject.ErrInvalidRateConfig)

	cfg, stale, err := p.Snapshot(context.Background())
	require.NoError(t, err)
	assert.True(t, stale)
	assert.Equal(t, "v1", cfg.Version)
}

func TestProvider_StaleRecoversOnRetry(t *testing.T) {
	src := &mockSource{cfg: validConfig("v1")}
	p := tierconfig.NewProvider(src, nil, discardLogger()).WithRetryInterval(0)
	require.NoError(t, p.Reload(context.Background()))

	src.set(model.RateConfig{}, errSourceDown)
	require.Error(t, p.Reload(context.Background()))

	src.set(validConfig("v3"), nil)
	cfg, stale, err := p.Snapshot(context.Background())
	require.NoError(t, err)
	assert.False(t, stale)
	assert.Equal(t, "v3", cfg.Version)
}

func TestProvider_ColdStartFromCache(t *testing.T) {
	cached := validConfig("cached")
	src := &mockSource{err: errSourceDown}
	p := tierconfig.NewProvider(src, &mockCache{stored: &cached}, discardLogger())

	require.Error(t, p.Ready(context.Background()))

	cfg, stale, err := p.Snapshot(context.Background())
	require.NoError(t, err)
	assert.True(t, stale)
	assert.Equal(t, "cached", cfg.Version)
	assert.NoError(t, p.Ready(context.Background()))
}

func TestProvider_Unavailable(t *testing.T) {
	p := tierconfig.NewProvider(&mockSource{err: errSourceDown}, &mockCache{}, discardLogger())

	_, _, err := p.Snapshot(context.Background())
	require.ErrorIs(t, err, valueobject.ErrConfigurationUnavailable)
	assert.ErrorIs(t, p.Ready(context.Background()), valueobject.ErrConfigurationUnavailable)
}

func TestProvider_CachePutFailureIsNotFatal(t *testing.T) {
	p := tierconfig.NewProvider(&mockSource{cfg: validConfig("v1")}, &mockCache{putErr: errors.New("redis down")}, discardLogger())

	cfg, stale, err := p.Snapshot(context.Background())
	require.NoError(t, err)
	assert.False(t, stale)
	assert.Equal(t, "v1", cfg.Version)
}

func TestProvider_ConcurrentReadsDuringReload(t *testing.T) {
	src := &mockSource{cfg: validConfig("v1")}
	p := tierconfig.NewProvider(src, nil, discardLogger())
	require.NoError(t, p.Reload(context.Background()))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				cfg, _, err := p.Snapshot(context.Background())
				assert.NoError(t, err)
				assert.Contains(t, []string{"v1", "v2"}, cfg.Version)
			}
		}()
		go func() {
			defer wg.Done()
			src.set(validConfig("v2"), nil)
			assert.NoError(t, p.Reload(context.Background()))
		}()
	}
	wg.Wait()
}

func TestProvider_PollPicksUpNewVersion(t *testing.T) {
	src := &mockSource{cfg: validConfig("v1")}
	p := tierconfig.NewProvider(src, nil, discardLogger())
	require.NoError(t, p.Reload(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		p.Poll(ctx, 10*time.Millisecond)
	}()

	src.set(validConfig("v2"), nil)
	require.Eventually(t, func() bool {
		cfg, _, err := p.Snapshot(context.Background())
		return err == nil && cfg.Version == "v2"
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Poll did not stop after cancel")
	}
}

type slowSource struct {
	mockSource
	delay time.Duration
}

func (s *slowSource) Load(ctx context.Context) (model.RateConfig, error) {
	time.Sleep(s.delay)
	return s.mockSource.Load(ctx)
}

func TestProvider_ConcurrentStaleSnapshotsShareOneReload(t *testing.T) {
	src := &slowSource{mockSource: mockSource{cfg: validConfig("v1")}, delay: 50 * time.Millisecond}
	p := tierconfig.NewProvider(src, nil, discardLogger()).WithRetryInterval(100 * time.Millisecond)
	require.NoError(t, p.Reload(context.Background()))

	src.set(model.RateConfig{}, errSourceDown)
	require.Error(t, p.Reload(context.Background()))
	before := src.loadCount()

	// let the retry window lapse so the next quotes try the source again
	time.Sleep(150 * time.Millisecond)

	const callers = 10
	start := make(chan struct{})
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			cfg, stale, err := p.Snapshot(context.Background())
			assert.NoError(t, err)
			assert.True(t, stale)
			assert.Equal(t, "v1", cfg.Version)
		}()
	}

	began := time.Now()
	close(start)
	wg.Wait()

	assert.Equal(t, 1, src.loadCount()-before)
	assert.Less(t, time.Since(began), 5*src.delay)
}
