package rest_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bibbank/pricing-service/internal/application/dto"
	"github.com/bibbank/pricing-service/internal/application/usecase"
	"github.com/bibbank/pricing-service/internal/domain/model"
	"github.com/bibbank/pricing-service/internal/domain/service"
	"github.com/bibbank/pricing-service/internal/domain/valueobject"
	"github.com/bibbank/pricing-service/internal/infrastructure/adapter"
	"github.com/bibbank/pricing-service/internal/presentation/rest"
	"github.com/bibbank/pricing-service/pkg/auth"
)

// ---------------------------------------------------------------------------
// Fixtures
// ---------------------------------------------------------------------------

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func discardLogger() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func rateConfig(version string) model.RateConfig {
	return model.RateConfig{
		Version: version,
		CreditScoreTiers: model.TierSet{
			{Label: "740+", Min: dec("740"), Max: decPtr("850"), RateAdjustment: dec("-0.25")},
			{Label: "680-739", Min: dec("680"), Max: decPtr("739"), RateAdjustment: dec("0.25")},
		},
		LTVTiers: model.TierSet{
			{Label: "<=70", Min: dec("0"), Max: decPtr("70"), RateAdjustment: dec("0")},
			{Label: "70-80", Min: dec("70.01"), Max: decPtr("80"), RateAdjustment: dec("0.25")},
		},
		LoanAmountTiers: model.TierSet{{Label: "Any", Min: dec("0"), RateAdjustment: dec("0")}},
		PropertyTypes:   []model.RiskFactor{{Name: "SFR", RiskMultiplier: dec("1")}},
		LoanPurposes:    []model.RiskFactor{{Name: "Purchase", RiskMultiplier: dec("1")}},
		Products:        []model.Product{{Code: "DSCR30", Name: "DSCR 30", BaseRate: dec("8")}},
		MinAdjustment:   dec("-1"),
		MaxAdjustment:   dec("2"),
	}
}

type fakeProvider struct {
	mu  sync.Mutex
	cfg model.RateConfig
	err error
}

func (p *fakeProvider) Snapshot(context.Context) (model.RateConfig, bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cfg, false, p.err
}

func (p *fakeProvider) Reload(context.Context) error { return nil }

type fakeRateConfigRepo struct {
	mu        sync.Mutex
	published []model.RateConfig
}

func (r *fakeRateConfigRepo) Publish(_ context.Context, cfg model.RateConfig) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.published = append(r.published, cfg)
	return nil
}

func (r *fakeRateConfigRepo) Active(context.Context) (model.RateConfig, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.published) == 0 {
		return model.RateConfig{}, errors.New("none")
	}
	return r.published[len(r.published)-1], nil
}

type testServer struct {
	handler  http.Handler
	provider *fakeProvider
	configs  *fakeRateConfigRepo
	jwt      *auth.JWTService
}

type serverOption func(*rest.RouterOptions, *usecase.Set)

func newTestServer(t *testing.T, opts ...serverOption) *testServer {
	t.Helper()
	logger := discardLogger()
	repo := adapter.NewMemoryScenarioRepo()
	publisher := adapter.NewLogEventPublisher(logger)
	provider := &fakeProvider{cfg: rateConfig("v-rest")}
	configs := &fakeRateConfigRepo{}
	saver := usecase.NewSaveScenarioUseCase(repo, publisher, logger, time.Second)

	set := usecase.Set{
		CalculatePricing:  usecase.NewCalculatePricingUseCase(service.NewPricingEngine(nil), saver, logger),
		QuoteRate:         usecase.NewQuoteRateUseCase(provider, service.NewRateQuoteEngine(nil), logger),
		SaveScenario:      saver,
		ListScenarios:     usecase.NewListScenariosUseCase(repo, time.Second),
		GetScenario:       usecase.NewGetScenarioUseCase(repo, time.Second),
		PublishRateConfig: usecase.NewPublishRateConfigUseCase(configs, provider, publisher, logger),
	}

	jwtSvc, err := auth.NewJWTService(auth.JWTConfig{Secret: "rest-test-secret", Issuer: "bib-gateway", Expiration: time.Minute})
	require.NoError(t, err)
	routerOpts := rest.RouterOptions{
		Validator:      jwtSvc,
		MetricsHandler: http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { _, _ = w.Write([]byte("# metrics\n")) }),
	}
	for _, o := range opts {
		o(&routerOpts, &set)
	}

	api, err := rest.NewPricingHandler(set, logger)
	require.NoError(t, err)
	health := rest.NewHealthHandler(logger, map[string]rest.ReadinessCheck{
		"rate_config": func(context.Context) error { return provider.err },
	})

	return &testServer{
		handler:  rest.NewRouter(api, health, logger, routerOpts),
		provider: provider,
		configs:  configs,
		jwt:      jwtSvc,
	}
}

func (s *testServer) token(t *testing.T, roles ...string) string {
	t.Helper()
	tok, err := s.jwt.GenerateToken("officer-1", roles)
	require.NoError(t, err)
	return tok
}

func (s *testServer) do(t *testing.T, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

const fixAndFlipBody = `{
	"product_type": "FnF",
	"purchase_price": 400000,
	"arv": "650000",
	"rehab_costs": 80000,
	"funding_date": "2026-04-01T00:00:00Z"
}`

// ---------------------------------------------------------------------------
// Tests
// ---------------------------------------------------------------------------

func TestHealthEndpoints(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/healthz", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodGet, "/readyz", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	s.provider.mu.Lock()
	s.provider.err = errors.New("no configuration loaded")
	s.provider.mu.Unlock()

	rec = s.do(t, http.MethodGet, "/readyz", "", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "no configuration loaded")

	rec = s.do(t, http.MethodGet, "/metrics", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCalculatePricing(t *testing.T) {
	s := newTestServer(t)
	tok := s.token(t, auth.RoleLoanOfficer)

	t.Run("valid request", func(t *testing.T) {
		rec := s.do(t, http.MethodPost, "/v1/pricing", tok, fixAndFlipBody)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		resp := decodeBody[dto.PricingResponse](t, rec)
		assert.True(t, resp.Result.IsValid)
		assert.True(t, resp.Result.LoanAmount.Equal(dec("320000")))
		assert.True(t, resp.Result.TotalFees.Equal(dec("31995")))
		assert.Nil(t, resp.Save)
	})

	t.Run("business failure is 422 with the result body", func(t *testing.T) {
		rec := s.do(t, http.MethodPost, "/v1/pricing", tok, `{"product_type":"Bridge-Purchase"}`)
		require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

		resp := decodeBody[dto.PricingResponse](t, rec)
		assert.False(t, resp.Result.IsValid)
		assert.NotEmpty(t, resp.Result.Errors)
	})

	t.Run("unknown product is a result error", func(t *testing.T) {
		rec := s.do(t, http.MethodPost, "/v1/pricing", tok, `{"product_type":"Construction","purchase_price":1}`)
		require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		assert.Contains(t, rec.Body.String(), "Construction")
	})

	t.Run("schema violations are 400", func(t *testing.T) {
		tests := []struct {
			name string
			body string
		}{
			{name: "missing product", body: `{"purchase_price": 1}`},
			{name: "non-numeric amount", body: `{"product_type":"FnF","purchase_price":"lots"}`},
			{name: "unknown field", body: `{"product_type":"FnF","purchase_prise":1}`},
			{name: "negative term", body: `{"product_type":"FnF","term_months":-1}`},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				rec := s.do(t, http.MethodPost, "/v1/pricing", tok, tt.body)
				assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
			})
		}
	})

	t.Run("malformed JSON is 400", func(t *testing.T) {
		rec := s.do(t, http.MethodPost, "/v1/pricing", tok, `{"product_type":`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestScenarioLifecycle(t *testing.T) {
	s := newTestServer(t)
	tok := s.token(t, auth.RoleLoanOfficer)

	body := strings.TrimSuffix(strings.TrimSpace(fixAndFlipBody), "}") +
		`, "save_as": {"scenario_name": "Maple St", "owner_refs": {"opportunity_id": "opp-9"}}}`
	rec := s.do(t, http.MethodPost, "/v1/pricing", tok, body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	priced := decodeBody[dto.PricingResponse](t, rec)
	require.NotNil(t, priced.Save)
	require.True(t, priced.Save.Success, priced.Save.Error)
	id := priced.Save.ScenarioID

	rec = s.do(t, http.MethodGet, "/v1/scenarios/"+id, tok, "")
	require.Equal(t, http.StatusOK, rec.Code)
	got := decodeBody[dto.ScenarioResponse](t, rec)
	assert.Equal(t, "Maple St", got.Name)
	assert.True(t, got.Result.Equal(priced.Result))

	// Retry path: saving the same id again overwrites instead of duplicating.
	save, err := json.Marshal(dto.SaveScenarioRequest{
		ScenarioID: id,
		Name:       "Maple St v2",
		Owner:      model.OwnerRefs{OpportunityID: "opp-9"},
		Inputs:     priced.Inputs,
		Result:     priced.Result,
	})
	require.NoError(t, err)
	rec = s.do(t, http.MethodPost, "/v1/scenarios", tok, string(save))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "/v1/scenarios/"+id, rec.Header().Get("Location"))

	rec = s.do(t, http.MethodGet, "/v1/scenarios?opportunity_id=opp-9", tok, "")
	require.Equal(t, http.StatusOK, rec.Code)
	list := decodeBody[dto.ScenarioListResponse](t, rec)
	require.Len(t, list.Scenarios, 1)
	assert.Equal(t, "Maple St v2", list.Scenarios[0].Name)

	rec = s.do(t, http.MethodGet, "/v1/scenarios?opportunity_id=other", tok, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decodeBody[dto.ScenarioListResponse](t, rec).Scenarios)

	rec = s.do(t, http.MethodGet, "/v1/scenarios/3f1c2d4e-0000-4000-8000-000000000000", tok, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, http.MethodPost, "/v1/scenarios", tok, `{"scenario_name":"x","inputs":{"product_type":"FnF"},"results":{"is_valid":true},"scenario_id":"not-a-uuid"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestQuoteRate(t *testing.T) {
	s := newTestServer(t)
	tok := s.token(t, auth.RoleLoanOfficer)

	body := `{"product":"DSCR30","property_type":"SFR","loan_purpose":"Purchase",
		"loan_amount":300000,"property_value":"400000","credit_score":750}`

	rec := s.do(t, http.MethodPost, "/v1/rate-quotes", tok, body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp := decodeBody[dto.RateQuoteResponse](t, rec)
	assert.Equal(t, "v-rest", resp.ConfigVersion)
	assert.True(t, resp.FinalRate.Equal(dec("8")), resp.FinalRate.String())

	rec = s.do(t, http.MethodPost, "/v1/rate-quotes", tok, strings.Replace(body, `"credit_score":750`, `"credit_score":200`, 1))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	s.provider.mu.Lock()
	s.provider.err = fmt.Errorf("postgres source: %w", valueobject.ErrConfigurationUnavailable)
	s.provider.mu.Unlock()
	rec = s.do(t, http.MethodPost, "/v1/rate-quotes", tok, body)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code, rec.Body.String())
}

func TestPublishRateConfig(t *testing.T) {
	s := newTestServer(t)
	payload, err := json.Marshal(dto.PublishRateConfigRequest{Config: rateConfig("2026-05")})
	require.NoError(t, err)

	rec := s.do(t, http.MethodPost, "/v1/rate-configs", s.token(t, auth.RoleLoanOfficer), string(payload))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(t, http.MethodPost, "/v1/rate-configs", s.token(t, auth.RolePricingAdmin), string(payload))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	resp := decodeBody[dto.PublishRateConfigResponse](t, rec)
	assert.Equal(t, "2026-05", resp.Version)

	require.Len(t, s.configs.published, 1)
	assert.Equal(t, "2026-05", s.configs.published[0].Version)

	bad := rateConfig("2026-06")
	bad.CreditScoreTiers = append(bad.CreditScoreTiers, model.Tier{Label: "overlap", Min: dec("700"), Max: decPtr("760")})
	payload, err = json.Marshal(dto.PublishRateConfigRequest{Config: bad})
	require.NoError(t, err)
	rec = s.do(t, http.MethodPost, "/v1/rate-configs", s.token(t, auth.RolePricingAdmin), string(payload))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code, rec.Body.String())
}

func TestPublishRateConfig_FileSource(t *testing.T) {
	s := newTestServer(t, func(_ *rest.RouterOptions, set *usecase.Set) { set.PublishRateConfig = nil })
	payload, err := json.Marshal(dto.PublishRateConfigRequest{Config: rateConfig("2026-05")})
	require.NoError(t, err)

	rec := s.do(t, http.MethodPost, "/v1/rate-configs", s.token(t, auth.RolePricingAdmin), string(payload))
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestAuthentication(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/v1/pricing", "", fixAndFlipBody)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("WWW-Authenticate"))

	rec = s.do(t, http.MethodPost, "/v1/pricing", "not-a-jwt", fixAndFlipBody)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRateLimit(t *testing.T) {
	s := newTestServer(t, func(o *rest.RouterOptions, _ *usecase.Set) {
		o.RateLimit = 0.001
		o.Burst = 1
	})
	tok := s.token(t, auth.RoleLoanOfficer)

	first := s.do(t, http.MethodPost, "/v1/pricing", tok, fixAndFlipBody)
	assert.Equal(t, http.StatusOK, first.Code)

	second := s.do(t, http.MethodPost, "/v1/pricing", tok, fixAndFlipBody)
	assert.Equal(t, http.StatusTooManyRequests, second.Code)

	// Probes are never throttled.
	for range 3 {
		assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/healthz", "", "").Code)
	}
}

func TestBodyTooLarge(t *testing.T) {
	s := newTestServer(t)
	huge := bytes.Repeat([]byte(" "), 2<<20)
	body := `{"product_type":"FnF"` + string(huge) + `}`

	rec := s.do(t, http.MethodPost, "/v1/pricing", s.token(t, auth.RoleLoanOfficer), body)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}
