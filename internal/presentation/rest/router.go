package rest

import (
	"log/slog"
	"net/http"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/time/rate"

	"github.com/bibbank/pricing-service/pkg/auth"
	"github.com/bibbank/pricing-service/pkg/observability"
)

// RouterOptions configures NewRouter. A nil Validator disables
// authentication and a zero RateLimit disables rate limiting.
type RouterOptions struct {
	Validator      auth.TokenValidator
	Metrics        *observability.RequestMetrics
	MetricsHandler http.Handler
	RateLimit      rate.Limit
	Burst          int
}

// publicPaths never require a token and are never rate limited.
var publicPaths = []string{"/healthz", "/readyz", "/metrics"}

// NewRouter mounts the health, metrics and API routes and wraps them in the
// middleware chain: tracing, logging and metrics, rate limiting, then auth.
func NewRouter(api *PricingHandler, health *HealthHandler, logger *slog.Logger, opts RouterOptions) http.Handler {
	mux := http.NewServeMux()
	health.RegisterRoutes(mux)
	api.RegisterRoutes(mux)
	if opts.MetricsHandler != nil {
		mux.Handle("GET /metrics", opts.MetricsHandler)
	}

	var h http.Handler = mux
	if opts.Validator != nil {
		h = auth.HTTPMiddleware(opts.Validator, publicPaths...)(h)
	} else {
		logger.Warn("HTTP authentication disabled")
	}
	if opts.RateLimit > 0 {
		burst := opts.Burst
		if burst < 1 {
			burst = 1
		}
		h = rateLimit(rate.NewLimiter(opts.RateLimit, burst), publicPaths...)(h)
	}
	h = observeRequests(mux, opts.Metrics, logger)(h)
	return otelhttp.NewHandler(h, "pricing-http",
		otelhttp.WithFilter(func(r *http.Request) bool { return r.URL.Path != "/healthz" && r.URL.Path != "/readyz" }),
	)
}
