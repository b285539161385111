package observability

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/attribute"
	promexporter "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// MetricsConfig holds metrics configuration.
type MetricsConfig struct {
	ServiceName string
	// Registry defaults to a fresh registry when nil.
	Registry *prometheus.Registry
}

// InitMetrics creates a MeterProvider backed by a Prometheus exporter and the
// handler that serves it on /metrics.
func InitMetrics(cfg MetricsConfig) (*sdkmetric.MeterProvider, http.Handler, error) {
	registry := cfg.Registry
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	exporter, err := promexporter.New(promexporter.WithRegisterer(registry))
	if err != nil {
		return nil, nil, fmt.Errorf("create prometheus exporter: %w", err)
	}

	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(exporter))
	handler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})

	return provider, handler, nil
}

// ---------------------------------------------------------------------------
// Request metrics
// ---------------------------------------------------------------------------

// RequestMetrics counts and times transport requests by operation and
// outcome.
type RequestMetrics struct {
	requests metric.Int64Counter
	duration metric.Float64Histogram
}

func NewRequestMetrics(meter metric.Meter) (*RequestMetrics, error) {
	requests, err := meter.Int64Counter("pricing_requests",
		metric.WithDescription("Requests handled, by transport, operation and outcome."))
	if err != nil {
		return nil, fmt.Errorf("create request counter: %w", err)
	}
	duration, err := meter.Float64Histogram("pricing_request_duration",
		metric.WithDescription("Request latency."),
		metric.WithUnit("s"))
	if err != nil {
		return nil, fmt.Errorf("create request histogram: %w", err)
	}
	return &RequestMetrics{requests: requests, duration: duration}, nil
}

// Record adds one observation. A nil receiver records nothing.
func (m *RequestMetrics) Record(ctx context.Context, transport, operation, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("transport", transport),
		attribute.String("operation", operation),
		attribute.String("outcome", outcome),
	)
	m.requests.Add(ctx, 1, attrs)
	m.duration.Record(ctx, elapsed.Seconds(), attrs)
}
