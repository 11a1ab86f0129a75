package metrics

import (
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "tripboard"

// AppMetrics holds the application's metric instruments.
type AppMetrics struct {
	HTTPRequestsTotal       metric.Int64Counter
	HTTPRequestDuration     metric.Float64Histogram
	AuthRequestsTotal       metric.Int64Counter
	SearchRequestsTotal     metric.Int64Counter
	SearchFallbacksTotal    metric.Int64Counter
	UpstreamRequestDuration metric.Float64Histogram
	CacheLookupsTotal       metric.Int64Counter
	ItineraryMutations      metric.Int64Counter
	DBQueryDurationSeconds  metric.Float64Histogram
	DBQueryErrorsTotal      metric.Int64Counter
	RateLimitedTotal        metric.Int64Counter
}

var (
	appMetrics *AppMetrics
	once       sync.Once
)

// InitAppMetrics builds the instruments once from the global MeterProvider.
// Call it after the provider is installed so the instruments are exported.
func InitAppMetrics() {
	once.Do(func() {
		appMetrics = build(otel.GetMeterProvider().Meter(meterName))
	})
}

// Get returns the shared instruments, initialising them on first use.
// Without a configured provider the global no-op meter is used.
func Get() *AppMetrics {
	InitAppMetrics()
	return appMetrics
}

func build(meter metric.Meter) *AppMetrics {
	m := &AppMetrics{}
	var err error

	m.HTTPRequestsTotal, err = meter.Int64Counter(
		"http_requests_total",
		metric.WithDescription("Total number of HTTP requests completed"),
		metric.WithUnit("{request}"),
	)
	otel.Handle(err)

	m.HTTPRequestDuration, err = meter.Float64Histogram(
		"http_request_duration_seconds",
		metric.WithDescription("Duration of HTTP requests in seconds"),
		metric.WithUnit("s"),
	)
	otel.Handle(err)

	m.AuthRequestsTotal, err = meter.Int64Counter(
		"auth_requests_total",
		metric.WithDescription("OAuth callbacks and sign-outs by outcome"),
		metric.WithUnit("{request}"),
	)
	otel.Handle(err)

	m.SearchRequestsTotal, err = meter.Int64Counter(
		"search_requests_total",
		metric.WithDescription("Place searches by interest and outcome"),
		metric.WithUnit("{request}"),
	)
	otel.Handle(err)

	m.SearchFallbacksTotal, err = meter.Int64Counter(
		"search_fallbacks_total",
		metric.WithDescription("Searches re-queried with the tourism filter after an empty result"),
		metric.WithUnit("{request}"),
	)
	otel.Handle(err)

	m.UpstreamRequestDuration, err = meter.Float64Histogram(
		"upstream_request_duration_seconds",
		metric.WithDescription("Duration of calls to the places provider"),
		metric.WithUnit("s"),
	)
	otel.Handle(err)

	m.CacheLookupsTotal, err = meter.Int64Counter(
		"cache_lookups_total",
		metric.WithDescription("Cache lookups by cache name and result"),
		metric.WithUnit("{lookup}"),
	)
	otel.Handle(err)

	m.ItineraryMutations, err = meter.Int64Counter(
		"itinerary_mutations_total",
		metric.WithDescription("Itinerary, day and item writes by operation"),
		metric.WithUnit("{mutation}"),
	)
	otel.Handle(err)

	m.DBQueryDurationSeconds, err = meter.Float64Histogram(
		"db_query_duration_seconds",
		metric.WithDescription("Duration of database queries in seconds"),
		metric.WithUnit("s"),
	)
	otel.Handle(err)

	m.DBQueryErrorsTotal, err = meter.Int64Counter(
		"db_query_errors_total",
		metric.WithDescription("Total number of database query errors"),
		metric.WithUnit("{error}"),
	)
	otel.Handle(err)

	m.RateLimitedTotal, err = meter.Int64Counter(
		"rate_limited_requests_total",
		metric.WithDescription("Requests rejected by the per-client rate limiter"),
		metric.WithUnit("{request}"),
	)
	otel.Handle(err)

	return m
}
