// Package observability provides Prometheus metrics and OpenTelemetry
// tracing for the footprint service and its external lookups.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "carbonfootprint"

// Outcome label values.
const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
	OutcomeEmpty   = "empty"
)

// Metrics holds the Prometheus collectors for calculations, external
// lookups, report publishing and transports. All methods are safe to call on
// a nil *Metrics, which records nothing.
type Metrics struct {
	FootprintsCalculated *prometheus.CounterVec   // labels: impact_tier
	CalculationErrors    *prometheus.CounterVec   // labels: reason
	SectionEmissions     *prometheus.HistogramVec // labels: section

	// Location search metrics.
	LocationRequests    *prometheus.CounterVec   // labels: provider, outcome={success,error,empty}
	LocationCache       *prometheus.CounterVec   // labels: result={hit,miss}
	LocationAPIDuration *prometheus.HistogramVec // labels: provider

	// Weather metrics.
	WeatherRequests    *prometheus.CounterVec   // labels: endpoint={forecast,air_quality}, outcome
	WeatherAPIDuration *prometheus.HistogramVec // labels: endpoint

	ReportsPublished *prometheus.CounterVec // labels: publisher, outcome

	RequestDuration *prometheus.HistogramVec // labels: transport={http,grpc,mcp}, operation
}

func newCollectors() *Metrics {
	return &Metrics{
		FootprintsCalculated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "footprints_calculated_total",
			Help:      "Footprint calculations by resulting impact tier.",
		}, []string{"impact_tier"}),
		CalculationErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "calculation_errors_total",
			Help:      "Rejected footprint calculations by reason.",
		}, []string{"reason"}),
		SectionEmissions: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "section_emissions_kg",
			Help:      "Monthly kg CO2 per calculated section.",
			Buckets:   []float64{0, 10, 25, 50, 100, 200, 300, 500, 1000},
		}, []string{"section"}),
		LocationRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "location_requests_total",
			Help:      "Location search requests by provider and outcome.",
		}, []string{"provider", "outcome"}),
		LocationCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "location_cache_total",
			Help:      "Location search cache lookups by result.",
		}, []string{"result"}),
		LocationAPIDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "location_api_duration_seconds",
			Help:      "Location search API request duration in seconds.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"provider"}),
		WeatherRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "weather_requests_total",
			Help:      "Weather API requests by endpoint and outcome.",
		}, []string{"endpoint", "outcome"}),
		WeatherAPIDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "weather_api_duration_seconds",
			Help:      "Weather API request duration in seconds.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"endpoint"}),
		ReportsPublished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reports_published_total",
			Help:      "Published footprint reports by publisher and outcome.",
		}, []string{"publisher", "outcome"}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "request_duration_seconds",
			Help:      "Request handling duration by transport and operation.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"transport", "operation"}),
	}
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.FootprintsCalculated,
		m.CalculationErrors,
		m.SectionEmissions,
		m.LocationRequests,
		m.LocationCache,
		m.LocationAPIDuration,
		m.WeatherRequests,
		m.WeatherAPIDuration,
		m.ReportsPublished,
		m.RequestDuration,
	}
}

// NewMetrics creates all metrics and registers them with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := newCollectors()
	prometheus.MustRegister(m.collectors()...)
	return m
}

// NewMetricsWithRegistry creates all metrics and registers them with reg.
func NewMetricsWithRegistry(reg prometheus.Registerer) *Metrics {
	m := newCollectors()
	reg.MustRegister(m.collectors()...)
	return m
}

// NewMetricsForTesting creates unregistered metrics to avoid "already
// registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newCollectors()
}

// ObserveFootprint records a completed calculation.
func (m *Metrics) ObserveFootprint(tier string, sections map[string]float64) {
	if m == nil {
		return
	}
	m.FootprintsCalculated.WithLabelValues(tier).Inc()
	for section, kg := range sections {
		m.SectionEmissions.WithLabelValues(section).Observe(kg)
	}
}

// CalculationRejected records a calculation that failed validation.
func (m *Metrics) CalculationRejected(reason string) {
	if m == nil {
		return
	}
	m.CalculationErrors.WithLabelValues(reason).Inc()
}

// LocationRequest records one location search against a provider.
func (m *Metrics) LocationRequest(provider, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.LocationRequests.WithLabelValues(provider, outcome).Inc()
	m.LocationAPIDuration.WithLabelValues(provider).Observe(elapsed.Seconds())
}

// LocationCacheLookup records a cache hit or miss.
func (m *Metrics) LocationCacheLookup(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.LocationCache.WithLabelValues(result).Inc()
}

// WeatherRequest records one weather API call.
func (m *Metrics) WeatherRequest(endpoint, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.WeatherRequests.WithLabelValues(endpoint, outcome).Inc()
	m.WeatherAPIDuration.WithLabelValues(endpoint).Observe(elapsed.Seconds())
}

// ReportPublished records a publish attempt.
func (m *Metrics) ReportPublished(publisher, outcome string) {
	if m == nil {
		return
	}
	m.ReportsPublished.WithLabelValues(publisher, outcome).Inc()
}

// ObserveRequest records how long a transport request took.
func (m *Metrics) ObserveRequest(transport, operation string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.RequestDuration.WithLabelValues(transport, operation).Observe(elapsed.Seconds())
}

// OutcomeOf maps an error and a result count to an outcome label.
func OutcomeOf(err error, n int) string {
	switch {
	case err != nil:
		return OutcomeError
	case n == 0:
		return OutcomeEmpty
	default:
		return OutcomeSuccess
	}
}
