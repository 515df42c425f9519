// Package footprint runs footprint calculations for the transports: it
// validates requests, resolves locations, runs the emissions engine and
// builds reports.
package footprint

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"

	"github.com/stephenrodrick/Carbon-Footprint-Calculator/internal/carbon"
	"github.com/stephenrodrick/Carbon-Footprint-Calculator/internal/geo"
	"github.com/stephenrodrick/Carbon-Footprint-Calculator/internal/location"
	"github.com/stephenrodrick/Carbon-Footprint-Calculator/internal/observability"
	"github.com/stephenrodrick/Carbon-Footprint-Calculator/internal/report"
	"github.com/stephenrodrick/Carbon-Footprint-Calculator/internal/weather"
)

// Service is safe for concurrent use.
type Service struct {
	calc      *carbon.Calculator
	search    location.LocationSearch
	weather   weather.WeatherLookup
	builder   *report.Builder
	publisher report.Publisher
	logger    zerolog.Logger
	metrics   *observability.Metrics
}

// Option configures optional Service collaborators.
type Option func(*Service)

// WithPublisher publishes every calculated report to p.
func WithPublisher(p report.Publisher) Option {
	return func(s *Service) { s.publisher = p }
}

// WithMetrics records calculation metrics.
func WithMetrics(m *observability.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// NewService creates a Service.
func NewService(
	calc *carbon.Calculator,
	search location.LocationSearch,
	lookup weather.WeatherLookup,
	builder *report.Builder,
	logger zerolog.Logger,
	opts ...Option,
) *Service {
	s := &Service{
		calc:    calc,
		search:  search,
		weather: lookup,
		builder: builder,
		logger:  logger.With().Str("component", "footprint").Logger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Tables returns the factor tables the service calculates with.
func (s *Service) Tables() *carbon.FactorTables {
	return s.calc.Tables()
}

// Calculate validates req, computes each present section and returns the
// report. A publish failure is logged and does not fail the calculation.
func (s *Service) Calculate(ctx context.Context, req Request) (rpt *report.Report, err error) {
	ctx, span := observability.StartSpan(ctx, "footprint.calculate")
	defer func() { observability.EndSpan(span, err) }()

	if err = req.Validate(); err != nil {
		s.metrics.CalculationRejected(rejectReason(err))
		return nil, err
	}

	var (
		breakdown carbon.EmissionsBreakdown
		inputs    report.Inputs
		route     *geo.Route
	)

	if t := req.Travel; t != nil {
		vehicle := orDefault(t.Vehicle, carbon.DefaultVehicle)
		distance, r, err := s.travelDistance(ctx, t)
		if err != nil {
			s.metrics.CalculationRejected(rejectReason(err))
			return nil, err
		}
		route = r
		breakdown.Set(carbon.SectionTravel, s.calc.TravelEmissions(distance, vehicle))
		inputs.Travel = &report.TravelInputs{Vehicle: vehicle, DistanceKm: distance}
	}

	if e := req.Electricity; e != nil {
		grid := orDefault(e.Grid, carbon.DefaultGrid)
		breakdown.Set(carbon.SectionElectricity, s.calc.ElectricityEmissions(e.MonthlyKWh, grid))
		inputs.Electricity = &report.ElectricityInputs{Grid: grid, MonthlyKWh: e.MonthlyKWh}
	}

	if d := req.Diet; d != nil {
		diet := orDefault(d.Diet, carbon.DefaultDiet)
		days := d.meatDays()
		breakdown.Set(carbon.SectionDiet, s.calc.DietEmissions(diet, days))
		inputs.Diet = &report.DietInputs{Diet: diet}
		if diet == carbon.MixedDiet {
			inputs.Diet.MeatDaysPerWeek = days
		}
	}

	if breakdown.IsEmpty() {
		err = fmt.Errorf("%w: every completed section is zero", carbon.ErrNoSections)
		s.metrics.CalculationRejected(rejectReason(err))
		return nil, err
	}

	rpt = s.builder.Build(inputs, route, breakdown)

	s.metrics.ObserveFootprint(rpt.Summary.Tier.String(), sectionValues(req, breakdown))
	span.SetAttributes(
		attribute.String(observability.AttrImpactTier, rpt.Summary.Tier.String()),
		attribute.Float64(observability.AttrTotalKg, rpt.Summary.TotalKg),
	)
	s.logger.Debug().
		Str("report_id", rpt.ID).
		Float64("total_kg", rpt.Summary.TotalKg).
		Str("impact_tier", rpt.Summary.Tier.String()).
		Msg("footprint calculated")

	s.publish(ctx, rpt)
	return rpt, nil
}

func (s *Service) travelDistance(ctx context.Context, t *TravelInput) (float64, *geo.Route, error) {
	if t.DistanceKm != nil {
		return *t.DistanceKm, nil, nil
	}
	origin, err := s.resolve(ctx, t.Origin, t.OriginQuery)
	if err != nil {
		return 0, nil, fmt.Errorf("resolve origin: %w", err)
	}
	destination, err := s.resolve(ctx, t.Destination, t.DestinationQuery)
	if err != nil {
		return 0, nil, fmt.Errorf("resolve destination: %w", err)
	}
	route := geo.NewRoute(origin, destination)
	return route.DistanceKm, &route, nil
}

func (s *Service) resolve(ctx context.Context, point *geo.GeoPoint, query string) (geo.GeoPoint, error) {
	if point != nil {
		return geo.NewGeoPoint(point.Latitude, point.Longitude, point.Label)
	}
	return location.Resolve(ctx, s.search, query)
}

func (s *Service) publish(ctx context.Context, rpt *report.Report) {
	if s.publisher == nil {
		return
	}
	name := publisherName(s.publisher)
	start := time.Now()
	if err := s.publisher.Publish(ctx, rpt); err != nil {
		s.metrics.ReportPublished(name, observability.OutcomeError)
		s.logger.Warn().
			Err(err).
			Str("report_id", rpt.ID).
			Str("publisher", name).
			Msg("report publish failed")
		return
	}
	s.metrics.ReportPublished(name, observability.OutcomeSuccess)
	s.logger.Debug().
		Str("report_id", rpt.ID).
		Str("publisher", name).
		Int64("duration_ms", time.Since(start).Milliseconds()).
		Msg("report published")
}

// SearchLocations returns candidates for a free-text query.
func (s *Service) SearchLocations(ctx context.Context, query string) ([]location.Candidate, error) {
	return s.search.Search(ctx, query)
}

// EstimateRoute resolves both queries and derives the road distance.
func (s *Service) EstimateRoute(ctx context.Context, from, to string) (geo.Route, error) {
	origin, err := location.Resolve(ctx, s.search, from)
	if err != nil {
		return geo.Route{}, fmt.Errorf("resolve origin: %w", err)
	}
	destination, err := location.Resolve(ctx, s.search, to)
	if err != nil {
		return geo.Route{}, fmt.Errorf("resolve destination: %w", err)
	}
	return geo.NewRoute(origin, destination), nil
}

// WeatherReport is the current weather with its air quality assessment.
type WeatherReport struct {
	weather.Conditions
	AQILevel weather.AQILevel `json:"aqi_level"`
	AQITip   string           `json:"aqi_tip"`
}

// Weather returns the conditions at point, or at weather.DefaultLocation
// when point is nil.
func (s *Service) Weather(ctx context.Context, point *geo.GeoPoint) (WeatherReport, error) {
	p := weather.DefaultLocation
	if point != nil {
		valid, err := geo.NewGeoPoint(point.Latitude, point.Longitude, point.Label)
		if err != nil {
			return WeatherReport{}, err
		}
		p = valid
	}
	cond, err := s.weather.Current(ctx, p)
	if err != nil {
		return WeatherReport{}, fmt.Errorf("weather lookup: %w", err)
	}
	return WeatherReport{
		Conditions: cond,
		AQILevel:   weather.ClassifyAQI(cond.AQI),
		AQITip:     weather.AQITip(cond.AQI),
	}, nil
}

func rejectReason(err error) string {
	switch {
	case errors.Is(err, carbon.ErrNoSections):
		return "no_sections"
	case errors.Is(err, carbon.ErrInvalidQuantity):
		return "invalid_quantity"
	case errors.Is(err, geo.ErrInvalidCoordinate):
		return "invalid_coordinate"
	}
	switch KindOf(err) {
	case KindInvalidInput, KindNotFound:
		return "location"
	default:
		return "upstream"
	}
}

func publisherName(p report.Publisher) string {
	switch p.(type) {
	case *report.KafkaPublisher:
		return "kafka"
	case *report.WriterPublisher:
		return "writer"
	default:
		return fmt.Sprintf("%T", p)
	}
}

func sectionValues(req Request, b carbon.EmissionsBreakdown) map[string]float64 {
	out := make(map[string]float64, 3)
	if req.Travel != nil {
		out[string(carbon.SectionTravel)] = b.Travel
	}
	if req.Electricity != nil {
		out[string(carbon.SectionElectricity)] = b.Electricity
	}
	if req.Diet != nil {
		out[string(carbon.SectionDiet)] = b.Diet
	}
	return out
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
