package weather

import (
	"context"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"github.com/stephenrodrick/Carbon-Footprint-Calculator/internal/geo"
	"github.com/stephenrodrick/Carbon-Footprint-Calculator/internal/observability"
)

const (
	// DefaultForecastURL is the Open-Meteo forecast endpoint.
	DefaultForecastURL = "https://api.open-meteo.com/v1/forecast"
	// DefaultAirQualityURL is the Open-Meteo air quality endpoint.
	DefaultAirQualityURL = "https://air-quality-api.open-meteo.com/v1/air-quality"

	endpointForecast   = "forecast"
	endpointAirQuality = "air_quality"

	// openMeteoTimeLayout is the ISO 8601 form Open-Meteo uses, without
	// seconds or zone. Times are GMT unless a timezone is requested.
	openMeteoTimeLayout = "2006-01-02T15:04"
)

// OpenMeteoConfig configures an OpenMeteoClient.
type OpenMeteoConfig struct {
	ForecastURL   string
	AirQualityURL string
	Timeout       time.Duration
}

// OpenMeteoClient implements WeatherLookup with the Open-Meteo APIs. No API
// key is required.
type OpenMeteoClient struct {
	forecastURL   string
	airQualityURL string
	httpClient    *http.Client
	logger        zerolog.Logger
	metrics       *observability.Metrics
}

var _ WeatherLookup = (*OpenMeteoClient)(nil)

// NewOpenMeteoClient creates a client. metrics may be nil.
func NewOpenMeteoClient(cfg OpenMeteoConfig, logger zerolog.Logger, metrics *observability.Metrics) *OpenMeteoClient {
	if cfg.ForecastURL == "" {
		cfg.ForecastURL = DefaultForecastURL
	}
	if cfg.AirQualityURL == "" {
		cfg.AirQualityURL = DefaultAirQualityURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &OpenMeteoClient{
		forecastURL:   cfg.ForecastURL,
		airQualityURL: cfg.AirQualityURL,
		httpClient:    &http.Client{Timeout: cfg.Timeout},
		logger:        logger.With().Str("component", "open-meteo").Logger(),
		metrics:       metrics,
	}
}

// Current fetches the forecast and the air quality concurrently. A failed
// forecast fails the lookup; a failed air quality request leaves AQI nil.
func (c *OpenMeteoClient) Current(ctx context.Context, point geo.GeoPoint) (cond Conditions, err error) {
	ctx, span := observability.StartSpan(ctx, "openmeteo.current",
		attribute.Float64(observability.AttrLatitude, point.Latitude),
		attribute.Float64(observability.AttrLongitude, point.Longitude),
	)
	defer func() { observability.EndSpan(span, err) }()

	var (
		fc     forecastResponse
		aq     airQualityResponse
		aqiErr error
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return c.get(gctx, endpointForecast, c.forecastURL, point, "temperature_2m,relative_humidity_2m,wind_speed_10m,weather_code", &fc)
	})
	g.Go(func() error {
		aqiErr = c.get(gctx, endpointAirQuality, c.airQualityURL, point, "us_aqi", &aq)
		return nil
	})
	if err = g.Wait(); err != nil {
		return Conditions{}, err
	}

	description, icon := DescribeWeatherCode(fc.Current.WeatherCode)
	cond = Conditions{
		Location:     locationLabel(point),
		TemperatureC: fc.Current.Temperature,
		Description:  description,
		Icon:         icon,
		HumidityPct:  int(math.Round(fc.Current.Humidity)),
		WindSpeedKmh: fc.Current.WindSpeed,
		ObservedAt:   parseObservedAt(fc.Current.Time),
	}

	switch {
	case aqiErr != nil:
		c.logger.Warn().Err(aqiErr).Msg("air quality unavailable")
	case aq.Current.USAQI != nil:
		v := int(math.Round(*aq.Current.USAQI))
		cond.AQI = &v
	}
	return cond, nil
}

func (c *OpenMeteoClient) get(ctx context.Context, endpoint, base string, point geo.GeoPoint, current string, out any) (err error) {
	start := time.Now()
	defer func() {
		outcome := observability.OutcomeSuccess
		if err != nil {
			outcome = observability.OutcomeError
		}
		c.metrics.WeatherRequest(endpoint, outcome, time.Since(start))
	}()

	params := url.Values{
		"latitude":  {strconv.FormatFloat(point.Latitude, 'f', 4, 64)},
		"longitude": {strconv.FormatFloat(point.Longitude, 'f', 4, 64)},
		"current":   {current},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("create %s request: %w", endpoint, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s request: %w", endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("open-meteo %s error: status %d: %s", endpoint, resp.StatusCode, body)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", endpoint, err)
	}
	return nil
}

func locationLabel(p geo.GeoPoint) string {
	if p.Label != "" {
		return p.Label
	}
	return fmt.Sprintf("%.4f, %.4f", p.Latitude, p.Longitude)
}

func parseObservedAt(s string) time.Time {
	t, err := time.ParseInLocation(openMeteoTimeLayout, s, time.UTC)
	if err != nil {
		return time.Time{}
	}
	return t
}

// Open-Meteo response types.

type forecastResponse struct {
	Current struct {
		Time        string  `json:"time"`
		Temperature float64 `json:"temperature_2m"`
		Humidity    float64 `json:"relative_humidity_2m"`
		WindSpeed   float64 `json:"wind_speed_10m"`
		WeatherCode int     `json:"weather_code"`
	} `json:"current"`
}

type airQualityResponse struct {
	Current struct {
		Time  string   `json:"time"`
		USAQI *float64 `json:"us_aqi"`
	} `json:"current"`
}
