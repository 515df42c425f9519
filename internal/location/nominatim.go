package location

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/time/rate"

	"github.com/stephenrodrick/Carbon-Footprint-Calculator/internal/observability"
)

const (
	// DefaultNominatimURL is the public OpenStreetMap Nominatim instance.
	DefaultNominatimURL = "https://nominatim.openstreetmap.org"

	// DefaultUserAgent identifies this application to Nominatim, whose usage
	// policy requires a descriptive User-Agent.
	DefaultUserAgent = "carbonfootprint/1.0"

	providerNominatim = "nominatim"
)

// NominatimConfig configures a NominatimClient. Zero values select the
// defaults: public instance, 1 request per second, 5 results, 10s timeout.
type NominatimConfig struct {
	BaseURL    string
	UserAgent  string
	RateLimit  float64
	Burst      int
	MaxResults int
	Timeout    time.Duration
}

// NominatimClient implements LocationSearch against the Nominatim search API.
type NominatimClient struct {
	baseURL    string
	userAgent  string
	maxResults int
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     zerolog.Logger
	metrics    *observability.Metrics
}

var _ LocationSearch = (*NominatimClient)(nil)

// NewNominatimClient creates a client. metrics may be nil.
func NewNominatimClient(cfg NominatimConfig, logger zerolog.Logger, metrics *observability.Metrics) *NominatimClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultNominatimURL
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	if cfg.RateLimit <= 0 {
		cfg.RateLimit = 1
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 1
	}
	if cfg.MaxResults <= 0 {
		cfg.MaxResults = DefaultMaxResults
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &NominatimClient{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		userAgent:  cfg.UserAgent,
		maxResults: cfg.MaxResults,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		limiter:    rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.Burst),
		logger:     logger.With().Str("component", "nominatim").Logger(),
		metrics:    metrics,
	}
}

// Search queries Nominatim and returns at most MaxResults candidates.
func (c *NominatimClient) Search(ctx context.Context, query string) (candidates []Candidate, err error) {
	q, err := NormalizeQuery(query)
	if err != nil {
		return nil, err
	}

	ctx, span := observability.StartSpan(ctx, "nominatim.search",
		attribute.String(observability.AttrProvider, providerNominatim),
		attribute.String(observability.AttrQuery, q),
	)
	start := time.Now()
	defer func() {
		c.metrics.LocationRequest(providerNominatim, observability.OutcomeOf(err, len(candidates)), time.Since(start))
		span.SetAttributes(attribute.Int(observability.AttrResultCount, len(candidates)))
		observability.EndSpan(span, err)
	}()

	if !c.limiter.Allow() {
		observability.AddEvent(ctx, "rate_limit_wait")
		if err = c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("nominatim rate limit: %w", err)
		}
	}

	params := url.Values{
		"format": {"json"},
		"q":      {q},
		"limit":  {strconv.Itoa(c.maxResults)},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/search?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("nominatim search request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("nominatim API error: status %d: %s", resp.StatusCode, body)
	}

	var places []place
	if err = json.NewDecoder(resp.Body).Decode(&places); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	candidates = make([]Candidate, 0, len(places))
	for _, p := range places {
		cand, ok := p.candidate()
		if !ok {
			c.logger.Debug().
				Str("display_name", p.DisplayName).
				Msg("skipping result with unparseable coordinates")
			continue
		}
		candidates = append(candidates, cand)
	}
	candidates = limit(candidates, c.maxResults)

	c.logger.Debug().
		Str("query", q).
		Int("results", len(candidates)).
		Int64("duration_ms", time.Since(start).Milliseconds()).
		Msg("location search complete")

	return candidates, nil
}

// Nominatim response types. Coordinates arrive as strings.

type place struct {
	PlaceID     int64  `json:"place_id"`
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

func (p place) candidate() (Candidate, bool) {
	lat, err := strconv.ParseFloat(p.Lat, 64)
	if err != nil || lat < -90 || lat > 90 {
		return Candidate{}, false
	}
	lon, err := strconv.ParseFloat(p.Lon, 64)
	if err != nil || lon < -180 || lon > 180 {
		return Candidate{}, false
	}
	return Candidate{Label: p.DisplayName, Latitude: lat, Longitude: lon}, true
}
