// Package httpapi exposes the footprint service as a JSON HTTP API.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/stephenrodrick/Carbon-Footprint-Calculator/internal/carbon"
	"github.com/stephenrodrick/Carbon-Footprint-Calculator/internal/config"
	"github.com/stephenrodrick/Carbon-Footprint-Calculator/internal/footprint"
	"github.com/stephenrodrick/Carbon-Footprint-Calculator/internal/geo"
	"github.com/stephenrodrick/Carbon-Footprint-Calculator/internal/observability"
)

// TraceIDHeader carries the request trace ID in both directions.
const TraceIDHeader = "X-Trace-ID"

const maxBodyBytes = 1 << 20

// Server serves the footprint API plus /healthz and /metrics.
type Server struct {
	httpServer *http.Server
	svc        *footprint.Service
	logger     zerolog.Logger
	metrics    *observability.Metrics
}

// NewServer creates the server and its routes. metrics may be nil.
func NewServer(addr string, svc *footprint.Service, cors config.CORSConfig, logger zerolog.Logger, metrics *observability.Metrics) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		svc:     svc,
		logger:  logger.With().Str("component", "http").Logger(),
		metrics: metrics,
	}

	mux.HandleFunc("POST /v1/footprint", s.instrument("calculate", s.handleCalculate))
	mux.HandleFunc("GET /v1/locations", s.instrument("search_locations", s.handleSearch))
	mux.HandleFunc("GET /v1/route", s.instrument("estimate_route", s.handleRoute))
	mux.HandleFunc("GET /v1/weather", s.instrument("weather", s.handleWeather))
	mux.HandleFunc("GET /v1/factors", s.handleFactors)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.Handle("GET /metrics", promhttp.Handler())

	s.httpServer.Handler = withCORS(cors, mux)
	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info().Str("addr", s.httpServer.Addr).Msg("http server starting")
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

type handlerFunc func(w http.ResponseWriter, r *http.Request, traceID string) error

// instrument assigns a trace ID, times the request and writes errors.
func (s *Server) instrument(operation string, h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		traceID := r.Header.Get(TraceIDHeader)
		if traceID == "" {
			traceID = uuid.NewString()
		}
		w.Header().Set(TraceIDHeader, traceID)

		ctx, span := observability.StartSpan(r.Context(), "http."+operation)
		err := h(w, r.WithContext(ctx), traceID)
		observability.EndSpan(span, err)

		elapsed := time.Since(start)
		s.metrics.ObserveRequest("http", operation, elapsed)

		if err != nil {
			s.writeError(w, err, traceID, operation)
			return
		}
		s.logger.Info().
			Str("trace_id", traceID).
			Str("operation", operation).
			Int64("duration_ms", elapsed.Milliseconds()).
			Msg("request complete")
	}
}

func (s *Server) handleCalculate(w http.ResponseWriter, r *http.Request, _ string) error {
	var req footprint.Request
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		return &badRequestError{msg: "invalid request body: " + err.Error()}
	}

	rpt, err := s.svc.Calculate(r.Context(), req)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, rpt)
	return nil
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request, _ string) error {
	candidates, err := s.svc.SearchLocations(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": candidates})
	return nil
}

func (s *Server) handleRoute(w http.ResponseWriter, r *http.Request, _ string) error {
	q := r.URL.Query()
	route, err := s.svc.EstimateRoute(r.Context(), q.Get("from"), q.Get("to"))
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, route)
	return nil
}

func (s *Server) handleWeather(w http.ResponseWriter, r *http.Request, _ string) error {
	point, err := pointFromQuery(r)
	if err != nil {
		return err
	}
	report, err := s.svc.Weather(r.Context(), point)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, report)
	return nil
}

func (s *Server) handleFactors(w http.ResponseWriter, _ *http.Request) {
	tables := s.svc.Tables()
	out := make(map[string]map[string]float64, 3)
	for _, c := range carbon.Categories() {
		out[string(c)] = tables.Table(c)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func pointFromQuery(r *http.Request) (*geo.GeoPoint, error) {
	q := r.URL.Query()
	latStr, lonStr := q.Get("lat"), q.Get("lon")
	if latStr == "" && lonStr == "" {
		return nil, nil
	}
	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil {
		return nil, &badRequestError{msg: "invalid lat: " + strconv.Quote(latStr)}
	}
	lon, err := strconv.ParseFloat(lonStr, 64)
	if err != nil {
		return nil, &badRequestError{msg: "invalid lon: " + strconv.Quote(lonStr)}
	}
	p, err := geo.NewGeoPoint(lat, lon, q.Get("label"))
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// badRequestError is a malformed request that never reached the service.
type badRequestError struct{ msg string }

func (e *badRequestError) Error() string { return e.msg }

type errorResponse struct {
	Error   string `json:"error"`
	Reason  string `json:"reason"`
	TraceID string `json:"trace_id"`
}

func (s *Server) writeError(w http.ResponseWriter, err error, traceID, operation string) {
	status, reason := statusFor(err)

	event := s.logger.Warn()
	if status >= http.StatusInternalServerError {
		event = s.logger.Error()
	}
	event.Err(err).
		Str("trace_id", traceID).
		Str("operation", operation).
		Int("status", status).
		Msg("request failed")

	writeJSON(w, status, errorResponse{Error: err.Error(), Reason: reason, TraceID: traceID})
}

func statusFor(err error) (int, string) {
	var bre *badRequestError
	if errors.As(err, &bre) {
		return http.StatusBadRequest, footprint.KindInvalidInput.String()
	}
	kind := footprint.KindOf(err)
	switch kind {
	case footprint.KindInvalidInput:
		return http.StatusBadRequest, kind.String()
	case footprint.KindNotFound:
		return http.StatusNotFound, kind.String()
	case footprint.KindCanceled:
		return 499, kind.String()
	default:
		return http.StatusBadGateway, kind.String()
	}
}

// writeJSON encodes v before the status line goes out, so an unencodable
// value becomes a 500 instead of an empty 200.
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		status = http.StatusInternalServerError
		data = []byte(`{"error":"failed to encode response"}`)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(append(data, '\n')) //nolint:errcheck // best-effort response
}
