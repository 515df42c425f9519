package grpcapi

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/stephenrodrick/Carbon-Footprint-Calculator/internal/footprint"
	"github.com/stephenrodrick/Carbon-Footprint-Calculator/internal/geo"
	"github.com/stephenrodrick/Carbon-Footprint-Calculator/internal/observability"
)

// TraceIDMetadataKey is the metadata key carrying the request trace ID.
const TraceIDMetadataKey = "x-trace-id"

// errorDomain is the ErrorInfo domain attached to every error.
const errorDomain = "carbonfootprint"

// Server implements FootprintServer over a footprint.Service.
type Server struct {
	svc     *footprint.Service
	logger  zerolog.Logger // logger is immutable (copy-on-write)
	metrics *observability.Metrics
}

var _ FootprintServer = (*Server)(nil)

// NewServer creates a Server. metrics may be nil.
func NewServer(svc *footprint.Service, logger zerolog.Logger, metrics *observability.Metrics) *Server {
	return &Server{
		svc:     svc,
		logger:  logger.With().Str("component", "grpc").Logger(),
		metrics: metrics,
	}
}

// NewGRPCServer builds a grpc.Server with FootprintService and the standard
// health service registered.
func NewGRPCServer(srv *Server, opts ...grpc.ServerOption) *grpc.Server {
	gs := grpc.NewServer(opts...)
	gs.RegisterService(&ServiceDesc, srv)

	healthSrv := health.NewServer()
	healthpb.RegisterHealthServer(gs, healthSrv)
	healthSrv.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthSrv.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	return gs
}

// Calculate expects a footprint request object and returns the report.
func (s *Server) Calculate(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	return s.handle(ctx, MethodCalculate, func(ctx context.Context) (any, error) {
		var req footprint.Request
		if err := fromStruct(in, &req); err != nil {
			return nil, err
		}
		return s.svc.Calculate(ctx, req)
	})
}

// SearchLocations expects {"query": "..."} and returns {"results": [...]}.
func (s *Server) SearchLocations(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	return s.handle(ctx, MethodSearchLocations, func(ctx context.Context) (any, error) {
		candidates, err := s.svc.SearchLocations(ctx, in.GetFields()["query"].GetStringValue())
		if err != nil {
			return nil, err
		}
		return map[string]any{"results": candidates}, nil
	})
}

// Weather accepts optional "latitude" and "longitude" fields. Without them
// the default location is used.
func (s *Server) Weather(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	return s.handle(ctx, MethodWeather, func(ctx context.Context) (any, error) {
		var point *geo.GeoPoint
		fields := in.GetFields()
		lat, hasLat := fields["latitude"]
		lon, hasLon := fields["longitude"]
		if hasLat != hasLon {
			return nil, fmt.Errorf("%w: latitude and longitude must be given together", geo.ErrInvalidCoordinate)
		}
		if hasLat {
			p, err := geo.NewGeoPoint(lat.GetNumberValue(), lon.GetNumberValue(), fields["label"].GetStringValue())
			if err != nil {
				return nil, err
			}
			point = &p
		}
		return s.svc.Weather(ctx, point)
	})
}

func (s *Server) handle(ctx context.Context, operation string, fn func(context.Context) (any, error)) (*structpb.Struct, error) {
	start := time.Now()
	traceID := getTraceID(ctx)
	_ = grpc.SetHeader(ctx, metadata.Pairs(TraceIDMetadataKey, traceID))

	ctx, span := observability.StartSpan(ctx, "grpc."+operation)
	result, err := fn(ctx)
	var out *structpb.Struct
	if err == nil {
		out, err = toStruct(result)
	}
	observability.EndSpan(span, err)
	s.metrics.ObserveRequest("grpc", operation, time.Since(start))

	if err != nil {
		kind := footprint.KindOf(err)
		var decodeErr *decodeError
		if errors.As(err, &decodeErr) {
			kind = footprint.KindInvalidInput
		}
		s.logErrorWithID(traceID, operation, err, kind)
		return nil, s.newErrorWithID(traceID, grpcCode(kind), err.Error(), kind)
	}

	s.logger.Info().
		Str("trace_id", traceID).
		Str("operation", operation).
		Int64("duration_ms", time.Since(start).Milliseconds()).
		Msg("request complete")
	return out, nil
}

// getTraceID reads the trace ID from incoming metadata or generates one.
func getTraceID(ctx context.Context) string {
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if values := md.Get(TraceIDMetadataKey); len(values) > 0 && values[0] != "" {
			return values[0]
		}
	}
	return uuid.New().String()
}

func (s *Server) logErrorWithID(traceID, operation string, err error, kind footprint.ErrorKind) {
	event := s.logger.Warn()
	if kind == footprint.KindUpstream {
		event = s.logger.Error()
	}
	event.
		Str("trace_id", traceID).
		Str("operation", operation).
		Str("error_code", kind.String()).
		Err(err).
		Msg("request failed")
}

// newErrorWithID creates a gRPC error whose ErrorInfo detail carries the
// trace ID, so clients can correlate with server logs.
func (s *Server) newErrorWithID(traceID string, code codes.Code, msg string, kind footprint.ErrorKind) error {
	st := status.New(code, msg)
	withDetails, err := st.WithDetails(&errdetails.ErrorInfo{
		Reason:   kind.String(),
		Domain:   errorDomain,
		Metadata: map[string]string{"trace_id": traceID},
	})
	if err != nil {
		s.logger.Warn().
			Str("trace_id", traceID).
			Str("grpc_code", code.String()).
			Err(err).
			Msg("failed to attach error details")
		return st.Err()
	}
	return withDetails.Err()
}

func grpcCode(kind footprint.ErrorKind) codes.Code {
	switch kind {
	case footprint.KindInvalidInput:
		return codes.InvalidArgument
	case footprint.KindNotFound:
		return codes.NotFound
	case footprint.KindCanceled:
		return codes.Canceled
	default:
		return codes.Unavailable
	}
}

// decodeError is a request Struct that does not match the expected shape.
type decodeError struct{ err error }

func (e *decodeError) Error() string { return "invalid request: " + e.err.Error() }
func (e *decodeError) Unwrap() error { return e.err }

func fromStruct(in *structpb.Struct, out any) error {
	data, err := json.Marshal(in.AsMap())
	if err != nil {
		return &decodeError{err: err}
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &decodeError{err: err}
	}
	return nil
}

func toStruct(v any) (*structpb.Struct, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode struct: %w", err)
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("encode struct: %w", err)
	}
	return structpb.NewStruct(m)
}
