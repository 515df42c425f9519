// Package grpcapi exposes the footprint service over gRPC. Messages are
// google.protobuf.Struct values carrying the same JSON shapes as the HTTP
// API, so no generated code is needed.
package grpcapi

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/stephenrodrick/Carbon-Footprint-Calculator/internal/footprint"
	"github.com/stephenrodrick/Carbon-Footprint-Calculator/internal/report"
)

// ServiceName is the fully-qualified gRPC service name.
const ServiceName = "carbonfootprint.v1.FootprintService"

// Method names.
const (
	MethodCalculate       = "Calculate"
	MethodSearchLocations = "SearchLocations"
	MethodWeather         = "Weather"
)

// FootprintServer is the server API for FootprintService.
type FootprintServer interface {
	Calculate(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error)
	SearchLocations(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error)
	Weather(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error)
}

type unaryCall func(srv FootprintServer, ctx context.Context, in *structpb.Struct) (*structpb.Struct, error)

func unaryHandler(method string, call unaryCall) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(FootprintServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod(method)}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(FootprintServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// ServiceDesc describes FootprintService for grpc.Server.RegisterService.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*FootprintServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: MethodCalculate,
			Handler: unaryHandler(MethodCalculate, func(s FootprintServer, ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
				return s.Calculate(ctx, in)
			}),
		},
		{
			MethodName: MethodSearchLocations,
			Handler: unaryHandler(MethodSearchLocations, func(s FootprintServer, ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
				return s.SearchLocations(ctx, in)
			}),
		},
		{
			MethodName: MethodWeather,
			Handler: unaryHandler(MethodWeather, func(s FootprintServer, ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
				return s.Weather(ctx, in)
			}),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "carbonfootprint/v1/footprint.proto",
}

func fullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

// FootprintClient calls FootprintService.
type FootprintClient struct {
	cc grpc.ClientConnInterface
}

// NewFootprintClient wraps a client connection.
func NewFootprintClient(cc grpc.ClientConnInterface) *FootprintClient {
	return &FootprintClient{cc: cc}
}

func (c *FootprintClient) invoke(ctx context.Context, method string, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, fullMethod(method), in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// Calculate computes a footprint report.
func (c *FootprintClient) Calculate(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, MethodCalculate, in, opts...)
}

// SearchLocations looks up location candidates.
func (c *FootprintClient) SearchLocations(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, MethodSearchLocations, in, opts...)
}

// Weather returns current conditions.
func (c *FootprintClient) Weather(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, MethodWeather, in, opts...)
}

// CalculateReport is Calculate over typed request and report values.
func (c *FootprintClient) CalculateReport(ctx context.Context, req footprint.Request, opts ...grpc.CallOption) (*report.Report, error) {
	in, err := toStruct(req)
	if err != nil {
		return nil, err
	}
	out, err := c.Calculate(ctx, in, opts...)
	if err != nil {
		return nil, err
	}
	var rpt report.Report
	if err := fromStruct(out, &rpt); err != nil {
		return nil, fmt.Errorf("decode report: %w", err)
	}
	return &rpt, nil
}
