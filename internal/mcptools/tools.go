// Package mcptools exposes the footprint service as Model Context Protocol
// tools served over stdio.
package mcptools

import (
	"context"
	"errors"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/rs/zerolog"

	"github.com/stephenrodrick/Carbon-Footprint-Calculator/internal/carbon"
	"github.com/stephenrodrick/Carbon-Footprint-Calculator/internal/footprint"
	"github.com/stephenrodrick/Carbon-Footprint-Calculator/internal/geo"
)

// Tool names.
const (
	ToolCalculateFootprint  = "calculate_footprint"
	ToolSearchLocation      = "search_location"
	ToolEstimateRoute       = "estimate_route"
	ToolGetWeather          = "get_weather"
	ToolListEmissionFactors = "list_emission_factors"
)

// ToolHandler handles one tool call.
type ToolHandler func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error)

// ToolDefinition pairs a tool with its handler.
type ToolDefinition struct {
	Tool    mcp.Tool
	Handler ToolHandler
}

// Registry builds the tool set for a footprint.Service.
type Registry struct {
	svc    *footprint.Service
	logger zerolog.Logger
}

// NewRegistry creates a Registry.
func NewRegistry(svc *footprint.Service, logger zerolog.Logger) *Registry {
	return &Registry{
		svc:    svc,
		logger: logger.With().Str("component", "mcp").Logger(),
	}
}

// Definitions returns every tool in registration order.
func (r *Registry) Definitions() []ToolDefinition {
	return []ToolDefinition{
		{Tool: calculateFootprintTool(), Handler: r.handleCalculateFootprint},
		{Tool: searchLocationTool(), Handler: r.handleSearchLocation},
		{Tool: estimateRouteTool(), Handler: r.handleEstimateRoute},
		{Tool: getWeatherTool(), Handler: r.handleGetWeather},
		{Tool: listEmissionFactorsTool(), Handler: r.handleListEmissionFactors},
	}
}

func calculateFootprintTool() mcp.Tool {
	return mcp.NewTool(ToolCalculateFootprint,
		mcp.WithDescription("Estimate monthly CO2 emissions from travel, electricity and diet. "+
			"Fill in any subset of the three sections; at least one is required."),
		mcp.WithString("vehicle",
			mcp.Description("Travel mode: car, bus, train, plane, bike or walk"),
		),
		mcp.WithNumber("distance_km",
			mcp.Description("Monthly travel distance in km. Omit to derive it from origin and destination"),
		),
		mcp.WithString("origin",
			mcp.Description("Place name the trip starts from"),
		),
		mcp.WithString("destination",
			mcp.Description("Place name the trip ends at"),
		),
		mcp.WithString("grid",
			mcp.Description("Electricity grid: global, us, uk, china, india, germany, france, australia, canada or brazil"),
		),
		mcp.WithNumber("monthly_kwh",
			mcp.Description("Monthly household electricity usage in kWh"),
		),
		mcp.WithString("diet",
			mcp.Description("Diet: vegan, vegetarian, pescatarian, mixed or highMeat"),
		),
		mcp.WithNumber("meat_days_per_week",
			mcp.Description("Whole days per week with meat, 1-7, default 3. Only used for the mixed diet"),
		),
	)
}

func searchLocationTool() mcp.Tool {
	return mcp.NewTool(ToolSearchLocation,
		mcp.WithDescription("Search for places by name and return candidate coordinates"),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Place name, at least 3 characters"),
		),
	)
}

func estimateRouteTool() mcp.Tool {
	return mcp.NewTool(ToolEstimateRoute,
		mcp.WithDescription("Estimate the road distance between two places as the great-circle distance times 1.2"),
		mcp.WithString("from",
			mcp.Required(),
			mcp.Description("Place name of the origin"),
		),
		mcp.WithString("to",
			mcp.Required(),
			mcp.Description("Place name of the destination"),
		),
	)
}

func getWeatherTool() mcp.Tool {
	return mcp.NewTool(ToolGetWeather,
		mcp.WithDescription("Get current weather and air quality. Defaults to New York when no coordinates are given"),
		mcp.WithNumber("latitude",
			mcp.Description("Latitude in degrees, -90 to 90"),
		),
		mcp.WithNumber("longitude",
			mcp.Description("Longitude in degrees, -180 to 180"),
		),
	)
}

func listEmissionFactorsTool() mcp.Tool {
	return mcp.NewTool(ToolListEmissionFactors,
		mcp.WithDescription("List the emission factor tables used by the calculator"),
		mcp.WithString("category",
			mcp.Description("Limit to one table: vehicle, grid or diet"),
		),
	)
}

type calculateInput struct {
	Vehicle         string   `json:"vehicle"`
	DistanceKm      *float64 `json:"distance_km"`
	Origin          string   `json:"origin"`
	Destination     string   `json:"destination"`
	Grid            string   `json:"grid"`
	MonthlyKWh      *float64 `json:"monthly_kwh"`
	Diet            string   `json:"diet"`
	MeatDaysPerWeek *int     `json:"meat_days_per_week"`
}

// request maps the flat tool arguments onto footprint sections. A section is
// present when any of its arguments is set.
func (in calculateInput) request() footprint.Request {
	var req footprint.Request
	if in.Vehicle != "" || in.DistanceKm != nil || in.Origin != "" || in.Destination != "" {
		req.Travel = &footprint.TravelInput{
			Vehicle:          in.Vehicle,
			DistanceKm:       in.DistanceKm,
			OriginQuery:      in.Origin,
			DestinationQuery: in.Destination,
		}
	}
	if in.Grid != "" || in.MonthlyKWh != nil {
		e := &footprint.ElectricityInput{Grid: in.Grid}
		if in.MonthlyKWh != nil {
			e.MonthlyKWh = *in.MonthlyKWh
		}
		req.Electricity = e
	}
	if in.Diet != "" || in.MeatDaysPerWeek != nil {
		req.Diet = &footprint.DietInput{Diet: in.Diet, MeatDaysPerWeek: in.MeatDaysPerWeek}
	}
	return req
}

func (r *Registry) handleCalculateFootprint(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var in calculateInput
	if err := parseArguments(req, &in); err != nil {
		return r.failure(ToolCalculateFootprint, err), nil
	}
	rpt, err := r.svc.Calculate(ctx, in.request())
	if err != nil {
		return r.failure(ToolCalculateFootprint, err), nil
	}
	return r.success(ToolCalculateFootprint, rpt)
}

func (r *Registry) handleSearchLocation(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var in struct {
		Query string `json:"query"`
	}
	if err := parseArguments(req, &in); err != nil {
		return r.failure(ToolSearchLocation, err), nil
	}
	candidates, err := r.svc.SearchLocations(ctx, in.Query)
	if err != nil {
		return r.failure(ToolSearchLocation, err), nil
	}
	return r.success(ToolSearchLocation, map[string]any{"results": candidates})
}

func (r *Registry) handleEstimateRoute(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var in struct {
		From string `json:"from"`
		To   string `json:"to"`
	}
	if err := parseArguments(req, &in); err != nil {
		return r.failure(ToolEstimateRoute, err), nil
	}
	route, err := r.svc.EstimateRoute(ctx, in.From, in.To)
	if err != nil {
		return r.failure(ToolEstimateRoute, err), nil
	}
	return r.success(ToolEstimateRoute, route)
}

func (r *Registry) handleGetWeather(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var in struct {
		Latitude  *float64 `json:"latitude"`
		Longitude *float64 `json:"longitude"`
	}
	if err := parseArguments(req, &in); err != nil {
		return r.failure(ToolGetWeather, err), nil
	}
	var point *geo.GeoPoint
	switch {
	case in.Latitude != nil && in.Longitude != nil:
		point = &geo.GeoPoint{Latitude: *in.Latitude, Longitude: *in.Longitude}
	case in.Latitude != nil || in.Longitude != nil:
		return r.failure(ToolGetWeather,
			fmt.Errorf("%w: latitude and longitude must be given together", geo.ErrInvalidCoordinate)), nil
	}
	conditions, err := r.svc.Weather(ctx, point)
	if err != nil {
		return r.failure(ToolGetWeather, err), nil
	}
	return r.success(ToolGetWeather, conditions)
}

func (r *Registry) handleListEmissionFactors(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var in struct {
		Category string `json:"category"`
	}
	if err := parseArguments(req, &in); err != nil {
		return r.failure(ToolListEmissionFactors, err), nil
	}
	tables := r.svc.Tables()
	out := make(map[string]map[string]float64, 3)
	for _, c := range carbon.Categories() {
		if in.Category == "" || in.Category == string(c) {
			out[string(c)] = tables.Table(c)
		}
	}
	if len(out) == 0 {
		return r.failure(ToolListEmissionFactors, fmt.Errorf("unknown category %q", in.Category)), nil
	}
	return r.success(ToolListEmissionFactors, out)
}

var errInvalidArguments = errors.New("invalid arguments")

func parseArguments(req mcp.CallToolRequest, out any) error {
	if req.Params.Arguments == nil {
		return nil
	}
	data, err := json.Marshal(req.Params.Arguments)
	if err != nil {
		return fmt.Errorf("%w: %v", errInvalidArguments, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: %v", errInvalidArguments, err)
	}
	return nil
}

func (r *Registry) success(tool string, v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		r.logger.Error().Str("tool", tool).Err(err).Msg("failed to marshal result")
		return mcp.NewToolResultError("failed to generate result"), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

// failure reports err to the model as a tool error. Tool errors are results,
// not protocol errors.
func (r *Registry) failure(tool string, err error) *mcp.CallToolResult {
	kind := footprint.KindOf(err)
	if errors.Is(err, errInvalidArguments) {
		kind = footprint.KindInvalidInput
	}
	event := r.logger.Warn()
	if kind == footprint.KindUpstream {
		event = r.logger.Error()
	}
	event.Str("tool", tool).Str("error_code", kind.String()).Err(err).Msg("tool call failed")
	return mcp.NewToolResultError(fmt.Sprintf("%s: %s", kind, err))
}
