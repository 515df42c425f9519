package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/stephenrodrick/Carbon-Footprint-Calculator/internal/carbon"
	"github.com/stephenrodrick/Carbon-Footprint-Calculator/internal/geo"
	"github.com/stephenrodrick/Carbon-Footprint-Calculator/internal/report"
)

const tabPadding = 2

func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func validateFormat(format string) error {
	if format != formatText && format != formatJSON {
		return fmt.Errorf("unsupported format %q (use text or json)", format)
	}
	return nil
}

func newSearchCmd(opts *rootOptions) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:     "search <place>",
		Short:   "Search for a place and list candidate coordinates",
		Example: `  carbonfootprint search "san francisco"`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateFormat(format); err != nil {
				return err
			}
			svc, err := opts.newService(nil, nil)
			if err != nil {
				return err
			}
			candidates, err := svc.SearchLocations(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			if format == formatJSON {
				return writeJSON(cmd, candidates)
			}
			if len(candidates) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No places found.")
				return nil
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, tabPadding, ' ', 0)
			fmt.Fprintln(w, "Place\tLatitude\tLongitude")
			fmt.Fprintln(w, "-----\t--------\t---------")
			for _, c := range candidates {
				fmt.Fprintf(w, "%s\t%.4f\t%.4f\n", c.Label, c.Latitude, c.Longitude)
			}
			return w.Flush()
		},
	}
	cmd.Flags().StringVar(&format, "format", formatText, "output format: text or json")
	return cmd
}

func newRouteCmd(opts *rootOptions) *cobra.Command {
	var (
		vehicle string
		format  string
	)

	cmd := &cobra.Command{
		Use:   "route <from> <to>",
		Short: "Estimate the road distance between two places",
		Long: `Estimate the road distance between two places as the great-circle
distance multiplied by a fixed detour factor of 1.2, and the emissions of
travelling it once.`,
		Example: `  carbonfootprint route London Paris --vehicle train`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateFormat(format); err != nil {
				return err
			}
			svc, err := opts.newService(nil, nil)
			if err != nil {
				return err
			}
			route, err := svc.EstimateRoute(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			kg := carbon.NewCalculator(svc.Tables()).RouteEmissions(route, vehicle)
			if format == formatJSON {
				return writeJSON(cmd, struct {
					geo.Route
					Vehicle     string  `json:"vehicle"`
					EmissionsKg float64 `json:"emissions_kg"`
				}{route, vehicle, kg})
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s -> %s\n", route.Origin, route.Destination)
			fmt.Fprintf(out, "Road distance: %.1f km\n", route.DistanceKm)
			fmt.Fprintf(out, "Emissions by %s: %s\n", vehicle, report.FormatKg(kg))
			return nil
		},
	}
	cmd.Flags().StringVar(&vehicle, "vehicle", carbon.DefaultVehicle, "travel mode used for the emissions estimate")
	cmd.Flags().StringVar(&format, "format", formatText, "output format: text or json")
	return cmd
}

func newWeatherCmd(opts *rootOptions) *cobra.Command {
	var (
		lat, lon float64
		format   string
	)

	cmd := &cobra.Command{
		Use:   "weather",
		Short: "Show current weather and air quality",
		Example: `  # Default location (New York)
  carbonfootprint weather

  carbonfootprint weather --lat 51.5074 --lon -0.1278`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := validateFormat(format); err != nil {
				return err
			}
			var point *geo.GeoPoint
			latSet, lonSet := cmd.Flags().Changed("lat"), cmd.Flags().Changed("lon")
			if latSet != lonSet {
				return fmt.Errorf("%w: --lat and --lon must be given together", geo.ErrInvalidCoordinate)
			}
			if latSet {
				point = &geo.GeoPoint{Latitude: lat, Longitude: lon}
			}

			svc, err := opts.newService(nil, nil)
			if err != nil {
				return err
			}
			w, err := svc.Weather(cmd.Context(), point)
			if err != nil {
				return err
			}
			if format == formatJSON {
				return writeJSON(cmd, w)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s\n", w.Location)
			fmt.Fprintf(out, "  %s, %.1f°C\n", w.Description, w.TemperatureC)
			fmt.Fprintf(out, "  Humidity %d%%, wind %.1f km/h\n", w.HumidityPct, w.WindSpeedKmh)
			if w.AQI != nil {
				fmt.Fprintf(out, "  Air quality: %d (%s)\n", *w.AQI, w.AQILevel)
			} else {
				fmt.Fprintf(out, "  Air quality: %s\n", w.AQILevel)
			}
			fmt.Fprintf(out, "  %s\n", w.AQITip)
			return nil
		},
	}
	cmd.Flags().Float64Var(&lat, "lat", 0, "latitude in degrees")
	cmd.Flags().Float64Var(&lon, "lon", 0, "longitude in degrees")
	cmd.Flags().StringVar(&format, "format", formatText, "output format: text or json")
	return cmd
}

func newFactorsCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:       "factors [vehicle|grid|diet]",
		Short:     "List emission factors",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{string(carbon.CategoryVehicle), string(carbon.CategoryGrid), string(carbon.CategoryDiet)},
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateFormat(format); err != nil {
				return err
			}
			categories := carbon.Categories()
			if len(args) == 1 {
				categories = nil
				for _, c := range carbon.Categories() {
					if string(c) == args[0] {
						categories = append(categories, c)
					}
				}
				if len(categories) == 0 {
					return fmt.Errorf("unknown category %q", args[0])
				}
			}

			tables := carbon.DefaultFactorTables()
			if format == formatJSON {
				out := make(map[string]map[string]float64, len(categories))
				for _, c := range categories {
					out[string(c)] = tables.Table(c)
				}
				return writeJSON(cmd, out)
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, tabPadding, ' ', 0)
			fmt.Fprintln(w, "Category\tKey\tFactor\tUnit")
			fmt.Fprintln(w, "--------\t---\t------\t----")
			for _, c := range categories {
				for _, key := range tables.Keys(c) {
					factor, _ := tables.Lookup(c, key)
					fmt.Fprintf(w, "%s\t%s\t%g\t%s\n", c, key, factor, factorUnit(c))
				}
			}
			return w.Flush()
		},
	}
	cmd.Flags().StringVar(&format, "format", formatText, "output format: text or json")
	return cmd
}

func factorUnit(c carbon.Category) string {
	switch c {
	case carbon.CategoryVehicle:
		return "kg CO2/km"
	case carbon.CategoryGrid:
		return "kg CO2/kWh"
	default:
		return "kg CO2e/year"
	}
}
