package cli

import (
	"github.com/spf13/cobra"

	"github.com/stephenrodrick/Carbon-Footprint-Calculator/internal/carbon"
	"github.com/stephenrodrick/Carbon-Footprint-Calculator/internal/footprint"
	"github.com/stephenrodrick/Carbon-Footprint-Calculator/internal/report"
)

type calculateFlags struct {
	vehicle    string
	distanceKm float64
	from       string
	to         string
	grid       string
	monthlyKWh float64
	diet       string
	meatDays   int
	format     string
	publish    bool
}

func newCalculateCmd(opts *rootOptions) *cobra.Command {
	var f calculateFlags

	cmd := &cobra.Command{
		Use:   "calculate",
		Short: "Calculate a monthly carbon footprint",
		Long: `Calculate monthly emissions for any subset of the travel, electricity and
diet sections. A section is included when any of its flags is set.`,
		Example: `  # Electricity only
  carbonfootprint calculate --grid france --kwh 500

  # Mixed diet with meat five days a week, as JSON
  carbonfootprint calculate --diet mixed --meat-days 5 --format json

  # Travel between two places, publishing the report
  carbonfootprint calculate --vehicle bus --from Boston --to "New York" --publish`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCalculate(cmd, opts, f)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&f.vehicle, "vehicle", "", "travel mode: car, bus, train, plane, bike, walk")
	flags.Float64Var(&f.distanceKm, "distance", 0, "monthly travel distance in km")
	flags.StringVar(&f.from, "from", "", "place the trip starts from")
	flags.StringVar(&f.to, "to", "", "place the trip ends at")
	flags.StringVar(&f.grid, "grid", "", "electricity grid: global, us, uk, china, india, germany, france, australia, canada, brazil")
	flags.Float64Var(&f.monthlyKWh, "kwh", 0, "monthly electricity usage in kWh")
	flags.StringVar(&f.diet, "diet", "", "diet: vegan, vegetarian, pescatarian, mixed, highMeat")
	flags.IntVar(&f.meatDays, "meat-days", carbon.MixedDietBaselineDays, "days per week with meat (1-7, mixed diet only)")
	flags.StringVar(&f.format, "format", formatText, "output format: text or json")
	flags.BoolVar(&f.publish, "publish", false, "publish the report to Kafka, or as a JSON line on stderr when no brokers are configured")
	return cmd
}

func runCalculate(cmd *cobra.Command, opts *rootOptions, f calculateFlags) error {
	if err := validateFormat(f.format); err != nil {
		return err
	}

	var publisher report.Publisher
	if f.publish {
		publisher = newKafkaPublisher(opts.cfg.Report.Kafka)
		if publisher == nil {
			publisher = report.NewWriterPublisher(cmd.ErrOrStderr())
		}
		defer closePublisher(opts, publisher)
	}

	svc, err := opts.newService(nil, publisher)
	if err != nil {
		return err
	}
	rpt, err := svc.Calculate(cmd.Context(), f.request(cmd))
	if err != nil {
		return err
	}

	if f.format == formatJSON {
		return report.EncodeJSON(cmd.OutOrStdout(), rpt)
	}
	return report.RenderText(cmd.OutOrStdout(), rpt, isTerminal(cmd.OutOrStdout()))
}

// request includes a section when any of its flags was set.
func (f calculateFlags) request(cmd *cobra.Command) footprint.Request {
	changed := func(names ...string) bool {
		for _, n := range names {
			if cmd.Flags().Changed(n) {
				return true
			}
		}
		return false
	}

	var req footprint.Request
	if changed("vehicle", "distance", "from", "to") {
		t := &footprint.TravelInput{
			Vehicle:          f.vehicle,
			OriginQuery:      f.from,
			DestinationQuery: f.to,
		}
		if changed("distance") {
			d := f.distanceKm
			t.DistanceKm = &d
		}
		req.Travel = t
	}
	if changed("grid", "kwh") {
		req.Electricity = &footprint.ElectricityInput{Grid: f.grid, MonthlyKWh: f.monthlyKWh}
	}
	if changed("diet", "meat-days") {
		d := &footprint.DietInput{Diet: f.diet}
		if changed("meat-days") {
			days := f.meatDays
			d.MeatDaysPerWeek = &days
		}
		req.Diet = d
	}
	return req
}
