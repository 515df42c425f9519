// Package cli implements the carbonfootprint command line.
package cli

import (
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/stephenrodrick/Carbon-Footprint-Calculator/internal/config"
)

// Output formats accepted by --format.
const (
	formatText = "text"
	formatJSON = "json"
)

// rootOptions carries persistent flags and the state PersistentPreRunE
// derives from them.
type rootOptions struct {
	configPath string
	debug      bool

	cfg    *config.Config
	logger zerolog.Logger
}

// isTerminal reports whether w is a terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// NewRootCmd creates the root command with every subcommand attached.
func NewRootCmd(ver string) *cobra.Command {
	opts := &rootOptions{logger: zerolog.Nop()}

	cmd := &cobra.Command{
		Use:          "carbonfootprint",
		Short:        "Estimate a personal monthly carbon footprint",
		Long:         "Estimate monthly CO2 emissions from travel, household electricity and diet, and serve the calculator over HTTP, gRPC and MCP.",
		Version:      ver,
		Example:      rootCmdExample,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return opts.setup(cmd)
		},
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "path to a YAML config file")
	cmd.PersistentFlags().BoolVar(&opts.debug, "debug", false, "enable debug logging")
	cmd.AddCommand(
		newCalculateCmd(opts),
		newSearchCmd(opts),
		newRouteCmd(opts),
		newWeatherCmd(opts),
		newFactorsCmd(),
		newServeCmd(opts, ver),
		newMCPCmd(opts, ver),
	)
	return cmd
}

const rootCmdExample = `  # Footprint for a car commute, a UK household and a vegetarian diet
  carbonfootprint calculate --vehicle car --distance 800 --grid uk --kwh 250 --diet vegetarian

  # Derive the travel distance from two places
  carbonfootprint calculate --vehicle train --from London --to Paris

  # Serve the HTTP and gRPC APIs
  carbonfootprint serve --config carbonfootprint.yaml`

// setup loads configuration and builds the logger. Logs always go to
// stderr so stdout stays clean for command output and the MCP transport.
func (o *rootOptions) setup(cmd *cobra.Command) error {
	bootstrap := config.NewLogger("warn", "console", cmd.ErrOrStderr())
	cfg, err := config.Load(o.configPath, bootstrap)
	if err != nil {
		return err
	}
	if o.debug {
		cfg.Log.Level = "debug"
	}
	o.cfg = cfg
	o.logger = config.NewLogger(cfg.Log.Level, cfg.Log.Format, cmd.ErrOrStderr())
	o.logger.Debug().
		Str("config", o.configPath).
		Bool("test_mode", cfg.TestMode).
		Str("location_provider", cfg.Location.Provider).
		Str("weather_provider", cfg.Weather.Provider).
		Msg("configuration loaded")
	return nil
}
