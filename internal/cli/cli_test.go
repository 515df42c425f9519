package cli_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stephenrodrick/Carbon-Footprint-Calculator/internal/cli"
	"github.com/stephenrodrick/Carbon-Footprint-Calculator/internal/report"
)

// execute runs the root command in test mode and returns stdout and stderr.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv("CARBONFOOTPRINT_TEST_MODE", "true")
	t.Setenv("CARBONFOOTPRINT_LOG_LEVEL", "error")

	var stdout, stderr bytes.Buffer
	cmd := cli.NewRootCmd("test")
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestCalculateCmd_JSON(t *testing.T) {
	tests := []struct {
		name      string
		args      []string
		wantTotal float64
		wantTier  string
	}{
		{
			name:      "electricity only",
			args:      []string{"--grid", "france", "--kwh", "500"},
			wantTotal: 28,
			wantTier:  "Low",
		},
		{
			name:      "travel by distance with default vehicle",
			args:      []string{"--distance", "1000"},
			wantTotal: 120,
			wantTier:  "Moderate",
		},
		{
			name:      "mixed diet at the default meat days",
			args:      []string{"--diet", "mixed"},
			wantTotal: 2800.0 / 12,
			wantTier:  "Moderate",
		},
		{
			name:      "all sections",
			args:      []string{"--vehicle", "plane", "--distance", "1000", "--grid", "us", "--kwh", "300", "--diet", "vegan"},
			wantTotal: 250 + 125.1 + 1100.0/12,
			wantTier:  "High",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"calculate", "--format", "json"}, tt.args...)
			stdout, _, err := execute(t, args...)
			require.NoError(t, err)

			var rpt report.Report
			require.NoError(t, json.Unmarshal([]byte(stdout), &rpt))
			assert.InDelta(t, tt.wantTotal, rpt.Summary.TotalKg, 1e-9)
			assert.Equal(t, tt.wantTier, rpt.Summary.Tier.String())
		})
	}
}

func TestCalculateCmd_Text(t *testing.T) {
	stdout, _, err := execute(t, "calculate", "--vehicle", "train", "--from", "London", "--to", "Paris")
	require.NoError(t, err)

	assert.Contains(t, stdout, "Carbon Footprint Report")
	assert.Contains(t, stdout, "Route:")
	assert.Contains(t, stdout, "Impact: Low")
	assert.NotContains(t, stdout, "\x1b[", "output to a buffer must not be styled")
}

func TestCalculateCmd_Errors(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{name: "no sections", args: nil, wantErr: "complete at least one calculation section"},
		{name: "zero kwh", args: []string{"--grid", "us"}, wantErr: "electricity usage must be positive"},
		{name: "meat days", args: []string{"--diet", "mixed", "--meat-days", "8"}, wantErr: "meat days per week"},
		{name: "explicit zero meat days", args: []string{"--meat-days", "0"}, wantErr: "meat days per week"},
		{name: "distance past cap", args: []string{"--vehicle", "plane", "--distance", "1e308"}, wantErr: "distance must not exceed"},
		{name: "zero distance only", args: []string{"--distance", "0"}, wantErr: "every completed section is zero"},
		{name: "bad format", args: []string{"--kwh", "10", "--format", "xml"}, wantErr: "unsupported format"},
		{name: "unknown place", args: []string{"--from", "Atlantis", "--to", "Paris"}, wantErr: "no matching location"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := execute(t, append([]string{"calculate"}, tt.args...)...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestCalculateCmd_PublishWithoutBrokers(t *testing.T) {
	stdout, stderr, err := execute(t, "calculate", "--diet", "vegan", "--publish", "--format", "json")
	require.NoError(t, err)

	var printed, published report.Report
	require.NoError(t, json.Unmarshal([]byte(stdout), &printed))
	line := strings.TrimSpace(stderr[strings.Index(stderr, "{"):])
	require.NoError(t, json.Unmarshal([]byte(line), &published))
	assert.Equal(t, printed.ID, published.ID)
}

func TestSearchCmd(t *testing.T) {
	stdout, _, err := execute(t, "search", "san", "francisco")
	require.NoError(t, err)
	assert.Contains(t, stdout, "San Francisco")
	assert.Contains(t, stdout, "Latitude")

	stdout, _, err = execute(t, "search", "Atlantis")
	require.NoError(t, err)
	assert.Contains(t, stdout, "No places found.")

	_, _, err = execute(t, "search", "ab")
	require.Error(t, err)
}

func TestRouteCmd(t *testing.T) {
	stdout, _, err := execute(t, "route", "London", "Paris", "--vehicle", "plane", "--format", "json")
	require.NoError(t, err)

	var out struct {
		DistanceKm  float64 `json:"distance_km"`
		Vehicle     string  `json:"vehicle"`
		EmissionsKg float64 `json:"emissions_kg"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &out))
	assert.Equal(t, "plane", out.Vehicle)
	assert.InDelta(t, out.DistanceKm*0.25, out.EmissionsKg, 1e-9)

	_, _, err = execute(t, "route", "London")
	require.Error(t, err)
}

func TestWeatherCmd(t *testing.T) {
	stdout, _, err := execute(t, "weather")
	require.NoError(t, err)
	assert.Contains(t, stdout, "New York, USA")
	assert.Contains(t, stdout, "Partly Cloudy")
	assert.Contains(t, stdout, "Air quality: 35 (Good)")

	stdout, _, err = execute(t, "weather", "--lat", "48.85", "--lon", "2.35")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Your Location")

	_, _, err = execute(t, "weather", "--lat", "48.85")
	require.Error(t, err)

	_, _, err = execute(t, "weather", "--lat", "91", "--lon", "0")
	require.Error(t, err)
}

func TestFactorsCmd(t *testing.T) {
	stdout, _, err := execute(t, "factors")
	require.NoError(t, err)
	for _, want := range []string{"vehicle", "grid", "diet", "highMeat", "kg CO2/kWh"} {
		assert.Contains(t, stdout, want)
	}

	stdout, _, err = execute(t, "factors", "grid", "--format", "json")
	require.NoError(t, err)
	var out map[string]map[string]float64
	require.NoError(t, json.Unmarshal([]byte(stdout), &out))
	require.Contains(t, out, "grid")
	assert.Len(t, out, 1)
	assert.InDelta(t, 0.056, out["grid"]["france"], 1e-9)

	_, _, err = execute(t, "factors", "shipping")
	require.Error(t, err)
}

func TestRootCmd_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("location:\n  provider: bogus\n"), 0o600))

	// Test mode overrides the provider, so an invalid file value still loads.
	_, _, err := execute(t, "--config", path, "factors")
	require.NoError(t, err)

	_, _, err = execute(t, "--config", filepath.Join(dir, "missing.yaml"), "factors")
	require.Error(t, err)
}

func TestRootCmd_Version(t *testing.T) {
	stdout, _, err := execute(t, "--version")
	require.NoError(t, err)
	assert.Contains(t, stdout, "test")
}
