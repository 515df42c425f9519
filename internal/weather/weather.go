// Package weather looks up current conditions and air quality for a point.
package weather

import (
	"context"
	"time"

	"github.com/stephenrodrick/Carbon-Footprint-Calculator/internal/geo"
)

// DefaultLocation is used when the caller has no location of its own.
var DefaultLocation = geo.GeoPoint{Latitude: 40.7128, Longitude: -74.006, Label: "New York, USA"}

// Conditions describes the current weather at a location.
type Conditions struct {
	Location     string    `json:"location"`
	TemperatureC float64   `json:"temperature_c"`
	Description  string    `json:"description"`
	Icon         string    `json:"icon"`
	HumidityPct  int       `json:"humidity_pct"`
	WindSpeedKmh float64   `json:"wind_speed_kmh"`
	AQI          *int      `json:"aqi"`
	ObservedAt   time.Time `json:"observed_at"`
}

// WeatherLookup returns current conditions for a point.
type WeatherLookup interface {
	Current(ctx context.Context, point geo.GeoPoint) (Conditions, error)
}

// Icon names.
const (
	IconClear = "clear"
	IconCloud = "cloud"
	IconFog   = "fog"
	IconRain  = "rain"
	IconSnow  = "snow"
	IconStorm = "storm"
)

// DescribeWeatherCode maps a WMO weather interpretation code to a
// description and icon.
func DescribeWeatherCode(code int) (string, string) {
	switch {
	case code == 0:
		return "Clear Sky", IconClear
	case code == 1:
		return "Mainly Clear", IconClear
	case code == 2:
		return "Partly Cloudy", IconCloud
	case code == 3:
		return "Overcast", IconCloud
	case code == 45 || code == 48:
		return "Fog", IconFog
	case code >= 51 && code <= 57:
		return "Drizzle", IconRain
	case code >= 61 && code <= 67:
		return "Rain", IconRain
	case code >= 71 && code <= 77:
		return "Snow", IconSnow
	case code >= 80 && code <= 82:
		return "Rain Showers", IconRain
	case code == 85 || code == 86:
		return "Snow Showers", IconSnow
	case code >= 95 && code <= 99:
		return "Thunderstorm", IconStorm
	default:
		return "Unknown", IconCloud
	}
}
