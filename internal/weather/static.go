package weather

import (
	"context"

	"github.com/jonboulle/clockwork"

	"github.com/stephenrodrick/Carbon-Footprint-Calculator/internal/geo"
)

// StaticLookup returns the same mild, partly cloudy conditions for every
// point. It is used in tests and test mode.
type StaticLookup struct {
	clock clockwork.Clock
}

var _ WeatherLookup = (*StaticLookup)(nil)

// NewStaticLookup creates a StaticLookup. A nil clock uses the real clock.
func NewStaticLookup(clock clockwork.Clock) *StaticLookup {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &StaticLookup{clock: clock}
}

// Current returns the fixed conditions. The location reads "New York, USA"
// at DefaultLocation and "Your Location" anywhere else.
func (s *StaticLookup) Current(ctx context.Context, point geo.GeoPoint) (Conditions, error) {
	if err := ctx.Err(); err != nil {
		return Conditions{}, err
	}
	label := "Your Location"
	if point.Latitude == DefaultLocation.Latitude && point.Longitude == DefaultLocation.Longitude {
		label = DefaultLocation.Label
	}
	aqi := 35
	return Conditions{
		Location:     label,
		TemperatureC: 22,
		Description:  "Partly Cloudy",
		Icon:         IconCloud,
		HumidityPct:  65,
		WindSpeedKmh: 12,
		AQI:          &aqi,
		ObservedAt:   s.clock.Now().UTC(),
	}, nil
}
