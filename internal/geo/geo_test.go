package geo

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	newYork = GeoPoint{Latitude: 40.7128, Longitude: -74.006, Label: "New York"}
	london  = GeoPoint{Latitude: 51.5074, Longitude: -0.1278, Label: "London"}
	paris   = GeoPoint{Latitude: 48.8566, Longitude: 2.3522, Label: "Paris"}
	sydney  = GeoPoint{Latitude: -33.8688, Longitude: 151.2093, Label: "Sydney"}
)

func TestNewGeoPoint(t *testing.T) {
	tests := []struct {
		name    string
		lat     float64
		lon     float64
		wantErr bool
	}{
		{"origin", 0, 0, false},
		{"north pole", 90, 0, false},
		{"south pole date line", -90, -180, false},
		{"east date line", 10, 180, false},
		{"latitude too high", 90.0001, 0, true},
		{"latitude too low", -91, 0, true},
		{"longitude too high", 0, 180.5, true},
		{"longitude too low", 0, -181, true},
		{"nan latitude", math.NaN(), 0, true},
		{"nan longitude", 0, math.NaN(), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewGeoPoint(tt.lat, tt.lon, "label")
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrInvalidCoordinate))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.lat, p.Latitude)
			assert.Equal(t, tt.lon, p.Longitude)
			assert.Equal(t, "label", p.Label)
		})
	}
}

func TestHaversineKm_KnownDistances(t *testing.T) {
	// Great-circle reference distances, tolerance 1%.
	tests := []struct {
		name string
		a, b GeoPoint
		want float64
	}{
		{"London to Paris", london, paris, 343.5},
		{"New York to London", newYork, london, 5570},
		{"London to Sydney", london, sydney, 16994},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := HaversineKm(tt.a, tt.b)
			assert.InEpsilon(t, tt.want, got, 0.01)
		})
	}
}

func TestEstimateDistanceKm_AppliesDetourFactor(t *testing.T) {
	straight := HaversineKm(london, paris)
	assert.InDelta(t, straight*1.2, EstimateDistanceKm(london, paris), 1e-9)
}

func TestEstimateDistanceKm_Symmetric(t *testing.T) {
	points := []GeoPoint{newYork, london, paris, sydney, {Latitude: 0, Longitude: 179.9}, {Latitude: 0, Longitude: -179.9}}
	for _, a := range points {
		for _, b := range points {
			assert.InDelta(t, EstimateDistanceKm(a, b), EstimateDistanceKm(b, a), 1e-9,
				"distance %s -> %s should be symmetric", a, b)
		}
	}
}

func TestEstimateDistanceKm_IdenticalPointsIsZero(t *testing.T) {
	for _, p := range []GeoPoint{newYork, london, sydney, {Latitude: 90, Longitude: 0}} {
		assert.Equal(t, 0.0, EstimateDistanceKm(p, p))
	}
}

func TestEstimateDistanceKm_AntipodalIsFinite(t *testing.T) {
	a := GeoPoint{Latitude: 0, Longitude: 0}
	b := GeoPoint{Latitude: 0, Longitude: 180}
	d := EstimateDistanceKm(a, b)
	assert.False(t, math.IsNaN(d))
	assert.InEpsilon(t, math.Pi*EarthRadiusKm*RoadDetourFactor, d, 1e-6)
}

func TestNewRoute(t *testing.T) {
	r := NewRoute(newYork, london)
	assert.Equal(t, newYork, r.Origin)
	assert.Equal(t, london, r.Destination)
	assert.Equal(t, EstimateDistanceKm(newYork, london), r.DistanceKm)
	assert.GreaterOrEqual(t, r.DistanceKm, 0.0)
}

func TestGeoPoint_String(t *testing.T) {
	assert.Equal(t, "New York (40.7128, -74.0060)", newYork.String())
	assert.Equal(t, "(1.0000, 2.0000)", GeoPoint{Latitude: 1, Longitude: 2}.String())
}
