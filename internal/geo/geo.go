// Package geo holds resolved coordinates and the road distance estimate
// between two of them.
package geo

import (
	"fmt"
	"math"
)

const (
	// EarthRadiusKm is the mean Earth radius used by the haversine formula.
	EarthRadiusKm = 6371.0

	// RoadDetourFactor inflates great-circle distance to approximate the
	// distance actually travelled by road.
	RoadDetourFactor = 1.2
)

type constError string

func (e constError) Error() string { return string(e) }

// ErrInvalidCoordinate indicates a latitude outside [-90,90] or a longitude
// outside [-180,180].
const ErrInvalidCoordinate = constError("invalid coordinate")

// GeoPoint is a resolved location. It is never modified after creation.
type GeoPoint struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Label     string  `json:"label,omitempty"`
}

// NewGeoPoint validates the coordinate ranges and returns a point.
func NewGeoPoint(lat, lon float64, label string) (GeoPoint, error) {
	if math.IsNaN(lat) || lat < -90 || lat > 90 {
		return GeoPoint{}, fmt.Errorf("%w: latitude %v out of range [-90,90]", ErrInvalidCoordinate, lat)
	}
	if math.IsNaN(lon) || lon < -180 || lon > 180 {
		return GeoPoint{}, fmt.Errorf("%w: longitude %v out of range [-180,180]", ErrInvalidCoordinate, lon)
	}
	return GeoPoint{Latitude: lat, Longitude: lon, Label: label}, nil
}

// String formats the point for logs and text output.
func (p GeoPoint) String() string {
	if p.Label != "" {
		return fmt.Sprintf("%s (%.4f, %.4f)", p.Label, p.Latitude, p.Longitude)
	}
	return fmt.Sprintf("(%.4f, %.4f)", p.Latitude, p.Longitude)
}

// Route connects two resolved points. DistanceKm is derived from the
// endpoints; use NewRoute to build one.
type Route struct {
	Origin      GeoPoint `json:"origin"`
	Destination GeoPoint `json:"destination"`
	DistanceKm  float64  `json:"distance_km"`
}

// NewRoute builds a route and derives its estimated road distance.
func NewRoute(origin, destination GeoPoint) Route {
	return Route{
		Origin:      origin,
		Destination: destination,
		DistanceKm:  EstimateDistanceKm(origin, destination),
	}
}

// HaversineKm returns the great-circle distance between a and b in km.
func HaversineKm(a, b GeoPoint) float64 {
	if a.Latitude == b.Latitude && a.Longitude == b.Longitude {
		return 0
	}
	lat1 := toRadians(a.Latitude)
	lat2 := toRadians(b.Latitude)
	dLat := toRadians(b.Latitude - a.Latitude)
	dLon := toRadians(b.Longitude - a.Longitude)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	// rounding can push h a hair past 1 for antipodal points
	h = math.Min(1, math.Max(0, h))
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return EarthRadiusKm * c
}

// EstimateDistanceKm returns the haversine distance between origin and
// destination multiplied by RoadDetourFactor. Identical points yield 0.
func EstimateDistanceKm(origin, destination GeoPoint) float64 {
	return HaversineKm(origin, destination) * RoadDetourFactor
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
