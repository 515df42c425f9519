// Package location resolves free-text place queries to coordinates.
//
// LocationSearch is the capability the footprint service consumes. The
// NominatimClient talks to an OpenStreetMap Nominatim server, CachedSearch
// keeps recent answers in memory, and StaticSearch serves fixed answers for
// tests and test mode.
package location

import (
	"context"
	"fmt"
	"strings"

	"github.com/stephenrodrick/Carbon-Footprint-Calculator/internal/geo"
)

const (
	// MinQueryLength is the shortest trimmed query that is sent to a provider.
	MinQueryLength = 3

	// DefaultMaxResults caps the number of candidates returned per query.
	DefaultMaxResults = 5
)

type constError string

func (e constError) Error() string { return string(e) }

const (
	// ErrQueryTooShort is returned for queries shorter than MinQueryLength.
	ErrQueryTooShort = constError("location query too short")

	// ErrNoResults is returned by Resolve when a query matches nothing.
	ErrNoResults = constError("no matching location")
)

// Candidate is one geocoding match.
type Candidate struct {
	Label     string  `json:"label"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Point converts the candidate into a resolved GeoPoint.
func (c Candidate) Point() geo.GeoPoint {
	return geo.GeoPoint{Latitude: c.Latitude, Longitude: c.Longitude, Label: c.Label}
}

// LocationSearch returns zero or more candidates for a free-text query.
type LocationSearch interface {
	Search(ctx context.Context, query string) ([]Candidate, error)
}

// NormalizeQuery trims the query and checks its length.
func NormalizeQuery(query string) (string, error) {
	q := strings.TrimSpace(query)
	if len([]rune(q)) < MinQueryLength {
		return "", fmt.Errorf("%w: %q needs at least %d characters", ErrQueryTooShort, q, MinQueryLength)
	}
	return q, nil
}

// Resolve returns the first candidate for query as a GeoPoint.
func Resolve(ctx context.Context, search LocationSearch, query string) (geo.GeoPoint, error) {
	candidates, err := search.Search(ctx, query)
	if err != nil {
		return geo.GeoPoint{}, err
	}
	if len(candidates) == 0 {
		return geo.GeoPoint{}, fmt.Errorf("%w: %q", ErrNoResults, strings.TrimSpace(query))
	}
	return candidates[0].Point(), nil
}

func limit(candidates []Candidate, max int) []Candidate {
	if max > 0 && len(candidates) > max {
		return candidates[:max]
	}
	return candidates
}
