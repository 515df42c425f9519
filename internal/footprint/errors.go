package footprint

import (
	"context"
	"errors"

	"github.com/stephenrodrick/Carbon-Footprint-Calculator/internal/carbon"
	"github.com/stephenrodrick/Carbon-Footprint-Calculator/internal/geo"
	"github.com/stephenrodrick/Carbon-Footprint-Calculator/internal/location"
)

// ErrorKind groups service errors for transport status mapping.
type ErrorKind int

const (
	// KindUpstream covers failures of external lookups and anything unknown.
	KindUpstream ErrorKind = iota
	// KindInvalidInput is a request the caller must fix.
	KindInvalidInput
	// KindNotFound is a location query that matched nothing.
	KindNotFound
	// KindCanceled is a request abandoned by its caller.
	KindCanceled
)

// String returns the machine-readable reason used in error details.
func (k ErrorKind) String() string {
	switch k {
	case KindInvalidInput:
		return "INVALID_INPUT"
	case KindNotFound:
		return "NOT_FOUND"
	case KindCanceled:
		return "CANCELED"
	default:
		return "UPSTREAM_UNAVAILABLE"
	}
}

// KindOf classifies err.
func KindOf(err error) ErrorKind {
	switch {
	case errors.Is(err, carbon.ErrInvalidQuantity),
		errors.Is(err, carbon.ErrNoSections),
		errors.Is(err, geo.ErrInvalidCoordinate),
		errors.Is(err, location.ErrQueryTooShort):
		return KindInvalidInput
	case errors.Is(err, location.ErrNoResults):
		return KindNotFound
	case errors.Is(err, context.Canceled):
		return KindCanceled
	default:
		return KindUpstream
	}
}
