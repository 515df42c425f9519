package footprint

import (
	"fmt"

	"github.com/stephenrodrick/Carbon-Footprint-Calculator/internal/carbon"
	"github.com/stephenrodrick/Carbon-Footprint-Calculator/internal/geo"
)

// Request carries the sections a user completed. Nil sections are skipped.
type Request struct {
	Travel      *TravelInput      `json:"travel,omitempty"`
	Electricity *ElectricityInput `json:"electricity,omitempty"`
	Diet        *DietInput        `json:"diet,omitempty"`
}

// TravelInput gives either an explicit DistanceKm or two endpoints. Each
// endpoint is a resolved point or a free-text query; a point wins when both
// are set.
type TravelInput struct {
	Vehicle          string        `json:"vehicle"`
	DistanceKm       *float64      `json:"distance_km,omitempty"`
	Origin           *geo.GeoPoint `json:"origin,omitempty"`
	Destination      *geo.GeoPoint `json:"destination,omitempty"`
	OriginQuery      string        `json:"origin_query,omitempty"`
	DestinationQuery string        `json:"destination_query,omitempty"`
}

// ElectricityInput is monthly household usage on a country grid.
type ElectricityInput struct {
	Grid       string  `json:"grid"`
	MonthlyKWh float64 `json:"monthly_kwh"`
}

// DietInput selects a diet pattern. MeatDaysPerWeek is only read for the
// mixed diet and defaults to the baseline frequency when omitted.
type DietInput struct {
	Diet            string `json:"diet"`
	MeatDaysPerWeek *int   `json:"meat_days_per_week,omitempty"`
}

func (d *DietInput) meatDays() int {
	if d.MeatDaysPerWeek == nil {
		return carbon.MixedDietBaselineDays
	}
	return *d.MeatDaysPerWeek
}

// Validate checks every present section before anything is calculated.
func (r Request) Validate() error {
	if r.Travel == nil && r.Electricity == nil && r.Diet == nil {
		return carbon.ErrNoSections
	}
	if t := r.Travel; t != nil {
		if err := t.validate(); err != nil {
			return fmt.Errorf("travel: %w", err)
		}
	}
	if e := r.Electricity; e != nil {
		if err := carbon.ValidateElectricityUsage(e.MonthlyKWh); err != nil {
			return fmt.Errorf("electricity: %w", err)
		}
	}
	if d := r.Diet; d != nil {
		diet := orDefault(d.Diet, carbon.DefaultDiet)
		if err := carbon.ValidateMeatDays(diet, d.meatDays()); err != nil {
			return fmt.Errorf("diet: %w", err)
		}
	}
	return nil
}

func (t *TravelInput) validate() error {
	if t.DistanceKm != nil {
		return carbon.ValidateDistance(*t.DistanceKm)
	}
	hasOrigin := t.Origin != nil || t.OriginQuery != ""
	hasDestination := t.Destination != nil || t.DestinationQuery != ""
	if !hasOrigin || !hasDestination {
		return fmt.Errorf("%w: need distance_km or both origin and destination", carbon.ErrInvalidQuantity)
	}
	for _, p := range []*geo.GeoPoint{t.Origin, t.Destination} {
		if p == nil {
			continue
		}
		if _, err := geo.NewGeoPoint(p.Latitude, p.Longitude, p.Label); err != nil {
			return err
		}
	}
	return nil
}
