// Package report assembles a footprint calculation into a shareable report
// and delivers it to JSON, terminal text, or a Kafka topic.
package report

import (
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/stephenrodrick/Carbon-Footprint-Calculator/internal/carbon"
	"github.com/stephenrodrick/Carbon-Footprint-Calculator/internal/geo"
)

// TravelInputs echoes the travel section of a request.
type TravelInputs struct {
	Vehicle    string  `json:"vehicle"`
	DistanceKm float64 `json:"distance_km"`
}

// ElectricityInputs echoes the electricity section of a request.
type ElectricityInputs struct {
	Grid       string  `json:"grid"`
	MonthlyKWh float64 `json:"monthly_kwh"`
}

// DietInputs echoes the diet section of a request.
type DietInputs struct {
	Diet            string `json:"diet"`
	MeatDaysPerWeek int    `json:"meat_days_per_week,omitempty"`
}

// Inputs records which sections were completed and with what values.
type Inputs struct {
	Travel      *TravelInputs      `json:"travel,omitempty"`
	Electricity *ElectricityInputs `json:"electricity,omitempty"`
	Diet        *DietInputs        `json:"diet,omitempty"`
}

// Report is the complete result of one footprint calculation.
type Report struct {
	ID          string         `json:"id"`
	GeneratedAt time.Time      `json:"generated_at"`
	Inputs      Inputs         `json:"inputs"`
	Route       *geo.Route     `json:"route,omitempty"`
	Summary     carbon.Summary `json:"summary"`
	Shares      []carbon.Share `json:"shares"`
	ShareText   string         `json:"share_text"`
}

// Builder creates reports stamped with an ID and the current time.
type Builder struct {
	clock clockwork.Clock
	newID func() string
}

// NewBuilder creates a Builder. A nil clock uses the real clock.
func NewBuilder(clock clockwork.Clock) *Builder {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Builder{clock: clock, newID: uuid.NewString}
}

// Build summarizes breakdown and wraps it with the request details.
func (b *Builder) Build(inputs Inputs, route *geo.Route, breakdown carbon.EmissionsBreakdown) *Report {
	return &Report{
		ID:          b.newID(),
		GeneratedAt: b.clock.Now().UTC(),
		Inputs:      inputs,
		Route:       route,
		Summary:     carbon.Summarize(breakdown),
		Shares:      breakdown.Shares(),
		ShareText:   carbon.ShareText(breakdown),
	}
}
