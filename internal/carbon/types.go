package carbon

import (
	"fmt"
	"strings"
)

// Section is one of the three parts of a footprint that the user completes
// independently.
type Section string

const (
	SectionTravel      Section = "travel"
	SectionElectricity Section = "electricity"
	SectionDiet        Section = "diet"
)

// Sections lists every section in display order.
func Sections() []Section {
	return []Section{SectionTravel, SectionElectricity, SectionDiet}
}

// Title returns the display name of the section.
func (s Section) Title() string {
	switch s {
	case SectionTravel:
		return "Travel"
	case SectionElectricity:
		return "Electricity"
	case SectionDiet:
		return "Diet"
	default:
		return string(s)
	}
}

// EmissionsBreakdown accumulates the monthly emissions of each section in
// kg CO₂. The zero value is an empty breakdown.
type EmissionsBreakdown struct {
	// Travel is the monthly travel emissions in kg CO₂.
	Travel float64 `json:"travel"`

	// Electricity is the monthly electricity emissions in kg CO₂.
	Electricity float64 `json:"electricity"`

	// Diet is the monthly diet emissions in kg CO₂.
	Diet float64 `json:"diet"`
}

// Set stores kg for the given section. Negative values are stored as 0.
// Unknown sections are ignored.
func (b *EmissionsBreakdown) Set(section Section, kg float64) {
	if kg < 0 {
		kg = 0
	}
	switch section {
	case SectionTravel:
		b.Travel = kg
	case SectionElectricity:
		b.Electricity = kg
	case SectionDiet:
		b.Diet = kg
	}
}

// Get returns the value stored for the given section.
func (b EmissionsBreakdown) Get(section Section) float64 {
	switch section {
	case SectionTravel:
		return b.Travel
	case SectionElectricity:
		return b.Electricity
	case SectionDiet:
		return b.Diet
	default:
		return 0
	}
}

// Total is the arithmetic sum of the three sections.
func (b EmissionsBreakdown) Total() float64 {
	return b.Travel + b.Electricity + b.Diet
}

// IsEmpty reports whether every section is zero.
func (b EmissionsBreakdown) IsEmpty() bool {
	return b.Travel == 0 && b.Electricity == 0 && b.Diet == 0
}

// Share is one slice of the breakdown, used for pie and bar charts.
type Share struct {
	Section Section `json:"section"`
	Kg      float64 `json:"kg"`
	Percent float64 `json:"percent"`
}

// Shares returns each section with its percentage of the total. When the
// total is zero every percentage is zero.
func (b EmissionsBreakdown) Shares() []Share {
	total := b.Total()
	shares := make([]Share, 0, 3)
	for _, s := range Sections() {
		kg := b.Get(s)
		pct := 0.0
		if total > 0 {
			pct = kg / total * 100
		}
		shares = append(shares, Share{Section: s, Kg: kg, Percent: pct})
	}
	return shares
}

// ImpactTier is a coarse classification of total monthly emissions.
type ImpactTier int

const (
	ImpactLow ImpactTier = iota
	ImpactModerate
	ImpactHigh
)

// String returns the display name of the tier.
func (t ImpactTier) String() string {
	switch t {
	case ImpactLow:
		return "Low"
	case ImpactModerate:
		return "Moderate"
	case ImpactHigh:
		return "High"
	default:
		return fmt.Sprintf("ImpactTier(%d)", int(t))
	}
}

// Description returns the user-facing explanation of the tier.
func (t ImpactTier) Description() string {
	switch t {
	case ImpactLow:
		return "Your carbon footprint is below average. Great job!"
	case ImpactModerate:
		return "Your carbon footprint is around average. There's room for improvement."
	default:
		return "Your carbon footprint is above average. Consider the suggestions below to reduce it."
	}
}

// MarshalText encodes the tier by name.
func (t ImpactTier) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText decodes a tier name, case-insensitively.
func (t *ImpactTier) UnmarshalText(text []byte) error {
	switch strings.ToLower(string(text)) {
	case "low":
		*t = ImpactLow
	case "moderate":
		*t = ImpactModerate
	case "high":
		*t = ImpactHigh
	default:
		return fmt.Errorf("unknown impact tier %q", text)
	}
	return nil
}

// Summary is the aggregated result shown to the user.
type Summary struct {
	Breakdown       EmissionsBreakdown `json:"breakdown"`
	TotalKg         float64            `json:"total_kg"`
	Tier            ImpactTier         `json:"impact_tier"`
	TierDescription string             `json:"impact_description"`
	Suggestions     []string           `json:"suggestions"`

	// AnnualProjectionKg is the monthly total scaled to a year.
	AnnualProjectionKg float64 `json:"annual_projection_kg"`

	// AverageRatio compares the annual projection with AverageAnnualFootprintKg.
	AverageRatio float64 `json:"average_ratio"`
}
