// Package carbon provides monthly carbon emission estimation for personal
// travel, household electricity and diet using fixed emission factor tables.
package carbon

const (
	// MonthsPerYear converts annual diet factors into monthly emissions.
	MonthsPerYear = 12.0

	// MixedDietBaselineDays is the number of meat days per week that the
	// mixed diet factor is anchored to. Other frequencies scale linearly.
	MixedDietBaselineDays = 3.0

	// MinMeatDaysPerWeek and MaxMeatDaysPerWeek bound the meat frequency
	// accepted for the mixed diet.
	MinMeatDaysPerWeek = 1
	MaxMeatDaysPerWeek = 7

	// MaxDistanceKm and MaxMonthlyKWh cap boundary quantities so totals and
	// annual projections stay finite.
	MaxDistanceKm = 100000.0
	MaxMonthlyKWh = 100000.0

	// LowImpactThresholdKg is the monthly total (kg CO₂) at which the
	// footprint stops being Low and becomes Moderate.
	LowImpactThresholdKg = 100.0

	// HighImpactThresholdKg is the monthly total (kg CO₂) at which the
	// footprint becomes High.
	HighImpactThresholdKg = 300.0

	// AverageAnnualFootprintKg is the average per-person footprint used for
	// comparison in summaries (about 5 tons CO₂ per year).
	AverageAnnualFootprintKg = 5000.0
)

// Suggestion thresholds in kg CO₂ per month. Each rule fires when the
// section value is strictly greater than its threshold.
const (
	TravelTransitThresholdKg        = 50.0
	TravelLongDistanceThresholdKg   = 100.0
	ElectricityApplianceThresholdKg = 100.0
	ElectricityRenewableThresholdKg = 200.0
	DietMeatFreeDayThresholdKg      = 100.0
	DietReduceMeatThresholdKg       = 200.0
)
