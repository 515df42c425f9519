package carbon

import "github.com/stephenrodrick/Carbon-Footprint-Calculator/internal/geo"

// Estimator converts per-section inputs into monthly kg CO₂.
type Estimator interface {
	// TravelEmissions returns distanceKm multiplied by the vehicle factor.
	TravelEmissions(distanceKm float64, vehicle string) float64

	// ElectricityEmissions returns monthlyKWh multiplied by the grid factor.
	ElectricityEmissions(monthlyKWh float64, grid string) float64

	// DietEmissions returns the monthly share of the annual diet factor.
	DietEmissions(diet string, meatDaysPerWeek int) float64
}

// Calculator implements Estimator over injected factor tables. Each method
// is pure and safe for concurrent use.
type Calculator struct {
	tables *FactorTables
}

var _ Estimator = (*Calculator)(nil)

// NewCalculator creates a calculator over tables. A nil tables argument
// selects DefaultFactorTables.
func NewCalculator(tables *FactorTables) *Calculator {
	if tables == nil {
		tables = DefaultFactorTables()
	}
	return &Calculator{tables: tables}
}

// Tables returns the factor tables the calculator reads.
func (c *Calculator) Tables() *FactorTables {
	return c.tables
}

// TravelEmissions returns distanceKm × factor(vehicle). Unknown vehicles use
// the car factor. Negative distances are treated as 0.
func (c *Calculator) TravelEmissions(distanceKm float64, vehicle string) float64 {
	return nonNegative(distanceKm) * c.tables.Factor(CategoryVehicle, vehicle)
}

// RouteEmissions is TravelEmissions over the derived distance of route.
func (c *Calculator) RouteEmissions(route geo.Route, vehicle string) float64 {
	return c.TravelEmissions(route.DistanceKm, vehicle)
}

// ElectricityEmissions returns monthlyKWh × factor(grid). Unknown grids use
// the global average factor. Callers reject non-positive usage with
// ValidateElectricityUsage; if it slips through the result is 0.
func (c *Calculator) ElectricityEmissions(monthlyKWh float64, grid string) float64 {
	return nonNegative(monthlyKWh) * c.tables.Factor(CategoryGrid, grid)
}

// DietEmissions returns the monthly emissions of a diet pattern.
//
// For the mixed diet the annual factor is scaled by
// meatDaysPerWeek / MixedDietBaselineDays, so 3 days is the table value and 6
// days doubles it. The scale is not clamped: at 7 days mixed exceeds
// highMeat. meatDaysPerWeek is ignored for every other diet. Unknown diets
// use the mixed factor at the baseline frequency.
func (c *Calculator) DietEmissions(diet string, meatDaysPerWeek int) float64 {
	annual, ok := c.tables.Lookup(CategoryDiet, diet)
	if !ok {
		return c.tables.Factor(CategoryDiet, DefaultDiet) / MonthsPerYear
	}
	if diet == MixedDiet {
		annual *= nonNegative(float64(meatDaysPerWeek)) / MixedDietBaselineDays
	}
	return annual / MonthsPerYear
}
