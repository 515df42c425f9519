package carbon

import (
	"sort"
	"sync"
)

// Category identifies one emission factor table.
type Category string

const (
	// CategoryVehicle factors are kg CO₂ per km travelled.
	CategoryVehicle Category = "vehicle"
	// CategoryGrid factors are kg CO₂ per kWh of electricity.
	CategoryGrid Category = "grid"
	// CategoryDiet factors are kg CO₂e per year for a diet pattern.
	CategoryDiet Category = "diet"
)

// Default keys used when a lookup key is not present in its table.
const (
	DefaultVehicle = "car"
	DefaultGrid    = "global"
	DefaultDiet    = MixedDiet
)

// MixedDiet is the only diet whose factor scales with meat days per week.
const MixedDiet = "mixed"

// vehicleEmissionFactors maps a travel mode to kg CO₂ per km.
var vehicleEmissionFactors = map[string]float64{
	"car":   0.12,
	"bus":   0.05,
	"train": 0.03,
	"plane": 0.25,
	"bike":  0.0,
	"walk":  0.0,
}

// gridEmissionFactors maps a country grid to kg CO₂ per kWh.
var gridEmissionFactors = map[string]float64{
	"global":    0.475, // global average
	"us":        0.417, // United States
	"uk":        0.233, // United Kingdom
	"china":     0.681,
	"india":     0.708,
	"germany":   0.338,
	"france":    0.056, // low due to nuclear
	"australia": 0.79,
	"canada":    0.12,
	"brazil":    0.074,
}

// dietEmissionFactors maps a diet pattern to kg CO₂e per year.
var dietEmissionFactors = map[string]float64{
	"vegan":       1100,
	"vegetarian":  1700,
	"pescatarian": 2300,
	"mixed":       2800,
	"highMeat":    3300,
}

// FactorTables holds the emission factor lookups. A FactorTables value is
// never modified after construction and is safe for concurrent use.
type FactorTables struct {
	vehicle map[string]float64
	grid    map[string]float64
	diet    map[string]float64
}

var (
	defaultTables     *FactorTables
	defaultTablesOnce sync.Once
)

// DefaultFactorTables returns the built-in factor tables. The tables are
// constructed on first use and shared afterwards.
func DefaultFactorTables() *FactorTables {
	defaultTablesOnce.Do(func() {
		defaultTables = NewFactorTables(vehicleEmissionFactors, gridEmissionFactors, dietEmissionFactors)
	})
	return defaultTables
}

// NewFactorTables builds tables from the given maps. The maps are copied so
// later changes by the caller do not leak into the tables.
func NewFactorTables(vehicle, grid, diet map[string]float64) *FactorTables {
	return &FactorTables{
		vehicle: copyFactors(vehicle),
		grid:    copyFactors(grid),
		diet:    copyFactors(diet),
	}
}

func copyFactors(src map[string]float64) map[string]float64 {
	dst := make(map[string]float64, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

func (t *FactorTables) table(category Category) (map[string]float64, string) {
	switch category {
	case CategoryVehicle:
		return t.vehicle, DefaultVehicle
	case CategoryGrid:
		return t.grid, DefaultGrid
	case CategoryDiet:
		return t.diet, DefaultDiet
	default:
		return nil, ""
	}
}

// Lookup returns the factor stored under key and whether it was present.
func (t *FactorTables) Lookup(category Category, key string) (float64, bool) {
	factors, _ := t.table(category)
	factor, ok := factors[key]
	return factor, ok
}

// Factor returns the emission factor for key in the given category. Keys
// that are not in the table resolve to the category default (car, global,
// mixed). An unknown category has no factors and yields 0.
func (t *FactorTables) Factor(category Category, key string) float64 {
	factors, fallback := t.table(category)
	if factor, ok := factors[key]; ok {
		return factor
	}
	return factors[fallback]
}

// Keys returns the sorted keys of a category table.
func (t *FactorTables) Keys(category Category) []string {
	factors, _ := t.table(category)
	keys := make([]string, 0, len(factors))
	for k := range factors {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Categories lists every factor category in display order.
func Categories() []Category {
	return []Category{CategoryVehicle, CategoryGrid, CategoryDiet}
}

// Table returns a copy of the factors in a category.
func (t *FactorTables) Table(category Category) map[string]float64 {
	factors, _ := t.table(category)
	return copyFactors(factors)
}
