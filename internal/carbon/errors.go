package carbon

import "fmt"

// constError is an immutable error type for sentinel errors.
type constError string

func (e constError) Error() string { return string(e) }

const (
	// ErrInvalidQuantity indicates a quantity that fails boundary validation,
	// such as non-positive electricity usage or out-of-range meat days.
	ErrInvalidQuantity = constError("invalid quantity")

	// ErrNoSections indicates that no footprint section was completed.
	ErrNoSections = constError("complete at least one calculation section")
)

// ValidateDistance checks a travel distance before it reaches the calculator.
func ValidateDistance(distanceKm float64) error {
	if distanceKm < 0 || isNotFinite(distanceKm) {
		return fmt.Errorf("%w: distance must be a non-negative number of km, got %v", ErrInvalidQuantity, distanceKm)
	}
	if distanceKm > MaxDistanceKm {
		return fmt.Errorf("%w: distance must not exceed %v km, got %v", ErrInvalidQuantity, MaxDistanceKm, distanceKm)
	}
	return nil
}

// ValidateElectricityUsage checks monthly electricity usage. Usage must be
// strictly positive and at most MaxMonthlyKWh.
func ValidateElectricityUsage(monthlyKWh float64) error {
	if monthlyKWh <= 0 || isNotFinite(monthlyKWh) {
		return fmt.Errorf("%w: electricity usage must be positive, got %v kWh", ErrInvalidQuantity, monthlyKWh)
	}
	if monthlyKWh > MaxMonthlyKWh {
		return fmt.Errorf("%w: electricity usage must not exceed %v kWh, got %v", ErrInvalidQuantity, MaxMonthlyKWh, monthlyKWh)
	}
	return nil
}

// ValidateMeatDays checks the meat frequency for a mixed diet. Other diets
// ignore the value, so it is only validated when diet is "mixed".
func ValidateMeatDays(diet string, meatDaysPerWeek int) error {
	if diet != MixedDiet {
		return nil
	}
	if meatDaysPerWeek < MinMeatDaysPerWeek || meatDaysPerWeek > MaxMeatDaysPerWeek {
		return fmt.Errorf("%w: meat days per week must be between %d and %d, got %d",
			ErrInvalidQuantity, MinMeatDaysPerWeek, MaxMeatDaysPerWeek, meatDaysPerWeek)
	}
	return nil
}
