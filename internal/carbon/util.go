package carbon

import (
	"fmt"
	"math"
)

// formatKg formats a kg CO₂ value with two decimal places.
func formatKg(kg float64) string {
	return fmt.Sprintf("%.2f kg CO₂", kg)
}

func isNotFinite(f float64) bool {
	return math.IsNaN(f) || math.IsInf(f, 0)
}

// nonNegative clamps quantities that would otherwise produce negative
// emissions.
func nonNegative(f float64) float64 {
	if f <= 0 || math.IsNaN(f) {
		return 0
	}
	return f
}
