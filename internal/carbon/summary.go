package carbon

import "strings"

// Suggestion texts, in evaluation order.
const (
	SuggestTransit      = "Consider using public transportation or carpooling to reduce travel emissions."
	SuggestTrains       = "For long distances, trains often have a lower carbon footprint than flying or driving."
	SuggestAppliances   = "Switching to energy-efficient appliances can reduce your electricity consumption."
	SuggestRenewables   = "Consider renewable energy options like solar panels for your home."
	SuggestMeatFreeDays = "Try having one or more meat-free days each week."
	SuggestReduceMeat   = "Reducing meat consumption, especially beef, can significantly lower your carbon footprint."
	SuggestLowFootprint = "Your carbon footprint is relatively low. Keep up the good work!"
)

const shareTextPrefix = "My carbon footprint: "

type suggestionRule struct {
	section   Section
	threshold float64
	message   string
}

// suggestionRules fire independently when the section value is strictly
// greater than the threshold.
var suggestionRules = []suggestionRule{
	{SectionTravel, TravelTransitThresholdKg, SuggestTransit},
	{SectionTravel, TravelLongDistanceThresholdKg, SuggestTrains},
	{SectionElectricity, ElectricityApplianceThresholdKg, SuggestAppliances},
	{SectionElectricity, ElectricityRenewableThresholdKg, SuggestRenewables},
	{SectionDiet, DietMeatFreeDayThresholdKg, SuggestMeatFreeDays},
	{SectionDiet, DietReduceMeatThresholdKg, SuggestReduceMeat},
}

// Classify buckets a monthly total into an impact tier. Each tier includes
// its lower bound.
func Classify(totalKg float64) ImpactTier {
	switch {
	case totalKg < LowImpactThresholdKg:
		return ImpactLow
	case totalKg < HighImpactThresholdKg:
		return ImpactModerate
	default:
		return ImpactHigh
	}
}

// Suggest evaluates every rule against the section values and returns the
// triggered messages in rule order. When nothing triggers it returns the
// single low-footprint message.
func Suggest(b EmissionsBreakdown) []string {
	var out []string
	for _, r := range suggestionRules {
		if b.Get(r.section) > r.threshold {
			out = append(out, r.message)
		}
	}
	if len(out) == 0 {
		return []string{SuggestLowFootprint}
	}
	return out
}

// Summarize aggregates a breakdown into a Summary.
func Summarize(b EmissionsBreakdown) Summary {
	total := b.Total()
	tier := Classify(total)
	annual := total * MonthsPerYear
	return Summary{
		Breakdown:          b,
		TotalKg:            total,
		Tier:               tier,
		TierDescription:    tier.Description(),
		Suggestions:        Suggest(b),
		AnnualProjectionKg: annual,
		AverageRatio:       annual / AverageAnnualFootprintKg,
	}
}

// ShareText renders the one-line summary users copy to share their result.
func ShareText(b EmissionsBreakdown) string {
	parts := make([]string, 0, 3)
	for _, s := range Sections() {
		parts = append(parts, s.Title()+": "+formatKg(b.Get(s)))
	}
	return shareTextPrefix + strings.Join(parts, ", ")
}
