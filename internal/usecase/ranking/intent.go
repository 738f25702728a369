package ranking

import "strings"

// PriceIntent is a coarse classification of what the query says about price.
type PriceIntent int

const (
	IntentNone PriceIntent = iota
	IntentBudget
	IntentPremium
)

func (i PriceIntent) String() string {
	switch i {
	case IntentBudget:
		return "budget"
	case IntentPremium:
		return "premium"
	default:
		return "none"
	}
}

var (
	budgetMarkers  = []string{"cheap", "budget", "affordable", "inexpensive", "low cost", "low-cost"}
	premiumMarkers = []string{"premium", "luxury", "high end", "high-end", "professional", "top of the line"}
)

// inferPriceIntent scans the query for budget or premium markers.
// Budget markers win when both kinds are present.
func inferPriceIntent(query string) PriceIntent {
	q := strings.ToLower(query)
	for _, m := range budgetMarkers {
		if strings.Contains(q, m) {
			return IntentBudget
		}
	}
	for _, m := range premiumMarkers {
		if strings.Contains(q, m) {
			return IntentPremium
		}
	}
	return IntentNone
}
