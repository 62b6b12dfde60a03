package internal

import "github.com/shopspring/decimal"

var (
	monthsPerYear = decimal.NewFromInt(12)
	weeksPerYear  = decimal.NewFromInt(52)
	daysPerYear   = decimal.NewFromInt(365)
)

// MonthlyCost normalizes a per-period cost to a monthly equivalent.
// Weekly uses 52 weeks and daily 365 days per year; unrecognized frequencies
// are taken as already monthly.
func MonthlyCost(cost decimal.Decimal, f Frequency) decimal.Decimal {
	switch ParseFrequency(string(f)) {
	case FrequencyYearly:
		return cost.Div(monthsPerYear)
	case FrequencyWeekly:
		return cost.Mul(weeksPerYear).Div(monthsPerYear)
	case FrequencyDaily:
		return cost.Mul(daysPerYear).Div(monthsPerYear)
	default:
		return cost
	}
}

// YearlyCost is the monthly equivalent times twelve
func YearlyCost(cost decimal.Decimal, f Frequency) decimal.Decimal {
	return MonthlyCost(cost, f).Mul(monthsPerYear)
}
