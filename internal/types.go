package internal

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Frequency is the billing period of a subscription
type Frequency string

const (
	FrequencyDaily   Frequency = "daily"
	FrequencyWeekly  Frequency = "weekly"
	FrequencyMonthly Frequency = "monthly"
	FrequencyYearly  Frequency = "yearly"
)

// Frequencies lists the supported billing periods, shortest first
var Frequencies = []Frequency{FrequencyDaily, FrequencyWeekly, FrequencyMonthly, FrequencyYearly}

// ParseFrequency maps free text to a Frequency. Anything unrecognized is monthly.
func ParseFrequency(s string) Frequency {
	switch f := Frequency(strings.ToLower(strings.TrimSpace(s))); f {
	case FrequencyDaily, FrequencyWeekly, FrequencyMonthly, FrequencyYearly:
		return f
	default:
		return FrequencyMonthly
	}
}

// DefaultCategories is the built-in category set. Config may add more, and
// free text is accepted as well.
var DefaultCategories = []string{
	"Entertainment",
	"Music",
	"Software",
	"Cloud",
	"News",
	"Fitness",
	"Utilities",
	"Other",
}

// Subscription is a single recurring payment
type Subscription struct {
	ID        string
	Name      string
	Category  string
	Cost      decimal.Decimal // per billing period, in the unit of Frequency
	Frequency Frequency
	NextDate  Date
	Notes     string
}

// NewSubscription is a subscription that has not been assigned an ID yet
type NewSubscription struct {
	Name      string
	Category  string
	Cost      decimal.Decimal
	Frequency Frequency
	NextDate  Date
	Notes     string
}

// Patch holds a partial update. Nil fields are left unchanged.
type Patch struct {
	Name      *string
	Category  *string
	Cost      *decimal.Decimal
	Frequency *Frequency
	NextDate  *Date
	Notes     *string
}

// IsEmpty returns true if the patch changes nothing
func (p Patch) IsEmpty() bool {
	return p.Name == nil && p.Category == nil && p.Cost == nil &&
		p.Frequency == nil && p.NextDate == nil && p.Notes == nil
}

// apply merges the patch over sub. The ID is never touched.
func (p Patch) apply(sub Subscription) Subscription {
	if p.Name != nil {
		sub.Name = *p.Name
	}
	if p.Category != nil {
		sub.Category = *p.Category
	}
	if p.Cost != nil {
		sub.Cost = *p.Cost
	}
	if p.Frequency != nil {
		sub.Frequency = ParseFrequency(string(*p.Frequency))
	}
	if p.NextDate != nil {
		sub.NextDate = *p.NextDate
	}
	if p.Notes != nil {
		sub.Notes = *p.Notes
	}
	return sub
}

// Outcome reports how a store operation resolved when the result is not an error
type Outcome int

const (
	OutcomeOK Outcome = iota
	OutcomeNotFound
	OutcomeCorruptState
)

func (o Outcome) String() string {
	switch o {
	case OutcomeOK:
		return "ok"
	case OutcomeNotFound:
		return "not found"
	case OutcomeCorruptState:
		return "corrupt state"
	default:
		return "unknown"
	}
}
