package internal

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// InputFields are the raw text fields of the add/edit form
type InputFields struct {
	Name      string
	Category  string
	Cost      string
	Frequency string
	NextDate  string
	Notes     string
}

// ToNewSubscription validates a complete form. Name, cost and next date are
// required; an empty category becomes "Other". categories are the configured
// categories beyond the defaults.
func (in InputFields) ToNewSubscription(categories []string) (NewSubscription, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return NewSubscription{}, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}

	category := strings.TrimSpace(in.Category)
	if category == "" {
		category = "Other"
	}

	cost, err := parseCost(in.Cost)
	if err != nil {
		return NewSubscription{}, err
	}

	nextDate, err := parseNextDate(in.NextDate)
	if err != nil {
		return NewSubscription{}, err
	}

	return NewSubscription{
		Name:      name,
		Category:  NormalizeCategory(category, categories),
		Cost:      cost,
		Frequency: ParseFrequency(in.Frequency),
		NextDate:  nextDate,
		Notes:     strings.TrimSpace(in.Notes),
	}, nil
}

// ToPatch validates a partial form. Empty fields are left unchanged, so notes
// cannot be cleared this way.
func (in InputFields) ToPatch(categories []string) (Patch, error) {
	var p Patch

	if name := strings.TrimSpace(in.Name); name != "" {
		p.Name = &name
	}
	if category := strings.TrimSpace(in.Category); category != "" {
		category = NormalizeCategory(category, categories)
		p.Category = &category
	}
	if strings.TrimSpace(in.Cost) != "" {
		cost, err := parseCost(in.Cost)
		if err != nil {
			return Patch{}, err
		}
		p.Cost = &cost
	}
	if strings.TrimSpace(in.Frequency) != "" {
		f := ParseFrequency(in.Frequency)
		p.Frequency = &f
	}
	if strings.TrimSpace(in.NextDate) != "" {
		d, err := parseNextDate(in.NextDate)
		if err != nil {
			return Patch{}, err
		}
		p.NextDate = &d
	}
	if notes := strings.TrimSpace(in.Notes); notes != "" {
		p.Notes = &notes
	}
	return p, nil
}

func parseCost(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, fmt.Errorf("%w: cost is required", ErrInvalidInput)
	}
	cost, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: cost %q is not a number", ErrInvalidInput, s)
	}
	if cost.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: cost must not be negative", ErrInvalidInput)
	}
	return cost, nil
}

func parseNextDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Date{}, fmt.Errorf("%w: next date is required", ErrInvalidInput)
	}
	d, err := ParseDate(s)
	if err != nil {
		return Date{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return d, nil
}

// NormalizeCategory returns the canonical spelling of a known category
// (case-insensitive match against the defaults and extra), or s unchanged.
func NormalizeCategory(s string, extra []string) string {
	for _, known := range DefaultCategories {
		if strings.EqualFold(known, s) {
			return known
		}
	}
	for _, known := range extra {
		if strings.EqualFold(known, s) {
			return known
		}
	}
	return s
}
