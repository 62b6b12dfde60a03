package internal

import (
	"time"

	"github.com/shopspring/decimal"
)

// Bucket is the highlighting class of a row
type Bucket string

const (
	BucketOverdue Bucket = "overdue"
	BucketDueSoon Bucket = "due-soon"
	BucketNormal  Bucket = "normal"
)

// DueSoonDays is the last day count that still counts as due soon
const DueSoonDays = 3

// BucketFor classifies a days-left value
func BucketFor(daysLeft int) Bucket {
	switch {
	case daysLeft < 0:
		return BucketOverdue
	case daysLeft <= DueSoonDays:
		return BucketDueSoon
	default:
		return BucketNormal
	}
}

// Row is a subscription with its derived, never stored, values
type Row struct {
	Subscription
	DaysLeft    int
	MonthlyCost decimal.Decimal
	Bucket      Bucket
}

// Summary is what the view renders: one row per subscription plus totals
type Summary struct {
	Count        int
	TotalMonthly decimal.Decimal
	TotalYearly  decimal.Decimal
	Rows         []Row
}

// Summarize derives rows and totals for subs as of now
func Summarize(subs []Subscription, now time.Time) Summary {
	today := Today(now)
	rows := make([]Row, 0, len(subs))
	for _, sub := range subs {
		daysLeft := DaysUntil(today, sub.NextDate)
		rows = append(rows, Row{
			Subscription: sub,
			DaysLeft:     daysLeft,
			MonthlyCost:  MonthlyCost(sub.Cost, sub.Frequency),
			Bucket:       BucketFor(daysLeft),
		})
	}
	return SummarizeRows(rows)
}

// SummarizeRows recomputes count and totals over already derived rows, for
// example after the view has filtered them
func SummarizeRows(rows []Row) Summary {
	total := decimal.Zero
	for _, row := range rows {
		total = total.Add(row.MonthlyCost)
	}
	return Summary{
		Count:        len(rows),
		TotalMonthly: total,
		TotalYearly:  total.Mul(monthsPerYear),
		Rows:         rows,
	}
}
