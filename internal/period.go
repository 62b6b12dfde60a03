package internal

import (
	"fmt"
	"time"
)

const dateLayout = "2006-01-02"

const secondsPerDay = 24 * 60 * 60

// Date is a calendar day with no time of day or time zone. Text forms are four
// digit years, so only years 0000 through 9999 round-trip through ParseDate.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// NewDate builds a Date, normalizing out-of-range values the way time.Date does
func NewDate(year int, month time.Month, day int) Date {
	return dateOf(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

func dateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// ParseDate parses a zero-padded YYYY-MM-DD string
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("%w %q: %v", ErrInvalidDate, s, err)
	}
	return dateOf(t), nil
}

// FormatDate renders d as YYYY-MM-DD. Years above 9999 get more digits and are
// rejected by ParseDate.
func FormatDate(d Date) string {
	return d.String()
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// IsZero reports whether d is the zero Date
func (d Date) IsZero() bool {
	return d == Date{}
}

// utc anchors the day at UTC midnight. UTC has no DST, so day arithmetic on it is exact.
func (d Date) utc() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// epochDay is the number of days since 1970-01-01. UTC midnights are exact
// multiples of a day, so the division never truncates.
func (d Date) epochDay() int64 {
	return d.utc().Unix() / secondsPerDay
}

// AddDays returns d shifted by n calendar days
func (d Date) AddDays(n int) Date {
	return dateOf(d.utc().AddDate(0, 0, n))
}

func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Date) UnmarshalText(text []byte) error {
	parsed, err := ParseDate(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Today returns the calendar day of now in now's own location
func Today(now time.Time) Date {
	y, m, d := now.Date()
	return Date{Year: y, Month: m, Day: d}
}

// DaysUntil returns the signed number of whole days from from to to.
// Positive means to is in the future.
func DaysUntil(from, to Date) int {
	return int(to.epochDay() - from.epochDay())
}

// DaysLeft returns the days from the local day of now until d.
// Zero means due today, negative means overdue.
func DaysLeft(d Date, now time.Time) int {
	return DaysUntil(Today(now), d)
}

// OverflowPolicy decides what happens when adding months or years lands on a day
// the target month does not have (Jan 31 + 1 month, Feb 29 + 1 year).
type OverflowPolicy int

const (
	// OverflowIntoNextMonth carries the surplus days into the following month:
	// 2024-01-31 + 1 month = 2024-03-02, 2024-02-29 + 1 year = 2025-03-01.
	OverflowIntoNextMonth OverflowPolicy = iota

	// ClampToMonthEnd stops at the last day of the target month:
	// 2024-01-31 + 1 month = 2024-02-29.
	ClampToMonthEnd
)

// DefaultOverflowPolicy is the rule used for all stored subscriptions
const DefaultOverflowPolicy = OverflowIntoNextMonth

// AddPeriod advances d by one billing period using DefaultOverflowPolicy.
// Unrecognized frequencies advance by one month.
func AddPeriod(d Date, f Frequency) Date {
	return AddPeriodWithPolicy(d, f, DefaultOverflowPolicy)
}

// AddPeriodWithPolicy advances d by one billing period
func AddPeriodWithPolicy(d Date, f Frequency, policy OverflowPolicy) Date {
	switch ParseFrequency(string(f)) {
	case FrequencyDaily:
		return d.AddDays(1)
	case FrequencyWeekly:
		return d.AddDays(7)
	case FrequencyYearly:
		return addMonths(d, 12, policy)
	default:
		return addMonths(d, 1, policy)
	}
}

func addMonths(d Date, months int, policy OverflowPolicy) Date {
	if policy == ClampToMonthEnd {
		firstOfTarget := time.Date(d.Year, d.Month+time.Month(months), 1, 0, 0, 0, 0, time.UTC)
		day := min(d.Day, daysInMonth(firstOfTarget.Year(), firstOfTarget.Month()))
		return Date{Year: firstOfTarget.Year(), Month: firstOfTarget.Month(), Day: day}
	}
	return dateOf(d.utc().AddDate(0, months, 0))
}

func daysInMonth(year int, month time.Month) int {
	// day 0 of the next month is the last day of this one
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
