package internal

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// ShortIDLen is how many id characters the table shows. Commands accept any
// unique prefix.
const ShortIDLen = 8

// OutputOptions controls how subscriptions are displayed
type OutputOptions struct {
	Category  string // only show this category (case-insensitive), empty for all
	SortField string // added (default), name, cost, next
	SortDir   string // asc (default) or desc
	Currency  Currency
}

// JSONOutput is the root JSON output object
type JSONOutput struct {
	Subscriptions []JSONSubscription `json:"subscriptions"`
	Summary       JSONSummary        `json:"summary"`
}

// JSONSummary contains aggregate statistics
type JSONSummary struct {
	Count        int     `json:"count"`
	MonthlyTotal float64 `json:"monthly_total"`
	YearlyTotal  float64 `json:"yearly_total"`
	Currency     string  `json:"currency"`
}

// JSONSubscription is the JSON output format for a subscription
type JSONSubscription struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Category    string  `json:"category"`
	Cost        float64 `json:"cost"`
	Frequency   string  `json:"frequency"`
	NextDate    string  `json:"next_date"`
	Notes       string  `json:"notes,omitempty"`
	MonthlyCost float64 `json:"monthly_cost"`
	YearlyCost  float64 `json:"yearly_cost"`
	DaysLeft    int     `json:"days_left"`
	Status      string  `json:"status"`
}

// PrepareView filters and sorts the rows of a summary and recomputes the totals
// over what remains
func PrepareView(summary Summary, opts OutputOptions) Summary {
	rows := FilterByCategory(summary.Rows, opts.Category)
	SortRows(rows, opts.SortField, opts.SortDir)
	return SummarizeRows(rows)
}

// FilterByCategory returns the rows in category. An empty category keeps all rows.
func FilterByCategory(rows []Row, category string) []Row {
	result := make([]Row, 0, len(rows))
	for _, row := range rows {
		if category == "" || strings.EqualFold(row.Category, category) {
			result = append(result, row)
		}
	}
	return result
}

// SortRows sorts in place. Ties keep insertion order.
func SortRows(rows []Row, field, dir string) {
	less := func(i, j int) bool { return false }
	switch field {
	case "name":
		less = func(i, j int) bool {
			return strings.ToLower(rows[i].Name) < strings.ToLower(rows[j].Name)
		}
	case "cost":
		less = func(i, j int) bool { return rows[i].MonthlyCost.LessThan(rows[j].MonthlyCost) }
	case "next":
		less = func(i, j int) bool { return rows[i].DaysLeft < rows[j].DaysLeft }
	}

	if dir == "desc" {
		if field == "" || field == "added" {
			for i, j := 0, len(rows)-1; i < j; i, j = i+1, j-1 {
				rows[i], rows[j] = rows[j], rows[i]
			}
			return
		}
		sort.SliceStable(rows, func(i, j int) bool { return less(j, i) })
		return
	}
	sort.SliceStable(rows, less)
}

// PrintSummaryJSON outputs the summary in JSON format
func PrintSummaryJSON(w io.Writer, summary Summary, currency Currency) error {
	subscriptions := make([]JSONSubscription, 0, len(summary.Rows))
	for _, row := range summary.Rows {
		subscriptions = append(subscriptions, JSONSubscription{
			ID:          row.ID,
			Name:        row.Name,
			Category:    row.Category,
			Cost:        row.Cost.InexactFloat64(),
			Frequency:   string(row.Frequency),
			NextDate:    row.NextDate.String(),
			Notes:       row.Notes,
			MonthlyCost: row.MonthlyCost.Round(2).InexactFloat64(),
			YearlyCost:  YearlyCost(row.Cost, row.Frequency).Round(2).InexactFloat64(),
			DaysLeft:    row.DaysLeft,
			Status:      string(row.Bucket),
		})
	}

	output := JSONOutput{
		Subscriptions: subscriptions,
		Summary: JSONSummary{
			Count:        summary.Count,
			MonthlyTotal: summary.TotalMonthly.Round(2).InexactFloat64(),
			YearlyTotal:  summary.TotalYearly.Round(2).InexactFloat64(),
			Currency:     currency.Code,
		},
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(output); err != nil {
		return fmt.Errorf("encoding JSON output: %w", err)
	}
	return nil
}

// PrintSummaryTable outputs the summary as a formatted table with totals
func PrintSummaryTable(w io.Writer, summary Summary, opts OutputOptions) {
	if len(summary.Rows) == 0 {
		if opts.Category != "" {
			fmt.Fprintf(w, "No subscriptions in category %q.\n", opts.Category)
		} else {
			fmt.Fprintln(w, "No subscriptions yet.")
		}
		return
	}

	overdue, dueSoon := 0, 0
	for _, row := range summary.Rows {
		switch row.Bucket {
		case BucketOverdue:
			overdue++
		case BucketDueSoon:
			dueSoon++
		}
	}
	fmt.Fprintf(w, "%d subscriptions (%d due soon, %d overdue)\n", summary.Count, dueSoon, overdue)
	if opts.Category != "" {
		fmt.Fprintf(w, "Showing: %s\n", opts.Category)
	}
	fmt.Fprintln(w)

	t := table.NewWriter()
	t.SetOutputMirror(w)

	hasNotes := false
	for _, row := range summary.Rows {
		if row.Notes != "" {
			hasNotes = true
			break
		}
	}

	header := table.Row{"ID", "Name", "Category", "Frequency", "Cost", "Monthly", "Next Date", "Due"}
	if hasNotes {
		header = append(header, "Notes")
	}
	t.AppendHeader(header)

	for _, row := range summary.Rows {
		r := table.Row{
			shortID(row.ID),
			row.Name,
			row.Category,
			string(row.Frequency),
			opts.Currency.Format(row.Cost),
			opts.Currency.Format(row.MonthlyCost),
			row.NextDate.String(),
			colorForBucket(row.Bucket).Sprint(DueLabel(row.DaysLeft)),
		}
		if hasNotes {
			r = append(r, row.Notes)
		}
		t.AppendRow(r)
	}

	t.AppendSeparator()

	footer := func(label, amount string) table.Row {
		r := table.Row{"", "", "", "", text.Bold.Sprint(label), text.Bold.Sprint(amount), "", ""}
		if hasNotes {
			r = append(r, "")
		}
		return r
	}
	t.AppendFooter(footer("Total / month", opts.Currency.Format(summary.TotalMonthly)))
	t.AppendFooter(footer("Total / year", opts.Currency.Format(summary.TotalYearly)))

	t.SetStyle(table.StyleRounded)
	t.Style().Format.Header = text.FormatDefault
	t.Style().Format.Footer = text.FormatDefault

	// Cost and Monthly columns
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 5, Align: text.AlignRight},
		{Number: 6, Align: text.AlignRight},
	})

	t.Render()
}

// DueLabel renders days left as text
func DueLabel(daysLeft int) string {
	switch {
	case daysLeft == 0:
		return "today"
	case daysLeft == 1:
		return "tomorrow"
	case daysLeft == -1:
		return "1 day ago"
	case daysLeft < 0:
		return fmt.Sprintf("%d days ago", -daysLeft)
	default:
		return fmt.Sprintf("in %d days", daysLeft)
	}
}

func colorForBucket(b Bucket) text.Colors {
	switch b {
	case BucketOverdue:
		return text.Colors{text.FgRed, text.Bold}
	case BucketDueSoon:
		return text.Colors{text.FgYellow}
	default:
		return text.Colors{}
	}
}

func shortID(id string) string {
	if len(id) <= ShortIDLen {
		return id
	}
	return id[:ShortIDLen]
}
