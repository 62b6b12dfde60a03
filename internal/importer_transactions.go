package internal

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// DefaultTolerance is the largest relative price change between consecutive
// monthly payments that still counts as the same subscription
var DefaultTolerance = decimal.RequireFromString("0.35")

// Transaction is one bank account entry. Negative amounts are expenses.
type Transaction struct {
	Date   Date
	Text   string
	Amount decimal.Decimal
}

// TransactionsJSONFormat is a bank export reduced to the essentials
// Example:
//
//	{
//	  "transactions": [
//	    {"date": "2025-01-15", "text": "Netflix", "amount": -99.00},
//	    {"date": "2025-02-15", "text": "Netflix", "amount": -99.00}
//	  ]
//	}
type TransactionsJSONFormat struct {
	Transactions []TransactionJSON `json:"transactions"`
}

type TransactionJSON struct {
	Date   string      `json:"date"`
	Text   string      `json:"text"`
	Amount json.Number `json:"amount"`
}

// ImportTransactionsJSON reads bank transactions and returns the monthly
// subscriptions found in them
func ImportTransactionsJSON(path string) ([]InputFields, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading file: %w", err)
	}

	var doc TransactionsJSONFormat
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing JSON: %w", err)
	}

	txs := make([]Transaction, 0, len(doc.Transactions))
	for _, tx := range doc.Transactions {
		d, err := ParseDate(tx.Date)
		if err != nil {
			return nil, fmt.Errorf("transaction %q: %w", tx.Text, err)
		}
		amount, err := decimal.NewFromString(tx.Amount.String())
		if err != nil {
			return nil, fmt.Errorf("transaction %q: invalid amount %q", tx.Text, tx.Amount)
		}
		txs = append(txs, Transaction{Date: d, Text: tx.Text, Amount: amount})
	}

	return DetectRecurring(txs, DefaultTolerance), nil
}

// DetectRecurring finds payees charged exactly once per calendar month, at least
// twice, with consecutive amounts within tolerance of each other. Each becomes a
// monthly subscription costing the latest amount, due one month after the last
// payment. Results are sorted by name.
func DetectRecurring(txs []Transaction, tolerance decimal.Decimal) []InputFields {
	byName := make(map[string][]Transaction)
	for _, tx := range FilterExpenses(txs) {
		key := strings.ToLower(strings.TrimSpace(tx.Text))
		byName[key] = append(byName[key], tx)
	}

	var found []InputFields
	for _, expenses := range byName {
		if len(expenses) < 2 {
			continue
		}
		sort.SliceStable(expenses, func(i, j int) bool {
			return DaysUntil(expenses[j].Date, expenses[i].Date) < 0
		})

		if !IsMonthlyPattern(expenses) || !AmountsWithinTolerance(expenses, tolerance) {
			continue
		}

		first, last := expenses[0], expenses[len(expenses)-1]
		found = append(found, InputFields{
			Name:      strings.TrimSpace(last.Text), // most recent spelling
			Category:  "Other",
			Cost:      last.Amount.Abs().String(),
			Frequency: string(FrequencyMonthly),
			NextDate:  AddPeriod(last.Date, FrequencyMonthly).String(),
			Notes:     fmt.Sprintf("detected from %d payments since %s", len(expenses), first.Date),
		})
	}

	sort.Slice(found, func(i, j int) bool {
		return strings.ToLower(found[i].Name) < strings.ToLower(found[j].Name)
	})
	return found
}

// FilterExpenses returns only transactions with negative amounts
func FilterExpenses(txs []Transaction) []Transaction {
	var expenses []Transaction
	for _, tx := range txs {
		if tx.Amount.IsNegative() {
			expenses = append(expenses, tx)
		}
	}
	return expenses
}

// IsMonthlyPattern checks that no calendar month holds more than one payment
func IsMonthlyPattern(txs []Transaction) bool {
	seen := make(map[[2]int]bool)
	for _, tx := range txs {
		month := [2]int{tx.Date.Year, int(tx.Date.Month)}
		if seen[month] {
			return false
		}
		seen[month] = true
	}
	return true
}

// AmountsWithinTolerance compares each amount with the previous one, so slow
// price drift is accepted while a sudden jump is not
func AmountsWithinTolerance(txs []Transaction, tolerance decimal.Decimal) bool {
	if len(txs) < 2 {
		return len(txs) == 1
	}
	for i := 1; i < len(txs); i++ {
		prev := txs[i-1].Amount.Abs()
		curr := txs[i].Amount.Abs()
		if prev.IsZero() {
			return false
		}
		if curr.Sub(prev).Abs().Div(prev).GreaterThan(tolerance) {
			return false
		}
	}
	return true
}

func init() {
	RegisterImporter("transactions-json", ImporterFunc(ImportTransactionsJSON))
}
