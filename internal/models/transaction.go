package models

import (
	"math"
	"sort"
	"strings"
	"time"
)

// TransactionRecord is a transaction as supplied by the collector, before its
// date has been validated.
type TransactionRecord struct {
	Date        string  `json:"date"`
	Amount      float64 `json:"amount"`
	Category    string  `json:"category"`
	Description string  `json:"description"`
	AccountID   string  `json:"accountId,omitempty"`
}

// Transaction represents a single financial transaction with a parsed date.
// A positive amount is an inflow, a negative amount an outflow.
type Transaction struct {
	Date        time.Time `json:"date"`
	Amount      float64   `json:"amount"`
	Category    string    `json:"category"`
	Description string    `json:"description"`
	AccountID   string    `json:"accountId,omitempty"`
}

// dateFormats lists the layouts accepted for transaction dates, most specific first
var dateFormats = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
	"02/01/2006",
	"2/1/2006",
	"2006/01/02",
	"2 Jan 2006",
	"02 Jan 2006",
	"Jan 2, 2006",
	"January 2, 2006",
}

// ParseDate tries each supported layout in turn. The zero time and false are
// returned when nothing matches.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateFormats {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ParseTransactions converts collector records into transactions, dropping any
// record whose date cannot be parsed. It returns the number of dropped records.
func ParseTransactions(records []TransactionRecord) ([]Transaction, int) {
	out := make([]Transaction, 0, len(records))
	dropped := 0
	for _, r := range records {
		d, ok := ParseDate(r.Date)
		if !ok {
			dropped++
			continue
		}
		out = append(out, Transaction{
			Date:        d,
			Amount:      r.Amount,
			Category:    r.Category,
			Description: r.Description,
			AccountID:   r.AccountID,
		})
	}
	return out, dropped
}

// IsIncome reports whether the transaction is an inflow
func (t *Transaction) IsIncome() bool { return t.Amount > 0 }

// IsSpend reports whether the transaction is an outflow
func (t *Transaction) IsSpend() bool { return t.Amount < 0 }

// AbsAmount returns the absolute value of the amount
func (t *Transaction) AbsAmount() float64 {
	return math.Abs(t.Amount)
}

// CategoryKey returns the lower-cased grouping key for the category
func (t *Transaction) CategoryKey() string {
	cat := strings.TrimSpace(t.Category)
	if cat == "" {
		cat = DefaultCategory
	}
	return strings.ToLower(cat)
}

// DefaultCategory labels transactions that carry no category
const DefaultCategory = "Uncategorised"

// TransactionSet wraps a slice with filtering/aggregation methods
type TransactionSet struct {
	Transactions []Transaction
}

// NewTransactionSet creates a new TransactionSet from a slice
func NewTransactionSet(transactions []Transaction) *TransactionSet {
	return &TransactionSet{Transactions: transactions}
}

// Len returns the number of transactions
func (ts *TransactionSet) Len() int {
	return len(ts.Transactions)
}

// FilterByRange returns transactions with start <= date < end
func (ts *TransactionSet) FilterByRange(start, end time.Time) *TransactionSet {
	result := &TransactionSet{}
	for _, t := range ts.Transactions {
		if !t.Date.Before(start) && t.Date.Before(end) {
			result.Transactions = append(result.Transactions, t)
		}
	}
	return result
}

// Income returns the inflows
func (ts *TransactionSet) Income() *TransactionSet {
	result := &TransactionSet{}
	for _, t := range ts.Transactions {
		if t.IsIncome() {
			result.Transactions = append(result.Transactions, t)
		}
	}
	return result
}

// Spend returns the outflows
func (ts *TransactionSet) Spend() *TransactionSet {
	result := &TransactionSet{}
	for _, t := range ts.Transactions {
		if t.IsSpend() {
			result.Transactions = append(result.Transactions, t)
		}
	}
	return result
}

// SumAmount returns the sum of all transaction amounts
func (ts *TransactionSet) SumAmount() float64 {
	var sum float64
	for _, t := range ts.Transactions {
		sum += t.Amount
	}
	return sum
}

// SumAbsAmount returns the sum of absolute values
func (ts *TransactionSet) SumAbsAmount() float64 {
	var sum float64
	for _, t := range ts.Transactions {
		sum += math.Abs(t.Amount)
	}
	return sum
}

// GroupByMonth groups transactions by "2006-01" month key
func (ts *TransactionSet) GroupByMonth() map[string]*TransactionSet {
	result := make(map[string]*TransactionSet)
	for _, t := range ts.Transactions {
		month := t.Date.Format("2006-01")
		if result[month] == nil {
			result[month] = &TransactionSet{}
		}
		result[month].Transactions = append(result[month].Transactions, t)
	}
	return result
}

// GroupByCategory groups transactions by lower-cased category
func (ts *TransactionSet) GroupByCategory() map[string]*TransactionSet {
	result := make(map[string]*TransactionSet)
	for _, t := range ts.Transactions {
		cat := t.CategoryKey()
		if result[cat] == nil {
			result[cat] = &TransactionSet{}
		}
		result[cat].Transactions = append(result[cat].Transactions, t)
	}
	return result
}

// SortByDate sorts transactions by date (ascending)
func (ts *TransactionSet) SortByDate() *TransactionSet {
	sorted := make([]Transaction, len(ts.Transactions))
	copy(sorted, ts.Transactions)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})
	return &TransactionSet{Transactions: sorted}
}
