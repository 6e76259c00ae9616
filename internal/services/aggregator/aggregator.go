// Package aggregator turns a flat transaction list into category breakdowns,
// duplicate clusters, merchant rankings and cash-flow metrics for one range.
package aggregator

import (
	"math"
	"sort"
	"strings"

	"findash/internal/models"
	"findash/internal/services/classifier"
	"findash/internal/services/comparatives"
)

// TopMerchants is the number of merchants kept in the ranking
const TopMerchants = 8

// IncomeSplit breaks inflows down by tax treatment
type IncomeSplit struct {
	Salary     float64
	Dividends  float64
	Other      float64
	NonTaxable float64
}

// Taxable returns salary plus other taxable non-dividend income
func (s IncomeSplit) Taxable() float64 {
	return s.Salary + s.Other
}

// Result is everything the aggregator derives for one range
type Result struct {
	Metrics              models.Metrics
	SpendByCategory      []models.CategorySummary
	IncomeByCategory     []models.CategorySummary
	Duplicates           []models.DuplicateCluster
	Merchants            []models.Merchant
	Trend                []models.TrendPoint
	Income               IncomeSplit
	TaxPaymentsObserved  float64
	ISAContributions     float64
	PensionContributions float64
}

// Aggregator computes range-scoped aggregates using a classifier
type Aggregator struct {
	classifier *classifier.Classifier
}

// New creates an aggregator. A nil classifier means the default rules.
func New(c *classifier.Classifier) *Aggregator {
	if c == nil {
		c = classifier.Default()
	}
	return &Aggregator{classifier: c}
}

// Aggregate filters transactions to [r.Start, r.End) and derives the range
// aggregates. monthlyContributions is the wealth plan's recurring monthly
// saving, scaled to the range length.
func (a *Aggregator) Aggregate(transactions []models.Transaction, r models.Range, monthlyContributions float64) *Result {
	ts := models.NewTransactionSet(transactions).FilterByRange(r.Start, r.End)
	days := r.Days
	if days < 1 {
		days = 1
	}

	res := &Result{}
	var essentials, discretionary float64

	for i := range ts.Transactions {
		t := &ts.Transactions[i]
		switch {
		case t.IsIncome():
			switch a.classifier.Income(t) {
			case classifier.IncomeSalary:
				res.Income.Salary += t.Amount
			case classifier.IncomeDividend:
				res.Income.Dividends += t.Amount
			case classifier.IncomeNonTaxable:
				res.Income.NonTaxable += t.Amount
			default:
				res.Income.Other += t.Amount
			}
		case t.IsSpend():
			if a.classifier.IsEssential(t) {
				essentials += t.AbsAmount()
			} else {
				discretionary += t.AbsAmount()
			}
			if a.classifier.IsTaxPayment(t) {
				res.TaxPaymentsObserved += t.AbsAmount()
			}
			if a.classifier.IsISAContribution(t) {
				res.ISAContributions += t.AbsAmount()
			}
			if a.classifier.IsPensionContribution(t) {
				res.PensionContributions += t.AbsAmount()
			}
		}
	}

	income := ts.Income().SumAmount()
	spend := ts.Spend().SumAbsAmount()
	recurring := monthlyContributions * float64(days) / 30
	capacity := income - spend - recurring

	res.Metrics = models.Metrics{
		Income:                 round2(income),
		Spend:                  round2(spend),
		Essentials:             round2(essentials),
		Discretionary:          round2(discretionary),
		RecurringContributions: round2(recurring),
		SavingsCapacity:        round2(capacity),
		MonthlySavingsCapacity: round2(capacity * 30 / float64(days)),
		TransactionCount:       ts.Len(),
	}
	res.SpendByCategory = Categorise(ts.Spend())
	res.IncomeByCategory = Categorise(ts.Income())
	res.Duplicates = FindDuplicates(ts.Transactions)
	res.Merchants = RankMerchants(ts.Spend(), TopMerchants)
	res.Trend = MonthlyTrend(ts.Spend())
	return res
}

// Categorise groups transactions by lower-cased category and sums absolute
// amounts. Shares are 0 when the total is 0. Sorted by amount descending.
func Categorise(ts *models.TransactionSet) []models.CategorySummary {
	total := ts.SumAbsAmount()
	out := make([]models.CategorySummary, 0)
	for key, group := range ts.GroupByCategory() {
		amount := group.SumAbsAmount()
		s := models.CategorySummary{
			Category: key,
			Label:    label(group.Transactions[0].Category),
			Amount:   round2(amount),
			Count:    group.Len(),
		}
		if total > 0 {
			s.Share = amount / total
		}
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Amount != out[j].Amount {
			return out[i].Amount > out[j].Amount
		}
		return out[i].Category < out[j].Category
	})
	return out
}

type duplicateKey struct {
	day         string
	pence       int64
	description string
}

// FindDuplicates clusters transactions sharing day, amount in pence and
// normalised description. Clusters are sorted by absolute amount descending.
func FindDuplicates(transactions []models.Transaction) []models.DuplicateCluster {
	groups := make(map[duplicateKey][]models.Transaction)
	var order []duplicateKey
	for _, t := range transactions {
		k := duplicateKey{
			day:         t.Date.Format("2006-01-02"),
			pence:       int64(math.Round(t.Amount * 100)),
			description: normalise(t.Description),
		}
		if _, ok := groups[k]; !ok {
			order = append(order, k)
		}
		groups[k] = append(groups[k], t)
	}

	out := make([]models.DuplicateCluster, 0)
	for _, k := range order {
		members := groups[k]
		if len(members) < 2 {
			continue
		}
		seen := make(map[string]bool)
		accounts := make([]string, 0)
		for _, m := range members {
			if m.AccountID != "" && !seen[m.AccountID] {
				seen[m.AccountID] = true
				accounts = append(accounts, m.AccountID)
			}
		}
		sort.Strings(accounts)
		out = append(out, models.DuplicateCluster{
			Date:               k.day,
			Amount:             float64(k.pence) / 100,
			Description:        k.description,
			Count:              len(members),
			DistinctAccountIDs: accounts,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return math.Abs(out[i].Amount) > math.Abs(out[j].Amount)
	})
	return out
}

// RankMerchants sums spend by description and keeps the top n
func RankMerchants(spend *models.TransactionSet, n int) []models.Merchant {
	byKey := make(map[string]*models.Merchant)
	for _, t := range spend.Transactions {
		key := normalise(t.Description)
		m, ok := byKey[key]
		if !ok {
			name := strings.Join(strings.Fields(t.Description), " ")
			if name == "" {
				name = "Unknown"
			}
			m = &models.Merchant{Name: name}
			byKey[key] = m
		}
		m.Amount += t.AbsAmount()
		m.Count++
	}

	out := make([]models.Merchant, 0, len(byKey))
	for _, m := range byKey {
		m.Amount = round2(m.Amount)
		out = append(out, *m)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Amount != out[j].Amount {
			return out[i].Amount > out[j].Amount
		}
		return out[i].Name < out[j].Name
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}

// MonthlyTrend returns spend per calendar month with month-over-month change
func MonthlyTrend(spend *models.TransactionSet) []models.TrendPoint {
	monthly := spend.GroupByMonth()
	months := make([]string, 0, len(monthly))
	for m := range monthly {
		months = append(months, m)
	}
	sort.Strings(months)

	out := make([]models.TrendPoint, 0, len(months))
	for i, m := range months {
		p := models.TrendPoint{Month: m, Spend: round2(monthly[m].SumAbsAmount())}
		if i > 0 {
			p.ChangePct = round2(comparatives.PercentChange(p.Spend, out[i-1].Spend))
		}
		out = append(out, p)
	}
	return out
}

func normalise(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

func label(category string) string {
	category = strings.TrimSpace(category)
	if category == "" {
		return models.DefaultCategory
	}
	return category
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
