package aggregator

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"findash/internal/models"
)

func day(m time.Month, d int) time.Time {
	return time.Date(2025, m, d, 9, 0, 0, 0, time.UTC)
}

func tx(date time.Time, amount float64, category, description string) models.Transaction {
	return models.Transaction{Date: date, Amount: amount, Category: category, Description: description}
}

var april = models.Range{
	Start: time.Date(2025, time.April, 1, 0, 0, 0, 0, time.UTC),
	End:   time.Date(2025, time.May, 1, 0, 0, 0, 0, time.UTC),
	Days:  30,
}

func sampleTransactions() []models.Transaction {
	return []models.Transaction{
		tx(day(time.April, 1), 3000, "Salary", "ACME PAYROLL"),
		tx(day(time.April, 3), 200, "Investments", "VWRL dividend"),
		tx(day(time.April, 5), 500, "Transfer", "From savings"),
		tx(day(time.April, 2), -1000, "Rent", "Landlord"),
		tx(day(time.April, 10), -100, "Groceries", "Tesco"),
		tx(day(time.April, 10), -100, "groceries", "TESCO "),
		tx(day(time.April, 12), -300, "HMRC", "Self assessment"),
		tx(day(time.April, 15), -250, "Savings", "Stocks and Shares ISA"),
		tx(day(time.April, 20), -50, "Eating Out", "Pizza"),
		tx(day(time.April, 22), 0, "Adjustment", "Zero"),
		tx(day(time.March, 31), -999, "Rent", "Before range"),
		tx(time.Date(2025, time.May, 1, 0, 0, 0, 0, time.UTC), -999, "Rent", "On end bound"),
	}
}

func TestAggregateMetrics(t *testing.T) {
	res := New(nil).Aggregate(sampleTransactions(), april, 150)

	m := res.Metrics
	assert.Equal(t, 3700.0, m.Income)
	assert.Equal(t, 1800.0, m.Spend)
	assert.Equal(t, 1200.0, m.Essentials)
	assert.Equal(t, 600.0, m.Discretionary)
	assert.Equal(t, 150.0, m.RecurringContributions)
	assert.Equal(t, 1750.0, m.SavingsCapacity)
	assert.Equal(t, 1750.0, m.MonthlySavingsCapacity)
	assert.Equal(t, 10, m.TransactionCount)

	assert.Equal(t, IncomeSplit{Salary: 3000, Dividends: 200, NonTaxable: 500}, res.Income)
	assert.Equal(t, 3000.0, res.Income.Taxable())
	assert.Equal(t, 300.0, res.TaxPaymentsObserved)
	assert.Equal(t, 250.0, res.ISAContributions)
	assert.Equal(t, 0.0, res.PensionContributions)
}

func TestMonthlySavingsCapacityNormalisesToThirtyDays(t *testing.T) {
	quarter := models.Range{
		Start: time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2025, time.April, 1, 0, 0, 0, 0, time.UTC),
		Days:  90,
	}
	res := New(nil).Aggregate([]models.Transaction{
		tx(day(time.January, 10), 9000, "Salary", "Pay"),
		tx(day(time.February, 10), -3000, "Rent", "Rent"),
	}, quarter, 0)

	assert.Equal(t, 6000.0, res.Metrics.SavingsCapacity)
	assert.Equal(t, 2000.0, res.Metrics.MonthlySavingsCapacity)
}

func TestSpendByCategory(t *testing.T) {
	res := New(nil).Aggregate(sampleTransactions(), april, 0)

	cats := res.SpendByCategory
	require.Len(t, cats, 5)
	assert.Equal(t, "rent", cats[0].Category)
	assert.Equal(t, "Rent", cats[0].Label)
	assert.Equal(t, 1000.0, cats[0].Amount)

	var groceries models.CategorySummary
	var total float64
	for _, c := range cats {
		total += c.Share
		if c.Category == "groceries" {
			groceries = c
		}
	}
	assert.InDelta(t, 1.0, total, 1e-9)
	assert.Equal(t, 2, groceries.Count)
	assert.Equal(t, 200.0, groceries.Amount)

	for i := 1; i < len(cats); i++ {
		assert.GreaterOrEqual(t, cats[i-1].Amount, cats[i].Amount)
	}
}

func TestCategoriseWithoutSpendHasZeroShares(t *testing.T) {
	ts := models.NewTransactionSet([]models.Transaction{
		tx(day(time.April, 1), 0, "Misc", "Zero"),
		tx(day(time.April, 2), 0, "", "Zero"),
	})

	cats := Categorise(ts)
	require.Len(t, cats, 2)
	for _, c := range cats {
		assert.Zero(t, c.Share)
	}
	assert.Contains(t, []string{cats[0].Label, cats[1].Label}, models.DefaultCategory)
}

func TestFindDuplicates(t *testing.T) {
	txs := []models.Transaction{
		{Date: day(time.April, 4), Amount: -12.001, Description: "Netflix", AccountID: "acc-2"},
		{Date: day(time.April, 4), Amount: -12.00, Description: "netflix", AccountID: "acc-1"},
		{Date: day(time.April, 4).Add(3 * time.Hour), Amount: -12, Description: "NETFLIX ", AccountID: "acc-1"},
		{Date: day(time.April, 5), Amount: -12, Description: "Netflix"},
		{Date: day(time.April, 6), Amount: -80, Description: "Gym"},
		{Date: day(time.April, 6), Amount: -80, Description: "Gym"},
	}

	clusters := FindDuplicates(txs)
	require.Len(t, clusters, 2)

	assert.Equal(t, -80.0, clusters[0].Amount)
	assert.Equal(t, 2, clusters[0].Count)
	assert.Empty(t, clusters[0].DistinctAccountIDs)

	netflix := clusters[1]
	assert.Equal(t, "2025-04-04", netflix.Date)
	assert.Equal(t, "netflix", netflix.Description)
	assert.Equal(t, 3, netflix.Count)
	assert.Equal(t, []string{"acc-1", "acc-2"}, netflix.DistinctAccountIDs)
}

func TestFindDuplicatesNone(t *testing.T) {
	clusters := FindDuplicates([]models.Transaction{
		tx(day(time.April, 1), -5, "Coffee", "Cafe"),
		tx(day(time.April, 1), -6, "Coffee", "Cafe"),
	})
	assert.NotNil(t, clusters)
	assert.Empty(t, clusters)
}

func TestRankMerchantsKeepsTopEight(t *testing.T) {
	var txs []models.Transaction
	for i := 1; i <= 10; i++ {
		txs = append(txs, tx(day(time.April, i), -float64(i*10), "Shopping", fmt.Sprintf("Shop %02d", i)))
	}
	txs = append(txs, tx(day(time.April, 11), -5, "Shopping", "shop 01"))

	merchants := RankMerchants(models.NewTransactionSet(txs), TopMerchants)
	require.Len(t, merchants, 8)
	assert.Equal(t, "Shop 10", merchants[0].Name)
	assert.Equal(t, 100.0, merchants[0].Amount)
	assert.Equal(t, "Shop 03", merchants[7].Name)

	merchants = RankMerchants(models.NewTransactionSet(txs), 20)
	last := merchants[len(merchants)-1]
	assert.Equal(t, "Shop 01", last.Name)
	assert.Equal(t, 15.0, last.Amount)
	assert.Equal(t, 2, last.Count)
}

func TestMonthlyTrend(t *testing.T) {
	spend := models.NewTransactionSet([]models.Transaction{
		tx(day(time.March, 3), -100, "Food", "Shop"),
		tx(day(time.January, 3), -200, "Food", "Shop"),
		tx(day(time.February, 3), -100, "Food", "Shop"),
		tx(day(time.February, 20), -150, "Food", "Shop"),
	})

	trend := MonthlyTrend(spend)
	require.Len(t, trend, 3)
	assert.Equal(t, models.TrendPoint{Month: "2025-01", Spend: 200}, trend[0])
	assert.Equal(t, models.TrendPoint{Month: "2025-02", Spend: 250, ChangePct: 25}, trend[1])
	assert.Equal(t, models.TrendPoint{Month: "2025-03", Spend: 100, ChangePct: -60}, trend[2])
}
