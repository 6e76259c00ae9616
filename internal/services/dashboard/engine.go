package dashboard

import (
	"math"
	"strings"
	"sync"
	"time"

	"findash/internal/models"
	"findash/internal/services/aggregator"
	"findash/internal/services/alerts"
	"findash/internal/services/classifier"
	"findash/internal/services/comparatives"
	"findash/internal/services/portfolio"
	"findash/internal/services/tax"
)

// TopCosts is the number of spend categories surfaced in the posture block
const TopCosts = 5

// Inputs is everything one dashboard computation reads
type Inputs struct {
	Range          models.Range
	Mode           models.DeltaMode
	Transactions   []models.Transaction
	DroppedRecords int
	Accounts       []models.Account
	Holdings       []models.Holding
	Prices         []models.PriceSeries
	Profile        models.Profile
	Now            time.Time
}

// Engine assembles the payload from already-loaded inputs. It performs no I/O.
type Engine struct {
	aggregator *aggregator.Aggregator
}

// NewEngine creates an engine. A nil classifier means the default rules.
func NewEngine(c *classifier.Classifier) *Engine {
	return &Engine{aggregator: aggregator.New(c)}
}

// Compute runs every stage for the inputs and returns the payload
func (e *Engine) Compute(in Inputs) (*models.Payload, error) {
	monthly := in.Profile.WealthPlan.MonthlyContributions()

	var (
		current, previous *aggregator.Result
		valuation         *portfolio.Valuation
		wg                sync.WaitGroup
	)
	wg.Go(func() {
		current = e.aggregator.Aggregate(in.Transactions, in.Range, monthly)
	})
	wg.Go(func() {
		previous = e.aggregator.Aggregate(in.Transactions, in.Range.Previous(), monthly)
	})
	wg.Go(func() {
		valuation = portfolio.Value(in.Holdings, portfolio.NewIndex(in.Prices), in.Range)
	})
	wg.Wait()
	current.Metrics.DroppedRecords = in.DroppedRecords

	curTax := estimate(current, in.Range.Days, in.Now)
	prevTax := estimate(previous, in.Range.Days, in.Now)

	comps := comparatives.Compare(
		comparatives.NewSnapshot(current.Metrics, curTax.HMRC.Net),
		comparatives.NewSnapshot(previous.Metrics, prevTax.HMRC.Net),
		in.Mode,
	)

	generated := alerts.Generate(alerts.Input{
		Duplicates:             current.Duplicates,
		MonthlySavingsCapacity: current.Metrics.MonthlySavingsCapacity,
		Allowances:             curTax.Allowances,
		SpendByCategory:        current.SpendByCategory,
		HMRC:                   curTax.HMRC,
	})

	tier := in.Profile.Tier
	if tier == "" {
		tier = models.TierFree
	}

	return &models.Payload{
		Range: in.Range.View(),
		Accounting: models.Accounting{
			Metrics:          current.Metrics,
			SpendByCategory:  current.SpendByCategory,
			IncomeByCategory: current.IncomeByCategory,
			Duplicates:       current.Duplicates,
			Merchants:        current.Merchants,
			InflationTrend:   current.Trend,
			Allowances:       curTax.Allowances,
			Obligations:      curTax.Obligations,
			Alerts:           generated,
			Comparatives:     comps,
			HMRCBalance:      curTax.HMRC,
			Tax:              curTax.Summary,
		},
		FinancialPosture: Posture(in.Accounts, in.Profile.WealthPlan, current, valuation, in.Range.Days),
		AIInsights:       alerts.Insights(generated),
		Gating:           models.Gating{Tier: tier},
	}, nil
}

func estimate(res *aggregator.Result, days int, now time.Time) tax.Result {
	return tax.Estimate(tax.Input{
		Days:                 days,
		OtherIncome:          res.Income.Taxable(),
		Dividends:            res.Income.Dividends,
		TaxPaymentsObserved:  res.TaxPaymentsObserved,
		ISAContributions:     res.ISAContributions,
		PensionContributions: res.PensionContributions,
		Now:                  now,
	})
}

// Posture builds the balance-sheet block. Net worth is account balances plus
// wealth-plan assets less wealth-plan liabilities; liabilities always reduce it.
func Posture(accounts []models.Account, plan models.WealthPlan, agg *aggregator.Result, val *portfolio.Valuation, days int) models.FinancialPosture {
	byType := make(map[models.AccountType]float64)
	var netWorth, debt, liquidity float64

	for _, a := range accounts {
		signed := a.SignedBalance()
		byType[a.Type] += signed
		netWorth += signed
		if a.Type.IsLiability() {
			debt += math.Abs(a.Balance)
		}
		if a.Type == models.Cash || a.Type == models.Savings {
			liquidity += a.Balance
		}
	}

	var planAssets, planLiabilities float64
	for _, item := range plan.Assets {
		planAssets += item.Value
	}
	for _, item := range plan.Liabilities {
		planLiabilities += math.Abs(item.Value)
	}
	netWorth += planAssets - planLiabilities
	debt += planLiabilities

	breakdown := make([]models.BreakdownItem, 0, len(models.AccountTypes)+2)
	for _, t := range models.AccountTypes {
		if v, ok := byType[t]; ok {
			breakdown = append(breakdown, models.BreakdownItem{Key: string(t), Value: round2(v)})
		}
	}
	if planAssets != 0 {
		breakdown = append(breakdown, models.BreakdownItem{Key: "plan-assets", Value: round2(planAssets)})
	}
	if planLiabilities != 0 {
		breakdown = append(breakdown, models.BreakdownItem{Key: "plan-liabilities", Value: round2(-planLiabilities)})
	}

	if days < 1 {
		days = 1
	}
	var months float64
	if monthlySpend := agg.Metrics.Spend * 30 / float64(days); monthlySpend > 0 {
		months = round2(liquidity / monthlySpend)
	}

	top := agg.SpendByCategory
	if len(top) > TopCosts {
		top = top[:TopCosts]
	}

	return models.FinancialPosture{
		NetWorth:        round2(netWorth),
		Debt:            round2(debt),
		Breakdown:       breakdown,
		Liquidity:       round2(liquidity),
		LiquidityMonths: months,
		Savings:         agg.Metrics.SavingsCapacity,
		AssetMix:        val.Allocation,
		Income:          agg.Metrics.Income,
		Spend:           agg.Metrics.Spend,
		TopCosts:        top,
		Investments:     val.Investments(),
	}
}

// symbols returns the distinct upper-cased holding symbols in first-seen order
func symbols(holdings []models.Holding) []string {
	seen := make(map[string]bool, len(holdings))
	out := make([]string, 0, len(holdings))
	for _, h := range holdings {
		s := strings.ToUpper(strings.TrimSpace(h.Symbol))
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
