package models

import (
	"strings"
	"time"
)

// RangeMode tells whether a range came from a preset or explicit dates
type RangeMode string

const (
	RangePreset RangeMode = "preset"
	RangeCustom RangeMode = "custom"
)

// Range is a half-open interval [Start, End) plus the comparable previous
// range of equal length immediately preceding it.
type Range struct {
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
	PrevStart time.Time `json:"prevStart"`
	PrevEnd   time.Time `json:"prevEnd"`
	Days      int       `json:"days"`
	Label     string    `json:"label"`
	Mode      RangeMode `json:"mode"`
	Preset    string    `json:"preset,omitempty"`

	// OpenEnded marks presets that end at the moment they were resolved
	OpenEnded bool `json:"-"`
}

// Previous returns the comparable previous range as a Range of its own
func (r Range) Previous() Range {
	return Range{
		Start: r.PrevStart,
		End:   r.PrevEnd,
		Days:  r.Days,
		Label: "Previous period",
		Mode:  r.Mode,
	}
}

// Key identifies the range in cache keys. An open-ended preset is keyed by
// its name, start and end date, so polls later the same day share a key.
func (r Range) Key() string {
	if r.OpenEnded {
		return r.Preset + ":" + r.Start.UTC().Format(time.RFC3339Nano) + ":" + r.End.Format(time.DateOnly)
	}
	return r.Start.UTC().Format(time.RFC3339Nano) + r.End.UTC().Format(time.RFC3339Nano)
}

// View renders the range with ISO-8601 date strings
func (r Range) View() RangeView {
	return RangeView{
		Start:     r.Start.Format(time.RFC3339),
		End:       r.End.Format(time.RFC3339),
		PrevStart: r.PrevStart.Format(time.RFC3339),
		PrevEnd:   r.PrevEnd.Format(time.RFC3339),
		Days:      r.Days,
		Label:     r.Label,
		Mode:      r.Mode,
		Preset:    r.Preset,
	}
}

// RangeView is the serialised form of a Range
type RangeView struct {
	Start     string    `json:"start"`
	End       string    `json:"end"`
	PrevStart string    `json:"prevStart"`
	PrevEnd   string    `json:"prevEnd"`
	Days      int       `json:"days"`
	Label     string    `json:"label"`
	Mode      RangeMode `json:"mode"`
	Preset    string    `json:"preset,omitempty"`
}

// DeltaMode selects how comparatives are expressed
type DeltaMode string

const (
	DeltaAbsolute DeltaMode = "absolute"
	DeltaPercent  DeltaMode = "percent"
)

// ParseDeltaMode resolves the requested mode, falling back to the stored
// preference and then to absolute.
func ParseDeltaMode(requested string, preferred DeltaMode) (DeltaMode, error) {
	switch DeltaMode(strings.ToLower(strings.TrimSpace(requested))) {
	case DeltaAbsolute:
		return DeltaAbsolute, nil
	case DeltaPercent:
		return DeltaPercent, nil
	case "":
		if preferred == DeltaPercent {
			return DeltaPercent, nil
		}
		return DeltaAbsolute, nil
	default:
		return "", Errorf(InvalidDeltaMode, "unknown delta mode %q", requested)
	}
}

// Allowance is a yearly tax allowance and how much of it is used
type Allowance struct {
	Key         string  `json:"key"`
	Label       string  `json:"label"`
	Used        float64 `json:"used"`
	Total       float64 `json:"total"`
	Utilisation float64 `json:"utilisation"`
}

// NewAllowance fills in utilisation, defined as 0 when total is 0
func NewAllowance(key, label string, used, total float64) Allowance {
	a := Allowance{Key: key, Label: label, Used: used, Total: total}
	if total != 0 {
		a.Utilisation = used / total
	}
	return a
}

// ObligationStatus is the scheduling state of an HMRC deadline
type ObligationStatus string

const (
	Scheduled ObligationStatus = "scheduled"
	DueSoon   ObligationStatus = "due-soon"
)

// Obligation is an upcoming HMRC deadline
type Obligation struct {
	Key       string           `json:"key"`
	Title     string           `json:"title"`
	DueDate   string           `json:"dueDate"`
	AmountDue float64          `json:"amountDue"`
	Status    ObligationStatus `json:"status"`
}

// Severity ranks alerts
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityDanger  Severity = "danger"
)

// Alert is a derived notice; it is regenerated on every computation
type Alert struct {
	ID       string   `json:"id"`
	Severity Severity `json:"severity"`
	Title    string   `json:"title"`
	Body     string   `json:"body"`
}

// Insight is a prompt seed surfaced to the assistant panel
type Insight struct {
	ID       string   `json:"id"`
	Severity Severity `json:"severity"`
	Prompt   string   `json:"prompt"`
}

// CategorySummary represents income or spending in a category
type CategorySummary struct {
	Category string  `json:"category"`
	Label    string  `json:"label"`
	Amount   float64 `json:"amount"`
	Count    int     `json:"count"`
	Share    float64 `json:"share"`
}

// DuplicateCluster is a group of transactions that look identical
type DuplicateCluster struct {
	Date               string   `json:"date"`
	Amount             float64  `json:"amount"`
	Description        string   `json:"description"`
	Count              int      `json:"count"`
	DistinctAccountIDs []string `json:"distinctAccountIds"`
}

// Merchant is spending at one merchant
type Merchant struct {
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
	Count  int     `json:"count"`
}

// TrendPoint is spending in one calendar month
type TrendPoint struct {
	Month     string  `json:"month"`
	Spend     float64 `json:"spend"`
	ChangePct float64 `json:"changePct"`
}

// Metrics are the headline figures for a range
type Metrics struct {
	Income                 float64 `json:"income"`
	Spend                  float64 `json:"spend"`
	Essentials             float64 `json:"essentials"`
	Discretionary          float64 `json:"discretionary"`
	RecurringContributions float64 `json:"recurringContributions"`
	SavingsCapacity        float64 `json:"savingsCapacity"`
	MonthlySavingsCapacity float64 `json:"monthlySavingsCapacity"`
	TransactionCount       int     `json:"transactionCount"`
	DroppedRecords         int     `json:"droppedRecords"`
}

// Direction of a comparative
type Direction string

const (
	Up   Direction = "up"
	Down Direction = "down"
	Flat Direction = "flat"
)

// Comparative is one metric compared against the previous range
type Comparative struct {
	Key       string    `json:"key"`
	Label     string    `json:"label"`
	Current   float64   `json:"current"`
	Previous  float64   `json:"previous"`
	Delta     float64   `json:"delta"`
	Mode      DeltaMode `json:"mode"`
	Direction Direction `json:"direction"`
}

// HMRCBalance is the estimated tax position for the range
type HMRCBalance struct {
	EstimatedTax     float64 `json:"estimatedTax"`
	PaymentsObserved float64 `json:"paymentsObserved"`
	Net              float64 `json:"net"`
	Label            string  `json:"label"`
}

// EMTRPoint is one point of the effective marginal tax rate curve
type EMTRPoint struct {
	Income float64 `json:"income"`
	Rate   float64 `json:"rate"`
}

// TaxSummary is the annualised tax estimate
type TaxSummary struct {
	AnnualGrossIncome float64     `json:"annualGrossIncome"`
	AnnualDividends   float64     `json:"annualDividends"`
	PersonalAllowance float64     `json:"personalAllowance"`
	TaxableIncome     float64     `json:"taxableIncome"`
	IncomeTax         float64     `json:"incomeTax"`
	DividendTax       float64     `json:"dividendTax"`
	TotalTax          float64     `json:"totalTax"`
	Band              string      `json:"band"`
	MarginalRate      float64     `json:"marginalRate"`
	EMTR              []EMTRPoint `json:"emtr"`
}

// Accounting is the accounting block of the dashboard payload
type Accounting struct {
	Metrics          Metrics            `json:"metrics"`
	SpendByCategory  []CategorySummary  `json:"spendByCategory"`
	IncomeByCategory []CategorySummary  `json:"incomeByCategory"`
	Duplicates       []DuplicateCluster `json:"duplicates"`
	Merchants        []Merchant         `json:"merchants"`
	InflationTrend   []TrendPoint       `json:"inflationTrend"`
	Allowances       []Allowance        `json:"allowances"`
	Obligations      []Obligation       `json:"obligations"`
	Alerts           []Alert            `json:"alerts"`
	Comparatives     []Comparative      `json:"comparatives"`
	HMRCBalance      HMRCBalance        `json:"hmrcBalance"`
	Tax              TaxSummary         `json:"tax"`
}

// BreakdownItem is net worth contributed by one account type or plan bucket
type BreakdownItem struct {
	Key   string  `json:"key"`
	Value float64 `json:"value"`
}

// AllocationSlice is the share of the portfolio held in one asset class
type AllocationSlice struct {
	AssetClass string  `json:"assetClass"`
	Value      float64 `json:"value"`
	Percent    float64 `json:"percent"`
}

// ValuationPoint is the portfolio value at a month reference date
type ValuationPoint struct {
	Month string  `json:"month"`
	Date  string  `json:"date"`
	Value float64 `json:"value"`
}

// Investments summarises the holdings
type Investments struct {
	Value     float64          `json:"value"`
	YTDReturn float64          `json:"ytdReturn"`
	Holdings  int              `json:"holdings"`
	Series    []ValuationPoint `json:"series"`
}

// FinancialPosture is the balance-sheet block of the dashboard payload
type FinancialPosture struct {
	NetWorth        float64           `json:"netWorth"`
	Debt            float64           `json:"debt"`
	Breakdown       []BreakdownItem   `json:"breakdown"`
	Liquidity       float64           `json:"liquidity"`
	LiquidityMonths float64           `json:"liquidityMonths"`
	Savings         float64           `json:"savings"`
	AssetMix        []AllocationSlice `json:"assetMix"`
	Income          float64           `json:"income"`
	Spend           float64           `json:"spend"`
	TopCosts        []CategorySummary `json:"topCosts"`
	Investments     Investments       `json:"investments"`
}

// Gating carries feature-gating state
type Gating struct {
	Tier Tier `json:"tier"`
}

// Payload is the full dashboard response
type Payload struct {
	Range            RangeView        `json:"range"`
	Accounting       Accounting       `json:"accounting"`
	FinancialPosture FinancialPosture `json:"financialPosture"`
	AIInsights       []Insight        `json:"aiInsights"`
	Gating           Gating           `json:"gating"`
}

// TaxReport is the response of the tax-specific path
type TaxReport struct {
	Range       RangeView    `json:"range"`
	Tax         TaxSummary   `json:"tax"`
	HMRCBalance HMRCBalance  `json:"hmrcBalance"`
	Obligations []Obligation `json:"obligations"`
	Allowances  []Allowance  `json:"allowances"`
}
