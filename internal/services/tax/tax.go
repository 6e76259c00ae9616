// Package tax estimates UK income and dividend tax from annualised income,
// and derives the HMRC balance, obligations, allowances and EMTR curve.
package tax

import (
	"math"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"

	"findash/internal/models"
)

// UK thresholds for the tax year, in pounds
const (
	FullPersonalAllowance = 12570
	TaperThreshold        = 100000
	BasicRateLimit        = 50270
	HigherRateLimit       = 125140
	DividendAllowance     = 500
	ISAAllowance          = 20000
	PensionAllowance      = 60000

	daysPerYear = 365
)

var (
	basicRate            = decimal.RequireFromString("0.20")
	higherRate           = decimal.RequireFromString("0.40")
	additionalRate       = decimal.RequireFromString("0.45")
	dividendBasicRate    = decimal.RequireFromString("0.0875")
	dividendHigherRate   = decimal.RequireFromString("0.3375")
	dividendAdditionRate = decimal.RequireFromString("0.3935")

	curveHeadroom = decimal.RequireFromString("1.3")
)

// Annualise projects a range-scoped amount to a 365-day equivalent
func Annualise(v float64, days int) float64 {
	if days < 1 {
		days = 1
	}
	return d(v).Mul(decimal.NewFromInt(daysPerYear)).Div(decimal.NewFromInt(int64(days))).InexactFloat64()
}

// Deannualise scales an annual amount back to a range of the given length
func Deannualise(v float64, days int) float64 {
	if days < 1 {
		days = 1
	}
	return d(v).Mul(decimal.NewFromInt(int64(days))).Div(decimal.NewFromInt(daysPerYear)).InexactFloat64()
}

// PersonalAllowance is tapered by £1 for every £2 of income above £100,000
func PersonalAllowance(income float64) float64 {
	if income <= TaperThreshold {
		return FullPersonalAllowance
	}
	reduction := math.Floor((income - TaperThreshold) / 2)
	return math.Max(0, FullPersonalAllowance-reduction)
}

// IncomeTax applies the basic, higher and additional rates to the slice of
// taxable income falling in each band. Non-positive income pays nothing.
func IncomeTax(taxable float64) float64 {
	t := d(math.Max(0, taxable))
	tax := slice(t, zero, d(BasicRateLimit)).Mul(basicRate).
		Add(slice(t, d(BasicRateLimit), d(HigherRateLimit)).Mul(higherRate)).
		Add(slice(t, d(HigherRateLimit), decimal.Decimal{}).Mul(additionalRate))
	return tax.InexactFloat64()
}

// DividendTax stacks dividends on top of taxable non-dividend income. The
// dividend allowance is taken first, then the remainder fills whatever band
// headroom the other income left.
func DividendTax(dividends, taxableOther float64) float64 {
	taxableDiv := math.Max(0, dividends-DividendAllowance)
	if taxableDiv == 0 {
		return 0
	}
	other := d(math.Max(0, taxableOther))
	div := d(taxableDiv)

	basicHeadroom := decimal.Max(zero, d(BasicRateLimit).Sub(other))
	higherHeadroom := decimal.Max(zero, d(HigherRateLimit).Sub(decimal.Max(other, d(BasicRateLimit))))

	inBasic := decimal.Min(div, basicHeadroom)
	inHigher := decimal.Min(div.Sub(inBasic), higherHeadroom)
	inAdditional := div.Sub(inBasic).Sub(inHigher)

	tax := inBasic.Mul(dividendBasicRate).
		Add(inHigher.Mul(dividendHigherRate)).
		Add(inAdditional.Mul(dividendAdditionRate))
	return tax.InexactFloat64()
}

// Liability is the annual tax position for a given income mix
type Liability struct {
	Gross             float64
	PersonalAllowance float64
	TaxableOther      float64
	TaxableDividends  float64
	IncomeTax         float64
	DividendTax       float64
	Total             float64
}

// Assess computes the annual liability. The allowance taper uses total gross
// income. The personal allowance applies to other income only; dividends get
// the dividend allowance and stack on top of taxable other income.
func Assess(otherIncome, dividends float64) Liability {
	otherIncome = math.Max(0, otherIncome)
	dividends = math.Max(0, dividends)
	gross := otherIncome + dividends
	pa := PersonalAllowance(gross)

	taxableOther := math.Max(0, otherIncome-pa)
	taxableDiv := dividends

	it := IncomeTax(taxableOther)
	dt := DividendTax(taxableDiv, taxableOther)
	return Liability{
		Gross:             gross,
		PersonalAllowance: pa,
		TaxableOther:      taxableOther,
		TaxableDividends:  taxableDiv,
		IncomeTax:         it,
		DividendTax:       dt,
		Total:             round2(it + dt),
	}
}

// Band names the band that taxable income reaches
func Band(taxable float64) string {
	switch {
	case taxable <= 0:
		return "Nil rate"
	case taxable <= BasicRateLimit:
		return "Basic rate"
	case taxable <= HigherRateLimit:
		return "Higher rate"
	default:
		return "Additional rate"
	}
}

// MarginalRate is the effective rate in percent on the next pound of gross
// income. The taper zone pays 60% because allowance is withdrawn.
func MarginalRate(gross float64) float64 {
	switch {
	case gross <= FullPersonalAllowance:
		return 0
	case gross > HigherRateLimit:
		return 45
	case gross > TaperThreshold:
		return 60
	case gross-FullPersonalAllowance <= BasicRateLimit:
		return 20
	default:
		return 40
	}
}

// EMTRPoints is the number of points on the curve
const EMTRPoints = 13

// Curve samples the marginal rate at 13 evenly spaced incomes from 0 to
// max(60000, 1.3 × gross), rounded up to the next thousand.
func Curve(gross float64) []models.EMTRPoint {
	scaled := decimal.Max(decimal.NewFromInt(60000), d(gross).Mul(curveHeadroom))
	upper := scaled.Div(decimal.NewFromInt(1000)).Ceil().Mul(decimal.NewFromInt(1000)).InexactFloat64()
	step := upper / (EMTRPoints - 1)
	out := make([]models.EMTRPoint, EMTRPoints)
	for i := range out {
		income := math.Round(step * float64(i))
		out[i] = models.EMTRPoint{Income: income, Rate: MarginalRate(income)}
	}
	return out
}

// HMRCLabel describes a net balance: positive is owed to HMRC
func HMRCLabel(net float64) string {
	pence := int64(math.Round(net * 100))
	switch {
	case pence > 0:
		return "Owe HMRC " + money.New(pence, money.GBP).Display()
	case pence < 0:
		return "HMRC owes you " + money.New(-pence, money.GBP).Display()
	default:
		return "Settled"
	}
}

// FormatGBP renders an amount in pounds, e.g. £1,234.50
func FormatGBP(v float64) string {
	return money.New(int64(math.Round(v*100)), money.GBP).Display()
}

var zero = decimal.Zero

// slice returns the part of t lying in (lo, hi]; a zero hi means unbounded
func slice(t, lo, hi decimal.Decimal) decimal.Decimal {
	top := t
	if !hi.IsZero() {
		top = decimal.Min(t, hi)
	}
	return decimal.Max(zero, top.Sub(lo))
}

func d(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
