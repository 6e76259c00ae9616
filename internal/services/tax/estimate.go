package tax

import (
	"math"
	"sort"
	"time"

	"findash/internal/models"
)

// dueSoonDays is how many calendar days away a deadline counts as due soon
const dueSoonDays = 30

// Input carries the range-scoped figures the estimate needs
type Input struct {
	Days                 int
	OtherIncome          float64 // salary and other taxable non-dividend income
	Dividends            float64
	TaxPaymentsObserved  float64
	ISAContributions     float64
	PensionContributions float64
	Now                  time.Time
}

// Result is the tax block of the dashboard
type Result struct {
	Summary              models.TaxSummary
	Liability            Liability
	EstimatedTaxForRange float64
	HMRC                 models.HMRCBalance
	Obligations          []models.Obligation
	Allowances           []models.Allowance
}

// Estimate annualises the range figures, assesses the liability and scales
// it back to the range to compare against observed payments.
func Estimate(in Input) Result {
	days := in.Days
	if days < 1 {
		days = 1
	}
	annualOther := Annualise(in.OtherIncome, days)
	annualDiv := Annualise(in.Dividends, days)
	l := Assess(annualOther, annualDiv)

	taxable := l.TaxableOther + l.TaxableDividends
	summary := models.TaxSummary{
		AnnualGrossIncome: round2(l.Gross),
		AnnualDividends:   round2(annualDiv),
		PersonalAllowance: l.PersonalAllowance,
		TaxableIncome:     round2(taxable),
		IncomeTax:         round2(l.IncomeTax),
		DividendTax:       round2(l.DividendTax),
		TotalTax:          l.Total,
		Band:              Band(taxable),
		MarginalRate:      MarginalRate(l.Gross),
		EMTR:              Curve(l.Gross),
	}

	forRange := round2(Deannualise(l.Total, days))
	net := round2(forRange - in.TaxPaymentsObserved)

	return Result{
		Summary:              summary,
		Liability:            l,
		EstimatedTaxForRange: forRange,
		HMRC: models.HMRCBalance{
			EstimatedTax:     forRange,
			PaymentsObserved: round2(in.TaxPaymentsObserved),
			Net:              net,
			Label:            HMRCLabel(net),
		},
		Obligations: Obligations(in.Now, l.Total),
		Allowances:  Allowances(l, Annualise(in.ISAContributions, days), Annualise(in.PensionContributions, days)),
	}
}

// Obligations returns the next payment-on-account (31 July) and Self
// Assessment (31 January) deadlines, each rolled forward a year once passed.
// The annual liability is split evenly between them; observed payments are
// settled through the HMRC balance instead.
func Obligations(now time.Time, liability float64) []models.Obligation {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	share := round2(liability / 2)

	next := func(month time.Month) time.Time {
		due := time.Date(today.Year(), month, 31, 0, 0, 0, 0, today.Location())
		if due.Before(today) {
			due = due.AddDate(1, 0, 0)
		}
		return due
	}

	deadlines := []struct {
		key, title string
		due        time.Time
	}{
		{"payment-on-account", "Payment on account", next(time.July)},
		{"self-assessment", "Self Assessment", next(time.January)},
	}
	sort.Slice(deadlines, func(i, j int) bool { return deadlines[i].due.Before(deadlines[j].due) })

	out := make([]models.Obligation, 0, len(deadlines))
	for _, dl := range deadlines {
		status := models.Scheduled
		if calendarDays(today, dl.due) <= dueSoonDays {
			status = models.DueSoon
		}
		out = append(out, models.Obligation{
			Key:       dl.key,
			Title:     dl.title,
			DueDate:   dl.due.Format("2006-01-02"),
			AmountDue: share,
			Status:    status,
		})
	}
	return out
}

// calendarDays counts the dates from a to b, ignoring clock changes
func calendarDays(a, b time.Time) int {
	ca := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	cb := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(cb.Sub(ca).Hours() / 24)
}

// Allowances reports yearly allowance usage from annualised figures
func Allowances(l Liability, annualISA, annualPension float64) []models.Allowance {
	return []models.Allowance{
		models.NewAllowance("personal", "Personal allowance", round2(math.Min(l.Gross-l.TaxableDividends, l.PersonalAllowance)), l.PersonalAllowance),
		models.NewAllowance("dividend", "Dividend allowance", round2(math.Min(l.TaxableDividends, DividendAllowance)), DividendAllowance),
		models.NewAllowance("isa", "ISA allowance", round2(annualISA), ISAAllowance),
		models.NewAllowance("pension", "Pension annual allowance", round2(annualPension), PensionAllowance),
	}
}
