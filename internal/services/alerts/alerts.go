// Package alerts derives notices from fixed thresholds over the computed
// dashboard figures. Alerts are regenerated on every computation.
package alerts

import (
	"fmt"
	"math"

	"findash/internal/models"
	"findash/internal/services/tax"
)

// Thresholds
const (
	AllowanceUtilisation = 0.9
	SpendConcentration   = 0.35
	MaxInsights          = 3
)

// Input is the subset of the dashboard the thresholds look at
type Input struct {
	Duplicates             []models.DuplicateCluster
	MonthlySavingsCapacity float64
	Allowances             []models.Allowance
	SpendByCategory        []models.CategorySummary
	HMRC                   models.HMRCBalance
}

// Generate evaluates every threshold. IDs are stable so identical inputs
// produce identical alerts.
func Generate(in Input) []models.Alert {
	out := make([]models.Alert, 0)

	if n := len(in.Duplicates); n > 0 {
		out = append(out, models.Alert{
			ID:       "duplicates",
			Severity: models.SeverityWarning,
			Title:    "Possible duplicate transactions",
			Body:     fmt.Sprintf("%d group(s) of transactions share the same day, amount and description.", n),
		})
	}

	if in.MonthlySavingsCapacity < 0 {
		out = append(out, models.Alert{
			ID:       "negative-savings",
			Severity: models.SeverityDanger,
			Title:    "Spending exceeds income",
			Body:     fmt.Sprintf("Monthly savings capacity is %s.", tax.FormatGBP(in.MonthlySavingsCapacity)),
		})
	}

	for _, a := range in.Allowances {
		if a.Utilisation > AllowanceUtilisation {
			out = append(out, models.Alert{
				ID:       "allowance-" + a.Key,
				Severity: models.SeverityWarning,
				Title:    a.Label + " nearly used",
				Body: fmt.Sprintf("%s of %s used (%.0f%%).",
					tax.FormatGBP(a.Used), tax.FormatGBP(a.Total), math.Floor(a.Utilisation*100)),
			})
		}
	}

	if len(in.SpendByCategory) > 0 {
		top := in.SpendByCategory[0]
		if top.Share > SpendConcentration {
			out = append(out, models.Alert{
				ID:       "spend-concentration",
				Severity: models.SeverityInfo,
				Title:    "Spending concentrated in " + top.Label,
				Body:     fmt.Sprintf("%s accounts for %.0f%% of spend in this period.", top.Label, top.Share*100),
			})
		}
	}

	if in.HMRC.Net > 0 {
		out = append(out, models.Alert{
			ID:       "hmrc-balance",
			Severity: models.SeverityDanger,
			Title:    "Tax likely owed",
			Body:     in.HMRC.Label + " for this period based on observed payments.",
		})
	}

	return out
}

// Insights turns the first alerts into assistant prompt seeds
func Insights(alerts []models.Alert) []models.Insight {
	n := len(alerts)
	if n > MaxInsights {
		n = MaxInsights
	}
	out := make([]models.Insight, 0, n)
	for _, a := range alerts[:n] {
		out = append(out, models.Insight{
			ID:       a.ID,
			Severity: a.Severity,
			Prompt:   fmt.Sprintf("%s: %s What should I do about this?", a.Title, a.Body),
		})
	}
	return out
}
