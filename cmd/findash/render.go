package main

import (
	"fmt"
	"strings"

	"findash/internal/models"
	"findash/internal/services/tax"
)

// dashboardMarkdown renders the headline sections of a payload
func dashboardMarkdown(p *models.Payload) string {
	var sb strings.Builder
	m := p.Accounting.Metrics

	fmt.Fprintf(&sb, "# %s\n\n", p.Range.Label)
	fmt.Fprintf(&sb, "%s to %s (%d days, %s tier)\n\n", day(p.Range.Start), day(p.Range.End), p.Range.Days, p.Gating.Tier)

	sb.WriteString("## Accounting\n\n")
	sb.WriteString("| Metric | Amount |\n|:---|---:|\n")
	rows := []struct {
		label string
		value float64
	}{
		{"Income", m.Income},
		{"Spend", m.Spend},
		{"Essentials", m.Essentials},
		{"Discretionary", m.Discretionary},
		{"Savings capacity", m.SavingsCapacity},
		{"Monthly savings capacity", m.MonthlySavingsCapacity},
	}
	for _, r := range rows {
		fmt.Fprintf(&sb, "| %s | %s |\n", r.label, tax.FormatGBP(r.value))
	}
	fmt.Fprintf(&sb, "\n%d transactions", m.TransactionCount)
	if m.DroppedRecords > 0 {
		fmt.Fprintf(&sb, ", %d dropped", m.DroppedRecords)
	}
	sb.WriteString("\n\n")

	if len(p.Accounting.Comparatives) > 0 {
		sb.WriteString("## Against previous period\n\n")
		sb.WriteString("| Metric | Current | Previous | Change |\n|:---|---:|---:|---:|\n")
		for _, c := range p.Accounting.Comparatives {
			fmt.Fprintf(&sb, "| %s | %s | %s | %s |\n",
				c.Label, tax.FormatGBP(c.Current), tax.FormatGBP(c.Previous), formatDelta(c))
		}
		sb.WriteString("\n")
	}

	hb := p.Accounting.HMRCBalance
	sb.WriteString("## HMRC\n\n")
	fmt.Fprintf(&sb, "%s: estimated %s, paid %s, net %s\n\n",
		hb.Label, tax.FormatGBP(hb.EstimatedTax), tax.FormatGBP(hb.PaymentsObserved), tax.FormatGBP(hb.Net))

	fp := p.FinancialPosture
	sb.WriteString("## Financial posture\n\n")
	sb.WriteString("| | |\n|:---|---:|\n")
	fmt.Fprintf(&sb, "| Net worth | %s |\n", tax.FormatGBP(fp.NetWorth))
	fmt.Fprintf(&sb, "| Debt | %s |\n", tax.FormatGBP(fp.Debt))
	fmt.Fprintf(&sb, "| Liquidity | %s (%.1f months) |\n", tax.FormatGBP(fp.Liquidity), fp.LiquidityMonths)
	fmt.Fprintf(&sb, "| Investments | %s (%.2f%% YTD) |\n\n", tax.FormatGBP(fp.Investments.Value), fp.Investments.YTDReturn)

	if len(p.Accounting.Alerts) > 0 {
		sb.WriteString("## Alerts\n\n")
		for _, a := range p.Accounting.Alerts {
			fmt.Fprintf(&sb, "- **%s** (%s): %s\n", a.Title, a.Severity, a.Body)
		}
		sb.WriteString("\n")
	}

	if len(p.AIInsights) > 0 {
		sb.WriteString("## Insights\n\n")
		for _, in := range p.AIInsights {
			fmt.Fprintf(&sb, "- %s\n", in.Prompt)
		}
	}
	return sb.String()
}

// taxMarkdown renders a tax report
func taxMarkdown(r *models.TaxReport) string {
	var sb strings.Builder
	s := r.Tax

	fmt.Fprintf(&sb, "# %s\n\n", r.Range.Label)
	sb.WriteString("| | |\n|:---|---:|\n")
	fmt.Fprintf(&sb, "| Annual gross income | %s |\n", tax.FormatGBP(s.AnnualGrossIncome))
	fmt.Fprintf(&sb, "| Personal allowance | %s |\n", tax.FormatGBP(s.PersonalAllowance))
	fmt.Fprintf(&sb, "| Income tax | %s |\n", tax.FormatGBP(s.IncomeTax))
	fmt.Fprintf(&sb, "| Dividend tax | %s |\n", tax.FormatGBP(s.DividendTax))
	fmt.Fprintf(&sb, "| Total | %s |\n", tax.FormatGBP(s.TotalTax))
	fmt.Fprintf(&sb, "| Band | %s |\n", s.Band)
	fmt.Fprintf(&sb, "| Marginal rate | %.0f%% |\n\n", s.MarginalRate)

	fmt.Fprintf(&sb, "**%s**: net %s\n\n", r.HMRCBalance.Label, tax.FormatGBP(r.HMRCBalance.Net))

	if len(r.Obligations) > 0 {
		sb.WriteString("## Upcoming\n\n")
		for _, o := range r.Obligations {
			fmt.Fprintf(&sb, "- %s, due %s: %s (%s)\n", o.Title, o.DueDate, tax.FormatGBP(o.AmountDue), o.Status)
		}
		sb.WriteString("\n")
	}

	if len(r.Allowances) > 0 {
		sb.WriteString("## Allowances\n\n")
		for _, a := range r.Allowances {
			fmt.Fprintf(&sb, "- %s: %s of %s (%.0f%%)\n", a.Label, tax.FormatGBP(a.Used), tax.FormatGBP(a.Total), a.Utilisation*100)
		}
	}
	return sb.String()
}

func formatDelta(c models.Comparative) string {
	if c.Mode == models.DeltaPercent {
		return fmt.Sprintf("%+.1f%%", c.Delta)
	}
	sign := ""
	if c.Delta > 0 {
		sign = "+"
	}
	return sign + tax.FormatGBP(c.Delta)
}

// day trims an RFC 3339 timestamp to its date
func day(ts string) string {
	if len(ts) > 10 {
		return ts[:10]
	}
	return ts
}
