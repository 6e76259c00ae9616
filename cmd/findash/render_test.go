package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"findash/internal/models"
)

func samplePayload() *models.Payload {
	return &models.Payload{
		Range: models.RangeView{
			Start: "2025-04-01T00:00:00Z",
			End:   "2025-04-30T23:59:59Z",
			Days:  30,
			Label: "Last month",
		},
		Accounting: models.Accounting{
			Metrics: models.Metrics{Income: 3000, Spend: 1460.5, TransactionCount: 7, DroppedRecords: 2},
			Comparatives: []models.Comparative{
				{Key: "income", Label: "Income", Current: 3000, Previous: 2500, Delta: 500, Mode: models.DeltaAbsolute},
				{Key: "spend", Label: "Spend", Current: 1460.5, Previous: 1500, Delta: -2.63, Mode: models.DeltaPercent},
			},
			HMRCBalance: models.HMRCBalance{EstimatedTax: 400, Net: 400, Label: "Owed to HMRC"},
			Alerts:      []models.Alert{{ID: "duplicates", Severity: models.SeverityWarning, Title: "Possible duplicates", Body: "2 clusters"}},
		},
		AIInsights: []models.Insight{{ID: "spend", Prompt: "Where did spending rise?"}},
		Gating:     models.Gating{Tier: models.TierFree},
	}
}

func TestDashboardMarkdown(t *testing.T) {
	md := dashboardMarkdown(samplePayload())

	for _, want := range []string{
		"# Last month",
		"2025-04-01 to 2025-04-30 (30 days, free tier)",
		"| Income | £3,000.00 |",
		"| Spend | £1,460.50 |",
		"7 transactions, 2 dropped",
		"| Income | £3,000.00 | £2,500.00 | +£500.00 |",
		"| Spend | £1,460.50 | £1,500.00 | -2.6% |",
		"- **Possible duplicates** (warning): 2 clusters",
		"- Where did spending rise?",
	} {
		assert.Contains(t, md, want)
	}
}

func TestDashboardMarkdownOmitsEmptySections(t *testing.T) {
	md := dashboardMarkdown(&models.Payload{})

	assert.NotContains(t, md, "## Alerts")
	assert.NotContains(t, md, "## Insights")
	assert.NotContains(t, md, "## Against previous period")
}

func TestTaxMarkdown(t *testing.T) {
	md := taxMarkdown(&models.TaxReport{
		Range:       models.RangeView{Label: "Previous tax year 2024/25"},
		Tax:         models.TaxSummary{AnnualGrossIncome: 40000, TotalTax: 4486, Band: "basic", MarginalRate: 28},
		Obligations: []models.Obligation{{Title: "Self Assessment", DueDate: "2026-01-31", AmountDue: 100, Status: models.Scheduled}},
		Allowances:  []models.Allowance{models.NewAllowance("isa", "ISA allowance", 5000, 20000)},
	})

	assert.Contains(t, md, "# Previous tax year 2024/25")
	assert.Contains(t, md, "| Annual gross income | £40,000.00 |")
	assert.Contains(t, md, "| Marginal rate | 28% |")
	assert.Contains(t, md, "- Self Assessment, due 2026-01-31: £100.00 (scheduled)")
	assert.Contains(t, md, "- ISA allowance: £5,000.00 of £20,000.00 (25%)")
}

func TestWriteJSONQuery(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeJSON(&buf, samplePayload(), "$.accounting.metrics.income"))
	assert.Equal(t, "3000", strings.TrimSpace(buf.String()))

	buf.Reset()
	require.NoError(t, writeJSON(&buf, samplePayload(), "$.accounting.comparatives[*].key"))
	assert.JSONEq(t, `["income","spend"]`, buf.String())

	buf.Reset()
	require.NoError(t, writeJSON(&buf, samplePayload(), ""))
	assert.Contains(t, buf.String(), `"label": "Last month"`)

	assert.Error(t, writeJSON(&buf, samplePayload(), "$.nope"))
}

func TestRangeFlagsValidate(t *testing.T) {
	assert.NoError(t, (&rangeFlags{format: "json", query: "$.range"}).validate())
	assert.NoError(t, (&rangeFlags{format: "markdown"}).validate())
	assert.Error(t, (&rangeFlags{format: "yaml"}).validate())
	assert.Error(t, (&rangeFlags{format: "markdown", query: "$.range"}).validate())
}
