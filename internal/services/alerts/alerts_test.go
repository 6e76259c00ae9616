package alerts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"findash/internal/models"
)

func ids(alerts []models.Alert) []string {
	out := make([]string, 0, len(alerts))
	for _, a := range alerts {
		out = append(out, a.ID)
	}
	return out
}

func TestGenerateQuiet(t *testing.T) {
	got := Generate(Input{
		MonthlySavingsCapacity: 100,
		Allowances:             []models.Allowance{models.NewAllowance("isa", "ISA allowance", 18000, 20000)},
		SpendByCategory:        []models.CategorySummary{{Label: "Rent", Share: 0.35}},
		HMRC:                   models.HMRCBalance{Net: 0, Label: "Settled"},
	})
	assert.NotNil(t, got)
	assert.Empty(t, got, "thresholds are strict inequalities")
}

func TestGenerateAll(t *testing.T) {
	got := Generate(Input{
		Duplicates:             []models.DuplicateCluster{{Count: 2}},
		MonthlySavingsCapacity: -250,
		Allowances: []models.Allowance{
			models.NewAllowance("personal", "Personal allowance", 12570, 12570),
			models.NewAllowance("pension", "Pension annual allowance", 1000, 60000),
			models.NewAllowance("empty", "Zero", 100, 0),
		},
		SpendByCategory: []models.CategorySummary{{Label: "Rent", Share: 0.6}, {Label: "Food", Share: 0.4}},
		HMRC:            models.HMRCBalance{Net: 120, Label: "Owe HMRC £120.00"},
	})

	assert.Equal(t, []string{
		"duplicates", "negative-savings", "allowance-personal", "spend-concentration", "hmrc-balance",
	}, ids(got))

	byID := map[string]models.Alert{}
	for _, a := range got {
		byID[a.ID] = a
	}
	assert.Equal(t, models.SeverityWarning, byID["duplicates"].Severity)
	assert.Equal(t, models.SeverityDanger, byID["negative-savings"].Severity)
	assert.Contains(t, byID["negative-savings"].Body, "-£250.00")
	assert.Equal(t, models.SeverityWarning, byID["allowance-personal"].Severity)
	assert.Equal(t, models.SeverityInfo, byID["spend-concentration"].Severity)
	assert.Contains(t, byID["spend-concentration"].Title, "Rent")
	assert.Equal(t, models.SeverityDanger, byID["hmrc-balance"].Severity)
	assert.Contains(t, byID["hmrc-balance"].Body, "Owe HMRC £120.00")
}

func TestGenerateIsDeterministic(t *testing.T) {
	in := Input{
		Duplicates:             []models.DuplicateCluster{{Count: 3}},
		MonthlySavingsCapacity: -1,
	}
	assert.Equal(t, Generate(in), Generate(in))
}

func TestInsightsTakesFirstThree(t *testing.T) {
	alerts := []models.Alert{
		{ID: "a", Title: "A", Body: "a."},
		{ID: "b", Title: "B", Body: "b."},
		{ID: "c", Title: "C", Body: "c.", Severity: models.SeverityDanger},
		{ID: "d", Title: "D", Body: "d."},
	}

	got := Insights(alerts)
	require.Len(t, got, MaxInsights)
	assert.Equal(t, "a", got[0].ID)
	assert.Equal(t, "c", got[2].ID)
	assert.Equal(t, models.SeverityDanger, got[2].Severity)
	assert.Contains(t, got[0].Prompt, "A: a.")

	assert.Len(t, Insights(alerts[:1]), 1)
	assert.Empty(t, Insights(nil))
}
