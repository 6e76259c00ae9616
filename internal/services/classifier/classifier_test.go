package classifier

import (
	"testing"

	"findash/internal/models"
)

func TestIsTaxPayment(t *testing.T) {
	c := Default()

	tests := []struct {
		name     string
		category string
		amount   float64
		want     bool
	}{
		{"hmrc outflow", "HMRC Self Assessment", -1200, true},
		{"paye", "PAYE", -300, true},
		{"case insensitive", "Income TAX", -50, true},
		{"inflow ignored", "HMRC", 200, false},
		{"unrelated", "Groceries", -40, false},
		{"description only", "Bills", -100, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx := models.Transaction{Category: tt.category, Amount: tt.amount, Description: "HMRC"}
			if got := c.IsTaxPayment(&tx); got != tt.want {
				t.Errorf("IsTaxPayment(%q, %v) = %v, want %v", tt.category, tt.amount, got, tt.want)
			}
		})
	}
}

func TestIsEssential(t *testing.T) {
	c := Default()

	for cat, want := range map[string]bool{
		"Rent":             true,
		"Food & Groceries": true,
		"council tax":      true,
		"  Childcare ":     true,
		"Eating Out":       false,
		"":                 false,
	} {
		tx := models.Transaction{Category: cat, Amount: -10}
		if got := c.IsEssential(&tx); got != want {
			t.Errorf("IsEssential(%q) = %v, want %v", cat, got, want)
		}
	}
}

func TestIncomeKind(t *testing.T) {
	c := Default()

	tests := []struct {
		category    string
		description string
		want        IncomeKind
	}{
		{"Salary", "ACME LTD", IncomeSalary},
		{"Income", "ACME LTD PAYROLL", IncomeSalary},
		{"Investments", "VWRL Dividend", IncomeDividend},
		{"Transfer", "From savings", IncomeNonTaxable},
		{"Shopping", "Amazon refund", IncomeNonTaxable},
		{"Income", "Freelance invoice 42", IncomeOther},
	}

	for _, tt := range tests {
		tx := models.Transaction{Category: tt.category, Description: tt.description, Amount: 100}
		if got := c.Income(&tx); got != tt.want {
			t.Errorf("Income(%q, %q) = %v, want %v", tt.category, tt.description, got, tt.want)
		}
	}
}

func TestContributionsMatchWholeWords(t *testing.T) {
	c := Default()

	tests := []struct {
		name        string
		category    string
		description string
		amount      float64
		isa         bool
		pension     bool
	}{
		{"isa by category", "ISA", "Monthly top-up", -500, true, false},
		{"isa in description", "Savings", "Stocks and Shares ISA", -250, true, false},
		{"visa is not isa", "Shopping", "VISA purchase", -20, false, false},
		{"pension", "Pension", "Workplace", -300, false, true},
		{"sipp", "Investing", "SIPP contribution", -100, false, true},
		{"inflow ignored", "ISA", "Withdrawal", 500, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx := models.Transaction{Category: tt.category, Description: tt.description, Amount: tt.amount}
			if got := c.IsISAContribution(&tx); got != tt.isa {
				t.Errorf("IsISAContribution = %v, want %v", got, tt.isa)
			}
			if got := c.IsPensionContribution(&tx); got != tt.pension {
				t.Errorf("IsPensionContribution = %v, want %v", got, tt.pension)
			}
		})
	}
}

func TestMergeKeepsDefaultsForEmptyTables(t *testing.T) {
	merged := DefaultRules().Merge(Rules{TaxPaymentKeywords: []string{"tax man"}})

	if len(merged.TaxPaymentKeywords) != 1 || merged.TaxPaymentKeywords[0] != "tax man" {
		t.Errorf("TaxPaymentKeywords = %v, want override", merged.TaxPaymentKeywords)
	}
	if len(merged.EssentialCategories) != len(DefaultRules().EssentialCategories) {
		t.Errorf("EssentialCategories should fall back to defaults")
	}

	c := New(merged)
	tx := models.Transaction{Category: "Tax Man", Amount: -10}
	if !c.IsTaxPayment(&tx) {
		t.Error("expected overridden keyword to match")
	}
}

func TestEmptyRulesMatchNothing(t *testing.T) {
	c := New(Rules{})
	tx := models.Transaction{Category: "ISA HMRC Rent", Description: "pension", Amount: -10}

	if c.IsTaxPayment(&tx) || c.IsEssential(&tx) || c.IsISAContribution(&tx) || c.IsPensionContribution(&tx) {
		t.Error("empty rules should not match")
	}
	if k := c.Income(&tx); k != IncomeOther {
		t.Errorf("Income = %v, want other", k)
	}
}
