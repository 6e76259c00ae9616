package classifier

import (
	"regexp"
	"strings"

	"findash/internal/models"
)

// Rules are the keyword and category lookup tables that drive classification.
// They are data, loaded from rules.json when present.
type Rules struct {
	TaxPaymentKeywords  []string `json:"taxPaymentKeywords"`
	EssentialCategories []string `json:"essentialCategories"`
	DividendKeywords    []string `json:"dividendKeywords"`
	SalaryKeywords      []string `json:"salaryKeywords"`
	NonTaxableKeywords  []string `json:"nonTaxableKeywords"`
	ISAKeywords         []string `json:"isaKeywords"`
	PensionKeywords     []string `json:"pensionKeywords"`
}

// DefaultRules returns the built-in UK tables
func DefaultRules() Rules {
	return Rules{
		TaxPaymentKeywords: []string{
			"hmrc", "self assessment", "paye",
			"income tax", "national insurance", "tax payment",
		},
		EssentialCategories: []string{
			"rent", "mortgage", "rent/mortgage",
			"utilities", "insurance",
			"food & groceries", "groceries", "food",
			"transport", "council tax", "childcare",
		},
		DividendKeywords: []string{"dividend"},
		SalaryKeywords: []string{
			"salary", "payroll", "wages", "paycheck",
			"net pay", "bonus", "employer",
		},
		NonTaxableKeywords: []string{
			"transfer", "refund", "cashback", "cash back",
			"reimbursement", "rebate",
		},
		ISAKeywords:     []string{"isa", "lisa"},
		PensionKeywords: []string{"pension", "sipp"},
	}
}

// Merge returns r with every non-empty table of over replacing r's
func (r Rules) Merge(over Rules) Rules {
	pick := func(base, o []string) []string {
		if len(o) > 0 {
			return o
		}
		return base
	}
	return Rules{
		TaxPaymentKeywords:  pick(r.TaxPaymentKeywords, over.TaxPaymentKeywords),
		EssentialCategories: pick(r.EssentialCategories, over.EssentialCategories),
		DividendKeywords:    pick(r.DividendKeywords, over.DividendKeywords),
		SalaryKeywords:      pick(r.SalaryKeywords, over.SalaryKeywords),
		NonTaxableKeywords:  pick(r.NonTaxableKeywords, over.NonTaxableKeywords),
		ISAKeywords:         pick(r.ISAKeywords, over.ISAKeywords),
		PensionKeywords:     pick(r.PensionKeywords, over.PensionKeywords),
	}
}

// IncomeKind is the tax treatment of an inflow
type IncomeKind int

const (
	IncomeOther IncomeKind = iota
	IncomeSalary
	IncomeDividend
	IncomeNonTaxable
)

func (k IncomeKind) String() string {
	switch k {
	case IncomeSalary:
		return "salary"
	case IncomeDividend:
		return "dividend"
	case IncomeNonTaxable:
		return "non-taxable"
	default:
		return "other"
	}
}

// Classifier applies a compiled set of Rules to transactions
type Classifier struct {
	taxPayment []string
	essential  map[string]bool
	dividend   []string
	salary     []string
	nonTaxable []string
	isa        *regexp.Regexp
	pension    *regexp.Regexp
}

// New compiles rules into a Classifier
func New(rules Rules) *Classifier {
	c := &Classifier{
		taxPayment: lowerAll(rules.TaxPaymentKeywords),
		essential:  make(map[string]bool, len(rules.EssentialCategories)),
		dividend:   lowerAll(rules.DividendKeywords),
		salary:     lowerAll(rules.SalaryKeywords),
		nonTaxable: lowerAll(rules.NonTaxableKeywords),
		isa:        wordPattern(rules.ISAKeywords),
		pension:    wordPattern(rules.PensionKeywords),
	}
	for _, cat := range lowerAll(rules.EssentialCategories) {
		c.essential[cat] = true
	}
	return c
}

// Default is a Classifier over DefaultRules
func Default() *Classifier {
	return New(DefaultRules())
}

// IsTaxPayment reports whether t is an outflow whose category names a tax payment
func (c *Classifier) IsTaxPayment(t *models.Transaction) bool {
	if !t.IsSpend() {
		return false
	}
	return containsAny(strings.ToLower(t.Category), c.taxPayment)
}

// IsEssential reports whether the category is on the essential allow-list
func (c *Classifier) IsEssential(t *models.Transaction) bool {
	return c.essential[t.CategoryKey()]
}

// Income classifies an inflow. Non-taxable keywords win over everything else.
func (c *Classifier) Income(t *models.Transaction) IncomeKind {
	text := strings.ToLower(t.Category + " " + t.Description)
	switch {
	case containsAny(text, c.nonTaxable):
		return IncomeNonTaxable
	case containsAny(text, c.dividend):
		return IncomeDividend
	case containsAny(text, c.salary):
		return IncomeSalary
	default:
		return IncomeOther
	}
}

// IsISAContribution reports whether an outflow is paid into an ISA
func (c *Classifier) IsISAContribution(t *models.Transaction) bool {
	return t.IsSpend() && matches(c.isa, t)
}

// IsPensionContribution reports whether an outflow is paid into a pension
func (c *Classifier) IsPensionContribution(t *models.Transaction) bool {
	return t.IsSpend() && matches(c.pension, t)
}

func matches(re *regexp.Regexp, t *models.Transaction) bool {
	if re == nil {
		return false
	}
	return re.MatchString(t.Category) || re.MatchString(t.Description)
}

// wordPattern builds a case-insensitive whole-word alternation, nil when empty
func wordPattern(keywords []string) *regexp.Regexp {
	var quoted []string
	for _, kw := range lowerAll(keywords) {
		quoted = append(quoted, regexp.QuoteMeta(kw))
	}
	if len(quoted) == 0 {
		return nil
	}
	return regexp.MustCompile(`(?i)\b(?:` + strings.Join(quoted, "|") + `)\b`)
}

func lowerAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.ToLower(strings.TrimSpace(s))
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

// containsAny checks if text contains any of the keywords
func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}
