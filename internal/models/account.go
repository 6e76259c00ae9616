package models

import "math"

// AccountType classifies an account for net-worth and debt snapshots
type AccountType string

const (
	Cash       AccountType = "cash"
	Savings    AccountType = "savings"
	Investment AccountType = "investment"
	Asset      AccountType = "asset"
	Credit     AccountType = "credit"
	Loan       AccountType = "loan"
)

// AccountTypes lists every account type in display order
var AccountTypes = []AccountType{Cash, Savings, Investment, Asset, Credit, Loan}

// IsLiability reports whether balances of this type are owed rather than owned
func (t AccountType) IsLiability() bool {
	return t == Credit || t == Loan
}

// Valid reports whether t is a known account type
func (t AccountType) Valid() bool {
	for _, known := range AccountTypes {
		if t == known {
			return true
		}
	}
	return false
}

// Account is a balance snapshot for one account
type Account struct {
	ID      string      `json:"id,omitempty"`
	Name    string      `json:"name,omitempty"`
	Type    AccountType `json:"type"`
	Balance float64     `json:"balance"`
}

// SignedBalance returns the balance as a contribution to net worth.
// Liabilities count negatively whatever sign the provider used.
func (a Account) SignedBalance() float64 {
	if a.Type.IsLiability() {
		return -math.Abs(a.Balance)
	}
	return a.Balance
}
