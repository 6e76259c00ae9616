package models

import "time"

// Tier is the subscription tier used for feature gating
type Tier string

const (
	TierFree    Tier = "free"
	TierPremium Tier = "premium"
)

// Preferences holds the user's stored display preferences
type Preferences struct {
	DeltaMode DeltaMode `json:"deltaMode,omitempty"`
}

// PlanItem is a wealth-plan asset or liability record
type PlanItem struct {
	Name                string  `json:"name"`
	Value               float64 `json:"value"`
	MonthlyContribution float64 `json:"monthlyContribution,omitempty"`
}

// WealthPlan holds assets and liabilities tracked outside bank accounts
type WealthPlan struct {
	Assets      []PlanItem `json:"assets"`
	Liabilities []PlanItem `json:"liabilities"`
}

// MonthlyContributions returns the recurring monthly contributions across the plan
func (w WealthPlan) MonthlyContributions() float64 {
	var total float64
	for _, a := range w.Assets {
		total += a.MonthlyContribution
	}
	for _, l := range w.Liabilities {
		total += l.MonthlyContribution
	}
	return total
}

// Profile is the per-user record supplied by the collector
type Profile struct {
	UserID      string      `json:"userId"`
	Tier        Tier        `json:"tier"`
	Preferences Preferences `json:"preferences"`
	WealthPlan  WealthPlan  `json:"wealthPlan"`
}

// UsageStats records how often a user computes their dashboard
type UsageStats struct {
	UserID       string    `json:"userId"`
	Views        int       `json:"views"`
	LastViewedAt time.Time `json:"lastViewedAt"`
	LastRangeKey string    `json:"lastRangeKey,omitempty"`
	LastEventID  string    `json:"lastEventId,omitempty"`
}
