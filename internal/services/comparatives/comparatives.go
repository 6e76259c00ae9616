// Package comparatives compares range metrics against the comparable previous range.
package comparatives

import (
	"math"

	"findash/internal/models"
)

// Snapshot holds the tracked metrics for one range
type Snapshot struct {
	Income          float64
	Spend           float64
	Essentials      float64
	Discretionary   float64
	SavingsCapacity float64
	HMRCBalance     float64
}

// NewSnapshot picks the tracked metrics out of a range's results
func NewSnapshot(m models.Metrics, hmrcNet float64) Snapshot {
	return Snapshot{
		Income:          m.Income,
		Spend:           m.Spend,
		Essentials:      m.Essentials,
		Discretionary:   m.Discretionary,
		SavingsCapacity: m.SavingsCapacity,
		HMRCBalance:     hmrcNet,
	}
}

// Compare builds one comparative per tracked metric in a fixed order
func Compare(current, previous Snapshot, mode models.DeltaMode) []models.Comparative {
	rows := []struct {
		key, label        string
		current, previous float64
	}{
		{"income", "Income", current.Income, previous.Income},
		{"spend", "Spend", current.Spend, previous.Spend},
		{"essentials", "Essentials", current.Essentials, previous.Essentials},
		{"discretionary", "Discretionary", current.Discretionary, previous.Discretionary},
		{"savingsCapacity", "Savings capacity", current.SavingsCapacity, previous.SavingsCapacity},
		{"hmrcBalance", "HMRC balance", current.HMRCBalance, previous.HMRCBalance},
	}

	out := make([]models.Comparative, 0, len(rows))
	for _, r := range rows {
		out = append(out, models.Comparative{
			Key:       r.key,
			Label:     r.label,
			Current:   r.current,
			Previous:  r.previous,
			Delta:     round2(Delta(r.current, r.previous, mode)),
			Mode:      mode,
			Direction: DirectionOf(r.current, r.previous),
		})
	}
	return out
}

// Delta expresses the change from previous to current in the given mode
func Delta(current, previous float64, mode models.DeltaMode) float64 {
	if mode == models.DeltaPercent {
		return PercentChange(current, previous)
	}
	return current - previous
}

// PercentChange calculates the percentage change between two values
func PercentChange(current, previous float64) float64 {
	if previous == 0 {
		if current == 0 {
			return 0
		}
		return 100
	}
	return ((current - previous) / math.Abs(previous)) * 100
}

// DirectionOf compares values at pence precision
func DirectionOf(current, previous float64) models.Direction {
	c, p := math.Round(current*100), math.Round(previous*100)
	switch {
	case c > p:
		return models.Up
	case c < p:
		return models.Down
	default:
		return models.Flat
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
