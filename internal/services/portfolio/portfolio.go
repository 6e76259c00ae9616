// Package portfolio values holdings over a range from historical prices.
package portfolio

import (
	"math"
	"sort"
	"strings"
	"time"

	"findash/internal/models"
)

// DefaultAssetClass buckets holdings without an asset class
const DefaultAssetClass = "Other"

// PriceOnOrBefore returns the most recent price at or before at. The series
// must be sorted ascending by date; false means no such price exists.
func PriceOnOrBefore(points []models.PricePoint, at time.Time) (float64, bool) {
	// first index strictly after at
	i := sort.Search(len(points), func(i int) bool {
		return points[i].Date.After(at)
	})
	if i == 0 {
		return 0, false
	}
	return points[i-1].Price, true
}

// Index holds price series by upper-cased symbol, sorted ascending
type Index map[string][]models.PricePoint

// NewIndex sorts copies of each series so lookups can binary search
func NewIndex(series []models.PriceSeries) Index {
	idx := make(Index, len(series))
	for _, s := range series {
		pts := make([]models.PricePoint, len(s.Data))
		copy(pts, s.Data)
		sort.SliceStable(pts, func(i, j int) bool { return pts[i].Date.Before(pts[j].Date) })
		idx[symbolKey(s.Symbol)] = pts
	}
	return idx
}

// Price looks up a symbol's price at or before at
func (idx Index) Price(symbol string, at time.Time) (float64, bool) {
	return PriceOnOrBefore(idx[symbolKey(symbol)], at)
}

// Valuation is the portfolio block for one range
type Valuation struct {
	Series     []models.ValuationPoint
	Allocation []models.AllocationSlice
	Value      float64
	YTDReturn  float64
	Holdings   int
}

// Investments renders the valuation for the payload
func (v *Valuation) Investments() models.Investments {
	return models.Investments{
		Value:     v.Value,
		YTDReturn: v.YTDReturn,
		Holdings:  v.Holdings,
		Series:    v.Series,
	}
}

// Value builds the monthly series, allocation and year-to-date return
func Value(holdings []models.Holding, idx Index, r models.Range) *Valuation {
	refs := MonthReferences(r)
	series := make([]models.ValuationPoint, 0, len(refs))
	for _, ref := range refs {
		var total float64
		for _, h := range holdings {
			if price, ok := idx.Price(h.Symbol, ref); ok {
				total += h.Value(price)
			}
		}
		series = append(series, models.ValuationPoint{
			Month: ref.Format("2006-01"),
			Date:  ref.Format(time.RFC3339),
			Value: round2(total),
		})
	}

	alloc, value := Allocate(holdings, idx, lastInstant(r))
	return &Valuation{
		Series:     series,
		Allocation: alloc,
		Value:      value,
		YTDReturn:  YTDReturn(series),
		Holdings:   len(holdings),
	}
}

// MonthReferences returns one reference instant per calendar month touched by
// [r.Start, r.End): the last instant of the month clipped to the range end.
// At least one reference is returned.
func MonthReferences(r models.Range) []time.Time {
	last := lastInstant(r)
	loc := r.Start.Location()
	month := time.Date(r.Start.Year(), r.Start.Month(), 1, 0, 0, 0, 0, loc)

	var refs []time.Time
	for {
		ref := month.AddDate(0, 1, 0).Add(-time.Nanosecond)
		if ref.After(last) {
			ref = last
		}
		refs = append(refs, ref)
		month = month.AddDate(0, 1, 0)
		if month.After(last) {
			break
		}
	}
	return refs
}

// Allocate buckets holdings by asset class valued at the latest price known at
// at, falling back to the holding's last price. Percentages are 0 when the
// total is 0.
func Allocate(holdings []models.Holding, idx Index, at time.Time) ([]models.AllocationSlice, float64) {
	byClass := make(map[string]float64)
	var total float64
	for _, h := range holdings {
		price, ok := idx.Price(h.Symbol, at)
		if !ok {
			price = h.LastPrice
		}
		v := h.Value(price)
		class := strings.TrimSpace(h.AssetClass)
		if class == "" {
			class = DefaultAssetClass
		}
		byClass[class] += v
		total += v
	}

	out := make([]models.AllocationSlice, 0, len(byClass))
	for class, v := range byClass {
		s := models.AllocationSlice{AssetClass: class, Value: round2(v)}
		if total != 0 {
			s.Percent = round2(v / total * 100)
		}
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Value != out[j].Value {
			return out[i].Value > out[j].Value
		}
		return out[i].AssetClass < out[j].AssetClass
	})
	return out, round2(total)
}

// YTDReturn is (last/first − 1) × 100, or 0 with fewer than two points or a
// zero starting value.
func YTDReturn(series []models.ValuationPoint) float64 {
	if len(series) < 2 || series[0].Value == 0 {
		return 0
	}
	return round2((series[len(series)-1].Value/series[0].Value - 1) * 100)
}

func lastInstant(r models.Range) time.Time {
	if !r.End.After(r.Start) {
		return r.Start
	}
	return r.End.Add(-time.Nanosecond)
}

func symbolKey(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
