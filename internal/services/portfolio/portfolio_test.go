package portfolio

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"findash/internal/models"
)

func d(y int, m time.Month, day int) time.Time {
	return time.Date(y, m, day, 0, 0, 0, 0, time.UTC)
}

func points(kv ...any) []models.PricePoint {
	var out []models.PricePoint
	for i := 0; i < len(kv); i += 2 {
		out = append(out, models.PricePoint{Date: kv[i].(time.Time), Price: kv[i+1].(float64)})
	}
	return out
}

func TestPriceOnOrBefore(t *testing.T) {
	series := points(
		d(2025, 1, 10), 100.0,
		d(2025, 2, 10), 110.0,
		d(2025, 2, 10), 111.0,
		d(2025, 3, 10), 120.0,
	)

	tests := []struct {
		name  string
		at    time.Time
		want  float64
		found bool
	}{
		{"before first", d(2025, 1, 9), 0, false},
		{"exact first", d(2025, 1, 10), 100, true},
		{"between", d(2025, 1, 31), 100, true},
		{"duplicate date takes last", d(2025, 2, 10), 111, true},
		{"after last", d(2026, 1, 1), 120, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := PriceOnOrBefore(series, tt.at)
			assert.Equal(t, tt.found, ok)
			assert.Equal(t, tt.want, got)
		})
	}

	_, ok := PriceOnOrBefore(nil, d(2025, 1, 1))
	assert.False(t, ok, "empty series has no price")
}

func TestNewIndexSortsAndNormalisesSymbols(t *testing.T) {
	idx := NewIndex([]models.PriceSeries{{
		Symbol: " vwrl ",
		Data:   points(d(2025, 3, 1), 3.0, d(2025, 1, 1), 1.0, d(2025, 2, 1), 2.0),
	}})

	price, ok := idx.Price("VWRL", d(2025, 2, 15))
	require.True(t, ok)
	assert.Equal(t, 2.0, price)
}

func TestMonthReferences(t *testing.T) {
	quarter := models.Range{Start: d(2025, 1, 1), End: d(2025, 4, 1)}
	refs := MonthReferences(quarter)
	require.Len(t, refs, 3)
	assert.Equal(t, "2025-01-31", refs[0].Format("2006-01-02"))
	assert.Equal(t, "2025-02-28", refs[1].Format("2006-01-02"))
	assert.Equal(t, "2025-03-31", refs[2].Format("2006-01-02"))

	partial := models.Range{Start: d(2025, 1, 15), End: time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)}
	refs = MonthReferences(partial)
	require.Len(t, refs, 3)
	assert.True(t, refs[2].Before(partial.End))
	assert.Equal(t, "2025-03-10", refs[2].Format("2006-01-02"))

	short := models.Range{Start: d(2025, 1, 5), End: d(2025, 1, 6)}
	assert.Len(t, MonthReferences(short), 1)

	empty := models.Range{Start: d(2025, 1, 5), End: d(2025, 1, 5)}
	assert.Len(t, MonthReferences(empty), 1)
}

func TestValueHoldingWithLatePricesContributesZero(t *testing.T) {
	holdings := []models.Holding{
		{Symbol: "AAA", Qty: 10, AssetClass: "Equity", LastPrice: 12},
		{Symbol: "BBB", Qty: 5, AssetClass: "Bond", LastPrice: 100},
	}
	idx := NewIndex([]models.PriceSeries{
		{Symbol: "AAA", Data: points(d(2024, 12, 1), 10.0, d(2025, 2, 15), 12.0)},
		{Symbol: "BBB", Data: points(d(2025, 2, 1), 100.0)},
	})

	v := Value(holdings, idx, models.Range{Start: d(2025, 1, 1), End: d(2025, 3, 1)})

	require.Len(t, v.Series, 2)
	assert.Equal(t, "2025-01", v.Series[0].Month)
	assert.Equal(t, 100.0, v.Series[0].Value, "BBB has no January price")
	assert.Equal(t, 620.0, v.Series[1].Value)
	assert.Equal(t, 2, v.Holdings)
	assert.Equal(t, 520.0, v.YTDReturn)
	assert.Equal(t, 620.0, v.Value)
}

func TestAllocate(t *testing.T) {
	holdings := []models.Holding{
		{Symbol: "AAA", Qty: 10, AssetClass: "Equity", LastPrice: 30},
		{Symbol: "BBB", Qty: 10, AssetClass: "Equity", LastPrice: 30},
		{Symbol: "CCC", Qty: 1, AssetClass: "", LastPrice: 200},
	}
	idx := NewIndex([]models.PriceSeries{
		{Symbol: "AAA", Data: points(d(2025, 1, 1), 20.0)},
	})

	alloc, total := Allocate(holdings, idx, d(2025, 6, 1))
	assert.Equal(t, 700.0, total)
	require.Len(t, alloc, 2)
	assert.Equal(t, "Equity", alloc[0].AssetClass)
	assert.Equal(t, 500.0, alloc[0].Value)
	assert.Equal(t, 71.43, alloc[0].Percent)
	assert.Equal(t, DefaultAssetClass, alloc[1].AssetClass)
	assert.Equal(t, 28.57, alloc[1].Percent)
}

func TestAllocateEmptyTotal(t *testing.T) {
	alloc, total := Allocate([]models.Holding{{Symbol: "X", Qty: 0, AssetClass: "Cash"}}, Index{}, d(2025, 1, 1))
	assert.Equal(t, 0.0, total)
	require.Len(t, alloc, 1)
	assert.Equal(t, 0.0, alloc[0].Percent)

	alloc, total = Allocate(nil, Index{}, d(2025, 1, 1))
	assert.Equal(t, 0.0, total)
	assert.Empty(t, alloc)
}

func TestYTDReturn(t *testing.T) {
	assert.Equal(t, 0.0, YTDReturn(nil))
	assert.Equal(t, 0.0, YTDReturn([]models.ValuationPoint{{Value: 100}}))
	assert.Equal(t, 0.0, YTDReturn([]models.ValuationPoint{{Value: 0}, {Value: 100}}))
	assert.Equal(t, 10.0, YTDReturn([]models.ValuationPoint{{Value: 100}, {Value: 90}, {Value: 110}}))
	assert.Equal(t, -25.0, YTDReturn([]models.ValuationPoint{{Value: 200}, {Value: 150}}))
}
