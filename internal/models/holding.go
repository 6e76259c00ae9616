package models

import "time"

// Holding is a position with a quantity and a point-in-time price
type Holding struct {
	Symbol     string  `json:"symbol"`
	Qty        float64 `json:"qty"`
	AssetClass string  `json:"assetClass"`
	LastPrice  float64 `json:"lastPrice"`
}

// Value returns qty x price
func (h Holding) Value(price float64) float64 {
	return h.Qty * price
}

// PricePoint is one observation in a price history
type PricePoint struct {
	Date  time.Time `json:"date"`
	Price float64   `json:"price"`
}

// PriceSeries is a price history for one symbol, sorted ascending by date
type PriceSeries struct {
	Symbol string       `json:"symbol"`
	Data   []PricePoint `json:"data"`
}
