package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PriceSnapshot maps symbols to their last-known prices for one
// processing cycle. A zero price is a "no data" sentinel, never a real
// quote; every symbol that was requested has an entry.
type PriceSnapshot struct {
	Prices    map[string]decimal.Decimal `json:"prices"`
	FetchedAt time.Time                  `json:"fetched_at"`
}

// Price returns the snapshot price for symbol, or the zero sentinel if
// the symbol was never requested.
func (s PriceSnapshot) Price(symbol string) decimal.Decimal {
	return s.Prices[symbol]
}
