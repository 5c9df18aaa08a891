package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// OptionType identifies the contract side of a position
type OptionType string

// Option type constants, matching the Type column of the backing sheet
const (
	OptionTypePut  OptionType = "Put"
	OptionTypeCall OptionType = "Call"
)

// Valid reports whether t is a known option type
func (t OptionType) Valid() bool {
	return t == OptionTypePut || t == OptionTypeCall
}

// ContractMultiplier is the standard equity-option contract multiplier
var ContractMultiplier = decimal.NewFromInt(100)

// Position represents one option contract loaded from the backing sheet
type Position struct {
	Symbol    string          `json:"symbol"`
	Type      OptionType      `json:"type"`
	Strike    decimal.Decimal `json:"strike"`
	Expiry    time.Time       `json:"expiry"`
	Quantity  int64           `json:"quantity"` // negative = short/sold
	EntryDate time.Time       `json:"entry_date"`
	Premium   decimal.Decimal `json:"premium,omitempty"`

	// RowAddress is the 1-based row of this record in the backing sheet
	// (the header occupies address 1). It is only valid for the processing
	// cycle that loaded it and is used solely for deletion.
	RowAddress int `json:"row_address"`
}

// EnrichedPosition is a Position plus the market data and risk fields
// derived for one processing cycle. Nothing here is persisted.
type EnrichedPosition struct {
	Position
	CurrentPrice    decimal.Decimal `json:"current_price"` // zero means unknown
	SafetyMarginPct decimal.Decimal `json:"safety_margin_pct"`
	Notional        decimal.Decimal `json:"notional"`
	ITM             bool            `json:"itm"`
	DaysToExpiry    int             `json:"days_to_expiry"`
}

// DateOnly truncates t to a calendar date at UTC midnight
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
