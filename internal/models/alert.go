package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Alert type constants
const (
	AlertTypeHighRisk     = "HIGH_RISK"
	AlertTypeExpiringSoon = "EXPIRING_SOON"
)

// AlertEvent is an archived record of a position that matched an alert
// filter during a refresh cycle
type AlertEvent struct {
	ID              int             `json:"id"`
	Symbol          string          `json:"symbol"`
	OptionType      OptionType      `json:"option_type"`
	Strike          decimal.Decimal `json:"strike"`
	Expiry          time.Time       `json:"expiry"`
	SafetyMarginPct decimal.Decimal `json:"safety_margin_pct"`
	CurrentPrice    decimal.Decimal `json:"current_price"`
	AlertType       string          `json:"alert_type"`
	Message         string          `json:"message,omitempty"`
	TriggeredAt     time.Time       `json:"triggered_at"`
}
