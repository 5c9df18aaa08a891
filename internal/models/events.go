package models

import "time"

// Event type constants for the position event stream
const (
	EventPositionAdded    = "POSITION_ADDED"
	EventPositionsDeleted = "POSITIONS_DELETED"
	EventRiskAlert        = "RISK_ALERT"
	EventOptionFill       = "OPTION_FILL"
)

// PositionEvent is published on position lifecycle changes and risk alerts
type PositionEvent struct {
	EventType string            `json:"event_type"`
	Symbol    string            `json:"symbol,omitempty"`
	Position  *Position         `json:"position,omitempty"`
	Alert     *EnrichedPosition `json:"alert,omitempty"`
	Addresses []int             `json:"addresses,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
}

// FillEvent is an inbound option fill from an upstream broker feed.
// Numeric fields arrive as text and are validated before the fill is
// appended to the position store.
type FillEvent struct {
	EventType string   `json:"event_type"`
	Source    string   `json:"source"`
	Data      FillData `json:"data"`
}

// FillData carries the raw fill fields
type FillData struct {
	Symbol   string  `json:"symbol"`
	Type     string  `json:"type"`
	Strike   string  `json:"strike"`
	Expiry   string  `json:"expiry"`
	Quantity string  `json:"quantity"`
	Premium  string  `json:"premium,omitempty"`
	FilledAt *string `json:"filled_at,omitempty"`
}
