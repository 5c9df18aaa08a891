package risk

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/rcalvert/option-tracker/internal/models"
)

// ExpiringWithin returns the positions whose expiry falls on or before
// today plus the window, preserving input order. The input is never
// mutated; a position may also match HighRisk.
func ExpiringWithin(positions []models.EnrichedPosition, today time.Time, days int) []models.EnrichedPosition {
	horizon := models.DateOnly(today).AddDate(0, 0, days)
	matches := make([]models.EnrichedPosition, 0)
	for _, p := range positions {
		if !p.Expiry.After(horizon) {
			matches = append(matches, p)
		}
	}
	return matches
}

// HighRisk returns the positions whose safety margin sits strictly
// below the threshold, preserving input order.
func HighRisk(positions []models.EnrichedPosition, threshold decimal.Decimal) []models.EnrichedPosition {
	matches := make([]models.EnrichedPosition, 0)
	for _, p := range positions {
		if p.SafetyMarginPct.LessThan(threshold) {
			matches = append(matches, p)
		}
	}
	return matches
}
