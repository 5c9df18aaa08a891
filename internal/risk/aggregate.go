package risk

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rcalvert/option-tracker/internal/models"
)

const monthLayout = "2006-01"

// ExposureRow is one expiry-month / option-type line of the pivot.
// Cells are keyed by bucket label and always carry every bucket,
// zero-filled.
type ExposureRow struct {
	Month string                     `json:"month"` // "2026-09"
	Type  models.OptionType          `json:"type,omitempty"`
	Cells map[string]decimal.Decimal `json:"cells"`
	Total decimal.Decimal            `json:"total"`
}

// Exposure is the month x bucket notional pivot. Buckets holds the
// column order; GrandTotal sums every row.
type Exposure struct {
	Buckets    []string      `json:"buckets"`
	Rows       []ExposureRow `json:"rows"`
	GrandTotal ExposureRow   `json:"grand_total"`
}

// BuildExposure rolls up notional by (expiry month, option type) and
// safety-margin bucket. Rows are ordered by month ascending with puts
// before calls; columns follow the canonical bucket order.
func BuildExposure(positions []models.EnrichedPosition, cfg BucketConfig) Exposure {
	labels := cfg.Labels()

	type groupKey struct {
		month string
		typ   models.OptionType
	}
	groups := make(map[groupKey]map[string]decimal.Decimal)
	for _, p := range positions {
		key := groupKey{month: p.Expiry.Format(monthLayout), typ: p.Type}
		cells, ok := groups[key]
		if !ok {
			cells = zeroCells(labels)
			groups[key] = cells
		}
		bucket := cfg.Assign(p.SafetyMarginPct)
		cells[bucket] = cells[bucket].Add(p.Notional)
	}

	keys := make([]groupKey, 0, len(groups))
	for key := range groups {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].month != keys[j].month {
			return keys[i].month < keys[j].month
		}
		return typeOrder(keys[i].typ) < typeOrder(keys[j].typ)
	})

	exposure := Exposure{
		Buckets: labels,
		Rows:    make([]ExposureRow, 0, len(keys)),
		GrandTotal: ExposureRow{
			Month: "total",
			Cells: zeroCells(labels),
		},
	}
	for _, key := range keys {
		row := ExposureRow{
			Month: key.month,
			Type:  key.typ,
			Cells: groups[key],
		}
		for _, label := range labels {
			row.Total = row.Total.Add(row.Cells[label])
			exposure.GrandTotal.Cells[label] = exposure.GrandTotal.Cells[label].Add(row.Cells[label])
		}
		exposure.GrandTotal.Total = exposure.GrandTotal.Total.Add(row.Total)
		exposure.Rows = append(exposure.Rows, row)
	}
	return exposure
}

func zeroCells(labels []string) map[string]decimal.Decimal {
	cells := make(map[string]decimal.Decimal, len(labels))
	for _, label := range labels {
		cells[label] = decimal.Zero
	}
	return cells
}

func typeOrder(t models.OptionType) int {
	if t == models.OptionTypePut {
		return 0
	}
	return 1
}

// Summary holds the portfolio-level KPI rollup
type Summary struct {
	TotalPositions int `json:"total_positions"`
	PutCount       int `json:"put_count"`
	CallCount      int `json:"call_count"`

	TotalNotional decimal.Decimal `json:"total_notional"`
	PutNotional   decimal.Decimal `json:"put_notional"`
	CallNotional  decimal.Decimal `json:"call_notional"`

	LowMarginCount int `json:"low_margin_count"`
	LowMarginPuts  int `json:"low_margin_puts"`
	LowMarginCalls int `json:"low_margin_calls"`

	ExpiringCount int `json:"expiring_count"`
	ExpiringPuts  int `json:"expiring_puts"`
	ExpiringCalls int `json:"expiring_calls"`
}

// Summarize computes the KPI rollup over the enriched set. Every
// counter is a plain sum, so the result is independent of input order.
func Summarize(positions []models.EnrichedPosition, today time.Time, marginThreshold decimal.Decimal, expiryWindowDays int) Summary {
	s := Summary{
		TotalNotional: decimal.Zero,
		PutNotional:   decimal.Zero,
		CallNotional:  decimal.Zero,
	}
	horizon := models.DateOnly(today).AddDate(0, 0, expiryWindowDays)

	for _, p := range positions {
		s.TotalPositions++
		s.TotalNotional = s.TotalNotional.Add(p.Notional)

		isPut := p.Type == models.OptionTypePut
		if isPut {
			s.PutCount++
			s.PutNotional = s.PutNotional.Add(p.Notional)
		} else {
			s.CallCount++
			s.CallNotional = s.CallNotional.Add(p.Notional)
		}

		if p.SafetyMarginPct.LessThan(marginThreshold) {
			s.LowMarginCount++
			if isPut {
				s.LowMarginPuts++
			} else {
				s.LowMarginCalls++
			}
		}

		if !p.Expiry.After(horizon) {
			s.ExpiringCount++
			if isPut {
				s.ExpiringPuts++
			} else {
				s.ExpiringCalls++
			}
		}
	}
	return s
}
