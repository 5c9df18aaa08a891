package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rcalvert/option-tracker/internal/models"
)

// CreateAlertEvent records a triggered alert
func (db *DB) CreateAlertEvent(e *models.AlertEvent) error {
	query := `
		INSERT INTO alert_events (
			symbol, option_type, strike, expiry, safety_margin_pct,
			current_price, alert_type, message, triggered_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`
	if e.TriggeredAt.IsZero() {
		e.TriggeredAt = time.Now()
	}
	err := db.conn.QueryRow(query,
		e.Symbol, e.OptionType, e.Strike, e.Expiry, e.SafetyMarginPct,
		e.CurrentPrice, e.AlertType, nullString(e.Message), e.TriggeredAt,
	).Scan(&e.ID)

	if err != nil {
		return fmt.Errorf("failed to create alert event: %w", err)
	}
	return nil
}

// GetAlertEventByID retrieves an alert event by ID
func (db *DB) GetAlertEventByID(id int) (*models.AlertEvent, error) {
	query := `
		SELECT id, symbol, option_type, strike, expiry, safety_margin_pct,
		       current_price, alert_type, message, triggered_at
		FROM alert_events
		WHERE id = $1
	`
	var e models.AlertEvent
	var marginPct, currentPrice sql.NullString
	var message sql.NullString

	err := db.conn.QueryRow(query, id).Scan(
		&e.ID, &e.Symbol, &e.OptionType, &e.Strike, &e.Expiry, &marginPct,
		&currentPrice, &e.AlertType, &message, &e.TriggeredAt,
	)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("alert event not found: %d", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get alert event: %w", err)
	}

	applyNullFields(&e, marginPct, currentPrice, message)
	return &e, nil
}

// GetAlertEventsBySymbol retrieves recent alert events for a symbol
func (db *DB) GetAlertEventsBySymbol(symbol string, limit int) ([]*models.AlertEvent, error) {
	query := `
		SELECT id, symbol, option_type, strike, expiry, safety_margin_pct,
		       current_price, alert_type, message, triggered_at
		FROM alert_events
		WHERE symbol = $1
		ORDER BY triggered_at DESC
		LIMIT $2
	`
	return db.scanAlertEvents(db.conn.Query(query, symbol, limit))
}

// GetRecentAlertEvents retrieves recent alert events across all symbols
func (db *DB) GetRecentAlertEvents(limit int) ([]*models.AlertEvent, error) {
	query := `
		SELECT id, symbol, option_type, strike, expiry, safety_margin_pct,
		       current_price, alert_type, message, triggered_at
		FROM alert_events
		ORDER BY triggered_at DESC
		LIMIT $1
	`
	return db.scanAlertEvents(db.conn.Query(query, limit))
}

func (db *DB) scanAlertEvents(rows *sql.Rows, err error) ([]*models.AlertEvent, error) {
	if err != nil {
		return nil, fmt.Errorf("failed to query alert events: %w", err)
	}
	defer rows.Close()

	var events []*models.AlertEvent
	for rows.Next() {
		var e models.AlertEvent
		var marginPct, currentPrice sql.NullString
		var message sql.NullString

		err := rows.Scan(
			&e.ID, &e.Symbol, &e.OptionType, &e.Strike, &e.Expiry, &marginPct,
			&currentPrice, &e.AlertType, &message, &e.TriggeredAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan alert event: %w", err)
		}

		applyNullFields(&e, marginPct, currentPrice, message)
		events = append(events, &e)
	}

	return events, nil
}

// DeleteAlertEventsOlderThan removes alert events older than a specified date
func (db *DB) DeleteAlertEventsOlderThan(date time.Time) (int64, error) {
	query := `DELETE FROM alert_events WHERE triggered_at < $1`
	result, err := db.conn.Exec(query, date)
	if err != nil {
		return 0, fmt.Errorf("failed to delete old alert events: %w", err)
	}
	return result.RowsAffected()
}

func applyNullFields(e *models.AlertEvent, marginPct, currentPrice, message sql.NullString) {
	if marginPct.Valid {
		e.SafetyMarginPct, _ = decimal.NewFromString(marginPct.String)
	}
	if currentPrice.Valid {
		e.CurrentPrice, _ = decimal.NewFromString(currentPrice.String)
	}
	if message.Valid {
		e.Message = message.String
	}
}

func nullString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
