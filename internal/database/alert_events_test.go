package database

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rcalvert/option-tracker/internal/models"
)

func sampleAlertEvent(symbol string) *models.AlertEvent {
	return &models.AlertEvent{
		Symbol:          symbol,
		OptionType:      models.OptionTypePut,
		Strike:          decimal.NewFromFloat(180.50),
		Expiry:          time.Date(2026, 10, 16, 0, 0, 0, 0, time.UTC),
		SafetyMarginPct: decimal.NewFromFloat(-4.25),
		CurrentPrice:    decimal.NewFromFloat(173.12),
		AlertType:       models.AlertTypeHighRisk,
		Message:         "safety margin below threshold",
	}
}

func TestAlertEventsRepository(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	testDB := SetupTestDB(t)
	defer testDB.Cleanup(t)

	t.Run("CreateAlertEvent assigns id and timestamp", func(t *testing.T) {
		testDB.TruncateAll(t)

		event := sampleAlertEvent("AAPL")
		err := testDB.CreateAlertEvent(event)
		require.NoError(t, err)
		assert.NotZero(t, event.ID)
		assert.False(t, event.TriggeredAt.IsZero())
	})

	t.Run("GetAlertEventByID round trips all fields", func(t *testing.T) {
		testDB.TruncateAll(t)

		event := sampleAlertEvent("AAPL")
		require.NoError(t, testDB.CreateAlertEvent(event))

		retrieved, err := testDB.GetAlertEventByID(event.ID)
		require.NoError(t, err)
		assert.Equal(t, "AAPL", retrieved.Symbol)
		assert.Equal(t, models.OptionTypePut, retrieved.OptionType)
		assert.True(t, decimal.NewFromFloat(180.50).Equal(retrieved.Strike))
		assert.True(t, decimal.NewFromFloat(-4.25).Equal(retrieved.SafetyMarginPct))
		assert.True(t, decimal.NewFromFloat(173.12).Equal(retrieved.CurrentPrice))
		assert.Equal(t, models.AlertTypeHighRisk, retrieved.AlertType)
		assert.Equal(t, "safety margin below threshold", retrieved.Message)
	})

	t.Run("GetAlertEventByID returns error for non-existent ID", func(t *testing.T) {
		testDB.TruncateAll(t)

		_, err := testDB.GetAlertEventByID(99999)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not found")
	})

	t.Run("GetAlertEventsBySymbol filters and limits", func(t *testing.T) {
		testDB.TruncateAll(t)

		for i := 0; i < 3; i++ {
			require.NoError(t, testDB.CreateAlertEvent(sampleAlertEvent("AAPL")))
		}
		require.NoError(t, testDB.CreateAlertEvent(sampleAlertEvent("MSFT")))

		events, err := testDB.GetAlertEventsBySymbol("AAPL", 2)
		require.NoError(t, err)
		assert.Len(t, events, 2)
		for _, e := range events {
			assert.Equal(t, "AAPL", e.Symbol)
		}
	})

	t.Run("GetRecentAlertEvents orders newest first", func(t *testing.T) {
		testDB.TruncateAll(t)

		older := sampleAlertEvent("AAPL")
		older.TriggeredAt = time.Now().Add(-time.Hour)
		require.NoError(t, testDB.CreateAlertEvent(older))

		newer := sampleAlertEvent("MSFT")
		require.NoError(t, testDB.CreateAlertEvent(newer))

		events, err := testDB.GetRecentAlertEvents(10)
		require.NoError(t, err)
		require.Len(t, events, 2)
		assert.Equal(t, "MSFT", events[0].Symbol)
		assert.Equal(t, "AAPL", events[1].Symbol)
	})

	t.Run("empty message round trips as empty string", func(t *testing.T) {
		testDB.TruncateAll(t)

		event := sampleAlertEvent("AAPL")
		event.Message = ""
		require.NoError(t, testDB.CreateAlertEvent(event))

		retrieved, err := testDB.GetAlertEventByID(event.ID)
		require.NoError(t, err)
		assert.Empty(t, retrieved.Message)
	})

	t.Run("DeleteAlertEventsOlderThan prunes history", func(t *testing.T) {
		testDB.TruncateAll(t)

		old := sampleAlertEvent("AAPL")
		old.TriggeredAt = time.Now().Add(-48 * time.Hour)
		require.NoError(t, testDB.CreateAlertEvent(old))
		require.NoError(t, testDB.CreateAlertEvent(sampleAlertEvent("MSFT")))

		deleted, err := testDB.DeleteAlertEventsOlderThan(time.Now().Add(-24 * time.Hour))
		require.NoError(t, err)
		assert.Equal(t, int64(1), deleted)

		remaining, err := testDB.GetRecentAlertEvents(10)
		require.NoError(t, err)
		require.Len(t, remaining, 1)
		assert.Equal(t, "MSFT", remaining[0].Symbol)
	})
}
