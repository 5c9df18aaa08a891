package sheet

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rcalvert/option-tracker/internal/models"
)

func decimalFromString(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return d
}

// fakeRowStore implements RowStore in memory for testing
type fakeRowStore struct {
	rows     [][]string
	rowsErr  error
	appended [][]string
	deleted  []int
	failAddr int // DeleteRow fails when asked to delete this address
}

func (f *fakeRowStore) Rows(ctx context.Context) ([][]string, error) {
	if f.rowsErr != nil {
		return nil, f.rowsErr
	}
	return f.rows, nil
}

func (f *fakeRowStore) Append(ctx context.Context, row []string) error {
	f.appended = append(f.appended, row)
	return nil
}

func (f *fakeRowStore) DeleteRow(ctx context.Context, addr int) error {
	if f.failAddr != 0 && addr == f.failAddr {
		return errors.New("delete rejected")
	}
	f.deleted = append(f.deleted, addr)
	return nil
}

func testAdapter(store RowStore) *Adapter {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return NewAdapter(store, log)
}

func dateStr(daysFromToday int) string {
	return time.Now().AddDate(0, 0, daysFromToday).Format("2006-01-02")
}

func TestAdapterLoad(t *testing.T) {
	ctx := context.Background()

	t.Run("parses records and captures row addresses", func(t *testing.T) {
		store := &fakeRowStore{rows: [][]string{
			Header,
			{"AAPL", "Put", "180.5", dateStr(30), "2.35", "-2", "2026-08-01"},
			{"msft ", "Call", "500", dateStr(10), "", "1", "2026-08-15"},
		}}

		positions, err := testAdapter(store).Load(ctx)
		require.NoError(t, err)
		require.Len(t, positions, 2)

		// sorted ascending by expiry, so MSFT (10d) comes first
		msft := positions[0]
		assert.Equal(t, "MSFT", msft.Symbol)
		assert.Equal(t, models.OptionTypeCall, msft.Type)
		assert.Equal(t, 3, msft.RowAddress)
		assert.True(t, msft.Premium.IsZero())

		aapl := positions[1]
		assert.Equal(t, "AAPL", aapl.Symbol)
		assert.Equal(t, 2, aapl.RowAddress)
		assert.True(t, aapl.Strike.Equal(decimalFromString(t, "180.5")))
		assert.Equal(t, int64(-2), aapl.Quantity)
	})

	t.Run("drops malformed records without failing the batch", func(t *testing.T) {
		store := &fakeRowStore{rows: [][]string{
			Header,
			{"AAPL", "Put", "not-a-number", dateStr(30), "1", "-1", "2026-08-01"},
			{"TSLA", "Put", "200", "bad-date", "1", "-1", "2026-08-01"},
			{"NVDA", "Straddle", "100", dateStr(30), "1", "-1", "2026-08-01"},
			{"AMD", "Put", "150", dateStr(30), "1", "0", "2026-08-01"},
			{"GOOG", "Put", "170", dateStr(30), "1", "-1", "2026-08-01"},
		}}

		positions, err := testAdapter(store).Load(ctx)
		require.NoError(t, err)
		require.Len(t, positions, 1)
		assert.Equal(t, "GOOG", positions[0].Symbol)
		assert.Equal(t, 6, positions[0].RowAddress)
	})

	t.Run("retention keeps yesterday and drops older expiries", func(t *testing.T) {
		store := &fakeRowStore{rows: [][]string{
			Header,
			{"OLD", "Put", "100", dateStr(-2), "1", "-1", "2026-08-01"},
			{"EDGE", "Put", "100", dateStr(-1), "1", "-1", "2026-08-01"},
			{"LIVE", "Put", "100", dateStr(5), "1", "-1", "2026-08-01"},
		}}

		positions, err := testAdapter(store).Load(ctx)
		require.NoError(t, err)
		require.Len(t, positions, 2)
		assert.Equal(t, "EDGE", positions[0].Symbol)
		assert.Equal(t, "LIVE", positions[1].Symbol)
	})

	t.Run("returns empty slice for header-only sheet", func(t *testing.T) {
		store := &fakeRowStore{rows: [][]string{Header}}
		positions, err := testAdapter(store).Load(ctx)
		require.NoError(t, err)
		assert.Empty(t, positions)
	})

	t.Run("returns empty slice for empty sheet", func(t *testing.T) {
		store := &fakeRowStore{}
		positions, err := testAdapter(store).Load(ctx)
		require.NoError(t, err)
		assert.Empty(t, positions)
	})

	t.Run("surfaces store unavailability", func(t *testing.T) {
		store := &fakeRowStore{rowsErr: fmt.Errorf("%w: connection refused", ErrStoreUnavailable)}
		_, err := testAdapter(store).Load(ctx)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrStoreUnavailable))
	})
}

func TestAdapterAppend(t *testing.T) {
	ctx := context.Background()

	t.Run("writes the canonical column layout", func(t *testing.T) {
		store := &fakeRowStore{}
		adapter := testAdapter(store)
		adapter.now = func() time.Time {
			return time.Date(2026, 8, 29, 15, 4, 5, 0, time.UTC)
		}

		p := models.Position{
			Symbol:   "AAPL",
			Type:     models.OptionTypePut,
			Strike:   decimalFromString(t, "180.5"),
			Expiry:   time.Date(2026, 10, 16, 0, 0, 0, 0, time.UTC),
			Quantity: -2,
			Premium:  decimalFromString(t, "2.35"),
		}
		require.NoError(t, adapter.Append(ctx, p))

		require.Len(t, store.appended, 1)
		assert.Equal(t, []string{"AAPL", "Put", "180.5", "2026-10-16", "2.35", "-2", "2026-08-29"}, store.appended[0])
	})

	t.Run("wraps write failures", func(t *testing.T) {
		store := &failingAppendStore{}
		err := testAdapter(store).Append(ctx, models.Position{
			Symbol:   "AAPL",
			Type:     models.OptionTypePut,
			Strike:   decimalFromString(t, "100"),
			Expiry:   time.Date(2026, 10, 16, 0, 0, 0, 0, time.UTC),
			Quantity: -1,
		})
		require.Error(t, err)
		var writeErr *WriteError
		assert.True(t, errors.As(err, &writeErr))
	})
}

func TestAdapterInit(t *testing.T) {
	ctx := context.Background()

	t.Run("writes header on empty sheet", func(t *testing.T) {
		store := &fakeRowStore{}
		require.NoError(t, testAdapter(store).Init(ctx))
		require.Len(t, store.appended, 1)
		assert.Equal(t, Header, store.appended[0])
	})

	t.Run("leaves non-empty sheet alone", func(t *testing.T) {
		store := &fakeRowStore{rows: [][]string{Header}}
		require.NoError(t, testAdapter(store).Init(ctx))
		assert.Empty(t, store.appended)
	})
}

func TestAdapterDelete(t *testing.T) {
	ctx := context.Background()

	t.Run("applies deletes in descending address order", func(t *testing.T) {
		store := &fakeRowStore{}
		deleted, err := testAdapter(store).Delete(ctx, []int{2, 5, 7})
		require.NoError(t, err)
		assert.Equal(t, []int{7, 5, 2}, store.deleted)
		assert.Equal(t, []int{7, 5, 2}, deleted)
	})

	t.Run("deduplicates addresses", func(t *testing.T) {
		store := &fakeRowStore{}
		deleted, err := testAdapter(store).Delete(ctx, []int{3, 3, 2})
		require.NoError(t, err)
		assert.Equal(t, []int{3, 2}, deleted)
	})

	t.Run("aborts the batch on first failure and reports progress", func(t *testing.T) {
		store := &fakeRowStore{failAddr: 5}
		deleted, err := testAdapter(store).Delete(ctx, []int{2, 5, 7})
		require.Error(t, err)
		// 7 succeeded before 5 failed; 2 was never attempted
		assert.Equal(t, []int{7}, deleted)
		assert.Equal(t, []int{7}, store.deleted)
	})

	t.Run("rejects the header address", func(t *testing.T) {
		store := &fakeRowStore{}
		_, err := testAdapter(store).Delete(ctx, []int{1})
		require.Error(t, err)
		assert.Empty(t, store.deleted)
	})
}

type failingAppendStore struct {
	fakeRowStore
}

func (f *failingAppendStore) Append(ctx context.Context, row []string) error {
	return errors.New("quota exceeded")
}
