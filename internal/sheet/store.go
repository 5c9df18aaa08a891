package sheet

import (
	"context"
	"errors"
	"fmt"
)

// ErrStoreUnavailable indicates the backing store could not be reached.
// A cycle that hits it must not trust any previously computed state.
var ErrStoreUnavailable = errors.New("position store unavailable")

// WriteError wraps a failed append or delete against the backing store
type WriteError struct {
	Op  string
	Err error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("store %s failed: %v", e.Op, e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}

// RowStore is the boundary to the tabular backing store. Rows are
// addressed 1-based with the header row at address 1; deleting a row
// re-indexes all subsequent rows.
type RowStore interface {
	// Rows returns every row of the sheet, header included.
	Rows(ctx context.Context) ([][]string, error)
	// Append adds a row after the last non-empty row.
	Append(ctx context.Context, row []string) error
	// DeleteRow removes the row at the given 1-based address.
	DeleteRow(ctx context.Context, addr int) error
}
