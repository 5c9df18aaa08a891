package sheet

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/rcalvert/option-tracker/internal/models"
)

// Header is the canonical column layout of the backing sheet
var Header = []string{"Symbol", "Type", "Strike", "Expiry", "Premium", "Quantity", "EntryDate"}

const dateLayout = "2006-01-02"

// Adapter maps sheet rows to typed positions and back. Row addresses
// are captured at load time and stay valid until the next mutation of
// the sheet; deletion is by address, not by value match.
type Adapter struct {
	store RowStore
	log   *logrus.Logger
	now   func() time.Time
}

// NewAdapter creates an adapter over the given row store
func NewAdapter(store RowStore, log *logrus.Logger) *Adapter {
	return &Adapter{store: store, log: log, now: time.Now}
}

// Init writes the header row when the sheet has no content yet
func (a *Adapter) Init(ctx context.Context) error {
	rows, err := a.store.Rows(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize sheet: %w", err)
	}
	if len(rows) > 0 {
		return nil
	}
	if err := a.store.Append(ctx, Header); err != nil {
		return &WriteError{Op: "append header", Err: err}
	}
	return nil
}

// Load reads every data row, drops malformed records and positions
// expired for more than one day, and returns the rest sorted by
// ascending expiry. An empty sheet yields an empty slice, not an error.
func (a *Adapter) Load(ctx context.Context) ([]models.Position, error) {
	rows, err := a.store.Rows(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load positions: %w", err)
	}
	if len(rows) <= 1 {
		return []models.Position{}, nil
	}

	today := models.DateOnly(a.now())
	cutoff := today.AddDate(0, 0, -1)

	positions := make([]models.Position, 0, len(rows)-1)
	for i, row := range rows[1:] {
		addr := i + 2 // data record N sits at sheet address N+1
		p, err := parseRow(row)
		if err != nil {
			a.log.WithError(err).WithField("row", addr).Warn("dropping malformed position record")
			continue
		}
		p.RowAddress = addr
		if p.Expiry.Before(cutoff) {
			continue
		}
		positions = append(positions, p)
	}

	sort.SliceStable(positions, func(i, j int) bool {
		return positions[i].Expiry.Before(positions[j].Expiry)
	})
	return positions, nil
}

// Append writes a position as a new sheet row. The entry date is
// stamped with the current date when the position carries none.
func (a *Adapter) Append(ctx context.Context, p models.Position) error {
	entry := p.EntryDate
	if entry.IsZero() {
		entry = models.DateOnly(a.now())
	}
	row := []string{
		p.Symbol,
		string(p.Type),
		p.Strike.String(),
		p.Expiry.Format(dateLayout),
		p.Premium.String(),
		strconv.FormatInt(p.Quantity, 10),
		entry.Format(dateLayout),
	}
	if err := a.store.Append(ctx, row); err != nil {
		return &WriteError{Op: "append", Err: err}
	}
	return nil
}

// Delete removes the given row addresses as one batch. Addresses are
// deduplicated and applied in descending order so that earlier deletes
// cannot shift rows not yet deleted. On failure the batch aborts and
// the returned slice reports which addresses were already deleted.
func (a *Adapter) Delete(ctx context.Context, addrs []int) ([]int, error) {
	seen := make(map[int]struct{}, len(addrs))
	uniq := make([]int, 0, len(addrs))
	for _, addr := range addrs {
		if addr <= 1 {
			return nil, fmt.Errorf("invalid row address %d: data rows start at address 2", addr)
		}
		if _, ok := seen[addr]; ok {
			continue
		}
		seen[addr] = struct{}{}
		uniq = append(uniq, addr)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(uniq)))

	deleted := make([]int, 0, len(uniq))
	for _, addr := range uniq {
		if err := a.store.DeleteRow(ctx, addr); err != nil {
			return deleted, &WriteError{Op: fmt.Sprintf("delete row %d", addr), Err: err}
		}
		deleted = append(deleted, addr)
	}
	return deleted, nil
}

func parseRow(row []string) (models.Position, error) {
	var p models.Position

	var premiumStr, qtyStr, entryStr string
	switch len(row) {
	case 7:
		premiumStr, qtyStr, entryStr = row[4], row[5], row[6]
	case 6:
		// legacy layout without the Premium column
		qtyStr, entryStr = row[4], row[5]
	default:
		return p, fmt.Errorf("expected 6 or 7 columns, got %d", len(row))
	}

	p.Symbol = strings.ToUpper(strings.TrimSpace(row[0]))
	if p.Symbol == "" {
		return p, errors.New("empty symbol")
	}

	p.Type = models.OptionType(strings.TrimSpace(row[1]))
	if !p.Type.Valid() {
		return p, fmt.Errorf("invalid option type %q", row[1])
	}

	strike, err := decimal.NewFromString(strings.TrimSpace(row[2]))
	if err != nil {
		return p, fmt.Errorf("invalid strike %q: %w", row[2], err)
	}
	if !strike.IsPositive() {
		return p, fmt.Errorf("strike must be positive, got %s", strike)
	}
	p.Strike = strike

	expiry, err := time.Parse(dateLayout, strings.TrimSpace(row[3]))
	if err != nil {
		return p, fmt.Errorf("invalid expiry %q: %w", row[3], err)
	}
	p.Expiry = expiry

	if s := strings.TrimSpace(premiumStr); s != "" {
		premium, err := decimal.NewFromString(s)
		if err != nil {
			return p, fmt.Errorf("invalid premium %q: %w", premiumStr, err)
		}
		if premium.IsNegative() {
			return p, fmt.Errorf("premium must not be negative, got %s", premium)
		}
		p.Premium = premium
	}

	qty, err := strconv.ParseInt(strings.TrimSpace(qtyStr), 10, 64)
	if err != nil {
		return p, fmt.Errorf("invalid quantity %q: %w", qtyStr, err)
	}
	if qty == 0 {
		return p, errors.New("quantity must not be zero")
	}
	p.Quantity = qty

	entry, err := time.Parse(dateLayout, strings.TrimSpace(entryStr))
	if err != nil {
		return p, fmt.Errorf("invalid entry date %q: %w", entryStr, err)
	}
	p.EntryDate = entry

	return p, nil
}
