package risk

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/rcalvert/option-tracker/internal/models"
)

var hundred = decimal.NewFromInt(100)

// Enrich derives the risk view of a position from its current price.
//
// The safety margin is the signed distance between price and strike as
// a fraction of price: positive means out-of-the-money, negative means
// the strike is breached. It is a price/strike relationship only; the
// sign of the quantity never enters the formula. A zero price means
// the quote is unknown, which yields a zero margin and no ITM flag.
func Enrich(p models.Position, price decimal.Decimal, today time.Time) models.EnrichedPosition {
	e := models.EnrichedPosition{
		Position:     p,
		CurrentPrice: price,
	}

	qty := p.Quantity
	if qty < 0 {
		qty = -qty
	}
	e.Notional = p.Strike.Mul(decimal.NewFromInt(qty)).Mul(models.ContractMultiplier)
	e.DaysToExpiry = daysBetween(today, p.Expiry)

	if !price.IsPositive() {
		return e
	}

	switch p.Type {
	case models.OptionTypePut:
		e.SafetyMarginPct = price.Sub(p.Strike).Div(price).Mul(hundred)
		e.ITM = price.LessThan(p.Strike)
	case models.OptionTypeCall:
		e.SafetyMarginPct = p.Strike.Sub(price).Div(price).Mul(hundred)
		e.ITM = price.GreaterThan(p.Strike)
	}
	return e
}

// daysBetween counts whole calendar days from one date to another;
// negative when to precedes from.
func daysBetween(from, to time.Time) int {
	f := models.DateOnly(from)
	t := models.DateOnly(to)
	return int(t.Sub(f).Hours() / 24)
}
