package quotes

import (
	"context"
	"fmt"

	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"
	"github.com/shopspring/decimal"

	"github.com/rcalvert/option-tracker/internal/config"
)

// Source resolves a batch of ticker symbols to last-traded prices.
// A symbol may be absent from the result when no trade is available.
type Source interface {
	LatestPrices(ctx context.Context, symbols []string) (map[string]decimal.Decimal, error)
}

// AlpacaSource fetches latest trades from the Alpaca market data API
type AlpacaSource struct {
	client *marketdata.Client
}

// NewAlpacaSource creates a source from API credentials
func NewAlpacaSource(cfg config.AlpacaConfig) *AlpacaSource {
	return &AlpacaSource{
		client: marketdata.NewClient(marketdata.ClientOpts{
			APIKey:    cfg.APIKey,
			APISecret: cfg.APISecret,
		}),
	}
}

// LatestPrices resolves the whole batch in a single multi-symbol request
func (s *AlpacaSource) LatestPrices(ctx context.Context, symbols []string) (map[string]decimal.Decimal, error) {
	trades, err := s.client.GetLatestTrades(symbols, marketdata.GetLatestTradeRequest{})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch latest trades: %w", err)
	}

	prices := make(map[string]decimal.Decimal, len(trades))
	for symbol, trade := range trades {
		prices[symbol] = decimal.NewFromFloat(trade.Price)
	}
	return prices, nil
}
