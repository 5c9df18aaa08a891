package quotes

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/rcalvert/option-tracker/internal/models"
)

// Service resolves symbol sets to prices through the TTL cache
type Service struct {
	source Source
	cache  Cache
	log    *logrus.Logger
	now    func() time.Time
}

// NewService creates a price lookup service
func NewService(source Source, cache Cache, log *logrus.Logger) *Service {
	return &Service{source: source, cache: cache, log: log, now: time.Now}
}

// Resolve returns a price for every requested symbol. Symbols are
// deduplicated before querying, fresh cache entries are served without
// touching the external source, and any symbol whose price cannot be
// obtained resolves to the zero sentinel rather than a missing key.
// Failed lookups are never cached, so a transient outage heals on the
// next cycle.
func (s *Service) Resolve(ctx context.Context, symbols []string) models.PriceSnapshot {
	snap := models.PriceSnapshot{
		Prices:    make(map[string]decimal.Decimal, len(symbols)),
		FetchedAt: s.now(),
	}

	uniq := dedupe(symbols)
	missing := make([]string, 0, len(uniq))
	for _, symbol := range uniq {
		if price, ok := s.cache.Get(ctx, symbol); ok {
			snap.Prices[symbol] = price
			continue
		}
		missing = append(missing, symbol)
	}

	if len(missing) > 0 {
		fetched, err := s.source.LatestPrices(ctx, missing)
		if err != nil {
			s.log.WithError(err).WithField("symbols", len(missing)).
				Warn("price lookup failed, substituting zero sentinel")
			fetched = nil
		}
		for _, symbol := range missing {
			price, ok := fetched[symbol]
			if !ok || !price.IsPositive() {
				snap.Prices[symbol] = decimal.Zero
				continue
			}
			snap.Prices[symbol] = price
			s.cache.Set(ctx, symbol, price)
		}
	}

	return snap
}

func dedupe(symbols []string) []string {
	seen := make(map[string]struct{}, len(symbols))
	out := make([]string, 0, len(symbols))
	for _, s := range symbols {
		symbol := strings.ToUpper(strings.TrimSpace(s))
		if symbol == "" {
			continue
		}
		if _, ok := seen[symbol]; ok {
			continue
		}
		seen[symbol] = struct{}{}
		out = append(out, symbol)
	}
	sort.Strings(out)
	return out
}
