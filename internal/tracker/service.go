package tracker

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/rcalvert/option-tracker/internal/models"
	"github.com/rcalvert/option-tracker/internal/risk"
)

// ErrInvalidPosition marks a rejected add-position intent
var ErrInvalidPosition = errors.New("invalid position")

// Store is the subset of the sheet adapter the tracker needs
type Store interface {
	Load(ctx context.Context) ([]models.Position, error)
	Append(ctx context.Context, p models.Position) error
	Delete(ctx context.Context, addrs []int) ([]int, error)
}

// PriceResolver resolves symbol sets to a price snapshot
type PriceResolver interface {
	Resolve(ctx context.Context, symbols []string) models.PriceSnapshot
}

// AlertArchive records triggered alerts for later review
type AlertArchive interface {
	CreateAlertEvent(e *models.AlertEvent) error
}

// EventPublisher publishes position lifecycle events
type EventPublisher interface {
	PublishPositionAdded(ctx context.Context, p *models.Position) error
	PublishPositionsDeleted(ctx context.Context, addresses []int) error
	PublishRiskAlert(ctx context.Context, p *models.EnrichedPosition) error
}

// Config carries the risk-policy knobs for a tracker
type Config struct {
	Buckets           risk.BucketConfig
	HighRiskThreshold decimal.Decimal
	ExpiryWindowDays  int
}

// Snapshot is the result of one refresh cycle. It is recomputed from a
// full reload every time; mutations invalidate it and nothing in it is
// ever patched in place.
type Snapshot struct {
	Positions []models.EnrichedPosition `json:"positions"`
	Summary   risk.Summary              `json:"summary"`
	Exposure  risk.Exposure             `json:"exposure"`
	Expiring  []models.EnrichedPosition `json:"expiring"`
	HighRisk  []models.EnrichedPosition `json:"high_risk"`
	Prices    models.PriceSnapshot      `json:"prices"`
}

// Service runs the load → price → enrich → aggregate cycle and applies
// the add/delete user intents against the backing store. The archive
// and publisher are optional.
type Service struct {
	store    Store
	prices   PriceResolver
	archive  AlertArchive
	producer EventPublisher
	cfg      Config
	log      *logrus.Logger
	now      func() time.Time
}

// New creates a tracker service. archive and producer may be nil.
func New(store Store, prices PriceResolver, archive AlertArchive, producer EventPublisher, cfg Config, log *logrus.Logger) *Service {
	return &Service{
		store:    store,
		prices:   prices,
		archive:  archive,
		producer: producer,
		cfg:      cfg,
		log:      log,
		now:      time.Now,
	}
}

// Refresh runs one full processing cycle and returns the snapshot
func (s *Service) Refresh(ctx context.Context) (*Snapshot, error) {
	positions, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}

	symbols := make([]string, 0, len(positions))
	for _, p := range positions {
		symbols = append(symbols, p.Symbol)
	}
	priceSnap := s.prices.Resolve(ctx, symbols)

	today := s.now()
	enriched := make([]models.EnrichedPosition, 0, len(positions))
	for _, p := range positions {
		enriched = append(enriched, risk.Enrich(p, priceSnap.Price(p.Symbol), today))
	}

	snap := &Snapshot{
		Positions: enriched,
		Summary:   risk.Summarize(enriched, today, s.cfg.HighRiskThreshold, s.cfg.ExpiryWindowDays),
		Exposure:  risk.BuildExposure(enriched, s.cfg.Buckets),
		Expiring:  risk.ExpiringWithin(enriched, today, s.cfg.ExpiryWindowDays),
		HighRisk:  risk.HighRisk(enriched, s.cfg.HighRiskThreshold),
		Prices:    priceSnap,
	}

	s.recordAlerts(ctx, snap.HighRisk)
	return snap, nil
}

// AddRequest is the add-position user intent. Expiry is an ISO date
// string; the entry date is stamped server-side.
type AddRequest struct {
	Symbol   string            `json:"symbol"`
	Type     models.OptionType `json:"type"`
	Strike   decimal.Decimal   `json:"strike"`
	Expiry   string            `json:"expiry"`
	Quantity int64             `json:"quantity"`
	Premium  decimal.Decimal   `json:"premium"`
}

// AddPosition validates the intent and appends it to the backing store.
// Any snapshot computed before this call is stale afterward.
func (s *Service) AddPosition(ctx context.Context, req AddRequest) (*models.Position, error) {
	symbol := strings.ToUpper(strings.TrimSpace(req.Symbol))
	if symbol == "" {
		return nil, fmt.Errorf("%w: symbol is required", ErrInvalidPosition)
	}
	if !req.Type.Valid() {
		return nil, fmt.Errorf("%w: type must be Put or Call", ErrInvalidPosition)
	}
	if !req.Strike.IsPositive() {
		return nil, fmt.Errorf("%w: strike must be positive", ErrInvalidPosition)
	}
	if req.Quantity == 0 {
		return nil, fmt.Errorf("%w: quantity must not be zero", ErrInvalidPosition)
	}
	if req.Premium.IsNegative() {
		return nil, fmt.Errorf("%w: premium must not be negative", ErrInvalidPosition)
	}
	expiry, err := time.Parse("2006-01-02", req.Expiry)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid expiry %q", ErrInvalidPosition, req.Expiry)
	}

	position := models.Position{
		Symbol:    symbol,
		Type:      req.Type,
		Strike:    req.Strike,
		Expiry:    expiry,
		Quantity:  req.Quantity,
		Premium:   req.Premium,
		EntryDate: models.DateOnly(s.now()),
	}
	if err := s.store.Append(ctx, position); err != nil {
		return nil, err
	}

	if s.producer != nil {
		if err := s.producer.PublishPositionAdded(ctx, &position); err != nil {
			s.log.WithError(err).Warn("failed to publish position added event")
		}
	}

	s.log.WithFields(logrus.Fields{
		"symbol": position.Symbol,
		"type":   position.Type,
		"strike": position.Strike,
	}).Info("position added")
	return &position, nil
}

// DeletePositions removes a batch of row addresses. The returned slice
// reports which addresses were deleted even when the batch aborts
// partway; any snapshot computed before this call is stale afterward.
func (s *Service) DeletePositions(ctx context.Context, addrs []int) ([]int, error) {
	deleted, err := s.store.Delete(ctx, addrs)

	if len(deleted) > 0 && s.producer != nil {
		if pubErr := s.producer.PublishPositionsDeleted(ctx, deleted); pubErr != nil {
			s.log.WithError(pubErr).Warn("failed to publish positions deleted event")
		}
	}
	if err != nil {
		return deleted, err
	}

	s.log.WithField("addresses", deleted).Info("positions deleted")
	return deleted, nil
}

// recordAlerts archives and publishes high-risk matches best effort;
// archive or publish failures never fail the cycle.
func (s *Service) recordAlerts(ctx context.Context, matches []models.EnrichedPosition) {
	for i := range matches {
		p := matches[i]

		if s.archive != nil {
			event := models.AlertEvent{
				Symbol:          p.Symbol,
				OptionType:      p.Type,
				Strike:          p.Strike,
				Expiry:          p.Expiry,
				SafetyMarginPct: p.SafetyMarginPct,
				CurrentPrice:    p.CurrentPrice,
				AlertType:       models.AlertTypeHighRisk,
				Message: fmt.Sprintf("safety margin %s%% below %s%%",
					p.SafetyMarginPct.StringFixed(2), s.cfg.HighRiskThreshold),
				TriggeredAt: s.now(),
			}
			if err := s.archive.CreateAlertEvent(&event); err != nil {
				s.log.WithError(err).WithField("symbol", p.Symbol).
					Warn("failed to archive alert event")
			}
		}

		if s.producer != nil {
			if err := s.producer.PublishRiskAlert(ctx, &matches[i]); err != nil {
				s.log.WithError(err).WithField("symbol", p.Symbol).
					Warn("failed to publish risk alert")
			}
		}
	}
}
