package risk

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// BucketConfig defines the safety-margin tiers. Thresholds are
// configuration, not constants: the five-tier default and the coarser
// three-tier set are both valid operating modes.
type BucketConfig struct {
	thresholds []decimal.Decimal
	labels     []string
}

// NewBucketConfig builds tiers from strictly ascending thresholds in
// percent. Thresholds [0 5 10] produce the buckets
// "<0%", "0-5%", "5-10%", ">10%".
func NewBucketConfig(thresholds []decimal.Decimal) (BucketConfig, error) {
	if len(thresholds) < 2 {
		return BucketConfig{}, errors.New("at least two thresholds required")
	}
	for i := 1; i < len(thresholds); i++ {
		if !thresholds[i].GreaterThan(thresholds[i-1]) {
			return BucketConfig{}, fmt.Errorf("thresholds must be strictly ascending, got %s after %s",
				thresholds[i], thresholds[i-1])
		}
	}

	labels := make([]string, 0, len(thresholds)+1)
	labels = append(labels, fmt.Sprintf("<%s%%", thresholds[0]))
	for i := 0; i < len(thresholds)-1; i++ {
		labels = append(labels, fmt.Sprintf("%s-%s%%", thresholds[i], thresholds[i+1]))
	}
	labels = append(labels, fmt.Sprintf(">%s%%", thresholds[len(thresholds)-1]))

	cfg := BucketConfig{
		thresholds: make([]decimal.Decimal, len(thresholds)),
		labels:     labels,
	}
	copy(cfg.thresholds, thresholds)
	return cfg, nil
}

// DefaultBucketConfig returns the canonical five-tier policy
func DefaultBucketConfig() BucketConfig {
	cfg, err := NewBucketConfig([]decimal.Decimal{
		decimal.Zero,
		decimal.NewFromInt(5),
		decimal.NewFromInt(10),
		decimal.NewFromInt(15),
		decimal.NewFromInt(20),
	})
	if err != nil {
		panic(err)
	}
	return cfg
}

// Labels returns the bucket labels in canonical order, breached tier first
func (c BucketConfig) Labels() []string {
	out := make([]string, len(c.labels))
	copy(out, c.labels)
	return out
}

// Assign maps a safety margin to its bucket. Lower bounds are
// inclusive and upper bounds exclusive, so every real margin lands in
// exactly one bucket (a margin of 5 belongs to "5-10%", not "0-5%").
func (c BucketConfig) Assign(margin decimal.Decimal) string {
	for i := len(c.thresholds) - 1; i >= 0; i-- {
		if margin.GreaterThanOrEqual(c.thresholds[i]) {
			return c.labels[i+1]
		}
	}
	return c.labels[0]
}
