package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/rcalvert/option-tracker/internal/models"
)

// PositionAppender is the slice of the position store the consumer needs
type PositionAppender interface {
	Append(ctx context.Context, p models.Position) error
}

// Consumer ingests option fill events from an upstream broker feed and
// appends them to the position store. Malformed fills are logged and
// skipped; one bad message never stops the stream.
type Consumer struct {
	reader *kafka.Reader
	store  PositionAppender
	log    *logrus.Logger
}

// NewConsumer creates a new Kafka consumer for option fill events
func NewConsumer(brokers []string, topic, groupID string, store PositionAppender, log *logrus.Logger) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		Topic:          topic,
		GroupID:        groupID,
		MinBytes:       10e3, // 10KB
		MaxBytes:       10e6, // 10MB
		MaxWait:        1 * time.Second,
		StartOffset:    kafka.FirstOffset,
		CommitInterval: time.Second,
	})

	return &Consumer{
		reader: reader,
		store:  store,
		log:    log,
	}
}

// Start begins consuming messages from Kafka
func (c *Consumer) Start(ctx context.Context) error {
	c.log.WithField("topic", c.reader.Config().Topic).Info("starting kafka fills consumer")

	for {
		select {
		case <-ctx.Done():
			c.log.Info("kafka fills consumer shutting down")
			return c.reader.Close()
		default:
			msg, err := c.reader.ReadMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return nil // context cancelled, normal shutdown
				}
				c.log.WithError(err).Error("error reading message")
				continue
			}

			if err := c.processMessage(ctx, msg); err != nil {
				c.log.WithError(err).WithField("key", string(msg.Key)).
					Error("error processing message")
				// continue processing other messages
			}
		}
	}
}

// processMessage handles a single Kafka message
func (c *Consumer) processMessage(ctx context.Context, msg kafka.Message) error {
	var event models.FillEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		return fmt.Errorf("failed to unmarshal fill event: %w", err)
	}

	if event.EventType != models.EventOptionFill {
		c.log.WithField("event_type", event.EventType).Debug("ignoring event type")
		return nil
	}

	position, err := convertFillToPosition(event)
	if err != nil {
		return fmt.Errorf("failed to convert fill to position: %w", err)
	}

	if err := c.store.Append(ctx, position); err != nil {
		return fmt.Errorf("failed to append position: %w", err)
	}

	c.log.WithFields(logrus.Fields{
		"symbol":   position.Symbol,
		"type":     position.Type,
		"strike":   position.Strike,
		"quantity": position.Quantity,
	}).Info("appended position from fill")

	return nil
}

// convertFillToPosition maps a FillEvent to a Position
func convertFillToPosition(event models.FillEvent) (models.Position, error) {
	data := event.Data
	var p models.Position

	p.Symbol = strings.ToUpper(strings.TrimSpace(data.Symbol))
	if p.Symbol == "" {
		return p, errors.New("empty symbol")
	}

	p.Type = models.OptionType(data.Type)
	if !p.Type.Valid() {
		return p, fmt.Errorf("invalid option type: %s", data.Type)
	}

	strike, err := decimal.NewFromString(data.Strike)
	if err != nil {
		return p, fmt.Errorf("invalid strike %s: %w", data.Strike, err)
	}
	if !strike.IsPositive() {
		return p, fmt.Errorf("strike must be positive, got %s", strike)
	}
	p.Strike = strike

	expiry, err := time.Parse("2006-01-02", data.Expiry)
	if err != nil {
		return p, fmt.Errorf("invalid expiry %s: %w", data.Expiry, err)
	}
	p.Expiry = expiry

	qty, err := strconv.ParseInt(strings.TrimSpace(data.Quantity), 10, 64)
	if err != nil {
		return p, fmt.Errorf("invalid quantity %s: %w", data.Quantity, err)
	}
	if qty == 0 {
		return p, errors.New("quantity must not be zero")
	}
	p.Quantity = qty

	if data.Premium != "" {
		premium, err := decimal.NewFromString(data.Premium)
		if err != nil {
			return p, fmt.Errorf("invalid premium %s: %w", data.Premium, err)
		}
		p.Premium = premium
	}

	if data.FilledAt != nil && *data.FilledAt != "" {
		filledAt, err := time.Parse(time.RFC3339, *data.FilledAt)
		if err != nil {
			// try parsing without timezone
			filledAt, err = time.Parse("2006-01-02T15:04:05", *data.FilledAt)
			if err != nil {
				filledAt = time.Now()
			}
		}
		p.EntryDate = models.DateOnly(filledAt)
	}

	return p, nil
}

// Close closes the Kafka consumer
func (c *Consumer) Close() error {
	return c.reader.Close()
}
