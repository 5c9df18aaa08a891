package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/rcalvert/option-tracker/internal/models"
)

// Producer handles publishing position events to Kafka
type Producer struct {
	writer *kafka.Writer
	topic  string
}

// NewProducer creates a new Kafka producer
func NewProducer(brokers []string, topic string) *Producer {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 10 * time.Millisecond,
	}

	return &Producer{
		writer: writer,
		topic:  topic,
	}
}

// PublishPositionAdded publishes a position added event
func (p *Producer) PublishPositionAdded(ctx context.Context, position *models.Position) error {
	event := models.PositionEvent{
		EventType: models.EventPositionAdded,
		Symbol:    position.Symbol,
		Position:  position,
		Timestamp: time.Now(),
	}
	return p.publish(ctx, position.Symbol, event)
}

// PublishPositionsDeleted publishes a batch deletion event carrying the
// row addresses that were actually removed
func (p *Producer) PublishPositionsDeleted(ctx context.Context, addresses []int) error {
	event := models.PositionEvent{
		EventType: models.EventPositionsDeleted,
		Addresses: addresses,
		Timestamp: time.Now(),
	}
	return p.publish(ctx, "deletions", event)
}

// PublishRiskAlert publishes a risk alert for one enriched position
func (p *Producer) PublishRiskAlert(ctx context.Context, position *models.EnrichedPosition) error {
	event := models.PositionEvent{
		EventType: models.EventRiskAlert,
		Symbol:    position.Symbol,
		Alert:     position,
		Timestamp: time.Now(),
	}
	return p.publish(ctx, position.Symbol, event)
}

func (p *Producer) publish(ctx context.Context, key string, event models.PositionEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(key),
		Value: data,
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to write message to kafka: %w", err)
	}

	return nil
}

// Close closes the Kafka producer
func (p *Producer) Close() error {
	return p.writer.Close()
}
