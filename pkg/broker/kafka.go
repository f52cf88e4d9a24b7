// Package broker publishes domain events (message sent, friend accepted,
// ad clicked) to a Kafka topic for downstream consumers.
package broker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
)

// Event is the envelope written to the topic.
type Event struct {
	Type       string    `json:"type"`
	Key        string    `json:"key"`
	Payload    any       `json:"payload"`
	OccurredAt time.Time `json:"occurred_at"`
}

type Publisher interface {
	Publish(ctx context.Context, eventType, key string, payload any) error
	Close() error
}

type KafkaConfig struct {
	Brokers []string
	Topic   string
}

type kafkaPublisher struct {
	writer *kafka.Writer
}

func NewKafkaPublisher(cfg KafkaConfig) Publisher {
	w := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		BatchTimeout: 50 * time.Millisecond,
	}
	return &kafkaPublisher{writer: w}
}

func (p *kafkaPublisher) Publish(ctx context.Context, eventType, key string, payload any) error {
	value, err := json.Marshal(Event{
		Type:       eventType,
		Key:        key,
		Payload:    payload,
		OccurredAt: time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("failed to encode %s event: %w", eventType, err)
	}

	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(key),
		Value: value,
	})
}

func (p *kafkaPublisher) Close() error {
	if p == nil || p.writer == nil {
		return nil
	}
	return p.writer.Close()
}

type nopPublisher struct{}

// Nop is used when no brokers are configured.
func Nop() Publisher { return nopPublisher{} }

func (nopPublisher) Publish(context.Context, string, string, any) error { return nil }
func (nopPublisher) Close() error                                      { return nil }
