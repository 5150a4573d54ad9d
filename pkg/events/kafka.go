package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"
)

// ErrKafkaConfig indicates a Kafka sink was configured without brokers or topic.
var ErrKafkaConfig = errors.New("kafka sink requires brokers and topic")

// MessageWriter is the subset of *kafka.Writer used by KafkaEventSink.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaConfig configures a KafkaEventSink.
type KafkaConfig struct {
	// Brokers lists host:port addresses.
	Brokers []string

	// Topic receives every envelope.
	Topic string

	// WriteTimeout bounds a single write. Zero uses the writer default.
	WriteTimeout time.Duration
}

// KafkaEventSink publishes envelopes as JSON messages keyed by idempotency key,
// so retries of one logical event land on the same partition.
type KafkaEventSink struct {
	writer MessageWriter
}

// NewKafkaEventSink creates a sink backed by a kafka-go Writer that waits for
// all in-sync replicas before acknowledging.
func NewKafkaEventSink(cfg KafkaConfig) (*KafkaEventSink, error) {
	brokers := make([]string, 0, len(cfg.Brokers))
	for _, b := range cfg.Brokers {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	if len(brokers) == 0 || strings.TrimSpace(cfg.Topic) == "" {
		return nil, ErrKafkaConfig
	}

	return NewKafkaEventSinkWithWriter(&kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        cfg.Topic,
		RequiredAcks: kafka.RequireAll,
		Balancer:     &kafka.LeastBytes{},
		WriteTimeout: cfg.WriteTimeout,
	}), nil
}

// NewKafkaEventSinkWithWriter wraps an existing writer.
func NewKafkaEventSinkWithWriter(w MessageWriter) *KafkaEventSink {
	return &KafkaEventSink{writer: w}
}

// Append implements EventSink.
func (k *KafkaEventSink) Append(ctx context.Context, envelope Envelope) error {
	data, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("failed to marshal envelope: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(envelope.IdempotencyKey),
		Value: data,
		Time:  envelope.Timestamp,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(envelope.Type)},
			{Key: "tenant_id", Value: []byte(envelope.TenantID)},
		},
	}
	if err := k.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to publish %s event: %w", envelope.Type, err)
	}
	return nil
}

// Close flushes pending messages and releases the writer.
func (k *KafkaEventSink) Close() error {
	return k.writer.Close()
}
