// Package events provides the generic event infrastructure for domain event emission.
// It defines the Envelope type that wraps domain events with routing and
// idempotency metadata, and the EventSink interface implemented by the
// no-op and Kafka sinks.
package events

import (
	"context"
	"encoding/json"
	"time"
)

// Envelope wraps a domain event payload with consistent metadata.
// Consumers deduplicate on IdempotencyKey and route on Type.
type Envelope struct {
	// ID uniquely identifies this event instance.
	ID string `json:"id"`

	// Type identifies the event for routing, e.g. "BucketsFormed".
	Type string `json:"type"`

	// Source identifies the emitting component, e.g. "activity.build_buckets".
	Source string `json:"source"`

	// Version is the payload schema version in semantic form.
	Version string `json:"version"`

	// Timestamp is the wall-clock emission time.
	Timestamp time.Time `json:"timestamp"`

	// IdempotencyKey is stable across activity retries.
	IdempotencyKey string `json:"idempotency_key"`

	// TenantID identifies the tenant for multi-tenant filtering.
	TenantID string `json:"tenant_id"`

	// WorkflowID and RunID identify the Temporal execution that emitted the event.
	WorkflowID string `json:"workflow_id"`
	RunID      string `json:"run_id"`

	// Payload is the event-specific JSON body. Its schema depends on Type and Version.
	Payload json.RawMessage `json:"payload"`
}

// EventSink delivers envelopes to downstream consumers.
//
//go:generate mockgen -destination=mocks/mock_sink.go -package=mocks -source=envelope.go EventSink
type EventSink interface {
	// Append delivers one envelope. Duplicate idempotency keys must be
	// harmless. Callers treat errors as best-effort failures and never fail
	// their primary operation because of them.
	Append(ctx context.Context, envelope Envelope) error
}

// NoOpEventSink discards every envelope.
type NoOpEventSink struct{}

// Append implements EventSink.
func (n *NoOpEventSink) Append(_ context.Context, _ Envelope) error {
	return nil
}

// NewNoOpEventSink creates a sink that accepts and drops every event.
func NewNoOpEventSink() EventSink {
	return &NoOpEventSink{}
}
