package aggregation

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ahrav/go-corroborate/internal/domain"
	"github.com/ahrav/go-corroborate/pkg/events"
)

// testClientKey is a deterministic client idempotency key for testing.
const testClientKey = "client-key-deterministic"

// CapturingEventSink captures all emitted events for test assertions.
// Thread-safe implementation that records events with metadata for validation.
type CapturingEventSink struct {
	mu     sync.RWMutex
	events []events.Envelope
	// Track idempotency to ensure no duplicates
	seenKeys map[string]bool
	// Optional: simulate failures for resilience testing
	failureCount int
	failuresLeft int
}

// NewCapturingEventSink creates a new capturing event sink for testing.
func NewCapturingEventSink() *CapturingEventSink {
	return &CapturingEventSink{seenKeys: make(map[string]bool)}
}

// NewFailingEventSink creates a sink that fails N times before succeeding.
func NewFailingEventSink(failures int) *CapturingEventSink {
	return &CapturingEventSink{
		seenKeys:     make(map[string]bool),
		failureCount: failures,
		failuresLeft: failures,
	}
}

// Append adds an event to the sink, implementing the EventSink interface.
func (c *CapturingEventSink) Append(_ context.Context, envelope events.Envelope) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.failuresLeft > 0 {
		c.failuresLeft--
		return errors.New("simulated event sink failure")
	}
	if c.seenKeys[envelope.IdempotencyKey] {
		return nil
	}

	c.events = append(c.events, envelope)
	c.seenKeys[envelope.IdempotencyKey] = true
	return nil
}

// GetEventsByType returns events filtered by type.
func (c *CapturingEventSink) GetEventsByType(eventType string) []events.Envelope {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var filtered []events.Envelope
	for _, e := range c.events {
		if e.Type == eventType {
			filtered = append(filtered, e)
		}
	}
	return filtered
}

// AssertEventCount asserts the expected number of events by type.
func (c *CapturingEventSink) AssertEventCount(eventType string, expected int) error {
	actual := len(c.GetEventsByType(eventType))
	if actual != expected {
		return fmt.Errorf("expected %d %s events, got %d", expected, eventType, actual)
	}
	return nil
}

// record builds a test record. Zero arguments leave attributes absent.
func record(id, date, location string, total, amount float64) domain.Record {
	r := domain.Record{ID: id, Location: location}
	if date != "" {
		d := domain.MustParseDate(date)
		r.Date = &d
	}
	if total > 0 {
		r.Headcount = &domain.Headcount{Total: domain.Float(total)}
	}
	if amount > 0 {
		r.MonetaryAmount = domain.Float(amount)
	}
	return r
}

// abcRecords is the canonical A/B/C batch: A and B describe one incident.
func abcRecords() []domain.Record {
	return []domain.Record{
		record("A", "2024-01-01", "Aleppo, Syria", 4, 1000),
		record("B", "2024-01-02", "Aleppo, Syria", 5, 1050),
		record("C", "2024-06-01", "Paris, France", 2, 0),
	}
}
