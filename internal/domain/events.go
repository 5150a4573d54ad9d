package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ahrav/go-corroborate/pkg/events"
)

// EventType represents the type of event emitted by the system.
// Using typed constants provides compile-time safety and enables
// exhaustive switch statements for event handling.
type EventType string

const (
	// EventTypePairsScored is emitted when a pairwise scan completes.
	EventTypePairsScored EventType = "PairsScored"

	// EventTypeBucketsFormed is emitted when a batch has been partitioned into buckets.
	// One event per linkage run with bucket-level counts for projections.
	EventTypeBucketsFormed EventType = "BucketsFormed"
)

// EventEnvelope wraps all events with consistent metadata for projection processing.
// Provides workflow context, idempotency and sequencing so downstream consumers can
// deduplicate retried activities.
type EventEnvelope struct {
	// IdempotencyKey ensures events are processed exactly once during retries.
	// Generated deterministically from the client key and event content.
	IdempotencyKey string `json:"idempotency_key" validate:"required"`

	// EventType identifies the specific type of event for routing and processing.
	EventType EventType `json:"event_type" validate:"required"`

	// Version enables event schema evolution and backward compatibility.
	Version int `json:"version" validate:"required,min=1"`

	// OccurredAt records when the event occurred in the system.
	OccurredAt time.Time `json:"occurred_at" validate:"required"`

	// TenantID identifies the tenant for multi-tenant event filtering.
	TenantID uuid.UUID `json:"tenant_id" validate:"required"`

	// WorkflowID identifies the Temporal workflow that generated this event.
	WorkflowID string `json:"workflow_id" validate:"required"`

	// RunID identifies the specific workflow execution run.
	RunID string `json:"run_id" validate:"required"`

	// Sequence enables ordered event processing for projections.
	Sequence int `json:"sequence" validate:"min=0"`

	// Payload contains the event-specific data as JSON.
	Payload json.RawMessage `json:"payload" validate:"required"`

	// Producer identifies the component that emitted this event.
	Producer string `json:"producer" validate:"required"`
}

// Validate checks if the event envelope meets all requirements.
func (e *EventEnvelope) Validate() error {
	return validate.Struct(e)
}

// ToEnvelope converts the domain event into the generic envelope consumed by
// event sinks. The idempotency key doubles as the event ID so retried
// emissions carry identical identifiers.
func (e EventEnvelope) ToEnvelope() events.Envelope {
	return events.Envelope{
		ID:             e.IdempotencyKey,
		Type:           string(e.EventType),
		Source:         e.Producer,
		Version:        fmt.Sprintf("%d.0.0", e.Version),
		Timestamp:      e.OccurredAt,
		IdempotencyKey: e.IdempotencyKey,
		TenantID:       e.TenantID.String(),
		WorkflowID:     e.WorkflowID,
		RunID:          e.RunID,
		Payload:        e.Payload,
	}
}

// PairsScoredPayload contains the data for PairsScored events.
type PairsScoredPayload struct {
	RecordCount int     `json:"record_count" validate:"min=0"`
	Comparisons int     `json:"comparisons" validate:"min=0"`
	EdgeCount   int     `json:"edge_count" validate:"min=0"`
	Threshold   float64 `json:"threshold" validate:"gte=0,lte=1"`
}

// Validate checks if the payload meets all requirements.
func (p *PairsScoredPayload) Validate() error { return validate.Struct(p) }

// BucketsFormedPayload contains the data for BucketsFormed events.
type BucketsFormedPayload struct {
	// RecordCount is the size of the linked batch.
	RecordCount int `json:"record_count" validate:"min=0"`

	// BucketCount is the number of buckets before the output filter.
	BucketCount int `json:"bucket_count" validate:"min=0"`

	// ReportedBuckets is the number of buckets that passed MinBucketSize.
	ReportedBuckets int `json:"reported_buckets" validate:"min=0"`

	// MultiMemberBuckets counts buckets with more than one record.
	MultiMemberBuckets int `json:"multi_member_buckets" validate:"min=0"`

	// LargestBucket is the size of the biggest bucket.
	LargestBucket int `json:"largest_bucket" validate:"min=0"`

	// EdgeCount is the number of qualifying pairs.
	EdgeCount int `json:"edge_count" validate:"min=0"`

	// BucketIDs lists the reported bucket ids in result order.
	BucketIDs []string `json:"bucket_ids,omitempty"`
}

// Validate checks if the payload meets all requirements.
func (p *BucketsFormedPayload) Validate() error { return validate.Struct(p) }

// NewEventEnvelope creates a new EventEnvelope with required fields populated.
func NewEventEnvelope(
	eventType EventType,
	tenantID uuid.UUID,
	workflowID, runID string,
	payload json.RawMessage,
	producer string,
) EventEnvelope {
	return EventEnvelope{
		EventType:  eventType,
		Version:    1,
		TenantID:   tenantID,
		WorkflowID: workflowID,
		RunID:      runID,
		Payload:    payload,
		Producer:   producer,
		OccurredAt: time.Now(),
	}
}

// GenerateIdempotencyKey creates a deterministic key for event deduplication.
// Retries and replays of the same logical event produce identical keys.
func GenerateIdempotencyKey(clientIdempotencyKey, eventSuffix string) string {
	hasher := sha256.New()
	hasher.Write([]byte(clientIdempotencyKey + eventSuffix))
	return hex.EncodeToString(hasher.Sum(nil))
}

// PairsScoredIdempotencyKey is H(client_idem_key || ":pairs:1").
func PairsScoredIdempotencyKey(clientIdempotencyKey string) string {
	return GenerateIdempotencyKey(clientIdempotencyKey, ":pairs:1")
}

// BucketsFormedIdempotencyKey is H(client_idem_key || ":buckets:1").
func BucketsFormedIdempotencyKey(clientIdempotencyKey string) string {
	return GenerateIdempotencyKey(clientIdempotencyKey, ":buckets:1")
}

// NewPairsScoredEvent creates a PairsScored event envelope.
func NewPairsScoredEvent(
	tenantID uuid.UUID,
	workflowID, runID string,
	payload PairsScoredPayload,
	clientIdempotencyKey string,
) (EventEnvelope, error) {
	if err := payload.Validate(); err != nil {
		return EventEnvelope{}, fmt.Errorf("invalid pairs scored payload: %w", err)
	}
	return sealEnvelope(EventTypePairsScored, tenantID, workflowID, runID, payload,
		"activity.score_pairs", PairsScoredIdempotencyKey(clientIdempotencyKey))
}

// NewBucketsFormedEvent creates a BucketsFormed event envelope summarizing a result.
// bucketCount is the number of buckets before the MinBucketSize output filter.
func NewBucketsFormedEvent(
	tenantID uuid.UUID,
	workflowID, runID string,
	result *LinkageResult,
	recordCount, bucketCount int,
	clientIdempotencyKey string,
) (EventEnvelope, error) {
	if result == nil {
		return EventEnvelope{}, fmt.Errorf("%w: nil linkage result", ErrInvalidRequest)
	}

	payload := BucketsFormedPayload{
		RecordCount:     recordCount,
		BucketCount:     bucketCount,
		ReportedBuckets: len(result.Buckets),
		EdgeCount:       len(result.Pairwise),
	}
	for i := range result.Buckets {
		size := result.Buckets[i].Size()
		if size > 1 {
			payload.MultiMemberBuckets++
		}
		if size > payload.LargestBucket {
			payload.LargestBucket = size
		}
		payload.BucketIDs = append(payload.BucketIDs, result.Buckets[i].ID)
	}

	if err := payload.Validate(); err != nil {
		return EventEnvelope{}, fmt.Errorf("invalid buckets formed payload: %w", err)
	}
	return sealEnvelope(EventTypeBucketsFormed, tenantID, workflowID, runID, payload,
		"activity.build_buckets", BucketsFormedIdempotencyKey(clientIdempotencyKey))
}

func sealEnvelope(
	eventType EventType,
	tenantID uuid.UUID,
	workflowID, runID string,
	payload any,
	producer, idempotencyKey string,
) (EventEnvelope, error) {
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return EventEnvelope{}, fmt.Errorf("failed to marshal payload: %w", err)
	}

	envelope := NewEventEnvelope(eventType, tenantID, workflowID, runID, payloadJSON, producer)
	envelope.IdempotencyKey = idempotencyKey

	if err := envelope.Validate(); err != nil {
		return EventEnvelope{}, fmt.Errorf("invalid event envelope: %w", err)
	}
	return envelope, nil
}
