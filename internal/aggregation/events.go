// Package aggregation turns similarity edges into enriched buckets.
//
// AssembleBuckets partitions a batch by its edges and attaches quantitative
// aggregates (Summarize) and consensus explanations to every bucket. The
// BuildBuckets Temporal activity wraps it and emits a BucketsFormed event.
package aggregation

import (
	"context"
	"fmt"

	"github.com/ahrav/go-corroborate/internal/domain"
	"github.com/ahrav/go-corroborate/pkg/activity"
)

// EventEmitter handles event emission for the aggregation domain.
// It encapsulates the logic for creating and emitting bucket events with
// proper metadata and error handling.
type EventEmitter struct {
	base activity.BaseActivities
}

// NewEventEmitter creates a new EventEmitter with the provided base activities.
func NewEventEmitter(base activity.BaseActivities) *EventEmitter {
	return &EventEmitter{base: base}
}

// EmitBucketsFormed emits a BucketsFormed event summarizing a linkage result.
// Event emission is best-effort; failures are logged without affecting core operations.
func (e *EventEmitter) EmitBucketsFormed(
	ctx context.Context,
	result *domain.LinkageResult,
	recordCount, bucketCount int,
	wfCtx activity.WorkflowContext,
	clientIdemKey string,
) {
	tenantID, err := activity.ParseTenantID(wfCtx.TenantID)
	if err != nil {
		activity.SafeLogError(ctx, "Failed to parse tenant ID for BucketsFormed event",
			"tenant_id", wfCtx.TenantID,
			"error", err)
		return
	}

	domainEvent, err := domain.NewBucketsFormedEvent(
		tenantID,
		wfCtx.WorkflowID,
		wfCtx.RunID,
		result,
		recordCount,
		bucketCount,
		clientIdemKey,
	)
	if err != nil {
		activity.SafeLogError(ctx, "Failed to create BucketsFormed event", "error", err)
		return
	}

	e.base.EmitEventSafe(ctx, domainEvent.ToEnvelope(), fmt.Sprintf("BucketsFormed[%d]", bucketCount))
}
