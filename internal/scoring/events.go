// Package scoring implements pairwise record similarity.
//
// Scorer combines the per-aspect strategies of package similarity into one
// weighted score. ScoreEdges runs the full pairwise scan for a batch, and
// Activities exposes that scan as a Temporal activity that heartbeats its
// progress and emits a PairsScored event for projections.
package scoring

import (
	"context"

	"github.com/ahrav/go-corroborate/internal/domain"
	"github.com/ahrav/go-corroborate/pkg/activity"
)

// EventEmitter handles domain event emission for scoring operations.
// All event emission is best-effort and failures are logged without
// affecting the scoring activity.
type EventEmitter struct{ base activity.BaseActivities }

// NewEventEmitter creates a new EventEmitter with base activity infrastructure.
func NewEventEmitter(base activity.BaseActivities) *EventEmitter {
	return &EventEmitter{base: base}
}

// EmitPairsScored emits one PairsScored event summarizing a pairwise scan.
func (e *EventEmitter) EmitPairsScored(
	ctx context.Context,
	payload domain.PairsScoredPayload,
	wfCtx activity.WorkflowContext,
	clientIdemKey string,
) {
	tenantID, err := activity.ParseTenantID(wfCtx.TenantID)
	if err != nil {
		activity.SafeLogError(ctx, "Failed to parse tenant ID for PairsScored event",
			"tenant_id", wfCtx.TenantID,
			"error", err)
		return
	}

	domainEvent, err := domain.NewPairsScoredEvent(
		tenantID,
		wfCtx.WorkflowID,
		wfCtx.RunID,
		payload,
		clientIdemKey,
	)
	if err != nil {
		activity.SafeLogError(ctx, "Failed to create PairsScored event", "error", err)
		return
	}

	e.base.EmitEventSafe(ctx, domainEvent.ToEnvelope(), "PairsScored")
}
