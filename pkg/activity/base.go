// Package activity provides common infrastructure for all Temporal activity implementations.
// It includes base types, context extraction, safe logging, and event emission utilities
// that are shared across all domain-specific activity packages.
package activity

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.temporal.io/sdk/activity"

	"github.com/ahrav/go-corroborate/pkg/events"
)

// DefaultTenantID is used until workflows carry tenant metadata.
const DefaultTenantID = "550e8400-e29b-41d4-a716-446655440000"

// WorkflowContext contains metadata extracted from the Temporal activity context.
// Outside an activity (unit tests, the CLI) fallback values are used.
type WorkflowContext struct {
	WorkflowID string
	RunID      string
	TenantID   string
	ActivityID string
}

// BaseActivities provides common infrastructure for all activity types.
// It handles event emission, context extraction, and safe logging in a way
// that works both in Temporal activity contexts and test environments.
type BaseActivities struct {
	eventSink events.EventSink
}

// NewBaseActivities creates a new BaseActivities instance with the provided event sink.
// The event sink can be nil when event emission is not needed.
func NewBaseActivities(sink events.EventSink) BaseActivities {
	return BaseActivities{eventSink: sink}
}

// GetWorkflowContext safely extracts workflow context from the activity context.
// Outside a Temporal activity (where activity.GetInfo panics) it returns a
// fixed workflow ID so idempotency keys stay deterministic in tests.
func (b *BaseActivities) GetWorkflowContext(ctx context.Context) WorkflowContext {
	var wfCtx WorkflowContext

	func() {
		defer func() {
			if r := recover(); r != nil {
				wfCtx.WorkflowID = "550e8400-e29b-41d4-a716-446655440000"
				wfCtx.RunID = "local-run-" + uuid.New().String()[:8]
				wfCtx.TenantID = DefaultTenantID
				wfCtx.ActivityID = "local-activity"
			}
		}()

		info := activity.GetInfo(ctx)
		wfCtx.WorkflowID = info.WorkflowExecution.ID
		wfCtx.RunID = info.WorkflowExecution.RunID
		wfCtx.ActivityID = info.ActivityID
		wfCtx.TenantID = "default" // TODO: read the tenant from workflow memo once requests carry one
	}()

	return wfCtx
}

// ParseTenantID parses a tenant UUID. The placeholder "default" maps to DefaultTenantID.
func ParseTenantID(input string) (uuid.UUID, error) {
	if input == "default" {
		return uuid.MustParse(DefaultTenantID), nil
	}
	parsed, err := uuid.Parse(input)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid tenant UUID '%s': %w", input, err)
	}
	return parsed, nil
}

// EmitEventSafe provides best-effort event emission with a short retry.
// Events feed projections but must never fail the primary operation.
//
// The method will:
// - Skip emission if eventSink is nil
// - Retry up to 2 times with 200ms delay
// - Log success or failure without propagating errors.
func (b *BaseActivities) EmitEventSafe(
	ctx context.Context,
	envelope events.Envelope,
	description string,
) {
	if b.eventSink == nil {
		return
	}

	const maxAttempts = 2
	const retryDelay = 200 * time.Millisecond

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(retryDelay):
			case <-ctx.Done():
				SafeLogError(ctx, fmt.Sprintf("Event emission cancelled: %s", description),
					"event_type", envelope.Type)
				return
			}
		}

		if err := b.eventSink.Append(ctx, envelope); err != nil {
			lastErr = err
			continue
		}

		SafeLog(ctx, fmt.Sprintf("Event emitted: %s", description),
			"event_type", envelope.Type,
			"idempotency_key", envelope.IdempotencyKey)
		return
	}

	SafeLogError(ctx, fmt.Sprintf("Failed to emit %s after %d attempts", description, maxAttempts),
		"event_type", envelope.Type,
		"error", lastErr)
}

// RecordHeartbeat safely records a heartbeat in the Temporal activity context.
// This method is safe to call in non-activity contexts where it will be ignored.
func (b *BaseActivities) RecordHeartbeat(ctx context.Context, details ...any) {
	RecordHeartbeat(ctx, details...)
}

// SafeLog logs through the activity logger inside a Temporal activity and
// through slog.Default everywhere else.
func SafeLog(ctx context.Context, msg string, keyvals ...any) {
	if logger, ok := activityLogger(ctx); ok {
		logger.Info(msg, keyvals...)
		return
	}
	slog.Default().With("component", "activity").InfoContext(ctx, msg, keyvals...)
}

// SafeLogError is SafeLog at ERROR level.
func SafeLogError(ctx context.Context, msg string, keyvals ...any) {
	if logger, ok := activityLogger(ctx); ok {
		logger.Error(msg, keyvals...)
		return
	}
	slog.Default().With("component", "activity").ErrorContext(ctx, msg, keyvals...)
}

// leveledLogger is the subset of the Temporal logger used here.
type leveledLogger interface {
	Info(msg string, keyvals ...any)
	Error(msg string, keyvals ...any)
}

// activityLogger returns the Temporal activity logger when ctx is an activity context.
func activityLogger(ctx context.Context) (logger leveledLogger, ok bool) {
	defer func() {
		if recover() != nil {
			logger, ok = nil, false
		}
	}()
	return activity.GetLogger(ctx), true
}

// RecordHeartbeat safely records activity heartbeat with details.
// Heartbeats keep long scans from hitting the heartbeat timeout.
// Calls outside an activity context are ignored.
func RecordHeartbeat(ctx context.Context, details ...any) {
	defer func() { _ = recover() }() // not an activity context
	activity.RecordHeartbeat(ctx, details...)
}
