package scoring

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.temporal.io/sdk/temporal"
	"golang.org/x/time/rate"

	"github.com/ahrav/go-corroborate/internal/cluster"
	"github.com/ahrav/go-corroborate/internal/domain"
	pkgactivity "github.com/ahrav/go-corroborate/pkg/activity"
)

// heartbeatInterval throttles scan heartbeats. The workflow's heartbeat
// timeout must stay well above this value.
const heartbeatInterval = 5 * time.Second

// ProgressReporter is a function type for reporting progress during long-running operations.
// This abstraction allows clean separation between business logic (progress reporting)
// and infrastructure concerns (heartbeat implementation).
type ProgressReporter func(message string)

// NewTemporalProgressReporter creates a ProgressReporter that converts progress messages
// to Temporal heartbeats. This is the production implementation used in workflows.
func NewTemporalProgressReporter(
	ctx context.Context, baseActivities pkgactivity.BaseActivities,
) ProgressReporter {
	return func(message string) {
		baseActivities.RecordHeartbeat(ctx, message)
	}
}

// Activities handles pairwise scoring Temporal activities.
// It runs the quadratic similarity scan over a batch and emits a PairsScored
// event summarizing the scan.
type Activities struct {
	pkgactivity.BaseActivities
	events           *EventEmitter
	progressReporter ProgressReporter
}

// NewActivities creates scoring activities with the provided dependencies.
// A nil progressReporter reports progress as Temporal heartbeats.
func NewActivities(base pkgactivity.BaseActivities, progressReporter ProgressReporter) *Activities {
	return &Activities{
		BaseActivities:   base,
		events:           NewEventEmitter(base),
		progressReporter: progressReporter,
	}
}

// ScorePairs scores every pair of records in the batch and returns the pairs
// whose overall similarity reaches the configured threshold.
//
// Validation failures are non-retryable. Cancellation is returned as a
// retryable error so Temporal can reschedule the scan.
func (a *Activities) ScorePairs(
	ctx context.Context,
	input domain.ScorePairsInput,
) (*domain.ScorePairsOutput, error) {
	if err := input.Validate(); err != nil {
		return nil, nonRetryable("ScorePairs", err, "invalid input")
	}

	cfg := input.Config.Normalize()
	records := domain.SanitizeRecords(input.Records)

	wfCtx := a.GetWorkflowContext(ctx)
	pkgactivity.SafeLog(ctx, "Starting ScorePairs activity",
		"workflow_id", wfCtx.WorkflowID,
		"activity_id", wfCtx.ActivityID,
		"records", len(records),
		"threshold", cfg.Threshold,
		"workers", cfg.Workers)

	reporter := a.progressReporter
	if reporter == nil {
		reporter = NewTemporalProgressReporter(ctx, a.BaseActivities)
	}
	throttle := rate.Sometimes{Interval: heartbeatInterval}
	progress := cluster.WithProgress(func(done, total int) {
		throttle.Do(func() {
			reporter(fmt.Sprintf("Scored row %d/%d", done, total))
		})
	})

	edges, err := ScoreEdges(ctx, records, cfg, progress)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, retryable("ScorePairs", err, "context cancelled")
		}
		return nil, retryable("ScorePairs", err, "pairwise scan failed")
	}

	output := &domain.ScorePairsOutput{
		Edges:       edges,
		Comparisons: cluster.Comparisons(len(records)),
	}
	if err := output.Validate(); err != nil {
		return nil, nonRetryable("ScorePairs", err, "invalid output")
	}

	a.events.EmitPairsScored(ctx, domain.PairsScoredPayload{
		RecordCount: len(records),
		Comparisons: output.Comparisons,
		EdgeCount:   len(output.Edges),
		Threshold:   cfg.Threshold,
	}, wfCtx, input.ClientIdempotencyKey)

	pkgactivity.SafeLog(ctx, "ScorePairs completed",
		"comparisons", output.Comparisons,
		"edges", len(output.Edges))

	return output, nil
}

// Error helpers - wrap errors as Temporal application errors

func nonRetryable(tag string, cause error, msg string) error {
	return temporal.NewNonRetryableApplicationError(msg, tag, cause)
}

func retryable(tag string, cause error, msg string) error {
	return temporal.NewApplicationError(msg, tag, cause)
}
