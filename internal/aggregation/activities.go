package aggregation

import (
	"context"

	"go.temporal.io/sdk/temporal"

	"github.com/ahrav/go-corroborate/internal/domain"
	"github.com/ahrav/go-corroborate/pkg/activity"
)

// Activities handles bucket-building Temporal activities.
// It turns the edges of a pairwise scan into enriched buckets.
type Activities struct {
	activity.BaseActivities
	events *EventEmitter
}

// NewActivities creates aggregation activities with the provided dependencies.
// The base activities provide common infrastructure for logging and event emission.
func NewActivities(base activity.BaseActivities) *Activities {
	return &Activities{
		BaseActivities: base,
		events:         NewEventEmitter(base),
	}
}

// BuildBuckets partitions the batch by the given edges, summarizes and
// explains every bucket and applies the MinBucketSize output filter.
//
// The operation:
// 1. Validates input records, edges and configuration
// 2. Partitions records into buckets
// 3. Computes aggregates and consensus explanations per bucket
// 4. Emits a BucketsFormed event (best effort)
// 5. Returns the linkage result.
//
// Every failure is deterministic for a given input, so all errors are non-retryable.
func (a *Activities) BuildBuckets(
	ctx context.Context,
	input domain.BuildBucketsInput,
) (*domain.LinkageResult, error) {
	if err := input.Validate(); err != nil {
		return nil, nonRetryable("BuildBuckets", err, "invalid input")
	}

	records := domain.SanitizeRecords(input.Records)

	wfCtx := a.GetWorkflowContext(ctx)
	activity.SafeLog(ctx, "Starting BuildBuckets activity",
		"workflow_id", wfCtx.WorkflowID,
		"activity_id", wfCtx.ActivityID,
		"records", len(records),
		"edges", len(input.Edges))

	assembly, err := AssembleBuckets(records, input.Edges, input.Config)
	if err != nil {
		return nil, nonRetryable("BuildBuckets", err, "bucket assembly failed")
	}

	result := &domain.LinkageResult{
		Buckets:  assembly.Buckets,
		Pairwise: input.Edges,
	}
	if result.Pairwise == nil {
		result.Pairwise = []domain.SimilarityEdge{}
	}

	a.events.EmitBucketsFormed(ctx, result, len(records), assembly.Formed, wfCtx, input.ClientIdempotencyKey)

	activity.SafeLog(ctx, "BuildBuckets completed",
		"buckets_formed", assembly.Formed,
		"buckets_reported", len(result.Buckets),
		"multi_member_buckets", assembly.MultiMember)

	return result, nil
}

// Error helpers - wrap errors as Temporal application errors

func nonRetryable(tag string, cause error, msg string) error {
	return temporal.NewNonRetryableApplicationError(msg, tag, cause)
}
