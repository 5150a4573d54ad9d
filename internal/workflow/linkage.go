package workflow

import (
	"fmt"
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/ahrav/go-corroborate/internal/aggregation"
	"github.com/ahrav/go-corroborate/internal/domain"
	"github.com/ahrav/go-corroborate/internal/scoring"
)

// Activity timeouts. The scan heartbeats every few seconds, so only the
// heartbeat timeout needs to track its progress.
const (
	ScorePairsTimeout   = 30 * time.Minute
	BuildBucketsTimeout = 5 * time.Minute
	HeartbeatTimeout    = 30 * time.Second
)

// Activity references for ExecuteActivity. Only the method names are used.
var (
	scoringActivities     *scoring.Activities
	aggregationActivities *aggregation.Activities
)

// LinkageWorkflow partitions a batch of records into buckets of likely
// duplicates with deterministic execution. All workflow code must use
// workflow-safe APIs only.
func LinkageWorkflow(
	ctx workflow.Context,
	req domain.LinkageRequest,
) (*domain.LinkageResult, error) {
	// Version gate enables safe evolution and backward compatibility.
	const currentVersion = 1
	_ = workflow.GetVersion(ctx, "linkage.v", workflow.DefaultVersion, currentVersion)

	// Validate request early to fail fast on invalid input.
	if err := req.Validate(); err != nil {
		return nil, temporal.NewNonRetryableApplicationError(
			"invalid linkage request",
			"Validation",
			err,
		)
	}
	cfg := req.Config.Normalize()

	retry := &temporal.RetryPolicy{
		InitialInterval:    time.Second,
		BackoffCoefficient: 2.0,
		MaximumInterval:    time.Minute,
		MaximumAttempts:    3,
	}

	scanCtx := workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: ScorePairsTimeout,
		HeartbeatTimeout:    HeartbeatTimeout,
		RetryPolicy:         retry,
	})
	var scored domain.ScorePairsOutput
	err := workflow.ExecuteActivity(scanCtx, scoringActivities.ScorePairs, domain.ScorePairsInput{
		Records:              req.Records,
		Config:               cfg,
		ClientIdempotencyKey: req.ClientIdempotencyKey,
	}).Get(ctx, &scored)
	if err != nil {
		return nil, fmt.Errorf("score pairs: %w", err)
	}

	buildCtx := workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: BuildBucketsTimeout,
		RetryPolicy:         retry,
	})
	var result domain.LinkageResult
	err = workflow.ExecuteActivity(buildCtx, aggregationActivities.BuildBuckets, domain.BuildBucketsInput{
		Records:              req.Records,
		Edges:                scored.Edges,
		Config:               cfg,
		ClientIdempotencyKey: req.ClientIdempotencyKey,
	}).Get(ctx, &result)
	if err != nil {
		return nil, fmt.Errorf("build buckets: %w", err)
	}

	workflow.GetLogger(ctx).Info("Linkage completed",
		"records", len(req.Records),
		"comparisons", scored.Comparisons,
		"edges", len(scored.Edges),
		"buckets", len(result.Buckets))

	return &result, nil
}
