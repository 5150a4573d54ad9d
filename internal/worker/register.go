package worker

import (
	sdkworker "go.temporal.io/sdk/worker"

	"github.com/ahrav/go-corroborate/internal/aggregation"
	"github.com/ahrav/go-corroborate/internal/scoring"
	"github.com/ahrav/go-corroborate/internal/workflow"
	"github.com/ahrav/go-corroborate/pkg/activity"
	"github.com/ahrav/go-corroborate/pkg/events"
)

// Registrar is the subset of a Temporal worker used for registration.
type Registrar interface {
	RegisterWorkflow(w any)
	RegisterActivity(a any)
}

var _ Registrar = sdkworker.Worker(nil)

// RegisterAll registers all workflows and activities with the Temporal worker.
// This function must be called during worker initialization before starting
// the worker. The registration is not thread-safe and should only be called once
// during application startup.
//
// A nil sink disables event emission.
func RegisterAll(w Registrar, sink events.EventSink) {
	if sink == nil {
		sink = events.NewNoOpEventSink()
	}
	base := activity.NewBaseActivities(sink)

	scoringActivities := scoring.NewActivities(base, nil)
	aggregationActivities := aggregation.NewActivities(base)

	w.RegisterWorkflow(workflow.LinkageWorkflow)

	w.RegisterActivity(scoringActivities.ScorePairs)
	w.RegisterActivity(aggregationActivities.BuildBuckets)
}
