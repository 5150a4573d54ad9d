// Package workflow implements Temporal workflow definitions for record linkage.
//
// LinkageWorkflow coordinates the two halves of a linkage run as activities:
// the pairwise scan (scoring.Activities.ScorePairs) and bucket assembly
// (aggregation.Activities.BuildBuckets). Splitting the run lets the quadratic
// scan heartbeat and retry independently of the cheap partition step.
//
// Workflows should not contain any non-deterministic operations
// such as random number generation, system time access, or external I/O.
// Such operations should be delegated to activities.
package workflow
