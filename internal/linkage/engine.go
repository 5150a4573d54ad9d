// Package linkage is the in-process entry point of the record linkage engine.
//
// An Engine runs the full pipeline synchronously: sanitize records, score all
// pairs, partition by the qualifying edges, then summarize and explain every
// bucket. The Temporal workflow runs the same two halves as separate
// activities; Engine is what the CLI and tests call directly.
package linkage

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ahrav/go-corroborate/internal/aggregation"
	"github.com/ahrav/go-corroborate/internal/cluster"
	"github.com/ahrav/go-corroborate/internal/domain"
	"github.com/ahrav/go-corroborate/internal/scoring"
)

// Engine links records into buckets of likely duplicates.
// An Engine holds only immutable configuration and is safe for concurrent use.
type Engine struct {
	cfg    domain.LinkageConfig
	logger *slog.Logger
	scan   []cluster.Option
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger used for run summaries.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithProgress reports pairwise scan progress.
func WithProgress(fn cluster.ProgressFunc) Option {
	return func(e *Engine) { e.scan = append(e.scan, cluster.WithProgress(fn)) }
}

// New validates cfg and returns an engine. Zero-valued tolerances fall back to
// their defaults before validation.
func New(cfg domain.LinkageConfig, opts ...Option) (*Engine, error) {
	cfg = cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	e := &Engine{
		cfg:    cfg,
		logger: slog.Default().With("component", "linkage"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Config returns a copy of the effective configuration.
func (e *Engine) Config() domain.LinkageConfig { return e.cfg.Clone() }

// Link partitions records into buckets. Empty or duplicate ids are the only
// input errors; every other malformed value is treated as absent. An empty
// batch yields empty, non-nil slices.
func (e *Engine) Link(ctx context.Context, records []domain.Record) (*domain.LinkageResult, error) {
	start := time.Now()

	records = domain.SanitizeRecords(records)
	if err := domain.CheckRecordIDs(records); err != nil {
		return nil, err
	}

	edges, err := scoring.ScoreEdges(ctx, records, e.cfg, e.scan...)
	if err != nil {
		return nil, fmt.Errorf("pairwise scan: %w", err)
	}
	if edges == nil {
		edges = []domain.SimilarityEdge{}
	}

	assembly, err := aggregation.AssembleBuckets(records, edges, e.cfg)
	if err != nil {
		return nil, fmt.Errorf("assemble buckets: %w", err)
	}

	e.logger.InfoContext(ctx, "linkage completed",
		"records", len(records),
		"comparisons", cluster.Comparisons(len(records)),
		"edges", len(edges),
		"buckets_formed", assembly.Formed,
		"buckets_reported", len(assembly.Buckets),
		"multi_member_buckets", assembly.MultiMember,
		"threshold", e.cfg.Threshold,
		"duration", time.Since(start))

	return &domain.LinkageResult{Buckets: assembly.Buckets, Pairwise: edges}, nil
}
