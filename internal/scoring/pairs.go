package scoring

import (
	"context"

	"github.com/ahrav/go-corroborate/internal/cluster"
	"github.com/ahrav/go-corroborate/internal/domain"
)

// ScoreEdges scores every pair of records and returns the pairs whose overall
// similarity reaches cfg.Threshold, in scan order. Records must already be
// sanitized; A is always the earlier record of the pair.
func ScoreEdges(
	ctx context.Context,
	records []domain.Record,
	cfg domain.LinkageConfig,
	opts ...cluster.Option,
) ([]domain.SimilarityEdge, error) {
	cfg = cfg.Normalize()
	scorer := NewScorer(cfg)

	score := func(i, j int) float64 {
		return scorer.Overall(&records[i], &records[j])
	}
	opts = append([]cluster.Option{cluster.WithWorkers(cfg.Workers)}, opts...)

	edges, err := cluster.Scan(ctx, len(records), score, cfg.Threshold, opts...)
	if err != nil {
		return nil, err
	}

	out := make([]domain.SimilarityEdge, len(edges))
	for k, e := range edges {
		out[k] = domain.SimilarityEdge{
			A:     records[e.I].ID,
			B:     records[e.J].ID,
			Score: e.Score,
		}
	}
	return out, nil
}
