package aggregation

import (
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/ahrav/go-corroborate/internal/cluster"
	"github.com/ahrav/go-corroborate/internal/domain"
	"github.com/ahrav/go-corroborate/internal/explain"
)

// bucketNamespace scopes the name-based UUIDs used as bucket ids.
var bucketNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/ahrav/go-corroborate/bucket"))

// BucketID derives a stable id from the member ids. The same membership
// always yields the same id regardless of member order.
func BucketID(entryIDs []string) string {
	sorted := append([]string(nil), entryIDs...)
	sort.Strings(sorted)
	return uuid.NewSHA1(bucketNamespace, []byte(strings.Join(sorted, "\x1f"))).String()
}

// Assembly is the outcome of AssembleBuckets.
type Assembly struct {
	// Buckets passed the MinBucketSize filter, largest first.
	Buckets []domain.Bucket

	// Formed counts every bucket before filtering.
	Formed int

	// MultiMember counts formed buckets with more than one member.
	MultiMember int
}

// AssembleBuckets partitions records by the given edges and enriches each
// bucket with aggregates and an explanation. Records must be sanitized and
// carry unique ids. Edges referencing ids outside the batch are rejected with
// domain.ErrUnknownRecordID.
//
// Buckets are ordered by descending size, ties by their earliest member, and
// filtered by cfg.MinBucketSize after the partition is complete.
func AssembleBuckets(
	records []domain.Record,
	edges []domain.SimilarityEdge,
	cfg domain.LinkageConfig,
) (*Assembly, error) {
	cfg = cfg.Normalize()

	index := make(map[string]int, len(records))
	for i := range records {
		index[records[i].ID] = i
	}

	clusterEdges := make([]cluster.Edge, len(edges))
	for k, e := range edges {
		i, okA := index[e.A]
		j, okB := index[e.B]
		if !okA || !okB {
			return nil, fmt.Errorf("%w: %q-%q", domain.ErrUnknownRecordID, e.A, e.B)
		}
		if i > j {
			i, j = j, i
		}
		clusterEdges[k] = cluster.Edge{I: i, J: j, Score: e.Score}
	}

	groups := cluster.Partition(len(records), clusterEdges)

	groupOf := make([]int, len(records))
	for g, members := range groups {
		for _, i := range members {
			groupOf[i] = g
		}
	}
	internal := make([][]domain.SimilarityEdge, len(groups))
	for k, e := range clusterEdges {
		g := groupOf[e.I]
		internal[g] = append(internal[g], edges[k])
	}

	explainer := explain.New(cfg.Consensus)
	out := &Assembly{Formed: len(groups), Buckets: make([]domain.Bucket, 0, len(groups))}
	for g, idx := range groups {
		if len(idx) > 1 {
			out.MultiMember++
		}
		if len(idx) < cfg.MinBucketSize {
			continue
		}

		members := make([]domain.Record, len(idx))
		ids := make([]string, len(idx))
		for k, i := range idx {
			members[k] = records[i]
			ids[k] = records[i].ID
		}
		edgesIn := internal[g]
		if edgesIn == nil {
			edgesIn = []domain.SimilarityEdge{}
		}

		out.Buckets = append(out.Buckets, domain.Bucket{
			ID:            BucketID(ids),
			EntryIDs:      ids,
			InternalEdges: edgesIn,
			Aggregates:    Summarize(members),
			Explanation:   explainer.Explain(members),
		})
	}
	return out, nil
}
