package cluster

import (
	"context"
	"runtime"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Edge connects two item indices whose similarity reached the threshold. I < J.
type Edge struct {
	I, J  int
	Score float64
}

// ScoreFunc returns the similarity of items i and j. It must be safe for
// concurrent use and symmetric.
type ScoreFunc func(i, j int) float64

// ProgressFunc receives the number of scanned rows and the total row count.
// Calls are serialized.
type ProgressFunc func(done, total int)

type options struct {
	workers  int
	progress ProgressFunc
}

// Option configures a scan.
type Option func(*options)

// WithWorkers bounds the number of rows scored concurrently.
// Values below 1 use GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(o *options) { o.workers = n }
}

// WithProgress registers a callback invoked after each scanned row.
func WithProgress(fn ProgressFunc) Option {
	return func(o *options) { o.progress = fn }
}

func buildOptions(opts []Option) options {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.workers < 1 {
		o.workers = runtime.GOMAXPROCS(0)
	}
	return o
}

// Result is the outcome of a full build.
type Result struct {
	// Edges are the qualifying pairs in (i, j) scan order.
	Edges []Edge

	// Comparisons is the number of pairs scored.
	Comparisons int

	// Groups partition 0..n-1. Ordered by descending size, ties by lowest
	// member index. Members are in ascending index order.
	Groups [][]int
}

// Scan scores every pair i<j of n items and returns the pairs whose score is
// at least threshold, in (i, j) order. The context is checked once per row.
func Scan(ctx context.Context, n int, score ScoreFunc, threshold float64, opts ...Option) ([]Edge, error) {
	if n < 2 {
		return nil, ctx.Err()
	}
	o := buildOptions(opts)

	rows := make([][]Edge, n-1)
	total := n - 1
	var (
		mu   sync.Mutex
		done int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.workers)
	for i := 0; i < n-1; i++ {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			var row []Edge
			for j := i + 1; j < n; j++ {
				if s := score(i, j); s >= threshold {
					row = append(row, Edge{I: i, J: j, Score: s})
				}
			}
			rows[i] = row

			if o.progress != nil {
				mu.Lock()
				done++
				o.progress(done, total)
				mu.Unlock()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var edges []Edge
	for _, row := range rows {
		edges = append(edges, row...)
	}
	return edges, nil
}

// Partition unions the endpoints of every edge in order and groups the n
// items by representative.
func Partition(n int, edges []Edge) [][]int {
	dsu := NewDisjointSet(n)
	for _, e := range edges {
		dsu.Union(e.I, e.J)
	}

	groupOf := make(map[int]int, dsu.Sets())
	groups := make([][]int, 0, dsu.Sets())
	for i := 0; i < n; i++ {
		root := dsu.Find(i)
		idx, ok := groupOf[root]
		if !ok {
			idx = len(groups)
			groupOf[root] = idx
			groups = append(groups, nil)
		}
		groups[idx] = append(groups[idx], i)
	}

	// Groups were created in order of their lowest member, so a stable sort
	// by size keeps that as the tie breaker.
	sort.SliceStable(groups, func(a, b int) bool {
		return len(groups[a]) > len(groups[b])
	})
	return groups
}

// Build scans all pairs and partitions the items.
func Build(ctx context.Context, n int, score ScoreFunc, threshold float64, opts ...Option) (*Result, error) {
	edges, err := Scan(ctx, n, score, threshold, opts...)
	if err != nil {
		return nil, err
	}
	return &Result{
		Edges:       edges,
		Comparisons: Comparisons(n),
		Groups:      Partition(n, edges),
	}, nil
}

// Comparisons returns the number of unordered pairs among n items.
func Comparisons(n int) int {
	if n < 2 {
		return 0
	}
	return n * (n - 1) / 2
}
