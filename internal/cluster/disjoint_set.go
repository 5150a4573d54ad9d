// Package cluster partitions a batch into buckets of transitively similar records.
//
// The pairwise scan is row-sharded across goroutines; the union phase runs
// sequentially over the edges in scan order, so the partition and the edge
// list are identical for any worker count.
package cluster

// DisjointSet is an index-based union-find with union by size and path
// compression. Each linkage run allocates its own; nothing is shared.
type DisjointSet struct {
	parent []int
	size   []int
	sets   int
}

// NewDisjointSet creates n singleton sets labeled 0..n-1.
func NewDisjointSet(n int) *DisjointSet {
	d := &DisjointSet{
		parent: make([]int, n),
		size:   make([]int, n),
		sets:   n,
	}
	for i := range d.parent {
		d.parent[i] = i
		d.size[i] = 1
	}
	return d
}

// Find returns the representative of x's set.
func (d *DisjointSet) Find(x int) int {
	root := x
	for d.parent[root] != root {
		root = d.parent[root]
	}
	for d.parent[x] != root {
		next := d.parent[x]
		d.parent[x] = root
		x = next
	}
	return root
}

// Union merges the sets containing x and y and reports whether they were distinct.
// The larger set's root survives; on a tie x's root does.
func (d *DisjointSet) Union(x, y int) bool {
	rx, ry := d.Find(x), d.Find(y)
	if rx == ry {
		return false
	}
	if d.size[rx] < d.size[ry] {
		rx, ry = ry, rx
	}
	d.parent[ry] = rx
	d.size[rx] += d.size[ry]
	d.sets--
	return true
}

// Connected reports whether x and y share a set.
func (d *DisjointSet) Connected(x, y int) bool { return d.Find(x) == d.Find(y) }

// SetSize returns the number of elements in x's set.
func (d *DisjointSet) SetSize(x int) int { return d.size[d.Find(x)] }

// Sets returns the number of disjoint sets.
func (d *DisjointSet) Sets() int { return d.sets }

// Len returns the number of elements.
func (d *DisjointSet) Len() int { return len(d.parent) }
