package similarity

import (
	"fmt"

	"github.com/seqbio/countnorm"
)

// Linkage selects how the distance between merged clusters is updated.
type Linkage int

const (
	// LinkageAverage merges on the mean pairwise distance (UPGMA).
	LinkageAverage Linkage = iota
	// LinkageComplete merges on the maximum pairwise distance.
	LinkageComplete
)

// ParseLinkage maps a CLI-facing name to a Linkage.
func ParseLinkage(name string) (Linkage, error) {
	switch name {
	case "average":
		return LinkageAverage, nil
	case "complete":
		return LinkageComplete, nil
	}
	return 0, fmt.Errorf("unknown linkage %q (want average or complete)", name)
}

// Node is one vertex of a dendrogram: either a leaf carrying a sample name,
// or an internal merge of exactly two children at a given height.
type Node struct {
	Sample string // set on leaves only
	Left   *Node
	Right  *Node
	Height float64 // merge distance; 0 for leaves

	size int
}

// Leaf reports whether the node is a sample leaf.
func (n *Node) Leaf() bool { return n.Left == nil && n.Right == nil }

// Leaves returns the sample names under the node in left-to-right order.
func (n *Node) Leaves() []string {
	if n.Leaf() {
		return []string{n.Sample}
	}
	return append(n.Left.Leaves(), n.Right.Leaves()...)
}

// Dendrogram is the binary merge tree produced by hierarchical clustering.
type Dendrogram struct {
	Root *Node
}

// Cluster builds a dendrogram over the correlation matrix's samples by
// agglomerative hierarchical clustering on 1 − r distances. Merge updates
// follow the Lance-Williams recurrences for the chosen linkage. When several
// candidate pairs tie on distance, the pair that appears first in index
// order merges first, so repeated runs produce identical trees.
func Cluster(c *CorrMatrix, linkage Linkage) (*Dendrogram, error) {
	n := c.Len()
	if n < 2 {
		return nil, fmt.Errorf("%w: clustering needs at least 2 samples, have %d", countnorm.ErrDegenerateInput, n)
	}
	if linkage != LinkageAverage && linkage != LinkageComplete {
		return nil, fmt.Errorf("invalid linkage %d", linkage)
	}

	// Working distance matrix over active clusters.
	dist := make([][]float64, n)
	for i := range dist {
		dist[i] = make([]float64, n)
		for j := range dist[i] {
			if i != j {
				dist[i][j] = c.Distance(i, j)
			}
		}
	}

	active := make([]*Node, n)
	for i, s := range c.Samples() {
		active[i] = &Node{Sample: s, size: 1}
	}

	for len(active) > 1 {
		// Find the closest active pair; ties break to the first in index
		// order via the strict comparison.
		bi, bj, best := 0, 1, dist[0][1]
		for i := 0; i < len(active); i++ {
			for j := i + 1; j < len(active); j++ {
				if dist[i][j] < best {
					bi, bj, best = i, j, dist[i][j]
				}
			}
		}

		a, b := active[bi], active[bj]
		merged := &Node{Left: a, Right: b, Height: best, size: a.size + b.size}

		// Distances from the merged cluster to the rest.
		newDist := make([]float64, 0, len(active)-1)
		for k := 0; k < len(active); k++ {
			if k == bi || k == bj {
				continue
			}
			var d float64
			switch linkage {
			case LinkageAverage:
				d = (float64(a.size)*dist[bi][k] + float64(b.size)*dist[bj][k]) / float64(a.size+b.size)
			case LinkageComplete:
				d = dist[bi][k]
				if dist[bj][k] > d {
					d = dist[bj][k]
				}
			}
			newDist = append(newDist, d)
		}

		// Compact: drop rows/columns bi and bj, append the merged cluster.
		keep := make([]int, 0, len(active)-2)
		for k := 0; k < len(active); k++ {
			if k != bi && k != bj {
				keep = append(keep, k)
			}
		}

		next := make([]*Node, 0, len(keep)+1)
		for _, k := range keep {
			next = append(next, active[k])
		}
		next = append(next, merged)

		nd := make([][]float64, len(next))
		for x := range nd {
			nd[x] = make([]float64, len(next))
		}
		for x, kx := range keep {
			for y, ky := range keep {
				nd[x][y] = dist[kx][ky]
			}
		}
		for x := range keep {
			nd[x][len(keep)] = newDist[x]
			nd[len(keep)][x] = newDist[x]
		}

		active = next
		dist = nd
	}

	return &Dendrogram{Root: active[0]}, nil
}
