package similarity

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/seqbio/countnorm"
	"github.com/seqbio/countnorm/norm"
)

func mustNormMatrix(t *testing.T, genes, samples []string, vals [][]float64) *norm.Matrix {
	t.Helper()
	m, err := norm.NewMatrix(genes, samples, vals)
	if err != nil {
		t.Fatal(err)
	}
	return m
}

func TestCorrelateIdenticalColumns(t *testing.T) {
	m := mustNormMatrix(t,
		[]string{"g1", "g2", "g3"},
		[]string{"s1", "s2"},
		[][]float64{
			{1, 1},
			{5, 5},
			{2, 2},
		},
	)

	c, err := Correlate(m)
	if err != nil {
		t.Fatal(err)
	}

	if got := c.At(0, 1); math.Abs(got-1) > 1e-12 {
		t.Fatalf("Correlation of identical columns: got %v, want 1", got)
	}
	if got := c.Distance(0, 1); math.Abs(got) > 1e-12 {
		t.Fatalf("Distance of identical columns: got %v, want 0", got)
	}
}

func TestCorrelateSymmetricUnitDiagonal(t *testing.T) {
	m := mustNormMatrix(t,
		[]string{"g1", "g2", "g3", "g4"},
		[]string{"s1", "s2", "s3"},
		[][]float64{
			{1, 9, 4},
			{2, 7, 4},
			{3, 5, 5},
			{4, 1, 9},
		},
	)

	c, err := Correlate(m)
	if err != nil {
		t.Fatal(err)
	}

	for i := 0; i < c.Len(); i++ {
		if c.At(i, i) != 1 {
			t.Fatalf("Diagonal [%d][%d] = %v, want exactly 1", i, i, c.At(i, i))
		}
		for j := 0; j < c.Len(); j++ {
			if c.At(i, j) != c.At(j, i) {
				t.Fatalf("Asymmetry at [%d][%d]: %v vs %v", i, j, c.At(i, j), c.At(j, i))
			}
			if c.At(i, j) < -1-1e-12 || c.At(i, j) > 1+1e-12 {
				t.Fatalf("Correlation out of range at [%d][%d]: %v", i, j, c.At(i, j))
			}
		}
	}
}

func TestCorrelateAntiCorrelated(t *testing.T) {
	m := mustNormMatrix(t,
		[]string{"g1", "g2", "g3"},
		[]string{"up", "down"},
		[][]float64{
			{1, 3},
			{2, 2},
			{3, 1},
		},
	)

	c, err := Correlate(m)
	if err != nil {
		t.Fatal(err)
	}
	if got := c.At(0, 1); math.Abs(got+1) > 1e-12 {
		t.Fatalf("Correlation: got %v, want -1", got)
	}
}

func TestCorrelateTooFewSamples(t *testing.T) {
	m := mustNormMatrix(t, []string{"g1"}, []string{"s1"}, [][]float64{{1}})
	if _, err := Correlate(m); !errors.Is(err, countnorm.ErrDegenerateInput) {
		t.Fatalf("Got %v, want ErrDegenerateInput", err)
	}
}

func TestClusterMergesIdenticalSamplesFirst(t *testing.T) {
	// twin_a and twin_b are identical; the outlier is far from both.
	m := mustNormMatrix(t,
		[]string{"g1", "g2", "g3", "g4"},
		[]string{"twin_a", "twin_b", "outlier"},
		[][]float64{
			{1, 1, 9},
			{2, 2, 5},
			{3, 3, 2},
			{4, 4, 1},
		},
	)

	c, err := Correlate(m)
	if err != nil {
		t.Fatal(err)
	}

	for _, linkage := range []Linkage{LinkageAverage, LinkageComplete} {
		d, err := Cluster(c, linkage)
		if err != nil {
			t.Fatal(err)
		}

		root := d.Root
		if root.Leaf() {
			t.Fatal("Root must be a merge node")
		}

		// The twins merge at height 0 below everything else.
		var twins *Node
		if root.Left.Leaf() && root.Left.Sample == "outlier" {
			twins = root.Right
		} else if root.Right.Leaf() && root.Right.Sample == "outlier" {
			twins = root.Left
		} else {
			t.Fatalf("Outlier not split off at the root: %+v", root.Leaves())
		}

		if twins.Leaf() || math.Abs(twins.Height) > 1e-12 {
			t.Fatalf("Identical samples did not merge at height 0: %+v", twins)
		}
		if root.Height < twins.Height {
			t.Fatal("Merge heights must be non-decreasing")
		}
	}
}

func TestClusterLinkageDiffers(t *testing.T) {
	m := mustNormMatrix(t,
		[]string{"g1", "g2", "g3", "g4", "g5"},
		[]string{"s1", "s2", "s3", "s4"},
		[][]float64{
			{1, 2, 8, 9},
			{2, 1, 9, 8},
			{3, 4, 2, 1},
			{4, 3, 1, 3},
			{5, 6, 4, 2},
		},
	)

	c, err := Correlate(m)
	if err != nil {
		t.Fatal(err)
	}

	avg, err := Cluster(c, LinkageAverage)
	if err != nil {
		t.Fatal(err)
	}
	cpl, err := Cluster(c, LinkageComplete)
	if err != nil {
		t.Fatal(err)
	}

	// Complete linkage can never merge below average linkage at the root.
	if cpl.Root.Height < avg.Root.Height-1e-12 {
		t.Fatalf("Complete-linkage root height %v below average-linkage %v", cpl.Root.Height, avg.Root.Height)
	}

	// Both trees cover all four samples exactly once.
	for _, d := range []*Dendrogram{avg, cpl} {
		leaves := d.Root.Leaves()
		if len(leaves) != 4 {
			t.Fatalf("Got %d leaves, want 4: %+v", len(leaves), leaves)
		}
		seen := make(map[string]struct{})
		for _, l := range leaves {
			seen[l] = struct{}{}
		}
		if len(seen) != 4 {
			t.Fatalf("Duplicate leaves: %+v", leaves)
		}
	}
}

func TestClusterTooFewSamples(t *testing.T) {
	c := &CorrMatrix{samples: []string{"only"}}
	if _, err := Cluster(c, LinkageAverage); !errors.Is(err, countnorm.ErrDegenerateInput) {
		t.Fatalf("Got %v, want ErrDegenerateInput", err)
	}
}

func TestParseLinkage(t *testing.T) {
	if l, err := ParseLinkage("average"); err != nil || l != LinkageAverage {
		t.Fatalf("average: got %v, %v", l, err)
	}
	if l, err := ParseLinkage("complete"); err != nil || l != LinkageComplete {
		t.Fatalf("complete: got %v, %v", l, err)
	}
	if _, err := ParseLinkage("ward"); err == nil {
		t.Fatal("Expected an error for unsupported linkage")
	}
}

func TestNewick(t *testing.T) {
	m := mustNormMatrix(t,
		[]string{"g1", "g2", "g3"},
		[]string{"a", "b", "c"},
		[][]float64{
			{1, 1, 5},
			{2, 2, 1},
			{3, 3, 4},
		},
	)

	c, err := Correlate(m)
	if err != nil {
		t.Fatal(err)
	}
	d, err := Cluster(c, LinkageAverage)
	if err != nil {
		t.Fatal(err)
	}

	nwk := d.Newick()
	if !strings.HasSuffix(nwk, ";") {
		t.Fatalf("Newick output must end with a semicolon: %q", nwk)
	}
	for _, s := range []string{"a", "b", "c"} {
		if !strings.Contains(nwk, s) {
			t.Fatalf("Newick output missing sample %q: %q", s, nwk)
		}
	}
	if strings.Count(nwk, "(") != strings.Count(nwk, ")") {
		t.Fatalf("Unbalanced parentheses: %q", nwk)
	}
}
