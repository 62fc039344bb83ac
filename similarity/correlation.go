// Package similarity compares samples over the gene axis: pairwise Pearson
// correlation, correlation-derived distances, and agglomerative hierarchical
// clustering into a dendrogram.
package similarity

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/seqbio/countnorm"
	"github.com/seqbio/countnorm/norm"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// CorrMatrix is a symmetric samples × samples Pearson correlation matrix.
type CorrMatrix struct {
	samples []string
	sym     *mat.SymDense
}

// Samples returns a copy of the ordered sample identifiers.
func (c *CorrMatrix) Samples() []string { return append([]string(nil), c.samples...) }

// Len reports the number of samples.
func (c *CorrMatrix) Len() int { return len(c.samples) }

// At returns the correlation between samples i and j.
func (c *CorrMatrix) At(i, j int) float64 { return c.sym.At(i, j) }

// Distance returns 1 − r, the dissimilarity used for clustering.
func (c *CorrMatrix) Distance(i, j int) float64 { return 1 - c.sym.At(i, j) }

// Correlate computes the Pearson correlation between every pair of sample
// columns. The diagonal is set to 1 by construction rather than computed, so
// self-correlation carries no floating-point noise. Pairs are independent
// and are computed in parallel with disjoint writes.
func Correlate(m *norm.Matrix) (*CorrMatrix, error) {
	samples := m.Samples()
	n := len(samples)
	if n < 2 {
		return nil, fmt.Errorf("%w: correlation needs at least 2 samples, have %d", countnorm.ErrDegenerateInput, n)
	}
	if m.NumGenes() == 0 {
		return nil, fmt.Errorf("%w: correlation over an empty gene axis", countnorm.ErrDegenerateInput)
	}

	cols := make([][]float64, n)
	for j := 0; j < n; j++ {
		cols[j] = m.Col(j)
	}

	type pair struct{ i, j int }
	pairs := make([]pair, 0, n*(n-1)/2)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			pairs = append(pairs, pair{i, j})
		}
	}

	r := make([]float64, len(pairs))

	concurrencyLimit := make(chan struct{}, runtime.NumCPU())
	var pool sync.WaitGroup
	for k := range pairs {
		pool.Add(1)
		concurrencyLimit <- struct{}{}
		go func(k int) {
			defer pool.Done()
			r[k] = stat.Correlation(cols[pairs[k].i], cols[pairs[k].j], nil)
			<-concurrencyLimit
		}(k)
	}
	pool.Wait()

	sym := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		sym.SetSym(i, i, 1)
	}
	for k, p := range pairs {
		sym.SetSym(p.i, p.j, r[k])
	}

	return &CorrMatrix{samples: samples, sym: sym}, nil
}
