package norm

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/seqbio/countnorm"
	"github.com/seqbio/countnorm/countmat"
)

// SizeFactors maps each sample to its sequencing-depth correction factor.
// Factors are defined only relative to the matrix they were estimated from;
// refiltering the matrix invalidates them.
type SizeFactors map[string]float64

// Factors returns the factors in the given sample order, erroring if any
// sample is missing.
func (sf SizeFactors) Factors(samples []string) ([]float64, error) {
	out := make([]float64, len(samples))
	for i, s := range samples {
		f, ok := sf[s]
		if !ok {
			return nil, fmt.Errorf("%w: no size factor for sample %q", countnorm.ErrShapeMismatch, s)
		}
		out[i] = f
	}
	return out, nil
}

// EstimateSizeFactors computes one depth-correction factor per sample by the
// median-of-ratios method: each gene's counts are divided by that gene's
// geometric mean across samples (the pseudo-reference), and each sample's
// factor is the median of its ratios over all genes with a defined
// reference.
//
// The pseudo-reference for a gene is computed over the strictly positive
// entries of its row only; a gene whose row is entirely zero has no
// reference and contributes no ratios. A zero count in an otherwise
// expressed gene still yields a (zero) ratio for that sample and is included
// in the median.
//
// "Differential expression analysis for sequence count data", Simon Anders
// and Wolfgang Huber, http://genomebiology.com/2010/11/10/r106.
func EstimateSizeFactors(m *countmat.Matrix) (SizeFactors, error) {
	nGenes := m.NumGenes()
	samples := m.Samples()

	if nGenes == 0 {
		return nil, fmt.Errorf("%w: no genes in count matrix", countnorm.ErrDegenerateInput)
	}

	// Pseudo-reference per gene. Rows are independent, so fan out across
	// workers with disjoint writes; the Wait below is the barrier.
	refs := make([]float64, nGenes)

	concurrencyLimit := make(chan struct{}, runtime.NumCPU())
	var pool sync.WaitGroup
	for i := 0; i < nGenes; i++ {
		pool.Add(1)
		concurrencyLimit <- struct{}{}
		go func(i int) {
			defer pool.Done()
			refs[i] = pseudoReference(m, i)
			<-concurrencyLimit
		}(i)
	}
	pool.Wait()

	defined := 0
	for _, r := range refs {
		if r > 0 {
			defined++
		}
	}
	if defined == 0 {
		return nil, fmt.Errorf("%w: every gene has an all-zero row; estimate size factors after filtering", countnorm.ErrDegenerateInput)
	}

	out := make(SizeFactors, len(samples))
	ratios := make([]float64, 0, defined)
	for j, sample := range samples {
		ratios = ratios[:0]
		for i, ref := range refs {
			if ref <= 0 {
				continue
			}
			ratios = append(ratios, float64(m.At(i, j))/ref)
		}

		f := median(ratios)
		if f <= 0 {
			return nil, fmt.Errorf("%w: sample %q has a non-positive median ratio; too many zero counts", countnorm.ErrDegenerateInput, sample)
		}
		out[sample] = f
	}

	return out, nil
}

// pseudoReference returns the geometric mean of the strictly positive counts
// in gene row i, or 0 when the row has none.
func pseudoReference(m *countmat.Matrix, i int) float64 {
	pos := make([]float64, 0, m.NumSamples())
	for j := 0; j < m.NumSamples(); j++ {
		if v := m.At(i, j); v > 0 {
			pos = append(pos, float64(v))
		}
	}

	if len(pos) == 0 {
		return 0
	}
	return geometricMean(pos)
}
