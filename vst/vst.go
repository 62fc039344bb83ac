// Package vst implements variance-stabilizing transforms over depth-
// normalized count matrices. Raw log2 counts are heteroskedastic: the lower
// a gene's mean, the noisier its log values. Both strategies here flatten
// that trend, one by per-gene shrinkage toward the gene mean (rlog-style),
// one by a global closed-form transform (vst-style).
package vst

import (
	"fmt"

	"github.com/seqbio/countnorm"
	"github.com/seqbio/countnorm/countmat"
	"github.com/seqbio/countnorm/norm"
	"gonum.org/v1/gonum/stat"
)

// Options controls a stabilization run. The zero value requests a blind
// fit, the recommended default for QC: per-gene variances estimated across
// all samples, ignoring grouping. With Grouped set, Conditions must cover
// every sample and variances are pooled within condition groups, so real
// between-group signal is not mistaken for noise.
type Options struct {
	Grouped    bool
	Conditions countmat.Conditions
}

// A Stabilizer turns a depth-normalized matrix into one whose per-gene
// standard deviation is approximately independent of the gene mean.
type Stabilizer interface {
	Name() string
	Stabilize(m *norm.Matrix, opts Options) (*norm.Matrix, error)
}

// ByName returns the stabilizer for a CLI-facing name.
func ByName(name string) (Stabilizer, error) {
	switch name {
	case "rlog":
		return RegularizedLog{}, nil
	case "vst":
		return GlobalVST{}, nil
	}
	return nil, fmt.Errorf("unknown stabilization method %q (want rlog or vst)", name)
}

// geneMoments holds per-gene summary statistics of the normalized counts.
type geneMoments struct {
	mean     []float64
	variance []float64
}

// moments computes per-gene means and variances. Means are always across
// all samples; variances honor Options (pooled within condition when
// grouped).
func moments(m *norm.Matrix, opts Options) (geneMoments, error) {
	nGenes := m.NumGenes()
	out := geneMoments{
		mean:     make([]float64, nGenes),
		variance: make([]float64, nGenes),
	}

	if nGenes == 0 {
		return out, fmt.Errorf("%w: no genes to stabilize", countnorm.ErrDegenerateInput)
	}
	if m.NumSamples() < 2 {
		// A single column has no variance to estimate; letting it through
		// would turn every dispersion into NaN.
		return out, fmt.Errorf("%w: variance estimation needs at least 2 samples, have %d", countnorm.ErrDegenerateInput, m.NumSamples())
	}

	var groups map[string][]int
	if opts.Grouped {
		samples := m.Samples()
		if !opts.Conditions.Covers(samples) {
			return out, fmt.Errorf("%w: condition labels do not cover the sample set", countnorm.ErrShapeMismatch)
		}
		groups = make(map[string][]int)
		for j, s := range samples {
			cond := opts.Conditions[s]
			groups[cond] = append(groups[cond], j)
		}

		replicated := false
		for _, cols := range groups {
			if len(cols) >= 2 {
				replicated = true
			}
		}
		if !replicated {
			return out, fmt.Errorf("%w: grouped stabilization needs at least one condition with two replicates", countnorm.ErrDegenerateInput)
		}
	}

	for i := 0; i < nGenes; i++ {
		row := m.Row(i)
		out.mean[i] = stat.Mean(row, nil)

		if opts.Grouped {
			out.variance[i] = pooledVariance(row, groups)
			continue
		}
		out.variance[i] = stat.Variance(row, nil)
	}

	return out, nil
}

// pooledVariance estimates within-group variance pooled across condition
// groups. Singleton groups carry no variance information and are skipped.
func pooledVariance(row []float64, groups map[string][]int) float64 {
	var ss float64
	var dof int

	for _, cols := range groups {
		if len(cols) < 2 {
			continue
		}
		vals := make([]float64, len(cols))
		for k, j := range cols {
			vals[k] = row[j]
		}
		ss += stat.Variance(vals, nil) * float64(len(cols)-1)
		dof += len(cols) - 1
	}

	if dof == 0 {
		return 0
	}
	return ss / float64(dof)
}

// checkNonNegative rejects matrices outside the stabilizers' domain.
// Normalized counts can never be negative, so hitting this means an
// upstream bug.
func checkNonNegative(m *norm.Matrix) error {
	for i := 0; i < m.NumGenes(); i++ {
		for j := 0; j < m.NumSamples(); j++ {
			if m.At(i, j) < 0 {
				return fmt.Errorf("%w: negative normalized count at gene %d sample %d", countnorm.ErrNumericDomain, i, j)
			}
		}
	}
	return nil
}
