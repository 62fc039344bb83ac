package vst

import (
	"fmt"
	"sort"

	"github.com/montanaflynn/stats"
	"github.com/seqbio/countnorm"
	"github.com/seqbio/countnorm/norm"
	"gonum.org/v1/gonum/stat"
)

// MeanSDTrend summarizes how per-gene standard deviation varies with
// expression level: genes are ranked by mean, split into the given number of
// equal rank windows, and each window is reduced to its median SD. A rising
// left edge is the heteroskedasticity signature of raw log counts; after
// stabilization the trend should be approximately flat.
func MeanSDTrend(m *norm.Matrix, windows int) ([]float64, error) {
	nGenes := m.NumGenes()
	if windows < 1 || nGenes < windows {
		return nil, fmt.Errorf("%w: %d genes cannot fill %d rank windows", countnorm.ErrDegenerateInput, nGenes, windows)
	}

	type geneSD struct {
		mean float64
		sd   float64
	}
	perGene := make([]geneSD, nGenes)
	for i := 0; i < nGenes; i++ {
		mean, sd := stat.MeanStdDev(m.Row(i), nil)
		perGene[i] = geneSD{mean: mean, sd: sd}
	}

	sort.Slice(perGene, func(i, j int) bool { return perGene[i].mean < perGene[j].mean })

	out := make([]float64, windows)
	for w := 0; w < windows; w++ {
		lo := w * nGenes / windows
		hi := (w + 1) * nGenes / windows

		sds := make([]float64, 0, hi-lo)
		for _, g := range perGene[lo:hi] {
			sds = append(sds, g.sd)
		}

		med, err := stats.Median(stats.Float64Data(sds))
		if err != nil {
			return nil, err
		}
		out[w] = med
	}

	return out, nil
}

// Spread is the range of a mean-SD trend, a scalar summary of how far from
// flat it is.
func Spread(trend []float64) float64 {
	if len(trend) == 0 {
		return 0
	}
	min, max := trend[0], trend[0]
	for _, v := range trend[1:] {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	return max - min
}
