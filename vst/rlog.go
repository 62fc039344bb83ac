package vst

import (
	"math"

	"github.com/seqbio/countnorm/norm"
	"gonum.org/v1/gonum/stat"
)

// RegularizedLog shrinks each gene's log2 values toward the gene's own mean,
// with strength set by the fitted dispersion trend: a low-count gene, whose
// log values are mostly counting noise, is pulled hard toward its mean; a
// high-count gene is left nearly untouched. The gene mean itself is
// preserved exactly.
type RegularizedLog struct{}

func (RegularizedLog) Name() string { return "rlog" }

func (RegularizedLog) Stabilize(m *norm.Matrix, opts Options) (*norm.Matrix, error) {
	if err := checkNonNegative(m); err != nil {
		return nil, err
	}

	mom, err := moments(m, opts)
	if err != nil {
		return nil, err
	}
	trend, err := fitDispersionTrend(mom)
	if err != nil {
		return nil, err
	}

	nGenes, nSamples := m.NumGenes(), m.NumSamples()
	vals := make([][]float64, nGenes)

	logRow := make([]float64, nSamples)
	for i := 0; i < nGenes; i++ {
		for j := 0; j < nSamples; j++ {
			logRow[j] = math.Log2(m.At(i, j) + 1)
		}
		mu := stat.Mean(logRow, nil)

		// Posterior-style interpolation between the observed log value and
		// the gene mean. The fitted dispersion is the noise-to-signal ratio:
		// the larger it is, the less the observation is trusted.
		shrink := 1 / (1 + trend.at(mom.mean[i]))

		row := make([]float64, nSamples)
		for j := 0; j < nSamples; j++ {
			row[j] = mu + (logRow[j]-mu)*shrink
		}
		vals[i] = row
	}

	return norm.NewMatrix(m.Genes(), m.Samples(), vals)
}
