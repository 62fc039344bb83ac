package norm

import (
	"fmt"
	"math"

	"github.com/seqbio/countnorm"
	"github.com/seqbio/countnorm/countmat"
)

// Normalize divides each count by its sample's size factor, producing a
// depth-corrected real-valued matrix. The size factors must cover exactly
// the matrix's sample set.
func Normalize(m *countmat.Matrix, sf SizeFactors) (*Matrix, error) {
	samples := m.Samples()

	if len(sf) != len(samples) {
		return nil, fmt.Errorf("%w: %d size factors for %d samples", countnorm.ErrShapeMismatch, len(sf), len(samples))
	}
	factors, err := sf.Factors(samples)
	if err != nil {
		return nil, err
	}
	for j, f := range factors {
		if f <= 0 || math.IsInf(f, 0) || math.IsNaN(f) {
			return nil, fmt.Errorf("%w: size factor %v for sample %q", countnorm.ErrNumericDomain, f, samples[j])
		}
	}

	vals := make([][]float64, m.NumGenes())
	for i := range vals {
		row := make([]float64, len(samples))
		for j, f := range factors {
			row[j] = float64(m.At(i, j)) / f
		}
		vals[i] = row
	}

	return NewMatrix(m.Genes(), samples, vals)
}

// Log2 returns log2(x + pseudocount) applied entrywise. A pseudocount of 1
// keeps zero counts defined. Negative entries are outside the transform's
// domain; counts can never produce them, so hitting one means an upstream
// bug.
func Log2(m *Matrix, pseudocount float64) (*Matrix, error) {
	vals := make([][]float64, m.NumGenes())
	for i := range vals {
		row := make([]float64, m.NumSamples())
		for j := range row {
			v := m.At(i, j)
			if v < 0 {
				return nil, fmt.Errorf("%w: log2 of negative value %v (gene %q)", countnorm.ErrNumericDomain, v, m.genes[i])
			}
			row[j] = math.Log2(v + pseudocount)
		}
		vals[i] = row
	}

	return NewMatrix(m.Genes(), m.Samples(), vals)
}
