// Package norm computes median-of-ratios size factors and applies depth
// normalization and log transforms to count matrices.
package norm

import (
	"fmt"

	"github.com/seqbio/countnorm"
)

// Matrix is a real-valued genes × samples matrix. Like its integer
// counterpart it is immutable once constructed.
type Matrix struct {
	genes   []string
	samples []string
	vals    [][]float64
}

// NewMatrix assembles a real-valued matrix, copying all inputs.
func NewMatrix(genes, samples []string, vals [][]float64) (*Matrix, error) {
	if len(vals) != len(genes) {
		return nil, fmt.Errorf("%w: %d genes but %d rows", countnorm.ErrShapeMismatch, len(genes), len(vals))
	}

	rows := make([][]float64, len(vals))
	for i, row := range vals {
		if len(row) != len(samples) {
			return nil, fmt.Errorf("%w: gene %q has %d values for %d samples", countnorm.ErrShapeMismatch, genes[i], len(row), len(samples))
		}
		rows[i] = append([]float64(nil), row...)
	}

	return &Matrix{
		genes:   append([]string(nil), genes...),
		samples: append([]string(nil), samples...),
		vals:    rows,
	}, nil
}

// NumGenes reports the number of gene rows.
func (m *Matrix) NumGenes() int { return len(m.genes) }

// NumSamples reports the number of sample columns.
func (m *Matrix) NumSamples() int { return len(m.samples) }

// Genes returns a copy of the ordered gene identifiers.
func (m *Matrix) Genes() []string { return append([]string(nil), m.genes...) }

// Samples returns a copy of the ordered sample identifiers.
func (m *Matrix) Samples() []string { return append([]string(nil), m.samples...) }

// At returns the value for gene row i, sample column j.
func (m *Matrix) At(i, j int) float64 { return m.vals[i][j] }

// Row copies gene row i into a fresh slice.
func (m *Matrix) Row(i int) []float64 { return append([]float64(nil), m.vals[i]...) }

// Col copies sample column j into a fresh slice.
func (m *Matrix) Col(j int) []float64 {
	out := make([]float64, len(m.vals))
	for i, row := range m.vals {
		out[i] = row[j]
	}
	return out
}
