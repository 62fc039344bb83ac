// Package countmat holds the genes × samples read-count matrix that every
// downstream stage consumes. Matrices are immutable once constructed; each
// transformation produces a new one.
package countmat

import (
	"fmt"

	"github.com/seqbio/countnorm"
)

// Matrix is a genes × samples matrix of non-negative read counts. Gene and
// sample identifier sets are fixed at construction.
type Matrix struct {
	genes   []string
	samples []string
	counts  [][]int64 // one row per gene, one column per sample
}

// New validates and assembles a count matrix. The counts slice must have one
// row per gene and one column per sample, with no negative entries. Gene and
// sample identifiers must be unique, and at least one sample column must be
// present.
func New(genes, samples []string, counts [][]int64) (*Matrix, error) {
	if len(samples) == 0 {
		return nil, fmt.Errorf("%w: no sample columns", countnorm.ErrDegenerateInput)
	}
	if len(counts) != len(genes) {
		return nil, fmt.Errorf("%w: %d genes but %d count rows", countnorm.ErrShapeMismatch, len(genes), len(counts))
	}

	seen := make(map[string]struct{}, len(genes))
	for _, g := range genes {
		if _, dup := seen[g]; dup {
			return nil, fmt.Errorf("%w: duplicate gene identifier %q", countnorm.ErrShapeMismatch, g)
		}
		seen[g] = struct{}{}
	}

	seen = make(map[string]struct{}, len(samples))
	for _, s := range samples {
		if _, dup := seen[s]; dup {
			return nil, fmt.Errorf("%w: duplicate sample identifier %q", countnorm.ErrShapeMismatch, s)
		}
		seen[s] = struct{}{}
	}

	rows := make([][]int64, len(counts))
	for i, row := range counts {
		if len(row) != len(samples) {
			return nil, fmt.Errorf("%w: gene %q has %d counts for %d samples", countnorm.ErrShapeMismatch, genes[i], len(row), len(samples))
		}
		for j, v := range row {
			if v < 0 {
				return nil, fmt.Errorf("%w: negative count %d for gene %q sample %q", countnorm.ErrNumericDomain, v, genes[i], samples[j])
			}
		}
		rows[i] = append([]int64(nil), row...)
	}

	return &Matrix{
		genes:   append([]string(nil), genes...),
		samples: append([]string(nil), samples...),
		counts:  rows,
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

// At returns the count for gene row i, sample column j.
func (m *Matrix) At(i, j int) int64 { return m.counts[i][j] }

// Row copies gene row i into a fresh slice.
func (m *Matrix) Row(i int) []int64 { return append([]int64(nil), m.counts[i]...) }

// ColumnSums returns the per-sample total counts, i.e. the library sizes.
func (m *Matrix) ColumnSums() []int64 {
	sums := make([]int64, len(m.samples))
	for _, row := range m.counts {
		for j, v := range row {
			sums[j] += v
		}
	}
	return sums
}

// FilterZeroRows returns a new matrix with every gene whose total count
// across all samples is zero removed. This is the one-time filtering step
// that must precede size factor estimation; genes removed here never
// reappear downstream.
func (m *Matrix) FilterZeroRows() *Matrix {
	keptGenes := make([]string, 0, len(m.genes))
	keptRows := make([][]int64, 0, len(m.counts))

	for i, row := range m.counts {
		var total int64
		for _, v := range row {
			total += v
		}
		if total == 0 {
			continue
		}
		keptGenes = append(keptGenes, m.genes[i])
		keptRows = append(keptRows, append([]int64(nil), row...))
	}

	return &Matrix{
		genes:   keptGenes,
		samples: append([]string(nil), m.samples...),
		counts:  keptRows,
	}
}
