package main

import (
	"encoding/csv"
	"os"
	"strconv"

	"github.com/seqbio/countnorm/norm"
)

// writeMatrixTSV writes a real-valued matrix with a Geneid column and one
// column per sample, mirroring the input table's shape.
func writeMatrixTSV(path string, m *norm.Matrix) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	w.Comma = '\t'

	if err := w.Write(append([]string{"Geneid"}, m.Samples()...)); err != nil {
		return err
	}

	genes := m.Genes()
	line := make([]string, 1+m.NumSamples())
	for i := range genes {
		line[0] = genes[i]
		for j := 0; j < m.NumSamples(); j++ {
			line[1+j] = strconv.FormatFloat(m.At(i, j), 'g', -1, 64)
		}
		if err := w.Write(line); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

func writeSizeFactorsTSV(path string, sf norm.SizeFactors, samples []string) error {
	factors, err := sf.Factors(samples)
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	w.Comma = '\t'

	if err := w.Write([]string{"sample", "size_factor"}); err != nil {
		return err
	}
	for i, s := range samples {
		if err := w.Write([]string{s, strconv.FormatFloat(factors[i], 'g', -1, 64)}); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}
