// countnorm converts a featureCounts-style read-count table into
// depth-normalized, log-transformed, and variance-stabilized expression
// matrices suitable for differential-expression work and sample QC.
package main

import (
	"flag"
	"log"
	"os"
	"path/filepath"

	"github.com/aybabtme/uniplot/histogram"
	"github.com/carbocation/pfx"
	"github.com/seqbio/countnorm"
	"github.com/seqbio/countnorm/countmat"
	"github.com/seqbio/countnorm/norm"
	"github.com/seqbio/countnorm/vst"

	_ "github.com/seqbio/countnorm/buildinfoprint"
)

func main() {
	var countsPath, metadataPath, method, outDir string
	var blind bool
	var pseudocount float64

	flag.StringVar(&countsPath, "counts", "", "featureCounts-style count table (tab- or comma-delimited; may be gzipped)")
	flag.StringVar(&metadataPath, "metadata", "", "Optional tab-delimited sample metadata with 'sample' and 'condition' columns. If empty, conditions are inferred from replicate suffixes.")
	flag.StringVar(&method, "method", "rlog", "Variance stabilization method: rlog or vst")
	flag.BoolVar(&blind, "blind", true, "Ignore condition labels when fitting the stabilization trend")
	flag.Float64Var(&pseudocount, "pseudocount", 1, "Pseudocount added before the log2 transform")
	flag.StringVar(&outDir, "out", ".", "Output directory for the result matrices")

	flag.Parse()

	if countsPath == "" {
		flag.Usage()
		os.Exit(1)
	}

	if err := run(countsPath, metadataPath, method, outDir, blind, pseudocount); err != nil {
		log.Fatalln(err)
	}
}

func run(countsPath, metadataPath, method, outDir string, blind bool, pseudocount float64) error {
	stabilizer, err := vst.ByName(method)
	if err != nil {
		return pfx.Err(err)
	}

	raw, err := loadCounts(countsPath)
	if err != nil {
		return pfx.Err(err)
	}
	log.Println("Loaded", raw.NumGenes(), "genes across", raw.NumSamples(), "samples")

	conditions, err := loadConditions(metadataPath, raw.Samples())
	if err != nil {
		return pfx.Err(err)
	}

	counts := raw.FilterZeroRows()
	log.Println("Removed", raw.NumGenes()-counts.NumGenes(), "genes with zero counts in every sample")

	sf, err := norm.EstimateSizeFactors(counts)
	if err != nil {
		return pfx.Err(err)
	}
	if err := printSizeFactors(sf, counts.Samples()); err != nil {
		return pfx.Err(err)
	}

	normalized, err := norm.Normalize(counts, sf)
	if err != nil {
		return pfx.Err(err)
	}

	logged, err := norm.Log2(normalized, pseudocount)
	if err != nil {
		return pfx.Err(err)
	}

	stabilized, err := stabilizer.Stabilize(normalized, vst.Options{Grouped: !blind, Conditions: conditions})
	if err != nil {
		return pfx.Err(err)
	}
	log.Println("Stabilized with", stabilizer.Name())

	if err := reportTrends(logged, stabilized); err != nil {
		return pfx.Err(err)
	}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return pfx.Err(err)
	}
	for _, v := range []struct {
		name string
		m    *norm.Matrix
	}{
		{"normalized.tsv", normalized},
		{"log2.tsv", logged},
		{"stabilized.tsv", stabilized},
	} {
		if err := writeMatrixTSV(filepath.Join(outDir, v.name), v.m); err != nil {
			return pfx.Err(err)
		}
		log.Println("Wrote", filepath.Join(outDir, v.name))
	}

	if err := writeSizeFactorsTSV(filepath.Join(outDir, "size_factors.tsv"), sf, counts.Samples()); err != nil {
		return pfx.Err(err)
	}
	log.Println("Wrote", filepath.Join(outDir, "size_factors.tsv"))

	return nil
}

func loadCounts(countsPath string) (*countmat.Matrix, error) {
	countsPath, err := countnorm.ExpandHome(countsPath)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(countsPath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r, err := countnorm.MaybeDecompressReadCloserFromFile(f)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	return countmat.Load(r)
}

func loadConditions(metadataPath string, samples []string) (countmat.Conditions, error) {
	if metadataPath == "" {
		conditions := countmat.InferConditions(samples)
		log.Printf("Inferred conditions from sample names: %+v\n", conditions)
		return conditions, nil
	}

	metadataPath, err := countnorm.ExpandHome(metadataPath)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(metadataPath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return countmat.LoadConditions(f)
}

func printSizeFactors(sf norm.SizeFactors, samples []string) error {
	factors, err := sf.Factors(samples)
	if err != nil {
		return err
	}
	for i, s := range samples {
		log.Printf("Size factor %s: %.4f\n", s, factors[i])
	}

	if len(factors) >= 3 {
		hist := histogram.Hist(5, factors)
		if err := histogram.Fprint(os.Stderr, hist, histogram.Linear(40)); err != nil {
			return err
		}
	}

	return nil
}

func reportTrends(logged, stabilized *norm.Matrix) error {
	windows := 6
	if logged.NumGenes() < windows {
		return nil
	}

	before, err := vst.MeanSDTrend(logged, windows)
	if err != nil {
		return err
	}
	after, err := vst.MeanSDTrend(stabilized, windows)
	if err != nil {
		return err
	}

	log.Printf("Mean-SD trend before stabilization: %+v (spread %.3f)\n", before, vst.Spread(before))
	log.Printf("Mean-SD trend after stabilization:  %+v (spread %.3f)\n", after, vst.Spread(after))

	return nil
}
