// samplesim computes the sample-sample Pearson correlation matrix and a
// hierarchical-clustering dendrogram from an expression matrix TSV, such as
// the stabilized output of countnorm.
package main

import (
	"encoding/csv"
	"flag"
	"io"
	"log"
	"os"
	"path/filepath"
	"strconv"

	"github.com/carbocation/pfx"
	"github.com/seqbio/countnorm"
	"github.com/seqbio/countnorm/norm"
	"github.com/seqbio/countnorm/similarity"

	_ "github.com/seqbio/countnorm/buildinfoprint"
)

func main() {
	var input, linkageName, outDir string

	flag.StringVar(&input, "input", "", "Expression matrix TSV: a Geneid column plus one numeric column per sample")
	flag.StringVar(&linkageName, "linkage", "average", "Clustering linkage: average or complete")
	flag.StringVar(&outDir, "out", ".", "Output directory")

	flag.Parse()

	if input == "" {
		flag.Usage()
		os.Exit(1)
	}

	if err := run(input, linkageName, outDir); err != nil {
		log.Fatalln(err)
	}
}

func run(input, linkageName, outDir string) error {
	linkage, err := similarity.ParseLinkage(linkageName)
	if err != nil {
		return pfx.Err(err)
	}

	m, err := loadMatrix(input)
	if err != nil {
		return pfx.Err(err)
	}
	log.Println("Loaded", m.NumGenes(), "genes across", m.NumSamples(), "samples")

	corr, err := similarity.Correlate(m)
	if err != nil {
		return pfx.Err(err)
	}

	dendro, err := similarity.Cluster(corr, linkage)
	if err != nil {
		return pfx.Err(err)
	}
	log.Println("Cluster order:", dendro.Root.Leaves())

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return pfx.Err(err)
	}

	corrPath := filepath.Join(outDir, "correlation.tsv")
	if err := writeCorrelationTSV(corrPath, corr); err != nil {
		return pfx.Err(err)
	}
	log.Println("Wrote", corrPath)

	nwkPath := filepath.Join(outDir, "dendrogram.nwk")
	if err := os.WriteFile(nwkPath, []byte(dendro.Newick()+"\n"), 0o644); err != nil {
		return pfx.Err(err)
	}
	log.Println("Wrote", nwkPath)

	return nil
}

func loadMatrix(input string) (*norm.Matrix, error) {
	input, err := countnorm.ExpandHome(input)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(input)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	rc, err := countnorm.MaybeDecompressReadCloserFromFile(f)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	r := csv.NewReader(rc)
	r.Comma = '\t'
	r.Comment = '#'

	header, err := r.Read()
	if err != nil {
		return nil, err
	}
	if len(header) < 2 {
		return nil, pfx.Err(io.ErrUnexpectedEOF)
	}
	samples := header[1:]

	var genes []string
	var vals [][]float64
	for {
		line, err := r.Read()
		if err == io.EOF {
			break
		} else if err != nil {
			return nil, err
		}

		row := make([]float64, len(samples))
		for j := range samples {
			v, err := strconv.ParseFloat(line[1+j], 64)
			if err != nil {
				return nil, err
			}
			row[j] = v
		}

		genes = append(genes, line[0])
		vals = append(vals, row)
	}

	return norm.NewMatrix(genes, samples, vals)
}

func writeCorrelationTSV(path string, corr *similarity.CorrMatrix) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	w.Comma = '\t'

	samples := corr.Samples()
	if err := w.Write(append([]string{"sample"}, samples...)); err != nil {
		return err
	}

	line := make([]string, 1+len(samples))
	for i, s := range samples {
		line[0] = s
		for j := range samples {
			line[1+j] = strconv.FormatFloat(corr.At(i, j), 'g', -1, 64)
		}
		if err := w.Write(line); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}
