package countmat

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"path"
	"strconv"
	"strings"

	"github.com/csimplestring/go-csv/detector"
	"github.com/seqbio/countnorm"
)

// Columns emitted by featureCounts ahead of the per-sample counts. They are
// genomic metadata, not counts, and are stripped on load.
var metadataColumns = map[string]struct{}{
	"chr":    {},
	"start":  {},
	"end":    {},
	"strand": {},
	"length": {},
}

// Load parses a featureCounts-style count table: an optional leading comment
// line starting with '#', a header row naming the identifier column, any
// metadata columns, and one integer count column per sample. Sample names
// are cleaned of path prefixes and alignment-file suffixes, so a column
// header like "bams/WT_1.bam" becomes sample "WT_1".
func Load(r io.Reader) (*Matrix, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	cr := csv.NewReader(bytes.NewReader(raw))
	cr.Comma = determineDelimiter(raw)
	cr.Comment = '#'
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: empty count table", countnorm.ErrDegenerateInput)
	}

	idCol, countCols, sampleNames, err := classifyColumns(header)
	if err != nil {
		return nil, err
	}

	var genes []string
	var counts [][]int64
	for i := 0; ; i++ {
		line, err := cr.Read()
		if err == io.EOF {
			break
		} else if err != nil {
			return nil, err
		}

		if len(line) != len(header) {
			return nil, fmt.Errorf("%w: row %d has %d fields, header has %d", countnorm.ErrShapeMismatch, i+1, len(line), len(header))
		}

		row := make([]int64, len(countCols))
		for j, col := range countCols {
			v, err := strconv.ParseInt(strings.TrimSpace(line[col]), 10, 64)
			if err != nil {
				return nil, fmt.Errorf("gene %q sample %q: %v", line[idCol], sampleNames[j], err)
			}
			row[j] = v
		}

		genes = append(genes, line[idCol])
		counts = append(counts, row)
	}

	return New(genes, sampleNames, counts)
}

// classifyColumns splits a header into the identifier column, the count
// column positions, and the cleaned sample names for those positions.
func classifyColumns(header []string) (idCol int, countCols []int, sampleNames []string, err error) {
	idCol = -1
	for i, name := range header {
		key := strings.ToLower(strings.TrimSpace(name))

		switch {
		case key == "geneid" || key == "gene_id" || key == "gene":
			if idCol != -1 {
				return 0, nil, nil, fmt.Errorf("%w: multiple identifier columns", countnorm.ErrShapeMismatch)
			}
			idCol = i
		default:
			if _, meta := metadataColumns[key]; meta {
				continue
			}
			countCols = append(countCols, i)
			sampleNames = append(sampleNames, CleanSampleName(name))
		}
	}

	if idCol == -1 {
		// No named identifier column; featureCounts always puts it first.
		if len(countCols) > 0 && countCols[0] == 0 {
			idCol = 0
			countCols = countCols[1:]
			sampleNames = sampleNames[1:]
		} else {
			return 0, nil, nil, fmt.Errorf("%w: no gene identifier column", countnorm.ErrShapeMismatch)
		}
	}

	if len(countCols) == 0 {
		return 0, nil, nil, fmt.Errorf("%w: no sample columns", countnorm.ErrDegenerateInput)
	}

	return idCol, countCols, sampleNames, nil
}

// CleanSampleName strips directory prefixes and alignment-file extensions
// from a count-table column header.
func CleanSampleName(name string) string {
	name = path.Base(strings.TrimSpace(name))
	for _, suffix := range []string{".bam", ".sam", ".cram"} {
		if cut := strings.TrimSuffix(name, suffix); cut != name {
			return cut
		}
	}
	return name
}

// determineDelimiter returns the most likely delimiter rune for the table,
// defaulting to tab, which is what featureCounts writes.
func determineDelimiter(raw []byte) rune {
	d := detector.New()
	delimiters := d.DetectDelimiter(bytes.NewReader(raw), '"')
	if len(delimiters) > 0 {
		return rune(delimiters[0][0])
	}

	// The detector needs more than one row to commit; fall back to sniffing
	// the header line directly.
	line, _ := bufio.NewReader(bytes.NewReader(raw)).ReadString('\n')
	if strings.ContainsRune(line, '\t') {
		return '\t'
	}
	return ','
}
