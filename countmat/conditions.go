package countmat

import (
	"encoding/csv"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/seqbio/countnorm"
)

// Conditions maps a sample identifier to its condition label (e.g. "WT_1" to
// "WT"). Labels are grouping metadata only: they feed non-blind variance
// stabilization and downstream grouping, and never touch the size-factor or
// normalization arithmetic.
type Conditions map[string]string

var replicateSuffix = regexp.MustCompile(`[_.-]\d+$`)

// InferConditions derives condition labels from sample names by stripping a
// trailing replicate suffix, so WT_1 and WT_2 both map to WT. A sample with
// no recognizable suffix is its own condition.
func InferConditions(samples []string) Conditions {
	out := make(Conditions, len(samples))
	for _, s := range samples {
		out[s] = replicateSuffix.ReplaceAllString(s, "")
	}
	return out
}

type conditionRecord struct {
	Sample    string `csv:"sample"`
	Condition string `csv:"condition"`
}

// LoadConditions reads an explicit two-column sample metadata table with a
// "sample" and a "condition" column, tab-delimited.
func LoadConditions(r io.Reader) (Conditions, error) {
	// Tell gocsv to use tab as the delimiter
	gocsv.SetCSVReader(func(in io.Reader) gocsv.CSVReader {
		rdr := csv.NewReader(in)
		rdr.Comma = '\t'
		rdr.LazyQuotes = true
		return rdr
	})

	var records []*conditionRecord
	if err := gocsv.Unmarshal(r, &records); err != nil {
		return nil, err
	}

	out := make(Conditions, len(records))
	for _, rec := range records {
		sample := strings.TrimSpace(rec.Sample)
		if sample == "" {
			continue
		}
		if _, dup := out[sample]; dup {
			return nil, fmt.Errorf("%w: sample %q listed twice in metadata", countnorm.ErrShapeMismatch, sample)
		}
		out[sample] = strings.TrimSpace(rec.Condition)
	}

	return out, nil
}

// Covers reports whether every sample in the list has a condition label.
func (c Conditions) Covers(samples []string) bool {
	for _, s := range samples {
		if _, ok := c[s]; !ok {
			return false
		}
	}
	return true
}
