package countmat

import (
	"strings"
	"testing"
)

func TestInferConditions(t *testing.T) {
	c := InferConditions([]string{"WT_1", "WT_2", "KO_1", "KO.2", "input"})

	for _, v := range []struct{ sample, want string }{
		{"WT_1", "WT"},
		{"WT_2", "WT"},
		{"KO_1", "KO"},
		{"KO.2", "KO"},
		{"input", "input"},
	} {
		if got := c[v.sample]; got != v.want {
			t.Fatalf("Condition for %q: got %q, want %q", v.sample, got, v.want)
		}
	}
}

func TestLoadConditions(t *testing.T) {
	meta := "sample\tcondition\nWT_1\tWT\nWT_2\tWT\nKO_1\tKO\n"

	c, err := LoadConditions(strings.NewReader(meta))
	if err != nil {
		t.Fatal(err)
	}

	if got := c["KO_1"]; got != "KO" {
		t.Fatalf("Condition for KO_1: got %q, want KO", got)
	}
	if !c.Covers([]string{"WT_1", "WT_2", "KO_1"}) {
		t.Fatal("Metadata should cover all three samples")
	}
	if c.Covers([]string{"WT_3"}) {
		t.Fatal("Metadata should not cover an unknown sample")
	}
}

func TestLoadConditionsRejectsDuplicates(t *testing.T) {
	meta := "sample\tcondition\nWT_1\tWT\nWT_1\tKO\n"
	if _, err := LoadConditions(strings.NewReader(meta)); err == nil {
		t.Fatal("Expected an error for a duplicated sample row")
	}
}
