package countnorm

import (
	"compress/gzip"
	"io"
	"os"
	"path/filepath"
	"testing"
)

func TestMaybeDecompressPlain(t *testing.T) {
	name := filepath.Join(t.TempDir(), "plain.tsv")
	if err := os.WriteFile(name, []byte("Geneid\tWT_1\nACT1\t10\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	f, err := os.Open(name)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	r, err := MaybeDecompressReadCloserFromFile(f)
	if err != nil {
		t.Fatal(err)
	}

	got, err := io.ReadAll(r)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "Geneid\tWT_1\nACT1\t10\n" {
		t.Fatalf("Unexpected content: %q", got)
	}
}

func TestMaybeDecompressGzip(t *testing.T) {
	name := filepath.Join(t.TempDir(), "counts.tsv.gz")

	f, err := os.Create(name)
	if err != nil {
		t.Fatal(err)
	}
	gz := gzip.NewWriter(f)
	if _, err := gz.Write([]byte("Geneid\tWT_1\nACT1\t10\n")); err != nil {
		t.Fatal(err)
	}
	if err := gz.Close(); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}

	in, err := os.Open(name)
	if err != nil {
		t.Fatal(err)
	}
	defer in.Close()

	r, err := MaybeDecompressReadCloserFromFile(in)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	got, err := io.ReadAll(r)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "Geneid\tWT_1\nACT1\t10\n" {
		t.Fatalf("Unexpected content after decompression: %q", got)
	}
}
