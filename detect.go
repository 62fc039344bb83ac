package countnorm

import (
	"compress/gzip"
	"io"
	"os"
)

// featureCounts output is frequently gzipped in the wild; nothing else turns
// up often enough to be worth sniffing for.
var gzipSig = []byte{0x1f, 0x8b, 0x08}

// MaybeDecompressReadCloserFromFile inspects the first bytes of f and, if
// they carry the gzip signature, returns a decompressing reader. Otherwise f
// itself is returned, rewound to the start.
func MaybeDecompressReadCloserFromFile(f *os.File) (io.ReadCloser, error) {
	buff := make([]byte, len(gzipSig))
	n, err := io.ReadFull(f, buff)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return nil, err
	}

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}

	isGzip := n == len(gzipSig)
	for i := 0; isGzip && i < len(gzipSig); i++ {
		if buff[i] != gzipSig[i] {
			isGzip = false
		}
	}

	if !isGzip {
		return f, nil
	}

	return gzip.NewReader(f)
}

// ExpandHome expands a leading ~/ to the user's home directory, where
// appropriate.
func ExpandHome(path string) (string, error) {
	if len(path) < 2 || path[:2] != "~/" {
		return path, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	return home + path[1:], nil
}
