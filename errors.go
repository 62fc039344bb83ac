package countnorm

import "errors"

// The pipeline's failure modes. Each stage either produces a complete matrix
// or fails with an error wrapping one of these; there is no partial output.
var (
	// ErrShapeMismatch indicates that two inputs that must share a sample or
	// gene set do not.
	ErrShapeMismatch = errors.New("countnorm: shape mismatch")

	// ErrDegenerateInput indicates input that makes the requested computation
	// undefined, e.g. a count matrix whose genes are all zero, or fewer than
	// two samples for correlation.
	ErrDegenerateInput = errors.New("countnorm: degenerate input")

	// ErrNumericDomain indicates a value outside the domain of a numeric
	// transform, e.g. the log of a negative number.
	ErrNumericDomain = errors.New("countnorm: numeric domain error")
)
