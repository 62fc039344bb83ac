package norm

import (
	"math"
	"sort"
)

// geometricMean returns exp(mean(log(v))) over the given values, which must
// all be strictly positive. Callers are responsible for excluding zeros
// beforehand; that exclusion is the defining edge rule of the
// pseudo-reference computation.
func geometricMean(v []float64) float64 {
	var sumLog float64
	for _, x := range v {
		sumLog += math.Log(x)
	}
	return math.Exp(sumLog / float64(len(v)))
}

// median returns the middle value of v (mean of the two middle values for
// even lengths) without mutating v. Zero entries are legitimate inputs here:
// a zero count over a positive pseudo-reference is a real ratio and belongs
// in the distribution.
func median(v []float64) float64 {
	s := append([]float64(nil), v...)
	sort.Float64s(s)

	n := len(s)
	if n%2 == 1 {
		return s[n/2]
	}
	return (s[n/2-1] + s[n/2]) / 2
}
