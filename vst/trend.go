package vst

import (
	"fmt"
	"math"

	"github.com/montanaflynn/stats"
	"github.com/seqbio/countnorm"
	"gonum.org/v1/gonum/stat"
)

// Dispersion floor. Genes measured as under-dispersed (sampling noise can
// push the estimate to zero or below) are clamped here rather than allowed
// to claim infinite precision.
const minDispersion = 1e-8

// dispersionTrend is the fitted relationship between a gene's mean
// normalized count and its dispersion (squared coefficient of variation):
// dispersion ≈ asymptotic + shot/mean. The shot term captures counting
// noise, which dominates at low means; the asymptotic term captures
// biological variability, which persists at any depth.
type dispersionTrend struct {
	asymptotic float64
	shot       float64
}

func (t dispersionTrend) at(mean float64) float64 {
	if mean <= 0 {
		return math.Inf(1)
	}
	d := t.asymptotic + t.shot/mean
	if d < minDispersion {
		return minDispersion
	}
	return d
}

// fitDispersionTrend regresses per-gene dispersion on 1/mean over genes
// with strictly positive mean. All-zero genes were filtered before
// normalization, so in a well-formed pipeline every gene qualifies.
func fitDispersionTrend(mom geneMoments) (dispersionTrend, error) {
	var xs, ys []float64
	for i, mean := range mom.mean {
		if mean <= 0 {
			continue
		}
		d := mom.variance[i] / (mean * mean)
		if d < minDispersion {
			d = minDispersion
		}
		xs = append(xs, 1/mean)
		ys = append(ys, d)
	}

	if len(ys) == 0 {
		return dispersionTrend{}, fmt.Errorf("%w: no genes with positive mean for the dispersion fit", countnorm.ErrDegenerateInput)
	}

	if distinct(xs) < 2 {
		// A regression needs spread in the predictor; fall back to a flat
		// trend at the median dispersion.
		med, err := stats.Median(stats.Float64Data(ys))
		if err != nil {
			return dispersionTrend{}, err
		}
		return dispersionTrend{asymptotic: math.Max(med, minDispersion)}, nil
	}

	alpha, beta := stat.LinearRegression(xs, ys, nil, false)

	// Negative coefficients have no meaning here; clamp rather than let a
	// noisy fit produce negative prior widths.
	if alpha < minDispersion {
		alpha = minDispersion
	}
	if beta < 0 {
		beta = 0
	}

	return dispersionTrend{asymptotic: alpha, shot: beta}, nil
}

func distinct(v []float64) int {
	seen := make(map[float64]struct{}, len(v))
	for _, x := range v {
		seen[x] = struct{}{}
	}
	return len(seen)
}

// fitOverdispersion estimates the single extra-Poisson scale a in the
// mean-variance relationship var ≈ mean + a·mean², as the median of per-gene
// moment estimates over genes with positive mean. The median keeps a few
// highly variable genes from dominating the fit.
func fitOverdispersion(mom geneMoments) (float64, error) {
	var est []float64
	for i, mean := range mom.mean {
		if mean <= 0 {
			continue
		}
		est = append(est, (mom.variance[i]-mean)/(mean*mean))
	}

	if len(est) == 0 {
		return 0, fmt.Errorf("%w: no genes with positive mean for the overdispersion fit", countnorm.ErrDegenerateInput)
	}

	a, err := stats.Median(stats.Float64Data(est))
	if err != nil {
		return 0, err
	}

	// Near-Poisson or under-dispersed data would send the transform's scale
	// parameter to infinity; clamp to a small but workable overdispersion.
	if a < 1e-4 {
		a = 1e-4
	}
	return a, nil
}
