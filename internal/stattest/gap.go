// Package stattest holds the statistical checks used to validate bit
// generators: per-bit frequency, independence of the two halves of a native
// draw, uniformity of doubles and the gap test over Bernoulli hits.
//
// These checks catch gross defects (stuck bits, correlated halves). They are
// not a replacement for a full battery such as PractRand; feed the output of
// the practrand-driver command to one for that.
package stattest

import (
	"errors"

	"github.com/xtding233/bitgen/internal/bitgen"
	"github.com/xtding233/bitgen/internal/sample"
)

var (
	ErrNoTrials = errors.New("stattest: trials must be positive")
	ErrGapProb  = errors.New("stattest: gap probability must be in (0, 1)")
	ErrGapBins  = errors.New("stattest: gap test needs at least 2 bins")
)

// Trial runs one Monte-Carlo trial and returns its metric.
type Trial func() (int, error)

// Run repeats trial and collects the results. The first trial error stops
// the run.
func Run(trials int, trial Trial) ([]int, error) {
	if trials <= 0 {
		return nil, ErrNoTrials
	}
	out := make([]int, trials)
	for i := range out {
		v, err := trial()
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// GapReport is the outcome of GapTest. Mean and Var are the observed
// moments of the gap lengths; a geometric variable has mean 1/p and variance
// (1-p)/p^2.
type GapReport struct {
	ChiResult
	P    float64
	Hits int
	Mean float64
	Var  float64
}

// GapTest counts the draws each Bernoulli(p) hit takes, for hits hits.
// Gap lengths 1..bins-1 get a cell each and longer gaps share the last cell;
// the counts are compared with the geometric distribution. Choose hits and
// bins so that hits*(1-p)^(bins-1) stays well above 5.
func GapTest(g bitgen.BitGenerator, p float64, hits, bins int) (GapReport, error) {
	if !(p > 0 && p < 1) {
		return GapReport{}, ErrGapProb
	}
	if bins < 2 {
		return GapReport{}, ErrGapBins
	}
	gaps, err := Run(hits, func() (int, error) {
		for n := 1; ; n++ {
			hit, err := sample.Bernoulli(p, g)
			if err != nil {
				return 0, err
			}
			if hit {
				return n, nil
			}
		}
	})
	if err != nil {
		return GapReport{}, err
	}

	counts := make([]int, bins)
	for _, n := range gaps {
		counts[min(n, bins)-1]++
	}
	expected := make([]float64, bins)
	miss := 1.0
	for i := range expected[:bins-1] {
		expected[i] = float64(hits) * miss * p
		miss *= 1 - p
	}
	expected[bins-1] = float64(hits) * miss

	mean, variance := moments(gaps)
	dof := bins - 1
	return GapReport{
		ChiResult: ChiResult{
			ChiSquared: chiSquaredCells(counts, expected),
			DOF:        dof,
			Critical:   ChiSquaredCritical(dof, DefaultZ),
		},
		P:    p,
		Hits: hits,
		Mean: mean,
		Var:  variance,
	}, nil
}

// moments returns the mean and population variance (Welford).
func moments(xs []int) (mean, variance float64) {
	if len(xs) == 0 {
		return 0, 0
	}
	var m2 float64
	for i, x := range xs {
		d := float64(x) - mean
		mean += d / float64(i+1)
		m2 += d * (float64(x) - mean)
	}
	return mean, m2 / float64(len(xs))
}

func chiSquaredCells(observed []int, expected []float64) float64 {
	var chi float64
	for i, o := range observed {
		d := float64(o) - expected[i]
		chi += d * d / expected[i]
	}
	return chi
}
