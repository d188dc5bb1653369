// Package sample holds the consumers written once against
// bitgen.BitGenerator: Bernoulli draws, bounded integers, shuffles and
// sampling without replacement. Any algorithm works with every function.
package sample

import (
	"errors"
	"math"
	"math/bits"

	"github.com/xtding233/bitgen/internal/bitgen"
)

var (
	ErrInvalidProb  = errors.New("invalid probability p; must be 0..1")
	ErrInvalidBound = errors.New("bound must be positive")
	ErrInvalidRange = errors.New("invalid range; need finite lo < hi")
)

// Bernoulli draws under p and reports a hit.
// p <= 0 never hits, p >= 1 always hits, otherwise NextDouble() < p.
// The degenerate cases consume nothing from g.
func Bernoulli(p float64, g bitgen.BitGenerator) (bool, error) {
	if err := validateProb(p); err != nil {
		return false, err
	}
	if p <= 0 {
		return false, nil
	}
	if p >= 1 {
		return true, nil
	}
	return g.NextDouble() < p, nil
}

func validateProb(p float64) error {
	if math.IsNaN(p) || math.IsInf(p, 0) {
		return ErrInvalidProb
	}
	if p < 0 || p > 1 {
		return ErrInvalidProb
	}
	return nil
}

// Uniform returns a value in [lo, hi).
func Uniform(lo, hi float64, g bitgen.BitGenerator) (float64, error) {
	if math.IsNaN(lo) || math.IsNaN(hi) || math.IsInf(lo, 0) || math.IsInf(hi, 0) || !(lo < hi) {
		return 0, ErrInvalidRange
	}
	d := g.NextDouble()
	var v float64
	if span := hi - lo; math.IsInf(span, 0) {
		// hi-lo overflows for ranges wider than MaxFloat64
		v = lo*(1-d) + hi*d
	} else {
		v = lo + span*d
	}
	if v >= hi {
		// rounding at the top of the interval
		v = math.Nextafter(hi, lo)
	}
	if v < lo {
		v = lo
	}
	return v, nil
}

// Uint64n returns an unbiased value in [0, n) using Lemire's multiply-shift
// with rejection. n == 0 returns 0 without drawing.
func Uint64n(n uint64, g bitgen.BitGenerator) uint64 {
	if n == 0 {
		return 0
	}
	if n&(n-1) == 0 {
		return g.NextUint64() & (n - 1)
	}
	hi, lo := bits.Mul64(g.NextUint64(), n)
	if lo < n {
		thresh := -n % n
		for lo < thresh {
			hi, lo = bits.Mul64(g.NextUint64(), n)
		}
	}
	return hi
}

// Uint32n is Uint64n over NextUint32, so a 64-bit generator spends half a
// native draw per accepted value.
func Uint32n(n uint32, g bitgen.BitGenerator) uint32 {
	if n == 0 {
		return 0
	}
	if n&(n-1) == 0 {
		return g.NextUint32() & (n - 1)
	}
	m := uint64(g.NextUint32()) * uint64(n)
	if uint32(m) < n {
		thresh := -n % n
		for uint32(m) < thresh {
			m = uint64(g.NextUint32()) * uint64(n)
		}
	}
	return uint32(m >> 32)
}

// Intn returns a value in [0, n).
func Intn(n int, g bitgen.BitGenerator) (int, error) {
	if n <= 0 {
		return 0, ErrInvalidBound
	}
	if uint64(n) <= math.MaxUint32 {
		return int(Uint32n(uint32(n), g)), nil
	}
	return int(Uint64n(uint64(n), g)), nil
}
