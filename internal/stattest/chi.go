package stattest

import (
	"math"
	"math/bits"

	"github.com/xtding233/bitgen/internal/bitgen"
)

// DefaultZ is the standard-normal quantile used for critical values. At 5
// sigma a correct generator fails a single test with probability below 1e-6.
const DefaultZ = 5.0

// ChiSquared returns the Pearson statistic for observed counts against a
// single expected count per cell.
func ChiSquared(observed []int, expected float64) float64 {
	var chi float64
	for _, o := range observed {
		d := float64(o) - expected
		chi += d * d / expected
	}
	return chi
}

// ChiSquaredCritical approximates the upper critical value of the
// chi-squared distribution with dof degrees of freedom at normal quantile z
// (Wilson-Hilferty).
func ChiSquaredCritical(dof int, z float64) float64 {
	k := float64(dof)
	h := 2 / (9 * k)
	c := 1 - h + z*math.Sqrt(h)
	return k * c * c * c
}

// ChiResult is one chi-squared test outcome.
type ChiResult struct {
	ChiSquared float64
	DOF        int
	Critical   float64
}

func (r ChiResult) Pass() bool { return r.ChiSquared < r.Critical }

// HalfXOR draws pairs of consecutive NextUint32 values (the two halves of one
// native draw for 64-bit algorithms), XORs them and buckets the top
// log2(bins) bits of the result. Halves with a fixed arithmetic relationship
// pile into few buckets. bins must be a power of two between 2 and 2^16.
func HalfXOR(g bitgen.BitGenerator, pairs, bins int) ChiResult {
	if bins < 2 || bins > 1<<16 || bins&(bins-1) != 0 {
		panic("stattest: bins must be a power of two in [2, 65536]")
	}
	shift := 32 - (bits.Len(uint(bins)) - 1)
	counts := make([]int, bins)
	for i := 0; i < pairs; i++ {
		lo := g.NextUint32()
		hi := g.NextUint32()
		counts[(lo^hi)>>shift]++
	}
	dof := bins - 1
	return ChiResult{
		ChiSquared: ChiSquared(counts, float64(pairs)/float64(bins)),
		DOF:        dof,
		Critical:   ChiSquaredCritical(dof, DefaultZ),
	}
}

// BitReport holds per-bit frequency results over NextUint64.
type BitReport struct {
	Draws      int
	Ones       [64]int
	ChiSquared [64]float64
	WorstBit   int
	Critical   float64
}

// Pass reports whether every bit stayed below the critical value.
func (r BitReport) Pass() bool { return r.ChiSquared[r.WorstBit] < r.Critical }

// BitFrequency counts how often each bit of NextUint64 is set.
func BitFrequency(g bitgen.BitGenerator, draws int) BitReport {
	rep := BitReport{Draws: draws, Critical: ChiSquaredCritical(1, DefaultZ)}
	for i := 0; i < draws; i++ {
		x := g.NextUint64()
		for x != 0 {
			b := bits.TrailingZeros64(x)
			rep.Ones[b]++
			x &= x - 1
		}
	}
	expected := float64(draws) / 2
	for b := range rep.Ones {
		rep.ChiSquared[b] = ChiSquared([]int{rep.Ones[b], draws - rep.Ones[b]}, expected)
		if rep.ChiSquared[b] > rep.ChiSquared[rep.WorstBit] {
			rep.WorstBit = b
		}
	}
	return rep
}

// Uniformity buckets n NextDouble values into bins equal-width cells.
func Uniformity(g bitgen.BitGenerator, n, bins int) ChiResult {
	counts := make([]int, bins)
	for i := 0; i < n; i++ {
		counts[int(g.NextDouble()*float64(bins))]++
	}
	dof := bins - 1
	return ChiResult{
		ChiSquared: ChiSquared(counts, float64(n)/float64(bins)),
		DOF:        dof,
		Critical:   ChiSquaredCritical(dof, DefaultZ),
	}
}
