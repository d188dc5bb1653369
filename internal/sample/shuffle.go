package sample

import (
	"errors"

	"github.com/xtding233/bitgen/internal/bitgen"
)

var ErrSampleSize = errors.New("sample size larger than population")

// Shuffle permutes n elements in place through swap (Fisher-Yates).
// It panics if n < 0.
func Shuffle(n int, swap func(i, j int), g bitgen.BitGenerator) {
	if n < 0 {
		panic("sample: invalid argument to Shuffle")
	}
	for i := n - 1; i > 0; i-- {
		j := int(Uint64n(uint64(i+1), g))
		swap(i, j)
	}
}

// Perm returns a random permutation of [0, n).
func Perm(n int, g bitgen.BitGenerator) []int {
	p := make([]int, n)
	for i := range p {
		p[i] = i
	}
	Shuffle(n, func(i, j int) { p[i], p[j] = p[j], p[i] }, g)
	return p
}

// Choice picks k distinct indices from [0, n) in selection order with a
// partial Fisher-Yates pass. Only k draws are made.
func Choice(n, k int, g bitgen.BitGenerator) ([]int, error) {
	if n < 0 || k < 0 {
		return nil, ErrInvalidBound
	}
	if k > n {
		return nil, ErrSampleSize
	}
	// sparse swap table so large n with small k stays cheap
	moved := make(map[int]int, k)
	at := func(i int) int {
		if v, ok := moved[i]; ok {
			return v
		}
		return i
	}
	out := make([]int, k)
	for i := 0; i < k; i++ {
		j := i + int(Uint64n(uint64(n-i), g))
		out[i] = at(j)
		moved[j] = at(i)
	}
	return out, nil
}
