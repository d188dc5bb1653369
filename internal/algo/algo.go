// Package algo holds the concrete bit generator algorithms. Each type owns
// its typed state and implements bitgen.BitGenerator directly, so the four
// operations can never be paired with another algorithm's state.
package algo

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/xtding233/bitgen/internal/bitgen"
	"github.com/xtding233/bitgen/internal/seedseq"
)

// Algorithm names accepted by New.
const (
	NameJSF64      = "jsf64"
	NamePCG64      = "pcg64"
	NamePCG32      = "pcg32"
	NameSplitMix64 = "splitmix64"
	NameXoshiro256 = "xoshiro256"
)

var (
	ErrUnknownAlgorithm = errors.New("unknown algorithm")
	ErrNilSeed          = errors.New("seed sequence is required")
)

// Constructor builds a generator from a seed sequence.
type Constructor func(*seedseq.SeedSequence) bitgen.BitGenerator

var constructors = map[string]Constructor{
	NameJSF64:      func(s *seedseq.SeedSequence) bitgen.BitGenerator { return JSF64FromSeed(s) },
	NamePCG64:      func(s *seedseq.SeedSequence) bitgen.BitGenerator { return PCG64FromSeed(s) },
	NamePCG32:      func(s *seedseq.SeedSequence) bitgen.BitGenerator { return PCG32FromSeed(s) },
	NameSplitMix64: func(s *seedseq.SeedSequence) bitgen.BitGenerator { return SplitMix64FromSeed(s) },
	NameXoshiro256: func(s *seedseq.SeedSequence) bitgen.BitGenerator { return Xoshiro256FromSeed(s) },
}

// Names returns the known algorithm names in sorted order.
func Names() []string {
	names := make([]string, 0, len(constructors))
	for name := range constructors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Known reports whether name (case-insensitive) is a known algorithm.
func Known(name string) bool {
	_, ok := constructors[strings.ToLower(strings.TrimSpace(name))]
	return ok
}

// New builds the named algorithm seeded from seed.
func New(name string, seed *seedseq.SeedSequence) (bitgen.BitGenerator, error) {
	ctor, ok := constructors[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("%w %q (known: %s)", ErrUnknownAlgorithm, name, strings.Join(Names(), ", "))
	}
	if seed == nil {
		return nil, ErrNilSeed
	}
	return ctor(seed), nil
}
