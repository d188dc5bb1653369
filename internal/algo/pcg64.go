package algo

import (
	"math/rand/v2"

	"github.com/xtding233/bitgen/internal/bitgen"
	"github.com/xtding233/bitgen/internal/seedseq"
)

// PCG64 is the 128-bit PCG with the DXSM output function, backed by
// math/rand/v2.
//
// Native word: 64 bits. NextUint32 splits one draw, low half first.
type PCG64 struct {
	pcg  *rand.PCG
	half bitgen.HalfBuffer
}

// NewPCG64 expands a single seed into the two PCG state words with
// splitmix64.
func NewPCG64(seed uint64) *PCG64 {
	x := seed ^ golden
	return NewPCG64FromWords(splitmix64(x), splitmix64(x^0xda942042e4dd58b5))
}

// NewPCG64FromWords uses hi and lo as the 128-bit seed.
func NewPCG64FromWords(hi, lo uint64) *PCG64 {
	return &PCG64{pcg: rand.NewPCG(hi, lo)}
}

// PCG64FromSeed takes two words from s.
func PCG64FromSeed(s *seedseq.SeedSequence) *PCG64 {
	w := s.GenerateState64(2)
	return NewPCG64FromWords(w[0], w[1])
}

func (g *PCG64) NextUint64() uint64 { return g.pcg.Uint64() }

func (g *PCG64) NextUint32() uint32 { return g.half.Next(g.pcg.Uint64) }

func (g *PCG64) NextDouble() float64 { return bitgen.DoubleFrom64(g.pcg.Uint64()) }

func (g *PCG64) NextRaw() uint64 { return g.pcg.Uint64() }

func (g *PCG64) NativeBits() bitgen.Width { return bitgen.Native64 }

// State returns the binary encoding of the 128-bit state.
func (g *PCG64) State() []byte {
	b, err := g.pcg.MarshalBinary()
	if err != nil {
		// rand.PCG never fails to marshal
		panic(err)
	}
	return b
}
