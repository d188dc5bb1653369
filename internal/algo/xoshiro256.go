package algo

import (
	"math/bits"

	"github.com/xtding233/bitgen/internal/bitgen"
	"github.com/xtding233/bitgen/internal/seedseq"
)

// Xoshiro256 is xoshiro256** by Blackman and Vigna.
//
// Native word: 64 bits. NextUint32 splits one draw, low half first.
type Xoshiro256 struct {
	s    [4]uint64
	half bitgen.HalfBuffer
}

// NewXoshiro256 fills the state with four consecutive SplitMix64 outputs.
func NewXoshiro256(seed uint64) *Xoshiro256 {
	sm := NewSplitMix64(seed)
	return NewXoshiro256FromWords(sm.next(), sm.next(), sm.next(), sm.next())
}

// NewXoshiro256FromWords uses the words as state. The all-zero state is a
// fixed point, so it is replaced by golden in the first word.
func NewXoshiro256FromWords(s0, s1, s2, s3 uint64) *Xoshiro256 {
	if s0|s1|s2|s3 == 0 {
		s0 = golden
	}
	return &Xoshiro256{s: [4]uint64{s0, s1, s2, s3}}
}

// Xoshiro256FromSeed takes four words from s.
func Xoshiro256FromSeed(s *seedseq.SeedSequence) *Xoshiro256 {
	w := s.GenerateState64(4)
	return NewXoshiro256FromWords(w[0], w[1], w[2], w[3])
}

func (g *Xoshiro256) next() uint64 {
	s := &g.s
	result := bits.RotateLeft64(s[1]*5, 7) * 9
	t := s[1] << 17

	s[2] ^= s[0]
	s[3] ^= s[1]
	s[1] ^= s[2]
	s[0] ^= s[3]

	s[2] ^= t
	s[3] = bits.RotateLeft64(s[3], 45)
	return result
}

func (g *Xoshiro256) NextUint64() uint64 { return g.next() }

func (g *Xoshiro256) NextUint32() uint32 { return g.half.Next(g.next) }

func (g *Xoshiro256) NextDouble() float64 { return bitgen.DoubleFrom64(g.next()) }

func (g *Xoshiro256) NextRaw() uint64 { return g.next() }

func (g *Xoshiro256) NativeBits() bitgen.Width { return bitgen.Native64 }

func (g *Xoshiro256) State() [4]uint64 { return g.s }
