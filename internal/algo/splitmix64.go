package algo

import (
	"github.com/xtding233/bitgen/internal/bitgen"
	"github.com/xtding233/bitgen/internal/seedseq"
)

const golden = 0x9e3779b97f4a7c15

// splitmix64 is the SplitMix64 finalizer applied to x+golden. It seeds the
// larger-state generators.
func splitmix64(x uint64) uint64 {
	return mix64(x + golden)
}

func mix64(z uint64) uint64 {
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}

// SplitMix64 is a Weyl sequence passed through a 64-bit mixing function.
//
// Native word: 64 bits. NextUint32 splits one draw, low half first.
type SplitMix64 struct {
	state uint64
	half  bitgen.HalfBuffer
}

func NewSplitMix64(seed uint64) *SplitMix64 {
	return &SplitMix64{state: seed}
}

// SplitMix64FromSeed takes one word from s.
func SplitMix64FromSeed(s *seedseq.SeedSequence) *SplitMix64 {
	return NewSplitMix64(s.GenerateState64(1)[0])
}

func (g *SplitMix64) next() uint64 {
	g.state += golden
	return mix64(g.state)
}

func (g *SplitMix64) NextUint64() uint64 { return g.next() }

func (g *SplitMix64) NextUint32() uint32 { return g.half.Next(g.next) }

func (g *SplitMix64) NextDouble() float64 { return bitgen.DoubleFrom64(g.next()) }

func (g *SplitMix64) NextRaw() uint64 { return g.next() }

func (g *SplitMix64) NativeBits() bitgen.Width { return bitgen.Native64 }

func (g *SplitMix64) State() uint64 { return g.state }
