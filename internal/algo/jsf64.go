package algo

import (
	"math/bits"

	"github.com/xtding233/bitgen/internal/bitgen"
	"github.com/xtding233/bitgen/internal/seedseq"
)

const jsfInit = 0xf1ea5eed

// JSF64 is Bob Jenkins' small fast 64-bit generator.
//
// Native word: 64 bits. NextUint32 splits one draw into two outputs, low half
// first. NextDouble keeps the top 53 bits of one draw.
type JSF64 struct {
	a, b, c, d uint64
	half       bitgen.HalfBuffer
}

// JSF64State is a snapshot of the four state words.
type JSF64State struct {
	A, B, C, D uint64
}

// NewJSF64 seeds the generator the way Jenkins' raninit does: b, c and d all
// take the seed, then 20 rounds are discarded.
func NewJSF64(seed uint64) *JSF64 {
	return NewJSF64FromWords(seed, seed, seed)
}

// NewJSF64FromWords seeds b, c and d independently.
func NewJSF64FromWords(b, c, d uint64) *JSF64 {
	g := &JSF64{a: jsfInit, b: b, c: c, d: d}
	for i := 0; i < 20; i++ {
		g.next()
	}
	return g
}

// JSF64FromSeed takes three words from s.
func JSF64FromSeed(s *seedseq.SeedSequence) *JSF64 {
	w := s.GenerateState64(3)
	return NewJSF64FromWords(w[0], w[1], w[2])
}

func (g *JSF64) next() uint64 {
	e := g.a - bits.RotateLeft64(g.b, 7)
	g.a = g.b ^ bits.RotateLeft64(g.c, 13)
	g.b = g.c + bits.RotateLeft64(g.d, 37)
	g.c = g.d + e
	g.d = e + g.a
	return g.d
}

func (g *JSF64) NextUint64() uint64 { return g.next() }

func (g *JSF64) NextUint32() uint32 { return g.half.Next(g.next) }

func (g *JSF64) NextDouble() float64 { return bitgen.DoubleFrom64(g.next()) }

func (g *JSF64) NextRaw() uint64 { return g.next() }

func (g *JSF64) NativeBits() bitgen.Width { return bitgen.Native64 }

// State returns the current state words. A pending NextUint32 half is not
// part of the snapshot.
func (g *JSF64) State() JSF64State {
	return JSF64State{A: g.a, B: g.b, C: g.c, D: g.d}
}
