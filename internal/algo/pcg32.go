package algo

import (
	"math/bits"

	"github.com/xtding233/bitgen/internal/bitgen"
	"github.com/xtding233/bitgen/internal/seedseq"
)

const pcgMult = 6364136223846793005

// PCG32 is O'Neill's pcg32 (64-bit LCG state, XSH-RR output).
//
// Native word: 32 bits. NextUint32 is one native draw. NextUint64 joins two
// native draws, the first one becoming the high half. NextDouble scales one
// native draw by 2^-32, so doubles carry only 32 bits of entropy. NextRaw is
// one native draw with the upper 32 bits zero.
type PCG32 struct {
	state, inc uint64
}

// PCG32State is a snapshot of the LCG state and increment.
type PCG32State struct {
	State, Inc uint64
}

// NewPCG32 seeds like pcg32_srandom_r: initSeq selects the stream.
func NewPCG32(initState, initSeq uint64) *PCG32 {
	g := &PCG32{inc: initSeq<<1 | 1}
	g.step()
	g.state += initState
	g.step()
	return g
}

// PCG32FromSeed takes the initial state and the stream selector from s.
func PCG32FromSeed(s *seedseq.SeedSequence) *PCG32 {
	w := s.GenerateState64(2)
	return NewPCG32(w[0], w[1])
}

func (g *PCG32) step() {
	g.state = g.state*pcgMult + g.inc
}

func (g *PCG32) next() uint32 {
	old := g.state
	g.step()
	xorshifted := uint32(((old >> 18) ^ old) >> 27)
	rot := int(old >> 59)
	return bits.RotateLeft32(xorshifted, -rot)
}

func (g *PCG32) NextUint64() uint64 {
	hi := g.next()
	lo := g.next()
	return bitgen.Join32(hi, lo)
}

func (g *PCG32) NextUint32() uint32 { return g.next() }

func (g *PCG32) NextDouble() float64 { return bitgen.DoubleFrom32(g.next()) }

func (g *PCG32) NextRaw() uint64 { return bitgen.Widen32(g.next()) }

func (g *PCG32) NativeBits() bitgen.Width { return bitgen.Native32 }

func (g *PCG32) State() PCG32State {
	return PCG32State{State: g.state, Inc: g.inc}
}
