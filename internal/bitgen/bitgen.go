// Package bitgen defines the contract every pseudorandom bit generator in
// this module satisfies.
//
// A BitGenerator owns its state and exposes four word-producing operations.
// Consumers (samplers, shuffles, statistical tests) are written once against
// the interface and work with any concrete algorithm. Every operation both
// reads and mutates the generator's state, so a single instance must not be
// used from more than one goroutine at a time without external locking (see
// Locked). Independent instances share nothing.
package bitgen

import (
	"errors"
	"reflect"
)

// ErrUnbound is the panic value raised when a Core is bound to, or used
// without, a generator.
var ErrUnbound = errors.New("bitgen: core is not bound to a generator")

// BitGenerator produces pseudorandom words and advances its own state as a
// side effect of every call.
type BitGenerator interface {
	// NextUint64 returns a 64-bit word with every bit uniform and
	// independent.
	NextUint64() uint64
	// NextUint32 returns a 32-bit word. Algorithms with a 64-bit native
	// word emit the low half of one draw and then its high half on the
	// following call.
	NextUint32() uint32
	// NextDouble returns a float64 in [0, 1).
	NextDouble() float64
	// NextRaw returns the native word of the algorithm, zero-extended to
	// 64 bits, with no narrowing or float construction applied.
	NextRaw() uint64
}

// Width is the bit width of an algorithm's native word.
type Width uint8

const (
	Native32 Width = 32
	Native64 Width = 64
)

// Widther is implemented by generators that report their native word width.
type Widther interface {
	NativeBits() Width
}

// NativeBits reports g's native word width, assuming 64 bits for generators
// that do not implement Widther.
func NativeBits(g BitGenerator) Width {
	if w, ok := g.(Widther); ok {
		return w.NativeBits()
	}
	return Native64
}

// Core is a handle over one generator. It holds no state of its own; the four
// operations forward to the generator it was bound to.
type Core struct {
	gen BitGenerator
}

// Bind returns a Core over g. It panics with ErrUnbound if g is nil, including
// a typed nil pointer stored in the interface.
func Bind(g BitGenerator) Core {
	if isNil(g) {
		panic(ErrUnbound)
	}
	return Core{gen: g}
}

func isNil(g BitGenerator) bool {
	if g == nil {
		return true
	}
	v := reflect.ValueOf(g)
	switch v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface:
		return v.IsNil()
	}
	return false
}

// Generator returns the generator c is bound to.
func (c Core) Generator() BitGenerator {
	c.mustBound()
	return c.gen
}

func (c Core) mustBound() {
	if c.gen == nil {
		panic(ErrUnbound)
	}
}

func (c Core) NextUint64() uint64 {
	c.mustBound()
	return c.gen.NextUint64()
}

func (c Core) NextUint32() uint32 {
	c.mustBound()
	return c.gen.NextUint32()
}

func (c Core) NextDouble() float64 {
	c.mustBound()
	return c.gen.NextDouble()
}

func (c Core) NextRaw() uint64 {
	c.mustBound()
	return c.gen.NextRaw()
}

// NativeBits reports the native width of the bound generator.
func (c Core) NativeBits() Width {
	c.mustBound()
	return NativeBits(c.gen)
}
