package bitgen

import (
	"math/rand/v2"
	"sync"
)

// Locked serializes access to one generator behind a mutex so several
// goroutines can share it. Contention is the price; independent instances on
// disjoint streams are preferred for parallel work.
type Locked struct {
	mu  sync.Mutex
	gen BitGenerator
}

// NewLocked wraps g. It panics with ErrUnbound if g is nil.
func NewLocked(g BitGenerator) *Locked {
	if isNil(g) {
		panic(ErrUnbound)
	}
	return &Locked{gen: g}
}

func (l *Locked) NextUint64() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.gen.NextUint64()
}

func (l *Locked) NextUint32() uint32 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.gen.NextUint32()
}

func (l *Locked) NextDouble() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.gen.NextDouble()
}

func (l *Locked) NextRaw() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.gen.NextRaw()
}

func (l *Locked) NativeBits() Width {
	return NativeBits(l.gen)
}

// Do runs fn with exclusive access to the wrapped generator, for callers that
// need several draws without interleaving from other goroutines.
func (l *Locked) Do(fn func(g BitGenerator)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fn(l.gen)
}

// source adapts a BitGenerator to math/rand/v2.Source.
type source struct {
	gen BitGenerator
}

func (s source) Uint64() uint64 { return s.gen.NextUint64() }

// AsSource returns a math/rand/v2 Source drawing from g. Each Uint64 call
// consumes exactly one NextUint64 from g.
func AsSource(g BitGenerator) rand.Source {
	if isNil(g) {
		panic(ErrUnbound)
	}
	return source{gen: g}
}

// Rand returns a *rand.Rand over g.
func Rand(g BitGenerator) *rand.Rand {
	return rand.New(AsSource(g))
}
