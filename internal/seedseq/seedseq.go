// Package seedseq turns arbitrary-size entropy into well-mixed seed words for
// bit generators and derives independent child seeds by spawning.
//
// The mixing follows Melissa O'Neill's seed_seq design: entropy is hashed
// into a small pool of 32-bit words, every pool word is mixed into every
// other, and output words are produced by hashing the pool again with a
// separate multiplier chain.
//
// Entropy may be a single integer of any size or a list of integers; each
// element is split into 32-bit words and the words are concatenated.
//
// When a spawn key is present, run entropy shorter than the pool is
// zero-padded first. Child seeds, and so practrand-driver streams, therefore
// differ from those of the Python seed_seq module for the same root entropy.
package seedseq

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"

	"github.com/pkg/errors"
)

const (
	// DefaultPoolSize is the minimum and default number of 32-bit pool words.
	DefaultPoolSize = 4

	initA    uint32 = 0x43b0d7e5
	multA    uint32 = 0x931e8875
	initB    uint32 = 0x8b51f9dd
	multB    uint32 = 0x58f38ded
	mixMultL uint32 = 0xca01f9dd
	mixMultR uint32 = 0x4973f715
	xshift          = 16
)

var (
	ErrPoolSize        = errors.New("seedseq: pool size must be at least 4")
	ErrNegativeEntropy = errors.New("seedseq: entropy must be non-negative")
	ErrEntropyString   = errors.New("seedseq: unrecognized entropy string")
	ErrNoEntropy       = errors.New("seedseq: empty entropy list")
)

// SeedSequence holds mixed entropy. It is immutable apart from the spawn
// counter, which Spawn advances.
type SeedSequence struct {
	entropy        []*big.Int
	programEntropy []*big.Int
	spawnKey       []uint32
	poolSize       int

	pool    []uint32
	spawned uint32
}

// Option customises New.
type Option func(*SeedSequence)

// WithProgramEntropy mixes additional, program-specific values after the
// run entropy.
func WithProgramEntropy(parts ...*big.Int) Option {
	return func(s *SeedSequence) { s.programEntropy = copyParts(parts) }
}

// WithSpawnKey sets the spawn key, the path of child indices from a root.
func WithSpawnKey(key ...uint32) Option {
	return func(s *SeedSequence) { s.spawnKey = append([]uint32(nil), key...) }
}

// WithPoolSize sets the number of 32-bit pool words.
func WithPoolSize(n int) Option {
	return func(s *SeedSequence) { s.poolSize = n }
}

// New mixes entropy into a fresh pool. A nil entropy draws poolSize*32 bits
// from crypto/rand; read Entropy afterwards to record it for reproduction.
func New(entropy *big.Int, opts ...Option) (*SeedSequence, error) {
	if entropy == nil {
		return newSequence(nil, opts)
	}
	return newSequence([]*big.Int{entropy}, opts)
}

// NewFromParts mixes a list of integers, concatenating their words in order.
// A one-element list is equivalent to New with that element.
func NewFromParts(parts []*big.Int, opts ...Option) (*SeedSequence, error) {
	if len(parts) == 0 {
		return nil, ErrNoEntropy
	}
	return newSequence(parts, opts)
}

// NewFromWords mixes 32-bit words as given.
func NewFromWords(words []uint32, opts ...Option) (*SeedSequence, error) {
	parts := make([]*big.Int, len(words))
	for i, w := range words {
		parts[i] = new(big.Int).SetUint64(uint64(w))
	}
	return NewFromParts(parts, opts...)
}

func newSequence(parts []*big.Int, opts []Option) (*SeedSequence, error) {
	s := &SeedSequence{poolSize: DefaultPoolSize}
	for _, opt := range opts {
		opt(s)
	}
	if s.poolSize < DefaultPoolSize {
		return nil, ErrPoolSize
	}
	if parts == nil {
		limit := new(big.Int).Lsh(big.NewInt(1), uint(s.poolSize*32))
		n, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return nil, errors.Wrap(err, "seedseq: read entropy")
		}
		parts = []*big.Int{n}
	}
	s.entropy = copyParts(parts)

	assembled, err := s.assembledEntropy()
	if err != nil {
		return nil, err
	}
	s.pool = make([]uint32, s.poolSize)
	s.mixEntropy(assembled)
	return s, nil
}

func copyParts(parts []*big.Int) []*big.Int {
	if parts == nil {
		return nil
	}
	out := make([]*big.Int, len(parts))
	for i, p := range parts {
		if p != nil {
			out[i] = new(big.Int).Set(p)
		}
	}
	return out
}

// FromUint64 is New for a plain integer seed.
func FromUint64(seed uint64, opts ...Option) (*SeedSequence, error) {
	return New(new(big.Int).SetUint64(seed), opts...)
}

// Parse accepts the same strings as ParseEntropy; an empty string draws
// fresh entropy.
func Parse(s string, opts ...Option) (*SeedSequence, error) {
	if strings.TrimSpace(s) == "" {
		return New(nil, opts...)
	}
	parts, err := ParseEntropy(s)
	if err != nil {
		return nil, err
	}
	return NewFromParts(parts, opts...)
}

// ParseEntropy reads a comma-separated list of integers. Each element is
// "0x..." hexadecimal or a run of decimal digits.
func ParseEntropy(s string) ([]*big.Int, error) {
	fields := strings.Split(s, ",")
	parts := make([]*big.Int, 0, len(fields))
	for _, f := range fields {
		n, err := parseInt(strings.TrimSpace(f))
		if err != nil {
			return nil, errors.Wrapf(err, "%q", s)
		}
		parts = append(parts, n)
	}
	return parts, nil
}

func parseInt(s string) (*big.Int, error) {
	base := 10
	digits := s
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		base = 16
		digits = s[2:]
	}
	if digits == "" || !onlyDigits(digits, base) {
		return nil, ErrEntropyString
	}
	n, ok := new(big.Int).SetString(digits, base)
	if !ok {
		return nil, ErrEntropyString
	}
	return n, nil
}

func onlyDigits(s string, base int) bool {
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
		case base == 16 && (r >= 'a' && r <= 'f' || r >= 'A' && r <= 'F'):
		default:
			return false
		}
	}
	return true
}

// CoerceUint32 splits each non-negative integer into 32-bit words, lowest
// bits first, and concatenates the results. Zero yields a single zero word.
func CoerceUint32(parts ...*big.Int) ([]uint32, error) {
	if len(parts) == 0 {
		return nil, ErrNoEntropy
	}
	var words []uint32
	mask := big.NewInt(0xFFFFFFFF)
	word := new(big.Int)
	for _, n := range parts {
		if n == nil {
			return nil, ErrNoEntropy
		}
		if n.Sign() < 0 {
			return nil, ErrNegativeEntropy
		}
		if n.Sign() == 0 {
			words = append(words, 0)
			continue
		}
		rest := new(big.Int).Set(n)
		for rest.Sign() > 0 {
			words = append(words, uint32(word.And(rest, mask).Uint64()))
			rest.Rsh(rest, 32)
		}
	}
	return words, nil
}

// assembledEntropy concatenates run entropy, program entropy and the spawn
// key. When a spawn key is present, run entropy is zero-padded to the pool
// size first; otherwise a trailing zero spawn index would hash exactly like
// the pool padding and child 0 would reproduce its parent.
func (s *SeedSequence) assembledEntropy() ([]uint32, error) {
	run, err := CoerceUint32(s.entropy...)
	if err != nil {
		return nil, err
	}
	if len(s.spawnKey) > 0 && len(run) < s.poolSize {
		run = append(run, make([]uint32, s.poolSize-len(run))...)
	}
	out := run
	if s.programEntropy != nil {
		prog, err := CoerceUint32(s.programEntropy...)
		if err != nil {
			return nil, errors.Wrap(err, "program entropy")
		}
		out = append(out, prog...)
	}
	return append(out, s.spawnKey...), nil
}

func (s *SeedSequence) mixEntropy(entropy []uint32) {
	hashConst := initA
	hash := func(value uint32) uint32 {
		value ^= hashConst
		hashConst *= multA
		value *= hashConst
		value ^= value >> xshift
		return value
	}
	mix := func(x, y uint32) uint32 {
		result := mixMultL*x - mixMultR*y
		result ^= result >> xshift
		return result
	}

	pool := s.pool
	for i := range pool {
		if i < len(entropy) {
			pool[i] = hash(entropy[i])
		} else {
			pool[i] = hash(0)
		}
	}
	// late words must be able to affect early ones
	for src := range pool {
		for dst := range pool {
			if src != dst {
				pool[dst] = mix(pool[dst], hash(pool[src]))
			}
		}
	}
	for src := len(pool); src < len(entropy); src++ {
		for dst := range pool {
			pool[dst] = mix(pool[dst], hash(entropy[src]))
		}
	}
}

// GenerateState32 returns n seed words.
func (s *SeedSequence) GenerateState32(n int) []uint32 {
	out := make([]uint32, n)
	hashConst := initB
	for i := range out {
		v := s.pool[i%len(s.pool)]
		v ^= hashConst
		hashConst *= multB
		v *= hashConst
		v ^= v >> xshift
		out[i] = v
	}
	return out
}

// GenerateState64 returns n 64-bit seed words built from 2n 32-bit words,
// the first of each pair being the low half.
func (s *SeedSequence) GenerateState64(n int) []uint64 {
	words := s.GenerateState32(2 * n)
	out := make([]uint64, n)
	for i := range out {
		out[i] = uint64(words[2*i]) | uint64(words[2*i+1])<<32
	}
	return out
}

// Spawn returns n children whose spawn keys extend this sequence's key with
// consecutive indices. Indices continue across calls.
func (s *SeedSequence) Spawn(n int) ([]*SeedSequence, error) {
	children := make([]*SeedSequence, 0, n)
	for i := 0; i < n; i++ {
		key := make([]uint32, len(s.spawnKey)+1)
		copy(key, s.spawnKey)
		key[len(s.spawnKey)] = s.spawned + uint32(i)

		opts := []Option{WithSpawnKey(key...), WithPoolSize(s.poolSize)}
		if s.programEntropy != nil {
			opts = append(opts, WithProgramEntropy(s.programEntropy...))
		}
		child, err := newSequence(s.entropy, opts)
		if err != nil {
			return nil, errors.Wrapf(err, "spawn child %d", s.spawned+uint32(i))
		}
		children = append(children, child)
	}
	s.spawned += uint32(n)
	return children, nil
}

// Entropy returns a copy of the run entropy.
func (s *SeedSequence) Entropy() []*big.Int { return copyParts(s.entropy) }

// EntropyString formats the run entropy the way ParseEntropy reads it.
func (s *SeedSequence) EntropyString() string { return joinParts(s.entropy, ",") }

func joinParts(parts []*big.Int, sep string) string {
	out := make([]string, len(parts))
	for i, p := range parts {
		out[i] = p.String()
	}
	return strings.Join(out, sep)
}

func reprParts(parts []*big.Int) string {
	if len(parts) == 1 {
		return parts[0].String()
	}
	return "[" + joinParts(parts, ", ") + "]"
}

// SpawnKey returns a copy of the spawn key.
func (s *SeedSequence) SpawnKey() []uint32 { return append([]uint32(nil), s.spawnKey...) }

// PoolSize returns the number of pool words.
func (s *SeedSequence) PoolSize() int { return s.poolSize }

// Spawned returns how many children have been spawned so far.
func (s *SeedSequence) Spawned() int { return int(s.spawned) }

func (s *SeedSequence) String() string {
	var b strings.Builder
	b.WriteString("SeedSequence(\n")
	fmt.Fprintf(&b, "    entropy=%s,\n", reprParts(s.entropy))
	if s.programEntropy != nil {
		fmt.Fprintf(&b, "    program_entropy=%s,\n", reprParts(s.programEntropy))
	}
	if len(s.spawnKey) > 0 {
		fmt.Fprintf(&b, "    spawn_key=%v,\n", s.spawnKey)
	}
	if s.poolSize != DefaultPoolSize {
		fmt.Fprintf(&b, "    pool_size=%d,\n", s.poolSize)
	}
	b.WriteString(")")
	return b.String()
}
