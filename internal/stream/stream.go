// Package stream builds spawn trees of independent generators and writes
// their outputs as one interleaved little-endian byte stream, the input
// format expected by external batteries such as PractRand's RNG_test stdin64.
package stream

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"runtime"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/xtding233/bitgen/internal/algo"
	"github.com/xtding233/bitgen/internal/bitgen"
	"github.com/xtding233/bitgen/internal/seedseq"
)

// Mode selects which operation feeds the stream.
type Mode string

const (
	// ModeRaw writes NextRaw words.
	ModeRaw Mode = "raw"
	// ModeUint64 writes NextUint64 words.
	ModeUint64 Mode = "uint64"
)

var (
	ErrInvalidMode = errors.New("stream: mode must be raw or uint64")
	ErrInvalidTree = errors.New("stream: depth must be >= 0 and ply >= 1")
	ErrNoGenerator = errors.New("stream: at least one generator is required")
	ErrPerGen      = errors.New("stream: words per generator must be positive")
)

// ParseMode accepts "raw" and "uint64" (case-insensitive). Empty means raw.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModeRaw:
		return ModeRaw, nil
	case ModeUint64:
		return ModeUint64, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidMode, s)
}

// SpawnTree spawns ply children from every node, depth levels deep, and
// returns the ply^depth leaves in breadth-first order. depth 0 returns root.
func SpawnTree(root *seedseq.SeedSequence, depth, ply int) ([]*seedseq.SeedSequence, error) {
	if depth < 0 || ply < 1 {
		return nil, ErrInvalidTree
	}
	nodes := []*seedseq.SeedSequence{root}
	for level := 0; level < depth; level++ {
		children := make([]*seedseq.SeedSequence, 0, len(nodes)*ply)
		for _, node := range nodes {
			kids, err := node.Spawn(ply)
			if err != nil {
				return nil, fmt.Errorf("spawn level %d: %w", level, err)
			}
			children = append(children, kids...)
		}
		nodes = children
	}
	return nodes, nil
}

// Generators builds one generator of the named algorithm per leaf.
func Generators(algorithm string, leaves []*seedseq.SeedSequence) ([]bitgen.BitGenerator, error) {
	gens := make([]bitgen.BitGenerator, len(leaves))
	for i, leaf := range leaves {
		g, err := algo.New(algorithm, leaf)
		if err != nil {
			return nil, err
		}
		gens[i] = g
	}
	return gens, nil
}

// Interleave writes chunks rounds of output to w. Each round draws perGen
// words from every generator and lays them out column-interleaved: word j of
// generator i lands at index j*len(gens)+i, each word little-endian. chunks
// 0 means run until ctx is cancelled or w fails. A cancelled ctx ends the
// stream with a nil error.
//
// A round is produced in parallel, one goroutine per generator, so every
// generator is owned by exactly one goroutine at a time.
func Interleave(ctx context.Context, w io.Writer, gens []bitgen.BitGenerator, mode Mode, perGen, chunks int) error {
	if len(gens) == 0 {
		return ErrNoGenerator
	}
	if perGen <= 0 {
		return ErrPerGen
	}
	var draw func(bitgen.BitGenerator) uint64
	switch mode {
	case ModeRaw:
		draw = bitgen.BitGenerator.NextRaw
	case ModeUint64:
		draw = bitgen.BitGenerator.NextUint64
	default:
		return fmt.Errorf("%w: %q", ErrInvalidMode, mode)
	}

	log := zerolog.Ctx(ctx)
	n := len(gens)
	buf := make([]byte, 8*perGen*n)
	for round := 0; chunks == 0 || round < chunks; round++ {
		if ctx.Err() != nil {
			return nil
		}

		eg, egCtx := errgroup.WithContext(ctx)
		eg.SetLimit(runtime.GOMAXPROCS(0))
		for i, g := range gens {
			eg.Go(func() error {
				for j := 0; j < perGen; j++ {
					if j%4096 == 0 && egCtx.Err() != nil {
						return egCtx.Err()
					}
					binary.LittleEndian.PutUint64(buf[8*(j*n+i):], draw(g))
				}
				return nil
			})
		}
		if err := eg.Wait(); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}

		if _, err := w.Write(buf); err != nil {
			return fmt.Errorf("write chunk %d: %w", round, err)
		}
		log.Trace().Int("round", round).Int("bytes", len(buf)).Msg("chunk written")
	}
	return nil
}
