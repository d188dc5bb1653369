package config

import (
	"fmt"
	"strings"

	"github.com/xtding233/bitgen/internal/algo"
	"github.com/xtding233/bitgen/internal/seedseq"
	"github.com/xtding233/bitgen/internal/stream"
)

// Validate checks semantic constraints of a Profile and reports every
// violation in one error.
func Validate(p Profile) error {
	var errs []string

	if p.Algorithm != "" && !algo.Known(p.Algorithm) {
		errs = append(errs, fmt.Sprintf("algorithm must be one of: %s", strings.Join(algo.Names(), ", ")))
	}
	if p.Seed != "" {
		if _, err := seedseq.ParseEntropy(p.Seed); err != nil {
			errs = append(errs, "seed must be a comma-separated list of non-negative decimal or 0x-hex integers")
		}
	}
	if p.ProgramEntropy != "" {
		if _, err := seedseq.ParseEntropy(p.ProgramEntropy); err != nil {
			errs = append(errs, "program_entropy must be a comma-separated list of non-negative decimal or 0x-hex integers")
		}
	}
	if p.PoolSize != nil && *p.PoolSize < seedseq.DefaultPoolSize {
		errs = append(errs, fmt.Sprintf("pool_size must be >= %d", seedseq.DefaultPoolSize))
	}

	// stream
	s := p.Stream
	if s.Depth != nil && *s.Depth < 0 {
		errs = append(errs, "stream.depth must be >= 0")
	}
	if s.Ply != nil && *s.Ply < 1 {
		errs = append(errs, "stream.ply must be >= 1")
	}
	if s.PerGen != nil && *s.PerGen < 1 {
		errs = append(errs, "stream.per_gen must be >= 1")
	}
	if _, err := stream.ParseMode(s.Mode); err != nil {
		errs = append(errs, "stream.mode must be one of: raw, uint64")
	}
	depth, ply := intOr(s.Depth, DefaultDepth), intOr(s.Ply, DefaultPly)
	if depth >= 0 && ply >= 1 && leaves(depth, ply) > MaxLeaves {
		errs = append(errs, fmt.Sprintf("stream.ply^depth must be <= %d", MaxLeaves))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

// leaves returns ply^depth, saturating just above MaxLeaves.
func leaves(depth, ply int) int {
	n := 1
	for i := 0; i < depth; i++ {
		n *= ply
		if n > MaxLeaves {
			return MaxLeaves + 1
		}
	}
	return n
}

func intOr(p *int, def int) int {
	if p == nil {
		return def
	}
	return *p
}
