// types.go
package config

import (
	"github.com/xtding233/bitgen/internal/seedseq"
	"github.com/xtding233/bitgen/internal/stream"
)

// Profile is a run profile loaded from YAML. Pointer fields distinguish
// "unset" from zero so a named profile can override defaults selectively.
type Profile struct {
	Version        string       `yaml:"version"`
	Algorithm      string       `yaml:"algorithm,omitempty"`
	Seed           string       `yaml:"seed,omitempty"`            // decimal or 0x-hex integers, comma-separated; empty draws fresh entropy
	ProgramEntropy string       `yaml:"program_entropy,omitempty"` // same format as seed
	PoolSize       *int         `yaml:"pool_size,omitempty"`
	Stream         StreamConfig `yaml:"stream"`
	Notes          string       `yaml:"notes,omitempty"`
}

type StreamConfig struct {
	Depth  *int   `yaml:"depth"`
	Ply    *int   `yaml:"ply"`
	PerGen *int   `yaml:"per_gen"`
	Mode   string `yaml:"mode"` // "raw" | "uint64"
}

// Defaults applied by Resolve.
const (
	DefaultAlgorithm = "jsf64"
	DefaultDepth     = 4
	DefaultPly       = 8
	DefaultPerGen    = 1024
	DefaultMode      = stream.ModeRaw

	// MaxLeaves caps ply^depth.
	MaxLeaves = 1 << 16
)

// StreamParams are the normalized spawn-tree and stream settings.
type StreamParams struct {
	Depth  int
	Ply    int
	PerGen int
	Mode   stream.Mode
}

// Resolved is a profile with defaults applied and the seed sequence built.
type Resolved struct {
	Algorithm string
	Seed      *seedseq.SeedSequence
	Stream    StreamParams
	Version   string // effective config version for tracing
}
