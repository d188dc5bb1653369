// resolve.go
package config

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/xtding233/bitgen/internal/seedseq"
	"github.com/xtding233/bitgen/internal/stream"
)

// Overrides carries per-run values that win over the profile, such as
// command-line flags. Nil fields keep the profile value.
type Overrides struct {
	Algorithm *string
	Seed      *string
	Depth     *int
	Ply       *int
	PerGen    *int
	Mode      *string
}

// Apply returns p with the overrides laid over it.
func (o Overrides) Apply(p Profile) Profile {
	if o.Algorithm != nil {
		p.Algorithm = *o.Algorithm
	}
	if o.Seed != nil {
		p.Seed = *o.Seed
	}
	if o.Depth != nil {
		p.Stream.Depth = o.Depth
	}
	if o.Ply != nil {
		p.Stream.Ply = o.Ply
	}
	if o.PerGen != nil {
		p.Stream.PerGen = o.PerGen
	}
	if o.Mode != nil {
		p.Stream.Mode = *o.Mode
	}
	return p
}

// Resolve validates p, applies defaults and builds the root seed sequence.
// An empty seed draws fresh entropy; read Resolved.Seed.EntropyString() to record
// it. spawnKey, when given, positions the root inside a larger tree.
func (p Profile) Resolve(spawnKey ...uint32) (Resolved, error) {
	if err := Validate(p); err != nil {
		return Resolved{}, err
	}

	var opts []seedseq.Option
	if p.ProgramEntropy != "" {
		pe, err := seedseq.ParseEntropy(p.ProgramEntropy)
		if err != nil {
			return Resolved{}, errors.Wrap(err, "program_entropy")
		}
		opts = append(opts, seedseq.WithProgramEntropy(pe...))
	}
	if p.PoolSize != nil {
		opts = append(opts, seedseq.WithPoolSize(*p.PoolSize))
	}
	if len(spawnKey) > 0 {
		opts = append(opts, seedseq.WithSpawnKey(spawnKey...))
	}

	var entropy []*big.Int
	if p.Seed != "" {
		e, err := seedseq.ParseEntropy(p.Seed)
		if err != nil {
			return Resolved{}, errors.Wrap(err, "seed")
		}
		entropy = e
	}
	var root *seedseq.SeedSequence
	var err error
	if entropy == nil {
		root, err = seedseq.New(nil, opts...)
	} else {
		root, err = seedseq.NewFromParts(entropy, opts...)
	}
	if err != nil {
		return Resolved{}, errors.Wrap(err, "build seed sequence")
	}

	mode, err := stream.ParseMode(p.Stream.Mode)
	if err != nil {
		return Resolved{}, err
	}
	alg := p.Algorithm
	if alg == "" {
		alg = DefaultAlgorithm
	}
	return Resolved{
		Algorithm: alg,
		Seed:      root,
		Stream: StreamParams{
			Depth:  intOr(p.Stream.Depth, DefaultDepth),
			Ply:    intOr(p.Stream.Ply, DefaultPly),
			PerGen: intOr(p.Stream.PerGen, DefaultPerGen),
			Mode:   mode,
		},
		Version: p.Version,
	}, nil
}
