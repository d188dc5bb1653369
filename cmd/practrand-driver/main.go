// Command practrand-driver writes the interleaved output of a spawn tree of
// generators to stdout for an external battery:
//
//	practrand-driver -s 42 | RNG_test stdin64
//
// Every leaf of a ply^depth spawn tree seeds one generator; each round takes
// per-gen words from every generator, column-interleaved.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/xtding233/bitgen/internal/algo"
	"github.com/xtding233/bitgen/internal/config"
	"github.com/xtding233/bitgen/internal/logging"
	"github.com/xtding233/bitgen/internal/stream"
)

type options struct {
	seed         string
	depth        int
	ply          int
	perGen       int
	useGenerator bool
	algorithm    string
	profile      string
	configDir    string
	chunks       int
	logLevel     string
}

func parseFlags(args []string) (options, map[string]bool, error) {
	var o options
	fs := flag.NewFlagSet("practrand-driver", flag.ContinueOnError)
	fs.StringVar(&o.seed, "s", "", "root seed (decimal or 0x-hex, comma-separated for a list); fresh entropy when empty")
	fs.StringVar(&o.seed, "seed", "", "alias for -s")
	fs.IntVar(&o.depth, "d", config.DefaultDepth, "depth of the spawn tree")
	fs.IntVar(&o.depth, "depth", config.DefaultDepth, "alias for -d")
	fs.IntVar(&o.ply, "p", config.DefaultPly, "number of spawns at each level")
	fs.IntVar(&o.ply, "ply", config.DefaultPly, "alias for -p")
	fs.BoolVar(&o.useGenerator, "g", false, "write NextUint64 words instead of NextRaw")
	fs.BoolVar(&o.useGenerator, "use-generator", false, "alias for -g")
	fs.StringVar(&o.algorithm, "a", config.DefaultAlgorithm, fmt.Sprintf("algorithm %v", algo.Names()))
	fs.StringVar(&o.algorithm, "algorithm", config.DefaultAlgorithm, "alias for -a")
	fs.IntVar(&o.perGen, "per-gen", config.DefaultPerGen, "words per generator per round")
	fs.StringVar(&o.profile, "profile", "", "named profile under <config>/profiles")
	fs.StringVar(&o.configDir, "config", "config", "config base directory")
	fs.IntVar(&o.chunks, "chunks", 0, "rounds to write; 0 runs until the pipe closes")
	fs.StringVar(&o.logLevel, "log-level", "warn", "log level")
	if err := fs.Parse(args); err != nil {
		return o, nil, err
	}
	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	return o, set, nil
}

// overrides turns the explicitly set flags into profile overrides, so
// defaults from a profile are not clobbered by flag defaults.
func (o options) overrides(set map[string]bool) config.Overrides {
	var ov config.Overrides
	if set["s"] || set["seed"] {
		ov.Seed = &o.seed
	}
	if set["d"] || set["depth"] {
		ov.Depth = &o.depth
	}
	if set["p"] || set["ply"] {
		ov.Ply = &o.ply
	}
	if set["a"] || set["algorithm"] {
		ov.Algorithm = &o.algorithm
	}
	if set["per-gen"] {
		ov.PerGen = &o.perGen
	}
	if o.useGenerator {
		mode := string(stream.ModeUint64)
		ov.Mode = &mode
	}
	return ov
}

func run(ctx context.Context, args []string) error {
	o, set, err := parseFlags(args)
	if err != nil {
		return err
	}
	log, err := logging.New(os.Stderr, logging.FormatConsole, o.logLevel)
	if err != nil {
		return err
	}
	ctx = log.WithContext(ctx)

	var p config.Profile
	if o.profile != "" {
		p, err = config.NewLoader(o.configDir).Load(o.profile)
		if err != nil {
			return err
		}
	}
	resolved, err := o.overrides(set).Apply(p).Resolve()
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "seed = %s\n", resolved.Seed.EntropyString())

	sp := resolved.Stream
	leaves, err := stream.SpawnTree(resolved.Seed, sp.Depth, sp.Ply)
	if err != nil {
		return err
	}
	gens, err := stream.Generators(resolved.Algorithm, leaves)
	if err != nil {
		return err
	}
	log.Info().
		Str("algorithm", resolved.Algorithm).
		Int("generators", len(gens)).
		Int("per_gen", sp.PerGen).
		Str("mode", string(sp.Mode)).
		Msg("streaming")
	return stream.Interleave(ctx, os.Stdout, gens, sp.Mode, sp.PerGen, o.chunks)
}

// closedPipe reports whether err means the reader went away.
func closedPipe(err error) bool {
	return errors.Is(err, syscall.EPIPE) || errors.Is(err, os.ErrClosed)
}

func main() {
	// Receive EPIPE from writes instead of dying on SIGPIPE.
	signal.Notify(make(chan os.Signal, 1), syscall.SIGPIPE)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := run(ctx, os.Args[1:])
	switch {
	case err == nil && ctx.Err() != nil, closedPipe(err):
		fmt.Fprintln(os.Stderr, "Exiting.")
	case errors.Is(err, flag.ErrHelp):
		os.Exit(2)
	case err != nil:
		l := zerolog.New(logging.Console(os.Stderr, false))
		l.Error().Err(err).Msg("practrand-driver failed")
		stop()
		os.Exit(1)
	}
}
