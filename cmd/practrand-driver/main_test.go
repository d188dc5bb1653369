package main

import (
	"errors"
	"flag"
	"io"
	"os"
	"syscall"
	"testing"

	"github.com/xtding233/bitgen/internal/config"
	"github.com/xtding233/bitgen/internal/stream"
)

func TestParseFlagsAliases(t *testing.T) {
	o, set, err := parseFlags([]string{"--seed", "42", "-d", "2", "--ply", "3", "-g", "--algorithm", "pcg64", "--chunks", "5"})
	if err != nil {
		t.Fatal(err)
	}
	if o.seed != "42" || o.depth != 2 || o.ply != 3 || !o.useGenerator || o.algorithm != "pcg64" || o.chunks != 5 {
		t.Fatalf("options=%+v", o)
	}
	r, err := o.overrides(set).Apply(config.Profile{}).Resolve()
	if err != nil {
		t.Fatal(err)
	}
	want := config.StreamParams{Depth: 2, Ply: 3, PerGen: config.DefaultPerGen, Mode: stream.ModeUint64}
	if r.Algorithm != "pcg64" || r.Stream != want || r.Seed.EntropyString() != "42" {
		t.Fatalf("resolved=%+v", r)
	}
}

func TestUnsetFlagsKeepProfile(t *testing.T) {
	o, set, err := parseFlags([]string{"-s", "1"})
	if err != nil {
		t.Fatal(err)
	}
	depth := 1
	p := config.Profile{Algorithm: "xoshiro256", Stream: config.StreamConfig{Depth: &depth}}
	r, err := o.overrides(set).Apply(p).Resolve()
	if err != nil {
		t.Fatal(err)
	}
	if r.Algorithm != "xoshiro256" || r.Stream.Depth != 1 || r.Stream.Mode != stream.ModeRaw {
		t.Fatalf("profile values lost: %+v", r)
	}
}

func TestParseFlagsHelp(t *testing.T) {
	if _, _, err := parseFlags([]string{"-h"}); !errors.Is(err, flag.ErrHelp) {
		t.Fatalf("expected ErrHelp, got %v", err)
	}
}

func TestClosedPipe(t *testing.T) {
	if !closedPipe(&os.PathError{Op: "write", Path: "/dev/stdout", Err: syscall.EPIPE}) {
		t.Fatal("EPIPE must count as a closed pipe")
	}
	if !closedPipe(os.ErrClosed) || closedPipe(io.ErrUnexpectedEOF) || closedPipe(nil) {
		t.Fatal("closedPipe misclassified an error")
	}
}
