package stream

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"io"
	"slices"
	"testing"

	"github.com/xtding233/bitgen/internal/algo"
	"github.com/xtding233/bitgen/internal/bitgen"
	"github.com/xtding233/bitgen/internal/seedseq"
)

func root(t *testing.T) *seedseq.SeedSequence {
	t.Helper()
	ss, err := seedseq.FromUint64(42)
	if err != nil {
		t.Fatalf("seedseq: %v", err)
	}
	return ss
}

func TestParseMode(t *testing.T) {
	for in, want := range map[string]Mode{"": ModeRaw, "raw": ModeRaw, " UINT64 ": ModeUint64} {
		got, err := ParseMode(in)
		if err != nil || got != want {
			t.Fatalf("ParseMode(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParseMode("double"); !errors.Is(err, ErrInvalidMode) {
		t.Fatalf("expected ErrInvalidMode, got %v", err)
	}
}

func TestSpawnTreeOrder(t *testing.T) {
	leaves, err := SpawnTree(root(t), 2, 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(leaves) != 9 {
		t.Fatalf("got %d leaves, want 9", len(leaves))
	}
	i := 0
	for a := uint32(0); a < 3; a++ {
		for b := uint32(0); b < 3; b++ {
			if got := leaves[i].SpawnKey(); !slices.Equal(got, []uint32{a, b}) {
				t.Fatalf("leaf %d spawn key %v, want [%d %d]", i, got, a, b)
			}
			i++
		}
	}
}

func TestSpawnTreeEdges(t *testing.T) {
	r := root(t)
	leaves, err := SpawnTree(r, 0, 8)
	if err != nil || len(leaves) != 1 || leaves[0] != r {
		t.Fatalf("depth 0 must return the root: %v %v", leaves, err)
	}
	if _, err := SpawnTree(r, -1, 8); !errors.Is(err, ErrInvalidTree) {
		t.Fatalf("expected ErrInvalidTree, got %v", err)
	}
	if _, err := SpawnTree(r, 2, 0); !errors.Is(err, ErrInvalidTree) {
		t.Fatalf("expected ErrInvalidTree, got %v", err)
	}
}

func TestInterleaveKnownBytes(t *testing.T) {
	leaves, err := SpawnTree(root(t), 1, 2)
	if err != nil {
		t.Fatal(err)
	}
	gens, err := Generators(algo.NameJSF64, leaves)
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := Interleave(context.Background(), &buf, gens, ModeRaw, 2, 1); err != nil {
		t.Fatal(err)
	}
	want := "da0e659e4f08d52d7afb2403f03daaade95d224b65b2444465d8e3fff6b0cd9c"
	if got := hex.EncodeToString(buf.Bytes()); got != want {
		t.Fatalf("stream bytes\n got %s\nwant %s", got, want)
	}
}

func TestInterleaveLayout(t *testing.T) {
	const perGen, chunks = 5, 3
	mk := func() []bitgen.BitGenerator {
		return []bitgen.BitGenerator{algo.NewJSF64(1), algo.NewPCG32(2, 3), algo.NewXoshiro256(4)}
	}

	for _, mode := range []Mode{ModeRaw, ModeUint64} {
		t.Run(string(mode), func(t *testing.T) {
			var buf bytes.Buffer
			if err := Interleave(context.Background(), &buf, mk(), mode, perGen, chunks); err != nil {
				t.Fatal(err)
			}
			refs := mk()
			n := len(refs)
			if buf.Len() != 8*perGen*n*chunks {
				t.Fatalf("wrote %d bytes", buf.Len())
			}
			b := buf.Bytes()
			for c := 0; c < chunks; c++ {
				for j := 0; j < perGen; j++ {
					for i, ref := range refs {
						want := ref.NextRaw()
						if mode == ModeUint64 {
							want = ref.NextUint64()
						}
						off := 8 * (c*perGen*n + j*n + i)
						if got := binary.LittleEndian.Uint64(b[off:]); got != want {
							t.Fatalf("chunk %d word %d gen %d: %#x, want %#x", c, j, i, got, want)
						}
					}
				}
			}
		})
	}
}

type failAfter struct {
	n   int
	err error
}

func (f *failAfter) Write(p []byte) (int, error) {
	if f.n == 0 {
		return 0, f.err
	}
	f.n--
	return len(p), nil
}

func TestInterleaveWriterError(t *testing.T) {
	w := &failAfter{n: 2, err: io.ErrClosedPipe}
	err := Interleave(context.Background(), w, []bitgen.BitGenerator{algo.NewJSF64(1)}, ModeRaw, 4, 0)
	if !errors.Is(err, io.ErrClosedPipe) {
		t.Fatalf("expected writer error, got %v", err)
	}
}

type cancelAfter struct {
	n      int
	cancel context.CancelFunc
}

func (c *cancelAfter) Write(p []byte) (int, error) {
	c.n++
	if c.n == 3 {
		c.cancel()
	}
	return len(p), nil
}

func TestInterleaveStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	w := &cancelAfter{cancel: cancel}
	if err := Interleave(ctx, w, []bitgen.BitGenerator{algo.NewJSF64(1), algo.NewJSF64(2)}, ModeRaw, 16, 0); err != nil {
		t.Fatalf("cancel must end the stream cleanly, got %v", err)
	}
	if w.n != 3 {
		t.Fatalf("wrote %d chunks after cancel, want 3", w.n)
	}
}

func TestInterleaveRejectsBadInput(t *testing.T) {
	g := []bitgen.BitGenerator{algo.NewJSF64(1)}
	if err := Interleave(context.Background(), io.Discard, nil, ModeRaw, 1, 1); !errors.Is(err, ErrNoGenerator) {
		t.Fatalf("expected ErrNoGenerator, got %v", err)
	}
	if err := Interleave(context.Background(), io.Discard, g, ModeRaw, 0, 1); !errors.Is(err, ErrPerGen) {
		t.Fatalf("expected ErrPerGen, got %v", err)
	}
	if err := Interleave(context.Background(), io.Discard, g, Mode("double"), 1, 1); !errors.Is(err, ErrInvalidMode) {
		t.Fatalf("expected ErrInvalidMode, got %v", err)
	}
}

func TestGeneratorsUnknownAlgorithm(t *testing.T) {
	if _, err := Generators("nope", []*seedseq.SeedSequence{root(t)}); !errors.Is(err, algo.ErrUnknownAlgorithm) {
		t.Fatalf("expected ErrUnknownAlgorithm, got %v", err)
	}
}

func BenchmarkInterleave(b *testing.B) {
	ss, _ := seedseq.FromUint64(1)
	leaves, _ := SpawnTree(ss, 2, 8)
	gens, _ := Generators(algo.NameJSF64, leaves)
	b.SetBytes(int64(8 * 1024 * len(gens)))
	b.ResetTimer()
	if err := Interleave(context.Background(), io.Discard, gens, ModeRaw, 1024, b.N); err != nil {
		b.Fatal(err)
	}
}
