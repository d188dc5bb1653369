package algo

import (
	"errors"
	"math/rand/v2"
	"reflect"
	"testing"

	"github.com/xtding233/bitgen/internal/bitgen"
	"github.com/xtding233/bitgen/internal/seedseq"
	"github.com/xtding233/bitgen/internal/stattest"
)

type algoCase struct {
	name  string
	width bitgen.Width
	new   func(seed uint64) bitgen.BitGenerator
	state func(g bitgen.BitGenerator) any
}

var algoCases = []algoCase{
	{
		name:  NameJSF64,
		width: bitgen.Native64,
		new:   func(seed uint64) bitgen.BitGenerator { return NewJSF64(seed) },
		state: func(g bitgen.BitGenerator) any { return g.(*JSF64).State() },
	},
	{
		name:  NamePCG64,
		width: bitgen.Native64,
		new:   func(seed uint64) bitgen.BitGenerator { return NewPCG64(seed) },
		state: func(g bitgen.BitGenerator) any { return g.(*PCG64).State() },
	},
	{
		name:  NamePCG32,
		width: bitgen.Native32,
		new:   func(seed uint64) bitgen.BitGenerator { return NewPCG32(seed, 54) },
		state: func(g bitgen.BitGenerator) any { return g.(*PCG32).State() },
	},
	{
		name:  NameSplitMix64,
		width: bitgen.Native64,
		new:   func(seed uint64) bitgen.BitGenerator { return NewSplitMix64(seed) },
		state: func(g bitgen.BitGenerator) any { return g.(*SplitMix64).State() },
	},
	{
		name:  NameXoshiro256,
		width: bitgen.Native64,
		new:   func(seed uint64) bitgen.BitGenerator { return NewXoshiro256(seed) },
		state: func(g bitgen.BitGenerator) any { return g.(*Xoshiro256).State() },
	},
}

func TestKnownAnswers(t *testing.T) {
	tcs := []struct {
		name string
		gen  bitgen.BitGenerator
		want []uint64
	}{
		{"jsf64 seed 42", NewJSF64(42), []uint64{0xa5719fd503fff432, 0x6076cbc48ac7a8da, 0x33e07875edf9b45a, 0xb3c7f3cd329083e1}},
		{"jsf64 seed 0", NewJSF64(0), []uint64{0x4b39c42db38fcdf5}},
		{"splitmix64 seed 0", NewSplitMix64(0), []uint64{0xe220a8397b1dcdaf, 0x6e789e6aa1b965f4, 0x06c45d188009454f}},
		{"pcg32 42/54", NewPCG32(42, 54), []uint64{0xa15c02b7, 0x7b47f409, 0xba1d3330, 0x83d2f293, 0xbfa4784b, 0xcbed606e}},
		{"xoshiro256 seed 42", NewXoshiro256(42), []uint64{0x15780b2e0c2ec716, 0x6104d9866d113a7e, 0xae17533239e499a1}},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			for i, want := range tc.want {
				if got := tc.gen.NextRaw(); got != want {
					t.Fatalf("draw %d: got %#x, want %#x", i, got, want)
				}
			}
		})
	}
}

func TestJSF64StateAfterDraws(t *testing.T) {
	g := NewJSF64(42)
	for i := 0; i < 4; i++ {
		g.NextUint64()
	}
	want := JSF64State{A: 0xbde3a99703e41a01, B: 0x30f9e91e3189e526, C: 0x29c4c2ac1ca61e3a, D: 0xb3c7f3cd329083e1}
	if got := g.State(); got != want {
		t.Fatalf("state = %+v, want %+v", got, want)
	}
}

func TestJSF64DerivedOutputs(t *testing.T) {
	if got := NewJSF64(42).NextDouble(); got != 0.6462650198991466 {
		t.Fatalf("NextDouble = %v", got)
	}

	g := NewJSF64(42)
	if lo := g.NextUint32(); lo != 0x03fff432 {
		t.Fatalf("first NextUint32 = %#x, want low half", lo)
	}
	if hi := g.NextUint32(); hi != 0xa5719fd5 {
		t.Fatalf("second NextUint32 = %#x, want high half", hi)
	}
	if next := g.NextUint64(); next != 0x6076cbc48ac7a8da {
		t.Fatalf("NextUint64 after two halves = %#x", next)
	}
}

func TestPCG32DerivedOutputs(t *testing.T) {
	if got := NewPCG32(42, 54).NextUint64(); got != 0xa15c02b77b47f409 {
		t.Fatalf("NextUint64 = %#x, want first draw in the high half", got)
	}
	if got, want := NewPCG32(42, 54).NextDouble(), float64(0xa15c02b7)*0x1p-32; got != want {
		t.Fatalf("NextDouble = %v, want %v", got, want)
	}
}

func TestPCG64MatchesStandardLibrary(t *testing.T) {
	g := NewPCG64FromWords(1, 2)
	ref := rand.NewPCG(1, 2)
	for i := 0; i < 32; i++ {
		if got, want := g.NextUint64(), ref.Uint64(); got != want {
			t.Fatalf("draw %d: got %#x, want %#x", i, got, want)
		}
	}
}

func TestFromSeedSequence(t *testing.T) {
	ss, err := seedseq.FromUint64(42)
	if err != nil {
		t.Fatalf("seedseq: %v", err)
	}
	g := JSF64FromSeed(ss)
	for i, want := range []uint64{0x9efc5b265a7a8ffd, 0xc5b579a66b36c87f} {
		if got := g.NextRaw(); got != want {
			t.Fatalf("draw %d: got %#x, want %#x", i, got, want)
		}
	}
}

func TestDeterminism(t *testing.T) {
	for _, tc := range algoCases {
		t.Run(tc.name, func(t *testing.T) {
			a, b := tc.new(42), tc.new(42)
			for i := 0; i < 1000; i++ {
				if x, y := a.NextUint64(), b.NextUint64(); x != y {
					t.Fatalf("draw %d: %#x != %#x", i, x, y)
				}
			}
			if tc.new(42).NextUint64() == tc.new(43).NextUint64() {
				t.Fatal("different seeds produced the same first word")
			}
		})
	}
}

func TestIndependentHandlesSameSeed(t *testing.T) {
	a := bitgen.Bind(NewJSF64(42))
	b := bitgen.Bind(NewJSF64(42))
	x, y := a.NextUint64(), b.NextUint64()
	if x != y || x != 0xa5719fd503fff432 {
		t.Fatalf("handles returned %#x and %#x, want 0xa5719fd503fff432", x, y)
	}
}

func TestDoubleRange(t *testing.T) {
	for _, tc := range algoCases {
		t.Run(tc.name, func(t *testing.T) {
			g := tc.new(7)
			for i := 0; i < 100000; i++ {
				d := g.NextDouble()
				if d < 0 || d >= 1 {
					t.Fatalf("draw %d: %v out of [0,1)", i, d)
				}
			}
		})
	}
}

func TestRawWidening(t *testing.T) {
	for _, tc := range algoCases {
		t.Run(tc.name, func(t *testing.T) {
			g := tc.new(7)
			if got := bitgen.NativeBits(g); got != tc.width {
				t.Fatalf("native width = %d, want %d", got, tc.width)
			}
			if tc.width == bitgen.Native64 {
				return
			}
			ref := tc.new(7)
			for i := 0; i < 10000; i++ {
				raw := g.NextRaw()
				if raw>>tc.width != 0 {
					t.Fatalf("draw %d: upper bits set in %#x", i, raw)
				}
				if native := ref.NextUint32(); uint32(raw) != native {
					t.Fatalf("draw %d: raw %#x, native %#x", i, raw, native)
				}
			}
		})
	}
}

// TestStateAdvancement checks that every operation advances the state by a
// documented number of native draws.
func TestStateAdvancement(t *testing.T) {
	const k = 257

	for _, tc := range algoCases {
		t.Run(tc.name, func(t *testing.T) {
			rawAfter := func(n int) any {
				g := tc.new(99)
				for i := 0; i < n; i++ {
					g.NextRaw()
				}
				return tc.state(g)
			}

			u64Draws, u32Calls := k, 2*k
			if tc.width == bitgen.Native32 {
				u64Draws, u32Calls = 2*k, k
			}

			ops := []struct {
				name  string
				calls int
				op    func(bitgen.BitGenerator)
				draws int
			}{
				{"NextUint64", k, func(g bitgen.BitGenerator) { g.NextUint64() }, u64Draws},
				{"NextUint32", u32Calls, func(g bitgen.BitGenerator) { g.NextUint32() }, k},
				{"NextDouble", k, func(g bitgen.BitGenerator) { g.NextDouble() }, k},
				{"NextRaw", k, func(g bitgen.BitGenerator) { g.NextRaw() }, k},
			}
			for _, op := range ops {
				g := tc.new(99)
				for i := 0; i < op.calls; i++ {
					op.op(g)
				}
				if got, want := tc.state(g), rawAfter(op.draws); !reflect.DeepEqual(got, want) {
					t.Fatalf("%d x %s: state %v, want state after %d native draws %v", op.calls, op.name, got, op.draws, want)
				}
			}
		})
	}
}

func TestHalvesAreIndependent(t *testing.T) {
	for _, tc := range algoCases {
		if tc.width != bitgen.Native64 {
			continue
		}
		t.Run(tc.name, func(t *testing.T) {
			res := stattest.HalfXOR(tc.new(12345), 200000, 256)
			if !res.Pass() {
				t.Fatalf("XOR of paired halves failed chi-squared: %+v", res)
			}
		})
	}
}

func TestBitFrequency(t *testing.T) {
	for _, tc := range algoCases {
		t.Run(tc.name, func(t *testing.T) {
			rep := stattest.BitFrequency(tc.new(2024), 100000)
			if !rep.Pass() {
				t.Fatalf("bit frequency failed: worst bit %d chi2=%.2f", rep.WorstBit, rep.ChiSquared[rep.WorstBit])
			}
		})
	}
}

func TestGapTest(t *testing.T) {
	for _, tc := range algoCases {
		t.Run(tc.name, func(t *testing.T) {
			rep, err := stattest.GapTest(tc.new(77), 0.1, 20000, 32)
			if err != nil {
				t.Fatal(err)
			}
			if !rep.Pass() {
				t.Fatalf("gap test failed: chi2=%.2f critical=%.2f mean=%.3f", rep.ChiSquared, rep.Critical, rep.Mean)
			}
		})
	}
}

func TestNew(t *testing.T) {
	ss, err := seedseq.FromUint64(42)
	if err != nil {
		t.Fatalf("seedseq: %v", err)
	}
	for _, name := range Names() {
		g, err := New(name, ss)
		if err != nil {
			t.Fatalf("New(%q): %v", name, err)
		}
		if g == nil {
			t.Fatalf("New(%q) returned nil", name)
		}
	}

	g, err := New(" JSF64 ", ss)
	if err != nil {
		t.Fatalf("New is case-insensitive: %v", err)
	}
	if got := g.NextRaw(); got != 0x9efc5b265a7a8ffd {
		t.Fatalf("New(jsf64) first draw = %#x", got)
	}

	if _, err := New("mt19937", ss); !errors.Is(err, ErrUnknownAlgorithm) {
		t.Fatalf("expected ErrUnknownAlgorithm, got %v", err)
	}
	if _, err := New(NameJSF64, nil); !errors.Is(err, ErrNilSeed) {
		t.Fatalf("expected ErrNilSeed, got %v", err)
	}
	if !Known("PCG32") || Known("nope") {
		t.Fatal("Known returned the wrong answer")
	}
}

func TestXoshiroRejectsZeroState(t *testing.T) {
	g := NewXoshiro256FromWords(0, 0, 0, 0)
	if g.State() == [4]uint64{} {
		t.Fatal("all-zero state must be replaced")
	}
	if g.NextRaw() == 0 && g.NextRaw() == 0 {
		t.Fatal("generator stuck at zero")
	}
}

func BenchmarkNextUint64(b *testing.B) {
	for _, tc := range algoCases {
		b.Run(tc.name, func(b *testing.B) {
			g := tc.new(1)
			var sink uint64
			for i := 0; i < b.N; i++ {
				sink ^= g.NextUint64()
			}
			_ = sink
		})
	}
}

func BenchmarkNextDouble(b *testing.B) {
	g := NewJSF64(1)
	var sink float64
	for i := 0; i < b.N; i++ {
		sink += g.NextDouble()
	}
	_ = sink
}
