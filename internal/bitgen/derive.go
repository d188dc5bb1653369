package bitgen

// Numeric rules for deriving narrower integers and doubles from a native
// word. Concrete algorithms build their four operations out of these so the
// derivation is identical across the module.

const (
	twoPow53Inv = 1.0 / (1 << 53)
	twoPow32Inv = 1.0 / (1 << 32)
)

// DoubleFrom64 keeps the top 53 bits of x and scales them by 2^-53. The
// result is one of the 2^53 dyadic rationals in [0, 1); the largest is
// 1 - 2^-53.
func DoubleFrom64(x uint64) float64 {
	return float64(x>>11) * twoPow53Inv
}

// DoubleFrom32 scales a 32-bit native word by 2^-32. Only 32 bits of the
// mantissa carry entropy; the low 21 bits of the 53-bit mantissa are
// whatever the exact product gives and are not padded with random bits.
func DoubleFrom32(x uint32) float64 {
	return float64(x) * twoPow32Inv
}

// Widen32 zero-extends a 32-bit native word for NextRaw.
func Widen32(x uint32) uint64 {
	return uint64(x)
}

// Join32 builds a 64-bit word out of two consecutive 32-bit native draws.
// The first draw becomes the high half.
func Join32(first, second uint32) uint64 {
	return uint64(first)<<32 | uint64(second)
}

// HalfBuffer implements the halving policy for 64-bit native algorithms: one
// native draw feeds two consecutive NextUint32 calls, low half first.
//
// The zero value is empty.
type HalfBuffer struct {
	hi   uint32
	full bool
}

// Next returns the buffered high half if one is pending, otherwise calls draw
// once, keeps the high half and returns the low half.
func (b *HalfBuffer) Next(draw func() uint64) uint32 {
	if b.full {
		b.full = false
		return b.hi
	}
	x := draw()
	b.hi, b.full = uint32(x>>32), true
	return uint32(x)
}
