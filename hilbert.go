package rtree

import "math"

// hilbertCurve maps box centers onto a Hilbert curve over a 2^bits grid per
// axis.
type hilbertCurve struct {
	bits      int
	extentMin []float64
	extentMax []float64
}

func newHilbertCurve(cfg Config) hilbertCurve {
	return hilbertCurve{
		bits:      cfg.hilbertBits(),
		extentMin: cfg.ExtentMin,
		extentMax: cfg.ExtentMax,
	}
}

// value is the Hilbert value of the center of bb.
func (c hilbertCurve) value(bb BBox) uint64 {
	grid := make([]uint64, len(bb.Min))
	for i := range bb.Min {
		center := (bb.Min[i] + bb.Max[i]) / 2
		if len(c.extentMin) == 0 {
			grid[i] = floatOrder(center) >> uint(64-c.bits)
			continue
		}
		f := (center - c.extentMin[i]) / (c.extentMax[i] - c.extentMin[i])
		grid[i] = quantize(f, c.bits)
	}
	return hilbertIndex(grid, c.bits)
}

// floatOrder maps a float64 to a uint64 such that the ordering of the two
// agree.
func floatOrder(f float64) uint64 {
	u := math.Float64bits(f)
	if u>>63 == 1 {
		return ^u
	}
	return u | 1<<63
}

// quantize maps f in [0, 1] to a cell of a grid with 2^bits cells. Values
// outside the unit interval are clamped.
func quantize(f float64, bits int) uint64 {
	max := uint64(math.MaxUint64)
	if bits < 64 {
		max = uint64(1)<<uint(bits) - 1
	}
	if !(f > 0) {
		return 0
	}
	v := f * math.Ldexp(1, bits)
	if v >= float64(max) {
		return max
	}
	return uint64(v)
}

// hilbertIndex gives the distance along an n-dimensional Hilbert curve of
// the grid cell x, where every coordinate is below 2^bits and n*bits <= 64.
// It uses Skilling's transpose method ("Programming the Hilbert curve",
// 2004). x is overwritten.
func hilbertIndex(x []uint64, bits int) uint64 {
	n := len(x)
	if n == 0 || bits == 0 {
		return 0
	}
	m := uint64(1) << uint(bits-1)

	// Inverse undo.
	for q := m; q > 1; q >>= 1 {
		p := q - 1
		for i := 0; i < n; i++ {
			if x[i]&q != 0 {
				x[0] ^= p
			} else {
				t := (x[0] ^ x[i]) & p
				x[0] ^= t
				x[i] ^= t
			}
		}
	}

	// Gray encode.
	for i := 1; i < n; i++ {
		x[i] ^= x[i-1]
	}
	var t uint64
	for q := m; q > 1; q >>= 1 {
		if x[n-1]&q != 0 {
			t ^= q - 1
		}
	}
	for i := range x {
		x[i] ^= t
	}

	// The transposed form holds the index bits spread across the axes, most
	// significant bit first.
	var h uint64
	for b := bits - 1; b >= 0; b-- {
		for i := 0; i < n; i++ {
			h = h<<1 | (x[i]>>uint(b))&1
		}
	}
	return h
}
