package rtree

import (
	"fmt"
	"math"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHilbertIndexIsACurve(t *testing.T) {
	for _, tc := range []struct {
		dims, bits int
	}{
		{1, 4}, {2, 1}, {2, 2}, {2, 4}, {3, 2}, {3, 3}, {4, 2},
	} {
		t.Run(fmt.Sprintf("dims_%d_bits_%d", tc.dims, tc.bits), func(t *testing.T) {
			side := 1 << uint(tc.bits)
			cells := 1
			for i := 0; i < tc.dims; i++ {
				cells *= side
			}

			byIndex := make(map[uint64][]uint64, cells)
			for c := 0; c < cells; c++ {
				cell := make([]uint64, tc.dims)
				rem := c
				for d := range cell {
					cell[d] = uint64(rem % side)
					rem /= side
				}
				h := hilbertIndex(append([]uint64(nil), cell...), tc.bits)
				require.Less(t, h, uint64(cells))
				_, dup := byIndex[h]
				require.False(t, dup, "index %d used twice", h)
				byIndex[h] = cell
			}

			// Consecutive indices are neighbouring cells.
			for h := uint64(1); h < uint64(cells); h++ {
				a, b := byIndex[h-1], byIndex[h]
				var dist uint64
				for d := range a {
					if a[d] > b[d] {
						dist += a[d] - b[d]
					} else {
						dist += b[d] - a[d]
					}
				}
				require.Equal(t, uint64(1), dist, "cells %v and %v at %d", a, b, h)
			}
		})
	}
}

func TestFloatOrder(t *testing.T) {
	values := []float64{
		math.Inf(-1), -math.MaxFloat64, -1e10, -1, -math.SmallestNonzeroFloat64,
		0, math.SmallestNonzeroFloat64, 0.5, 1, 1e10, math.MaxFloat64, math.Inf(+1),
	}
	for i := 1; i < len(values); i++ {
		assert.Less(t, floatOrder(values[i-1]), floatOrder(values[i]), "%v < %v", values[i-1], values[i])
	}
}

func TestQuantize(t *testing.T) {
	assert.Equal(t, uint64(0), quantize(-1, 4))
	assert.Equal(t, uint64(0), quantize(0, 4))
	assert.Equal(t, uint64(8), quantize(0.5, 4))
	assert.Equal(t, uint64(4), quantize(0.25, 4))
	assert.Equal(t, uint64(15), quantize(1, 4))
	assert.Equal(t, uint64(15), quantize(2, 4))
	assert.Equal(t, uint64(math.MaxUint64), quantize(1, 64))
}

func TestHilbertCurveValue(t *testing.T) {
	t.Run("Extent", func(t *testing.T) {
		cfg := DefaultConfig(2)
		cfg.Split = Hilbert
		cfg.HilbertBits = 1
		cfg.ExtentMin = []float64{0, 0}
		cfg.ExtentMax = []float64{2, 2}
		require.NoError(t, cfg.Validate())
		c := newHilbertCurve(cfg)

		// The four quadrants in curve order.
		assert.Equal(t, uint64(0), c.value(Point(0.5, 0.5)))
		assert.Equal(t, uint64(1), c.value(Point(0.5, 1.5)))
		assert.Equal(t, uint64(2), c.value(Point(1.5, 1.5)))
		assert.Equal(t, uint64(3), c.value(Point(1.5, 0.5)))
		// Boxes are placed by their center.
		assert.Equal(t, uint64(2), c.value(box2(1, 1, 2, 2)))
	})

	t.Run("WholeFloatRange", func(t *testing.T) {
		cfg := DefaultConfig(1)
		cfg.Split = Hilbert
		c := newHilbertCurve(cfg)

		points := []float64{-1000, -1, 0, 0.25, 3, 1e9}
		hv := make([]uint64, len(points))
		for i, p := range points {
			hv[i] = c.value(Point(p))
		}
		assert.True(t, sort.SliceIsSorted(hv, func(i, j int) bool { return hv[i] < hv[j] }))
	})
}
