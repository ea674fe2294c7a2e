package rtree

import (
	"fmt"
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func leafEntries(boxes ...BBox) []entry {
	entries := make([]entry, len(boxes))
	for i, bb := range boxes {
		entries[i] = entry{box: bb, obj: i}
	}
	return entries
}

func entryObjects(entries []entry) []int {
	objs := make([]int, len(entries))
	for i, e := range entries {
		objs[i] = e.obj.(int)
	}
	sort.Ints(objs)
	return objs
}

func TestQuadraticSplitFiveEntries(t *testing.T) {
	entries := leafEntries(
		box2(0, 0, 1, 1),
		box2(9, 9, 10, 10),
		box2(1, 1, 2, 2),
		box2(8, 8, 9, 9),
		box2(0.5, 0, 1.5, 1),
	)

	i, j := quadraticPickSeeds(entries)
	assert.Equal(t, 0, i)
	assert.Equal(t, 1, j)

	a, b := quadraticSplit{}.split(entries, 2)
	assert.GreaterOrEqual(t, len(a), 2)
	assert.GreaterOrEqual(t, len(b), 2)
	assert.Equal(t, []int{0, 2, 4}, entryObjects(a))
	assert.Equal(t, []int{1, 3}, entryObjects(b))
}

func TestQuadraticPickNext(t *testing.T) {
	boxA := box2(0, 0, 1, 1)
	boxB := box2(10, 10, 11, 11)
	rest := leafEntries(
		box2(5, 5, 6, 6),   // equidistant
		box2(1, 1, 2, 2),   // strongly prefers A
		box2(9, 9, 10, 10), // prefers B as strongly
	)
	assert.Equal(t, 1, quadraticPickNext(boxA, boxB, rest))
}

func TestLinearPickSeeds(t *testing.T) {
	t.Run("SeparatedPair", func(t *testing.T) {
		entries := leafEntries(
			box2(0, 0, 1, 1),
			box2(4, 0, 5, 1),
			box2(2, 0, 3, 1),
		)
		i, j := linearPickSeeds(entries)
		assert.ElementsMatch(t, []int{0, 1}, []int{i, j})
	})

	t.Run("SameEntryExtremeOnBothSides", func(t *testing.T) {
		entries := leafEntries(
			box2(5, 0, 5, 1),
			box2(0, 0, 10, 1),
			box2(1, 0, 9, 1),
		)
		i, j := linearPickSeeds(entries)
		assert.NotEqual(t, i, j)
	})

	t.Run("IdenticalBoxes", func(t *testing.T) {
		entries := leafEntries(box2(0, 0, 1, 1), box2(0, 0, 1, 1), box2(0, 0, 1, 1))
		i, j := linearPickSeeds(entries)
		assert.NotEqual(t, i, j)
	})
}

func TestRStarSplitSeparatesClusters(t *testing.T) {
	entries := leafEntries(
		box2(0, 0, 1, 1),
		box2(20, 0, 21, 1),
		box2(1, 0, 2, 1),
		box2(21, 0, 22, 1),
		box2(0, 1, 1, 2),
		box2(20, 1, 21, 2),
	)
	a, b := rstarSplit{}.split(entries, 2)
	assert.Equal(t, []int{0, 2, 4}, entryObjects(a))
	assert.Equal(t, []int{1, 3, 5}, entryObjects(b))
}

func TestExhaustiveSplitIsOptimal(t *testing.T) {
	entries := leafEntries(
		box2(0, 0, 1, 1),
		box2(10, 10, 11, 11),
		box2(0, 10, 1, 11),
		box2(10, 0, 11, 1),
		box2(0, 5, 1, 6),
	)
	a, b := exhaustiveSplit{}.split(entries, 2)
	// The left and right columns have the smallest combined area.
	assert.Equal(t, []int{0, 2, 4}, entryObjects(a))
	assert.Equal(t, []int{1, 3}, entryObjects(b))

	t.Run("RespectsMinFill", func(t *testing.T) {
		entries := leafEntries(
			box2(10, 10, 11, 11),
			box2(0, 0, 1, 1),
			box2(1, 0, 2, 1),
			box2(0, 1, 1, 2),
			box2(1, 1, 2, 2),
		)
		a, b := exhaustiveSplit{}.split(entries, 1)
		assert.Equal(t, []int{1, 2, 3, 4}, entryObjects(a))
		assert.Equal(t, []int{0}, entryObjects(b))

		a, b = exhaustiveSplit{}.split(entries, 2)
		assert.GreaterOrEqual(t, len(a), 2)
		assert.GreaterOrEqual(t, len(b), 2)
		assert.Len(t, append(a, b...), 5)
	})
}

func TestHilbertSplitHalves(t *testing.T) {
	entries := make([]entry, 7)
	for i := range entries {
		entries[i] = entry{box: Point(float64(i)), obj: i, hv: uint64(100 - i)}
	}
	a, b := hilbertSplit{}.split(entries, 3)
	require.Len(t, a, 3)
	require.Len(t, b, 4)
	assert.Equal(t, []int{4, 5, 6}, entryObjects(a))
	for i := 1; i < len(b); i++ {
		assert.Less(t, b[i-1].hv, b[i].hv)
	}
}

func TestSplitContract(t *testing.T) {
	splitters := map[SplitStrategy]splitter{
		Linear:     linearSplit{},
		Quadratic:  quadraticSplit{},
		RStar:      rstarSplit{},
		Hilbert:    hilbertSplit{},
		Exhaustive: exhaustiveSplit{},
	}
	rnd := rand.New(rand.NewSource(1))
	for split, s := range splitters {
		for maxEntries := 2; maxEntries <= 12; maxEntries++ {
			for minFill := 1; minFill <= maxEntries/2; minFill++ {
				t.Run(fmt.Sprintf("%v_min_%d_max_%d", split, minFill, maxEntries), func(t *testing.T) {
					boxes := make([]BBox, maxEntries+1)
					for i := range boxes {
						boxes[i] = randomBox(rnd, 2, 1, 0.2)
					}
					entries := leafEntries(boxes...)
					for i := range entries {
						entries[i].hv = rnd.Uint64()
					}

					a, b := s.split(entries, minFill)
					assert.GreaterOrEqual(t, len(a), minFill)
					assert.GreaterOrEqual(t, len(b), minFill)

					all := append(entryObjects(a), entryObjects(b)...)
					sort.Ints(all)
					assert.Equal(t, entryObjects(entries), all)
				})
			}
		}
	}
}

type badSplitter struct{}

func (badSplitter) split(entries []entry, minFill int) ([]entry, []entry) {
	return entries[:1], entries[1:]
}

func TestSplitInvariantViolationPanics(t *testing.T) {
	rt, err := New(testConfig(2, 2, 4, Quadratic))
	require.NoError(t, err)
	rt.splitter = badSplitter{}

	defer func() {
		r := recover()
		require.NotNil(t, r)
		err, ok := r.(error)
		require.True(t, ok)
		assert.ErrorIs(t, err, ErrSplitInvariant)
	}()
	for i := 0; i < 5; i++ {
		f := float64(i)
		_ = rt.Insert(box2(f, f, f+1, f+1), i)
	}
	t.Fatal("expected a panic")
}
