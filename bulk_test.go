package rtree

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBulkLoad(t *testing.T) {
	for _, split := range allStrategies {
		for _, fanOut := range [][2]int{{1, 2}, {2, 4}, {3, 7}, {4, 8}} {
			for _, population := range []int{0, 1, 2, 5, 9, 33, 100, 517} {
				name := fmt.Sprintf("%v_min_%d_max_%d_pop_%d", split, fanOut[0], fanOut[1], population)
				t.Run(name, func(t *testing.T) {
					rnd := rand.New(rand.NewSource(int64(population)))
					boxes := make([]BBox, population)
					entries := make([]Entry, population)
					for i := range boxes {
						boxes[i] = randomBox(rnd, 2, 0.9, 0.1)
						entries[i] = Entry{BBox: boxes[i], Object: i}
					}

					rt, err := BulkLoad(testConfig(2, fanOut[0], fanOut[1], split), entries)
					require.NoError(t, err)
					assert.Equal(t, population, rt.Len())
					checkInvariants(t, rt)
					if population > 0 {
						checkSearch(t, rt, rnd, boxes, nil)
					}
				})
			}
		}
	}
}

func TestBulkLoadThenModify(t *testing.T) {
	for _, split := range allStrategies {
		t.Run(split.String(), func(t *testing.T) {
			rnd := rand.New(rand.NewSource(5))
			entries := make([]Entry, 200)
			boxes := make([]BBox, 300)
			for i := range boxes {
				boxes[i] = randomBox(rnd, 3, 0.9, 0.1)
			}
			for i := range entries {
				entries[i] = Entry{BBox: boxes[i], Object: i}
			}

			rt, err := BulkLoad(testConfig(3, 3, 8, split), entries)
			require.NoError(t, err)
			for i := 200; i < 300; i++ {
				require.NoError(t, rt.Insert(boxes[i], i))
			}
			deleted := make(map[int]bool)
			for i := 0; i < 300; i += 3 {
				ok, err := rt.Delete(boxes[i], i)
				require.NoError(t, err)
				require.True(t, ok)
				deleted[i] = true
			}
			assert.Equal(t, 200, rt.Len())
			checkInvariants(t, rt)
			checkSearch(t, rt, rnd, boxes, deleted)
		})
	}
}

func TestBulkLoadDoesNotAliasInput(t *testing.T) {
	entries := []Entry{
		{BBox: box2(0, 0, 1, 1), Object: "a"},
		{BBox: box2(2, 2, 3, 3), Object: "b"},
	}
	rt, err := BulkLoad(DefaultConfig(2), entries)
	require.NoError(t, err)
	entries[0].BBox.Min[0] = -50

	got, err := rt.SearchAll(box2(-60, -60, -40, -40))
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Equal(t, "a", entries[0].Object)
}

func TestBulkLoadErrors(t *testing.T) {
	_, err := BulkLoad(testConfig(2, 5, 4, Linear), nil)
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = BulkLoad(DefaultConfig(2), []Entry{
		{BBox: box2(0, 0, 1, 1)},
		{BBox: Point(1, 2, 3)},
	})
	assert.ErrorIs(t, err, ErrDimensionMismatch)
	assert.ErrorContains(t, err, "entry 1")
}
