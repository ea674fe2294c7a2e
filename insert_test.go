package rtree

import (
	"bytes"
	"encoding/json"
	"io"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// twoLeafTree builds a root over two leaves holding the given boxes. Objects
// are numbered in the order the boxes are given.
func twoLeafTree(t *testing.T, cfg Config, left, right []BBox) *Tree {
	t.Helper()
	rt, err := New(cfg)
	require.NoError(t, err)
	root := rt.allocNode(1)
	obj := 0
	for _, boxes := range [][]BBox{left, right} {
		leaf := rt.allocNode(0)
		for _, bb := range boxes {
			rt.appendEntry(leaf, entry{box: bb, obj: obj})
			obj++
		}
		rt.appendEntry(root, rt.childEntry(leaf))
	}
	rt.root = root
	rt.count = obj
	checkInvariants(t, rt)
	return rt
}

// logEvents decodes the JSON lines written by a tree logger.
func logEvents(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var events []map[string]any
	dec := json.NewDecoder(buf)
	for {
		var ev map[string]any
		err := dec.Decode(&ev)
		if err == io.EOF {
			return events
		}
		require.NoError(t, err)
		events = append(events, ev)
	}
}

func countEvents(events []map[string]any, msg string) int {
	var n int
	for _, ev := range events {
		if ev["message"] == msg {
			n++
		}
	}
	return n
}

func rstarConfig(buf *bytes.Buffer) Config {
	cfg := testConfig(2, 2, 4, RStar)
	cfg.Logger = zerolog.New(buf).Level(zerolog.DebugLevel)
	return cfg
}

func leafObjects(n Node) []any {
	objs := make([]any, n.ChildCount())
	for i := range objs {
		objs[i] = n.Entry(i).Object
	}
	return objs
}

func TestForcedReinsert(t *testing.T) {
	t.Run("AvoidsSplit", func(t *testing.T) {
		var buf bytes.Buffer
		cfg := rstarConfig(&buf)
		require.Equal(t, 1, cfg.reinsertCount())

		// The box at x=14 lies farthest from the center of the left leaf and
		// is cheaper to add to the right leaf.
		rt := twoLeafTree(t, cfg,
			[]BBox{box2(0, 0, 2, 0.5), box2(2, 0, 2.5, 0.5), box2(3, 0, 3.5, 0.5), box2(14, 0, 14.5, 0.5)},
			[]BBox{box2(20, 0, 20.5, 0.5), box2(21, 0, 21.5, 0.5)},
		)
		require.NoError(t, rt.Insert(box2(1, 0, 1.5, 0.5), 6))
		checkInvariants(t, rt)

		events := logEvents(t, &buf)
		assert.Equal(t, 1, countEvents(events, "forced reinsert"))
		assert.Equal(t, 0, countEvents(events, "split node"))
		for _, ev := range events {
			if ev["message"] == "forced reinsert" {
				assert.Equal(t, float64(1), ev["count"])
			}
		}

		root, ok := rt.Root()
		require.True(t, ok)
		assert.Equal(t, 2, rt.Height())
		require.Equal(t, 2, root.ChildCount())
		assert.ElementsMatch(t, []any{0, 1, 2, 6}, leafObjects(root.Child(0)))
		assert.ElementsMatch(t, []any{3, 4, 5}, leafObjects(root.Child(1)))
	})

	t.Run("OncePerLevel", func(t *testing.T) {
		var buf bytes.Buffer
		cfg := rstarConfig(&buf)

		// Whichever end of the left leaf is removed, it goes back into the
		// left leaf, which must then split.
		rt := twoLeafTree(t, cfg,
			[]BBox{box2(0, 0, 0.5, 0.5), box2(1, 0, 1.5, 0.5), box2(2, 0, 2.5, 0.5), box2(3, 0, 3.5, 0.5)},
			[]BBox{box2(20, 0, 20.5, 0.5), box2(21, 0, 21.5, 0.5)},
		)
		require.NoError(t, rt.Insert(box2(1.5, 0, 2, 0.5), 6))
		checkInvariants(t, rt)

		events := logEvents(t, &buf)
		assert.Equal(t, 1, countEvents(events, "forced reinsert"))
		assert.Equal(t, 1, countEvents(events, "split node"))

		root, _ := rt.Root()
		assert.Equal(t, 2, rt.Height())
		assert.Equal(t, 3, root.ChildCount())
		assert.Equal(t, 7, rt.Len())
	})

	t.Run("NotAtRoot", func(t *testing.T) {
		var buf bytes.Buffer
		rt, err := New(rstarConfig(&buf))
		require.NoError(t, err)
		for i := 0; i < 5; i++ {
			x := float64(i)
			require.NoError(t, rt.Insert(box2(x, 0, x+0.5, 0.5), i))
		}
		checkInvariants(t, rt)

		events := logEvents(t, &buf)
		assert.Equal(t, 0, countEvents(events, "forced reinsert"))
		assert.Equal(t, 1, countEvents(events, "split node"))
		assert.Equal(t, 1, countEvents(events, "grew root"))
		assert.Equal(t, 2, rt.Height())
	})

	t.Run("OtherStrategiesSplit", func(t *testing.T) {
		var buf bytes.Buffer
		cfg := rstarConfig(&buf)
		cfg.Split = Quadratic
		rt := twoLeafTree(t, cfg,
			[]BBox{box2(0, 0, 2, 0.5), box2(2, 0, 2.5, 0.5), box2(3, 0, 3.5, 0.5), box2(14, 0, 14.5, 0.5)},
			[]BBox{box2(20, 0, 20.5, 0.5), box2(21, 0, 21.5, 0.5)},
		)
		require.NoError(t, rt.Insert(box2(1, 0, 1.5, 0.5), 6))
		checkInvariants(t, rt)

		events := logEvents(t, &buf)
		assert.Equal(t, 0, countEvents(events, "forced reinsert"))
		assert.Equal(t, 1, countEvents(events, "split node"))
		root, _ := rt.Root()
		assert.Equal(t, 3, root.ChildCount())
	})
}
