package rtree

import (
	"fmt"
	"sort"
)

// BulkLoad builds a new tree holding the given entries. The tree is packed
// bottom up, which is faster than repeated insertion and gives nodes with
// little overlap. Every non-root node ends up with between MinEntries and
// MaxEntries children.
//
// The Hilbert strategy packs entries in Hilbert order. The other strategies
// recursively cut the entries at the median of the widest axis.
func BulkLoad(cfg Config, entries []Entry) (*Tree, error) {
	t, err := New(cfg)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return t, nil
	}

	items := make([]entry, len(entries))
	for i, e := range entries {
		if err := t.checkBox(e.BBox); err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		items[i] = entry{box: e.BBox.Clone(), obj: e.Object}
		if t.hilbert {
			items[i].hv = t.curve.value(items[i].box)
		}
	}

	for level := 0; ; level++ {
		groups := t.pack(items)
		parents := make([]entry, 0, len(groups))
		for _, group := range groups {
			n := t.allocNode(level)
			children := make([]entry, len(group), t.cfg.MaxEntries+1)
			copy(children, group)
			t.setEntries(n, children)
			parents = append(parents, t.childEntry(n))
		}
		if len(parents) == 1 {
			t.root = parents[0].child
			break
		}
		items = parents
	}
	t.count = len(entries)

	t.log.Debug().Int("entries", t.count).Int("height", t.Height()).Msg("bulk loaded")
	return t, nil
}

// pack partitions items into ceil(len/MaxEntries) groups. When there is more
// than one group, each holds between MinEntries and MaxEntries items.
func (t *Tree) pack(items []entry) [][]entry {
	groups := (len(items) + t.cfg.MaxEntries - 1) / t.cfg.MaxEntries
	if t.hilbert {
		sort.SliceStable(items, func(i, j int) bool {
			return items[i].hv < items[j].hv
		})
		out := make([][]entry, 0, groups)
		for g := 0; g < groups; g++ {
			lo := len(items) * g / groups
			hi := len(items) * (g + 1) / groups
			out = append(out, items[lo:hi])
		}
		return out
	}
	var out [][]entry
	t.bulkPartition(items, groups, &out)
	return out
}

// bulkPartition cuts items into the requested number of groups. Each cut is
// made along the wider axis of the items' extent, in proportion to the number
// of groups on either side, so that group sizes never differ by more than the
// rounding of a single division.
func (t *Tree) bulkPartition(items []entry, groups int, out *[][]entry) {
	if groups == 1 {
		*out = append(*out, items)
		return
	}

	bbox := unionAll(items)
	axis := 0
	for d := 1; d < bbox.Dim(); d++ {
		if bbox.Max[d]-bbox.Min[d] > bbox.Max[axis]-bbox.Min[axis] {
			axis = d
		}
	}
	sort.Slice(items, func(i, j int) bool {
		bi := items[i].box
		bj := items[j].box
		return bi.Min[axis]+bi.Max[axis] < bj.Min[axis]+bj.Max[axis]
	})

	left := groups / 2
	split := len(items) * left / groups
	t.bulkPartition(items[:split], left, out)
	t.bulkPartition(items[split:], groups-left, out)
}
