package rtree

import (
	"math"
	"sort"
)

// insertState tracks, for a single top-level insertion, the levels at which
// forced reinsertion has already happened.
type insertState struct {
	reinserted map[int]bool
}

// Insert adds a new entry to the tree. The box is copied.
func (t *Tree) Insert(bb BBox, obj any) error {
	if err := t.checkBox(bb); err != nil {
		return err
	}
	e := entry{box: bb.Clone(), obj: obj}
	if t.hilbert {
		e.hv = t.curve.value(e.box)
	}
	if t.root == -1 {
		t.root = t.allocNode(0)
	}
	t.insertAt(e, 0, &insertState{})
	t.count++
	return nil
}

// insertAt places e into a node at the given level (0 for leaf entries) and
// restores the tree invariants.
func (t *Tree) insertAt(e entry, level int, st *insertState) {
	n := t.chooseNode(e, level)
	t.appendEntry(n, e)
	t.adjustUpwards(n)
	t.overflow(n, st)
}

// chooseNode descends from the root to the best node at level under which to
// insert e.
func (t *Tree) chooseNode(e entry, level int) int {
	n := t.root
	for t.nodes[n].level > level {
		var i int
		switch {
		case t.hilbert:
			i = t.chooseSubtreeHilbert(n, e.hv)
		case t.cfg.Split == RStar && t.nodes[n].level == 1:
			i = t.chooseSubtreeRStar(n, e.box)
		default:
			i = t.chooseSubtree(n, e.box)
		}
		n = t.nodes[n].entries[i].child
	}
	return n
}

// chooseSubtree picks the child needing the least enlargement to take box.
// Ties go to the smaller child, then to the child with fewer entries.
func (t *Tree) chooseSubtree(n int, box BBox) int {
	best := 0
	bestDelta, bestArea := math.Inf(+1), math.Inf(+1)
	bestCount := 0
	for i, e := range t.nodes[n].entries {
		area := e.box.Area()
		delta := e.box.Union(box).Area() - area
		count := len(t.nodes[e.child].entries)
		if delta < bestDelta ||
			(delta == bestDelta && area < bestArea) ||
			(delta == bestDelta && area == bestArea && count < bestCount) {
			best = i
			bestDelta, bestArea, bestCount = delta, area, count
		}
	}
	return best
}

// adjustUpwards refreshes the cached boxes (and Hilbert values) on the path
// from node n to the root.
func (t *Tree) adjustUpwards(n int) {
	for n != t.root {
		parent := t.nodes[n].parent
		t.refreshEntry(parent, n)
		n = parent
	}
}

// refreshEntry recomputes the entry of parent that references child.
func (t *Tree) refreshEntry(parent, child int) {
	i := t.entryIndex(parent, child)
	t.nodes[parent].entries[i].box = t.calculateBound(child)
	if t.hilbert {
		t.nodes[parent].entries[i].hv = t.largestHilbert(child)
		t.sortEntries(parent)
	}
}

// overflow splits (or, for the R*-tree, partially reinserts) node n and its
// ancestors for as long as they hold too many entries.
func (t *Tree) overflow(n int, st *insertState) {
	for len(t.nodes[n].entries) > t.cfg.MaxEntries {
		level := t.nodes[n].level
		if t.cfg.Split == RStar && n != t.root && !st.reinserted[level] {
			if st.reinserted == nil {
				st.reinserted = make(map[int]bool)
			}
			st.reinserted[level] = true
			t.reinsert(n, st)
			return
		}

		nn := t.splitNode(n)
		if n == t.root {
			t.joinRoots(n, nn)
			return
		}
		parent := t.nodes[n].parent
		t.refreshEntry(parent, n)
		t.appendEntry(parent, t.childEntry(nn))
		t.adjustUpwards(parent)
		n = parent
	}
}

// joinRoots grows the tree by one level, creating a new root above r1 and r2.
func (t *Tree) joinRoots(r1, r2 int) {
	root := t.allocNode(t.nodes[r1].level + 1)
	t.appendEntry(root, t.childEntry(r1))
	t.appendEntry(root, t.childEntry(r2))
	t.root = root
	t.log.Debug().Int("height", t.Height()).Msg("grew root")
}

// reinsert removes the entries of n lying farthest from its center and
// inserts them again at the same level, closest first.
func (t *Tree) reinsert(n int, st *insertState) {
	center := t.calculateBound(n)
	entries := t.nodes[n].entries
	dist := make([]float64, len(entries))
	order := make([]int, len(entries))
	for i, e := range entries {
		dist[i] = e.box.Distance(center)
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		return dist[order[i]] > dist[order[j]]
	})

	p := t.cfg.reinsertCount()
	removed := make([]entry, 0, p)
	keep := make([]entry, 0, t.cfg.MaxEntries+1)
	for k, i := range order {
		if k < p {
			removed = append(removed, entries[i])
		} else {
			keep = append(keep, entries[i])
		}
	}
	level := t.nodes[n].level
	t.setEntries(n, keep)
	t.adjustUpwards(n)

	t.log.Debug().Int("node", n).Int("level", level).Int("count", len(removed)).Msg("forced reinsert")
	for i := len(removed) - 1; i >= 0; i-- {
		t.insertAt(removed[i], level, st)
	}
}
