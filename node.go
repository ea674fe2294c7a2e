package rtree

import "sort"

// node is a node in an R-Tree. Nodes can either be leaf nodes holding entries
// for terminal items, or intermediate nodes holding entries for more nodes.
type node struct {
	entries []entry
	// parent is the arena index of the parent node, or -1 for the root.
	parent int
	// level is the height of the node above the leaves (leaves are 0).
	level int
}

func (n *node) isLeaf() bool {
	return n.level == 0
}

// entry is an entry under a node, leading either to terminal items, or more
// nodes. For non-leaf entries the box is the cached bound of the child.
type entry struct {
	box   BBox
	child int
	obj   any
	// hv is the Hilbert value of the box center for leaf entries, and the
	// largest Hilbert value of the subtree for non-leaf entries. Only
	// maintained by the Hilbert strategy.
	hv uint64
}

func (t *Tree) allocNode(level int) int {
	if k := len(t.free); k > 0 {
		idx := t.free[k-1]
		t.free = t.free[:k-1]
		t.nodes[idx] = node{parent: -1, level: level}
		return idx
	}
	t.nodes = append(t.nodes, node{parent: -1, level: level})
	return len(t.nodes) - 1
}

func (t *Tree) freeNode(n int) {
	t.nodes[n] = node{parent: -1, level: -1}
	t.free = append(t.free, n)
}

// appendEntry adds e to node n. Non-leaf entries have their child re-parented
// to n. In Hilbert mode the entry is placed according to its Hilbert value.
func (t *Tree) appendEntry(n int, e entry) {
	nd := &t.nodes[n]
	if t.hilbert {
		i := sort.Search(len(nd.entries), func(i int) bool {
			return nd.entries[i].hv > e.hv
		})
		nd.entries = append(nd.entries, entry{})
		copy(nd.entries[i+1:], nd.entries[i:])
		nd.entries[i] = e
	} else {
		nd.entries = append(nd.entries, e)
	}
	if !nd.isLeaf() {
		t.nodes[e.child].parent = n
	}
}

// removeEntry deletes the i-th entry of node n, keeping the order of the
// remaining entries.
func (t *Tree) removeEntry(n, i int) entry {
	nd := &t.nodes[n]
	e := nd.entries[i]
	copy(nd.entries[i:], nd.entries[i+1:])
	nd.entries[len(nd.entries)-1] = entry{}
	nd.entries = nd.entries[:len(nd.entries)-1]
	return e
}

// setEntries replaces the entries of node n, re-parenting children.
func (t *Tree) setEntries(n int, entries []entry) {
	t.nodes[n].entries = entries
	if !t.nodes[n].isLeaf() {
		for _, e := range entries {
			t.nodes[e.child].parent = n
		}
	}
}

// calculateBound calculates the smallest bounding box that fits a node.
func (t *Tree) calculateBound(n int) BBox {
	return unionAll(t.nodes[n].entries)
}

// largestHilbert is the largest Hilbert value below node n.
func (t *Tree) largestHilbert(n int) uint64 {
	var hv uint64
	for _, e := range t.nodes[n].entries {
		if e.hv > hv {
			hv = e.hv
		}
	}
	return hv
}

// childEntry builds the entry that references node n from its parent.
func (t *Tree) childEntry(n int) entry {
	e := entry{box: t.calculateBound(n), child: n}
	if t.hilbert {
		e.hv = t.largestHilbert(n)
	}
	return e
}

// entryIndex finds the position of child within the entries of parent.
func (t *Tree) entryIndex(parent, child int) int {
	for i, e := range t.nodes[parent].entries {
		if e.child == child {
			return i
		}
	}
	panic("could not find parent entry")
}

func (t *Tree) sortEntries(n int) {
	entries := t.nodes[n].entries
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].hv < entries[j].hv
	})
}

// Node is a read-only view of a node of a Tree. It is only valid until the
// tree is next modified.
type Node struct {
	t   *Tree
	idx int
}

// IsLeaf reports whether the children of the node are entries rather than
// nodes.
func (n Node) IsLeaf() bool {
	return n.t.nodes[n.idx].isLeaf()
}

// Level is the height of the node above the leaves. Leaves are at level 0.
func (n Node) Level() int {
	return n.t.nodes[n.idx].level
}

// ChildCount is the number of entries or child nodes.
func (n Node) ChildCount() int {
	return len(n.t.nodes[n.idx].entries)
}

// Boundary is the smallest box covering all children of the node.
func (n Node) Boundary() BBox {
	return n.t.calculateBound(n.idx)
}

// ChildBoundary is the box of the i-th child as cached in this node.
func (n Node) ChildBoundary(i int) BBox {
	return n.t.nodes[n.idx].entries[i].box.Clone()
}

// Child returns the i-th child of a non-leaf node.
func (n Node) Child(i int) Node {
	if n.IsLeaf() {
		panic("rtree: Child called on a leaf node")
	}
	return Node{t: n.t, idx: n.t.nodes[n.idx].entries[i].child}
}

// Entry returns the i-th entry of a leaf node.
func (n Node) Entry(i int) Entry {
	if !n.IsLeaf() {
		panic("rtree: Entry called on a non-leaf node")
	}
	e := n.t.nodes[n.idx].entries[i]
	return Entry{BBox: e.box.Clone(), Object: e.obj}
}
