package rtree

// Delete removes a single entry whose box equals bb and whose object equals
// obj. The returned bool indicates whether or not such an entry could be
// found and thus removed from the tree.
func (t *Tree) Delete(bb BBox, obj any) (bool, error) {
	if err := t.checkBox(bb); err != nil {
		return false, err
	}
	if t.root == -1 {
		return false, nil
	}

	// D1 [Find node containing record]
	leaf, idx := t.findEntry(t.root, bb, obj)
	if leaf == -1 {
		return false, nil
	}

	// D2 [Delete record]
	t.removeEntry(leaf, idx)
	t.count--

	// D3 [Propagate changes]
	t.condenseTree(leaf)

	// D4 [Shorten tree]
	t.shortenTree()
	return true, nil
}

// findEntry looks for the entry under node n, only descending into children
// whose box contains bb. It returns -1 when there is no match.
func (t *Tree) findEntry(n int, bb BBox, obj any) (int, int) {
	nd := &t.nodes[n]
	for i, e := range nd.entries {
		if nd.isLeaf() {
			if e.box.Equal(bb) && t.equalObjects(e.obj, obj) {
				return n, i
			}
			continue
		}
		if !e.box.Contains(bb) {
			continue
		}
		if leaf, j := t.findEntry(e.child, bb, obj); leaf != -1 {
			return leaf, j
		}
	}
	return -1, -1
}

// condenseTree walks from a leaf that just lost an entry up to the root.
// Under-full nodes are removed from their parents and their entries are
// inserted again at their original level. The boxes of the other nodes on the
// path are shrunk.
func (t *Tree) condenseTree(leaf int) {
	// CT1 [Initialise]
	var eliminated []int
	current := leaf

	for current != t.root {
		// CT2 [Find Parent Entry]
		parent := t.nodes[current].parent
		entryIdx := t.entryIndex(parent, current)

		if len(t.nodes[current].entries) < t.cfg.MinEntries {
			// CT3 [Eliminate Under-Full Node]
			t.removeEntry(parent, entryIdx)
			eliminated = append(eliminated, current)
		} else {
			// CT4 [Adjust Covering Rectangle]
			t.refreshEntry(parent, current)
		}

		// CT5 [Move Up One Level In Tree]
		current = parent
	}

	if len(eliminated) > 0 {
		t.log.Debug().Int("nodes", len(eliminated)).Msg("condense tree")
	}

	// CT6 [Reinsert orphaned entries]
	for _, n := range eliminated {
		level := t.nodes[n].level
		orphans := t.nodes[n].entries
		t.freeNode(n)
		for _, e := range orphans {
			t.insertAt(e, level, &insertState{})
		}
	}
}

// shortenTree collapses roots with a single child and empties the tree once
// the last entry is gone.
func (t *Tree) shortenTree() {
	for {
		root := &t.nodes[t.root]
		if root.isLeaf() || len(root.entries) != 1 {
			break
		}
		child := root.entries[0].child
		t.freeNode(t.root)
		t.root = child
		t.nodes[child].parent = -1
		t.log.Debug().Int("height", t.Height()).Msg("collapsed root")
	}
	if root := &t.nodes[t.root]; root.isLeaf() && len(root.entries) == 0 {
		t.Clear()
	}
}
