package rtree

import "sort"

// hilbertSplit cuts the entries, ordered by Hilbert value, at the midpoint.
// No geometry is evaluated.
type hilbertSplit struct{}

func (hilbertSplit) split(entries []entry, minFill int) ([]entry, []entry) {
	sorted := append([]entry(nil), entries...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].hv < sorted[j].hv
	})
	mid := len(sorted) / 2
	if mid < minFill {
		mid = minFill
	}
	return sorted[:mid], sorted[mid:]
}

// chooseSubtreeHilbert picks the first child whose largest Hilbert value is
// not below hv, or the last child if there is none.
func (t *Tree) chooseSubtreeHilbert(n int, hv uint64) int {
	entries := t.nodes[n].entries
	i := sort.Search(len(entries), func(i int) bool {
		return entries[i].hv >= hv
	})
	if i == len(entries) {
		i--
	}
	return i
}
