package rtree

import (
	"math"
	"sort"
)

// rstarSplit is the topological split of the R*-tree. The split axis is the
// one whose candidate distributions have the smallest total margin, and the
// distribution along that axis with the least overlap (then least area) is
// used.
type rstarSplit struct{}

func (rstarSplit) split(entries []entry, minFill int) ([]entry, []entry) {
	n := len(entries)
	dims := entries[0].box.Dim()

	var axisSorts [2][]entry
	bestMargin := math.Inf(+1)
	for axis := 0; axis < dims; axis++ {
		sorts := [2][]entry{
			sortedAlongAxis(entries, axis, false),
			sortedAlongAxis(entries, axis, true),
		}
		var margin float64
		for _, sorted := range sorts {
			pre, suf := prefixSuffixBounds(sorted)
			for k := minFill; k <= n-minFill; k++ {
				margin += pre[k-1].Margin() + suf[k].Margin()
			}
		}
		if margin < bestMargin {
			bestMargin = margin
			axisSorts = sorts
		}
	}

	var best []entry
	bestK := minFill
	bestOverlap, bestArea := math.Inf(+1), math.Inf(+1)
	for _, sorted := range axisSorts {
		pre, suf := prefixSuffixBounds(sorted)
		for k := minFill; k <= n-minFill; k++ {
			overlap := pre[k-1].Overlap(suf[k])
			area := pre[k-1].Area() + suf[k].Area()
			if overlap < bestOverlap || (overlap == bestOverlap && area < bestArea) {
				bestOverlap, bestArea = overlap, area
				best, bestK = sorted, k
			}
		}
	}
	return best[:bestK], best[bestK:]
}

// sortedAlongAxis returns a copy of entries ordered by their lower (or upper)
// bound along axis, using the other bound to break ties.
func sortedAlongAxis(entries []entry, axis int, byMax bool) []entry {
	sorted := append([]entry(nil), entries...)
	sort.SliceStable(sorted, func(i, j int) bool {
		bi, bj := sorted[i].box, sorted[j].box
		if byMax {
			if bi.Max[axis] != bj.Max[axis] {
				return bi.Max[axis] < bj.Max[axis]
			}
			return bi.Min[axis] < bj.Min[axis]
		}
		if bi.Min[axis] != bj.Min[axis] {
			return bi.Min[axis] < bj.Min[axis]
		}
		return bi.Max[axis] < bj.Max[axis]
	})
	return sorted
}

// prefixSuffixBounds gives pre[i], the bound of sorted[:i+1], and suf[i], the
// bound of sorted[i:].
func prefixSuffixBounds(sorted []entry) (pre, suf []BBox) {
	n := len(sorted)
	pre = make([]BBox, n)
	suf = make([]BBox, n)
	pre[0] = sorted[0].box.Clone()
	for i := 1; i < n; i++ {
		pre[i] = pre[i-1].Union(sorted[i].box)
	}
	suf[n-1] = sorted[n-1].box.Clone()
	for i := n - 2; i >= 0; i-- {
		suf[i] = suf[i+1].Union(sorted[i].box)
	}
	return pre, suf
}

// chooseSubtreeRStar picks the child of a node whose children are leaves that
// needs the least overlap enlargement to take box, then the least area
// enlargement, then the smallest area.
func (t *Tree) chooseSubtreeRStar(n int, box BBox) int {
	entries := t.nodes[n].entries
	best := 0
	bestOverlap, bestEnlarge, bestArea := math.Inf(+1), math.Inf(+1), math.Inf(+1)
	for i, e := range entries {
		grown := e.box.Union(box)
		var overlap float64
		for j, o := range entries {
			if j == i {
				continue
			}
			overlap += grown.Overlap(o.box) - e.box.Overlap(o.box)
		}
		area := e.box.Area()
		enlarge := grown.Area() - area
		if overlap < bestOverlap ||
			(overlap == bestOverlap && enlarge < bestEnlarge) ||
			(overlap == bestOverlap && enlarge == bestEnlarge && area < bestArea) {
			best = i
			bestOverlap, bestEnlarge, bestArea = overlap, enlarge, area
		}
	}
	return best
}
