package rtree

import "math"

// quadraticSplit is Guttman's quadratic-cost split.
type quadraticSplit struct{}

func (quadraticSplit) split(entries []entry, minFill int) ([]entry, []entry) {
	i, j := quadraticPickSeeds(entries)
	rest := withoutIndices(entries, i, j)
	return distribute(entries[i], entries[j], rest, minFill, quadraticPickNext)
}

// quadraticPickSeeds selects the pair of entries that would waste the most
// area if they were put in the same group. The first pair wins ties.
func quadraticPickSeeds(entries []entry) (int, int) {
	maxWaste := math.Inf(-1)
	seedA, seedB := 0, 1
	for i := 0; i < len(entries); i++ {
		for j := i + 1; j < len(entries); j++ {
			a, b := entries[i].box, entries[j].box
			waste := a.Union(b).Area() - a.Area() - b.Area()
			if waste > maxWaste {
				maxWaste = waste
				seedA, seedB = i, j
			}
		}
	}
	return seedA, seedB
}

// quadraticPickNext selects the entry with the strongest preference for one
// of the two groups. The first entry wins ties.
func quadraticPickNext(boxA, boxB BBox, rest []entry) int {
	best := 0
	maxDiff := -1.0
	for i, e := range rest {
		diff := math.Abs(boxA.Enlargement(e.box) - boxB.Enlargement(e.box))
		if diff > maxDiff {
			maxDiff = diff
			best = i
		}
	}
	return best
}
