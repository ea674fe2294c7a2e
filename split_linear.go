package rtree

import "math"

// linearSplit is Guttman's linear-cost split.
type linearSplit struct{}

func (linearSplit) split(entries []entry, minFill int) ([]entry, []entry) {
	i, j := linearPickSeeds(entries)
	rest := withoutIndices(entries, i, j)
	return distribute(entries[i], entries[j], rest, minFill, func(BBox, BBox, []entry) int {
		return 0
	})
}

// linearPickSeeds finds, along each axis, the entry with the highest low side
// and the entry with the lowest high side. The pair with the greatest
// separation, normalised by the width of the whole set along that axis, is
// used as the seeds.
func linearPickSeeds(entries []entry) (int, int) {
	dims := entries[0].box.Dim()
	bestSep := math.Inf(-1)
	seedA, seedB := 0, 1
	for d := 0; d < dims; d++ {
		lowest, highest := math.Inf(+1), math.Inf(-1)
		highLow, lowHigh := 0, 0
		for k, e := range entries {
			lowest = math.Min(lowest, e.box.Min[d])
			highest = math.Max(highest, e.box.Max[d])
			if e.box.Min[d] > entries[highLow].box.Min[d] {
				highLow = k
			}
			if e.box.Max[d] < entries[lowHigh].box.Max[d] {
				lowHigh = k
			}
		}
		if highLow == lowHigh {
			// The same entry is extreme on both sides; fall back to the next
			// lowest high side.
			lowHigh = -1
			for k, e := range entries {
				if k == highLow {
					continue
				}
				if lowHigh == -1 || e.box.Max[d] < entries[lowHigh].box.Max[d] {
					lowHigh = k
				}
			}
		}
		sep := entries[highLow].box.Min[d] - entries[lowHigh].box.Max[d]
		if width := highest - lowest; width > 0 {
			sep /= width
		} else {
			sep = 0
		}
		if sep > bestSep {
			bestSep = sep
			seedA, seedB = lowHigh, highLow
		}
	}
	return seedA, seedB
}
