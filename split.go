package rtree

import (
	"fmt"
	"math"
	"math/bits"
)

// splitter partitions the entries of an overflowing node into two groups,
// each holding at least minFill entries.
type splitter interface {
	split(entries []entry, minFill int) (a, b []entry)
}

func newSplitter(s SplitStrategy) splitter {
	switch s {
	case Linear:
		return linearSplit{}
	case Quadratic:
		return quadraticSplit{}
	case RStar:
		return rstarSplit{}
	case Hilbert:
		return hilbertSplit{}
	case Exhaustive:
		return exhaustiveSplit{}
	}
	panic(fmt.Sprintf("rtree: no splitter for %v", s))
}

// splitNode splits node with index n into two nodes. The first node replaces
// n, and the second node is newly created. The return value is the index of
// the new node.
func (t *Tree) splitNode(n int) int {
	total := len(t.nodes[n].entries)
	a, b := t.splitter.split(t.nodes[n].entries, t.cfg.MinEntries)
	if len(a) < t.cfg.MinEntries || len(b) < t.cfg.MinEntries || len(a)+len(b) != total {
		panic(fmt.Errorf("%w: %v split %d entries into %d and %d (min %d)",
			ErrSplitInvariant, t.cfg.Split, total, len(a), len(b), t.cfg.MinEntries))
	}

	// The groups may share backing arrays with the original entries, so
	// both get fresh storage before either node is touched.
	entriesA := make([]entry, len(a), t.cfg.MaxEntries+1)
	entriesB := make([]entry, len(b), t.cfg.MaxEntries+1)
	copy(entriesA, a)
	copy(entriesB, b)

	nn := t.allocNode(t.nodes[n].level)
	t.setEntries(n, entriesA)
	t.setEntries(nn, entriesB)

	t.log.Debug().
		Int("node", n).
		Int("sibling", nn).
		Int("level", t.nodes[n].level).
		Int("left", len(entriesA)).
		Int("right", len(entriesB)).
		Msg("split node")
	return nn
}

// distribute assigns the remaining entries to the groups seeded by seedA and
// seedB. pickNext chooses the index of the next entry to assign. Each entry
// goes to the group needing the least enlargement, then the group with the
// smaller area, then the group with fewer entries. Once a group needs every
// remaining entry to reach minFill, it gets them all.
func distribute(seedA, seedB entry, rest []entry, minFill int, pickNext func(boxA, boxB BBox, rest []entry) int) ([]entry, []entry) {
	a := []entry{seedA}
	b := []entry{seedB}
	boxA := seedA.box.Clone()
	boxB := seedB.box.Clone()

	rest = append([]entry(nil), rest...)
	for len(rest) > 0 {
		if len(a)+len(rest) <= minFill {
			a = append(a, rest...)
			break
		}
		if len(b)+len(rest) <= minFill {
			b = append(b, rest...)
			break
		}

		i := pickNext(boxA, boxB, rest)
		e := rest[i]
		rest = append(rest[:i], rest[i+1:]...)

		if chooseGroupA(boxA, boxB, len(a), len(b), e.box) {
			a = append(a, e)
			boxA.expand(e.box)
		} else {
			b = append(b, e)
			boxB.expand(e.box)
		}
	}
	return a, b
}

func chooseGroupA(boxA, boxB BBox, countA, countB int, box BBox) bool {
	dA := boxA.Enlargement(box)
	dB := boxB.Enlargement(box)
	if dA != dB {
		return dA < dB
	}
	areaA, areaB := boxA.Area(), boxB.Area()
	if areaA != areaB {
		return areaA < areaB
	}
	return countA <= countB
}

func withoutIndices(entries []entry, i, j int) []entry {
	rest := make([]entry, 0, len(entries)-2)
	for k, e := range entries {
		if k != i && k != j {
			rest = append(rest, e)
		}
	}
	return rest
}

// exhaustiveSplit considers every bipartition of the entries and keeps the
// one with the smallest combined area (then smallest combined margin).
type exhaustiveSplit struct{}

func (exhaustiveSplit) split(entries []entry, minFill int) ([]entry, []entry) {
	// Bit i of a mask puts entry i in group B. Masks with the top bit set
	// mirror a lower mask, and masks leaving either group below minFill are
	// skipped, which also rules out the empty group.
	maxSplit := uint64(1)<<uint(len(entries)-1) - 1
	bestArea := math.Inf(+1)
	bestMargin := math.Inf(+1)
	var bestSplit uint64
	for split := uint64(1); split <= maxSplit; split++ {
		if ones := bits.OnesCount64(split); ones < minFill || len(entries)-ones < minFill {
			continue
		}
		var boxA, boxB BBox
		var hasA, hasB bool
		for i, e := range entries {
			if split&(1<<uint(i)) == 0 {
				if hasA {
					boxA.expand(e.box)
				} else {
					boxA, hasA = e.box.Clone(), true
				}
			} else {
				if hasB {
					boxB.expand(e.box)
				} else {
					boxB, hasB = e.box.Clone(), true
				}
			}
		}
		combinedArea := boxA.Area() + boxB.Area()
		combinedMargin := boxA.Margin() + boxB.Margin()
		if combinedArea < bestArea || (combinedArea == bestArea && combinedMargin < bestMargin) {
			bestArea = combinedArea
			bestMargin = combinedMargin
			bestSplit = split
		}
	}

	var entriesA, entriesB []entry
	for i, e := range entries {
		if bestSplit&(1<<uint(i)) == 0 {
			entriesA = append(entriesA, e)
		} else {
			entriesB = append(entriesB, e)
		}
	}
	return entriesA, entriesB
}
