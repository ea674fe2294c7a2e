package rtree

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// BBox is an axis-aligned bounding box in an arbitrary number of dimensions.
// Min[i] <= Max[i] holds for every axis and coordinates are finite. A box
// with Min equal to Max is a point.
//
// Boxes passed to a Tree are copied, so callers may reuse the backing slices.
type BBox struct {
	Min, Max []float64
}

// NewBBox creates a box from its minimum and maximum corners.
func NewBBox(min, max []float64) (BBox, error) {
	bb := BBox{Min: min, Max: max}
	if err := bb.validate(); err != nil {
		return BBox{}, err
	}
	return bb.Clone(), nil
}

// Point creates a degenerate box covering a single coordinate.
func Point(coords ...float64) BBox {
	min := make([]float64, len(coords))
	max := make([]float64, len(coords))
	copy(min, coords)
	copy(max, coords)
	return BBox{Min: min, Max: max}
}

func (b BBox) validate() error {
	if len(b.Min) != len(b.Max) {
		return fmt.Errorf("%w: min has %d coordinates, max has %d", ErrInvalidBBox, len(b.Min), len(b.Max))
	}
	if len(b.Min) == 0 {
		return fmt.Errorf("%w: no coordinates", ErrInvalidBBox)
	}
	for i := range b.Min {
		lo, hi := b.Min[i], b.Max[i]
		if math.IsNaN(lo) || math.IsNaN(hi) {
			return fmt.Errorf("%w: NaN on axis %d", ErrInvalidBBox, i)
		}
		if math.IsInf(lo, 0) || math.IsInf(hi, 0) {
			return fmt.Errorf("%w: infinite coordinate on axis %d", ErrInvalidBBox, i)
		}
		if lo > hi {
			return fmt.Errorf("%w: min %v > max %v on axis %d", ErrInvalidBBox, lo, hi, i)
		}
	}
	return nil
}

// Dim is the number of dimensions of the box.
func (b BBox) Dim() int {
	return len(b.Min)
}

// Clone returns a deep copy of the box.
func (b BBox) Clone() BBox {
	min := make([]float64, len(b.Min))
	max := make([]float64, len(b.Max))
	copy(min, b.Min)
	copy(max, b.Max)
	return BBox{Min: min, Max: max}
}

// Equal reports whether both boxes have identical coordinates.
func (b BBox) Equal(o BBox) bool {
	if len(b.Min) != len(o.Min) || len(b.Max) != len(o.Max) {
		return false
	}
	for i := range b.Min {
		if b.Min[i] != o.Min[i] || b.Max[i] != o.Max[i] {
			return false
		}
	}
	return true
}

// Union gives the smallest bounding box containing both b and o.
func (b BBox) Union(o BBox) BBox {
	mustSameDim(b, o)
	u := BBox{
		Min: make([]float64, len(b.Min)),
		Max: make([]float64, len(b.Max)),
	}
	for i := range b.Min {
		u.Min[i] = math.Min(b.Min[i], o.Min[i])
		u.Max[i] = math.Max(b.Max[i], o.Max[i])
	}
	return u
}

// expand grows b in place so that it covers o.
func (b BBox) expand(o BBox) {
	mustSameDim(b, o)
	for i := range b.Min {
		if o.Min[i] < b.Min[i] {
			b.Min[i] = o.Min[i]
		}
		if o.Max[i] > b.Max[i] {
			b.Max[i] = o.Max[i]
		}
	}
}

// Area is the product of the side lengths (volume for 3 or more dimensions).
// It is zero for degenerate boxes.
func (b BBox) Area() float64 {
	a := 1.0
	for i := range b.Min {
		a *= b.Max[i] - b.Min[i]
	}
	return a
}

// Margin is the sum of the side lengths.
func (b BBox) Margin() float64 {
	var m float64
	for i := range b.Min {
		m += b.Max[i] - b.Min[i]
	}
	return m
}

// Overlap is the area shared by b and o, or zero when they are disjoint.
func (b BBox) Overlap(o BBox) float64 {
	mustSameDim(b, o)
	a := 1.0
	for i := range b.Min {
		lo := math.Max(b.Min[i], o.Min[i])
		hi := math.Min(b.Max[i], o.Max[i])
		if hi <= lo {
			return 0
		}
		a *= hi - lo
	}
	return a
}

// Intersects reports whether b and o share at least one point. Touching
// boxes intersect.
func (b BBox) Intersects(o BBox) bool {
	mustSameDim(b, o)
	for i := range b.Min {
		if b.Min[i] > o.Max[i] || b.Max[i] < o.Min[i] {
			return false
		}
	}
	return true
}

// Contains reports whether o lies entirely within b (boundaries included).
func (b BBox) Contains(o BBox) bool {
	mustSameDim(b, o)
	for i := range b.Min {
		if o.Min[i] < b.Min[i] || o.Max[i] > b.Max[i] {
			return false
		}
	}
	return true
}

// Enlargement returns how much additional area b would have to grow by to
// accommodate o.
func (b BBox) Enlargement(o BBox) float64 {
	return b.Union(o).Area() - b.Area()
}

// Center is the midpoint of the box.
func (b BBox) Center() []float64 {
	c := make([]float64, len(b.Min))
	for i := range b.Min {
		c[i] = (b.Min[i] + b.Max[i]) / 2
	}
	return c
}

// Distance is the squared euclidean distance between the centers of b and o.
func (b BBox) Distance(o BBox) float64 {
	mustSameDim(b, o)
	var d float64
	for i := range b.Min {
		delta := (b.Min[i]+b.Max[i])/2 - (o.Min[i]+o.Max[i])/2
		d += delta * delta
	}
	return d
}

func (b BBox) String() string {
	var sb strings.Builder
	sb.WriteByte('[')
	writeCoords(&sb, b.Min)
	sb.WriteString(" - ")
	writeCoords(&sb, b.Max)
	sb.WriteByte(']')
	return sb.String()
}

func writeCoords(sb *strings.Builder, coords []float64) {
	sb.WriteByte('(')
	for i, c := range coords {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(strconv.FormatFloat(c, 'g', -1, 64))
	}
	sb.WriteByte(')')
}

func mustSameDim(a, b BBox) {
	if len(a.Min) != len(b.Min) {
		panic(fmt.Errorf("%w: %d != %d", ErrDimensionMismatch, len(a.Min), len(b.Min)))
	}
}

// unionAll is the bound of a non-empty set of entries.
func unionAll(entries []entry) BBox {
	bb := entries[0].box.Clone()
	for _, e := range entries[1:] {
		bb.expand(e.box)
	}
	return bb
}
