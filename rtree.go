package rtree

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/rs/zerolog"
)

// Entry is a leaf record: a bounding box and the caller-owned object it
// indexes. The tree never interprets the object.
type Entry struct {
	BBox   BBox
	Object any
}

// Tree is an in-memory R-Tree over boxes of a fixed number of dimensions.
// Nodes are kept in an arena and refer to each other by index.
//
// A Tree is not safe for concurrent use. Concurrent searches are fine as long
// as no Insert or Delete runs at the same time.
type Tree struct {
	cfg      Config
	log      zerolog.Logger
	splitter splitter
	hilbert  bool
	curve    hilbertCurve

	nodes []node
	free  []int
	root  int
	count int
}

// New creates an empty tree.
func New(cfg Config) (*Tree, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	t := &Tree{
		cfg:      cfg,
		log:      cfg.Logger.With().Str("component", "rtree").Logger(),
		splitter: newSplitter(cfg.Split),
		hilbert:  cfg.Split == Hilbert,
		root:     -1,
	}
	if t.hilbert {
		t.curve = newHilbertCurve(cfg)
	}
	return t, nil
}

// Config returns the configuration the tree was created with.
func (t *Tree) Config() Config {
	return t.cfg
}

// Len is the number of entries stored in the tree.
func (t *Tree) Len() int {
	return t.count
}

// Height is the number of levels of the tree, zero when empty.
func (t *Tree) Height() int {
	if t.root == -1 {
		return 0
	}
	return t.nodes[t.root].level + 1
}

// Extent gives the box that most closely bounds the tree. If the tree is
// empty, then false is returned.
func (t *Tree) Extent() (BBox, bool) {
	if t.root == -1 || len(t.nodes[t.root].entries) == 0 {
		return BBox{}, false
	}
	return t.calculateBound(t.root), true
}

// Root returns a view of the root node. If the tree is empty, then false is
// returned.
func (t *Tree) Root() (Node, bool) {
	if t.root == -1 {
		return Node{}, false
	}
	return Node{t: t, idx: t.root}, true
}

// Clear removes every entry from the tree.
func (t *Tree) Clear() {
	t.nodes = nil
	t.free = nil
	t.root = -1
	t.count = 0
}

// Search looks for any entries in the tree whose box intersects the given
// bounding box, and passes each of them to the visitor. Entry boxes are
// shared with the tree and must not be modified.
//
// If the visitor returns an error, the search stops early and that error is
// returned, except for Stop, in which case nil is returned.
func (t *Tree) Search(query BBox, v Visitor) error {
	if err := t.checkBox(query); err != nil {
		return err
	}
	if t.root == -1 {
		return nil
	}
	if err := t.search(t.root, query, v); err != nil && !errors.Is(err, Stop) {
		return err
	}
	return nil
}

func (t *Tree) search(n int, query BBox, v Visitor) error {
	nd := &t.nodes[n]
	for _, e := range nd.entries {
		if !e.box.Intersects(query) || !v.Filter(e.box) {
			continue
		}
		if nd.isLeaf() {
			if err := v.Visit(Entry{BBox: e.box, Object: e.obj}); err != nil {
				return err
			}
		} else if err := t.search(e.child, query, v); err != nil {
			return err
		}
	}
	return nil
}

// SearchAll returns every entry whose box intersects the query.
func (t *Tree) SearchAll(query BBox) ([]Entry, error) {
	var c Collector
	if err := t.Search(query, &c); err != nil {
		return nil, err
	}
	return c.Entries, nil
}

// Stats summarises the shape of a tree.
type Stats struct {
	Entries  int
	Height   int
	Nodes    int
	Leaves   int
	MeanFill float64
}

// Stats walks the tree and reports its shape.
func (t *Tree) Stats() Stats {
	s := Stats{Entries: t.count, Height: t.Height()}
	if t.root == -1 {
		return s
	}
	var children int
	var recurse func(int)
	recurse = func(n int) {
		nd := &t.nodes[n]
		s.Nodes++
		children += len(nd.entries)
		if nd.isLeaf() {
			s.Leaves++
			return
		}
		for _, e := range nd.entries {
			recurse(e.child)
		}
	}
	recurse(t.root)
	s.MeanFill = float64(children) / float64(s.Nodes) / float64(t.cfg.MaxEntries)
	return s
}

func (t *Tree) checkBox(bb BBox) error {
	if err := bb.validate(); err != nil {
		return err
	}
	if bb.Dim() != t.cfg.Dims {
		return fmt.Errorf("%w: tree has %d dimensions, box has %d", ErrDimensionMismatch, t.cfg.Dims, bb.Dim())
	}
	return nil
}

func (t *Tree) equalObjects(a, b any) bool {
	if t.cfg.Equal != nil {
		return t.cfg.Equal(a, b)
	}
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb {
		return false
	}
	if ta == nil {
		return true
	}
	if ta.Comparable() {
		return a == b
	}
	return reflect.DeepEqual(a, b)
}
