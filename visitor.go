package rtree

import "errors"

// Stop is a special sentinel error that can be returned by a visitor to stop
// a search without any error.
var Stop = errors.New("stop")

// Visitor receives the results of a Search.
type Visitor interface {
	// Filter reports whether the subtree or entry covered by box should be
	// explored. It is only called for boxes that intersect the query.
	Filter(box BBox) bool
	// Visit is called for every matching entry.
	Visit(e Entry) error
}

// VisitorFunc adapts a function to the Visitor interface. It explores every
// box that intersects the query.
type VisitorFunc func(e Entry) error

// Filter implements Visitor.
func (f VisitorFunc) Filter(BBox) bool { return true }

// Visit implements Visitor.
func (f VisitorFunc) Visit(e Entry) error { return f(e) }

// Collector appends every visited entry to Entries.
type Collector struct {
	Entries []Entry
}

// Filter implements Visitor.
func (c *Collector) Filter(BBox) bool { return true }

// Visit implements Visitor.
func (c *Collector) Visit(e Entry) error {
	c.Entries = append(c.Entries, e)
	return nil
}

// Counter counts visited entries.
type Counter struct {
	N int
}

// Filter implements Visitor.
func (c *Counter) Filter(BBox) bool { return true }

// Visit implements Visitor.
func (c *Counter) Visit(Entry) error {
	c.N++
	return nil
}

// Within wraps next so that only entries lying entirely inside query are
// reported.
func Within(query BBox, next Visitor) Visitor {
	return &withinVisitor{query: query, next: next}
}

type withinVisitor struct {
	query BBox
	next  Visitor
}

func (w *withinVisitor) Filter(box BBox) bool { return w.next.Filter(box) }

func (w *withinVisitor) Visit(e Entry) error {
	if !w.query.Contains(e.BBox) {
		return nil
	}
	return w.next.Visit(e)
}

// Where wraps next so that only entries matching pred are reported.
func Where(pred func(Entry) bool, next Visitor) Visitor {
	return &predicateVisitor{pred: pred, next: next}
}

type predicateVisitor struct {
	pred func(Entry) bool
	next Visitor
}

func (p *predicateVisitor) Filter(box BBox) bool { return p.next.Filter(box) }

func (p *predicateVisitor) Visit(e Entry) error {
	if !p.pred(e) {
		return nil
	}
	return p.next.Visit(e)
}

// Limit wraps next so that the search stops after n entries were reported.
func Limit(n int, next Visitor) Visitor {
	return &limitVisitor{remaining: n, next: next}
}

type limitVisitor struct {
	remaining int
	next      Visitor
}

func (l *limitVisitor) Filter(box BBox) bool { return l.remaining > 0 && l.next.Filter(box) }

func (l *limitVisitor) Visit(e Entry) error {
	if l.remaining <= 0 {
		return Stop
	}
	l.remaining--
	if err := l.next.Visit(e); err != nil {
		return err
	}
	if l.remaining == 0 {
		return Stop
	}
	return nil
}
