package rtree

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
)

// maxReadDepth bounds the nesting of nodes accepted by a Reader.
const maxReadDepth = 64

// Header is the fixed-size prefix of a serialized tree.
type Header struct {
	Version    uint16
	Dims       int
	MinEntries int
	MaxEntries int
	Split      SplitStrategy
	Count      int
}

// Apply copies the dimensions, fan-out and split strategy from the header
// onto cfg. It is useful to create a tree that a stream can be read into.
func (h Header) Apply(cfg Config) Config {
	cfg.Dims = h.Dims
	cfg.MinEntries = h.MinEntries
	cfg.MaxEntries = h.MaxEntries
	cfg.Split = h.Split
	return cfg
}

// Reader deserializes trees written by a Writer.
type Reader struct {
	r      *bufio.Reader
	codec  ObjectCodec
	buf    [8]byte
	header *Header
	count  int
}

// NewReader creates a Reader that decodes leaf objects with codec.
func NewReader(r io.Reader, codec ObjectCodec) *Reader {
	return &Reader{r: bufio.NewReader(r), codec: codec}
}

// Header reads the stream header. It is read only once, so Header may be
// called before Read to configure the target tree.
func (r *Reader) Header() (Header, error) {
	if r.header != nil {
		return *r.header, nil
	}
	if _, err := io.ReadFull(r.r, r.buf[:4]); err != nil {
		return Header{}, unexpectedEOF(err)
	}
	if string(r.buf[:4]) != formatMagic {
		return Header{}, fmt.Errorf("%w: %q", ErrBadMagic, r.buf[:4])
	}

	var h Header
	var err error
	if h.Version, err = r.uint16(); err != nil {
		return Header{}, err
	}
	if h.Version != formatVersion {
		return Header{}, fmt.Errorf("%w: %d", ErrUnsupportedVersion, h.Version)
	}
	var dims, minEntries, maxEntries uint32
	for _, p := range []*uint32{&dims, &minEntries, &maxEntries} {
		if *p, err = r.uint32(); err != nil {
			return Header{}, err
		}
	}
	split, err := r.uint8()
	if err != nil {
		return Header{}, err
	}
	count, err := r.uint64()
	if err != nil {
		return Header{}, err
	}
	if count > math.MaxInt32 {
		return Header{}, fmt.Errorf("%w: entry count %d", ErrCorrupted, count)
	}
	h.Dims = int(dims)
	h.MinEntries = int(minEntries)
	h.MaxEntries = int(maxEntries)
	h.Split = SplitStrategy(split)
	h.Count = int(count)

	r.header = &h
	return h, nil
}

// Read rebuilds the serialized tree inside t, which must be empty and
// configured with the same dimensions, fan-out and split strategy as the
// stream. The stored structure is reproduced exactly, without splitting.
// If an error is returned, t is left empty.
func (r *Reader) Read(t *Tree) error {
	if t.root != -1 || t.count != 0 {
		return ErrTreeNotEmpty
	}
	if err := r.read(t); err != nil {
		t.Clear()
		return err
	}
	t.log.Info().Int("entries", t.count).Int("height", t.Height()).Msg("tree read")
	return nil
}

// ReadFile reads the named file into t.
func ReadFile(path string, t *Tree, codec ObjectCodec) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return NewReader(f, codec).Read(t)
}

func (r *Reader) read(t *Tree) error {
	h, err := r.Header()
	if err != nil {
		return err
	}
	if h.Dims != t.cfg.Dims {
		return fmt.Errorf("%w: stream has %d dimensions, tree has %d", ErrDimensionMismatch, h.Dims, t.cfg.Dims)
	}
	if h.MinEntries != t.cfg.MinEntries || h.MaxEntries != t.cfg.MaxEntries {
		return fmt.Errorf("%w: stream fan-out [%d, %d], tree fan-out [%d, %d]",
			ErrConfigMismatch, h.MinEntries, h.MaxEntries, t.cfg.MinEntries, t.cfg.MaxEntries)
	}
	if h.Split != t.cfg.Split {
		return fmt.Errorf("%w: stream split %v, tree split %v", ErrConfigMismatch, h.Split, t.cfg.Split)
	}
	if h.Count == 0 {
		return nil
	}

	r.count = 0
	root, err := r.readNode(t, 0)
	if err != nil {
		return err
	}
	t.root = root
	if r.count != h.Count {
		return fmt.Errorf("%w: header says %d, stream holds %d", ErrCountMismatch, h.Count, r.count)
	}
	t.count = r.count
	return nil
}

// readNode reads a node and everything below it, returning its arena index.
func (r *Reader) readNode(t *Tree, depth int) (int, error) {
	if depth >= maxReadDepth {
		return 0, fmt.Errorf("%w: nodes nested deeper than %d", ErrCorrupted, maxReadDepth)
	}
	kind, err := r.uint8()
	if err != nil {
		return 0, err
	}
	if kind != nodeLeaf && kind != nodeInternal {
		return 0, fmt.Errorf("%w: %d", ErrUnknownNodeKind, kind)
	}
	count, err := r.uint32()
	if err != nil {
		return 0, err
	}
	// The root may be under-full, but an internal root always has at least
	// two children: a single child would have been collapsed.
	lo := t.cfg.MinEntries
	if depth == 0 {
		lo = 1
		if kind == nodeInternal {
			lo = 2
		}
	}
	if int64(count) < int64(lo) || int64(count) > int64(t.cfg.MaxEntries) {
		return 0, fmt.Errorf("%w: node holds %d children, want [%d, %d]", ErrCorrupted, count, lo, t.cfg.MaxEntries)
	}

	entries := make([]entry, count, t.cfg.MaxEntries+1)
	for i := range entries {
		if entries[i].box, err = r.readBox(t.cfg.Dims); err != nil {
			return 0, err
		}
	}

	if kind == nodeLeaf {
		for i := range entries {
			obj, err := r.codec.DecodeObject(r.r)
			if err != nil {
				return 0, unexpectedEOF(err)
			}
			entries[i].obj = obj
			if t.hilbert {
				entries[i].hv = t.curve.value(entries[i].box)
			}
		}
		r.count += len(entries)
		n := t.allocNode(0)
		t.setEntries(n, entries)
		if t.hilbert {
			t.sortEntries(n)
		}
		return n, nil
	}

	level := -1
	for i := range entries {
		child, err := r.readNode(t, depth+1)
		if err != nil {
			return 0, err
		}
		childLevel := t.nodes[child].level
		if level != -1 && childLevel != level {
			return 0, fmt.Errorf("%w: leaves at different depths", ErrCorrupted)
		}
		level = childLevel
		if !t.calculateBound(child).Equal(entries[i].box) {
			return 0, fmt.Errorf("%w: stored box %v does not bound its children", ErrCorrupted, entries[i].box)
		}
		entries[i].child = child
		if t.hilbert {
			entries[i].hv = t.largestHilbert(child)
		}
	}
	n := t.allocNode(level + 1)
	t.setEntries(n, entries)
	if t.hilbert {
		t.sortEntries(n)
	}
	return n, nil
}

func (r *Reader) readBox(dims int) (BBox, error) {
	bb := BBox{Min: make([]float64, dims), Max: make([]float64, dims)}
	for _, side := range [][]float64{bb.Min, bb.Max} {
		for d := range side {
			v, err := r.uint64()
			if err != nil {
				return BBox{}, err
			}
			side[d] = math.Float64frombits(v)
		}
	}
	if err := bb.validate(); err != nil {
		return BBox{}, fmt.Errorf("%w: %v", ErrCorrupted, err)
	}
	return bb, nil
}

func (r *Reader) uint8() (uint8, error) {
	b, err := r.r.ReadByte()
	if err != nil {
		return 0, unexpectedEOF(err)
	}
	return b, nil
}

func (r *Reader) uint16() (uint16, error) {
	if _, err := io.ReadFull(r.r, r.buf[:2]); err != nil {
		return 0, unexpectedEOF(err)
	}
	return binary.LittleEndian.Uint16(r.buf[:2]), nil
}

func (r *Reader) uint32() (uint32, error) {
	if _, err := io.ReadFull(r.r, r.buf[:4]); err != nil {
		return 0, unexpectedEOF(err)
	}
	return binary.LittleEndian.Uint32(r.buf[:4]), nil
}

func (r *Reader) uint64() (uint64, error) {
	if _, err := io.ReadFull(r.r, r.buf[:8]); err != nil {
		return 0, unexpectedEOF(err)
	}
	return binary.LittleEndian.Uint64(r.buf[:8]), nil
}

// unexpectedEOF turns a clean end of stream into a truncation error, since
// the stream can never legitimately end where a value is expected.
func unexpectedEOF(err error) error {
	if errors.Is(err, io.EOF) {
		return io.ErrUnexpectedEOF
	}
	return err
}
