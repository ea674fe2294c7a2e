package rtree

import (
	"bufio"
	"encoding/binary"
	"io"
	"math"
	"os"
)

// Serialization constants.
//
// Layout (little endian):
//   - Bytes 0-3:   magic "NDRT"
//   - Bytes 4-5:   format version (uint16)
//   - Bytes 6-9:   dimensions (uint32)
//   - Bytes 10-13: minimum entries per node (uint32)
//   - Bytes 14-17: maximum entries per node (uint32)
//   - Byte 18:     split strategy (uint8)
//   - Bytes 19-26: entry count (uint64)
//
// The header is followed by the root node, if any. Each node is written as
// its kind (uint8), its child count (uint32) and the boxes of its children
// (all mins followed by all maxes, as float64). Leaf nodes then hold their
// objects, encoded by the ObjectCodec. Internal nodes then hold their
// children, written the same way, in order.
const (
	formatMagic   = "NDRT"
	formatVersion = 1
	headerSize    = 27

	nodeLeaf     = 0
	nodeInternal = 1
)

// Writer serializes trees to a byte stream.
type Writer struct {
	w     *bufio.Writer
	codec ObjectCodec
	buf   [8]byte
	err   error
}

// NewWriter creates a Writer that encodes leaf objects with codec.
func NewWriter(w io.Writer, codec ObjectCodec) *Writer {
	return &Writer{w: bufio.NewWriter(w), codec: codec}
}

// Write serializes t. The output is flushed before Write returns.
func (w *Writer) Write(t *Tree) error {
	w.writeHeader(t)
	if t.root != -1 && w.err == nil {
		w.writeNode(t, t.root)
	}
	if w.err != nil {
		return w.err
	}
	if err := w.w.Flush(); err != nil {
		return err
	}
	t.log.Info().Int("entries", t.count).Int("height", t.Height()).Msg("tree written")
	return nil
}

// WriteFile serializes t to the named file, creating or truncating it.
func WriteFile(path string, t *Tree, codec ObjectCodec) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := NewWriter(f, codec).Write(t); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func (w *Writer) writeHeader(t *Tree) {
	w.bytes([]byte(formatMagic))
	w.uint16(formatVersion)
	w.uint32(uint32(t.cfg.Dims))
	w.uint32(uint32(t.cfg.MinEntries))
	w.uint32(uint32(t.cfg.MaxEntries))
	w.uint8(uint8(t.cfg.Split))
	w.uint64(uint64(t.count))
}

func (w *Writer) writeNode(t *Tree, n int) {
	nd := &t.nodes[n]
	if nd.isLeaf() {
		w.uint8(nodeLeaf)
	} else {
		w.uint8(nodeInternal)
	}
	w.uint32(uint32(len(nd.entries)))
	for _, e := range nd.entries {
		for _, v := range e.box.Min {
			w.float64(v)
		}
		for _, v := range e.box.Max {
			w.float64(v)
		}
	}
	for _, e := range nd.entries {
		if w.err != nil {
			return
		}
		if nd.isLeaf() {
			w.err = w.codec.EncodeObject(w.w, e.obj)
		} else {
			w.writeNode(t, e.child)
		}
	}
}

func (w *Writer) bytes(b []byte) {
	if w.err != nil {
		return
	}
	_, w.err = w.w.Write(b)
}

func (w *Writer) uint8(v uint8) {
	if w.err != nil {
		return
	}
	w.err = w.w.WriteByte(v)
}

func (w *Writer) uint16(v uint16) {
	binary.LittleEndian.PutUint16(w.buf[:2], v)
	w.bytes(w.buf[:2])
}

func (w *Writer) uint32(v uint32) {
	binary.LittleEndian.PutUint32(w.buf[:4], v)
	w.bytes(w.buf[:4])
}

func (w *Writer) uint64(v uint64) {
	binary.LittleEndian.PutUint64(w.buf[:8], v)
	w.bytes(w.buf[:8])
}

func (w *Writer) float64(v float64) {
	w.uint64(math.Float64bits(v))
}
