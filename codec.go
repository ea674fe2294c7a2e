package rtree

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

// ObjectCodec encodes the objects stored in leaf entries. The tree treats
// objects as opaque, so persisting a tree requires the caller to say how its
// objects are written and read back.
type ObjectCodec interface {
	EncodeObject(w io.Writer, obj any) error
	DecodeObject(r io.Reader) (any, error)
}

// CodecFuncs adapts a pair of functions to the ObjectCodec interface.
type CodecFuncs struct {
	Encode func(w io.Writer, obj any) error
	Decode func(r io.Reader) (any, error)
}

// EncodeObject implements ObjectCodec.
func (c CodecFuncs) EncodeObject(w io.Writer, obj any) error { return c.Encode(w, obj) }

// DecodeObject implements ObjectCodec.
func (c CodecFuncs) DecodeObject(r io.Reader) (any, error) { return c.Decode(r) }

// maxStringLen bounds decoded strings so that corrupted length prefixes do
// not trigger huge allocations.
const maxStringLen = 1 << 24

// StringCodec stores string objects with a uint32 length prefix.
type StringCodec struct{}

// EncodeObject implements ObjectCodec.
func (StringCodec) EncodeObject(w io.Writer, obj any) error {
	s, ok := obj.(string)
	if !ok {
		return fmt.Errorf("rtree: StringCodec cannot encode %T", obj)
	}
	if len(s) > maxStringLen {
		return fmt.Errorf("rtree: string of %d bytes is too long", len(s))
	}
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], uint32(len(s)))
	if _, err := w.Write(buf[:]); err != nil {
		return err
	}
	_, err := io.WriteString(w, s)
	return err
}

// DecodeObject implements ObjectCodec.
func (StringCodec) DecodeObject(r io.Reader) (any, error) {
	var buf [4]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return nil, err
	}
	n := binary.LittleEndian.Uint32(buf[:])
	if n > maxStringLen {
		return nil, fmt.Errorf("%w: string length %d", ErrCorrupted, n)
	}
	data := make([]byte, n)
	if _, err := io.ReadFull(r, data); err != nil {
		return nil, err
	}
	return string(data), nil
}

// IntCodec stores int objects as 8 byte signed integers.
type IntCodec struct{}

// EncodeObject implements ObjectCodec.
func (IntCodec) EncodeObject(w io.Writer, obj any) error {
	v, ok := obj.(int)
	if !ok {
		return fmt.Errorf("rtree: IntCodec cannot encode %T", obj)
	}
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(int64(v)))
	_, err := w.Write(buf[:])
	return err
}

// DecodeObject implements ObjectCodec.
func (IntCodec) DecodeObject(r io.Reader) (any, error) {
	var buf [8]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return nil, err
	}
	v := int64(binary.LittleEndian.Uint64(buf[:]))
	if v > math.MaxInt || v < math.MinInt {
		return nil, fmt.Errorf("%w: integer %d overflows int", ErrCorrupted, v)
	}
	return int(v), nil
}
