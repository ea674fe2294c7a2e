package rtree

import "errors"

// Geometry and configuration errors.
var (
	ErrDimensionMismatch = errors.New("dimension mismatch")
	ErrInvalidBBox       = errors.New("invalid bounding box")
	ErrInvalidConfig     = errors.New("invalid config")
	ErrSplitInvariant    = errors.New("split produced an invalid partition")
)

// Persistence errors.
var (
	ErrTreeNotEmpty       = errors.New("target tree is not empty")
	ErrBadMagic           = errors.New("not an rtree stream")
	ErrUnsupportedVersion = errors.New("unsupported format version")
	ErrConfigMismatch     = errors.New("stream header does not match tree config")
	ErrUnknownNodeKind    = errors.New("unknown node kind")
	ErrCorrupted          = errors.New("corrupted tree data")
	ErrCountMismatch      = errors.New("entry count does not match header")
)
