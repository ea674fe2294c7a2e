// Package rtree implements an in-memory R-Tree over axis-aligned boxes of any
// fixed number of dimensions.
//
// Trees are built with New or BulkLoad and can be written to and read from a
// compact binary format with Writer and Reader. Node splitting uses one of
// several strategies: Guttman's linear and quadratic splits, the R*-tree
// (with forced reinsertion) and the Hilbert R-tree.
package rtree
