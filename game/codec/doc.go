// Package codec reads and writes maze grids in a compact binary format.
//
// Layout (all integers little-endian):
//
//	u64 width
//	u64 height
//	u64 cell count (must equal width*height)
//	u32 tag per cell, row-major: 0 wall, 1 path, 2 solution
//
// Failures fall into two families. File problems match ErrNotFound,
// ErrPermission or ErrIO. Malformed data always matches ErrCorrupt together
// with a specific reason such as ErrTruncated or ErrUnknownCellTag, so callers
// can branch on either level with errors.Is.
package codec
