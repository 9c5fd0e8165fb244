package codec

import (
	"errors"
	"fmt"
)

// I/O failures.
var (
	ErrNotFound   = errors.New("map file not found")
	ErrPermission = errors.New("map file permission denied")
	ErrIO         = errors.New("map file i/o error")
)

// ErrCorrupt is matched by every decoding failure. The more specific
// reasons below are matched as well.
var (
	ErrCorrupt           = errors.New("corrupt map data")
	ErrTruncated         = errors.New("unexpected end of data")
	ErrUnknownCellTag    = errors.New("unknown cell tag")
	ErrDimensionMismatch = errors.New("cell count does not match dimensions")
	ErrDimensionTooLarge = errors.New("dimensions out of range")
	ErrTrailingData      = errors.New("trailing bytes after grid")
)

// CorruptError describes why a byte stream could not be decoded.
type CorruptError struct {
	Reason error
	Offset int64
	Detail string
}

func (e *CorruptError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("%s at offset %d: %s", ErrCorrupt, e.Offset, e.Reason)
	}
	return fmt.Sprintf("%s at offset %d: %s: %s", ErrCorrupt, e.Offset, e.Reason, e.Detail)
}

func (e *CorruptError) Unwrap() []error {
	return []error{ErrCorrupt, e.Reason}
}

func corrupt(reason error, offset int64, format string, args ...interface{}) error {
	return &CorruptError{Reason: reason, Offset: offset, Detail: fmt.Sprintf(format, args...)}
}
