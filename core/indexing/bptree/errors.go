package bptree

import "errors"

// Error categories surfaced by the snapshot codec and the bulk loader.
// Key-miss conditions (search, remove) are reported through boolean
// returns, never through these errors.
var (
	// ErrInvalidMagic means the stream does not start with the snapshot
	// magic number and is not a gojotree snapshot at all.
	ErrInvalidMagic = errors.New("invalid snapshot magic")

	// ErrVersionMismatch means the snapshot was written by an
	// incompatible format version.
	ErrVersionMismatch = errors.New("unsupported snapshot version")

	// ErrCorruptSnapshot covers truncated streams, short reads and
	// header fields that no valid writer could have produced.
	ErrCorruptSnapshot = errors.New("corrupt snapshot")

	// ErrOrderMismatch means the snapshot is well formed but was written
	// by a tree of a different order than the one loading it. The data
	// may be perfectly valid; use FromSnapshot to adopt the stored order.
	ErrOrderMismatch = errors.New("snapshot order mismatch")

	// ErrUnsupportedKeyType / ErrUnsupportedValueType mean the key or
	// value type has no fixed-width binary representation (for example
	// string, or Go's platform-sized int). Reported before any I/O.
	ErrUnsupportedKeyType   = errors.New("key type is not fixed-width binary encodable")
	ErrUnsupportedValueType = errors.New("value type is not fixed-width binary encodable")

	// ErrUnsortedInput means BulkLoad was handed pairs that are not in
	// ascending key order. The tree keeps its previous contents.
	ErrUnsortedInput = errors.New("bulk load input not sorted")

	// ErrIO wraps failures of the underlying reader/writer or file.
	ErrIO = errors.New("i/o error")
)
