package bptree

import (
	"bufio"
	"cmp"
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
)

// Snapshot wire format, little-endian throughout:
//
//	magic   uint32
//	version uint32
//	order   uint64
//	count   uint64
//	count x (key, value) with binary.Write fixed-width encoding
//
// Only fixed-size key and value types are encodable, which rules out
// string and the platform-sized int/uint. Anything else fails up front
// before a single byte is written or read.
const (
	snapshotMagic   uint32 = 0x6010B9EE
	snapshotVersion uint32 = 1
)

type snapshotHeader struct {
	Magic   uint32
	Version uint32
	Order   uint64
	Count   uint64
}

func checkFixedWidth[K cmp.Ordered, V any]() error {
	var k K
	if binary.Size(k) < 0 {
		return fmt.Errorf("%w: %T has no fixed-width encoding", ErrUnsupportedKeyType, k)
	}
	var v V
	if binary.Size(v) < 0 {
		return fmt.Errorf("%w: %T has no fixed-width encoding", ErrUnsupportedValueType, v)
	}
	return nil
}

// Save writes a snapshot of the tree to w. The snapshot records pairs
// and order only; node layout is rebuilt at load time.
func (t *BPlusTree[K, V]) Save(w io.Writer) error {
	if err := checkFixedWidth[K, V](); err != nil {
		return err
	}

	bw := bufio.NewWriter(w)
	hdr := snapshotHeader{
		Magic:   snapshotMagic,
		Version: snapshotVersion,
		Order:   uint64(t.order),
		Count:   uint64(t.size),
	}
	if err := binary.Write(bw, binary.LittleEndian, hdr); err != nil {
		return fmt.Errorf("%w: writing snapshot header: %v", ErrIO, err)
	}
	for k, v := range t.All() {
		if err := binary.Write(bw, binary.LittleEndian, k); err != nil {
			return fmt.Errorf("%w: writing snapshot key: %v", ErrIO, err)
		}
		if err := binary.Write(bw, binary.LittleEndian, v); err != nil {
			return fmt.Errorf("%w: writing snapshot value: %v", ErrIO, err)
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("%w: flushing snapshot: %v", ErrIO, err)
	}

	t.logger.Debug("snapshot written", zap.Int("pairs", t.size), zap.Int("order", t.order))
	return nil
}

// SaveFile writes a snapshot to path, truncating any existing file.
func (t *BPlusTree[K, V]) SaveFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrIO, err)
	}
	if err := t.Save(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("%w: closing snapshot file: %v", ErrIO, err)
	}
	return nil
}

// Load replaces the tree's contents with the snapshot read from r. The
// stored order must match the tree's own; use FromSnapshot to adopt the
// stored order instead. Any failure leaves the tree exactly as it was.
func (t *BPlusTree[K, V]) Load(r io.Reader) error {
	order, pairs, err := decodeSnapshot[K, V](r)
	if err != nil {
		return err
	}
	if order != t.order {
		return fmt.Errorf("%w: snapshot order %d, tree order %d", ErrOrderMismatch, order, t.order)
	}
	return t.BulkLoad(pairs)
}

// LoadFile replaces the tree's contents with the snapshot at path.
func (t *BPlusTree[K, V]) LoadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrIO, err)
	}
	defer f.Close()
	return t.Load(f)
}

// FromSnapshot constructs a new tree from a snapshot, adopting the
// order the snapshot records rather than requiring it up front.
func FromSnapshot[K cmp.Ordered, V any](r io.Reader, opts ...Option[K, V]) (*BPlusTree[K, V], error) {
	order, pairs, err := decodeSnapshot[K, V](r)
	if err != nil {
		return nil, err
	}
	t := New(order, opts...)
	if err := t.BulkLoad(pairs); err != nil {
		return nil, err
	}
	return t, nil
}

// FromSnapshotFile constructs a new tree from the snapshot at path.
func FromSnapshotFile[K cmp.Ordered, V any](path string, opts ...Option[K, V]) (*BPlusTree[K, V], error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIO, err)
	}
	defer f.Close()
	return FromSnapshot[K, V](f, opts...)
}

// decodeSnapshot reads and fully validates a snapshot before any caller
// mutates tree state. Keys must come back strictly ascending; Save
// emits them that way, so disorder means corruption.
func decodeSnapshot[K cmp.Ordered, V any](r io.Reader) (order int, pairs []Pair[K, V], err error) {
	if err := checkFixedWidth[K, V](); err != nil {
		return 0, nil, err
	}

	br := bufio.NewReader(r)
	var hdr snapshotHeader
	if err := binary.Read(br, binary.LittleEndian, &hdr); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return 0, nil, fmt.Errorf("%w: truncated header: %v", ErrCorruptSnapshot, err)
		}
		return 0, nil, fmt.Errorf("%w: reading snapshot header: %v", ErrIO, err)
	}
	if hdr.Magic != snapshotMagic {
		return 0, nil, fmt.Errorf("%w: got 0x%08X", ErrInvalidMagic, hdr.Magic)
	}
	if hdr.Version != snapshotVersion {
		return 0, nil, fmt.Errorf("%w: snapshot version %d, supported %d", ErrVersionMismatch, hdr.Version, snapshotVersion)
	}
	if hdr.Order < MinOrder {
		return 0, nil, fmt.Errorf("%w: stored order %d below minimum", ErrCorruptSnapshot, hdr.Order)
	}

	// The count is untrusted until the pairs actually arrive; cap the
	// preallocation so a hostile header cannot force a huge (or
	// impossible) slice before the first short read fails the decode.
	const maxPrealloc = 1 << 16
	pairs = make([]Pair[K, V], 0, min(hdr.Count, maxPrealloc))
	for i := uint64(0); i < hdr.Count; i++ {
		var p Pair[K, V]
		if err := binary.Read(br, binary.LittleEndian, &p.Key); err != nil {
			return 0, nil, fmt.Errorf("%w: truncated at pair %d: %v", ErrCorruptSnapshot, i, err)
		}
		if err := binary.Read(br, binary.LittleEndian, &p.Value); err != nil {
			return 0, nil, fmt.Errorf("%w: truncated at pair %d: %v", ErrCorruptSnapshot, i, err)
		}
		if i > 0 && p.Key <= pairs[i-1].Key {
			return 0, nil, fmt.Errorf("%w: keys out of order at pair %d", ErrCorruptSnapshot, i)
		}
		pairs = append(pairs, p)
	}
	return int(hdr.Order), pairs, nil
}
