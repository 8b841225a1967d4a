// Package rstb implements the resource-size table consulted by the
// game engine to presize memory for a resource by canonical path.
package rstb

import (
	"bytes"
	"encoding/binary"
	"sort"

	"github.com/GingerAvalanche/ukmm/pkg/errors"
	"github.com/GingerAvalanche/ukmm/pkg/mergeable"
)

// TablePath is the canonical location of the table inside the
// deployed content tree.
const TablePath = "System/Resource/ResourceSizeTable.product.srsizetable"

var magic = [4]byte{'R', 'S', 'T', 'B'}

// Table maps hashed canonical paths to recorded sizes. The table
// exists to guarantee a downstream consumer never under-allocates, so
// recorded sizes only ever grow (see Apply).
type Table struct {
	entries map[uint32]uint32
}

// New returns an empty table.
func New() *Table {
	return &Table{entries: make(map[uint32]uint32)}
}

// Get returns the recorded size for a canonical path.
func (t *Table) Get(canon string) (uint32, bool) {
	size, ok := t.entries[mergeable.HashName(canon)]
	return size, ok
}

// Set records a size unconditionally.
func (t *Table) Set(canon string, size uint32) {
	t.entries[mergeable.HashName(canon)] = size
}

// Remove drops the entry outright.
func (t *Table) Remove(canon string) {
	delete(t.entries, mergeable.HashName(canon))
}

// Len returns the entry count.
func (t *Table) Len() int {
	return len(t.entries)
}

// Apply folds in a batch of updates. A nil size removes the entry;
// otherwise the recorded size becomes max(existing, new) — an update
// must never lower a recorded size unless the entry is removed.
func (t *Table) Apply(updates map[string]*uint32) {
	for canon, size := range updates {
		if size == nil {
			t.Remove(canon)
			continue
		}
		if existing, ok := t.Get(canon); !ok || existing < *size {
			t.Set(canon, *size)
		}
	}
}

// ToBinary encodes the table: magic, entry count, then (hash, size)
// pairs sorted by hash. Little-endian.
func (t *Table) ToBinary() []byte {
	hashes := make([]uint32, 0, len(t.entries))
	for h := range t.entries {
		hashes = append(hashes, h)
	}
	sort.Slice(hashes, func(i, j int) bool { return hashes[i] < hashes[j] })

	var buf bytes.Buffer
	buf.Write(magic[:])
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], uint32(len(hashes)))
	buf.Write(b[:])
	for _, h := range hashes {
		binary.LittleEndian.PutUint32(b[:], h)
		buf.Write(b[:])
		binary.LittleEndian.PutUint32(b[:], t.entries[h])
		buf.Write(b[:])
	}
	return buf.Bytes()
}

// FromBinary decodes a table.
func FromBinary(data []byte) (*Table, error) {
	if len(data) < 8 || !bytes.Equal(data[:4], magic[:]) {
		return nil, errors.New(errors.ErrMalformed, "size table magic mismatch")
	}
	count := int(binary.LittleEndian.Uint32(data[4:8]))
	if len(data) < 8+count*8 {
		return nil, errors.New(errors.ErrMalformed, "size table truncated")
	}
	t := New()
	pos := 8
	for i := 0; i < count; i++ {
		h := binary.LittleEndian.Uint32(data[pos:])
		size := binary.LittleEndian.Uint32(data[pos+4:])
		t.entries[h] = size
		pos += 8
	}
	return t, nil
}
