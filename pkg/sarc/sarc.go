// Package sarc implements the simple archive format bundling
// multiple named binary blobs by path.
package sarc

import (
	"bytes"
	"encoding/binary"

	"github.com/GingerAvalanche/ukmm/pkg/errors"
)

var magic = [4]byte{'S', 'A', 'R', 'C'}

// Archive is an in-memory container of named blobs, ordered by
// insertion.
type Archive struct {
	order []string
	files map[string][]byte
}

// New returns an empty archive.
func New() *Archive {
	return &Archive{files: make(map[string][]byte)}
}

// Add inserts or replaces the blob at path.
func (a *Archive) Add(path string, data []byte) {
	if a.files == nil {
		a.files = make(map[string][]byte)
	}
	if _, ok := a.files[path]; !ok {
		a.order = append(a.order, path)
	}
	a.files[path] = data
}

// Get returns the blob at path.
func (a *Archive) Get(path string) ([]byte, bool) {
	data, ok := a.files[path]
	return data, ok
}

// Files lists contained paths in insertion order.
func (a *Archive) Files() []string {
	return append([]string(nil), a.order...)
}

// Len returns the number of contained blobs.
func (a *Archive) Len() int {
	return len(a.order)
}

// ToBinary encodes the archive: magic, entry count, then per entry a
// length-prefixed path and length-prefixed data. Little-endian.
func (a *Archive) ToBinary() []byte {
	var buf bytes.Buffer
	buf.Write(magic[:])
	writeU32(&buf, uint32(len(a.order)))
	for _, path := range a.order {
		data := a.files[path]
		writeU16(&buf, uint16(len(path)))
		buf.WriteString(path)
		writeU32(&buf, uint32(len(data)))
		buf.Write(data)
	}
	return buf.Bytes()
}

// FromBinary decodes an archive.
func FromBinary(data []byte) (*Archive, error) {
	if len(data) < 8 || !bytes.Equal(data[:4], magic[:]) {
		return nil, errors.New(errors.ErrMalformed, "container magic mismatch")
	}
	pos := 4
	count := binary.LittleEndian.Uint32(data[pos:])
	pos += 4
	a := New()
	for i := uint32(0); i < count; i++ {
		if pos+2 > len(data) {
			return nil, errors.New(errors.ErrMalformed, "container truncated")
		}
		pathLen := int(binary.LittleEndian.Uint16(data[pos:]))
		pos += 2
		if pos+pathLen > len(data) {
			return nil, errors.New(errors.ErrMalformed, "container truncated")
		}
		path := string(data[pos : pos+pathLen])
		pos += pathLen
		if pos+4 > len(data) {
			return nil, errors.New(errors.ErrMalformed, "container truncated")
		}
		dataLen := int(binary.LittleEndian.Uint32(data[pos:]))
		pos += 4
		if pos+dataLen > len(data) {
			return nil, errors.New(errors.ErrMalformed, "container truncated")
		}
		// Empty blobs decode as nil so round-trips are exact.
		var blob []byte
		if dataLen > 0 {
			blob = make([]byte, dataLen)
			copy(blob, data[pos:pos+dataLen])
		}
		pos += dataLen
		a.Add(path, blob)
	}
	return a, nil
}

func writeU16(buf *bytes.Buffer, v uint16) {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	buf.Write(b[:])
}

func writeU32(buf *bytes.Buffer, v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	buf.Write(b[:])
}
