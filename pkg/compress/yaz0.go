// Package compress implements the run-length/LZ compression wrapper
// applied to many binary assets before storage in a container.
package compress

import (
	"bytes"
	"encoding/binary"

	"github.com/GingerAvalanche/ukmm/pkg/errors"
)

var magic = [4]byte{'Y', 'a', 'z', '0'}

const (
	maxLookback = 0x1000
	minMatch    = 3
	maxMatch    = 0x111
)

// IsCompressed reports whether data carries the wrapper magic.
func IsCompressed(data []byte) bool {
	return len(data) >= 4 && bytes.Equal(data[:4], magic[:])
}

// Compress wraps data. Output layout: magic, decompressed size (big
// endian), 8 reserved bytes, then bit-grouped literal/back-reference
// chunks.
func Compress(data []byte) []byte {
	var out bytes.Buffer
	out.Write(magic[:])
	var size [4]byte
	binary.BigEndian.PutUint32(size[:], uint32(len(data)))
	out.Write(size[:])
	out.Write(make([]byte, 8))

	pos := 0
	for pos < len(data) {
		var group bytes.Buffer
		var header byte
		for bit := 7; bit >= 0 && pos < len(data); bit-- {
			length, dist := findMatch(data, pos)
			if length >= minMatch {
				back := dist - 1
				if length >= 0x12 {
					group.WriteByte(byte(back >> 8))
					group.WriteByte(byte(back))
					group.WriteByte(byte(length - 0x12))
				} else {
					group.WriteByte(byte((length-2)<<4 | back>>8))
					group.WriteByte(byte(back))
				}
				pos += length
			} else {
				header |= 1 << bit
				group.WriteByte(data[pos])
				pos++
			}
		}
		out.WriteByte(header)
		out.Write(group.Bytes())
	}
	return out.Bytes()
}

// findMatch locates the longest back-reference for data[pos:] within
// the sliding window. Returns length 0 when nothing qualifies.
func findMatch(data []byte, pos int) (length, dist int) {
	start := pos - maxLookback
	if start < 0 {
		start = 0
	}
	limit := len(data) - pos
	if limit > maxMatch {
		limit = maxMatch
	}
	for cand := start; cand < pos; cand++ {
		n := 0
		for n < limit && data[cand+n] == data[pos+n] {
			n++
		}
		if n > length {
			length = n
			dist = pos - cand
			if n == limit {
				break
			}
		}
	}
	return length, dist
}

// Decompress unwraps data. Malformed streams fail loudly.
func Decompress(data []byte) ([]byte, error) {
	if !IsCompressed(data) {
		return nil, errors.New(errors.ErrMalformed, "compression magic mismatch")
	}
	if len(data) < 16 {
		return nil, errors.New(errors.ErrMalformed, "compressed header truncated")
	}
	size := binary.BigEndian.Uint32(data[4:8])
	out := make([]byte, 0, size)
	pos := 16
	for uint32(len(out)) < size {
		if pos >= len(data) {
			return nil, errors.New(errors.ErrMalformed, "compressed stream truncated")
		}
		header := data[pos]
		pos++
		for bit := 7; bit >= 0 && uint32(len(out)) < size; bit-- {
			if header&(1<<bit) != 0 {
				if pos >= len(data) {
					return nil, errors.New(errors.ErrMalformed, "compressed stream truncated")
				}
				out = append(out, data[pos])
				pos++
				continue
			}
			if pos+1 >= len(data) {
				return nil, errors.New(errors.ErrMalformed, "compressed stream truncated")
			}
			b1, b2 := data[pos], data[pos+1]
			pos += 2
			dist := (int(b1&0xF)<<8 | int(b2)) + 1
			length := int(b1 >> 4)
			if length == 0 {
				if pos >= len(data) {
					return nil, errors.New(errors.ErrMalformed, "compressed stream truncated")
				}
				length = int(data[pos]) + 0x12
				pos++
			} else {
				length += 2
			}
			src := len(out) - dist
			if src < 0 {
				return nil, errors.New(errors.ErrMalformed, "back-reference before stream start")
			}
			for i := 0; i < length; i++ {
				out = append(out, out[src+i])
			}
		}
	}
	return out, nil
}

// DecompressIf unwraps data when it carries the wrapper magic,
// otherwise returns it untouched.
func DecompressIf(data []byte) ([]byte, error) {
	if IsCompressed(data) {
		return Decompress(data)
	}
	return data, nil
}
