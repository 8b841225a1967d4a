package byml

import (
	"bytes"
	"encoding/binary"
	"math"

	"github.com/GingerAvalanche/ukmm/pkg/errors"
)

// Binary layout, little-endian: magic "BY" + version u16, then one
// recursive node: kind u8 followed by its payload. Strings are
// u16 len + bytes; maps and arrays are u32 count + children.

var magic = [2]byte{'B', 'Y'}

const version = 7

// ToBinary encodes the tree rooted at n.
func (n *Node) ToBinary() []byte {
	var buf bytes.Buffer
	buf.Write(magic[:])
	var v [2]byte
	binary.LittleEndian.PutUint16(v[:], version)
	buf.Write(v[:])
	writeNode(&buf, n)
	return buf.Bytes()
}

// FromBinary decodes one document.
func FromBinary(data []byte) (*Node, error) {
	r := &reader{data: data}
	var m [2]byte
	if err := r.read(m[:]); err != nil {
		return nil, err
	}
	if m != magic {
		return nil, errors.New(errors.ErrMalformed, "document magic mismatch")
	}
	ver, err := r.u16()
	if err != nil {
		return nil, err
	}
	if ver != version {
		return nil, errors.Newf(errors.ErrMalformed, "unsupported document version %d", ver)
	}
	node, err := readNode(r)
	if err != nil {
		return nil, err
	}
	if r.pos != len(r.data) {
		return nil, errors.New(errors.ErrMalformed, "trailing bytes after document root")
	}
	return node, nil
}

func writeNode(buf *bytes.Buffer, n *Node) {
	buf.WriteByte(byte(n.kind))
	switch n.kind {
	case KindMap:
		writeU32(buf, uint32(len(n.entries)))
		for _, e := range n.entries {
			writeString(buf, e.key)
			writeNode(buf, e.val)
		}
	case KindArray:
		writeU32(buf, uint32(len(n.arr)))
		for _, c := range n.arr {
			writeNode(buf, c)
		}
	case KindString:
		writeString(buf, n.s)
	case KindFloat:
		writeU32(buf, math.Float32bits(n.f))
	case KindInt:
		writeU32(buf, uint32(n.i))
	case KindBool:
		if n.b {
			buf.WriteByte(1)
		} else {
			buf.WriteByte(0)
		}
	}
}

func readNode(r *reader) (*Node, error) {
	kind, err := r.u8()
	if err != nil {
		return nil, err
	}
	switch Kind(kind) {
	case KindMap:
		count, err := r.u32()
		if err != nil {
			return nil, err
		}
		n := NewMap()
		for i := uint32(0); i < count; i++ {
			key, err := r.str()
			if err != nil {
				return nil, err
			}
			val, err := readNode(r)
			if err != nil {
				return nil, err
			}
			n.Set(key, val)
		}
		return n, nil
	case KindArray:
		count, err := r.u32()
		if err != nil {
			return nil, err
		}
		n := NewArray()
		for i := uint32(0); i < count; i++ {
			child, err := readNode(r)
			if err != nil {
				return nil, err
			}
			n.Append(child)
		}
		return n, nil
	case KindString:
		v, err := r.str()
		if err != nil {
			return nil, err
		}
		return NewString(v), nil
	case KindFloat:
		v, err := r.u32()
		if err != nil {
			return nil, err
		}
		return NewFloat(math.Float32frombits(v)), nil
	case KindInt:
		v, err := r.u32()
		if err != nil {
			return nil, err
		}
		return NewInt(int32(v)), nil
	case KindBool:
		v, err := r.u8()
		if err != nil {
			return nil, err
		}
		return NewBool(v != 0), nil
	default:
		return nil, errors.Newf(errors.ErrMalformed, "invalid document node kind %d", kind)
	}
}

type reader struct {
	data []byte
	pos  int
}

func (r *reader) read(dst []byte) error {
	if r.pos+len(dst) > len(r.data) {
		return errors.New(errors.ErrMalformed, "document truncated")
	}
	copy(dst, r.data[r.pos:])
	r.pos += len(dst)
	return nil
}

func (r *reader) u8() (byte, error) {
	var b [1]byte
	if err := r.read(b[:]); err != nil {
		return 0, err
	}
	return b[0], nil
}

func (r *reader) u16() (uint16, error) {
	var b [2]byte
	if err := r.read(b[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b[:]), nil
}

func (r *reader) u32() (uint32, error) {
	var b [4]byte
	if err := r.read(b[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b[:]), nil
}

func (r *reader) str() (string, error) {
	n, err := r.u16()
	if err != nil {
		return "", err
	}
	b := make([]byte, n)
	if err := r.read(b); err != nil {
		return "", err
	}
	return string(b), nil
}

func writeU32(buf *bytes.Buffer, v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	buf.Write(b[:])
}

func writeString(buf *bytes.Buffer, s string) {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], uint16(len(s)))
	buf.Write(b[:])
	buf.WriteString(s)
}
