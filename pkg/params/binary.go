package params

import (
	"bytes"
	"encoding/binary"
	"math"

	"github.com/GingerAvalanche/ukmm/pkg/errors"
)

// Binary layout, little-endian throughout:
//
//	magic "AAMP" | version u32 | object count u32
//	per object:  name u32 | literal (u16 len + bytes) | param count u32
//	per param:   name u32 | literal (u16 len + bytes) | kind u8 | payload
//
// Literals are stored when known so suffix-indexed keys survive the
// round trip; hash-only keys store a zero-length literal.

var magic = [4]byte{'A', 'A', 'M', 'P'}

const version = 2

// ToBinary encodes the archive.
func (p *ParameterIO) ToBinary() []byte {
	var buf bytes.Buffer
	buf.Write(magic[:])
	writeU32(&buf, version)
	writeU32(&buf, uint32(len(p.objects)))
	for _, e := range p.objects {
		writeU32(&buf, uint32(e.name))
		writeString(&buf, e.literal)
		writeU32(&buf, uint32(e.obj.Len()))
		e.obj.Iter(func(name Name, literal string, param Parameter) bool {
			writeU32(&buf, uint32(name))
			writeString(&buf, literal)
			buf.WriteByte(byte(param.kind))
			switch param.kind {
			case KindInt:
				writeU32(&buf, uint32(param.i))
			case KindF32:
				writeU32(&buf, math.Float32bits(param.f))
			case KindString:
				writeString(&buf, param.s)
			case KindBool:
				if param.b {
					buf.WriteByte(1)
				} else {
					buf.WriteByte(0)
				}
			}
			return true
		})
	}
	return buf.Bytes()
}

// FromBinary decodes an archive. Any structural error aborts the
// whole decode.
func FromBinary(data []byte) (*ParameterIO, error) {
	r := &reader{data: data}
	var m [4]byte
	if err := r.read(m[:]); err != nil {
		return nil, err
	}
	if m != magic {
		return nil, errors.New(errors.ErrMalformed, "parameter archive magic mismatch")
	}
	ver, err := r.u32()
	if err != nil {
		return nil, err
	}
	if ver != version {
		return nil, errors.Newf(errors.ErrMalformed, "unsupported parameter archive version %d", ver)
	}
	objCount, err := r.u32()
	if err != nil {
		return nil, err
	}
	pio := NewParameterIO()
	for i := uint32(0); i < objCount; i++ {
		name, err := r.u32()
		if err != nil {
			return nil, err
		}
		literal, err := r.str()
		if err != nil {
			return nil, err
		}
		paramCount, err := r.u32()
		if err != nil {
			return nil, err
		}
		obj := NewObject()
		for j := uint32(0); j < paramCount; j++ {
			pname, err := r.u32()
			if err != nil {
				return nil, err
			}
			pliteral, err := r.str()
			if err != nil {
				return nil, err
			}
			kind, err := r.u8()
			if err != nil {
				return nil, err
			}
			var param Parameter
			switch Kind(kind) {
			case KindInt:
				v, err := r.u32()
				if err != nil {
					return nil, err
				}
				param = Int(int32(v))
			case KindF32:
				v, err := r.u32()
				if err != nil {
					return nil, err
				}
				param = F32(math.Float32frombits(v))
			case KindString:
				v, err := r.str()
				if err != nil {
					return nil, err
				}
				param = String(v)
			case KindBool:
				v, err := r.u8()
				if err != nil {
					return nil, err
				}
				param = Bool(v != 0)
			default:
				return nil, errors.Newf(errors.ErrMalformed, "invalid parameter kind %d", kind)
			}
			obj.set(Name(pname), pliteral, param)
		}
		pio.index[Name(name)] = len(pio.objects)
		pio.objects = append(pio.objects, ioEntry{name: Name(name), literal: literal, obj: obj})
	}
	return pio, nil
}

type reader struct {
	data []byte
	pos  int
}

func (r *reader) read(dst []byte) error {
	if r.pos+len(dst) > len(r.data) {
		return errors.New(errors.ErrMalformed, "parameter archive truncated")
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
