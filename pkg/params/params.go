// Package params implements the structured parameter archive: named
// objects containing named, typed scalar fields, keyed by a 32-bit
// name hash. Insertion order is significant and survives the binary
// round trip, since several record families regenerate indexed key
// names from it.
package params

import (
	"strconv"

	"github.com/GingerAvalanche/ukmm/pkg/errors"
	"github.com/GingerAvalanche/ukmm/pkg/mergeable"
)

// Name is the hashed form of a parameter key.
type Name uint32

// NameOf hashes a literal key.
func NameOf(s string) Name {
	return Name(mergeable.HashName(s))
}

// Kind discriminates the scalar value held by a Parameter.
type Kind uint8

const (
	KindInt Kind = iota + 1
	KindF32
	KindString
	KindBool
)

func (k Kind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindF32:
		return "f32"
	case KindString:
		return "string"
	case KindBool:
		return "bool"
	default:
		return "invalid"
	}
}

// Parameter is one typed scalar value.
type Parameter struct {
	kind Kind
	i    int32
	f    float32
	s    string
	b    bool
}

func Int(v int32) Parameter     { return Parameter{kind: KindInt, i: v} }
func F32(v float32) Parameter   { return Parameter{kind: KindF32, f: v} }
func String(v string) Parameter { return Parameter{kind: KindString, s: v} }
func Bool(v bool) Parameter     { return Parameter{kind: KindBool, b: v} }

func (p Parameter) Kind() Kind { return p.kind }

func (p Parameter) AsInt() (int32, error) {
	if p.kind != KindInt {
		return 0, errors.Newf(errors.ErrMalformed, "parameter is %s, expected int", p.kind)
	}
	return p.i, nil
}

func (p Parameter) AsF32() (float32, error) {
	if p.kind != KindF32 {
		return 0, errors.Newf(errors.ErrMalformed, "parameter is %s, expected f32", p.kind)
	}
	return p.f, nil
}

func (p Parameter) AsString() (string, error) {
	if p.kind != KindString {
		return "", errors.Newf(errors.ErrMalformed, "parameter is %s, expected string", p.kind)
	}
	return p.s, nil
}

func (p Parameter) AsBool() (bool, error) {
	if p.kind != KindBool {
		return false, errors.Newf(errors.ErrMalformed, "parameter is %s, expected bool", p.kind)
	}
	return p.b, nil
}

// Equal compares kind and value.
func (p Parameter) Equal(q Parameter) bool {
	return p == q
}

func (p Parameter) String() string {
	switch p.kind {
	case KindInt:
		return strconv.FormatInt(int64(p.i), 10)
	case KindF32:
		return strconv.FormatFloat(float64(p.f), 'f', -1, 32)
	case KindString:
		return p.s
	case KindBool:
		return strconv.FormatBool(p.b)
	default:
		return "<invalid>"
	}
}

type objEntry struct {
	name    Name
	literal string
	val     Parameter
}

// Object is an ordered collection of named parameters. Keys set from
// literal strings keep the literal alongside the hash; keys decoded
// from precomputed hashes have an empty literal.
type Object struct {
	entries []objEntry
	index   map[Name]int
}

// NewObject returns an empty parameter object.
func NewObject() *Object {
	return &Object{index: make(map[Name]int)}
}

// Set inserts or replaces the parameter for a literal key.
func (o *Object) Set(key string, p Parameter) {
	o.set(NameOf(key), key, p)
}

// SetHashed inserts or replaces the parameter for an already-hashed key.
func (o *Object) SetHashed(n Name, p Parameter) {
	o.set(n, "", p)
}

func (o *Object) set(n Name, literal string, p Parameter) {
	if o.index == nil {
		o.index = make(map[Name]int)
	}
	if i, ok := o.index[n]; ok {
		o.entries[i].val = p
		if literal != "" {
			o.entries[i].literal = literal
		}
		return
	}
	o.index[n] = len(o.entries)
	o.entries = append(o.entries, objEntry{name: n, literal: literal, val: p})
}

// Get looks up a literal key.
func (o *Object) Get(key string) (Parameter, bool) {
	return o.GetName(NameOf(key))
}

// GetName looks up a hashed key.
func (o *Object) GetName(n Name) (Parameter, bool) {
	if o == nil || o.index == nil {
		return Parameter{}, false
	}
	i, ok := o.index[n]
	if !ok {
		return Parameter{}, false
	}
	return o.entries[i].val, true
}

// Len returns the number of parameters.
func (o *Object) Len() int {
	if o == nil {
		return 0
	}
	return len(o.entries)
}

// Iter walks entries in insertion order. Returning false stops the walk.
func (o *Object) Iter(fn func(name Name, literal string, p Parameter) bool) {
	if o == nil {
		return
	}
	for _, e := range o.entries {
		if !fn(e.name, e.literal, e.val) {
			return
		}
	}
}

type ioEntry struct {
	name    Name
	literal string
	obj     *Object
}

// ParameterIO is the root of one parameter archive: an ordered set of
// named objects.
type ParameterIO struct {
	objects []ioEntry
	index   map[Name]int
}

// NewParameterIO returns an empty archive.
func NewParameterIO() *ParameterIO {
	return &ParameterIO{index: make(map[Name]int)}
}

// SetObject inserts or replaces a named object.
func (p *ParameterIO) SetObject(key string, o *Object) {
	n := NameOf(key)
	if p.index == nil {
		p.index = make(map[Name]int)
	}
	if i, ok := p.index[n]; ok {
		p.objects[i].obj = o
		return
	}
	p.index[n] = len(p.objects)
	p.objects = append(p.objects, ioEntry{name: n, literal: key, obj: o})
}

// Object looks up a named object.
func (p *ParameterIO) Object(key string) (*Object, bool) {
	if p.index == nil {
		return nil, false
	}
	i, ok := p.index[NameOf(key)]
	if !ok {
		return nil, false
	}
	return p.objects[i].obj, true
}

// IterObjects walks objects in insertion order.
func (p *ParameterIO) IterObjects(fn func(name Name, literal string, o *Object) bool) {
	for _, e := range p.objects {
		if !fn(e.name, e.literal, e.obj) {
			return
		}
	}
}
