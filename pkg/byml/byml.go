// Package byml implements the hierarchical document format: an
// ordered map/array/scalar tree decoded from binary map resources.
package byml

import (
	"github.com/GingerAvalanche/ukmm/pkg/errors"
)

// Kind discriminates node variants.
type Kind uint8

const (
	KindMap Kind = iota + 1
	KindArray
	KindString
	KindFloat
	KindInt
	KindBool
)

func (k Kind) String() string {
	switch k {
	case KindMap:
		return "map"
	case KindArray:
		return "array"
	case KindString:
		return "string"
	case KindFloat:
		return "float"
	case KindInt:
		return "int"
	case KindBool:
		return "bool"
	default:
		return "invalid"
	}
}

type mapEntry struct {
	key string
	val *Node
}

// Node is one value in the document tree. Map entries preserve
// insertion order.
type Node struct {
	kind    Kind
	entries []mapEntry
	index   map[string]int
	arr     []*Node
	s       string
	f       float32
	i       int32
	b       bool
}

// NewMap returns an empty map node.
func NewMap() *Node {
	return &Node{kind: KindMap, index: make(map[string]int)}
}

// NewArray returns an array node holding the given children.
func NewArray(children ...*Node) *Node {
	return &Node{kind: KindArray, arr: children}
}

func NewString(v string) *Node { return &Node{kind: KindString, s: v} }
func NewFloat(v float32) *Node { return &Node{kind: KindFloat, f: v} }
func NewInt(v int32) *Node     { return &Node{kind: KindInt, i: v} }
func NewBool(v bool) *Node     { return &Node{kind: KindBool, b: v} }

func (n *Node) Kind() Kind { return n.kind }

// Set inserts or replaces a map entry.
func (n *Node) Set(key string, val *Node) *Node {
	if n.kind != KindMap {
		panic("byml: Set on non-map node")
	}
	if n.index == nil {
		n.index = make(map[string]int)
	}
	if i, ok := n.index[key]; ok {
		n.entries[i].val = val
		return n
	}
	n.index[key] = len(n.entries)
	n.entries = append(n.entries, mapEntry{key: key, val: val})
	return n
}

// Get looks up a map entry.
func (n *Node) Get(key string) (*Node, bool) {
	if n == nil || n.kind != KindMap || n.index == nil {
		return nil, false
	}
	i, ok := n.index[key]
	if !ok {
		return nil, false
	}
	return n.entries[i].val, true
}

// Append adds a child to an array node.
func (n *Node) Append(child *Node) *Node {
	if n.kind != KindArray {
		panic("byml: Append on non-array node")
	}
	n.arr = append(n.arr, child)
	return n
}

// AsMap iterates map entries in order.
func (n *Node) AsMap() (func(fn func(key string, val *Node) bool), error) {
	if n == nil || n.kind != KindMap {
		return nil, errors.Newf(errors.ErrMalformed, "node is %s, expected map", n.kindOrNil())
	}
	return func(fn func(key string, val *Node) bool) {
		for _, e := range n.entries {
			if !fn(e.key, e.val) {
				return
			}
		}
	}, nil
}

// AsArray returns the children of an array node.
func (n *Node) AsArray() ([]*Node, error) {
	if n == nil || n.kind != KindArray {
		return nil, errors.Newf(errors.ErrMalformed, "node is %s, expected array", n.kindOrNil())
	}
	return n.arr, nil
}

// AsString returns a string scalar.
func (n *Node) AsString() (string, error) {
	if n == nil || n.kind != KindString {
		return "", errors.Newf(errors.ErrMalformed, "node is %s, expected string", n.kindOrNil())
	}
	return n.s, nil
}

// AsFloat returns a float scalar. Historical data sometimes stored
// vector components as ints; those coerce with no loss of intent.
func (n *Node) AsFloat() (float32, error) {
	if n == nil {
		return 0, errors.New(errors.ErrMalformed, "nil node, expected float")
	}
	switch n.kind {
	case KindFloat:
		return n.f, nil
	case KindInt:
		return float32(n.i), nil
	default:
		return 0, errors.Newf(errors.ErrMalformed, "node is %s, expected float", n.kind)
	}
}

// AsInt returns an int scalar.
func (n *Node) AsInt() (int32, error) {
	if n == nil || n.kind != KindInt {
		return 0, errors.Newf(errors.ErrMalformed, "node is %s, expected int", n.kindOrNil())
	}
	return n.i, nil
}

// AsBool returns a bool scalar.
func (n *Node) AsBool() (bool, error) {
	if n == nil || n.kind != KindBool {
		return false, errors.Newf(errors.ErrMalformed, "node is %s, expected bool", n.kindOrNil())
	}
	return n.b, nil
}

// MapLen returns the entry count of a map node.
func (n *Node) MapLen() int {
	if n == nil {
		return 0
	}
	return len(n.entries)
}

func (n *Node) kindOrNil() string {
	if n == nil {
		return "nil"
	}
	return n.kind.String()
}

// Equal compares two trees structurally, map order included.
func (n *Node) Equal(other *Node) bool {
	if n == nil || other == nil {
		return n == other
	}
	if n.kind != other.kind {
		return false
	}
	switch n.kind {
	case KindMap:
		if len(n.entries) != len(other.entries) {
			return false
		}
		for i, e := range n.entries {
			oe := other.entries[i]
			if e.key != oe.key || !e.val.Equal(oe.val) {
				return false
			}
		}
		return true
	case KindArray:
		if len(n.arr) != len(other.arr) {
			return false
		}
		for i := range n.arr {
			if !n.arr[i].Equal(other.arr[i]) {
				return false
			}
		}
		return true
	case KindString:
		return n.s == other.s
	case KindFloat:
		return n.f == other.f
	case KindInt:
		return n.i == other.i
	case KindBool:
		return n.b == other.b
	default:
		return false
	}
}
