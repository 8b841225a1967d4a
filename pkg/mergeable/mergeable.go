// Package mergeable implements the generic patch algebra used to
// combine independently-authored content packages: a diff/merge
// contract over scalar-optional fields, keyed collections and
// positional collections, plus stable identity derivation for
// records stored positionally.
package mergeable

import (
	"hash/crc32"
	"strconv"
	"strings"
)

// Mergeable is the capability every composite record type implements.
// Diff produces a patch that turns the receiver into other; Merge
// applies such a patch to the receiver. The round-trip law
// a.Merge(a.Diff(b)) == b must hold for values of matching shape.
type Mergeable[T any] interface {
	Diff(other T) T
	Merge(diff T) T
}

// DeepValue is the constraint for collection values that carry their
// own diff/merge logic and equality.
type DeepValue[T any] interface {
	Mergeable[T]
	Equal(other T) bool
}

// DiffOption compares two optional scalar fields. If other differs
// from base the patch carries other's value; if unchanged the patch
// carries the nil "no change" sentinel, never the value itself.
func DiffOption[T comparable](base, other *T) *T {
	if equalOption(base, other) {
		return nil
	}
	if other == nil {
		return nil
	}
	v := *other
	return &v
}

// MergeOption applies an optional scalar patch. The nil sentinel
// keeps base's value; anything else wins.
func MergeOption[T comparable](base, diff *T) *T {
	if diff == nil {
		if base == nil {
			return nil
		}
		v := *base
		return &v
	}
	v := *diff
	return &v
}

func equalOption[T comparable](a, b *T) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// HashName is the 32-bit well-known name-hash function shared with
// the parameter archive format.
func HashName(s string) uint32 {
	return crc32.ChecksumIEEE([]byte(s))
}

// idScale fixes the decimal precision used when hashing position
// components, so independently built trees derive identical IDs.
const idScale = 100000.0

// HashID derives a stable key for an array-stored placed object from
// its position-defining components and distinguishing name. Each
// component is scaled and rendered as the shortest decimal that
// round-trips at 32-bit precision before hashing.
func HashID(components []float32, name string) string {
	var sb strings.Builder
	for _, c := range components {
		sb.WriteString(strconv.FormatFloat(float64(c*idScale), 'f', -1, 32))
	}
	sb.WriteString(name)
	return strconv.FormatUint(uint64(HashName(sb.String())), 10)
}
