package mergeable

// DeleteVec is an ordered positional collection where element
// identity is the element's content. Patches reconcile by value
// equality rather than by a stored key.
type DeleteVec[T comparable] struct {
	items []vecItem[T]
}

type vecItem[T comparable] struct {
	val T
	del bool
}

// NewDeleteVec returns a collection holding the given live values.
func NewDeleteVec[T comparable](vals ...T) DeleteVec[T] {
	v := DeleteVec[T]{items: make([]vecItem[T], 0, len(vals))}
	for _, val := range vals {
		v.Push(val)
	}
	return v
}

// Push appends a live value.
func (v *DeleteVec[T]) Push(val T) {
	v.items = append(v.items, vecItem[T]{val: val})
}

// PushDelete appends a tombstone.
func (v *DeleteVec[T]) PushDelete(val T) {
	v.items = append(v.items, vecItem[T]{val: val, del: true})
}

// Contains reports whether val is present live.
func (v DeleteVec[T]) Contains(val T) bool {
	for _, it := range v.items {
		if !it.del && it.val == val {
			return true
		}
	}
	return false
}

// IsDelete reports whether val is present as a tombstone.
func (v DeleteVec[T]) IsDelete(val T) bool {
	for _, it := range v.items {
		if it.del && it.val == val {
			return true
		}
	}
	return false
}

// Values returns the live values in order.
func (v DeleteVec[T]) Values() []T {
	out := make([]T, 0, len(v.items))
	for _, it := range v.items {
		if !it.del {
			out = append(out, it.val)
		}
	}
	return out
}

// Len counts live values.
func (v DeleteVec[T]) Len() int {
	n := 0
	for _, it := range v.items {
		if !it.del {
			n++
		}
	}
	return n
}

// Diff computes the patch turning v into other: values present only
// in other are carried, values present only in v become tombstones.
func (v DeleteVec[T]) Diff(other DeleteVec[T]) DeleteVec[T] {
	var out DeleteVec[T]
	for _, it := range other.items {
		if !it.del && !v.Contains(it.val) {
			out.Push(it.val)
		}
	}
	for _, it := range v.items {
		if !it.del && !other.Contains(it.val) {
			out.PushDelete(it.val)
		}
	}
	return out
}

// Merge applies a patch: tombstoned values are dropped, new values
// append in patch order, existing order is preserved.
func (v DeleteVec[T]) Merge(diff DeleteVec[T]) DeleteVec[T] {
	var out DeleteVec[T]
	for _, it := range v.items {
		if !it.del && !diff.IsDelete(it.val) {
			out.Push(it.val)
		}
	}
	for _, it := range diff.items {
		if !it.del && !out.Contains(it.val) {
			out.Push(it.val)
		}
	}
	return out
}

// Equal compares live values and their order.
func (v DeleteVec[T]) Equal(other DeleteVec[T]) bool {
	a, b := v.Values(), other.Values()
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
