package mergeable

// DeleteMap is an insertion-order-preserving keyed collection in
// which entries may be flagged as deleted. A flagged entry inside a
// patch is a tombstone: merging it removes the key from the result.
type DeleteMap[K comparable, V any] struct {
	order []K
	items map[K]mapItem[V]
}

type mapItem[V any] struct {
	val V
	del bool
}

// NewDeleteMap returns an empty collection.
func NewDeleteMap[K comparable, V any]() DeleteMap[K, V] {
	return DeleteMap[K, V]{items: make(map[K]mapItem[V])}
}

// Set inserts or replaces the value for key, clearing any delete flag.
// Newly introduced keys append to the iteration order.
func (m *DeleteMap[K, V]) Set(key K, val V) {
	if m.items == nil {
		m.items = make(map[K]mapItem[V])
	}
	if _, ok := m.items[key]; !ok {
		m.order = append(m.order, key)
	}
	m.items[key] = mapItem[V]{val: val}
}

// SetDelete inserts a tombstone for key.
func (m *DeleteMap[K, V]) SetDelete(key K, val V) {
	if m.items == nil {
		m.items = make(map[K]mapItem[V])
	}
	if _, ok := m.items[key]; !ok {
		m.order = append(m.order, key)
	}
	m.items[key] = mapItem[V]{val: val, del: true}
}

// Get returns the live value for key. Tombstoned keys report absent.
func (m DeleteMap[K, V]) Get(key K) (V, bool) {
	it, ok := m.items[key]
	if !ok || it.del {
		var zero V
		return zero, false
	}
	return it.val, true
}

// IsDelete reports whether key is present as a tombstone.
func (m DeleteMap[K, V]) IsDelete(key K) bool {
	it, ok := m.items[key]
	return ok && it.del
}

// Contains reports whether key has a live entry.
func (m DeleteMap[K, V]) Contains(key K) bool {
	_, ok := m.Get(key)
	return ok
}

// Remove drops key entirely, tombstone or not.
func (m *DeleteMap[K, V]) Remove(key K) {
	if _, ok := m.items[key]; !ok {
		return
	}
	delete(m.items, key)
	for i, k := range m.order {
		if k == key {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
}

// Keys returns the live keys in insertion order.
func (m DeleteMap[K, V]) Keys() []K {
	out := make([]K, 0, len(m.order))
	for _, k := range m.order {
		if !m.items[k].del {
			out = append(out, k)
		}
	}
	return out
}

// Values returns the live values in insertion order.
func (m DeleteMap[K, V]) Values() []V {
	out := make([]V, 0, len(m.order))
	for _, k := range m.order {
		if it := m.items[k]; !it.del {
			out = append(out, it.val)
		}
	}
	return out
}

// Len counts live entries.
func (m DeleteMap[K, V]) Len() int {
	n := 0
	for _, k := range m.order {
		if !m.items[k].del {
			n++
		}
	}
	return n
}

// Iter calls fn for every entry, tombstones included, in order.
// Returning false stops the walk.
func (m DeleteMap[K, V]) Iter(fn func(key K, val V, del bool) bool) {
	for _, k := range m.order {
		it := m.items[k]
		if !fn(k, it.val, it.del) {
			return
		}
	}
}

// Clone returns a shallow copy.
func (m DeleteMap[K, V]) Clone() DeleteMap[K, V] {
	out := DeleteMap[K, V]{
		order: append([]K(nil), m.order...),
		items: make(map[K]mapItem[V], len(m.items)),
	}
	for k, v := range m.items {
		out.items[k] = v
	}
	return out
}

// DiffMap computes the patch turning base into other for keyed
// collections of comparable values. Keys present only in other, or
// present in both with a different value, carry other's value; keys
// present only in base become tombstones.
func DiffMap[K comparable, V comparable](base, other DeleteMap[K, V]) DeleteMap[K, V] {
	out := NewDeleteMap[K, V]()
	other.Iter(func(k K, v V, del bool) bool {
		if del {
			return true
		}
		if bv, ok := base.Get(k); !ok || bv != v {
			out.Set(k, v)
		}
		return true
	})
	base.Iter(func(k K, v V, del bool) bool {
		if del {
			return true
		}
		if !other.Contains(k) {
			out.SetDelete(k, v)
		}
		return true
	})
	return out
}

// MergeMap applies a patch: entries are inserted or replaced
// preserving base's order, newly introduced keys append in patch
// order, and tombstoned keys are removed.
func MergeMap[K comparable, V any](base, diff DeleteMap[K, V]) DeleteMap[K, V] {
	out := NewDeleteMap[K, V]()
	base.Iter(func(k K, v V, del bool) bool {
		if del {
			return true
		}
		if diff.IsDelete(k) {
			return true
		}
		if dv, ok := diff.Get(k); ok {
			out.Set(k, dv)
		} else {
			out.Set(k, v)
		}
		return true
	})
	diff.Iter(func(k K, v V, del bool) bool {
		if !del && !out.Contains(k) && !base.IsDelete(k) {
			out.Set(k, v)
		}
		return true
	})
	return out
}

// EqualMap compares live entries and their order.
func EqualMap[K comparable, V comparable](a, b DeleteMap[K, V]) bool {
	ak, bk := a.Keys(), b.Keys()
	if len(ak) != len(bk) {
		return false
	}
	for i, k := range ak {
		if bk[i] != k {
			return false
		}
		av, _ := a.Get(k)
		bv, _ := b.Get(k)
		if av != bv {
			return false
		}
	}
	return true
}

// DeepDiffMap is DiffMap for values that carry their own diff/merge
// logic: changed values recurse into the value's Diff rather than
// being replaced wholesale.
func DeepDiffMap[K comparable, V DeepValue[V]](base, other DeleteMap[K, V]) DeleteMap[K, V] {
	out := NewDeleteMap[K, V]()
	other.Iter(func(k K, v V, del bool) bool {
		if del {
			return true
		}
		if bv, ok := base.Get(k); ok {
			if !bv.Equal(v) {
				out.Set(k, bv.Diff(v))
			}
		} else {
			out.Set(k, v)
		}
		return true
	})
	base.Iter(func(k K, v V, del bool) bool {
		if del {
			return true
		}
		if !other.Contains(k) {
			out.SetDelete(k, v)
		}
		return true
	})
	return out
}

// DeepMergeMap is MergeMap with recursive value merging.
func DeepMergeMap[K comparable, V DeepValue[V]](base, diff DeleteMap[K, V]) DeleteMap[K, V] {
	out := NewDeleteMap[K, V]()
	base.Iter(func(k K, v V, del bool) bool {
		if del {
			return true
		}
		if diff.IsDelete(k) {
			return true
		}
		if dv, ok := diff.Get(k); ok {
			out.Set(k, v.Merge(dv))
		} else {
			out.Set(k, v)
		}
		return true
	})
	diff.Iter(func(k K, v V, del bool) bool {
		if !del && !out.Contains(k) && !base.IsDelete(k) {
			out.Set(k, v)
		}
		return true
	})
	return out
}

// DeepEqualMap compares live entries and order with value equality
// delegated to the values themselves.
func DeepEqualMap[K comparable, V DeepValue[V]](a, b DeleteMap[K, V]) bool {
	ak, bk := a.Keys(), b.Keys()
	if len(ak) != len(bk) {
		return false
	}
	for i, k := range ak {
		if bk[i] != k {
			return false
		}
		av, _ := a.Get(k)
		bv, _ := b.Get(k)
		if !av.Equal(bv) {
			return false
		}
	}
	return true
}
