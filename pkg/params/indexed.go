package params

import (
	"fmt"
	"strconv"
	"strings"
)

// Several record families store indexed sub-fields as key-name
// suffixes (Name00, Num00, ...) rather than as a collection. Current
// data zero-pads indices to one width, legacy data to another, and
// some files store the keys as precomputed hashes with no literal at
// all. The helpers here cover all three.

// FormatIndexed renders prefix + zero-padded index at the given width.
func FormatIndexed(prefix string, index, width int) string {
	return fmt.Sprintf("%s%0*d", prefix, width, index)
}

// ParseTrailingIndex extracts the numeric suffix of a key with the
// given prefix, regardless of padding width. Returns false when the
// key has no digit suffix or a different prefix.
func ParseTrailingIndex(key, prefix string) (int, bool) {
	suffix, ok := strings.CutPrefix(key, prefix)
	if !ok || suffix == "" {
		return 0, false
	}
	i := len(suffix)
	for i > 0 && suffix[i-1] >= '0' && suffix[i-1] <= '9' {
		i--
	}
	if i == len(suffix) || i != 0 {
		return 0, false
	}
	idx, err := strconv.Atoi(suffix)
	if err != nil {
		return 0, false
	}
	return idx, true
}

// HashedKeyMatch identifies which indexed field a hashed key resolves
// to: the field prefix and the decoded index.
type HashedKeyMatch struct {
	Prefix string
	Index  int
}

// HashedKeyTable maps precomputed key hashes back to (field, index)
// pairs for every index in a bounded range at every known padding.
type HashedKeyTable struct {
	entries map[Name]HashedKeyMatch
}

// maxHashedIndex bounds the precomputed range; observed data never
// exceeds three-digit indices.
const maxHashedIndex = 999

// BuildHashedKeyTable precomputes hashes for every prefix, every
// index in [0, maxHashedIndex] and every given padding width.
func BuildHashedKeyTable(prefixes []string, widths ...int) HashedKeyTable {
	t := HashedKeyTable{entries: make(map[Name]HashedKeyMatch)}
	for _, prefix := range prefixes {
		for _, width := range widths {
			for idx := 0; idx <= maxHashedIndex; idx++ {
				n := NameOf(FormatIndexed(prefix, idx, width))
				if _, ok := t.entries[n]; !ok {
					t.entries[n] = HashedKeyMatch{Prefix: prefix, Index: idx}
				}
			}
		}
	}
	return t
}

// Lookup resolves a hashed key.
func (t HashedKeyTable) Lookup(n Name) (HashedKeyMatch, bool) {
	m, ok := t.entries[n]
	return m, ok
}
