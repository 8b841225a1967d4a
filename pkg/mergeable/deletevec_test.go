package mergeable_test

import (
	"testing"

	"github.com/GingerAvalanche/ukmm/pkg/mergeable"
	"github.com/stretchr/testify/assert"
)

func TestVecRoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		base  []int
		other []int
	}{
		{"append", []int{1, 2}, []int{1, 2, 3}},
		{"remove", []int{1, 2, 3}, []int{1, 3}},
		{"replace", []int{1, 2}, []int{4, 5}},
		{"identical", []int{1, 2}, []int{1, 2}},
		{"both_empty", nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			base := mergeable.NewDeleteVec(tt.base...)
			other := mergeable.NewDeleteVec(tt.other...)
			diff := base.Diff(other)
			merged := base.Merge(diff)
			assert.True(t, merged.Equal(other))
		})
	}
}

func TestVecIdempotence(t *testing.T) {
	base := mergeable.NewDeleteVec("x", "y", "z")
	diff := base.Diff(base)
	assert.Equal(t, 0, diff.Len())
	assert.True(t, base.Merge(diff).Equal(base))
}

func TestVecTombstones(t *testing.T) {
	base := mergeable.NewDeleteVec(10, 20, 30)
	other := mergeable.NewDeleteVec(10, 30)
	diff := base.Diff(other)
	assert.True(t, diff.IsDelete(20))
	assert.False(t, diff.Contains(20))

	merged := base.Merge(diff)
	assert.False(t, merged.Contains(20))
	assert.Equal(t, []int{10, 30}, merged.Values())
}
