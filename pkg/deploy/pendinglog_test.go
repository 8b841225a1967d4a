package deploy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GingerAvalanche/ukmm/pkg/errors"
	"github.com/GingerAvalanche/ukmm/pkg/rstb"
	"github.com/GingerAvalanche/ukmm/pkg/types"
)

func manifestOf(content, aoc []string) *types.Manifest {
	m := types.NewManifest()
	for _, f := range content {
		m.ContentFiles[f] = struct{}{}
	}
	for _, f := range aoc {
		m.AocFiles[f] = struct{}{}
	}
	return m
}

func TestPendingLogRoundTrip(t *testing.T) {
	pending := NewPendingLog()
	pending.ExtendCopies(manifestOf(
		[]string{"Actor/Pack/Npc.sbactorpack", "Pack/Bootup.pack//Inner.byml"},
		[]string{"Map/MainField/A-1.smubin"},
	))
	pending.ExtendDeletes(manifestOf([]string{"System/Old.bin"}, nil))

	data, err := pending.Marshal()
	require.NoError(t, err)

	parsed, err := ParsePendingLog(data)
	require.NoError(t, err)
	assert.ElementsMatch(t, pending.ContentCopies.Paths(), parsed.ContentCopies.Paths())
	assert.ElementsMatch(t, pending.AocCopies.Paths(), parsed.AocCopies.Paths())
	assert.ElementsMatch(t, pending.ContentDeletes.Paths(), parsed.ContentDeletes.Paths())
	assert.Equal(t, pending.Len(), parsed.Len())
}

func TestPendingLogLegacyUpgrade(t *testing.T) {
	legacy := []byte(`files:
  content_files:
    - Actor/Pack/Npc.sbactorpack
    - Pack/Bootup.pack//Inner.byml
  aoc_files:
    - Map/MainField/A-1.smubin
delete:
  content_files:
    - System/Old.bin
  aoc_files: []
`)
	pending, err := ParsePendingLog(legacy)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{
		"Actor/Pack/Npc.sbactorpack",
		"Pack/Bootup.pack",
	}, pending.ContentCopies.Paths())
	assert.ElementsMatch(t, []string{"Map/MainField/A-1.smubin"}, pending.AocCopies.Paths())
	assert.ElementsMatch(t, []string{"System/Old.bin"}, pending.ContentDeletes.Paths())
}

func TestPendingLogUnreadable(t *testing.T) {
	_, err := ParsePendingLog([]byte("\tnot: yaml"))
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrStaleCheckpoint))
}

func TestPendingLogCounts(t *testing.T) {
	pending := NewPendingLog()
	assert.False(t, pending.HasSome())
	assert.Equal(t, 0, pending.Len())

	pending.ExtendCopies(manifestOf([]string{"A.bin"}, []string{"B.bin"}))
	pending.ExtendDeletes(manifestOf(nil, []string{"C.bin"}))
	assert.True(t, pending.HasSome())
	assert.Equal(t, 3, pending.Len())

	pending.Clear()
	assert.False(t, pending.HasSome())
}

func TestPendingLogAddRSTB(t *testing.T) {
	pending := NewPendingLog()
	pending.AddRSTB()
	assert.Equal(t, []string{rstb.TablePath}, pending.ContentCopies.Paths())
}
