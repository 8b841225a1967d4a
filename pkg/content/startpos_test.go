package content_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GingerAvalanche/ukmm/pkg/byml"
	"github.com/GingerAvalanche/ukmm/pkg/content"
	"github.com/GingerAvalanche/ukmm/pkg/errors"
)

func startPosNode(mapName, posName string, x, y, z float32) *byml.Node {
	n := byml.NewMap()
	n.Set("Map", byml.NewString(mapName))
	if posName != "" {
		n.Set("PosName", byml.NewString(posName))
	}
	n.Set("Rotate", byml.NewMap().
		Set("X", byml.NewFloat(0)).
		Set("Y", byml.NewFloat(1.5)).
		Set("Z", byml.NewFloat(0)))
	n.Set("Translate", byml.NewMap().
		Set("X", byml.NewFloat(x)).
		Set("Y", byml.NewFloat(y)).
		Set("Z", byml.NewFloat(z)))
	return n
}

func TestStartPosDecode(t *testing.T) {
	pos, err := content.StartPosFromNode(startPosNode("A-1", "Start", 120.5, 300, -42.25))
	require.NoError(t, err)
	require.NotNil(t, pos.Map)
	assert.Equal(t, "A-1", *pos.Map)
	require.NotNil(t, pos.PosName)
	assert.Equal(t, "Start", *pos.PosName)
	y, ok := pos.Translate.Get("Y")
	require.True(t, ok)
	assert.Equal(t, float32(300), y)
}

func TestStartPosIntTypedFloats(t *testing.T) {
	// Some editors write whole-number floats as ints.
	n := startPosNode("A-1", "", 1, 2, 3)
	trans, _ := n.Get("Translate")
	trans.Set("Y", byml.NewInt(200))

	pos, err := content.StartPosFromNode(n)
	require.NoError(t, err)
	y, ok := pos.Translate.Get("Y")
	require.True(t, ok)
	assert.Equal(t, float32(200), y)
}

func TestStartPosMissingMap(t *testing.T) {
	n := startPosNode("A-1", "", 1, 2, 3)
	bad := byml.NewMap()
	rot, _ := n.Get("Rotate")
	trans, _ := n.Get("Translate")
	bad.Set("Rotate", rot)
	bad.Set("Translate", trans)

	_, err := content.StartPosFromNode(bad)
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrNotFound))
}

func TestStartPosInvalidPlayerState(t *testing.T) {
	n := startPosNode("A-1", "", 1, 2, 3)
	n.Set("PlayerState", byml.NewString("Dance"))

	_, err := content.StartPosFromNode(n)
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrMalformed))
}

func TestStartPosIDStable(t *testing.T) {
	a, err := content.StartPosFromNode(startPosNode("A-1", "Start", 120.5, 300, -42.25))
	require.NoError(t, err)
	b, err := content.StartPosFromNode(startPosNode("E-4", "Start", 120.5, 300, -42.25))
	require.NoError(t, err)
	c, err := content.StartPosFromNode(startPosNode("A-1", "Start", 120.5, 300.25, -42.25))
	require.NoError(t, err)

	// Identity comes from position and name, not from the map field.
	assert.Equal(t, a.ID(), b.ID())
	assert.NotEqual(t, a.ID(), c.ID())
}

func TestStartPosDiffMerge(t *testing.T) {
	base, err := content.StartPosFromNode(startPosNode("A-1", "Start", 1, 2, 3))
	require.NoError(t, err)
	modded, err := content.StartPosFromNode(startPosNode("A-1", "Start", 1, 2, 3))
	require.NoError(t, err)
	state := content.PlayerStateWait
	modded.PlayerState = &state

	diff := base.Diff(modded)
	// Unchanged fields carry the sentinel, not the value.
	assert.Nil(t, diff.Map)
	assert.Nil(t, diff.PosName)
	require.NotNil(t, diff.PlayerState)

	merged := base.Merge(diff)
	assert.True(t, merged.Equal(modded))
}

func TestStartPosListDiffMerge(t *testing.T) {
	baseArr := byml.NewArray(
		startPosNode("A-1", "First", 1, 2, 3),
		startPosNode("B-2", "Second", 4, 5, 6),
	)
	// Same placed objects in the opposite array order, one moved.
	modArr := byml.NewArray(
		startPosNode("B-2", "Second", 4, 5, 6),
		startPosNode("A-1", "First", 1, 2, 3),
		startPosNode("C-3", "Third", 7, 8, 9),
	)

	base, err := content.StartPosListFromNode(baseArr)
	require.NoError(t, err)
	mod, err := content.StartPosListFromNode(modArr)
	require.NoError(t, err)

	diff := base.Diff(mod)
	// Reordered-but-identical entries produce no patch entries.
	assert.Equal(t, []string{mod.Entries.Keys()[2]}, diff.Entries.Keys())

	merged := base.Merge(diff)
	assert.Equal(t, 3, merged.Entries.Len())
	assert.True(t, merged.Entries.Contains(mod.Entries.Keys()[2]))
}
