package content

import (
	"github.com/GingerAvalanche/ukmm/pkg/byml"
	"github.com/GingerAvalanche/ukmm/pkg/errors"
	"github.com/GingerAvalanche/ukmm/pkg/mergeable"
)

// Player states a start position may request.
const (
	PlayerStateGuard              = "Guard"
	PlayerStateWait               = "Wait"
	PlayerStateWaitAttentionUpper = "WaitAttentionUpper"
)

func validPlayerState(s string) bool {
	switch s {
	case PlayerStateGuard, PlayerStateWait, PlayerStateWaitAttentionUpper:
		return true
	}
	return false
}

// StartPos is a placed spawn point. Start positions live in an array
// with no explicit key, so identity is derived from the translate
// vector and position name (see ID).
type StartPos struct {
	Map         *string
	PlayerState *string
	PosName     *string
	Rotate      mergeable.DeleteMap[string, float32]
	Translate   mergeable.DeleteMap[string, float32]
}

// ID derives the stable key for this start position. Two independently
// authored copies of the same placed point hash identically even when
// their array positions differ.
func (s StartPos) ID() string {
	var name string
	if s.PosName != nil {
		name = *s.PosName
	}
	return mergeable.HashID(s.Translate.Values(), name)
}

// vecFromNode decodes an axis map ("X"/"Y"/"Z" to float). Values
// written by some editors come back int-typed when fractional parts
// are zero; AsFloat tolerates that.
func vecFromNode(n *byml.Node) (mergeable.DeleteMap[string, float32], error) {
	iter, err := n.AsMap()
	if err != nil {
		return mergeable.DeleteMap[string, float32]{}, err
	}
	vec := mergeable.NewDeleteMap[string, float32]()
	var convErr error
	iter(func(axis string, val *byml.Node) bool {
		f, err := val.AsFloat()
		if err != nil {
			convErr = err
			return false
		}
		vec.Set(axis, f)
		return true
	})
	if convErr != nil {
		return mergeable.DeleteMap[string, float32]{}, convErr
	}
	return vec, nil
}

func vecToNode(vec mergeable.DeleteMap[string, float32]) *byml.Node {
	n := byml.NewMap()
	vec.Iter(func(axis string, val float32, del bool) bool {
		if !del {
			n.Set(axis, byml.NewFloat(val))
		}
		return true
	})
	return n
}

// StartPosFromNode decodes a start position from its document node.
func StartPosFromNode(n *byml.Node) (StartPos, error) {
	mapNode, ok := n.Get("Map")
	if !ok {
		return StartPos{}, errors.New(errors.ErrNotFound, "start position missing Map")
	}
	mapName, err := mapNode.AsString()
	if err != nil {
		return StartPos{}, err
	}
	pos := StartPos{Map: &mapName}

	if stateNode, ok := n.Get("PlayerState"); ok {
		state, err := stateNode.AsString()
		if err != nil {
			return StartPos{}, err
		}
		if !validPlayerState(state) {
			return StartPos{}, errors.Newf(errors.ErrMalformed, "invalid player state %q", state)
		}
		pos.PlayerState = &state
	}
	if nameNode, ok := n.Get("PosName"); ok {
		name, err := nameNode.AsString()
		if err != nil {
			return StartPos{}, err
		}
		pos.PosName = &name
	}

	rotNode, ok := n.Get("Rotate")
	if !ok {
		return StartPos{}, errors.New(errors.ErrNotFound, "start position missing Rotate")
	}
	if pos.Rotate, err = vecFromNode(rotNode); err != nil {
		return StartPos{}, errors.Wrap(err, errors.ErrMalformed, "invalid start position Rotate")
	}
	transNode, ok := n.Get("Translate")
	if !ok {
		return StartPos{}, errors.New(errors.ErrNotFound, "start position missing Translate")
	}
	if pos.Translate, err = vecFromNode(transNode); err != nil {
		return StartPos{}, errors.Wrap(err, errors.ErrMalformed, "invalid start position Translate")
	}
	return pos, nil
}

// ToNode encodes the start position.
func (s StartPos) ToNode() *byml.Node {
	n := byml.NewMap()
	if s.Map != nil {
		n.Set("Map", byml.NewString(*s.Map))
	}
	if s.PlayerState != nil {
		n.Set("PlayerState", byml.NewString(*s.PlayerState))
	}
	if s.PosName != nil {
		n.Set("PosName", byml.NewString(*s.PosName))
	}
	n.Set("Rotate", vecToNode(s.Rotate))
	n.Set("Translate", vecToNode(s.Translate))
	return n
}

func (s StartPos) Diff(other StartPos) StartPos {
	return StartPos{
		Map:         mergeable.DiffOption(s.Map, other.Map),
		PlayerState: mergeable.DiffOption(s.PlayerState, other.PlayerState),
		PosName:     mergeable.DiffOption(s.PosName, other.PosName),
		Rotate:      mergeable.DiffMap(s.Rotate, other.Rotate),
		Translate:   mergeable.DiffMap(s.Translate, other.Translate),
	}
}

func (s StartPos) Merge(diff StartPos) StartPos {
	return StartPos{
		Map:         mergeable.MergeOption(s.Map, diff.Map),
		PlayerState: mergeable.MergeOption(s.PlayerState, diff.PlayerState),
		PosName:     mergeable.MergeOption(s.PosName, diff.PosName),
		Rotate:      mergeable.MergeMap(s.Rotate, diff.Rotate),
		Translate:   mergeable.MergeMap(s.Translate, diff.Translate),
	}
}

func (s StartPos) Equal(other StartPos) bool {
	return equalStrPtr(s.Map, other.Map) &&
		equalStrPtr(s.PlayerState, other.PlayerState) &&
		equalStrPtr(s.PosName, other.PosName) &&
		mergeable.EqualMap(s.Rotate, other.Rotate) &&
		mergeable.EqualMap(s.Translate, other.Translate)
}

func equalStrPtr(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// StartPosList keys start positions by their derived ID.
type StartPosList struct {
	Entries mergeable.DeleteMap[string, StartPos]
}

// StartPosListFromNode decodes an array of start positions, keying
// each by its derived ID.
func StartPosListFromNode(n *byml.Node) (StartPosList, error) {
	arr, err := n.AsArray()
	if err != nil {
		return StartPosList{}, err
	}
	list := StartPosList{Entries: mergeable.NewDeleteMap[string, StartPos]()}
	for _, entry := range arr {
		pos, err := StartPosFromNode(entry)
		if err != nil {
			return StartPosList{}, err
		}
		list.Entries.Set(pos.ID(), pos)
	}
	return list, nil
}

// ToNode encodes the list back to its array form in insertion order.
func (l StartPosList) ToNode() *byml.Node {
	arr := byml.NewArray()
	l.Entries.Iter(func(_ string, pos StartPos, del bool) bool {
		if !del {
			arr.Append(pos.ToNode())
		}
		return true
	})
	return arr
}

func (l StartPosList) Diff(other StartPosList) StartPosList {
	return StartPosList{Entries: mergeable.DeepDiffMap(l.Entries, other.Entries)}
}

func (l StartPosList) Merge(diff StartPosList) StartPosList {
	return StartPosList{Entries: mergeable.DeepMergeMap(l.Entries, diff.Entries)}
}

func (l StartPosList) Equal(other StartPosList) bool {
	return mergeable.DeepEqualMap(l.Entries, other.Entries)
}
