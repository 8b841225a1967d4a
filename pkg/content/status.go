package content

import (
	"fmt"

	"github.com/GingerAvalanche/ukmm/pkg/byml"
	"github.com/GingerAvalanche/ukmm/pkg/errors"
	"github.com/GingerAvalanche/ukmm/pkg/mergeable"
)

// EffectLevel is one entry in a normal status effect's level curve.
type EffectLevel struct {
	Index int32
	Value float32
}

// StatusEffect is either a special marker effect or a normal effect
// with a list of level values. Diffing or merging a special effect
// against a normal one is a programming error and panics: the caller
// matched up two resources that do not describe the same effect.
type StatusEffect struct {
	Special bool
	Levels  mergeable.DeleteVec[EffectLevel]
}

// StatusEffectFromNode decodes one effect entry: an array whose first
// element carries the special flag and whose second, for normal
// effects, carries the level values.
func StatusEffectFromNode(n *byml.Node) (StatusEffect, error) {
	arr, err := n.AsArray()
	if err != nil {
		return StatusEffect{}, err
	}
	if len(arr) == 0 {
		return StatusEffect{}, errors.New(errors.ErrNotFound, "status effect entry empty")
	}
	flagNode, ok := arr[0].Get("special")
	if !ok {
		return StatusEffect{}, errors.New(errors.ErrNotFound, "status effect entry missing special flag")
	}
	special, err := flagNode.AsBool()
	if err != nil {
		return StatusEffect{}, err
	}
	if special {
		return StatusEffect{Special: true}, nil
	}
	if len(arr) < 2 {
		return StatusEffect{}, errors.New(errors.ErrNotFound, "status effect entry missing values")
	}
	valuesNode, ok := arr[1].Get("values")
	if !ok {
		return StatusEffect{}, errors.New(errors.ErrNotFound, "status effect entry missing values")
	}
	values, err := valuesNode.AsArray()
	if err != nil {
		return StatusEffect{}, err
	}
	effect := StatusEffect{}
	for i, entry := range values {
		valNode, ok := entry.Get("val")
		if !ok {
			return StatusEffect{}, errors.New(errors.ErrNotFound, "status effect value missing val")
		}
		val, err := valNode.AsFloat()
		if err != nil {
			return StatusEffect{}, err
		}
		effect.Levels.Push(EffectLevel{Index: int32(i), Value: val})
	}
	return effect, nil
}

// ToNode encodes the effect entry.
func (e StatusEffect) ToNode() *byml.Node {
	if e.Special {
		return byml.NewArray(byml.NewMap().Set("special", byml.NewBool(true)))
	}
	values := byml.NewArray()
	for _, level := range e.Levels.Values() {
		values.Append(byml.NewMap().Set("val", byml.NewFloat(level.Value)))
	}
	return byml.NewArray(
		byml.NewMap().Set("special", byml.NewBool(false)),
		byml.NewMap().Set("values", values),
	)
}

func (e StatusEffect) Diff(other StatusEffect) StatusEffect {
	if e.Special != other.Special {
		panic(fmt.Sprintf("attempted to diff incompatible status effect kinds (special=%v vs special=%v)",
			e.Special, other.Special))
	}
	if e.Special {
		return StatusEffect{Special: true}
	}
	return StatusEffect{Levels: e.Levels.Diff(other.Levels)}
}

func (e StatusEffect) Merge(diff StatusEffect) StatusEffect {
	if e.Special != diff.Special {
		panic(fmt.Sprintf("attempted to merge incompatible status effect kinds (special=%v vs special=%v)",
			e.Special, diff.Special))
	}
	if e.Special {
		return StatusEffect{Special: true}
	}
	return StatusEffect{Levels: e.Levels.Merge(diff.Levels)}
}

func (e StatusEffect) Equal(other StatusEffect) bool {
	if e.Special != other.Special {
		return false
	}
	return e.Special || e.Levels.Equal(other.Levels)
}

// StatusEffectList maps effect names to their entries; the resource
// root is a single-element array holding the name map.
type StatusEffectList struct {
	Effects mergeable.DeleteMap[string, StatusEffect]
}

// StatusEffectListFromNode decodes the full effect table.
func StatusEffectListFromNode(n *byml.Node) (StatusEffectList, error) {
	arr, err := n.AsArray()
	if err != nil {
		return StatusEffectList{}, err
	}
	if len(arr) == 0 {
		return StatusEffectList{}, errors.New(errors.ErrNotFound, "status effect list missing root")
	}
	iter, err := arr[0].AsMap()
	if err != nil {
		return StatusEffectList{}, err
	}
	list := StatusEffectList{Effects: mergeable.NewDeleteMap[string, StatusEffect]()}
	var decodeErr error
	iter(func(name string, entry *byml.Node) bool {
		effect, err := StatusEffectFromNode(entry)
		if err != nil {
			decodeErr = errors.Wrapf(err, errors.ErrMalformed, "invalid status effect %s", name)
			return false
		}
		list.Effects.Set(name, effect)
		return true
	})
	if decodeErr != nil {
		return StatusEffectList{}, decodeErr
	}
	return list, nil
}

// ToNode encodes the effect table.
func (l StatusEffectList) ToNode() *byml.Node {
	root := byml.NewMap()
	l.Effects.Iter(func(name string, effect StatusEffect, del bool) bool {
		if !del {
			root.Set(name, effect.ToNode())
		}
		return true
	})
	return byml.NewArray(root)
}

// StatusEffectListFromBinary decodes the table from its binary form.
func StatusEffectListFromBinary(data []byte) (StatusEffectList, error) {
	n, err := byml.FromBinary(data)
	if err != nil {
		return StatusEffectList{}, err
	}
	return StatusEffectListFromNode(n)
}

// ToBinary encodes the table to its binary form.
func (l StatusEffectList) ToBinary() []byte {
	return l.ToNode().ToBinary()
}

func (l StatusEffectList) Diff(other StatusEffectList) StatusEffectList {
	return StatusEffectList{Effects: mergeable.DeepDiffMap(l.Effects, other.Effects)}
}

func (l StatusEffectList) Merge(diff StatusEffectList) StatusEffectList {
	return StatusEffectList{Effects: mergeable.DeepMergeMap(l.Effects, diff.Effects)}
}

func (l StatusEffectList) Equal(other StatusEffectList) bool {
	return mergeable.DeepEqualMap(l.Effects, other.Effects)
}
