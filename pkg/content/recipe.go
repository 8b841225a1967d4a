// Package content implements the typed game records that the patch
// algebra diffs and merges: crafting recipes, shop inventories, placed
// start positions, and status effect tables. Each record decodes from
// its binary resource all-or-nothing and encodes back bit-exact.
package content

import (
	"fmt"
	"sort"
	"sync"

	"github.com/GingerAvalanche/ukmm/pkg/errors"
	"github.com/GingerAvalanche/ukmm/pkg/mergeable"
	"github.com/GingerAvalanche/ukmm/pkg/params"
)

// RecipeTable is one named ingredient list: item name to required count.
type RecipeTable struct {
	Items mergeable.DeleteMap[string, int32]
}

func (t RecipeTable) Diff(other RecipeTable) RecipeTable {
	return RecipeTable{Items: mergeable.DiffMap(t.Items, other.Items)}
}

func (t RecipeTable) Merge(diff RecipeTable) RecipeTable {
	return RecipeTable{Items: mergeable.MergeMap(t.Items, diff.Items)}
}

func (t RecipeTable) Equal(other RecipeTable) bool {
	return mergeable.EqualMap(t.Items, other.Items)
}

// Recipe is a crafting recipe resource: named tables of ingredients.
type Recipe struct {
	Tables mergeable.DeleteMap[string, RecipeTable]
}

// RecipePath returns the canonical resource path for a named recipe.
func RecipePath(name string) string {
	return fmt.Sprintf("Actor/Recipe/%s.brecipe", name)
}

var recipeKeyTable = sync.OnceValue(func() params.HashedKeyTable {
	return params.BuildHashedKeyTable([]string{"ItemName", "ItemNum"}, 2, 3)
})

// parseRecipeTableKeys scans a table object for ItemName/ItemNum keys,
// matching literal digit suffixes of any width and falling back to the
// hashed-key table for keys stored as raw hashes. Returns false when
// the object carries no recognizable item keys at all, in which case
// the caller retries with the positional convention.
func parseRecipeTableKeys(obj *params.Object) (RecipeTable, bool, error) {
	type slot struct {
		name  *string
		count *int32
	}
	slots := make(map[int]*slot)
	at := func(idx int) *slot {
		s, ok := slots[idx]
		if !ok {
			s = &slot{}
			slots[idx] = s
		}
		return s
	}

	var scanErr error
	obj.Iter(func(name params.Name, literal string, p params.Parameter) bool {
		if literal != "" {
			if idx, ok := params.ParseTrailingIndex(literal, "ItemName"); ok {
				v, err := p.AsString()
				if err != nil {
					scanErr = err
					return false
				}
				at(idx).name = &v
				return true
			}
			if idx, ok := params.ParseTrailingIndex(literal, "ItemNum"); ok {
				v, err := p.AsInt()
				if err != nil {
					scanErr = err
					return false
				}
				at(idx).count = &v
				return true
			}
			return true
		}
		if match, ok := recipeKeyTable().Lookup(name); ok {
			switch match.Prefix {
			case "ItemName":
				v, err := p.AsString()
				if err != nil {
					scanErr = err
					return false
				}
				at(match.Index).name = &v
			case "ItemNum":
				v, err := p.AsInt()
				if err != nil {
					scanErr = err
					return false
				}
				at(match.Index).count = &v
			}
		}
		return true
	})
	if scanErr != nil {
		return RecipeTable{}, false, scanErr
	}
	if len(slots) == 0 {
		return RecipeTable{}, false, nil
	}

	indices := make([]int, 0, len(slots))
	for idx := range slots {
		indices = append(indices, idx)
	}
	sort.Ints(indices)

	table := RecipeTable{Items: mergeable.NewDeleteMap[string, int32]()}
	for _, idx := range indices {
		s := slots[idx]
		if s.name == nil {
			return RecipeTable{}, false, errors.Newf(errors.ErrNotFound,
				"recipe missing item name at index %03d", idx)
		}
		if s.count == nil {
			return RecipeTable{}, false, errors.Newf(errors.ErrNotFound,
				"recipe missing item count at index %03d", idx)
		}
		table.Items.Set(*s.name, *s.count)
	}
	return table, true, nil
}

// parseRecipeTableIndexed reads count item pairs by positional key,
// 1-based with the given zero-padding width.
func parseRecipeTableIndexed(obj *params.Object, count, width int) (RecipeTable, error) {
	table := RecipeTable{Items: mergeable.NewDeleteMap[string, int32]()}
	for i := 1; i <= count; i++ {
		nameKey := params.FormatIndexed("ItemName", i, width)
		numKey := params.FormatIndexed("ItemNum", i, width)
		nameParam, ok := obj.Get(nameKey)
		if !ok {
			return RecipeTable{}, errors.Newf(errors.ErrNotFound, "recipe missing %s", nameKey)
		}
		numParam, ok := obj.Get(numKey)
		if !ok {
			return RecipeTable{}, errors.Newf(errors.ErrNotFound, "recipe missing %s", numKey)
		}
		name, err := nameParam.AsString()
		if err != nil {
			return RecipeTable{}, err
		}
		num, err := numParam.AsInt()
		if err != nil {
			return RecipeTable{}, err
		}
		table.Items.Set(name, num)
	}
	return table, nil
}

func parseRecipeTable(obj *params.Object) (RecipeTable, error) {
	if table, ok, err := parseRecipeTableKeys(obj); err != nil {
		return RecipeTable{}, err
	} else if ok {
		return table, nil
	}
	countParam, ok := obj.Get("ColumnNum")
	if !ok {
		return RecipeTable{}, errors.New(errors.ErrNotFound, "recipe table missing column count")
	}
	count, err := countParam.AsInt()
	if err != nil {
		return RecipeTable{}, err
	}
	table, err := parseRecipeTableIndexed(obj, int(count), 2)
	if err == nil {
		return table, nil
	}
	if table, err2 := parseRecipeTableIndexed(obj, int(count), 3); err2 == nil {
		return table, nil
	}
	// The declared count disagrees with the keys actually present.
	// Re-derive it: each item is a name/num pair, plus ColumnNum.
	derived := (obj.Len() - 1) / 2
	table, err2 := parseRecipeTableIndexed(obj, derived, 2)
	if err2 != nil {
		return RecipeTable{}, err
	}
	return table, nil
}

// RecipeFromParams decodes a recipe from its parameter resource.
func RecipeFromParams(pio *params.ParameterIO) (Recipe, error) {
	header, ok := pio.Object("Header")
	if !ok {
		return Recipe{}, errors.New(errors.ErrNotFound, "recipe missing header")
	}
	countParam, ok := header.Get("TableNum")
	if !ok {
		return Recipe{}, errors.New(errors.ErrNotFound, "recipe header missing table count")
	}
	count, err := countParam.AsInt()
	if err != nil {
		return Recipe{}, err
	}
	recipe := Recipe{Tables: mergeable.NewDeleteMap[string, RecipeTable]()}
	for i := 1; i <= int(count); i++ {
		key := params.FormatIndexed("Table", i, 2)
		nameParam, ok := header.Get(key)
		if !ok {
			return Recipe{}, errors.Newf(errors.ErrNotFound, "recipe header missing table name %s", key)
		}
		name, err := nameParam.AsString()
		if err != nil {
			return Recipe{}, err
		}
		obj, ok := pio.Object(name)
		if !ok {
			return Recipe{}, errors.Newf(errors.ErrNotFound, "recipe missing table %s", name)
		}
		table, err := parseRecipeTable(obj)
		if err != nil {
			return Recipe{}, err
		}
		recipe.Tables.Set(name, table)
	}
	return recipe, nil
}

// ToParams encodes the recipe. Suffix indices are regenerated from
// insertion order, 1-based with two-digit padding; items with a
// non-positive count are dropped.
func (r Recipe) ToParams() *params.ParameterIO {
	pio := params.NewParameterIO()

	header := params.NewObject()
	header.Set("TableNum", params.Int(int32(r.Tables.Len())))
	for i, name := range r.Tables.Keys() {
		header.Set(params.FormatIndexed("Table", i+1, 2), params.String(name))
	}
	pio.SetObject("Header", header)

	r.Tables.Iter(func(name string, table RecipeTable, del bool) bool {
		if del {
			return true
		}
		obj := params.NewObject()
		kept := 0
		table.Items.Iter(func(_ string, count int32, itemDel bool) bool {
			if !itemDel && count > 0 {
				kept++
			}
			return true
		})
		obj.Set("ColumnNum", params.Int(int32(kept)))
		i := 0
		table.Items.Iter(func(item string, count int32, itemDel bool) bool {
			if itemDel || count <= 0 {
				return true
			}
			i++
			obj.Set(params.FormatIndexed("ItemName", i, 2), params.String(item))
			obj.Set(params.FormatIndexed("ItemNum", i, 2), params.Int(count))
			return true
		})
		pio.SetObject(name, obj)
		return true
	})
	return pio
}

// RecipeFromBinary decodes a recipe from its binary resource.
func RecipeFromBinary(data []byte) (Recipe, error) {
	pio, err := params.FromBinary(data)
	if err != nil {
		return Recipe{}, err
	}
	return RecipeFromParams(pio)
}

// ToBinary encodes the recipe to its binary resource form.
func (r Recipe) ToBinary() []byte {
	return r.ToParams().ToBinary()
}

func (r Recipe) Diff(other Recipe) Recipe {
	return Recipe{Tables: mergeable.DeepDiffMap(r.Tables, other.Tables)}
}

func (r Recipe) Merge(diff Recipe) Recipe {
	return Recipe{Tables: mergeable.DeepMergeMap(r.Tables, diff.Tables)}
}

func (r Recipe) Equal(other Recipe) bool {
	return mergeable.DeepEqualMap(r.Tables, other.Tables)
}
