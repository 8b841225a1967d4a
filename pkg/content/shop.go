package content

import (
	"fmt"

	"github.com/GingerAvalanche/ukmm/pkg/errors"
	"github.com/GingerAvalanche/ukmm/pkg/mergeable"
	"github.com/GingerAvalanche/ukmm/pkg/params"
)

// ShopItem is one stocked entry in a shop table.
type ShopItem struct {
	Sort        int32
	Num         int32
	AdjustPrice int32
	LookGetFlag bool
	Amount      int32
}

// ShopTable is one named inventory: item name to stock data.
type ShopTable struct {
	Items mergeable.DeleteMap[string, ShopItem]
}

func (t ShopTable) Diff(other ShopTable) ShopTable {
	return ShopTable{Items: mergeable.DiffMap(t.Items, other.Items)}
}

func (t ShopTable) Merge(diff ShopTable) ShopTable {
	return ShopTable{Items: mergeable.MergeMap(t.Items, diff.Items)}
}

func (t ShopTable) Equal(other ShopTable) bool {
	return mergeable.EqualMap(t.Items, other.Items)
}

// Shop is a shop inventory resource.
type Shop struct {
	Tables mergeable.DeleteMap[string, ShopTable]
}

// ShopPath returns the canonical resource path for a named shop.
func ShopPath(name string) string {
	return fmt.Sprintf("Actor/ShopData/%s.bshop", name)
}

func shopItemParam(obj *params.Object, prefix string, index int) (params.Parameter, error) {
	key := params.FormatIndexed(prefix, index, 3)
	p, ok := obj.Get(key)
	if !ok {
		return params.Parameter{}, errors.Newf(errors.ErrNotFound, "shop table missing %s", key)
	}
	return p, nil
}

func parseShopTable(obj *params.Object) (ShopTable, error) {
	countParam, ok := obj.Get("ColumnNum")
	if !ok {
		return ShopTable{}, errors.New(errors.ErrNotFound, "shop table missing column count")
	}
	count, err := countParam.AsInt()
	if err != nil {
		return ShopTable{}, err
	}
	table := ShopTable{Items: mergeable.NewDeleteMap[string, ShopItem]()}
	for i := 1; i <= int(count); i++ {
		nameParam, err := shopItemParam(obj, "ItemName", i)
		if err != nil {
			return ShopTable{}, err
		}
		name, err := nameParam.AsString()
		if err != nil {
			return ShopTable{}, err
		}
		var item ShopItem
		for _, field := range []struct {
			prefix string
			dst    *int32
		}{
			{"ItemSort", &item.Sort},
			{"ItemNum", &item.Num},
			{"ItemAdjustPrice", &item.AdjustPrice},
			{"ItemAmount", &item.Amount},
		} {
			p, err := shopItemParam(obj, field.prefix, i)
			if err != nil {
				return ShopTable{}, err
			}
			if *field.dst, err = p.AsInt(); err != nil {
				return ShopTable{}, err
			}
		}
		flagParam, err := shopItemParam(obj, "ItemLookGetFlg", i)
		if err != nil {
			return ShopTable{}, err
		}
		if item.LookGetFlag, err = flagParam.AsBool(); err != nil {
			return ShopTable{}, err
		}
		table.Items.Set(name, item)
	}
	return table, nil
}

// ShopFromParams decodes a shop from its parameter resource.
func ShopFromParams(pio *params.ParameterIO) (Shop, error) {
	header, ok := pio.Object("Header")
	if !ok {
		return Shop{}, errors.New(errors.ErrNotFound, "shop missing header")
	}
	countParam, ok := header.Get("TableNum")
	if !ok {
		return Shop{}, errors.New(errors.ErrNotFound, "shop header missing table count")
	}
	count, err := countParam.AsInt()
	if err != nil {
		return Shop{}, err
	}
	shop := Shop{Tables: mergeable.NewDeleteMap[string, ShopTable]()}
	for i := 1; i <= int(count); i++ {
		nameParam, ok := header.Get(params.FormatIndexed("Table", i, 2))
		if !ok {
			continue
		}
		name, err := nameParam.AsString()
		if err != nil {
			return Shop{}, err
		}
		obj, ok := pio.Object(name)
		if !ok {
			return Shop{}, errors.Newf(errors.ErrNotFound, "shop missing table %s", name)
		}
		table, err := parseShopTable(obj)
		if err != nil {
			return Shop{}, err
		}
		shop.Tables.Set(name, table)
	}
	return shop, nil
}

// ToParams encodes the shop. Item indices are regenerated from
// insertion order, 1-based with three-digit padding.
func (s Shop) ToParams() *params.ParameterIO {
	pio := params.NewParameterIO()

	header := params.NewObject()
	header.Set("TableNum", params.Int(int32(s.Tables.Len())))
	for i, name := range s.Tables.Keys() {
		header.Set(params.FormatIndexed("Table", i+1, 2), params.String(name))
	}
	pio.SetObject("Header", header)

	s.Tables.Iter(func(name string, table ShopTable, del bool) bool {
		if del {
			return true
		}
		obj := params.NewObject()
		obj.Set("ColumnNum", params.Int(int32(table.Items.Len())))
		i := 0
		table.Items.Iter(func(item string, data ShopItem, itemDel bool) bool {
			if itemDel {
				return true
			}
			i++
			obj.Set(params.FormatIndexed("ItemSort", i, 3), params.Int(data.Sort))
			obj.Set(params.FormatIndexed("ItemName", i, 3), params.String(item))
			obj.Set(params.FormatIndexed("ItemNum", i, 3), params.Int(data.Num))
			obj.Set(params.FormatIndexed("ItemAdjustPrice", i, 3), params.Int(data.AdjustPrice))
			obj.Set(params.FormatIndexed("ItemLookGetFlg", i, 3), params.Bool(data.LookGetFlag))
			obj.Set(params.FormatIndexed("ItemAmount", i, 3), params.Int(data.Amount))
			return true
		})
		pio.SetObject(name, obj)
		return true
	})
	return pio
}

// ShopFromBinary decodes a shop from its binary resource.
func ShopFromBinary(data []byte) (Shop, error) {
	pio, err := params.FromBinary(data)
	if err != nil {
		return Shop{}, err
	}
	return ShopFromParams(pio)
}

// ToBinary encodes the shop to its binary resource form.
func (s Shop) ToBinary() []byte {
	return s.ToParams().ToBinary()
}

func (s Shop) Diff(other Shop) Shop {
	return Shop{Tables: mergeable.DeepDiffMap(s.Tables, other.Tables)}
}

func (s Shop) Merge(diff Shop) Shop {
	return Shop{Tables: mergeable.DeepMergeMap(s.Tables, diff.Tables)}
}

func (s Shop) Equal(other Shop) bool {
	return mergeable.DeepEqualMap(s.Tables, other.Tables)
}
