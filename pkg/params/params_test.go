package params_test

import (
	"testing"

	"github.com/GingerAvalanche/ukmm/pkg/errors"
	"github.com/GingerAvalanche/ukmm/pkg/params"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParameterKinds(t *testing.T) {
	p := params.Int(42)
	v, err := p.AsInt()
	require.NoError(t, err)
	assert.Equal(t, int32(42), v)

	// Accessing the wrong kind must fail loudly with MALFORMED.
	_, err = p.AsString()
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrMalformed))

	_, err = params.String("hi").AsBool()
	assert.True(t, errors.IsErrorCode(err, errors.ErrMalformed))
}

func TestObjectOrder(t *testing.T) {
	o := params.NewObject()
	o.Set("TableNum", params.Int(2))
	o.Set("Table01", params.String("Normal0"))
	o.Set("Table02", params.String("Rare0"))

	var got []string
	o.Iter(func(_ params.Name, literal string, _ params.Parameter) bool {
		got = append(got, literal)
		return true
	})
	assert.Equal(t, []string{"TableNum", "Table01", "Table02"}, got)
}

func TestBinaryRoundTrip(t *testing.T) {
	header := params.NewObject()
	header.Set("TableNum", params.Int(1))
	header.Set("Table01", params.String("Normal0"))

	table := params.NewObject()
	table.Set("ColumnNum", params.Int(1))
	table.Set("ItemName01", params.String("Item_Fruit_A"))
	table.Set("ItemNum01", params.Int(3))
	table.Set("Rate", params.F32(0.5))
	table.Set("Enabled", params.Bool(true))
	// Hash-only key with no literal must survive.
	table.SetHashed(params.NameOf("ItemName101"), params.String("Item_Fruit_B"))

	pio := params.NewParameterIO()
	pio.SetObject("Header", header)
	pio.SetObject("Normal0", table)

	data := pio.ToBinary()
	pio2, err := params.FromBinary(data)
	require.NoError(t, err)

	h2, ok := pio2.Object("Header")
	require.True(t, ok)
	num, ok := h2.Get("TableNum")
	require.True(t, ok)
	i, err := num.AsInt()
	require.NoError(t, err)
	assert.Equal(t, int32(1), i)

	t2, ok := pio2.Object("Normal0")
	require.True(t, ok)
	assert.Equal(t, table.Len(), t2.Len())
	hidden, ok := t2.GetName(params.NameOf("ItemName101"))
	require.True(t, ok)
	s, err := hidden.AsString()
	require.NoError(t, err)
	assert.Equal(t, "Item_Fruit_B", s)

	// Byte-exact re-encode.
	assert.Equal(t, data, pio2.ToBinary())
}

func TestFromBinaryMalformed(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"bad_magic", []byte("NOPE\x00\x00\x00\x00")},
		{"truncated", []byte("AAMP\x02\x00\x00\x00\x05")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := params.FromBinary(tt.data)
			require.Error(t, err)
			assert.True(t, errors.IsErrorCode(err, errors.ErrMalformed))
		})
	}
}

func TestFormatIndexed(t *testing.T) {
	assert.Equal(t, "ItemName02", params.FormatIndexed("ItemName", 2, 2))
	assert.Equal(t, "ItemName002", params.FormatIndexed("ItemName", 2, 3))
	assert.Equal(t, "Table12", params.FormatIndexed("Table", 12, 2))
}

func TestParseTrailingIndex(t *testing.T) {
	tests := []struct {
		key    string
		prefix string
		want   int
		ok     bool
	}{
		{"ItemName02", "ItemName", 2, true},
		{"ItemName002", "ItemName", 2, true},
		{"ItemName101", "ItemName", 101, true},
		{"ItemName", "ItemName", 0, false},
		{"ItemNum02", "ItemName", 0, false},
		{"ColumnNum", "ItemName", 0, false},
	}
	for _, tt := range tests {
		got, ok := params.ParseTrailingIndex(tt.key, tt.prefix)
		assert.Equal(t, tt.ok, ok, tt.key)
		if tt.ok {
			assert.Equal(t, tt.want, got, tt.key)
		}
	}
}

func TestHashedKeyTable(t *testing.T) {
	table := params.BuildHashedKeyTable([]string{"ItemName", "ItemNum"}, 2, 3)

	m, ok := table.Lookup(params.NameOf("ItemName07"))
	require.True(t, ok)
	assert.Equal(t, "ItemName", m.Prefix)
	assert.Equal(t, 7, m.Index)

	m, ok = table.Lookup(params.NameOf("ItemNum123"))
	require.True(t, ok)
	assert.Equal(t, "ItemNum", m.Prefix)
	assert.Equal(t, 123, m.Index)

	_, ok = table.Lookup(params.NameOf("ColumnNum"))
	assert.False(t, ok)
}
