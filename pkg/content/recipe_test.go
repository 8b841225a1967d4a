package content_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GingerAvalanche/ukmm/pkg/content"
	"github.com/GingerAvalanche/ukmm/pkg/errors"
	"github.com/GingerAvalanche/ukmm/pkg/params"
)

func testRecipePIO() *params.ParameterIO {
	pio := params.NewParameterIO()
	header := params.NewObject()
	header.Set("TableNum", params.Int(1))
	header.Set("Table01", params.String("Normal0"))
	pio.SetObject("Header", header)

	table := params.NewObject()
	table.Set("ColumnNum", params.Int(2))
	table.Set("ItemName01", params.String("Item_Fruit_A"))
	table.Set("ItemNum01", params.Int(3))
	table.Set("ItemName02", params.String("Item_Meat_01"))
	table.Set("ItemNum02", params.Int(1))
	pio.SetObject("Normal0", table)
	return pio
}

func TestRecipeDecode(t *testing.T) {
	recipe, err := content.RecipeFromParams(testRecipePIO())
	require.NoError(t, err)

	table, ok := recipe.Tables.Get("Normal0")
	require.True(t, ok)
	assert.Equal(t, 2, table.Items.Len())
	count, ok := table.Items.Get("Item_Fruit_A")
	require.True(t, ok)
	assert.Equal(t, int32(3), count)
}

func TestRecipeBinaryRoundTrip(t *testing.T) {
	recipe, err := content.RecipeFromParams(testRecipePIO())
	require.NoError(t, err)

	again, err := content.RecipeFromBinary(recipe.ToBinary())
	require.NoError(t, err)
	assert.True(t, recipe.Equal(again))
}

func TestRecipeZeroIndexedKeys(t *testing.T) {
	pio := params.NewParameterIO()
	header := params.NewObject()
	header.Set("TableNum", params.Int(1))
	header.Set("Table01", params.String("Normal0"))
	pio.SetObject("Header", header)

	table := params.NewObject()
	table.Set("ColumnNum", params.Int(2))
	table.Set("ItemName00", params.String("FirstItem"))
	table.Set("ItemNum00", params.Int(3))
	table.Set("ItemName01", params.String("SecondItem"))
	table.Set("ItemNum01", params.Int(1))
	pio.SetObject("Normal0", table)

	recipe, err := content.RecipeFromParams(pio)
	require.NoError(t, err)
	got, ok := recipe.Tables.Get("Normal0")
	require.True(t, ok)
	assert.Equal(t, []string{"FirstItem", "SecondItem"}, got.Items.Keys())
}

func TestRecipeHashedKeys(t *testing.T) {
	pio := params.NewParameterIO()
	header := params.NewObject()
	header.Set("TableNum", params.Int(1))
	header.Set("Table01", params.String("Normal0"))
	pio.SetObject("Header", header)

	// Keys stored as precomputed hashes rather than literal strings,
	// mixing two-digit and three-digit padding.
	table := params.NewObject()
	table.SetHashed(params.NameOf("ColumnNum"), params.Int(2))
	table.SetHashed(params.NameOf("ItemName02"), params.String("FirstItem"))
	table.SetHashed(params.NameOf("ItemNum02"), params.Int(3))
	table.SetHashed(params.NameOf("ItemName101"), params.String("SecondItem"))
	table.SetHashed(params.NameOf("ItemNum101"), params.Int(1))
	pio.SetObject("Normal0", table)

	recipe, err := content.RecipeFromParams(pio)
	require.NoError(t, err)
	got, ok := recipe.Tables.Get("Normal0")
	require.True(t, ok)
	require.Equal(t, 2, got.Items.Len())
	first, ok := got.Items.Get("FirstItem")
	require.True(t, ok)
	assert.Equal(t, int32(3), first)
	second, ok := got.Items.Get("SecondItem")
	require.True(t, ok)
	assert.Equal(t, int32(1), second)
}

func TestRecipeThreeDigitLegacyKeys(t *testing.T) {
	pio := params.NewParameterIO()
	header := params.NewObject()
	header.Set("TableNum", params.Int(1))
	header.Set("Table01", params.String("Normal0"))
	pio.SetObject("Header", header)

	table := params.NewObject()
	table.Set("ColumnNum", params.Int(1))
	table.Set("ItemName001", params.String("Item_Ore_A"))
	table.Set("ItemNum001", params.Int(5))
	pio.SetObject("Normal0", table)

	recipe, err := content.RecipeFromParams(pio)
	require.NoError(t, err)
	got, ok := recipe.Tables.Get("Normal0")
	require.True(t, ok)
	count, ok := got.Items.Get("Item_Ore_A")
	require.True(t, ok)
	assert.Equal(t, int32(5), count)
}

func TestRecipeMissingCount(t *testing.T) {
	pio := params.NewParameterIO()
	header := params.NewObject()
	header.Set("TableNum", params.Int(1))
	header.Set("Table01", params.String("Normal0"))
	pio.SetObject("Header", header)

	table := params.NewObject()
	table.Set("ColumnNum", params.Int(1))
	table.Set("ItemName01", params.String("Item_Fruit_A"))
	pio.SetObject("Normal0", table)

	_, err := content.RecipeFromParams(pio)
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrNotFound))
}

func TestRecipeMissingHeader(t *testing.T) {
	_, err := content.RecipeFromParams(params.NewParameterIO())
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrNotFound))
}

func TestRecipeDiffMerge(t *testing.T) {
	base, err := content.RecipeFromParams(testRecipePIO())
	require.NoError(t, err)

	modded, err := content.RecipeFromParams(testRecipePIO())
	require.NoError(t, err)
	table, _ := modded.Tables.Get("Normal0")
	table.Items.Set("Item_Fruit_A", 5)
	table.Items.Remove("Item_Meat_01")
	table.Items.Set("Item_Ore_A", 2)
	modded.Tables.Set("Normal0", table)

	diff := base.Diff(modded)
	merged := base.Merge(diff)
	assert.True(t, merged.Equal(modded))

	// Idempotence: applying the same patch twice changes nothing.
	assert.True(t, merged.Merge(diff).Equal(modded))
}
