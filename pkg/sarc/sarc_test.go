package sarc_test

import (
	"testing"

	"github.com/GingerAvalanche/ukmm/pkg/errors"
	"github.com/GingerAvalanche/ukmm/pkg/sarc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	a := sarc.New()
	a.Add("Actor/Recipe/Armor_151_Upper.brecipe", []byte{1, 2, 3})
	a.Add("Actor/ShopData/Npc_TripMaster_00.bshop", []byte("shop data"))
	a.Add("Empty/File.bin", nil)

	data := a.ToBinary()
	a2, err := sarc.FromBinary(data)
	require.NoError(t, err)

	assert.Equal(t, a.Files(), a2.Files())
	for _, path := range a.Files() {
		want, _ := a.Get(path)
		got, ok := a2.Get(path)
		require.True(t, ok, path)
		assert.Equal(t, want, got, path)
	}
}

func TestGetMissing(t *testing.T) {
	a := sarc.New()
	_, ok := a.Get("nothing")
	assert.False(t, ok)
}

func TestFromBinaryMalformed(t *testing.T) {
	for _, data := range [][]byte{nil, []byte("NOPE"), []byte("SARC\x02\x00\x00\x00")} {
		_, err := sarc.FromBinary(data)
		require.Error(t, err)
		assert.True(t, errors.IsErrorCode(err, errors.ErrMalformed))
	}
}
