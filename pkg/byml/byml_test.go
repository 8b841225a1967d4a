package byml_test

import (
	"testing"

	"github.com/GingerAvalanche/ukmm/pkg/byml"
	"github.com/GingerAvalanche/ukmm/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDoc() *byml.Node {
	pos := byml.NewMap().
		Set("X", byml.NewFloat(100.5)).
		Set("Y", byml.NewFloat(-20.25)).
		Set("Z", byml.NewFloat(3000))
	entry := byml.NewMap().
		Set("Map", byml.NewString("MainField")).
		Set("PosName", byml.NewString("Spot01")).
		Set("Translate", pos).
		Set("Priority", byml.NewInt(3)).
		Set("Enabled", byml.NewBool(true))
	return byml.NewMap().Set("StartPos", byml.NewArray(entry))
}

func TestBinaryRoundTrip(t *testing.T) {
	doc := sampleDoc()
	data := doc.ToBinary()
	doc2, err := byml.FromBinary(data)
	require.NoError(t, err)
	assert.True(t, doc.Equal(doc2))
	assert.Equal(t, data, doc2.ToBinary())
}

func TestKindErrors(t *testing.T) {
	n := byml.NewString("hello")
	_, err := n.AsArray()
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrMalformed))

	_, err = n.AsFloat()
	assert.True(t, errors.IsErrorCode(err, errors.ErrMalformed))
}

func TestIntCoercesToFloat(t *testing.T) {
	// Some historical map data stores vector components as ints.
	f, err := byml.NewInt(42).AsFloat()
	require.NoError(t, err)
	assert.Equal(t, float32(42), f)
}

func TestMapOrderPreserved(t *testing.T) {
	m := byml.NewMap().
		Set("Z", byml.NewInt(1)).
		Set("A", byml.NewInt(2))
	data := m.ToBinary()
	m2, err := byml.FromBinary(data)
	require.NoError(t, err)

	var keys []string
	iter, err := m2.AsMap()
	require.NoError(t, err)
	iter(func(key string, _ *byml.Node) bool {
		keys = append(keys, key)
		return true
	})
	assert.Equal(t, []string{"Z", "A"}, keys)
}

func TestFromBinaryMalformed(t *testing.T) {
	for _, data := range [][]byte{nil, []byte("XX"), []byte("BY\x07\x00\x01")} {
		_, err := byml.FromBinary(data)
		require.Error(t, err)
		assert.True(t, errors.IsErrorCode(err, errors.ErrMalformed))
	}
}
