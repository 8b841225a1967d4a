package reader_test

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GingerAvalanche/ukmm/pkg/compress"
	"github.com/GingerAvalanche/ukmm/pkg/errors"
	"github.com/GingerAvalanche/ukmm/pkg/filesystem"
	"github.com/GingerAvalanche/ukmm/pkg/reader"
	"github.com/GingerAvalanche/ukmm/pkg/sarc"
)

func writeDump(t *testing.T, files map[string][]byte) string {
	t.Helper()
	root := t.TempDir()
	for name, data := range files {
		full := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, data, 0o644))
	}
	return root
}

func TestGetBytesPriority(t *testing.T) {
	base := writeDump(t, map[string][]byte{
		"Actor/ActorInfo.product.sbyml": []byte("base"),
		"Pack/TitleBG.pack":             []byte("base-only"),
	})
	update := writeDump(t, map[string][]byte{
		"Actor/ActorInfo.product.sbyml": []byte("update"),
	})

	fs := filesystem.NewOS()
	r := reader.New(
		reader.NewUnpackedSource(fs, update),
		reader.NewUnpackedSource(fs, base),
	)

	data, err := r.GetBytes("Actor/ActorInfo.product.sbyml")
	require.NoError(t, err)
	assert.Equal(t, []byte("update"), data)

	data, err = r.GetBytes("Pack/TitleBG.pack")
	require.NoError(t, err)
	assert.Equal(t, []byte("base-only"), data)

	_, err = r.GetBytes("Missing/File.bin")
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrNotFound))
}

func TestGetBytesDecompresses(t *testing.T) {
	payload := []byte("some resource payload that compresses reasonably well well well")
	root := writeDump(t, map[string][]byte{
		"Ecosystem/StatusEffectList.sbyml": compress.Compress(payload),
	})

	r := reader.New(reader.NewUnpackedSource(filesystem.NewOS(), root))
	data, err := r.GetBytes("Ecosystem/StatusEffectList.sbyml")
	require.NoError(t, err)
	assert.Equal(t, payload, data)
}

func TestGetBytesNestedContainer(t *testing.T) {
	inner := sarc.New()
	inner.Add("Ecosystem/StatusEffectList.sbyml", compress.Compress([]byte("effects")))

	outer := sarc.New()
	outer.Add("Nest/Inner.pack", compress.Compress(inner.ToBinary()))
	outer.Add("Flat/File.bin", []byte("flat"))

	root := writeDump(t, map[string][]byte{
		"Pack/Bootup.pack": outer.ToBinary(),
	})

	r := reader.New(reader.NewUnpackedSource(filesystem.NewOS(), root))

	data, err := r.GetBytes("Pack/Bootup.pack//Flat/File.bin")
	require.NoError(t, err)
	assert.Equal(t, []byte("flat"), data)

	data, err = r.GetBytes("Pack/Bootup.pack//Nest/Inner.pack//Ecosystem/StatusEffectList.sbyml")
	require.NoError(t, err)
	assert.Equal(t, []byte("effects"), data)

	_, err = r.GetBytes("Pack/Bootup.pack//No/Such.bin")
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrNotFound))
}

func TestPackedSource(t *testing.T) {
	dump := sarc.New()
	dump.Add("Actor/ActorInfo.product.sbyml", []byte("packed"))
	dumpPath := filepath.Join(t.TempDir(), "dump.sarc")
	require.NoError(t, os.WriteFile(dumpPath, compress.Compress(dump.ToBinary()), 0o644))

	src, err := reader.NewPackedSourceFromFile(filesystem.NewOS(), dumpPath)
	require.NoError(t, err)

	r := reader.New(src)
	data, err := r.GetBytes("Actor/ActorInfo.product.sbyml")
	require.NoError(t, err)
	assert.Equal(t, []byte("packed"), data)
}

func TestFileExists(t *testing.T) {
	archive := sarc.New()
	archive.Add("Inner/File.bin", []byte("x"))
	root := writeDump(t, map[string][]byte{
		"Pack/Bootup.pack": archive.ToBinary(),
		"Flat.bin":         []byte("y"),
	})

	r := reader.New(reader.NewUnpackedSource(filesystem.NewOS(), root))
	assert.True(t, r.FileExists("Flat.bin"))
	assert.True(t, r.FileExists("Pack/Bootup.pack//Inner/File.bin"))
	assert.False(t, r.FileExists("Pack/Bootup.pack//Inner/Missing.bin"))
	assert.False(t, r.FileExists("Missing.bin"))
}

func TestConcurrentLookupsCoalesce(t *testing.T) {
	root := writeDump(t, map[string][]byte{
		"Actor/ActorInfo.product.sbyml": []byte("shared"),
	})
	r := reader.New(reader.NewUnpackedSource(filesystem.NewOS(), root))

	var wg sync.WaitGroup
	results := make([][]byte, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			data, err := r.GetBytes("Actor/ActorInfo.product.sbyml")
			assert.NoError(t, err)
			results[i] = data
		}(i)
	}
	wg.Wait()
	for _, data := range results {
		assert.Equal(t, []byte("shared"), data)
	}
}
