package mods_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GingerAvalanche/ukmm/pkg/filesystem"
	"github.com/GingerAvalanche/ukmm/pkg/mods"
)

func installMod(t *testing.T, dir, name, manifest string) {
	t.Helper()
	modDir := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(modDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(modDir, mods.ManifestName), []byte(manifest), 0o644))
}

const manifestA = `content_files:
  - Actor/Pack/Npc.sbactorpack
  - Pack/Bootup.pack
aoc_files:
  - Map/MainField/A-1.smubin
`

const manifestB = `content_files:
  - Pack/Bootup.pack
  - System/Version.txt
aoc_files: []
`

func TestManagerScan(t *testing.T) {
	dir := t.TempDir()
	installMod(t, dir, "second_mod", manifestB)
	installMod(t, dir, "first_mod", manifestA)
	// A stray file and a dir with no manifest are both skipped.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "broken"), 0o755))

	m, err := mods.NewManager(filesystem.NewOS(), dir)
	require.NoError(t, err)

	all := m.Mods()
	require.Len(t, all, 2)
	assert.Equal(t, "first_mod", all[0].Name)
	assert.Equal(t, "second_mod", all[1].Name)
	assert.True(t, all[0].Enabled)
}

func TestManagerMissingDir(t *testing.T) {
	m, err := mods.NewManager(filesystem.NewOS(), filepath.Join(t.TempDir(), "nope"))
	require.NoError(t, err)
	assert.Empty(t, m.Mods())
	assert.True(t, m.TotalManifest().IsEmpty())
}

func TestSetEnabled(t *testing.T) {
	dir := t.TempDir()
	installMod(t, dir, "first_mod", manifestA)

	m, err := mods.NewManager(filesystem.NewOS(), dir)
	require.NoError(t, err)
	require.NoError(t, m.SetEnabled("first_mod", false))

	// The marker persists across rescans.
	m2, err := mods.NewManager(filesystem.NewOS(), dir)
	require.NoError(t, err)
	mod, ok := m2.Get("first_mod")
	require.True(t, ok)
	assert.False(t, mod.Enabled)
	assert.Empty(t, m2.Enabled())

	require.NoError(t, m2.SetEnabled("first_mod", true))
	assert.Len(t, m2.Enabled(), 1)

	err = m2.SetEnabled("missing", true)
	assert.Error(t, err)
}

func TestTotalManifest(t *testing.T) {
	dir := t.TempDir()
	installMod(t, dir, "first_mod", manifestA)
	installMod(t, dir, "second_mod", manifestB)

	m, err := mods.NewManager(filesystem.NewOS(), dir)
	require.NoError(t, err)

	total := m.TotalManifest()
	assert.Equal(t, []string{
		"Actor/Pack/Npc.sbactorpack",
		"Pack/Bootup.pack",
		"System/Version.txt",
	}, total.SortedContent())
	assert.Equal(t, []string{"Map/MainField/A-1.smubin"}, total.SortedAoc())

	// Disabling a mod removes its files from the union.
	require.NoError(t, m.SetEnabled("first_mod", false))
	total = m.TotalManifest()
	assert.Equal(t, []string{"Pack/Bootup.pack", "System/Version.txt"}, total.SortedContent())
	assert.Empty(t, total.SortedAoc())
}

func TestModsByManifest(t *testing.T) {
	dir := t.TempDir()
	installMod(t, dir, "first_mod", manifestA)
	installMod(t, dir, "second_mod", manifestB)

	m, err := mods.NewManager(filesystem.NewOS(), dir)
	require.NoError(t, err)

	shared := m.ModsByManifest("Pack/Bootup.pack")
	require.Len(t, shared, 2)
	only := m.ModsByManifest("Map/MainField/A-1.smubin")
	require.Len(t, only, 1)
	assert.Equal(t, "first_mod", only[0].Name)
	assert.Empty(t, m.ModsByManifest("Nothing/Here.bin"))
}
