// Package mods tracks installed mods: each is a directory of files
// plus a manifest naming every canonical path it touches.
package mods

import (
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/GingerAvalanche/ukmm/pkg/errors"
	"github.com/GingerAvalanche/ukmm/pkg/logging"
	"github.com/GingerAvalanche/ukmm/pkg/types"
)

const (
	// ManifestName is the per-mod manifest file.
	ManifestName = "manifest.yml"
	// disabledMarker, when present in a mod directory, keeps the mod
	// installed but excluded from merging and deployment.
	disabledMarker = ".disabled"
)

var log = logging.GetLogger("mods")

// Mod is one installed mod.
type Mod struct {
	Name     string
	Path     string
	Enabled  bool
	Manifest *types.Manifest
}

// Manager enumerates installed mods and answers manifest queries
// across them.
type Manager struct {
	fs   types.FS
	dir  string
	mods []*Mod
}

// NewManager scans dir for installed mods. Directories without a
// manifest are skipped with a warning rather than failing the scan.
func NewManager(fs types.FS, dir string) (*Manager, error) {
	m := &Manager{fs: fs, dir: dir}
	entries, err := fs.ReadDir(dir)
	if err != nil {
		// A missing mods directory just means nothing is installed.
		return m, nil
	}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		modPath := filepath.Join(dir, entry.Name())
		manifest, err := readManifest(fs, filepath.Join(modPath, ManifestName))
		if err != nil {
			log.Warn().Err(err).Str("mod", entry.Name()).Msg("skipping mod with unreadable manifest")
			continue
		}
		_, markerErr := fs.Stat(filepath.Join(modPath, disabledMarker))
		m.mods = append(m.mods, &Mod{
			Name:     entry.Name(),
			Path:     modPath,
			Enabled:  markerErr != nil,
			Manifest: manifest,
		})
	}
	sort.Slice(m.mods, func(i, j int) bool { return m.mods[i].Name < m.mods[j].Name })
	return m, nil
}

func readManifest(fs types.FS, path string) (*types.Manifest, error) {
	data, err := fs.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrModInvalid, "mod manifest %s unreadable", path)
	}
	manifest := types.NewManifest()
	if err := yaml.Unmarshal(data, manifest); err != nil {
		return nil, errors.Wrapf(err, errors.ErrModInvalid, "mod manifest %s malformed", path)
	}
	return manifest, nil
}

// Mods returns every installed mod, enabled or not, in name order.
func (m *Manager) Mods() []*Mod {
	return m.mods
}

// Enabled returns only the mods that participate in merging.
func (m *Manager) Enabled() []*Mod {
	out := make([]*Mod, 0, len(m.mods))
	for _, mod := range m.mods {
		if mod.Enabled {
			out = append(out, mod)
		}
	}
	return out
}

// Get looks a mod up by name.
func (m *Manager) Get(name string) (*Mod, bool) {
	for _, mod := range m.mods {
		if mod.Name == name {
			return mod, true
		}
	}
	return nil, false
}

// SetEnabled toggles a mod by creating or removing its disabled
// marker.
func (m *Manager) SetEnabled(name string, enabled bool) error {
	mod, ok := m.Get(name)
	if !ok {
		return errors.Newf(errors.ErrModNotFound, "mod %s is not installed", name)
	}
	if mod.Enabled == enabled {
		return nil
	}
	marker := filepath.Join(mod.Path, disabledMarker)
	if enabled {
		if err := m.fs.Remove(marker); err != nil {
			return errors.Wrapf(err, errors.ErrIOFailure, "failed to enable mod %s", name)
		}
	} else {
		if err := m.fs.WriteFile(marker, nil, 0o644); err != nil {
			return errors.Wrapf(err, errors.ErrIOFailure, "failed to disable mod %s", name)
		}
	}
	mod.Enabled = enabled
	log.Info().Str("mod", name).Bool("enabled", enabled).Msg("toggled mod")
	return nil
}

// TotalManifest unions the manifests of every enabled mod: the full
// set of files the merged tree should contain.
func (m *Manager) TotalManifest() *types.Manifest {
	total := types.NewManifest()
	for _, mod := range m.Enabled() {
		total.Extend(mod.Manifest)
	}
	return total
}

// ModsByManifest returns the enabled mods whose manifests name the
// given canonical path, in load order.
func (m *Manager) ModsByManifest(canon string) []*Mod {
	var out []*Mod
	for _, mod := range m.Enabled() {
		if _, ok := mod.Manifest.ContentFiles[canon]; ok {
			out = append(out, mod)
			continue
		}
		if _, ok := mod.Manifest.AocFiles[canon]; ok {
			out = append(out, mod)
		}
	}
	return out
}
