// Package settings loads and persists user configuration: active
// platform, dump locations, and per-platform deployment options.
package settings

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	ukerr "github.com/GingerAvalanche/ukmm/pkg/errors"
	"github.com/GingerAvalanche/ukmm/pkg/types"
)

// DumpPaths locates the three game dumps a platform reads from. Any
// of them may be empty when that dump is absent.
type DumpPaths struct {
	Base   string `koanf:"base"`
	Update string `koanf:"update"`
	Aoc    string `koanf:"aoc"`
}

// DeployConfig holds per-platform deployment options. CemuRules
// controls writing a Cemu graphic pack rules file next to the
// deployed content tree (Wii U only).
type DeployConfig struct {
	Output    string `koanf:"output"`
	Method    string `koanf:"method"`
	CemuRules bool   `koanf:"cemu_rules"`
}

// PlatformSettings groups everything configured per platform.
type PlatformSettings struct {
	Dump   DumpPaths    `koanf:"dump"`
	Deploy DeployConfig `koanf:"deploy"`
}

// Settings is the full user configuration.
type Settings struct {
	CurrentMode string            `koanf:"current_mode"`
	StorageDir  string            `koanf:"storage_dir"`
	WiiU        *PlatformSettings `koanf:"wiiu"`
	Switch      *PlatformSettings `koanf:"switch"`
}

// DefaultPath returns the settings file location under the user
// config directory.
func DefaultPath() string {
	return filepath.Join(xdg.ConfigHome, "ukmm", "settings.toml")
}

// Load layers the embedded defaults with the settings file at path,
// when it exists.
func Load(path string) (*Settings, error) {
	k := koanf.New(".")

	if err := k.Load(&rawBytesProvider{bytes: defaultConfig}, toml.Parser()); err != nil {
		return nil, ukerr.Wrap(err, ukerr.ErrConfigLoad, "failed to load default settings")
	}
	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
			return nil, ukerr.Wrapf(err, ukerr.ErrConfigLoad, "failed to load settings from %s", path)
		}
	}

	var s Settings
	if err := k.Unmarshal("", &s); err != nil {
		return nil, ukerr.Wrap(err, ukerr.ErrConfigLoad, "failed to parse settings")
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate checks that enum-valued fields parse.
func (s *Settings) Validate() error {
	if _, err := types.ParsePlatform(s.CurrentMode); err != nil {
		return ukerr.Wrapf(err, ukerr.ErrConfigValid, "invalid current_mode %q", s.CurrentMode)
	}
	for _, p := range []*PlatformSettings{s.WiiU, s.Switch} {
		if p == nil || p.Deploy.Method == "" {
			continue
		}
		if _, err := types.ParseDeployMethod(p.Deploy.Method); err != nil {
			return ukerr.Wrapf(err, ukerr.ErrConfigValid, "invalid deploy method %q", p.Deploy.Method)
		}
	}
	return nil
}

// Save writes the settings as TOML at path, creating parent
// directories as needed.
func (s *Settings) Save(path string) error {
	platformMap := func(p *PlatformSettings) map[string]interface{} {
		if p == nil {
			return nil
		}
		return map[string]interface{}{
			"dump": map[string]interface{}{
				"base":   p.Dump.Base,
				"update": p.Dump.Update,
				"aoc":    p.Dump.Aoc,
			},
			"deploy": map[string]interface{}{
				"output":     p.Deploy.Output,
				"method":     p.Deploy.Method,
				"cemu_rules": p.Deploy.CemuRules,
			},
		}
	}
	raw := map[string]interface{}{
		"current_mode": s.CurrentMode,
		"storage_dir":  s.StorageDir,
	}
	if m := platformMap(s.WiiU); m != nil {
		raw["wiiu"] = m
	}
	if m := platformMap(s.Switch); m != nil {
		raw["switch"] = m
	}

	data, err := toml.Parser().Marshal(raw)
	if err != nil {
		return ukerr.Wrap(err, ukerr.ErrInternal, "failed to serialize settings")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return ukerr.Wrap(err, ukerr.ErrIOFailure, "failed to create settings directory")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return ukerr.Wrapf(err, ukerr.ErrIOFailure, "failed to write settings to %s", path)
	}
	return nil
}

// Platform returns the parsed active platform.
func (s *Settings) Platform() types.Platform {
	p, err := types.ParsePlatform(s.CurrentMode)
	if err != nil {
		// Validate runs at load time, so this cannot fail on a
		// loaded Settings.
		return types.PlatformWiiU
	}
	return p
}

// Current returns the active platform's settings, or nil when that
// platform is unconfigured.
func (s *Settings) Current() *PlatformSettings {
	if s.Platform() == types.PlatformSwitch {
		return s.Switch
	}
	return s.WiiU
}

// StoragePath resolves the mod storage root, defaulting to the user
// data directory.
func (s *Settings) StoragePath() string {
	if s.StorageDir != "" {
		return s.StorageDir
	}
	return filepath.Join(xdg.DataHome, "ukmm")
}

// PlatformDir is the per-platform subtree of the storage root.
func (s *Settings) PlatformDir() string {
	return filepath.Join(s.StoragePath(), s.CurrentMode)
}

// MergedDir holds the merged staging tree deployment reads from.
func (s *Settings) MergedDir() string {
	return filepath.Join(s.PlatformDir(), "merged")
}

// ModsDir holds the unpacked installed mods.
func (s *Settings) ModsDir() string {
	return filepath.Join(s.PlatformDir(), "mods")
}

// DeployMethod returns the active platform's parsed deploy method,
// defaulting to copy.
func (s *Settings) DeployMethod() types.DeployMethod {
	cur := s.Current()
	if cur == nil || cur.Deploy.Method == "" {
		return types.DeployCopy
	}
	m, err := types.ParseDeployMethod(cur.Deploy.Method)
	if err != nil {
		return types.DeployCopy
	}
	return m
}
