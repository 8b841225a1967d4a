package types

import "sort"

// Manifest is the set of canonical paths one mod touches, split into
// the base content tree and the downloadable-content tree.
type Manifest struct {
	ContentFiles map[string]struct{} `yaml:"content_files"`
	AocFiles     map[string]struct{} `yaml:"aoc_files"`
}

// NewManifest returns an empty manifest with both sets allocated.
func NewManifest() *Manifest {
	return &Manifest{
		ContentFiles: make(map[string]struct{}),
		AocFiles:     make(map[string]struct{}),
	}
}

// IsEmpty reports whether the manifest names no files at all.
func (m *Manifest) IsEmpty() bool {
	return len(m.ContentFiles) == 0 && len(m.AocFiles) == 0
}

// Extend unions other's paths into m.
func (m *Manifest) Extend(other *Manifest) {
	if m.ContentFiles == nil {
		m.ContentFiles = make(map[string]struct{}, len(other.ContentFiles))
	}
	if m.AocFiles == nil {
		m.AocFiles = make(map[string]struct{}, len(other.AocFiles))
	}
	for f := range other.ContentFiles {
		m.ContentFiles[f] = struct{}{}
	}
	for f := range other.AocFiles {
		m.AocFiles[f] = struct{}{}
	}
}

// SortedContent returns the content paths in sorted order.
func (m *Manifest) SortedContent() []string {
	return sortedKeys(m.ContentFiles)
}

// SortedAoc returns the downloadable-content paths in sorted order.
func (m *Manifest) SortedAoc() []string {
	return sortedKeys(m.AocFiles)
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// MarshalYAML renders each path set as a sorted sequence.
func (m Manifest) MarshalYAML() (interface{}, error) {
	return struct {
		ContentFiles []string `yaml:"content_files"`
		AocFiles     []string `yaml:"aoc_files"`
	}{
		ContentFiles: sortedKeys(m.ContentFiles),
		AocFiles:     sortedKeys(m.AocFiles),
	}, nil
}

// UnmarshalYAML accepts path sequences and rebuilds the sets.
func (m *Manifest) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var raw struct {
		ContentFiles []string `yaml:"content_files"`
		AocFiles     []string `yaml:"aoc_files"`
	}
	if err := unmarshal(&raw); err != nil {
		return err
	}
	m.ContentFiles = make(map[string]struct{}, len(raw.ContentFiles))
	for _, f := range raw.ContentFiles {
		m.ContentFiles[f] = struct{}{}
	}
	m.AocFiles = make(map[string]struct{}, len(raw.AocFiles))
	for _, f := range raw.AocFiles {
		m.AocFiles[f] = struct{}{}
	}
	return nil
}
