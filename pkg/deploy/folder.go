package deploy

import (
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/GingerAvalanche/ukmm/pkg/errors"
	"github.com/GingerAvalanche/ukmm/pkg/types"
)

// Folder is a recursive set of pending paths: files owed at this
// level plus subtrees owed below it.
type Folder struct {
	folders map[string]*Folder
	files   map[string]struct{}
}

// NewFolder returns an empty tree.
func NewFolder() *Folder {
	return &Folder{
		folders: make(map[string]*Folder),
		files:   make(map[string]struct{}),
	}
}

// AddFile records a file at this level.
func (f *Folder) AddFile(name string) {
	f.files[name] = struct{}{}
}

// Child returns the named subtree, creating it if absent.
func (f *Folder) Child(name string) *Folder {
	child, ok := f.folders[name]
	if !ok {
		child = NewFolder()
		f.folders[name] = child
	}
	return child
}

// Len counts every file in the tree.
func (f *Folder) Len() int {
	n := len(f.files)
	for _, child := range f.folders {
		n += child.Len()
	}
	return n
}

// IsEmpty reports whether the tree holds no files at any depth.
func (f *Folder) IsEmpty() bool {
	return f.Len() == 0
}

// prune drops subtrees that ended up holding nothing.
func (f *Folder) prune() {
	for name, child := range f.folders {
		child.prune()
		if child.IsEmpty() {
			delete(f.folders, name)
		}
	}
}

// Paths flattens the tree into sorted slash-joined relative paths.
func (f *Folder) Paths() []string {
	var out []string
	f.collect("", &out)
	sort.Strings(out)
	return out
}

func (f *Folder) collect(prefix string, out *[]string) {
	for name := range f.files {
		*out = append(*out, prefix+name)
	}
	for name, child := range f.folders {
		child.collect(prefix+name+"/", out)
	}
}

// Extend folds flat canonical paths into the tree. Splitting stops at
// the first segment containing a dot: mod content uses extensions on
// every file and never on directories, so that segment is the physical
// file and any trailing nested-archive path is dropped.
func (f *Folder) Extend(paths []string) {
	for _, p := range paths {
		node := f
		segments := strings.Split(p, "/")
		for i, seg := range segments {
			if seg == "" {
				continue
			}
			if strings.Contains(seg, ".") || i == len(segments)-1 {
				node.AddFile(seg)
				break
			}
			node = node.Child(seg)
		}
	}
}

// FromDir captures an existing directory tree in full.
func FromDir(fs types.FS, dir string) (*Folder, error) {
	f := NewFolder()
	entries, err := fs.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrIOFailure, "failed to read %s", dir)
	}
	for _, entry := range entries {
		if entry.IsDir() {
			child, err := FromDir(fs, filepath.Join(dir, entry.Name()))
			if err != nil {
				return nil, err
			}
			f.folders[entry.Name()] = child
		} else {
			f.AddFile(entry.Name())
		}
	}
	return f, nil
}

// CompileMoves walks source and records every file that is missing at
// the matching dest path or differs in modification time.
func CompileMoves(fs types.FS, source, dest string) (*Folder, error) {
	f := NewFolder()
	if _, err := fs.Stat(source); err != nil {
		return f, nil
	}
	entries, err := fs.ReadDir(source)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrIOFailure, "failed to read %s", source)
	}
	for _, entry := range entries {
		srcPath := filepath.Join(source, entry.Name())
		destPath := filepath.Join(dest, entry.Name())
		if entry.IsDir() {
			child, err := CompileMoves(fs, srcPath, destPath)
			if err != nil {
				return nil, err
			}
			if !child.IsEmpty() {
				f.folders[entry.Name()] = child
			}
		} else if shouldMove(fs, srcPath, destPath) {
			f.AddFile(entry.Name())
		}
	}
	return f, nil
}

// CompileDeletes walks dest and records every file with no
// counterpart in source.
func CompileDeletes(fs types.FS, dest, source string) (*Folder, error) {
	f := NewFolder()
	if _, err := fs.Stat(dest); err != nil {
		return f, nil
	}
	entries, err := fs.ReadDir(dest)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrIOFailure, "failed to read %s", dest)
	}
	for _, entry := range entries {
		destPath := filepath.Join(dest, entry.Name())
		srcPath := filepath.Join(source, entry.Name())
		if entry.IsDir() {
			child, err := CompileDeletes(fs, destPath, srcPath)
			if err != nil {
				return nil, err
			}
			if !child.IsEmpty() {
				f.folders[entry.Name()] = child
			}
		} else if _, err := fs.Stat(srcPath); err != nil {
			f.AddFile(entry.Name())
		}
	}
	return f, nil
}

// apply runs op for every file, fanning out files and subtrees at
// each level concurrently.
func (f *Folder) apply(srcRoot, destRoot string, op func(src, dest string) error) error {
	g := new(errgroup.Group)
	for name := range f.files {
		src := filepath.Join(srcRoot, filepath.FromSlash(name))
		dest := filepath.Join(destRoot, filepath.FromSlash(name))
		g.Go(func() error { return op(src, dest) })
	}
	for name, child := range f.folders {
		name, child := name, child
		g.Go(func() error {
			return child.apply(filepath.Join(srcRoot, name), filepath.Join(destRoot, name), op)
		})
	}
	return g.Wait()
}

// Copy materializes the tree from srcRoot into destRoot by copying.
func (f *Folder) Copy(fs types.FS, srcRoot, destRoot string) error {
	return f.apply(srcRoot, destRoot, func(src, dest string) error {
		return copyFile(fs, src, dest)
	})
}

// HardLink materializes the tree from srcRoot into destRoot by
// hard-linking.
func (f *Folder) HardLink(fs types.FS, srcRoot, destRoot string) error {
	return f.apply(srcRoot, destRoot, func(src, dest string) error {
		return hardLinkFile(fs, src, dest)
	})
}

// Delete removes the tree's files under destRoot. A directory is
// removed only after its recorded contents are gone and only if it is
// then empty; anything else still living there keeps it in place.
func (f *Folder) Delete(fs types.FS, destRoot string) error {
	g := new(errgroup.Group)
	for name := range f.files {
		dest := filepath.Join(destRoot, filepath.FromSlash(name))
		g.Go(func() error {
			if err := fs.Remove(dest); err != nil {
				if _, statErr := fs.Lstat(dest); statErr != nil {
					return nil
				}
				return errors.Wrapf(err, errors.ErrIOFailure, "failed to delete %s", dest)
			}
			return nil
		})
	}
	for name, child := range f.folders {
		name, child := name, child
		g.Go(func() error {
			dir := filepath.Join(destRoot, name)
			if err := child.Delete(fs, dir); err != nil {
				return err
			}
			entries, err := fs.ReadDir(dir)
			if err != nil {
				return nil
			}
			if len(entries) == 0 {
				if err := fs.Remove(dir); err != nil {
					return errors.Wrapf(err, errors.ErrIOFailure, "failed to remove %s", dir)
				}
			}
			return nil
		})
	}
	return g.Wait()
}

// folderYAML is the checkpoint shape for one tree level.
type folderYAML struct {
	Files   []string               `yaml:"files"`
	Folders map[string]*folderYAML `yaml:"folders"`
}

// MarshalYAML renders files sorted for stable checkpoints.
func (f *Folder) MarshalYAML() (interface{}, error) {
	return f.toYAML(), nil
}

func (f *Folder) toYAML() *folderYAML {
	out := &folderYAML{
		Files:   make([]string, 0, len(f.files)),
		Folders: make(map[string]*folderYAML, len(f.folders)),
	}
	for name := range f.files {
		out.Files = append(out.Files, name)
	}
	sort.Strings(out.Files)
	for name, child := range f.folders {
		out.Folders[name] = child.toYAML()
	}
	return out
}

// UnmarshalYAML rebuilds the tree from checkpoint form.
func (f *Folder) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var raw folderYAML
	if err := unmarshal(&raw); err != nil {
		return err
	}
	*f = *fromYAML(&raw)
	return nil
}

func fromYAML(raw *folderYAML) *Folder {
	f := NewFolder()
	for _, name := range raw.Files {
		f.AddFile(name)
	}
	for name, child := range raw.Folders {
		f.folders[name] = fromYAML(child)
	}
	return f
}
