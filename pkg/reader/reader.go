// Package reader resolves canonical resource paths against a set of
// game dump sources, transparently reaching into nested archives and
// decompressing wrapped payloads.
package reader

import (
	"path"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/GingerAvalanche/ukmm/pkg/compress"
	"github.com/GingerAvalanche/ukmm/pkg/errors"
	"github.com/GingerAvalanche/ukmm/pkg/logging"
	"github.com/GingerAvalanche/ukmm/pkg/sarc"
	"github.com/GingerAvalanche/ukmm/pkg/types"
)

// nestedSep splits a canonical path into a container path and a path
// inside that container, e.g. "Pack/Bootup.pack//Ecosystem/Status.sbyml".
const nestedSep = "//"

// defaultCacheTTL bounds how long an untouched cache entry survives.
const defaultCacheTTL = 5 * time.Minute

// Source is one place resource bytes can come from. The set of
// implementations is closed: an unpacked dump directory or a packed
// archive dump.
type Source interface {
	// Get returns the raw (possibly compressed) bytes for a dump-
	// relative path, or a NOT_FOUND error.
	Get(relPath string) ([]byte, error)
	// Exists reports whether the dump-relative path is present.
	Exists(relPath string) bool
}

// UnpackedSource reads from an extracted dump directory tree.
type UnpackedSource struct {
	fs   types.FS
	root string
}

func NewUnpackedSource(fs types.FS, root string) *UnpackedSource {
	return &UnpackedSource{fs: fs, root: root}
}

func (s *UnpackedSource) Get(relPath string) ([]byte, error) {
	data, err := s.fs.ReadFile(path.Join(s.root, relPath))
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrNotFound, "resource %s not in dump at %s", relPath, s.root)
	}
	return data, nil
}

func (s *UnpackedSource) Exists(relPath string) bool {
	_, err := s.fs.Stat(path.Join(s.root, relPath))
	return err == nil
}

// PackedSource reads from a single archive holding a dump.
type PackedSource struct {
	archive *sarc.Archive
}

func NewPackedSource(archive *sarc.Archive) *PackedSource {
	return &PackedSource{archive: archive}
}

// NewPackedSourceFromFile loads (and if needed decompresses) an
// archive dump from disk.
func NewPackedSourceFromFile(fs types.FS, archivePath string) (*PackedSource, error) {
	data, err := fs.ReadFile(archivePath)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrNotFound, "archive dump %s not found", archivePath)
	}
	raw, err := compress.DecompressIf(data)
	if err != nil {
		return nil, err
	}
	archive, err := sarc.FromBinary(raw)
	if err != nil {
		return nil, err
	}
	return &PackedSource{archive: archive}, nil
}

func (s *PackedSource) Get(relPath string) ([]byte, error) {
	data, ok := s.archive.Get(relPath)
	if !ok {
		return nil, errors.Newf(errors.ErrNotFound, "resource %s not in archive dump", relPath)
	}
	return data, nil
}

func (s *PackedSource) Exists(relPath string) bool {
	_, ok := s.archive.Get(relPath)
	return ok
}

// Reader resolves canonical paths against prioritized sources:
// downloadable content first, then the update dump, then the base
// dump. Results are cached with a bounded idle lifetime, and
// concurrent lookups for the same path coalesce into one fetch.
type Reader struct {
	sources []Source
	cache   *cache
	nested  *cache
	group   singleflight.Group
}

// New builds a reader over sources already ordered by priority. Nil
// sources are skipped so callers can pass absent dumps directly.
func New(sources ...Source) *Reader {
	r := &Reader{
		cache:  newCache(defaultCacheTTL),
		nested: newCache(defaultCacheTTL),
	}
	for _, s := range sources {
		if s != nil {
			r.sources = append(r.sources, s)
		}
	}
	log.Debug().Int("sources", len(r.sources)).Msg("resource reader ready")
	return r
}

// GetBytes returns the decompressed bytes for a canonical path,
// resolving nested container paths recursively.
func (r *Reader) GetBytes(canon string) ([]byte, error) {
	if cached, ok := r.cache.get(canon); ok {
		return cached, nil
	}
	data, err, _ := r.group.Do(canon, func() (interface{}, error) {
		if cached, ok := r.cache.get(canon); ok {
			return cached, nil
		}
		data, err := r.resolve(canon)
		if err != nil {
			return nil, err
		}
		r.cache.put(canon, data)
		return data, nil
	})
	if err != nil {
		return nil, err
	}
	return data.([]byte), nil
}

func (r *Reader) resolve(canon string) ([]byte, error) {
	if outer, inner, ok := strings.Cut(canon, nestedSep); ok {
		return r.resolveNested(outer, inner)
	}
	for _, src := range r.sources {
		data, err := src.Get(canon)
		if err != nil {
			if errors.IsErrorCode(err, errors.ErrNotFound) {
				continue
			}
			return nil, err
		}
		return compress.DecompressIf(data)
	}
	return nil, errors.Newf(errors.ErrNotFound, "resource %s not found in any source", canon)
}

func (r *Reader) resolveNested(outer, inner string) ([]byte, error) {
	archive, err := r.openContainer(outer)
	if err != nil {
		return nil, err
	}
	// Containers nest: the inner path may itself address a container.
	if deeper, rest, ok := strings.Cut(inner, nestedSep); ok {
		data, ok2 := archive.Get(deeper)
		if !ok2 {
			return nil, errors.Newf(errors.ErrNotFound, "%s not in container %s", deeper, outer)
		}
		return resolveInArchiveBytes(data, rest, path.Join(outer, deeper))
	}
	data, ok := archive.Get(inner)
	if !ok {
		return nil, errors.Newf(errors.ErrNotFound, "%s not in container %s", inner, outer)
	}
	return compress.DecompressIf(data)
}

func resolveInArchiveBytes(raw []byte, rest, where string) ([]byte, error) {
	decompressed, err := compress.DecompressIf(raw)
	if err != nil {
		return nil, err
	}
	archive, err := sarc.FromBinary(decompressed)
	if err != nil {
		return nil, err
	}
	if deeper, deeperRest, ok := strings.Cut(rest, nestedSep); ok {
		data, ok2 := archive.Get(deeper)
		if !ok2 {
			return nil, errors.Newf(errors.ErrNotFound, "%s not in container %s", deeper, where)
		}
		return resolveInArchiveBytes(data, deeperRest, path.Join(where, deeper))
	}
	data, ok := archive.Get(rest)
	if !ok {
		return nil, errors.Newf(errors.ErrNotFound, "%s not in container %s", rest, where)
	}
	return compress.DecompressIf(data)
}

// openContainer fetches and parses an archive, with its own cache so
// repeated lookups inside one pack parse it once.
func (r *Reader) openContainer(canon string) (*sarc.Archive, error) {
	if cached, ok := r.nested.get(canon); ok {
		return sarc.FromBinary(cached)
	}
	data, err := r.GetBytes(canon)
	if err != nil {
		return nil, err
	}
	archive, err := sarc.FromBinary(data)
	if err != nil {
		return nil, err
	}
	r.nested.put(canon, data)
	return archive, nil
}

// FileExists reports whether the canonical path resolves in any
// source, without decoding it.
func (r *Reader) FileExists(canon string) bool {
	if _, ok := r.cache.get(canon); ok {
		return true
	}
	if outer, inner, ok := strings.Cut(canon, nestedSep); ok {
		archive, err := r.openContainer(outer)
		if err != nil {
			return false
		}
		if deeper, _, nested := strings.Cut(inner, nestedSep); nested {
			_, ok := archive.Get(deeper)
			if !ok {
				return false
			}
			_, err := r.GetBytes(outer + nestedSep + inner)
			return err == nil
		}
		_, ok := archive.Get(inner)
		return ok
	}
	for _, src := range r.sources {
		if src.Exists(canon) {
			return true
		}
	}
	return false
}

var log = logging.GetLogger("reader")
