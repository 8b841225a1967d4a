package deploy

import (
	_ "embed"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/GingerAvalanche/ukmm/pkg/compress"
	"github.com/GingerAvalanche/ukmm/pkg/errors"
	"github.com/GingerAvalanche/ukmm/pkg/logging"
	"github.com/GingerAvalanche/ukmm/pkg/mods"
	"github.com/GingerAvalanche/ukmm/pkg/rstb"
	"github.com/GingerAvalanche/ukmm/pkg/settings"
	"github.com/GingerAvalanche/ukmm/pkg/types"
)

//go:embed assets/rules.txt
var cemuRules []byte

// LogName is the checkpoint file recording pending work, stored in
// the platform directory.
const LogName = "pending.yml"

var log = logging.GetLogger("deploy")

// Manager owns the pending log: it computes what the output tree is
// owed, checkpoints it across runs, and executes it.
type Manager struct {
	fs       types.FS
	settings *settings.Settings
	mods     *mods.Manager

	mu      sync.RWMutex
	pending *PendingLog
}

// NewManager loads any existing checkpoint. A checkpoint that cannot
// be parsed, even as the retired schema, is discarded with a warning
// and the log starts empty.
func NewManager(fs types.FS, s *settings.Settings, m *mods.Manager) *Manager {
	mgr := &Manager{fs: fs, settings: s, mods: m, pending: NewPendingLog()}
	data, err := fs.ReadFile(mgr.logPath())
	if err != nil {
		log.Info().Msg("no files pending deployment")
		return mgr
	}
	pending, err := ParsePendingLog(data)
	if err != nil {
		log.Warn().Err(err).Msg("could not load pending deployment data, starting clean")
		return mgr
	}
	if pending.HasSome() {
		log.Info().Int("files", pending.Len()).Msg("pending deployment data found")
	}
	mgr.pending = pending
	return mgr
}

func (m *Manager) logPath() string {
	return filepath.Join(m.settings.PlatformDir(), LogName)
}

// sourcePaths returns the staging content and aoc roots.
func (m *Manager) sourcePaths() (content, aoc string) {
	prefContent, prefAoc := m.settings.Platform().Prefixes()
	merged := m.settings.MergedDir()
	return filepath.Join(merged, prefContent), filepath.Join(merged, prefAoc)
}

// outputPaths returns the deployed content and aoc roots.
func (m *Manager) outputPaths() (content, aoc string, err error) {
	cur := m.settings.Current()
	if cur == nil || cur.Deploy.Output == "" {
		return "", "", errors.New(errors.ErrConfigValid, "no deployment output configured for current platform")
	}
	prefContent, prefAoc := m.settings.Platform().Prefixes()
	return filepath.Join(cur.Deploy.Output, prefContent), filepath.Join(cur.Deploy.Output, prefAoc), nil
}

// Pending reports whether anything is owed.
func (m *Manager) Pending() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.pending.HasSome()
}

// PendingLen counts owed operations.
func (m *Manager) PendingLen() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.pending.Len()
}

// PendingReport is a flat snapshot of the owed paths, grouped by tree.
type PendingReport struct {
	ContentCopies  []string
	AocCopies      []string
	ContentDeletes []string
	AocDeletes     []string
}

// Report flattens the pending trees for display.
func (m *Manager) Report() PendingReport {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return PendingReport{
		ContentCopies:  m.pending.ContentCopies.Paths(),
		AocCopies:      m.pending.AocCopies.Paths(),
		ContentDeletes: m.pending.ContentDeletes.Paths(),
		AocDeletes:     m.pending.AocDeletes.Paths(),
	}
}

// ResetPending rebuilds the log from scratch by diffing the staging
// trees against the deployed trees.
func (m *Manager) ResetPending() error {
	destContent, destAoc, err := m.outputPaths()
	if err != nil {
		return err
	}
	srcContent, srcAoc := m.sourcePaths()
	pending, err := CompilePendingLog(m.fs, srcContent, srcAoc, destContent, destAoc)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.pending = pending
	m.mu.Unlock()
	return m.Save()
}

// Save checkpoints the log so an interrupted session owes the same
// work next run.
func (m *Manager) Save() error {
	m.mu.RLock()
	data, err := m.pending.Marshal()
	m.mu.RUnlock()
	if err != nil {
		return err
	}
	if err := m.fs.MkdirAll(m.settings.PlatformDir(), 0o755); err != nil {
		return errors.Wrap(err, errors.ErrIOFailure, "failed to create platform directory")
	}
	if err := m.fs.WriteFile(m.logPath(), data, 0o644); err != nil {
		return errors.Wrap(err, errors.ErrIOFailure, "failed to write pending log")
	}
	return nil
}

// Apply folds a freshly merged manifest into the pending log: its
// files are owed as copies, and files no active mod still claims are
// orphans, removed from staging and owed as deletes.
func (m *Manager) Apply(manifest *types.Manifest) error {
	total := m.mods.TotalManifest()
	if err := m.handleOrphans(total, manifest); err != nil {
		return err
	}
	m.mu.Lock()
	m.pending.ExtendCopies(manifest)
	m.mu.Unlock()
	return m.Save()
}

// handleOrphans queues manifest−total for deletion, physically
// removes those files from the staging tree along with now-empty
// parents, and shrinks manifest to its still-valid portion.
func (m *Manager) handleOrphans(total, manifest *types.Manifest) error {
	orphans := types.NewManifest()
	for f := range manifest.ContentFiles {
		if _, ok := total.ContentFiles[f]; !ok {
			orphans.ContentFiles[f] = struct{}{}
		}
	}
	for f := range manifest.AocFiles {
		if _, ok := total.AocFiles[f]; !ok {
			orphans.AocFiles[f] = struct{}{}
		}
	}
	if orphans.IsEmpty() {
		log.Debug().Msg("no orphans")
		return nil
	}
	log.Debug().
		Strs("content", orphans.SortedContent()).
		Strs("aoc", orphans.SortedAoc()).
		Msg("orphans to delete")

	for f := range orphans.ContentFiles {
		delete(manifest.ContentFiles, f)
	}
	for f := range orphans.AocFiles {
		delete(manifest.AocFiles, f)
	}

	m.mu.Lock()
	m.pending.ExtendDeletes(orphans)
	m.mu.Unlock()

	prefContent, prefAoc := m.settings.Platform().Prefixes()
	merged := m.settings.MergedDir()
	for _, group := range []struct {
		root  string
		files []string
	}{
		{filepath.Join(merged, prefContent), orphans.SortedContent()},
		{filepath.Join(merged, prefAoc), orphans.SortedAoc()},
	} {
		for _, f := range group.files {
			target := filepath.Join(group.root, physicalPath(f))
			if _, err := m.fs.Lstat(target); err == nil {
				if err := m.fs.Remove(target); err != nil {
					return errors.Wrapf(err, errors.ErrIOFailure, "failed to delete orphan %s", f)
				}
			}
			parent := filepath.Dir(target)
			if entries, err := m.fs.ReadDir(parent); err == nil && len(entries) == 0 {
				_ = m.fs.RemoveAll(parent)
			}
		}
	}
	log.Info().Msg("deleted orphans")
	return nil
}

// physicalPath strips any nested-archive suffix from a canonical
// path, leaving the file that actually exists on disk.
func physicalPath(canon string) string {
	if outer, _, ok := strings.Cut(canon, "//"); ok {
		return filepath.FromSlash(outer)
	}
	return filepath.FromSlash(canon)
}

// ApplyRSTB folds size updates into the staged size table, never
// lowering a recorded size, and queues the table for redeployment.
func (m *Manager) ApplyRSTB(updates map[string]*uint32) error {
	prefContent, _ := m.settings.Platform().Prefixes()
	tablePath := filepath.Join(m.settings.MergedDir(), prefContent, filepath.FromSlash(rstb.TablePath))

	table := rstb.New()
	if data, err := m.fs.ReadFile(tablePath); err == nil {
		raw, err := compress.DecompressIf(data)
		if err != nil {
			return errors.Wrap(err, errors.ErrMalformed, "failed to decompress staged size table")
		}
		if table, err = rstb.FromBinary(raw); err != nil {
			return errors.Wrap(err, errors.ErrMalformed, "failed to parse staged size table")
		}
		log.Debug().Msg("updating existing staged size table")
	} else {
		log.Debug().Msg("creating new size table")
	}

	table.Apply(updates)

	if err := m.fs.MkdirAll(filepath.Dir(tablePath), 0o755); err != nil {
		return errors.Wrap(err, errors.ErrIOFailure, "failed to create size table directory")
	}
	if err := m.fs.WriteFile(tablePath, compress.Compress(table.ToBinary()), 0o644); err != nil {
		return errors.Wrap(err, errors.ErrIOFailure, "failed to write staged size table")
	}

	m.mu.Lock()
	m.pending.AddRSTB()
	m.mu.Unlock()
	return m.Save()
}

// Deploy executes the pending log with the configured strategy and
// clears it on success. Deletes run before copies so a file can be
// replaced by a directory of the same name, or vice versa.
func (m *Manager) Deploy() error {
	cur := m.settings.Current()
	if cur == nil || cur.Deploy.Output == "" {
		return errors.New(errors.ErrConfigValid, "no deployment output configured for current platform")
	}
	destContent, destAoc, err := m.outputPaths()
	if err != nil {
		return err
	}
	srcContent, srcAoc := m.sourcePaths()

	// An older release symlinked the whole output directory.
	if m.isSymlink(cur.Deploy.Output) {
		log.Info().Msg("removing whole-output symlink from old deployment behavior")
		if err := m.fs.Remove(cur.Deploy.Output); err != nil {
			return errors.Wrap(err, errors.ErrIOFailure, "failed to remove old output symlink")
		}
	}

	method := m.settings.DeployMethod()
	if method == types.DeploySymlink {
		if err := m.deploySymlinks(srcContent, destContent, srcAoc, destAoc); err != nil {
			return err
		}
	} else {
		if err := m.deployFiles(method, srcContent, destContent, srcAoc, destAoc); err != nil {
			return err
		}
	}

	if m.settings.Platform() == types.PlatformWiiU && cur.Deploy.CemuRules {
		rulesPath := filepath.Join(filepath.Dir(destContent), "rules.txt")
		if _, err := m.fs.Stat(rulesPath); err != nil {
			if err := m.fs.WriteFile(rulesPath, cemuRules, 0o644); err != nil {
				return errors.Wrap(err, errors.ErrIOFailure, "failed to write graphic pack rules")
			}
		}
	}

	m.mu.Lock()
	m.pending.Clear()
	m.mu.Unlock()
	log.Info().Msg("deployment complete")
	return m.Save()
}

// deployFiles applies deletes then copies using copy or hard links.
func (m *Manager) deployFiles(method types.DeployMethod, srcContent, destContent, srcAoc, destAoc string) error {
	// Leftover links from a previous symlink deployment would make
	// the copy write into the staging tree.
	for _, dest := range []string{destContent, m.aocLinkPath(destAoc)} {
		if m.isSymlink(dest) {
			if err := m.fs.Remove(dest); err != nil {
				return errors.Wrapf(err, errors.ErrIOFailure, "failed to remove old symlink %s", dest)
			}
		}
	}
	for _, dest := range []string{destContent, destAoc} {
		if err := m.fs.MkdirAll(dest, 0o755); err != nil {
			return errors.Wrapf(err, errors.ErrIOFailure, "failed to create %s", dest)
		}
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	log.Info().Str("method", string(method)).Int("files", m.pending.Len()).Msg("deploying")

	if err := m.pending.ContentDeletes.Delete(m.fs, destContent); err != nil {
		return err
	}
	if err := m.pending.AocDeletes.Delete(m.fs, destAoc); err != nil {
		return err
	}
	if method == types.DeployHardLink {
		if err := m.pending.ContentCopies.HardLink(m.fs, srcContent, destContent); err != nil {
			return err
		}
		return m.pending.AocCopies.HardLink(m.fs, srcAoc, destAoc)
	}
	if err := m.pending.ContentCopies.Copy(m.fs, srcContent, destContent); err != nil {
		return err
	}
	return m.pending.AocCopies.Copy(m.fs, srcAoc, destAoc)
}

// aocLinkPath returns the path that gets symlinked for the aoc tree.
// On Wii U the link target is the aoc root, not the title subfolder.
func (m *Manager) aocLinkPath(destAoc string) string {
	if m.settings.Platform() == types.PlatformWiiU {
		return filepath.Dir(destAoc)
	}
	return destAoc
}

func (m *Manager) aocLinkSource(srcAoc string) string {
	if m.settings.Platform() == types.PlatformWiiU {
		return filepath.Dir(srcAoc)
	}
	return srcAoc
}

// deploySymlinks replaces each output subtree wholesale with a link
// into staging. A link already pointing at the right place is left
// alone; a real directory in the way is deleted with a warning.
func (m *Manager) deploySymlinks(srcContent, destContent, srcAoc, destAoc string) error {
	for _, pair := range []struct {
		src, dest, kind string
	}{
		{srcContent, destContent, "content"},
		{m.aocLinkSource(srcAoc), m.aocLinkPath(destAoc), "aoc"},
	} {
		srcExists := m.exists(pair.src)
		destExists := m.lexists(pair.dest)

		if srcExists {
			if err := m.fs.MkdirAll(filepath.Dir(pair.dest), 0o755); err != nil {
				return errors.Wrapf(err, errors.ErrIOFailure, "failed to create parent of %s", pair.dest)
			}
		}
		if destExists && !m.isSymlink(pair.dest) {
			log.Warn().Str("dir", pair.dest).Msgf("removing real %s directory to deploy link", pair.kind)
			if err := m.fs.RemoveAll(pair.dest); err != nil {
				return errors.Wrapf(err, errors.ErrIOFailure, "failed to remove old %s folder", pair.kind)
			}
			destExists = false
		}

		switch {
		case srcExists && !destExists:
			log.Info().Str("dir", pair.dest).Msgf("creating %s link", pair.kind)
			if err := m.fs.Symlink(pair.src, pair.dest); err != nil {
				return errors.Wrapf(err, errors.ErrIOFailure, "failed to link %s folder", pair.kind)
			}
		case !srcExists && destExists:
			log.Info().Msgf("no %s files, removing link", pair.kind)
			if err := m.fs.Remove(pair.dest); err != nil {
				return errors.Wrapf(err, errors.ErrIOFailure, "failed to remove stale %s link", pair.kind)
			}
		case srcExists && destExists:
			if target, err := m.fs.Readlink(pair.dest); err == nil && target == pair.src {
				log.Debug().Msgf("%s link already correct", pair.kind)
				continue
			}
			log.Info().Msgf("refreshing %s link", pair.kind)
			if err := m.fs.Remove(pair.dest); err != nil {
				return errors.Wrapf(err, errors.ErrIOFailure, "failed to remove outdated %s link", pair.kind)
			}
			if err := m.fs.Symlink(pair.src, pair.dest); err != nil {
				return errors.Wrapf(err, errors.ErrIOFailure, "failed to relink %s folder", pair.kind)
			}
		}
	}
	return nil
}

func (m *Manager) isSymlink(path string) bool {
	info, err := m.fs.Lstat(path)
	return err == nil && info.Mode()&os.ModeSymlink != 0
}

func (m *Manager) exists(path string) bool {
	_, err := m.fs.Stat(path)
	return err == nil
}

// lexists is true even for dangling symlinks.
func (m *Manager) lexists(path string) bool {
	_, err := m.fs.Lstat(path)
	return err == nil
}
