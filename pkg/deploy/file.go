// Package deploy tracks what the managed output tree is owed relative
// to the merged staging tree, checkpoints that pending work across
// runs, and executes it with the configured strategy.
package deploy

import (
	stderrors "errors"
	"path/filepath"
	"syscall"

	"github.com/GingerAvalanche/ukmm/pkg/errors"
	"github.com/GingerAvalanche/ukmm/pkg/types"
)

// shouldMove reports whether src still needs to land at dest: the
// destination is missing, is a directory where a file belongs, or its
// modification time differs. Content is never compared; the staging
// tree's mtimes are authoritative.
func shouldMove(fs types.FS, src, dest string) bool {
	srcInfo, err := fs.Stat(src)
	if err != nil {
		return false
	}
	destInfo, err := fs.Stat(dest)
	if err != nil {
		return true
	}
	if destInfo.IsDir() {
		return true
	}
	return !srcInfo.ModTime().Equal(destInfo.ModTime())
}

// copyFile copies src to dest byte for byte and stamps the copy with
// the source's modification time, so a later shouldMove sees it as
// settled.
func copyFile(fs types.FS, src, dest string) error {
	info, err := fs.Stat(src)
	if err != nil {
		return errors.Wrapf(err, errors.ErrIOFailure, "failed to stat %s", src)
	}
	data, err := fs.ReadFile(src)
	if err != nil {
		return errors.Wrapf(err, errors.ErrIOFailure, "failed to read %s", src)
	}
	if err := fs.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return errors.Wrapf(err, errors.ErrIOFailure, "failed to create parent of %s", dest)
	}
	if err := fs.WriteFile(dest, data, info.Mode().Perm()); err != nil {
		return errors.Wrapf(err, errors.ErrIOFailure, "failed to write %s", dest)
	}
	if err := fs.Chtimes(dest, info.ModTime(), info.ModTime()); err != nil {
		return errors.Wrapf(err, errors.ErrIOFailure, "failed to set times on %s", dest)
	}
	return nil
}

// hardLinkFile links src at dest, replacing any existing file. A link
// attempted across volumes fails with CROSS_VOLUME_LINK so the caller
// can tell the user to move the output or switch strategies.
func hardLinkFile(fs types.FS, src, dest string) error {
	if err := fs.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return errors.Wrapf(err, errors.ErrIOFailure, "failed to create parent of %s", dest)
	}
	if _, err := fs.Lstat(dest); err == nil {
		if err := fs.Remove(dest); err != nil {
			return errors.Wrapf(err, errors.ErrIOFailure, "failed to replace %s", dest)
		}
	}
	if err := fs.Link(src, dest); err != nil {
		if isCrossDevice(err) {
			return errors.Wrapf(err, errors.ErrCrossVolumeLink,
				"cannot hard link %s: source and output are on different volumes", dest)
		}
		return errors.Wrapf(err, errors.ErrIOFailure, "failed to link %s", dest)
	}
	return nil
}

func isCrossDevice(err error) bool {
	return stderrors.Is(err, syscall.EXDEV)
}
