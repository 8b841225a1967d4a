package deploy

import (
	"gopkg.in/yaml.v3"

	"github.com/GingerAvalanche/ukmm/pkg/errors"
	"github.com/GingerAvalanche/ukmm/pkg/rstb"
	"github.com/GingerAvalanche/ukmm/pkg/types"
)

// PendingLog records everything the output tree is owed: copy and
// delete trees for both the content and downloadable-content roots,
// plus whether the size table needs redeploying.
type PendingLog struct {
	ContentCopies  *Folder `yaml:"content_copies"`
	AocCopies      *Folder `yaml:"aoc_copies"`
	ContentDeletes *Folder `yaml:"content_deletes"`
	AocDeletes     *Folder `yaml:"aoc_deletes"`
}

// NewPendingLog returns an empty log.
func NewPendingLog() *PendingLog {
	return &PendingLog{
		ContentCopies:  NewFolder(),
		AocCopies:      NewFolder(),
		ContentDeletes: NewFolder(),
		AocDeletes:     NewFolder(),
	}
}

// CompilePendingLog diffs the staging trees against the deployed
// trees and records every move and delete owed.
func CompilePendingLog(fs types.FS, sourceContent, sourceAoc, destContent, destAoc string) (*PendingLog, error) {
	contentCopies, err := CompileMoves(fs, sourceContent, destContent)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrIOFailure, "failed to compile pending content moves")
	}
	aocCopies, err := CompileMoves(fs, sourceAoc, destAoc)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrIOFailure, "failed to compile pending aoc moves")
	}
	contentDeletes, err := CompileDeletes(fs, destContent, sourceContent)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrIOFailure, "failed to compile pending content deletes")
	}
	aocDeletes, err := CompileDeletes(fs, destAoc, sourceAoc)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrIOFailure, "failed to compile pending aoc deletes")
	}
	return &PendingLog{
		ContentCopies:  contentCopies,
		AocCopies:      aocCopies,
		ContentDeletes: contentDeletes,
		AocDeletes:     aocDeletes,
	}, nil
}

// ExtendCopies folds a manifest's paths into the copy trees.
func (l *PendingLog) ExtendCopies(m *types.Manifest) {
	l.ContentCopies.Extend(m.SortedContent())
	l.AocCopies.Extend(m.SortedAoc())
}

// ExtendDeletes folds a manifest's paths into the delete trees.
func (l *PendingLog) ExtendDeletes(m *types.Manifest) {
	l.ContentDeletes.Extend(m.SortedContent())
	l.AocDeletes.Extend(m.SortedAoc())
}

// AddRSTB queues the size table itself for redeployment.
func (l *PendingLog) AddRSTB() {
	l.ContentCopies.Extend([]string{rstb.TablePath})
}

// HasSome reports whether anything at all is owed.
func (l *PendingLog) HasSome() bool {
	return !l.ContentCopies.IsEmpty() || !l.AocCopies.IsEmpty() ||
		!l.ContentDeletes.IsEmpty() || !l.AocDeletes.IsEmpty()
}

// Len counts every owed operation.
func (l *PendingLog) Len() int {
	return l.ContentCopies.Len() + l.AocCopies.Len() +
		l.ContentDeletes.Len() + l.AocDeletes.Len()
}

// Clear empties the log.
func (l *PendingLog) Clear() {
	*l = *NewPendingLog()
}

// legacyPendingLog is the retired checkpoint schema: two flat
// manifests instead of four trees.
type legacyPendingLog struct {
	Files  *types.Manifest `yaml:"files"`
	Delete *types.Manifest `yaml:"delete"`
}

// ParsePendingLog decodes a checkpoint. A checkpoint in the retired
// two-manifest schema is upgraded in place; anything unreadable
// yields a STALE_CHECKPOINT error so the caller can fall back to an
// empty log and recompute.
func ParsePendingLog(data []byte) (*PendingLog, error) {
	var probe map[string]interface{}
	if err := yaml.Unmarshal(data, &probe); err != nil {
		return nil, errors.Wrap(err, errors.ErrStaleCheckpoint, "pending log unreadable")
	}
	if _, legacy := probe["files"]; legacy {
		var old legacyPendingLog
		if err := yaml.Unmarshal(data, &old); err != nil {
			return nil, errors.Wrap(err, errors.ErrStaleCheckpoint, "legacy pending log unreadable")
		}
		log := NewPendingLog()
		if old.Files != nil {
			log.ExtendCopies(old.Files)
		}
		if old.Delete != nil {
			log.ExtendDeletes(old.Delete)
		}
		return log, nil
	}
	log := NewPendingLog()
	if err := yaml.Unmarshal(data, log); err != nil {
		return nil, errors.Wrap(err, errors.ErrStaleCheckpoint, "pending log unreadable")
	}
	if log.ContentCopies == nil || log.AocCopies == nil ||
		log.ContentDeletes == nil || log.AocDeletes == nil {
		return nil, errors.New(errors.ErrStaleCheckpoint, "pending log missing required trees")
	}
	return log, nil
}

// Marshal renders the checkpoint form.
func (l *PendingLog) Marshal() ([]byte, error) {
	data, err := yaml.Marshal(l)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrInternal, "failed to serialize pending log")
	}
	return data, nil
}
