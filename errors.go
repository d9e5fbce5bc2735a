package prefs

import (
	"errors"
	"io/fs"
)

// Sentinel errors surfaced by the file I/O and watcher layers. In-memory
// mutations are total and never return errors.
var (
	// ErrInvalidFileFormat is returned when a preferences file exceeds
	// MaxFileSize. Malformed lines never escalate to this; they are
	// skipped during parsing.
	ErrInvalidFileFormat = errors.New("invalid preferences file format")

	// ErrPathDoesNotExist is returned when a candidate path is absent.
	// Multi-path loading recovers from it by trying the next candidate.
	ErrPathDoesNotExist = errors.New("path does not exist")

	// ErrAccessDenied is returned when the filesystem refuses access.
	// Multi-path loading recovers from it by trying the next candidate.
	ErrAccessDenied = errors.New("access denied")

	// ErrWatcherLostSync is returned by a DirWatcher that can no longer
	// guarantee it observed every change. Callers should rescan manually.
	ErrWatcherLostSync = errors.New("watcher lost sync, rescan required")
)

// classifyFSError maps an OS error onto the sentinel kinds, or returns it
// unchanged when no kind applies.
func classifyFSError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, fs.ErrNotExist):
		return ErrPathDoesNotExist
	case errors.Is(err, fs.ErrPermission):
		return ErrAccessDenied
	default:
		return err
	}
}

// recoverable reports whether a load error just means "try the next
// candidate path".
func recoverable(err error) bool {
	return errors.Is(err, ErrPathDoesNotExist) || errors.Is(err, ErrAccessDenied)
}
