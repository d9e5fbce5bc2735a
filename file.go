package prefs

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/zoobzio/capitan"
)

// MaxFileSize is the hard cap on a preferences file. Larger files are
// rejected with ErrInvalidFileFormat.
const MaxFileSize = 32 * 1024

// ReadPreferencesFile reads the whole file under a shared advisory lock and
// returns its contents together with the file's modification time in
// nanoseconds since the epoch. The lock is released before returning.
func ReadPreferencesFile(path string) ([]byte, int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, classifyFSError(err)
	}
	defer f.Close() //nolint:errcheck // read-only handle

	if err := lockShared(f); err != nil {
		return nil, 0, fmt.Errorf("locking %s: %w", path, err)
	}
	defer unlockFile(f) //nolint:errcheck // release is best effort

	info, err := f.Stat()
	if err != nil {
		return nil, 0, classifyFSError(err)
	}
	if info.Size() > MaxFileSize {
		return nil, 0, fmt.Errorf("%w: %s is %d bytes, max %d",
			ErrInvalidFileFormat, path, info.Size(), MaxFileSize)
	}

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, 0, classifyFSError(err)
	}
	return data, info.ModTime().UnixNano(), nil
}

// WritePreferencesFile replaces the file's contents under an exclusive
// advisory lock. The file is created world-readable if absent. When
// mtimeNS is non-zero the file's modification time is set to it afterward,
// so the writer can recognize its own write on a later re-read.
func WritePreferencesFile(path string, data []byte, mtimeNS int64) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return classifyFSError(err)
	}

	if err := lockExclusive(f); err != nil {
		f.Close() //nolint:errcheck,gosec // nothing written yet
		return fmt.Errorf("locking %s: %w", path, err)
	}

	w := bufio.NewWriter(f)
	if _, err := w.Write(data); err != nil {
		unlockFile(f) //nolint:errcheck // release is best effort
		f.Close()     //nolint:errcheck,gosec // already failing
		return classifyFSError(err)
	}
	if err := w.Flush(); err != nil {
		unlockFile(f) //nolint:errcheck // release is best effort
		f.Close()     //nolint:errcheck,gosec // already failing
		return classifyFSError(err)
	}

	unlockFile(f) //nolint:errcheck // release is best effort
	if err := f.Close(); err != nil {
		return classifyFSError(err)
	}

	if mtimeNS != 0 {
		t := time.Unix(0, mtimeNS)
		if err := os.Chtimes(path, t, t); err != nil {
			return classifyFSError(err)
		}
	}
	return nil
}

// loadCandidatePaths tries each candidate path in priority order and
// returns the first table that reads successfully, along with the path it
// came from and that file's mtime. Paths ending in ".json" go through the
// legacy importer; everything else is parsed as the current format.
//
// Absent and permission-denied candidates are skipped silently. Any other
// failure abandons the load: the caller starts with an empty table.
func loadCandidatePaths(ctx context.Context, paths []string) (*Table, string, int64, error) {
	for _, path := range paths {
		data, mtime, err := ReadPreferencesFile(path)
		if err != nil {
			if recoverable(err) {
				continue
			}
			capitan.Emit(ctx, LoadFailed,
				KeyPath.Field(path),
				KeyError.Field(err.Error()),
			)
			return NewTable(), "", 0, err
		}

		var table *Table
		if strings.EqualFold(filepath.Ext(path), ".json") {
			table = ImportLegacyPreferences(ctx, data)
		} else {
			table = ParsePreferences(ctx, data)
		}

		capitan.Emit(ctx, Loaded,
			KeyPath.Field(path),
			KeyCount.Field(table.Size()),
		)
		return table, path, mtime, nil
	}

	return NewTable(), "", 0, nil
}
