//go:build unix

package prefs

import (
	"os"

	"golang.org/x/sys/unix"
)

// Advisory locking via flock(2). Locks are cooperative: every process
// accessing the preferences file takes a shared lock to read and an
// exclusive lock to write, which serializes cross-process access. Calls
// block until the lock is granted.

func lockShared(f *os.File) error {
	return unix.Flock(int(f.Fd()), unix.LOCK_SH)
}

func lockExclusive(f *os.File) error {
	return unix.Flock(int(f.Fd()), unix.LOCK_EX)
}

func unlockFile(f *os.File) error {
	return unix.Flock(int(f.Fd()), unix.LOCK_UN)
}
