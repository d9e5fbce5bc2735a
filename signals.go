package prefs

import "github.com/zoobzio/capitan"

// Lifecycle signals.
var (
	// Loaded is emitted when preferences are read from a candidate path.
	Loaded = capitan.NewSignal(
		"prefs.loaded",
		"Preferences loaded from disk",
	)

	// LoadFailed is emitted when a candidate path fails with a
	// non-recoverable error. Loading continues with an empty table.
	LoadFailed = capitan.NewSignal(
		"prefs.load.failed",
		"Preferences load failed",
	)

	// Written is emitted after a successful flush to disk.
	Written = capitan.NewSignal(
		"prefs.written",
		"Preferences written to disk",
	)

	// WriteFailed is emitted when a flush fails. The dirty flag stays set
	// so the next flush retries.
	WriteFailed = capitan.NewSignal(
		"prefs.write.failed",
		"Preferences write failed",
	)

	// WatcherFailed is emitted when the directory watcher cannot be
	// created. Preferences degrade to write-only behavior.
	WatcherFailed = capitan.NewSignal(
		"prefs.watcher.failed",
		"Directory watcher unavailable",
	)

	// WatchStarted is emitted when Init establishes the external-change
	// watcher, carrying the configured poll interval.
	WatchStarted = capitan.NewSignal(
		"prefs.watch.started",
		"External change watching started",
	)
)

// Change signals.
var (
	// Changed is emitted once per semantic change to a key.
	Changed = capitan.NewSignal(
		"prefs.changed",
		"Preference key changed",
	)

	// Reconciled is emitted after external file changes are folded into
	// the in-memory state.
	Reconciled = capitan.NewSignal(
		"prefs.watch.reconciled",
		"External preferences changes applied",
	)

	// PollFailed is emitted when a poll for external changes is abandoned
	// due to a watcher or read error.
	PollFailed = capitan.NewSignal(
		"prefs.watch.poll.failed",
		"External change poll abandoned",
	)
)

// Parse signals.
var (
	// LineSkipped is emitted for each malformed line the parser drops.
	LineSkipped = capitan.NewSignal(
		"prefs.parse.line.skipped",
		"Malformed preferences line skipped",
	)

	// LegacyImported is emitted after a legacy JSON file is projected
	// onto current keys.
	LegacyImported = capitan.NewSignal(
		"prefs.legacy.imported",
		"Legacy preferences file imported",
	)
)
