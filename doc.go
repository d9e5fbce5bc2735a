/*
Package prefs is a process-wide, file-backed, multi-value preference store
with live change notifications.

prefs is designed to be embedded in a plugin host: one Preferences is
created at startup, shared by every plugin instance in the process, mutated
from a single designated goroutine, and torn down at shutdown. The backing
file may be read and written concurrently by other processes; advisory file
locks and mtime tracking keep every process converging on the most recent
writer's view.

# Basic Usage

Create and initialize from a list of candidate paths, most preferred first.
The first candidate is the official write path; later candidates are
fallbacks, and a ".json" candidate is imported from the legacy format:

	p := prefs.New()
	err := p.Init(ctx, []string{
	    "/home/me/.config/floe/preferences.ini",
	    "/home/me/.config/floe/settings.json", // legacy
	})

Read through descriptors, which bundle the expected type, a validator and a
default so callers never observe out-of-contract values:

	width, isDefault := prefs.GetInt(p.Table(), prefs.WindowWidthDescriptor)

Mutate; every semantic change sets the dirty flag and invokes the listener
exactly once with the post-change state:

	p.SetOnChange(func(key prefs.Key, head *prefs.ValueNode) {
	    if v, ok := prefs.Match(key, head, prefs.ShowKeyboardDescriptor); ok {
	        gui.SetKeyboardVisible(v)
	    }
	})
	p.SetValue(prefs.ShowKeyboardKey, prefs.BoolValue(false), prefs.SetValueOptions{})

Drive persistence and cross-process reconciliation from a periodic tick:

	p.PollForExternalChanges(ctx, prefs.PollOptions{})
	p.WriteIfNeeded(ctx)

# Multi-Value Keys

A key holds an unordered, duplicate-free list of values. AddValue and
RemoveValue manage list membership; SetValue collapses the list to a single
value. A key can also be explicitly cleared, which is distinct from being
absent: a cleared key is present with a nil value list.

	p.AddValue(prefs.ExtraLibrariesFolderKey, prefs.StringValue("/mnt/libs"), prefs.SetValueOptions{})

# On-Disk Format

The file is line-oriented UTF-8 text: "key = value" pairs, "[section]"
headers, ";" comments. Values are typed as bool, integer or string by
content. Duplicate keys accumulate as multiple values. The parser is total;
malformed lines are skipped, never fatal. Files over 32 KiB are rejected.

# External Changes

Init watches the official path's directory. PollForExternalChanges is rate
limited to once per second, ignores the echo of this process's own writes
by mtime, and folds genuine external edits into memory - issuing one
listener call per key that actually changed. If local unsaved edits exist,
the external view is skipped: local edits always win, and the next
WriteIfNeeded overwrites the file.

# Observability

Lifecycle, change and parse events are emitted as capitan signals (see
signals.go). Hosts subscribe to the ones they care about; nothing is
written to any log by default.
*/
package prefs
