package prefs

import "github.com/zoobzio/capitan"

// Field keys for preference events.
var (
	// KeyPath is the filesystem path involved in the event.
	KeyPath = capitan.NewStringKey("path")

	// KeyError is the error message when an operation fails.
	KeyError = capitan.NewStringKey("error")

	// KeyPrefKey is the rendered preference key a change applies to.
	KeyPrefKey = capitan.NewStringKey("key")

	// KeyLine is the 1-based line number of a skipped parse line.
	KeyLine = capitan.NewIntKey("line")

	// KeyReason is why a parse line was skipped.
	KeyReason = capitan.NewStringKey("reason")

	// KeyCount is a generic count (keys loaded, keys reconciled).
	KeyCount = capitan.NewIntKey("count")

	// KeyPollInterval is the configured external poll interval.
	KeyPollInterval = capitan.NewDurationKey("poll_interval")
)
