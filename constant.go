package bootlog

import (
	"time"
)

// Log level constants
const (
	LevelDebug int64 = -4
	LevelInfo  int64 = 0
	LevelWarn  int64 = 4
	LevelError int64 = 8
)

// Verbosity at which Debug entries are suppressed in non-debug builds
const VerbosityQuiet int64 = 0

// Log file naming
const (
	// Extension appended to a log name that carries none
	defaultExtension = ".txt"
	// Permissions for created log directories and files
	dirPerm  = 0755
	filePerm = 0644
)

// Timers
const (
	// Default delay between exclusive-access probes while waiting for a log file
	defaultRetryDelay = 100 * time.Millisecond
)
