package bootlog

import (
	"fmt"
	"os"
	"strings"
)

// log handles the core logging logic
func (l *Logger) log(level int64, origin Origin, args ...any) {
	if level == LevelDebug && l.debugSuppressed() {
		l.state.Filtered.Add(1)
		return
	}

	line := l.formatter.Format(l.now(), level, origin.Unit, origin.Member, args)
	l.state.emit(line)
}

// debugSuppressed reports whether Debug entries are dropped. A debug build
// always keeps them; otherwise the lowest verbosity drops them.
func (l *Logger) debugSuppressed() bool {
	if debugBuild {
		return false
	}
	return l.getConfig().Verbosity <= VerbosityQuiet
}

// internalLog handles writing internal logger diagnostics to stderr, if enabled.
func (l *Logger) internalLog(format string, args ...any) {
	cfg := l.getConfig()
	if !cfg.InternalErrorsToStderr {
		return
	}

	if !strings.HasPrefix(format, "bootlog: ") {
		format = "bootlog: " + format
	}

	fmt.Fprintf(os.Stderr, format, args...)
}
