package bootlog

import (
	"errors"
	"fmt"
	"path/filepath"
	"runtime"
	"strings"
)

// Sentinel errors surfaced through InitError and InitializeWait
var (
	ErrLogFileLocked  = errors.New("bootlog: log file is held by another instance")
	ErrShutdown       = errors.New("bootlog: logger is shut down")
	ErrNotInitialized = errors.New("bootlog: logger not initialized")
)

// callerOrigin resolves the unit and member of the function skip frames
// above its caller.
func callerOrigin(skip int) Origin {
	pc, file, _, ok := runtime.Caller(skip + 1)
	if !ok {
		return Origin{Unit: "(unknown)", Member: "(unknown)"}
	}

	unit := strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))

	fn := runtime.FuncForPC(pc)
	if fn == nil {
		return Origin{Unit: unit, Member: "(unknown)"}
	}
	return Origin{Unit: unit, Member: memberName(fn.Name())}
}

// memberName reduces a fully qualified function name such as
// "example.com/app/server.(*Server).Start.func1" to "Start.func1".
func memberName(funcName string) string {
	name := funcName
	if i := strings.LastIndexByte(name, '/'); i >= 0 {
		name = name[i+1:]
	}
	// Drop the package qualifier
	if i := strings.IndexByte(name, '.'); i >= 0 {
		name = name[i+1:]
	}

	parts := strings.Split(name, ".")
	kept := parts[:0]
	for _, p := range parts {
		if strings.HasPrefix(p, "(") {
			continue // receiver
		}
		kept = append(kept, p)
	}
	if len(kept) == 0 {
		return name
	}
	return strings.Join(kept, ".")
}

// fmtErrorf wrapper
func fmtErrorf(format string, args ...any) error {
	if !strings.HasPrefix(format, "bootlog: ") {
		format = "bootlog: " + format
	}
	return fmt.Errorf(format, args...)
}

// combineErrors helper
func combineErrors(err1, err2 error) error {
	if err1 == nil {
		return err2
	}
	if err2 == nil {
		return err1
	}
	return fmt.Errorf("%v; %w", err1, err2)
}

// parseKeyValue splits a "key=value" string.
func parseKeyValue(arg string) (string, string, error) {
	parts := strings.SplitN(strings.TrimSpace(arg), "=", 2)
	if len(parts) != 2 {
		return "", "", fmtErrorf("invalid format in override string '%s', expected key=value", arg)
	}
	key := strings.TrimSpace(parts[0])
	value := strings.TrimSpace(parts[1])
	if key == "" {
		return "", "", fmtErrorf("key cannot be empty in override string '%s'", arg)
	}
	return key, value, nil
}

// Level converts level string to numeric constant.
func Level(levelStr string) (int64, error) {
	switch strings.ToLower(strings.TrimSpace(levelStr)) {
	case "debug":
		return LevelDebug, nil
	case "info":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	default:
		return 0, fmtErrorf("invalid level string: '%s' (use debug, info, warn, error)", levelStr)
	}
}
