package bootlog

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/lixenwraith/bootlog/fsutil"
)

// normalizeLogName strips characters invalid in a file name and appends the
// default extension when the name carries none
func normalizeLogName(logName string) (string, error) {
	name := fsutil.RemoveInvalidFileNameChars(strings.TrimSpace(logName))
	if name == "" {
		return "", fmtErrorf("log name '%s' is empty after sanitization", logName)
	}
	if !strings.Contains(name, ".") {
		name += defaultExtension
	}
	return name, nil
}

// resolveLogFilePath returns the sanitized directory and the full log file path
func resolveLogFilePath(logDir, logName string) (string, string, error) {
	dir := fsutil.RemoveInvalidPathChars(logDir)
	if dir == "" {
		dir = "."
	}
	name, err := normalizeLogName(logName)
	if err != nil {
		return "", "", err
	}
	return dir, filepath.Join(dir, name), nil
}

// initialize runs the one-shot procedure: prepare the directory, rotate or
// create the file, open the writer and drain the pending buffer.
// initMu must be held.
func (l *Logger) initialize(logDir, logName string) error {
	dir, logFile, err := resolveLogFilePath(logDir, logName)
	if err != nil {
		return err
	}

	info, err := os.Stat(dir)
	switch {
	case os.IsNotExist(err):
		// Fresh install, nothing to rotate
		if err := os.MkdirAll(dir, dirPerm); err != nil {
			return fmtErrorf("failed to create log directory '%s': %w", dir, err)
		}
	case err != nil:
		return fmtErrorf("failed to stat log directory '%s': %w", dir, err)
	case !info.IsDir():
		return fmtErrorf("log directory '%s' is not a directory", dir)
	default:
		if err := l.prepareExistingLogFile(dir, logFile); err != nil {
			return err
		}
	}

	f, err := fsutil.OpenExclusive(logFile, true)
	if err != nil {
		if errors.Is(err, fsutil.ErrLocked) {
			return fmtErrorf("failed to open log file '%s': %w: %w", logFile, ErrLogFileLocked, err)
		}
		return fmtErrorf("failed to open log file '%s': %w", logFile, err)
	}

	if err := l.state.drainAndInitialize(f, logFile); err != nil {
		_ = f.Close()
		return err
	}
	return nil
}

// prepareExistingLogFile rotates a leftover log file from a prior run, or
// creates an empty one when none exists. A file held by a running instance
// is left alone and reported as ErrLogFileLocked.
func (l *Logger) prepareExistingLogFile(dir, logFile string) error {
	info, err := os.Lstat(logFile)
	if os.IsNotExist(err) {
		f, err := os.OpenFile(logFile, os.O_WRONLY|os.O_CREATE, filePerm)
		if err != nil {
			return fmtErrorf("failed to create log file '%s': %w", logFile, err)
		}
		return f.Close()
	}
	if err != nil {
		return fmtErrorf("failed to stat log file '%s': %w", logFile, err)
	}
	if info.IsDir() {
		return fmtErrorf("log file path '%s' is a directory", logFile)
	}

	if err := fsutil.ProbeExclusiveRead(logFile); err != nil {
		if errors.Is(err, fsutil.ErrLocked) {
			return fmtErrorf("%w: %s", ErrLogFileLocked, logFile)
		}
		return fmtErrorf("failed to probe log file '%s': %w", logFile, err)
	}

	return l.rotateLogFile(dir, logFile)
}

// rotateLogFile renames logFile to name_<unix time>.ext beside it. A clash
// with an earlier rotation in the same second gets a numeric suffix.
func (l *Logger) rotateLogFile(dir, logFile string) error {
	base := filepath.Base(logFile)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)

	archivePath, err := fsutil.BuildUniquePath(dir, fsutil.TimestampedName(stem, l.now(), ""), ext)
	if err != nil {
		return fmtErrorf("failed to name rotated log file for '%s': %w", logFile, err)
	}

	if err := os.Rename(logFile, archivePath); err != nil {
		return fmtErrorf("failed to rename log file from '%s' to '%s': %w", logFile, archivePath, err)
	}

	l.state.Rotations.Add(1)
	return nil
}
