package fsutil

import (
	"errors"
	"fmt"
	"io"
	"os"
)

// LockedFile is an open file that holds an exclusive lock until Close.
type LockedFile struct {
	*os.File
}

// OpenExclusive opens (creating if needed) path for writing and takes an
// exclusive non-blocking lock on it. With truncate set, the file is emptied
// only after the lock is held, so a file owned by another handle is never
// clobbered. Returns an error wrapping ErrLocked if the lock is taken.
func OpenExclusive(path string, truncate bool) (*LockedFile, error) {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE, 0644)
	if err != nil {
		return nil, fmt.Errorf("fsutil: failed to open '%s': %w", path, openError(err))
	}

	if err := lockFile(f); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("fsutil: failed to lock '%s': %w", path, err)
	}

	if truncate {
		if err := f.Truncate(0); err != nil {
			_ = unlockFile(f)
			_ = f.Close()
			return nil, fmt.Errorf("fsutil: failed to truncate '%s': %w", path, err)
		}
	} else if _, err := f.Seek(0, io.SeekEnd); err != nil {
		_ = unlockFile(f)
		_ = f.Close()
		return nil, fmt.Errorf("fsutil: failed to seek '%s': %w", path, err)
	}

	return &LockedFile{File: f}, nil
}

// Close releases the lock and closes the file.
func (lf *LockedFile) Close() error {
	if lf == nil || lf.File == nil {
		return nil
	}
	unlockErr := unlockFile(lf.File)
	closeErr := lf.File.Close()
	return errors.Join(unlockErr, closeErr)
}

// ProbeExclusive opens path read-write, takes an exclusive lock and releases
// both immediately. A nil result means no other handle held the file. A
// missing file is an open error, not ErrLocked, and waiting on it continues.
func ProbeExclusive(path string) error {
	return probe(path, os.O_RDWR)
}

// ProbeExclusiveRead is ProbeExclusive with a read-only handle.
func ProbeExclusiveRead(path string) error {
	return probe(path, os.O_RDONLY)
}

func probe(path string, flag int) error {
	f, err := os.OpenFile(path, flag, 0)
	if err != nil {
		return fmt.Errorf("fsutil: failed to open '%s': %w", path, openError(err))
	}
	defer f.Close()

	if err := lockFile(f); err != nil {
		return fmt.Errorf("fsutil: '%s': %w", path, err)
	}
	return unlockFile(f)
}
