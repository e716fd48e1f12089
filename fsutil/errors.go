package fsutil

import "errors"

var (
	// ErrEmptyName is returned when a file name is empty after sanitization.
	ErrEmptyName = errors.New("fsutil: file name is empty after sanitization")

	// ErrLocked is returned when a file is exclusively held by another handle.
	ErrLocked = errors.New("fsutil: file is exclusively held elsewhere")
)
