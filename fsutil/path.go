// Package fsutil provides the filesystem helpers the logger depends on:
// collision-free path generation and exclusive-access probing and waiting.
package fsutil

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/lixenwraith/bootlog/sanitizer"
)

// DirPerm is used for directories created by this package.
const DirPerm = 0755

var (
	pathSanitizer     = sanitizer.New().Policy(sanitizer.PolicyPath)
	fileNameSanitizer = sanitizer.New().Policy(sanitizer.PolicyFileName)
)

// RemoveInvalidPathChars strips characters that are not valid in a directory path.
func RemoveInvalidPathChars(s string) string {
	return pathSanitizer.Sanitize(s)
}

// RemoveInvalidFileNameChars strips characters that are not valid in a file name,
// path separators included.
func RemoveInvalidFileNameChars(s string) string {
	return fileNameSanitizer.Sanitize(s)
}

// NormalizeExtension returns ext with a leading dot, or "" for an empty extension.
func NormalizeExtension(ext string) string {
	ext = RemoveInvalidFileNameChars(ext)
	if ext == "" || strings.HasPrefix(ext, ".") {
		return ext
	}
	return "." + ext
}

// BuildUniquePath returns dir/name.ext, or dir/name_N.ext with the smallest
// positive N for which nothing exists yet. The directory is created if missing.
// There is no upper bound on N.
func BuildUniquePath(dir, name, extension string) (string, error) {
	return BuildUniquePathContext(context.Background(), dir, name, extension)
}

// BuildUniquePathContext is BuildUniquePath with a cancellable probe loop.
func BuildUniquePathContext(ctx context.Context, dir, name, extension string) (string, error) {
	validDir := RemoveInvalidPathChars(dir)
	validName := RemoveInvalidFileNameChars(name)
	ext := NormalizeExtension(extension)
	if validName == "" {
		return "", fmt.Errorf("%w: name '%s'", ErrEmptyName, name)
	}

	if validDir != "" {
		if err := os.MkdirAll(validDir, DirPerm); err != nil {
			return "", fmt.Errorf("fsutil: failed to create directory '%s': %w", validDir, err)
		}
	}

	base := filepath.Join(validDir, validName)
	candidate := base + ext
	for n := 1; ; n++ {
		taken, err := exists(candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
		if err := ctx.Err(); err != nil {
			return "", fmt.Errorf("fsutil: unique path search for '%s' cancelled: %w", base+ext, err)
		}
		candidate = base + "_" + strconv.Itoa(n) + ext
	}
}

// exists reports whether anything occupies path. Errors other than
// "not exist" are returned so that a permission problem does not loop forever.
func exists(path string) (bool, error) {
	_, err := os.Lstat(path)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, fmt.Errorf("fsutil: failed to stat '%s': %w", path, err)
}
