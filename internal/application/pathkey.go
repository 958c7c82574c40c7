package application

import (
	"os"
	"path/filepath"
	"strings"
)

// NormalizePath returns the canonical key for a filesystem path: absolute,
// cleaned, with no trailing separator (except for the filesystem root).
// Symlinks are not resolved.
func NormalizePath(p string) string {
	abs, err := filepath.Abs(p)
	if err != nil {
		return filepath.Clean(p)
	}
	return abs
}

// IsWithin reports whether child equals parent or lies beneath it. The check is
// on path segments, so /foo-bar is not within /foo. Both paths must already be
// normalized.
func IsWithin(child, parent string) bool {
	if child == parent {
		return true
	}
	prefix := parent
	if !strings.HasSuffix(prefix, string(filepath.Separator)) {
		prefix += string(filepath.Separator)
	}
	return strings.HasPrefix(child, prefix)
}

// ExpandHome resolves a leading ~ to the user's home directory and makes the
// result absolute.
func ExpandHome(p string) string {
	if strings.HasPrefix(p, "~") {
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, p[1:])
		}
	}
	return NormalizePath(p)
}
