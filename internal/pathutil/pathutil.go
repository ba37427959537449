package pathutil

import (
	"path/filepath"
	"strings"
)

// NormalizePath converts all path separators to forward slashes.
// Go's os.Open/os.Stat accept forward slashes on all platforms.
func NormalizePath(p string) string {
	return filepath.ToSlash(p)
}

// IsWithin reports whether p is root itself or lies below it, after both
// are made absolute and cleaned. Symlinks are not resolved.
func IsWithin(root, p string) bool {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return false
	}
	absPath, err := filepath.Abs(p)
	if err != nil {
		return false
	}
	rel, err := filepath.Rel(absRoot, absPath)
	if err != nil {
		return false
	}
	rel = NormalizePath(rel)
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, "../"))
}
