package util

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
)

// MakeTempWorkdir creates a unique directory under base (or the system temp
// dir when base is empty).
func MakeTempWorkdir(base, prefix string) (string, error) {
	if base == "" {
		base = filepath.Join(os.TempDir(), "geoprof")
	}
	if err := os.MkdirAll(base, 0o755); err != nil {
		return "", err
	}
	return os.MkdirTemp(base, prefix+"-")
}

// EnsureDir creates the directory path if it does not exist.
func EnsureDir(path string) error {
	if path == "" {
		return errors.New("empty path")
	}
	return os.MkdirAll(path, 0o755)
}

// ChangeExt replaces the extension of path with ext (which includes the dot).
// A path without an extension gets ext appended.
func ChangeExt(path, ext string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + ext
}
