// Package dirs locates the per-user directories geoprof reads and writes.
package dirs

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
)

const appName = "geoprof"

// AppName returns the canonical application name for directory paths.
func AppName() string {
	return appName
}

// xdg resolves an XDG base directory on Linux: $env, else ~/<fallback>.
func xdg(env string, fallback ...string) (string, error) {
	if v := os.Getenv(env); v != "" {
		return filepath.Join(v, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(append(append([]string{home}, fallback...), appName)...), nil
}

// ConfigDir returns the directory searched for config.{yaml,json,toml}.
// - Linux: $XDG_CONFIG_HOME/geoprof or ~/.config/geoprof
// - macOS: ~/Library/Application Support/geoprof
// - Windows: %AppData%/geoprof
func ConfigDir() (string, error) {
	switch runtime.GOOS {
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, "Library", "Application Support", appName), nil
	case "linux":
		return xdg("XDG_CONFIG_HOME", ".config")
	default:
		cfg, err := os.UserConfigDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(cfg, appName), nil
	}
}

// CacheDir returns the cache directory; converter work directories live here.
// - Linux: $XDG_CACHE_HOME/geoprof or ~/.cache/geoprof
// - macOS: ~/Library/Caches/geoprof
// - Windows: %LocalAppData%/geoprof
func CacheDir() (string, error) {
	switch runtime.GOOS {
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, "Library", "Caches", appName), nil
	case "linux":
		return xdg("XDG_CACHE_HOME", ".cache")
	default:
		c, err := os.UserCacheDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(c, appName), nil
	}
}

// StateDir returns the state directory holding the default log file.
// - Linux: $XDG_STATE_HOME/geoprof or ~/.local/state/geoprof
// - macOS: ~/Library/Application Support/geoprof/state
// - Windows: %LocalAppData%/geoprof/state
func StateDir() (string, error) {
	switch runtime.GOOS {
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, "Library", "Application Support", appName, "state"), nil
	case "linux":
		return xdg("XDG_STATE_HOME", ".local", "state")
	default:
		if la := os.Getenv("LOCALAPPDATA"); la != "" {
			return filepath.Join(la, appName, "state"), nil
		}
		cfg, err := ConfigDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(cfg, "state"), nil
	}
}

// TempBaseDir returns the parent of converter work directories.
func TempBaseDir() (string, error) {
	c, err := CacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(c, "work"), nil
}

// DefaultLogFile is the log written when --log-file is not given.
func DefaultLogFile() (string, error) {
	s, err := StateDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(s, appName+".log"), nil
}

// Ensure creates the directory if it doesn't exist.
func Ensure(path string) error {
	if path == "" {
		return errors.New("empty path")
	}
	return os.MkdirAll(path, 0o755)
}

// EnsureAll ensures config, cache and state dirs exist.
func EnsureAll() error {
	for _, fn := range []func() (string, error){ConfigDir, CacheDir, StateDir} {
		p, err := fn()
		if err != nil {
			continue
		}
		if err := Ensure(p); err != nil {
			return err
		}
	}
	return nil
}
