package dirs

import (
	"path/filepath"
	"runtime"
	"testing"
)

func TestXDGOverrides(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("XDG variables only apply on linux")
	}
	base := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(base, "cfg"))
	t.Setenv("XDG_CACHE_HOME", filepath.Join(base, "cache"))
	t.Setenv("XDG_STATE_HOME", filepath.Join(base, "state"))

	tests := []struct {
		name string
		fn   func() (string, error)
		want string
	}{
		{"config", ConfigDir, filepath.Join(base, "cfg", "geoprof")},
		{"cache", CacheDir, filepath.Join(base, "cache", "geoprof")},
		{"state", StateDir, filepath.Join(base, "state", "geoprof")},
		{"temp", TempBaseDir, filepath.Join(base, "cache", "geoprof", "work")},
		{"log", DefaultLogFile, filepath.Join(base, "state", "geoprof", "geoprof.log")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.fn()
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestHomeFallback(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("XDG fallbacks only apply on linux")
	}
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_STATE_HOME", "")

	got, err := StateDir()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := filepath.Join(home, ".local", "state", "geoprof"); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}
