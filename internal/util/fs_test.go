package util

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestChangeExt(t *testing.T) {
	tests := []struct {
		path string
		ext  string
		want string
	}{
		{path: "a.ifc", ext: ".wexBIM", want: "a.wexBIM"},
		{path: "dir/model.v2.ifczip", ext: ".xbim", want: "dir/model.v2.xbim"},
		{path: "bare", ext: ".xbim", want: "bare.xbim"},
		{path: "/abs/x.XBIM", ext: ".wexBIM", want: "/abs/x.wexBIM"},
	}
	for _, tt := range tests {
		if got := ChangeExt(tt.path, tt.ext); got != tt.want {
			t.Errorf("ChangeExt(%q, %q) = %q, want %q", tt.path, tt.ext, got, tt.want)
		}
	}
}

func TestMakeTempWorkdir(t *testing.T) {
	base := filepath.Join(t.TempDir(), "work")
	dir, err := MakeTempWorkdir(base, "model")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(filepath.Base(dir), "model-") {
		t.Errorf("dir = %q", dir)
	}
	if fi, err := os.Stat(dir); err != nil || !fi.IsDir() {
		t.Errorf("workdir not created: %v", err)
	}
}
