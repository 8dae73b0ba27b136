package resolve

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"geoprof/internal/model"
)

func touch(t *testing.T, dir, name string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte("x"), 0o644))
	return p
}

func basenames(targets []Target) []string {
	out := make([]string, 0, len(targets))
	for _, tg := range targets {
		out = append(out, filepath.Base(tg.Path))
	}
	sort.Strings(out)
	return out
}

func TestResolve_DirectoryIncludesStoresUnlessRegenerating(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "a.ifc")
	touch(t, dir, "a.xbim")
	touch(t, dir, "notes.txt")
	touch(t, dir, "b.ifczip")
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "sub"), 0o755))
	touch(t, filepath.Join(dir, "sub"), "deep.ifc")

	r := New(nil)
	ctx := context.Background()

	got, err := r.Resolve(ctx, dir, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.ifc", "a.xbim"}, basenames(got))

	got, err = r.Resolve(ctx, dir, true)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.ifc"}, basenames(got))
	assert.Equal(t, model.FormatIFC, got[0].Format)
	assert.Equal(t, dir, got[0].InputPath)
}

func TestResolve_DirectoryRawBeforeStores(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "z.xbim")
	touch(t, dir, "a.ifc")

	got, err := New(nil).Resolve(context.Background(), dir, false)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, model.FormatIFC, got[0].Format)
	assert.Equal(t, model.FormatStore, got[1].Format)
}

func TestResolve_BarePathProbing(t *testing.T) {
	tests := []struct {
		name  string
		files []string
		want  string
	}{
		{name: "only ifcxml", files: []string{"foo.ifcxml"}, want: "foo.ifcxml"},
		{name: "store preferred", files: []string{"foo.ifc", "foo.xbim", "foo.ifcxml"}, want: "foo.xbim"},
		{name: "ifc before ifczip", files: []string{"foo.ifczip", "foo.ifc"}, want: "foo.ifc"},
		{name: "ifczip before ifcxml", files: []string{"foo.ifcxml", "foo.ifczip"}, want: "foo.ifczip"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			for _, f := range tt.files {
				touch(t, dir, f)
			}
			input := filepath.Join(dir, "foo")
			got, err := New(nil).Resolve(context.Background(), input, false)
			require.NoError(t, err)
			require.Len(t, got, 1)
			assert.Equal(t, filepath.Join(dir, tt.want), got[0].Path)
			assert.Equal(t, input, got[0].InputPath)
			assert.Equal(t, FormatOf(tt.want), got[0].Format)
		})
	}
}

func TestResolve_BarePathNotFound(t *testing.T) {
	_, err := New(nil).Resolve(context.Background(), filepath.Join(t.TempDir(), "missing"), false)
	assert.True(t, errors.Is(err, ErrNotFound), "err = %v", err)
}

func TestResolve_ExplicitExtensionIsNotProbed(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "foo.xbim")
	input := filepath.Join(dir, "foo.ifc") // does not exist

	got, err := New(nil).Resolve(context.Background(), input, false)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, input, got[0].Path)
	assert.Equal(t, model.FormatIFC, got[0].Format)
}

func TestFormatOf(t *testing.T) {
	assert.Equal(t, model.FormatStore, FormatOf("A.XBIM"))
	assert.Equal(t, model.FormatIFC, FormatOf("b.Ifc"))
	assert.Equal(t, model.FormatIFCZip, FormatOf("c.ifczip"))
	assert.Equal(t, model.FormatIFCXML, FormatOf("d.ifcXML"))
	assert.Equal(t, model.FormatUnknown, FormatOf("e.txt"))
	assert.Equal(t, model.FormatUnknown, FormatOf("bare"))
}
