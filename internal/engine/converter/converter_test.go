package converter

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"geoprof/internal/engine"
	"geoprof/internal/model"
	"geoprof/internal/util"
)

// fakeRunner simulates the converter executable's subcommands.
type fakeRunner struct {
	mu       sync.Mutex
	calls    [][]string
	openErr  bool
	progress []string
	scene    string
}

func (f *fakeRunner) Run(ctx context.Context, spec util.CmdSpec) (util.CmdResult, error) {
	f.mu.Lock()
	f.calls = append(f.calls, append([]string(nil), spec.Args...))
	f.mu.Unlock()

	switch spec.Args[0] {
	case "open":
		if f.openErr {
			res := util.CmdResult{Stderr: []byte("reading header\nunsupported schema IFC2X2\n"), Code: 3}
			return res, errors.New("command failed (exit 3)")
		}
		store := argValue(spec.Args, "--store")
		if err := os.WriteFile(store, []byte("store"), 0o644); err != nil {
			return util.CmdResult{Code: -1}, err
		}
	case "build":
		for _, line := range f.progress {
			spec.StdoutLine(line)
		}
	case "scene":
		_, _ = spec.Stdout.Write([]byte(f.scene))
	}
	return util.CmdResult{}, nil
}

func argValue(args []string, name string) string {
	for i := 0; i+1 < len(args); i++ {
		if args[i] == name {
			return args[i+1]
		}
	}
	return ""
}

func contains(args []string, want string) bool {
	for _, a := range args {
		if a == want {
			return true
		}
	}
	return false
}

func TestParseProgressLine(t *testing.T) {
	cases := []struct {
		line    string
		percent int
		label   string
		ok      bool
	}{
		{"PROGRESS -1\tCreating Geometry", -1, "Creating Geometry", true},
		{"PROGRESS 42", 42, "", true},
		{"PROGRESS 101", 101, "", true},
		{"PROGRESS  7\tMeshing\r", 7, "Meshing", true},
		{"PROGRESS abc", 0, "", false},
		{"progress 10", 0, "", false},
		{"Loading schema", 0, "", false},
		{"", 0, "", false},
	}
	for _, c := range cases {
		p, label, ok := ParseProgressLine(c.line)
		assert.Equal(t, c.ok, ok, c.line)
		assert.Equal(t, c.percent, p, c.line)
		assert.Equal(t, c.label, label, c.line)
	}
}

func TestEngineLifecycle(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "house.ifc")
	require.NoError(t, os.WriteFile(input, []byte("ISO-10303-21;"), 0o644))

	runner := &fakeRunner{
		progress: []string{"PROGRESS -1\tCreating Geometry", "Loading schema", "PROGRESS 50", "PROGRESS 101"},
		scene:    "wexbim-bytes",
	}
	var output []string
	e := New(Options{
		Binary:     "xbim-convert",
		TempBase:   filepath.Join(dir, "work"),
		Runner:     runner,
		OutputLine: func(line string) { output = append(output, line) },
	})

	m, err := e.OpenModel(context.Background(), input, engine.OpenOptions{
		Format:           model.FormatIFC,
		StoreThresholdMB: engine.Threshold(0),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, e.OpenModels())

	open := runner.calls[0]
	assert.Equal(t, "open", open[0])
	assert.Equal(t, input, argValue(open, "--input"))
	assert.Equal(t, "0", argValue(open, "--threshold"))

	store := m.(*Model).Store()
	assert.Equal(t, "house.xbim", filepath.Base(store))
	assert.FileExists(t, store)

	var got []int
	var labels []string
	err = m.BuildContext(context.Background(), engine.BuildOptions{MaxThreads: 1, SimplifiedFastExtruder: true}, func(p int, label string) {
		got = append(got, p)
		labels = append(labels, label)
	})
	require.NoError(t, err)
	assert.Equal(t, []int{-1, 50, 101}, got)
	assert.Equal(t, "Creating Geometry", labels[0])
	assert.Equal(t, []string{"Loading schema"}, output)

	build := runner.calls[1]
	assert.Equal(t, "1", argValue(build, "--max-threads"))
	assert.True(t, contains(build, "--simplified-extruder"))

	var buf bytes.Buffer
	require.NoError(t, m.SerializeScene(context.Background(), &buf))
	assert.Equal(t, "wexbim-bytes", buf.String())

	dest := filepath.Join(dir, "house.xbim")
	require.NoError(t, m.SaveAs(context.Background(), dest))
	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "store", string(data))

	workdir := filepath.Dir(store)
	require.NoError(t, m.Close())
	require.NoError(t, m.Close())
	assert.Equal(t, 0, e.OpenModels())
	assert.NoDirExists(t, workdir)

	assert.ErrorIs(t, m.BuildContext(context.Background(), engine.BuildOptions{}, nil), engine.ErrClosed)
}

func TestOpenFailureCarriesConverterMessage(t *testing.T) {
	dir := t.TempDir()
	runner := &fakeRunner{openErr: true}
	e := New(Options{Binary: "xbim-convert", TempBase: dir, Runner: runner})

	_, err := e.OpenModel(context.Background(), filepath.Join(dir, "old.ifc"), engine.OpenOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported schema IFC2X2")
	assert.Equal(t, 0, e.OpenModels())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "failed open must not leave a work directory behind")
}

func TestOpenStoreInPlace(t *testing.T) {
	dir := t.TempDir()
	store := filepath.Join(dir, "house.xbim")
	require.NoError(t, os.WriteFile(store, []byte("store"), 0o644))

	runner := &fakeRunner{}
	e := New(Options{Binary: "xbim-convert", Runner: runner})

	m, err := e.OpenModel(context.Background(), store, engine.OpenOptions{})
	require.NoError(t, err)
	assert.Empty(t, runner.calls)
	assert.Equal(t, store, m.(*Model).Store())

	// Saving onto itself is a no-op.
	require.NoError(t, m.SaveAs(context.Background(), store))

	require.NoError(t, m.Close())
	assert.FileExists(t, store)
	assert.Equal(t, 0, e.OpenModels())
}

func TestOpenMissingStore(t *testing.T) {
	e := New(Options{Binary: "xbim-convert", Runner: &fakeRunner{}})
	_, err := e.OpenModel(context.Background(), filepath.Join(t.TempDir(), "gone.xbim"), engine.OpenOptions{})
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.Equal(t, 0, e.OpenModels())
}

func TestOpenStoreDirectoryFails(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "folder.xbim")
	require.NoError(t, os.MkdirAll(dir, 0o755))

	e := New(Options{Binary: "xbim-convert", Runner: &fakeRunner{}})
	_, err := e.OpenModel(context.Background(), dir, engine.OpenOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "is a directory")
	assert.Equal(t, 0, e.OpenModels())
}

func TestKeepTempLeavesWorkdir(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "a.ifc")
	require.NoError(t, os.WriteFile(input, []byte("x"), 0o644))

	e := New(Options{Binary: "xbim-convert", TempBase: filepath.Join(dir, "work"), KeepTemp: true, Runner: &fakeRunner{}})
	m, err := e.OpenModel(context.Background(), input, engine.OpenOptions{})
	require.NoError(t, err)
	store := m.(*Model).Store()
	require.NoError(t, m.Close())
	assert.FileExists(t, store)
}
