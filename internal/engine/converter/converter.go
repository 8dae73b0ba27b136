// Package converter implements engine.Engine on top of an external converter
// executable. Each model gets its own work directory holding the compiled
// store; the subcommands open, build and scene operate on that store.
package converter

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/viant/afs"

	"geoprof/internal/engine"
	"geoprof/internal/model"
	"geoprof/internal/resolve"
	"geoprof/internal/util"
)

// Options configures the converter engine.
type Options struct {
	Binary   string // converter executable
	TempBase string // parent of per-model work directories; empty = system temp
	KeepTemp bool   // keep work directories on Close
	Runner   util.CmdRunner
	FS       afs.Service
	// OutputLine receives converter output that is not a progress report.
	OutputLine func(line string)
}

// Engine drives the converter executable.
type Engine struct {
	opts Options
	open atomic.Int64
}

// New returns an Engine; a nil Runner or FS gets the default implementation.
func New(opts Options) *Engine {
	if opts.Runner == nil {
		opts.Runner = util.NewDefaultRunner()
	}
	if opts.FS == nil {
		opts.FS = afs.New()
	}
	return &Engine{opts: opts}
}

// OpenModels implements engine.Engine.
func (e *Engine) OpenModels() int {
	return int(e.open.Load())
}

// OpenModel implements engine.Engine. A compiled store is used in place;
// raw interchange files are converted into a store in a fresh work directory.
func (e *Engine) OpenModel(ctx context.Context, path string, opts engine.OpenOptions) (engine.Model, error) {
	format := opts.Format
	if format == model.FormatUnknown {
		format = resolve.FormatOf(path)
	}

	if format == model.FormatStore {
		obj, err := e.opts.FS.Object(ctx, resolve.FileURL(path))
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", path, os.ErrNotExist)
		}
		if obj.IsDir() {
			return nil, fmt.Errorf("open %s: is a directory", path)
		}
		e.open.Add(1)
		return &Model{engine: e, store: path}, nil
	}

	workdir, err := util.MakeTempWorkdir(e.opts.TempBase, "model")
	if err != nil {
		return nil, fmt.Errorf("create workdir: %w", err)
	}
	store := filepath.Join(workdir, util.ChangeExt(filepath.Base(path), resolve.ExtStore))

	args := []string{"open", "--input", path, "--store", store}
	if opts.StoreThresholdMB != nil {
		args = append(args, "--threshold", strconv.FormatFloat(*opts.StoreThresholdMB, 'f', -1, 64))
	}
	res, err := e.opts.Runner.Run(ctx, util.CmdSpec{
		Path:       e.opts.Binary,
		Args:       args,
		StdoutLine: e.outputLine,
	})
	if err != nil {
		_ = os.RemoveAll(workdir)
		return nil, commandError(res, err)
	}

	e.open.Add(1)
	return &Model{engine: e, store: store, workdir: workdir}, nil
}

func (e *Engine) outputLine(line string) {
	if e.opts.OutputLine != nil {
		e.opts.OutputLine(line)
	}
}

// commandError prefers the converter's own last stderr line as the message.
func commandError(res util.CmdResult, err error) error {
	lines := strings.Split(strings.TrimSpace(string(res.Stderr)), "\n")
	if msg := strings.TrimSpace(lines[len(lines)-1]); msg != "" {
		return fmt.Errorf("%s: %w", msg, err)
	}
	return err
}

// Model is an open converter store.
type Model struct {
	engine  *Engine
	store   string
	workdir string // empty when the store is the caller's own file

	mu     sync.Mutex
	closed bool
}

// Store returns the path of the compiled store backing the model.
func (m *Model) Store() string {
	return m.store
}

// BuildContext implements engine.Model. Progress lines are decoded and handed
// to progress as they arrive.
func (m *Model) BuildContext(ctx context.Context, opts engine.BuildOptions, progress engine.ProgressFunc) error {
	if m.isClosed() {
		return engine.ErrClosed
	}
	args := []string{"build", "--store", m.store}
	if opts.MaxThreads > 0 {
		args = append(args, "--max-threads", strconv.Itoa(opts.MaxThreads))
	}
	if opts.SimplifiedFastExtruder {
		args = append(args, "--simplified-extruder")
	}
	res, err := m.engine.opts.Runner.Run(ctx, util.CmdSpec{
		Path: m.engine.opts.Binary,
		Args: args,
		StdoutLine: func(line string) {
			if p, label, ok := ParseProgressLine(line); ok {
				if progress != nil {
					progress(p, label)
				}
				return
			}
			m.engine.outputLine(line)
		},
	})
	if err != nil {
		return commandError(res, err)
	}
	return nil
}

// SerializeScene implements engine.Model by streaming the converter's scene
// output into w.
func (m *Model) SerializeScene(ctx context.Context, w io.Writer) error {
	if m.isClosed() {
		return engine.ErrClosed
	}
	var stderr bytes.Buffer
	res, err := m.engine.opts.Runner.Run(ctx, util.CmdSpec{
		Path:       m.engine.opts.Binary,
		Args:       []string{"scene", "--store", m.store},
		Stdout:     w,
		StderrLine: func(line string) { stderr.WriteString(line + "\n") },
	})
	if err != nil {
		if len(res.Stderr) == 0 {
			res.Stderr = stderr.Bytes()
		}
		return commandError(res, err)
	}
	return nil
}

// SaveAs implements engine.Model by copying the store to path.
func (m *Model) SaveAs(ctx context.Context, path string) error {
	if m.isClosed() {
		return engine.ErrClosed
	}
	if samePath(m.store, path) {
		return nil
	}
	if err := m.engine.opts.FS.Copy(ctx, resolve.FileURL(m.store), resolve.FileURL(path)); err != nil {
		return fmt.Errorf("copy store: %w", err)
	}
	return nil
}

// Close implements engine.Model. It is idempotent.
func (m *Model) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil
	}
	m.closed = true
	m.engine.open.Add(-1)
	if m.workdir != "" && !m.engine.opts.KeepTemp {
		if err := os.RemoveAll(m.workdir); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("remove workdir: %w", err)
		}
	}
	return nil
}

func (m *Model) isClosed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

func samePath(a, b string) bool {
	aa, err1 := filepath.Abs(a)
	bb, err2 := filepath.Abs(b)
	if err1 != nil || err2 != nil {
		return a == b
	}
	return aa == bb
}
