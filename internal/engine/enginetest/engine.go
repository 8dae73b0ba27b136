// Package enginetest provides a scripted in-memory engine for tests.
package enginetest

import (
	"context"
	"io"
	"os"
	"sync"
	"sync/atomic"

	"geoprof/internal/engine"
	"geoprof/internal/timing"
)

// Script describes how the fake engine behaves for one path.
type Script struct {
	OpenErr      error
	BuildErr     error
	SerializeErr error
	SaveErr      error

	// Events are replayed through the progress callback during BuildContext.
	Events []timing.Event
	// Workers > 1 replays Events from that many goroutines at once.
	Workers int
	// Scene is written by SerializeScene; defaults to "scene".
	Scene []byte
	// LeakHandle makes Close forget to release the handle.
	LeakHandle bool
	// DuringBuild runs after Events are replayed. A build whose ctx is done
	// by then fails with the ctx error, as a killed subprocess would.
	DuringBuild func()
}

// OpenCall records one OpenModel invocation.
type OpenCall struct {
	Path string
	Opts engine.OpenOptions
}

// Engine is a fake engine.Engine.
type Engine struct {
	mu      sync.Mutex
	scripts map[string]Script
	calls   []OpenCall
	builds  []engine.BuildOptions
	open    atomic.Int64

	Default Script
}

// New returns an Engine with no scripts; unknown paths use Default.
func New() *Engine {
	return &Engine{scripts: map[string]Script{}}
}

// Script sets the behavior for path.
func (e *Engine) Script(path string, s Script) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.scripts[path] = s
}

// Calls returns the OpenModel invocations so far.
func (e *Engine) Calls() []OpenCall {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]OpenCall(nil), e.calls...)
}

// Builds returns the BuildOptions passed to BuildContext so far.
func (e *Engine) Builds() []engine.BuildOptions {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]engine.BuildOptions(nil), e.builds...)
}

// OpenModels implements engine.Engine.
func (e *Engine) OpenModels() int {
	return int(e.open.Load())
}

// OpenModel implements engine.Engine.
func (e *Engine) OpenModel(_ context.Context, path string, opts engine.OpenOptions) (engine.Model, error) {
	e.mu.Lock()
	e.calls = append(e.calls, OpenCall{Path: path, Opts: opts})
	s, ok := e.scripts[path]
	if !ok {
		s = e.Default
	}
	e.mu.Unlock()

	if s.OpenErr != nil {
		return nil, s.OpenErr
	}
	e.open.Add(1)
	return &Model{engine: e, script: s}, nil
}

// Model is a fake engine.Model.
type Model struct {
	engine *Engine
	script Script

	mu     sync.Mutex
	closed bool
}

// BuildContext implements engine.Model.
func (m *Model) BuildContext(ctx context.Context, opts engine.BuildOptions, progress engine.ProgressFunc) error {
	if m.isClosed() {
		return engine.ErrClosed
	}
	m.engine.mu.Lock()
	m.engine.builds = append(m.engine.builds, opts)
	m.engine.mu.Unlock()

	workers := m.script.Workers
	if workers < 1 {
		workers = 1
	}
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			for _, ev := range m.script.Events {
				progress(ev.Encode())
			}
		}()
	}
	wg.Wait()
	if m.script.DuringBuild != nil {
		m.script.DuringBuild()
		if err := ctx.Err(); err != nil {
			return err
		}
	}
	return m.script.BuildErr
}

// SerializeScene implements engine.Model.
func (m *Model) SerializeScene(_ context.Context, w io.Writer) error {
	if m.isClosed() {
		return engine.ErrClosed
	}
	if m.script.SerializeErr != nil {
		return m.script.SerializeErr
	}
	scene := m.script.Scene
	if scene == nil {
		scene = []byte("scene")
	}
	_, err := w.Write(scene)
	return err
}

// SaveAs implements engine.Model by writing a placeholder store file.
func (m *Model) SaveAs(_ context.Context, path string) error {
	if m.isClosed() {
		return engine.ErrClosed
	}
	if m.script.SaveErr != nil {
		return m.script.SaveErr
	}
	return os.WriteFile(path, []byte("store"), 0o644)
}

// Close implements engine.Model. It is idempotent.
func (m *Model) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil
	}
	m.closed = true
	if !m.script.LeakHandle {
		m.engine.open.Add(-1)
	}
	return nil
}

func (m *Model) isClosed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}
