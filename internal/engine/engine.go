// Package engine defines the contract with the external geometry engine: open
// a model, build its 3D context, and serialize the compiled scene. The engine
// itself is a black box; see the converter package for the subprocess-backed
// implementation and enginetest for a scripted double.
package engine

import (
	"context"
	"errors"
	"io"

	"geoprof/internal/model"
)

// ErrClosed is returned by operations on a model that has been closed.
var ErrClosed = errors.New("model is closed")

// ProgressFunc receives the engine's sentinel-coded progress reports:
// -1 enters the stage named label, 101 exits the innermost stage, 0..100 is
// progress within it. It may be called concurrently from engine workers and
// must not block.
type ProgressFunc func(percent int, label string)

// OpenOptions controls how a model is opened.
type OpenOptions struct {
	Format model.Format
	// StoreThresholdMB is the input size above which the engine streams the
	// model into an on-disk store. 0 streams everything; nil lets the engine
	// decide from the input size.
	StoreThresholdMB *float64
}

// BuildOptions controls context building.
type BuildOptions struct {
	MaxThreads             int  // 0 = engine default
	SimplifiedFastExtruder bool // prefer the fast tessellation path
}

// Engine opens models and accounts for open handles.
type Engine interface {
	OpenModel(ctx context.Context, path string, opts OpenOptions) (Model, error)
	// OpenModels is the number of model handles currently open.
	OpenModels() int
}

// Model is an open model handle. Close must be called on every path.
type Model interface {
	BuildContext(ctx context.Context, opts BuildOptions, progress ProgressFunc) error
	SerializeScene(ctx context.Context, w io.Writer) error
	// SaveAs persists the compiled store to path.
	SaveAs(ctx context.Context, path string) error
	Close() error
}

// Threshold returns a pointer to mb, for OpenOptions.StoreThresholdMB.
func Threshold(mb float64) *float64 {
	return &mb
}
