// Package resolve turns command-line inputs into the concrete model files the
// engine should open.
package resolve

import (
	"context"
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/viant/afs"
	afsurl "github.com/viant/afs/url"

	"geoprof/internal/model"
	"geoprof/internal/util"
)

// ErrNotFound is returned when no candidate file exists for an input.
var ErrNotFound = errors.New("no model file found")

// Recognized extensions.
const (
	ExtStore  = ".xbim"   // compiled store
	ExtIFC    = ".ifc"    // primary raw interchange
	ExtIFCZip = ".ifczip" // compressed interchange
	ExtIFCXML = ".ifcxml" // XML interchange
	ExtScene  = ".wexBIM" // compiled scene output
)

// probeOrder prefers reusing a previously compiled store.
var probeOrder = []string{ExtStore, ExtIFC, ExtIFCZip, ExtIFCXML}

// Target is one concrete file to convert.
type Target struct {
	InputPath string // as given by the caller
	Path      string // file handed to the engine
	Format    model.Format
}

// FormatOf maps a file extension (case-insensitive) to a model format.
func FormatOf(p string) model.Format {
	switch strings.ToLower(filepath.Ext(p)) {
	case ExtStore:
		return model.FormatStore
	case ExtIFC:
		return model.FormatIFC
	case ExtIFCZip:
		return model.FormatIFCZip
	case ExtIFCXML:
		return model.FormatIFCXML
	default:
		return model.FormatUnknown
	}
}

// Resolver finds model files through an afs file system.
type Resolver struct {
	fs afs.Service
}

// New returns a Resolver; a nil fs uses afs.New().
func New(fs afs.Service) *Resolver {
	if fs == nil {
		fs = afs.New()
	}
	return &Resolver{fs: fs}
}

// Resolve expands input into targets.
//
//   - A directory yields its *.ifc files and, unless forceRegenerate is set,
//     its *.xbim files, in listing order. Sub-directories are not descended.
//   - A path with an extension is returned as given, without checking it exists.
//   - A bare path is probed as .xbim, .ifc, .ifczip, .ifcxml; the first existing
//     file wins, otherwise ErrNotFound.
func (r *Resolver) Resolve(ctx context.Context, input string, forceRegenerate bool) ([]Target, error) {
	if input == "" {
		return nil, fmt.Errorf("%w: empty path", ErrNotFound)
	}
	if ok, _ := r.fs.Exists(ctx, FileURL(input)); ok {
		obj, err := r.fs.Object(ctx, FileURL(input))
		if err == nil && obj.IsDir() {
			return r.listDir(ctx, input, forceRegenerate)
		}
	}

	if filepath.Ext(input) != "" {
		return []Target{{InputPath: input, Path: input, Format: FormatOf(input)}}, nil
	}

	for _, ext := range probeOrder {
		candidate := util.ChangeExt(input, ext)
		if ok, _ := r.fs.Exists(ctx, FileURL(candidate)); ok {
			return []Target{{InputPath: input, Path: candidate, Format: FormatOf(candidate)}}, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, input)
}

func (r *Resolver) listDir(ctx context.Context, dir string, forceRegenerate bool) ([]Target, error) {
	objects, err := r.fs.List(ctx, FileURL(dir))
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", dir, err)
	}

	var raw, stores []Target
	for _, obj := range objects {
		if obj.IsDir() {
			continue
		}
		name := path.Base(afsurl.Path(obj.URL()))
		p := filepath.Join(dir, name)
		switch strings.ToLower(filepath.Ext(name)) {
		case ExtIFC:
			raw = append(raw, Target{InputPath: dir, Path: p, Format: model.FormatIFC})
		case ExtStore:
			if !forceRegenerate {
				stores = append(stores, Target{InputPath: dir, Path: p, Format: model.FormatStore})
			}
		}
	}
	return append(raw, stores...), nil
}

// FileURL makes p absolute for afs, which resolves bare relative names
// against its own notion of the working directory.
func FileURL(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return p
}
