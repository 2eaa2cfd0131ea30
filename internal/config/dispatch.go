package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/vk/mediagrid/internal/ctxlog"
	"github.com/vk/mediagrid/internal/fsutil"
	"github.com/vk/mediagrid/internal/pipeline"
)

// Dispatcher routes pipeline files to the loader registered for their
// extension.
type Dispatcher struct {
	loaders map[string]Loader // extension including the dot, lower case
}

// NewDispatcher creates a Dispatcher from an extension -> loader map.
func NewDispatcher(loaders map[string]Loader) *Dispatcher {
	d := &Dispatcher{loaders: make(map[string]Loader, len(loaders))}
	for ext, l := range loaders {
		d.loaders[strings.ToLower(ext)] = l
	}
	return d
}

// Extensions returns the supported file extensions, sorted.
func (d *Dispatcher) Extensions() []string {
	exts := make([]string, 0, len(d.loaders))
	for ext := range d.loaders {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// Load reads path, which may be a single file or a directory. All supported
// files of a directory are merged in lexical path order, so step declaration
// order is file order, then order within the file.
func (d *Dispatcher) Load(ctx context.Context, path string) (*Model, error) {
	logger := ctxlog.FromContext(ctx)

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("error accessing path %s: %w", path, err)
	}

	var files []string
	if info.IsDir() {
		files, err = fsutil.FindFilesByExtension(path, d.Extensions()...)
		if err != nil {
			return nil, err
		}
		if len(files) == 0 {
			return nil, fmt.Errorf("no pipeline files (%s) found in %s", strings.Join(d.Extensions(), ", "), path)
		}
	} else {
		files = []string{path}
	}
	logger.Debug("Discovered pipeline files.", "count", len(files))

	model := &Model{}
	for _, file := range files {
		ext := strings.ToLower(filepath.Ext(file))
		loader, ok := d.loaders[ext]
		if !ok {
			return nil, fmt.Errorf("unsupported pipeline file %s: extension %q is not one of %s", file, ext, strings.Join(d.Extensions(), ", "))
		}
		m, err := loader.Load(ctx, file)
		if err != nil {
			return nil, err
		}
		if err := model.Merge(m); err != nil {
			return nil, fmt.Errorf("merging %s: %w", file, err)
		}
	}

	logger.Debug("Pipeline files loaded.", "files", len(files), "steps", len(model.Steps))
	return model, nil
}

// LoadPipeline loads path and converts it into an executable pipeline.
func (d *Dispatcher) LoadPipeline(ctx context.Context, path string) (*pipeline.Pipeline, error) {
	m, err := d.Load(ctx, path)
	if err != nil {
		return nil, err
	}
	return m.Pipeline()
}

func sortedFieldNames(fields map[string]string) []string {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
