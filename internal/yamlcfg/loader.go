// Package yamlcfg provides the YAML implementation of config.Loader. JSON
// pipeline files are read by the same loader, JSON being a subset of YAML.
package yamlcfg

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/vk/mediagrid/internal/config"
	"github.com/vk/mediagrid/internal/ctxlog"
	"gopkg.in/yaml.v3"
)

// fileDoc is the top level of a YAML pipeline file.
type fileDoc struct {
	Concurrency int       `yaml:"concurrency"`
	StepTimeout string    `yaml:"step_timeout"`
	Steps       []stepDoc `yaml:"steps"`
}

type stepDoc struct {
	Kind        string         `yaml:"kind"`
	Name        string         `yaml:"name"`
	Generator   string         `yaml:"generator"`
	In          string         `yaml:"in"`
	Op          string         `yaml:"op"`
	Destination string         `yaml:"destination"`
	Provider    string         `yaml:"provider"`
	Out         string         `yaml:"out"`
	Params      map[string]any `yaml:"params"`
}

// stepLines is decoded separately to recover each step's source line.
type stepLines struct {
	Steps []yaml.Node `yaml:"steps"`
}

// Loader is the YAML implementation of the config.Loader interface.
type Loader struct{}

// NewLoader creates a new YAML pipeline loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load reads each file and translates it into the format-agnostic model.
func (l *Loader) Load(ctx context.Context, paths ...string) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("YAML loader started.", "path_count", len(paths))

	model := &config.Model{}
	for _, path := range paths {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading pipeline file %s: %w", path, err)
		}
		m, err := l.Parse(raw, path)
		if err != nil {
			return nil, err
		}
		if err := model.Merge(m); err != nil {
			return nil, fmt.Errorf("merging %s: %w", path, err)
		}
	}

	logger.Debug("YAML loading complete.", "steps", len(model.Steps))
	return model, nil
}

// Parse decodes a pipeline from YAML or JSON bytes. Unknown fields are
// rejected.
func (l *Loader) Parse(raw []byte, filename string) (*config.Model, error) {
	var doc fileDoc
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return &config.Model{}, nil
		}
		return nil, fmt.Errorf("parsing pipeline %s: %w", filename, err)
	}

	var lines stepLines
	if err := yaml.Unmarshal(raw, &lines); err != nil {
		return nil, fmt.Errorf("parsing pipeline %s: %w", filename, err)
	}

	model := &config.Model{Concurrency: doc.Concurrency}
	if doc.StepTimeout != "" {
		d, err := time.ParseDuration(doc.StepTimeout)
		if err != nil {
			return nil, fmt.Errorf("parsing pipeline %s: invalid step_timeout: %w", filename, err)
		}
		model.StepTimeout = d
	}

	for i, s := range doc.Steps {
		step := &config.Step{
			Kind:        s.Kind,
			Name:        s.Name,
			Generator:   s.Generator,
			In:          s.In,
			Op:          s.Op,
			Destination: s.Destination,
			Provider:    s.Provider,
			Out:         s.Out,
			Params:      s.Params,
			Source:      filename,
		}
		if i < len(lines.Steps) {
			step.Source = fmt.Sprintf("%s:%d", filename, lines.Steps[i].Line)
		}
		model.Steps = append(model.Steps, step)
	}
	return model, nil
}
