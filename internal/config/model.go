package config

import (
	"fmt"
	"time"

	"github.com/vk/mediagrid/internal/pipeline"
)

// Model is the unified, format-agnostic representation of a pipeline file.
type Model struct {
	// Concurrency is the per-wave cap; zero means unbounded.
	Concurrency int
	// StepTimeout bounds each collaborator call; zero means no limit.
	StepTimeout time.Duration
	Steps       []*Step
}

// Step is the format-agnostic representation of a single step. Which fields
// are meaningful depends on Kind.
type Step struct {
	Kind        string
	Name        string
	Generator   string
	In          string
	Op          string
	Destination string
	Provider    string
	Out         string
	Params      map[string]any
	// Source is a "file:line" reference used in error messages.
	Source string
}

// Merge appends other's steps to m. Top-level settings may be set by at most
// one of the two models unless they agree.
func (m *Model) Merge(other *Model) error {
	if other == nil {
		return nil
	}
	if other.Concurrency != 0 {
		if m.Concurrency != 0 && m.Concurrency != other.Concurrency {
			return fmt.Errorf("conflicting concurrency settings: %d and %d", m.Concurrency, other.Concurrency)
		}
		m.Concurrency = other.Concurrency
	}
	if other.StepTimeout != 0 {
		if m.StepTimeout != 0 && m.StepTimeout != other.StepTimeout {
			return fmt.Errorf("conflicting step_timeout settings: %s and %s", m.StepTimeout, other.StepTimeout)
		}
		m.StepTimeout = other.StepTimeout
	}
	m.Steps = append(m.Steps, other.Steps...)
	return nil
}

// Pipeline validates the model and converts it into an executable pipeline.
// Every malformed step is a load error; graph-level problems such as missing
// variables or cycles are left to the scheduler.
func (m *Model) Pipeline() (*pipeline.Pipeline, error) {
	if m.Concurrency < 0 {
		return nil, fmt.Errorf("concurrency must not be negative, got %d", m.Concurrency)
	}
	if m.StepTimeout < 0 {
		return nil, fmt.Errorf("step_timeout must not be negative, got %s", m.StepTimeout)
	}

	p := &pipeline.Pipeline{
		Concurrency: m.Concurrency,
		StepTimeout: m.StepTimeout,
		Steps:       make([]pipeline.Step, 0, len(m.Steps)),
	}
	for i, s := range m.Steps {
		step, err := s.toStep()
		if err != nil {
			return nil, fmt.Errorf("step #%d%s: %w", i, s.where(), err)
		}
		p.Steps = append(p.Steps, step)
	}
	return p, nil
}

func (s *Step) where() string {
	if s.Source == "" {
		return ""
	}
	return " (" + s.Source + ")"
}

func (s *Step) toStep() (pipeline.Step, error) {
	switch pipeline.StepKind(s.Kind) {
	case pipeline.KindGenerate:
		if err := requireFields(map[string]string{"generator": s.Generator, "out": s.Out}); err != nil {
			return nil, err
		}
		if err := forbidFields(map[string]string{"in": s.In, "op": s.Op, "destination": s.Destination, "provider": s.Provider}); err != nil {
			return nil, err
		}
		return pipeline.GenerateStep{Name: s.Name, Generator: s.Generator, Params: s.Params, Out: s.Out}, nil

	case pipeline.KindTransform:
		if err := requireFields(map[string]string{"in": s.In, "op": s.Op, "out": s.Out}); err != nil {
			return nil, err
		}
		if err := forbidFields(map[string]string{"generator": s.Generator, "destination": s.Destination, "provider": s.Provider}); err != nil {
			return nil, err
		}
		return pipeline.TransformStep{Name: s.Name, In: s.In, Op: s.Op, Params: s.Params, Out: s.Out}, nil

	case pipeline.KindSave:
		if err := requireFields(map[string]string{"in": s.In, "destination": s.Destination}); err != nil {
			return nil, err
		}
		if err := forbidFields(map[string]string{"generator": s.Generator, "op": s.Op}); err != nil {
			return nil, err
		}
		if len(s.Params) > 0 {
			return nil, fmt.Errorf("save steps take no params")
		}
		return pipeline.SaveStep{Name: s.Name, In: s.In, Destination: s.Destination, Provider: s.Provider, Out: s.Out}, nil

	case "":
		return nil, fmt.Errorf("missing step kind")
	default:
		return nil, fmt.Errorf("unknown step kind %q (want generate, transform or save)", s.Kind)
	}
}

func requireFields(fields map[string]string) error {
	for _, name := range sortedFieldNames(fields) {
		if fields[name] == "" {
			return fmt.Errorf("missing required field %q", name)
		}
	}
	return nil
}

func forbidFields(fields map[string]string) error {
	for _, name := range sortedFieldNames(fields) {
		if fields[name] != "" {
			return fmt.Errorf("field %q is not allowed here", name)
		}
	}
	return nil
}
