package pipeline

import "time"

// StepKind names one of the three step variants.
type StepKind string

const (
	KindGenerate  StepKind = "generate"
	KindTransform StepKind = "transform"
	KindSave      StepKind = "save"
)

// Step is a single entry of a pipeline. The set of implementations is closed:
// GenerateStep, TransformStep and SaveStep.
type Step interface {
	// Kind reports which variant this step is.
	Kind() StepKind
	// Label is the optional human-readable name of the step.
	Label() string

	isStep()
}

// GenerateStep produces a new artifact from a named generator.
type GenerateStep struct {
	Name      string
	Generator string
	Params    map[string]any
	Out       string
}

// TransformStep applies one operation to an artifact bound to In and binds the
// result to Out.
type TransformStep struct {
	Name   string
	In     string
	Op     string
	Params map[string]any
	Out    string
}

// SaveStep writes the artifact bound to In to a destination. Provider is
// optional and overrides destination routing. Out is optional; when set, the
// save result is bound so later steps can depend on it.
type SaveStep struct {
	Name        string
	In          string
	Destination string
	Provider    string
	Out         string
}

func (GenerateStep) Kind() StepKind  { return KindGenerate }
func (TransformStep) Kind() StepKind { return KindTransform }
func (SaveStep) Kind() StepKind      { return KindSave }

func (s GenerateStep) Label() string  { return s.Name }
func (s TransformStep) Label() string { return s.Name }
func (s SaveStep) Label() string      { return s.Name }

func (GenerateStep) isStep()  {}
func (TransformStep) isStep() {}
func (SaveStep) isStep()      {}

// Pipeline is a parsed pipeline definition.
type Pipeline struct {
	Steps []Step
	// Concurrency caps the number of steps in flight within a wave. Zero or
	// less means unbounded.
	Concurrency int
	// StepTimeout bounds every collaborator call. Zero means no timeout: a
	// collaborator that never returns blocks the run.
	StepTimeout time.Duration
}
