package pipeline

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrVariableNotBound is returned when a step reads a variable that has
	// not been bound yet. The scheduler makes this unreachable; seeing it
	// means the wave computation is wrong.
	ErrVariableNotBound = errors.New("variable not bound")
	// ErrNotAnArtifact is returned when a transform or save reads a variable
	// that holds a save result instead of an image.
	ErrNotAnArtifact = errors.New("variable does not hold an artifact")
)

// UnresolvedStep describes a step that could not be placed in any wave.
type UnresolvedStep struct {
	Index int
	Kind  StepKind
	Label string
	// Unsatisfied lists the dependencies of this step that were never
	// satisfied, sorted by name.
	Unsatisfied []string
}

// UnschedulableGraphError reports that no further wave could be formed. It is
// returned before any step executes.
type UnschedulableGraphError struct {
	Steps []UnresolvedStep
	// Missing lists variables that no step in the pipeline produces.
	Missing []string
	// Blocked lists variables that are produced, but only by steps that are
	// themselves unresolved: part of a cycle, or downstream of a missing input.
	Blocked []string
}

func (e *UnschedulableGraphError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "pipeline is unschedulable: %d step(s) cannot run", len(e.Steps))
	if len(e.Missing) > 0 {
		fmt.Fprintf(&b, "; missing variables: %s", strings.Join(e.Missing, ", "))
	}
	if len(e.Blocked) > 0 {
		fmt.Fprintf(&b, "; blocked variables (cycle or missing upstream): %s", strings.Join(e.Blocked, ", "))
	}
	for _, s := range e.Steps {
		name := string(s.Kind)
		if s.Label != "" {
			name += "." + s.Label
		}
		fmt.Fprintf(&b, "\n  - step #%d %s waits on %s", s.Index, name, strings.Join(s.Unsatisfied, ", "))
	}
	return b.String()
}

// DuplicateOutputError reports a variable bound by more than one step.
type DuplicateOutputError struct {
	Variable string
	Indexes  []int
}

func (e *DuplicateOutputError) Error() string {
	idx := make([]string, len(e.Indexes))
	for i, v := range e.Indexes {
		idx[i] = fmt.Sprintf("#%d", v)
	}
	return fmt.Sprintf("variable %q is produced by more than one step (%s)", e.Variable, strings.Join(idx, ", "))
}

// SaveResultInputError reports a step that reads a variable bound by a save
// step. Saves bind a location, not an image, so the reader could never run.
type SaveResultInputError struct {
	Variable string
	// Producer is the index of the save step binding Variable.
	Producer int
	// Consumer is the index of the step reading it.
	Consumer int
}

func (e *SaveResultInputError) Error() string {
	return fmt.Sprintf("step #%d reads %q, which save step #%d binds to a save result, not an image", e.Consumer, e.Variable, e.Producer)
}

func (e *SaveResultInputError) Unwrap() error {
	return ErrNotAnArtifact
}

// StepError wraps a failure raised while executing a single step.
type StepError struct {
	Index int
	Kind  StepKind
	Label string
	Err   error
}

func (e *StepError) Error() string {
	name := string(e.Kind)
	if e.Label != "" {
		name += "." + e.Label
	}
	return fmt.Sprintf("step #%d %s failed: %v", e.Index, name, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}
