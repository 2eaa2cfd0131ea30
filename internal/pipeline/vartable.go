package pipeline

import (
	"fmt"
	"sync"

	"github.com/vk/mediagrid/internal/artifact"
)

// VarTable binds variable names to the values produced by completed steps.
// Each name can be bound once. A table lives for exactly one run.
type VarTable struct {
	mu   sync.RWMutex
	vars map[string]artifact.Value
}

// NewVarTable returns an empty table.
func NewVarTable() *VarTable {
	return &VarTable{vars: make(map[string]artifact.Value)}
}

// Get returns the value bound to name.
func (t *VarTable) Get(name string) (artifact.Value, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	v, ok := t.vars[name]
	return v, ok
}

// Set binds name to v. Binding a name twice is an error.
func (t *VarTable) Set(name string, v artifact.Value) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, exists := t.vars[name]; exists {
		return fmt.Errorf("variable %q is already bound", name)
	}
	t.vars[name] = v
	return nil
}

// Artifact returns the artifact bound to name, failing if the name is unbound
// or bound to something other than an artifact.
func (t *VarTable) Artifact(name string) (*artifact.Artifact, error) {
	v, ok := t.Get(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrVariableNotBound, name)
	}
	a, ok := v.(*artifact.Artifact)
	if !ok {
		return nil, fmt.Errorf("%w: %q holds %T", ErrNotAnArtifact, name, v)
	}
	return a, nil
}

// Len returns the number of bound variables.
func (t *VarTable) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.vars)
}
