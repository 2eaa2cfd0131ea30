package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vk/mediagrid/internal/pipeline"
)

// FindResult returns the result of the step with the given kind and label.
func FindResult(result *HarnessResult, kind pipeline.StepKind, label string) (pipeline.Result, bool) {
	for _, r := range result.Results {
		if r.Kind == kind && r.Label == label {
			return r, true
		}
	}
	return pipeline.Result{}, false
}

// AssertStepRan checks that the step with the given kind and label completed.
func AssertStepRan(t *testing.T, result *HarnessResult, kind pipeline.StepKind, label string) pipeline.Result {
	t.Helper()
	r, ok := FindResult(result, kind, label)
	require.True(t, ok, "expected step %s.%s to have completed", kind, label)
	return r
}

// AssertStepNotRan checks that the step with the given kind and label has no
// result.
func AssertStepNotRan(t *testing.T, result *HarnessResult, kind pipeline.StepKind, label string) {
	t.Helper()
	_, ok := FindResult(result, kind, label)
	require.False(t, ok, "expected step %s.%s not to have completed", kind, label)
}
