package system

import (
	"context"
	"fmt"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/mediagrid/internal/pipeline"
	"github.com/vk/mediagrid/internal/testutil"
)

const sleepingPipeline = `
		step_timeout = "%s"

		step "generate" "A" {
			generator = "ok"
			out       = "a"
		}
		step "transform" "B" {
			in  = "a"
			op  = "sleeper"
			out = "b"
			params {
				duration = "1s"
			}
		}
	`

// Test for: step_timeout bounds every collaborator call.
func TestErrorHandling_StepTimeout_FailsRun(t *testing.T) {
	// --- Arrange ---
	hcl := fmt.Sprintf(sleepingPipeline, "50ms")
	start := time.Now()

	// --- Act ---
	result := testutil.RunIntegrationTest(t, map[string]string{"main.hcl": hcl}, &mockModule{})

	// --- Assert ---
	require.Error(t, result.Err)
	assert.True(t, errors.Is(result.Err, context.DeadlineExceeded), "got: %v", result.Err)
	var stepErr *pipeline.StepError
	require.ErrorAs(t, result.Err, &stepErr)
	assert.Equal(t, "B", stepErr.Label)
	assert.Less(t, time.Since(start), 900*time.Millisecond)
	testutil.AssertStepRan(t, result, pipeline.KindGenerate, "A")
}

// Test for: cancelling the run context stops the pipeline.
func TestErrorHandling_ContextTimeout_FailsRun(t *testing.T) {
	// --- Arrange ---
	hcl := fmt.Sprintf(sleepingPipeline, "10s")
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	// --- Act ---
	result := testutil.RunIntegrationTestWithContext(ctx, t, map[string]string{"main.hcl": hcl}, nil, &mockModule{})

	// --- Assert ---
	require.Error(t, result.Err)
	assert.True(t, errors.Is(result.Err, context.DeadlineExceeded), "got: %v", result.Err)
}
