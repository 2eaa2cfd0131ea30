package system

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/mediagrid/internal/testutil"
)

// Test for: a wave starts only after every step of the previous wave is done,
// even when its own input was ready earlier.
func TestDagConcurrency_WaveBarrier(t *testing.T) {
	// --- Arrange ---
	yaml := `
steps:
  - {kind: generate, name: slow, generator: sleeper, params: {id: slow}, out: slow}
  - {kind: generate, name: fast, generator: sleeper, params: {id: fast}, out: fast}
  - {kind: transform, name: next, in: fast, op: sleep, params: {id: next}, out: next}
`
	mock := newMockSleeperModule(60 * time.Millisecond)

	// --- Act ---
	result := testutil.RunIntegrationTest(t, map[string]string{"main.yaml": yaml}, mock)

	// --- Assert ---
	require.NoError(t, result.Err)
	latest := mock.record("slow").End
	if mock.record("fast").End.After(latest) {
		latest = mock.record("fast").End
	}
	assert.False(t, mock.record("next").Start.Before(latest), "next started before its wave barrier")
}
