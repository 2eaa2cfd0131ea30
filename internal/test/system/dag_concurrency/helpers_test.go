package system

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/vk/mediagrid/internal/artifact"
	"github.com/vk/mediagrid/internal/registry"
	"github.com/vk/mediagrid/internal/testutil"
)

// mockSleeperModule registers a "sleeper" generator and a "sleep" operation
// that both sleep and record when they ran, keyed by their "id" param.
type mockSleeperModule struct {
	sleepDuration  time.Duration
	mu             sync.Mutex
	executionTimes map[string]testutil.ExecutionRecord
	inFlight       atomic.Int32
	peak           atomic.Int32
}

func newMockSleeperModule(sleep time.Duration) *mockSleeperModule {
	return &mockSleeperModule{
		sleepDuration:  sleep,
		executionTimes: make(map[string]testutil.ExecutionRecord),
	}
}

func (m *mockSleeperModule) sleep(ctx context.Context, p map[string]any) (*artifact.Artifact, error) {
	id := fmt.Sprint(p["id"])
	n := m.inFlight.Add(1)
	defer m.inFlight.Add(-1)
	for {
		old := m.peak.Load()
		if n <= old || m.peak.CompareAndSwap(old, n) {
			break
		}
	}

	start := time.Now()
	select {
	case <-time.After(m.sleepDuration):
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	m.mu.Lock()
	m.executionTimes[id] = testutil.ExecutionRecord{Start: start, End: time.Now()}
	m.mu.Unlock()
	return &artifact.Artifact{Data: []byte(id), Format: "png", Width: 1, Height: 1}, nil
}

func (m *mockSleeperModule) record(id string) testutil.ExecutionRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.executionTimes[id]
}

// Register registers the "sleeper" generator and the "sleep" operation.
func (m *mockSleeperModule) Register(r *registry.Registry) {
	r.RegisterGenerator("sleeper", &registry.RegisteredGenerator{Fn: m.sleep})
	r.RegisterOperation("sleep", func(ctx context.Context, _ *artifact.Artifact, p map[string]any) (*artifact.Artifact, error) {
		return m.sleep(ctx, p)
	})
}
