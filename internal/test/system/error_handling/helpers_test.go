package system

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/vk/mediagrid/internal/artifact"
	"github.com/vk/mediagrid/internal/registry"
	"github.com/vk/mediagrid/internal/params"
)

// mockModule registers an "ok" generator, a "fail" operation that always
// errors, a "sleeper" operation that waits for its "duration" param and a
// "counting" provider.
type mockModule struct {
	saves atomic.Int32
}

var errBoom = errors.New("boom")

func (m *mockModule) Register(r *registry.Registry) {
	r.RegisterGenerator("ok", &registry.RegisteredGenerator{
		Fn: func(context.Context, map[string]any) (*artifact.Artifact, error) {
			return &artifact.Artifact{Data: []byte("ok"), Format: "png", Width: 1, Height: 1}, nil
		},
	})
	r.RegisterOperation("fail", func(context.Context, *artifact.Artifact, map[string]any) (*artifact.Artifact, error) {
		return nil, errBoom
	})
	r.RegisterOperation("sleeper", func(ctx context.Context, in *artifact.Artifact, p map[string]any) (*artifact.Artifact, error) {
		var input struct {
			Duration string `param:"duration"`
		}
		if err := params.Decode(p, &input); err != nil {
			return nil, err
		}
		d, err := time.ParseDuration(input.Duration)
		if err != nil {
			return nil, err
		}
		select {
		case <-time.After(d):
			return in, nil
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	})
	r.RegisterProvider(registry.DefaultProvider, registry.ProviderFunc(func(_ context.Context, in *artifact.Artifact, destination string) (*artifact.SaveResult, error) {
		m.saves.Add(1)
		return &artifact.SaveResult{Location: destination, Size: in.Size()}, nil
	}))
}
