// Package print provides the "print" storage provider, which writes a
// description of each artifact instead of storing it. It is meant for dry
// runs and debugging pipelines.
package print

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/vk/mediagrid/internal/artifact"
	"github.com/vk/mediagrid/internal/ctxlog"
	"github.com/vk/mediagrid/internal/registry"
)

// Scheme is the destination prefix routed to this provider.
const Scheme = "print"

// Module implements the registry.Module interface for this package.
type Module struct {
	// Out receives one line per saved artifact. Nil means stdout.
	Out io.Writer

	mu sync.Mutex
}

// Save prints in and reports the destination as its location.
func (m *Module) Save(ctx context.Context, in *artifact.Artifact, destination string) (*artifact.SaveResult, error) {
	ctxlog.FromContext(ctx).Debug("Printing artifact.", "destination", destination)

	out := m.Out
	if out == nil {
		out = os.Stdout
	}
	name := strings.TrimPrefix(destination, Scheme+"://")

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, err := fmt.Fprintf(out, "      %s = %s\n", name, in.Describe()); err != nil {
		return nil, err
	}
	return &artifact.SaveResult{Location: destination, Provider: "print", Size: in.Size()}, nil
}

// Register registers the provider and its scheme with the registry.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterProvider("print", m, Scheme)
}
