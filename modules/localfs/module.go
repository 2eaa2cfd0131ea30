// Package localfs provides the "local" storage provider, which writes
// artifacts to the local filesystem.
package localfs

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/vk/mediagrid/internal/artifact"
	"github.com/vk/mediagrid/internal/ctxlog"
	"github.com/vk/mediagrid/internal/registry"
)

// Scheme is the destination prefix routed to this provider, as in
// "file://out/logo.png".
const Scheme = "file"

// Module implements the registry.Module interface for this package.
type Module struct {
	// Root is the output directory relative destinations are written under.
	// Empty means the working directory.
	Root string
}

// resolve maps a destination onto a file path. Absolute destinations are
// used as is; relative ones must stay inside Root. A destination without an
// extension gets the one matching format.
func (m *Module) resolve(destination, format string) (string, error) {
	p := destination
	if len(p) >= len(Scheme)+3 && strings.EqualFold(p[:len(Scheme)+3], Scheme+"://") {
		p = p[len(Scheme)+3:]
	}
	if strings.TrimSpace(p) == "" {
		return "", fmt.Errorf("destination %q is empty", destination)
	}
	if filepath.Ext(p) == "" && format != "" {
		p += artifact.Extension(format)
	}
	if filepath.IsAbs(p) {
		return filepath.Clean(p), nil
	}
	if !filepath.IsLocal(p) {
		return "", fmt.Errorf("destination %q escapes the output directory", destination)
	}
	root := m.Root
	if root == "" {
		root = "."
	}
	return filepath.Abs(filepath.Join(root, p))
}

// Save writes in to the path named by destination, creating parent
// directories. The file is written to a temporary name first and renamed
// into place.
func (m *Module) Save(ctx context.Context, in *artifact.Artifact, destination string) (*artifact.SaveResult, error) {
	if in == nil || len(in.Data) == 0 {
		return nil, fmt.Errorf("artifact is empty")
	}
	path, err := m.resolve(destination, in.Format)
	if err != nil {
		return nil, err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(in.Data); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("write %s: %w", path, err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return nil, err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return nil, fmt.Errorf("move into place %s: %w", path, err)
	}

	ctxlog.FromContext(ctx).Debug("Wrote artifact.", "path", path, "size", in.Size())
	return &artifact.SaveResult{Location: path, Provider: registry.DefaultProvider, Size: in.Size()}, nil
}

// Register registers the provider as the default provider.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterProvider(registry.DefaultProvider, m, Scheme)
}
