package registry

import (
	"context"
	"fmt"
	"strings"

	"github.com/vk/mediagrid/internal/artifact"
	"github.com/vk/mediagrid/internal/cache"
	"github.com/vk/mediagrid/internal/ctxlog"
)

// Generate runs the named generator, serving it from the cache when the
// generator is cacheable and a cache is configured.
func (r *Registry) Generate(ctx context.Context, name string, params map[string]any) (*artifact.Artifact, error) {
	logger := ctxlog.FromContext(ctx)

	g, ok := r.generators[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrGeneratorNotFound, name)
	}

	var key string
	if g.Cacheable && r.cache != nil {
		k, err := cache.Key(name, params)
		if err != nil {
			logger.Warn("Generator parameters cannot be cached; running uncached.", "generator", name, "error", err)
		} else if a, hit := r.cache.Get(k); hit {
			logger.Debug("Generator served from cache.", "generator", name)
			return a, nil
		} else {
			key = k
		}
	}

	a, err := g.Fn(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("generator %q: %w", name, err)
	}
	if a == nil {
		return nil, fmt.Errorf("generator %q returned no artifact", name)
	}
	if key != "" {
		r.cache.Add(key, a)
	}
	return a, nil
}

// Transform applies the named operation to in.
func (r *Registry) Transform(ctx context.Context, in *artifact.Artifact, op string, params map[string]any) (*artifact.Artifact, error) {
	fn, ok := r.operations[op]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrOperationNotSupported, op)
	}
	out, err := fn(ctx, in, params)
	if err != nil {
		return nil, fmt.Errorf("transform %q: %w", op, err)
	}
	if out == nil {
		return nil, fmt.Errorf("transform %q returned no artifact", op)
	}
	return out, nil
}

// Save writes in to destination through the resolved provider.
func (r *Registry) Save(ctx context.Context, in *artifact.Artifact, destination, provider string) (*artifact.SaveResult, error) {
	name, err := r.ResolveProvider(destination, provider)
	if err != nil {
		return nil, err
	}
	ctxlog.FromContext(ctx).Debug("Saving artifact.", "provider", name, "destination", destination)

	res, err := r.providers[name].Save(ctx, in, destination)
	if err != nil {
		return nil, fmt.Errorf("save via %q: %w", name, err)
	}
	if res == nil {
		return nil, fmt.Errorf("save via %q returned no result", name)
	}
	if res.Provider == "" {
		res.Provider = name
	}
	return res, nil
}

// ResolveProvider picks the provider for a destination. An explicit provider
// wins; otherwise a "scheme://" prefix selects the provider registered for
// that scheme; otherwise DefaultProvider is used.
func (r *Registry) ResolveProvider(destination, provider string) (string, error) {
	name := provider
	if name == "" {
		if scheme, ok := schemeOf(destination); ok {
			owner, known := r.schemes[scheme]
			if !known {
				return "", fmt.Errorf("%w: no provider for scheme %q", ErrProviderNotFound, scheme)
			}
			name = owner
		} else {
			name = DefaultProvider
		}
	}
	if _, ok := r.providers[name]; !ok {
		return "", fmt.Errorf("%w: %q", ErrProviderNotFound, name)
	}
	return name, nil
}

func schemeOf(destination string) (string, bool) {
	i := strings.Index(destination, "://")
	if i <= 0 {
		return "", false
	}
	return strings.ToLower(destination[:i]), true
}
