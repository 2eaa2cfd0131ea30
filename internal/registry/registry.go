package registry

import (
	"context"
	"errors"
	"sort"

	"github.com/vk/mediagrid/internal/artifact"
	"github.com/vk/mediagrid/internal/cache"
)

// Module is the interface that all modules must implement to be registered.
type Module interface {
	Register(r *Registry)
}

var (
	// ErrGeneratorNotFound is returned for a generator name nobody registered.
	ErrGeneratorNotFound = errors.New("generator not found")
	// ErrOperationNotSupported is returned for an unknown transform operation.
	ErrOperationNotSupported = errors.New("operation not supported")
	// ErrProviderNotFound is returned when a destination cannot be routed.
	ErrProviderNotFound = errors.New("storage provider not found")
)

// DefaultProvider receives destinations that name neither a provider nor a
// known scheme.
const DefaultProvider = "local"

// GeneratorFunc produces a new artifact from parameters.
type GeneratorFunc func(ctx context.Context, params map[string]any) (*artifact.Artifact, error)

// OperationFunc derives a new artifact from in. It must not modify in.
type OperationFunc func(ctx context.Context, in *artifact.Artifact, params map[string]any) (*artifact.Artifact, error)

// Provider writes artifacts to a storage backend.
type Provider interface {
	Save(ctx context.Context, in *artifact.Artifact, destination string) (*artifact.SaveResult, error)
}

// ProviderFunc adapts a function to the Provider interface.
type ProviderFunc func(ctx context.Context, in *artifact.Artifact, destination string) (*artifact.SaveResult, error)

// Save implements Provider.
func (f ProviderFunc) Save(ctx context.Context, in *artifact.Artifact, destination string) (*artifact.SaveResult, error) {
	return f(ctx, in, destination)
}

// Registry holds the generators, operations and providers of a single
// application instance.
type Registry struct {
	generators map[string]*RegisteredGenerator
	operations map[string]OperationFunc
	providers  map[string]Provider
	schemes    map[string]string // scheme -> provider name
	cache      *cache.Artifacts
}

// New creates and initializes a new Registry instance.
func New() *Registry {
	return &Registry{
		generators: make(map[string]*RegisteredGenerator),
		operations: make(map[string]OperationFunc),
		providers:  make(map[string]Provider),
		schemes:    make(map[string]string),
	}
}

// UseCache serves cacheable generators through c. A nil c disables caching.
func (r *Registry) UseCache(c *cache.Artifacts) {
	r.cache = c
}

// Generators returns the registered generator names, sorted.
func (r *Registry) Generators() []string {
	return sortedNames(r.generators)
}

// Operations returns the registered operation names, sorted.
func (r *Registry) Operations() []string {
	return sortedNames(r.operations)
}

// Providers returns the registered provider names, sorted.
func (r *Registry) Providers() []string {
	return sortedNames(r.providers)
}

func sortedNames[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
