package registry

import (
	"fmt"
	"log/slog"
)

// RegisteredGenerator holds a generator function and how it may be served.
type RegisteredGenerator struct {
	Fn GeneratorFunc
	// Cacheable marks generators whose output depends only on their
	// parameters.
	Cacheable bool
}

// RegisterGenerator registers a generator under name.
func (r *Registry) RegisterGenerator(name string, g *RegisteredGenerator) {
	if _, exists := r.generators[name]; exists {
		panic(fmt.Sprintf("generator with name '%s' already registered", name))
	}
	slog.Debug("Registering generator.", "name", name, "cacheable", g.Cacheable)
	r.generators[name] = g
}

// RegisterOperation registers a transform operation under name.
func (r *Registry) RegisterOperation(name string, fn OperationFunc) {
	if _, exists := r.operations[name]; exists {
		panic(fmt.Sprintf("operation with name '%s' already registered", name))
	}
	slog.Debug("Registering operation.", "name", name)
	r.operations[name] = fn
}

// RegisterProvider registers a storage provider under name. Destinations of
// the form "scheme://..." are routed to it for every scheme given.
func (r *Registry) RegisterProvider(name string, p Provider, schemes ...string) {
	if _, exists := r.providers[name]; exists {
		panic(fmt.Sprintf("provider with name '%s' already registered", name))
	}
	for _, s := range schemes {
		if owner, taken := r.schemes[s]; taken {
			panic(fmt.Sprintf("scheme '%s' already claimed by provider '%s'", s, owner))
		}
	}
	slog.Debug("Registering provider.", "name", name, "schemes", schemes)
	r.providers[name] = p
	for _, s := range schemes {
		r.schemes[s] = name
	}
}
