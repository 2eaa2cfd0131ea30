// Package registry provides the central "glue" between the engine and the
// module system.
//
// Modules register named generators, transform operations and storage
// providers during application startup. The Registry then serves as the
// engine's collaborator: it looks up the named component for each step,
// routes save destinations to a provider and, for generators that allow it,
// serves repeated calls from a cache.
//
// Registration is not safe for concurrent use. Register everything before the
// first pipeline runs; lookups are read-only afterwards.
package registry
