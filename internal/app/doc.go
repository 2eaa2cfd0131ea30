// Package app wires the pipeline engine to its collaborators: it builds the
// logger, the module registry and the pipeline file loaders from a Config,
// and drives the load, plan and run lifecycle independently of any
// entrypoint like a CLI.
package app
