// Package config defines the format-agnostic pipeline model along with the
// Loader interface implemented by each file format.
//
// Concrete loaders (HCL, YAML/JSON) live in their own packages and translate
// files into a Model. The Dispatcher picks a loader by file extension, merges
// a directory of files into one Model, and Model.Pipeline validates the result
// and turns it into the engine's pipeline.Pipeline.
package config
