// Package artifact defines the values that flow between pipeline steps: the
// generated or transformed image itself, and the metadata returned by a save.
package artifact

import "fmt"

// Value is anything that can be bound to a pipeline variable.
type Value interface {
	// Describe returns a short, human-readable summary used in logs and
	// result listings.
	Describe() string
	isValue()
}

// Artifact is an opaque handle to an encoded image. The engine never looks
// inside Data; only modules do.
type Artifact struct {
	Data   []byte
	Format string // "png", "jpeg", ...
	Width  int
	Height int
}

// Size returns the encoded size in bytes.
func (a *Artifact) Size() int64 {
	if a == nil {
		return 0
	}
	return int64(len(a.Data))
}

// Describe implements Value.
func (a *Artifact) Describe() string {
	if a == nil {
		return "<nil artifact>"
	}
	return fmt.Sprintf("%s %dx%d (%d bytes)", a.Format, a.Width, a.Height, len(a.Data))
}

func (*Artifact) isValue() {}

// SaveResult is what a storage provider reports after writing an artifact.
type SaveResult struct {
	Location string
	Provider string
	Size     int64
}

// Describe implements Value.
func (r *SaveResult) Describe() string {
	if r == nil {
		return "<nil save result>"
	}
	return fmt.Sprintf("%s via %s (%d bytes)", r.Location, r.Provider, r.Size)
}

func (*SaveResult) isValue() {}
