// Package imageops provides the raster transform operations: resizing,
// cropping, rotation, filters, format conversion and text overlay.
package imageops

import (
	"context"
	"image"

	"github.com/vk/mediagrid/internal/artifact"
	"github.com/vk/mediagrid/internal/ctxlog"
	"github.com/vk/mediagrid/internal/registry"
)

// maxEdge caps the dimensions an operation may produce.
const maxEdge = 8192

// Module implements the registry.Module interface for this package.
type Module struct{}

// imageOp transforms a decoded image. It must not modify img.
type imageOp func(img image.Image, p map[string]any) (image.Image, error)

// operations lists every op that keeps the input's encoding format.
var operations = map[string]imageOp{
	"resize":     resize,
	"thumbnail":  thumbnail,
	"crop":       crop,
	"rotate":     rotate,
	"flip":       flip,
	"grayscale":  grayscale,
	"invert":     invert,
	"blur":       blur,
	"sharpen":    sharpen,
	"brightness": brightness,
	"contrast":   contrast,
	"text":       drawText,
}

// adapt decodes the input artifact, applies op and re-encodes the result in
// the input's format.
func adapt(name string, op imageOp) registry.OperationFunc {
	return func(ctx context.Context, in *artifact.Artifact, p map[string]any) (*artifact.Artifact, error) {
		img, err := artifact.Decode(in)
		if err != nil {
			return nil, err
		}
		out, err := op(img, p)
		if err != nil {
			return nil, err
		}
		a, err := artifact.Encode(out, in.Format, 0)
		if err != nil {
			return nil, err
		}
		ctxlog.FromContext(ctx).Debug("Applied image operation.", "op", name, "from", in.Describe(), "to", a.Describe())
		return a, nil
	}
}

// Register registers every operation with the registry.
func (m *Module) Register(r *registry.Registry) {
	for name, op := range operations {
		r.RegisterOperation(name, adapt(name, op))
	}
	r.RegisterOperation("convert", convert)
}
