// Package shape provides the "shape" generator, which renders a single filled
// rectangle, circle or ellipse.
package shape

import (
	"context"
	"fmt"
	"math"

	"github.com/fogleman/gg"
	"github.com/vk/mediagrid/internal/artifact"
	"github.com/vk/mediagrid/internal/ctxlog"
	"github.com/vk/mediagrid/internal/params"
	"github.com/vk/mediagrid/internal/registry"
)

// maxEdge caps width and height.
const maxEdge = 8192

// Module implements the registry.Module interface for this package.
type Module struct{}

// Input defines the params of the shape generator.
type Input struct {
	Shape      string `param:"shape"`
	Width      int    `param:"width"`
	Height     int    `param:"height"`
	Color      string `param:"color"`
	Background string `param:"background"`
	Format     string `param:"format"`
}

func defaultInput() Input {
	return Input{Shape: "rect", Width: 256, Height: 256, Color: "#000000", Format: "png"}
}

func (in *Input) validate() error {
	switch in.Shape {
	case "rect", "circle", "ellipse":
	default:
		return fmt.Errorf("unknown shape %q (want rect, circle or ellipse)", in.Shape)
	}
	if err := params.CheckDimension("width", in.Width, maxEdge); err != nil {
		return err
	}
	if err := params.CheckDimension("height", in.Height, maxEdge); err != nil {
		return err
	}
	if err := params.CheckHexColor("color", in.Color); err != nil {
		return err
	}
	if in.Background != "" {
		if err := params.CheckHexColor("background", in.Background); err != nil {
			return err
		}
	}
	return nil
}

// Generate renders the shape described by p. An empty background leaves the
// canvas transparent.
func Generate(ctx context.Context, p map[string]any) (*artifact.Artifact, error) {
	in := defaultInput()
	if err := params.Decode(p, &in); err != nil {
		return nil, err
	}
	if err := in.validate(); err != nil {
		return nil, err
	}
	ctxlog.FromContext(ctx).Debug("Rendering shape.", "shape", in.Shape, "width", in.Width, "height", in.Height)

	dc := gg.NewContext(in.Width, in.Height)
	if in.Background != "" {
		dc.SetHexColor(in.Background)
		dc.Clear()
	}

	w, h := float64(in.Width), float64(in.Height)
	switch in.Shape {
	case "rect":
		dc.DrawRectangle(0, 0, w, h)
	case "circle":
		dc.DrawCircle(w/2, h/2, math.Min(w, h)/2)
	case "ellipse":
		dc.DrawEllipse(w/2, h/2, w/2, h/2)
	}
	dc.SetHexColor(in.Color)
	dc.Fill()

	return artifact.Encode(dc.Image(), in.Format, 0)
}

// Register registers the generator with the registry.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterGenerator("shape", &registry.RegisteredGenerator{
		Fn:        Generate,
		Cacheable: true,
	})
}
