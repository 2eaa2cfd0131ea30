// Package qrcode provides the "qrcode" generator.
package qrcode

import (
	"context"
	"fmt"
	"strings"

	"github.com/skip2/go-qrcode"
	"github.com/vk/mediagrid/internal/artifact"
	"github.com/vk/mediagrid/internal/ctxlog"
	"github.com/vk/mediagrid/internal/params"
	"github.com/vk/mediagrid/internal/registry"
)

const maxSize = 4096

// Module implements the registry.Module interface for this package.
type Module struct{}

// Input defines the params of the qrcode generator.
type Input struct {
	Content    string `param:"content"`
	Size       int    `param:"size"`
	Level      string `param:"level"`
	Color      string `param:"color"`
	Background string `param:"background"`
	NoBorder   bool   `param:"no_border"`
	Format     string `param:"format"`
}

var levels = map[string]qrcode.RecoveryLevel{
	"L": qrcode.Low,
	"M": qrcode.Medium,
	"Q": qrcode.High,
	"H": qrcode.Highest,
}

// Generate encodes the content param as a square QR code image.
func Generate(ctx context.Context, p map[string]any) (*artifact.Artifact, error) {
	in := Input{Size: 256, Level: "M", Color: "#000000", Background: "#ffffff", Format: "png"}
	if err := params.Decode(p, &in); err != nil {
		return nil, err
	}
	if in.Content == "" {
		return nil, fmt.Errorf("missing required param %q", "content")
	}
	if err := params.CheckDimension("size", in.Size, maxSize); err != nil {
		return nil, err
	}
	level, ok := levels[strings.ToUpper(in.Level)]
	if !ok {
		return nil, fmt.Errorf("unknown recovery level %q (want L, M, Q or H)", in.Level)
	}
	fg, err := params.ParseHexColor("color", in.Color)
	if err != nil {
		return nil, err
	}
	bg, err := params.ParseHexColor("background", in.Background)
	if err != nil {
		return nil, err
	}

	q, err := qrcode.New(in.Content, level)
	if err != nil {
		return nil, fmt.Errorf("encode qr code: %w", err)
	}
	q.ForegroundColor = fg
	q.BackgroundColor = bg
	q.DisableBorder = in.NoBorder

	ctxlog.FromContext(ctx).Debug("Rendering QR code.", "size", in.Size, "level", strings.ToUpper(in.Level), "content_length", len(in.Content))
	return artifact.Encode(q.Image(in.Size), in.Format, 0)
}

// Register registers the generator with the registry.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterGenerator("qrcode", &registry.RegisteredGenerator{
		Fn:        Generate,
		Cacheable: true,
	})
}
