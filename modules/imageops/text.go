package imageops

import (
	"fmt"
	"image"
	"sync"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"github.com/vk/mediagrid/internal/params"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
)

var (
	builtinFontOnce sync.Once
	builtinFont     *truetype.Font
	builtinFontErr  error
)

func loadFace(path string, size float64) (font.Face, error) {
	if path != "" {
		face, err := gg.LoadFontFace(path, size)
		if err != nil {
			return nil, fmt.Errorf("load font %s: %w", path, err)
		}
		return face, nil
	}
	builtinFontOnce.Do(func() {
		builtinFont, builtinFontErr = truetype.Parse(goregular.TTF)
	})
	if builtinFontErr != nil {
		return nil, builtinFontErr
	}
	return truetype.NewFace(builtinFont, &truetype.Options{Size: size}), nil
}

// drawText renders a line of text onto a copy of img. (x, y) is the anchor
// point; anchor_x and anchor_y place the text relative to it, 0 being
// left/top and 1 right/bottom.
func drawText(img image.Image, p map[string]any) (image.Image, error) {
	in := struct {
		Text    string  `param:"text"`
		X       float64 `param:"x"`
		Y       float64 `param:"y"`
		AnchorX float64 `param:"anchor_x"`
		AnchorY float64 `param:"anchor_y"`
		Size    float64 `param:"size"`
		Color   string  `param:"color"`
		Font    string  `param:"font"`
	}{Size: 24, Color: "#000000"}
	if err := params.Decode(p, &in); err != nil {
		return nil, err
	}
	if in.Text == "" {
		return nil, fmt.Errorf("missing required param %q", "text")
	}
	if in.Size <= 0 {
		return nil, fmt.Errorf("size must be positive, got %g", in.Size)
	}
	if err := params.CheckHexColor("color", in.Color); err != nil {
		return nil, err
	}

	face, err := loadFace(in.Font, in.Size)
	if err != nil {
		return nil, err
	}

	dc := gg.NewContextForImage(img)
	dc.SetFontFace(face)
	dc.SetHexColor(in.Color)
	dc.DrawStringAnchored(in.Text, in.X, in.Y, in.AnchorX, in.AnchorY)
	return dc.Image(), nil
}
