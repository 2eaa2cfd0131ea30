package imageops

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/vk/mediagrid/internal/artifact"
	"github.com/vk/mediagrid/internal/params"
)

var filters = map[string]imaging.ResampleFilter{
	"lanczos":    imaging.Lanczos,
	"catmullrom": imaging.CatmullRom,
	"linear":     imaging.Linear,
	"box":        imaging.Box,
	"nearest":    imaging.NearestNeighbor,
}

func lookupFilter(name string) (imaging.ResampleFilter, error) {
	if name == "" {
		return imaging.Lanczos, nil
	}
	f, ok := filters[strings.ToLower(name)]
	if !ok {
		return imaging.ResampleFilter{}, fmt.Errorf("unknown filter %q", name)
	}
	return f, nil
}

type sizeInput struct {
	Width  int    `param:"width"`
	Height int    `param:"height"`
	Filter string `param:"filter"`
}

// resize scales to width x height; a zero edge keeps the aspect ratio.
func resize(img image.Image, p map[string]any) (image.Image, error) {
	var in sizeInput
	if err := params.Decode(p, &in); err != nil {
		return nil, err
	}
	if in.Width == 0 && in.Height == 0 {
		return nil, fmt.Errorf("resize needs width, height or both")
	}
	if in.Width < 0 || in.Height < 0 || in.Width > maxEdge || in.Height > maxEdge {
		return nil, fmt.Errorf("resize dimensions must be between 0 and %d, got %dx%d", maxEdge, in.Width, in.Height)
	}
	filter, err := lookupFilter(in.Filter)
	if err != nil {
		return nil, err
	}
	return imaging.Resize(img, in.Width, in.Height, filter), nil
}

// thumbnail scales and crops to exactly width x height.
func thumbnail(img image.Image, p map[string]any) (image.Image, error) {
	var in sizeInput
	if err := params.Decode(p, &in); err != nil {
		return nil, err
	}
	if err := params.CheckDimension("width", in.Width, maxEdge); err != nil {
		return nil, err
	}
	if err := params.CheckDimension("height", in.Height, maxEdge); err != nil {
		return nil, err
	}
	filter, err := lookupFilter(in.Filter)
	if err != nil {
		return nil, err
	}
	return imaging.Thumbnail(img, in.Width, in.Height, filter), nil
}

// crop cuts the rectangle at (x, y) of width x height, which must lie inside
// the image.
func crop(img image.Image, p map[string]any) (image.Image, error) {
	var in struct {
		X      int `param:"x"`
		Y      int `param:"y"`
		Width  int `param:"width"`
		Height int `param:"height"`
	}
	if err := params.Decode(p, &in); err != nil {
		return nil, err
	}
	b := img.Bounds()
	rect := image.Rect(in.X, in.Y, in.X+in.Width, in.Y+in.Height).Add(b.Min)
	if in.Width <= 0 || in.Height <= 0 || in.X < 0 || in.Y < 0 || !rect.In(b) {
		return nil, fmt.Errorf("crop rectangle %dx%d at (%d,%d) is outside the %dx%d image", in.Width, in.Height, in.X, in.Y, b.Dx(), b.Dy())
	}
	return imaging.Crop(img, rect), nil
}

// rotate turns the image counter-clockwise by angle degrees. Right angles
// are lossless; other angles grow the canvas and fill it with background.
func rotate(img image.Image, p map[string]any) (image.Image, error) {
	in := struct {
		Angle      float64 `param:"angle"`
		Background string  `param:"background"`
	}{Background: "#00000000"}
	if err := params.Decode(p, &in); err != nil {
		return nil, err
	}
	switch in.Angle {
	case 0:
		return imaging.Clone(img), nil
	case 90, -270:
		return imaging.Rotate90(img), nil
	case 180, -180:
		return imaging.Rotate180(img), nil
	case 270, -90:
		return imaging.Rotate270(img), nil
	}
	bg, err := params.ParseHexColor("background", in.Background)
	if err != nil {
		return nil, err
	}
	return imaging.Rotate(img, in.Angle, bg), nil
}

func flip(img image.Image, p map[string]any) (image.Image, error) {
	in := struct {
		Direction string `param:"direction"`
	}{Direction: "horizontal"}
	if err := params.Decode(p, &in); err != nil {
		return nil, err
	}
	switch strings.ToLower(in.Direction) {
	case "horizontal", "h":
		return imaging.FlipH(img), nil
	case "vertical", "v":
		return imaging.FlipV(img), nil
	default:
		return nil, fmt.Errorf("unknown flip direction %q (want horizontal or vertical)", in.Direction)
	}
}

func grayscale(img image.Image, p map[string]any) (image.Image, error) {
	if err := params.Decode(p, &struct{}{}); err != nil {
		return nil, err
	}
	return imaging.Grayscale(img), nil
}

func invert(img image.Image, p map[string]any) (image.Image, error) {
	if err := params.Decode(p, &struct{}{}); err != nil {
		return nil, err
	}
	return imaging.Invert(img), nil
}

type sigmaInput struct {
	Sigma float64 `param:"sigma"`
}

func decodeSigma(p map[string]any) (float64, error) {
	in := sigmaInput{Sigma: 1}
	if err := params.Decode(p, &in); err != nil {
		return 0, err
	}
	if in.Sigma <= 0 {
		return 0, fmt.Errorf("sigma must be positive, got %g", in.Sigma)
	}
	return in.Sigma, nil
}

func blur(img image.Image, p map[string]any) (image.Image, error) {
	sigma, err := decodeSigma(p)
	if err != nil {
		return nil, err
	}
	return imaging.Blur(img, sigma), nil
}

func sharpen(img image.Image, p map[string]any) (image.Image, error) {
	sigma, err := decodeSigma(p)
	if err != nil {
		return nil, err
	}
	return imaging.Sharpen(img, sigma), nil
}

type percentInput struct {
	Percent float64 `param:"percent"`
}

func decodePercent(p map[string]any) (float64, error) {
	var in percentInput
	if err := params.Decode(p, &in); err != nil {
		return 0, err
	}
	if in.Percent < -100 || in.Percent > 100 {
		return 0, fmt.Errorf("percent must be between -100 and 100, got %g", in.Percent)
	}
	return in.Percent, nil
}

func brightness(img image.Image, p map[string]any) (image.Image, error) {
	pct, err := decodePercent(p)
	if err != nil {
		return nil, err
	}
	return imaging.AdjustBrightness(img, pct), nil
}

func contrast(img image.Image, p map[string]any) (image.Image, error) {
	pct, err := decodePercent(p)
	if err != nil {
		return nil, err
	}
	return imaging.AdjustContrast(img, pct), nil
}

// convert re-encodes the artifact in another format. Formats without an
// alpha channel are flattened onto the background color first.
func convert(_ context.Context, a *artifact.Artifact, p map[string]any) (*artifact.Artifact, error) {
	in := struct {
		Format     string `param:"format"`
		Quality    int    `param:"quality"`
		Background string `param:"background"`
	}{Background: "#ffffff"}
	if err := params.Decode(p, &in); err != nil {
		return nil, err
	}
	if in.Format == "" {
		return nil, fmt.Errorf("missing required param %q", "format")
	}
	if in.Quality < 0 || in.Quality > 100 {
		return nil, fmt.Errorf("quality must be between 1 and 100, got %d", in.Quality)
	}
	format, err := artifact.NormalizeFormat(in.Format)
	if err != nil {
		return nil, err
	}

	img, err := artifact.Decode(a)
	if err != nil {
		return nil, err
	}
	if format == "jpeg" || format == "bmp" {
		bg, err := params.ParseHexColor("background", in.Background)
		if err != nil {
			return nil, err
		}
		img = flatten(img, bg)
	}
	return artifact.Encode(img, format, in.Quality)
}

func flatten(img image.Image, bg color.Color) image.Image {
	b := img.Bounds()
	canvas := imaging.New(b.Dx(), b.Dy(), bg)
	return imaging.Overlay(canvas, img, image.Pt(0, 0), 1.0)
}
