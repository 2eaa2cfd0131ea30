package artifact

import (
	"bytes"
	"fmt"
	"image"
	"strings"

	"github.com/disintegration/imaging"
)

// NormalizeFormat maps user-facing format names onto the canonical names used
// in Artifact.Format. An empty string defaults to "png".
func NormalizeFormat(name string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "png":
		return "png", nil
	case "jpg", "jpeg":
		return "jpeg", nil
	case "gif":
		return "gif", nil
	case "tif", "tiff":
		return "tiff", nil
	case "bmp":
		return "bmp", nil
	default:
		return "", fmt.Errorf("unsupported image format %q", name)
	}
}

// Extension returns the conventional file extension for a canonical format.
func Extension(format string) string {
	if format == "jpeg" {
		return ".jpg"
	}
	return "." + format
}

// Decode returns the image held by a.
func Decode(a *Artifact) (image.Image, error) {
	if a == nil || len(a.Data) == 0 {
		return nil, fmt.Errorf("artifact is empty")
	}
	img, err := imaging.Decode(bytes.NewReader(a.Data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decode %s artifact: %w", a.Format, err)
	}
	return img, nil
}

// Encode renders img as a new Artifact in the given format. quality only
// applies to jpeg and is ignored when zero.
func Encode(img image.Image, format string, quality int) (*Artifact, error) {
	canonical, err := NormalizeFormat(format)
	if err != nil {
		return nil, err
	}
	imgFormat, err := imaging.FormatFromExtension(canonical)
	if err != nil {
		return nil, err
	}

	var opts []imaging.EncodeOption
	if quality > 0 {
		opts = append(opts, imaging.JPEGQuality(quality))
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imgFormat, opts...); err != nil {
		return nil, fmt.Errorf("encode %s: %w", canonical, err)
	}
	bounds := img.Bounds()
	return &Artifact{
		Data:   buf.Bytes(),
		Format: canonical,
		Width:  bounds.Dx(),
		Height: bounds.Dy(),
	}, nil
}

// FromBytes wraps already encoded image data in an Artifact, reading its
// format and dimensions from the image header.
func FromBytes(data []byte) (*Artifact, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("image data is empty")
	}
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("read image header: %w", err)
	}
	return &Artifact{Data: data, Format: format, Width: cfg.Width, Height: cfg.Height}, nil
}
