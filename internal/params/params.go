// Package params decodes the free-form params map of a pipeline step into a
// typed options struct.
package params

import (
	"fmt"
	"image/color"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-viper/mapstructure/v2"
)

// Decode copies in into the struct pointed to by out. Fields are matched by
// their `param` tag. Numbers and strings are converted loosely, so an HCL
// float or a YAML string can fill an int field; unknown keys are an error.
func Decode(in map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		TagName:          "param",
		WeaklyTypedInput: true,
		ErrorUnused:      true,
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(in); err != nil {
		return fmt.Errorf("invalid params: %w", err)
	}
	return nil
}

var hexColor = regexp.MustCompile(`^#?([0-9a-fA-F]{3}|[0-9a-fA-F]{6}|[0-9a-fA-F]{8})$`)

// CheckHexColor reports whether s is a #rgb, #rrggbb or #rrggbbaa color.
func CheckHexColor(name, s string) error {
	if !hexColor.MatchString(s) {
		return fmt.Errorf("%s: %q is not a hex color", name, s)
	}
	return nil
}

// CheckDimension validates an image edge length.
func CheckDimension(name string, v, max int) error {
	if v <= 0 || v > max {
		return fmt.Errorf("%s must be between 1 and %d, got %d", name, max, v)
	}
	return nil
}

// ParseHexColor converts a #rgb, #rrggbb or #rrggbbaa string into a color.
func ParseHexColor(name, s string) (color.NRGBA, error) {
	if err := CheckHexColor(name, s); err != nil {
		return color.NRGBA{}, err
	}
	hex := strings.TrimPrefix(s, "#")
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) == 6 {
		hex += "ff"
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("%s: %w", name, err)
	}
	return color.NRGBA{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}, nil
}
