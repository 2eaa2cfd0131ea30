package params

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Shape string  `param:"shape"`
	Width int     `param:"width"`
	Sigma float64 `param:"sigma"`
	Solid bool    `param:"solid"`
}

func TestDecode(t *testing.T) {
	t.Run("loose numbers", func(t *testing.T) {
		var s sample
		err := Decode(map[string]any{"shape": "circle", "width": float64(128), "sigma": int64(2), "solid": "true"}, &s)
		require.NoError(t, err)
		assert.Equal(t, sample{Shape: "circle", Width: 128, Sigma: 2, Solid: true}, s)
	})

	t.Run("nil params keep defaults", func(t *testing.T) {
		s := sample{Width: 256}
		require.NoError(t, Decode(nil, &s))
		assert.Equal(t, 256, s.Width)
	})

	t.Run("unknown key", func(t *testing.T) {
		var s sample
		err := Decode(map[string]any{"colour": "red"}, &s)
		assert.ErrorContains(t, err, "invalid params")
		assert.ErrorContains(t, err, "colour")
	})

	t.Run("wrong type", func(t *testing.T) {
		var s sample
		err := Decode(map[string]any{"width": "wide"}, &s)
		assert.ErrorContains(t, err, "width")
	})
}

func TestCheckHexColor(t *testing.T) {
	for _, ok := range []string{"#fff", "ff8800", "#FF880080"} {
		assert.NoError(t, CheckHexColor("color", ok), ok)
	}
	for _, bad := range []string{"", "red", "#ff88", "#gggggg"} {
		assert.Error(t, CheckHexColor("color", bad), bad)
	}
}

func TestCheckDimension(t *testing.T) {
	assert.NoError(t, CheckDimension("width", 1, 10))
	assert.ErrorContains(t, CheckDimension("width", 0, 10), "width must be between 1 and 10, got 0")
	assert.Error(t, CheckDimension("height", 11, 10))
}

func TestParseHexColor(t *testing.T) {
	c, err := ParseHexColor("color", "#f80")
	require.NoError(t, err)
	assert.Equal(t, color.NRGBA{R: 0xff, G: 0x88, B: 0x00, A: 0xff}, c)

	c, err = ParseHexColor("color", "11223344")
	require.NoError(t, err)
	assert.Equal(t, color.NRGBA{R: 0x11, G: 0x22, B: 0x33, A: 0x44}, c)

	_, err = ParseHexColor("background", "blue")
	assert.ErrorContains(t, err, "background")
}
