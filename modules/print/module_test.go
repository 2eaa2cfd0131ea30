package print

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/mediagrid/internal/artifact"
	"github.com/vk/mediagrid/internal/registry"
)

func TestSave(t *testing.T) {
	// --- Arrange ---
	var buf bytes.Buffer
	r := registry.New()
	(&Module{Out: &buf}).Register(r)
	in := &artifact.Artifact{Data: []byte{1, 2, 3}, Format: "png", Width: 4, Height: 5}

	// --- Act ---
	res, err := r.Save(context.Background(), in, "print://logo", "")

	// --- Assert ---
	require.NoError(t, err)
	assert.Equal(t, &artifact.SaveResult{Location: "print://logo", Provider: "print", Size: 3}, res)
	assert.Equal(t, "      logo = png 4x5 (3 bytes)\n", buf.String())
}
