package localfs

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/mediagrid/internal/artifact"
	"github.com/vk/mediagrid/internal/registry"
)

var jpeg = &artifact.Artifact{Data: []byte("jpeg-bytes"), Format: "jpeg", Width: 2, Height: 2}

func TestSave_CreatesParents(t *testing.T) {
	// --- Arrange ---
	root := t.TempDir()
	m := &Module{Root: root}

	// --- Act ---
	res, err := m.Save(context.Background(), jpeg, "out/nested/photo.jpg")

	// --- Assert ---
	require.NoError(t, err)
	want := filepath.Join(root, "out", "nested", "photo.jpg")
	assert.Equal(t, &artifact.SaveResult{Location: want, Provider: "local", Size: 10}, res)

	data, err := os.ReadFile(want)
	require.NoError(t, err)
	assert.Equal(t, jpeg.Data, data)

	entries, err := os.ReadDir(filepath.Dir(want))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files are left behind")
}

func TestSave_Overwrites(t *testing.T) {
	root := t.TempDir()
	m := &Module{Root: root}

	_, err := m.Save(context.Background(), &artifact.Artifact{Data: []byte("old"), Format: "png"}, "a.png")
	require.NoError(t, err)
	res, err := m.Save(context.Background(), &artifact.Artifact{Data: []byte("new"), Format: "png"}, "a.png")
	require.NoError(t, err)

	data, err := os.ReadFile(res.Location)
	require.NoError(t, err)
	assert.Equal(t, "new", string(data))
}

func TestSave_AddsExtension(t *testing.T) {
	root := t.TempDir()
	res, err := (&Module{Root: root}).Save(context.Background(), jpeg, "file://thumbs/small")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "thumbs", "small.jpg"), res.Location)
}

func TestSave_AbsoluteDestination(t *testing.T) {
	target := filepath.Join(t.TempDir(), "abs.jpg")
	res, err := (&Module{Root: "/nonexistent-root"}).Save(context.Background(), jpeg, target)
	require.NoError(t, err)
	assert.Equal(t, target, res.Location)
	assert.FileExists(t, target)
}

func TestSave_Errors(t *testing.T) {
	m := &Module{Root: t.TempDir()}

	_, err := m.Save(context.Background(), jpeg, "../outside.jpg")
	assert.ErrorContains(t, err, "escapes the output directory")

	_, err = m.Save(context.Background(), jpeg, "")
	assert.ErrorContains(t, err, "is empty")

	_, err = m.Save(context.Background(), &artifact.Artifact{}, "x.png")
	assert.ErrorContains(t, err, "artifact is empty")
}

func TestRegister_IsDefaultProvider(t *testing.T) {
	r := registry.New()
	(&Module{}).Register(r)

	name, err := r.ResolveProvider("out.png", "")
	require.NoError(t, err)
	assert.Equal(t, "local", name)

	name, err = r.ResolveProvider("file://out.png", "")
	require.NoError(t, err)
	assert.Equal(t, "local", name)
}
