package yamlcfg

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/mediagrid/internal/pipeline"
)

const sampleYAML = `concurrency: 4
step_timeout: 30s
steps:
  - kind: generate
    name: logo
    generator: shape
    params: {shape: circle, width: 256}
    out: img1
  - {kind: transform, in: img1, op: resize, params: {width: 128}, out: img2}
  - {kind: save, in: img2, destination: out/logo.png}
`

func TestLoader_ParseYAML(t *testing.T) {
	// --- Act ---
	m, err := NewLoader().Parse([]byte(sampleYAML), "pipeline.yaml")
	require.NoError(t, err)
	p, err := m.Pipeline()

	// --- Assert ---
	require.NoError(t, err)
	want := &pipeline.Pipeline{
		Concurrency: 4,
		StepTimeout: 30 * time.Second,
		Steps: []pipeline.Step{
			pipeline.GenerateStep{Name: "logo", Generator: "shape", Params: map[string]any{"shape": "circle", "width": 256}, Out: "img1"},
			pipeline.TransformStep{In: "img1", Op: "resize", Params: map[string]any{"width": 128}, Out: "img2"},
			pipeline.SaveStep{In: "img2", Destination: "out/logo.png"},
		},
	}
	if diff := cmp.Diff(want, p); diff != "" {
		t.Errorf("pipeline mismatch (-want +got):\n%s", diff)
	}

	assert.Equal(t, "pipeline.yaml:4", m.Steps[0].Source)
	assert.Equal(t, "pipeline.yaml:9", m.Steps[1].Source)
}

func TestLoader_ParseJSON(t *testing.T) {
	src := `{
  "concurrency": 2,
  "steps": [
    {"kind": "generate", "generator": "qrcode", "params": {"content": "https://example.com"}, "out": "qr"},
    {"kind": "save", "in": "qr", "destination": "s3://bucket/qr.png", "out": "url"}
  ]
}`
	m, err := NewLoader().Parse([]byte(src), "pipeline.json")
	require.NoError(t, err)

	assert.Equal(t, 2, m.Concurrency)
	require.Len(t, m.Steps, 2)
	assert.Equal(t, "qrcode", m.Steps[0].Generator)
	assert.Equal(t, "https://example.com", m.Steps[0].Params["content"])
	assert.Equal(t, "url", m.Steps[1].Out)
}

func TestLoader_ParseErrors(t *testing.T) {
	testCases := []struct {
		name    string
		src     string
		wantErr string
	}{
		{name: "unknown field", src: "steps:\n  - {kind: generate, generater: shape}\n", wantErr: "field generater not found"},
		{name: "bad timeout", src: "step_timeout: later\n", wantErr: "invalid step_timeout"},
		{name: "malformed yaml", src: "steps: [\n", wantErr: "parsing pipeline bad.yaml"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewLoader().Parse([]byte(tc.src), "bad.yaml")
			require.Error(t, err)
			assert.ErrorContains(t, err, tc.wantErr)
		})
	}
}

func TestLoader_EmptyFile(t *testing.T) {
	m, err := NewLoader().Parse(nil, "empty.yaml")
	require.NoError(t, err)
	assert.Empty(t, m.Steps)
}

func TestLoader_Load(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pipeline.yml")
	require.NoError(t, os.WriteFile(path, []byte(sampleYAML), 0o644))

	m, err := NewLoader().Load(context.Background(), path)
	require.NoError(t, err)
	assert.Len(t, m.Steps, 3)

	_, err = NewLoader().Load(context.Background(), filepath.Join(t.TempDir(), "missing.yml"))
	assert.ErrorContains(t, err, "reading pipeline file")
}
