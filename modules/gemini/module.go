// Package gemini provides the "gemini" generator, which creates images from a
// text prompt through the Gemini API.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/vk/mediagrid/internal/artifact"
	"github.com/vk/mediagrid/internal/ctxlog"
	"github.com/vk/mediagrid/internal/params"
	"github.com/vk/mediagrid/internal/registry"
	genai "google.golang.org/genai"
)

// DefaultModel is used when neither the module nor the step names a model.
const DefaultModel = "imagen-3.0-generate-002"

// ErrNotConfigured is returned when no API key is available.
var ErrNotConfigured = errors.New("gemini API key is not configured")

// imageModels is the part of the genai client this module calls.
type imageModels interface {
	GenerateImages(ctx context.Context, model, prompt string, config *genai.GenerateImagesConfig) (*genai.GenerateImagesResponse, error)
}

// Module implements the registry.Module interface for this package. The API
// client is created on first use, so registering the module without a key is
// fine as long as no pipeline calls the generator.
type Module struct {
	APIKey string
	Model  string

	newModels func(ctx context.Context) (imageModels, error)
	once      sync.Once
	models    imageModels
	initErr   error
}

// Input defines the params of the gemini generator.
type Input struct {
	Prompt         string `param:"prompt"`
	NegativePrompt string `param:"negative_prompt"`
	AspectRatio    string `param:"aspect_ratio"`
	Model          string `param:"model"`
}

func (m *Module) client(ctx context.Context) (imageModels, error) {
	m.once.Do(func() {
		newModels := m.newModels
		if newModels == nil {
			newModels = m.dial
		}
		m.models, m.initErr = newModels(ctx)
	})
	return m.models, m.initErr
}

func (m *Module) dial(ctx context.Context) (imageModels, error) {
	if strings.TrimSpace(m.APIKey) == "" {
		return nil, ErrNotConfigured
	}
	cli, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  m.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("init gemini client: %w", err)
	}
	return cli.Models, nil
}

// Generate asks the model for one image matching the prompt param.
func (m *Module) Generate(ctx context.Context, p map[string]any) (*artifact.Artifact, error) {
	var in Input
	if err := params.Decode(p, &in); err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.Prompt) == "" {
		return nil, fmt.Errorf("missing required param %q", "prompt")
	}
	model := firstNonEmpty(in.Model, m.Model, DefaultModel)

	models, err := m.client(ctx)
	if err != nil {
		return nil, err
	}

	logger := ctxlog.FromContext(ctx).With("model", model)
	logger.Debug("Requesting image generation.", "prompt_length", len(in.Prompt), "aspect_ratio", in.AspectRatio)

	resp, err := models.GenerateImages(ctx, model, in.Prompt, &genai.GenerateImagesConfig{
		NumberOfImages: 1,
		AspectRatio:    in.AspectRatio,
		NegativePrompt: in.NegativePrompt,
	})
	if err != nil {
		return nil, err
	}
	if resp == nil || len(resp.GeneratedImages) == 0 {
		return nil, fmt.Errorf("model %s returned no images", model)
	}

	generated := resp.GeneratedImages[0]
	if generated.Image == nil || len(generated.Image.ImageBytes) == 0 {
		if generated.RAIFilteredReason != "" {
			return nil, fmt.Errorf("image was filtered: %s", generated.RAIFilteredReason)
		}
		return nil, fmt.Errorf("model %s returned an empty image", model)
	}

	a, err := artifact.FromBytes(generated.Image.ImageBytes)
	if err != nil {
		return nil, err
	}
	logger.Debug("Image generated.", "artifact", a.Describe())
	return a, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// Register registers the generator with the registry. Results are never
// cached since the same prompt is expected to yield a new image.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterGenerator("gemini", &registry.RegisteredGenerator{Fn: m.Generate})
}
