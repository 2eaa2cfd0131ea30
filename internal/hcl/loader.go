package hcl

import (
	"context"
	"fmt"
	"time"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/vk/mediagrid/internal/config"
	"github.com/vk/mediagrid/internal/ctxlog"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/gocty"
)

// Loader is the HCL implementation of the config.Loader interface.
type Loader struct {
	evalCtx *hcl.EvalContext
}

// NewLoader creates a loader whose expressions can read the process
// environment through `env.NAME`.
func NewLoader() *Loader {
	return &Loader{evalCtx: defaultEvalContext()}
}

// Load parses each file and translates it into the format-agnostic model.
// Steps keep their order of appearance across files.
func (l *Loader) Load(ctx context.Context, paths ...string) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL loader started.", "path_count", len(paths))

	parser := hclparse.NewParser()
	model := &config.Model{}

	for _, path := range paths {
		file, diags := parser.ParseHCLFile(path)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse HCL file %s: %w", path, diags)
		}
		m, err := l.translateFile(file)
		if err != nil {
			return nil, fmt.Errorf("failed to decode HCL file %s: %w", path, err)
		}
		if err := model.Merge(m); err != nil {
			return nil, fmt.Errorf("merging %s: %w", path, err)
		}
	}

	logger.Debug("HCL loading complete.", "steps", len(model.Steps))
	return model, nil
}

// LoadBytes parses HCL source held in memory; filename is used in messages.
func (l *Loader) LoadBytes(src []byte, filename string) (*config.Model, error) {
	file, diags := hclparse.NewParser().ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL %s: %w", filename, diags)
	}
	return l.translateFile(file)
}

func (l *Loader) translateFile(file *hcl.File) (*config.Model, error) {
	content, diags := file.Body.Content(rootSchema)
	if diags.HasErrors() {
		return nil, diags
	}

	model := &config.Model{}
	if attr, ok := content.Attributes["concurrency"]; ok {
		var n int
		if err := l.decodeAttr(attr, cty.Number, &n); err != nil {
			return nil, err
		}
		model.Concurrency = n
	}
	if attr, ok := content.Attributes["step_timeout"]; ok {
		var raw string
		if err := l.decodeAttr(attr, cty.String, &raw); err != nil {
			return nil, err
		}
		d, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("%s: invalid step_timeout: %w", attr.Range, err)
		}
		model.StepTimeout = d
	}

	for _, block := range content.Blocks {
		step, err := l.translateStep(block)
		if err != nil {
			return nil, err
		}
		model.Steps = append(model.Steps, step)
	}
	return model, nil
}

func (l *Loader) decodeAttr(attr *hcl.Attribute, ty cty.Type, target any) error {
	val, diags := attr.Expr.Value(l.evalCtx)
	if diags.HasErrors() {
		return diags
	}
	converted, err := convert.Convert(val, ty)
	if err != nil {
		return fmt.Errorf("%s: %s must be a %s: %w", attr.Range, attr.Name, ty.FriendlyName(), err)
	}
	if err := gocty.FromCtyValue(converted, target); err != nil {
		return fmt.Errorf("%s: %s: %w", attr.Range, attr.Name, err)
	}
	return nil
}

// translateStep converts a step block into the agnostic model.
func (l *Loader) translateStep(block *hcl.Block) (*config.Step, error) {
	var body stepBody
	if diags := gohcl.DecodeBody(block.Body, l.evalCtx, &body); diags.HasErrors() {
		return nil, diags
	}

	step := &config.Step{
		Kind:        block.Labels[0],
		Name:        block.Labels[1],
		Generator:   body.Generator,
		In:          body.In,
		Op:          body.Op,
		Destination: body.Destination,
		Provider:    body.Provider,
		Out:         body.Out,
		Source:      fmt.Sprintf("%s:%d", block.DefRange.Filename, block.DefRange.Start.Line),
	}

	if body.Params != nil {
		params, err := l.translateParams(body.Params.Body)
		if err != nil {
			return nil, fmt.Errorf("step %q %q params: %w", step.Kind, step.Name, err)
		}
		step.Params = params
	}
	return step, nil
}

func (l *Loader) translateParams(body hcl.Body) (map[string]any, error) {
	attrs, diags := body.JustAttributes()
	if diags.HasErrors() {
		return nil, diags
	}
	params := make(map[string]any, len(attrs))
	for name, attr := range attrs {
		val, diags := attr.Expr.Value(l.evalCtx)
		if diags.HasErrors() {
			return nil, diags
		}
		native, err := ctyToNative(val)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		params[name] = native
	}
	return params, nil
}
