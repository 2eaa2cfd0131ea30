package registry

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/vk/mediagrid/internal/ctxlog"
	"github.com/vk/mediagrid/internal/pipeline"
)

// Validate checks that every generator, operation and provider referenced by
// p is registered, so that a pipeline with a typo fails before any step runs.
func (r *Registry) Validate(ctx context.Context, p *pipeline.Pipeline) error {
	logger := ctxlog.FromContext(ctx)
	var errs []error

	for i, step := range p.Steps {
		var err error
		switch s := step.(type) {
		case pipeline.GenerateStep:
			if _, ok := r.generators[s.Generator]; !ok {
				err = fmt.Errorf("%w: %q", ErrGeneratorNotFound, s.Generator)
			}
		case pipeline.TransformStep:
			if _, ok := r.operations[s.Op]; !ok {
				err = fmt.Errorf("%w: %q", ErrOperationNotSupported, s.Op)
			}
		case pipeline.SaveStep:
			_, err = r.ResolveProvider(s.Destination, s.Provider)
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("step #%d %s: %w", i, stepName(step), err))
		}
	}

	if len(errs) > 0 {
		logger.Debug("Pipeline references unknown components.", "count", len(errs))
		return errors.Join(errs...)
	}
	return nil
}

func stepName(s pipeline.Step) string {
	if s.Label() == "" {
		return string(s.Kind())
	}
	return strings.Join([]string{string(s.Kind()), s.Label()}, ".")
}
