package app

import (
	"context"
	"fmt"

	"github.com/vk/mediagrid/internal/ctxlog"
	"github.com/vk/mediagrid/internal/events"
	"github.com/vk/mediagrid/internal/pipeline"
)

// LoadPipeline reads the configured pipeline, applies the configured
// overrides and checks that every component it references is registered.
func (a *App) LoadPipeline(ctx context.Context) (*pipeline.Pipeline, error) {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Loading pipeline...", "path", a.config.PipelinePath)

	p, err := a.loader.LoadPipeline(ctx, a.config.PipelinePath)
	if err != nil {
		return nil, fmt.Errorf("failed to load pipeline: %w", err)
	}
	if a.config.Concurrency > 0 {
		p.Concurrency = a.config.Concurrency
	}
	if a.config.StepTimeout > 0 {
		p.StepTimeout = a.config.StepTimeout
	}
	if err := a.registry.Validate(ctx, p); err != nil {
		return nil, fmt.Errorf("invalid pipeline: %w", err)
	}

	logger.Info("Pipeline loaded.", "steps", len(p.Steps), "concurrency", p.Concurrency, "step_timeout", p.StepTimeout)
	return p, nil
}

// Plan loads the pipeline and returns its waves without running any step.
func (a *App) Plan(ctx context.Context) (*pipeline.Pipeline, []pipeline.Wave, error) {
	p, err := a.LoadPipeline(ctx)
	if err != nil {
		return nil, nil, err
	}
	waves, err := pipeline.New(a.registry).Plan(p)
	if err != nil {
		return p, nil, err
	}
	return p, waves, nil
}

// Run executes the main application logic: it loads the pipeline and runs
// it to completion, returning the result log. On a step failure the results
// of the completed waves are returned together with the error.
func (a *App) Run(ctx context.Context) ([]pipeline.Result, error) {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.ctx = ctx
	a.logger.Debug("App.Run method started.")

	a.healthCheckServer()
	defer a.closeHealthCheckServer()

	p, err := a.LoadPipeline(ctx)
	if err != nil {
		return nil, err
	}

	observer, closeObserver := a.observer(ctx)
	defer closeObserver()

	a.logger.Info("🚀 Starting pipeline...")
	results, err := pipeline.New(a.registry, pipeline.WithObserver(observer)).Run(ctx, p)
	if a.cache != nil {
		hits, misses := a.cache.Stats()
		a.logger.Debug("Generator cache stats.", "hits", hits, "misses", misses, "entries", a.cache.Len())
	}
	if err != nil {
		return results, fmt.Errorf("execution failed: %w", err)
	}
	a.logger.Info("🏁 Execution finished.", "results", len(results))

	a.logger.Debug("App.Run method finished.")
	return results, nil
}

// observer builds the run observer: progress logging, plus socket.io
// publishing when an events URL is configured. A publisher that cannot
// connect is logged and skipped.
func (a *App) observer(ctx context.Context) (pipeline.Observer, func()) {
	observers := events.Multi{events.LogObserver{}}
	if a.config.EventsURL == "" {
		return observers, func() {}
	}

	pub, err := events.DialSocketIO(ctx, events.SocketIOConfig{
		URL:       a.config.EventsURL,
		Namespace: a.config.EventsNamespace,
	})
	if err != nil {
		a.logger.Warn("Event publisher unavailable; continuing without it.", "url", a.config.EventsURL, "error", err)
		return observers, func() {}
	}
	return append(observers, pub), func() { _ = pub.Close() }
}
