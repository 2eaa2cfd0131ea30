package app

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/vk/mediagrid/internal/cache"
	"github.com/vk/mediagrid/internal/config"
	"github.com/vk/mediagrid/internal/ctxlog"
	"github.com/vk/mediagrid/internal/hcl"
	"github.com/vk/mediagrid/internal/registry"
	"github.com/vk/mediagrid/internal/yamlcfg"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW       io.Writer
	logger     *slog.Logger
	ctx        context.Context
	config     *Config
	registry   *registry.Registry
	cache      *cache.Artifacts
	loader     *config.Dispatcher
	httpServer *http.Server
	closers    []io.Closer
}

// NewApp is the constructor for the main application. Logs go to logW;
// anything a pipeline prints goes to outW. Without explicit modules the
// core modules are registered.
func NewApp(outW, logW io.Writer, cfg *Config, modules ...registry.Module) *App {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, logW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	reg := registry.New()
	var artifacts *cache.Artifacts
	if cfg.CacheSize > 0 {
		artifacts = cache.New(cfg.CacheSize, cfg.CacheTTL)
		reg.UseCache(artifacts)
		logger.Debug("Generator cache enabled.", "size", cfg.CacheSize, "ttl", cfg.CacheTTL)
	}

	if len(modules) == 0 {
		modules = coreModules(cfg, outW)
	}
	var closers []io.Closer
	for _, mod := range modules {
		mod.Register(reg)
		if c, ok := mod.(io.Closer); ok {
			closers = append(closers, c)
		}
	}
	logger.Debug("All Go modules registered.",
		"count", len(modules),
		"generators", reg.Generators(),
		"operations", reg.Operations(),
		"providers", reg.Providers(),
	)

	return &App{
		outW:     outW,
		logger:   logger,
		ctx:      ctx,
		config:   cfg,
		registry: reg,
		cache:    artifacts,
		loader:   newDispatcher(),
		closers:  closers,
	}
}

// newDispatcher maps pipeline file extensions onto their loaders. JSON is
// read by the YAML loader.
func newDispatcher() *config.Dispatcher {
	yamlLoader := yamlcfg.NewLoader()
	return config.NewDispatcher(map[string]config.Loader{
		".hcl":  hcl.NewLoader(),
		".yaml": yamlLoader,
		".yml":  yamlLoader,
		".json": yamlLoader,
	})
}

// Registry returns the application's registry. This is primarily for testing.
func (a *App) Registry() *registry.Registry {
	return a.registry
}

// Close releases resources held by modules.
func (a *App) Close() error {
	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}
