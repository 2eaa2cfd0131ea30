package testutil

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vk/mediagrid/internal/app"
	"github.com/vk/mediagrid/internal/pipeline"
	"github.com/vk/mediagrid/internal/registry"
)

// HarnessResult holds the outcomes of an integration test run.
type HarnessResult struct {
	LogOutput string
	Output    string
	Results   []pipeline.Result
	Err       error
	App       *app.App
	// OutputDir is where the local provider wrote its files.
	OutputDir string
}

// RunIntegrationTest provides a standardized harness for running integration
// tests using a default background context.
func RunIntegrationTest(t *testing.T, files map[string]string, modules ...registry.Module) *HarnessResult {
	t.Helper()
	return RunIntegrationTestWithContext(context.Background(), t, files, nil, modules...)
}

// RunIntegrationTestWithContext writes files (relative path -> content) into
// a pipeline directory, builds an app over it and runs it with ctx. configure,
// when not nil, may adjust the app config before the app is created. Without
// modules the core modules are registered.
func RunIntegrationTestWithContext(ctx context.Context, t *testing.T, files map[string]string, configure func(*app.Config), modules ...registry.Module) *HarnessResult {
	t.Helper()

	tmpDir := t.TempDir()
	pipelineDir := filepath.Join(tmpDir, "pipeline")
	outputDir := filepath.Join(tmpDir, "out")
	require.NoError(t, os.MkdirAll(pipelineDir, 0o755))

	for name, content := range files {
		filePath := filepath.Join(pipelineDir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(filePath), 0o755))
		require.NoError(t, os.WriteFile(filePath, []byte(content), 0o644))
	}

	cfg := app.DefaultConfig()
	cfg.PipelinePath = pipelineDir
	cfg.OutputDir = outputDir
	if configure != nil {
		configure(&cfg)
	}

	testApp, out, logs := app.SetupAppTest(t, &cfg, modules...)
	results, err := testApp.Run(ctx)

	return &HarnessResult{
		LogOutput: logs.String(),
		Output:    out.String(),
		Results:   results,
		Err:       err,
		App:       testApp,
		OutputDir: outputDir,
	}
}
