package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/vk/mediagrid/internal/app"
)

// EnvPrefix is prepended to a flag's upper-cased name to find the
// environment variable that sets it.
const EnvPrefix = "MEDIAGRID_"

// globalFlags are the settings shared by every subcommand.
type globalFlags struct {
	envFile string
	cfg     app.Config
}

func (g *globalFlags) bind(flags *pflag.FlagSet) {
	g.cfg = app.DefaultConfig()
	c := &g.cfg

	flags.StringVar(&g.envFile, "env-file", ".env", "Path to a .env file. A missing file is ignored.")
	flags.StringVarP(&c.PipelinePath, "pipeline", "p", "", "Path to the pipeline file or directory.")
	flags.StringVar(&c.LogLevel, "log-level", c.LogLevel, "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	flags.StringVar(&c.LogFormat, "log-format", c.LogFormat, "Log output format. Options: 'text' or 'json'.")
	flags.IntVar(&c.HealthcheckPort, "healthcheck-port", 0, "Port for the HTTP health check server. 0 is disabled.")
	flags.IntVar(&c.Concurrency, "concurrency", 0, "Override the pipeline's concurrency limit. 0 keeps the pipeline's value.")
	flags.DurationVar(&c.StepTimeout, "step-timeout", 0, "Override the pipeline's per-step timeout. 0 keeps the pipeline's value.")
	flags.StringVar(&c.OutputDir, "output-dir", c.OutputDir, "Directory the local provider writes relative destinations under.")

	flags.StringVar(&c.S3.Endpoint, "s3-endpoint", "", "S3-compatible endpoint host[:port].")
	flags.StringVar(&c.S3.Region, "s3-region", "", "S3 region.")
	flags.StringVar(&c.S3.AccessKey, "s3-access-key", "", "S3 access key.")
	flags.StringVar(&c.S3.SecretKey, "s3-secret-key", "", "S3 secret key.")
	flags.StringVar(&c.S3.Bucket, "s3-bucket", "", "Default bucket for destinations without one.")
	flags.BoolVar(&c.S3.UseSSL, "s3-use-ssl", true, "Use TLS to reach the S3 endpoint.")
	flags.StringVar(&c.S3.PublicBaseURL, "s3-public-url", "", "Base URL saved S3 objects are reported under.")

	flags.StringVar(&c.GeminiAPIKey, "gemini-api-key", "", "API key for the gemini generator. Defaults to $GEMINI_API_KEY.")
	flags.StringVar(&c.GeminiModel, "gemini-model", "", "Image model for the gemini generator.")
	flags.DurationVar(&c.HTTPTimeout, "http-timeout", c.HTTPTimeout, "Timeout of a single download by the http generator.")

	flags.IntVar(&c.CacheSize, "cache-size", c.CacheSize, "Number of generated images kept in memory. 0 disables the cache.")
	flags.DurationVar(&c.CacheTTL, "cache-ttl", c.CacheTTL, "Lifetime of a cached image.")

	flags.StringVar(&c.EventsURL, "events-url", "", "socket.io server URL run events are published to.")
	flags.StringVar(&c.EventsNamespace, "events-namespace", "/", "socket.io namespace for run events.")
}

// envName returns the environment variable bound to a flag.
func envName(flag string) string {
	return EnvPrefix + strings.ToUpper(strings.ReplaceAll(flag, "-", "_"))
}

// loadDotEnv adds the variables of path to the process environment without
// overriding variables that are already set.
func loadDotEnv(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// applyEnv sets every flag the user did not pass from its environment
// variable, so flags win over the environment.
func applyEnv(flags *pflag.FlagSet, lookup func(string) (string, bool)) error {
	var errs []error
	flags.VisitAll(func(f *pflag.Flag) {
		if f.Changed || f.Name == "env-file" || f.Name == "help" {
			return
		}
		name := envName(f.Name)
		v, ok := lookup(name)
		if !ok {
			return
		}
		if err := flags.Set(f.Name, v); err != nil {
			errs = append(errs, fmt.Errorf("invalid %s: %w", name, err))
		}
	})
	return errors.Join(errs...)
}
