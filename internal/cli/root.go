package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/vk/mediagrid/internal/app"
)

// options carries the process-level dependencies into the commands.
type options struct {
	outW   io.Writer
	errW   io.Writer
	lookup func(string) (string, bool)
	flags  globalFlags
}

// NewRootCommand builds the mediagrid command tree. Results go to outW; logs
// and errors go to errW.
func NewRootCommand(outW, errW io.Writer) *cobra.Command {
	return newRootCommand(&options{outW: outW, errW: errW, lookup: os.LookupEnv})
}

func newRootCommand(o *options) *cobra.Command {
	root := &cobra.Command{
		Use:   "mediagrid",
		Short: "Run declarative media-generation pipelines",
		Long: `mediagrid runs pipelines of generate, transform and save steps.

Steps are scheduled in waves: every step whose inputs are bound runs in the
same wave, concurrently up to the pipeline's concurrency limit.

Every flag can also be set through a MEDIAGRID_<FLAG> environment variable,
for example MEDIAGRID_LOG_LEVEL=debug, or through a .env file.`,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := loadDotEnv(o.flags.envFile); err != nil {
				return usageError(err)
			}
			if err := applyEnv(cmd.Flags(), o.lookup); err != nil {
				return usageError(err)
			}
			if o.flags.cfg.GeminiAPIKey == "" {
				o.flags.cfg.GeminiAPIKey, _ = o.lookup("GEMINI_API_KEY")
			}
			return nil
		},
	}
	root.SetOut(o.outW)
	root.SetErr(o.errW)
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError(err)
	})
	o.flags.bind(root.PersistentFlags())

	root.AddCommand(runCmd(o))
	root.AddCommand(planCmd(o))
	root.AddCommand(validateCmd(o))
	return root
}

// newApp validates the configuration and builds the application. A path
// argument takes precedence over --pipeline.
func (o *options) newApp(args []string) (*app.App, error) {
	cfg := o.flags.cfg
	if len(args) > 0 {
		cfg.PipelinePath = args[0]
	}
	validated, err := app.NewConfig(cfg)
	if err != nil {
		return nil, usageError(err)
	}
	return app.NewApp(o.outW, o.errW, validated), nil
}

// Execute runs the command line args and returns the error to exit with.
// Panics raised while building the application are returned as errors.
func Execute(ctx context.Context, args []string, outW, errW io.Writer) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("application startup panicked: %v", r)
		}
	}()

	root := NewRootCommand(outW, errW)
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}

// ExitCode maps an error returned by Execute onto a process exit code.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return 1
}
