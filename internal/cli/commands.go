package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func runCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "run [PIPELINE_PATH]",
		Short: "Execute a pipeline and print its results",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := o.newApp(args)
			if err != nil {
				return err
			}
			defer a.Close()

			results, runErr := a.Run(cmd.Context())
			if len(results) > 0 {
				fmt.Fprintln(o.outW, ResultsTable(results))
			}
			if runErr != nil {
				return runErr
			}
			fmt.Fprintln(o.outW, SuccessMsg("%d steps completed", len(results)))
			return nil
		},
	}
}

func planCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "plan [PIPELINE_PATH]",
		Short: "Print the execution waves of a pipeline without running it",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := o.newApp(args)
			if err != nil {
				return err
			}
			defer a.Close()

			p, waves, err := a.Plan(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(o.outW, PlanTable(waves))
			fmt.Fprintln(o.outW, InfoMsg("%d steps in %d waves, concurrency %s", len(p.Steps), len(waves), concurrencyLabel(p.Concurrency)))
			return nil
		},
	}
}

func validateCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "validate [PIPELINE_PATH]",
		Short: "Check that a pipeline loads and can be scheduled",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := o.newApp(args)
			if err != nil {
				return err
			}
			defer a.Close()

			p, waves, err := a.Plan(cmd.Context())
			if err != nil {
				fmt.Fprintln(o.outW, ErrorMsg("pipeline is invalid"))
				return err
			}
			fmt.Fprintln(o.outW, SuccessMsg("pipeline is valid: %d steps in %d waves", len(p.Steps), len(waves)))
			return nil
		},
	}
}

func concurrencyLabel(n int) string {
	if n <= 0 {
		return "unbounded"
	}
	return fmt.Sprint(n)
}
