package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/weiihann/assetbench/workload"
)

func newPlanCmd(opts *globalOptions) *cobra.Command {
	var seed bool

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Print the benchmark workload as JSONL without sending anything",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel, cfg, logger, err := opts.setup(cmd.Context())
			if err != nil {
				return err
			}
			defer cancel()

			ops := workload.Steps(workflowConfig(cfg))
			if seed {
				ops = workload.SeedSteps()
			}

			summary, err := workload.Write(cmd.OutOrStdout(), ops)
			if err != nil {
				return fmt.Errorf("write workload: %w", err)
			}

			logger.DebugContext(ctx, "workload written",
				slog.Int("operations", summary.TotalOperations),
			)

			return nil
		},
	}

	cmd.Flags().BoolVar(&seed, "seed", false,
		"Print the deployment seed registrations instead of the benchmark workflow")

	return cmd
}
