package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
	"github.com/weiihann/assetbench/chain"
	"github.com/weiihann/assetbench/config"
	"github.com/weiihann/assetbench/harness"
	"github.com/weiihann/assetbench/metrics"
	"github.com/weiihann/assetbench/report"
	"github.com/weiihann/assetbench/workload"
)

type measureConfig struct {
	networks        []string
	continueOnError bool
	failOnError     bool
	outputJSON      bool
	metricsFile     string
}

func newMeasureCmd(opts *globalOptions) *cobra.Command {
	var mc measureConfig

	cmd := &cobra.Command{
		Use:   "measure",
		Short: "Time the asset workflow and its gas cost on each network",
		Long: `Drive an already deployed AssetManager through register asset, report
fault, start maintenance and complete maintenance on every selected network,
signing as admin, user and technician respectively. Each transaction is
timed from submission to receipt and its cost computed from the gas used and
the price paid.

Networks run one after another. By default a failure on one network stops
the remaining ones; --continue-on-error runs them anyway. Workflow failures
are logged and do not change the exit status unless --fail-on-error is set.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel, cfg, logger, err := opts.setup(cmd.Context())
			if err != nil {
				return err
			}
			defer cancel()

			return runMeasure(ctx, cmd.OutOrStdout(), logger, cfg, mc)
		},
	}

	flags := cmd.Flags()
	flags.StringSliceVar(&mc.networks, "networks",
		[]string{config.NetworkSepolia, config.NetworkAmoy},
		"Networks to benchmark, in order")
	flags.BoolVar(&mc.continueOnError, "continue-on-error", false,
		"Keep benchmarking later networks after one fails")
	flags.BoolVar(&mc.failOnError, "fail-on-error", false,
		"Exit non-zero when any network's workflow fails")
	flags.BoolVar(&mc.outputJSON, "json", false,
		"Output results as JSON instead of tables")
	flags.StringVar(&mc.metricsFile, "metrics-file", "",
		"Write prometheus text-format metrics to this file")

	return cmd
}

func runMeasure(
	ctx context.Context,
	out io.Writer,
	logger *slog.Logger,
	cfg *config.Configuration,
	mc measureConfig,
) error {
	if err := cfg.ValidateMeasure(mc.networks); err != nil {
		return err
	}

	artifacts, err := chain.LoadArtifacts(cfg.ArtifactsDir)
	if err != nil {
		return err
	}

	recorder := metrics.NewRecorder()

	// Networks are dialed when their turn comes.
	runners := make([]*harness.Runner, 0, len(mc.networks))

	for _, id := range mc.networks {
		n, _ := cfg.Network(id)

		runner := harness.NewRunner(harness.Target{
			Name:     n.Name,
			Currency: n.Currency,
		}, recorder, logger)
		runner.Connect = connector(logger, n, cfg.Keys, artifacts)

		runners = append(runners, runner)
	}

	suite := &harness.Suite{
		Runners:         runners,
		ContinueOnError: mc.continueOnError,
		Logger:          logger,
	}

	results, runErr := suite.Run(ctx, workload.Steps(workflowConfig(cfg)))
	if runErr != nil {
		logger.ErrorContext(ctx, "error during workflow execution",
			slog.String("error", runErr.Error()),
		)
	}

	if len(results) > 0 {
		if mc.outputJSON {
			err = report.GenerateJSON(out, results)
		} else {
			err = report.Generate(out, results)
		}

		if err != nil {
			return fmt.Errorf("generate report: %w", err)
		}
	}

	if mc.metricsFile != "" {
		if err := recorder.WriteFile(mc.metricsFile); err != nil {
			return fmt.Errorf("write metrics: %w", err)
		}
	}

	if runErr != nil && mc.failOnError {
		return runErr
	}

	logger.InfoContext(ctx, "benchmark complete")

	return nil
}

func connector(
	logger *slog.Logger,
	n config.Network,
	keys config.Keys,
	artifacts *chain.Artifacts,
) harness.Connector {
	return func(ctx context.Context) (harness.Target, func(), error) {
		conn, err := chain.Connect(ctx, logger, chain.ConnectConfig{
			Name:   n.Name,
			RPCURL: n.RPCURL,
			Keys:   keys.RoleKeys(),
		}, artifacts)
		if err != nil {
			return harness.Target{}, nil, err
		}

		return harness.Target{
			Contract: conn.AssetManagerAt(common.HexToAddress(n.AssetManager)),
			Waiter:   conn,
			Signers:  conn.Signers,
		}, conn.Close, nil
	}
}
