// Package main provides the CLI entry point for assetbench, which deploys the
// AssetManager / PaymentManager contracts and benchmarks the asset
// maintenance workflow across Ethereum-compatible networks.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/weiihann/assetbench/config"
	"github.com/weiihann/assetbench/workload"
)

func main() {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// globalOptions are the persistent flags shared by every subcommand.
type globalOptions struct {
	configPath string
	envFile    string
	logLevel   string
	logFormat  string
	timeout    time.Duration
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	root := &cobra.Command{
		Use:   "assetbench",
		Short: "Deploy and benchmark the asset maintenance contracts",
		Long: `Assetbench deploys the AssetManager and PaymentManager contracts,
wires them together and seeds sample assets, and measures the time and gas
cost of the register / fault / maintenance workflow on several networks.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "",
		"Path to a YAML configuration file")
	flags.StringVar(&opts.envFile, "env-file", ".env",
		"Path to a dotenv file (ignored when missing)")
	flags.StringVar(&opts.logLevel, "log-level", "",
		"Log level: debug, info, warn, error (overrides LOG_LEVEL)")
	flags.StringVar(&opts.logFormat, "log-format", "",
		"Log format: text or json (overrides LOG_FORMAT)")
	flags.DurationVar(&opts.timeout, "timeout", 0,
		"Abort after this duration (0 = no timeout)")

	root.AddCommand(
		newDeployCmd(opts),
		newMeasureCmd(opts),
		newPlanCmd(opts),
	)

	return root
}

// setup loads the configuration and builds the logger and the command
// context. The returned cancel func must be called.
func (o *globalOptions) setup(
	parent context.Context,
) (context.Context, context.CancelFunc, *config.Configuration, *slog.Logger, error) {
	cfg, err := config.Load(o.configPath, o.envFile)
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("load config: %w", err)
	}

	if o.logLevel != "" {
		cfg.LogLevel = o.logLevel
	}

	if o.logFormat != "" {
		cfg.LogFormat = o.logFormat
	}

	logger := newLogger(os.Stderr, cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	cancel := context.CancelFunc(stop)

	if o.timeout > 0 {
		var cancelTimeout context.CancelFunc
		ctx, cancelTimeout = context.WithTimeout(ctx, o.timeout)
		cancel = func() {
			cancelTimeout()
			stop()
		}
	}

	return ctx, cancel, cfg, logger, nil
}

func newLogger(w io.Writer, level, format string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}

	handlerOpts := &slog.HandlerOptions{Level: lvl}

	if strings.EqualFold(format, "json") {
		return slog.New(slog.NewJSONHandler(w, handlerOpts))
	}

	return slog.New(slog.NewTextHandler(w, handlerOpts))
}

// workflowConfig applies the configured workflow parameters to the default
// benchmark workflow.
func workflowConfig(cfg *config.Configuration) workload.Config {
	wcfg := workload.DefaultConfig()
	wcfg.AssetID = cfg.Workflow.AssetID
	wcfg.FaultDescription = cfg.Workflow.FaultDescription
	wcfg.StartComment = cfg.Workflow.StartComment
	wcfg.CompleteComment = cfg.Workflow.CompleteComment

	return wcfg
}
