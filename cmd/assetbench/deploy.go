package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"
	"github.com/weiihann/assetbench/chain"
	"github.com/weiihann/assetbench/config"
	"github.com/weiihann/assetbench/deploy"
	"github.com/weiihann/assetbench/workload"
)

func newDeployCmd(opts *globalOptions) *cobra.Command {
	var (
		network    string
		skipSeed   bool
		outputJSON bool
	)

	cmd := &cobra.Command{
		Use:   "deploy",
		Short: "Deploy and link the contracts, then seed sample assets",
		Long: `Deploy PaymentManager and AssetManager, point each at the other and
register three sample assets. Every transaction is confirmed before the next
one is sent and the first failure aborts the run. Running it again deploys
new contract instances.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel, cfg, logger, err := opts.setup(cmd.Context())
			if err != nil {
				return err
			}
			defer cancel()

			if err := cfg.ValidateDeploy(network); err != nil {
				return err
			}

			n, _ := cfg.Network(network)

			artifacts, err := chain.LoadArtifacts(cfg.ArtifactsDir)
			if err != nil {
				return err
			}

			conn, err := chain.Connect(ctx, logger, chain.ConnectConfig{
				Name:   n.Name,
				RPCURL: n.RPCURL,
				Keys:   map[chain.Role]string{chain.RoleAdmin: cfg.Keys.Admin},
			}, artifacts)
			if err != nil {
				return err
			}
			defer conn.Close()

			admin, err := conn.Signers.Get(chain.RoleAdmin)
			if err != nil {
				return err
			}

			logger.InfoContext(ctx, "deployer",
				slog.String("address", admin.Address.Hex()),
			)

			assets := workload.SeedAssets()
			if skipSeed {
				assets = nil
			}

			result, err := deploy.New(n.Name, conn, admin, logger).Run(ctx, assets)
			if err != nil {
				return fmt.Errorf("deploy on %s: %w", n.Name, err)
			}

			if outputJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")

				return enc.Encode(result)
			}

			writeEnvLines(cmd.OutOrStdout(), network, result)

			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&network, "network", config.NetworkSepolia,
		"Network to deploy to (sepolia, amoy or a configured id)")
	flags.BoolVar(&skipSeed, "skip-seed", false,
		"Do not register the sample assets")
	flags.BoolVar(&outputJSON, "json", false,
		"Print the deployment result as JSON")

	return cmd
}

// writeEnvLines prints the deployed addresses as dotenv assignments.
func writeEnvLines(w io.Writer, network string, result *deploy.Result) {
	prefix := strings.ToUpper(network)

	fmt.Fprintf(w, "%s_PAYMENT_MANAGER_ADDRESS=%s\n", prefix, result.PaymentManager.Hex())
	fmt.Fprintf(w, "%s_ASSET_MANAGER_ADDRESS=%s\n", prefix, result.AssetManager.Hex())
}
