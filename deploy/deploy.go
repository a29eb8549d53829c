// Package deploy brings up a fresh AssetManager / PaymentManager pair on a
// network, wires them to each other and seeds sample assets.
package deploy

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/weiihann/assetbench/chain"
)

// Result records what a deployment produced.
type Result struct {
	Network        string         `json:"network"`
	PaymentManager common.Address `json:"payment_manager"`
	AssetManager   common.Address `json:"asset_manager"`
	// Transactions lists every confirmed transaction hash in order.
	Transactions []Transaction `json:"transactions"`
}

// Transaction is one confirmed deployment step.
type Transaction struct {
	Op      string      `json:"op"`
	Hash    common.Hash `json:"hash"`
	GasUsed uint64      `json:"gas_used"`
}

// Deployer runs the deployment sequence against a chain.Deployer.
type Deployer struct {
	Chain   chain.Deployer
	Signer  *chain.Signer
	Network string
	Logger  *slog.Logger
}

// New creates a Deployer that signs everything with admin.
func New(network string, c chain.Deployer, admin *chain.Signer, logger *slog.Logger) *Deployer {
	return &Deployer{
		Chain:   c,
		Signer:  admin,
		Network: network,
		Logger:  logger.With(slog.String("network", network)),
	}
}

// Run deploys PaymentManager then AssetManager, links them both ways and
// registers assets one at a time. Every transaction is confirmed before
// the next is sent; the first failure is returned with the partial Result.
// Running it again deploys new instances.
func (d *Deployer) Run(ctx context.Context, assets []chain.Asset) (*Result, error) {
	result := &Result{Network: d.Network}

	d.Logger.InfoContext(ctx, "deploying PaymentManager")

	pm, tx, err := d.Chain.DeployPaymentManager(ctx, d.Signer)
	if err != nil {
		return result, fmt.Errorf("deploy PaymentManager: %w", err)
	}

	if err := d.confirm(ctx, result, "deploy PaymentManager", tx); err != nil {
		return result, err
	}

	result.PaymentManager = pm.Address()

	d.Logger.InfoContext(ctx, "PaymentManager deployed",
		slog.String("address", pm.Address().Hex()),
	)

	d.Logger.InfoContext(ctx, "deploying AssetManager")

	am, tx, err := d.Chain.DeployAssetManager(ctx, d.Signer)
	if err != nil {
		return result, fmt.Errorf("deploy AssetManager: %w", err)
	}

	if err := d.confirm(ctx, result, "deploy AssetManager", tx); err != nil {
		return result, err
	}

	result.AssetManager = am.Address()

	d.Logger.InfoContext(ctx, "AssetManager deployed",
		slog.String("address", am.Address().Hex()),
	)

	tx, err = am.SetPaymentManager(ctx, d.Signer, pm.Address())
	if err != nil {
		return result, fmt.Errorf("setPaymentManager: %w", err)
	}

	if err := d.confirm(ctx, result, "setPaymentManager", tx); err != nil {
		return result, err
	}

	d.Logger.InfoContext(ctx, "PaymentManager set in AssetManager")

	tx, err = pm.SetAssetManager(ctx, d.Signer, am.Address())
	if err != nil {
		return result, fmt.Errorf("setAssetManager: %w", err)
	}

	if err := d.confirm(ctx, result, "setAssetManager", tx); err != nil {
		return result, err
	}

	d.Logger.InfoContext(ctx, "AssetManager set in PaymentManager")

	for i, asset := range assets {
		op := fmt.Sprintf("registerAsset #%d", i+1)

		tx, err := am.RegisterAsset(ctx, d.Signer, asset)
		if err != nil {
			return result, fmt.Errorf("%s: %w", op, err)
		}

		if err := d.confirm(ctx, result, op, tx); err != nil {
			return result, err
		}

		d.Logger.InfoContext(ctx, "asset registered",
			slog.Int("index", i+1),
			slog.String("name", asset.Name),
			slog.String("global_id", asset.GlobalID),
		)
	}

	return result, nil
}

func (d *Deployer) confirm(ctx context.Context, result *Result, op string, tx *types.Transaction) error {
	receipt, err := chain.Confirm(ctx, d.Chain, op, tx)
	if err != nil {
		return err
	}

	result.Transactions = append(result.Transactions, Transaction{
		Op:      op,
		Hash:    tx.Hash(),
		GasUsed: receipt.GasUsed,
	})

	return nil
}
