package harness

import (
	"context"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/core/types"
	"github.com/weiihann/assetbench/chain"
	"github.com/weiihann/assetbench/workload"
)

// Target is everything needed to run the workload on one network.
type Target struct {
	Name     string
	Currency string
	Contract chain.AssetManager
	Waiter   chain.Waiter
	Signers  chain.Signers
}

// Connector opens a network on demand. It returns the target with
// Contract, Waiter and Signers bound and a func that releases the
// connection.
type Connector func(ctx context.Context) (Target, func(), error)

// OpConnect labels failures to reach a network before its first step.
const OpConnect workload.Op = "connect"

// Recorder receives measurements as they are taken.
type Recorder interface {
	ObserveStep(network string, step StepResult)
	ObserveFailure(network string, op workload.Op, err error)
}

// Runner executes the workload on a single target.
type Runner struct {
	Target Target
	// Connect, when set, is called at the start of Run and its bindings
	// replace those of Target. A connect failure fails this network only.
	Connect  Connector
	Logger   *slog.Logger
	Recorder Recorder

	now func() time.Time
}

// NewRunner creates a Runner for target. recorder may be nil.
func NewRunner(target Target, recorder Recorder, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}

	return &Runner{
		Target:   target,
		Logger:   logger.With(slog.String("network", target.Name)),
		Recorder: recorder,
		now:      time.Now,
	}
}

// Run executes ops strictly in order. A step is submitted only after the
// previous step's receipt was obtained; the first failure stops the run.
// The returned Result is never nil and lists the confirmed steps.
func (r *Runner) Run(ctx context.Context, ops []workload.Operation) (*Result, error) {
	logger := r.logger()
	target := r.Target

	result := &Result{
		Network:  target.Name,
		Currency: target.Currency,
		Steps:    make([]StepResult, 0, len(ops)),
	}

	logger.InfoContext(ctx, "starting workflow",
		slog.Int("steps", len(ops)),
	)

	wallStart := r.clock()

	if r.Connect != nil {
		bound, release, err := r.Connect(ctx)
		if err != nil {
			return result, r.fail(ctx, result, wallStart, OpConnect, err)
		}

		if release != nil {
			defer release()
		}

		target.Contract = bound.Contract
		target.Waiter = bound.Waiter
		target.Signers = bound.Signers
	}

	for _, op := range ops {
		step, err := r.runStep(ctx, target, op)
		if err != nil {
			return result, r.fail(ctx, result, wallStart, op.Op, err)
		}

		result.Steps = append(result.Steps, *step)

		if r.Recorder != nil {
			r.Recorder.ObserveStep(target.Name, *step)
		}
	}

	result.ElapsedMs = r.clock().Sub(wallStart).Milliseconds()

	logger.InfoContext(ctx, "workflow finished",
		slog.Duration("wall_time", time.Duration(result.ElapsedMs)*time.Millisecond),
	)

	return result, nil
}

// fail records err on result and returns it wrapped with the network name.
func (r *Runner) fail(ctx context.Context, result *Result, wallStart time.Time, op workload.Op, err error) error {
	result.ElapsedMs = r.clock().Sub(wallStart).Milliseconds()
	result.Error = err.Error()
	if kind := chain.KindOf(err); kind != 0 {
		result.ErrorKind = kind.String()
	}

	if r.Recorder != nil {
		r.Recorder.ObserveFailure(result.Network, op, err)
	}

	r.logger().ErrorContext(ctx, "workflow step failed",
		slog.String("step", string(op)),
		slog.String("error", err.Error()),
	)

	return fmt.Errorf("%s: %w", result.Network, err)
}

func (r *Runner) logger() *slog.Logger {
	if r.Logger != nil {
		return r.Logger
	}

	return slog.Default().With(slog.String("network", r.Target.Name))
}

func (r *Runner) clock() time.Time {
	if r.now != nil {
		return r.now()
	}

	return time.Now()
}

func (r *Runner) runStep(ctx context.Context, target Target, op workload.Operation) (*StepResult, error) {
	signer, err := target.Signers.Get(op.Role)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op.Op, err)
	}

	start := r.clock()

	tx, err := submit(ctx, target.Contract, op, signer)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op.Op, err)
	}

	receipt, err := chain.Confirm(ctx, target.Waiter, string(op.Op), tx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op.Op, err)
	}

	elapsed := r.clock().Sub(start)

	return r.measure(ctx, target.Currency, op, tx, receipt, elapsed)
}

func submit(ctx context.Context, c chain.AssetManager, op workload.Operation, s *chain.Signer) (*types.Transaction, error) {
	id := new(big.Int).SetUint64(op.AssetID)

	switch op.Op {
	case workload.OpRegisterAsset:
		if op.Asset == nil {
			return nil, fmt.Errorf("register_asset without asset")
		}

		return c.RegisterAsset(ctx, s, *op.Asset)
	case workload.OpReportFault:
		return c.ReportFault(ctx, s, id, op.Comment)
	case workload.OpStartMaintenance:
		return c.StartMaintenance(ctx, s, id, op.Comment)
	case workload.OpCompleteMaintenance:
		return c.CompleteMaintenance(ctx, s, id, op.Comment)
	default:
		return nil, fmt.Errorf("unknown op %q", op.Op)
	}
}

func (r *Runner) measure(
	ctx context.Context,
	currency string,
	op workload.Operation,
	tx *types.Transaction,
	receipt *types.Receipt,
	elapsed time.Duration,
) (*StepResult, error) {
	price := chain.ResolveGasPrice(receipt, tx)

	cost, err := chain.Cost(receipt.GasUsed, price)
	if err != nil {
		return nil, fmt.Errorf("%s: compute cost: %w", op.Op, err)
	}

	step := &StepResult{
		Op:          op.Op,
		Label:       op.Label(),
		Role:        op.Role,
		TxHash:      tx.Hash().Hex(),
		GasUsed:     receipt.GasUsed,
		GasPriceWei: price.String(),
		CostWei:     cost.Dec(),
		Cost:        chain.FormatEther(cost),
		Currency:    currency,
		ElapsedMs:   elapsed.Milliseconds(),
	}

	if receipt.BlockNumber != nil {
		step.BlockNumber = receipt.BlockNumber.Uint64()
	}

	r.logger().InfoContext(ctx, step.Label,
		slog.Uint64("gas_used", step.GasUsed),
		slog.String("cost", step.Cost+" "+step.Currency),
		slog.String("time", fmt.Sprintf("%.2f s", elapsed.Seconds())),
		slog.String("tx_hash", step.TxHash),
	)

	return step, nil
}
