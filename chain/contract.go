// Package chain is the capability layer between the tool and the
// AssetManager / PaymentManager contracts: narrow interfaces for the
// methods the tool calls, go-ethereum implementations of them, role-bound
// signers, the gas price policy and the tagged error type.
package chain

import (
	"context"
	"fmt"
	"math/big"
	"reflect"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// Asset is the parameter set of registerAsset.
type Asset struct {
	Name       string
	Building   string
	Floor      uint64
	Room       uint64
	Brand      string
	Model      string
	IPFSHash   string
	GlobalID   string
	PositionID string
	PhysicalID string
}

// AssetManager is the subset of the AssetManager contract the tool calls.
type AssetManager interface {
	Address() common.Address
	RegisterAsset(ctx context.Context, s *Signer, a Asset) (*types.Transaction, error)
	ReportFault(ctx context.Context, s *Signer, assetID *big.Int, description string) (*types.Transaction, error)
	StartMaintenance(ctx context.Context, s *Signer, assetID *big.Int, comment string) (*types.Transaction, error)
	CompleteMaintenance(ctx context.Context, s *Signer, assetID *big.Int, comment string) (*types.Transaction, error)
	SetPaymentManager(ctx context.Context, s *Signer, addr common.Address) (*types.Transaction, error)
}

// PaymentManager is the subset of the PaymentManager contract the tool calls.
type PaymentManager interface {
	Address() common.Address
	SetAssetManager(ctx context.Context, s *Signer, addr common.Address) (*types.Transaction, error)
}

// Waiter blocks until a submitted transaction is included.
type Waiter interface {
	WaitMined(ctx context.Context, tx *types.Transaction) (*types.Receipt, error)
}

// Deployer creates new contract instances.
type Deployer interface {
	Waiter
	DeployPaymentManager(ctx context.Context, s *Signer) (PaymentManager, *types.Transaction, error)
	DeployAssetManager(ctx context.Context, s *Signer) (AssetManager, *types.Transaction, error)
}

// Confirm waits for tx and checks its receipt status. Wait failures are
// submission errors; a failed status is a revert.
func Confirm(ctx context.Context, w Waiter, op string, tx *types.Transaction) (*types.Receipt, error) {
	receipt, err := w.WaitMined(ctx, tx)
	if err != nil {
		return nil, &Error{Kind: KindSubmission, Op: op, TxHash: tx.Hash(), Err: fmt.Errorf("wait for receipt: %w", err)}
	}

	if receipt.Status != types.ReceiptStatusSuccessful {
		return receipt, &Error{Kind: KindReverted, Op: op, TxHash: tx.Hash(), Err: fmt.Errorf("receipt status %d", receipt.Status)}
	}

	return receipt, nil
}

// contract binds an ABI to a deployed address.
type contract struct {
	address common.Address
	abi     abi.ABI
	bound   *bind.BoundContract
}

func newContract(address common.Address, parsed abi.ABI, backend bind.ContractBackend) *contract {
	return &contract{
		address: address,
		abi:     parsed,
		bound:   bind.NewBoundContract(address, parsed, backend, backend, backend),
	}
}

func (c *contract) Address() common.Address { return c.address }

// transact packs args against the method's declared input types and sends
// the call signed by s.
func (c *contract) transact(ctx context.Context, s *Signer, method string, args ...interface{}) (*types.Transaction, error) {
	m, ok := c.abi.Methods[method]
	if !ok {
		return nil, configError(method, fmt.Errorf("method not in abi"))
	}

	coerced, err := coerceArgs(m, args)
	if err != nil {
		return nil, configError(method, err)
	}

	tx, err := c.bound.Transact(s.TransactOpts(ctx), method, coerced...)
	if err != nil {
		return nil, submitError(method, err)
	}

	return tx, nil
}

// coerceArgs converts integer arguments to the Go type the ABI packer
// expects for the declared solidity width (uint8 -> uint8, uint256 ->
// *big.Int, ...).
func coerceArgs(m abi.Method, args []interface{}) ([]interface{}, error) {
	if len(args) != len(m.Inputs) {
		return nil, fmt.Errorf("%s takes %d arguments, got %d", m.Name, len(m.Inputs), len(args))
	}

	out := make([]interface{}, len(args))

	for i, arg := range args {
		in := m.Inputs[i]
		if in.Type.T != abi.UintTy && in.Type.T != abi.IntTy {
			out[i] = arg
			continue
		}

		n, ok := toBig(arg)
		if !ok {
			out[i] = arg
			continue
		}

		v, err := intForType(n, in.Type)
		if err != nil {
			return nil, fmt.Errorf("argument %q: %w", in.Name, err)
		}

		out[i] = v
	}

	return out, nil
}

func toBig(v interface{}) (*big.Int, bool) {
	switch n := v.(type) {
	case *big.Int:
		return n, n != nil
	case uint64:
		return new(big.Int).SetUint64(n), true
	case int64:
		return big.NewInt(n), true
	case int:
		return big.NewInt(int64(n)), true
	case uint:
		return new(big.Int).SetUint64(uint64(n)), true
	}

	return nil, false
}

func intForType(n *big.Int, t abi.Type) (interface{}, error) {
	if t.T == abi.UintTy && n.Sign() < 0 {
		return nil, fmt.Errorf("negative value %s for %s", n, t)
	}

	if t.T == abi.IntTy {
		limit := new(big.Int).Lsh(big.NewInt(1), uint(t.Size-1))
		if n.Cmp(new(big.Int).Neg(limit)) < 0 || n.Cmp(limit) >= 0 {
			return nil, fmt.Errorf("value %s overflows %s", n, t)
		}
	} else if n.BitLen() > t.Size {
		return nil, fmt.Errorf("value %s overflows %s", n, t)
	}

	goType := t.GetType()

	switch goType.Kind() {
	case reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return reflect.ValueOf(n.Uint64()).Convert(goType).Interface(), nil
	case reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return reflect.ValueOf(n.Int64()).Convert(goType).Interface(), nil
	default:
		return new(big.Int).Set(n), nil
	}
}
