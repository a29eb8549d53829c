package deploy

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/weiihann/assetbench/chain"
	"github.com/weiihann/assetbench/workload"
)

var (
	pmAddr = common.HexToAddress("0x5FbDB2315678afecb367f032d93F642f64180aa3")
	amAddr = common.HexToAddress("0xe7f1725E7734CE288F8367e1Bb143E90bb3F0512")
)

// fakeChain implements chain.Deployer, AssetManager and PaymentManager in
// memory and logs every call.
type fakeChain struct {
	calls    []string
	nonce    uint64
	ops      map[common.Hash]string
	fail     map[string]error
	reverted map[string]bool

	linkedPM common.Address
	linkedAM common.Address
	assets   []chain.Asset
}

func newFakeChain() *fakeChain {
	return &fakeChain{
		ops:      make(map[common.Hash]string),
		fail:     make(map[string]error),
		reverted: make(map[string]bool),
	}
}

func (f *fakeChain) tx(op string) (*types.Transaction, error) {
	f.calls = append(f.calls, op)

	if err := f.fail[op]; err != nil {
		return nil, err
	}

	f.nonce++
	tx := types.NewTx(&types.LegacyTx{Nonce: f.nonce, GasPrice: big.NewInt(1)})
	f.ops[tx.Hash()] = op

	return tx, nil
}

func (f *fakeChain) WaitMined(_ context.Context, tx *types.Transaction) (*types.Receipt, error) {
	op := f.ops[tx.Hash()]
	f.calls = append(f.calls, "wait:"+op)

	status := types.ReceiptStatusSuccessful
	if f.reverted[op] {
		status = types.ReceiptStatusFailed
	}

	return &types.Receipt{Status: status, GasUsed: 100000, TxHash: tx.Hash()}, nil
}

func (f *fakeChain) DeployPaymentManager(_ context.Context, s *chain.Signer) (chain.PaymentManager, *types.Transaction, error) {
	tx, err := f.tx("deployPaymentManager")
	if err != nil {
		return nil, nil, err
	}

	return fakePM{f}, tx, nil
}

func (f *fakeChain) DeployAssetManager(_ context.Context, s *chain.Signer) (chain.AssetManager, *types.Transaction, error) {
	tx, err := f.tx("deployAssetManager")
	if err != nil {
		return nil, nil, err
	}

	return fakeAM{f}, tx, nil
}

type fakePM struct{ f *fakeChain }

func (p fakePM) Address() common.Address { return pmAddr }

func (p fakePM) SetAssetManager(_ context.Context, _ *chain.Signer, addr common.Address) (*types.Transaction, error) {
	p.f.linkedAM = addr

	return p.f.tx("setAssetManager")
}

type fakeAM struct{ f *fakeChain }

func (a fakeAM) Address() common.Address { return amAddr }

func (a fakeAM) RegisterAsset(_ context.Context, _ *chain.Signer, asset chain.Asset) (*types.Transaction, error) {
	tx, err := a.f.tx("registerAsset")
	if err == nil {
		a.f.assets = append(a.f.assets, asset)
	}

	return tx, err
}

func (a fakeAM) ReportFault(context.Context, *chain.Signer, *big.Int, string) (*types.Transaction, error) {
	return a.f.tx("reportFault")
}

func (a fakeAM) StartMaintenance(context.Context, *chain.Signer, *big.Int, string) (*types.Transaction, error) {
	return a.f.tx("startMaintenance")
}

func (a fakeAM) CompleteMaintenance(context.Context, *chain.Signer, *big.Int, string) (*types.Transaction, error) {
	return a.f.tx("completeMaintenance")
}

func (a fakeAM) SetPaymentManager(_ context.Context, _ *chain.Signer, addr common.Address) (*types.Transaction, error) {
	a.f.linkedPM = addr

	return a.f.tx("setPaymentManager")
}

func newTestDeployer(t *testing.T, f *fakeChain) *Deployer {
	t.Helper()

	admin, err := chain.NewSigner(chain.RoleAdmin,
		"ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80", big.NewInt(31337))
	require.NoError(t, err)

	return New("Ethereum Sepolia", f, admin, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestRunSequence(t *testing.T) {
	f := newFakeChain()

	result, err := newTestDeployer(t, f).Run(context.Background(), workload.SeedAssets())
	require.NoError(t, err)

	assert.Equal(t, []string{
		"deployPaymentManager", "wait:deployPaymentManager",
		"deployAssetManager", "wait:deployAssetManager",
		"setPaymentManager", "wait:setPaymentManager",
		"setAssetManager", "wait:setAssetManager",
		"registerAsset", "wait:registerAsset",
		"registerAsset", "wait:registerAsset",
		"registerAsset", "wait:registerAsset",
	}, f.calls)

	assert.Equal(t, pmAddr, f.linkedPM)
	assert.Equal(t, amAddr, f.linkedAM)
	assert.Equal(t, workload.SeedAssets(), f.assets)

	assert.Equal(t, pmAddr, result.PaymentManager)
	assert.Equal(t, amAddr, result.AssetManager)
	require.Len(t, result.Transactions, 7)
	assert.Equal(t, "registerAsset #3", result.Transactions[6].Op)
	assert.Equal(t, uint64(100000), result.Transactions[0].GasUsed)
}

func TestRunStopsOnRegistrationFailure(t *testing.T) {
	f := newFakeChain()
	f.reverted["registerAsset"] = true

	result, err := newTestDeployer(t, f).Run(context.Background(), workload.SeedAssets())
	require.Error(t, err)
	assert.ErrorIs(t, err, chain.ErrReverted)
	assert.Contains(t, err.Error(), "registerAsset #1")

	registrations := 0
	for _, c := range f.calls {
		if c == "registerAsset" {
			registrations++
		}
	}

	assert.Equal(t, 1, registrations)
	assert.Equal(t, amAddr, result.AssetManager)
	assert.Len(t, result.Transactions, 4)
}

func TestRunStopsOnDeployFailure(t *testing.T) {
	f := newFakeChain()
	failure := errors.New("insufficient funds for gas * price + value")
	f.fail["deployAssetManager"] = failure

	result, err := newTestDeployer(t, f).Run(context.Background(), workload.SeedAssets())
	require.Error(t, err)
	assert.ErrorIs(t, err, failure)

	assert.Equal(t, []string{
		"deployPaymentManager", "wait:deployPaymentManager",
		"deployAssetManager",
	}, f.calls)
	assert.Equal(t, pmAddr, result.PaymentManager)
	assert.Equal(t, common.Address{}, result.AssetManager)
}

func TestRunStopsWhenLinkReverts(t *testing.T) {
	f := newFakeChain()
	f.reverted["setPaymentManager"] = true

	_, err := newTestDeployer(t, f).Run(context.Background(), workload.SeedAssets())
	require.Error(t, err)
	assert.ErrorIs(t, err, chain.ErrReverted)
	assert.NotContains(t, f.calls, "setAssetManager")
	assert.NotContains(t, f.calls, "registerAsset")
}

func TestRunWithoutAssets(t *testing.T) {
	f := newFakeChain()

	result, err := newTestDeployer(t, f).Run(context.Background(), nil)
	require.NoError(t, err)
	assert.Len(t, result.Transactions, 4)
}
