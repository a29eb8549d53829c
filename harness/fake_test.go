package harness

import (
	"context"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/weiihann/assetbench/chain"
)

// fakeChain is an in-memory AssetManager and Waiter that records every
// submission and every receipt wait.
type fakeChain struct {
	mu    sync.Mutex
	calls []string
	nonce uint64

	fail     map[string]error
	gasUsed  uint64
	gasPrice *big.Int
	reverted map[string]bool
	ops      map[common.Hash]string
}

func newFakeChain() *fakeChain {
	return &fakeChain{
		fail:     make(map[string]error),
		reverted: make(map[string]bool),
		ops:      make(map[common.Hash]string),
		gasUsed:  21000,
		gasPrice: big.NewInt(50),
	}
}

func (f *fakeChain) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, call)
}

func (f *fakeChain) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]string(nil), f.calls...)
}

func (f *fakeChain) send(method string, s *chain.Signer) (*types.Transaction, error) {
	f.record(method + ":" + string(s.Role))

	if err := f.fail[method]; err != nil {
		return nil, err
	}

	f.mu.Lock()
	f.nonce++
	tx := types.NewTx(&types.LegacyTx{Nonce: f.nonce, GasPrice: f.gasPrice, Gas: f.gasUsed})
	f.ops[tx.Hash()] = method
	f.mu.Unlock()

	return tx, nil
}

func (f *fakeChain) Address() common.Address {
	return common.HexToAddress("0x5FbDB2315678afecb367f032d93F642f64180aa3")
}

func (f *fakeChain) RegisterAsset(_ context.Context, s *chain.Signer, _ chain.Asset) (*types.Transaction, error) {
	return f.send("registerAsset", s)
}

func (f *fakeChain) ReportFault(_ context.Context, s *chain.Signer, _ *big.Int, _ string) (*types.Transaction, error) {
	return f.send("reportFault", s)
}

func (f *fakeChain) StartMaintenance(_ context.Context, s *chain.Signer, _ *big.Int, _ string) (*types.Transaction, error) {
	return f.send("startMaintenance", s)
}

func (f *fakeChain) CompleteMaintenance(_ context.Context, s *chain.Signer, _ *big.Int, _ string) (*types.Transaction, error) {
	return f.send("completeMaintenance", s)
}

func (f *fakeChain) SetPaymentManager(_ context.Context, s *chain.Signer, _ common.Address) (*types.Transaction, error) {
	return f.send("setPaymentManager", s)
}

func (f *fakeChain) WaitMined(_ context.Context, tx *types.Transaction) (*types.Receipt, error) {
	f.mu.Lock()
	method := f.ops[tx.Hash()]
	f.mu.Unlock()

	f.record("wait:" + method)

	status := types.ReceiptStatusSuccessful
	if f.reverted[method] {
		status = types.ReceiptStatusFailed
	}

	return &types.Receipt{
		Status:      status,
		GasUsed:     f.gasUsed,
		TxHash:      tx.Hash(),
		BlockNumber: big.NewInt(100),
	}, nil
}

var _ chain.AssetManager = (*fakeChain)(nil)

const testKey = "ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"

func testSigners() chain.Signers {
	signers, err := chain.NewSigners(map[chain.Role]string{
		chain.RoleAdmin:      testKey,
		chain.RoleTechnician: testKey,
		chain.RoleUser:       testKey,
	}, big.NewInt(31337))
	if err != nil {
		panic(fmt.Sprintf("build signers: %v", err))
	}

	return signers
}
