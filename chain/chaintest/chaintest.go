// Package chaintest runs the contract layer against an in-process simulated
// chain. Contracts are deployed from hand-assembled bytecode, so no
// compiler is needed.
package chaintest

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/big"
	"os"
	"path/filepath"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient/simulated"
	"github.com/weiihann/assetbench/chain"
)

// Runtime code for the test contracts.
const (
	// AcceptAll stops immediately, so every call succeeds.
	AcceptAll = "00"
	// RejectAll reverts every call with empty data.
	RejectAll = "60006000fd"
)

// ABI declares the AssetManager and PaymentManager methods the tool calls.
const ABI = `[
	{"type":"function","name":"registerAsset","stateMutability":"nonpayable","outputs":[],"inputs":[
		{"name":"name","type":"string"},{"name":"building","type":"string"},
		{"name":"floor","type":"uint8"},{"name":"room","type":"uint16"},
		{"name":"brand","type":"string"},{"name":"model","type":"string"},
		{"name":"ipfsHash","type":"string"},{"name":"globalId","type":"string"},
		{"name":"positionId","type":"string"},{"name":"physicalId","type":"string"}]},
	{"type":"function","name":"reportFault","stateMutability":"nonpayable","outputs":[],"inputs":[
		{"name":"assetId","type":"uint256"},{"name":"description","type":"string"}]},
	{"type":"function","name":"startMaintenance","stateMutability":"nonpayable","outputs":[],"inputs":[
		{"name":"assetId","type":"uint256"},{"name":"comment","type":"string"}]},
	{"type":"function","name":"completeMaintenance","stateMutability":"nonpayable","outputs":[],"inputs":[
		{"name":"assetId","type":"uint256"},{"name":"comment","type":"string"}]},
	{"type":"function","name":"setPaymentManager","stateMutability":"nonpayable","outputs":[],"inputs":[
		{"name":"pm","type":"address"}]},
	{"type":"function","name":"setAssetManager","stateMutability":"nonpayable","outputs":[],"inputs":[
		{"name":"am","type":"address"}]}
]`

// Hardhat development accounts #0 to #2.
var Keys = map[chain.Role]string{
	chain.RoleAdmin:      "ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80",
	chain.RoleUser:       "59c6995e998f97a5a0044966f0945389dc9e86dae88c7a8412f4603b6b78690d",
	chain.RoleTechnician: "5de4111afa1a4b94908f83103eb1f1706367c2e68ca870fc3fb9a804cdab365a",
}

// CreationCode returns init code that deploys runtime (hex, no 0x) as is.
func CreationCode(runtime string) string {
	size := len(runtime) / 2

	return fmt.Sprintf("0x60%02x600c60003960%02x6000f3%s", size, size, runtime)
}

func artifact(name, runtime string) *chain.Artifact {
	return &chain.Artifact{
		ContractName: name,
		ABI:          []byte(ABI),
		Bytecode:     chain.Bytecode(CreationCode(runtime)),
	}
}

// Artifacts builds both contract artifacts from runtime code.
func Artifacts(assetRuntime, paymentRuntime string) *chain.Artifacts {
	return &chain.Artifacts{
		AssetManager:   artifact(chain.AssetManagerName, assetRuntime),
		PaymentManager: artifact(chain.PaymentManagerName, paymentRuntime),
	}
}

// WriteArtifacts lays out accept-all artifacts in hardhat form under a
// temporary directory and returns it.
func WriteArtifacts(t testing.TB) string {
	t.Helper()

	dir := t.TempDir()

	for _, name := range []string{chain.AssetManagerName, chain.PaymentManagerName} {
		path := chain.ArtifactPath(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}

		body := fmt.Sprintf(`{"contractName":%q,"abi":%s,"bytecode":%q}`, name, ABI, CreationCode(AcceptAll))
		if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
			t.Fatal(err)
		}
	}

	return dir
}

// Chain is a Network bound to a simulated backend. Every WaitMined seals
// a block first, so pending transactions are included at once.
type Chain struct {
	*chain.Network
	Backend *simulated.Backend
}

// New starts a simulated chain with the role accounts funded and binds a
// Network using artifacts to it. The backend is closed when t ends.
func New(t testing.TB, artifacts *chain.Artifacts) *Chain {
	t.Helper()

	balance := new(big.Int).Mul(big.NewInt(1000), big.NewInt(1e18))
	alloc := types.GenesisAlloc{}

	for _, key := range Keys {
		pk, err := crypto.HexToECDSA(key)
		if err != nil {
			t.Fatal(err)
		}

		alloc[crypto.PubkeyToAddress(pk.PublicKey)] = types.Account{Balance: balance}
	}

	backend := simulated.NewBackend(alloc)
	t.Cleanup(func() { _ = backend.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	n, err := chain.NewNetwork(context.Background(), logger, "Simulated", backend.Client(), Keys, artifacts)
	if err != nil {
		t.Fatal(err)
	}

	return &Chain{Network: n, Backend: backend}
}

// WaitMined implements chain.Waiter.
func (c *Chain) WaitMined(ctx context.Context, tx *types.Transaction) (*types.Receipt, error) {
	c.Backend.Commit()

	return c.Network.WaitMined(ctx, tx)
}

// Receipt fetches the receipt of an already mined transaction.
func (c *Chain) Receipt(ctx context.Context, tx common.Hash) (*types.Receipt, error) {
	return c.Backend.Client().TransactionReceipt(ctx, tx)
}

var _ chain.Deployer = (*Chain)(nil)
