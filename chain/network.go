package chain

import (
	"context"
	"fmt"
	"log/slog"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
)

// Artifacts holds the compiled contracts a network binds to.
type Artifacts struct {
	AssetManager   *Artifact
	PaymentManager *Artifact
}

// LoadArtifacts reads both contract artifacts from a hardhat artifacts dir.
func LoadArtifacts(dir string) (*Artifacts, error) {
	am, err := LoadArtifact(ArtifactPath(dir, AssetManagerName))
	if err != nil {
		return nil, err
	}

	pm, err := LoadArtifact(ArtifactPath(dir, PaymentManagerName))
	if err != nil {
		return nil, err
	}

	return &Artifacts{AssetManager: am, PaymentManager: pm}, nil
}

// ConnectConfig describes one network connection.
type ConnectConfig struct {
	Name   string
	RPCURL string
	Keys   map[Role]string
}

// Backend is the RPC surface a Network drives. *ethclient.Client
// implements it.
type Backend interface {
	bind.ContractBackend
	bind.DeployBackend
	ChainID(ctx context.Context) (*big.Int, error)
}

// Network is a live RPC connection plus the role signers bound to its
// chain id. It implements Deployer and Waiter.
type Network struct {
	Name    string
	ChainID *big.Int
	Signers Signers

	client     Backend
	close      func()
	logger     *slog.Logger
	assetABI   abi.ABI
	paymentABI abi.ABI
	artifacts  *Artifacts
}

// Connect dials the RPC endpoint, reads the chain id and builds one signer
// per configured key.
func Connect(
	ctx context.Context,
	logger *slog.Logger,
	cfg ConnectConfig,
	artifacts *Artifacts,
) (*Network, error) {
	op := fmt.Sprintf("connect %s", cfg.Name)

	if cfg.RPCURL == "" {
		return nil, configError(op, fmt.Errorf("rpc url is empty"))
	}

	client, err := ethclient.DialContext(ctx, cfg.RPCURL)
	if err != nil {
		return nil, &Error{Kind: KindSubmission, Op: op, Err: err}
	}

	n, err := NewNetwork(ctx, logger, cfg.Name, client, cfg.Keys, artifacts)
	if err != nil {
		client.Close()

		return nil, err
	}

	n.close = client.Close

	return n, nil
}

// NewNetwork binds an already open backend: it reads the chain id and
// builds one signer per configured key.
func NewNetwork(
	ctx context.Context,
	logger *slog.Logger,
	name string,
	backend Backend,
	keys map[Role]string,
	artifacts *Artifacts,
) (*Network, error) {
	op := fmt.Sprintf("connect %s", name)

	if artifacts == nil || artifacts.AssetManager == nil || artifacts.PaymentManager == nil {
		return nil, configError(op, fmt.Errorf("contract artifacts not loaded"))
	}

	assetABI, err := artifacts.AssetManager.ParsedABI()
	if err != nil {
		return nil, err
	}

	paymentABI, err := artifacts.PaymentManager.ParsedABI()
	if err != nil {
		return nil, err
	}

	chainID, err := backend.ChainID(ctx)
	if err != nil {
		return nil, &Error{Kind: KindSubmission, Op: op, Err: fmt.Errorf("get chain id: %w", err)}
	}

	signers, err := NewSigners(keys, chainID)
	if err != nil {
		return nil, err
	}

	if logger == nil {
		logger = slog.Default()
	}

	logger = logger.With(slog.String("network", name))

	for _, role := range Roles() {
		if s, ok := signers[role]; ok {
			logger.Debug("signer ready",
				slog.String("role", string(role)),
				slog.String("address", s.Address.Hex()),
			)
		}
	}

	logger.Info("connected",
		slog.String("chain_id", chainID.String()),
	)

	return &Network{
		Name:       name,
		ChainID:    chainID,
		Signers:    signers,
		client:     backend,
		logger:     logger,
		assetABI:   assetABI,
		paymentABI: paymentABI,
		artifacts:  artifacts,
	}, nil
}

// Close releases the RPC connection opened by Connect.
func (n *Network) Close() {
	if n.close != nil {
		n.close()
	}
}

// WaitMined implements Waiter.
func (n *Network) WaitMined(ctx context.Context, tx *types.Transaction) (*types.Receipt, error) {
	return bind.WaitMined(ctx, n.client, tx)
}

// AssetManagerAt binds an already deployed AssetManager.
func (n *Network) AssetManagerAt(address common.Address) AssetManager {
	return &assetManager{contract: newContract(address, n.assetABI, n.client)}
}

// PaymentManagerAt binds an already deployed PaymentManager.
func (n *Network) PaymentManagerAt(address common.Address) PaymentManager {
	return &paymentManager{contract: newContract(address, n.paymentABI, n.client)}
}

// DeployPaymentManager implements Deployer.
func (n *Network) DeployPaymentManager(ctx context.Context, s *Signer) (PaymentManager, *types.Transaction, error) {
	addr, tx, err := n.deploy(ctx, s, PaymentManagerName, n.paymentABI, n.artifacts.PaymentManager)
	if err != nil {
		return nil, nil, err
	}

	return n.PaymentManagerAt(addr), tx, nil
}

// DeployAssetManager implements Deployer.
func (n *Network) DeployAssetManager(ctx context.Context, s *Signer) (AssetManager, *types.Transaction, error) {
	addr, tx, err := n.deploy(ctx, s, AssetManagerName, n.assetABI, n.artifacts.AssetManager)
	if err != nil {
		return nil, nil, err
	}

	return n.AssetManagerAt(addr), tx, nil
}

func (n *Network) deploy(
	ctx context.Context,
	s *Signer,
	name string,
	parsed abi.ABI,
	artifact *Artifact,
) (common.Address, *types.Transaction, error) {
	op := "deploy " + name

	code := artifact.Bytecode.Bytes()
	if len(code) == 0 {
		return common.Address{}, nil, configError(op, fmt.Errorf("artifact has no bytecode"))
	}

	addr, tx, _, err := bind.DeployContract(s.TransactOpts(ctx), parsed, code, n.client)
	if err != nil {
		return common.Address{}, nil, submitError(op, err)
	}

	n.logger.Info("deployment submitted",
		slog.String("contract", name),
		slog.String("address", addr.Hex()),
		slog.String("tx_hash", tx.Hash().Hex()),
	)

	return addr, tx, nil
}

type assetManager struct {
	*contract
}

func (a *assetManager) RegisterAsset(ctx context.Context, s *Signer, asset Asset) (*types.Transaction, error) {
	return a.transact(ctx, s, "registerAsset",
		asset.Name,
		asset.Building,
		asset.Floor,
		asset.Room,
		asset.Brand,
		asset.Model,
		asset.IPFSHash,
		asset.GlobalID,
		asset.PositionID,
		asset.PhysicalID,
	)
}

func (a *assetManager) ReportFault(ctx context.Context, s *Signer, assetID *big.Int, description string) (*types.Transaction, error) {
	return a.transact(ctx, s, "reportFault", assetID, description)
}

func (a *assetManager) StartMaintenance(ctx context.Context, s *Signer, assetID *big.Int, comment string) (*types.Transaction, error) {
	return a.transact(ctx, s, "startMaintenance", assetID, comment)
}

func (a *assetManager) CompleteMaintenance(ctx context.Context, s *Signer, assetID *big.Int, comment string) (*types.Transaction, error) {
	return a.transact(ctx, s, "completeMaintenance", assetID, comment)
}

func (a *assetManager) SetPaymentManager(ctx context.Context, s *Signer, addr common.Address) (*types.Transaction, error) {
	return a.transact(ctx, s, "setPaymentManager", addr)
}

type paymentManager struct {
	*contract
}

func (p *paymentManager) SetAssetManager(ctx context.Context, s *Signer, addr common.Address) (*types.Transaction, error) {
	return p.transact(ctx, s, "setAssetManager", addr)
}
