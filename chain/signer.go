package chain

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// Role names the identity a transaction is signed under.
type Role string

const (
	RoleAdmin      Role = "admin"
	RoleTechnician Role = "technician"
	RoleUser       Role = "user"
)

// Roles lists every role in a stable order.
func Roles() []Role {
	return []Role{RoleAdmin, RoleTechnician, RoleUser}
}

// Signer is a private key bound to a role and a chain id. It is read-only
// after construction.
type Signer struct {
	Role    Role
	Address common.Address
	opts    bind.TransactOpts
}

// NewSigner parses a hex private key (with or without 0x) and binds it to
// chainID.
func NewSigner(role Role, hexKey string, chainID *big.Int) (*Signer, error) {
	op := fmt.Sprintf("signer %s", role)

	hexKey = strings.TrimPrefix(strings.TrimSpace(hexKey), "0x")
	if hexKey == "" {
		return nil, configError(op, fmt.Errorf("private key is empty"))
	}

	key, err := crypto.HexToECDSA(hexKey)
	if err != nil {
		return nil, configError(op, fmt.Errorf("parse private key: %w", err))
	}

	if chainID == nil || chainID.Sign() <= 0 {
		return nil, configError(op, fmt.Errorf("invalid chain id %v", chainID))
	}

	opts, err := bind.NewKeyedTransactorWithChainID(key, chainID)
	if err != nil {
		return nil, configError(op, err)
	}

	return &Signer{
		Role:    role,
		Address: crypto.PubkeyToAddress(key.PublicKey),
		opts:    *opts,
	}, nil
}

// TransactOpts returns a copy of the signer's transact options bound to ctx.
func (s *Signer) TransactOpts(ctx context.Context) *bind.TransactOpts {
	opts := s.opts
	opts.Context = ctx

	return &opts
}

// Signers maps each role to its signer on one network.
type Signers map[Role]*Signer

// NewSigners builds one signer per role from keys.
func NewSigners(keys map[Role]string, chainID *big.Int) (Signers, error) {
	signers := make(Signers, len(keys))

	for _, role := range Roles() {
		key, ok := keys[role]
		if !ok {
			continue
		}

		s, err := NewSigner(role, key, chainID)
		if err != nil {
			return nil, err
		}

		signers[role] = s
	}

	return signers, nil
}

// Get returns the signer for role or a config error if it is missing.
func (s Signers) Get(role Role) (*Signer, error) {
	signer, ok := s[role]
	if !ok || signer == nil {
		return nil, configError("signer", fmt.Errorf("no key configured for role %s", role))
	}

	return signer, nil
}
