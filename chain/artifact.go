package chain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

// Contract names as compiled by hardhat.
const (
	AssetManagerName   = "AssetManager"
	PaymentManagerName = "PaymentManager"
)

// Artifact is a compiled contract: its ABI and creation bytecode.
type Artifact struct {
	ContractName string          `json:"contractName"`
	ABI          json.RawMessage `json:"abi"`
	Bytecode     Bytecode        `json:"bytecode"`
}

// Bytecode accepts both the hardhat form ("0x...") and the foundry form
// ({"object": "0x..."}).
type Bytecode string

// UnmarshalJSON implements json.Unmarshaler.
func (b *Bytecode) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '{' {
		var obj struct {
			Object string `json:"object"`
		}
		if err := json.Unmarshal(data, &obj); err != nil {
			return err
		}

		*b = Bytecode(obj.Object)

		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}

	*b = Bytecode(s)

	return nil
}

// Bytes decodes the hex bytecode.
func (b Bytecode) Bytes() []byte {
	return common.FromHex(string(b))
}

// ArtifactPath returns the hardhat artifact location of a contract.
func ArtifactPath(artifactsDir, name string) string {
	return filepath.Join(artifactsDir, "contracts", name+".sol", name+".json")
}

// LoadArtifact reads and parses a contract artifact from path.
func LoadArtifact(path string) (*Artifact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, configError("load artifact", err)
	}

	return ParseArtifact(data)
}

// ParseArtifact parses artifact JSON and checks it carries an ABI.
func ParseArtifact(data []byte) (*Artifact, error) {
	var a Artifact
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, configError("parse artifact", fmt.Errorf("decode JSON: %w", err))
	}

	if len(a.ABI) == 0 {
		return nil, configError("parse artifact", fmt.Errorf("artifact has no abi"))
	}

	return &a, nil
}

// ParsedABI decodes the artifact's ABI.
func (a *Artifact) ParsedABI() (abi.ABI, error) {
	parsed, err := abi.JSON(bytes.NewReader(a.ABI))
	if err != nil {
		return abi.ABI{}, configError("parse abi", err)
	}

	return parsed, nil
}
