package chain

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseArtifactHardhatBytecode(t *testing.T) {
	data := []byte(`{
		"contractName": "AssetManager",
		"abi": ` + assetManagerABI + `,
		"bytecode": "0x6080604052"
	}`)

	a, err := ParseArtifact(data)
	require.NoError(t, err)

	assert.Equal(t, "AssetManager", a.ContractName)
	assert.Equal(t, []byte{0x60, 0x80, 0x60, 0x40, 0x52}, a.Bytecode.Bytes())

	parsed, err := a.ParsedABI()
	require.NoError(t, err)
	assert.Contains(t, parsed.Methods, "registerAsset")
	assert.Len(t, parsed.Methods["registerAsset"].Inputs, 10)
}

func TestParseArtifactFoundryBytecode(t *testing.T) {
	data := []byte(`{"abi": [], "bytecode": {"object": "0x6001"}}`)

	a, err := ParseArtifact(data)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x60, 0x01}, a.Bytecode.Bytes())
}

func TestParseArtifactErrors(t *testing.T) {
	_, err := ParseArtifact([]byte(`not json`))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConfig)

	_, err = ParseArtifact([]byte(`{"bytecode": "0x00"}`))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConfig)
	assert.Contains(t, err.Error(), "no abi")
}

func TestLoadArtifacts(t *testing.T) {
	dir := t.TempDir()

	for _, name := range []string{AssetManagerName, PaymentManagerName} {
		path := ArtifactPath(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path,
			[]byte(`{"contractName":"`+name+`","abi":[],"bytecode":"0x60"}`), 0o644))
	}

	artifacts, err := LoadArtifacts(dir)
	require.NoError(t, err)
	assert.Equal(t, AssetManagerName, artifacts.AssetManager.ContractName)
	assert.Equal(t, PaymentManagerName, artifacts.PaymentManager.ContractName)
}

func TestLoadArtifactsMissing(t *testing.T) {
	_, err := LoadArtifacts(t.TempDir())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConfig)
	assert.Equal(t, KindConfig, KindOf(err))
}

func TestArtifactPath(t *testing.T) {
	got := ArtifactPath("artifacts", AssetManagerName)
	assert.Equal(t, filepath.Join("artifacts", "contracts", "AssetManager.sol", "AssetManager.json"), got)
}
