package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/weiihann/assetbench/chain"
	"github.com/weiihann/assetbench/config"
	"github.com/weiihann/assetbench/deploy"
	"github.com/weiihann/assetbench/workload"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	missing := filepath.Join(t.TempDir(), "missing.env")

	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"--env-file", missing, "--log-level", "error"}, args...))

	err := root.Execute()

	return out.String(), err
}

func TestPlanPrintsWorkflow(t *testing.T) {
	t.Setenv("WORKFLOW_FAULT_DESCRIPTION", "Flickering")

	out, err := execute(t, "plan")
	require.NoError(t, err)

	var ops []workload.Operation
	scanner := bufio.NewScanner(strings.NewReader(out))
	for scanner.Scan() {
		var op workload.Operation
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &op))
		ops = append(ops, op)
	}

	require.Len(t, ops, 4)
	assert.Equal(t, workload.OpRegisterAsset, ops[0].Op)
	assert.Equal(t, chain.RoleAdmin, ops[0].Role)
	assert.Equal(t, workload.OpReportFault, ops[1].Op)
	assert.Equal(t, "Flickering", ops[1].Comment)
	assert.Equal(t, workload.OpCompleteMaintenance, ops[3].Op)
}

func TestPlanSeed(t *testing.T) {
	out, err := execute(t, "plan", "--seed")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Len(t, lines, len(workload.SeedAssets()))
	assert.Contains(t, out, workload.SeedAssets()[0].GlobalID)
}

func TestMeasureRejectsMissingKeys(t *testing.T) {
	for _, key := range []string{"ADMIN_KEY", "TECH_KEY", "USER_KEY"} {
		t.Setenv(key, "")
	}

	_, err := execute(t, "measure", "--networks", "sepolia")
	require.Error(t, err)
	assert.ErrorIs(t, err, config.ErrConfig)
}

func TestDeployRejectsUnknownNetwork(t *testing.T) {
	_, err := execute(t, "deploy", "--network", "nowhere")
	require.Error(t, err)
	assert.ErrorIs(t, err, config.ErrConfig)
}

func TestWriteEnvLines(t *testing.T) {
	result := &deploy.Result{
		PaymentManager: common.HexToAddress("0x1111111111111111111111111111111111111111"),
		AssetManager:   common.HexToAddress("0x2222222222222222222222222222222222222222"),
	}

	var buf bytes.Buffer
	writeEnvLines(&buf, "amoy", result)

	assert.Equal(t,
		"AMOY_PAYMENT_MANAGER_ADDRESS=0x1111111111111111111111111111111111111111\n"+
			"AMOY_ASSET_MANAGER_ADDRESS=0x2222222222222222222222222222222222222222\n",
		buf.String())
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer

	logger := newLogger(&buf, "warn", "json")
	logger.Info("hidden")
	logger.Warn("shown", slog.String("k", "v"))

	out := buf.String()
	assert.NotContains(t, out, "hidden")

	var rec map[string]any
	require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(out)), &rec))
	assert.Equal(t, "shown", rec["msg"])
	assert.Equal(t, "v", rec["k"])

	buf.Reset()
	newLogger(&buf, "bogus", "text").Info("default level")
	assert.Contains(t, buf.String(), "msg=\"default level\"")
}
