// Package workload defines the fixed asset-lifecycle workload replayed on
// each network (register, report fault, start and complete maintenance) and
// the sample assets seeded at deployment. Workloads can be written as JSONL
// for inspection.
package workload

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/weiihann/assetbench/chain"
)

// Op names a workload step.
type Op string

const (
	OpRegisterAsset       Op = "register_asset"
	OpReportFault         Op = "report_fault"
	OpStartMaintenance    Op = "start_maintenance"
	OpCompleteMaintenance Op = "complete_maintenance"
)

// Operation is a single contract call in the workload.
type Operation struct {
	Op      Op           `json:"op"`
	Role    chain.Role   `json:"role"`
	Asset   *chain.Asset `json:"asset,omitempty"`
	AssetID uint64       `json:"asset_id"`
	Comment string       `json:"comment,omitempty"`
}

// Label returns a human readable description of the step.
func (o Operation) Label() string {
	switch o.Op {
	case OpRegisterAsset:
		return "Admin registers asset"
	case OpReportFault:
		return "User reports fault"
	case OpStartMaintenance:
		return "Technician starts maintenance"
	case OpCompleteMaintenance:
		return "Technician completes maintenance"
	default:
		return string(o.Op)
	}
}

// Summary contains statistics about a written workload.
type Summary struct {
	TotalOperations int
	ByRole          map[chain.Role]int
}

// Config controls the parameters of the benchmark workflow.
type Config struct {
	// Asset is registered by the first step.
	Asset chain.Asset
	// AssetID is the asset the fault and maintenance steps target.
	AssetID          uint64
	FaultDescription string
	StartComment     string
	CompleteComment  string
}

// DefaultConfig returns the workflow parameters of the reference runs:
// register a fresh lamp, then drive asset 0 through a fault and its
// maintenance.
func DefaultConfig() Config {
	return Config{
		Asset:            BenchmarkAsset(),
		AssetID:          0,
		FaultDescription: "Overheat issue",
		StartComment:     "Beginning maintenance",
		CompleteComment:  "Maintenance completed",
	}
}

// Steps returns the four operations in execution order. Each step relies on
// contract state left by the previous one.
func Steps(cfg Config) []Operation {
	asset := cfg.Asset

	return []Operation{
		{Op: OpRegisterAsset, Role: chain.RoleAdmin, Asset: &asset},
		{Op: OpReportFault, Role: chain.RoleUser, AssetID: cfg.AssetID, Comment: cfg.FaultDescription},
		{Op: OpStartMaintenance, Role: chain.RoleTechnician, AssetID: cfg.AssetID, Comment: cfg.StartComment},
		{Op: OpCompleteMaintenance, Role: chain.RoleTechnician, AssetID: cfg.AssetID, Comment: cfg.CompleteComment},
	}
}

// Write encodes ops as JSONL to w and returns a Summary.
func Write(w io.Writer, ops []Operation) (Summary, error) {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)

	summary := Summary{ByRole: make(map[chain.Role]int)}

	for _, op := range ops {
		if err := enc.Encode(op); err != nil {
			return summary, fmt.Errorf("encode %s: %w", op.Op, err)
		}

		summary.TotalOperations++
		summary.ByRole[op.Role]++
	}

	return summary, nil
}
