// Package harness drives the benchmark workload against deployed contracts,
// one network at a time, and measures every transaction.
package harness

import (
	"github.com/weiihann/assetbench/chain"
	"github.com/weiihann/assetbench/workload"
)

// StepResult holds the measurements of one confirmed transaction.
type StepResult struct {
	Op          workload.Op `json:"op"`
	Label       string      `json:"label"`
	Role        chain.Role  `json:"role"`
	TxHash      string      `json:"tx_hash"`
	BlockNumber uint64      `json:"block_number"`
	GasUsed     uint64      `json:"gas_used"`
	GasPriceWei string      `json:"gas_price_wei"`
	CostWei     string      `json:"cost_wei"`
	Cost        string      `json:"cost"`
	Currency    string      `json:"currency"`
	ElapsedMs   int64       `json:"elapsed_ms"`
}

// Result holds the outcome of a workload run on one network. Steps lists
// the steps confirmed before any failure.
type Result struct {
	Network   string       `json:"network"`
	Currency  string       `json:"currency"`
	Steps     []StepResult `json:"steps"`
	ElapsedMs int64        `json:"elapsed_ms"`
	Error     string       `json:"error,omitempty"`
	ErrorKind string       `json:"error_kind,omitempty"`
}

// Failed reports whether the run stopped on an error.
func (r Result) Failed() bool {
	return r.Error != ""
}
