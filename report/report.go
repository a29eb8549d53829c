// Package report formats benchmark results into comparison tables.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"math/big"

	"github.com/holiman/uint256"
	"github.com/weiihann/assetbench/chain"
	"github.com/weiihann/assetbench/harness"
)

// Generate writes a markdown report for the given results: one table per
// network and a cross-network summary.
func Generate(w io.Writer, results []harness.Result) error {
	if len(results) == 0 {
		return fmt.Errorf("no results to report")
	}

	fmt.Fprintln(w, "## Workflow Benchmark Results")
	fmt.Fprintln(w)

	for _, r := range results {
		fmt.Fprintf(w, "### %s\n", r.Network)
		fmt.Fprintln(w)

		if r.Failed() {
			fmt.Fprintf(w, "**FAILED** (%s): %s\n", orDash(r.ErrorKind), r.Error)
			fmt.Fprintln(w)
		}

		if len(r.Steps) == 0 {
			fmt.Fprintln(w, "No confirmed transactions.")
			fmt.Fprintln(w)

			continue
		}

		fmt.Fprintln(w, "| Step | Role | Gas Used | Gas Price | Cost | Time |")
		fmt.Fprintln(w, "|------|------|----------|-----------|------|------|")

		for _, s := range r.Steps {
			fmt.Fprintf(w, "| %s | %s | %d | %s | %s %s | %s |\n",
				s.Label,
				s.Role,
				s.GasUsed,
				formatGwei(s.GasPriceWei),
				s.Cost,
				s.Currency,
				formatMs(s.ElapsedMs),
			)
		}

		fmt.Fprintln(w)
	}

	fastestMs := findFastest(results)

	fmt.Fprintln(w, "| Network | Steps | Total Gas | Total Cost | Total Time | Slowdown |")
	fmt.Fprintln(w, "|---------|-------|-----------|------------|------------|----------|")

	for _, r := range results {
		gas, cost, ms := totals(r)

		slowdown := "-"
		if fastestMs > 0 && ms > 0 && !r.Failed() {
			slowdown = fmt.Sprintf("%.2fx", float64(ms)/float64(fastestMs))
		}

		fmt.Fprintf(w, "| %s | %d | %d | %s %s | %s | %s |\n",
			r.Network,
			len(r.Steps),
			gas,
			chain.FormatEther(cost),
			r.Currency,
			formatMs(ms),
			slowdown,
		)
	}

	return nil
}

// GenerateJSON writes results as JSON to w.
func GenerateJSON(w io.Writer, results []harness.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(results)
}

// totals sums gas, exact cost and step time over the confirmed steps.
func totals(r harness.Result) (uint64, *uint256.Int, int64) {
	var (
		gas uint64
		ms  int64
	)

	cost := new(uint256.Int)

	for _, s := range r.Steps {
		gas += s.GasUsed
		ms += s.ElapsedMs

		if c, err := uint256.FromDecimal(s.CostWei); err == nil {
			cost.Add(cost, c)
		}
	}

	return gas, cost, ms
}

// findFastest returns the smallest total step time among successful runs.
func findFastest(results []harness.Result) int64 {
	fastest := int64(math.MaxInt64)

	for _, r := range results {
		if r.Failed() {
			continue
		}

		_, _, ms := totals(r)
		if ms > 0 && ms < fastest {
			fastest = ms
		}
	}

	if fastest == math.MaxInt64 {
		return 0
	}

	return fastest
}

func formatMs(ms int64) string {
	if ms < 1000 {
		return fmt.Sprintf("%dms", ms)
	}

	return fmt.Sprintf("%.2fs", float64(ms)/1000)
}

// formatGwei renders a decimal wei string in gwei.
func formatGwei(wei string) string {
	v, ok := new(big.Int).SetString(wei, 10)
	if !ok || v.Sign() < 0 {
		return "-"
	}

	u, overflow := uint256.FromBig(v)
	if overflow {
		return "-"
	}

	return chain.FormatUnits(u, 9) + " gwei"
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}

	return s
}
