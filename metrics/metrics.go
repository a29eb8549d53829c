// Package metrics exposes benchmark measurements as prometheus collectors
// and writes them in the node_exporter textfile format.
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/weiihann/assetbench/chain"
	"github.com/weiihann/assetbench/harness"
	"github.com/weiihann/assetbench/workload"
)

// Recorder implements harness.Recorder on a private registry.
type Recorder struct {
	registry *prometheus.Registry

	// StepDuration is the submit-to-receipt time of each step.
	StepDuration *prometheus.GaugeVec
	// StepGasUsed is the gas used by each step.
	StepGasUsed *prometheus.GaugeVec
	// StepCost is the cost of each step in the network's display unit.
	StepCost *prometheus.GaugeVec
	// StepsTotal counts confirmed steps.
	StepsTotal *prometheus.CounterVec
	// FailuresTotal counts failed steps by error kind.
	FailuresTotal *prometheus.CounterVec
}

var stepLabels = []string{"network", "step"}

// NewRecorder creates a Recorder with all collectors registered.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		StepDuration: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "assetbench_step_duration_seconds",
				Help: "Wall-clock time from submission to receipt",
			},
			stepLabels,
		),
		StepGasUsed: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "assetbench_step_gas_used",
				Help: "Gas used by the step's transaction",
			},
			stepLabels,
		),
		StepCost: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "assetbench_step_cost",
				Help: "Transaction fee in the network's native unit",
			},
			append(stepLabels, "currency"),
		),
		StepsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "assetbench_steps_total",
				Help: "Total number of confirmed workflow steps",
			},
			stepLabels,
		),
		FailuresTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "assetbench_step_failures_total",
				Help: "Total number of failed workflow steps by error kind",
			},
			append(stepLabels, "kind"),
		),
	}

	r.registry.MustRegister(
		r.StepDuration,
		r.StepGasUsed,
		r.StepCost,
		r.StepsTotal,
		r.FailuresTotal,
	)

	return r
}

// ObserveStep implements harness.Recorder.
func (r *Recorder) ObserveStep(network string, step harness.StepResult) {
	op := string(step.Op)

	r.StepDuration.WithLabelValues(network, op).Set(float64(step.ElapsedMs) / 1000)
	r.StepGasUsed.WithLabelValues(network, op).Set(float64(step.GasUsed))
	r.StepsTotal.WithLabelValues(network, op).Inc()

	// Display precision only; the exact value lives in the report.
	if cost, err := strconv.ParseFloat(step.Cost, 64); err == nil {
		r.StepCost.WithLabelValues(network, op, step.Currency).Set(cost)
	}
}

// ObserveFailure implements harness.Recorder.
func (r *Recorder) ObserveFailure(network string, op workload.Op, err error) {
	kind := chain.KindOf(err).String()

	r.FailuresTotal.WithLabelValues(network, string(op), kind).Inc()
}

// WriteFile writes all metrics to path in the prometheus text format.
func (r *Recorder) WriteFile(path string) error {
	return prometheus.WriteToTextfile(path, r.registry)
}

var _ harness.Recorder = (*Recorder)(nil)
