package harness

import (
	"context"
	"errors"
	"log/slog"

	"github.com/weiihann/assetbench/workload"
)

// Suite runs the workload on several networks one after another.
type Suite struct {
	Runners []*Runner
	// ContinueOnError lets later networks run after an earlier one failed.
	// By default the first failure ends the suite and later networks are
	// never started.
	ContinueOnError bool
	// Logger defaults to slog.Default when nil.
	Logger *slog.Logger
}

// Run executes ops on every runner in order. It returns the results of the
// networks that were started and the joined errors of the failed ones.
func (s *Suite) Run(ctx context.Context, ops []workload.Operation) ([]Result, error) {
	results := make([]Result, 0, len(s.Runners))

	var errs []error

	for i, runner := range s.Runners {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)

			break
		}

		result, err := runner.Run(ctx, ops)
		results = append(results, *result)

		if err == nil {
			continue
		}

		errs = append(errs, err)

		if !s.ContinueOnError {
			if skipped := len(s.Runners) - i - 1; skipped > 0 {
				s.logger().WarnContext(ctx, "skipping remaining networks",
					slog.Int("skipped", skipped),
				)
			}

			break
		}
	}

	return results, errors.Join(errs...)
}

func (s *Suite) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}

	return slog.Default()
}
