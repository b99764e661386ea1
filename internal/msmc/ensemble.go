package msmc

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/san-kum/virial/internal/meter"
)

// Ensemble runs independent copies of a walker concurrently and pools their
// blocks into one estimate.
type Ensemble struct {
	base      *Walker
	numRuns   int
	seedStart uint64
	log       *zap.Logger
}

func NewEnsemble(w *Walker, numRuns int, seedStart uint64) *Ensemble {
	return &Ensemble{base: w, numRuns: max(numRuns, 1), seedStart: seedStart, log: w.log}
}

// Run starts every walker and waits for all of them. The first error
// cancels the others.
func (e *Ensemble) Run(ctx context.Context) (*Result, []*Result, error) {
	walkers := make([]*Walker, e.numRuns)
	for i := range walkers {
		w, err := e.base.Copy(e.seedStart + uint64(i))
		if err != nil {
			return nil, nil, err
		}
		walkers[i] = w
	}

	results := make([]*Result, e.numRuns)
	g, ctx := errgroup.WithContext(ctx)
	for i, w := range walkers {
		g.Go(func() error {
			res, err := w.Run(ctx)
			results[i] = res
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, results, err
	}

	merged := Combine(results)
	e.log.Info("ensemble finished",
		zap.Int("walkers", e.numRuns),
		zap.Int64("samples", merged.Samples),
		zap.Float64("estimate", merged.Estimates[0].Value),
		zap.Float64("error", merged.Estimates[0].Error))
	return merged, results, nil
}

// Combine pools walker results over the same clusters.
func Combine(results []*Result) *Result {
	meters := make([]*meter.Ratio, 0, len(results))
	out := &Result{
		Acceptance: map[string]meter.Acceptance{},
		StepSizes:  map[string]float64{},
	}
	for _, r := range results {
		if r == nil {
			continue
		}
		meters = append(meters, r.Meter)
		out.Points = r.Points
		out.Reference = r.Reference
		out.Counters = out.Counters.Plus(r.Counters)
		out.Samples += r.Samples
		for name, a := range r.Acceptance {
			acc := out.Acceptance[name]
			acc.Trials += a.Trials
			acc.Accepted += a.Accepted
			out.Acceptance[name] = acc
		}
		for name, s := range r.StepSizes {
			out.StepSizes[name] += s
		}
	}
	if len(meters) == 0 {
		return out
	}
	for name := range out.StepSizes {
		out.StepSizes[name] /= float64(len(meters))
	}
	out.Meter = meter.Merge(meters...)
	out.Estimates = estimates(out.Meter, out.Reference)
	return out
}
