package msmc

import (
	"context"
	"fmt"
	"math/rand/v2"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/virial/internal/box"
	"github.com/san-kum/virial/internal/cluster"
	"github.com/san-kum/virial/internal/mcmove"
	"github.com/san-kum/virial/internal/meter"
)

// Config holds the run length and adaptation parameters of a walker.
type Config struct {
	Steps            int64
	Equilibration    int64
	BlockSize        int64
	AdjustInterval   int64
	TargetAcceptance float64
	// RefWeight scales the reference term in the sampling weight.
	RefWeight float64
	Seed      uint64
}

// DefaultConfig is a short run suitable for B2 and B3.
func DefaultConfig() Config {
	return Config{
		Steps:            1_000_000,
		Equilibration:    10_000,
		BlockSize:        1000,
		AdjustInterval:   100,
		TargetAcceptance: 0.5,
		RefWeight:        1,
		Seed:             1,
	}
}

func (c Config) validate() error {
	switch {
	case c.Steps <= 0:
		return fmt.Errorf("%w: steps must be positive, got %d", ErrInvalidConfig, c.Steps)
	case c.Equilibration < 0:
		return fmt.Errorf("%w: equilibration must not be negative, got %d", ErrInvalidConfig, c.Equilibration)
	case c.BlockSize <= 0:
		return fmt.Errorf("%w: block size must be positive, got %d", ErrInvalidConfig, c.BlockSize)
	case !(c.TargetAcceptance > 0 && c.TargetAcceptance < 1):
		return fmt.Errorf("%w: target acceptance must be in (0, 1), got %g", ErrInvalidConfig, c.TargetAcceptance)
	case !(c.RefWeight > 0):
		return fmt.Errorf("%w: reference weight must be positive, got %g", ErrInvalidConfig, c.RefWeight)
	}
	return nil
}

// Result summarizes one walker or a merged ensemble.
type Result struct {
	Points    int     `json:"points"`
	Reference float64 `json:"reference"`
	// Estimates holds B_target for every target output, scaled by the
	// reference coefficient.
	Estimates  []meter.Estimate            `json:"estimates"`
	Acceptance map[string]meter.Acceptance `json:"acceptance"`
	StepSizes  map[string]float64          `json:"step_sizes"`
	Counters   cluster.Counters            `json:"counters"`
	Samples    int64                       `json:"samples"`
	Meter      *meter.Ratio                `json:"-"`
}

// Walker is a single-goroutine Mayer-sampling Monte Carlo chain.
type Walker struct {
	box      *box.Box
	target   cluster.Cluster
	ref      cluster.Cluster
	weight   cluster.Cluster
	moves    []mcmove.Move
	adapters []*mcmove.Adapter
	accept   []meter.Acceptance
	meter    *meter.Ratio

	refValue float64
	cfg      Config
	rng      *rand.Rand
	log      *zap.Logger
	values   []float64
}

// NewWalker samples b with weight |target| + w|ref|. refValue is the known
// integral of ref. The box must not be shared with another walker.
func NewWalker(b *box.Box, target, ref cluster.Cluster, refValue float64, moves []mcmove.Move, cfg Config, log *zap.Logger) (*Walker, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if len(moves) == 0 {
		return nil, ErrNoMoves
	}
	if log == nil {
		log = zap.NewNop()
	}
	weight, err := cluster.NewUmbrella([]cluster.Cluster{target, ref}, []float64{1, cfg.RefWeight})
	if err != nil {
		return nil, err
	}
	b.SetSampleCluster(weight)
	if pi := b.SampleValue(); !(pi > 0) {
		return nil, fmt.Errorf("%w: π = %g", ErrZeroWeight, pi)
	}

	w := &Walker{
		box:      b,
		target:   target,
		ref:      ref,
		weight:   weight,
		moves:    moves,
		accept:   make([]meter.Acceptance, len(moves)),
		refValue: refValue,
		cfg:      cfg,
		rng:      rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15)),
		log:      log,
	}
	for _, m := range moves {
		w.adapters = append(w.adapters, mcmove.NewAdapter(m, cfg.TargetAcceptance, cfg.AdjustInterval, log))
	}
	w.values = make([]float64, 1+outputs(target))
	w.meter = meter.NewRatio(len(w.values), cfg.BlockSize)
	return w, nil
}

func outputs(c cluster.Cluster) int {
	if v, ok := c.(cluster.Vector); ok {
		return v.Len()
	}
	return 1
}

// Copy returns an independent walker over a clone of the box, copies of the
// clusters and moves, and the given seed.
func (w *Walker) Copy(seed uint64) (*Walker, error) {
	moves := make([]mcmove.Move, len(w.moves))
	for i, m := range w.moves {
		moves[i] = m.Copy()
	}
	cfg := w.cfg
	cfg.Seed = seed
	return NewWalker(w.box.Clone(), w.target.Copy(), w.ref.Copy(), w.refValue, moves, cfg, w.log)
}

// Box is the box the walker samples.
func (w *Walker) Box() *box.Box { return w.box }

// Run equilibrates with step adaptation, then samples cfg.Steps trials.
func (w *Walker) Run(ctx context.Context) (*Result, error) {
	for i := int64(0); i < w.cfg.Equilibration; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		m, ok, err := w.trial()
		if err != nil {
			return nil, err
		}
		w.adapters[m].Record(ok)
	}
	w.meter.Reset()
	for i := range w.accept {
		w.accept[i] = meter.Acceptance{}
	}
	w.log.Debug("equilibrated",
		zap.Int("points", w.target.Points()),
		zap.Int64("trials", w.cfg.Equilibration))

	for i := int64(0); i < w.cfg.Steps; i++ {
		select {
		case <-ctx.Done():
			return w.result(), ctx.Err()
		default:
		}
		if _, _, err := w.trial(); err != nil {
			return nil, err
		}
		w.sample()
	}

	res := w.result()
	w.log.Info("walker finished",
		zap.Int("points", res.Points),
		zap.Int64("samples", res.Samples),
		zap.Float64("estimate", res.Estimates[0].Value),
		zap.Float64("error", res.Estimates[0].Error))
	return res, nil
}

// trial performs one Metropolis step with a randomly chosen move.
func (w *Walker) trial() (int, bool, error) {
	i := w.rng.IntN(len(w.moves))
	m := w.moves[i]

	old := w.box.SampleValue()
	m.Propose(w.box, w.rng)
	pi := w.box.SampleValue()

	ok := old == 0 || (pi > 0 && (pi >= old || w.rng.Float64() < pi/old))
	w.accept[i].Record(ok)
	if ok {
		return i, true, w.box.AcceptNotify()
	}
	m.Undo(w.box)
	return i, false, w.box.RejectNotify()
}

func (w *Walker) sample() {
	pi := w.box.SampleValue()
	w.values[0] = w.ref.Value(w.box) / pi
	if v, ok := w.target.(cluster.Vector); ok {
		for k, x := range v.Values(w.box) {
			w.values[1+k] = x / pi
		}
	} else {
		w.values[1] = w.target.Value(w.box) / pi
	}
	w.meter.Add(w.values)
}

func (w *Walker) result() *Result {
	res := &Result{
		Points:     w.target.Points(),
		Reference:  w.refValue,
		Acceptance: map[string]meter.Acceptance{},
		StepSizes:  map[string]float64{},
		Counters:   w.target.Stats().Plus(w.ref.Stats()),
		Samples:    w.meter.Samples(),
		Meter:      w.meter,
	}
	for i, m := range w.moves {
		res.Acceptance[m.Name()] = w.accept[i]
		res.StepSizes[m.Name()] = m.StepSize()
	}
	res.Estimates = estimates(w.meter, w.refValue)
	return res
}

// estimates scales each target channel's ratio to the reference channel by
// the reference integral.
func estimates(m *meter.Ratio, refValue float64) []meter.Estimate {
	out := make([]meter.Estimate, m.Channels()-1)
	for k := range out {
		e, err := m.RatioOf(k+1, 0)
		if err != nil {
			continue
		}
		e.Value *= refValue
		e.Error *= refValue
		out[k] = e
	}
	return out
}

// CompactPoints places n point molecules on a short line so that every pair
// overlaps a hard sphere of diameter sigma, which keeps the starting
// sampling weight positive.
func CompactPoints(n int, sigma float64) []*box.Molecule {
	mols := make([]*box.Molecule, n)
	step := 0.9 * sigma / float64(max(n-1, 1))
	for i := range mols {
		mols[i] = box.NewPoint(i, 0, r3.Vec{X: step * float64(i)})
	}
	return mols
}
