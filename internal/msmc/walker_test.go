package msmc

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/virial/internal/box"
	"github.com/san-kum/virial/internal/cluster"
	"github.com/san-kum/virial/internal/mayer"
	"github.com/san-kum/virial/internal/mcmove"
	"github.com/san-kum/virial/internal/meter"
)

func hsCluster(t *testing.T, n int, sigma float64) cluster.Cluster {
	t.Helper()
	c, err := cluster.NewSoft(n, &mayer.HardSphere{Sigma: sigma}, cluster.WithTolerance(0))
	require.NoError(t, err)
	return c
}

func newWalker(t *testing.T, n int, target cluster.Cluster, refSigma float64, cfg Config) *Walker {
	t.Helper()
	b, err := box.New(CompactPoints(n, math.Min(1, refSigma)))
	require.NoError(t, err)
	ref := hsCluster(t, n, refSigma)
	bref, err := HardSphereB(n, refSigma)
	require.NoError(t, err)
	w, err := NewWalker(b, target, ref, bref, []mcmove.Move{mcmove.NewTranslate(0.5)}, cfg, nil)
	require.NoError(t, err)
	return w
}

func shortConfig(steps int64) Config {
	cfg := DefaultConfig()
	cfg.Steps = steps
	cfg.Equilibration = 2000
	cfg.BlockSize = 500
	return cfg
}

func TestHardSphereB(t *testing.T) {
	b2, err := HardSphereB(2, 1)
	require.NoError(t, err)
	assert.InDelta(t, 2*math.Pi/3, b2, 1e-12)

	b3, err := HardSphereB(3, 1)
	require.NoError(t, err)
	assert.InDelta(t, 5*math.Pi*math.Pi/18, b3, 1e-12)

	b4, err := HardSphereB(4, 2)
	require.NoError(t, err)
	assert.InEpsilon(t, 0.2869495*math.Pow(16*math.Pi/3, 3), b4, 1e-12)

	_, err = HardSphereB(9, 1)
	assert.ErrorIs(t, err, ErrNoReference)
}

func TestWalkerIdenticalClustersGiveReference(t *testing.T) {
	w := newWalker(t, 3, hsCluster(t, 3, 1), 1, shortConfig(5000))
	res, err := w.Run(context.Background())
	require.NoError(t, err)

	want, _ := HardSphereB(3, 1)
	require.Len(t, res.Estimates, 1)
	assert.InEpsilon(t, want, res.Estimates[0].Value, 1e-12)
	assert.Equal(t, int64(5000), res.Samples)
	assert.Equal(t, int64(5000), res.Acceptance["translate"].Trials)
}

func TestWalkerHardSphereB2(t *testing.T) {
	w := newWalker(t, 2, hsCluster(t, 2, 1), 1.5, shortConfig(100_000))
	res, err := w.Run(context.Background())
	require.NoError(t, err)

	assert.InEpsilon(t, 2*math.Pi/3, res.Estimates[0].Value, 0.05)
	assert.Positive(t, res.Estimates[0].Error)
	a := res.Acceptance["translate"]
	assert.Greater(t, a.Ratio(), 0.05)
	assert.Less(t, a.Ratio(), 0.99)
}

func TestWalkerDerivativeChannels(t *testing.T) {
	d, err := cluster.NewDerivatives(2, 1, &mayer.HardSphere{Sigma: 1}, cluster.WithTolerance(0))
	require.NoError(t, err)
	w := newWalker(t, 2, d, 1, shortConfig(2000))
	res, err := w.Run(context.Background())
	require.NoError(t, err)

	require.Len(t, res.Estimates, 2)
	assert.InEpsilon(t, 2*math.Pi/3, res.Estimates[0].Value, 1e-12)
	// hard spheres do not depend on temperature
	assert.Equal(t, 0.0, res.Estimates[1].Value)
}

func TestWalkerRejectsZeroWeight(t *testing.T) {
	mols := []*box.Molecule{box.NewPoint(0, 0, r3.Vec{}), box.NewPoint(1, 0, r3.Vec{X: 10})}
	b, err := box.New(mols)
	require.NoError(t, err)

	_, err = NewWalker(b, hsCluster(t, 2, 1), hsCluster(t, 2, 1), 1, []mcmove.Move{mcmove.NewTranslate(1)}, DefaultConfig(), nil)
	assert.ErrorIs(t, err, ErrZeroWeight)
}

func TestWalkerConfigValidation(t *testing.T) {
	b, err := box.New(CompactPoints(2, 1))
	require.NoError(t, err)
	c := hsCluster(t, 2, 1)

	_, err = NewWalker(b, c, c, 1, nil, DefaultConfig(), nil)
	assert.ErrorIs(t, err, ErrNoMoves)

	for _, mutate := range []func(*Config){
		func(c *Config) { c.Steps = 0 },
		func(c *Config) { c.BlockSize = 0 },
		func(c *Config) { c.TargetAcceptance = 1 },
		func(c *Config) { c.RefWeight = 0 },
		func(c *Config) { c.Equilibration = -1 },
	} {
		cfg := DefaultConfig()
		mutate(&cfg)
		_, err := NewWalker(b, c, c, 1, []mcmove.Move{mcmove.NewTranslate(1)}, cfg, nil)
		assert.ErrorIs(t, err, ErrInvalidConfig)
	}
}

func TestWalkerHonoursCancellation(t *testing.T) {
	w := newWalker(t, 2, hsCluster(t, 2, 1), 1, shortConfig(1_000_000))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := w.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestEnsemblePoolsWalkers(t *testing.T) {
	w := newWalker(t, 2, hsCluster(t, 2, 1), 1.5, shortConfig(20_000))
	merged, each, err := NewEnsemble(w, 3, 10).Run(context.Background())
	require.NoError(t, err)

	require.Len(t, each, 3)
	assert.Equal(t, int64(60_000), merged.Samples)
	assert.Equal(t, int64(60_000), merged.Acceptance["translate"].Trials)
	assert.Equal(t, 120, merged.Meter.BlockCount())
	assert.InEpsilon(t, 2*math.Pi/3, merged.Estimates[0].Value, 0.1)
	assert.NotSame(t, each[0].Meter, each[1].Meter)
}

func TestCompactPointsOverlap(t *testing.T) {
	mols := CompactPoints(5, 1)
	b, err := box.New(mols)
	require.NoError(t, err)
	cp := b.CPairSet()
	for i := 0; i < 4; i++ {
		for j := i + 1; j < 5; j++ {
			assert.Less(t, cp.R2(i, j), 1.0)
		}
	}
}

// poisoned is 1 at the configuration it was built for and NaN anywhere else.
type poisoned struct{ id int64 }

func (p *poisoned) Value(b *box.Box) float64 {
	if b.CPairID() == p.id {
		return 1
	}
	return math.NaN()
}

func (p *poisoned) Points() int             { return 2 }
func (p *poisoned) Copy() cluster.Cluster   { return &poisoned{id: p.id} }
func (p *poisoned) SetTemperature(float64)  {}
func (p *poisoned) Stats() cluster.Counters { return cluster.Counters{} }

func TestWalkerRejectsNaNWeight(t *testing.T) {
	w := newWalker(t, 2, &poisoned{id: 0}, 1, shortConfig(10))
	b := w.Box()
	before := b.Molecules()[1].Position
	require.Equal(t, int64(0), b.CPairID())

	_, accepted, err := w.trial()
	require.NoError(t, err)
	assert.False(t, accepted)
	assert.False(t, b.InTrial())
	assert.Equal(t, int64(0), b.CPairID())
	assert.Equal(t, before, b.Molecules()[1].Position)
	assert.Equal(t, int64(1), w.accept[0].Trials)
	assert.Equal(t, int64(0), w.accept[0].Accepted)
	assert.Equal(t, 1.0, w.target.Value(b))
}

func TestCombineSkipsMissingResults(t *testing.T) {
	m := meter.NewRatio(2, 1)
	m.Add([]float64{1, 1})
	res := func(step float64) *Result {
		return &Result{
			Points:     2,
			Reference:  1,
			Acceptance: map[string]meter.Acceptance{"translate": {Trials: 10, Accepted: 5}},
			StepSizes:  map[string]float64{"translate": step},
			Samples:    1,
			Meter:      m,
		}
	}

	out := Combine([]*Result{res(0.2), nil, res(0.4)})
	assert.InDelta(t, 0.3, out.StepSizes["translate"], 1e-15)
	assert.Equal(t, int64(2), out.Samples)
	assert.Equal(t, int64(20), out.Acceptance["translate"].Trials)
	assert.Equal(t, 2, out.Meter.BlockCount())
}
