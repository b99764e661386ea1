package cluster

import (
	"math"
	"math/big"

	"github.com/san-kum/virial/internal/box"
	"github.com/san-kum/virial/internal/mayer"
)

// Multibody is a cluster with non-additive energies. The product of bonds
// over each subset of three or more points is multiplied by the Boltzmann
// factor of that subset's non-additive energy. In Total mode the value is
// that full integrand; in Excess mode the pairwise-only integrand is
// subtracted.
type Multibody struct {
	base
	memo memo[float64]
	eng  *engine[float64]
	ext  *pool[*big.Float]
}

// NewMultibody builds an n-point cluster with pair function f and
// non-additive functions indexed by subset size: multi[k] applies to every
// k-point subset, and nil or missing entries mean no non-additive energy.
func NewMultibody(n int, f mayer.Function, multi []mayer.NonAdditive, opts ...Option) (*Multibody, error) {
	if err := checkPoints(n); err != nil {
		return nil, err
	}
	set, err := newSettings(opts)
	if err != nil {
		return nil, err
	}
	return newMultibody(newBase(n, &uniform{n: n, f: f}, newNonAdditive(n, multi), set)), nil
}

// NewMultibodyMix is NewMultibody with pair functions chosen by species.
func NewMultibodyMix(n int, table [][]mayer.Function, multi []mayer.NonAdditive, opts ...Option) (*Multibody, error) {
	if err := checkPoints(n); err != nil {
		return nil, err
	}
	set, err := newSettings(opts)
	if err != nil {
		return nil, err
	}
	mix, err := newMixture(n, table)
	if err != nil {
		return nil, err
	}
	return newMultibody(newBase(n, mix, newNonAdditive(n, multi), set)), nil
}

func newMultibody(b base) *Multibody {
	return &Multibody{base: b, eng: newEngine[float64](b.n, floatAlgebra{}), ext: scalarPool(b.n)}
}

// Mode reports what the cluster computes.
func (c *Multibody) Mode() Mode { return c.set.mode }

func (c *Multibody) Value(b *box.Box) float64 {
	return c.memo.lookup(b, func(dst *float64) { *dst = c.compute(b) })
}

func (c *Multibody) compute(b *box.Box) float64 {
	c.load(b)
	if c.set.mode == Excess {
		return c.excess()
	}
	fB, scale := c.eng.run(c.in, true)
	if c.cancelled(fB, scale) {
		fB = c.extended(c.ext, &c.memo.counters, func(eng *engine[*big.Float], alg *bigAlgebra) (*big.Float, float64) {
			return eng.run(c.in, true)
		})
	}
	return Coefficient(c.n) * fB
}

func (c *Multibody) excess() float64 {
	if c.additive() {
		c.memo.counters.ShortCircuits++
		return 0
	}
	total, scaleT := c.eng.run(c.in, true)
	pairwise, scaleP := c.eng.run(c.in, false)
	d, scale := total-pairwise, math.Max(scaleT, scaleP)
	if c.cancelled(d, scale) {
		d = c.extended(c.ext, &c.memo.counters, func(eng *engine[*big.Float], alg *bigAlgebra) (*big.Float, float64) {
			t, scaleT := eng.run(c.in, true)
			eng.keep = alg.set(eng.keep, t)
			p, scaleP := eng.run(c.in, false)
			return alg.sub(eng.keep, eng.keep, p), math.Max(scaleT, scaleP)
		})
	}
	return Coefficient(c.n) * d
}

// additive reports whether every non-additive bond vanishes.
func (c *Multibody) additive() bool {
	for s := 7; s < len(c.in.multi); s++ {
		if c.in.multi[s] != 0 && triplet(s) {
			return false
		}
	}
	return true
}

func (c *Multibody) Points() int { return c.n }

func (c *Multibody) Copy() Cluster { return newMultibody(c.copyBase()) }

func (c *Multibody) SetTemperature(t float64) {
	c.setTemperature(t)
	c.memo.reset()
}

func (c *Multibody) Stats() Counters { return c.memo.counters }
