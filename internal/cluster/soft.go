package cluster

import (
	"math/big"

	"github.com/san-kum/virial/internal/box"
	"github.com/san-kum/virial/internal/mayer"
)

// Soft is the pairwise-additive cluster: the biconnected sum over Mayer
// graphs with one f-bond per pair of points.
type Soft struct {
	base
	memo memo[float64]
	eng  *engine[float64]
	ext  *pool[*big.Float]
}

// NewSoft builds an n-point cluster using f for every pair.
func NewSoft(n int, f mayer.Function, opts ...Option) (*Soft, error) {
	if err := checkPoints(n); err != nil {
		return nil, err
	}
	set, err := newSettings(opts)
	if err != nil {
		return nil, err
	}
	return newSoft(newBase(n, &uniform{n: n, f: f}, nil, set)), nil
}

// NewSoftMix builds an n-point cluster for a mixture: the pair of molecules
// with species a and b uses table[a][b].
func NewSoftMix(n int, table [][]mayer.Function, opts ...Option) (*Soft, error) {
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
	return newSoft(newBase(n, mix, nil, set)), nil
}

func newSoft(b base) *Soft {
	return &Soft{base: b, eng: newEngine[float64](b.n, floatAlgebra{}), ext: scalarPool(b.n)}
}

func (c *Soft) Value(b *box.Box) float64 {
	return c.memo.lookup(b, func(dst *float64) { *dst = c.compute(b) })
}

func (c *Soft) compute(b *box.Box) float64 {
	c.load(b)
	if c.in.isolated() {
		c.memo.counters.ShortCircuits++
		return 0
	}
	fB, scale := c.eng.run(c.in, false)
	if c.cancelled(fB, scale) {
		fB = c.extended(c.ext, &c.memo.counters, func(eng *engine[*big.Float], _ *bigAlgebra) (*big.Float, float64) {
			return eng.run(c.in, false)
		})
	}
	return Coefficient(c.n) * fB
}

func (c *Soft) Points() int { return c.n }

func (c *Soft) Copy() Cluster { return newSoft(c.copyBase()) }

func (c *Soft) SetTemperature(t float64) {
	c.setTemperature(t)
	c.memo.reset()
}

func (c *Soft) Stats() Counters { return c.memo.counters }
