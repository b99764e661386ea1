package cluster

import (
	"math/big"

	"github.com/san-kum/virial/internal/box"
	"github.com/san-kum/virial/internal/mayer"
)

// Derivatives is a pairwise cluster that also reports the derivatives of its
// value with respect to β up to a fixed order. Values(b)[m] is the m-th
// derivative; order zero is the plain cluster value.
type Derivatives struct {
	base
	order int
	memo  memo[[]float64]
	eng   *engine[[]float64]
	ext   *pool[[]*big.Float]
}

// NewDerivatives builds an n-point cluster with β-derivatives up to order.
func NewDerivatives(n, order int, f mayer.Function, opts ...Option) (*Derivatives, error) {
	if err := checkDerivatives(n, order); err != nil {
		return nil, err
	}
	set, err := newSettings(opts)
	if err != nil {
		return nil, err
	}
	return newDerivatives(newBase(n, &uniform{n: n, f: f}, nil, set), order), nil
}

// NewDerivativesMix is NewDerivatives with pair functions chosen by species.
func NewDerivativesMix(n, order int, table [][]mayer.Function, opts ...Option) (*Derivatives, error) {
	if err := checkDerivatives(n, order); err != nil {
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
	return newDerivatives(newBase(n, mix, nil, set), order), nil
}

func checkDerivatives(n, order int) error {
	if err := checkPoints(n); err != nil {
		return err
	}
	if order < 0 {
		return ErrOrder
	}
	return nil
}

func newDerivatives(b base, order int) *Derivatives {
	return &Derivatives{
		base:  b,
		order: order,
		eng:   newEngine[[]float64](b.n, newDerivAlgebra[float64](floatAlgebra{}, order)),
		ext:   vectorPool(b.n, order),
	}
}

func (c *Derivatives) Values(b *box.Box) []float64 {
	return c.memo.lookup(b, func(dst *[]float64) {
		if *dst == nil {
			*dst = make([]float64, c.order+1)
		}
		c.compute(b, *dst)
	})
}

func (c *Derivatives) Value(b *box.Box) float64 { return c.Values(b)[0] }

func (c *Derivatives) Len() int { return c.order + 1 }

// Order is the highest derivative computed.
func (c *Derivatives) Order() int { return c.order }

func (c *Derivatives) compute(b *box.Box, out []float64) {
	c.load(b)
	if c.in.isolated() {
		c.memo.counters.ShortCircuits++
		fillAll(out, 0)
		return
	}
	coef := Coefficient(c.n)
	fB, scale := c.eng.run(c.in, false)
	if !c.cancelled(c.eng.alg.lead(fB), scale) {
		c.eng.alg.export(out, fB, coef)
		return
	}
	ok := c.escalate(&c.memo.counters, func(digits int) bool {
		eng, alg := c.ext.get(digits)
		fB, scale := eng.run(c.in, false)
		if !alg.trusted(fB[0], scale) {
			return false
		}
		eng.alg.export(out, fB, coef)
		return true
	})
	if !ok {
		fillAll(out, 0)
	}
}

func fillAll(v []float64, x float64) {
	for i := range v {
		v[i] = x
	}
}

func (c *Derivatives) Points() int { return c.n }

func (c *Derivatives) Copy() Cluster { return newDerivatives(c.copyBase(), c.order) }

func (c *Derivatives) SetTemperature(t float64) {
	c.setTemperature(t)
	c.memo.reset()
}

func (c *Derivatives) Stats() Counters { return c.memo.counters }
