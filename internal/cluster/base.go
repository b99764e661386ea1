package cluster

import (
	"fmt"
	"math"
	"math/big"

	"go.uber.org/zap"

	"github.com/san-kum/virial/internal/box"
	"github.com/san-kum/virial/internal/cache"
)

// memo is the per-box value cache every cluster keeps.
type memo[T any] struct {
	seen     *box.Box
	cache    cache.Versioned[T]
	counters Counters
}

// lookup returns the value for b's current configuration, computing it on a
// miss. A different box than last time invalidates both slots.
func (m *memo[T]) lookup(b *box.Box, compute func(dst *T)) T {
	if b != m.seen {
		m.seen = b
		m.cache.Invalidate()
	}
	v, out := m.cache.Get(b.CPairID(), func(dst *T) {
		m.counters.Computed++
		compute(dst)
	})
	switch out {
	case cache.Hit:
		m.counters.CacheHits++
	case cache.Revert:
		m.counters.Reverts++
	}
	return v
}

func (m *memo[T]) reset() {
	m.seen = nil
	m.cache.Invalidate()
}

// base carries what the recursion clusters share: the bond sources, the
// temperature and the precision policy.
type base struct {
	n     int
	set   settings
	beta  float64
	pairs bondSource
	multi *nonAdditive
	in    *bonds
}

func newBase(n int, pairs bondSource, multi *nonAdditive, set settings) base {
	in := newBonds(n, multi != nil)
	in.beta = 1 / set.temp
	return base{n: n, set: set, beta: in.beta, pairs: pairs, multi: multi, in: in}
}

func (c *base) copyBase() base {
	var multi *nonAdditive
	if c.multi != nil {
		multi = c.multi.clone()
	}
	set := c.set
	set.temp = 1 / c.beta
	return newBase(c.n, c.pairs.clone(), multi, set)
}

func (c *base) setTemperature(t float64) {
	if err := checkTemperature(t); err != nil {
		panic(err)
	}
	c.beta = 1 / t
	c.in.beta = c.beta
}

// load fills the recursion input from b.
func (c *base) load(b *box.Box) {
	if got := b.CPairSet().Len(); got != c.n {
		panic(fmt.Sprintf("cluster: %d-point cluster given a box with %d points", c.n, got))
	}
	c.pairs.fill(b, c.beta, c.in.f)
	if c.multi != nil {
		c.multi.fill(b, c.beta, c.in.multi)
	}
}

// cancelled reports whether fB lost so many digits to cancellation that it
// must be recomputed in extended precision.
func (c *base) cancelled(fB, scale float64) bool {
	return c.set.tol > 0 && c.n > 2 && math.Abs(fB) < c.set.tol*scale
}

func (c *base) startDigits() int {
	d := int(math.Ceil(-3 * math.Log10(c.set.tol)))
	if d < precisionStep {
		d = precisionStep
	}
	return d
}

// escalate calls eval at increasing precision until it returns true and
// reports whether it did before the precision limit.
func (c *base) escalate(counters *Counters, eval func(digits int) bool) bool {
	counters.Fallbacks++
	for d := c.startDigits(); d <= c.set.limit; d += precisionStep {
		if eval(d) {
			return true
		}
		counters.Escalations++
		c.set.log.Debug("extended precision result untrusted",
			zap.Int("points", c.n),
			zap.Int("digits", d))
	}
	counters.Zeroed++
	c.set.log.Debug("precision limit reached, value set to zero",
		zap.Int("points", c.n),
		zap.Int("limit", c.set.limit))
	return false
}

// pool keeps one extended precision engine per precision used.
type pool[E any] struct {
	build   func(digits int) (*engine[E], *bigAlgebra)
	engines map[int]*engine[E]
	algs    map[int]*bigAlgebra
}

func newPool[E any](build func(digits int) (*engine[E], *bigAlgebra)) *pool[E] {
	return &pool[E]{build: build, engines: map[int]*engine[E]{}, algs: map[int]*bigAlgebra{}}
}

func (p *pool[E]) get(digits int) (*engine[E], *bigAlgebra) {
	if e, ok := p.engines[digits]; ok {
		return e, p.algs[digits]
	}
	e, a := p.build(digits)
	p.engines[digits] = e
	p.algs[digits] = a
	return e, a
}

func scalarPool(n int) *pool[*big.Float] {
	return newPool(func(digits int) (*engine[*big.Float], *bigAlgebra) {
		a := newBigAlgebra(digits)
		return newEngine[*big.Float](n, a), a
	})
}

func vectorPool(n, order int) *pool[[]*big.Float] {
	return newPool(func(digits int) (*engine[[]*big.Float], *bigAlgebra) {
		a := newBigAlgebra(digits)
		return newEngine[[]*big.Float](n, newDerivAlgebra[*big.Float](a, order)), a
	})
}

// extended recomputes a scalar result in extended precision. A result that
// never becomes trustworthy is zero.
func (c *base) extended(p *pool[*big.Float], counters *Counters, run func(*engine[*big.Float], *bigAlgebra) (*big.Float, float64)) float64 {
	var v float64
	ok := c.escalate(counters, func(digits int) bool {
		eng, alg := p.get(digits)
		fB, scale := run(eng, alg)
		if !alg.trusted(fB, scale) {
			return false
		}
		v = alg.lead(fB)
		return true
	})
	if !ok {
		return 0
	}
	return v
}
