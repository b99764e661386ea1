package cluster

import (
	"fmt"
	"math"

	"github.com/san-kum/virial/internal/box"
)

// combined is a fixed linear combination of clusters over the same points.
type combined struct {
	clusters []Cluster
	weights  []float64
	memo     memo[float64]
}

func newCombined(clusters []Cluster, weights []float64) (combined, error) {
	if len(clusters) == 0 {
		return combined{}, ErrNoClusters
	}
	if len(weights) != len(clusters) {
		return combined{}, fmt.Errorf("cluster: %d weights for %d clusters", len(weights), len(clusters))
	}
	n := clusters[0].Points()
	for i, c := range clusters[1:] {
		if c.Points() != n {
			return combined{}, fmt.Errorf("%w: cluster %d has %d points, want %d", ErrPointCount, i+1, c.Points(), n)
		}
	}
	return combined{clusters: clusters, weights: weights}, nil
}

func (c *combined) value(b *box.Box, abs bool) float64 {
	return c.memo.lookup(b, func(dst *float64) {
		sum := 0.0
		for i, cl := range c.clusters {
			v := cl.Value(b)
			if abs {
				v = math.Abs(v)
			}
			sum += c.weights[i] * v
		}
		*dst = sum
	})
}

func (c *combined) copyCombined() combined {
	cs := make([]Cluster, len(c.clusters))
	for i, cl := range c.clusters {
		cs[i] = cl.Copy()
	}
	return combined{clusters: cs, weights: append([]float64(nil), c.weights...)}
}

func (c *combined) Points() int { return c.clusters[0].Points() }

func (c *combined) SetTemperature(t float64) {
	for _, cl := range c.clusters {
		cl.SetTemperature(t)
	}
	c.memo.reset()
}

func (c *combined) Stats() Counters {
	s := c.memo.counters
	for _, cl := range c.clusters {
		s = s.Plus(cl.Stats())
	}
	return s
}

// Sum is Σ w_k v_k over its clusters.
type Sum struct{ combined }

func NewSum(clusters []Cluster, weights []float64) (*Sum, error) {
	c, err := newCombined(clusters, weights)
	if err != nil {
		return nil, err
	}
	return &Sum{c}, nil
}

func (s *Sum) Value(b *box.Box) float64 { return s.value(b, false) }
func (s *Sum) Copy() Cluster            { return &Sum{s.copyCombined()} }

// Umbrella is Σ w_k |v_k|, a sampling weight that is positive wherever any
// of its clusters is non-zero.
type Umbrella struct{ combined }

func NewUmbrella(clusters []Cluster, weights []float64) (*Umbrella, error) {
	c, err := newCombined(clusters, weights)
	if err != nil {
		return nil, err
	}
	return &Umbrella{c}, nil
}

func (u *Umbrella) Value(b *box.Box) float64 { return u.value(b, true) }
func (u *Umbrella) Copy() Cluster            { return &Umbrella{u.copyCombined()} }

// Abs is |v| of one cluster.
type Abs struct{ combined }

func NewAbs(c Cluster) *Abs {
	return &Abs{combined{clusters: []Cluster{c}, weights: []float64{1}}}
}

func (a *Abs) Value(b *box.Box) float64 { return a.value(b, true) }
func (a *Abs) Copy() Cluster            { return &Abs{a.copyCombined()} }

// Flipped averages its cluster over the 2^(n-1) configurations obtained by
// inverting any subset of molecules 1..n-1 through the centre of molecule 0.
// Inversion maps the configuration space of achiral molecules onto itself,
// so the average has the same integral with less variance. The flipped
// configurations are built in a private copy of the box.
type Flipped struct {
	inner   Cluster
	memo    memo[float64]
	source  *box.Box
	scratch *box.Box
}

func NewFlipped(inner Cluster) *Flipped { return &Flipped{inner: inner} }

func (f *Flipped) Value(b *box.Box) float64 {
	return f.memo.lookup(b, func(dst *float64) { *dst = f.compute(b) })
}

func (f *Flipped) compute(b *box.Box) float64 {
	if f.source != b {
		f.scratch = b.Clone()
		f.source = b
	}
	mols, flipped := b.Molecules(), f.scratch.Molecules()
	n := len(mols)
	center := mols[0].Center()
	sum := 0.0
	for mask := 0; mask < 1<<(n-1); mask++ {
		for i, m := range mols {
			flipped[i].CopyFrom(m)
			if i > 0 && mask&(1<<(i-1)) != 0 {
				flipped[i].Invert(center)
			}
		}
		if err := f.scratch.Refresh(); err != nil {
			panic(err)
		}
		sum += f.inner.Value(f.scratch)
	}
	return sum / float64(int(1)<<(n-1))
}

func (f *Flipped) Points() int { return f.inner.Points() }

func (f *Flipped) Copy() Cluster { return NewFlipped(f.inner.Copy()) }

func (f *Flipped) SetTemperature(t float64) {
	f.inner.SetTemperature(t)
	f.memo.reset()
}

func (f *Flipped) Stats() Counters { return f.memo.counters.Plus(f.inner.Stats()) }
