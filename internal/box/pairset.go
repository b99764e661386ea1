package box

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"
)

// CoordinatePairSet caches r² for every unordered pair of points of one
// configuration, stamped with the configuration ID it was computed for.
type CoordinatePairSet struct {
	n   int
	r2  []float64
	pos []r3.Vec
	id  int64

	load func(dst []r3.Vec)
}

// NewMoleculePairSet builds a pair set over molecule reference points given
// by def. A nil def means GeometricCenter.
func NewMoleculePairSet(mols []*Molecule, def PositionDefinition) *CoordinatePairSet {
	if def == nil {
		def = GeometricCenter
	}
	c := newPairSet(len(mols))
	c.load = func(dst []r3.Vec) {
		for i, m := range mols {
			dst[i] = def(m)
		}
	}
	return c
}

// NewLeafPairSet builds a pair set over every atom of every molecule, in
// molecule order. Atomless molecules contribute their Position.
func NewLeafPairSet(mols []*Molecule) *CoordinatePairSet {
	n := 0
	for _, m := range mols {
		n += leafCount(m)
	}
	c := newPairSet(n)
	c.load = func(dst []r3.Vec) {
		k := 0
		for _, m := range mols {
			if len(m.Atoms) == 0 {
				dst[k] = m.Position
				k++
				continue
			}
			for _, a := range m.Atoms {
				dst[k] = a.Position
				k++
			}
		}
	}
	return c
}

func leafCount(m *Molecule) int {
	if len(m.Atoms) == 0 {
		return 1
	}
	return len(m.Atoms)
}

func newPairSet(n int) *CoordinatePairSet {
	return &CoordinatePairSet{
		n:   n,
		r2:  make([]float64, n*n),
		pos: make([]r3.Vec, n),
		id:  -1,
	}
}

// Reset recomputes every r² from the live geometry and records id.
func (c *CoordinatePairSet) Reset(id int64) {
	c.load(c.pos)
	for i := 0; i < c.n-1; i++ {
		pi := c.pos[i]
		for j := i + 1; j < c.n; j++ {
			c.r2[i*c.n+j] = r3.Norm2(r3.Sub(c.pos[j], pi))
		}
	}
	c.id = id
}

// R2 returns the cached squared separation of points i and j. It panics
// unless 0 <= i < j < Len().
func (c *CoordinatePairSet) R2(i, j int) float64 {
	if i >= j || i < 0 || j >= c.n {
		panic(fmt.Sprintf("box: R2(%d, %d) needs 0 <= i < j < %d", i, j, c.n))
	}
	return c.r2[i*c.n+j]
}

// Position returns the point i as of the last Reset.
func (c *CoordinatePairSet) Position(i int) r3.Vec { return c.pos[i] }

// ID is the configuration ID of the last Reset, or -1 before the first one.
func (c *CoordinatePairSet) ID() int64 { return c.id }

// Len is the number of points.
func (c *CoordinatePairSet) Len() int { return c.n }

// MoleculePair is an ordered handle on two molecules.
type MoleculePair struct {
	First, Second *Molecule
}

// AtomPairSet precomputes the ordered molecule pairs (i, j), i < j.
type AtomPairSet struct {
	n     int
	pairs []MoleculePair
}

// NewAtomPairSet builds the pair handles for mols.
func NewAtomPairSet(mols []*Molecule) *AtomPairSet {
	n := len(mols)
	s := &AtomPairSet{n: n, pairs: make([]MoleculePair, n*n)}
	for i := 0; i < n-1; i++ {
		for j := i + 1; j < n; j++ {
			s.pairs[i*n+j] = MoleculePair{First: mols[i], Second: mols[j]}
		}
	}
	return s
}

// Pair returns the handle for molecules i < j; it panics otherwise.
func (s *AtomPairSet) Pair(i, j int) MoleculePair {
	if i >= j || i < 0 || j >= s.n {
		panic(fmt.Sprintf("box: Pair(%d, %d) needs 0 <= i < j < %d", i, j, s.n))
	}
	return s.pairs[i*s.n+j]
}
