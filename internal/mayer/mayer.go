// Package mayer defines the Mayer f-bond functions consumed by the cluster
// engine: f = exp(-βU) - 1 for pairs, and the same form for the non-additive
// energy of larger sets.
package mayer

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/virial/internal/box"
	"github.com/san-kum/virial/internal/potential"
)

// Function is a pair Mayer function. It must be a pure function of its
// arguments.
type Function interface {
	F(pair box.MoleculePair, r2, beta float64) float64
}

// NonAdditive is a Mayer function of the non-additive energy of a set of
// molecules: f = exp(-β ΔU) - 1 where ΔU is the total non-additive energy of
// mols. r2 holds the squared separations in row order (0,1), (0,2), ...,
// (1,2), ... as returned by PairIndex.
type NonAdditive interface {
	F(mols []*box.Molecule, r2 []float64, beta float64) float64
}

// PairIndex is the position of pair (i, j), i < j, in the r2 slice handed to
// a NonAdditive function of an n-molecule set.
func PairIndex(i, j, n int) int {
	return i*n - i*(i+1)/2 + j - i - 1
}

// boltzmann returns exp(-βu) - 1 without cancellation near βu = 0.
func boltzmann(u, beta float64) float64 {
	if u == 0 {
		return 0
	}
	return math.Expm1(-beta * u)
}

// Spherical wraps a spherically symmetric pair potential.
type Spherical struct {
	Potential potential.Pair
}

func NewSpherical(p potential.Pair) *Spherical { return &Spherical{Potential: p} }

func (s *Spherical) F(_ box.MoleculePair, r2, beta float64) float64 {
	return boltzmann(s.Potential.U(r2), beta)
}

// HardSphere is -1 inside the diameter and 0 outside, at any temperature.
type HardSphere struct {
	Sigma float64
}

func (h *HardSphere) F(_ box.MoleculePair, r2, _ float64) float64 {
	if r2 < h.Sigma*h.Sigma {
		return -1
	}
	return 0
}

// SiteSite sums a spherical site potential over every atom pair of two
// molecules. It reads actual atom positions through the pair handle and
// ignores r2.
type SiteSite struct {
	Site potential.Pair
}

func (s *SiteSite) F(pair box.MoleculePair, _, beta float64) float64 {
	u := 0.0
	for _, a := range pair.First.Atoms {
		for _, b := range pair.Second.Atoms {
			u += s.Site.U(r3.Norm2(r3.Sub(a.Position, b.Position)))
			if math.IsInf(u, 1) {
				return -1
			}
		}
	}
	return boltzmann(u, beta)
}

// Zero is a Mayer function that is identically zero.
type Zero struct{}

func (Zero) F(box.MoleculePair, float64, float64) float64 { return 0 }

// ZeroNonAdditive is a non-additive Mayer function that is identically zero.
type ZeroNonAdditive struct{}

func (ZeroNonAdditive) F([]*box.Molecule, []float64, float64) float64 { return 0 }

// Triplets turns a three-body potential into the non-additive Mayer function
// of a whole set by summing the triplet energy over every triplet.
type Triplets struct {
	Potential potential.ThreeBody
}

func (t *Triplets) F(mols []*box.Molecule, r2 []float64, beta float64) float64 {
	n := len(mols)
	u := 0.0
	for i := 0; i < n-2; i++ {
		for j := i + 1; j < n-1; j++ {
			rij := r2[PairIndex(i, j, n)]
			for k := j + 1; k < n; k++ {
				u += t.Potential.U3(rij, r2[PairIndex(i, k, n)], r2[PairIndex(j, k, n)])
			}
		}
	}
	return boltzmann(u, beta)
}
