package mayer

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/virial/internal/box"
	"github.com/san-kum/virial/internal/potential"
)

func TestPairIndex(t *testing.T) {
	n := 4
	k := 0
	for i := 0; i < n-1; i++ {
		for j := i + 1; j < n; j++ {
			require.Equal(t, k, PairIndex(i, j, n), "pair (%d,%d)", i, j)
			k++
		}
	}
}

func TestSphericalLennardJones(t *testing.T) {
	f := NewSpherical(potential.NewLennardJones(1, 1))
	var pair box.MoleculePair

	r2 := math.Pow(2, 1.0/3)
	assert.InDelta(t, math.E-1, f.F(pair, r2, 1), 1e-12)
	assert.Equal(t, 0.0, f.F(pair, 1, 1))
	assert.Equal(t, -1.0, f.F(pair, 0, 1))

	// far away the bond is tiny but not rounded to zero
	far := f.F(pair, 1e4, 1)
	assert.Greater(t, far, 0.0)
	assert.InDelta(t, 4e-12, far, 1e-15)
}

func TestHardSphere(t *testing.T) {
	f := &HardSphere{Sigma: 1}
	var pair box.MoleculePair
	assert.Equal(t, -1.0, f.F(pair, 0.5, 1))
	assert.Equal(t, 0.0, f.F(pair, 1.5, 1))
}

func TestSiteSiteUsesAtoms(t *testing.T) {
	offsets := []r3.Vec{{X: -0.5}, {X: 0.5}}
	a := box.NewRigid(0, 0, r3.Vec{}, offsets)
	b := box.NewRigid(1, 0, r3.Vec{Y: 3}, offsets)
	f := &SiteSite{Site: potential.NewLennardJones(1, 1)}

	lj := potential.NewLennardJones(1, 1)
	u := 2*lj.U(9) + 2*lj.U(10)
	got := f.F(box.MoleculePair{First: a, Second: b}, 0, 2)
	assert.InDelta(t, math.Expm1(-2*u), got, 1e-15)

	b.Translate(r3.Vec{Y: -3})
	assert.Equal(t, -1.0, f.F(box.MoleculePair{First: a, Second: b}, 0, 2))
}

func TestTripletsSumsAllTriplets(t *testing.T) {
	at := &potential.AxilrodTeller{Nu: 0.5}
	f := &Triplets{Potential: at}
	mols := make([]*box.Molecule, 4)
	r2 := make([]float64, 6)
	for i := range r2 {
		r2[i] = 1.44
	}
	beta := 0.7
	got := f.F(mols, r2, beta)
	want := math.Expm1(-beta * 4 * at.U3(1.44, 1.44, 1.44))
	assert.InDelta(t, want, got, 1e-14)
}

func TestZeroFunctions(t *testing.T) {
	assert.Equal(t, 0.0, Zero{}.F(box.MoleculePair{}, 1, 1))
	assert.Equal(t, 0.0, ZeroNonAdditive{}.F(nil, nil, 1))
}
