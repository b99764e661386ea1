package cluster

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDerivAlgebraProductRule(t *testing.T) {
	d := newDerivAlgebra[float64](floatAlgebra{}, 3)
	const beta, u1, u2 = 0.8, 0.3, -1.1

	x := d.bond(d.alloc(), math.Expm1(-beta*u1), beta)
	y := d.bond(d.alloc(), math.Expm1(-beta*u2), beta)
	p := d.mul(x, x, y)

	// exp(-β(u1+u2)) differentiated m times is (-(u1+u2))^m exp(-β(u1+u2))
	e := math.Exp(-beta * (u1 + u2))
	for m := 0; m <= 3; m++ {
		assert.InEpsilon(t, math.Pow(-(u1+u2), float64(m))*e, p[m], 1e-12, "order %d", m)
	}
}

func TestDerivAlgebraMayerOrderZero(t *testing.T) {
	d := newDerivAlgebra[float64](floatAlgebra{}, 2)
	f := math.Expm1(-0.5)
	v := d.mayer(d.alloc(), f, 1)
	assert.Equal(t, f, v[0])
	assert.InEpsilon(t, -0.5*(f+1), v[1], 1e-14)
}

func TestBigAlgebraTrusted(t *testing.T) {
	a := newBigAlgebra(30)
	assert.True(t, a.trusted(a.alloc().SetFloat64(1e-19), 1))
	assert.False(t, a.trusted(a.alloc().SetFloat64(1e-21), 1))
	assert.False(t, a.trusted(a.alloc(), 1))
	assert.True(t, a.trusted(a.alloc().SetFloat64(-1e-19), 1))
}

func TestBigAlgebraKeepsSmallDifferences(t *testing.T) {
	a := newBigAlgebra(40)
	x := a.bond(a.alloc(), 1e-30, 1)
	y := a.sub(a.alloc(), x, a.one(a.alloc()))
	v, _ := y.Float64()
	assert.InEpsilon(t, 1e-30, v, 1e-9)
}
