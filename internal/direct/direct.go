// Package direct computes low-order virial coefficients of spherical pair
// potentials without sampling: B2 by quadrature and B3 by convolution in
// Fourier space.
package direct

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/integrate"

	"github.com/san-kum/virial/internal/box"
	"github.com/san-kum/virial/internal/mayer"
)

// ErrGrid indicates an unusable radial grid.
var ErrGrid = errors.New("direct: invalid grid")

// Radial is a Mayer function of the separation r.
type Radial func(r float64) float64

// FromMayer evaluates a spherically symmetric Mayer function at inverse
// temperature beta.
func FromMayer(f mayer.Function, beta float64) Radial {
	return func(r float64) float64 { return f.F(box.MoleculePair{}, r*r, beta) }
}

// B2 is -2π ∫ f(r) r² dr over [0, rmax], by the trapezoidal rule on points
// equally spaced samples.
func B2(f Radial, rmax float64, points int) (float64, error) {
	if points < 2 || !(rmax > 0) {
		return 0, fmt.Errorf("%w: %d points up to r=%g", ErrGrid, points, rmax)
	}
	r := make([]float64, points)
	floats.Span(r, 0, rmax)
	y := make([]float64, points)
	for i, ri := range r {
		y[i] = f(ri) * ri * ri
	}
	return -2 * math.Pi * integrate.Trapezoidal(r, y), nil
}

// B3 is -(1/3) ∫∫ f12 f13 f23, evaluated as
//
//	-(1/3) (1/2π²) ∫ k² f̂(k)³ dk
//
// where f̂(k) = (4π/k) ∫ r f(r) sin(kr) dr is obtained for all k at once by a
// sine transform on N = 2^log2n - 1 points r_j = (j+1)dr.
func B3(f Radial, dr float64, log2n int) (float64, error) {
	if log2n < 2 || log2n > 24 || !(dr > 0) {
		return 0, fmt.Errorf("%w: 2^%d points spaced %g", ErrGrid, log2n, dr)
	}
	n := 1<<log2n - 1
	dst := fourier.NewDST(n)
	norm := normalization(dst)

	in := make([]float64, n)
	for j := range in {
		r := float64(j+1) * dr
		in[j] = r * f(r)
	}
	out := dst.Transform(make([]float64, n), in)

	dk := math.Pi / (float64(n+1) * dr)
	terms := make([]float64, n)
	for m, s := range out {
		k := float64(m+1) * dk
		fk := 4 * math.Pi * dr * s / (norm * k)
		terms[m] = k * k * fk * fk * fk
	}
	return -dk * floats.Sum(terms) / (6 * math.Pi * math.Pi), nil
}

// normalization is the factor c with Transform(x)[m] = c Σ x_j sin(π(j+1)(m+1)/(N+1)),
// read off the transform of a unit impulse.
func normalization(t *fourier.DST) float64 {
	n := t.Len()
	impulse := make([]float64, n)
	impulse[0] = 1
	out := t.Transform(make([]float64, n), impulse)
	return out[0] / math.Sin(math.Pi/float64(n+1))
}
