package cluster

import (
	"math"
	"math/big"
)

// algebra is the arithmetic the recursion needs over one bond value type E.
// Every operation writes its result into dst and returns it; value types
// simply return the result. dst may alias any operand.
type algebra[E any] interface {
	alloc() E
	zero(dst E) E
	one(dst E) E
	set(dst, src E) E
	// bond sets dst to the Boltzmann factor f+1 at inverse temperature beta.
	bond(dst E, f, beta float64) E
	// mayer sets dst to the Mayer function value f itself.
	mayer(dst E, f, beta float64) E
	scale(dst, a E, c float64) E
	mul(dst, a, b E) E
	add(dst, a, b E) E
	sub(dst, a, b E) E
	// addMul sets dst to dst + a*b, subMul to dst - a*b.
	addMul(dst, a, b E) E
	subMul(dst, a, b E) E
	isZero(a E) bool
	// lead is the value (derivative order zero) as a float64.
	lead(a E) float64
	// export writes c times every component of a into dst.
	export(dst []float64, a E, c float64)
}

type floatAlgebra struct{}

func (floatAlgebra) alloc() float64                             { return 0 }
func (floatAlgebra) zero(float64) float64                       { return 0 }
func (floatAlgebra) one(float64) float64                        { return 1 }
func (floatAlgebra) set(_, src float64) float64                 { return src }
func (floatAlgebra) bond(_ float64, f, _ float64) float64       { return f + 1 }
func (floatAlgebra) mayer(_ float64, f, _ float64) float64      { return f }
func (floatAlgebra) scale(_, a float64, c float64) float64      { return a * c }
func (floatAlgebra) mul(_, a, b float64) float64                { return a * b }
func (floatAlgebra) add(_, a, b float64) float64                { return a + b }
func (floatAlgebra) sub(_, a, b float64) float64                { return a - b }
func (floatAlgebra) addMul(dst, a, b float64) float64           { return dst + a*b }
func (floatAlgebra) subMul(dst, a, b float64) float64           { return dst - a*b }
func (floatAlgebra) isZero(a float64) bool                      { return a == 0 }
func (floatAlgebra) lead(a float64) float64                     { return a }
func (floatAlgebra) export(dst []float64, a float64, c float64) { dst[0] = c * a }

// digitsToBits converts a precision in decimal digits to mantissa bits.
func digitsToBits(digits int) uint {
	return uint(math.Ceil(float64(digits)*math.Log2(10))) + 8
}

// bigAlgebra works in binary floating point with a fixed mantissa set from
// a precision in decimal digits.
type bigAlgebra struct {
	digits int
	prec   uint
	unit   *big.Float
	tmp    *big.Float
	c      *big.Float
	// floor is 10^(-2*digits/3): results smaller than floor*scale carry too
	// few significant digits to be believed.
	floor *big.Float
	mag   *big.Float
	thr   *big.Float
}

func newBigAlgebra(digits int) *bigAlgebra {
	a := &bigAlgebra{digits: digits, prec: digitsToBits(digits)}
	a.unit = a.alloc().SetInt64(1)
	a.tmp = a.alloc()
	a.c = a.alloc()
	a.mag = a.alloc()
	a.thr = a.alloc()

	exp := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(2*digits/3)), nil)
	a.floor = a.alloc().SetInt(exp)
	a.floor.Quo(a.unit, a.floor)
	return a
}

func (a *bigAlgebra) alloc() *big.Float { return new(big.Float).SetPrec(a.prec) }

func (a *bigAlgebra) zero(dst *big.Float) *big.Float { return dst.SetInt64(0) }
func (a *bigAlgebra) one(dst *big.Float) *big.Float  { return dst.SetInt64(1) }

func (a *bigAlgebra) set(dst, src *big.Float) *big.Float { return dst.Set(src) }

func (a *bigAlgebra) bond(dst *big.Float, f, _ float64) *big.Float {
	dst.SetFloat64(f)
	return dst.Add(dst, a.unit)
}

func (a *bigAlgebra) mayer(dst *big.Float, f, _ float64) *big.Float {
	return dst.SetFloat64(f)
}

func (a *bigAlgebra) scale(dst, x *big.Float, c float64) *big.Float {
	a.c.SetFloat64(c)
	return dst.Mul(x, a.c)
}

func (a *bigAlgebra) mul(dst, x, y *big.Float) *big.Float { return dst.Mul(x, y) }
func (a *bigAlgebra) add(dst, x, y *big.Float) *big.Float { return dst.Add(x, y) }
func (a *bigAlgebra) sub(dst, x, y *big.Float) *big.Float { return dst.Sub(x, y) }

func (a *bigAlgebra) addMul(dst, x, y *big.Float) *big.Float {
	a.tmp.Mul(x, y)
	return dst.Add(dst, a.tmp)
}

func (a *bigAlgebra) subMul(dst, x, y *big.Float) *big.Float {
	a.tmp.Mul(x, y)
	return dst.Sub(dst, a.tmp)
}

func (a *bigAlgebra) isZero(x *big.Float) bool { return x.Sign() == 0 }

func (a *bigAlgebra) lead(x *big.Float) float64 {
	v, _ := x.Float64()
	return v
}

func (a *bigAlgebra) export(dst []float64, x *big.Float, c float64) {
	a.c.SetFloat64(c)
	a.tmp.Mul(x, a.c)
	dst[0], _ = a.tmp.Float64()
}

// trusted reports whether |x| >= scale * 10^(-2*digits/3).
func (a *bigAlgebra) trusted(x *big.Float, scale float64) bool {
	a.mag.Abs(x)
	a.thr.SetFloat64(scale)
	a.thr.Mul(a.thr, a.floor)
	return a.mag.Cmp(a.thr) >= 0
}

// derivAlgebra carries a value together with its first order derivatives
// with respect to β, over any scalar algebra. Products follow the Leibniz
// rule; a bond exp(-βu) is extended by repeated multiplication with
// ln(e)/β = -u.
type derivAlgebra[S any] struct {
	base  algebra[S]
	order int
	binom [][]float64

	acc, term S
	prod      []S
}

func newDerivAlgebra[S any](base algebra[S], order int) *derivAlgebra[S] {
	d := &derivAlgebra[S]{base: base, order: order}
	d.binom = make([][]float64, order+1)
	for m := 0; m <= order; m++ {
		d.binom[m] = make([]float64, m+1)
		d.binom[m][0], d.binom[m][m] = 1, 1
		for k := 1; k < m; k++ {
			d.binom[m][k] = d.binom[m-1][k-1] + d.binom[m-1][k]
		}
	}
	d.acc = base.alloc()
	d.term = base.alloc()
	d.prod = d.alloc()
	return d
}

func (d *derivAlgebra[S]) alloc() []S {
	v := make([]S, d.order+1)
	for i := range v {
		v[i] = d.base.alloc()
	}
	return v
}

func (d *derivAlgebra[S]) zero(dst []S) []S {
	for m := range dst {
		dst[m] = d.base.zero(dst[m])
	}
	return dst
}

func (d *derivAlgebra[S]) one(dst []S) []S {
	dst = d.zero(dst)
	dst[0] = d.base.one(dst[0])
	return dst
}

func (d *derivAlgebra[S]) set(dst, src []S) []S {
	for m := range dst {
		dst[m] = d.base.set(dst[m], src[m])
	}
	return dst
}

func (d *derivAlgebra[S]) bond(dst []S, f, beta float64) []S {
	dst[0] = d.base.bond(dst[0], f, beta)
	if f == -1 {
		for m := 1; m <= d.order; m++ {
			dst[m] = d.base.zero(dst[m])
		}
		return dst
	}
	c := math.Log1p(f) / beta
	for m := 1; m <= d.order; m++ {
		dst[m] = d.base.scale(dst[m], dst[m-1], c)
	}
	return dst
}

// mayer differs from bond only in order zero: d^m f/dβ^m = d^m e/dβ^m.
func (d *derivAlgebra[S]) mayer(dst []S, f, beta float64) []S {
	dst = d.bond(dst, f, beta)
	dst[0] = d.base.mayer(dst[0], f, beta)
	return dst
}

func (d *derivAlgebra[S]) scale(dst, a []S, c float64) []S {
	for m := range dst {
		dst[m] = d.base.scale(dst[m], a[m], c)
	}
	return dst
}

// mul fills the highest order first so that dst may alias a or b.
func (d *derivAlgebra[S]) mul(dst, a, b []S) []S {
	for m := d.order; m >= 0; m-- {
		d.acc = d.base.zero(d.acc)
		for k := 0; k <= m; k++ {
			d.term = d.base.mul(d.term, a[k], b[m-k])
			if c := d.binom[m][k]; c != 1 {
				d.term = d.base.scale(d.term, d.term, c)
			}
			d.acc = d.base.add(d.acc, d.acc, d.term)
		}
		dst[m] = d.base.set(dst[m], d.acc)
	}
	return dst
}

func (d *derivAlgebra[S]) add(dst, a, b []S) []S {
	for m := range dst {
		dst[m] = d.base.add(dst[m], a[m], b[m])
	}
	return dst
}

func (d *derivAlgebra[S]) sub(dst, a, b []S) []S {
	for m := range dst {
		dst[m] = d.base.sub(dst[m], a[m], b[m])
	}
	return dst
}

func (d *derivAlgebra[S]) addMul(dst, a, b []S) []S {
	d.prod = d.mul(d.prod, a, b)
	return d.add(dst, dst, d.prod)
}

func (d *derivAlgebra[S]) subMul(dst, a, b []S) []S {
	d.prod = d.mul(d.prod, a, b)
	return d.sub(dst, dst, d.prod)
}

func (d *derivAlgebra[S]) isZero(a []S) bool {
	for _, v := range a {
		if !d.base.isZero(v) {
			return false
		}
	}
	return true
}

func (d *derivAlgebra[S]) lead(a []S) float64 { return d.base.lead(a[0]) }

func (d *derivAlgebra[S]) export(dst []float64, a []S, c float64) {
	for m := range a {
		d.base.export(dst[m:m+1], a[m], c)
	}
}
