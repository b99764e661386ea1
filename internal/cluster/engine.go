package cluster

import "math"

// bonds is one configuration's input to the recursion.
type bonds struct {
	n int
	// f holds the Mayer function of every pair, f[i*n+j] for i < j.
	f []float64
	// multi holds, per point subset bitmask of three or more points, the
	// Mayer function of that subset's total non-additive energy.
	multi []float64
	beta  float64
}

func newBonds(n int, multibody bool) *bonds {
	b := &bonds{n: n, f: make([]float64, n*n), beta: 1}
	if multibody {
		b.multi = make([]float64, 1<<n)
	}
	return b
}

// isolated reports whether some point has no non-zero bond, which makes
// every biconnected graph vanish.
func (b *bonds) isolated() bool {
	n := b.n
	for i := 0; i < n; i++ {
		connected := false
		for j := 0; j < n && !connected; j++ {
			switch {
			case j < i:
				connected = b.f[j*n+i] != 0
			case j > i:
				connected = b.f[i*n+j] != 0
			}
		}
		if !connected {
			return true
		}
	}
	return false
}

// engine evaluates the sum over biconnected Mayer graphs of n points by
// recursion over point subsets. Subsets are bitmasks over the points.
//
//	fQ[s]  product of every bond 1+f inside s (times the non-additive factor)
//	fC[s]  sum over connected graphs on s
//	fB[s]  sum over biconnected graphs on s, built up one root point at a time
//	fA[s]  graphs on s in which the current root is an articulation point
type engine[E any] struct {
	n   int
	alg algebra[E]

	fQ, fC, fA, fB []E
	tmp, factor    E
	// keep holds a copy of a result across a second run.
	keep E
}

func newEngine[E any](n int, alg algebra[E]) *engine[E] {
	size := 1 << n
	e := &engine[E]{
		n:   n,
		alg: alg,
		fQ:  make([]E, size),
		fC:  make([]E, size),
		fA:  make([]E, size),
		fB:  make([]E, size),
	}
	for s := 0; s < size; s++ {
		e.fQ[s] = alg.alloc()
		e.fC[s] = alg.alloc()
		e.fA[s] = alg.alloc()
		e.fB[s] = alg.alloc()
	}
	e.tmp = alg.alloc()
	e.factor = alg.alloc()
	e.keep = alg.alloc()
	return e
}

// run evaluates the biconnected sum for the full point set. withMulti
// multiplies every subset's product by its non-additive factor. The
// second result is the magnitude of the full product of bonds, floored at
// one, against which cancellation in the result is judged.
func (e *engine[E]) run(in *bonds, withMulti bool) (E, float64) {
	n, size, a := e.n, 1<<e.n, e.alg

	for i := 0; i < n; i++ {
		p := 1 << i
		e.fQ[p] = a.one(e.fQ[p])
		e.fC[p] = a.one(e.fC[p])
	}
	for i := 0; i < n-1; i++ {
		for j := i + 1; j < n; j++ {
			p := 1<<i | 1<<j
			f := in.f[i*n+j]
			e.fQ[p] = a.bond(e.fQ[p], f, in.beta)
			e.fC[p] = a.mayer(e.fC[p], f, in.beta)
		}
	}

	for s := 3; s < size; s++ {
		low := s & -s
		rest := s ^ low
		if rest&(rest-1) == 0 {
			continue
		}
		q := a.set(e.fQ[s], e.fQ[rest])
		if !a.isZero(q) {
			for l := low << 1; l < s; l <<= 1 {
				if s&l != 0 {
					q = a.mul(q, q, e.fQ[low|l])
				}
			}
		}
		e.fQ[s] = q
	}
	if withMulti && in.multi != nil {
		for s := 7; s < size; s++ {
			if triplet(s) && !a.isZero(e.fQ[s]) {
				e.factor = a.bond(e.factor, in.multi[s], in.beta)
				e.fQ[s] = a.mul(e.fQ[s], e.fQ[s], e.factor)
			}
		}
	}

	for s := 3; s < size; s++ {
		low := s & -s
		rest := s ^ low
		if rest&(rest-1) == 0 {
			continue
		}
		c := a.set(e.fC[s], e.fQ[s])
		for sub := (rest - 1) & rest; ; sub = (sub - 1) & rest {
			if comp := rest ^ sub; !a.isZero(e.fQ[comp]) {
				c = a.subMul(c, e.fC[low|sub], e.fQ[comp])
			}
			if sub == 0 {
				break
			}
		}
		e.fC[s] = c
	}

	for s := 1; s < size; s++ {
		e.fB[s] = a.set(e.fB[s], e.fC[s])
	}
	for v := 0; v < n; v++ {
		vb := 1 << v
		for s := vb; s < size; s++ {
			if s&vb == 0 {
				continue
			}
			rest := s ^ vb
			if rest&(rest-1) == 0 {
				e.fA[s] = a.zero(e.fA[s])
				continue
			}
			w := rest & -rest
			free := rest ^ w
			sum := a.zero(e.fA[s])
			for sub := (free - 1) & free; ; sub = (sub - 1) & free {
				t := vb | w | sub
				if !a.isZero(e.fB[t]) {
					r := (s ^ t) | vb
					e.tmp = a.add(e.tmp, e.fB[r], e.fA[r])
					sum = a.addMul(sum, e.fB[t], e.tmp)
				}
				if sub == 0 {
					break
				}
			}
			e.fA[s] = sum
			e.fB[s] = a.sub(e.fB[s], e.fB[s], sum)
		}
	}

	scale := math.Abs(a.lead(e.fQ[size-1]))
	if !(scale > 1) {
		scale = 1
	}
	return e.fB[size-1], scale
}

// triplet reports whether s holds at least three points.
func triplet(s int) bool {
	s &= s - 1
	s &= s - 1
	return s != 0
}
