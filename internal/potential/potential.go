package potential

import "math"

// Pair is a spherically symmetric pair potential.
type Pair interface {
	// U returns the energy at squared separation r2.
	U(r2 float64) float64
	// Range is the separation beyond which U is zero, or +Inf.
	Range() float64
}

// ThreeBody is a non-additive energy of a triplet given its three squared
// side lengths.
type ThreeBody interface {
	U3(r12, r13, r23 float64) float64
}

type LennardJones struct {
	Epsilon float64
	Sigma   float64
	// Cutoff truncates the potential (no shift); zero means untruncated.
	Cutoff float64
}

func NewLennardJones(epsilon, sigma float64) *LennardJones {
	return &LennardJones{Epsilon: epsilon, Sigma: sigma}
}

func (p *LennardJones) U(r2 float64) float64 {
	if p.Cutoff > 0 && r2 > p.Cutoff*p.Cutoff {
		return 0
	}
	s2 := p.Sigma * p.Sigma / r2
	s6 := s2 * s2 * s2
	return 4 * p.Epsilon * s6 * (s6 - 1)
}

func (p *LennardJones) Range() float64 {
	if p.Cutoff > 0 {
		return p.Cutoff
	}
	return math.Inf(1)
}

type HardSphere struct {
	Sigma float64
}

func (p *HardSphere) U(r2 float64) float64 {
	if r2 < p.Sigma*p.Sigma {
		return math.Inf(1)
	}
	return 0
}

func (p *HardSphere) Range() float64 { return p.Sigma }

// SquareWell has a hard core of diameter Sigma and a well of depth Epsilon
// out to Lambda*Sigma.
type SquareWell struct {
	Epsilon float64
	Sigma   float64
	Lambda  float64
}

func (p *SquareWell) U(r2 float64) float64 {
	s2 := p.Sigma * p.Sigma
	switch {
	case r2 < s2:
		return math.Inf(1)
	case r2 < p.Lambda*p.Lambda*s2:
		return -p.Epsilon
	default:
		return 0
	}
}

func (p *SquareWell) Range() float64 { return p.Lambda * p.Sigma }

// AxilrodTeller is the triple-dipole term
//
//	U = Nu (1 + 3 cos a cos b cos c) / (r12 r13 r23)^3
//
// with a, b, c the interior angles of the triangle.
type AxilrodTeller struct {
	Nu float64
}

func (p *AxilrodTeller) U3(r12, r13, r23 float64) float64 {
	d12, d13, d23 := math.Sqrt(r12), math.Sqrt(r13), math.Sqrt(r23)
	c1 := (r12 + r13 - r23) / (2 * d12 * d13)
	c2 := (r12 + r23 - r13) / (2 * d12 * d23)
	c3 := (r13 + r23 - r12) / (2 * d13 * d23)
	prod := d12 * d13 * d23
	return p.Nu * (1 + 3*c1*c2*c3) / (prod * prod * prod)
}
