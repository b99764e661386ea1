// Package mcmove holds the Monte Carlo moves that perturb a cluster box.
// A move saves the geometry it is about to change, perturbs it and opens a
// trial on the box; the walker then accepts or calls Undo before rejecting.
package mcmove

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/virial/internal/box"
)

// Move perturbs a box configuration.
type Move interface {
	Name() string
	// Propose changes the geometry of b and calls b.TrialNotify.
	Propose(b *box.Box, rng *rand.Rand)
	// Undo restores the geometry saved by the last Propose. It must be
	// called before the trial is rejected.
	Undo(b *box.Box)
	StepSize() float64
	SetStepSize(step float64)
	// MaxStepSize bounds step adaptation.
	MaxStepSize() float64
	// Copy returns a move with the same step size and no saved geometry.
	Copy() Move
}

// snapshot keeps a copy of the molecules a move changes.
type snapshot struct {
	saved []*box.Molecule
}

func (s *snapshot) save(b *box.Box) {
	mols := b.Molecules()
	if len(s.saved) != len(mols) {
		s.saved = make([]*box.Molecule, len(mols))
		for i, m := range mols {
			s.saved[i] = m.Clone()
		}
		return
	}
	for i, m := range mols {
		s.saved[i].CopyFrom(m)
	}
}

func (s *snapshot) restore(b *box.Box) {
	for i, m := range b.Molecules() {
		m.CopyFrom(s.saved[i])
	}
}

// Translate displaces every molecule but the first by an independent
// uniform vector in the cube [-step, step]^3. The first molecule stays at
// the origin of the cluster integral.
type Translate struct {
	step float64
	snap snapshot
}

func NewTranslate(step float64) *Translate { return &Translate{step: step} }

func (m *Translate) Name() string { return "translate" }

func (m *Translate) Propose(b *box.Box, rng *rand.Rand) {
	m.snap.save(b)
	for _, mol := range b.Molecules()[1:] {
		mol.Translate(r3.Vec{
			X: m.step * (2*rng.Float64() - 1),
			Y: m.step * (2*rng.Float64() - 1),
			Z: m.step * (2*rng.Float64() - 1),
		})
	}
	b.TrialNotify()
}

func (m *Translate) Undo(b *box.Box) { m.snap.restore(b) }

func (m *Translate) StepSize() float64        { return m.step }
func (m *Translate) SetStepSize(step float64) { m.step = step }
func (m *Translate) MaxStepSize() float64     { return 1e3 }
func (m *Translate) Copy() Move               { return NewTranslate(m.step) }

// Rotate turns every molecule about its centre by a uniform angle in
// [-step, step] around a random axis.
type Rotate struct {
	step float64
	snap snapshot
}

func NewRotate(step float64) *Rotate { return &Rotate{step: step} }

func (m *Rotate) Name() string { return "rotate" }

func (m *Rotate) Propose(b *box.Box, rng *rand.Rand) {
	m.snap.save(b)
	for _, mol := range b.Molecules() {
		angle := m.step * (2*rng.Float64() - 1)
		mol.Rotate(r3.NewRotation(angle, randomAxis(rng)))
	}
	b.TrialNotify()
}

func (m *Rotate) Undo(b *box.Box) { m.snap.restore(b) }

func (m *Rotate) StepSize() float64        { return m.step }
func (m *Rotate) SetStepSize(step float64) { m.step = step }
func (m *Rotate) MaxStepSize() float64     { return math.Pi }
func (m *Rotate) Copy() Move               { return NewRotate(m.step) }

// randomAxis is uniform on the unit sphere.
func randomAxis(rng *rand.Rand) r3.Vec {
	z := 2*rng.Float64() - 1
	phi := 2 * math.Pi * rng.Float64()
	s := math.Sqrt(1 - z*z)
	return r3.Vec{X: s * math.Cos(phi), Y: s * math.Sin(phi), Z: z}
}
