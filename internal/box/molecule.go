package box

import "gonum.org/v1/gonum/spatial/r3"

// Atom is a single interaction site.
type Atom struct {
	Position r3.Vec
}

// Molecule is a point particle (no atoms) or a rigid group of atoms.
// Position is the reference point of an atomless molecule and is kept at
// the geometric centre for molecules with atoms.
type Molecule struct {
	Index    int
	Species  int
	Position r3.Vec
	Atoms    []Atom
}

// NewPoint returns an atomless molecule at p.
func NewPoint(index, species int, p r3.Vec) *Molecule {
	return &Molecule{Index: index, Species: species, Position: p}
}

// NewRigid returns a molecule whose atoms sit at the given offsets from p.
func NewRigid(index, species int, p r3.Vec, offsets []r3.Vec) *Molecule {
	m := &Molecule{Index: index, Species: species, Position: p}
	m.Atoms = make([]Atom, len(offsets))
	for i, o := range offsets {
		m.Atoms[i].Position = r3.Add(p, o)
	}
	return m
}

// Center is the geometric centre of the atoms, or Position if there are none.
func (m *Molecule) Center() r3.Vec {
	if len(m.Atoms) == 0 {
		return m.Position
	}
	var c r3.Vec
	for _, a := range m.Atoms {
		c = r3.Add(c, a.Position)
	}
	return r3.Scale(1/float64(len(m.Atoms)), c)
}

// Translate moves the molecule and all its atoms by d.
func (m *Molecule) Translate(d r3.Vec) {
	m.Position = r3.Add(m.Position, d)
	for i := range m.Atoms {
		m.Atoms[i].Position = r3.Add(m.Atoms[i].Position, d)
	}
}

// Rotate applies rot to the atoms about the molecule centre.
func (m *Molecule) Rotate(rot r3.Rotation) {
	if len(m.Atoms) == 0 {
		return
	}
	c := m.Center()
	for i := range m.Atoms {
		rel := r3.Sub(m.Atoms[i].Position, c)
		m.Atoms[i].Position = r3.Add(c, rot.Rotate(rel))
	}
	m.Position = c
}

// Invert reflects the molecule through the point p.
func (m *Molecule) Invert(p r3.Vec) {
	m.Position = r3.Sub(r3.Scale(2, p), m.Position)
	for i := range m.Atoms {
		m.Atoms[i].Position = r3.Sub(r3.Scale(2, p), m.Atoms[i].Position)
	}
}

// Clone returns a deep copy.
func (m *Molecule) Clone() *Molecule {
	c := &Molecule{Index: m.Index, Species: m.Species, Position: m.Position}
	if len(m.Atoms) > 0 {
		c.Atoms = make([]Atom, len(m.Atoms))
		copy(c.Atoms, m.Atoms)
	}
	return c
}

// CopyFrom overwrites the geometry of m with that of o. Both molecules must
// have the same number of atoms.
func (m *Molecule) CopyFrom(o *Molecule) {
	m.Position = o.Position
	copy(m.Atoms, o.Atoms)
}

// PositionDefinition maps a molecule to the point used for its separations.
type PositionDefinition func(m *Molecule) r3.Vec

// GeometricCenter uses the centre of the atoms.
func GeometricCenter(m *Molecule) r3.Vec { return m.Center() }

// FirstAtom uses the first atom, falling back to Position.
func FirstAtom(m *Molecule) r3.Vec {
	if len(m.Atoms) == 0 {
		return m.Position
	}
	return m.Atoms[0].Position
}
