package box

import (
	"fmt"
)

// Weight is the sampling cluster of a box: the positive function of the
// configuration that drives Monte Carlo acceptance.
type Weight interface {
	Value(b *Box) float64
}

// Option configures a Box.
type Option func(*Box)

// WithPositionDefinition selects the molecule reference point.
func WithPositionDefinition(def PositionDefinition) Option {
	return func(b *Box) { b.def = def }
}

// WithLeafPairs makes the pair sets run over atoms instead of molecules.
func WithLeafPairs() Option {
	return func(b *Box) { b.leaf = true }
}

// Box owns one configuration, its current and trial coordinate pair sets,
// the molecule pair handles and the sampling cluster.
type Box struct {
	molecules []*Molecule
	def       PositionDefinition
	leaf      bool

	pairs   *CoordinatePairSet
	trial   *CoordinatePairSet
	aPairs  *AtomPairSet
	nextID  int64
	inTrial bool

	sample Weight
}

// New builds a box over mols and computes the initial pair set with ID 0.
func New(mols []*Molecule, opts ...Option) (*Box, error) {
	if len(mols) < 2 {
		return nil, fmt.Errorf("%w: got %d", ErrTooFewMolecules, len(mols))
	}
	b := &Box{molecules: mols}
	for _, opt := range opts {
		opt(b)
	}
	b.pairs = b.newPairSet()
	b.trial = b.newPairSet()
	b.aPairs = NewAtomPairSet(mols)
	b.pairs.Reset(b.nextID)
	return b, nil
}

func (b *Box) newPairSet() *CoordinatePairSet {
	if b.leaf {
		return NewLeafPairSet(b.molecules)
	}
	return NewMoleculePairSet(b.molecules, b.def)
}

// Molecules returns the molecule list. Callers may mutate geometry and must
// then call TrialNotify (or Refresh outside a Monte Carlo step).
func (b *Box) Molecules() []*Molecule { return b.molecules }

// Len is the number of molecules.
func (b *Box) Len() int { return len(b.molecules) }

// CPairSet returns the pair set of the configuration being looked at: the
// trial one while a trial is pending, the accepted one otherwise.
func (b *Box) CPairSet() *CoordinatePairSet {
	if b.inTrial {
		return b.trial
	}
	return b.pairs
}

// CPairID is the configuration ID of CPairSet.
func (b *Box) CPairID() int64 { return b.CPairSet().ID() }

// APairSet returns the molecule pair handles.
func (b *Box) APairSet() *AtomPairSet { return b.aPairs }

// InTrial reports whether a trial is pending.
func (b *Box) InTrial() bool { return b.inTrial }

// TrialNotify stamps a new configuration ID and recomputes the trial pair
// set from the live geometry. Calling it again during a pending trial
// replaces the trial configuration.
func (b *Box) TrialNotify() {
	b.nextID++
	b.trial.Reset(b.nextID)
	b.inTrial = true
}

// AcceptNotify makes the trial configuration the accepted one.
func (b *Box) AcceptNotify() error {
	if !b.inTrial {
		return fmt.Errorf("accept: %w", ErrNoTrial)
	}
	b.pairs, b.trial = b.trial, b.pairs
	b.inTrial = false
	return nil
}

// RejectNotify drops the trial configuration. The caller must already have
// restored the geometry.
func (b *Box) RejectNotify() error {
	if !b.inTrial {
		return fmt.Errorf("reject: %w", ErrNoTrial)
	}
	b.inTrial = false
	return nil
}

// Refresh recomputes the accepted pair set under a new ID after geometry was
// changed outside a Monte Carlo step (initial placement, tests).
func (b *Box) Refresh() error {
	if b.inTrial {
		return fmt.Errorf("refresh: %w", ErrTrialPending)
	}
	b.nextID++
	b.pairs.Reset(b.nextID)
	return nil
}

// SetSampleCluster installs the sampling weight.
func (b *Box) SetSampleCluster(w Weight) { b.sample = w }

// SampleCluster returns the sampling weight, or nil.
func (b *Box) SampleCluster() Weight { return b.sample }

// SampleValue evaluates the sampling weight at the current configuration.
// It panics if no sampling cluster is installed.
func (b *Box) SampleValue() float64 {
	if b.sample == nil {
		panic("box: no sampling cluster installed")
	}
	return b.sample.Value(b)
}

// Clone returns an independent box over deep copies of the molecules, with
// the same options and no sampling cluster.
func (b *Box) Clone() *Box {
	mols := make([]*Molecule, len(b.molecules))
	for i, m := range b.molecules {
		mols[i] = m.Clone()
	}
	c := &Box{molecules: mols, def: b.def, leaf: b.leaf}
	c.pairs = c.newPairSet()
	c.trial = c.newPairSet()
	c.aPairs = NewAtomPairSet(mols)
	c.pairs.Reset(0)
	return c
}
