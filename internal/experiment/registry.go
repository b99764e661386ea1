package experiment

import (
	"errors"
	"fmt"
	"sort"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/virial/internal/box"
	"github.com/san-kum/virial/internal/config"
	"github.com/san-kum/virial/internal/mayer"
	"github.com/san-kum/virial/internal/potential"
)

var (
	ErrUnknown     = errors.New("experiment: unknown name")
	ErrUnsupported = errors.New("experiment: unsupported combination")
)

type Registry struct {
	potentials  map[string]func(config.PotentialConfig) potential.Pair
	nonAdditive map[string]func(config.NonAdditiveConfig) potential.ThreeBody
	shapes      map[string]func(config.MoleculeConfig) []r3.Vec
	positions   map[string]box.PositionDefinition
}

func NewRegistry() *Registry {
	r := &Registry{
		potentials:  make(map[string]func(config.PotentialConfig) potential.Pair),
		nonAdditive: make(map[string]func(config.NonAdditiveConfig) potential.ThreeBody),
		shapes:      make(map[string]func(config.MoleculeConfig) []r3.Vec),
		positions:   make(map[string]box.PositionDefinition),
	}

	r.potentials["lj"] = func(p config.PotentialConfig) potential.Pair {
		return &potential.LennardJones{Epsilon: p.Epsilon, Sigma: p.Sigma, Cutoff: p.Cutoff}
	}
	r.potentials["hs"] = func(p config.PotentialConfig) potential.Pair {
		return &potential.HardSphere{Sigma: p.Sigma}
	}
	r.potentials["sw"] = func(p config.PotentialConfig) potential.Pair {
		return &potential.SquareWell{Epsilon: p.Epsilon, Sigma: p.Sigma, Lambda: p.Lambda}
	}

	r.nonAdditive["axilrod-teller"] = func(p config.NonAdditiveConfig) potential.ThreeBody {
		return &potential.AxilrodTeller{Nu: p.Nu}
	}

	r.shapes["point"] = func(config.MoleculeConfig) []r3.Vec { return nil }
	r.shapes["dimer"] = func(m config.MoleculeConfig) []r3.Vec {
		return []r3.Vec{{Y: -m.Bond / 2}, {Y: m.Bond / 2}}
	}

	r.positions["center"] = box.GeometricCenter
	r.positions["first-atom"] = box.FirstAtom

	return r
}

func (r *Registry) GetPotential(p config.PotentialConfig) (potential.Pair, error) {
	fn, ok := r.potentials[p.Name]
	if !ok {
		return nil, fmt.Errorf("%w: potential %q", ErrUnknown, p.Name)
	}
	return fn(p), nil
}

// GetMayer returns the pair Mayer function for the potential and molecular
// shape. Point hard spheres use the exact step function; rigid molecules
// interact site-site.
func (r *Registry) GetMayer(p config.PotentialConfig, m config.MoleculeConfig) (mayer.Function, error) {
	pot, err := r.GetPotential(p)
	if err != nil {
		return nil, err
	}
	if _, ok := r.shapes[m.Shape]; !ok {
		return nil, fmt.Errorf("%w: shape %q", ErrUnknown, m.Shape)
	}
	if m.Shape != "point" {
		return &mayer.SiteSite{Site: pot}, nil
	}
	if p.Name == "hs" {
		return &mayer.HardSphere{Sigma: p.Sigma}, nil
	}
	return mayer.NewSpherical(pot), nil
}

// GetNonAdditive returns the non-additive functions indexed by subset size
// for n points, or nil when no non-additive potential is configured.
func (r *Registry) GetNonAdditive(p config.NonAdditiveConfig, n int) ([]mayer.NonAdditive, error) {
	if p.Name == "" || p.Name == "none" {
		return nil, nil
	}
	fn, ok := r.nonAdditive[p.Name]
	if !ok {
		return nil, fmt.Errorf("%w: non-additive potential %q", ErrUnknown, p.Name)
	}
	f := &mayer.Triplets{Potential: fn(p)}
	out := make([]mayer.NonAdditive, n+1)
	for k := 3; k <= n; k++ {
		out[k] = f
	}
	return out, nil
}

// GetShape returns the site offsets of a molecule, nil for points.
func (r *Registry) GetShape(m config.MoleculeConfig) ([]r3.Vec, error) {
	fn, ok := r.shapes[m.Shape]
	if !ok {
		return nil, fmt.Errorf("%w: shape %q", ErrUnknown, m.Shape)
	}
	return fn(m), nil
}

// GetPosition returns the molecule reference point definition. An empty
// name means the centre.
func (r *Registry) GetPosition(m config.MoleculeConfig) (box.PositionDefinition, error) {
	name := m.Position
	if name == "" {
		name = "center"
	}
	def, ok := r.positions[name]
	if !ok {
		return nil, fmt.Errorf("%w: position %q", ErrUnknown, m.Position)
	}
	return def, nil
}

func (r *Registry) ListPotentials() []string { return sortedKeys(r.potentials) }

func (r *Registry) ListNonAdditive() []string { return sortedKeys(r.nonAdditive) }

func (r *Registry) ListShapes() []string { return sortedKeys(r.shapes) }

func (r *Registry) ListPositions() []string { return sortedKeys(r.positions) }

func sortedKeys[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
