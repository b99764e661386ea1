package experiment

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/san-kum/virial/internal/box"
	"github.com/san-kum/virial/internal/cluster"
	"github.com/san-kum/virial/internal/config"
	"github.com/san-kum/virial/internal/mayer"
)

func TestRegistryNames(t *testing.T) {
	r := NewRegistry()
	assert.Equal(t, []string{"hs", "lj", "sw"}, r.ListPotentials())
	assert.Equal(t, []string{"axilrod-teller"}, r.ListNonAdditive())
	assert.Equal(t, []string{"dimer", "point"}, r.ListShapes())

	_, err := r.GetPotential(config.PotentialConfig{Name: "morse"})
	assert.ErrorIs(t, err, ErrUnknown)
	_, err = r.GetMayer(config.PotentialConfig{Name: "lj"}, config.MoleculeConfig{Shape: "ring"})
	assert.ErrorIs(t, err, ErrUnknown)
	_, err = r.GetNonAdditive(config.NonAdditiveConfig{Name: "dispersion"}, 3)
	assert.ErrorIs(t, err, ErrUnknown)
}

func TestRegistryMayerKinds(t *testing.T) {
	r := NewRegistry()
	point := config.MoleculeConfig{Shape: "point"}

	f, err := r.GetMayer(config.PotentialConfig{Name: "hs", Sigma: 1}, point)
	require.NoError(t, err)
	assert.IsType(t, &mayer.HardSphere{}, f)

	f, err = r.GetMayer(config.PotentialConfig{Name: "lj", Epsilon: 1, Sigma: 1}, point)
	require.NoError(t, err)
	assert.IsType(t, &mayer.Spherical{}, f)

	f, err = r.GetMayer(config.PotentialConfig{Name: "lj", Epsilon: 1, Sigma: 1}, config.MoleculeConfig{Shape: "dimer", Bond: 1})
	require.NoError(t, err)
	assert.IsType(t, &mayer.SiteSite{}, f)

	multi, err := r.GetNonAdditive(config.NonAdditiveConfig{Name: "axilrod-teller", Nu: 0.1}, 4)
	require.NoError(t, err)
	require.Len(t, multi, 5)
	assert.Nil(t, multi[2])
	assert.NotNil(t, multi[3])
	assert.NotNil(t, multi[4])

	none, err := r.GetNonAdditive(config.NonAdditiveConfig{}, 4)
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestClusterKinds(t *testing.T) {
	r := NewRegistry()
	tests := []struct {
		preset string
		want   any
	}{
		{"lj-b3", &cluster.Soft{}},
		{"lj-at-b3", &cluster.Multibody{}},
		{"lj-b3-derivatives", &cluster.Derivatives{}},
		{"dimer-b2", &cluster.Flipped{}},
	}
	for _, tt := range tests {
		t.Run(tt.preset, func(t *testing.T) {
			c, err := New(config.GetPreset(tt.preset), r, nil).Cluster()
			require.NoError(t, err)
			assert.IsType(t, tt.want, c)
		})
	}

	cfg := config.GetPreset("lj-at-b3")
	cfg.Derivatives = 1
	_, err := New(cfg, r, nil).Cluster()
	assert.ErrorIs(t, err, ErrUnsupported)
}

func TestMoleculesAreRigidForDimers(t *testing.T) {
	mols, err := New(config.GetPreset("dimer-b2"), NewRegistry(), nil).Molecules()
	require.NoError(t, err)
	require.Len(t, mols, 2)
	for _, m := range mols {
		assert.Len(t, m.Atoms, 2)
	}
	_, err = box.New(mols)
	assert.NoError(t, err)
}

func TestRunHardSphereB2(t *testing.T) {
	cfg := config.GetPreset("lj-b2")
	cfg.Potential = config.PotentialConfig{Name: "hs", Sigma: 1}
	cfg.Precision.Tolerance = 0
	cfg.Run.Steps = 50_000
	cfg.Run.Equilibration = 1000
	cfg.Run.BlockSize = 500
	cfg.Run.Walkers = 2

	e := New(cfg, NewRegistry(), nil)
	_, err := e.Run(context.Background())
	assert.Error(t, err)

	require.NoError(t, e.Setup())
	res, err := e.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(100_000), res.Samples)
	assert.InEpsilon(t, 2*math.Pi/3, res.Estimates[0].Value, 0.1)
}

func TestSetupValidates(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Points = 1
	assert.ErrorIs(t, New(cfg, NewRegistry(), nil).Setup(), config.ErrInvalid)

	cfg = config.DefaultConfig()
	cfg.Points = 12
	assert.Error(t, New(cfg, NewRegistry(), nil).Setup())
}

func TestBoxPositionDefinition(t *testing.T) {
	cfg := config.GetPreset("dimer-b2")
	cfg.Molecule.Position = "first-atom"
	b, err := New(cfg, NewRegistry(), nil).Box()
	require.NoError(t, err)

	mols := b.Molecules()
	mols[1].Rotate(r3.NewRotation(math.Pi/2, r3.Vec{Z: 1}))
	require.NoError(t, b.Refresh())

	first := r3.Sub(mols[0].Atoms[0].Position, mols[1].Atoms[0].Position)
	center := r3.Sub(mols[0].Center(), mols[1].Center())
	assert.InDelta(t, r3.Dot(first, first), b.CPairSet().R2(0, 1), 1e-12)
	assert.NotEqual(t, r3.Dot(center, center), b.CPairSet().R2(0, 1))

	cfg.Molecule.Position = "last-atom"
	_, err = New(cfg, NewRegistry(), nil).Box()
	assert.ErrorIs(t, err, ErrUnknown)
	assert.Equal(t, []string{"center", "first-atom"}, NewRegistry().ListPositions())
}
