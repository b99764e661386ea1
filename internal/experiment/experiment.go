package experiment

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/san-kum/virial/internal/box"
	"github.com/san-kum/virial/internal/cluster"
	"github.com/san-kum/virial/internal/config"
	"github.com/san-kum/virial/internal/mayer"
	"github.com/san-kum/virial/internal/mcmove"
	"github.com/san-kum/virial/internal/msmc"
)

// Experiment wires a configuration into a Mayer-sampling run.
type Experiment struct {
	cfg    *config.Config
	reg    *Registry
	log    *zap.Logger
	walker *msmc.Walker
}

func New(cfg *config.Config, reg *Registry, log *zap.Logger) *Experiment {
	if log == nil {
		log = zap.NewNop()
	}
	return &Experiment{cfg: cfg, reg: reg, log: log}
}

// Cluster builds the target cluster the configuration describes.
func (e *Experiment) Cluster() (cluster.Cluster, error) {
	cfg := e.cfg
	f, err := e.reg.GetMayer(cfg.Potential, cfg.Molecule)
	if err != nil {
		return nil, err
	}
	multi, err := e.reg.GetNonAdditive(cfg.NonAdditive, cfg.Points)
	if err != nil {
		return nil, err
	}

	mode := cluster.Total
	if cfg.Mode == "excess" {
		mode = cluster.Excess
	}
	opts := []cluster.Option{
		cluster.WithTemperature(cfg.Temperature),
		cluster.WithTolerance(cfg.Precision.Tolerance),
		cluster.WithPrecisionLimit(cfg.Precision.Limit),
		cluster.WithMode(mode),
		cluster.WithLogger(e.log),
	}

	var c cluster.Cluster
	switch {
	case cfg.Derivatives > 0 && multi != nil:
		return nil, fmt.Errorf("%w: temperature derivatives with a non-additive potential", ErrUnsupported)
	case cfg.Derivatives > 0:
		c, err = cluster.NewDerivatives(cfg.Points, cfg.Derivatives, f, opts...)
	case multi != nil:
		c, err = cluster.NewMultibody(cfg.Points, f, multi, opts...)
	default:
		c, err = cluster.NewSoft(cfg.Points, f, opts...)
	}
	if err != nil {
		return nil, err
	}
	if cfg.Flip {
		if cfg.Derivatives > 0 {
			return nil, fmt.Errorf("%w: flipping a derivative cluster", ErrUnsupported)
		}
		c = cluster.NewFlipped(c)
	}
	return c, nil
}

// Molecules places the configured molecules in a compact starting cluster.
func (e *Experiment) Molecules() ([]*box.Molecule, error) {
	offsets, err := e.reg.GetShape(e.cfg.Molecule)
	if err != nil {
		return nil, err
	}
	mols := msmc.CompactPoints(e.cfg.Points, e.cfg.Reference.Sigma)
	if len(offsets) == 0 {
		return mols, nil
	}
	for i, m := range mols {
		mols[i] = box.NewRigid(m.Index, m.Species, m.Position, offsets)
	}
	return mols, nil
}

// Box places the configured molecules in a box that measures separations
// between the configured reference points.
func (e *Experiment) Box() (*box.Box, error) {
	def, err := e.reg.GetPosition(e.cfg.Molecule)
	if err != nil {
		return nil, err
	}
	mols, err := e.Molecules()
	if err != nil {
		return nil, err
	}
	return box.New(mols, box.WithPositionDefinition(def))
}

func (e *Experiment) Setup() error {
	if err := e.cfg.Validate(); err != nil {
		return err
	}
	target, err := e.Cluster()
	if err != nil {
		return err
	}
	ref, err := cluster.NewSoft(e.cfg.Points, &mayer.HardSphere{Sigma: e.cfg.Reference.Sigma}, cluster.WithTolerance(0))
	if err != nil {
		return err
	}
	refValue, err := msmc.HardSphereB(e.cfg.Points, e.cfg.Reference.Sigma)
	if err != nil {
		return err
	}

	b, err := e.Box()
	if err != nil {
		return err
	}

	moves := []mcmove.Move{mcmove.NewTranslate(e.cfg.Run.StepSize)}
	if e.cfg.Molecule.Shape != "point" {
		moves = append(moves, mcmove.NewRotate(e.cfg.Run.StepSize))
	}

	run := e.cfg.Run
	w, err := msmc.NewWalker(b, target, ref, refValue, moves, msmc.Config{
		Steps:            run.Steps,
		Equilibration:    run.Equilibration,
		BlockSize:        run.BlockSize,
		AdjustInterval:   run.AdjustInterval,
		TargetAcceptance: run.TargetAcceptance,
		RefWeight:        e.cfg.Reference.Weight,
		Seed:             run.Seed,
	}, e.log)
	if err != nil {
		return err
	}
	e.walker = w
	return nil
}

// Run samples with one walker, or with an ensemble when more are configured.
func (e *Experiment) Run(ctx context.Context) (*msmc.Result, error) {
	if e.walker == nil {
		return nil, fmt.Errorf("experiment not setup")
	}
	if e.cfg.Run.Walkers == 1 {
		return e.walker.Run(ctx)
	}
	merged, _, err := msmc.NewEnsemble(e.walker, e.cfg.Run.Walkers, e.cfg.Run.Seed).Run(ctx)
	return merged, err
}
