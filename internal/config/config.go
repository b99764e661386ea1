package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	DefaultPoints           = 3
	DefaultTemperature      = 1.0
	DefaultSteps            = 1_000_000
	DefaultEquilibration    = 10_000
	DefaultBlockSize        = 1000
	DefaultWalkers          = 1
	DefaultStepSize         = 0.5
	DefaultTargetAcceptance = 0.5
	DefaultAdjustInterval   = 100
	DefaultTolerance        = 1e-12
	DefaultPrecisionLimit   = 300
)

// ErrInvalid indicates a configuration that cannot be run.
var ErrInvalid = errors.New("config: invalid")

type Config struct {
	Points      int               `yaml:"points"`
	Temperature float64           `yaml:"temperature"`
	Mode        string            `yaml:"mode"`
	Derivatives int               `yaml:"derivatives"`
	Flip        bool              `yaml:"flip"`
	Potential   PotentialConfig   `yaml:"potential"`
	NonAdditive NonAdditiveConfig `yaml:"nonadditive"`
	Molecule    MoleculeConfig    `yaml:"molecule"`
	Reference   ReferenceConfig   `yaml:"reference"`
	Run         RunConfig         `yaml:"run"`
	Precision   PrecisionConfig   `yaml:"precision"`
}

type PotentialConfig struct {
	Name    string  `yaml:"name"`
	Epsilon float64 `yaml:"epsilon"`
	Sigma   float64 `yaml:"sigma"`
	Cutoff  float64 `yaml:"cutoff"`
	Lambda  float64 `yaml:"lambda"`
}

type NonAdditiveConfig struct {
	Name string  `yaml:"name"`
	Nu   float64 `yaml:"nu"`
}

// MoleculeConfig selects the molecular shape: "point", or "dimer" with two
// sites Bond apart interacting site-site. Position picks the point whose
// separations the reference cluster sees: "center" or "first-atom".
type MoleculeConfig struct {
	Shape    string  `yaml:"shape"`
	Bond     float64 `yaml:"bond"`
	Position string  `yaml:"position"`
}

type ReferenceConfig struct {
	Sigma  float64 `yaml:"sigma"`
	Weight float64 `yaml:"weight"`
}

type RunConfig struct {
	Steps            int64   `yaml:"steps"`
	Equilibration    int64   `yaml:"equilibration"`
	BlockSize        int64   `yaml:"block_size"`
	Walkers          int     `yaml:"walkers"`
	Seed             uint64  `yaml:"seed"`
	StepSize         float64 `yaml:"step_size"`
	TargetAcceptance float64 `yaml:"target_acceptance"`
	AdjustInterval   int64   `yaml:"adjust_interval"`
}

type PrecisionConfig struct {
	Tolerance float64 `yaml:"tolerance"`
	Limit     int     `yaml:"limit"`
}

func DefaultConfig() *Config {
	return &Config{
		Points:      DefaultPoints,
		Temperature: DefaultTemperature,
		Mode:        "total",
		Potential: PotentialConfig{
			Name:    "lj",
			Epsilon: 1,
			Sigma:   1,
			Lambda:  1.5,
		},
		Molecule:  MoleculeConfig{Shape: "point", Bond: 1, Position: "center"},
		Reference: ReferenceConfig{Sigma: 1.5, Weight: 1},
		Run: RunConfig{
			Steps:            DefaultSteps,
			Equilibration:    DefaultEquilibration,
			BlockSize:        DefaultBlockSize,
			Walkers:          DefaultWalkers,
			Seed:             1,
			StepSize:         DefaultStepSize,
			TargetAcceptance: DefaultTargetAcceptance,
			AdjustInterval:   DefaultAdjustInterval,
		},
		Precision: PrecisionConfig{
			Tolerance: DefaultTolerance,
			Limit:     DefaultPrecisionLimit,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks the fields every run needs. Names of potentials and
// shapes are checked where they are resolved.
func (c *Config) Validate() error {
	switch {
	case c.Points < 2:
		return fmt.Errorf("%w: points must be at least 2, got %d", ErrInvalid, c.Points)
	case !(c.Temperature > 0):
		return fmt.Errorf("%w: temperature must be positive, got %g", ErrInvalid, c.Temperature)
	case c.Mode != "total" && c.Mode != "excess":
		return fmt.Errorf("%w: mode must be total or excess, got %q", ErrInvalid, c.Mode)
	case c.Derivatives < 0:
		return fmt.Errorf("%w: derivatives must not be negative, got %d", ErrInvalid, c.Derivatives)
	case !(c.Reference.Sigma > 0):
		return fmt.Errorf("%w: reference sigma must be positive, got %g", ErrInvalid, c.Reference.Sigma)
	case c.Run.Walkers < 1:
		return fmt.Errorf("%w: walkers must be at least 1, got %d", ErrInvalid, c.Run.Walkers)
	case c.Precision.Tolerance < 0 || c.Precision.Tolerance >= 1:
		return fmt.Errorf("%w: tolerance must be in [0, 1), got %g", ErrInvalid, c.Precision.Tolerance)
	}
	return nil
}
