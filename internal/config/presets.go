package config

import "sort"

var Presets = map[string]*Config{
	"lj-b2": with(func(c *Config) {
		c.Points = 2
	}),
	"lj-b3": with(func(c *Config) {
		c.Points = 3
	}),
	"lj-b4": with(func(c *Config) {
		c.Points = 4
		c.Run.Steps = 5_000_000
		c.Run.Walkers = 4
	}),
	"lj-b3-derivatives": with(func(c *Config) {
		c.Points = 3
		c.Derivatives = 2
	}),
	"hs-b4": with(func(c *Config) {
		c.Points = 4
		c.Potential = PotentialConfig{Name: "hs", Sigma: 1}
		c.Reference.Sigma = 1.2
		c.Precision.Tolerance = 0
	}),
	"sw-b3": with(func(c *Config) {
		c.Points = 3
		c.Potential = PotentialConfig{Name: "sw", Epsilon: 1, Sigma: 1, Lambda: 1.5}
		c.Reference.Sigma = 1.5
		c.Precision.Tolerance = 0
	}),
	"lj-at-b3": with(func(c *Config) {
		c.Points = 3
		c.NonAdditive = NonAdditiveConfig{Name: "axilrod-teller", Nu: 0.073}
	}),
	"lj-at-b3-excess": with(func(c *Config) {
		c.Points = 3
		c.Mode = "excess"
		c.NonAdditive = NonAdditiveConfig{Name: "axilrod-teller", Nu: 0.073}
	}),
	"dimer-b2": with(func(c *Config) {
		c.Points = 2
		c.Molecule = MoleculeConfig{Shape: "dimer", Bond: 1, Position: "center"}
		c.Reference.Sigma = 2.5
		c.Flip = true
	}),
}

func with(mutate func(*Config)) *Config {
	c := DefaultConfig()
	mutate(c)
	return c
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	c := *cfg
	return &c
}

// ListPresets returns the preset names in order.
func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
