package config

import (
	"fmt"
	"sort"
)

// Presets are complete configurations keyed by name. GetPreset hands out copies.
var Presets = map[string]*Config{
	"calm": preset(func(c *Config) {
		c.Particles.Count = 8
		c.Particles.MaxSpeed = 2
		c.Particles.MutateChance = 0.2
		c.Background.Speed = 0.4
	}),
	"crowd": preset(func(c *Config) {
		c.Particles.Count = 60
		c.Particles.MinRadiusRatio = 0.02
		c.Particles.MaxRadiusRatio = 0.1
		c.Particles.BlendFalloff = 80
	}),
	"fixed": preset(func(c *Config) {
		c.Particles.MinRadius = 30
		c.Particles.MaxRadius = 30
		c.Particles.MutateChance = 0
	}),
	"frantic": preset(func(c *Config) {
		c.Particles.Count = 30
		c.Particles.MaxSpeed = 14
		c.Particles.InitialAccel = 0.2
		c.Beat.IntervalMs = 500
		c.Background.Speed = 3
	}),
	"legacy": preset(func(c *Config) {
		c.Particles.RadiusClamp = "legacy"
		c.Background.Enabled = false
	}),
}

var descriptions = map[string]string{
	"calm":    "a few slow drifters",
	"crowd":   "sixty small particles, wide blending",
	"fixed":   "constant radius, no mutation",
	"frantic": "fast particles on a half-second beat",
	"legacy":  "original asymmetric radius clamp, no background",
}

// Describe returns the one-line summary of a preset.
func Describe(name string) string { return descriptions[name] }

// Resolve layers a named preset and then a config file over the defaults.
// Either may be empty.
func Resolve(presetName, path string) (*Config, error) {
	cfg := DefaultConfig()
	if presetName != "" {
		cfg = GetPreset(presetName)
		if cfg == nil {
			return nil, fmt.Errorf("%w: unknown preset %q (available: %v)", ErrInvalid, presetName, ListPresets())
		}
	}
	if path == "" {
		return cfg, nil
	}
	loaded, err := LoadInto(path, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return loaded, nil
}

func preset(apply func(c *Config)) *Config {
	c := DefaultConfig()
	apply(c)
	return c
}

func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	cp := *cfg
	return &cp
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
