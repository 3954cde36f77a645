// Package config loads and saves the run configuration as YAML or TOML and maps
// it onto the simulation's own types.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/driftsim/internal/ghost"
	"github.com/san-kum/driftsim/internal/kinematics"
	"github.com/san-kum/driftsim/internal/particle"
	"github.com/san-kum/driftsim/internal/sim"
)

const (
	DefaultWidth           = 1280
	DefaultHeight          = 720
	DefaultBackgroundScale = 12.0
	DefaultBackgroundSpeed = 1.0
	DefaultVolume          = 0.5
	DefaultThreshold       = 1.6
	DefaultCooldownMs      = 150
)

var (
	ErrUnknownFormat = errors.New("config: unknown file format")
	ErrInvalid       = errors.New("config: invalid value")
)

type Config struct {
	Seed          int64            `yaml:"seed" toml:"seed"`
	LogIntervalMs int              `yaml:"log_interval_ms" toml:"log_interval_ms"`
	Particles     ParticleConfig   `yaml:"particles" toml:"particles"`
	Ghosts        GhostConfig      `yaml:"ghosts" toml:"ghosts"`
	Beat          BeatConfig       `yaml:"beat" toml:"beat"`
	Viewport      ViewportConfig   `yaml:"viewport" toml:"viewport"`
	Background    BackgroundConfig `yaml:"background" toml:"background"`
	Audio         AudioConfig      `yaml:"audio" toml:"audio"`
}

type ParticleConfig struct {
	Count               int     `yaml:"count" toml:"count"`
	MaxSpeed            float64 `yaml:"max_speed" toml:"max_speed"`
	LessMaxAccel        float64 `yaml:"less_max_accel" toml:"less_max_accel"`
	Margin              float64 `yaml:"margin" toml:"margin"`
	InitialAccel        float64 `yaml:"initial_accel" toml:"initial_accel"`
	MinRadiusRatio      float64 `yaml:"min_radius_ratio" toml:"min_radius_ratio"`
	MaxRadiusRatio      float64 `yaml:"max_radius_ratio" toml:"max_radius_ratio"`
	// MinRadius and MaxRadius override their ratio when positive. Each zero
	// bound is still derived from its ratio on its own.
	MinRadius           float64 `yaml:"min_radius" toml:"min_radius"`
	MaxRadius           float64 `yaml:"max_radius" toml:"max_radius"`
	RadiusStepMaxDelta  float64 `yaml:"radius_step_max_delta" toml:"radius_step_max_delta"`
	MutateChance        float64 `yaml:"mutate_chance" toml:"mutate_chance"`
	RadiusMutatePauseMs int     `yaml:"radius_mutate_pause_ms" toml:"radius_mutate_pause_ms"`
	RadiusClamp         string  `yaml:"radius_clamp" toml:"radius_clamp"`
	BlendFalloff        float64 `yaml:"blend_falloff" toml:"blend_falloff"`
	BlendDamping        float64 `yaml:"blend_damping" toml:"blend_damping"`
	ShowConnections     bool    `yaml:"show_connections" toml:"show_connections"`
}

type GhostConfig struct {
	LifetimeMs  int     `yaml:"lifetime_ms" toml:"lifetime_ms"`
	RadiusRatio float64 `yaml:"radius_ratio" toml:"radius_ratio"`
}

type BeatConfig struct {
	IntervalMs int     `yaml:"interval_ms" toml:"interval_ms"`
	Kick       bool    `yaml:"kick" toml:"kick"`
	Volume     float64 `yaml:"volume" toml:"volume"`
}

type ViewportConfig struct {
	Width     int     `yaml:"width" toml:"width"`
	Height    int     `yaml:"height" toml:"height"`
	SideMulti float64 `yaml:"side_multi" toml:"side_multi"`
}

type BackgroundConfig struct {
	Enabled bool    `yaml:"enabled" toml:"enabled"`
	Scale   float64 `yaml:"scale" toml:"scale"`
	Speed   float64 `yaml:"speed" toml:"speed"`
}

type AudioConfig struct {
	Listen     bool    `yaml:"listen" toml:"listen"`
	Threshold  float64 `yaml:"threshold" toml:"threshold"`
	CooldownMs int     `yaml:"cooldown_ms" toml:"cooldown_ms"`
}

func DefaultConfig() *Config {
	p := particle.DefaultParams(0, 0)
	return &Config{
		LogIntervalMs: int(sim.DefaultLogInterval / time.Millisecond),
		Particles: ParticleConfig{
			Count:               sim.DefaultParticles,
			MaxSpeed:            kinematics.DefaultMaxSpeed,
			LessMaxAccel:        kinematics.DefaultLessMaxAccel,
			Margin:              kinematics.DefaultMargin,
			InitialAccel:        kinematics.DefaultInitialAccel,
			MinRadiusRatio:      sim.DefaultMinRadiusRatio,
			MaxRadiusRatio:      sim.DefaultMaxRadiusRatio,
			RadiusStepMaxDelta:  p.RadiusStepMaxDelta,
			MutateChance:        p.MutateChance,
			RadiusMutatePauseMs: int(p.RadiusMutatePause / time.Millisecond),
			RadiusClamp:         particle.ClampBounded.String(),
			BlendFalloff:        p.BlendFalloff,
			BlendDamping:        p.BlendDamping,
			ShowConnections:     true,
		},
		Ghosts: GhostConfig{
			LifetimeMs:  int(ghost.DefaultLifetime / time.Millisecond),
			RadiusRatio: ghost.DefaultRadiusRatio,
		},
		Beat: BeatConfig{
			Kick:   true,
			Volume: DefaultVolume,
		},
		Viewport: ViewportConfig{
			Width:     DefaultWidth,
			Height:    DefaultHeight,
			SideMulti: sim.DefaultSideMulti,
		},
		Background: BackgroundConfig{
			Enabled: true,
			Scale:   DefaultBackgroundScale,
			Speed:   DefaultBackgroundSpeed,
		},
		Audio: AudioConfig{
			Threshold:  DefaultThreshold,
			CooldownMs: DefaultCooldownMs,
		},
	}
}

// Load reads a YAML (.yaml, .yml) or TOML (.toml) file over the defaults, so a
// file only needs the keys it changes.
func Load(path string) (*Config, error) {
	return LoadInto(path, DefaultConfig())
}

// LoadInto reads path over a copy of base. base itself is left untouched.
func LoadInto(path string, base *Config) (*Config, error) {
	cp := *base
	cfg := &cp
	switch format(path) {
	case "yaml":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("decoding %s: %w", path, err)
		}
	case "toml":
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("decoding %s: %w", path, err)
		}
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, path)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	switch format(path) {
	case "yaml":
		data, err := yaml.Marshal(cfg)
		if err != nil {
			return err
		}
		return os.WriteFile(path, data, 0644)
	case "toml":
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		if err := toml.NewEncoder(f).Encode(cfg); err != nil {
			f.Close()
			return fmt.Errorf("encoding %s: %w", path, err)
		}
		return f.Close()
	}
	return fmt.Errorf("%w: %s", ErrUnknownFormat, path)
}

func format(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return "yaml"
	case ".toml":
		return "toml"
	}
	return ""
}

// Validate checks the front-end settings here and the simulation settings
// through sim.Config.
func (c *Config) Validate() error {
	switch {
	case c.Viewport.Width <= 0 || c.Viewport.Height <= 0:
		return fmt.Errorf("%w: viewport %dx%d", ErrInvalid, c.Viewport.Width, c.Viewport.Height)
	case c.Viewport.SideMulti <= 0:
		return fmt.Errorf("%w: side_multi must be positive, got %f", ErrInvalid, c.Viewport.SideMulti)
	case c.Background.Scale <= 0:
		return fmt.Errorf("%w: background scale must be positive, got %f", ErrInvalid, c.Background.Scale)
	case c.Beat.Volume < 0 || c.Beat.Volume > 1:
		return fmt.Errorf("%w: beat volume must be in [0, 1], got %f", ErrInvalid, c.Beat.Volume)
	case c.Audio.Threshold <= 0:
		return fmt.Errorf("%w: audio threshold must be positive, got %f", ErrInvalid, c.Audio.Threshold)
	case c.Audio.CooldownMs < 0:
		return fmt.Errorf("%w: audio cooldown must not be negative", ErrInvalid)
	}

	sc, err := c.SimConfig()
	if err != nil {
		return err
	}
	return sc.Validate()
}

// SimConfig maps the file layout onto sim.Config.
func (c *Config) SimConfig() (sim.Config, error) {
	clamp, err := particle.ParseClampMode(c.Particles.RadiusClamp)
	if err != nil {
		return sim.Config{}, fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	pc := c.Particles
	return sim.Config{
		Particles: pc.Count,
		Particle: particle.Params{
			Limits: kinematics.Limits{
				MaxSpeed:     pc.MaxSpeed,
				LessMaxAccel: pc.LessMaxAccel,
				Margin:       pc.Margin,
			},
			InitialAccel:       pc.InitialAccel,
			MinRadius:          pc.MinRadius,
			MaxRadius:          pc.MaxRadius,
			RadiusStepMaxDelta: pc.RadiusStepMaxDelta,
			MutateChance:       pc.MutateChance,
			RadiusMutatePause:  ms(pc.RadiusMutatePauseMs),
			Clamp:              clamp,
			BlendFalloff:       pc.BlendFalloff,
			BlendDamping:       pc.BlendDamping,
			Connections:        pc.ShowConnections,
		},
		MinRadiusRatio: pc.MinRadiusRatio,
		MaxRadiusRatio: pc.MaxRadiusRatio,
		Ghost: ghost.Params{
			Lifetime:    ms(c.Ghosts.LifetimeMs),
			RadiusRatio: c.Ghosts.RadiusRatio,
		},
		LogInterval:  ms(c.LogIntervalMs),
		BeatInterval: ms(c.Beat.IntervalMs),
	}, nil
}

// TickContext returns the tick context for the configured window size.
func (c *Config) TickContext() (sim.TickContext, error) {
	return sim.ViewportContext(c.Viewport.Width, c.Viewport.Height, c.Viewport.SideMulti)
}

func (c *Config) AudioCooldown() time.Duration { return ms(c.Audio.CooldownMs) }

func ms(n int) time.Duration { return time.Duration(n) * time.Millisecond }
