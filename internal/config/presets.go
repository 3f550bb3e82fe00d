package config

import (
	"sort"

	"github.com/san-kum/rebound/internal/dynamo"
)

var floorPlane = PlaneConfig{Axis: "x", Direction: 1, Pos: 0}

// box bounds [-50, 50] x [0, 100], the default viewing area.
var boxPlanes = []PlaneConfig{
	floorPlane,
	{Axis: "x", Direction: -1, Pos: 100},
	{Axis: "y", Direction: 1, Pos: -50},
	{Axis: "y", Direction: -1, Pos: 50},
}

var Presets = map[string]func() *Config{
	"drop": DefaultConfig,
	"elastic": func() *Config {
		cfg := DefaultConfig()
		cfg.Name = "elastic"
		cfg.Bodies[0].Elasticity = 1
		return cfg
	},
	"dead": func() *Config {
		cfg := DefaultConfig()
		cfg.Name = "dead"
		cfg.Bodies[0].Elasticity = 0
		cfg.Duration = 5000
		return cfg
	},
	"box": func() *Config {
		cfg := DefaultConfig()
		cfg.Name = "box"
		cfg.Duration = 30000
		cfg.Bodies = []BodyConfig{
			{Shape: "ball", X: -20, Y: 60, VX: 0.02, VY: 0.01, Size: 4, Elasticity: 0.9},
			{Shape: "ball", X: 10, Y: 80, VX: -0.035, Size: 2, Elasticity: 0.8},
			{Shape: "point", X: 0, Y: 30, VX: 0.05, VY: 0.02, Elasticity: 1},
		}
		cfg.Planes = append([]PlaneConfig(nil), boxPlanes...)
		return cfg
	},
	"corner": func() *Config {
		cfg := DefaultConfig()
		cfg.Name = "corner"
		cfg.Bodies = []BodyConfig{
			{Shape: "ball", X: 20, Y: 40, VX: -0.03, Size: 2, Elasticity: 0.85},
		}
		cfg.Planes = []PlaneConfig{floorPlane, {Axis: "y", Direction: 1, Pos: 0}}
		return cfg
	},
	"sideways": func() *Config {
		cfg := DefaultConfig()
		cfg.Name = "sideways"
		cfg.Gravity.X = dynamo.DefaultGravityMagnitude
		cfg.Gravity.Y = 0
		cfg.Bodies = []BodyConfig{
			{Shape: "ball", X: -40, Y: 50, Size: 1, Elasticity: DefaultElasticity},
		}
		cfg.Planes = []PlaneConfig{{Axis: "y", Direction: -1, Pos: 50}}
		return cfg
	},
}

// GetPreset returns a fresh copy of the named scenario, or nil.
func GetPreset(name string) *Config {
	fn, ok := Presets[name]
	if !ok {
		return nil
	}
	return fn()
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
