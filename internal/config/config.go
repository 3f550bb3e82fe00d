package config

import (
	"fmt"
	"math"
	"os"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/rebound/internal/dynamo"
	"github.com/san-kum/rebound/internal/sim"
	"gopkg.in/yaml.v3"
)

const (
	DefaultIntegrator = "trapezoidal"
	DefaultTick       = 1000.0 / 60.0
	DefaultDuration   = 20000.0
	DefaultDropHeight = 50.0
	DefaultSize       = 1.0
)

// DefaultElasticity halves the bounce height on every rebound.
var DefaultElasticity = math.Sqrt(0.5)

type Config struct {
	Name       string        `yaml:"name"`
	Integrator string        `yaml:"integrator"`
	Tick       float64       `yaml:"tick_ms"`
	Duration   float64       `yaml:"duration_ms"`
	MaxDt      float64       `yaml:"max_dt_ms"`
	Gravity    GravityConfig `yaml:"gravity"`
	Bodies     []BodyConfig  `yaml:"bodies"`
	Planes     []PlaneConfig `yaml:"planes"`
}

type GravityConfig struct {
	X                float64 `yaml:"x"`
	Y                float64 `yaml:"y"`
	DefaultMagnitude float64 `yaml:"default_magnitude"`
}

type BodyConfig struct {
	Shape      string  `yaml:"shape"`
	X          float64 `yaml:"x"`
	Y          float64 `yaml:"y"`
	VX         float64 `yaml:"vx"`
	VY         float64 `yaml:"vy"`
	Size       float64 `yaml:"size"`
	Elasticity float64 `yaml:"elasticity"`
}

type PlaneConfig struct {
	Axis      string  `yaml:"axis"`
	Direction int     `yaml:"direction"`
	Pos       float64 `yaml:"pos"`
}

// DefaultConfig is a single ball dropped from 50 units onto a floor at 0.
func DefaultConfig() *Config {
	return &Config{
		Name:       "drop",
		Integrator: DefaultIntegrator,
		Tick:       DefaultTick,
		Duration:   DefaultDuration,
		Gravity: GravityConfig{
			Y:                -dynamo.DefaultGravityMagnitude,
			DefaultMagnitude: dynamo.DefaultGravityMagnitude,
		},
		Bodies: []BodyConfig{
			{Shape: "ball", Y: DefaultDropHeight, Size: DefaultSize, Elasticity: DefaultElasticity},
		},
		Planes: []PlaneConfig{
			{Axis: "x", Direction: 1, Pos: 0},
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := scalarDefaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// scalarDefaults is DefaultConfig without bodies or planes, so a loaded file
// only ever contains the bodies and planes it declares.
func scalarDefaults() *Config {
	cfg := DefaultConfig()
	cfg.Bodies = nil
	cfg.Planes = nil
	return cfg
}

// UnmarshalYAML fills omitted body fields with the defaults of a dropped ball.
func (b *BodyConfig) UnmarshalYAML(value *yaml.Node) error {
	type plain BodyConfig
	raw := plain{Shape: "ball", Size: DefaultSize, Elasticity: DefaultElasticity}
	if err := value.Decode(&raw); err != nil {
		return err
	}
	*b = BodyConfig(raw)
	return nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Clone returns a deep copy.
func (c *Config) Clone() *Config {
	cp := *c
	cp.Bodies = append([]BodyConfig(nil), c.Bodies...)
	cp.Planes = append([]PlaneConfig(nil), c.Planes...)
	return &cp
}

func (c *Config) Validate() error {
	if c.Tick <= 0 {
		return fmt.Errorf("%w: tick_ms must be positive, got %v", dynamo.ErrInvalidConfig, c.Tick)
	}
	if c.Duration <= 0 {
		return fmt.Errorf("%w: duration_ms must be positive, got %v", dynamo.ErrInvalidConfig, c.Duration)
	}
	if c.MaxDt < 0 {
		return fmt.Errorf("%w: max_dt_ms must not be negative, got %v", dynamo.ErrInvalidConfig, c.MaxDt)
	}
	if len(c.Bodies) == 0 {
		return fmt.Errorf("%w: no bodies", dynamo.ErrInvalidConfig)
	}
	if _, err := c.BuildBodies(); err != nil {
		return err
	}
	if _, err := c.BuildPlanes(); err != nil {
		return err
	}
	return nil
}

func (c *Config) BuildBodies() ([]dynamo.Body, error) {
	bodies := make([]dynamo.Body, 0, len(c.Bodies))
	for i, bc := range c.Bodies {
		shape, err := dynamo.ParseShape(bc.Shape, bc.Size)
		if err != nil {
			return nil, fmt.Errorf("body %d: %w", i, err)
		}
		bodies = append(bodies, dynamo.Body{
			Pos:        mgl64.Vec2{bc.X, bc.Y},
			Vel:        mgl64.Vec2{bc.VX, bc.VY},
			Elasticity: bc.Elasticity,
			Shape:      shape,
		})
	}
	return bodies, nil
}

func (c *Config) BuildPlanes() ([]dynamo.Plane, error) {
	planes := make([]dynamo.Plane, 0, len(c.Planes))
	for i, pc := range c.Planes {
		axis, err := dynamo.ParseAxis(pc.Axis)
		if err != nil {
			return nil, fmt.Errorf("plane %d: %w", i, err)
		}
		dir, err := dynamo.ParseDirection(pc.Direction)
		if err != nil {
			return nil, fmt.Errorf("plane %d: %w", i, err)
		}
		planes = append(planes, dynamo.Plane{Axis: axis, Direction: dir, Pos: pc.Pos})
	}
	return planes, nil
}

// DefaultGravity is the vector restored on reset.
func (c *Config) DefaultGravity() mgl64.Vec2 {
	mag := c.Gravity.DefaultMagnitude
	if mag == 0 {
		mag = dynamo.DefaultGravityMagnitude
	}
	return mgl64.Vec2{0, -mag}
}

// Scene builds the initial world content.
func (c *Config) Scene() (sim.Scene, error) {
	bodies, err := c.BuildBodies()
	if err != nil {
		return sim.Scene{}, err
	}
	planes, err := c.BuildPlanes()
	if err != nil {
		return sim.Scene{}, err
	}
	return sim.Scene{
		Name:           c.Name,
		Gravity:        mgl64.Vec2{c.Gravity.X, c.Gravity.Y},
		DefaultGravity: c.DefaultGravity(),
		Bodies:         bodies,
		Planes:         planes,
	}, nil
}

func (c *Config) RunConfig() sim.Config {
	return sim.Config{
		Tick:          c.Tick,
		Duration:      c.Duration,
		MaxDt:         c.MaxDt,
		ValidateState: true,
	}
}
