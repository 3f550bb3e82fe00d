package config

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/rebound/internal/dynamo"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Name != "drop" {
		t.Errorf("expected scenario drop, got %s", cfg.Name)
	}
	if cfg.Tick <= 0 {
		t.Error("tick should be positive")
	}
	if cfg.Gravity.Y != -1e-5 {
		t.Errorf("expected gravity y -1e-5, got %g", cfg.Gravity.Y)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestScene(t *testing.T) {
	scene, err := DefaultConfig().Scene()
	if err != nil {
		t.Fatalf("Scene() failed: %v", err)
	}

	if len(scene.Bodies) != 1 || len(scene.Planes) != 1 {
		t.Fatalf("expected 1 body and 1 plane, got %d and %d", len(scene.Bodies), len(scene.Planes))
	}
	b := scene.Bodies[0]
	if b.Pos[1] != 50 || b.Elasticity != math.Sqrt(0.5) {
		t.Errorf("unexpected body %+v", b)
	}
	if ball, ok := b.Shape.(dynamo.Ball); !ok || ball.Size != 1 {
		t.Errorf("expected ball of size 1, got %#v", b.Shape)
	}
	p := scene.Planes[0]
	if p.Axis != dynamo.AxisX || p.Direction != dynamo.Positive || p.Pos != 0 {
		t.Errorf("unexpected plane %+v", p)
	}
	if scene.DefaultGravity != dynamo.DefaultGravity() {
		t.Errorf("default gravity = %v", scene.DefaultGravity)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		err    error
	}{
		{"zero tick", func(c *Config) { c.Tick = 0 }, dynamo.ErrInvalidConfig},
		{"negative duration", func(c *Config) { c.Duration = -1 }, dynamo.ErrInvalidConfig},
		{"negative max dt", func(c *Config) { c.MaxDt = -5 }, dynamo.ErrInvalidConfig},
		{"no bodies", func(c *Config) { c.Bodies = nil }, dynamo.ErrInvalidConfig},
		{"bad shape", func(c *Config) { c.Bodies[0].Shape = "cube" }, dynamo.ErrUnsupportedShape},
		{"bad axis", func(c *Config) { c.Planes[0].Axis = "z" }, dynamo.ErrInvalidAxis},
		{"bad direction", func(c *Config) { c.Planes[0].Direction = 0 }, dynamo.ErrInvalidDirection},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			if err := cfg.Validate(); !errors.Is(err, tt.err) {
				t.Errorf("Validate() = %v, want %v", err, tt.err)
			}
		})
	}
}

func TestLoadSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scene.yaml")

	cfg := GetPreset("box")
	if err := Save(path, cfg); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if loaded.Name != "box" || len(loaded.Bodies) != 3 || len(loaded.Planes) != 4 {
		t.Errorf("round trip lost data: %+v", loaded)
	}
}

func TestLoadPartial(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.yaml")
	data := []byte("name: wall\nbodies:\n  - y: 10\nplanes:\n  - axis: y\n    direction: -1\n    pos: 10\n")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Tick != DefaultTick {
		t.Errorf("missing tick should keep default, got %v", cfg.Tick)
	}
	if len(cfg.Bodies) != 1 {
		t.Fatalf("expected 1 body, got %d", len(cfg.Bodies))
	}
	b := cfg.Bodies[0]
	if b.Shape != "ball" || b.Size != DefaultSize || b.Elasticity != DefaultElasticity || b.Y != 10 {
		t.Errorf("omitted body fields should take defaults, got %+v", b)
	}
	if len(cfg.Planes) != 1 || cfg.Planes[0].Axis != "y" || cfg.Planes[0].Pos != 10 {
		t.Errorf("planes not loaded: %+v", cfg.Planes)
	}
}

func TestLoadWithoutPlanes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "free.yaml")
	data := []byte("name: free\nbodies:\n  - shape: ball\n    y: 10\n    size: 1\n    elasticity: 0\n")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if len(cfg.Planes) != 0 {
		t.Errorf("file declares no planes, got %+v", cfg.Planes)
	}
	if cfg.Bodies[0].Elasticity != 0 {
		t.Errorf("explicit elasticity 0 should be kept, got %v", cfg.Bodies[0].Elasticity)
	}
}

func TestLoadWithoutBodies(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.yaml")
	if err := os.WriteFile(path, []byte("name: empty\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); !errors.Is(err, dynamo.ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestLoadInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	data := []byte("bodies:\n  - y: 1\nplanes:\n  - axis: w\n    direction: 1\n")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); !errors.Is(err, dynamo.ErrInvalidAxis) {
		t.Errorf("expected ErrInvalidAxis, got %v", err)
	}
}

func TestGetPreset(t *testing.T) {
	cfg := GetPreset("elastic")
	if cfg == nil {
		t.Fatal("expected preset, got nil")
	}
	if cfg.Bodies[0].Elasticity != 1 {
		t.Errorf("expected elasticity 1, got %f", cfg.Bodies[0].Elasticity)
	}

	cfg.Bodies[0].Elasticity = 0.1
	if again := GetPreset("elastic"); again.Bodies[0].Elasticity != 1 {
		t.Error("presets must not share state between calls")
	}
}

func TestGetPreset_NotFound(t *testing.T) {
	if cfg := GetPreset("nonexistent"); cfg != nil {
		t.Error("expected nil for nonexistent preset")
	}
}

func TestPresetsValid(t *testing.T) {
	names := ListPresets()
	if len(names) == 0 {
		t.Fatal("expected presets")
	}
	for _, name := range names {
		if err := GetPreset(name).Validate(); err != nil {
			t.Errorf("preset %s invalid: %v", name, err)
		}
	}
}

func TestClone(t *testing.T) {
	cfg := DefaultConfig()
	cp := cfg.Clone()
	cp.Bodies[0].Y = 1
	cp.Planes[0].Pos = 9
	if cfg.Bodies[0].Y != DefaultDropHeight || cfg.Planes[0].Pos != 0 {
		t.Error("Clone shares slices with the original")
	}
}

func TestLoadEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte("REBOUND_DATA=/tmp/runs\n"), 0644); err != nil {
		t.Fatal(err)
	}

	t.Setenv(EnvDataDir, "")
	os.Unsetenv(EnvDataDir)
	t.Setenv(EnvLogLevel, "debug")

	env, err := LoadEnv(path, filepath.Join(dir, "missing.env"))
	if err != nil {
		t.Fatalf("LoadEnv failed: %v", err)
	}
	if env.DataDir != "/tmp/runs" {
		t.Errorf("DataDir = %q, want /tmp/runs", env.DataDir)
	}
	if env.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want debug", env.LogLevel)
	}
	if env.Addr != ":8080" {
		t.Errorf("Addr = %q, want :8080", env.Addr)
	}
}
