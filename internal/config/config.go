// Package config loads the meadow viewer settings from TOML.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"meadow/lsystem"
	"meadow/math"
	"meadow/scene"

	"github.com/pelletier/go-toml/v2"
)

var ErrInvalid = errors.New("invalid config")

// Config captures everything cmd/meadow needs to build a scene.
type Config struct {
	Seed    uint64 `toml:"seed"`
	Grammar string `toml:"grammar"` // JSON or YAML grammar file
	Watch   bool   `toml:"watch"`   // reload the grammar when the file changes

	Window    WindowConfig    `toml:"window"`
	Camera    CameraConfig    `toml:"camera"`
	Plants    PlantsConfig    `toml:"plants"`
	Dust      DustConfig      `toml:"dust"`
	Grass     GrassConfig     `toml:"grass"`
	Heightmap HeightmapConfig `toml:"heightmap"`
}

type WindowConfig struct {
	Width  int    `toml:"width"`
	Height int    `toml:"height"`
	Title  string `toml:"title"`
	VSync  bool   `toml:"vsync"`
}

type CameraConfig struct {
	Position   [3]float32 `toml:"position"`
	Direction  [3]float32 `toml:"direction"`
	Controller string     `toml:"controller"` // "isometric" or "free"
}

type PlantsConfig struct {
	Count              int     `toml:"count"`   // window width in cells
	Spacing            int     `toml:"spacing"` // world units between plants
	Workers            int     `toml:"workers"` // 0 generates inline
	Hysteresis         float32 `toml:"hysteresis"`
	CylinderSegments   int     `toml:"cylinder_segments"`
	SphereSubdivisions int     `toml:"sphere_subdivisions"`
}

type DustConfig struct {
	Count  int     `toml:"count"`
	Radius float32 `toml:"radius"`
	Scale  float32 `toml:"scale"`
	Band   float32 `toml:"band"`
	Rise   float32 `toml:"rise"`
	Drift  float32 `toml:"drift"`
	Shrink float32 `toml:"shrink"`
	Spin   float32 `toml:"spin"`
}

type GrassConfig struct {
	Count         int        `toml:"count"`
	Range         float32    `toml:"range"`
	Inner         float32    `toml:"inner"`
	Iterations    int        `toml:"iterations"`
	Step          float32    `toml:"step"`
	BladeScale    [3]float32 `toml:"blade_scale"`
	FollowTerrain bool       `toml:"follow_terrain"`
	TerrainHeight float32    `toml:"terrain_height"`
}

// HeightmapConfig selects the grass height field. Without a path a
// tileable noise image is generated from the seed.
type HeightmapConfig struct {
	Path       string  `toml:"path"`
	Scale      float32 `toml:"scale"`
	Intensity  float32 `toml:"intensity"`
	Blur       float64 `toml:"blur"`
	NoiseSize  int     `toml:"noise_size"`
	NoiseCells int     `toml:"noise_cells"`
}

func Default() *Config {
	grid := scene.DefaultGridOptions()
	dust := scene.DefaultDustParams()
	grass := scene.DefaultGrassParams()
	return &Config{
		Seed:    1,
		Grammar: "plant.json",
		Watch:   true,
		Window: WindowConfig{
			Width:  1280,
			Height: 720,
			Title:  "meadow",
			VSync:  true,
		},
		Camera: CameraConfig{
			Position:   [3]float32{-9.5, 10, -9.5},
			Direction:  [3]float32{1, -1, 1},
			Controller: scene.ControllerIsometric.String(),
		},
		Plants: PlantsConfig{
			Count:              grid.Count,
			Spacing:            grid.Spacing,
			Workers:            4,
			Hysteresis:         0.1,
			CylinderSegments:   6,
			SphereSubdivisions: 1,
		},
		Dust: DustConfig{
			Count:  dust.Count,
			Radius: dust.Radius,
			Scale:  dust.Scale,
			Band:   dust.Band,
			Rise:   dust.Rise,
			Drift:  dust.Drift,
			Shrink: dust.Shrink,
			Spin:   dust.Spin,
		},
		Grass: GrassConfig{
			Count:         grass.Count,
			Range:         grass.Range,
			Inner:         grass.Inner,
			Iterations:    grass.Iterations,
			Step:          grass.Step,
			BladeScale:    [3]float32{grass.BladeScale.X, grass.BladeScale.Y, grass.BladeScale.Z},
			TerrainHeight: grass.TerrainHeight,
		},
		Heightmap: HeightmapConfig{
			Scale:      0.1,
			Intensity:  1,
			NoiseSize:  256,
			NoiseCells: 8,
		},
	}
}

// Load reads a TOML file over the defaults. An empty path returns the
// defaults. Relative grammar and heightmap paths are resolved against the
// directory of the config file. Unknown keys are rejected.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	if err := cfg.decode(data); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.resolve(filepath.Dir(path))

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

// Parse decodes TOML data over the defaults without touching paths.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := cfg.decode(data); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

func (c *Config) decode(data []byte) error {
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	return dec.Decode(c)
}

func (c *Config) resolve(dir string) {
	if c.Grammar != "" && !filepath.IsAbs(c.Grammar) {
		c.Grammar = filepath.Join(dir, c.Grammar)
	}
	if c.Heightmap.Path != "" && !filepath.IsAbs(c.Heightmap.Path) {
		c.Heightmap.Path = filepath.Join(dir, c.Heightmap.Path)
	}
}

func (c *Config) Validate() error {
	if c.Grammar == "" {
		return fmt.Errorf("%w: grammar path is required", ErrInvalid)
	}
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return fmt.Errorf("%w: window size must be positive", ErrInvalid)
	}
	if _, err := c.ControllerKind(); err != nil {
		return err
	}
	if c.direction().LengthSqr() == 0 {
		return fmt.Errorf("%w: camera direction must be non-zero", ErrInvalid)
	}
	if c.Plants.Count < 1 || c.Plants.Spacing < 1 {
		return fmt.Errorf("%w: plants count and spacing must be at least 1", ErrInvalid)
	}
	if c.Plants.Workers < 0 || c.Plants.Hysteresis < 0 {
		return fmt.Errorf("%w: plants workers and hysteresis must not be negative", ErrInvalid)
	}
	if c.Plants.CylinderSegments < 3 || c.Plants.SphereSubdivisions < 0 {
		return fmt.Errorf("%w: need at least 3 cylinder segments", ErrInvalid)
	}
	if c.Dust.Count < 0 || c.Dust.Radius <= 0 || c.Dust.Scale <= 0 {
		return fmt.Errorf("%w: dust count, radius and scale", ErrInvalid)
	}
	if c.Grass.Count < 0 || c.Grass.Range <= 0 {
		return fmt.Errorf("%w: grass count and range", ErrInvalid)
	}
	if c.Grass.Inner < 0 || c.Grass.Inner >= 1 {
		return fmt.Errorf("%w: grass inner must be in [0, 1)", ErrInvalid)
	}
	if c.Grass.Iterations < 0 || c.Grass.Step < 0 {
		return fmt.Errorf("%w: grass iterations and step must not be negative", ErrInvalid)
	}
	if c.Heightmap.Scale <= 0 {
		return fmt.Errorf("%w: heightmap scale must be positive", ErrInvalid)
	}
	if c.Heightmap.Path == "" && (c.Heightmap.NoiseSize < 1 || c.Heightmap.NoiseCells < 1) {
		return fmt.Errorf("%w: noise size and cells must be at least 1", ErrInvalid)
	}
	return nil
}

// ControllerKind maps the camera.controller name.
func (c *Config) ControllerKind() (scene.ControllerKind, error) {
	for _, k := range []scene.ControllerKind{scene.ControllerIsometric, scene.ControllerFree} {
		if c.Camera.Controller == k.String() {
			return k, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown camera controller %q", ErrInvalid, c.Camera.Controller)
}

func (c *Config) direction() math.Vec3 {
	d := c.Camera.Direction
	return math.NewVec3(d[0], d[1], d[2])
}

// HeightField loads the configured heightmap, or renders noise when no
// path is set.
func (c *Config) HeightField() (*scene.ImageHeightField, error) {
	h := c.Heightmap
	if h.Path != "" {
		return scene.LoadHeightField(h.Path, h.Scale, h.Intensity, h.Blur)
	}
	return scene.NewImageHeightField(scene.NoiseImage(h.NoiseSize, h.NoiseCells, c.Seed), h.Scale, h.Intensity), nil
}

// MeadowOptions translates the config into scene options.
func (c *Config) MeadowOptions(grammar *lsystem.Config, height scene.HeightField) scene.MeadowOptions {
	opts := scene.DefaultMeadowOptions(grammar)
	opts.Seed = c.Seed
	opts.Height = height

	opts.Grid.Count = c.Plants.Count
	opts.Grid.Spacing = c.Plants.Spacing
	opts.Grid.Workers = c.Plants.Workers
	opts.Grid.Hysteresis = c.Plants.Hysteresis
	opts.CylinderSegments = c.Plants.CylinderSegments
	opts.SphereSubdivisions = c.Plants.SphereSubdivisions

	opts.Dust = scene.DustParams{
		Count:  c.Dust.Count,
		Radius: c.Dust.Radius,
		Scale:  c.Dust.Scale,
		Band:   c.Dust.Band,
		Rise:   c.Dust.Rise,
		Drift:  c.Dust.Drift,
		Shrink: c.Dust.Shrink,
		Spin:   c.Dust.Spin,
	}
	b := c.Grass.BladeScale
	opts.Grass = scene.GrassParams{
		Count:         c.Grass.Count,
		Range:         c.Grass.Range,
		Inner:         c.Grass.Inner,
		Iterations:    c.Grass.Iterations,
		Step:          c.Grass.Step,
		BladeScale:    math.NewVec3(b[0], b[1], b[2]),
		FollowTerrain: c.Grass.FollowTerrain,
		TerrainHeight: c.Grass.TerrainHeight,
	}

	p := c.Camera.Position
	opts.CameraPosition = math.NewVec3(p[0], p[1], p[2])
	opts.CameraDirection = c.direction()
	return opts
}
