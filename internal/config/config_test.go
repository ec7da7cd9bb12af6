package config

import (
	"os"
	"path/filepath"
	"testing"

	"meadow/lsystem"
	"meadow/scene"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	kind, err := cfg.ControllerKind()
	require.NoError(t, err)
	assert.Equal(t, scene.ControllerIsometric, kind)
}

func TestLoadEmptyPath(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadOverlaysDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "meadow.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
seed = 42
grammar = "grammars/bush.yaml"

[camera]
controller = "free"
position = [0.0, 2.0, -5.0]

[plants]
count = 6
workers = 0

[grass]
follow_terrain = true

[heightmap]
path = "/abs/height.png"
blur = 1.5
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), cfg.Seed)
	assert.Equal(t, filepath.Join(dir, "grammars", "bush.yaml"), cfg.Grammar)
	assert.Equal(t, "/abs/height.png", cfg.Heightmap.Path)
	assert.Equal(t, 1.5, cfg.Heightmap.Blur)
	assert.Equal(t, [3]float32{0, 2, -5}, cfg.Camera.Position)
	assert.Equal(t, 6, cfg.Plants.Count)
	assert.Equal(t, 0, cfg.Plants.Workers)
	// untouched keys keep their defaults
	assert.Equal(t, 3, cfg.Plants.Spacing)
	assert.Equal(t, 1280, cfg.Window.Width)
	assert.True(t, cfg.Grass.FollowTerrain)
	assert.Equal(t, scene.DefaultGrassParams().Range, cfg.Grass.Range)

	kind, err := cfg.ControllerKind()
	require.NoError(t, err)
	assert.Equal(t, scene.ControllerFree, kind)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.ErrorContains(t, err, "open config")

	tests := []struct {
		name string
		data string
		want string
	}{
		{"syntax", `seed = `, "parse config"},
		{"unknown key", "[plants]\nrows = 3", "parse config"},
		{"controller", "[camera]\ncontroller = \"orbit\"", "unknown camera controller"},
		{"direction", "[camera]\ndirection = [0.0, 0.0, 0.0]", "camera direction"},
		{"spacing", "[plants]\nspacing = 0", "count and spacing"},
		{"segments", "[plants]\ncylinder_segments = 2", "cylinder segments"},
		{"inner", "[grass]\ninner = 1.0", "grass inner"},
		{"scale", "[heightmap]\nscale = 0.0", "heightmap scale"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse([]byte(tc.data))
			require.Error(t, err)
			assert.ErrorContains(t, err, tc.want)
		})
	}

	_, err = Parse([]byte("[window]\nwidth = -1"))
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestMeadowOptions(t *testing.T) {
	cfg, err := Parse([]byte(`
seed = 7
[plants]
count = 2
spacing = 5
hysteresis = 0.25
[dust]
count = 10
[grass]
blade_scale = [0.01, 0.2, 1.0]
`))
	require.NoError(t, err)

	grammar := lsystem.NewConfig("F", 1)
	opts := cfg.MeadowOptions(grammar, nil)
	assert.Equal(t, uint64(7), opts.Seed)
	assert.Same(t, grammar, opts.Grammar)
	assert.Equal(t, 2, opts.Grid.Count)
	assert.Equal(t, 5, opts.Grid.Spacing)
	assert.Equal(t, float32(0.25), opts.Grid.Hysteresis)
	assert.Equal(t, 10, opts.Dust.Count)
	assert.Equal(t, scene.DefaultDustParams().Radius, opts.Dust.Radius)
	assert.Equal(t, float32(0.2), opts.Grass.BladeScale.Y)
	assert.Equal(t, float32(-9.5), opts.CameraPosition.X)
}

func TestHeightFieldFromNoise(t *testing.T) {
	cfg := Default()
	cfg.Heightmap.NoiseSize = 16
	cfg.Heightmap.NoiseCells = 2

	hf, err := cfg.HeightField()
	require.NoError(t, err)
	v := hf.Sample(1.3, 2.7)
	assert.GreaterOrEqual(t, v, float32(0))
	assert.LessOrEqual(t, v, float32(1))

	cfg.Heightmap.Path = filepath.Join(t.TempDir(), "nope.png")
	_, err = cfg.HeightField()
	assert.Error(t, err)
}

func TestLoadBundledConfig(t *testing.T) {
	cfg, err := Load(filepath.Join("..", "..", "assets", "meadow.toml"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("..", "..", "assets", "plant.json"), cfg.Grammar)
	assert.Equal(t, 4, cfg.Plants.Workers)
	assert.Equal(t, float32(0.1), cfg.Plants.Hysteresis)
}
