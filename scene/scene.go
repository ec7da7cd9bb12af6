package scene

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"

	"meadow/core"
	"meadow/lsystem"
	"meadow/math"
)

// Independent random streams derived from the scene seed.
const (
	dustStream  = 0xd057
	grassStream = 0x6a55
)

// MeadowOptions configures a Meadow.
type MeadowOptions struct {
	Seed    uint64
	Grammar *lsystem.Config
	Grid    GridOptions
	// CylinderSegments and SphereSubdivisions size the plant templates.
	CylinderSegments   int
	SphereSubdivisions int
	Dust               DustParams
	Grass              GrassParams
	// Height may be nil; grass then stays where it spawns.
	Height HeightField

	CameraPosition  math.Vec3
	CameraDirection math.Vec3
	FloorSize       float32
	Logger          *slog.Logger
}

func DefaultMeadowOptions(grammar *lsystem.Config) MeadowOptions {
	return MeadowOptions{
		Seed:               1,
		Grammar:            grammar,
		Grid:               DefaultGridOptions(),
		CylinderSegments:   6,
		SphereSubdivisions: 1,
		Dust:               DefaultDustParams(),
		Grass:              DefaultGrassParams(),
		CameraPosition:     math.NewVec3(-9.5, 10, -9.5),
		CameraDirection:    math.NewVec3(1, -1, 1),
		FloorSize:          100,
	}
}

// Meadow owns everything that follows the viewpoint: the camera and its
// controllers, the plant grid, dust and grass.
type Meadow struct {
	Camera      *Camera
	Controllers *ControllerSet
	Plants      *PlantGrid
	Factory     *PlantFactory
	Dust        *DustField
	Grass       *GrassField
	Height      HeightField

	// Shared meshes drawn with per-instance transforms.
	Floor     *Mesh
	DustMesh  *Mesh
	BladeMesh *Mesh
	SkyColor  core.Color

	logger *slog.Logger
}

func NewMeadow(opts MeadowOptions) *Meadow {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Grid.Logger == nil {
		opts.Grid.Logger = opts.Logger
	}
	converter := NewShapeConverter(opts.CylinderSegments, opts.SphereSubdivisions)
	factory := NewPlantFactory(opts.Grammar, opts.Seed, converter, opts.Logger)

	camera := NewCamera(opts.CameraPosition, opts.CameraDirection)
	iso := NewIsometricController()
	iso.Direction = camera.Direction
	controllers := NewControllerSet(iso, NewFreeController())
	iso.Activate(camera)

	return &Meadow{
		Camera:      camera,
		Controllers: controllers,
		Plants:      NewPlantGrid(factory, opts.Grid),
		Factory:     factory,
		Dust:        NewDustField(opts.Dust, rand.New(rand.NewPCG(opts.Seed, dustStream))),
		Grass:       NewGrassField(opts.Grass, rand.New(rand.NewPCG(opts.Seed, grassStream))),
		Height:      opts.Height,
		Floor:       CreatePlane(opts.FloorSize, opts.FloorSize, 1, core.ColorSoil),
		DustMesh:    CreateQuad(core.ColorDust),
		BladeMesh:   CreateBlade(core.ColorGrass),
		SkyColor:    core.Color{R: 0.62, G: 0.74, B: 0.86, A: 1},
		logger:      opts.Logger,
	}
}

// Frame reports what one Update changed.
type Frame struct {
	Plants GridMutations
	// Ground is where the camera ray meets y = 0, valid if HasGround.
	Ground    math.Vec3
	HasGround bool
}

// Command is an explicit request applied at the start of a frame, before
// the camera snapshot is taken.
type Command interface {
	apply(m *Meadow, f *Frame) error
}

// ReloadGrammar swaps the plant grammar and regenerates every plant.
type ReloadGrammar struct {
	Config *lsystem.Config
}

func (c ReloadGrammar) apply(m *Meadow, f *Frame) error {
	if c.Config == nil {
		return fmt.Errorf("reload grammar: nil config")
	}
	m.Factory.SetConfig(c.Config)
	evicted := m.Plants.Reset()
	f.Plants.Evicted = append(f.Plants.Evicted, evicted.Evicted...)
	m.logger.Info("grammar reloaded", "axiom", c.Config.Axiom, "iterations", c.Config.Iterations, "evicted", len(evicted.Evicted))
	return nil
}

// SelectController switches the camera controller.
type SelectController struct {
	Kind ControllerKind
}

func (c SelectController) apply(m *Meadow, _ *Frame) error {
	if err := m.Controllers.Select(c.Kind, m.Camera); err != nil {
		return err
	}
	m.logger.Info("camera controller selected", "kind", c.Kind)
	return nil
}

// Update runs one frame: commands, camera control, then plant streaming,
// dust and grass against a single camera snapshot. in may be nil.
func (m *Meadow) Update(ctx context.Context, dt float32, in Input, cmds ...Command) Frame {
	var f Frame
	for _, c := range cmds {
		if err := c.apply(m, &f); err != nil {
			m.logger.Warn("command failed", "err", err)
		}
	}
	if in != nil {
		m.Controllers.Update(m.Camera, in, dt)
	}

	ray := m.Camera.Ray()
	f.Ground, f.HasGround = GroundIntersection(ray)

	mut := m.Plants.Refresh(ctx, ray)
	f.Plants.Inserted = append(f.Plants.Inserted, mut.Inserted...)
	f.Plants.Evicted = append(f.Plants.Evicted, mut.Evicted...)

	// without a ground point the recyclers gather around the origin
	lookAt := f.Ground.XZ()
	m.Dust.Update(dt, lookAt, ray.Direction.XZ())
	m.Grass.Update(lookAt, m.Height)
	return f
}

// FloorTransform keeps the finite floor mesh under the look-at point,
// snapped to the plant spacing so it does not swim.
func (m *Meadow) FloorTransform(f Frame) math.Mat4 {
	key := m.Plants.Snap(f.Ground)
	s := float32(m.Plants.spacing)
	return math.Mat4Translation(math.NewVec3(float32(key.X)*s, 0, float32(key.Z)*s))
}

// Close stops background plant generation.
func (m *Meadow) Close() error {
	return m.Plants.Close()
}
