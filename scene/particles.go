package scene

import (
	"math/rand/v2"

	"meadow/core"
	"meadow/math"

	"github.com/chewxy/math32"
)

// DustParams tunes the floating dust around the look-at point.
type DustParams struct {
	Count int
	// Radius is the planar distance from the look-at point beyond which a
	// mote respawns.
	Radius float32
	// Scale is the uniform spawn scale of a mote.
	Scale float32
	// Band is the height of the spawn slab centred on y = 0.
	Band float32
	// Rise is the upward drift in units per second.
	Rise float32
	// Drift is the planar drift along the camera's ground forward vector.
	Drift float32
	// Shrink is the fraction of Scale lost per second.
	Shrink float32
	// Spin is the idle yaw in radians per second.
	Spin float32
}

func DefaultDustParams() DustParams {
	return DustParams{
		Count:  60,
		Radius: 7,
		Scale:  0.0085,
		Band:   1,
		Rise:   0.1,
		Drift:  0.05,
		Shrink: 0.2,
		Spin:   3,
	}
}

// DustField is a fixed pool of dust motes recycled around the viewpoint.
type DustField struct {
	Params    DustParams
	Instances []math.Mat4
	rng       *rand.Rand
}

func NewDustField(params DustParams, rng *rand.Rand) *DustField {
	d := &DustField{
		Params:    params,
		Instances: make([]math.Mat4, params.Count),
		rng:       rng,
	}
	// start out of range so the first update spawns every mote
	far := core.NewTransform()
	far.Scale = math.Splat(params.Scale)
	far.Position = math.Splat(-1000)
	for i := range d.Instances {
		d.Instances[i] = far.GetMatrix()
	}
	return d
}

// Update ages every mote by dt (spin, rise, drift, shrink) and respawns the
// ones that left the radius around lookAt or shrank away. forward is the
// camera direction projected on the ground.
func (d *DustField) Update(dt float32, lookAt, forward math.Vec2) {
	p := d.Params
	idle := math.QuaternionFromAxisAngle(math.Vec3Up, p.Spin*dt)
	drift := forward.Normalize().Mul(p.Drift * dt).XZ(p.Rise * dt)
	shrink := math.Splat(p.Scale * p.Shrink * dt)

	for i := range d.Instances {
		t := core.TransformFromMatrix(d.Instances[i])
		t.Rotation = t.Rotation.Mul(idle).Normalize()
		t.Position = t.Position.Add(drift)
		t.Scale = t.Scale.Sub(shrink)

		if t.Position.XZ().Distance(lookAt) > p.Radius || t.Scale.X <= 0 {
			t = d.spawn(lookAt, t.Rotation)
		}
		d.Instances[i] = t.GetMatrix()
	}
}

func (d *DustField) spawn(lookAt math.Vec2, rotation math.Quaternion) core.Transform {
	p := d.Params
	dist := d.rng.Float32() * p.Radius
	angle := d.rng.Float32() * 2 * math32.Pi
	ground := lookAt.Add(math.Vec2FromAngle(angle).Mul(dist))
	y := (d.rng.Float32() - 0.5) * p.Band
	yaw := math.QuaternionFromAxisAngle(math.Vec3Up, d.rng.Float32()*2*math32.Pi)
	return core.Transform{
		Position: ground.XZ(y),
		Rotation: rotation.Mul(yaw).Normalize(),
		Scale:    math.Splat(p.Scale),
	}
}

// GrassParams tunes the grass ring at the edge of the view.
type GrassParams struct {
	Count int
	// Range is the planar radius beyond which a blade respawns.
	Range float32
	// Inner is the inner edge of the respawn ring as a fraction of Range.
	Inner float32
	// Iterations and Step drive the uphill nudge on the height field.
	Iterations int
	Step       float32
	BladeScale math.Vec3
	// FollowTerrain lifts blades to the sampled height times TerrainHeight.
	// Off, blades stay at y = 0.
	FollowTerrain bool
	TerrainHeight float32
}

func DefaultGrassParams() GrassParams {
	return GrassParams{
		Count:         625,
		Range:         2.75,
		Inner:         0.9,
		Iterations:    9,
		Step:          0.01,
		BladeScale:    math.NewVec3(0.008, 0.1, 1),
		TerrainHeight: 1,
	}
}

// GrassField is a fixed pool of blades kept within Range of the viewpoint.
// Blades respawn on a thin ring at the edge so new grass appears where the
// view is heading rather than under it.
type GrassField struct {
	Params    GrassParams
	Instances []math.Mat4
	rng       *rand.Rand
}

func NewGrassField(params GrassParams, rng *rand.Rand) *GrassField {
	g := &GrassField{
		Params:    params,
		Instances: make([]math.Mat4, params.Count),
		rng:       rng,
	}
	far := core.NewTransform()
	far.Scale = params.BladeScale
	far.Position = math.NewVec3(1000, 0, 0)
	for i := range g.Instances {
		g.Instances[i] = far.GetMatrix()
	}
	return g
}

// Update respawns blades further than Range from lookAt. hf may be nil.
func (g *GrassField) Update(lookAt math.Vec2, hf HeightField) {
	p := g.Params
	for i := range g.Instances {
		pos := g.Instances[i].Translation()
		if pos.XZ().Distance(lookAt) <= p.Range {
			continue
		}
		t := core.TransformFromMatrix(g.Instances[i])

		dist := (p.Inner + g.rng.Float32()*(1-p.Inner)) * p.Range
		angle := g.rng.Float32() * 2 * math32.Pi
		ground := lookAt.Add(math.Vec2FromAngle(angle).Mul(dist))

		var y float32
		if hf != nil {
			// a climb that leaves the ring would respawn next frame
			if climbed := ClimbHeightField(hf, ground, p.Iterations, p.Step); climbed.Distance(lookAt) <= p.Range {
				ground = climbed
			}
			if p.FollowTerrain {
				y = hf.Sample(ground.X, ground.Y) * p.TerrainHeight
			}
		}
		t.Position = ground.XZ(y)
		g.Instances[i] = t.GetMatrix()
	}
}
