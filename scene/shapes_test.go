package scene

import (
	"testing"

	"meadow/core"
	"meadow/lsystem"
	"meadow/math"

	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCylinderTemplate(t *testing.T) {
	tpl := CylinderTemplate(6)
	assert.Len(t, tpl.Positions, 14)
	assert.Len(t, tpl.Indices, 72)
	for _, p := range tpl.Positions {
		assert.LessOrEqual(t, math32.Hypot(p.X, p.Z), float32(1.0001))
		assert.InDelta(t, 0.5, math32.Abs(p.Y), 1e-6)
	}
	for _, i := range tpl.Indices {
		assert.Less(t, i, uint32(len(tpl.Positions)))
	}
	// fewer than three segments is clamped
	assert.Len(t, CylinderTemplate(1).Positions, 8)
}

func TestIcosphereTemplate(t *testing.T) {
	base := IcosphereTemplate(0)
	assert.Len(t, base.Positions, 12)
	assert.Len(t, base.Indices, 60)

	sub := IcosphereTemplate(1)
	assert.Len(t, sub.Positions, 42)
	assert.Len(t, sub.Indices, 240)
	for _, p := range sub.Positions {
		assert.InDelta(t, 1, p.Length(), 1e-5)
	}
}

func TestTemplateWindingFacesOutward(t *testing.T) {
	cases := []struct {
		name string
		tpl  Template
	}{
		{"cylinder6", CylinderTemplate(6)},
		{"cylinder8", CylinderTemplate(8)},
		{"icosphere0", IcosphereTemplate(0)},
		{"icosphere1", IcosphereTemplate(1)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Zero(t, len(tc.tpl.Indices)%3)
			for f := 0; f < len(tc.tpl.Indices); f += 3 {
				a := tc.tpl.Positions[tc.tpl.Indices[f]]
				b := tc.tpl.Positions[tc.tpl.Indices[f+1]]
				c := tc.tpl.Positions[tc.tpl.Indices[f+2]]
				normal := b.Sub(a).Cross(c.Sub(a))
				centroid := a.Add(b).Add(c).Div(3)
				assert.Greater(t, normal.Dot(centroid), float32(0), "triangle %d", f/3)
			}
		})
	}
}

func TestShapeToMeshLine(t *testing.T) {
	c := NewShapeConverter(6, 1)
	line := lsystem.Line{Start: math.Vec3Zero, End: math.NewVec3(0, 2, 0), Width: 5, Color: core.ColorBark}

	vertices, indices, ok := c.ShapeToMesh(line, 100)
	require.True(t, ok)
	assert.Len(t, vertices, len(c.Cylinder.Positions))
	assert.Len(t, indices, len(c.Cylinder.Indices))
	for _, v := range vertices {
		assert.Equal(t, core.ColorBark, v.Color)
		assert.GreaterOrEqual(t, v.Position.Y, float32(-1e-5))
		assert.LessOrEqual(t, v.Position.Y, float32(2+1e-5))
		// radius is width * length * 0.01
		assert.LessOrEqual(t, math32.Hypot(v.Position.X, v.Position.Z), float32(0.1+1e-5))
	}
	for _, i := range indices {
		assert.GreaterOrEqual(t, i, uint32(100))
		assert.Less(t, i, uint32(100+len(vertices)))
	}
}

func TestShapeToMeshOrientation(t *testing.T) {
	cases := []struct {
		name string
		end  math.Vec3
	}{
		{"down", math.NewVec3(0, -1, 0)},
		{"sideways", math.NewVec3(3, 0, 0)},
		{"diagonal", math.NewVec3(1, 1, -1)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			start := math.NewVec3(1, 1, 1)
			line := lsystem.Line{Start: start, End: start.Add(tc.end), Width: 1}
			m, ok := LineTransform(line)
			require.True(t, ok)
			// the template's cap centres land on the line's end points
			assert.True(t, m.MulVec3(math.NewVec3(0, -0.5, 0)).ApproxEqual(line.Start, 1e-4))
			assert.True(t, m.MulVec3(math.NewVec3(0, 0.5, 0)).ApproxEqual(line.End, 1e-4))
		})
	}
}

func TestShapeToMeshDegenerateLine(t *testing.T) {
	c := NewShapeConverter(6, 1)
	p := math.NewVec3(1, 2, 3)
	vertices, indices, ok := c.ShapeToMesh(lsystem.Line{Start: p, End: p, Width: 1}, 0)
	assert.False(t, ok)
	assert.Empty(t, vertices)
	assert.Empty(t, indices)
}

func TestShapeToMeshSphere(t *testing.T) {
	c := NewShapeConverter(6, 1)
	center := math.NewVec3(1, 2, 3)
	vertices, indices, ok := c.ShapeToMesh(lsystem.Sphere{Center: center, Radius: 0.25, Color: core.ColorLeaf}, 7)
	require.True(t, ok)
	assert.Len(t, vertices, 42)
	assert.Equal(t, uint32(7), indices[0]-c.Sphere.Indices[0])
	for _, v := range vertices {
		assert.InDelta(t, 0.25, v.Position.Distance(center), 1e-5)
		assert.Equal(t, core.ColorLeaf, v.Color)
	}
}

func TestBuildPlantMesh(t *testing.T) {
	cfg := lsystem.NewConfig("F", 3)
	cfg.AddRule('F', lsystem.Production{Weight: 1, Out: "F[+F]F[-FL]"})
	shapes, stats := lsystem.Build(cfg, lsystem.NewRand(1))

	c := NewShapeConverter(6, 1)
	shapes = append(shapes, lsystem.Line{Start: math.Vec3One, End: math.Vec3One})
	mesh, skipped := c.BuildPlantMesh("plant", shapes)

	assert.Equal(t, 1, skipped)
	want := stats.Segments*len(c.Cylinder.Positions) + stats.Spheres*len(c.Sphere.Positions)
	assert.Len(t, mesh.Vertices, want)
	assert.True(t, mesh.IndicesInRange())
	assert.True(t, mesh.HasLocalAABB)
	assert.GreaterOrEqual(t, mesh.LocalAABB.Max.Y, float32(1))
}
