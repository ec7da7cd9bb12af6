package scene

import (
	"meadow/core"
	"meadow/math"

	"github.com/chewxy/math32"
)

// Template is unit geometry stamped out once per draw primitive.
type Template struct {
	Positions []math.Vec3
	Indices   []uint32
}

// Instance transforms the template into world space, paints it and offsets
// its indices by vertexOffset.
func (t Template) Instance(color core.Color, m math.Mat4, vertexOffset uint32) ([]core.Vertex, []uint32) {
	vertices := make([]core.Vertex, len(t.Positions))
	for i, p := range t.Positions {
		vertices[i] = core.Vertex{Position: m.MulVec3(p), Color: color}
	}
	indices := make([]uint32, len(t.Indices))
	for i, idx := range t.Indices {
		indices[i] = idx + vertexOffset
	}
	return vertices, indices
}

// CylinderTemplate is an upright capped cylinder of radius 1 and height 1,
// centred on the origin.
func CylinderTemplate(segments int) Template {
	if segments < 3 {
		segments = 3
	}

	positions := make([]math.Vec3, 0, 2*segments+2)
	for i := 0; i < segments; i++ {
		theta := float32(i) * 2 * math32.Pi / float32(segments)
		sinT, cosT := math32.Sincos(theta)
		positions = append(positions,
			math.Vec3{X: cosT, Y: -0.5, Z: sinT},
			math.Vec3{X: cosT, Y: 0.5, Z: sinT},
		)
	}
	topCenter := uint32(len(positions))
	positions = append(positions, math.Vec3{Y: 0.5})
	botCenter := uint32(len(positions))
	positions = append(positions, math.Vec3{Y: -0.5})

	indices := make([]uint32, 0, segments*12)
	for i := 0; i < segments; i++ {
		j := (i + 1) % segments
		bi, ti := uint32(2*i), uint32(2*i+1)
		bj, tj := uint32(2*j), uint32(2*j+1)
		indices = append(indices,
			bi, ti, bj,
			bj, ti, tj,
			topCenter, tj, ti,
			botCenter, bi, bj,
		)
	}
	return Template{Positions: positions, Indices: indices}
}

// IcosphereTemplate is a unit sphere built by subdividing an icosahedron.
func IcosphereTemplate(subdivisions int) Template {
	t := (1 + math32.Sqrt(5)) / 2
	positions := []math.Vec3{
		{X: -1, Y: t}, {X: 1, Y: t}, {X: -1, Y: -t}, {X: 1, Y: -t},
		{Y: -1, Z: t}, {Y: 1, Z: t}, {Y: -1, Z: -t}, {Y: 1, Z: -t},
		{X: t, Z: -1}, {X: t, Z: 1}, {X: -t, Z: -1}, {X: -t, Z: 1},
	}
	for i := range positions {
		positions[i] = positions[i].Normalize()
	}
	indices := []uint32{
		0, 11, 5, 0, 5, 1, 0, 1, 7, 0, 7, 10, 0, 10, 11,
		1, 5, 9, 5, 11, 4, 11, 10, 2, 10, 7, 6, 7, 1, 8,
		3, 9, 4, 3, 4, 2, 3, 2, 6, 3, 6, 8, 3, 8, 9,
		4, 9, 5, 2, 4, 11, 6, 2, 10, 8, 6, 7, 9, 8, 1,
	}

	for s := 0; s < subdivisions; s++ {
		midpoints := make(map[[2]uint32]uint32)
		midpoint := func(a, b uint32) uint32 {
			key := [2]uint32{min(a, b), max(a, b)}
			if idx, ok := midpoints[key]; ok {
				return idx
			}
			idx := uint32(len(positions))
			positions = append(positions, positions[a].Add(positions[b]).Normalize())
			midpoints[key] = idx
			return idx
		}

		next := make([]uint32, 0, len(indices)*4)
		for f := 0; f < len(indices); f += 3 {
			a, b, c := indices[f], indices[f+1], indices[f+2]
			ab, bc, ca := midpoint(a, b), midpoint(b, c), midpoint(c, a)
			next = append(next,
				a, ab, ca,
				b, bc, ab,
				c, ca, bc,
				ab, bc, ca,
			)
		}
		indices = next
	}
	return Template{Positions: positions, Indices: indices}
}

// CreatePlane generates a flat ground plane.
func CreatePlane(width, depth float32, subdivisions int, color core.Color) *Mesh {
	if subdivisions < 1 {
		subdivisions = 1
	}

	var vertices []core.Vertex
	var indices []uint32

	halfW := width / 2.0
	halfD := depth / 2.0

	for z := 0; z <= subdivisions; z++ {
		for x := 0; x <= subdivisions; x++ {
			u := float32(x) / float32(subdivisions)
			v := float32(z) / float32(subdivisions)
			vertices = append(vertices, core.Vertex{
				Position: math.Vec3{X: -halfW + u*width, Z: -halfD + v*depth},
				Color:    color,
			})
		}
	}

	for z := 0; z < subdivisions; z++ {
		for x := 0; x < subdivisions; x++ {
			topLeft := uint32(z*(subdivisions+1) + x)
			topRight := topLeft + 1
			bottomLeft := topLeft + uint32(subdivisions+1)
			bottomRight := bottomLeft + 1

			indices = append(indices, topLeft, bottomLeft, topRight)
			indices = append(indices, topRight, bottomLeft, bottomRight)
		}
	}

	return CreateMeshFromData("Plane", vertices, indices)
}
