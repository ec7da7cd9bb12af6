package scene

import (
	"meadow/core"
	"meadow/math"
)

// Mesh holds CPU-side vertex/index data.
// GPU upload is managed by the renderer backend.
type Mesh struct {
	Name     string
	Vertices []core.Vertex
	Indices  []uint32

	// Cached local-space AABB (computed by CreateMeshFromData and Append).
	LocalAABB    core.AABB
	HasLocalAABB bool

	// GPUData is set by the renderer backend (e.g. *opengl.GPUMesh).
	// Do not access directly; use the renderer's API.
	GPUData any
}

func NewMesh(name string) *Mesh {
	return &Mesh{
		Name:     name,
		Vertices: make([]core.Vertex, 0),
		Indices:  make([]uint32, 0),
	}
}

// CreateMeshFromData builds a Mesh and pre-computes its local-space AABB.
func CreateMeshFromData(name string, vertices []core.Vertex, indices []uint32) *Mesh {
	m := &Mesh{Name: name}
	m.Append(vertices, indices)
	return m
}

// VertexCount is the offset the next appended primitive's indices need.
func (m *Mesh) VertexCount() uint32 {
	return uint32(len(m.Vertices))
}

// Append adds vertices and indices that are already offset against the
// current vertex count.
func (m *Mesh) Append(vertices []core.Vertex, indices []uint32) {
	for _, v := range vertices {
		if !m.HasLocalAABB {
			m.LocalAABB = core.AABB{Min: v.Position, Max: v.Position}
			m.HasLocalAABB = true
			continue
		}
		m.LocalAABB = m.LocalAABB.Extend(v.Position)
	}
	m.Vertices = append(m.Vertices, vertices...)
	m.Indices = append(m.Indices, indices...)
}

// IndicesInRange reports whether every index refers to an existing vertex.
func (m *Mesh) IndicesInRange() bool {
	n := uint32(len(m.Vertices))
	for _, i := range m.Indices {
		if i >= n {
			return false
		}
	}
	return true
}

// CreateQuad is a unit quad in the XY plane centred on the origin, used for
// dust motes.
func CreateQuad(color core.Color) *Mesh {
	vertices := []core.Vertex{
		{Position: math.Vec3{X: -0.5, Y: -0.5}, Color: color},
		{Position: math.Vec3{X: 0.5, Y: -0.5}, Color: color},
		{Position: math.Vec3{X: 0.5, Y: 0.5}, Color: color},
		{Position: math.Vec3{X: -0.5, Y: 0.5}, Color: color},
	}
	indices := []uint32{0, 1, 2, 2, 3, 0}
	return CreateMeshFromData("Quad", vertices, indices)
}

// CreateBlade is a unit grass blade: a triangle standing on the origin and
// reaching y = 1, darker at the root.
func CreateBlade(color core.Color) *Mesh {
	root := core.Color{R: color.R * 0.6, G: color.G * 0.6, B: color.B * 0.6, A: color.A}
	vertices := []core.Vertex{
		{Position: math.Vec3{X: -0.5}, Color: root},
		{Position: math.Vec3{X: 0.5}, Color: root},
		{Position: math.Vec3{Y: 1}, Color: color},
	}
	indices := []uint32{0, 1, 2}
	return CreateMeshFromData("Blade", vertices, indices)
}
