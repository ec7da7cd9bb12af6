package scene

import (
	"meadow/core"
	"meadow/lsystem"
	"meadow/math"
)

// minLineLength is the length below which a line has no usable direction.
const minLineLength = 1e-6

// branchRadiusFactor converts a line's width into a cylinder radius per unit
// of line length.
const branchRadiusFactor = 0.01

// ShapeConverter turns turtle primitives into triangle geometry using unit
// templates.
type ShapeConverter struct {
	Cylinder Template
	Sphere   Template
}

func NewShapeConverter(cylinderSegments, sphereSubdivisions int) *ShapeConverter {
	return &ShapeConverter{
		Cylinder: CylinderTemplate(cylinderSegments),
		Sphere:   IcosphereTemplate(sphereSubdivisions),
	}
}

// LineTransform places the unit cylinder along a line. ok is false for
// lines too short to orient.
func LineTransform(l lsystem.Line) (math.Mat4, bool) {
	diff := l.End.Sub(l.Start)
	length := diff.Length()
	if length < minLineLength {
		return math.Mat4{}, false
	}
	radius := l.Width * length * branchRadiusFactor
	rotation := math.QuaternionFromRotationArc(math.Vec3Up, diff.Div(length))
	return math.Mat4FromScaleRotationTranslation(
		math.NewVec3(radius, length, radius),
		rotation,
		l.Start.Add(diff.Mul(0.5)),
	), true
}

// ShapeToMesh converts one primitive. vertexCount is the number of vertices
// already in the destination buffer; returned indices are offset by it.
// Degenerate lines yield ok == false and no geometry.
func (c *ShapeConverter) ShapeToMesh(shape lsystem.Shape, vertexCount uint32) (vertices []core.Vertex, indices []uint32, ok bool) {
	switch s := shape.(type) {
	case lsystem.Line:
		m, ok := LineTransform(s)
		if !ok {
			return nil, nil, false
		}
		vertices, indices = c.Cylinder.Instance(s.Color, m, vertexCount)
		return vertices, indices, true
	case lsystem.Sphere:
		m := math.Mat4FromScaleRotationTranslation(math.Splat(s.Radius), math.QuaternionIdentity(), s.Center)
		vertices, indices = c.Sphere.Instance(s.Color, m, vertexCount)
		return vertices, indices, true
	}
	return nil, nil, false
}

// BuildPlantMesh appends every primitive, in order, into a single mesh.
// It returns the mesh and the number of primitives skipped as degenerate.
func (c *ShapeConverter) BuildPlantMesh(name string, shapes []lsystem.Shape) (*Mesh, int) {
	mesh := NewMesh(name)
	skipped := 0
	for _, shape := range shapes {
		vertices, indices, ok := c.ShapeToMesh(shape, mesh.VertexCount())
		if !ok {
			skipped++
			continue
		}
		mesh.Append(vertices, indices)
	}
	return mesh, skipped
}
