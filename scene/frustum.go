package scene

import (
	"meadow/core"
	"meadow/math"
)

// Plane represents a half-space: ax + by + cz + d = 0
// Normal (a, b, c) points into the "inside" of the frustum.
type Plane struct {
	Normal math.Vec3
	D      float32
}

// DistanceTo returns the signed distance from a point to the plane.
// Positive means on the "inside" (same side as Normal).
func (p Plane) DistanceTo(pt math.Vec3) float32 {
	return p.Normal.Dot(pt) + p.D
}

// Frustum holds the six clip planes of a view frustum.
type Frustum struct {
	Planes [6]Plane // Left, Right, Bottom, Top, Near, Far
}

// FrustumFromViewProjection extracts the normalized clip planes of a
// row-vector view-projection matrix. Clip coordinate i of v*vp is the dot
// product of v with column i, so the Gribb/Hartmann rows are vp's columns.
func FrustumFromViewProjection(vp math.Mat4) Frustum {
	col := func(i int) [4]float32 {
		return [4]float32{vp[0][i], vp[1][i], vp[2][i], vp[3][i]}
	}
	c0, c1, c2, c3 := col(0), col(1), col(2), col(3)
	plane := func(a [4]float32, b [4]float32, sign float32) Plane {
		return normalizePlane(a[0]+sign*b[0], a[1]+sign*b[1], a[2]+sign*b[2], a[3]+sign*b[3])
	}

	var f Frustum
	f.Planes[0] = plane(c3, c0, 1)
	f.Planes[1] = plane(c3, c0, -1)
	f.Planes[2] = plane(c3, c1, 1)
	f.Planes[3] = plane(c3, c1, -1)
	f.Planes[4] = plane(c3, c2, 1)
	f.Planes[5] = plane(c3, c2, -1)
	return f
}

func normalizePlane(a, b, c, d float32) Plane {
	l := math.Vec3{X: a, Y: b, Z: c}.Length()
	if l == 0 {
		return Plane{}
	}
	return Plane{Normal: math.Vec3{X: a / l, Y: b / l, Z: c / l}, D: d / l}
}

// IntersectsAABB returns false if the box is completely outside the frustum.
// For each plane only the corner furthest along the normal is tested.
func (f *Frustum) IntersectsAABB(box core.AABB) bool {
	for _, p := range f.Planes {
		corner := box.Max
		if p.Normal.X < 0 {
			corner.X = box.Min.X
		}
		if p.Normal.Y < 0 {
			corner.Y = box.Min.Y
		}
		if p.Normal.Z < 0 {
			corner.Z = box.Min.Z
		}
		if p.DistanceTo(corner) < 0 {
			return false
		}
	}
	return true
}

// TransformAABB returns the world box enclosing the 8 transformed corners
// of a local box.
func TransformAABB(local core.AABB, m math.Mat4) core.AABB {
	mn, mx := local.Min, local.Max
	first := m.MulVec3(mn)
	out := core.AABB{Min: first, Max: first}
	for i := 1; i < 8; i++ {
		c := mn
		if i&1 != 0 {
			c.X = mx.X
		}
		if i&2 != 0 {
			c.Y = mx.Y
		}
		if i&4 != 0 {
			c.Z = mx.Z
		}
		out = out.Extend(m.MulVec3(c))
	}
	return out
}

// VisiblePlants returns the live plants whose bounds touch the camera
// frustum. Plants with empty meshes are left out.
func (m *Meadow) VisiblePlants() []*PlantCell {
	f := FrustumFromViewProjection(m.Camera.GetViewProjectionMatrix())
	cells := m.Plants.Cells()
	visible := cells[:0]
	for _, c := range cells {
		if c.Mesh == nil || !c.Mesh.HasLocalAABB {
			continue
		}
		if f.IntersectsAABB(TransformAABB(c.Mesh.LocalAABB, c.Transform)) {
			visible = append(visible, c)
		}
	}
	return visible
}
