package scene

import "meadow/math"

// groundEpsilon rejects rays that are parallel to or leave the ground.
const groundEpsilon = 1e-6

// Ray represents a ray in 3D space
type Ray struct {
	Origin    math.Vec3
	Direction math.Vec3
}

// At returns the point t units along the ray.
func (r Ray) At(t float32) math.Vec3 {
	return r.Origin.Add(r.Direction.Mul(t))
}

// GroundIntersection intersects the ray with the plane y = 0. It reports
// false when the ray does not point downward.
func GroundIntersection(r Ray) (math.Vec3, bool) {
	denom := math.Vec3Up.Dot(r.Direction.Negate())
	if denom <= groundEpsilon {
		return math.Vec3{}, false
	}
	t := r.Origin.Dot(math.Vec3Up) / denom
	p := r.At(t)
	p.Y = 0
	return p, true
}
