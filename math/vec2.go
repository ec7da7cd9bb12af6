package math

import "github.com/chewxy/math32"

// Vec2 is a planar vector. On the ground plane X maps to world X and Y maps
// to world Z.
type Vec2 struct {
	X, Y float32
}

func NewVec2(x, y float32) Vec2 {
	return Vec2{X: x, Y: y}
}

// Vec2FromAngle returns the unit vector at angle radians from +X.
func Vec2FromAngle(angle float32) Vec2 {
	s, c := math32.Sincos(angle)
	return Vec2{X: c, Y: s}
}

func (v Vec2) Add(other Vec2) Vec2 {
	return Vec2{X: v.X + other.X, Y: v.Y + other.Y}
}

func (v Vec2) Sub(other Vec2) Vec2 {
	return Vec2{X: v.X - other.X, Y: v.Y - other.Y}
}

func (v Vec2) Mul(scalar float32) Vec2 {
	return Vec2{X: v.X * scalar, Y: v.Y * scalar}
}

func (v Vec2) Dot(other Vec2) float32 {
	return v.X*other.X + v.Y*other.Y
}

func (v Vec2) Length() float32 {
	return math32.Sqrt(v.X*v.X + v.Y*v.Y)
}

func (v Vec2) Distance(other Vec2) float32 {
	return v.Sub(other).Length()
}

func (v Vec2) Normalize() Vec2 {
	length := v.Length()
	if length > 0 {
		return v.Mul(1.0 / length)
	}
	return v
}

// XZ lifts the planar vector back onto the ground plane at height y.
func (v Vec2) XZ(y float32) Vec3 {
	return Vec3{X: v.X, Y: y, Z: v.Y}
}
