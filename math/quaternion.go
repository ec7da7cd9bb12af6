package math

import "github.com/chewxy/math32"

type Quaternion struct {
	X, Y, Z, W float32
}

func QuaternionIdentity() Quaternion {
	return Quaternion{X: 0, Y: 0, Z: 0, W: 1}
}

func QuaternionFromAxisAngle(axis Vec3, angle float32) Quaternion {
	s, c := math32.Sincos(angle / 2)

	axis = axis.Normalize()
	return Quaternion{
		X: axis.X * s,
		Y: axis.Y * s,
		Z: axis.Z * s,
		W: c,
	}
}

// QuaternionFromRotationArc returns the shortest rotation taking unit vector
// from onto unit vector to. Antiparallel inputs rotate half a turn about an
// axis orthogonal to from.
func QuaternionFromRotationArc(from, to Vec3) Quaternion {
	d := from.Dot(to)
	switch {
	case d >= 1-1e-6:
		return QuaternionIdentity()
	case d <= -1+1e-6:
		axis := from.Cross(Vec3Right)
		if axis.LengthSqr() < 1e-6 {
			axis = from.Cross(Vec3Front)
		}
		return QuaternionFromAxisAngle(axis, math32.Pi)
	}
	c := from.Cross(to)
	return Quaternion{X: c.X, Y: c.Y, Z: c.Z, W: 1 + d}.Normalize()
}

// QuaternionFromMat4 extracts the rotation of a pure rotation matrix laid out
// the way ToMat4 produces it.
func QuaternionFromMat4(m Mat4) Quaternion {
	trace := m[0][0] + m[1][1] + m[2][2]
	var q Quaternion
	switch {
	case trace > 0:
		s := math32.Sqrt(trace+1) * 2
		q = Quaternion{
			W: 0.25 * s,
			X: (m[1][2] - m[2][1]) / s,
			Y: (m[2][0] - m[0][2]) / s,
			Z: (m[0][1] - m[1][0]) / s,
		}
	case m[0][0] > m[1][1] && m[0][0] > m[2][2]:
		s := math32.Sqrt(1+m[0][0]-m[1][1]-m[2][2]) * 2
		q = Quaternion{
			W: (m[1][2] - m[2][1]) / s,
			X: 0.25 * s,
			Y: (m[1][0] + m[0][1]) / s,
			Z: (m[2][0] + m[0][2]) / s,
		}
	case m[1][1] > m[2][2]:
		s := math32.Sqrt(1+m[1][1]-m[0][0]-m[2][2]) * 2
		q = Quaternion{
			W: (m[2][0] - m[0][2]) / s,
			X: (m[1][0] + m[0][1]) / s,
			Y: 0.25 * s,
			Z: (m[2][1] + m[1][2]) / s,
		}
	default:
		s := math32.Sqrt(1+m[2][2]-m[0][0]-m[1][1]) * 2
		q = Quaternion{
			W: (m[0][1] - m[1][0]) / s,
			X: (m[2][0] + m[0][2]) / s,
			Y: (m[2][1] + m[1][2]) / s,
			Z: 0.25 * s,
		}
	}
	return q.Normalize()
}

func (q Quaternion) Mul(other Quaternion) Quaternion {
	return Quaternion{
		X: q.W*other.X + q.X*other.W + q.Y*other.Z - q.Z*other.Y,
		Y: q.W*other.Y - q.X*other.Z + q.Y*other.W + q.Z*other.X,
		Z: q.W*other.Z + q.X*other.Y - q.Y*other.X + q.Z*other.W,
		W: q.W*other.W - q.X*other.X - q.Y*other.Y - q.Z*other.Z,
	}
}

func (q Quaternion) Normalize() Quaternion {
	length := math32.Sqrt(q.X*q.X + q.Y*q.Y + q.Z*q.Z + q.W*q.W)
	if length > 0 {
		invLength := 1 / length
		return Quaternion{
			X: q.X * invLength,
			Y: q.Y * invLength,
			Z: q.Z * invLength,
			W: q.W * invLength,
		}
	}
	return q
}

func (q Quaternion) RotateVector(v Vec3) Vec3 {
	qVec := Vec3{X: q.X, Y: q.Y, Z: q.Z}
	t := qVec.Cross(v).Mul(2)
	return v.Add(t.Mul(q.W)).Add(qVec.Cross(t))
}

// ToMat4 returns the rotation as a row-vector matrix (v * M).
func (q Quaternion) ToMat4() Mat4 {
	xx := q.X * q.X
	yy := q.Y * q.Y
	zz := q.Z * q.Z
	xy := q.X * q.Y
	xz := q.X * q.Z
	yz := q.Y * q.Z
	wx := q.W * q.X
	wy := q.W * q.Y
	wz := q.W * q.Z

	return Mat4{
		{1 - 2*(yy+zz), 2 * (xy + wz), 2 * (xz - wy), 0},
		{2 * (xy - wz), 1 - 2*(xx+zz), 2 * (yz + wx), 0},
		{2 * (xz + wy), 2 * (yz - wx), 1 - 2*(xx+yy), 0},
		{0, 0, 0, 1},
	}
}

// ApproxEqual treats q and -q as the same rotation.
func (q Quaternion) ApproxEqual(other Quaternion, eps float32) bool {
	d := q.X*other.X + q.Y*other.Y + q.Z*other.Z + q.W*other.W
	return math32.Abs(d) >= 1-eps
}
