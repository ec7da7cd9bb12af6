package math

import "github.com/chewxy/math32"

// Mat4 is a row-major matrix applied to row vectors (v * M). Translation
// lives in row 3, so composite transforms read left to right.
type Mat4 [4][4]float32

func Mat4Identity() Mat4 {
	return Mat4{
		{1, 0, 0, 0},
		{0, 1, 0, 0},
		{0, 0, 1, 0},
		{0, 0, 0, 1},
	}
}

func (m Mat4) Mul(other Mat4) Mat4 {
	var result Mat4
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			for k := 0; k < 4; k++ {
				result[i][j] += m[i][k] * other[k][j]
			}
		}
	}
	return result
}

func (m Mat4) MulVec3(v Vec3) Vec3 {
	return v.ToVec4(1.0).MulMat(m).ToVec3DivW()
}

func Mat4Translation(translation Vec3) Mat4 {
	m := Mat4Identity()
	m[3][0] = translation.X
	m[3][1] = translation.Y
	m[3][2] = translation.Z
	return m
}

func Mat4Scale(scale Vec3) Mat4 {
	m := Mat4Identity()
	m[0][0] = scale.X
	m[1][1] = scale.Y
	m[2][2] = scale.Z
	return m
}

// Mat4FromScaleRotationTranslation builds the matrix that scales, then
// rotates, then translates.
func Mat4FromScaleRotationTranslation(scale Vec3, rotation Quaternion, translation Vec3) Mat4 {
	m := rotation.ToMat4()
	for j := 0; j < 3; j++ {
		m[0][j] *= scale.X
		m[1][j] *= scale.Y
		m[2][j] *= scale.Z
	}
	m[3][0] = translation.X
	m[3][1] = translation.Y
	m[3][2] = translation.Z
	return m
}

// ToScaleRotationTranslation decomposes an affine matrix built by
// Mat4FromScaleRotationTranslation. A reflection is reported as a negative
// X scale.
func (m Mat4) ToScaleRotationTranslation() (Vec3, Quaternion, Vec3) {
	sx := Vec3{m[0][0], m[0][1], m[0][2]}.Length()
	sy := Vec3{m[1][0], m[1][1], m[1][2]}.Length()
	sz := Vec3{m[2][0], m[2][1], m[2][2]}.Length()
	if m.determinant3() < 0 {
		sx = -sx
	}
	translation := m.Translation()
	if sx == 0 || sy == 0 || sz == 0 {
		return Vec3{sx, sy, sz}, QuaternionIdentity(), translation
	}

	r := Mat4Identity()
	for j := 0; j < 3; j++ {
		r[0][j] = m[0][j] / sx
		r[1][j] = m[1][j] / sy
		r[2][j] = m[2][j] / sz
	}
	return Vec3{sx, sy, sz}, QuaternionFromMat4(r), translation
}

func (m Mat4) Translation() Vec3 {
	return Vec3{m[3][0], m[3][1], m[3][2]}
}

func (m Mat4) determinant3() float32 {
	return m[0][0]*(m[1][1]*m[2][2]-m[1][2]*m[2][1]) -
		m[0][1]*(m[1][0]*m[2][2]-m[1][2]*m[2][0]) +
		m[0][2]*(m[1][0]*m[2][1]-m[1][1]*m[2][0])
}

func Mat4Perspective(fovY, aspect, near, far float32) Mat4 {
	tanHalfFovy := math32.Tan(fovY / 2)

	var m Mat4
	m[0][0] = 1 / (aspect * tanHalfFovy)
	m[1][1] = 1 / tanHalfFovy
	m[2][2] = -(far + near) / (far - near)
	m[2][3] = -1
	m[3][2] = -(2 * far * near) / (far - near)
	return m
}

func Mat4Orthographic(left, right, bottom, top, near, far float32) Mat4 {
	m := Mat4Identity()
	m[0][0] = 2 / (right - left)
	m[1][1] = 2 / (top - bottom)
	m[2][2] = -2 / (far - near)
	m[3][0] = -(right + left) / (right - left)
	m[3][1] = -(top + bottom) / (top - bottom)
	m[3][2] = -(far + near) / (far - near)
	return m
}

func Mat4LookAt(eye, target, up Vec3) Mat4 {
	zAxis := eye.Sub(target).Normalize()
	xAxis := up.Cross(zAxis).Normalize()
	yAxis := zAxis.Cross(xAxis)

	return Mat4{
		{xAxis.X, yAxis.X, zAxis.X, 0},
		{xAxis.Y, yAxis.Y, zAxis.Y, 0},
		{xAxis.Z, yAxis.Z, zAxis.Z, 0},
		{-xAxis.Dot(eye), -yAxis.Dot(eye), -zAxis.Dot(eye), 1},
	}
}

// ToRadians converts degrees to radians.
func ToRadians(degrees float32) float32 {
	return degrees * math32.Pi / 180
}
