package scene

import (
	"meadow/math"

	"github.com/chewxy/math32"
)

type ProjectionKind int

const (
	ProjectionPerspective ProjectionKind = iota
	ProjectionOrthographic
)

// Camera is a position plus a view direction. Matrices are cached until the
// pose or the projection changes.
type Camera struct {
	Position  math.Vec3
	Direction math.Vec3

	Projection  ProjectionKind
	FOV         float32 // radians, perspective only
	OrthoHeight float32 // half-height of the view volume, orthographic only
	AspectRatio float32
	NearPlane   float32
	FarPlane    float32

	// Cached matrices
	viewMatrix       math.Mat4
	projectionMatrix math.Mat4
	viewProjMatrix   math.Mat4
	dirty            bool
}

func NewCamera(position, direction math.Vec3) *Camera {
	return &Camera{
		Position:    position,
		Direction:   direction.Normalize(),
		Projection:  ProjectionOrthographic,
		FOV:         math.ToRadians(35),
		OrthoHeight: 4,
		AspectRatio: 16.0 / 9.0,
		NearPlane:   0.003,
		FarPlane:    1000,
		dirty:       true,
	}
}

func (c *Camera) UpdateAspectRatio(width, height float32) {
	if height > 0 {
		c.AspectRatio = width / height
		c.dirty = true
	}
}

func (c *Camera) SetPosition(pos math.Vec3) {
	c.Position = pos
	c.dirty = true
}

func (c *Camera) SetDirection(dir math.Vec3) {
	if dir.LengthSqr() == 0 {
		return
	}
	c.Direction = dir.Normalize()
	c.dirty = true
}

func (c *Camera) Translate(delta math.Vec3) {
	c.Position = c.Position.Add(delta)
	c.dirty = true
}

// SetProjection switches between perspective and orthographic, keeping the
// near/far planes each kind expects.
func (c *Camera) SetProjection(kind ProjectionKind, near, far float32) {
	c.Projection = kind
	c.NearPlane = near
	c.FarPlane = far
	c.dirty = true
}

// Turn applies yaw about world up and pitch about the camera right axis.
// Pitch stops short of straight up or down.
func (c *Camera) Turn(yaw, pitch float32) {
	dir := math.QuaternionFromAxisAngle(math.Vec3Up, yaw).RotateVector(c.Direction)
	right := dir.Cross(math.Vec3Up).Normalize()
	pitched := math.QuaternionFromAxisAngle(right, pitch).RotateVector(dir)
	if math32.Abs(pitched.Normalize().Dot(math.Vec3Up)) < 0.99 {
		dir = pitched
	}
	c.SetDirection(dir)
}

func (c *Camera) GetRight() math.Vec3 {
	return c.Direction.Cross(math.Vec3Up).Normalize()
}

// Ray is the camera pose as seen by the streaming logic.
func (c *Camera) Ray() Ray {
	return Ray{Origin: c.Position, Direction: c.Direction}
}

// GetViewProjectionMatrix returns view * projection for row vectors.
func (c *Camera) GetViewProjectionMatrix() math.Mat4 {
	if c.dirty {
		c.updateMatrices()
	}
	return c.viewProjMatrix
}

func (c *Camera) updateMatrices() {
	up := math.Vec3Up
	if math32.Abs(c.Direction.Dot(up)) > 0.999 {
		up = math.Vec3Front
	}
	c.viewMatrix = math.Mat4LookAt(c.Position, c.Position.Add(c.Direction), up)

	switch c.Projection {
	case ProjectionOrthographic:
		h := c.OrthoHeight
		w := h * c.AspectRatio
		c.projectionMatrix = math.Mat4Orthographic(-w, w, -h, h, c.NearPlane, c.FarPlane)
	default:
		c.projectionMatrix = math.Mat4Perspective(c.FOV, c.AspectRatio, c.NearPlane, c.FarPlane)
	}

	c.viewProjMatrix = c.viewMatrix.Mul(c.projectionMatrix)
	c.dirty = false
}
