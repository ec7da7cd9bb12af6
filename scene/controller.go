package scene

import (
	"fmt"

	"meadow/core"
	"meadow/math"
)

// Input is the polled input state a controller reads each frame.
type Input interface {
	IsKeyPressed(key int) bool
	IsMouseButtonPressed(button int) bool
	CursorPos() (float64, float64)
	ScrollDelta() float64
}

type ControllerKind int

const (
	ControllerIsometric ControllerKind = iota
	ControllerFree
)

func (k ControllerKind) String() string {
	switch k {
	case ControllerIsometric:
		return "isometric"
	case ControllerFree:
		return "free"
	}
	return fmt.Sprintf("ControllerKind(%d)", int(k))
}

// CameraController moves the camera from input. Activate prepares the
// camera for the controller (projection, orientation).
type CameraController interface {
	Kind() ControllerKind
	Activate(cam *Camera)
	Update(cam *Camera, in Input, dt float32)
}

// IsometricController pans an orthographic camera across the ground with a
// fixed view direction.
type IsometricController struct {
	Direction math.Vec3
	PanSpeed  float32 // ground units per second per unit of ortho height
	ZoomSpeed float32 // fraction of ortho height per scroll step
	MinHeight float32
	MaxHeight float32
}

func NewIsometricController() *IsometricController {
	return &IsometricController{
		Direction: math.NewVec3(1, -1, 1).Normalize(),
		PanSpeed:  1.5,
		ZoomSpeed: 0.1,
		MinHeight: 0.5,
		MaxHeight: 20,
	}
}

func (c *IsometricController) Kind() ControllerKind { return ControllerIsometric }

func (c *IsometricController) Activate(cam *Camera) {
	cam.SetDirection(c.Direction)
	cam.SetProjection(ProjectionOrthographic, 0.003, 1000)
}

func (c *IsometricController) Update(cam *Camera, in Input, dt float32) {
	forward := cam.Direction.XZ().Normalize().XZ(0)
	right := cam.GetRight()

	var move math.Vec3
	if in.IsKeyPressed(core.KeyW) || in.IsKeyPressed(core.KeyUp) {
		move = move.Add(forward)
	}
	if in.IsKeyPressed(core.KeyS) || in.IsKeyPressed(core.KeyDown) {
		move = move.Sub(forward)
	}
	if in.IsKeyPressed(core.KeyD) || in.IsKeyPressed(core.KeyRight) {
		move = move.Add(right)
	}
	if in.IsKeyPressed(core.KeyA) || in.IsKeyPressed(core.KeyLeft) {
		move = move.Sub(right)
	}
	if move.LengthSqr() > 0 {
		cam.Translate(move.Normalize().Mul(c.PanSpeed * cam.OrthoHeight * dt))
	}

	if scroll := float32(in.ScrollDelta()); scroll != 0 {
		h := cam.OrthoHeight * (1 - scroll*c.ZoomSpeed)
		cam.OrthoHeight = min(max(h, c.MinHeight), c.MaxHeight)
		cam.dirty = true
	}
}

// FreeController flies a perspective camera: WASD to move, Space/Shift for
// height, right mouse drag to look around.
type FreeController struct {
	MoveSpeed float32
	LookSpeed float32 // radians per pixel

	lastX, lastY float64
	dragging     bool
}

func NewFreeController() *FreeController {
	return &FreeController{MoveSpeed: 4, LookSpeed: 0.004}
}

func (c *FreeController) Kind() ControllerKind { return ControllerFree }

func (c *FreeController) Activate(cam *Camera) {
	c.dragging = false
	cam.SetProjection(ProjectionPerspective, 0.01, 10000)
}

func (c *FreeController) Update(cam *Camera, in Input, dt float32) {
	right := cam.GetRight()
	var move math.Vec3
	if in.IsKeyPressed(core.KeyW) {
		move = move.Add(cam.Direction)
	}
	if in.IsKeyPressed(core.KeyS) {
		move = move.Sub(cam.Direction)
	}
	if in.IsKeyPressed(core.KeyD) {
		move = move.Add(right)
	}
	if in.IsKeyPressed(core.KeyA) {
		move = move.Sub(right)
	}
	if in.IsKeyPressed(core.KeySpace) {
		move = move.Add(math.Vec3Up)
	}
	if in.IsKeyPressed(core.KeyLeftShift) {
		move = move.Sub(math.Vec3Up)
	}
	if move.LengthSqr() > 0 {
		cam.Translate(move.Normalize().Mul(c.MoveSpeed * dt))
	}

	x, y := in.CursorPos()
	if in.IsMouseButtonPressed(core.MouseButtonRight) {
		if c.dragging {
			dx := float32(x - c.lastX)
			dy := float32(y - c.lastY)
			cam.Turn(-dx*c.LookSpeed, -dy*c.LookSpeed)
		}
		c.dragging = true
	} else {
		c.dragging = false
	}
	c.lastX, c.lastY = x, y
}

// ControllerSet holds one controller per kind and the explicit selection.
type ControllerSet struct {
	active      ControllerKind
	controllers map[ControllerKind]CameraController
}

func NewControllerSet(controllers ...CameraController) *ControllerSet {
	s := &ControllerSet{controllers: make(map[ControllerKind]CameraController)}
	for i, c := range controllers {
		if i == 0 {
			s.active = c.Kind()
		}
		s.controllers[c.Kind()] = c
	}
	return s
}

func (s *ControllerSet) Active() ControllerKind {
	return s.active
}

// Select activates the controller of the given kind.
func (s *ControllerSet) Select(kind ControllerKind, cam *Camera) error {
	c, ok := s.controllers[kind]
	if !ok {
		return fmt.Errorf("no %s camera controller", kind)
	}
	s.active = kind
	c.Activate(cam)
	return nil
}

func (s *ControllerSet) Update(cam *Camera, in Input, dt float32) {
	if c, ok := s.controllers[s.active]; ok {
		c.Update(cam, in, dt)
	}
}
