package scene

import (
	"testing"

	"meadow/core"
	"meadow/math"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGroundIntersection(t *testing.T) {
	p, ok := GroundIntersection(Ray{Origin: math.NewVec3(-9.5, 10, -9.5), Direction: math.NewVec3(1, -1, 1).Normalize()})
	require.True(t, ok)
	assert.True(t, p.ApproxEqual(math.NewVec3(0.5, 0, 0.5), 1e-4), "got %v", p)

	p, ok = GroundIntersection(Ray{Origin: math.NewVec3(3, 2, 1), Direction: math.Vec3Down})
	require.True(t, ok)
	assert.Equal(t, math.NewVec3(3, 0, 1), p)

	for _, dir := range []math.Vec3{math.Vec3Front, math.Vec3Up, math.NewVec3(1, 1e-8, 0)} {
		_, ok := GroundIntersection(Ray{Origin: math.NewVec3(0, 5, 0), Direction: dir})
		assert.False(t, ok, "direction %v", dir)
	}
}

func TestRayAt(t *testing.T) {
	r := Ray{Origin: math.NewVec3(1, 2, 3), Direction: math.Vec3Down}
	assert.Equal(t, r.Origin, r.At(0))
	assert.Equal(t, math.NewVec3(1, -0.5, 3), r.At(2.5))
}

func TestCameraMatrices(t *testing.T) {
	cam := NewCamera(math.NewVec3(0, 10, 0), math.NewVec3(0, -1, 0.001))
	// the look-at point projects to the centre of the screen
	clip := math.Vec4{X: 0, Y: 0, Z: 0.01, W: 1}.MulMat(cam.GetViewProjectionMatrix())
	ndc := clip.ToVec3DivW()
	assert.InDelta(t, 0, ndc.X, 1e-3)
	assert.InDelta(t, 0, ndc.Y, 1e-3)

	cam.SetProjection(ProjectionPerspective, 0.01, 100)
	ndc = math.Vec4{X: 0, Y: 0, Z: 0.01, W: 1}.MulMat(cam.GetViewProjectionMatrix()).ToVec3DivW()
	assert.InDelta(t, 0, ndc.X, 1e-3)
	assert.Greater(t, ndc.Z, float32(-1))
	assert.Less(t, ndc.Z, float32(1))
}

func TestCameraTurnClampsPitch(t *testing.T) {
	cam := NewCamera(math.Vec3Zero, math.Vec3Front)
	cam.Turn(0, 0.5)
	assert.Greater(t, cam.Direction.Y, float32(0.4))
	for i := 0; i < 20; i++ {
		cam.Turn(0, 0.5)
	}
	assert.Less(t, cam.Direction.Dot(math.Vec3Up), float32(0.99))
	assert.InDelta(t, 1, cam.Direction.Length(), 1e-5)
}

// fakeInput is a scripted Input.
type fakeInput struct {
	keys    map[int]bool
	buttons map[int]bool
	x, y    float64
	scroll  float64
}

func newFakeInput(keys ...int) *fakeInput {
	in := &fakeInput{keys: make(map[int]bool), buttons: make(map[int]bool)}
	for _, k := range keys {
		in.keys[k] = true
	}
	return in
}

func (f *fakeInput) IsKeyPressed(key int) bool            { return f.keys[key] }
func (f *fakeInput) IsMouseButtonPressed(button int) bool { return f.buttons[button] }
func (f *fakeInput) CursorPos() (float64, float64)        { return f.x, f.y }
func (f *fakeInput) ScrollDelta() float64 {
	s := f.scroll
	f.scroll = 0
	return s
}

func TestIsometricControllerPans(t *testing.T) {
	cam := NewCamera(math.NewVec3(-9.5, 10, -9.5), math.NewVec3(1, -1, 1))
	iso := NewIsometricController()
	iso.Activate(cam)

	before, _ := GroundIntersection(cam.Ray())
	iso.Update(cam, newFakeInput(core.KeyW), 1)
	after, _ := GroundIntersection(cam.Ray())

	moved := after.Sub(before)
	assert.InDelta(t, 0, moved.Y, 1e-5)
	assert.InDelta(t, iso.PanSpeed*cam.OrthoHeight, moved.Length(), 1e-3)
	assert.Greater(t, moved.X, float32(0))
	assert.Greater(t, moved.Z, float32(0))
	assert.Equal(t, float32(10), cam.Position.Y)

	in := newFakeInput()
	in.scroll = 1
	h := cam.OrthoHeight
	iso.Update(cam, in, 0.016)
	assert.InDelta(t, h*0.9, cam.OrthoHeight, 1e-5)
}

func TestFreeControllerMovesAndLooks(t *testing.T) {
	cam := NewCamera(math.Vec3Zero, math.Vec3Front)
	free := NewFreeController()
	free.Activate(cam)
	assert.Equal(t, ProjectionPerspective, cam.Projection)

	free.Update(cam, newFakeInput(core.KeyW), 0.5)
	assert.True(t, cam.Position.ApproxEqual(math.NewVec3(0, 0, 2), 1e-5))

	free.Update(cam, newFakeInput(core.KeySpace), 0.25)
	assert.InDelta(t, 1, cam.Position.Y, 1e-5)

	in := newFakeInput()
	in.buttons[core.MouseButtonRight] = true
	free.Update(cam, in, 0.016)
	in.x = 100
	free.Update(cam, in, 0.016)
	assert.NotEqual(t, math.Vec3Front, cam.Direction)
	assert.InDelta(t, 0, cam.Direction.Y, 1e-5)
}

func TestControllerSetSelect(t *testing.T) {
	cam := NewCamera(math.NewVec3(0, 10, 0), math.NewVec3(1, -1, 1))
	set := NewControllerSet(NewIsometricController(), NewFreeController())
	assert.Equal(t, ControllerIsometric, set.Active())

	require.NoError(t, set.Select(ControllerFree, cam))
	assert.Equal(t, ControllerFree, set.Active())
	assert.Equal(t, ProjectionPerspective, cam.Projection)

	require.NoError(t, set.Select(ControllerIsometric, cam))
	assert.Equal(t, ProjectionOrthographic, cam.Projection)

	only := NewControllerSet(NewFreeController())
	assert.Error(t, only.Select(ControllerIsometric, cam))
	assert.Equal(t, ControllerFree, only.Active())
	assert.Equal(t, "isometric", ControllerIsometric.String())
}
