package core

import (
	"encoding/json"
	"fmt"

	"meadow/math"
)

type Color struct {
	R, G, B, A float32
}

var (
	ColorBark  = Color{0.36, 0.25, 0.15, 1}
	ColorLeaf  = Color{0.32, 0.58, 0.22, 1}
	ColorGrass = Color{0.45, 0.62, 0.28, 1}
	ColorDust  = Color{0.95, 0.92, 0.8, 1}
	ColorSoil  = Color{0.28, 0.22, 0.16, 1}
)

func RGB(r, g, b float32) Color {
	return Color{R: r, G: g, B: b, A: 1}
}

// UnmarshalJSON accepts [r, g, b] or [r, g, b, a]. Alpha defaults to 1.
func (c *Color) UnmarshalJSON(data []byte) error {
	var parts []float32
	if err := json.Unmarshal(data, &parts); err != nil {
		return fmt.Errorf("color: %w", err)
	}
	switch len(parts) {
	case 3:
		*c = RGB(parts[0], parts[1], parts[2])
	case 4:
		*c = Color{parts[0], parts[1], parts[2], parts[3]}
	default:
		return fmt.Errorf("color: want 3 or 4 components, got %d", len(parts))
	}
	return nil
}

func (c Color) MarshalJSON() ([]byte, error) {
	return json.Marshal([]float32{c.R, c.G, c.B, c.A})
}

// Vertex is the unlit vertex layout shared by plant meshes and particles.
type Vertex struct {
	Position math.Vec3
	Color    Color
}

// Transform is an instance matrix split into its parts.
type Transform struct {
	Position math.Vec3
	Rotation math.Quaternion
	Scale    math.Vec3
}

func NewTransform() Transform {
	return Transform{
		Position: math.Vec3Zero,
		Rotation: math.QuaternionIdentity(),
		Scale:    math.Vec3One,
	}
}

// TransformFromMatrix decomposes an instance matrix.
func TransformFromMatrix(m math.Mat4) Transform {
	scale, rotation, position := m.ToScaleRotationTranslation()
	return Transform{Position: position, Rotation: rotation, Scale: scale}
}

// GetMatrix scales, rotates and then translates.
func (t Transform) GetMatrix() math.Mat4 {
	return math.Mat4FromScaleRotationTranslation(t.Scale, t.Rotation, t.Position)
}

type AABB struct {
	Min, Max math.Vec3
}

// Extend grows the box to contain p.
func (b AABB) Extend(p math.Vec3) AABB {
	return AABB{
		Min: math.Vec3{X: min(b.Min.X, p.X), Y: min(b.Min.Y, p.Y), Z: min(b.Min.Z, p.Z)},
		Max: math.Vec3{X: max(b.Max.X, p.X), Y: max(b.Max.Y, p.Y), Z: max(b.Max.Z, p.Z)},
	}
}
