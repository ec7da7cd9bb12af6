package lsystem

import (
	"meadow/core"
	"meadow/math"
)

// Shape is a draw primitive emitted by the turtle: a Line or a Sphere.
type Shape interface {
	isShape()
}

// Line is a branch segment. Width is relative to the segment length.
type Line struct {
	Start, End math.Vec3
	Width      float32
	Color      core.Color
}

type Sphere struct {
	Center math.Vec3
	Radius float32
	Color  core.Color
}

func (Line) isShape()   {}
func (Sphere) isShape() {}
