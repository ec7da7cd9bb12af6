package lsystem

import (
	"math/rand/v2"

	"meadow/core"
	"meadow/math"
)

// Turtle is the drawing cursor. The zero orientation heads along +Y.
type Turtle struct {
	Position    math.Vec3
	Orientation math.Quaternion
	Width       float32
	Color       core.Color
}

func (t Turtle) Heading() math.Vec3 {
	return t.Orientation.RotateVector(math.Vec3Up)
}

// Stats summarises one interpretation.
type Stats struct {
	Symbols  int
	Segments int
	Spheres  int
	Pushes   int
	Pops     int
	MaxDepth int
	// Underflows counts pops on an empty stack; they are ignored.
	Underflows int
	// Unclosed counts pushes still open at the end of the string.
	Unclosed int
	// Unknown counts symbols with no action; they are no-ops.
	Unknown int
}

// Interpret walks symbols with a single turtle and a stack of saved states
// and returns the emitted primitives in order.
func Interpret(symbols []rune, cfg *Config) ([]Shape, Stats) {
	stats := Stats{Symbols: len(symbols)}
	shapes := make([]Shape, 0, len(symbols)/2)
	turtle := Turtle{
		Orientation: math.QuaternionIdentity(),
		Width:       cfg.Width,
		Color:       cfg.Color,
	}
	var stack []Turtle

	for _, sym := range symbols {
		a, ok := cfg.Actions[sym]
		if !ok {
			if _, isRule := cfg.Rules[sym]; !isRule {
				stats.Unknown++
			}
			continue
		}

		switch a.Kind {
		case ActionDraw:
			start := turtle.Position
			turtle.Position = start.Add(turtle.Heading().Mul(cfg.Step))
			shapes = append(shapes, Line{
				Start: start,
				End:   turtle.Position,
				Width: turtle.Width,
				Color: turtle.Color,
			})
			stats.Segments++
		case ActionMove:
			turtle.Position = turtle.Position.Add(turtle.Heading().Mul(cfg.Step))
		case ActionTurn:
			angle := a.Angle
			if angle == 0 {
				angle = cfg.Angle
			}
			sign := a.Sign
			if sign == 0 {
				sign = 1
			}
			turn := math.QuaternionFromAxisAngle(a.Axis.vector(), sign*math.ToRadians(angle))
			turtle.Orientation = turtle.Orientation.Mul(turn).Normalize()
		case ActionPush:
			stack = append(stack, turtle)
			stats.Pushes++
			stats.MaxDepth = max(stats.MaxDepth, len(stack))
		case ActionPop:
			if len(stack) == 0 {
				stats.Underflows++
				continue
			}
			turtle = stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			stats.Pops++
		case ActionColor:
			turtle.Color = a.Color
		case ActionWidth:
			if a.Scale > 0 {
				turtle.Width *= a.Scale
			} else {
				turtle.Width = a.Width
			}
		case ActionLeaf:
			shapes = append(shapes, Sphere{
				Center: turtle.Position,
				Radius: a.Radius,
				Color:  a.Color,
			})
			stats.Spheres++
		}
	}
	stats.Unclosed = len(stack)
	return shapes, stats
}

// Build expands cfg with rng and interprets the result.
func Build(cfg *Config, rng *rand.Rand) ([]Shape, Stats) {
	return Interpret(Expand(cfg, rng), cfg)
}
