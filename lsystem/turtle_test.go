package lsystem

import (
	"testing"

	"meadow/core"
	"meadow/math"

	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lines(t *testing.T, shapes []Shape) []Line {
	t.Helper()
	var out []Line
	for _, s := range shapes {
		if l, ok := s.(Line); ok {
			out = append(out, l)
		}
	}
	return out
}

func TestInterpretSingleSegment(t *testing.T) {
	cfg := NewConfig("F", 0)
	cfg.Step = 2
	shapes, stats := Interpret([]rune("F"), cfg)

	require.Len(t, shapes, 1)
	l := shapes[0].(Line)
	assert.Equal(t, math.Vec3Zero, l.Start)
	assert.True(t, l.End.ApproxEqual(math.NewVec3(0, 2, 0), 1e-6))
	assert.Equal(t, cfg.Width, l.Width)
	assert.Equal(t, cfg.Color, l.Color)
	assert.Equal(t, 1, stats.Segments)
}

func TestInterpretBranchRestoresTurtle(t *testing.T) {
	cfg := bush(1)
	shapes, stats := Build(cfg, NewRand(1))
	ls := lines(t, shapes)

	require.Len(t, ls, 4)
	assert.Equal(t, 2, stats.Pushes)
	assert.Equal(t, 2, stats.Pops)
	assert.Equal(t, 1, stats.MaxDepth)
	assert.Zero(t, stats.Underflows)
	assert.Zero(t, stats.Unclosed)

	// the branch starts where the trunk ended
	assert.Equal(t, ls[0].End, ls[1].Start)
	// after the pop the trunk resumes from the same point and heading
	assert.Equal(t, ls[0].End, ls[2].Start)
	assert.True(t, ls[2].End.Sub(ls[2].Start).ApproxEqual(math.Vec3Up, 1e-5))

	s, c := math32.Sincos(math.ToRadians(25))
	assert.True(t, ls[1].End.Sub(ls[1].Start).ApproxEqual(math.NewVec3(-s, c, 0), 1e-5))
	assert.True(t, ls[3].End.Sub(ls[3].Start).ApproxEqual(math.NewVec3(s, c, 0), 1e-5))
}

func TestInterpretTwoIterations(t *testing.T) {
	shapes, stats := Build(bush(2), NewRand(5))
	assert.Len(t, lines(t, shapes), 16)
	assert.Equal(t, 16, stats.Segments)
	assert.Equal(t, 10, stats.Pushes)
	assert.Equal(t, 10, stats.Pops)
	assert.Equal(t, 2, stats.MaxDepth)
}

func TestInterpretPopUnderflowIgnored(t *testing.T) {
	cfg := NewConfig("F", 0)
	shapes, stats := Interpret([]rune("F]F"), cfg)
	ls := lines(t, shapes)

	require.Len(t, ls, 2)
	assert.Equal(t, 1, stats.Underflows)
	assert.Equal(t, ls[0].End, ls[1].Start)
}

func TestInterpretUnclosedAndUnknown(t *testing.T) {
	cfg := NewConfig("F", 0)
	_, stats := Interpret([]rune("F[F[F?"), cfg)
	assert.Equal(t, 2, stats.Unclosed)
	assert.Equal(t, 1, stats.Unknown)
	assert.Equal(t, 3, stats.Segments)
}

func TestInterpretMoveLeafWidthColor(t *testing.T) {
	cfg := NewConfig("F", 0)
	cfg.Width = 2
	shapes, stats := Interpret([]rune("fL!'F"), cfg)

	require.Len(t, shapes, 2)
	leaf := shapes[0].(Sphere)
	assert.True(t, leaf.Center.ApproxEqual(math.Vec3Up, 1e-6))
	assert.Equal(t, float32(0.05), leaf.Radius)
	assert.Equal(t, core.ColorLeaf, leaf.Color)

	l := shapes[1].(Line)
	assert.True(t, l.Start.ApproxEqual(math.Vec3Up, 1e-6))
	assert.InDelta(t, 1.4, l.Width, 1e-6)
	assert.Equal(t, core.ColorLeaf, l.Color)
	assert.Equal(t, 1, stats.Spheres)
}

func TestInterpretPitchAndRoll(t *testing.T) {
	cfg := NewConfig("F", 0)
	cfg.Angle = 90
	// pitch about local X tips the heading toward +Z
	shapes, _ := Interpret([]rune("&F"), cfg)
	l := shapes[0].(Line)
	assert.True(t, l.End.ApproxEqual(math.Vec3Front, 1e-5), "got %v", l.End)

	// rolling about the heading does not change it
	shapes, _ = Interpret([]rune("\\\\F"), cfg)
	l = shapes[0].(Line)
	assert.True(t, l.End.ApproxEqual(math.Vec3Up, 1e-5), "got %v", l.End)

	// a half turn reverses the heading
	shapes, _ = Interpret([]rune("|F"), cfg)
	l = shapes[0].(Line)
	assert.True(t, l.End.ApproxEqual(math.Vec3Down, 1e-5), "got %v", l.End)
}

func TestBuildDeterministic(t *testing.T) {
	cfg := stochastic()
	a, _ := Build(cfg, NewRand(CellSeed(3, 1, -1)))
	b, _ := Build(cfg, NewRand(CellSeed(3, 1, -1)))
	assert.Equal(t, a, b)
}
