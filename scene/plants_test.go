package scene

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"meadow/lsystem"
	"meadow/math"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingGenerator records how often each cell was generated.
type countingGenerator struct {
	mu    sync.Mutex
	calls map[CellKey]int
	total atomic.Int64
	gate  chan struct{}
	fail  map[CellKey]bool
}

func newCountingGenerator() *countingGenerator {
	return &countingGenerator{calls: make(map[CellKey]int), fail: make(map[CellKey]bool)}
}

func (g *countingGenerator) Generate(ctx context.Context, key CellKey) (*Mesh, error) {
	n := g.total.Add(1)
	g.mu.Lock()
	g.calls[key]++
	fail := g.fail[key]
	gate := g.gate
	g.mu.Unlock()
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if fail {
		return nil, errors.New("boom")
	}
	return NewMesh(fmt.Sprint(n)), nil
}

func (g *countingGenerator) count(key CellKey) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls[key]
}

// lookingAt returns a downward ray that meets the ground at (x, 0, z).
func lookingAt(x, z float32) Ray {
	dir := math.NewVec3(1, -1, 1).Normalize()
	target := math.NewVec3(x, 0, z)
	return Ray{Origin: target.Sub(dir.Mul(10)), Direction: dir}
}

func assertWindow(t *testing.T, g *PlantGrid) {
	t.Helper()
	for _, c := range g.Cells() {
		assert.True(t, g.InWindow(c.Key), "cell %v outside window around %v", c.Key, g.center)
		want := math.NewVec3(float32(c.Key.X*g.spacing), 0, float32(c.Key.Z*g.spacing))
		assert.True(t, c.Transform.Translation().ApproxEqual(want, 1e-6))
	}
}

func TestPlantGridInitialFill(t *testing.T) {
	gen := newCountingGenerator()
	g := NewPlantGrid(gen, DefaultGridOptions())

	mut := g.Refresh(context.Background(), lookingAt(0.4, -0.2))
	assert.Len(t, mut.Inserted, 16)
	assert.Empty(t, mut.Evicted)
	assert.Equal(t, 16, g.Len())
	assert.Equal(t, CellKey{0, 0}, g.center)
	assertWindow(t, g)

	// offsets -2..1 around the snapped centre
	for x := -2; x <= 1; x++ {
		for z := -2; z <= 1; z++ {
			assert.Equal(t, 1, gen.count(CellKey{x, z}), "cell %d,%d", x, z)
		}
	}

	// a still camera changes nothing
	mut = g.Refresh(context.Background(), lookingAt(0.4, -0.2))
	assert.True(t, mut.Empty())
	assert.Equal(t, int64(16), gen.total.Load())
}

func TestPlantGridSlide(t *testing.T) {
	gen := newCountingGenerator()
	g := NewPlantGrid(gen, DefaultGridOptions())
	g.Refresh(context.Background(), lookingAt(0, 0))

	// one spacing along +X
	mut := g.Refresh(context.Background(), lookingAt(3.2, 0))
	assert.Len(t, mut.Evicted, 4)
	for _, c := range mut.Evicted {
		assert.Equal(t, -2, c.Key.X)
	}
	assert.Len(t, mut.Inserted, 4)
	for _, c := range mut.Inserted {
		assert.Equal(t, 2, c.Key.X)
	}
	assert.Equal(t, 16, g.Len())
	assertWindow(t, g)

	// jittering across a cell boundary keeps the window consistent
	for i := 0; i < 5; i++ {
		g.Refresh(context.Background(), lookingAt(4.49, 0))
		assertWindow(t, g)
		g.Refresh(context.Background(), lookingAt(4.51, 0))
		assertWindow(t, g)
	}
}

func TestPlantGridHysteresis(t *testing.T) {
	gen := newCountingGenerator()
	opts := DefaultGridOptions()
	opts.Hysteresis = 0.1
	g := NewPlantGrid(gen, opts)
	g.Refresh(context.Background(), lookingAt(3.2, 0))
	require.Equal(t, CellKey{1, 0}, g.center)

	before := gen.total.Load()
	for i := 0; i < 10; i++ {
		g.Refresh(context.Background(), lookingAt(4.49, 0))
		g.Refresh(context.Background(), lookingAt(4.51, 0))
	}
	assert.Equal(t, before, gen.total.Load())
	assert.Equal(t, CellKey{1, 0}, g.center)

	// far enough past the edge the window moves
	g.Refresh(context.Background(), lookingAt(4.9, 0))
	assert.Equal(t, CellKey{2, 0}, g.center)
	assertWindow(t, g)
}

func TestPlantGridNoGround(t *testing.T) {
	gen := newCountingGenerator()
	g := NewPlantGrid(gen, DefaultGridOptions())
	g.Refresh(context.Background(), lookingAt(0, 0))

	for _, dir := range []math.Vec3{math.Vec3Front, math.NewVec3(0, 1, 1)} {
		mut := g.Refresh(context.Background(), Ray{Origin: math.NewVec3(100, 5, 100), Direction: dir.Normalize()})
		assert.True(t, mut.Empty())
	}
	assert.Equal(t, 16, g.Len())
}

func TestPlantGridGeneratorError(t *testing.T) {
	gen := newCountingGenerator()
	gen.fail[CellKey{0, 0}] = true
	g := NewPlantGrid(gen, DefaultGridOptions())

	mut := g.Refresh(context.Background(), lookingAt(0, 0))
	assert.Len(t, mut.Inserted, 15)
	// retried on the next frame
	g.Refresh(context.Background(), lookingAt(0, 0))
	assert.Equal(t, 2, gen.count(CellKey{0, 0}))
}

func TestPlantGridReset(t *testing.T) {
	gen := newCountingGenerator()
	g := NewPlantGrid(gen, DefaultGridOptions())
	g.Refresh(context.Background(), lookingAt(0, 0))

	mut := g.Reset()
	assert.Len(t, mut.Evicted, 16)
	assert.Zero(t, g.Len())

	mut = g.Refresh(context.Background(), lookingAt(0, 0))
	assert.Len(t, mut.Inserted, 16)
	assert.Equal(t, 2, gen.count(CellKey{1, 1}))
}

func refreshUntil(t *testing.T, g *PlantGrid, ray Ray, want int) GridMutations {
	t.Helper()
	var all GridMutations
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		mut := g.Refresh(context.Background(), ray)
		all.Inserted = append(all.Inserted, mut.Inserted...)
		all.Evicted = append(all.Evicted, mut.Evicted...)
		if g.Len() == want && g.Pending() == 0 {
			return all
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("grid holds %d cells, want %d", g.Len(), want)
	return all
}

func TestPlantGridAsync(t *testing.T) {
	gen := newCountingGenerator()
	opts := DefaultGridOptions()
	opts.Workers = 3
	g := NewPlantGrid(gen, opts)
	defer g.Close()

	mut := refreshUntil(t, g, lookingAt(0, 0), 16)
	assert.Len(t, mut.Inserted, 16)
	assertWindow(t, g)
	for _, c := range g.Cells() {
		assert.Equal(t, 1, gen.count(c.Key), "cell %v generated more than once", c.Key)
	}
}

func TestPlantGridAsyncDropsStaleResults(t *testing.T) {
	gen := newCountingGenerator()
	gen.gate = make(chan struct{})
	opts := DefaultGridOptions()
	opts.Workers = 16
	g := NewPlantGrid(gen, opts)
	defer g.Close()

	mut := g.Refresh(context.Background(), lookingAt(0, 0))
	assert.Empty(t, mut.Inserted)
	assert.Equal(t, 16, g.Pending())

	g.Reset()
	gen.mu.Lock()
	close(gen.gate)
	gen.gate = nil
	gen.mu.Unlock()

	refreshUntil(t, g, lookingAt(0, 0), 16)
	for _, c := range g.Cells() {
		var n int
		_, err := fmt.Sscan(c.Mesh.Name, &n)
		require.NoError(t, err)
		assert.Greater(t, n, 16, "cell %v kept a mesh generated before the reset", c.Key)
	}
}

func TestPlantGridWithFactory(t *testing.T) {
	cfg := lsystem.NewConfig("F", 2)
	cfg.AddRule('F', lsystem.Production{Weight: 1, Out: "F[+F]F[-F]"}, lsystem.Production{Weight: 1, Out: "F[&F]F"})
	factory := NewPlantFactory(cfg, 7, NewShapeConverter(4, 0), nil)
	g := NewPlantGrid(factory, DefaultGridOptions())

	g.Refresh(context.Background(), lookingAt(0, 0))
	first := g.cells[CellKey{1, 1}].Mesh

	// slide away until the cell is evicted, then come back
	g.Refresh(context.Background(), lookingAt(30, 30))
	_, present := g.cells[CellKey{1, 1}]
	require.False(t, present)
	g.Refresh(context.Background(), lookingAt(0, 0))
	again := g.cells[CellKey{1, 1}].Mesh

	assert.Equal(t, first.Vertices, again.Vertices)
	assert.True(t, again.IndicesInRange())
}

func TestPlantFactoryCancelled(t *testing.T) {
	factory := NewPlantFactory(lsystem.NewConfig("F", 0), 1, NewShapeConverter(3, 0), nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := factory.Generate(ctx, CellKey{})
	assert.ErrorIs(t, err, context.Canceled)
}
