package scene

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"meadow/math"

	"github.com/chewxy/math32"
	"golang.org/x/sync/errgroup"
)

// CellKey is an integer grid coordinate. A cell's plant stands at
// (X*spacing, 0, Z*spacing).
type CellKey struct {
	X, Z int
}

func (k CellKey) String() string {
	return fmt.Sprintf("(%d,%d)", k.X, k.Z)
}

// PlantCell is one streamed plant.
type PlantCell struct {
	Key       CellKey
	Mesh      *Mesh
	Transform math.Mat4
}

// GridMutations lists what a Refresh changed, so the renderer can upload
// new meshes and release evicted ones.
type GridMutations struct {
	Inserted []*PlantCell
	Evicted  []*PlantCell
}

func (m GridMutations) Empty() bool {
	return len(m.Inserted) == 0 && len(m.Evicted) == 0
}

// PlantGenerator builds the mesh for a cell. Implementations must be safe
// for concurrent use when the grid runs with workers.
type PlantGenerator interface {
	Generate(ctx context.Context, key CellKey) (*Mesh, error)
}

type GridOptions struct {
	// Count is the window width in cells.
	Count int
	// Spacing is the distance between neighbouring plants.
	Spacing int
	// Workers > 0 generates plants in the background with at most that
	// many concurrent generations. Zero generates inline.
	Workers int
	// Hysteresis, in cells, keeps the current centre until the look-at point
	// is this far past the cell edge. Zero re-snaps every frame.
	Hysteresis float32
	Logger     *slog.Logger
}

func DefaultGridOptions() GridOptions {
	return GridOptions{Count: 4, Spacing: 3}
}

type plantResult struct {
	key        CellKey
	generation int
	mesh       *Mesh
	err        error
}

// PlantGrid keeps a Count x Count window of plants around the point where
// the camera looks at the ground. It is driven from a single goroutine;
// background workers only hand meshes back through a channel.
type PlantGrid struct {
	count      int
	spacing    int
	hysteresis float32
	gen        PlantGenerator
	logger     *slog.Logger

	cells     map[CellKey]*PlantCell
	center    CellKey
	hasCenter bool

	// background generation
	group      *errgroup.Group
	ctx        context.Context
	cancel     context.CancelFunc
	pending    map[CellKey]struct{}
	results    chan plantResult
	generation int
}

func NewPlantGrid(gen PlantGenerator, opts GridOptions) *PlantGrid {
	if opts.Count < 1 {
		opts.Count = 1
	}
	if opts.Spacing < 1 {
		opts.Spacing = 1
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	g := &PlantGrid{
		count:      opts.Count,
		spacing:    opts.Spacing,
		hysteresis: opts.Hysteresis,
		gen:        gen,
		logger:     opts.Logger,
		cells:      make(map[CellKey]*PlantCell),
		pending:    make(map[CellKey]struct{}),
	}
	if opts.Workers > 0 {
		g.ctx, g.cancel = context.WithCancel(context.Background())
		g.group = &errgroup.Group{}
		g.group.SetLimit(opts.Workers)
		g.results = make(chan plantResult, opts.Workers)
	}
	return g
}

// Snap returns the cell nearest to a ground point.
func (g *PlantGrid) Snap(p math.Vec3) CellKey {
	s := float32(g.spacing)
	return CellKey{
		X: int(math32.Round(p.X / s)),
		Z: int(math32.Round(p.Z / s)),
	}
}

func (g *PlantGrid) shouldRecenter(ground math.Vec3) bool {
	if !g.hasCenter || g.hysteresis <= 0 {
		return true
	}
	s := float32(g.spacing)
	limit := 0.5 + g.hysteresis
	return math32.Abs(ground.X/s-float32(g.center.X)) > limit ||
		math32.Abs(ground.Z/s-float32(g.center.Z)) > limit
}

// InWindow reports whether key lies within the retention window: at most
// Count/2 cells from the current centre on each axis.
func (g *PlantGrid) InWindow(key CellKey) bool {
	if !g.hasCenter {
		return false
	}
	half := g.count / 2
	return abs(key.X-g.center.X) <= half && abs(key.Z-g.center.Z) <= half
}

// Refresh updates the window from the camera ray. Cells outside the window
// are evicted and missing ones created. A ray that never meets the ground
// leaves the grid untouched.
func (g *PlantGrid) Refresh(ctx context.Context, ray Ray) GridMutations {
	var mut GridMutations
	ground, ok := GroundIntersection(ray)
	if !ok {
		return mut
	}
	if g.shouldRecenter(ground) {
		g.center = g.Snap(ground)
		g.hasCenter = true
	}

	for key, cell := range g.cells {
		if !g.InWindow(key) {
			delete(g.cells, key)
			mut.Evicted = append(mut.Evicted, cell)
		}
	}
	g.collect(&mut)

	half := g.count / 2
	for dx := -half; dx < g.count-half; dx++ {
		for dz := -half; dz < g.count-half; dz++ {
			key := CellKey{X: g.center.X + dx, Z: g.center.Z + dz}
			if _, exists := g.cells[key]; exists {
				continue
			}
			if g.group != nil {
				g.dispatch(key)
				continue
			}
			mesh, err := g.gen.Generate(ctx, key)
			if err != nil {
				g.logger.Warn("plant generation failed", "cell", key, "err", err)
				continue
			}
			mut.Inserted = append(mut.Inserted, g.insert(key, mesh))
		}
	}
	return mut
}

func (g *PlantGrid) insert(key CellKey, mesh *Mesh) *PlantCell {
	s := float32(g.spacing)
	cell := &PlantCell{
		Key:       key,
		Mesh:      mesh,
		Transform: math.Mat4Translation(math.NewVec3(float32(key.X)*s, 0, float32(key.Z)*s)),
	}
	g.cells[key] = cell
	return cell
}

func (g *PlantGrid) dispatch(key CellKey) {
	if _, busy := g.pending[key]; busy {
		return
	}
	generation := g.generation
	started := g.group.TryGo(func() error {
		mesh, err := g.gen.Generate(g.ctx, key)
		select {
		case g.results <- plantResult{key: key, generation: generation, mesh: mesh, err: err}:
		case <-g.ctx.Done():
		}
		return nil
	})
	if started {
		g.pending[key] = struct{}{}
	}
}

// collect moves finished background generations into the grid.
func (g *PlantGrid) collect(mut *GridMutations) {
	if g.results == nil {
		return
	}
	for {
		select {
		case res := <-g.results:
			delete(g.pending, res.key)
			switch {
			case res.err != nil:
				g.logger.Warn("plant generation failed", "cell", res.key, "err", res.err)
			case res.generation != g.generation:
				g.logger.Debug("dropping stale plant", "cell", res.key)
			case !g.InWindow(res.key):
				g.logger.Debug("dropping plant outside window", "cell", res.key)
			default:
				if _, exists := g.cells[res.key]; !exists {
					mut.Inserted = append(mut.Inserted, g.insert(res.key, res.mesh))
				}
			}
		default:
			return
		}
	}
}

// Reset evicts every plant, e.g. after the grammar changed. In-flight
// generations are discarded when they finish.
func (g *PlantGrid) Reset() GridMutations {
	var mut GridMutations
	for key, cell := range g.cells {
		delete(g.cells, key)
		mut.Evicted = append(mut.Evicted, cell)
	}
	g.generation++
	return mut
}

// Cells returns the live plants ordered by key.
func (g *PlantGrid) Cells() []*PlantCell {
	cells := make([]*PlantCell, 0, len(g.cells))
	for _, c := range g.cells {
		cells = append(cells, c)
	}
	sort.Slice(cells, func(i, j int) bool {
		if cells[i].Key.X != cells[j].Key.X {
			return cells[i].Key.X < cells[j].Key.X
		}
		return cells[i].Key.Z < cells[j].Key.Z
	})
	return cells
}

func (g *PlantGrid) Len() int {
	return len(g.cells)
}

// Pending is the number of background generations not yet collected.
func (g *PlantGrid) Pending() int {
	return len(g.pending)
}

// Close stops background generation and waits for workers to exit.
func (g *PlantGrid) Close() error {
	if g.group == nil {
		return nil
	}
	g.cancel()
	return g.group.Wait()
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
