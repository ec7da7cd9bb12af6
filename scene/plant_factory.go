package scene

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"meadow/lsystem"
)

// PlantFactory generates plant meshes from the active grammar. Each cell
// draws from its own random stream seeded by the base seed and the cell
// key, so a cell regenerates identically after eviction.
type PlantFactory struct {
	config    atomic.Pointer[lsystem.Config]
	seed      uint64
	converter *ShapeConverter
	logger    *slog.Logger
}

func NewPlantFactory(cfg *lsystem.Config, seed uint64, converter *ShapeConverter, logger *slog.Logger) *PlantFactory {
	if logger == nil {
		logger = slog.Default()
	}
	f := &PlantFactory{seed: seed, converter: converter, logger: logger}
	f.config.Store(cfg)
	return f
}

// SetConfig swaps the grammar used by later generations.
func (f *PlantFactory) SetConfig(cfg *lsystem.Config) {
	f.config.Store(cfg)
}

func (f *PlantFactory) Config() *lsystem.Config {
	return f.config.Load()
}

func (f *PlantFactory) Generate(ctx context.Context, key CellKey) (*Mesh, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	start := time.Now()
	cfg := f.config.Load()
	rng := lsystem.NewRand(lsystem.CellSeed(f.seed, key.X, key.Z))
	shapes, stats := lsystem.Build(cfg, rng)
	built := time.Since(start)

	mesh, skipped := f.converter.BuildPlantMesh("plant "+key.String(), shapes)
	if stats.Underflows > 0 || stats.Unclosed > 0 {
		f.logger.Warn("unbalanced branches in plant",
			"cell", key, "underflows", stats.Underflows, "unclosed", stats.Unclosed)
	}
	f.logger.Debug("plant generated",
		"cell", key,
		"symbols", stats.Symbols,
		"segments", stats.Segments,
		"spheres", stats.Spheres,
		"skipped", skipped,
		"vertices", len(mesh.Vertices),
		"indices", len(mesh.Indices),
		"build", built,
		"mesh", time.Since(start)-built,
	)
	return mesh, nil
}
