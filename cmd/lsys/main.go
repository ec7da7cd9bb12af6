// Command lsys expands a grammar without a window and reports what the
// turtle and the mesh converter make of it.
package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"meadow/internal/logx"
	"meadow/lsystem"
	"meadow/scene"

	"github.com/spf13/pflag"
)

func main() {
	var (
		seed     = pflag.Uint64("seed", 1, "scene seed")
		x        = pflag.Int("x", 0, "cell x")
		z        = pflag.Int("z", 0, "cell z")
		iter     = pflag.IntP("iterations", "n", -1, "override the grammar's iteration count")
		printSym = pflag.BoolP("print", "p", false, "print the expanded symbol string")
		segments = pflag.Int("segments", 6, "cylinder segments")
		subdiv   = pflag.Int("subdivisions", 1, "icosphere subdivisions")
		v        = pflag.BoolP("verbose", "v", false, "info logging")
	)
	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: lsys [flags] grammar.(json|yaml)\n")
		pflag.PrintDefaults()
	}
	pflag.Parse()
	logger := logx.Setup(os.Stderr, false, *v, false)

	if pflag.NArg() != 1 {
		pflag.Usage()
		os.Exit(2)
	}
	cfg, err := lsystem.Load(pflag.Arg(0))
	if err != nil {
		logger.Error("load grammar", "err", err)
		os.Exit(1)
	}
	if *iter >= 0 {
		cfg.Iterations = *iter
		if err := cfg.Validate(); err != nil {
			logger.Error("iterations", "err", err)
			os.Exit(1)
		}
	}

	report(os.Stdout, cfg, lsystem.CellSeed(*seed, *x, *z), *printSym, scene.NewShapeConverter(*segments, *subdiv))
}

func report(w io.Writer, cfg *lsystem.Config, seed uint64, printSymbols bool, conv *scene.ShapeConverter) {
	start := time.Now()
	symbols := lsystem.Expand(cfg, lsystem.NewRand(seed))
	expanded := time.Since(start)

	start = time.Now()
	shapes, stats := lsystem.Interpret(symbols, cfg)
	interpreted := time.Since(start)

	start = time.Now()
	mesh, skipped := conv.BuildPlantMesh("plant", shapes)
	meshed := time.Since(start)

	if printSymbols {
		fmt.Fprintln(w, string(symbols))
	}
	fmt.Fprintf(w, "symbols     %d (%d unknown)\n", stats.Symbols, stats.Unknown)
	fmt.Fprintf(w, "segments    %d\n", stats.Segments)
	fmt.Fprintf(w, "spheres     %d\n", stats.Spheres)
	fmt.Fprintf(w, "branches    %d pushes, %d pops, depth %d\n", stats.Pushes, stats.Pops, stats.MaxDepth)
	if stats.Underflows > 0 || stats.Unclosed > 0 {
		fmt.Fprintf(w, "unbalanced  %d underflows, %d unclosed\n", stats.Underflows, stats.Unclosed)
	}
	fmt.Fprintf(w, "mesh        %d vertices, %d triangles, %d skipped\n", mesh.VertexCount(), len(mesh.Indices)/3, skipped)
	if mesh.HasLocalAABB {
		b := mesh.LocalAABB
		fmt.Fprintf(w, "bounds      (%.2f, %.2f, %.2f) .. (%.2f, %.2f, %.2f)\n", b.Min.X, b.Min.Y, b.Min.Z, b.Max.X, b.Max.Y, b.Max.Z)
	}
	fmt.Fprintf(w, "timings     expand %s, interpret %s, mesh %s\n", expanded, interpreted, meshed)
}
