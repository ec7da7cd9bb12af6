// Command meadow opens a window onto an endless field of L-system plants.
package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"meadow/core"
	"meadow/internal/config"
	"meadow/internal/logx"
	"meadow/internal/opengl"
	"meadow/internal/watch"
	"meadow/lsystem"
	"meadow/scene"
	"meadow/window"

	"github.com/spf13/pflag"
)

const maxFrameTime = 0.05

func main() {
	var (
		configPath = pflag.StringP("config", "c", "", "TOML config file")
		grammar    = pflag.StringP("grammar", "g", "", "grammar file, overrides the config")
		seed       = pflag.Uint64("seed", 0, "scene seed, overrides the config when non-zero")
		vv         = pflag.Bool("vv", false, "debug logging")
		v          = pflag.BoolP("verbose", "v", false, "info logging")
		q          = pflag.BoolP("quiet", "q", false, "errors only")
	)
	pflag.Parse()
	logger := logx.Setup(os.Stderr, *vv, *v, *q)

	cfg, err := config.Load(*configPath)
	if err != nil {
		fatal(logger, "load config", err)
	}
	if *grammar != "" {
		cfg.Grammar = *grammar
	}
	if *seed != 0 {
		cfg.Seed = *seed
	}
	if err := run(cfg, logger); err != nil {
		fatal(logger, "meadow", err)
	}
}

func fatal(logger *slog.Logger, msg string, err error) {
	logger.Error(msg, "err", err)
	os.Exit(1)
}

func run(cfg *config.Config, logger *slog.Logger) error {
	grammar, err := lsystem.Load(cfg.Grammar)
	if err != nil {
		return err
	}
	height, err := cfg.HeightField()
	if err != nil {
		return err
	}
	initial, err := cfg.ControllerKind()
	if err != nil {
		return err
	}

	win, err := window.New(window.Config{
		Width:     cfg.Window.Width,
		Height:    cfg.Window.Height,
		Title:     cfg.Window.Title,
		Resizable: true,
		VSync:     cfg.Window.VSync,
	})
	if err != nil {
		return err
	}
	defer win.Destroy()

	r, err := opengl.NewRenderer(logger)
	if err != nil {
		return err
	}
	defer r.Destroy()

	opts := cfg.MeadowOptions(grammar, height)
	opts.Logger = logger
	m := scene.NewMeadow(opts)
	defer m.Close()

	var changes <-chan string
	if cfg.Watch {
		w, err := watch.New(cfg.Grammar, 100*time.Millisecond, logger)
		if err != nil {
			logger.Warn("grammar hot reload disabled", "err", err)
		} else {
			defer w.Close()
			changes = w.Changes()
		}
	}

	ctx := context.Background()
	cmds := []scene.Command{scene.SelectController{Kind: initial}}
	var st status
	last := time.Now()

	for !win.ShouldClose() {
		win.PollEvents()
		if win.KeyTriggered(core.KeyEscape) {
			win.SetShouldClose()
			continue
		}

		reload := win.KeyTriggered(core.KeyR)
		select {
		case path := <-changes:
			logger.Info("grammar changed", "path", path)
			reload = true
		default:
		}
		if reload {
			if next, err := lsystem.Load(cfg.Grammar); err != nil {
				logger.Error("grammar reload failed", "err", err)
			} else {
				cmds = append(cmds, scene.ReloadGrammar{Config: next})
			}
		}
		if win.KeyTriggered(core.KeyF) {
			cmds = append(cmds, scene.SelectController{Kind: scene.ControllerFree})
		}
		if win.KeyTriggered(core.KeyG) {
			cmds = append(cmds, scene.SelectController{Kind: scene.ControllerIsometric})
		}

		fw, fh := win.GetFramebufferSize()
		r.SetViewport(fw, fh)
		m.Camera.UpdateAspectRatio(float32(fw), float32(fh))

		now := time.Now()
		dt := min(float32(now.Sub(last).Seconds()), maxFrameTime)
		last = now

		frame := m.Update(ctx, dt, win, cmds...)
		cmds = cmds[:0]
		for _, c := range frame.Plants.Evicted {
			r.ReleaseMesh(c.Mesh)
		}

		r.BeginFrame(m.SkyColor, m.Camera)
		r.DrawMesh(m.Floor, m.FloorTransform(frame))
		for _, c := range m.VisiblePlants() {
			r.DrawMesh(c.Mesh, c.Transform)
		}
		r.DrawMeshInstanced(m.BladeMesh, m.Grass.Instances)
		r.DrawMeshInstanced(m.DustMesh, m.Dust.Instances)
		win.SwapBuffers()

		st.add(frame)
		if t := st.title(now, m); t != "" {
			win.SetTitle(t)
			logger.Debug("frame stats", "title", t, "uploaded", r.Uploaded())
		}
	}
	logger.Info("exiting")
	return nil
}
