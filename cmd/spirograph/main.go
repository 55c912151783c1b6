// Command spirograph opens a window and animates the spirograph curve or the lit triangle.
//
// Usage:
//
//	spirograph [-config demo.yaml] [-scene spirograph|lit] [-backend gl|wgpu] [-profile]
//
// When a config file is given it is watched; saving new spirograph params restarts the curve.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/Carmen-Shannon/oxy-spiro/config"
	"github.com/Carmen-Shannon/oxy-spiro/engine"
	"github.com/Carmen-Shannon/oxy-spiro/engine/renderer"
	"github.com/Carmen-Shannon/oxy-spiro/engine/scene"
	"github.com/Carmen-Shannon/oxy-spiro/engine/window"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file (watched for spirograph params)")
	sceneName := flag.String("scene", "", "scene to run: spirograph or lit (overrides the config)")
	backend := flag.String("backend", "", "renderer backend: gl or wgpu (overrides the config)")
	profile := flag.Bool("profile", false, "log FPS and memory once per second")
	flag.Parse()

	if err := run(*configPath, *sceneName, *backend, *profile); err != nil {
		fmt.Fprintf(os.Stderr, "spirograph: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath, sceneName, backend string, profile bool) error {
	cfg, err := loadConfig(configPath, sceneName)
	if err != nil {
		return err
	}
	if backend != "" {
		cfg.Renderer.Backend = backend
	}
	cfg.Profile = cfg.Profile || profile
	if err := cfg.Validate(); err != nil {
		return err
	}

	// ── Window + Renderer ───────────────────────────────────────────────
	win := window.NewWindow(cfg.WindowOptions()...)
	r := renderer.NewRenderer(cfg.BackendType(), win, cfg.RendererOptions()...)

	// ── Scene ───────────────────────────────────────────────────────────
	sc, err := scene.New(cfg.Scene, cfg.SceneOptions()...)
	if err != nil {
		return err
	}

	// ── Engine ──────────────────────────────────────────────────────────
	eng := engine.NewEngine(
		engine.WithWindow(win),
		engine.WithRenderer(r),
		engine.WithScene(sc),
		engine.WithProfiling(cfg.Profile),
		engine.WithFrameLimit(cfg.FrameLimit),
	)

	// ── Live params ─────────────────────────────────────────────────────
	if configPath != "" && cfg.Scene == scene.SpirographName {
		w, err := config.NewWatcher(configPath, cfg.Spirograph.Params)
		if err != nil {
			log.Printf("[Config] live reload disabled: %v", err)
		} else {
			defer w.Close()
			go func() {
				for p := range w.Params() {
					eng.SubmitParams(p)
				}
			}()
		}
	}

	log.Printf("[Engine] running %s on %s", cfg.Scene, cfg.BackendType())
	return eng.Run()
}

func loadConfig(path, sceneName string) (config.Config, error) {
	if path == "" {
		cfg := config.Default(sceneName)
		if sceneName != "" {
			cfg.Scene = sceneName
		}
		return cfg, nil
	}

	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, err
	}
	if sceneName != "" && sceneName != cfg.Scene {
		// Switching scene on the command line keeps the file's renderer and shader settings but
		// takes window and clear color defaults from the requested scene.
		def := config.Default(sceneName)
		cfg.Scene = sceneName
		cfg.Window = def.Window
		cfg.Renderer.ClearColor = def.Renderer.ClearColor
	}
	return cfg, nil
}
