package layout

import (
	"context"
	"strings"

	"peoplenet/domain/config"
)

// Strategy names a positioning algorithm
type Strategy string

const (
	StrategyCircular Strategy = "circular"
	StrategyForce    Strategy = "force"
)

// ParseStrategy parses a strategy name, defaulting to force
func ParseStrategy(raw string) Strategy {
	if Strategy(strings.ToLower(strings.TrimSpace(raw))) == StrategyCircular {
		return StrategyCircular
	}
	return StrategyForce
}

// Options control a one-shot layout
type Options struct {
	Strategy Strategy
	Width    float64
	Height   float64
	Ticks    int
}

// Position fills in node positions for a scene. Force layouts run headless
// for at most the requested ticks, bounded by the configured maximum.
func Position(ctx context.Context, scene Scene, opts Options, cfg *config.DomainConfig) (Scene, error) {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}
	if opts.Width <= 0 {
		opts.Width = 960
	}
	if opts.Height <= 0 {
		opts.Height = 720
	}

	if opts.Strategy == StrategyCircular {
		scene.Nodes = Circular(scene.Nodes, opts.Width, opts.Height, cfg.CircleRadius)
		frame(&scene, opts, cfg)
		return scene, nil
	}

	ticks := opts.Ticks
	if ticks <= 0 {
		ticks = cfg.DefaultTicks
	}
	if ticks > cfg.MaxTicks {
		ticks = cfg.MaxTicks
	}
	sim := NewSimulation(scene, opts.Width, opts.Height, cfg)
	n, err := sim.Run(ctx, ticks)
	scene.Ticks = n
	if err != nil {
		return scene, err
	}
	scene.Nodes = sim.Apply(scene.Nodes)
	frame(&scene, opts, cfg)
	return scene, nil
}

func frame(scene *Scene, opts Options, cfg *config.DomainConfig) {
	if len(scene.Nodes) == 0 {
		return
	}
	cam := NewCamera(cfg.MinZoom, cfg.MaxZoom)
	cam.Fit(scene.Nodes, opts.Width, opts.Height, cfg.FitPadding)
	scene.Camera = cam
}
