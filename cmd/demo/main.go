package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-gl/mathgl/mgl64"
	"gopkg.in/yaml.v3"

	"github.com/comalice/updatable"
	"github.com/comalice/updatable/clock"
	"github.com/comalice/updatable/internal/config"
	"github.com/comalice/updatable/loop"
	"github.com/comalice/updatable/parts"
)

// summary is printed after the run.
type summary struct {
	Registry updatable.Snapshot `yaml:"registry"`
	Ticks    uint64             `yaml:"ticks"`
	Reports  int                `yaml:"reports"`
	Blinkers map[string]any     `yaml:"blinkers,omitempty"`
	Ramps    map[string]any     `yaml:"ramps,omitempty"`
	Bodies   map[string]any     `yaml:"bodies,omitempty"`
}

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "demo: %v\n", err)
		os.Exit(1)
	}

	logger := newLogger(cfg.Loop)
	slog.SetDefault(logger)

	reg := updatable.New(
		updatable.WithClock(clock.NewMonotonicAt(cfg.Loop.ClockUnit, cfg.Loop.ClockOffset)),
		updatable.WithLogger(logger),
	)

	blinkers := make(map[string]*parts.Blinker)
	for _, b := range cfg.Blinkers {
		blinkers[b.Name] = parts.NewBlinker(b.Name, b.Period, logger)
		reg.Register(blinkers[b.Name])
	}
	ramps := make(map[string]*parts.Ramp)
	for _, r := range cfg.Ramps {
		ramps[r.Name] = parts.NewRamp(r.Name, r.From, r.Target, r.Rate)
		reg.Register(ramps[r.Name])
	}
	bodies := make(map[string]*parts.Body)
	for _, b := range cfg.Bodies {
		body := parts.NewBody(b.Name, vec3(b.Position))
		body.Velocity = vec3(b.Velocity)
		body.Acceleration = vec3(b.Acceleration)
		body.Damping = b.Damping
		body.Scale = cfg.Loop.ClockUnit.Seconds()
		bodies[b.Name] = body
		reg.Register(body)
	}
	if cfg.Loop.Debug {
		reg.SetDebugMode(true)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if cfg.Loop.Duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Loop.Duration)
		defer cancel()
	}

	reports := make(chan loop.Report, 256)
	rt := loop.NewRunner(reg, loop.Config{TickRate: cfg.Loop.TickRate},
		loop.WithLogger(logger),
		loop.WithReports(reports),
	)
	if err := rt.Start(ctx); err != nil {
		logger.Error("demo: start failed", "err", err)
		os.Exit(1)
	}

	received := 0
	for done := false; !done; {
		select {
		case rep := <-reports:
			received++
			if rep.Tick%1000 == 0 {
				logger.Debug("demo: tick", "tick", rep.Tick, "delta", rep.Delta, "participants", rep.Participants)
			}
		case <-rt.Done():
			done = true
		}
	}
	rt.Stop()

	// The loop goroutine has exited; the registry is ours again.
	out := summary{
		Registry: reg.Snapshot(),
		Ticks:    rt.TickNumber(),
		Reports:  received,
		Blinkers: map[string]any{},
		Ramps:    map[string]any{},
		Bodies:   map[string]any{},
	}
	for name, b := range blinkers {
		out.Blinkers[name] = map[string]any{"on": b.On, "toggles": b.Toggles}
	}
	for name, r := range ramps {
		out.Ramps[name] = map[string]any{"value": r.Value, "settled": r.Settled()}
	}
	for name, b := range bodies {
		out.Bodies[name] = map[string]any{"position": b.Position[:], "speed": b.Speed(), "distance": b.Distance}
	}

	data, err := yaml.Marshal(out)
	if err != nil {
		logger.Error("demo: yaml marshal", "err", err)
		os.Exit(1)
	}
	os.Stdout.Write(data)
}

func newLogger(cfg config.LoopConfig) *slog.Logger {
	lvl, _ := cfg.Level() // validated by config.Load
	opts := &slog.HandlerOptions{Level: lvl}
	if cfg.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}

func vec3(v []float64) mgl64.Vec3 {
	if len(v) != 3 {
		return mgl64.Vec3{}
	}
	return mgl64.Vec3{v[0], v[1], v[2]}
}
