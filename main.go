package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/google/uuid"

	"github.com/pthm-cable/blobs/config"
	"github.com/pthm-cable/blobs/game"
	"github.com/pthm-cable/blobs/telemetry"
	"github.com/pthm-cable/blobs/ui"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	headless := flag.Bool("headless", false, "Run without graphics")
	logStats := flag.Bool("log-stats", false, "Output stats via slog")
	logLevel := flag.String("log-level", "info", "Log level: debug, info, warn or error")
	statsWindow := flag.Float64("stats-window", 0, "Stats window size in seconds (0 = use config)")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs, config and run info")
	seed := flag.Int64("seed", 0, "RNG seed (0 = time-based)")
	maxTicks := flag.Int("max-ticks", 0, "Stop after N ticks (0 = unlimited)")
	stepsPerUpdate := flag.Int("steps-per-update", 1, "Simulation ticks per update call (higher = faster headless runs)")

	flag.Parse()

	runID := uuid.NewString()

	var level slog.Level
	if err := level.UnmarshalText([]byte(*logLevel)); err != nil {
		fmt.Fprintf(os.Stderr, "invalid -log-level %q: %v\n", *logLevel, err)
		os.Exit(2)
	}
	// JSON to stdout for structured logging
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})).With("run_id", runID)
	slog.SetDefault(logger)

	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}

	opts := game.Options{
		Seed:           rngSeed,
		LogStats:       *logStats,
		StatsWindowSec: *statsWindow,
		OutputDir:      *outputDir,
		Headless:       *headless,
		StepsPerUpdate: *stepsPerUpdate,
	}

	var err error
	if *headless {
		err = runHeadless(cfg, opts, runID, *maxTicks)
	} else {
		err = runWindowed(cfg, opts, runID, *maxTicks)
	}
	if err != nil {
		slog.Error("simulation failed", "error", err)
		os.Exit(1)
	}
}

// runHeadless steps the game until max ticks or an interrupt.
func runHeadless(cfg *config.Config, opts game.Options, runID string, maxTicks int) error {
	g, err := game.NewGame(cfg, opts)
	if err != nil {
		return err
	}
	info := telemetry.RunInfo{RunID: runID, StartedAt: time.Now()}
	defer finish(g, info)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	slog.Info("starting headless simulation",
		"seed", opts.Seed,
		"stats_window", opts.StatsWindowSec,
		"max_ticks", maxTicks,
		"steps_per_update", opts.StepsPerUpdate,
	)

	for {
		select {
		case <-ctx.Done():
			slog.Info("interrupted", "tick", g.Tick())
			return nil
		default:
		}

		g.UpdateHeadless()

		if maxTicks > 0 && g.Tick() >= uint64(maxTicks) {
			slog.Info("max ticks reached", "tick", g.Tick())
			g.LogWorldState()
			return nil
		}
	}
}

// runWindowed opens a raylib window and runs the viewer until it is closed.
func runWindowed(cfg *config.Config, opts game.Options, runID string, maxTicks int) error {
	rl.SetConfigFlags(rl.FlagWindowResizable)
	rl.InitWindow(int32(cfg.Screen.Width), int32(cfg.Screen.Height), "Blobs")
	defer rl.CloseWindow()

	rl.SetTargetFPS(int32(cfg.Screen.TargetFPS))

	g, err := game.NewGame(cfg, opts)
	if err != nil {
		return err
	}
	defer finish(g, telemetry.RunInfo{RunID: runID, StartedAt: time.Now()})

	viewer := ui.NewViewer(g)
	for !rl.WindowShouldClose() {
		viewer.Update()
		viewer.Draw()

		if maxTicks > 0 && g.Tick() >= uint64(maxTicks) {
			break
		}
	}
	return nil
}

// finish writes run.yaml and closes the game's output.
func finish(g *game.Game, info telemetry.RunInfo) {
	info.EndedAt = time.Now()
	if err := g.WriteRunInfo(info); err != nil {
		slog.Error("failed to write run info", "error", err)
	}
	if err := g.Close(); err != nil {
		slog.Error("failed to close output", "error", err)
	}
}
