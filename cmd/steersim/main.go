package main

import (
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/arcfield/steer/config"
	"github.com/arcfield/steer/sim"
	"github.com/arcfield/steer/telemetry"
)

func main() {
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot (empty = use config)")
	maxTicks := flag.Int("max-ticks", 0, "Stop after N ticks (0 = unlimited)")
	seed := flag.Int64("seed", 0, "RNG seed (0 = use config, config 0 = time-based)")
	watch := flag.Bool("watch", false, "Watch the config file and hot-reload on change")
	logStats := flag.Bool("log-stats", false, "Log window stats via slog")

	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	if *seed != 0 {
		cfg.World.Seed = *seed
	}
	if cfg.World.Seed == 0 {
		cfg.World.Seed = time.Now().UnixNano()
	}

	dir := cfg.Telemetry.OutputDir
	if *outputDir != "" {
		dir = *outputDir
	}
	out, err := telemetry.NewOutputManager(dir, cfg.Telemetry.FlushEvery)
	if err != nil {
		slog.Error("failed to create output manager", "error", err)
		os.Exit(1)
	}
	defer out.Close()

	if err := out.WriteConfig(cfg); err != nil {
		slog.Error("failed to snapshot config", "error", err)
		os.Exit(1)
	}

	world, err := sim.NewWorld(cfg, out)
	if err != nil {
		slog.Error("failed to build world", "error", err)
		os.Exit(1)
	}
	defer world.Close()

	var watcher *config.Watcher
	if *watch {
		if *configPath == "" {
			slog.Error("-watch requires -config")
			os.Exit(1)
		}
		watcher, err = config.NewWatcher(*configPath)
		if err != nil {
			slog.Error("failed to watch config", "error", err)
			os.Exit(1)
		}
		defer watcher.Close()
	}

	slog.Info("starting simulation",
		"seed", cfg.World.Seed,
		"agents", cfg.World.Agents,
		"max_ticks", *maxTicks,
		"output_dir", out.Dir(),
	)

	statsWindow := cfg.Telemetry.PerfCollectorWindow
	if statsWindow <= 0 {
		statsWindow = 120
	}

	for {
		if watcher != nil {
			select {
			case fresh := <-watcher.Configs:
				if err := world.Rebuild(fresh); err != nil {
					slog.Error("config reload failed", "error", err)
				} else {
					slog.Info("config reloaded", "tick", world.Tick())
				}
			case err := <-watcher.Errors:
				slog.Error("config watch error", "error", err)
			default:
			}
		}

		if err := world.Step(); err != nil {
			slog.Error("step failed", "tick", world.Tick(), "error", err)
			os.Exit(1)
		}

		if *logStats && world.Tick()%int64(statsWindow) == 0 {
			world.WindowStats().LogStats()
			world.Perf().Stats().LogStats()
		}

		if *maxTicks > 0 && int(world.Tick()) >= *maxTicks {
			slog.Info("max ticks reached", "tick", world.Tick())
			return
		}
	}
}
