package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/Versifine/locomotor/internal/config"
	"github.com/Versifine/locomotor/internal/debug"
	"github.com/Versifine/locomotor/internal/event"
	"github.com/Versifine/locomotor/internal/logger"
	"github.com/Versifine/locomotor/internal/script"
	"github.com/Versifine/locomotor/internal/sim"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "path to the config file")
	mode := flag.String("mode", "", "override sim.mode (first_person, orbit, floating)")
	scenario := flag.String("script", "", "tengo scenario to drive input (overrides script.path)")
	frames := flag.Int("frames", 0, "run this many frames as fast as possible, then exit")
	console := flag.Bool("console", false, "drive the player from the terminal")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}
	if *mode != "" {
		cfg.Sim.Mode = *mode
	}
	if *scenario != "" {
		cfg.Script.Path = *scenario
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("Invalid config", "path", *configPath, "error", err)
		os.Exit(1)
	}

	out, closer, err := logger.OpenOutput(cfg.Logging.File)
	if err != nil {
		slog.Error("Failed to open log file", "error", err)
		os.Exit(1)
	}
	defer closer.Close()
	logger.Init(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: out,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, *configPath, *frames, *console); err != nil {
		logger.L().Error("Simulation failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, configPath string, frames int, console bool) error {
	bus, err := event.NewBusWithWorkers(cfg.Events.Workers)
	if err != nil {
		return err
	}
	defer bus.Close()
	if cfg.Events.Log {
		bus.SubscribeAll(event.LogHandler(logger.Component("telemetry")))
	}

	runner, err := sim.New(cfg, sim.WithPublisher(bus))
	if err != nil {
		return err
	}

	if cfg.Script.Path != "" {
		s, err := script.Load(cfg.Script.Path, runner, script.WithMaxAllocs(cfg.Script.MaxAllocs))
		if err != nil {
			return err
		}
		runner.AddHook(s)
		logger.L().Info("Scenario loaded", "path", cfg.Script.Path)
	}

	if cfg.Sim.Watch {
		w, err := config.NewWatcher(configPath)
		if err != nil {
			return err
		}
		defer w.Close()
		go runner.WatchTuning(ctx, w)
	}

	if err := runner.Start(); err != nil {
		return err
	}
	defer runner.Stop()

	if frames > 0 {
		if err := runner.RunFrames(frames); err != nil {
			return err
		}
		logger.L().Info("Final state", "state", runner.Snapshot().String())
		return nil
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	if console {
		c := debug.NewConsole(runner)
		go func() {
			defer cancel()
			if err := c.Start(ctx); err != nil {
				logger.L().Error("Console stopped", "error", err)
			}
		}()
	}
	return runner.Run(ctx)
}
