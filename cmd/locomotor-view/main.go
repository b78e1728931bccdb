package main

import (
	"flag"
	"log/slog"
	"os"

	"github.com/Versifine/locomotor/internal/config"
	"github.com/Versifine/locomotor/internal/event"
	"github.com/Versifine/locomotor/internal/logger"
	"github.com/Versifine/locomotor/internal/script"
	"github.com/Versifine/locomotor/internal/sim"
	"github.com/Versifine/locomotor/internal/viewer"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "path to the config file")
	mode := flag.String("mode", "", "override sim.mode (first_person, orbit, floating)")
	scenario := flag.String("script", "", "tengo scenario to drive input alongside the keyboard")
	zoom := flag.Float64("zoom", 0, "pixels per world unit")
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
	logger.Init(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})

	bus, err := event.NewBusWithWorkers(cfg.Events.Workers)
	if err != nil {
		logger.L().Error("Failed to start event bus", "error", err)
		os.Exit(1)
	}
	defer bus.Close()
	if cfg.Events.Log {
		bus.SubscribeAll(event.LogHandler(logger.Component("telemetry")))
	}

	runner, err := sim.New(cfg, sim.WithPublisher(bus))
	if err != nil {
		logger.L().Error("Failed to build simulation", "error", err)
		os.Exit(1)
	}
	if cfg.Script.Path != "" {
		s, err := script.Load(cfg.Script.Path, runner, script.WithMaxAllocs(cfg.Script.MaxAllocs))
		if err != nil {
			logger.L().Error("Failed to load scenario", "error", err)
			os.Exit(1)
		}
		runner.AddHook(s)
	}
	if err := runner.Start(); err != nil {
		logger.L().Error("Failed to start simulation", "error", err)
		os.Exit(1)
	}
	defer runner.Stop()

	if err := viewer.Run(runner, viewer.Options{
		Title:     "locomotor - " + cfg.Sim.Mode,
		FrameRate: int(cfg.Sim.FrameRate),
		Zoom:      *zoom,
	}); err != nil {
		logger.L().Error("Viewer stopped", "error", err)
		os.Exit(1)
	}
}
