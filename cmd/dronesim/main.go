// cmd/dronesim/main.go
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gdamore/tcell/v2"
	"github.com/gopxl/beep"

	"github.com/opd-ai/go-dronestrike/pkg/audio"
	"github.com/opd-ai/go-dronestrike/pkg/build"
	"github.com/opd-ai/go-dronestrike/pkg/config"
	"github.com/opd-ai/go-dronestrike/pkg/data"
	"github.com/opd-ai/go-dronestrike/pkg/engine"
	"github.com/opd-ai/go-dronestrike/pkg/logging"
	"github.com/opd-ai/go-dronestrike/pkg/mission"
	"github.com/opd-ai/go-dronestrike/pkg/render"
	"github.com/opd-ai/go-dronestrike/pkg/validation"
)

func main() {
	configPath := flag.String("config", "config.yaml", "Path to configuration file")
	createDefault := flag.Bool("default", false, "Create default configuration file")
	levelID := flag.String("level", "", "Level to fly (default: first level)")
	buildPath := flag.String("build", "", "Build file (overrides config)")
	logPath := flag.String("log", "dronesim.log", "Log file")
	mute := flag.Bool("mute", false, "Disable audio cues")
	power := flag.Float64("power", 65, "Launch power percent (15-100)")
	angle := flag.Float64("angle", -20, "Launch angle in degrees (-80 to 20, negative climbs)")
	ignoreBudget := flag.Bool("ignore-budget", false, "Fly builds over the level budget")
	ignoreEnergy := flag.Bool("ignore-energy", false, "Fly builds with a negative energy balance")
	flag.Parse()

	if *createDefault {
		if err := config.SaveConfig(config.DefaultConfig(), *configPath); err != nil {
			fmt.Fprintf(os.Stderr, "failed to create default configuration: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("created default configuration at %s\n", *configPath)
		return
	}

	logFile, err := os.OpenFile(*logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open log file: %v\n", err)
		os.Exit(1)
	}
	defer logFile.Close()
	logger := logging.New(logFile, logging.ParseLevel(os.Getenv(logging.LevelEnvVar)))

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if *buildPath != "" {
		cfg.Data.BuildFile = *buildPath
	}
	if *mute {
		cfg.Audio.Enabled = false
	}

	m, err := newMission(cfg, *levelID, build.Options{IgnoreBudget: *ignoreBudget, IgnoreEnergy: *ignoreEnergy}, logger)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := validation.ValidateLaunch(*power, *angle); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	if err := fly(ctx, cfg, m, launch{*power, *angle}, logger); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error(ctx, "simulator failed", err)
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadConfig(path string) (*config.SimConfig, error) {
	cfg := config.DefaultConfig()
	if _, err := os.Stat(path); err == nil {
		if cfg, err = config.LoadConfig(path); err != nil {
			return nil, err
		}
	}
	config.ApplyEnvironmentOverrides(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newMission loads the game data and prepares a driver for the chosen level.
func newMission(cfg *config.SimConfig, levelID string, opts build.Options, logger *logging.Logger) (*engine.Mission, error) {
	bundle, err := data.Load(cfg.Data)
	if err != nil {
		return nil, err
	}
	level, err := bundle.Level(levelID)
	if err != nil {
		return nil, err
	}

	summary := build.NewSummarizer(cfg.Stats).Calculate(bundle.Build, bundle.Parts, level.Budget(), opts)
	for _, w := range summary.Validation.Warnings {
		logger.Warn(context.Background(), "build warning", "level_id", level.ID, "warning", w)
	}
	state, err := mission.NewState(level, summary, build.NewDurabilityMap(summary),
		mission.WithViewport(cfg.Viewport),
		mission.WithFlightModel(cfg.Flight),
		mission.WithStatModel(cfg.Stats),
	)
	if err != nil {
		return nil, err
	}
	return engine.NewMission(state, cfg.Driver, logger), nil
}

// fly opens the terminal and speaker and runs m until the pilot quits.
func fly(ctx context.Context, cfg *config.SimConfig, m *engine.Mission, l launch, logger *logging.Logger) error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("failed to create screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("failed to initialize screen: %w", err)
	}
	defer screen.Fini()
	screen.HideCursor()

	var sink audio.Sink
	if cfg.Audio.Enabled {
		speaker, err := audio.NewSpeakerSink(beep.SampleRate(cfg.Audio.SampleRate))
		if err != nil {
			logger.Warn(m.Context(), "audio disabled", "error", err.Error())
		} else {
			defer speaker.Close()
			sink = speaker
		}
	}
	sounds := audio.NewSystem(sink, cfg.Audio)
	sub := sounds.Attach(m.EventBus)
	defer sub.Cancel()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := newPilot(m, screen, sounds, l, cancel)
	go p.readInput(ctx)

	renderer := render.NewTerminalRenderer(screen)
	if err := m.Run(ctx, p.keys, renderer.Render); err != nil {
		return err
	}
	m.View(renderer.Render)

	// The result stays on screen until the pilot quits.
	<-ctx.Done()
	return nil
}
