// cmd/dronesim-server/main.go
package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/opd-ai/go-dronestrike/pkg/config"
	"github.com/opd-ai/go-dronestrike/pkg/data"
	"github.com/opd-ai/go-dronestrike/pkg/health"
	"github.com/opd-ai/go-dronestrike/pkg/logging"
	"github.com/opd-ai/go-dronestrike/pkg/network"
)

// memoryLimitMB is the heap size above which the server reports not ready.
const memoryLimitMB = 500

func main() {
	logger := logging.NewLogger()
	ctx := context.Background()

	configPath := flag.String("config", "config.yaml", "Path to configuration file")
	createDefault := flag.Bool("default", false, "Create default configuration file")
	addr := flag.String("addr", "", "Listen address (overrides config)")
	flag.Parse()

	if *createDefault {
		if err := config.SaveConfig(config.DefaultConfig(), *configPath); err != nil {
			logger.Error(ctx, "Failed to create default configuration", err, "config_path", *configPath)
			os.Exit(1)
		}
		logger.Info(ctx, "Created default configuration file", "config_path", *configPath)
		return
	}

	cfg := config.DefaultConfig()
	if _, err := os.Stat(*configPath); os.IsNotExist(err) {
		logger.Info(ctx, "Configuration file not found, using default configuration", "config_path", *configPath)
	} else if cfg, err = config.LoadConfig(*configPath); err != nil {
		logger.Error(ctx, "Failed to load configuration", err, "config_path", *configPath)
		os.Exit(1)
	}
	config.ApplyEnvironmentOverrides(cfg)
	if *addr != "" {
		cfg.Server.Address = *addr
	}
	if err := cfg.Validate(); err != nil {
		logger.Error(ctx, "Invalid configuration", err)
		os.Exit(1)
	}

	bundle, err := data.Load(cfg.Data)
	if err != nil {
		logger.Error(ctx, "Failed to load game data", err,
			"parts", cfg.Data.PartsFile,
			"levels", cfg.Data.LevelsFile,
		)
		os.Exit(1)
	}
	logger.Info(ctx, "Game data loaded",
		"parts", bundle.Parts.Len(),
		"levels", len(bundle.Levels),
	)

	srv, err := network.NewServer(cfg, network.Resources{
		Parts:  bundle.Parts,
		Levels: bundle.Levels,
		Build:  bundle.Build,
	}, logger)
	if err != nil {
		logger.Error(ctx, "Failed to create server", err)
		os.Exit(1)
	}

	checker := health.NewChecker(0)
	checker.Add(health.NewServerCheck(srv))
	checker.Add(health.NewListenerCheck(srv))
	checker.Add(health.NewCapacityCheck(srv))
	checker.Add(health.NewMemoryCheck(memoryLimitMB, nil))

	mux := http.NewServeMux()
	mux.Handle("/ws", srv)
	checker.Mount(mux)

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := srv.ListenAndServe(ctx, mux); err != nil {
		logger.Error(ctx, "Server failed", err, "address", cfg.Server.Address)
		os.Exit(1)
	}
	logger.Info(context.Background(), "Server stopped")
}
