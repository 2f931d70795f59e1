package main

import (
	"fmt"
	"path/filepath"

	"go.uber.org/zap"

	"pocketpet/internal/config"
	"pocketpet/internal/observability"
	"pocketpet/internal/parental"
	"pocketpet/internal/pet"
	"pocketpet/internal/save"
)

// app bundles the long-lived collaborators every command needs.
type app struct {
	cfg      config.Config
	logger   *zap.Logger
	registry *pet.Registry
	saves    save.Gateway
	gate     *parental.Gate
}

func newApp(opts *rootOptions) (*app, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, err
	}
	if opts.dataDir != "" {
		cfg.Data.Dir = opts.dataDir
	}
	// The terminal belongs to the game screen.
	if cfg.Logging.File == "" {
		cfg.Logging.File = filepath.Join(cfg.Data.Dir, "pocketpet.log")
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}

	registry := pet.DefaultRegistry()
	if cfg.Game.ArchetypesFile != "" {
		registry, err = pet.LoadRegistryFile(cfg.Game.ArchetypesFile)
		if err != nil {
			return nil, fmt.Errorf("loading archetypes: %w", err)
		}
	}

	saves, err := save.Open(cfg.Data, logger)
	if err != nil {
		return nil, fmt.Errorf("opening saves: %w", err)
	}

	gate, err := parental.Open(cfg.Data.ParentalFile(), logger)
	if err != nil {
		saves.Close()
		return nil, fmt.Errorf("opening parental settings: %w", err)
	}

	logger.Debug("app ready",
		zap.String("data_dir", cfg.Data.Dir),
		zap.String("save_backend", cfg.Data.SaveBackend),
	)
	return &app{cfg: cfg, logger: logger, registry: registry, saves: saves, gate: gate}, nil
}

func (a *app) Close() {
	if err := a.saves.Close(); err != nil {
		a.logger.Warn("closing saves", zap.Error(err))
	}
	_ = a.logger.Sync()
}
