// Package main is the entry point for the almond level viewer.
package main

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/Faultbox/almond/internal/config"
	"github.com/Faultbox/almond/internal/game"
	"github.com/Faultbox/almond/internal/logger"
)

func main() {
	config.ParseFlags()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	if err := logger.InitRotating(cfg.Logging.Level, cfg.Logging.LogFile, cfg.Logging.MaxSizeMB, cfg.Logging.MaxBackups); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("=== almond ===")
	logger.Sugar.Debugf("Config: %+v", cfg)

	g, err := game.New(cfg, logger.Log)
	if err != nil {
		logger.Error("failed to start viewer", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
	defer g.Close()

	if err := g.Run(); err != nil {
		logger.Error("viewer error", zap.Error(err))
		return
	}

	logger.Info("viewer closed normally")
}
