// Package main is the entry point of the portfolio server. It exposes
// the serve, worker, migrate and seed commands.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"portfolio/internal/config"
	"portfolio/internal/logger"
)

var rootCmd = &cobra.Command{
	Use:           "portfolio",
	Short:         "Blog, project gallery and comment moderation API",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rootCmd.AddCommand(serveCmd, workerCmd, migrateCmd, seedCmd)
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		logger.Errorw("command_failed", "error", err)
		os.Exit(1)
	}
}

// loadConfig reads the configuration and installs the global logger.
// Development logs to the console, every other environment to rotated
// JSON files.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	mode := "release"
	if cfg.IsDev() {
		mode = "debug"
	}
	logger.Init(mode, cfg.Log.ToLoggerOptions())
	logger.Infow("configuration_loaded", "env", cfg.App.Env, "addr", cfg.Addr())
	return cfg, nil
}
