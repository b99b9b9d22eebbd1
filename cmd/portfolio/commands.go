package main

import (
	"errors"

	"github.com/spf13/cobra"

	"portfolio/internal/database"
	"portfolio/internal/logger"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Run only the queue worker",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if !cfg.Queue.Enabled {
			return errors.New("queue is disabled, set QUEUE_ENABLED=true")
		}
		a, err := bootstrap(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		w, err := a.newWorker()
		if err != nil {
			return err
		}
		return w.Run(cmd.Context())
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		db, err := openDB(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer db.Close()
		return database.Migrate(db)
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create the development administrator and moderator accounts",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cfg.App.Env == "production" {
			return errors.New("refusing to seed development accounts in production")
		}
		db, err := openDB(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer db.Close()
		if err := database.Migrate(db); err != nil {
			return err
		}
		if err := database.Seed(cmd.Context(), db); err != nil {
			return err
		}
		logger.Infow("seed_complete")
		return nil
	},
}
