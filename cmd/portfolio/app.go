package main

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/redis/go-redis/v9"

	"portfolio/internal/cache"
	"portfolio/internal/config"
	"portfolio/internal/database"
	"portfolio/internal/imaging"
	"portfolio/internal/logger"
	"portfolio/internal/mailer"
	"portfolio/internal/opengraph"
	"portfolio/internal/publish"
	"portfolio/internal/storage"
	"portfolio/internal/store"
	"portfolio/internal/worker"
)

// app holds the connections shared by the commands.
type app struct {
	cfg    *config.Config
	db     *sql.DB
	valkey *redis.Client
	store  *store.Store
}

func openDB(ctx context.Context, cfg *config.Config) (*sql.DB, error) {
	db, err := database.Connect(ctx, cfg.DSN(), database.Pool{})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	return db, nil
}

// bootstrap connects to PostgreSQL and Valkey.
func bootstrap(ctx context.Context, cfg *config.Config) (*app, error) {
	db, err := openDB(ctx, cfg)
	if err != nil {
		return nil, err
	}
	rdb, err := cache.ConnectValkey(cfg.ValkeyAddr(), cfg.Valkey.Password, cfg.Valkey.DB)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("connect valkey: %w", err)
	}
	return &app{cfg: cfg, db: db, valkey: rdb, store: store.New(db)}, nil
}

func (a *app) Close() {
	if err := a.valkey.Close(); err != nil {
		logger.Warnw("valkey_close_failed", "error", err)
	}
	if err := a.db.Close(); err != nil {
		logger.Warnw("database_close_failed", "error", err)
	}
}

// cards returns the OpenGraph publisher. Without object storage it is
// disabled and the guard skips card uploads.
func (a *app) cards(ctx context.Context, images imaging.Encoder) (publish.CardPublisher, error) {
	client, err := storage.New(ctx, a.cfg.S3)
	if err != nil {
		return nil, fmt.Errorf("init object storage: %w", err)
	}
	if client == nil {
		logger.Warnw("object_storage_not_configured", "effect", "opengraph cards disabled")
		return opengraph.New(nil, images, logger.Z()), nil
	}
	logger.Infow("object_storage_connected", "endpoint", a.cfg.S3.Endpoint, "bucket", a.cfg.S3.Bucket)
	return opengraph.New(client, images, logger.Z()), nil
}

// newWorker builds the queue consumer service.
func (a *app) newWorker() (*worker.Service, error) {
	sender := mailer.New(a.cfg.SMTP)
	if !sender.Configured() {
		logger.Warnw("smtp_not_configured", "effect", "queued emails will fail and retry")
	}
	return worker.NewService(a.cfg, worker.NewConsumer(a.store, sender, a.cfg.SMTP.Contact))
}
