package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"portfolio/internal/authz"
	"portfolio/internal/browse"
	"portfolio/internal/cache"
	"portfolio/internal/civility"
	"portfolio/internal/comments"
	"portfolio/internal/database"
	"portfolio/internal/handlers"
	"portfolio/internal/imaging"
	"portfolio/internal/logger"
	"portfolio/internal/middleware"
	"portfolio/internal/publish"
	"portfolio/internal/queue"
	"portfolio/internal/router"
	"portfolio/internal/session"
)

const shutdownTimeout = 15 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API, and the queue worker when the queue is enabled",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return serve(cmd.Context())
	},
}

func serve(ctx context.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	a, err := bootstrap(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := database.Migrate(a.db); err != nil {
		return err
	}
	if cfg.IsDev() {
		if err := database.Seed(ctx, a.db); err != nil {
			return err
		}
	}

	az, err := authz.NewService(nil)
	if err != nil {
		return err
	}
	images := imaging.New()
	cards, err := a.cards(ctx, images)
	if err != nil {
		return err
	}
	tagCache := cache.NewTagCache(a.valkey, cfg.Cache.TagsTTL)
	jobs := queue.NewClient(cfg)
	defer jobs.Close()

	guard := publish.New(publish.Deps{
		Store:    a.store,
		Civility: civility.Default(),
		Images:   images,
		TagCache: tagCache,
		Cards:    cards,
		Logger:   logger.Z(),
	})
	sessions := session.NewStore(a.valkey, !cfg.IsDev())

	commentLimiter := middleware.NewRateLimiter(5, time.Minute, middleware.BySessionUser)
	defer commentLimiter.Stop()
	contactLimiter := middleware.NewRateLimiter(3, 10*time.Minute, middleware.ByRemoteAddr)
	defer contactLimiter.Stop()

	handler := router.New(router.Deps{
		Sessions:       sessions,
		Authz:          az,
		Logger:         logger.Z(),
		SecureCookies:  !cfg.IsDev(),
		CommentLimiter: commentLimiter,
		ContactLimiter: contactLimiter,
		Health: handlers.NewHealth(map[string]handlers.Pinger{
			"database": a.db,
			"valkey":   handlers.PingFunc(func(ctx context.Context) error { return a.valkey.Ping(ctx).Err() }),
		}),
		Auth:     handlers.NewAuth(a.store.Repos().Users, sessions),
		Public:   handlers.NewPublic(browse.New(a.store, tagCache, logger.Z()), az),
		Admin:    handlers.NewAdmin(guard),
		Comments: handlers.NewComments(comments.NewManager(a.store, jobs, logger.Z())),
		Contact:  handlers.NewContact(jobs),
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Infow("server_starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Infow("server_shutting_down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	if cfg.Queue.Enabled {
		w, err := a.newWorker()
		if err != nil {
			return err
		}
		g.Go(func() error { return w.Run(gctx) })
	}

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Infow("server_stopped")
	return nil
}
