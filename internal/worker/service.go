package worker

import (
	"context"
	"errors"

	"github.com/hibiken/asynq"

	"portfolio/internal/config"
	"portfolio/internal/logger"
	"portfolio/internal/queue"
)

// Service runs the asynq server.
type Service struct {
	server *asynq.Server
	mux    *asynq.ServeMux
}

// NewService creates the worker. It fails when the queue is disabled.
func NewService(cfg *config.Config, consumer *Consumer) (*Service, error) {
	if cfg == nil || !cfg.Queue.Enabled {
		return nil, errors.New("queue disabled")
	}
	if consumer == nil {
		return nil, errors.New("consumer is nil")
	}
	serverCfg := queue.ServerConfig(cfg)
	serverCfg.Logger = logger.S()
	server := asynq.NewServer(queue.RedisOpt(cfg), serverCfg)
	mux := asynq.NewServeMux()
	consumer.Register(mux)
	return &Service{server: server, mux: mux}, nil
}

// Run processes tasks until ctx is done, then shuts down gracefully.
func (s *Service) Run(ctx context.Context) error {
	if s == nil || s.server == nil || s.mux == nil {
		return errors.New("worker not initialized")
	}
	if err := s.server.Start(s.mux); err != nil {
		return err
	}
	logger.Infow("worker_started")
	<-ctx.Done()
	s.server.Shutdown()
	logger.Infow("worker_stopped")
	return nil
}
