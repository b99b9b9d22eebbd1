// Package queue enqueues background jobs on asynq. Jobs share the Valkey
// server with the cache but live on their own database index.
package queue

import (
	"context"
	"fmt"

	"github.com/hibiken/asynq"

	"portfolio/internal/config"
)

// DefaultQueue is the only queue the application uses.
const DefaultQueue = "default"

// Client wraps an asynq client. A disabled client accepts every job and
// drops it, so callers never need to check whether queuing is on.
type Client struct {
	client  *asynq.Client
	enabled bool
}

// NewClient creates a queue client from configuration.
func NewClient(cfg *config.Config) *Client {
	if cfg == nil || !cfg.Queue.Enabled {
		return &Client{}
	}
	return &Client{client: asynq.NewClient(RedisOpt(cfg)), enabled: true}
}

// Enabled reports whether jobs are actually enqueued.
func (c *Client) Enabled() bool {
	return c != nil && c.enabled && c.client != nil
}

// Close releases the client's connection.
func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

// EnqueueCommentNotice queues a notice to a comment's author.
func (c *Client) EnqueueCommentNotice(ctx context.Context, payload CommentNoticePayload) error {
	task, err := NewCommentNoticeTask(payload)
	if err != nil {
		return err
	}
	return c.enqueue(ctx, task, asynq.MaxRetry(5))
}

// EnqueueContactEmail queues a contact-form message for the site owner.
func (c *Client) EnqueueContactEmail(ctx context.Context, payload ContactEmailPayload) error {
	task, err := NewContactEmailTask(payload)
	if err != nil {
		return err
	}
	return c.enqueue(ctx, task, asynq.MaxRetry(10))
}

func (c *Client) enqueue(ctx context.Context, task *asynq.Task, opts ...asynq.Option) error {
	if !c.Enabled() {
		return nil
	}
	options := append([]asynq.Option{asynq.Queue(DefaultQueue)}, opts...)
	if _, err := c.client.EnqueueContext(ctx, task, options...); err != nil {
		return fmt.Errorf("enqueue %s: %w", task.Type(), err)
	}
	return nil
}

// RedisOpt returns the connection options for the queue's database.
func RedisOpt(cfg *config.Config) asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     cfg.ValkeyAddr(),
		Password: cfg.Valkey.Password,
		DB:       cfg.Queue.DB,
	}
}

// ServerConfig returns the worker settings.
func ServerConfig(cfg *config.Config) asynq.Config {
	concurrency := 10
	if cfg != nil && cfg.Queue.Concurrency > 0 {
		concurrency = cfg.Queue.Concurrency
	}
	return asynq.Config{
		Concurrency: concurrency,
		Queues:      map[string]int{DefaultQueue: 1},
	}
}
