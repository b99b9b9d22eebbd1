// Package opengraph publishes social preview cards for posts and projects
// to object storage.
package opengraph

import (
	"context"
	"errors"
	"fmt"
	"path"

	"go.uber.org/zap"

	"portfolio/internal/imaging"
	"portfolio/internal/logger"
)

// Bucket is where cards are stored. *storage.Client satisfies it.
type Bucket interface {
	Put(ctx context.Context, key, contentType string, data []byte) error
	Delete(ctx context.Context, key string) error
	URL(key string) string
}

// ErrDisabled is returned when no bucket is configured.
var ErrDisabled = errors.New("opengraph publishing disabled")

// Publisher renders and uploads cards.
type Publisher struct {
	bucket Bucket
	images imaging.Encoder
	log    *zap.Logger
}

// New creates a Publisher. A nil bucket disables publishing.
func New(bucket Bucket, images imaging.Encoder, log *zap.Logger) *Publisher {
	return &Publisher{bucket: bucket, images: images, log: logger.Or(log).Named("opengraph")}
}

// Enabled reports whether cards are uploaded.
func (p *Publisher) Enabled() bool {
	return p != nil && p.bucket != nil && p.images != nil
}

// PostKey is the object key of a post's card. Post slugs are only unique
// per blog, so the blog slug is part of the key.
func PostKey(blogSlug, postSlug string) string {
	return path.Join("og", "posts", blogSlug, postSlug+".png")
}

// ProjectKey is the object key of a project's card.
func ProjectKey(slug string) string {
	return path.Join("og", "projects", slug+".png")
}

// Publish renders src as a card and stores it under key. It returns the
// card's public URL.
func (p *Publisher) Publish(ctx context.Context, key string, src []byte) (string, error) {
	if !p.Enabled() {
		return "", ErrDisabled
	}
	card, err := p.images.OpenGraph(src)
	if err != nil {
		return "", fmt.Errorf("render card: %w", err)
	}
	if err := p.bucket.Put(ctx, key, card.ContentType, card.Data); err != nil {
		return "", err
	}
	url := p.bucket.URL(key)
	p.log.Debug("card published", zap.String("key", key), zap.String("url", url))
	return url, nil
}

// Remove deletes the card stored under key.
func (p *Publisher) Remove(ctx context.Context, key string) error {
	if !p.Enabled() {
		return ErrDisabled
	}
	return p.bucket.Delete(ctx, key)
}
