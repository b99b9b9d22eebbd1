// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package publish guards every create, edit and delete of blogs, posts and
// projects. A request is checked as a whole first: field rules, the
// civility gate on all free text, slug derivation and uniqueness, and the
// category or tag values. Every problem found is reported together, and
// nothing is written unless the whole check passes. Writes then happen in
// the same transaction as the uniqueness checks.
package publish

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"portfolio/internal/apperr"
	"portfolio/internal/civility"
	"portfolio/internal/imaging"
	"portfolio/internal/logger"
	"portfolio/internal/slug"
	"portfolio/internal/store"
	"portfolio/internal/validate"
)

// TagInvalidator drops a blog's cached tag list. *cache.TagCache satisfies it.
type TagInvalidator interface {
	Invalidate(ctx context.Context, blogID uuid.UUID) error
}

// CardPublisher uploads social preview cards. *opengraph.Publisher
// satisfies it.
type CardPublisher interface {
	Enabled() bool
	Publish(ctx context.Context, key string, src []byte) (string, error)
	Remove(ctx context.Context, key string) error
}

// Deps are the Guard's collaborators. Only Store is required.
type Deps struct {
	Store    store.Transactor
	Civility civility.Checker
	Images   imaging.Encoder
	TagCache TagInvalidator
	Cards    CardPublisher
	Logger   *zap.Logger
}

// Guard validates and persists authoring requests.
type Guard struct {
	tx     store.Transactor
	civil  civility.Checker
	images imaging.Encoder
	tags   TagInvalidator
	cards  CardPublisher
	log    *zap.Logger
}

// New creates a Guard. A nil Civility uses the built-in dictionary and a
// nil Images uses the default image service.
func New(d Deps) *Guard {
	g := &Guard{
		tx:     d.Store,
		civil:  d.Civility,
		images: d.Images,
		tags:   d.TagCache,
		cards:  d.Cards,
		log:    logger.Or(d.Logger).Named("publish"),
	}
	if g.civil == nil {
		g.civil = civility.Default()
	}
	if g.images == nil {
		g.images = imaging.New()
	}
	return g
}

const (
	msgFoul     = "contains foul language, please revise"
	msgNoSlug   = "must contain at least one letter or digit"
	msgNotImage = "must be a PNG, JPEG, GIF or WebP image"
)

// checks accumulates the violations of one request.
type checks struct {
	civ civility.Checker
	ve  *apperr.ValidationError
}

// begin runs the struct rules of in and returns the accumulator.
func (g *Guard) begin(in any) *checks {
	ve := validate.Struct(in)
	if ve == nil {
		ve = &apperr.ValidationError{}
	}
	return &checks{civ: g.civil, ve: ve}
}

// civil runs the civility gate over text.
func (c *checks) civil(field, text string) {
	if strings.TrimSpace(text) == "" {
		return
	}
	if v := c.civ.Check(text); !v.Civil {
		c.ve.Add(field, msgFoul)
	}
}

// slug derives the slug of source. A source that only holds punctuation
// yields an empty slug, which is a violation on field.
func (c *checks) slug(field, source string) string {
	s := slug.Generate(source)
	if strings.TrimSpace(source) != "" && !slug.HasContent(s) {
		c.ve.Add(field, msgNoSlug)
	}
	return s
}

func (c *checks) taken(s string) {
	c.ve.Addf("slug", "%q is already taken, please choose another", s)
}

// failed reports whether any violation was recorded.
func (c *checks) failed() bool { return !c.ve.Empty() }

// writeErr turns a failed write into the caller's error. A uniqueness
// violation means a concurrent request took the slug after it was checked.
func (c *checks) writeErr(op, s string, err error) error {
	if errors.Is(err, store.ErrConflict) {
		c.taken(s)
		return c.ve
	}
	return apperr.Persistence(op, err)
}

// encode renders an optional upload as PNG. With thumb, a thumbnail is
// produced as well.
func (g *Guard) encode(c *checks, field string, src []byte, thumb bool) (img, th *imaging.Encoded) {
	if len(src) == 0 {
		return nil, nil
	}
	if len(src) > imaging.MaxSourceBytes {
		c.ve.Addf(field, "must be at most %d MB", imaging.MaxSourceBytes>>20)
		return nil, nil
	}
	img, err := g.images.EncodePNG(src)
	if err != nil {
		c.ve.Add(field, msgNotImage)
		return nil, nil
	}
	if thumb {
		if th, err = g.images.Thumbnail(src); err != nil {
			c.ve.Add(field, msgNotImage)
			return nil, nil
		}
	}
	return img, th
}

// invalidateTags runs after commit. Failures only get logged: the cached
// list expires on its own.
func (g *Guard) invalidateTags(ctx context.Context, blogID uuid.UUID) {
	if g.tags == nil {
		return
	}
	if err := g.tags.Invalidate(ctx, blogID); err != nil {
		g.log.Warn("tag cache not invalidated", zap.Stringer("blog_id", blogID), zap.Error(err))
	}
}

func (g *Guard) publishCard(ctx context.Context, key string, src []byte) {
	if g.cards == nil || !g.cards.Enabled() || len(src) == 0 {
		return
	}
	if _, err := g.cards.Publish(ctx, key, src); err != nil {
		g.log.Warn("opengraph card not published", zap.String("key", key), zap.Error(err))
	}
}

func (g *Guard) removeCard(ctx context.Context, key string) {
	if g.cards == nil || !g.cards.Enabled() {
		return
	}
	if err := g.cards.Remove(ctx, key); err != nil {
		g.log.Warn("opengraph card not removed", zap.String("key", key), zap.Error(err))
	}
}

func notFound(kind string, id uuid.UUID) error {
	return fmt.Errorf("%s %s: %w", kind, id, apperr.ErrNotFound)
}
