// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package comments drives the comment lifecycle: a comment is added
// active, may be moderated, soft-deleted and restored, and is finally
// removed by a hard delete. Every transition loads, mutates and saves the
// comment inside one transaction.
package comments

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"portfolio/internal/apperr"
	"portfolio/internal/logger"
	"portfolio/internal/models"
	"portfolio/internal/queue"
	"portfolio/internal/store"
	"portfolio/internal/validate"
)

// Notifier queues a notice to a comment's author.
type Notifier interface {
	EnqueueCommentNotice(ctx context.Context, payload queue.CommentNoticePayload) error
}

// Manager owns comment state transitions.
type Manager struct {
	tx       store.Transactor
	notifier Notifier
	log      *zap.Logger
	now      func() time.Time
}

// NewManager creates a Manager. notifier and log may be nil.
func NewManager(tx store.Transactor, notifier Notifier, log *zap.Logger) *Manager {
	return &Manager{
		tx:       tx,
		notifier: notifier,
		log:      logger.Or(log).Named("comments"),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// NewComment is a visitor's submission.
type NewComment struct {
	Body string `json:"body" validate:"required,trimmed_min=2,max=500"`
}

// Moderation is a moderator's edit of a comment.
type Moderation struct {
	Body          string                `json:"body" validate:"required,trimmed_min=2,max=500"`
	ModeratedBody string                `json:"moderated_body" validate:"omitempty,trimmed_min=2,max=500"`
	Type          models.ModerationType `json:"moderation_type"`
}

func (m Moderation) validate() error {
	ve := validate.Struct(m)
	if !m.Type.Valid() {
		if ve == nil {
			ve = &apperr.ValidationError{}
		}
		ve.Addf("moderation_type", "unknown moderation type %q", m.Type)
	}
	return ve.Err()
}

// Add stores a new active comment on a post.
func (m *Manager) Add(ctx context.Context, postID, authorID uuid.UUID, in NewComment) (*models.Comment, error) {
	if ve := validate.Struct(in); ve != nil {
		return nil, ve
	}

	c := &models.Comment{PostID: postID, AuthorID: authorID, Body: strings.TrimSpace(in.Body)}
	err := m.tx.WithinTx(ctx, func(r store.Repos) error {
		post, err := r.Posts.FindByID(ctx, postID)
		if err != nil {
			return apperr.Persistence("find post", err)
		}
		if post == nil {
			return fmt.Errorf("post %s: %w", postID, apperr.ErrNotFound)
		}
		return apperr.Persistence("create comment", r.Comments.Create(ctx, c))
	})
	if err != nil {
		return nil, err
	}
	m.log.Debug("comment added", zap.Stringer("comment_id", c.ID), zap.Stringer("post_id", postID))
	return c, nil
}

// Get returns one comment.
func (m *Manager) Get(ctx context.Context, id uuid.UUID) (*models.Comment, error) {
	c, err := m.tx.Repos().Comments.FindByID(ctx, id)
	if err != nil {
		return nil, apperr.Persistence("find comment", err)
	}
	if c == nil {
		return nil, fmt.Errorf("comment %s: %w", id, apperr.ErrNotFound)
	}
	return c, nil
}

// ListByPost returns a post's comments, oldest first. With approvedOnly,
// soft-deleted comments are left out.
func (m *Manager) ListByPost(ctx context.Context, postID uuid.UUID, approvedOnly bool) ([]models.Comment, error) {
	f := store.CommentFilter{PostID: &postID}
	if approvedOnly {
		f.SoftDeleted = ptr(false)
	}
	return m.list(ctx, f)
}

// Approved lists every comment that is not soft-deleted.
func (m *Manager) Approved(ctx context.Context) ([]models.Comment, error) {
	return m.list(ctx, store.CommentFilter{SoftDeleted: ptr(false)})
}

// Moderated lists every moderated comment, soft-deleted ones included.
func (m *Manager) Moderated(ctx context.Context) ([]models.Comment, error) {
	return m.list(ctx, store.CommentFilter{Moderated: ptr(true)})
}

// SoftDeleted lists every soft-deleted comment.
func (m *Manager) SoftDeleted(ctx context.Context) ([]models.Comment, error) {
	return m.list(ctx, store.CommentFilter{SoftDeleted: ptr(true)})
}

func (m *Manager) list(ctx context.Context, f store.CommentFilter) ([]models.Comment, error) {
	items, err := m.tx.Repos().Comments.List(ctx, f)
	if err != nil {
		return nil, apperr.Persistence("list comments", err)
	}
	return items, nil
}

// Moderate replaces the comment's body and classification and marks it
// moderated. The first moderation time is kept on later edits.
func (m *Manager) Moderate(ctx context.Context, id, moderatorID uuid.UUID, in Moderation) (*models.Comment, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	c, err := m.transition(ctx, id, func(c *models.Comment, now time.Time) bool {
		c.Moderate(now, moderatorID, strings.TrimSpace(in.Body), strings.TrimSpace(in.ModeratedBody), in.Type)
		return true
	})
	if err != nil {
		return nil, err
	}
	m.notify(ctx, c.ID, queue.EventModerated)
	return c, nil
}

// SoftDelete hides the comment. Repeating it keeps the first timestamps.
func (m *Manager) SoftDelete(ctx context.Context, id uuid.UUID) (*models.Comment, error) {
	var changed bool
	c, err := m.transition(ctx, id, func(c *models.Comment, now time.Time) bool {
		changed = !c.IsSoftDeleted
		c.SoftDelete(now)
		return true
	})
	if err != nil {
		return nil, err
	}
	if changed {
		m.notify(ctx, c.ID, queue.EventSoftDeleted)
	}
	return c, nil
}

// Restore brings back a soft-deleted comment. The comment stays
// moderated. On a comment that is not soft-deleted it changes nothing.
func (m *Manager) Restore(ctx context.Context, id uuid.UUID) (*models.Comment, error) {
	return m.transition(ctx, id, func(c *models.Comment, _ time.Time) bool {
		return c.Restore()
	})
}

// HardDelete removes the comment permanently.
func (m *Manager) HardDelete(ctx context.Context, id uuid.UUID) error {
	return m.tx.WithinTx(ctx, func(r store.Repos) error {
		c, err := r.Comments.FindByID(ctx, id)
		if err != nil {
			return apperr.Persistence("find comment", err)
		}
		if c == nil {
			return fmt.Errorf("comment %s: %w", id, apperr.ErrNotFound)
		}
		return apperr.Persistence("delete comment", r.Comments.Delete(ctx, id))
	})
}

// transition loads the comment, applies fn and saves it when fn reports a
// change.
func (m *Manager) transition(ctx context.Context, id uuid.UUID, fn func(*models.Comment, time.Time) bool) (*models.Comment, error) {
	var out *models.Comment
	err := m.tx.WithinTx(ctx, func(r store.Repos) error {
		c, err := r.Comments.FindByID(ctx, id)
		if err != nil {
			return apperr.Persistence("find comment", err)
		}
		if c == nil {
			return fmt.Errorf("comment %s: %w", id, apperr.ErrNotFound)
		}
		if fn(c, m.now()) {
			if err := r.Comments.Update(ctx, c); err != nil {
				return apperr.Persistence("update comment", err)
			}
		}
		out = c
		return nil
	})
	return out, err
}

// notify queues an author notice. Failures only get logged.
func (m *Manager) notify(ctx context.Context, id uuid.UUID, event string) {
	if m.notifier == nil {
		return
	}
	err := m.notifier.EnqueueCommentNotice(ctx, queue.CommentNoticePayload{CommentID: id, Event: event})
	if err != nil {
		m.log.Warn("comment notice not queued",
			zap.Stringer("comment_id", id), zap.String("event", event), zap.Error(err))
	}
}

func ptr[T any](v T) *T { return &v }
