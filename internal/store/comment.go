// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"portfolio/internal/models"
)

// CommentStore handles comment rows.
type CommentStore struct {
	q DBTX
}

// NewCommentStore creates a CommentStore on q.
func NewCommentStore(q DBTX) *CommentStore {
	return &CommentStore{q: q}
}

const commentColumns = `id, post_id, author_id, moderator_id, body, COALESCE(moderated_body, ''),
	moderation_type, is_moderated, is_soft_deleted, created_at, updated_at, moderated_at, soft_deleted_at`

func scanComment(s scanner) (*models.Comment, error) {
	var c models.Comment
	err := s.Scan(
		&c.ID, &c.PostID, &c.AuthorID, &c.ModeratorID, &c.Body, &c.ModeratedBody,
		&c.ModerationType, &c.IsModerated, &c.IsSoftDeleted,
		&c.CreatedAt, &c.UpdatedAt, &c.ModeratedAt, &c.SoftDeletedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// FindByID retrieves a comment by ID. Returns nil if not found.
func (s *CommentStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Comment, error) {
	c, err := scanComment(s.q.QueryRowContext(ctx,
		`SELECT `+commentColumns+` FROM comments WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find comment: %w", err)
	}
	return c, nil
}

// Create inserts a new comment.
func (s *CommentStore) Create(ctx context.Context, c *models.Comment) error {
	err := s.q.QueryRowContext(ctx, `
		INSERT INTO comments (post_id, author_id, body)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`, c.PostID, c.AuthorID, c.Body).Scan(&c.ID, &c.CreatedAt)
	if err != nil {
		return wrapErr("create comment", err)
	}
	return nil
}

// Update writes the comment's moderation state as held in c.
func (s *CommentStore) Update(ctx context.Context, c *models.Comment) error {
	res, err := s.q.ExecContext(ctx, `
		UPDATE comments SET
			moderator_id = $1, body = $2, moderated_body = NULLIF($3, ''), moderation_type = $4,
			is_moderated = $5, is_soft_deleted = $6,
			updated_at = $7, moderated_at = $8, soft_deleted_at = $9
		WHERE id = $10
	`, c.ModeratorID, c.Body, c.ModeratedBody, c.ModerationType,
		c.IsModerated, c.IsSoftDeleted,
		c.UpdatedAt, c.ModeratedAt, c.SoftDeletedAt, c.ID)
	if err != nil {
		return fmt.Errorf("update comment: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("update comment %s: %w", c.ID, sql.ErrNoRows)
	}
	return nil
}

// Delete removes a comment permanently.
func (s *CommentStore) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.q.ExecContext(ctx, `DELETE FROM comments WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}
	return nil
}

// List returns comments matching f, oldest first.
func (s *CommentStore) List(ctx context.Context, f CommentFilter) ([]models.Comment, error) {
	var (
		where []string
		args  []any
	)
	add := func(cond string, v any) {
		args = append(args, v)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}
	if f.PostID != nil {
		add("post_id = $%d", *f.PostID)
	}
	if f.Moderated != nil {
		add("is_moderated = $%d", *f.Moderated)
	}
	if f.SoftDeleted != nil {
		add("is_soft_deleted = $%d", *f.SoftDeleted)
	}

	query := `SELECT ` + commentColumns + ` FROM comments`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at, id"

	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	defer rows.Close()

	var items []models.Comment
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		items = append(items, *c)
	}
	return items, rows.Err()
}
