// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"portfolio/internal/models"
)

// TagStore handles post tags.
type TagStore struct {
	q DBTX
}

// NewTagStore creates a TagStore on q.
func NewTagStore(q DBTX) *TagStore {
	return &TagStore{q: q}
}

func (s *TagStore) list(ctx context.Context, op, query string, args ...any) ([]models.Tag, error) {
	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var items []models.Tag
	for rows.Next() {
		var t models.Tag
		if err := rows.Scan(&t.ID, &t.PostID, &t.AuthorID, &t.Text, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan tag: %w", err)
		}
		items = append(items, t)
	}
	return items, rows.Err()
}

// ListByPost returns a post's tags in insertion order.
func (s *TagStore) ListByPost(ctx context.Context, postID uuid.UUID) ([]models.Tag, error) {
	return s.list(ctx, "list tags by post", `
		SELECT id, post_id, author_id, text, created_at FROM tags
		WHERE post_id = $1
		ORDER BY seq
	`, postID)
}

// ListByBlog returns the tags of every post of the blog in status.
func (s *TagStore) ListByBlog(ctx context.Context, blogID uuid.UUID, status models.ReadyStatus) ([]models.Tag, error) {
	return s.list(ctx, "list tags by blog", `
		SELECT t.id, t.post_id, t.author_id, t.text, t.created_at
		FROM tags t
		JOIN posts p ON p.id = t.post_id
		WHERE p.blog_id = $1 AND p.status = $2
		ORDER BY p.created_at, t.seq
	`, blogID, status)
}

// Create inserts a tag.
func (s *TagStore) Create(ctx context.Context, t *models.Tag) error {
	err := s.q.QueryRowContext(ctx, `
		INSERT INTO tags (post_id, author_id, text)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`, t.PostID, t.AuthorID, t.Text).Scan(&t.ID, &t.CreatedAt)
	if err != nil {
		return wrapErr("create tag", err)
	}
	return nil
}

// DeleteByPost removes every tag of a post and returns how many were removed.
func (s *TagStore) DeleteByPost(ctx context.Context, postID uuid.UUID) (int64, error) {
	res, err := s.q.ExecContext(ctx, `DELETE FROM tags WHERE post_id = $1`, postID)
	if err != nil {
		return 0, fmt.Errorf("delete tags: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete tags: %w", err)
	}
	return n, nil
}
