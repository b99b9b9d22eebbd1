// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"portfolio/internal/models"
)

// PostStore handles post rows. Image bytes are only read by Image.
type PostStore struct {
	q DBTX
}

// NewPostStore creates a PostStore on q.
func NewPostStore(q DBTX) *PostStore {
	return &PostStore{q: q}
}

const postColumns = `p.id, p.blog_id, p.category_id, p.author_id, p.title, p.slug,
	p.abstract, p.content, p.status, p.image_type, p.created_at, p.updated_at`

func scanPost(s scanner) (*models.Post, error) {
	var p models.Post
	err := s.Scan(
		&p.ID, &p.BlogID, &p.CategoryID, &p.AuthorID, &p.Title, &p.Slug,
		&p.Abstract, &p.Content, &p.Status, &p.ImageType, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *PostStore) findOne(ctx context.Context, op, query string, args ...any) (*models.Post, error) {
	p, err := scanPost(s.q.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return p, nil
}

func (s *PostStore) list(ctx context.Context, op, query string, args ...any) ([]models.Post, error) {
	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var items []models.Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		items = append(items, *p)
	}
	return items, rows.Err()
}

// FindByID retrieves a post by ID. Returns nil if not found.
func (s *PostStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Post, error) {
	return s.findOne(ctx, "find post by id",
		`SELECT `+postColumns+` FROM posts p WHERE p.id = $1`, id)
}

// FindBySlug retrieves a post of a blog by slug, ignoring case.
func (s *PostStore) FindBySlug(ctx context.Context, blogID uuid.UUID, slug string) (*models.Post, error) {
	return s.findOne(ctx, "find post by slug", `
		SELECT `+postColumns+` FROM posts p
		WHERE p.blog_id = $1 AND lower(p.slug) = lower($2)
	`, blogID, slug)
}

// SlugTaken reports whether another post of the blog already uses slug.
func (s *PostStore) SlugTaken(ctx context.Context, blogID uuid.UUID, slug string, exclude uuid.UUID) (bool, error) {
	var taken bool
	err := s.q.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM posts
			WHERE blog_id = $1 AND lower(slug) = lower($2) AND ($3::uuid IS NULL OR id <> $3::uuid)
		)
	`, blogID, slug, nilIfZero(exclude)).Scan(&taken)
	if err != nil {
		return false, fmt.Errorf("check post slug: %w", err)
	}
	return taken, nil
}

// Create inserts a post, including any image bytes it carries.
func (s *PostStore) Create(ctx context.Context, p *models.Post) error {
	err := s.q.QueryRowContext(ctx, `
		INSERT INTO posts (blog_id, category_id, author_id, title, slug, abstract, content,
		                   status, image_data, image_type, thumbnail)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, created_at, updated_at
	`, p.BlogID, p.CategoryID, p.AuthorID, p.Title, p.Slug, p.Abstract, p.Content,
		p.Status, p.ImageData, p.ImageType, p.Thumbnail,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return wrapErr("create post", err)
	}
	return nil
}

// Update saves the post's editable fields. Stored image columns are kept
// when the post carries no new image.
func (s *PostStore) Update(ctx context.Context, p *models.Post) error {
	err := s.q.QueryRowContext(ctx, `
		UPDATE posts SET
			category_id = $1, title = $2, slug = $3, abstract = $4, content = $5, status = $6,
			image_data = COALESCE($7, image_data),
			image_type = CASE WHEN $7::bytea IS NULL THEN image_type ELSE $8 END,
			thumbnail  = COALESCE($9, thumbnail),
			updated_at = NOW()
		WHERE id = $10
		RETURNING updated_at
	`, p.CategoryID, p.Title, p.Slug, p.Abstract, p.Content, p.Status,
		p.ImageData, p.ImageType, p.Thumbnail, p.ID,
	).Scan(&p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("update post %s: %w", p.ID, sql.ErrNoRows)
	}
	if err != nil {
		return wrapErr("update post", err)
	}
	return nil
}

// Delete removes a post; tags and comments cascade.
func (s *PostStore) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.q.ExecContext(ctx, `DELETE FROM posts WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	return nil
}

// Image returns the post's stored image, thumbnail and content type.
func (s *PostStore) Image(ctx context.Context, id uuid.UUID) ([]byte, []byte, string, error) {
	var data, thumb []byte
	var contentType string
	err := s.q.QueryRowContext(ctx,
		`SELECT image_data, thumbnail, image_type FROM posts WHERE id = $1`, id,
	).Scan(&data, &thumb, &contentType)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil, "", nil
	}
	if err != nil {
		return nil, nil, "", fmt.Errorf("load post image: %w", err)
	}
	return data, thumb, contentType, nil
}

// ListByBlog returns every post of a blog, newest first.
func (s *PostStore) ListByBlog(ctx context.Context, blogID uuid.UUID) ([]models.Post, error) {
	return s.list(ctx, "list posts by blog", `
		SELECT `+postColumns+` FROM posts p
		WHERE p.blog_id = $1
		ORDER BY p.created_at DESC
	`, blogID)
}

// ListByCategory returns every post filed under a category, newest first.
func (s *PostStore) ListByCategory(ctx context.Context, categoryID uuid.UUID) ([]models.Post, error) {
	return s.list(ctx, "list posts by category", `
		SELECT `+postColumns+` FROM posts p
		WHERE p.category_id = $1
		ORDER BY p.created_at DESC
	`, categoryID)
}

// ReassignCategory moves every post of from to to.
func (s *PostStore) ReassignCategory(ctx context.Context, from, to uuid.UUID) (int64, error) {
	res, err := s.q.ExecContext(ctx, `
		UPDATE posts SET category_id = $1, updated_at = NOW()
		WHERE category_id = $2
	`, to, from)
	if err != nil {
		return 0, fmt.Errorf("reassign posts: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("reassign posts: %w", err)
	}
	return n, nil
}

// Search returns posts in status whose title or abstract contains term.
func (s *PostStore) Search(ctx context.Context, term string, status models.ReadyStatus) ([]models.Post, error) {
	return s.list(ctx, "search posts", `
		SELECT `+postColumns+` FROM posts p
		WHERE p.status = $1 AND (p.title ILIKE $2 OR p.abstract ILIKE $2)
		ORDER BY p.created_at DESC
	`, status, likePattern(term))
}

// ListByTag returns posts of a blog in status carrying a tag, ignoring case.
func (s *PostStore) ListByTag(ctx context.Context, blogID uuid.UUID, text string, status models.ReadyStatus) ([]models.Post, error) {
	return s.list(ctx, "list posts by tag", `
		SELECT `+postColumns+` FROM posts p
		WHERE p.blog_id = $1 AND p.status = $2
		  AND EXISTS (SELECT 1 FROM tags t WHERE t.post_id = p.id AND lower(t.text) = lower($3))
		ORDER BY p.created_at DESC
	`, blogID, status, text)
}

// Recent returns the newest posts in status across all blogs.
func (s *PostStore) Recent(ctx context.Context, status models.ReadyStatus, limit int) ([]models.Post, error) {
	return s.list(ctx, "recent posts", `
		SELECT `+postColumns+` FROM posts p
		WHERE p.status = $1
		ORDER BY p.created_at DESC
		LIMIT $2
	`, status, limit)
}
