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

// BlogStore handles blog rows. Image bytes are only read by Image.
type BlogStore struct {
	q DBTX
}

// NewBlogStore creates a BlogStore on q.
func NewBlogStore(q DBTX) *BlogStore {
	return &BlogStore{q: q}
}

const blogColumns = `id, author_id, name, description, slug, image_type, created_at, updated_at`

func scanBlog(s scanner) (*models.Blog, error) {
	var b models.Blog
	if err := s.Scan(&b.ID, &b.AuthorID, &b.Name, &b.Description, &b.Slug, &b.ImageType, &b.CreatedAt, &b.UpdatedAt); err != nil {
		return nil, err
	}
	return &b, nil
}

func (s *BlogStore) findOne(ctx context.Context, op, query string, args ...any) (*models.Blog, error) {
	b, err := scanBlog(s.q.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return b, nil
}

func (s *BlogStore) list(ctx context.Context, op, query string, args ...any) ([]models.Blog, error) {
	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var items []models.Blog
	for rows.Next() {
		b, err := scanBlog(rows)
		if err != nil {
			return nil, fmt.Errorf("scan blog: %w", err)
		}
		items = append(items, *b)
	}
	return items, rows.Err()
}

// FindByID retrieves a blog by ID. Returns nil if not found.
func (s *BlogStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Blog, error) {
	return s.findOne(ctx, "find blog by id",
		`SELECT `+blogColumns+` FROM blogs WHERE id = $1`, id)
}

// FindBySlug retrieves a blog by slug, ignoring case. Returns nil if not found.
func (s *BlogStore) FindBySlug(ctx context.Context, slug string) (*models.Blog, error) {
	return s.findOne(ctx, "find blog by slug",
		`SELECT `+blogColumns+` FROM blogs WHERE lower(slug) = lower($1)`, slug)
}

// SlugTaken reports whether a blog other than exclude already uses slug.
func (s *BlogStore) SlugTaken(ctx context.Context, slug string, exclude uuid.UUID) (bool, error) {
	var taken bool
	err := s.q.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM blogs
			WHERE lower(slug) = lower($1) AND ($2::uuid IS NULL OR id <> $2::uuid)
		)
	`, slug, nilIfZero(exclude)).Scan(&taken)
	if err != nil {
		return false, fmt.Errorf("check blog slug: %w", err)
	}
	return taken, nil
}

// Create inserts a blog, including its image, and fills in its generated
// ID and timestamps.
func (s *BlogStore) Create(ctx context.Context, b *models.Blog) error {
	err := s.q.QueryRowContext(ctx, `
		INSERT INTO blogs (author_id, name, description, slug, image_data, image_type)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`, b.AuthorID, b.Name, b.Description, b.Slug, b.ImageData, b.ImageType).Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return wrapErr("create blog", err)
	}
	return nil
}

// Update saves the blog's editable fields. The stored image is kept when
// the blog carries no new one.
func (s *BlogStore) Update(ctx context.Context, b *models.Blog) error {
	err := s.q.QueryRowContext(ctx, `
		UPDATE blogs SET
			name = $1, description = $2, slug = $3,
			image_data = COALESCE($4, image_data),
			image_type = CASE WHEN $4::bytea IS NULL THEN image_type ELSE $5 END,
			updated_at = NOW()
		WHERE id = $6
		RETURNING updated_at
	`, b.Name, b.Description, b.Slug, b.ImageData, b.ImageType, b.ID).Scan(&b.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("update blog %s: %w", b.ID, sql.ErrNoRows)
	}
	if err != nil {
		return wrapErr("update blog", err)
	}
	return nil
}

// Image returns the blog's stored image and content type.
func (s *BlogStore) Image(ctx context.Context, id uuid.UUID) ([]byte, string, error) {
	var (
		data []byte
		ct   string
	)
	err := s.q.QueryRowContext(ctx,
		`SELECT image_data, image_type FROM blogs WHERE id = $1`, id,
	).Scan(&data, &ct)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, "", nil
	}
	if err != nil {
		return nil, "", fmt.Errorf("load blog image: %w", err)
	}
	return data, ct, nil
}

// Delete removes a blog; categories, posts, tags and comments cascade.
func (s *BlogStore) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.q.ExecContext(ctx, `DELETE FROM blogs WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete blog: %w", err)
	}
	return nil
}

// List returns every blog, newest first.
func (s *BlogStore) List(ctx context.Context) ([]models.Blog, error) {
	return s.list(ctx, "list blogs",
		`SELECT `+blogColumns+` FROM blogs ORDER BY created_at DESC`)
}

// ListWithPostStatus returns blogs that have at least one post in status.
func (s *BlogStore) ListWithPostStatus(ctx context.Context, status models.ReadyStatus) ([]models.Blog, error) {
	return s.list(ctx, "list blogs with posts", `
		SELECT `+blogColumns+` FROM blogs b
		WHERE EXISTS (SELECT 1 FROM posts p WHERE p.blog_id = b.id AND p.status = $1)
		ORDER BY b.created_at DESC
	`, status)
}

// SearchByName returns blogs whose name contains term, ignoring case.
func (s *BlogStore) SearchByName(ctx context.Context, term string) ([]models.Blog, error) {
	return s.list(ctx, "search blogs", `
		SELECT `+blogColumns+` FROM blogs
		WHERE name ILIKE $1
		ORDER BY name
	`, likePattern(term))
}
