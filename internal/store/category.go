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

// CategoryStore manages blog categories in the database.
type CategoryStore struct {
	q DBTX
}

// NewCategoryStore returns a new CategoryStore.
func NewCategoryStore(q DBTX) *CategoryStore {
	return &CategoryStore{q: q}
}

const categoryColumns = `id, blog_id, name, created_at`

// scanCategory scans a row into a Category struct.
func scanCategory(s scanner) (*models.Category, error) {
	var c models.Category
	if err := s.Scan(&c.ID, &c.BlogID, &c.Name, &c.CreatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

// ListByBlog returns the blog's categories ordered by name.
func (s *CategoryStore) ListByBlog(ctx context.Context, blogID uuid.UUID) ([]models.Category, error) {
	rows, err := s.q.QueryContext(ctx, `
		SELECT `+categoryColumns+` FROM categories
		WHERE blog_id = $1
		ORDER BY name
	`, blogID)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var items []models.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		items = append(items, *c)
	}
	return items, rows.Err()
}

// FindByID retrieves a category by ID. Returns nil if not found.
func (s *CategoryStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	c, err := scanCategory(s.q.QueryRowContext(ctx,
		`SELECT `+categoryColumns+` FROM categories WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find category: %w", err)
	}
	return c, nil
}

// FindByName retrieves a blog's category by name, ignoring case.
func (s *CategoryStore) FindByName(ctx context.Context, blogID uuid.UUID, name string) (*models.Category, error) {
	c, err := scanCategory(s.q.QueryRowContext(ctx, `
		SELECT `+categoryColumns+` FROM categories
		WHERE blog_id = $1 AND lower(name) = lower($2)
	`, blogID, name))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find category by name: %w", err)
	}
	return c, nil
}

// Create inserts a category.
func (s *CategoryStore) Create(ctx context.Context, c *models.Category) error {
	err := s.q.QueryRowContext(ctx, `
		INSERT INTO categories (blog_id, name)
		VALUES ($1, $2)
		RETURNING id, created_at
	`, c.BlogID, c.Name).Scan(&c.ID, &c.CreatedAt)
	if err != nil {
		return wrapErr("create category", err)
	}
	return nil
}

// Delete removes a category. It fails while posts still reference it.
func (s *CategoryStore) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.q.ExecContext(ctx, `DELETE FROM categories WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	return nil
}
