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

// ProjectStore handles projects and their categories and images.
type ProjectStore struct {
	q DBTX
}

// NewProjectStore creates a ProjectStore on q.
func NewProjectStore(q DBTX) *ProjectStore {
	return &ProjectStore{q: q}
}

const projectColumns = `id, title, slug, description, url, created_at, updated_at`

func scanProject(s scanner) (*models.Project, error) {
	var p models.Project
	if err := s.Scan(&p.ID, &p.Title, &p.Slug, &p.Description, &p.URL, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *ProjectStore) findOne(ctx context.Context, op, query string, args ...any) (*models.Project, error) {
	p, err := scanProject(s.q.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return p, nil
}

// FindByID retrieves a project by ID. Returns nil if not found.
func (s *ProjectStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	return s.findOne(ctx, "find project by id",
		`SELECT `+projectColumns+` FROM projects WHERE id = $1`, id)
}

// FindBySlug retrieves a project by slug, ignoring case.
func (s *ProjectStore) FindBySlug(ctx context.Context, slug string) (*models.Project, error) {
	return s.findOne(ctx, "find project by slug",
		`SELECT `+projectColumns+` FROM projects WHERE lower(slug) = lower($1)`, slug)
}

// SlugTaken reports whether a project other than exclude uses slug.
func (s *ProjectStore) SlugTaken(ctx context.Context, slug string, exclude uuid.UUID) (bool, error) {
	var taken bool
	err := s.q.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM projects
			WHERE lower(slug) = lower($1) AND ($2::uuid IS NULL OR id <> $2::uuid)
		)
	`, slug, nilIfZero(exclude)).Scan(&taken)
	if err != nil {
		return false, fmt.Errorf("check project slug: %w", err)
	}
	return taken, nil
}

// Create inserts a project row. Categories and images are added separately.
func (s *ProjectStore) Create(ctx context.Context, p *models.Project) error {
	err := s.q.QueryRowContext(ctx, `
		INSERT INTO projects (title, slug, description, url)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`, p.Title, p.Slug, p.Description, p.URL).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return wrapErr("create project", err)
	}
	return nil
}

// Update saves the project's editable fields.
func (s *ProjectStore) Update(ctx context.Context, p *models.Project) error {
	err := s.q.QueryRowContext(ctx, `
		UPDATE projects SET title = $1, slug = $2, description = $3, url = $4, updated_at = NOW()
		WHERE id = $5
		RETURNING updated_at
	`, p.Title, p.Slug, p.Description, p.URL, p.ID).Scan(&p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("update project %s: %w", p.ID, sql.ErrNoRows)
	}
	if err != nil {
		return wrapErr("update project", err)
	}
	return nil
}

// Delete removes a project; categories and images cascade.
func (s *ProjectStore) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.q.ExecContext(ctx, `DELETE FROM projects WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	return nil
}

// List returns every project ordered by title.
func (s *ProjectStore) List(ctx context.Context) ([]models.Project, error) {
	rows, err := s.q.QueryContext(ctx, `SELECT `+projectColumns+` FROM projects ORDER BY title, id`)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	var items []models.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		items = append(items, *p)
	}
	return items, rows.Err()
}

// ListCategories returns a project's categories ordered by name.
func (s *ProjectStore) ListCategories(ctx context.Context, projectID uuid.UUID) ([]models.ProjectCategory, error) {
	rows, err := s.q.QueryContext(ctx, `
		SELECT id, project_id, name FROM project_categories
		WHERE project_id = $1
		ORDER BY name
	`, projectID)
	if err != nil {
		return nil, fmt.Errorf("list project categories: %w", err)
	}
	defer rows.Close()

	var items []models.ProjectCategory
	for rows.Next() {
		var c models.ProjectCategory
		if err := rows.Scan(&c.ID, &c.ProjectID, &c.Name); err != nil {
			return nil, fmt.Errorf("scan project category: %w", err)
		}
		items = append(items, c)
	}
	return items, rows.Err()
}

// AddCategory files the project under one more category.
func (s *ProjectStore) AddCategory(ctx context.Context, c *models.ProjectCategory) error {
	err := s.q.QueryRowContext(ctx, `
		INSERT INTO project_categories (project_id, name)
		VALUES ($1, $2)
		RETURNING id
	`, c.ProjectID, c.Name).Scan(&c.ID)
	if err != nil {
		return wrapErr("add project category", err)
	}
	return nil
}

// DeleteCategories removes all of a project's categories.
func (s *ProjectStore) DeleteCategories(ctx context.Context, projectID uuid.UUID) error {
	if _, err := s.q.ExecContext(ctx, `DELETE FROM project_categories WHERE project_id = $1`, projectID); err != nil {
		return fmt.Errorf("delete project categories: %w", err)
	}
	return nil
}

// ListImages returns a project's images in display order.
func (s *ProjectStore) ListImages(ctx context.Context, projectID uuid.UUID) ([]models.ProjectImage, error) {
	rows, err := s.q.QueryContext(ctx, `
		SELECT id, project_id, data, content_type, position FROM project_images
		WHERE project_id = $1
		ORDER BY position, id
	`, projectID)
	if err != nil {
		return nil, fmt.Errorf("list project images: %w", err)
	}
	defer rows.Close()

	var items []models.ProjectImage
	for rows.Next() {
		var img models.ProjectImage
		if err := rows.Scan(&img.ID, &img.ProjectID, &img.Data, &img.ContentType, &img.Position); err != nil {
			return nil, fmt.Errorf("scan project image: %w", err)
		}
		items = append(items, img)
	}
	return items, rows.Err()
}

// AddImage stores one project image.
func (s *ProjectStore) AddImage(ctx context.Context, img *models.ProjectImage) error {
	err := s.q.QueryRowContext(ctx, `
		INSERT INTO project_images (project_id, data, content_type, position)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, img.ProjectID, img.Data, img.ContentType, img.Position).Scan(&img.ID)
	if err != nil {
		return fmt.Errorf("add project image: %w", err)
	}
	return nil
}

// DeleteImages removes all of a project's images.
func (s *ProjectStore) DeleteImages(ctx context.Context, projectID uuid.UUID) error {
	if _, err := s.q.ExecContext(ctx, `DELETE FROM project_images WHERE project_id = $1`, projectID); err != nil {
		return fmt.Errorf("delete project images: %w", err)
	}
	return nil
}
