// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package publish

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"portfolio/internal/apperr"
	"portfolio/internal/imaging"
	"portfolio/internal/models"
	"portfolio/internal/opengraph"
	"portfolio/internal/store"
)

// ProjectInput is a project create or edit request. Categories come from
// the master list. On edit, a nil Images keeps the current images.
type ProjectInput struct {
	Title       string   `json:"title" validate:"required,trimmed_min=5,max=60"`
	Description string   `json:"description" validate:"required,trimmed_min=15,max=200"`
	URL         string   `json:"url" validate:"required,url"`
	Categories  []string `json:"categories" validate:"required,min=1,max=4"`
	Images      [][]byte `json:"images,omitempty"`
}

// projectCategories maps the submitted names onto the master list. Unknown
// names are violations; repeats are dropped.
func projectCategories(c *checks, names []string) []string {
	seen := make(map[string]bool, len(names))
	var out []string
	for i, name := range names {
		if !models.IsMasterProjectCategory(name) {
			c.ve.Addf(fmt.Sprintf("categories[%d]", i), "must be one of %s",
				strings.Join(models.MasterProjectCategories, ", "))
			continue
		}
		canon := strings.ToUpper(strings.TrimSpace(name))
		if seen[canon] {
			continue
		}
		seen[canon] = true
		out = append(out, canon)
	}
	return out
}

func (g *Guard) checkProject(in ProjectInput) (*checks, string, []string, []*imaging.Encoded) {
	c := g.begin(in)
	c.civil("title", in.Title)
	c.civil("description", in.Description)
	c.civil("url", in.URL)
	cats := projectCategories(c, in.Categories)

	var images []*imaging.Encoded
	for i, src := range in.Images {
		img, _ := g.encode(c, fmt.Sprintf("images[%d]", i), src, false)
		if img == nil && len(src) == 0 {
			c.ve.Add(fmt.Sprintf("images[%d]", i), "is required")
		}
		images = append(images, img)
	}
	return c, c.slug("title", in.Title), cats, images
}

// CreateProject creates a project with its categories and images. The
// first image is published as the project's OpenGraph card.
func (g *Guard) CreateProject(ctx context.Context, in ProjectInput) (*models.Project, error) {
	c, s, cats, images := g.checkProject(in)

	p := &models.Project{
		Title:       strings.TrimSpace(in.Title),
		Slug:        s,
		Description: strings.TrimSpace(in.Description),
		URL:         strings.TrimSpace(in.URL),
	}
	err := g.tx.WithinTx(ctx, func(r store.Repos) error {
		if s != "" {
			taken, err := r.Projects.SlugTaken(ctx, s, uuid.Nil)
			if err != nil {
				return apperr.Persistence("check project slug", err)
			}
			if taken {
				c.taken(s)
			}
		}
		if c.failed() {
			return c.ve
		}

		if err := r.Projects.Create(ctx, p); err != nil {
			return c.writeErr("create project", s, err)
		}
		if err := writeProjectCategories(ctx, r, p, cats); err != nil {
			return err
		}
		return writeProjectImages(ctx, r, p, images)
	})
	if err != nil {
		return nil, err
	}

	if len(in.Images) > 0 {
		g.publishCard(ctx, opengraph.ProjectKey(p.Slug), in.Images[0])
	}
	g.log.Info("project created", zap.Stringer("project_id", p.ID), zap.String("slug", p.Slug))
	return p, nil
}

// EditProject updates a project. Its categories are always replaced; its
// images only when given.
func (g *Guard) EditProject(ctx context.Context, id uuid.UUID, in ProjectInput) (*models.Project, error) {
	c, s, cats, images := g.checkProject(in)

	var (
		p       *models.Project
		oldSlug string
	)
	err := g.tx.WithinTx(ctx, func(r store.Repos) error {
		var err error
		if p, err = r.Projects.FindByID(ctx, id); err != nil {
			return apperr.Persistence("find project", err)
		}
		if p == nil {
			return notFound("project", id)
		}
		if s != "" {
			taken, err := r.Projects.SlugTaken(ctx, s, id)
			if err != nil {
				return apperr.Persistence("check project slug", err)
			}
			if taken {
				c.taken(s)
			}
		}
		if c.failed() {
			return c.ve
		}

		oldSlug = p.Slug
		p.Title = strings.TrimSpace(in.Title)
		p.Slug = s
		p.Description = strings.TrimSpace(in.Description)
		p.URL = strings.TrimSpace(in.URL)
		if err := r.Projects.Update(ctx, p); err != nil {
			return c.writeErr("update project", s, err)
		}
		if err := r.Projects.DeleteCategories(ctx, p.ID); err != nil {
			return apperr.Persistence("delete project categories", err)
		}
		if err := writeProjectCategories(ctx, r, p, cats); err != nil {
			return err
		}
		if in.Images == nil {
			if p.Images, err = r.Projects.ListImages(ctx, p.ID); err != nil {
				return apperr.Persistence("list project images", err)
			}
			return nil
		}
		if err := r.Projects.DeleteImages(ctx, p.ID); err != nil {
			return apperr.Persistence("delete project images", err)
		}
		return writeProjectImages(ctx, r, p, images)
	})
	if err != nil {
		return nil, err
	}

	if oldSlug != p.Slug {
		g.removeCard(ctx, opengraph.ProjectKey(oldSlug))
	}
	if len(p.Images) > 0 && (len(in.Images) > 0 || oldSlug != p.Slug) {
		g.publishCard(ctx, opengraph.ProjectKey(p.Slug), p.Images[0].Data)
	}
	g.log.Info("project updated", zap.Stringer("project_id", p.ID), zap.String("slug", p.Slug))
	return p, nil
}

// DeleteProject removes a project with its categories and images.
func (g *Guard) DeleteProject(ctx context.Context, id uuid.UUID) error {
	var p *models.Project
	err := g.tx.WithinTx(ctx, func(r store.Repos) error {
		var err error
		if p, err = r.Projects.FindByID(ctx, id); err != nil {
			return apperr.Persistence("find project", err)
		}
		if p == nil {
			return notFound("project", id)
		}
		return apperr.Persistence("delete project", r.Projects.Delete(ctx, id))
	})
	if err != nil {
		return err
	}
	g.removeCard(ctx, opengraph.ProjectKey(p.Slug))
	g.log.Info("project deleted", zap.Stringer("project_id", id))
	return nil
}

func writeProjectCategories(ctx context.Context, r store.Repos, p *models.Project, names []string) error {
	p.Categories = p.Categories[:0]
	for _, name := range names {
		pc := models.ProjectCategory{ProjectID: p.ID, Name: name}
		if err := r.Projects.AddCategory(ctx, &pc); err != nil {
			return apperr.Persistence(fmt.Sprintf("add project category %q", name), err)
		}
		p.Categories = append(p.Categories, pc)
	}
	return nil
}

func writeProjectImages(ctx context.Context, r store.Repos, p *models.Project, images []*imaging.Encoded) error {
	p.Images = p.Images[:0]
	for i, img := range images {
		pi := models.ProjectImage{ProjectID: p.ID, Data: img.Data, ContentType: img.ContentType, Position: i}
		if err := r.Projects.AddImage(ctx, &pi); err != nil {
			return apperr.Persistence("add project image", err)
		}
		p.Images = append(p.Images, pi)
	}
	return nil
}
