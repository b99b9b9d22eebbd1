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
	"portfolio/internal/markdown"
	"portfolio/internal/models"
	"portfolio/internal/opengraph"
	"portfolio/internal/reconcile"
	"portfolio/internal/store"
)

// PostInput is a post create or edit request. BlogID is only read on
// create: a post stays in its blog. A zero CategoryID files the post under
// "All Posts". On edit, a nil Tags keeps the current tags and a nil Image
// keeps the current image.
type PostInput struct {
	BlogID     uuid.UUID          `json:"blog_id"`
	CategoryID uuid.UUID          `json:"category_id"`
	Title      string             `json:"title" validate:"required,trimmed_min=2,max=75"`
	Abstract   string             `json:"abstract" validate:"required,trimmed_min=2,max=200"`
	Content    string             `json:"content" validate:"required"`
	Status     models.ReadyStatus `json:"status"`
	Tags       []string           `json:"tags" validate:"omitempty,dive,trimmed_min=2,max=25"`
	Image      []byte             `json:"image,omitempty"`
}

func (in PostInput) status() models.ReadyStatus {
	if in.Status == "" {
		return models.StatusIncomplete
	}
	return in.Status
}

func (g *Guard) checkPost(in PostInput) (*checks, string) {
	c := g.begin(in)
	if !in.status().Valid() {
		c.ve.Addf("status", "must be one of %s, %s, %s",
			models.StatusIncomplete, models.StatusProductionReady, models.StatusPreviewReady)
	}
	c.civil("title", in.Title)
	c.civil("abstract", in.Abstract)
	c.civil("content", markdown.PlainText(in.Content))
	for i, tag := range in.Tags {
		c.civil(fmt.Sprintf("tags[%d]", i), tag)
	}
	return c, c.slug("title", in.Title)
}

// category resolves the post's category inside blog. A zero id selects
// the blog's "All Posts" category.
func category(ctx context.Context, r store.Repos, c *checks, blogID, id uuid.UUID) (uuid.UUID, error) {
	if id == uuid.Nil {
		def, err := reconcile.NewCategories(r).EnsureDefault(ctx, blogID)
		if err != nil {
			return uuid.Nil, err
		}
		return def.ID, nil
	}
	cat, err := r.Categories.FindByID(ctx, id)
	if err != nil {
		return uuid.Nil, apperr.Persistence("find category", err)
	}
	if cat == nil || cat.BlogID != blogID {
		c.ve.Add("category_id", "is not a category of this blog")
	}
	return id, nil
}

// CreatePost creates a post with its tags. The image, when given, is
// stored as PNG with a thumbnail and published as an OpenGraph card.
func (g *Guard) CreatePost(ctx context.Context, authorID uuid.UUID, in PostInput) (*models.Post, error) {
	c, s := g.checkPost(in)
	img, thumb := g.encode(c, "image", in.Image, true)

	var (
		blog *models.Blog
		p    *models.Post
	)
	err := g.tx.WithinTx(ctx, func(r store.Repos) error {
		var err error
		if blog, err = r.Blogs.FindByID(ctx, in.BlogID); err != nil {
			return apperr.Persistence("find blog", err)
		}
		if blog == nil {
			return notFound("blog", in.BlogID)
		}
		// Resolving "All Posts" may create it, so only do it once the
		// request is otherwise valid.
		catID := in.CategoryID
		if catID != uuid.Nil {
			if _, err := category(ctx, r, c, blog.ID, catID); err != nil {
				return err
			}
		}
		if s != "" {
			taken, err := r.Posts.SlugTaken(ctx, blog.ID, s, uuid.Nil)
			if err != nil {
				return apperr.Persistence("check post slug", err)
			}
			if taken {
				c.taken(s)
			}
		}
		if c.failed() {
			return c.ve
		}
		if catID == uuid.Nil {
			if catID, err = category(ctx, r, c, blog.ID, uuid.Nil); err != nil {
				return err
			}
		}

		p = &models.Post{
			BlogID:     blog.ID,
			CategoryID: catID,
			AuthorID:   authorID,
			Title:      strings.TrimSpace(in.Title),
			Slug:       s,
			Abstract:   strings.TrimSpace(in.Abstract),
			Content:    in.Content,
			Status:     in.status(),
		}
		setImage(p, img, thumb)
		if err := r.Posts.Create(ctx, p); err != nil {
			return c.writeErr("create post", s, err)
		}
		tags, err := reconcile.NewTags(r).ReplaceAll(ctx, p, in.Tags)
		if err != nil {
			return err
		}
		p.Tags = tags
		return nil
	})
	if err != nil {
		return nil, err
	}

	g.invalidateTags(ctx, blog.ID)
	g.publishCard(ctx, opengraph.PostKey(blog.Slug, p.Slug), in.Image)
	g.log.Info("post created",
		zap.Stringer("post_id", p.ID), zap.Stringer("blog_id", blog.ID), zap.String("slug", p.Slug))
	return p, nil
}

// EditPost updates a post. Tags are replaced when given.
func (g *Guard) EditPost(ctx context.Context, id uuid.UUID, in PostInput) (*models.Post, error) {
	c, s := g.checkPost(in)
	img, thumb := g.encode(c, "image", in.Image, true)

	var (
		blog    *models.Blog
		p       *models.Post
		oldSlug string
	)
	err := g.tx.WithinTx(ctx, func(r store.Repos) error {
		var err error
		if p, err = r.Posts.FindByID(ctx, id); err != nil {
			return apperr.Persistence("find post", err)
		}
		if p == nil {
			return notFound("post", id)
		}
		if blog, err = r.Blogs.FindByID(ctx, p.BlogID); err != nil {
			return apperr.Persistence("find blog", err)
		}
		if blog == nil {
			return notFound("blog", p.BlogID)
		}
		catID := in.CategoryID
		if catID != uuid.Nil {
			if _, err := category(ctx, r, c, blog.ID, catID); err != nil {
				return err
			}
		}
		if s != "" {
			taken, err := r.Posts.SlugTaken(ctx, blog.ID, s, id)
			if err != nil {
				return apperr.Persistence("check post slug", err)
			}
			if taken {
				c.taken(s)
			}
		}
		if c.failed() {
			return c.ve
		}
		if catID == uuid.Nil {
			if catID, err = category(ctx, r, c, blog.ID, uuid.Nil); err != nil {
				return err
			}
		}

		oldSlug = p.Slug
		p.CategoryID = catID
		p.Title = strings.TrimSpace(in.Title)
		p.Slug = s
		p.Abstract = strings.TrimSpace(in.Abstract)
		p.Content = in.Content
		p.Status = in.status()
		p.ImageData, p.Thumbnail = nil, nil
		setImage(p, img, thumb)
		if err := r.Posts.Update(ctx, p); err != nil {
			return c.writeErr("update post", s, err)
		}

		tags := reconcile.NewTags(r)
		if in.Tags != nil {
			p.Tags, err = tags.ReplaceAll(ctx, p, in.Tags)
			return err
		}
		if p.Tags, err = r.Tags.ListByPost(ctx, p.ID); err != nil {
			return apperr.Persistence("list tags", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	g.invalidateTags(ctx, blog.ID)
	g.refreshPostCard(ctx, blog.Slug, oldSlug, p, in.Image)
	g.log.Info("post updated", zap.Stringer("post_id", p.ID), zap.String("slug", p.Slug))
	return p, nil
}

// refreshPostCard keeps the card in step with the post's image and slug.
func (g *Guard) refreshPostCard(ctx context.Context, blogSlug, oldSlug string, p *models.Post, upload []byte) {
	key := opengraph.PostKey(blogSlug, p.Slug)
	renamed := oldSlug != p.Slug
	if renamed {
		g.removeCard(ctx, opengraph.PostKey(blogSlug, oldSlug))
	}
	switch {
	case len(upload) > 0:
		g.publishCard(ctx, key, upload)
	case renamed && p.ImageType != "":
		data, _, _, err := g.tx.Repos().Posts.Image(ctx, p.ID)
		if err != nil {
			g.log.Warn("post image not loaded", zap.Stringer("post_id", p.ID), zap.Error(err))
			return
		}
		g.publishCard(ctx, key, data)
	}
}

// DeletePost removes a post with its tags and comments.
func (g *Guard) DeletePost(ctx context.Context, id uuid.UUID) error {
	var (
		blog *models.Blog
		p    *models.Post
	)
	err := g.tx.WithinTx(ctx, func(r store.Repos) error {
		var err error
		if p, err = r.Posts.FindByID(ctx, id); err != nil {
			return apperr.Persistence("find post", err)
		}
		if p == nil {
			return notFound("post", id)
		}
		if blog, err = r.Blogs.FindByID(ctx, p.BlogID); err != nil {
			return apperr.Persistence("find blog", err)
		}
		return apperr.Persistence("delete post", r.Posts.Delete(ctx, id))
	})
	if err != nil {
		return err
	}

	g.invalidateTags(ctx, p.BlogID)
	if blog != nil && p.ImageType != "" {
		g.removeCard(ctx, opengraph.PostKey(blog.Slug, p.Slug))
	}
	g.log.Info("post deleted", zap.Stringer("post_id", id))
	return nil
}

func setImage(p *models.Post, img, thumb *imaging.Encoded) {
	if img == nil {
		return
	}
	p.ImageData = img.Data
	p.ImageType = img.ContentType
	if thumb != nil {
		p.Thumbnail = thumb.Data
	}
}
