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
	"portfolio/internal/reconcile"
	"portfolio/internal/store"
)

// BlogInput is a blog create or edit request. The image is required on
// create. On edit, a nil Image keeps the current image and a nil
// Categories leaves the blog's categories as they are; any other value,
// empty included, becomes the new category set.
type BlogInput struct {
	Name        string   `json:"name" validate:"required,trimmed_min=2,max=100"`
	Description string   `json:"description" validate:"required,trimmed_min=2,max=500"`
	Categories  []string `json:"categories" validate:"omitempty,dive,trimmed_min=7,max=35"`
	Image       []byte   `json:"image,omitempty"`
}

func (g *Guard) checkBlog(in BlogInput) (*checks, string, *imaging.Encoded) {
	c := g.begin(in)
	img, _ := g.encode(c, "image", in.Image, false)
	c.civil("name", in.Name)
	c.civil("description", in.Description)
	for i, name := range in.Categories {
		if models.IsDefaultCategoryName(name) {
			continue
		}
		c.civil(fmt.Sprintf("categories[%d]", i), name)
	}
	return c, c.slug("name", in.Name), img
}

// CreateBlog creates a blog with its categories and the reserved "All
// Posts" category.
func (g *Guard) CreateBlog(ctx context.Context, authorID uuid.UUID, in BlogInput) (*models.Blog, error) {
	c, s, img := g.checkBlog(in)
	if len(in.Image) == 0 {
		c.ve.Add("image", "is required")
	}

	b := &models.Blog{
		AuthorID:    authorID,
		Name:        strings.TrimSpace(in.Name),
		Description: strings.TrimSpace(in.Description),
		Slug:        s,
	}
	setBlogImage(b, img)
	err := g.tx.WithinTx(ctx, func(r store.Repos) error {
		if s != "" {
			taken, err := r.Blogs.SlugTaken(ctx, s, uuid.Nil)
			if err != nil {
				return apperr.Persistence("check blog slug", err)
			}
			if taken {
				c.taken(s)
			}
		}
		if c.failed() {
			return c.ve
		}

		if err := r.Blogs.Create(ctx, b); err != nil {
			return c.writeErr("create blog", s, err)
		}
		cats := reconcile.NewCategories(r)
		fresh, err := cats.Dedupe(ctx, b.ID, in.Categories)
		if err != nil {
			return err
		}
		if _, err := cats.CommitNew(ctx, b.ID, append(fresh, models.DefaultCategoryName)); err != nil {
			return err
		}
		return loadCategories(ctx, r, b)
	})
	if err != nil {
		return nil, err
	}
	g.log.Info("blog created", zap.Stringer("blog_id", b.ID), zap.String("slug", b.Slug))
	return b, nil
}

// EditBlog updates a blog's name, description, slug and image and, when
// given, reconciles its categories. Posts of retired categories move to
// "All Posts". A new slug moves the OpenGraph cards of the blog's posts.
func (g *Guard) EditBlog(ctx context.Context, id uuid.UUID, in BlogInput) (*models.Blog, error) {
	c, s, img := g.checkBlog(in)

	var (
		b       *models.Blog
		oldSlug string
		posts   []models.Post
	)
	err := g.tx.WithinTx(ctx, func(r store.Repos) error {
		var err error
		if b, err = r.Blogs.FindByID(ctx, id); err != nil {
			return apperr.Persistence("find blog", err)
		}
		if b == nil {
			return notFound("blog", id)
		}
		if s != "" {
			taken, err := r.Blogs.SlugTaken(ctx, s, id)
			if err != nil {
				return apperr.Persistence("check blog slug", err)
			}
			if taken {
				c.taken(s)
			}
		}
		if c.failed() {
			return c.ve
		}

		oldSlug = b.Slug
		b.Name = strings.TrimSpace(in.Name)
		b.Description = strings.TrimSpace(in.Description)
		b.Slug = s
		b.ImageData = nil
		setBlogImage(b, img)
		if err := r.Blogs.Update(ctx, b); err != nil {
			return c.writeErr("update blog", s, err)
		}
		if oldSlug != b.Slug {
			if posts, err = r.Posts.ListByBlog(ctx, b.ID); err != nil {
				return apperr.Persistence("list posts", err)
			}
		}
		if in.Categories != nil {
			if err := reconcile.NewCategories(r).ReplaceCategories(ctx, b.ID, in.Categories); err != nil {
				return err
			}
		}
		return loadCategories(ctx, r, b)
	})
	if err != nil {
		return nil, err
	}
	g.moveBlogCards(ctx, oldSlug, b.Slug, posts)
	g.log.Info("blog updated", zap.Stringer("blog_id", b.ID), zap.String("slug", b.Slug))
	return b, nil
}

// moveBlogCards republishes the cards of posts with an image under the
// blog's new slug and removes the old ones.
func (g *Guard) moveBlogCards(ctx context.Context, oldSlug, newSlug string, posts []models.Post) {
	if oldSlug == newSlug || g.cards == nil || !g.cards.Enabled() {
		return
	}
	for _, p := range posts {
		if p.ImageType == "" {
			continue
		}
		g.removeCard(ctx, opengraph.PostKey(oldSlug, p.Slug))
		data, _, _, err := g.tx.Repos().Posts.Image(ctx, p.ID)
		if err != nil {
			g.log.Warn("post image not loaded", zap.Stringer("post_id", p.ID), zap.Error(err))
			continue
		}
		g.publishCard(ctx, opengraph.PostKey(newSlug, p.Slug), data)
	}
}

// DeleteBlog removes a blog with its categories, posts, tags and comments.
func (g *Guard) DeleteBlog(ctx context.Context, id uuid.UUID) error {
	var (
		blog  *models.Blog
		posts []models.Post
	)
	err := g.tx.WithinTx(ctx, func(r store.Repos) error {
		var err error
		if blog, err = r.Blogs.FindByID(ctx, id); err != nil {
			return apperr.Persistence("find blog", err)
		}
		if blog == nil {
			return notFound("blog", id)
		}
		if posts, err = r.Posts.ListByBlog(ctx, id); err != nil {
			return apperr.Persistence("list posts", err)
		}
		return apperr.Persistence("delete blog", r.Blogs.Delete(ctx, id))
	})
	if err != nil {
		return err
	}

	g.invalidateTags(ctx, id)
	for _, p := range posts {
		if p.ImageType != "" {
			g.removeCard(ctx, opengraph.PostKey(blog.Slug, p.Slug))
		}
	}
	g.log.Info("blog deleted", zap.Stringer("blog_id", id), zap.Int("posts", len(posts)))
	return nil
}

// DeleteCategory moves the category's posts to "All Posts" and removes
// it. The reserved category cannot be deleted.
func (g *Guard) DeleteCategory(ctx context.Context, blogID, categoryID uuid.UUID) (int64, error) {
	var moved int64
	err := g.tx.WithinTx(ctx, func(r store.Repos) error {
		var err error
		moved, err = reconcile.NewCategories(r).ReassignAndDelete(ctx, blogID, categoryID)
		return err
	})
	if err != nil {
		return 0, err
	}
	g.log.Info("category deleted",
		zap.Stringer("blog_id", blogID), zap.Stringer("category_id", categoryID), zap.Int64("posts_moved", moved))
	return moved, nil
}

func setBlogImage(b *models.Blog, img *imaging.Encoded) {
	if img == nil {
		return
	}
	b.ImageData = img.Data
	b.ImageType = img.ContentType
}

func loadCategories(ctx context.Context, r store.Repos, b *models.Blog) error {
	cats, err := r.Categories.ListByBlog(ctx, b.ID)
	if err != nil {
		return apperr.Persistence("list categories", err)
	}
	b.Categories = cats
	return nil
}
