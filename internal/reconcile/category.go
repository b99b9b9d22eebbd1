// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package reconcile keeps a blog's categories and a post's tags in step
// with what the author submitted. Reconcilers are bound to one store.Repos,
// normally the one handed out by store.Transactor.WithinTx, so a whole
// reconciliation commits or rolls back together.
package reconcile

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"

	"portfolio/internal/apperr"
	"portfolio/internal/models"
	"portfolio/internal/store"
)

// Categories reconciles blog categories.
type Categories struct {
	cats  store.CategoryRepo
	posts store.PostRepo
}

// NewCategories binds a category reconciler to r.
func NewCategories(r store.Repos) *Categories {
	return &Categories{cats: r.Categories, posts: r.Posts}
}

// Dedupe returns the candidates that are not yet categories of the blog,
// in input order with their original case. Blank names and repeats within
// the batch are dropped too.
func (c *Categories) Dedupe(ctx context.Context, blogID uuid.UUID, candidates []string) ([]string, error) {
	existing, err := c.cats.ListByBlog(ctx, blogID)
	if err != nil {
		return nil, apperr.Persistence("dedupe categories", err)
	}
	seen := make(map[string]bool, len(existing)+len(candidates))
	for _, cat := range existing {
		seen[fold(cat.Name)] = true
	}

	var accepted []string
	for _, name := range candidates {
		name = strings.TrimSpace(name)
		key := fold(name)
		if name == "" || seen[key] {
			continue
		}
		seen[key] = true
		accepted = append(accepted, name)
	}
	return accepted, nil
}

// IsUnique reports whether no category of the blog is named name.
func (c *Categories) IsUnique(ctx context.Context, blogID uuid.UUID, name string) (bool, error) {
	cat, err := c.cats.FindByName(ctx, blogID, strings.TrimSpace(name))
	if err != nil {
		return false, apperr.Persistence("check category name", err)
	}
	return cat == nil, nil
}

// CommitNew creates one category per name, in name order. The reserved
// default category is created only when the blog does not have it yet;
// every other name is expected to have passed Dedupe.
func (c *Categories) CommitNew(ctx context.Context, blogID uuid.UUID, names []string) ([]models.Category, error) {
	sorted := append([]string(nil), names...)
	sort.Strings(sorted)

	var created []models.Category
	for _, name := range sorted {
		name = strings.TrimSpace(name)
		if models.IsDefaultCategoryName(name) {
			def, made, err := c.ensureDefault(ctx, blogID)
			if err != nil {
				return nil, err
			}
			if made {
				created = append(created, *def)
			}
			continue
		}
		cat := models.Category{BlogID: blogID, Name: name}
		if err := c.cats.Create(ctx, &cat); err != nil {
			return nil, apperr.Persistence(fmt.Sprintf("create category %q", name), err)
		}
		created = append(created, cat)
	}
	return created, nil
}

// EnsureDefault returns the blog's "All Posts" category, creating it when
// it is missing.
func (c *Categories) EnsureDefault(ctx context.Context, blogID uuid.UUID) (*models.Category, error) {
	def, _, err := c.ensureDefault(ctx, blogID)
	return def, err
}

func (c *Categories) ensureDefault(ctx context.Context, blogID uuid.UUID) (*models.Category, bool, error) {
	def, err := c.cats.FindByName(ctx, blogID, models.DefaultCategoryName)
	if err != nil {
		return nil, false, apperr.Persistence("find default category", err)
	}
	if def != nil {
		return def, false, nil
	}
	def = &models.Category{BlogID: blogID, Name: models.DefaultCategoryName}
	if err := c.cats.Create(ctx, def); err != nil {
		return nil, false, apperr.Persistence("create default category", err)
	}
	return def, true, nil
}

// RetireStale removes every category of the blog whose name is not in
// keep. Posts of a removed category move to "All Posts" first, and "All
// Posts" itself is never removed. It returns the removed categories.
func (c *Categories) RetireStale(ctx context.Context, blogID uuid.UUID, keep []string) ([]models.Category, error) {
	kept := make(map[string]bool, len(keep))
	for _, name := range keep {
		kept[fold(name)] = true
	}

	existing, err := c.cats.ListByBlog(ctx, blogID)
	if err != nil {
		return nil, apperr.Persistence("list categories", err)
	}

	var retired []models.Category
	for _, cat := range existing {
		if cat.IsDefault() || kept[fold(cat.Name)] {
			continue
		}
		if _, err := c.reassignAndDelete(ctx, blogID, cat); err != nil {
			return nil, err
		}
		retired = append(retired, cat)
	}
	return retired, nil
}

// ReplaceCategories makes the blog's category set equal to names plus
// "All Posts": stale categories are retired and new ones committed.
func (c *Categories) ReplaceCategories(ctx context.Context, blogID uuid.UUID, names []string) error {
	if _, err := c.RetireStale(ctx, blogID, names); err != nil {
		return err
	}
	fresh, err := c.Dedupe(ctx, blogID, names)
	if err != nil {
		return err
	}
	_, err = c.CommitNew(ctx, blogID, append(fresh, models.DefaultCategoryName))
	return err
}

// ReassignAndDelete moves every post of the category to the blog's "All
// Posts" category and then deletes it. It returns the number of posts
// moved. The reserved category cannot be deleted.
func (c *Categories) ReassignAndDelete(ctx context.Context, blogID, categoryID uuid.UUID) (int64, error) {
	cat, err := c.cats.FindByID(ctx, categoryID)
	if err != nil {
		return 0, apperr.Persistence("find category", err)
	}
	if cat == nil || cat.BlogID != blogID {
		return 0, fmt.Errorf("category %s: %w", categoryID, apperr.ErrNotFound)
	}
	if cat.IsDefault() {
		return 0, fmt.Errorf("delete %q: %w", cat.Name, apperr.ErrIllegalTransition)
	}
	return c.reassignAndDelete(ctx, blogID, *cat)
}

func (c *Categories) reassignAndDelete(ctx context.Context, blogID uuid.UUID, cat models.Category) (int64, error) {
	def, err := c.EnsureDefault(ctx, blogID)
	if err != nil {
		return 0, err
	}
	moved, err := c.posts.ReassignCategory(ctx, cat.ID, def.ID)
	if err != nil {
		return 0, apperr.Persistence("reassign posts", err)
	}
	if err := c.cats.Delete(ctx, cat.ID); err != nil {
		return 0, apperr.Persistence(fmt.Sprintf("delete category %q", cat.Name), err)
	}
	return moved, nil
}

func fold(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
