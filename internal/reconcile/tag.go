// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package reconcile

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"

	"portfolio/internal/apperr"
	"portfolio/internal/models"
	"portfolio/internal/store"
)

// DefaultTopTags is the number of tags TopDistinct returns when no limit
// is given.
const DefaultTopTags = 20

// Tags reconciles post tags.
type Tags struct {
	tags store.TagRepo
}

// NewTags binds a tag reconciler to r.
func NewTags(r store.Repos) *Tags {
	return &Tags{tags: r.Tags}
}

// ReplaceAll drops every tag of the post and inserts one tag per text,
// owned by the post's author. Repeated texts are kept as given.
func (t *Tags) ReplaceAll(ctx context.Context, post *models.Post, texts []string) ([]models.Tag, error) {
	if _, err := t.tags.DeleteByPost(ctx, post.ID); err != nil {
		return nil, apperr.Persistence("delete tags", err)
	}

	created := make([]models.Tag, 0, len(texts))
	for _, text := range texts {
		tag := models.Tag{PostID: post.ID, AuthorID: post.AuthorID, Text: strings.TrimSpace(text)}
		if err := t.tags.Create(ctx, &tag); err != nil {
			return nil, apperr.Persistence("create tag", err)
		}
		created = append(created, tag)
	}
	return created, nil
}

// TopDistinct returns the distinct tags of the blog's production-ready
// posts sorted by text. The first tag seen for a text represents it.
func (t *Tags) TopDistinct(ctx context.Context, blogID uuid.UUID, limit int) ([]models.Tag, error) {
	if limit <= 0 {
		limit = DefaultTopTags
	}
	all, err := t.tags.ListByBlog(ctx, blogID, models.StatusProductionReady)
	if err != nil {
		return nil, apperr.Persistence("list blog tags", err)
	}
	return distinctSorted(all, limit), nil
}

func distinctSorted(all []models.Tag, limit int) []models.Tag {
	seen := make(map[string]bool, len(all))
	out := make([]models.Tag, 0, len(all))
	for _, tag := range all {
		if seen[tag.Text] {
			continue
		}
		seen[tag.Text] = true
		out = append(out, tag)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Text < out[j].Text })
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}
