// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package reconcile

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portfolio/internal/apperr"
	"portfolio/internal/models"
	"portfolio/internal/store"
	"portfolio/internal/store/memstore"
)

type fixture struct {
	mem  *memstore.Store
	repo store.Repos
	blog models.Blog
}

func newFixture(t *testing.T, categories ...string) *fixture {
	t.Helper()
	ctx := context.Background()
	mem := memstore.New()
	r := mem.Repos()
	b := models.Blog{AuthorID: uuid.New(), Name: "Gopher Diary", Slug: "gopher-diary"}
	require.NoError(t, r.Blogs.Create(ctx, &b))
	_, err := NewCategories(r).CommitNew(ctx, b.ID, append(categories, models.DefaultCategoryName))
	require.NoError(t, err)
	return &fixture{mem: mem, repo: r, blog: b}
}

func (f *fixture) category(t *testing.T, name string) models.Category {
	t.Helper()
	c, err := f.repo.Categories.FindByName(context.Background(), f.blog.ID, name)
	require.NoError(t, err)
	require.NotNil(t, c, "category %q", name)
	return *c
}

func (f *fixture) post(t *testing.T, slug, category string, status models.ReadyStatus) models.Post {
	t.Helper()
	p := models.Post{
		BlogID: f.blog.ID, CategoryID: f.category(t, category).ID, AuthorID: f.blog.AuthorID,
		Title: slug, Slug: slug, Abstract: "abstract", Content: "content", Status: status,
	}
	require.NoError(t, f.repo.Posts.Create(context.Background(), &p))
	return p
}

func names(cats []models.Category) []string {
	out := make([]string, 0, len(cats))
	for _, c := range cats {
		out = append(out, c.Name)
	}
	return out
}

func TestDedupe(t *testing.T) {
	f := newFixture(t, "Concurrency")
	got, err := NewCategories(f.repo).Dedupe(context.Background(), f.blog.ID,
		[]string{"concurrency", "Networking", " networking ", "all posts", "", "Databases"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Networking", "Databases"}, got)
}

func TestIsUnique(t *testing.T) {
	f := newFixture(t, "Concurrency")
	c := NewCategories(f.repo)

	unique, err := c.IsUnique(context.Background(), f.blog.ID, "CONCURRENCY")
	require.NoError(t, err)
	assert.False(t, unique)

	unique, err = c.IsUnique(context.Background(), f.blog.ID, "Networking")
	require.NoError(t, err)
	assert.True(t, unique)
}

func TestCommitNew_DefaultCreatedOnce(t *testing.T) {
	f := newFixture(t)
	created, err := NewCategories(f.repo).CommitNew(context.Background(), f.blog.ID,
		[]string{"Tutorials", models.DefaultCategoryName, "Benchmarks"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Benchmarks", "Tutorials"}, names(created))

	all, err := f.repo.Categories.ListByBlog(context.Background(), f.blog.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{models.DefaultCategoryName, "Benchmarks", "Tutorials"}, names(all))
}

func TestCommitNew_ConflictPropagates(t *testing.T) {
	f := newFixture(t, "Tutorials")
	_, err := NewCategories(f.repo).CommitNew(context.Background(), f.blog.ID, []string{"tutorials"})
	require.Error(t, err)
	assert.ErrorIs(t, err, store.ErrConflict)
	assert.Equal(t, apperr.KindPersistence, apperr.Kind(err))
}

func TestReassignAndDelete(t *testing.T) {
	f := newFixture(t, "Concurrency", "Networking")
	ctx := context.Background()
	p1 := f.post(t, "channels", "Concurrency", models.StatusProductionReady)
	p2 := f.post(t, "mutexes", "Concurrency", models.StatusIncomplete)
	other := f.post(t, "sockets", "Networking", models.StatusIncomplete)
	victim := f.category(t, "Concurrency")
	def := f.category(t, models.DefaultCategoryName)

	moved, err := NewCategories(f.repo).ReassignAndDelete(ctx, f.blog.ID, victim.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, moved)

	left, err := f.repo.Posts.ListByCategory(ctx, victim.ID)
	require.NoError(t, err)
	assert.Empty(t, left)
	for _, id := range []uuid.UUID{p1.ID, p2.ID} {
		p, err := f.repo.Posts.FindByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, def.ID, p.CategoryID)
	}
	p, err := f.repo.Posts.FindByID(ctx, other.ID)
	require.NoError(t, err)
	assert.Equal(t, f.category(t, "Networking").ID, p.CategoryID)

	gone, err := f.repo.Categories.FindByID(ctx, victim.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)
}

func TestReassignAndDelete_RefusesDefault(t *testing.T) {
	f := newFixture(t, "Concurrency")
	def := f.category(t, models.DefaultCategoryName)

	_, err := NewCategories(f.repo).ReassignAndDelete(context.Background(), f.blog.ID, def.ID)
	assert.ErrorIs(t, err, apperr.ErrIllegalTransition)
	f.category(t, models.DefaultCategoryName)
}

func TestReassignAndDelete_NotFound(t *testing.T) {
	f := newFixture(t)
	c := NewCategories(f.repo)

	_, err := c.ReassignAndDelete(context.Background(), f.blog.ID, uuid.New())
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	other := newFixture(t, "Elsewhere")
	foreign := other.category(t, "Elsewhere")
	_, err = c.ReassignAndDelete(context.Background(), f.blog.ID, foreign.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestReassignAndDelete_RecreatesMissingDefault(t *testing.T) {
	f := newFixture(t, "Concurrency")
	ctx := context.Background()
	require.NoError(t, f.repo.Categories.Delete(ctx, f.category(t, models.DefaultCategoryName).ID))
	f.post(t, "channels", "Concurrency", models.StatusIncomplete)

	moved, err := NewCategories(f.repo).ReassignAndDelete(ctx, f.blog.ID, f.category(t, "Concurrency").ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, moved)
	def := f.category(t, models.DefaultCategoryName)
	filed, err := f.repo.Posts.ListByCategory(ctx, def.ID)
	require.NoError(t, err)
	assert.Len(t, filed, 1)
}

func TestReplaceCategories(t *testing.T) {
	f := newFixture(t, "Concurrency", "Networking")
	ctx := context.Background()
	p := f.post(t, "sockets", "Networking", models.StatusIncomplete)

	require.NoError(t, NewCategories(f.repo).ReplaceCategories(ctx, f.blog.ID, []string{"concurrency", "Databases"}))

	all, err := f.repo.Categories.ListByBlog(ctx, f.blog.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{models.DefaultCategoryName, "Concurrency", "Databases"}, names(all))

	moved, err := f.repo.Posts.FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, f.category(t, models.DefaultCategoryName).ID, moved.CategoryID)
}

func TestRetireStale_RetainedCategoriesKeepIdentity(t *testing.T) {
	f := newFixture(t, "Concurrency", "Networking")
	ctx := context.Background()
	concurrency := f.category(t, "Concurrency")
	def := f.category(t, models.DefaultCategoryName)
	p := f.post(t, "channels", "Concurrency", models.StatusProductionReady)

	retired, err := NewCategories(f.repo).RetireStale(ctx, f.blog.ID, []string{"CONCURRENCY"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Networking"}, names(retired))

	assert.Equal(t, concurrency.ID, f.category(t, "Concurrency").ID)
	assert.Equal(t, def.ID, f.category(t, models.DefaultCategoryName).ID)

	kept, err := f.repo.Posts.FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, concurrency.ID, kept.CategoryID)
}

func TestReplaceCategories_EmptyKeepsOnlyDefault(t *testing.T) {
	f := newFixture(t, "Concurrency", "Networking")
	require.NoError(t, NewCategories(f.repo).ReplaceCategories(context.Background(), f.blog.ID, nil))

	all, err := f.repo.Categories.ListByBlog(context.Background(), f.blog.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{models.DefaultCategoryName}, names(all))
}

func TestReplaceCategories_AtomicInTransaction(t *testing.T) {
	f := newFixture(t, "Concurrency", "Networking")
	ctx := context.Background()
	f.mem.FailOn("categories.create", errors.New("connection reset"))

	err := f.mem.WithinTx(ctx, func(r store.Repos) error {
		return NewCategories(r).ReplaceCategories(ctx, f.blog.ID, []string{"Databases"})
	})
	require.Error(t, err)
	assert.Equal(t, apperr.KindPersistence, apperr.Kind(err))

	all, err := f.repo.Categories.ListByBlog(ctx, f.blog.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{models.DefaultCategoryName, "Concurrency", "Networking"}, names(all))
}

func TestReplaceAll(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.post(t, "generics", models.DefaultCategoryName, models.StatusIncomplete)
	tags := NewTags(f.repo)

	_, err := tags.ReplaceAll(ctx, &p, []string{"go", "types"})
	require.NoError(t, err)
	created, err := tags.ReplaceAll(ctx, &p, []string{"c#", "c#"})
	require.NoError(t, err)
	require.Len(t, created, 2)
	for _, tg := range created {
		assert.Equal(t, p.AuthorID, tg.AuthorID)
	}

	stored, err := f.repo.Tags.ListByPost(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, stored, 2)
	assert.Equal(t, "c#", stored[0].Text)
	assert.Equal(t, "c#", stored[1].Text)

	_, err = tags.ReplaceAll(ctx, &p, nil)
	require.NoError(t, err)
	stored, err = f.repo.Tags.ListByPost(ctx, p.ID)
	require.NoError(t, err)
	assert.Empty(t, stored)
}

func TestTopDistinct(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	tags := NewTags(f.repo)

	live := f.post(t, "live", models.DefaultCategoryName, models.StatusProductionReady)
	draft := f.post(t, "draft", models.DefaultCategoryName, models.StatusIncomplete)
	later := f.post(t, "later", models.DefaultCategoryName, models.StatusProductionReady)
	_, err := tags.ReplaceAll(ctx, &live, []string{"zig", "go", "rust"})
	require.NoError(t, err)
	_, err = tags.ReplaceAll(ctx, &draft, []string{"aardvark"})
	require.NoError(t, err)
	_, err = tags.ReplaceAll(ctx, &later, []string{"go", "c"})
	require.NoError(t, err)

	top, err := tags.TopDistinct(ctx, f.blog.ID, 0)
	require.NoError(t, err)
	var texts []string
	for _, tg := range top {
		texts = append(texts, tg.Text)
	}
	assert.Equal(t, []string{"c", "go", "rust", "zig"}, texts)
	for _, tg := range top {
		if tg.Text == "go" {
			assert.Equal(t, live.ID, tg.PostID, "first-seen tag represents the text")
		}
	}

	top, err = tags.TopDistinct(ctx, f.blog.ID, 2)
	require.NoError(t, err)
	assert.Len(t, top, 2)
}

func TestDistinctSortedTruncates(t *testing.T) {
	var all []models.Tag
	for _, s := range []string{"e", "d", "c", "b", "a", "a"} {
		all = append(all, models.Tag{Text: s})
	}
	got := distinctSorted(all, 3)
	require.Len(t, got, 3)
	assert.Equal(t, "a", got[0].Text)
	assert.Equal(t, "c", got[2].Text)
}
