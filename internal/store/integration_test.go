// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portfolio/internal/models"
)

func seedBlog(t *testing.T, r Repos, author uuid.UUID, name string) (*models.Blog, *models.Category) {
	t.Helper()
	ctx := context.Background()
	b := &models.Blog{AuthorID: author, Name: name, Description: "integration test blog", Slug: "it-" + uuid.NewString()}
	require.NoError(t, r.Blogs.Create(ctx, b))
	def := &models.Category{BlogID: b.ID, Name: models.DefaultCategoryName}
	require.NoError(t, r.Categories.Create(ctx, def))
	return b, def
}

func TestIntegration_SlugUniqueIgnoresCase(t *testing.T) {
	db := testDB(t)
	u := testUser(t, db)
	r := New(db).Repos()
	ctx := context.Background()

	slug := "it-case-" + uuid.NewString()[:8]
	require.NoError(t, r.Blogs.Create(ctx, &models.Blog{AuthorID: u.ID, Name: "One", Description: "first", Slug: slug}))

	err := r.Blogs.Create(ctx, &models.Blog{AuthorID: u.ID, Name: "Two", Description: "second", Slug: "IT-CASE-" + slug[8:]})
	assert.ErrorIs(t, err, ErrConflict)

	taken, err := r.Blogs.SlugTaken(ctx, "IT-CASE-"+slug[8:], uuid.Nil)
	require.NoError(t, err)
	assert.True(t, taken)
}

func TestIntegration_CategoryWithPostsCannotBeDeleted(t *testing.T) {
	db := testDB(t)
	u := testUser(t, db)
	r := New(db).Repos()
	ctx := context.Background()

	b, def := seedBlog(t, r, u.ID, "Category Blog")
	tutorials := &models.Category{BlogID: b.ID, Name: "Tutorials"}
	require.NoError(t, r.Categories.Create(ctx, tutorials))

	dup := &models.Category{BlogID: b.ID, Name: "TUTORIALS"}
	assert.ErrorIs(t, r.Categories.Create(ctx, dup), ErrConflict)

	p := &models.Post{BlogID: b.ID, CategoryID: tutorials.ID, AuthorID: u.ID, Title: "Hello", Slug: "hello",
		Abstract: "An abstract", Content: "Body", Status: models.StatusProductionReady}
	require.NoError(t, r.Posts.Create(ctx, p))

	require.Error(t, r.Categories.Delete(ctx, tutorials.ID))

	n, err := r.Posts.ReassignCategory(ctx, tutorials.ID, def.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
	require.NoError(t, r.Categories.Delete(ctx, tutorials.ID))

	left, err := r.Posts.ListByCategory(ctx, tutorials.ID)
	require.NoError(t, err)
	assert.Empty(t, left)
}

func TestIntegration_TransactionRollsBack(t *testing.T) {
	db := testDB(t)
	u := testUser(t, db)
	s := New(db)
	ctx := context.Background()

	slug := "it-rollback-" + uuid.NewString()
	abort := errors.New("abort")
	err := s.WithinTx(ctx, func(r Repos) error {
		if err := r.Blogs.Create(ctx, &models.Blog{AuthorID: u.ID, Name: "Rolled", Description: "never lands", Slug: slug}); err != nil {
			return err
		}
		return abort
	})
	require.ErrorIs(t, err, abort)

	b, err := s.Repos().Blogs.FindBySlug(ctx, slug)
	require.NoError(t, err)
	assert.Nil(t, b)
}

func TestIntegration_TagsAndComments(t *testing.T) {
	db := testDB(t)
	u := testUser(t, db)
	r := New(db).Repos()
	ctx := context.Background()

	b, def := seedBlog(t, r, u.ID, "Tag Blog")
	p := &models.Post{BlogID: b.ID, CategoryID: def.ID, AuthorID: u.ID, Title: "Tagged", Slug: "tagged",
		Abstract: "An abstract", Content: "Body", Status: models.StatusProductionReady}
	require.NoError(t, r.Posts.Create(ctx, p))

	for _, text := range []string{"go", "sql", "go"} {
		require.NoError(t, r.Tags.Create(ctx, &models.Tag{PostID: p.ID, AuthorID: u.ID, Text: text}))
	}
	tags, err := r.Tags.ListByPost(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, tags, 3)
	assert.Equal(t, "sql", tags[1].Text)

	tagged, err := r.Posts.ListByTag(ctx, b.ID, "GO", models.StatusProductionReady)
	require.NoError(t, err)
	require.Len(t, tagged, 1)

	c := &models.Comment{PostID: p.ID, AuthorID: u.ID, Body: "first!"}
	require.NoError(t, r.Comments.Create(ctx, c))
	c.SoftDelete(c.CreatedAt)
	require.NoError(t, r.Comments.Update(ctx, c))

	got, err := r.Comments.FindByID(ctx, c.ID)
	require.NoError(t, err)
	assert.True(t, got.IsModerated)
	assert.True(t, got.IsSoftDeleted)
	assert.NotNil(t, got.SoftDeletedAt)
	assert.Empty(t, got.ModeratedBody)
}
