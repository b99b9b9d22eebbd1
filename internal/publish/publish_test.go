// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package publish

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portfolio/internal/apperr"
	"portfolio/internal/civility"
	"portfolio/internal/models"
	"portfolio/internal/store/memstore"
)

type tagRecorder struct{ blogs []uuid.UUID }

func (r *tagRecorder) Invalidate(_ context.Context, blogID uuid.UUID) error {
	r.blogs = append(r.blogs, blogID)
	return nil
}

type cardRecorder struct {
	published []string
	removed   []string
	fail      error
}

func (r *cardRecorder) Enabled() bool { return true }

func (r *cardRecorder) Publish(_ context.Context, key string, _ []byte) (string, error) {
	if r.fail != nil {
		return "", r.fail
	}
	r.published = append(r.published, key)
	return "https://cdn.test/" + key, nil
}

func (r *cardRecorder) Remove(_ context.Context, key string) error {
	r.removed = append(r.removed, key)
	return nil
}

type env struct {
	mem   *memstore.Store
	guard *Guard
	tags  *tagRecorder
	cards *cardRecorder
	admin uuid.UUID
}

func newEnv(t *testing.T) *env {
	t.Helper()
	e := &env{mem: memstore.New(), tags: &tagRecorder{}, cards: &cardRecorder{}, admin: uuid.New()}
	e.guard = New(Deps{
		Store:    e.mem,
		Civility: civility.New([]string{"heck", "dang it"}),
		TagCache: e.tags,
		Cards:    e.cards,
	})
	return e
}

func (e *env) blog(t *testing.T, name string, categories ...string) *models.Blog {
	t.Helper()
	b, err := e.guard.CreateBlog(context.Background(), e.admin, BlogInput{
		Name: name, Description: "A blog about " + name, Categories: categories, Image: samplePNG(t),
	})
	require.NoError(t, err)
	return b
}

func (e *env) post(t *testing.T, blog *models.Blog, title string, tags ...string) *models.Post {
	t.Helper()
	p, err := e.guard.CreatePost(context.Background(), e.admin, PostInput{
		BlogID: blog.ID, Title: title, Abstract: "Short abstract", Content: "Some *content*",
		Status: models.StatusProductionReady, Tags: tags,
	})
	require.NoError(t, err)
	return p
}

func samplePNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 24, 16))
	for x := 0; x < 24; x++ {
		for y := 0; y < 16; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 10), G: uint8(y * 10), B: 90, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func violations(t *testing.T, err error) *apperr.ValidationError {
	t.Helper()
	ve, ok := apperr.AsValidation(err)
	require.True(t, ok, "want a validation error, got %v", err)
	return ve
}

func categoryNames(cats []models.Category) []string {
	out := make([]string, 0, len(cats))
	for _, c := range cats {
		out = append(out, c.Name)
	}
	return out
}

func TestCreateBlog_SameNameTwice(t *testing.T) {
	e := newEnv(t)
	e.blog(t, "My Blog", "Tutorials")
	before := e.mem.Counts()

	_, err := e.guard.CreateBlog(context.Background(), e.admin, BlogInput{
		Name: "My Blog", Description: "Another one", Categories: []string{"Reviews"}, Image: samplePNG(t),
	})

	ve := violations(t, err)
	assert.True(t, ve.Has("slug"))
	assert.Contains(t, ve.Error(), `"my-blog" is already taken`)
	assert.Equal(t, 1, e.mem.Counts()["blogs"])
	assert.Equal(t, before, e.mem.Counts())
}

func TestCreateBlog_SlugCaseInsensitive(t *testing.T) {
	e := newEnv(t)
	e.blog(t, "My Blog")

	_, err := e.guard.CreateBlog(context.Background(), e.admin, BlogInput{Name: "MY BLOG!", Description: "shouting", Image: samplePNG(t)})
	assert.True(t, violations(t, err).Has("slug"))
}

func TestCreateBlog_ReportsEveryViolation(t *testing.T) {
	e := newEnv(t)

	_, err := e.guard.CreateBlog(context.Background(), e.admin, BlogInput{
		Name:        "What the heck",
		Description: "x",
		Categories:  []string{"Good Stuff", "Dang it all", "Tiny"},
	})

	ve := violations(t, err)
	for _, field := range []string{"name", "description", "categories[1]", "categories[2]", "image"} {
		assert.True(t, ve.Has(field), "missing violation for %s in %v", field, ve.Violations)
	}
	assert.False(t, ve.Has("categories[0]"))
	assert.Zero(t, e.mem.Counts()["blogs"])
	assert.Zero(t, e.mem.Counts()["categories"])
}

func TestCreateBlog_CategoriesAndDefault(t *testing.T) {
	e := newEnv(t)

	b := e.blog(t, "Gopher Notes", "Tutorials", "tutorials", "All Posts", "Reviews")

	assert.Equal(t, "gopher-notes", b.Slug)
	assert.ElementsMatch(t, []string{"All Posts", "Reviews", "Tutorials"}, categoryNames(b.Categories))
}

func TestCreateBlog_PunctuationOnlyName(t *testing.T) {
	e := newEnv(t)

	_, err := e.guard.CreateBlog(context.Background(), e.admin, BlogInput{Name: "!!!", Description: "nothing", Image: samplePNG(t)})
	ve := violations(t, err)
	assert.True(t, ve.Has("name"))
	assert.False(t, ve.Has("slug"))
}

func TestCreateBlog_ImageRequired(t *testing.T) {
	e := newEnv(t)

	_, err := e.guard.CreateBlog(context.Background(), e.admin, BlogInput{Name: "Gopher Notes", Description: "No picture"})
	ve := violations(t, err)
	assert.True(t, ve.Has("image"))
	assert.Contains(t, ve.Error(), "is required")
	assert.Zero(t, e.mem.Counts()["blogs"])

	_, err = e.guard.CreateBlog(context.Background(), e.admin, BlogInput{
		Name: "Gopher Notes", Description: "Bad picture", Image: []byte("not an image"),
	})
	assert.True(t, violations(t, err).Has("image"))
	assert.Zero(t, e.mem.Counts()["blogs"])
}

func TestCreateBlog_StoresImage(t *testing.T) {
	e := newEnv(t)
	b := e.blog(t, "Gopher Notes")

	assert.Equal(t, "image/png", b.ImageType)
	data, contentType, err := e.mem.Repos().Blogs.Image(context.Background(), b.ID)
	require.NoError(t, err)
	assert.Equal(t, "image/png", contentType)
	assert.NotEmpty(t, data)
}

func TestEditBlog_NilImageKeepsCurrent(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	b := e.blog(t, "Gopher Notes")
	before, _, err := e.mem.Repos().Blogs.Image(ctx, b.ID)
	require.NoError(t, err)

	edited, err := e.guard.EditBlog(ctx, b.ID, BlogInput{Name: "Gopher Notes", Description: "No new picture"})
	require.NoError(t, err)
	assert.Equal(t, "image/png", edited.ImageType)

	after, _, err := e.mem.Repos().Blogs.Image(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, before, after)

	_, err = e.guard.EditBlog(ctx, b.ID, BlogInput{Name: "Gopher Notes", Description: "Broken", Image: []byte("nope")})
	assert.True(t, violations(t, err).Has("image"))
}

func TestEditBlog_RenameMovesPostCards(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	b := e.blog(t, "Old Name")
	_, err := e.guard.CreatePost(ctx, e.admin, PostInput{
		BlogID: b.ID, Title: "Hello", Abstract: "abstract", Content: "content", Image: samplePNG(t),
	})
	require.NoError(t, err)
	e.post(t, b, "No picture")
	require.Equal(t, []string{"og/posts/old-name/hello.png"}, e.cards.published)

	_, err = e.guard.EditBlog(ctx, b.ID, BlogInput{Name: "New Name", Description: "Renamed"})
	require.NoError(t, err)

	assert.Equal(t, []string{"og/posts/old-name/hello.png"}, e.cards.removed)
	assert.Equal(t, []string{"og/posts/old-name/hello.png", "og/posts/new-name/hello.png"}, e.cards.published)

	require.NoError(t, e.guard.DeleteBlog(ctx, b.ID))
	assert.Equal(t, "og/posts/new-name/hello.png", e.cards.removed[len(e.cards.removed)-1])
}

func TestEditBlog_SameSlugLeavesCards(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	b := e.blog(t, "Gopher Notes")
	_, err := e.guard.CreatePost(ctx, e.admin, PostInput{
		BlogID: b.ID, Title: "Hello", Abstract: "abstract", Content: "content", Image: samplePNG(t),
	})
	require.NoError(t, err)

	_, err = e.guard.EditBlog(ctx, b.ID, BlogInput{Name: "Gopher Notes", Description: "Still the same slug"})
	require.NoError(t, err)
	assert.Empty(t, e.cards.removed)
	assert.Len(t, e.cards.published, 1)
}

func TestEditBlog_ReplacesCategories(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	b := e.blog(t, "Gopher Notes", "Tutorials", "Reviews")
	p := e.post(t, b, "First post")
	var reviews models.Category
	for _, c := range b.Categories {
		if c.Name == "Reviews" {
			reviews = c
		}
	}
	p.CategoryID = reviews.ID
	_, err := e.guard.EditPost(ctx, p.ID, PostInput{
		CategoryID: reviews.ID, Title: p.Title, Abstract: p.Abstract, Content: p.Content, Status: p.Status,
	})
	require.NoError(t, err)

	edited, err := e.guard.EditBlog(ctx, b.ID, BlogInput{
		Name: "Gopher Notes 2", Description: "Renamed", Categories: []string{"Tutorials", "Deep Dives"},
	})
	require.NoError(t, err)

	assert.Equal(t, "gopher-notes-2", edited.Slug)
	assert.ElementsMatch(t, []string{"All Posts", "Deep Dives", "Tutorials"}, categoryNames(edited.Categories))

	moved, err := e.mem.Repos().Posts.FindByID(ctx, p.ID)
	require.NoError(t, err)
	def, err := e.mem.Repos().Categories.FindByName(ctx, b.ID, models.DefaultCategoryName)
	require.NoError(t, err)
	assert.Equal(t, def.ID, moved.CategoryID)
}

func TestEditBlog_NilCategoriesUntouched(t *testing.T) {
	e := newEnv(t)
	b := e.blog(t, "Gopher Notes", "Tutorials")

	edited, err := e.guard.EditBlog(context.Background(), b.ID, BlogInput{Name: "Gopher Notes", Description: "Same slug"})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"All Posts", "Tutorials"}, categoryNames(edited.Categories))
}

func TestEditBlog_SlugTakenByAnother(t *testing.T) {
	e := newEnv(t)
	e.blog(t, "Taken")
	b := e.blog(t, "Free")

	_, err := e.guard.EditBlog(context.Background(), b.ID, BlogInput{Name: "Taken", Description: "collide"})
	assert.True(t, violations(t, err).Has("slug"))

	again, err := e.mem.Repos().Blogs.FindByID(context.Background(), b.ID)
	require.NoError(t, err)
	assert.Equal(t, "free", again.Slug)
}

func TestEditBlog_NotFound(t *testing.T) {
	e := newEnv(t)
	_, err := e.guard.EditBlog(context.Background(), uuid.New(), BlogInput{Name: "Ghost", Description: "none"})
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestCreatePost_TagsImageAndCard(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	b := e.blog(t, "Gopher Notes")

	p, err := e.guard.CreatePost(ctx, e.admin, PostInput{
		BlogID: b.ID, Title: "Hello, Wörld", Abstract: "Greeting", Content: "# Hi",
		Tags: []string{"go", "c#", "c#"}, Image: samplePNG(t),
	})
	require.NoError(t, err)

	assert.Equal(t, "hello-world", p.Slug)
	assert.Equal(t, models.StatusIncomplete, p.Status)
	require.Len(t, p.Tags, 3)
	assert.Equal(t, "c#", p.Tags[2].Text)

	def, err := e.mem.Repos().Categories.FindByName(ctx, b.ID, models.DefaultCategoryName)
	require.NoError(t, err)
	assert.Equal(t, def.ID, p.CategoryID)

	data, thumb, ct, err := e.mem.Repos().Posts.Image(ctx, p.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, data)
	assert.NotEmpty(t, thumb)
	assert.Equal(t, "image/png", ct)

	assert.Equal(t, []uuid.UUID{b.ID}, e.tags.blogs)
	assert.Equal(t, []string{"og/posts/gopher-notes/hello-world.png"}, e.cards.published)
}

func TestCreatePost_Violations(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	b := e.blog(t, "Gopher Notes")
	other := e.blog(t, "Other Notes", "Elsewhere")
	e.post(t, b, "Taken title")
	before := e.mem.Counts()

	_, err := e.guard.CreatePost(ctx, e.admin, PostInput{
		BlogID:     b.ID,
		CategoryID: other.Categories[0].ID,
		Title:      "Taken title",
		Abstract:   "Heck of an abstract",
		Content:    "**dang it** in bold",
		Status:     "Published",
		Tags:       []string{"ok", "x", "heck"},
		Image:      []byte("not an image"),
	})

	ve := violations(t, err)
	for _, field := range []string{"category_id", "slug", "abstract", "content", "status", "tags[1]", "tags[2]", "image"} {
		assert.True(t, ve.Has(field), "missing violation for %s in %v", field, ve.Violations)
	}
	assert.Equal(t, before, e.mem.Counts())
	assert.Empty(t, e.cards.published)
}

func TestCreatePost_SameSlugInOtherBlog(t *testing.T) {
	e := newEnv(t)
	a := e.blog(t, "Blog A")
	b := e.blog(t, "Blog B")
	e.post(t, a, "Shared title")

	p := e.post(t, b, "Shared title")
	assert.Equal(t, "shared-title", p.Slug)
}

func TestCreatePost_UnknownBlog(t *testing.T) {
	e := newEnv(t)
	_, err := e.guard.CreatePost(context.Background(), e.admin, PostInput{
		BlogID: uuid.New(), Title: "Orphan", Abstract: "none", Content: "none",
	})
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestCreatePost_StoreFailureRollsBack(t *testing.T) {
	e := newEnv(t)
	b := e.blog(t, "Gopher Notes")
	e.mem.FailOn("tags.create", errors.New("disk full"))

	_, err := e.guard.CreatePost(context.Background(), e.admin, PostInput{
		BlogID: b.ID, Title: "Doomed", Abstract: "abstract", Content: "content", Tags: []string{"go"},
	})

	assert.Equal(t, apperr.KindPersistence, apperr.Kind(err))
	assert.Zero(t, e.mem.Counts()["posts"])
	assert.Empty(t, e.tags.blogs, "no invalidation after a failed write")
}

func TestEditPost_KeepsTagsAndMovesCard(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	b := e.blog(t, "Gopher Notes")
	p, err := e.guard.CreatePost(ctx, e.admin, PostInput{
		BlogID: b.ID, Title: "Old title", Abstract: "abstract", Content: "content",
		Tags: []string{"go"}, Image: samplePNG(t),
	})
	require.NoError(t, err)

	edited, err := e.guard.EditPost(ctx, p.ID, PostInput{
		Title: "New title", Abstract: "abstract", Content: "content", Status: models.StatusPreviewReady,
	})
	require.NoError(t, err)

	assert.Equal(t, "new-title", edited.Slug)
	require.Len(t, edited.Tags, 1)
	assert.Equal(t, "go", edited.Tags[0].Text)
	assert.Equal(t, []string{"og/posts/gopher-notes/old-title.png"}, e.cards.removed)
	assert.Equal(t, "og/posts/gopher-notes/new-title.png", e.cards.published[len(e.cards.published)-1])

	data, _, _, err := e.mem.Repos().Posts.Image(ctx, p.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, data, "image kept when none is uploaded")
}

func TestEditPost_ReplacesTags(t *testing.T) {
	e := newEnv(t)
	b := e.blog(t, "Gopher Notes")
	p := e.post(t, b, "Tagged", "go", "sql")

	edited, err := e.guard.EditPost(context.Background(), p.ID, PostInput{
		Title: "Tagged", Abstract: "abstract", Content: "content", Tags: []string{},
	})
	require.NoError(t, err)
	assert.Empty(t, edited.Tags)
	assert.Zero(t, e.mem.Counts()["tags"])
}

func TestCardFailureDoesNotFailPublish(t *testing.T) {
	e := newEnv(t)
	e.cards.fail = errors.New("bucket down")
	b := e.blog(t, "Gopher Notes")

	_, err := e.guard.CreatePost(context.Background(), e.admin, PostInput{
		BlogID: b.ID, Title: "Pictured", Abstract: "abstract", Content: "content", Image: samplePNG(t),
	})
	assert.NoError(t, err)
}

func TestDeletePost(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	b := e.blog(t, "Gopher Notes")
	p := e.post(t, b, "Short lived", "go")

	require.NoError(t, e.guard.DeletePost(ctx, p.ID))
	assert.Zero(t, e.mem.Counts()["posts"])
	assert.Zero(t, e.mem.Counts()["tags"])
	assert.ErrorIs(t, e.guard.DeletePost(ctx, p.ID), apperr.ErrNotFound)
}

func TestDeleteBlog_Cascades(t *testing.T) {
	e := newEnv(t)
	b := e.blog(t, "Gopher Notes", "Tutorials")
	e.post(t, b, "One", "go")
	e.post(t, b, "Two")

	require.NoError(t, e.guard.DeleteBlog(context.Background(), b.ID))
	counts := e.mem.Counts()
	for _, k := range []string{"blogs", "categories", "posts", "tags"} {
		assert.Zero(t, counts[k], k)
	}
}

func TestDeleteCategory(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	b := e.blog(t, "Gopher Notes", "Tutorials")
	var tutorials, def models.Category
	for _, c := range b.Categories {
		if c.IsDefault() {
			def = c
		} else {
			tutorials = c
		}
	}
	p, err := e.guard.CreatePost(ctx, e.admin, PostInput{
		BlogID: b.ID, CategoryID: tutorials.ID, Title: "Lesson", Abstract: "abstract", Content: "content",
	})
	require.NoError(t, err)

	moved, err := e.guard.DeleteCategory(ctx, b.ID, tutorials.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, moved)

	got, err := e.mem.Repos().Posts.FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, def.ID, got.CategoryID)

	_, err = e.guard.DeleteCategory(ctx, b.ID, def.ID)
	assert.ErrorIs(t, err, apperr.ErrIllegalTransition)
}

func validProject() ProjectInput {
	return ProjectInput{
		Title:       "Portfolio site",
		Description: "The site you are looking at right now.",
		URL:         "https://example.com/portfolio",
		Categories:  []string{"projects", "HTML-5", "Projects"},
	}
}

func TestCreateProject(t *testing.T) {
	e := newEnv(t)
	in := validProject()
	in.Images = [][]byte{samplePNG(t), samplePNG(t)}

	p, err := e.guard.CreateProject(context.Background(), in)
	require.NoError(t, err)

	assert.Equal(t, "portfolio-site", p.Slug)
	require.Len(t, p.Categories, 2)
	assert.Equal(t, "PROJECTS", p.Categories[0].Name)
	assert.Equal(t, "HTML-5", p.Categories[1].Name)
	require.Len(t, p.Images, 2)
	assert.Equal(t, 1, p.Images[1].Position)
	assert.Equal(t, []string{"og/projects/portfolio-site.png"}, e.cards.published)
}

func TestCreateProject_Violations(t *testing.T) {
	e := newEnv(t)
	_, err := e.guard.CreateProject(context.Background(), validProject())
	require.NoError(t, err)

	in := validProject()
	in.URL = "example.com"
	in.Categories = []string{"GAMES"}
	in.Description = "what the heck is this thing"
	_, err = e.guard.CreateProject(context.Background(), in)

	ve := violations(t, err)
	for _, field := range []string{"url", "categories[0]", "description", "slug"} {
		assert.True(t, ve.Has(field), "missing violation for %s in %v", field, ve.Violations)
	}
	assert.Equal(t, 1, e.mem.Counts()["projects"])
}

func TestCreateProject_UncivilURL(t *testing.T) {
	e := newEnv(t)
	in := validProject()
	in.URL = "https://example.com/heck"

	_, err := e.guard.CreateProject(context.Background(), in)

	ve := violations(t, err)
	require.Len(t, ve.Violations, 1)
	assert.Equal(t, "url", ve.Violations[0].Field)
	assert.Equal(t, msgFoul, ve.Violations[0].Message)
	assert.Zero(t, e.mem.Counts()["projects"])
	assert.Empty(t, e.cards.published)
}

func TestCreateProject_TooManyCategories(t *testing.T) {
	e := newEnv(t)
	in := validProject()
	in.Categories = []string{"PROJECTS", "CHALLENGES", "DOT-NET", "HTML-5", "PROJECTS"}

	_, err := e.guard.CreateProject(context.Background(), in)
	assert.True(t, violations(t, err).Has("categories"))
}

func TestEditProject_KeepsImages(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	in := validProject()
	in.Images = [][]byte{samplePNG(t)}
	p, err := e.guard.CreateProject(ctx, in)
	require.NoError(t, err)

	edit := validProject()
	edit.Title = "Portfolio website"
	edit.Categories = []string{"DOT-NET"}
	got, err := e.guard.EditProject(ctx, p.ID, edit)
	require.NoError(t, err)

	assert.Equal(t, "portfolio-website", got.Slug)
	require.Len(t, got.Categories, 1)
	assert.Equal(t, "DOT-NET", got.Categories[0].Name)
	assert.Len(t, got.Images, 1)
	assert.Equal(t, 1, e.mem.Counts()["project_categories"])
	assert.Equal(t, []string{"og/projects/portfolio-site.png"}, e.cards.removed)
}

func TestDeleteProject(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	p, err := e.guard.CreateProject(ctx, validProject())
	require.NoError(t, err)

	require.NoError(t, e.guard.DeleteProject(ctx, p.ID))
	assert.Zero(t, e.mem.Counts()["projects"])
	assert.Zero(t, e.mem.Counts()["project_categories"])
	assert.ErrorIs(t, e.guard.DeleteProject(ctx, p.ID), apperr.ErrNotFound)
}
