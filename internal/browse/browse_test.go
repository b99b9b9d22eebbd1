// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package browse

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portfolio/internal/apperr"
	"portfolio/internal/comments"
	"portfolio/internal/models"
	"portfolio/internal/publish"
	"portfolio/internal/store/memstore"
)

type memCache struct {
	items map[uuid.UUID][]models.Tag
	gets  int
	hits  int
}

func (c *memCache) Get(_ context.Context, blogID uuid.UUID) ([]models.Tag, bool) {
	c.gets++
	tags, ok := c.items[blogID]
	if ok {
		c.hits++
	}
	return tags, ok
}

func (c *memCache) Set(_ context.Context, blogID uuid.UUID, tags []models.Tag) {
	c.items[blogID] = tags
}

type fixture struct {
	mem    *memstore.Store
	guard  *publish.Guard
	cache  *memCache
	svc    *Service
	author uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	mem := memstore.New()
	cache := &memCache{items: map[uuid.UUID][]models.Tag{}}
	return &fixture{
		mem:    mem,
		guard:  publish.New(publish.Deps{Store: mem}),
		cache:  cache,
		svc:    New(mem, cache, nil),
		author: uuid.New(),
	}
}

func (f *fixture) blog(t *testing.T, name string) *models.Blog {
	t.Helper()
	b, err := f.guard.CreateBlog(context.Background(), f.author, publish.BlogInput{
		Name: name, Description: "About " + name, Categories: []string{"Tutorials"}, Image: blogImage(t),
	})
	require.NoError(t, err)
	return b
}

func (f *fixture) post(t *testing.T, b *models.Blog, title string, status models.ReadyStatus, tags ...string) *models.Post {
	t.Helper()
	p, err := f.guard.CreatePost(context.Background(), f.author, publish.PostInput{
		BlogID: b.ID, Title: title, Abstract: "Abstract of " + title,
		Content: "Hello <script>alert(1)</script> **world**", Status: status, Tags: tags,
	})
	require.NoError(t, err)
	return p
}

func TestBlogs_OnlyWithProductionReadyPosts(t *testing.T) {
	f := newFixture(t)
	live := f.blog(t, "Live Blog")
	draft := f.blog(t, "Draft Blog")
	f.post(t, live, "Published", models.StatusProductionReady)
	f.post(t, draft, "Not yet", models.StatusPreviewReady)

	blogs, err := f.svc.Blogs(context.Background())
	require.NoError(t, err)
	require.Len(t, blogs, 1)
	assert.Equal(t, live.ID, blogs[0].ID)

	all, err := f.svc.AllBlogs(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestSearchBlogs(t *testing.T) {
	f := newFixture(t)
	f.blog(t, "Gopher Diary")
	f.blog(t, "Rust Notes")

	got, err := f.svc.SearchBlogs(context.Background(), "GOPHER")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Gopher Diary", got[0].Name)

	empty, err := f.svc.SearchBlogs(context.Background(), "  ")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestBlog_HidesDrafts(t *testing.T) {
	f := newFixture(t)
	b := f.blog(t, "Gopher Diary")
	f.post(t, b, "Live", models.StatusProductionReady)
	f.post(t, b, "Draft", models.StatusIncomplete)

	public, err := f.svc.Blog(context.Background(), "gopher-diary", false)
	require.NoError(t, err)
	assert.Len(t, public.Posts, 1)
	assert.Len(t, public.Categories, 2)

	author, err := f.svc.Blog(context.Background(), "gopher-diary", true)
	require.NoError(t, err)
	assert.Len(t, author.Posts, 2)

	_, err = f.svc.Blog(context.Background(), "missing", false)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestPost_RendersAndFiltersComments(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b := f.blog(t, "Gopher Diary")
	p := f.post(t, b, "Hello", models.StatusProductionReady, "go")

	mgr := comments.NewManager(f.mem, nil, nil)
	_, err := mgr.Add(ctx, p.ID, f.author, comments.NewComment{Body: "first"})
	require.NoError(t, err)
	hidden, err := mgr.Add(ctx, p.ID, f.author, comments.NewComment{Body: "second"})
	require.NoError(t, err)
	_, err = mgr.SoftDelete(ctx, hidden.ID)
	require.NoError(t, err)

	view, err := f.svc.Post(ctx, "gopher-diary", "hello", false)
	require.NoError(t, err)

	assert.Contains(t, view.HTML, "<strong>world</strong>")
	assert.NotContains(t, view.HTML, "<script>")
	assert.Equal(t, b.ID, view.Blog.ID)
	require.Len(t, view.Tags, 1)
	require.Len(t, view.Comments, 1)
	assert.Equal(t, "first", view.Comments[0].Body)
}

func TestPost_DraftNeedsDrafts(t *testing.T) {
	f := newFixture(t)
	b := f.blog(t, "Gopher Diary")
	f.post(t, b, "Secret", models.StatusPreviewReady)

	_, err := f.svc.Post(context.Background(), "gopher-diary", "secret", false)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = f.svc.Post(context.Background(), "gopher-diary", "secret", true)
	assert.NoError(t, err)
}

func TestPostImage(t *testing.T) {
	f := newFixture(t)
	b := f.blog(t, "Gopher Diary")
	p := f.post(t, b, "No picture", models.StatusProductionReady)

	_, _, err := f.svc.PostImage(context.Background(), p.ID, false)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestBlogImage(t *testing.T) {
	f := newFixture(t)
	f.blog(t, "Gopher Diary")

	data, contentType, err := f.svc.BlogImage(context.Background(), "gopher-diary")
	require.NoError(t, err)
	assert.Equal(t, "image/png", contentType)
	assert.NotEmpty(t, data)

	_, _, err = f.svc.BlogImage(context.Background(), "missing")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestPostListings(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b := f.blog(t, "Gopher Diary")
	for _, title := range []string{"One", "Two", "Three", "Four", "Five", "Six"} {
		f.post(t, b, title, models.StatusProductionReady, "go")
	}
	f.post(t, b, "Seven draft", models.StatusIncomplete, "go")

	recent, err := f.svc.RecentPosts(ctx)
	require.NoError(t, err)
	require.Len(t, recent, RecentLimit)
	assert.Equal(t, "Six", recent[0].Title)

	found, err := f.svc.SearchPosts(ctx, "abstract of t")
	require.NoError(t, err)
	assert.Len(t, found, 2)

	tagged, err := f.svc.PostsByTag(ctx, "gopher-diary", "GO")
	require.NoError(t, err)
	assert.Len(t, tagged, 6)

	def, err := f.mem.Repos().Categories.FindByName(ctx, b.ID, models.DefaultCategoryName)
	require.NoError(t, err)
	byCat, err := f.svc.PostsByCategory(ctx, def.ID)
	require.NoError(t, err)
	assert.Len(t, byCat, 6)

	_, err = f.svc.PostsByCategory(ctx, uuid.New())
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestTopTags_CachesResult(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b := f.blog(t, "Gopher Diary")
	f.post(t, b, "One", models.StatusProductionReady, "sql", "go")
	f.post(t, b, "Two", models.StatusProductionReady, "go", "api")
	f.post(t, b, "Draft", models.StatusIncomplete, "hidden")

	tags, err := f.svc.TopTags(ctx, "gopher-diary")
	require.NoError(t, err)
	texts := make([]string, 0, len(tags))
	for _, tag := range tags {
		texts = append(texts, tag.Text)
	}
	assert.Equal(t, []string{"api", "go", "sql"}, texts)

	_, err = f.svc.TopTags(ctx, "gopher-diary")
	require.NoError(t, err)
	assert.Equal(t, 2, f.cache.gets)
	assert.Equal(t, 1, f.cache.hits)
}

func TestProjects_Navigation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	for _, title := range []string{"Charlie project", "Alpha project", "Bravo project"} {
		_, err := f.guard.CreateProject(ctx, publish.ProjectInput{
			Title: title, Description: "A description that is long enough",
			URL: "https://example.com", Categories: []string{"PROJECTS"},
		})
		require.NoError(t, err)
	}

	all, err := f.svc.Projects(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "Alpha project", all[0].Title)
	assert.Len(t, all[0].Categories, 1)

	mid, err := f.svc.Project(ctx, "bravo-project")
	require.NoError(t, err)
	assert.Equal(t, "alpha-project", mid.Previous)
	assert.Equal(t, "charlie-project", mid.Next)

	first, err := f.svc.Project(ctx, "alpha-project")
	require.NoError(t, err)
	assert.Empty(t, first.Previous)

	_, err = f.svc.Project(ctx, "missing")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func blogImage(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for x := 0; x < 8; x++ {
		img.Set(x, x, color.RGBA{R: 200, G: 40, B: uint8(x * 30), A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}
