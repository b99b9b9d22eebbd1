// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package browse serves the read side: blog and post listings, searches,
// rendered posts with their approved comments, tag clouds and the project
// gallery. Anonymous readers only see production-ready posts.
package browse

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"portfolio/internal/apperr"
	"portfolio/internal/logger"
	"portfolio/internal/markdown"
	"portfolio/internal/models"
	"portfolio/internal/reconcile"
	"portfolio/internal/store"
)

// RecentLimit is the number of posts on the "recent" list.
const RecentLimit = 5

// TagCache caches a blog's top tags. *cache.TagCache satisfies it.
type TagCache interface {
	Get(ctx context.Context, blogID uuid.UUID) ([]models.Tag, bool)
	Set(ctx context.Context, blogID uuid.UUID, tags []models.Tag)
}

// Service answers read queries.
type Service struct {
	tx    store.Transactor
	cache TagCache
	log   *zap.Logger
}

// New creates a Service. cache may be nil.
func New(tx store.Transactor, cache TagCache, log *zap.Logger) *Service {
	return &Service{tx: tx, cache: cache, log: logger.Or(log).Named("browse")}
}

// PostView is a post ready for display.
type PostView struct {
	models.Post
	Blog models.Blog `json:"blog"`
	HTML string      `json:"html"`
}

// ProjectView is a project with its neighbours in title order.
type ProjectView struct {
	models.Project
	Previous string `json:"previous,omitempty"`
	Next     string `json:"next,omitempty"`
}

func (s *Service) repos() store.Repos { return s.tx.Repos() }

// Blogs lists blogs with at least one production-ready post.
func (s *Service) Blogs(ctx context.Context) ([]models.Blog, error) {
	blogs, err := s.repos().Blogs.ListWithPostStatus(ctx, models.StatusProductionReady)
	return blogs, apperr.Persistence("list blogs", err)
}

// AllBlogs lists every blog, for authors.
func (s *Service) AllBlogs(ctx context.Context) ([]models.Blog, error) {
	blogs, err := s.repos().Blogs.List(ctx)
	return blogs, apperr.Persistence("list blogs", err)
}

// SearchBlogs finds blogs whose name contains term, ignoring case.
func (s *Service) SearchBlogs(ctx context.Context, term string) ([]models.Blog, error) {
	if strings.TrimSpace(term) == "" {
		return []models.Blog{}, nil
	}
	blogs, err := s.repos().Blogs.SearchByName(ctx, term)
	return blogs, apperr.Persistence("search blogs", err)
}

// Blog returns a blog with its categories and posts. Without drafts only
// production-ready posts are included.
func (s *Service) Blog(ctx context.Context, slug string, drafts bool) (*models.Blog, error) {
	r := s.repos()
	b, err := s.blogBySlug(ctx, r, slug)
	if err != nil {
		return nil, err
	}
	if b.Categories, err = r.Categories.ListByBlog(ctx, b.ID); err != nil {
		return nil, apperr.Persistence("list categories", err)
	}
	posts, err := r.Posts.ListByBlog(ctx, b.ID)
	if err != nil {
		return nil, apperr.Persistence("list posts", err)
	}
	b.Posts = visible(posts, drafts)
	return b, nil
}

func (s *Service) blogBySlug(ctx context.Context, r store.Repos, slug string) (*models.Blog, error) {
	b, err := r.Blogs.FindBySlug(ctx, slug)
	if err != nil {
		return nil, apperr.Persistence("find blog", err)
	}
	if b == nil {
		return nil, fmt.Errorf("blog %q: %w", slug, apperr.ErrNotFound)
	}
	return b, nil
}

// Post returns a post of a blog with its tags, its approved comments and
// its content rendered to safe HTML. A post that is not production-ready
// is only found with drafts.
func (s *Service) Post(ctx context.Context, blogSlug, postSlug string, drafts bool) (*PostView, error) {
	r := s.repos()
	b, err := s.blogBySlug(ctx, r, blogSlug)
	if err != nil {
		return nil, err
	}
	p, err := r.Posts.FindBySlug(ctx, b.ID, postSlug)
	if err != nil {
		return nil, apperr.Persistence("find post", err)
	}
	if p == nil || (!drafts && !p.IsProductionReady()) {
		return nil, fmt.Errorf("post %q: %w", postSlug, apperr.ErrNotFound)
	}
	if p.Tags, err = r.Tags.ListByPost(ctx, p.ID); err != nil {
		return nil, apperr.Persistence("list tags", err)
	}
	approved := false
	if p.Comments, err = r.Comments.List(ctx, store.CommentFilter{PostID: &p.ID, SoftDeleted: &approved}); err != nil {
		return nil, apperr.Persistence("list comments", err)
	}
	html, err := markdown.Render(p.Content)
	if err != nil {
		return nil, fmt.Errorf("render post %s: %w", p.ID, err)
	}
	return &PostView{Post: *p, Blog: *b, HTML: html}, nil
}

// BlogImage returns a blog's stored image.
func (s *Service) BlogImage(ctx context.Context, slug string) ([]byte, string, error) {
	r := s.repos()
	b, err := s.blogBySlug(ctx, r, slug)
	if err != nil {
		return nil, "", err
	}
	data, contentType, err := r.Blogs.Image(ctx, b.ID)
	if err != nil {
		return nil, "", apperr.Persistence("load blog image", err)
	}
	if len(data) == 0 {
		return nil, "", fmt.Errorf("image of blog %q: %w", slug, apperr.ErrNotFound)
	}
	return data, contentType, nil
}

// PostImage returns a post's stored image, or its thumbnail.
func (s *Service) PostImage(ctx context.Context, id uuid.UUID, thumb bool) ([]byte, string, error) {
	data, small, contentType, err := s.repos().Posts.Image(ctx, id)
	if err != nil {
		return nil, "", apperr.Persistence("load post image", err)
	}
	if thumb {
		data = small
	}
	if len(data) == 0 {
		return nil, "", fmt.Errorf("image of post %s: %w", id, apperr.ErrNotFound)
	}
	return data, contentType, nil
}

// SearchPosts finds production-ready posts whose title or abstract
// contains term.
func (s *Service) SearchPosts(ctx context.Context, term string) ([]models.Post, error) {
	if strings.TrimSpace(term) == "" {
		return []models.Post{}, nil
	}
	posts, err := s.repos().Posts.Search(ctx, term, models.StatusProductionReady)
	return posts, apperr.Persistence("search posts", err)
}

// PostsByTag lists a blog's production-ready posts carrying tag.
func (s *Service) PostsByTag(ctx context.Context, blogSlug, tag string) ([]models.Post, error) {
	r := s.repos()
	b, err := s.blogBySlug(ctx, r, blogSlug)
	if err != nil {
		return nil, err
	}
	posts, err := r.Posts.ListByTag(ctx, b.ID, strings.TrimSpace(tag), models.StatusProductionReady)
	return posts, apperr.Persistence("list posts by tag", err)
}

// PostsByCategory lists a category's production-ready posts.
func (s *Service) PostsByCategory(ctx context.Context, categoryID uuid.UUID) ([]models.Post, error) {
	r := s.repos()
	cat, err := r.Categories.FindByID(ctx, categoryID)
	if err != nil {
		return nil, apperr.Persistence("find category", err)
	}
	if cat == nil {
		return nil, fmt.Errorf("category %s: %w", categoryID, apperr.ErrNotFound)
	}
	posts, err := r.Posts.ListByCategory(ctx, categoryID)
	if err != nil {
		return nil, apperr.Persistence("list posts by category", err)
	}
	return visible(posts, false), nil
}

// RecentPosts returns the newest production-ready posts.
func (s *Service) RecentPosts(ctx context.Context) ([]models.Post, error) {
	posts, err := s.repos().Posts.Recent(ctx, models.StatusProductionReady, RecentLimit)
	return posts, apperr.Persistence("recent posts", err)
}

// TopTags returns the blog's distinct tags, served from the cache when it
// holds them.
func (s *Service) TopTags(ctx context.Context, blogSlug string) ([]models.Tag, error) {
	r := s.repos()
	b, err := s.blogBySlug(ctx, r, blogSlug)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if tags, ok := s.cache.Get(ctx, b.ID); ok {
			return tags, nil
		}
	}
	tags, err := reconcile.NewTags(r).TopDistinct(ctx, b.ID, reconcile.DefaultTopTags)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		s.cache.Set(ctx, b.ID, tags)
	}
	return tags, nil
}

// Projects lists every project ordered by title, with its categories.
func (s *Service) Projects(ctx context.Context) ([]models.Project, error) {
	r := s.repos()
	projects, err := r.Projects.List(ctx)
	if err != nil {
		return nil, apperr.Persistence("list projects", err)
	}
	for i := range projects {
		if projects[i].Categories, err = r.Projects.ListCategories(ctx, projects[i].ID); err != nil {
			return nil, apperr.Persistence("list project categories", err)
		}
	}
	return projects, nil
}

// Project returns a project with its categories and images and the slugs
// of the projects before and after it in title order.
func (s *Service) Project(ctx context.Context, slug string) (*ProjectView, error) {
	r := s.repos()
	p, err := r.Projects.FindBySlug(ctx, slug)
	if err != nil {
		return nil, apperr.Persistence("find project", err)
	}
	if p == nil {
		return nil, fmt.Errorf("project %q: %w", slug, apperr.ErrNotFound)
	}
	if p.Categories, err = r.Projects.ListCategories(ctx, p.ID); err != nil {
		return nil, apperr.Persistence("list project categories", err)
	}
	if p.Images, err = r.Projects.ListImages(ctx, p.ID); err != nil {
		return nil, apperr.Persistence("list project images", err)
	}

	all, err := r.Projects.List(ctx)
	if err != nil {
		return nil, apperr.Persistence("list projects", err)
	}
	view := &ProjectView{Project: *p}
	view.Previous, view.Next = neighbours(all, p.ID)
	return view, nil
}

// ProjectImage returns the image of a project at position.
func (s *Service) ProjectImage(ctx context.Context, slug string, position int) ([]byte, string, error) {
	r := s.repos()
	p, err := r.Projects.FindBySlug(ctx, slug)
	if err != nil {
		return nil, "", apperr.Persistence("find project", err)
	}
	if p == nil {
		return nil, "", fmt.Errorf("project %q: %w", slug, apperr.ErrNotFound)
	}
	images, err := r.Projects.ListImages(ctx, p.ID)
	if err != nil {
		return nil, "", apperr.Persistence("list project images", err)
	}
	for _, img := range images {
		if img.Position == position {
			return img.Data, img.ContentType, nil
		}
	}
	return nil, "", fmt.Errorf("image %d of project %q: %w", position, slug, apperr.ErrNotFound)
}

// neighbours returns the slugs around id in title order.
func neighbours(all []models.Project, id uuid.UUID) (prev, next string) {
	sort.SliceStable(all, func(i, j int) bool { return all[i].Title < all[j].Title })
	for i, p := range all {
		if p.ID != id {
			continue
		}
		if i > 0 {
			prev = all[i-1].Slug
		}
		if i < len(all)-1 {
			next = all[i+1].Slug
		}
		break
	}
	return prev, next
}

func visible(posts []models.Post, drafts bool) []models.Post {
	if drafts {
		return posts
	}
	out := make([]models.Post, 0, len(posts))
	for _, p := range posts {
		if p.IsProductionReady() {
			out = append(out, p)
		}
	}
	return out
}
