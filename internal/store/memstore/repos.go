// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package memstore

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"portfolio/internal/models"
	"portfolio/internal/store"
)

// --- Blogs ---

type blogRepo struct{ d *db }

func (r *blogRepo) FindByID(_ context.Context, id uuid.UUID) (*models.Blog, error) {
	var out *models.Blog
	err := r.d.do("blogs.find", func(st *state, _ time.Time) error {
		if b, ok := st.blogs[id]; ok {
			b = publicBlog(b)
			out = &b
		}
		return nil
	})
	return out, err
}

func (r *blogRepo) FindBySlug(_ context.Context, slug string) (*models.Blog, error) {
	var out *models.Blog
	err := r.d.do("blogs.find", func(st *state, _ time.Time) error {
		for _, b := range st.blogs {
			if strings.EqualFold(b.Slug, slug) {
				b = publicBlog(b)
				out = &b
				return nil
			}
		}
		return nil
	})
	return out, err
}

func blogSlugTaken(st *state, slug string, exclude uuid.UUID) bool {
	for id, b := range st.blogs {
		if id != exclude && strings.EqualFold(b.Slug, slug) {
			return true
		}
	}
	return false
}

func (r *blogRepo) SlugTaken(_ context.Context, slug string, exclude uuid.UUID) (bool, error) {
	var taken bool
	err := r.d.do("blogs.slug_taken", func(st *state, _ time.Time) error {
		taken = blogSlugTaken(st, slug, exclude)
		return nil
	})
	return taken, err
}

func (r *blogRepo) Create(_ context.Context, b *models.Blog) error {
	return r.d.do("blogs.create", func(st *state, now time.Time) error {
		if blogSlugTaken(st, b.Slug, uuid.Nil) {
			return conflict("create blog")
		}
		b.ID = st.newID()
		b.CreatedAt, b.UpdatedAt = now, now
		row := *b
		row.Categories, row.Posts = nil, nil
		st.blogs[b.ID] = row
		return nil
	})
}

func (r *blogRepo) Update(_ context.Context, b *models.Blog) error {
	return r.d.do("blogs.update", func(st *state, now time.Time) error {
		row, ok := st.blogs[b.ID]
		if !ok {
			return fmt.Errorf("update blog %s: %w", b.ID, sql.ErrNoRows)
		}
		if blogSlugTaken(st, b.Slug, b.ID) {
			return conflict("update blog")
		}
		row.Name, row.Description, row.Slug, row.UpdatedAt = b.Name, b.Description, b.Slug, now
		if b.ImageData != nil {
			row.ImageData, row.ImageType = b.ImageData, b.ImageType
		}
		b.UpdatedAt = now
		st.blogs[b.ID] = row
		return nil
	})
}

func (r *blogRepo) Image(_ context.Context, id uuid.UUID) ([]byte, string, error) {
	var (
		data []byte
		ct   string
	)
	err := r.d.do("blogs.image", func(st *state, _ time.Time) error {
		if b, ok := st.blogs[id]; ok {
			data, ct = b.ImageData, b.ImageType
		}
		return nil
	})
	return data, ct, err
}

// publicBlog drops the image bytes, which only Image returns.
func publicBlog(b models.Blog) models.Blog {
	b.ImageData = nil
	return b
}

func (r *blogRepo) Delete(_ context.Context, id uuid.UUID) error {
	return r.d.do("blogs.delete", func(st *state, _ time.Time) error {
		if _, ok := st.blogs[id]; !ok {
			return nil
		}
		for pid, p := range st.posts {
			if p.BlogID == id {
				deletePost(st, pid)
			}
		}
		for cid, c := range st.categories {
			if c.BlogID == id {
				delete(st.categories, cid)
			}
		}
		delete(st.blogs, id)
		return nil
	})
}

func (r *blogRepo) List(_ context.Context) ([]models.Blog, error) {
	var out []models.Blog
	err := r.d.do("blogs.list", func(st *state, _ time.Time) error {
		for _, b := range st.blogs {
			out = append(out, publicBlog(b))
		}
		sortByOrder(st, out, func(b models.Blog) uuid.UUID { return b.ID }, true)
		return nil
	})
	return out, err
}

func (r *blogRepo) ListWithPostStatus(_ context.Context, status models.ReadyStatus) ([]models.Blog, error) {
	var out []models.Blog
	err := r.d.do("blogs.list", func(st *state, _ time.Time) error {
		has := make(map[uuid.UUID]bool)
		for _, p := range st.posts {
			if p.Status == status {
				has[p.BlogID] = true
			}
		}
		for _, b := range st.blogs {
			if has[b.ID] {
				out = append(out, publicBlog(b))
			}
		}
		sortByOrder(st, out, func(b models.Blog) uuid.UUID { return b.ID }, true)
		return nil
	})
	return out, err
}

func (r *blogRepo) SearchByName(_ context.Context, term string) ([]models.Blog, error) {
	var out []models.Blog
	err := r.d.do("blogs.search", func(st *state, _ time.Time) error {
		for _, b := range st.blogs {
			if containsFold(b.Name, term) {
				out = append(out, publicBlog(b))
			}
		}
		sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
		return nil
	})
	return out, err
}

// --- Categories ---

type categoryRepo struct{ d *db }

func (r *categoryRepo) ListByBlog(_ context.Context, blogID uuid.UUID) ([]models.Category, error) {
	var out []models.Category
	err := r.d.do("categories.list", func(st *state, _ time.Time) error {
		for _, c := range st.categories {
			if c.BlogID == blogID {
				out = append(out, c)
			}
		}
		sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
		return nil
	})
	return out, err
}

func (r *categoryRepo) FindByID(_ context.Context, id uuid.UUID) (*models.Category, error) {
	var out *models.Category
	err := r.d.do("categories.find", func(st *state, _ time.Time) error {
		if c, ok := st.categories[id]; ok {
			out = &c
		}
		return nil
	})
	return out, err
}

func findCategory(st *state, blogID uuid.UUID, name string) *models.Category {
	for _, c := range st.categories {
		if c.BlogID == blogID && strings.EqualFold(c.Name, name) {
			return &c
		}
	}
	return nil
}

func (r *categoryRepo) FindByName(_ context.Context, blogID uuid.UUID, name string) (*models.Category, error) {
	var out *models.Category
	err := r.d.do("categories.find", func(st *state, _ time.Time) error {
		out = findCategory(st, blogID, name)
		return nil
	})
	return out, err
}

func (r *categoryRepo) Create(_ context.Context, c *models.Category) error {
	return r.d.do("categories.create", func(st *state, now time.Time) error {
		if _, ok := st.blogs[c.BlogID]; !ok {
			return fmt.Errorf("create category: %w", ErrForeignKey)
		}
		if findCategory(st, c.BlogID, c.Name) != nil {
			return conflict("create category")
		}
		c.ID = st.newID()
		c.CreatedAt = now
		st.categories[c.ID] = *c
		return nil
	})
}

func (r *categoryRepo) Delete(_ context.Context, id uuid.UUID) error {
	return r.d.do("categories.delete", func(st *state, _ time.Time) error {
		for _, p := range st.posts {
			if p.CategoryID == id {
				return fmt.Errorf("delete category: %w", ErrForeignKey)
			}
		}
		delete(st.categories, id)
		return nil
	})
}

// --- Posts ---

type postRepo struct{ d *db }

// public strips the image columns the way the SQL listings do.
func public(p models.Post) models.Post {
	p.ImageData, p.Thumbnail = nil, nil
	p.Tags, p.Comments = nil, nil
	return p
}

func (r *postRepo) FindByID(_ context.Context, id uuid.UUID) (*models.Post, error) {
	var out *models.Post
	err := r.d.do("posts.find", func(st *state, _ time.Time) error {
		if p, ok := st.posts[id]; ok {
			p = public(p)
			out = &p
		}
		return nil
	})
	return out, err
}

func (r *postRepo) FindBySlug(_ context.Context, blogID uuid.UUID, slug string) (*models.Post, error) {
	var out *models.Post
	err := r.d.do("posts.find", func(st *state, _ time.Time) error {
		for _, p := range st.posts {
			if p.BlogID == blogID && strings.EqualFold(p.Slug, slug) {
				p = public(p)
				out = &p
				return nil
			}
		}
		return nil
	})
	return out, err
}

func postSlugTaken(st *state, blogID uuid.UUID, slug string, exclude uuid.UUID) bool {
	for id, p := range st.posts {
		if id != exclude && p.BlogID == blogID && strings.EqualFold(p.Slug, slug) {
			return true
		}
	}
	return false
}

func (r *postRepo) SlugTaken(_ context.Context, blogID uuid.UUID, slug string, exclude uuid.UUID) (bool, error) {
	var taken bool
	err := r.d.do("posts.slug_taken", func(st *state, _ time.Time) error {
		taken = postSlugTaken(st, blogID, slug, exclude)
		return nil
	})
	return taken, err
}

func checkPostRefs(st *state, p *models.Post) error {
	if _, ok := st.blogs[p.BlogID]; !ok {
		return ErrForeignKey
	}
	if c, ok := st.categories[p.CategoryID]; !ok || c.BlogID != p.BlogID {
		return ErrForeignKey
	}
	return nil
}

func (r *postRepo) Create(_ context.Context, p *models.Post) error {
	return r.d.do("posts.create", func(st *state, now time.Time) error {
		if err := checkPostRefs(st, p); err != nil {
			return fmt.Errorf("create post: %w", err)
		}
		if postSlugTaken(st, p.BlogID, p.Slug, uuid.Nil) {
			return conflict("create post")
		}
		p.ID = st.newID()
		p.CreatedAt, p.UpdatedAt = now, now
		row := *p
		row.Tags, row.Comments = nil, nil
		st.posts[p.ID] = row
		return nil
	})
}

func (r *postRepo) Update(_ context.Context, p *models.Post) error {
	return r.d.do("posts.update", func(st *state, now time.Time) error {
		row, ok := st.posts[p.ID]
		if !ok {
			return fmt.Errorf("update post %s: %w", p.ID, sql.ErrNoRows)
		}
		if err := checkPostRefs(st, p); err != nil {
			return fmt.Errorf("update post: %w", err)
		}
		if postSlugTaken(st, p.BlogID, p.Slug, p.ID) {
			return conflict("update post")
		}
		row.CategoryID, row.Title, row.Slug = p.CategoryID, p.Title, p.Slug
		row.Abstract, row.Content, row.Status = p.Abstract, p.Content, p.Status
		if p.ImageData != nil {
			row.ImageData, row.ImageType = p.ImageData, p.ImageType
		}
		if p.Thumbnail != nil {
			row.Thumbnail = p.Thumbnail
		}
		row.UpdatedAt = now
		p.UpdatedAt = now
		st.posts[p.ID] = row
		return nil
	})
}

// deletePost removes a post with its tags and comments.
func deletePost(st *state, id uuid.UUID) {
	delete(st.posts, id)
	kept := st.tags[:0]
	for _, t := range st.tags {
		if t.PostID != id {
			kept = append(kept, t)
		}
	}
	st.tags = kept
	for cid, c := range st.comments {
		if c.PostID == id {
			delete(st.comments, cid)
		}
	}
}

func (r *postRepo) Delete(_ context.Context, id uuid.UUID) error {
	return r.d.do("posts.delete", func(st *state, _ time.Time) error {
		deletePost(st, id)
		return nil
	})
}

func (r *postRepo) Image(_ context.Context, id uuid.UUID) ([]byte, []byte, string, error) {
	var (
		data, thumb []byte
		ct          string
	)
	err := r.d.do("posts.image", func(st *state, _ time.Time) error {
		if p, ok := st.posts[id]; ok {
			data, thumb, ct = p.ImageData, p.Thumbnail, p.ImageType
		}
		return nil
	})
	return data, thumb, ct, err
}

// filterPosts returns matching posts newest first.
func (r *postRepo) filterPosts(op string, keep func(st *state, p models.Post) bool) ([]models.Post, error) {
	var out []models.Post
	err := r.d.do(op, func(st *state, _ time.Time) error {
		for _, p := range st.posts {
			if keep(st, p) {
				out = append(out, public(p))
			}
		}
		sortByOrder(st, out, func(p models.Post) uuid.UUID { return p.ID }, true)
		return nil
	})
	return out, err
}

func (r *postRepo) ListByBlog(_ context.Context, blogID uuid.UUID) ([]models.Post, error) {
	return r.filterPosts("posts.list", func(_ *state, p models.Post) bool { return p.BlogID == blogID })
}

func (r *postRepo) ListByCategory(_ context.Context, categoryID uuid.UUID) ([]models.Post, error) {
	return r.filterPosts("posts.list", func(_ *state, p models.Post) bool { return p.CategoryID == categoryID })
}

func (r *postRepo) ReassignCategory(_ context.Context, from, to uuid.UUID) (int64, error) {
	var n int64
	err := r.d.do("posts.reassign", func(st *state, now time.Time) error {
		if _, ok := st.categories[to]; !ok {
			return fmt.Errorf("reassign posts: %w", ErrForeignKey)
		}
		for id, p := range st.posts {
			if p.CategoryID == from {
				p.CategoryID, p.UpdatedAt = to, now
				st.posts[id] = p
				n++
			}
		}
		return nil
	})
	return n, err
}

func (r *postRepo) Search(_ context.Context, term string, status models.ReadyStatus) ([]models.Post, error) {
	return r.filterPosts("posts.search", func(_ *state, p models.Post) bool {
		return p.Status == status && (containsFold(p.Title, term) || containsFold(p.Abstract, term))
	})
}

func (r *postRepo) ListByTag(_ context.Context, blogID uuid.UUID, text string, status models.ReadyStatus) ([]models.Post, error) {
	return r.filterPosts("posts.list", func(st *state, p models.Post) bool {
		if p.BlogID != blogID || p.Status != status {
			return false
		}
		for _, t := range st.tags {
			if t.PostID == p.ID && strings.EqualFold(t.Text, text) {
				return true
			}
		}
		return false
	})
}

func (r *postRepo) Recent(ctx context.Context, status models.ReadyStatus, limit int) ([]models.Post, error) {
	out, err := r.filterPosts("posts.list", func(_ *state, p models.Post) bool { return p.Status == status })
	if err != nil {
		return nil, err
	}
	if limit >= 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// --- Tags ---

type tagRepo struct{ d *db }

func (r *tagRepo) ListByPost(_ context.Context, postID uuid.UUID) ([]models.Tag, error) {
	var out []models.Tag
	err := r.d.do("tags.list", func(st *state, _ time.Time) error {
		for _, t := range st.tags {
			if t.PostID == postID {
				out = append(out, t)
			}
		}
		return nil
	})
	return out, err
}

func (r *tagRepo) ListByBlog(_ context.Context, blogID uuid.UUID, status models.ReadyStatus) ([]models.Tag, error) {
	var out []models.Tag
	err := r.d.do("tags.list", func(st *state, _ time.Time) error {
		for _, t := range st.tags {
			p, ok := st.posts[t.PostID]
			if ok && p.BlogID == blogID && p.Status == status {
				out = append(out, t)
			}
		}
		// Tags are stored in insertion order; a stable sort by post age
		// keeps it within each post.
		sort.SliceStable(out, func(i, j int) bool {
			return st.order[out[i].PostID] < st.order[out[j].PostID]
		})
		return nil
	})
	return out, err
}

func (r *tagRepo) Create(_ context.Context, t *models.Tag) error {
	return r.d.do("tags.create", func(st *state, now time.Time) error {
		if _, ok := st.posts[t.PostID]; !ok {
			return fmt.Errorf("create tag: %w", ErrForeignKey)
		}
		t.ID = st.newID()
		t.CreatedAt = now
		st.tags = append(st.tags, *t)
		return nil
	})
}

func (r *tagRepo) DeleteByPost(_ context.Context, postID uuid.UUID) (int64, error) {
	var n int64
	err := r.d.do("tags.delete", func(st *state, _ time.Time) error {
		kept := st.tags[:0]
		for _, t := range st.tags {
			if t.PostID == postID {
				n++
				continue
			}
			kept = append(kept, t)
		}
		st.tags = kept
		return nil
	})
	return n, err
}

// --- Comments ---

type commentRepo struct{ d *db }

func (r *commentRepo) FindByID(_ context.Context, id uuid.UUID) (*models.Comment, error) {
	var out *models.Comment
	err := r.d.do("comments.find", func(st *state, _ time.Time) error {
		if c, ok := st.comments[id]; ok {
			out = &c
		}
		return nil
	})
	return out, err
}

func (r *commentRepo) Create(_ context.Context, c *models.Comment) error {
	return r.d.do("comments.create", func(st *state, now time.Time) error {
		if _, ok := st.posts[c.PostID]; !ok {
			return fmt.Errorf("create comment: %w", ErrForeignKey)
		}
		c.ID = st.newID()
		c.CreatedAt = now
		st.comments[c.ID] = *c
		return nil
	})
}

func (r *commentRepo) Update(_ context.Context, c *models.Comment) error {
	return r.d.do("comments.update", func(st *state, _ time.Time) error {
		if _, ok := st.comments[c.ID]; !ok {
			return fmt.Errorf("update comment %s: %w", c.ID, sql.ErrNoRows)
		}
		st.comments[c.ID] = *c
		return nil
	})
}

func (r *commentRepo) Delete(_ context.Context, id uuid.UUID) error {
	return r.d.do("comments.delete", func(st *state, _ time.Time) error {
		delete(st.comments, id)
		return nil
	})
}

func (r *commentRepo) List(_ context.Context, f store.CommentFilter) ([]models.Comment, error) {
	var out []models.Comment
	err := r.d.do("comments.list", func(st *state, _ time.Time) error {
		for _, c := range st.comments {
			if f.PostID != nil && c.PostID != *f.PostID {
				continue
			}
			if f.Moderated != nil && c.IsModerated != *f.Moderated {
				continue
			}
			if f.SoftDeleted != nil && c.IsSoftDeleted != *f.SoftDeleted {
				continue
			}
			out = append(out, c)
		}
		sort.SliceStable(out, func(i, j int) bool {
			if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
				return out[i].CreatedAt.Before(out[j].CreatedAt)
			}
			return st.order[out[i].ID] < st.order[out[j].ID]
		})
		return nil
	})
	return out, err
}

// --- Projects ---

type projectRepo struct{ d *db }

func (r *projectRepo) FindByID(_ context.Context, id uuid.UUID) (*models.Project, error) {
	var out *models.Project
	err := r.d.do("projects.find", func(st *state, _ time.Time) error {
		if p, ok := st.projects[id]; ok {
			out = &p
		}
		return nil
	})
	return out, err
}

func (r *projectRepo) FindBySlug(_ context.Context, slug string) (*models.Project, error) {
	var out *models.Project
	err := r.d.do("projects.find", func(st *state, _ time.Time) error {
		for _, p := range st.projects {
			if strings.EqualFold(p.Slug, slug) {
				out = &p
				return nil
			}
		}
		return nil
	})
	return out, err
}

func projectSlugTaken(st *state, slug string, exclude uuid.UUID) bool {
	for id, p := range st.projects {
		if id != exclude && strings.EqualFold(p.Slug, slug) {
			return true
		}
	}
	return false
}

func (r *projectRepo) SlugTaken(_ context.Context, slug string, exclude uuid.UUID) (bool, error) {
	var taken bool
	err := r.d.do("projects.slug_taken", func(st *state, _ time.Time) error {
		taken = projectSlugTaken(st, slug, exclude)
		return nil
	})
	return taken, err
}

func (r *projectRepo) Create(_ context.Context, p *models.Project) error {
	return r.d.do("projects.create", func(st *state, now time.Time) error {
		if projectSlugTaken(st, p.Slug, uuid.Nil) {
			return conflict("create project")
		}
		p.ID = st.newID()
		p.CreatedAt, p.UpdatedAt = now, now
		row := *p
		row.Categories, row.Images = nil, nil
		st.projects[p.ID] = row
		return nil
	})
}

func (r *projectRepo) Update(_ context.Context, p *models.Project) error {
	return r.d.do("projects.update", func(st *state, now time.Time) error {
		row, ok := st.projects[p.ID]
		if !ok {
			return fmt.Errorf("update project %s: %w", p.ID, sql.ErrNoRows)
		}
		if projectSlugTaken(st, p.Slug, p.ID) {
			return conflict("update project")
		}
		row.Title, row.Slug, row.Description, row.URL, row.UpdatedAt = p.Title, p.Slug, p.Description, p.URL, now
		p.UpdatedAt = now
		st.projects[p.ID] = row
		return nil
	})
}

func (r *projectRepo) Delete(_ context.Context, id uuid.UUID) error {
	return r.d.do("projects.delete", func(st *state, _ time.Time) error {
		delete(st.projects, id)
		st.projCats = dropByProject(st.projCats, id, func(c models.ProjectCategory) uuid.UUID { return c.ProjectID })
		st.projImages = dropByProject(st.projImages, id, func(i models.ProjectImage) uuid.UUID { return i.ProjectID })
		return nil
	})
}

func dropByProject[T any](items []T, projectID uuid.UUID, owner func(T) uuid.UUID) []T {
	var kept []T
	for _, it := range items {
		if owner(it) != projectID {
			kept = append(kept, it)
		}
	}
	return kept
}

func (r *projectRepo) List(_ context.Context) ([]models.Project, error) {
	var out []models.Project
	err := r.d.do("projects.list", func(st *state, _ time.Time) error {
		for _, p := range st.projects {
			out = append(out, p)
		}
		sortByOrder(st, out, func(p models.Project) uuid.UUID { return p.ID }, false)
		sort.SliceStable(out, func(i, j int) bool { return out[i].Title < out[j].Title })
		return nil
	})
	return out, err
}

func (r *projectRepo) ListCategories(_ context.Context, projectID uuid.UUID) ([]models.ProjectCategory, error) {
	var out []models.ProjectCategory
	err := r.d.do("projects.list_categories", func(st *state, _ time.Time) error {
		for _, c := range st.projCats {
			if c.ProjectID == projectID {
				out = append(out, c)
			}
		}
		sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
		return nil
	})
	return out, err
}

func (r *projectRepo) AddCategory(_ context.Context, c *models.ProjectCategory) error {
	return r.d.do("projects.add_category", func(st *state, _ time.Time) error {
		if _, ok := st.projects[c.ProjectID]; !ok {
			return fmt.Errorf("add project category: %w", ErrForeignKey)
		}
		for _, existing := range st.projCats {
			if existing.ProjectID == c.ProjectID && strings.EqualFold(existing.Name, c.Name) {
				return conflict("add project category")
			}
		}
		c.ID = st.newID()
		st.projCats = append(st.projCats, *c)
		return nil
	})
}

func (r *projectRepo) DeleteCategories(_ context.Context, projectID uuid.UUID) error {
	return r.d.do("projects.delete_categories", func(st *state, _ time.Time) error {
		st.projCats = dropByProject(st.projCats, projectID, func(c models.ProjectCategory) uuid.UUID { return c.ProjectID })
		return nil
	})
}

func (r *projectRepo) ListImages(_ context.Context, projectID uuid.UUID) ([]models.ProjectImage, error) {
	var out []models.ProjectImage
	err := r.d.do("projects.list_images", func(st *state, _ time.Time) error {
		for _, img := range st.projImages {
			if img.ProjectID == projectID {
				out = append(out, img)
			}
		}
		sort.SliceStable(out, func(i, j int) bool { return out[i].Position < out[j].Position })
		return nil
	})
	return out, err
}

func (r *projectRepo) AddImage(_ context.Context, img *models.ProjectImage) error {
	return r.d.do("projects.add_image", func(st *state, _ time.Time) error {
		if _, ok := st.projects[img.ProjectID]; !ok {
			return fmt.Errorf("add project image: %w", ErrForeignKey)
		}
		img.ID = st.newID()
		st.projImages = append(st.projImages, *img)
		return nil
	})
}

func (r *projectRepo) DeleteImages(_ context.Context, projectID uuid.UUID) error {
	return r.d.do("projects.delete_images", func(st *state, _ time.Time) error {
		st.projImages = dropByProject(st.projImages, projectID, func(i models.ProjectImage) uuid.UUID { return i.ProjectID })
		return nil
	})
}

// --- Users ---

type userRepo struct{ d *db }

func (r *userRepo) FindByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	var out *models.User
	err := r.d.do("users.find", func(st *state, _ time.Time) error {
		if u, ok := st.users[id]; ok {
			out = &u
		}
		return nil
	})
	return out, err
}

func (r *userRepo) FindByEmail(_ context.Context, email string) (*models.User, error) {
	var out *models.User
	err := r.d.do("users.find", func(st *state, _ time.Time) error {
		for _, u := range st.users {
			if strings.EqualFold(u.Email, email) {
				out = &u
				return nil
			}
		}
		return nil
	})
	return out, err
}

func (r *userRepo) Create(_ context.Context, u *models.User) error {
	return r.d.do("users.create", func(st *state, now time.Time) error {
		for _, existing := range st.users {
			if strings.EqualFold(existing.Email, u.Email) {
				return conflict("create user")
			}
		}
		u.ID = st.newID()
		u.CreatedAt, u.UpdatedAt = now, now
		st.users[u.ID] = *u
		return nil
	})
}
