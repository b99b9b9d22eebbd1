// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"portfolio/internal/authz"
	"portfolio/internal/browse"
	"portfolio/internal/logger"
	"portfolio/internal/middleware"
)

// Public groups the read-only handlers.
type Public struct {
	browse *browse.Service
	az     middleware.Authorizer
}

// NewPublic creates the read handlers. Sessions whose role may write
// posts also see drafts.
func NewPublic(b *browse.Service, az middleware.Authorizer) *Public {
	return &Public{browse: b, az: az}
}

func (p *Public) drafts(r *http.Request) bool {
	sess := middleware.SessionFromCtx(r.Context())
	if sess == nil || p.az == nil {
		return false
	}
	ok, err := p.az.Can(sess.Role, authz.ObjPosts, authz.ActWrite)
	if err != nil {
		logger.Warnw("draft_permission_check_failed", "role", sess.Role, "error", err)
		return false
	}
	return ok
}

// Blogs lists the blogs readers can browse. Authors get every blog.
func (p *Public) Blogs(w http.ResponseWriter, r *http.Request) {
	list := p.browse.Blogs
	if p.drafts(r) {
		list = p.browse.AllBlogs
	}
	blogs, err := list(r.Context())
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, blogs)
}

// SearchBlogs finds blogs by name.
func (p *Public) SearchBlogs(w http.ResponseWriter, r *http.Request) {
	blogs, err := p.browse.SearchBlogs(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, blogs)
}

// Blog returns one blog with its categories and posts.
func (p *Public) Blog(w http.ResponseWriter, r *http.Request) {
	b, err := p.browse.Blog(r.Context(), chi.URLParam(r, "slug"), p.drafts(r))
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

// BlogTags returns the blog's tag cloud.
func (p *Public) BlogTags(w http.ResponseWriter, r *http.Request) {
	tags, err := p.browse.TopTags(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tags)
}

// BlogImage serves a blog's image.
func (p *Public) BlogImage(w http.ResponseWriter, r *http.Request) {
	data, contentType, err := p.browse.BlogImage(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeImage(w, data, contentType)
}

// Post returns a rendered post with its approved comments.
func (p *Public) Post(w http.ResponseWriter, r *http.Request) {
	view, err := p.browse.Post(r.Context(), chi.URLParam(r, "slug"), chi.URLParam(r, "postSlug"), p.drafts(r))
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// PostImage serves a post's image, or its thumbnail with ?thumb=1.
func (p *Public) PostImage(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	thumb, _ := strconv.ParseBool(r.URL.Query().Get("thumb"))
	data, contentType, err := p.browse.PostImage(r.Context(), id, thumb)
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeImage(w, data, contentType)
}

// RecentPosts returns the newest published posts.
func (p *Public) RecentPosts(w http.ResponseWriter, r *http.Request) {
	posts, err := p.browse.RecentPosts(r.Context())
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, posts)
}

// SearchPosts finds published posts by title or abstract.
func (p *Public) SearchPosts(w http.ResponseWriter, r *http.Request) {
	posts, err := p.browse.SearchPosts(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, posts)
}

// PostsByTag lists a blog's published posts with a tag.
func (p *Public) PostsByTag(w http.ResponseWriter, r *http.Request) {
	posts, err := p.browse.PostsByTag(r.Context(), chi.URLParam(r, "slug"), chi.URLParam(r, "tag"))
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, posts)
}

// PostsByCategory lists a category's published posts.
func (p *Public) PostsByCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	posts, err := p.browse.PostsByCategory(r.Context(), id)
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, posts)
}

// Projects lists the project gallery.
func (p *Public) Projects(w http.ResponseWriter, r *http.Request) {
	projects, err := p.browse.Projects(r.Context())
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, projects)
}

// Project returns one project with its neighbours.
func (p *Public) Project(w http.ResponseWriter, r *http.Request) {
	view, err := p.browse.Project(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// ProjectImage serves one project image by position.
func (p *Public) ProjectImage(w http.ResponseWriter, r *http.Request) {
	position, err := strconv.Atoi(chi.URLParam(r, "position"))
	if err != nil {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	data, contentType, err := p.browse.ProjectImage(r.Context(), chi.URLParam(r, "slug"), position)
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeImage(w, data, contentType)
}

func writeImage(w http.ResponseWriter, data []byte, contentType string) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.Write(data)
}
