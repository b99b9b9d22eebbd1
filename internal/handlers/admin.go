// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"net/http"

	"portfolio/internal/middleware"
	"portfolio/internal/publish"
)

// Admin groups the authoring handlers. Routes are mounted behind
// RequirePermission, so a session is always present.
type Admin struct {
	guard *publish.Guard
}

// NewAdmin creates the authoring handlers.
func NewAdmin(guard *publish.Guard) *Admin {
	return &Admin{guard: guard}
}

// BlogCreate creates a blog owned by the session user.
func (a *Admin) BlogCreate(w http.ResponseWriter, r *http.Request) {
	var in publish.BlogInput
	if !decodeJSON(w, r, &in) {
		return
	}
	sess := middleware.SessionFromCtx(r.Context())
	b, err := a.guard.CreateBlog(r.Context(), sess.UserID, in)
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, b)
}

// BlogUpdate edits a blog. Omitting categories leaves them untouched.
func (a *Admin) BlogUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var in publish.BlogInput
	if !decodeJSON(w, r, &in) {
		return
	}
	b, err := a.guard.EditBlog(r.Context(), id, in)
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

// BlogDelete removes a blog with its categories and posts.
func (a *Admin) BlogDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := a.guard.DeleteBlog(r.Context(), id); err != nil {
		writeAppError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CategoryDelete removes a category after moving its posts to the
// default category.
func (a *Admin) CategoryDelete(w http.ResponseWriter, r *http.Request) {
	blogID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	categoryID, ok := pathID(w, r, "categoryID")
	if !ok {
		return
	}
	moved, err := a.guard.DeleteCategory(r.Context(), blogID, categoryID)
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"reassigned": moved})
}

// PostCreate creates a post written by the session user.
func (a *Admin) PostCreate(w http.ResponseWriter, r *http.Request) {
	var in publish.PostInput
	if !decodeJSON(w, r, &in) {
		return
	}
	sess := middleware.SessionFromCtx(r.Context())
	p, err := a.guard.CreatePost(r.Context(), sess.UserID, in)
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

// PostUpdate edits a post.
func (a *Admin) PostUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var in publish.PostInput
	if !decodeJSON(w, r, &in) {
		return
	}
	p, err := a.guard.EditPost(r.Context(), id, in)
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// PostDelete removes a post.
func (a *Admin) PostDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := a.guard.DeletePost(r.Context(), id); err != nil {
		writeAppError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ProjectCreate creates a project.
func (a *Admin) ProjectCreate(w http.ResponseWriter, r *http.Request) {
	var in publish.ProjectInput
	if !decodeJSON(w, r, &in) {
		return
	}
	p, err := a.guard.CreateProject(r.Context(), in)
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

// ProjectUpdate edits a project.
func (a *Admin) ProjectUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var in publish.ProjectInput
	if !decodeJSON(w, r, &in) {
		return
	}
	p, err := a.guard.EditProject(r.Context(), id, in)
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// ProjectDelete removes a project.
func (a *Admin) ProjectDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := a.guard.DeleteProject(r.Context(), id); err != nil {
		writeAppError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
