package handlers

import (
	"net/http"

	"portfolio/internal/comments"
	"portfolio/internal/middleware"
	"portfolio/internal/models"
)

// Comments groups the comment handlers.
type Comments struct {
	mgr *comments.Manager
}

// NewComments creates the comment handlers.
func NewComments(mgr *comments.Manager) *Comments {
	return &Comments{mgr: mgr}
}

// Add posts a comment as the session user.
func (c *Comments) Add(w http.ResponseWriter, r *http.Request) {
	postID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var in comments.NewComment
	if !decodeJSON(w, r, &in) {
		return
	}
	sess := middleware.SessionFromCtx(r.Context())
	cm, err := c.mgr.Add(r.Context(), postID, sess.UserID, in)
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, cm)
}

// List returns comments by state: approved (default), moderated or deleted.
func (c *Comments) List(w http.ResponseWriter, r *http.Request) {
	var (
		items []models.Comment
		err   error
	)
	switch r.URL.Query().Get("state") {
	case "", "approved":
		items, err = c.mgr.Approved(r.Context())
	case "moderated":
		items, err = c.mgr.Moderated(r.Context())
	case "deleted":
		items, err = c.mgr.SoftDeleted(r.Context())
	default:
		writeError(w, http.StatusBadRequest, "state must be approved, moderated or deleted")
		return
	}
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// Moderate edits a comment as the session moderator.
func (c *Comments) Moderate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var in comments.Moderation
	if !decodeJSON(w, r, &in) {
		return
	}
	sess := middleware.SessionFromCtx(r.Context())
	cm, err := c.mgr.Moderate(r.Context(), id, sess.UserID, in)
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cm)
}

// SoftDelete hides a comment.
func (c *Comments) SoftDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	cm, err := c.mgr.SoftDelete(r.Context(), id)
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cm)
}

// Restore brings back a hidden comment.
func (c *Comments) Restore(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	cm, err := c.mgr.Restore(r.Context(), id)
	if err != nil {
		writeAppError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cm)
}

// HardDelete removes a comment for good.
func (c *Comments) HardDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := c.mgr.HardDelete(r.Context(), id); err != nil {
		writeAppError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
