package handlers

import (
	"context"
	"net/http"
	"strings"

	"portfolio/internal/logger"
	"portfolio/internal/queue"
	"portfolio/internal/validate"
)

// ContactQueue enqueues contact-form messages. *queue.Client satisfies it.
type ContactQueue interface {
	EnqueueContactEmail(ctx context.Context, payload queue.ContactEmailPayload) error
}

type contactRequest struct {
	Name    string `json:"name" validate:"required,trimmed_min=2,max=100"`
	Email   string `json:"email" validate:"required,email"`
	Subject string `json:"subject" validate:"required,trimmed_min=2,max=150"`
	Message string `json:"message" validate:"required,trimmed_min=2,max=4000"`
}

// Contact accepts contact-form messages.
type Contact struct {
	queue ContactQueue
}

// NewContact creates the contact handler.
func NewContact(q ContactQueue) *Contact {
	return &Contact{queue: q}
}

// Submit validates the message and queues it for delivery.
func (c *Contact) Submit(w http.ResponseWriter, r *http.Request) {
	var req contactRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if ve := validate.Struct(req); ve != nil {
		writeAppError(w, r, ve)
		return
	}
	payload := queue.ContactEmailPayload{
		Name:    strings.TrimSpace(req.Name),
		Email:   strings.TrimSpace(req.Email),
		Subject: strings.TrimSpace(req.Subject),
		Message: strings.TrimSpace(req.Message),
	}
	if err := c.queue.EnqueueContactEmail(r.Context(), payload); err != nil {
		logger.Errorw("contact_enqueue_failed", "error", err)
		writeError(w, http.StatusServiceUnavailable, "message could not be queued, please try again later")
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "queued"})
}
