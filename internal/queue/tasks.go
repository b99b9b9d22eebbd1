package queue

import (
	"encoding/json"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

const (
	// TaskCommentNotice tells a comment's author that a moderator acted on it.
	TaskCommentNotice = "comment:notice"
	// TaskContactEmail forwards a contact-form message to the site owner.
	TaskContactEmail = "contact:email"
)

// Comment notice events.
const (
	EventModerated   = "moderated"
	EventSoftDeleted = "soft_deleted"
)

// CommentNoticePayload identifies the comment and what happened to it.
// The worker loads everything else.
type CommentNoticePayload struct {
	CommentID uuid.UUID `json:"comment_id"`
	Event     string    `json:"event"`
}

// ContactEmailPayload is a visitor's contact-form message.
type ContactEmailPayload struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

// NewCommentNoticeTask builds a comment notice task.
func NewCommentNoticeTask(payload CommentNoticePayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskCommentNotice, body), nil
}

// NewContactEmailTask builds a contact email task.
func NewContactEmailTask(payload ContactEmailPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskContactEmail, body), nil
}
