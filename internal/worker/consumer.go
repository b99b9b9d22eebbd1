// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package worker consumes background jobs: notices to comment authors
// and contact-form messages for the site owner.
package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"strings"

	"github.com/hibiken/asynq"

	"portfolio/internal/logger"
	"portfolio/internal/mailer"
	"portfolio/internal/models"
	"portfolio/internal/queue"
	"portfolio/internal/store"
)

// Consumer handles queued tasks.
type Consumer struct {
	tx      store.Transactor
	sender  mailer.Sender
	contact string
}

// NewConsumer creates a consumer. contact is the address that receives
// contact-form messages.
func NewConsumer(tx store.Transactor, sender mailer.Sender, contact string) *Consumer {
	return &Consumer{tx: tx, sender: sender, contact: strings.TrimSpace(contact)}
}

// Register attaches the handlers to mux.
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskCommentNotice, c.handleCommentNotice)
	mux.HandleFunc(queue.TaskContactEmail, c.handleContactEmail)
}

func (c *Consumer) handleCommentNotice(ctx context.Context, task *asynq.Task) error {
	var payload queue.CommentNoticePayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_comment_notice_unmarshal_failed", "error", err)
		return fmt.Errorf("decode comment notice: %v: %w", err, asynq.SkipRetry)
	}

	r := c.tx.Repos()
	comment, err := r.Comments.FindByID(ctx, payload.CommentID)
	if err != nil {
		logger.Warnw("worker_comment_notice_fetch_comment_failed", "comment_id", payload.CommentID, "error", err)
		return err
	}
	if comment == nil {
		logger.Debugw("worker_comment_notice_skip_comment_gone", "comment_id", payload.CommentID)
		return nil
	}
	author, err := r.Users.FindByID(ctx, comment.AuthorID)
	if err != nil {
		logger.Warnw("worker_comment_notice_fetch_user_failed", "comment_id", comment.ID, "user_id", comment.AuthorID, "error", err)
		return err
	}
	if author == nil || strings.TrimSpace(author.Email) == "" {
		logger.Debugw("worker_comment_notice_skip_no_receiver", "comment_id", comment.ID)
		return nil
	}
	post, err := r.Posts.FindByID(ctx, comment.PostID)
	if err != nil {
		logger.Warnw("worker_comment_notice_fetch_post_failed", "comment_id", comment.ID, "post_id", comment.PostID, "error", err)
		return err
	}
	title := "a post"
	if post != nil {
		title = fmt.Sprintf("%q", post.Title)
	}

	subject, body, ok := commentNotice(payload.Event, author, comment, title)
	if !ok {
		logger.Debugw("worker_comment_notice_skip_unknown_event", "comment_id", comment.ID, "event", payload.Event)
		return nil
	}
	if err := c.sender.Send(ctx, author.Email, subject, body); err != nil {
		logger.Warnw("worker_comment_notice_send_failed",
			"comment_id", comment.ID,
			"event", payload.Event,
			"receiver_email", author.Email,
			"error", err,
		)
		return err
	}
	return nil
}

func commentNotice(event string, author *models.User, c *models.Comment, title string) (subject, body string, ok bool) {
	greeting := fmt.Sprintf("<p>Hello %s,</p>", html.EscapeString(author.DisplayName))
	switch event {
	case queue.EventModerated:
		var b strings.Builder
		b.WriteString(greeting)
		fmt.Fprintf(&b, "<p>A moderator edited your comment on %s.</p>", html.EscapeString(title))
		if label := c.ModerationType.Label(); label != "" {
			fmt.Fprintf(&b, "<p>Reason: %s</p>", html.EscapeString(label))
		}
		fmt.Fprintf(&b, "<blockquote>%s</blockquote>", html.EscapeString(c.Body))
		return "Your comment was moderated", b.String(), true
	case queue.EventSoftDeleted:
		body = greeting + fmt.Sprintf("<p>Your comment on %s has been hidden by a moderator.</p>", html.EscapeString(title))
		return "Your comment was hidden", body, true
	}
	return "", "", false
}

func (c *Consumer) handleContactEmail(ctx context.Context, task *asynq.Task) error {
	var payload queue.ContactEmailPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_contact_email_unmarshal_failed", "error", err)
		return fmt.Errorf("decode contact email: %v: %w", err, asynq.SkipRetry)
	}
	if c.contact == "" {
		logger.Warnw("worker_contact_email_skip_no_contact_address")
		return nil
	}

	subject := "Contact: " + strings.TrimSpace(payload.Subject)
	var b strings.Builder
	fmt.Fprintf(&b, "<p>From: %s &lt;%s&gt;</p>", html.EscapeString(payload.Name), html.EscapeString(payload.Email))
	fmt.Fprintf(&b, "<p>%s</p>", strings.ReplaceAll(html.EscapeString(payload.Message), "\n", "<br>"))

	if err := c.sender.Send(ctx, c.contact, subject, b.String()); err != nil {
		logger.Warnw("worker_contact_email_send_failed", "sender_email", payload.Email, "error", err)
		return err
	}
	return nil
}
