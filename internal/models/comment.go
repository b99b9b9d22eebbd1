// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// ModerationType classifies why a moderator edited a comment.
type ModerationType string

const (
	ModerationNone        ModerationType = ""
	ModerationPolitical   ModerationType = "Political"
	ModerationLanguage    ModerationType = "Language"
	ModerationDrugs       ModerationType = "Drugs"
	ModerationThreatening ModerationType = "Threatening"
	ModerationSexual      ModerationType = "Sexual"
	ModerationHateSpeech  ModerationType = "HateSpeech"
	ModerationShaming     ModerationType = "Shaming"
)

var moderationLabels = map[ModerationType]string{
	ModerationPolitical:   "Political Propaganda",
	ModerationLanguage:    "Offensive Language",
	ModerationDrugs:       "Drug References",
	ModerationThreatening: "Threatening Speech",
	ModerationSexual:      "Sexual Content",
	ModerationHateSpeech:  "Hate Speech",
	ModerationShaming:     "Targeted Shaming",
}

// Valid reports whether t is a known classification. The empty value is valid.
func (t ModerationType) Valid() bool {
	if t == ModerationNone {
		return true
	}
	_, ok := moderationLabels[t]
	return ok
}

// Label returns the display name of the classification.
func (t ModerationType) Label() string {
	return moderationLabels[t]
}

// CommentState is the state derived from a comment's flags.
type CommentState string

const (
	CommentActive      CommentState = "active"
	CommentModerated   CommentState = "moderated"
	CommentSoftDeleted CommentState = "soft_deleted"
)

// Comment is a visitor comment on a post.
//
// The flags and timestamps follow a small state machine: moderation and
// soft deletion only ever set a timestamp that is still nil, and Restore
// is the only transition that clears one.
type Comment struct {
	ID             uuid.UUID      `json:"id"`
	PostID         uuid.UUID      `json:"post_id"`
	AuthorID       uuid.UUID      `json:"author_id"`
	ModeratorID    *uuid.UUID     `json:"moderator_id,omitempty"`
	Body           string         `json:"body"`
	ModeratedBody  string         `json:"moderated_body,omitempty"`
	ModerationType ModerationType `json:"moderation_type,omitempty"`
	IsModerated    bool           `json:"is_moderated"`
	IsSoftDeleted  bool           `json:"is_soft_deleted"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      *time.Time     `json:"updated_at,omitempty"`
	ModeratedAt    *time.Time     `json:"moderated_at,omitempty"`
	SoftDeletedAt  *time.Time     `json:"soft_deleted_at,omitempty"`
}

// Approved reports whether the comment is visible, i.e. not soft-deleted.
func (c *Comment) Approved() bool { return !c.IsSoftDeleted }

// Moderated reports whether a moderator has acted on the comment. It stays
// true after a restore.
func (c *Comment) Moderated() bool { return c.IsModerated }

// SoftDeleted reports whether the comment is hidden.
func (c *Comment) SoftDeleted() bool { return c.IsSoftDeleted }

// State derives the state machine position from the flags.
func (c *Comment) State() CommentState {
	switch {
	case c.IsSoftDeleted:
		return CommentSoftDeleted
	case c.IsModerated:
		return CommentModerated
	default:
		return CommentActive
	}
}

// MarshalJSON adds the derived state to the comment's fields.
func (c Comment) MarshalJSON() ([]byte, error) {
	type fields Comment
	return json.Marshal(struct {
		fields
		State CommentState `json:"state"`
	}{fields(c), c.State()})
}

// Moderate records a moderator edit.
func (c *Comment) Moderate(now time.Time, moderatorID uuid.UUID, body, moderatedBody string, kind ModerationType) {
	c.Body = body
	c.ModeratedBody = moderatedBody
	c.ModerationType = kind
	c.ModeratorID = &moderatorID
	c.UpdatedAt = &now
	c.IsModerated = true
	if c.ModeratedAt == nil {
		c.ModeratedAt = &now
	}
}

// SoftDelete hides the comment. Calling it again leaves both timestamps at
// their first-set values.
func (c *Comment) SoftDelete(now time.Time) {
	if !c.IsModerated {
		c.IsModerated = true
	}
	if c.ModeratedAt == nil {
		c.ModeratedAt = &now
	}
	if !c.IsSoftDeleted {
		c.IsSoftDeleted = true
	}
	if c.SoftDeletedAt == nil {
		c.SoftDeletedAt = &now
	}
}

// Restore brings a soft-deleted comment back. It returns false and changes
// nothing when the comment is not soft-deleted.
func (c *Comment) Restore() bool {
	if !c.IsSoftDeleted {
		return false
	}
	c.IsSoftDeleted = false
	c.SoftDeletedAt = nil
	return true
}
