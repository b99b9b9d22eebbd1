// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// ReadyStatus is the publication state of a post.
type ReadyStatus string

const (
	StatusIncomplete      ReadyStatus = "Incomplete"
	StatusProductionReady ReadyStatus = "ProductionReady"
	StatusPreviewReady    ReadyStatus = "PreviewReady"
)

// Valid reports whether s is one of the known statuses.
func (s ReadyStatus) Valid() bool {
	switch s {
	case StatusIncomplete, StatusProductionReady, StatusPreviewReady:
		return true
	}
	return false
}

// Post is an article inside a blog. Its slug is unique within the blog.
type Post struct {
	ID         uuid.UUID   `json:"id"`
	BlogID     uuid.UUID   `json:"blog_id"`
	CategoryID uuid.UUID   `json:"category_id"`
	AuthorID   uuid.UUID   `json:"author_id"`
	Title      string      `json:"title"`
	Slug       string      `json:"slug"`
	Abstract   string      `json:"abstract"`
	Content    string      `json:"content"`
	Status     ReadyStatus `json:"status"`
	ImageData  []byte      `json:"-"`
	ImageType  string      `json:"image_type,omitempty"`
	Thumbnail  []byte      `json:"-"`
	CreatedAt  time.Time   `json:"created_at"`
	UpdatedAt  time.Time   `json:"updated_at"`

	Tags     []Tag     `json:"tags,omitempty"`
	Comments []Comment `json:"comments,omitempty"`
}

// IsProductionReady reports whether anonymous visitors may see the post.
func (p *Post) IsProductionReady() bool {
	return p.Status == StatusProductionReady
}

// HasImage reports whether an encoded image is attached.
func (p *Post) HasImage() bool {
	return len(p.ImageData) > 0
}

// Tag is a free label attached to a post. The full tag set of a post is
// replaced on every edit.
type Tag struct {
	ID        uuid.UUID `json:"id"`
	PostID    uuid.UUID `json:"post_id"`
	AuthorID  uuid.UUID `json:"author_id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}
