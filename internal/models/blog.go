// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// Blog groups posts under a name, a set of categories and a globally
// unique slug. Every blog carries a PNG image.
type Blog struct {
	ID          uuid.UUID `json:"id"`
	AuthorID    uuid.UUID `json:"author_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Slug        string    `json:"slug"`
	ImageData   []byte    `json:"-"`
	ImageType   string    `json:"image_type,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Loaded explicitly by the read side; never populated implicitly.
	Categories []Category `json:"categories,omitempty"`
	Posts      []Post     `json:"posts,omitempty"`
}
