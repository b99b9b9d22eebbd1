// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// DefaultCategoryName is the reserved category every blog with categories
// carries. Posts of deleted categories fall back to it.
const DefaultCategoryName = "All Posts"

// Category is a per-blog grouping of posts. Names are unique per blog,
// compared case-insensitively.
type Category struct {
	ID        uuid.UUID `json:"id"`
	BlogID    uuid.UUID `json:"blog_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// IsDefault reports whether c is the reserved "All Posts" category.
func (c *Category) IsDefault() bool {
	return IsDefaultCategoryName(c.Name)
}

// IsDefaultCategoryName reports whether name refers to the reserved category.
func IsDefaultCategoryName(name string) bool {
	return strings.EqualFold(strings.TrimSpace(name), DefaultCategoryName)
}
