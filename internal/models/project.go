// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// MasterProjectCategories is the closed list a project may be filed under.
var MasterProjectCategories = []string{"PROJECTS", "CHALLENGES", "DOT-NET", "HTML-5"}

// IsMasterProjectCategory reports whether name is in the master list,
// ignoring case and surrounding whitespace.
func IsMasterProjectCategory(name string) bool {
	name = strings.TrimSpace(name)
	for _, m := range MasterProjectCategories {
		if strings.EqualFold(m, name) {
			return true
		}
	}
	return false
}

// Project is a standalone portfolio entry with a globally unique slug.
type Project struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Slug        string    `json:"slug"`
	Description string    `json:"description"`
	URL         string    `json:"url"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	Categories []ProjectCategory `json:"categories,omitempty"`
	Images     []ProjectImage    `json:"images,omitempty"`
}

// ProjectCategory files a project under one master category.
type ProjectCategory struct {
	ID        uuid.UUID `json:"id"`
	ProjectID uuid.UUID `json:"project_id"`
	Name      string    `json:"name"`
}

// ProjectImage is a PNG-encoded screenshot of a project.
type ProjectImage struct {
	ID          uuid.UUID `json:"id"`
	ProjectID   uuid.UUID `json:"project_id"`
	Data        []byte    `json:"-"`
	ContentType string    `json:"content_type"`
	Position    int       `json:"position"`
}
