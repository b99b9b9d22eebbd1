// Package models defines the data structures that map to database tables
// and the small amount of state logic that belongs to them.
package models

import (
	"time"

	"github.com/google/uuid"
)

// Role represents a user's permission level in the system.
type Role string

const (
	RoleAdministrator Role = "Administrator"
	RoleModerator     Role = "Moderator"
	RoleAuthor        Role = "Author"
)

// User is an authenticated actor. Authors own blogs, posts and comments;
// moderators review comments.
type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Never serialize the hash
	DisplayName  string    `json:"display_name"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// IsAdmin returns true if the user has the administrator role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdministrator
}

// CanModerate returns true for administrators and moderators.
func (u *User) CanModerate() bool {
	return u.Role == RoleAdministrator || u.Role == RoleModerator
}
