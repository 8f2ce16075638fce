package models

import (
	"time"
)

// Permission is a single capability an actor may hold.
type Permission string

const (
	PermCommentCreate   Permission = "comments.create"
	PermCommentModerate Permission = "comments.moderate"
	PermArticleWrite    Permission = "articles.write"
)

// Role names seeded at migration time.
const (
	RoleReader    = "reader"
	RoleModerator = "moderator"
)

// rolePermissions is the complete permission table. A user without a role
// gets the reader set.
var rolePermissions = map[string][]Permission{
	RoleReader:    {PermCommentCreate, PermArticleWrite},
	RoleModerator: {PermCommentCreate, PermArticleWrite, PermCommentModerate},
}

// KnownRoles lists the roles the permission table defines.
func KnownRoles() []string {
	return []string{RoleReader, RoleModerator}
}

type Role struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"uniqueIndex;size:50;not null" json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Permissions returns the permission set of the role. Unknown names get nothing.
func (r *Role) Permissions() []Permission {
	if r == nil {
		return rolePermissions[RoleReader]
	}
	return rolePermissions[r.Name]
}
