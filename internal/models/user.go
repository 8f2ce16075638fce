package models

import (
	"slices"
	"time"
)

type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	Email     string    `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Password  string    `gorm:"not null" json:"-"` // bcrypt hash
	RoleID    *uint     `gorm:"index" json:"role_id"`
	Role      *Role     `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"role,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Can reports whether the user holds perm. Role must be preloaded.
func (u *User) Can(perm Permission) bool {
	if u == nil {
		return false
	}
	return slices.Contains(u.Role.Permissions(), perm)
}

func (u *User) IsModerator() bool {
	return u.Can(PermCommentModerate)
}

// CanUpdateComment allows the author and moderators.
func (u *User) CanUpdateComment(c *Comment) bool {
	if u == nil || c == nil {
		return false
	}
	return c.UserID == u.ID || u.IsModerator()
}

// CanDeleteComment allows the author and moderators.
func (u *User) CanDeleteComment(c *Comment) bool {
	return u.CanUpdateComment(c)
}
