package models

import (
	"time"
)

type CommentStatus string

const (
	CommentPending  CommentStatus = "pending"
	CommentApproved CommentStatus = "approved"
	CommentRejected CommentStatus = "rejected"
)

type Comment struct {
	ID        uint          `gorm:"primaryKey" json:"id"`
	ArticleID uint          `gorm:"not null;index" json:"article_id"`
	Article   Article       `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"article"`
	UserID    uint          `gorm:"not null;index" json:"user_id"`
	User      User          `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"user"`
	Content   string        `gorm:"type:text;not null" json:"content"`
	Status    CommentStatus `gorm:"type:varchar(16);not null;default:'pending';index" json:"status"`
	CreatedAt time.Time     `gorm:"index" json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

func (c *Comment) IsApproved() bool {
	return c.Status == CommentApproved
}

func (c *Comment) IsPending() bool {
	return c.Status == CommentPending
}
