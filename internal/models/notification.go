package models

import (
	"time"
)

type NotificationType string

const NotificationTypeCommentPending NotificationType = "comment_pending"

type Notification struct {
	ID        uint             `gorm:"primaryKey" json:"id"`
	UserID    uint             `gorm:"not null;index" json:"user_id"` // Receiver
	User      User             `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"user"`
	ArticleID *uint            `gorm:"index" json:"article_id"`
	Article   *Article         `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"article,omitempty"`
	CommentID *uint            `gorm:"index" json:"comment_id"`
	Comment   *Comment         `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"comment,omitempty"`
	Type      NotificationType `gorm:"type:varchar(20);not null" json:"type"`
	Message   string           `gorm:"type:text" json:"message"`
	IsRead    bool             `gorm:"default:false;index" json:"is_read"`
	CreatedAt time.Time        `json:"created_at"`
}
