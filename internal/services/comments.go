package services

import (
	"context"
	"errors"
	"fmt"

	"newsroom/internal/models"

	"gorm.io/gorm"
)

var (
	ErrCommentNotFound = errors.New("comment not found")
	// ErrNotPending means the comment was already approved or rejected.
	ErrNotPending = errors.New("comment is not awaiting moderation")
)

// CommentModeration applies moderator decisions to pending comments.
// Decisions are single conditional statements, so two moderators acting on
// the same comment cannot both succeed.
type CommentModeration struct {
	db         *gorm.DB
	softReject bool
}

// NewCommentModeration builds the moderation service. With softReject a
// rejected comment keeps its row with status "rejected"; otherwise it is deleted.
func NewCommentModeration(db *gorm.DB, softReject bool) *CommentModeration {
	return &CommentModeration{db: db, softReject: softReject}
}

// Pending lists comments awaiting moderation, newest first.
func (m *CommentModeration) Pending(ctx context.Context) ([]models.Comment, error) {
	var comments []models.Comment
	err := m.db.WithContext(ctx).
		Preload("Article").
		Preload("User").
		Where("status = ?", models.CommentPending).
		Order("created_at DESC").
		Order("id DESC").
		Find(&comments).Error
	if err != nil {
		return nil, fmt.Errorf("list pending comments: %w", err)
	}
	return comments, nil
}

// Approve publishes a pending comment.
func (m *CommentModeration) Approve(ctx context.Context, id uint) error {
	res := m.db.WithContext(ctx).
		Model(&models.Comment{}).
		Where("id = ? AND status = ?", id, models.CommentPending).
		Update("status", models.CommentApproved)
	if res.Error != nil {
		return fmt.Errorf("approve comment %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return m.missReason(ctx, id)
	}
	return nil
}

// Reject removes a pending comment, or marks it rejected in soft mode.
func (m *CommentModeration) Reject(ctx context.Context, id uint) error {
	query := m.db.WithContext(ctx).Where("id = ? AND status = ?", id, models.CommentPending)

	var res *gorm.DB
	if m.softReject {
		res = query.Model(&models.Comment{}).Update("status", models.CommentRejected)
	} else {
		res = query.Delete(&models.Comment{})
	}
	if res.Error != nil {
		return fmt.Errorf("reject comment %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return m.missReason(ctx, id)
	}
	return nil
}

func (m *CommentModeration) missReason(ctx context.Context, id uint) error {
	var count int64
	if err := m.db.WithContext(ctx).Model(&models.Comment{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return fmt.Errorf("lookup comment %d: %w", id, err)
	}
	if count == 0 {
		return ErrCommentNotFound
	}
	return ErrNotPending
}
