package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"newsroom/internal/db/dbtest"
	"newsroom/internal/models"
	"newsroom/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func moderationFixture(t *testing.T) (*gorm.DB, []*models.Comment) {
	conn := dbtest.New(t)
	author := dbtest.CreateUser(t, conn, "Alice", "alice@example.com", "secret123", models.RoleReader)
	article := dbtest.CreateArticle(t, conn, "Moderation")
	base := time.Now().Add(-time.Hour)

	comments := []*models.Comment{
		dbtest.CreateComment(t, conn, article, author, "oldest pending", models.CommentPending, base),
		dbtest.CreateComment(t, conn, article, author, "already approved", models.CommentApproved, base.Add(time.Minute)),
		dbtest.CreateComment(t, conn, article, author, "newest pending", models.CommentPending, base.Add(2*time.Minute)),
	}
	return conn, comments
}

func TestPendingNewestFirst(t *testing.T) {
	conn, comments := moderationFixture(t)
	m := services.NewCommentModeration(conn, false)

	pending, err := m.Pending(context.Background())
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, comments[2].ID, pending[0].ID)
	assert.Equal(t, comments[0].ID, pending[1].ID)
	assert.Equal(t, "Moderation", pending[0].Article.Title)
	assert.Equal(t, "Alice", pending[0].User.Name)
}

func TestApprove(t *testing.T) {
	conn, comments := moderationFixture(t)
	m := services.NewCommentModeration(conn, false)
	ctx := context.Background()

	require.NoError(t, m.Approve(ctx, comments[0].ID))

	var stored models.Comment
	require.NoError(t, conn.First(&stored, comments[0].ID).Error)
	assert.True(t, stored.IsApproved())

	pending, err := m.Pending(ctx)
	require.NoError(t, err)
	for _, c := range pending {
		assert.NotEqual(t, comments[0].ID, c.ID)
	}

	assert.ErrorIs(t, m.Approve(ctx, comments[0].ID), services.ErrNotPending)
	assert.ErrorIs(t, m.Approve(ctx, 9999), services.ErrCommentNotFound)
}

func TestRejectDeletes(t *testing.T) {
	conn, comments := moderationFixture(t)
	m := services.NewCommentModeration(conn, false)
	ctx := context.Background()

	require.NoError(t, m.Reject(ctx, comments[2].ID))

	err := conn.First(&models.Comment{}, comments[2].ID).Error
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
	assert.ErrorIs(t, m.Reject(ctx, comments[2].ID), services.ErrCommentNotFound)
	assert.ErrorIs(t, m.Reject(ctx, comments[1].ID), services.ErrNotPending)
}

func TestSoftReject(t *testing.T) {
	conn, comments := moderationFixture(t)
	m := services.NewCommentModeration(conn, true)
	ctx := context.Background()

	require.NoError(t, m.Reject(ctx, comments[0].ID))

	var stored models.Comment
	require.NoError(t, conn.First(&stored, comments[0].ID).Error)
	assert.Equal(t, models.CommentRejected, stored.Status)
	assert.ErrorIs(t, m.Approve(ctx, comments[0].ID), services.ErrNotPending)
}
