package handlers_test

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"testing"

	"newsroom/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestModeratorNotifications(t *testing.T) {
	app := newTestApp(t)
	mod := app.user("Mod", "mod@example.com", models.RoleModerator)
	reader := app.user("Reader", "reader@example.com", models.RoleReader)
	article := app.article("Inbox")

	require.Equal(t, http.StatusFound, app.loggedIn(reader).post(commentPath(article), url.Values{"content": {"ping"}}).Code)

	var notification models.Notification
	require.NoError(t, app.conn.Where("user_id = ?", mod.ID).First(&notification).Error)
	assert.Equal(t, models.NotificationTypeCommentPending, notification.Type)
	assert.False(t, notification.IsRead)

	c := app.loggedIn(mod)
	list := c.get("/notifications")
	require.Equal(t, http.StatusOK, list.Code)
	assert.Contains(t, list.Body.String(), "Reader commented on")
	assert.Contains(t, list.Body.String(), `class="badge">1<`)

	rec := c.get(fmt.Sprintf("/notifications/%d/read", notification.ID))
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, fmt.Sprintf("/articles/%d", article.ID), rec.Header().Get("Location"))
	require.NoError(t, app.conn.First(&notification, notification.ID).Error)
	assert.True(t, notification.IsRead)

	// other users cannot see or remove it
	other := app.loggedIn(reader)
	assert.Equal(t, http.StatusNotFound, other.get(fmt.Sprintf("/notifications/%d/read", notification.ID)).Code)
	assert.Equal(t, http.StatusNotFound, other.do(http.MethodDelete, fmt.Sprintf("/notifications/%d", notification.ID), nil).Code)

	rec = c.do(http.MethodDelete, fmt.Sprintf("/notifications/%d", notification.ID), nil)
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/notifications", rec.Header().Get("Location"))
	assert.Contains(t, c.get("/notifications").Body.String(), "Notification deleted")
	var remaining int64
	require.NoError(t, app.conn.Model(&models.Notification{}).Count(&remaining).Error)
	assert.Zero(t, remaining)
}

func TestReadAllNotifications(t *testing.T) {
	app := newTestApp(t)
	mod := app.user("Mod", "mod@example.com", models.RoleModerator)
	reader := app.user("Reader", "reader@example.com", models.RoleReader)
	article := app.article("Busy")
	author := app.loggedIn(reader)
	for _, text := range []string{"one!", "two!", "three!"} {
		require.Equal(t, http.StatusFound, author.post(commentPath(article), url.Values{"content": {text}}).Code)
	}

	rec := app.loggedIn(mod).post("/notifications/read-all", nil)
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/notifications", rec.Header().Get("Location"))

	var unread int64
	require.NoError(t, app.conn.Model(&models.Notification{}).Where("is_read = ?", false).Count(&unread).Error)
	assert.Zero(t, unread)
}

func TestNotificationReadWithoutArticle(t *testing.T) {
	app := newTestApp(t)
	user := app.user("Reader", "reader@example.com", models.RoleReader)
	// the article was deleted, leaving article_id null
	notification := models.Notification{UserID: user.ID, Type: models.NotificationTypeCommentPending, Message: "Gone"}
	require.NoError(t, app.conn.Omit("User", "Article", "Comment").Create(&notification).Error)

	rec := app.loggedIn(user).get(fmt.Sprintf("/notifications/%d/read", notification.ID))

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/articles", rec.Header().Get("Location"))
}

func failWrites(tx *gorm.DB) { tx.AddError(errors.New("disk full")) }

func TestNotificationWriteFailures(t *testing.T) {
	app := newTestApp(t)
	user := app.user("Reader", "reader@example.com", models.RoleReader)
	notification := models.Notification{UserID: user.ID, Type: models.NotificationTypeCommentPending, Message: "Hello"}
	require.NoError(t, app.conn.Omit("User", "Article", "Comment").Create(&notification).Error)

	require.NoError(t, app.conn.Callback().Delete().Before("gorm:delete").Register("test:fail_delete", failWrites))
	require.NoError(t, app.conn.Callback().Update().Before("gorm:update").Register("test:fail_update", failWrites))
	c := app.loggedIn(user)

	rec := c.do(http.MethodDelete, fmt.Sprintf("/notifications/%d", notification.ID), nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "Notification deleted")

	rec = c.post("/notifications/read-all", nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	var stored models.Notification
	require.NoError(t, app.conn.First(&stored, notification.ID).Error)
	assert.False(t, stored.IsRead)
}
