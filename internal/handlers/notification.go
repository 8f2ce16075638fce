package handlers

import (
	"fmt"
	"log/slog"
	"net/http"

	"newsroom/internal/middleware"
	"newsroom/internal/models"
	"newsroom/internal/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type NotificationHandler struct {
	db *gorm.DB
}

func NewNotificationHandler(db *gorm.DB) *NotificationHandler {
	return &NotificationHandler{db: db}
}

// own loads a notification belonging to the current user.
func (h *NotificationHandler) own(c *gin.Context) (*models.Notification, bool) {
	user := middleware.CurrentUser(c)
	id, ok := utils.ParseID(c.Param("id"))
	if !ok {
		RenderError(c, http.StatusNotFound, "Notification not found.")
		return nil, false
	}

	var notification models.Notification
	err := h.db.WithContext(c.Request.Context()).
		Where("id = ? AND user_id = ?", id, user.ID).
		First(&notification).Error
	if err != nil {
		RenderError(c, http.StatusNotFound, "Notification not found.")
		return nil, false
	}
	return &notification, true
}

func (h *NotificationHandler) List(c *gin.Context) {
	user := middleware.CurrentUser(c)

	var notifications []models.Notification
	err := h.db.WithContext(c.Request.Context()).
		Preload("Article").Preload("Comment").Preload("Comment.User").
		Where("user_id = ?", user.ID).
		Order("created_at DESC").Order("id DESC").
		Limit(50).
		Find(&notifications).Error
	if err != nil {
		slog.Error("list notifications failed", "user_id", user.ID, "error", err)
		RenderError(c, http.StatusInternalServerError, "Could not load notifications.")
		return
	}

	Render(c, http.StatusOK, "notifications/index.html", gin.H{
		"Title":         "Notifications",
		"Notifications": notifications,
	})
}

// Read marks the notification read and follows it to its article.
func (h *NotificationHandler) Read(c *gin.Context) {
	notification, ok := h.own(c)
	if !ok {
		return
	}

	if !notification.IsRead {
		if err := h.db.WithContext(c.Request.Context()).Model(notification).Update("is_read", true).Error; err != nil {
			slog.Error("mark notification read failed", "notification_id", notification.ID, "error", err)
		}
	}

	target := "/articles"
	if notification.ArticleID != nil {
		target = fmt.Sprintf("/articles/%d", *notification.ArticleID)
	}
	c.Redirect(http.StatusFound, target)
}

func (h *NotificationHandler) ReadAll(c *gin.Context) {
	user := middleware.CurrentUser(c)

	err := h.db.WithContext(c.Request.Context()).Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", user.ID, false).
		Update("is_read", true).Error
	if err != nil {
		slog.Error("mark notifications read failed", "user_id", user.ID, "error", err)
		RenderError(c, http.StatusInternalServerError, "Could not update notifications.")
		return
	}

	redirectWithFlash(c, "/notifications", "All notifications marked as read")
}

func (h *NotificationHandler) Delete(c *gin.Context) {
	notification, ok := h.own(c)
	if !ok {
		return
	}

	if err := h.db.WithContext(c.Request.Context()).Delete(notification).Error; err != nil {
		slog.Error("delete notification failed", "notification_id", notification.ID, "error", err)
		RenderError(c, http.StatusInternalServerError, "Could not delete the notification.")
		return
	}

	redirectWithFlash(c, "/notifications", "Notification deleted")
}
