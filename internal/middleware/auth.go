package middleware

import (
	"log/slog"
	"net/http"

	"newsroom/internal/models"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const CheckUserKey = "user"
const UnreadCountKey = "unread_count"

// SessionUserKey is the session field holding the logged-in user id.
const SessionUserKey = "user_id"

// CurrentUser returns the user loaded by LoadUser, or nil.
func CurrentUser(c *gin.Context) *models.User {
	if u, exists := c.Get(CheckUserKey); exists {
		if user, ok := u.(*models.User); ok {
			return user
		}
	}
	return nil
}

// LoadUser retrieves user from session and sets to context
func LoadUser(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		userID := session.Get(SessionUserKey)

		if userID != nil {
			var user models.User
			result := db.WithContext(c.Request.Context()).Preload("Role").First(&user, userID)
			if result.Error == nil {
				c.Set(CheckUserKey, &user)

				var count int64
				err := db.WithContext(c.Request.Context()).Model(&models.Notification{}).
					Where("user_id = ? AND is_read = ?", user.ID, false).
					Count(&count).Error
				if err != nil {
					slog.Warn("count unread notifications failed", "user_id", user.ID, "error", err)
				}
				c.Set(UnreadCountKey, count)
			} else {
				// stale session: the user is gone
				slog.Debug("dropping session of unknown user", "user_id", userID, "error", result.Error)
				session.Delete(SessionUserKey)
				session.Save()
			}
		}
		c.Next()
	}
}

// AuthRequired ensures a user is logged in
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if CurrentUser(c) == nil {
			c.Redirect(http.StatusFound, "/login")
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequirePermission aborts with 403 unless the current user holds perm.
// It must run after AuthRequired.
func RequirePermission(perm models.Permission) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if !user.Can(perm) {
			c.HTML(http.StatusForbidden, "error.html", gin.H{
				"Title":       http.StatusText(http.StatusForbidden),
				"Error":       "You do not have permission to perform this action.",
				"CurrentUser": user,
			})
			c.Abort()
			return
		}
		c.Next()
	}
}
