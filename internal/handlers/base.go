package handlers

import (
	"net/http"

	"newsroom/internal/middleware"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

const flashKey = "success"

// Render helper to inject common variables like 'current user'
func Render(c *gin.Context, code int, name string, obj gin.H) {
	if obj == nil {
		obj = gin.H{}
	}

	if user := middleware.CurrentUser(c); user != nil {
		obj["CurrentUser"] = user
		obj["IsModerator"] = user.IsModerator()
		if count, ok := c.Get(middleware.UnreadCountKey); ok {
			obj["UnreadCount"] = int(count.(int64))
		} else {
			obj["UnreadCount"] = 0
		}
	}

	session := sessions.Default(c)
	if flashes := session.Flashes(flashKey); len(flashes) > 0 {
		obj["Flashes"] = flashes
		session.Save()
	}

	obj["CurrentPath"] = c.Request.URL.Path

	c.HTML(code, name, obj)
}

// RenderError renders the error page with the given status.
func RenderError(c *gin.Context, code int, message string) {
	Render(c, code, "error.html", gin.H{"Title": http.StatusText(code), "Error": message})
}

// redirectWithFlash stores a one-shot message and redirects.
func redirectWithFlash(c *gin.Context, location, message string) {
	session := sessions.Default(c)
	session.AddFlash(message, flashKey)
	session.Save()
	c.Redirect(http.StatusFound, location)
}
