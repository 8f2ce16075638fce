package handlers

import (
	"log/slog"
	"net/http"

	"newsroom/internal/config"
	"newsroom/internal/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type PageHandler struct {
	db      *gorm.DB
	appName string
	contact config.Contact
}

func NewPageHandler(db *gorm.DB, appName string, contact config.Contact) *PageHandler {
	return &PageHandler{db: db, appName: appName, contact: contact}
}

// Home shows the five most recent articles.
func (h *PageHandler) Home(c *gin.Context) {
	var latest []models.Article
	err := h.db.WithContext(c.Request.Context()).
		Order("created_at DESC").Order("id DESC").
		Limit(5).
		Find(&latest).Error
	if err != nil {
		slog.Error("load latest articles failed", "error", err)
		RenderError(c, http.StatusInternalServerError, "Could not load articles.")
		return
	}

	Render(c, http.StatusOK, "pages/home.html", gin.H{
		"Title":    h.appName,
		"Articles": latest,
	})
}

func (h *PageHandler) About(c *gin.Context) {
	Render(c, http.StatusOK, "pages/about.html", gin.H{"Title": "About"})
}

func (h *PageHandler) Contact(c *gin.Context) {
	Render(c, http.StatusOK, "pages/contact.html", gin.H{
		"Title":   "Contact",
		"Contact": h.contact,
	})
}
