package handlers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"newsroom/internal/middleware"
	"newsroom/internal/models"
	"newsroom/internal/services"
	"newsroom/internal/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type CommentHandler struct {
	db         *gorm.DB
	notifier   *services.ModerationNotifier
	moderation *services.CommentModeration
	cache      *utils.PageCache
}

func NewCommentHandler(db *gorm.DB, notifier *services.ModerationNotifier, moderation *services.CommentModeration, cache *utils.PageCache) *CommentHandler {
	return &CommentHandler{db: db, notifier: notifier, moderation: moderation, cache: cache}
}

type commentForm struct {
	Content string `form:"content" validate:"required,min=3"`
}

func bindComment(c *gin.Context) commentForm {
	var form commentForm
	_ = c.ShouldBind(&form)
	form.Content = strings.TrimSpace(form.Content)
	return form
}

// findComment loads the comment named by the :id param with its article.
func (h *CommentHandler) findComment(c *gin.Context) (*models.Comment, bool) {
	id, ok := utils.ParseID(c.Param("id"))
	if !ok {
		RenderError(c, http.StatusNotFound, "Comment not found.")
		return nil, false
	}
	var comment models.Comment
	if err := h.db.WithContext(c.Request.Context()).Preload("Article").First(&comment, id).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			slog.Error("load comment failed", "comment_id", id, "error", err)
		}
		RenderError(c, http.StatusNotFound, "Comment not found.")
		return nil, false
	}
	return &comment, true
}

// Store saves a new comment in the pending state and alerts the moderators.
func (h *CommentHandler) Store(c *gin.Context) {
	article, ok := findArticle(c, h.db)
	if !ok {
		return
	}
	user := middleware.CurrentUser(c)

	form := bindComment(c)
	if errs := validateForm(&form); errs != nil {
		data, err := articlePageData(c, h.db, article)
		if err != nil {
			slog.Error("load article page failed", "article_id", article.ID, "error", err)
			RenderError(c, http.StatusInternalServerError, "Could not load the article.")
			return
		}
		data["Errors"] = errs
		data["CommentContent"] = form.Content
		Render(c, http.StatusUnprocessableEntity, "articles/show.html", data)
		return
	}

	comment := models.Comment{
		ArticleID: article.ID,
		UserID:    user.ID,
		Content:   form.Content,
		Status:    models.CommentPending,
	}
	if err := h.db.WithContext(c.Request.Context()).Omit("Article", "User").Create(&comment).Error; err != nil {
		slog.Error("create comment failed", "article_id", article.ID, "user_id", user.ID, "error", err)
		RenderError(c, http.StatusInternalServerError, "Could not save the comment.")
		return
	}
	comment.Article = *article
	comment.User = *user

	report := h.notifier.NotifyNewComment(c.Request.Context(), &comment)
	slog.Info("comment submitted",
		"comment_id", comment.ID,
		"article_id", article.ID,
		"notified", report.Delivered(),
		"failed", len(report.Failures),
	)

	redirectWithFlash(c, fmt.Sprintf("/articles/%d", article.ID), "Comment sent for moderation")
}

func (h *CommentHandler) Edit(c *gin.Context) {
	comment, ok := h.findComment(c)
	if !ok {
		return
	}
	if !middleware.CurrentUser(c).CanUpdateComment(comment) {
		RenderError(c, http.StatusForbidden, "You do not have permission to edit this comment.")
		return
	}

	Render(c, http.StatusOK, "comments/edit.html", gin.H{
		"Title":   "Edit comment",
		"Comment": comment,
		"Form":    commentForm{Content: comment.Content},
	})
}

func (h *CommentHandler) Update(c *gin.Context) {
	comment, ok := h.findComment(c)
	if !ok {
		return
	}
	if !middleware.CurrentUser(c).CanUpdateComment(comment) {
		RenderError(c, http.StatusForbidden, "You do not have permission to edit this comment.")
		return
	}

	form := bindComment(c)
	if errs := validateForm(&form); errs != nil {
		Render(c, http.StatusUnprocessableEntity, "comments/edit.html", gin.H{
			"Title":   "Edit comment",
			"Comment": comment,
			"Form":    form,
			"Errors":  errs,
		})
		return
	}

	if err := h.db.WithContext(c.Request.Context()).Model(comment).Update("content", form.Content).Error; err != nil {
		slog.Error("update comment failed", "comment_id", comment.ID, "error", err)
		RenderError(c, http.StatusInternalServerError, "Could not save the comment.")
		return
	}

	redirectWithFlash(c, fmt.Sprintf("/articles/%d", comment.ArticleID), "Comment updated")
}

func (h *CommentHandler) Destroy(c *gin.Context) {
	comment, ok := h.findComment(c)
	if !ok {
		return
	}
	if !middleware.CurrentUser(c).CanDeleteComment(comment) {
		RenderError(c, http.StatusForbidden, "You do not have permission to delete this comment.")
		return
	}

	if err := h.db.WithContext(c.Request.Context()).Delete(&models.Comment{}, comment.ID).Error; err != nil {
		slog.Error("delete comment failed", "comment_id", comment.ID, "error", err)
		RenderError(c, http.StatusInternalServerError, "Could not delete the comment.")
		return
	}
	// approved comments are counted on the article list
	h.cache.Purge()

	redirectWithFlash(c, fmt.Sprintf("/articles/%d", comment.ArticleID), "Comment deleted")
}

// Moderation lists the comments awaiting review, newest first.
func (h *CommentHandler) Moderation(c *gin.Context) {
	comments, err := h.moderation.Pending(c.Request.Context())
	if err != nil {
		slog.Error("list pending comments failed", "error", err)
		RenderError(c, http.StatusInternalServerError, "Could not load the moderation queue.")
		return
	}

	views := make([]commentView, len(comments))
	for i := range comments {
		views[i] = commentView{
			Comment:     comments[i],
			ContentHTML: utils.RenderComment(comments[i].Content),
		}
	}

	Render(c, http.StatusOK, "comments/moderation.html", gin.H{
		"Title":    "Moderation",
		"Comments": views,
	})
}

func (h *CommentHandler) Approve(c *gin.Context) {
	h.decide(c, h.moderation.Approve, "Comment approved")
}

func (h *CommentHandler) Reject(c *gin.Context) {
	h.decide(c, h.moderation.Reject, "Comment rejected")
}

func (h *CommentHandler) decide(c *gin.Context, apply func(context.Context, uint) error, flash string) {
	id, ok := utils.ParseID(c.Param("id"))
	if !ok {
		RenderError(c, http.StatusNotFound, "Comment not found.")
		return
	}

	err := apply(c.Request.Context(), id)
	switch {
	case err == nil:
	case errors.Is(err, services.ErrCommentNotFound):
		RenderError(c, http.StatusNotFound, "Comment not found.")
		return
	case errors.Is(err, services.ErrNotPending):
		RenderError(c, http.StatusConflict, "This comment has already been moderated.")
		return
	default:
		slog.Error("moderation decision failed", "comment_id", id, "error", err)
		RenderError(c, http.StatusInternalServerError, "Could not update the comment.")
		return
	}

	slog.Info("comment moderated", "comment_id", id, "moderator_id", middleware.CurrentUser(c).ID, "result", flash)
	h.cache.Purge()
	redirectWithFlash(c, "/comments/moderation", flash)
}
