package handlers

import (
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"newsroom/internal/middleware"
	"newsroom/internal/models"
	"newsroom/internal/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const articlesPerPage = 10

type ArticleHandler struct {
	db    *gorm.DB
	cache *utils.PageCache
}

func NewArticleHandler(db *gorm.DB, cache *utils.PageCache) *ArticleHandler {
	return &ArticleHandler{db: db, cache: cache}
}

type articleForm struct {
	Title   string `form:"title" validate:"required,max=255"`
	Content string `form:"content" validate:"required"`
}

func (f *articleForm) normalize() {
	f.Title = strings.TrimSpace(f.Title)
	f.Content = strings.TrimSpace(f.Content)
}

// commentView is a comment prepared for display.
type commentView struct {
	models.Comment
	ContentHTML template.HTML
	CanEdit     bool
	CanDelete   bool
}

// fillCommentCounts sets the number of approved comments on each article.
func fillCommentCounts(db *gorm.DB, articles []models.Article) error {
	if len(articles) == 0 {
		return nil
	}

	ids := make([]uint, len(articles))
	for i, a := range articles {
		ids[i] = a.ID
	}

	type countResult struct {
		ArticleID uint
		Count     int
	}
	var results []countResult
	err := db.Model(&models.Comment{}).
		Select("article_id, COUNT(*) as count").
		Where("article_id IN ? AND status = ?", ids, models.CommentApproved).
		Group("article_id").
		Scan(&results).Error
	if err != nil {
		return fmt.Errorf("count approved comments: %w", err)
	}

	counts := make(map[uint]int, len(results))
	for _, r := range results {
		counts[r.ArticleID] = r.Count
	}
	for i := range articles {
		articles[i].CommentCount = counts[articles[i].ID]
	}
	return nil
}

// findArticle loads the article named by the :id param or renders 404.
func findArticle(c *gin.Context, db *gorm.DB) (*models.Article, bool) {
	id, ok := utils.ParseID(c.Param("id"))
	if !ok {
		RenderError(c, http.StatusNotFound, "Article not found.")
		return nil, false
	}
	var article models.Article
	if err := db.WithContext(c.Request.Context()).First(&article, id).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			slog.Error("load article failed", "article_id", id, "error", err)
		}
		RenderError(c, http.StatusNotFound, "Article not found.")
		return nil, false
	}
	return &article, true
}

// articlePageData assembles everything the article page shows: approved
// comments for everyone plus the viewer's own comments still in review.
func articlePageData(c *gin.Context, db *gorm.DB, article *models.Article) (gin.H, error) {
	user := middleware.CurrentUser(c)
	conn := db.WithContext(c.Request.Context())

	var approved []models.Comment
	err := conn.Preload("User").
		Where("article_id = ? AND status = ?", article.ID, models.CommentApproved).
		Order("created_at ASC").
		Find(&approved).Error
	if err != nil {
		return nil, fmt.Errorf("load approved comments: %w", err)
	}

	var mine []models.Comment
	if user != nil {
		err := conn.Where("article_id = ? AND user_id = ? AND status = ?", article.ID, user.ID, models.CommentPending).
			Order("created_at ASC").
			Find(&mine).Error
		if err != nil {
			return nil, fmt.Errorf("load pending comments: %w", err)
		}
	}

	toView := func(list []models.Comment) []commentView {
		out := make([]commentView, len(list))
		for i := range list {
			out[i] = commentView{
				Comment:     list[i],
				ContentHTML: utils.RenderComment(list[i].Content),
				CanEdit:     user.CanUpdateComment(&list[i]),
				CanDelete:   user.CanDeleteComment(&list[i]),
			}
		}
		return out
	}

	return gin.H{
		"Title":           article.Title,
		"Article":         article,
		"ArticleHTML":     utils.RenderArticle(article.Content),
		"Comments":        toView(approved),
		"PendingComments": toView(mine),
	}, nil
}

func (h *ArticleHandler) Index(c *gin.Context) {
	page := 1
	if p := utils.StringToInt(c.Query("page")); p > 0 {
		page = p
	}

	cacheKey := fmt.Sprintf("articles:page:%d", page)
	if cached, ok := h.cache.Get(cacheKey).(gin.H); ok {
		Render(c, http.StatusOK, "articles/index.html", cloneH(cached))
		return
	}

	conn := h.db.WithContext(c.Request.Context())

	var total int64
	if err := conn.Model(&models.Article{}).Count(&total).Error; err != nil {
		slog.Error("count articles failed", "error", err)
		RenderError(c, http.StatusInternalServerError, "Could not load articles.")
		return
	}

	var articles []models.Article
	if err := conn.Order("created_at DESC").Order("id DESC").
		Limit(articlesPerPage).Offset((page - 1) * articlesPerPage).
		Find(&articles).Error; err != nil {
		slog.Error("list articles failed", "error", err)
		RenderError(c, http.StatusInternalServerError, "Could not load articles.")
		return
	}
	if err := fillCommentCounts(conn, articles); err != nil {
		slog.Error("list articles failed", "error", err)
		RenderError(c, http.StatusInternalServerError, "Could not load articles.")
		return
	}

	data := gin.H{
		"Title":    "Articles",
		"Articles": articles,
		"Page":     page,
		"HasPrev":  page > 1,
		"HasNext":  int64(page*articlesPerPage) < total,
		"PrevPage": page - 1,
		"NextPage": page + 1,
	}
	h.cache.Set(cacheKey, data, time.Minute)

	Render(c, http.StatusOK, "articles/index.html", cloneH(data))
}

// cloneH copies cached page data so Render can add per-request keys.
func cloneH(src gin.H) gin.H {
	dst := make(gin.H, len(src)+4)
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

func (h *ArticleHandler) Show(c *gin.Context) {
	article, ok := findArticle(c, h.db)
	if !ok {
		return
	}

	view := models.ArticleView{ArticleID: article.ID}
	if err := h.db.WithContext(c.Request.Context()).Create(&view).Error; err != nil {
		slog.Error("record article view failed", "article_id", article.ID, "error", err)
	}

	data, err := articlePageData(c, h.db, article)
	if err != nil {
		slog.Error("load article page failed", "article_id", article.ID, "error", err)
		RenderError(c, http.StatusInternalServerError, "Could not load the article.")
		return
	}
	Render(c, http.StatusOK, "articles/show.html", data)
}

func (h *ArticleHandler) Create(c *gin.Context) {
	Render(c, http.StatusOK, "articles/form.html", gin.H{
		"Title":  "New article",
		"Action": "/articles",
		"Form":   articleForm{},
	})
}

func (h *ArticleHandler) Store(c *gin.Context) {
	var form articleForm
	if err := c.ShouldBind(&form); err != nil {
		RenderError(c, http.StatusBadRequest, "Malformed form.")
		return
	}
	form.normalize()

	if errs := validateForm(&form); errs != nil {
		Render(c, http.StatusUnprocessableEntity, "articles/form.html", gin.H{
			"Title":  "New article",
			"Action": "/articles",
			"Form":   form,
			"Errors": errs,
		})
		return
	}

	article := models.Article{Title: form.Title, Content: form.Content}
	if err := h.db.WithContext(c.Request.Context()).Create(&article).Error; err != nil {
		slog.Error("create article failed", "error", err)
		RenderError(c, http.StatusInternalServerError, "Could not save the article.")
		return
	}
	h.cache.Purge()

	redirectWithFlash(c, "/articles/"+strconv.FormatUint(uint64(article.ID), 10), "Article created")
}

func (h *ArticleHandler) Edit(c *gin.Context) {
	article, ok := findArticle(c, h.db)
	if !ok {
		return
	}
	Render(c, http.StatusOK, "articles/form.html", gin.H{
		"Title":   "Edit article",
		"Action":  fmt.Sprintf("/articles/%d", article.ID),
		"Article": article,
		"Form":    articleForm{Title: article.Title, Content: article.Content},
	})
}

func (h *ArticleHandler) Update(c *gin.Context) {
	article, ok := findArticle(c, h.db)
	if !ok {
		return
	}

	var form articleForm
	if err := c.ShouldBind(&form); err != nil {
		RenderError(c, http.StatusBadRequest, "Malformed form.")
		return
	}
	form.normalize()

	if errs := validateForm(&form); errs != nil {
		Render(c, http.StatusUnprocessableEntity, "articles/form.html", gin.H{
			"Title":   "Edit article",
			"Action":  fmt.Sprintf("/articles/%d", article.ID),
			"Article": article,
			"Form":    form,
			"Errors":  errs,
		})
		return
	}

	err := h.db.WithContext(c.Request.Context()).Model(article).Updates(map[string]any{
		"title":   form.Title,
		"content": form.Content,
	}).Error
	if err != nil {
		slog.Error("update article failed", "article_id", article.ID, "error", err)
		RenderError(c, http.StatusInternalServerError, "Could not save the article.")
		return
	}
	h.cache.Purge()

	redirectWithFlash(c, fmt.Sprintf("/articles/%d", article.ID), "Article updated")
}

func (h *ArticleHandler) Destroy(c *gin.Context) {
	article, ok := findArticle(c, h.db)
	if !ok {
		return
	}

	if err := h.db.WithContext(c.Request.Context()).Select("Comments", "Views").Delete(article).Error; err != nil {
		slog.Error("delete article failed", "article_id", article.ID, "error", err)
		RenderError(c, http.StatusInternalServerError, "Could not delete the article.")
		return
	}
	h.cache.Purge()

	redirectWithFlash(c, "/articles", "Article deleted")
}
