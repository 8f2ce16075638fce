package router

import (
	"fmt"
	"io/fs"
	"net/http"

	"newsroom/internal/config"
	"newsroom/internal/handlers"
	"newsroom/internal/middleware"
	"newsroom/internal/models"
	"newsroom/internal/services"
	"newsroom/internal/utils"
	"newsroom/web"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"
)

const sessionName = "newsroom_session"

// Deps are the collaborators the HTTP layer needs.
type Deps struct {
	Config     *config.Config
	DB         *gorm.DB
	Notifier   *services.ModerationNotifier
	Moderation *services.CommentModeration
	Captcha    *services.CaptchaService
	// Cache is created per engine when nil.
	Cache *utils.PageCache
}

// Setup builds the gin engine with sessions, templates, static files and routes.
func Setup(deps Deps) (*gin.Engine, error) {
	if deps.Cache == nil {
		deps.Cache = utils.NewPageCache(128)
	}

	r := gin.Default()

	store := cookie.NewStore([]byte(deps.Config.SessionSecret))
	store.Options(sessions.Options{Path: "/", MaxAge: 86400 * 30, HttpOnly: true, SameSite: http.SameSiteLaxMode})
	r.Use(sessions.Sessions(sessionName, store))

	renderer, err := LoadTemplates(web.FS, deps.Config.AppName)
	if err != nil {
		return nil, err
	}
	r.HTMLRender = renderer

	static, err := fs.Sub(web.FS, "static")
	if err != nil {
		return nil, fmt.Errorf("static assets: %w", err)
	}
	r.StaticFS("/static", http.FS(static))

	r.Use(middleware.LoadUser(deps.DB))

	RegisterRoutes(r, deps)
	return r, nil
}

func RegisterRoutes(r *gin.Engine, deps Deps) {
	pageHandler := handlers.NewPageHandler(deps.DB, deps.Config.AppName, deps.Config.Contact)
	authHandler := handlers.NewAuthHandler(deps.DB, deps.Captcha)
	articleHandler := handlers.NewArticleHandler(deps.DB, deps.Cache)
	commentHandler := handlers.NewCommentHandler(deps.DB, deps.Notifier, deps.Moderation, deps.Cache)
	notificationHandler := handlers.NewNotificationHandler(deps.DB)

	// Public routes
	r.GET("/", pageHandler.Home)
	r.GET("/about", pageHandler.About)
	r.GET("/contact", pageHandler.Contact)
	r.GET("/articles", articleHandler.Index)
	r.GET("/articles/:id", articleHandler.Show)

	r.GET("/signin", authHandler.ShowSignin)
	r.POST("/signin", authHandler.Signin)
	r.GET("/login", authHandler.ShowLogin)
	r.POST("/login", authHandler.Login)

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Protected routes
	authorized := r.Group("/")
	authorized.Use(middleware.AuthRequired())
	{
		authorized.GET("/logout", authHandler.Logout)
		authorized.POST("/logout", authHandler.Logout)

		authorized.GET("/comments/:id/edit", commentHandler.Edit)
		authorized.PUT("/comments/:id", commentHandler.Update)
		authorized.POST("/comments/:id", commentHandler.Update)
		authorized.DELETE("/comments/:id", commentHandler.Destroy)
		authorized.POST("/comments/:id/delete", commentHandler.Destroy)

		authorized.GET("/notifications", notificationHandler.List)
		authorized.GET("/notifications/:id/read", notificationHandler.Read)
		authorized.POST("/notifications/read-all", notificationHandler.ReadAll)
		authorized.DELETE("/notifications/:id", notificationHandler.Delete)
		authorized.POST("/notifications/:id/delete", notificationHandler.Delete)
	}

	commenting := r.Group("/")
	commenting.Use(middleware.AuthRequired(), middleware.RequirePermission(models.PermCommentCreate))
	{
		commenting.POST("/articles/:id/comments", commentHandler.Store)
	}

	writers := r.Group("/articles")
	writers.Use(middleware.AuthRequired(), middleware.RequirePermission(models.PermArticleWrite))
	{
		writers.GET("/create", articleHandler.Create)
		writers.POST("", articleHandler.Store)
		writers.GET("/:id/edit", articleHandler.Edit)
		writers.PUT("/:id", articleHandler.Update)
		writers.POST("/:id", articleHandler.Update)
		writers.DELETE("/:id", articleHandler.Destroy)
		writers.POST("/:id/delete", articleHandler.Destroy)
	}

	moderators := r.Group("/comments")
	moderators.Use(middleware.AuthRequired(), middleware.RequirePermission(models.PermCommentModerate))
	{
		moderators.GET("/moderation", commentHandler.Moderation)
		moderators.POST("/:id/approve", commentHandler.Approve)
		moderators.POST("/:id/reject", commentHandler.Reject)
	}
}
