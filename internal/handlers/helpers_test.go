package handlers_test

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"testing"

	"newsroom/internal/config"
	"newsroom/internal/db/dbtest"
	"newsroom/internal/models"
	"newsroom/internal/router"
	"newsroom/internal/services"
	"newsroom/internal/services/mailtest"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const (
	testPassword = "correct-horse"
	fallbackAddr = "fallback@newsroom.local"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	gin.DefaultWriter = io.Discard
	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
	os.Exit(m.Run())
}

type testApp struct {
	t      *testing.T
	conn   *gorm.DB
	mail   *mailtest.Transport
	engine *gin.Engine
}

type appOption func(*config.Config)

func withSoftReject(cfg *config.Config) { cfg.SoftRejectComments = true }

func newTestApp(t *testing.T, opts ...appOption) *testApp {
	t.Helper()

	cfg := &config.Config{
		AppName:             "Newsroom",
		SiteURL:             "http://news.test",
		SessionSecret:       "test-session-secret",
		FallbackNotifyEmail: fallbackAddr,
		Contact:             config.Contact{Name: "Newsroom desk", Email: "desk@news.test"},
	}
	for _, opt := range opts {
		opt(cfg)
	}

	conn := dbtest.New(t)
	transport := mailtest.New()
	mail := mailtest.NewMailService(transport)

	engine, err := router.Setup(router.Deps{
		Config:     cfg,
		DB:         conn,
		Notifier:   services.NewModerationNotifier(conn, mail, cfg.AppName, cfg.SiteURL, cfg.FallbackNotifyEmail, nil),
		Moderation: services.NewCommentModeration(conn, cfg.SoftRejectComments),
		Captcha:    services.NewCaptchaService(42),
	})
	require.NoError(t, err)

	return &testApp{t: t, conn: conn, mail: transport, engine: engine}
}

func (a *testApp) user(name, email, role string) *models.User {
	return dbtest.CreateUser(a.t, a.conn, name, email, testPassword, role)
}

func (a *testApp) article(title string) *models.Article {
	return dbtest.CreateArticle(a.t, a.conn, title)
}

// client keeps the session cookie between requests.
type client struct {
	app     *testApp
	cookies map[string]*http.Cookie
}

func (a *testApp) client() *client {
	return &client{app: a, cookies: make(map[string]*http.Cookie)}
}

// loggedIn returns a client with an authenticated session for user.
func (a *testApp) loggedIn(user *models.User) *client {
	a.t.Helper()
	c := a.client()
	rec := c.post("/login", url.Values{"email": {user.Email}, "password": {testPassword}})
	require.Equal(a.t, http.StatusFound, rec.Code, rec.Body.String())
	return c
}

func (c *client) do(method, path string, form url.Values) *httptest.ResponseRecorder {
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req := httptest.NewRequest(method, path, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	for _, cookie := range c.cookies {
		req.AddCookie(cookie)
	}

	rec := httptest.NewRecorder()
	c.app.engine.ServeHTTP(rec, req)

	for _, cookie := range rec.Result().Cookies() {
		c.cookies[cookie.Name] = cookie
	}
	return rec
}

func (c *client) get(path string) *httptest.ResponseRecorder {
	return c.do(http.MethodGet, path, nil)
}

func (c *client) post(path string, form url.Values) *httptest.ResponseRecorder {
	if form == nil {
		form = url.Values{}
	}
	return c.do(http.MethodPost, path, form)
}

func (a *testApp) commentCount() int64 {
	a.t.Helper()
	var n int64
	require.NoError(a.t, a.conn.Model(&models.Comment{}).Count(&n).Error)
	return n
}
