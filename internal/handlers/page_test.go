package handlers_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStaticPages(t *testing.T) {
	app := newTestApp(t)
	app.article("Front page story")
	c := app.client()

	home := c.get("/")
	require.Equal(t, http.StatusOK, home.Code)
	assert.Contains(t, home.Body.String(), "Front page story")

	assert.Equal(t, http.StatusOK, c.get("/about").Code)

	contact := c.get("/contact")
	require.Equal(t, http.StatusOK, contact.Code)
	assert.Contains(t, contact.Body.String(), "Newsroom desk")
	assert.Contains(t, contact.Body.String(), "mailto:desk@news.test")
}

func TestStaticAssetsAndMetrics(t *testing.T) {
	app := newTestApp(t)
	c := app.client()

	css := c.get("/static/css/site.css")
	require.Equal(t, http.StatusOK, css.Code)
	assert.Contains(t, css.Body.String(), ".flash")

	metrics := c.get("/metrics")
	require.Equal(t, http.StatusOK, metrics.Code)
	assert.Contains(t, metrics.Body.String(), "newsroom_moderation_fallback_total")
}
