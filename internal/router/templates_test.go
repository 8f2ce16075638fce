package router

import (
	"net/http/httptest"
	"testing"
	"time"

	"newsroom/web"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadTemplatesWrapsViewsInLayout(t *testing.T) {
	r, err := LoadTemplates(web.FS, "Daily Planet")
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	err = r.Instance("error.html", gin.H{"Title": "Not Found", "Error": "gone", "CurrentPath": "/x"}).Render(rec)
	require.NoError(t, err)
	assert.Contains(t, rec.Body.String(), "<title>Not Found · Daily Planet</title>")
	assert.Contains(t, rec.Body.String(), "<p>gone</p>")

	rec = httptest.NewRecorder()
	err = r.Instance("pages/about.html", gin.H{"Title": "About", "CurrentPath": "/about"}).Render(rec)
	require.NoError(t, err)
	assert.Contains(t, rec.Body.String(), "Daily Planet publishes articles")
}

func TestTimeAgo(t *testing.T) {
	now := time.Now()
	assert.Equal(t, "just now", timeAgo(now.Add(-10*time.Second)))
	assert.Equal(t, "1 minute ago", timeAgo(now.Add(-90*time.Second)))
	assert.Equal(t, "3 hours ago", timeAgo(now.Add(-3*time.Hour-time.Minute)))
	assert.Equal(t, "2 days ago", timeAgo(now.Add(-49*time.Hour)))
	assert.Equal(t, "1 year ago", timeAgo(now.Add(-400*24*time.Hour)))
}
