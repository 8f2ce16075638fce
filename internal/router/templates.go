package router

import (
	"fmt"
	"html/template"
	"io/fs"
	"path"
	"strings"
	"time"

	"newsroom/internal/utils"

	"github.com/gin-contrib/multitemplate"
)

const (
	layoutFile = "templates/layouts/base.html"
	viewsDir   = "templates/views"
)

func funcMap(appName string) template.FuncMap {
	return template.FuncMap{
		"appName": func() string { return appName },
		"dict": func(values ...any) (map[string]any, error) {
			if len(values)%2 != 0 {
				return nil, fmt.Errorf("invalid dict call")
			}
			dict := make(map[string]any, len(values)/2)
			for i := 0; i < len(values); i += 2 {
				key, ok := values[i].(string)
				if !ok {
					return nil, fmt.Errorf("dict keys must be strings")
				}
				dict[key] = values[i+1]
			}
			return dict, nil
		},
		"add": func(a, b int) int {
			return a + b
		},
		"timeAgo":    timeAgo,
		"formatTime": func(t time.Time) string { return t.Format("02.01.2006 15:04") },
		"excerpt":    utils.Excerpt,
		"markdown":   utils.RenderArticle,
	}
}

func timeAgo(t time.Time) string {
	seconds := int(time.Since(t).Seconds())
	plural := func(n int, unit string) string {
		if n == 1 {
			return fmt.Sprintf("1 %s ago", unit)
		}
		return fmt.Sprintf("%d %ss ago", n, unit)
	}

	switch {
	case seconds < 60:
		return "just now"
	case seconds < 3600:
		return plural(seconds/60, "minute")
	case seconds < 86400:
		return plural(seconds/3600, "hour")
	case seconds < 2592000:
		return plural(seconds/86400, "day")
	case seconds < 31536000:
		return plural(seconds/2592000, "month")
	}
	return plural(seconds/31536000, "year")
}

// LoadTemplates builds one template set per view, each combined with the
// base layout. Views are keyed by their path below templates/views, so
// "templates/views/articles/show.html" renders as "articles/show.html".
func LoadTemplates(fsys fs.FS, appName string) (multitemplate.Renderer, error) {
	r := multitemplate.NewRenderer()
	funcs := funcMap(appName)

	err := fs.WalkDir(fsys, viewsDir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(p, ".html") {
			return nil
		}

		name := strings.TrimPrefix(p, viewsDir+"/")
		tmpl, err := template.New(path.Base(layoutFile)).Funcs(funcs).ParseFS(fsys, layoutFile, p)
		if err != nil {
			return fmt.Errorf("parse %s: %w", name, err)
		}
		r.Add(name, tmpl)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("load templates: %w", err)
	}
	return r, nil
}
