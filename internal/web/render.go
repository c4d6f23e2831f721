package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"log"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"jobportal/internal/domain"
	"jobportal/internal/htmltext"
	"jobportal/internal/paging"
	"jobportal/internal/report"
	"jobportal/internal/store"
	"jobportal/internal/validation"
)

var (
	//go:embed templates
	templateFS embed.FS

	//go:embed static
	staticFS embed.FS
)

// View is what every page template receives.
type View struct {
	Title     string
	Path      string
	// Canonical is the absolute URL of the page when app.public_url is set.
	Canonical string
	Session   *store.Session
	CSRF      string
	Flashes   []store.Flash
	Form      any
	Errors    validation.Errors
	Data      any
	Pager     paging.Pager
	Query     url.Values
	RequestID string
	Now       time.Time
}

// SignedIn and IsAdmin drive the navigation.
func (v View) SignedIn() bool { return v.Session != nil }

func (v View) IsAdmin() bool { return roleOf(v.Session) == domain.RoleAdmin }

func (v View) IsJobseeker() bool { return roleOf(v.Session) == domain.RoleJobseeker }

// Renderer holds one parsed template set per page, each sharing the layout and partials.
type Renderer struct {
	pages map[string]*template.Template
}

func NewRenderer() (*Renderer, error) {
	base, err := template.New("").Funcs(funcMap()).ParseFS(templateFS, "templates/layout/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse layout: %w", err)
	}
	files, err := fs.Glob(templateFS, "templates/pages/*.html")
	if err != nil {
		return nil, err
	}
	rd := &Renderer{pages: make(map[string]*template.Template, len(files))}
	for _, f := range files {
		t, err := base.Clone()
		if err != nil {
			return nil, err
		}
		if _, err := t.ParseFS(templateFS, f); err != nil {
			return nil, fmt.Errorf("parse %s: %w", f, err)
		}
		rd.pages[strings.TrimSuffix(path.Base(f), ".html")] = t
	}
	return rd, nil
}

// Render buffers the page so a template error still yields a clean 500.
func (rd *Renderer) Render(w http.ResponseWriter, r *http.Request, status int, page string, v View) {
	t, ok := rd.pages[page]
	if !ok {
		log.Printf("level=error msg=\"unknown template\" request_id=%s page=%s", RequestIDFrom(r.Context()), page)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", v); err != nil {
		log.Printf("level=error msg=\"render failed\" request_id=%s page=%s err=%v", RequestIDFrom(r.Context()), page, err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func funcMap() template.FuncMap {
	return template.FuncMap{
		"date": func(t time.Time) string {
			if t.IsZero() {
				return ""
			}
			return t.Format(report.DateLayout)
		},
		"datePtr": func(t *time.Time) string {
			if t == nil || t.IsZero() {
				return ""
			}
			return t.Format(report.DateLayout)
		},
		"money":      report.Money,
		"excerpt":    htmltext.Excerpt,
		"paragraphs": htmltext.Paragraphs,
		"add":        func(a, b int) int { return a + b },
		"list":       func(xs ...string) []string { return xs },
		"eq64":       func(a, b int64) bool { return a == b },
		"hasID": func(ids []int64, id int64) bool {
			for _, v := range ids {
				if v == id {
					return true
				}
			}
			return false
		},
		"nextStatus": func(s domain.PostStatus) domain.PostStatus {
			next, _ := s.Next()
			return next
		},
		"postStatuses":        domain.PostStatuses,
		"applicationStatuses": domain.ApplicationStatuses,
		"masterKinds":         domain.MasterKinds,
		"percent": func(done, total int) int {
			if total <= 0 {
				return 0
			}
			return done * 100 / total
		},
	}
}
