package web

import (
	"errors"
	"log"
	"net/http"

	"jobportal/internal/apiclient"
	"jobportal/internal/config"
	"jobportal/internal/domain"
	"jobportal/internal/events"
	"jobportal/internal/paging"
	"jobportal/internal/validation"
)

// base is shared by every page handler.
type base struct {
	d     Deps
	views *Renderer
	sess  sessions
}

func (b base) cfg() config.Config { return b.d.cfg() }

func (b base) view(w http.ResponseWriter, r *http.Request, title string) View {
	v := View{
		Title:     title,
		Path:      r.URL.Path,
		Session:   SessionFrom(r.Context()),
		Flashes:   b.sess.Flashes(w, r),
		Query:     r.URL.Query(),
		RequestID: RequestIDFrom(r.Context()),
		Now:       b.d.now(),
	}
	if v.Session != nil {
		v.CSRF = v.Session.CSRF
	}
	if cfg := b.cfg(); cfg.App.PublicURL != "" {
		v.Canonical = cfg.AbsoluteURL(r.URL.Path)
	}
	return v
}

func (b base) render(w http.ResponseWriter, r *http.Request, status int, page string, v View) {
	b.views.Render(w, r, status, page, v)
}

func (b base) flash(w http.ResponseWriter, r *http.Request, kind, msg string) {
	b.sess.Flash(w, r, kind, msg)
}

// listQuery reads page, limit and search from the URL and clamps them to the configured bounds.
func (b base) listQuery(r *http.Request, filters ...string) apiclient.ListQuery {
	cfg := b.cfg()
	q := r.URL.Query()
	page, limit := paging.Normalize(queryInt(q, "page"), queryInt(q, "limit"), cfg.Pagination.PageSize, cfg.Pagination.MaxPageSize)
	lq := apiclient.ListQuery{Page: page, Limit: limit, Search: paging.Search(q.Get("q"))}
	for _, f := range filters {
		if v := paging.Search(q.Get(f)); v != "" {
			if lq.Filters == nil {
				lq.Filters = map[string]string{}
			}
			lq.Filters[f] = v
		}
	}
	return lq
}

func (b base) notFound(w http.ResponseWriter, r *http.Request) {
	v := b.view(w, r, "Not found")
	v.Data = "The page you are looking for does not exist."
	b.render(w, r, http.StatusNotFound, "error", v)
}

// expire ends a session the API no longer accepts.
func (b base) expire(w http.ResponseWriter, r *http.Request) {
	b.sess.Destroy(w, r)
	// the session is gone, so the toast rides on the anonymous cookie
	r = r.WithContext(withoutSession(r.Context()))
	b.flash(w, r, "error", msgExpired)
	next := ""
	if r.Method == http.MethodGet {
		next = r.URL.RequestURI()
	}
	redirect(w, r, loginURL(next))
}

// apiFailed turns a failed round trip into the right response.
// back is where a failed form submission returns to; empty renders an error page.
func (b base) apiFailed(w http.ResponseWriter, r *http.Request, err error, back string) {
	switch {
	case errors.Is(err, apiclient.ErrUnauthorized):
		log.Printf("level=info msg=\"api rejected session\" request_id=%s path=%s", RequestIDFrom(r.Context()), r.URL.Path)
		b.expire(w, r)
		return
	case errors.Is(err, apiclient.ErrNotFound) && back == "":
		b.notFound(w, r)
		return
	}
	log.Printf("level=warn msg=\"api call failed\" request_id=%s method=%s path=%s err=%v", RequestIDFrom(r.Context()), r.Method, r.URL.Path, err)
	if back == "" {
		v := b.view(w, r, "Something went wrong")
		v.Data = apiclient.UserMessage(err)
		b.render(w, r, http.StatusBadGateway, "error", v)
		return
	}
	b.flash(w, r, "error", apiclient.UserMessage(err))
	redirect(w, r, back)
}

// formFailed reports whether err carried field errors; they are merged into errs for re-rendering.
func formFailed(err error, errs *validation.Errors) bool {
	fields := apiclient.FieldErrors(err)
	if len(fields) == 0 {
		return false
	}
	if *errs == nil {
		*errs = validation.Errors{}
	}
	errs.Merge(fields)
	return true
}

func (b base) publish(r *http.Request, typ, msg string, data any) {
	if b.d.Hub == nil {
		return
	}
	actor := ""
	if s := SessionFrom(r.Context()); s != nil {
		actor = s.Name
	}
	b.d.Hub.Publish(events.MakeEvent(RequestIDFrom(r.Context()), typ, actor, msg, data))
}

// options loads a dropdown, logging instead of failing the page when lookups are down.
func (b base) options(r *http.Request, slug string) []domain.Option {
	if b.d.Lookup == nil {
		return nil
	}
	opts, err := b.d.Lookup.Options(r.Context(), slug)
	if err != nil {
		log.Printf("level=warn msg=\"lookup failed\" request_id=%s kind=%s err=%v", RequestIDFrom(r.Context()), slug, err)
	}
	return opts
}
