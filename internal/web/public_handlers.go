package web

import (
	"net/http"

	"jobportal/internal/apiclient"
	"jobportal/internal/domain"
	"jobportal/internal/paging"
	"jobportal/internal/validation"
)

type PublicHandler struct{ base }

type homeData struct {
	Circulars []domain.Circular
	Total     int
}

// Home lists the latest circulars still open for applications.
func (h PublicHandler) Home(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		h.notFound(w, r)
		return
	}
	page, err := h.d.API.Circulars().List(r.Context(), apiclient.ListQuery{Page: 1, Limit: 6})
	if err != nil {
		h.apiFailed(w, r, err, "")
		return
	}
	now := h.d.now()
	data := homeData{Total: page.Meta.Total}
	for _, c := range page.Items {
		if c.Open(now) {
			data.Circulars = append(data.Circulars, c)
		}
	}
	v := h.view(w, r, "Find your next job")
	v.Data = data
	h.render(w, r, http.StatusOK, "home", v)
}

func (h PublicHandler) Circulars(w http.ResponseWriter, r *http.Request) {
	lq := h.listQuery(r, "organization")
	page, err := h.d.API.Circulars().List(r.Context(), lq)
	if err != nil {
		h.apiFailed(w, r, err, "")
		return
	}
	v := h.view(w, r, "Job circulars")
	v.Data = page.Items
	v.Pager = paging.New(page.Meta, r.URL.Path, r.URL.Query())
	h.render(w, r, http.StatusOK, "circulars", v)
}

type circularData struct {
	Circular domain.Circular
	Open     bool
	CanApply bool
}

func (h PublicHandler) Circular(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		h.notFound(w, r)
		return
	}
	c, err := h.d.API.Circulars().Get(r.Context(), id)
	if err != nil {
		h.apiFailed(w, r, err, "")
		return
	}
	open := c.Open(h.d.now())
	v := h.view(w, r, c.Title)
	v.Data = circularData{Circular: c, Open: open, CanApply: open && v.IsJobseeker()}
	v.Form = validation.ApplyForm{CircularID: c.ID}
	h.render(w, r, http.StatusOK, "circular", v)
}

var staticPages = map[string]string{
	"about":   "About us",
	"contact": "Contact",
	"faq":     "Frequently asked questions",
}

func (h PublicHandler) Page(w http.ResponseWriter, r *http.Request) {
	slug := r.PathValue("slug")
	title, ok := staticPages[slug]
	if !ok {
		h.notFound(w, r)
		return
	}
	h.render(w, r, http.StatusOK, "page_"+slug, h.view(w, r, title))
}
