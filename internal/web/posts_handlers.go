package web

import (
	"io"
	"net/http"

	"jobportal/internal/apiclient"
	"jobportal/internal/domain"
	"jobportal/internal/events"
	"jobportal/internal/paging"
	"jobportal/internal/report"
	"jobportal/internal/validation"
)

type PostsHandler struct{ base }

// maxReportPages bounds how many API pages an applicant report may pull.
const maxReportPages = 50

type postsData struct {
	Posts  []domain.RequestedPost
	Status domain.PostStatus
}

func (h PostsHandler) List(w http.ResponseWriter, r *http.Request) {
	lq := h.listQuery(r, "jobRequestId", "zone")
	st, ok := domain.ParsePostStatus(r.URL.Query().Get("status"))
	if ok {
		if lq.Filters == nil {
			lq.Filters = map[string]string{}
		}
		lq.Filters["status"] = string(st)
	}
	page, err := h.d.API.RequestedPosts().List(r.Context(), lq)
	if err != nil {
		h.apiFailed(w, r, err, "")
		return
	}
	v := h.view(w, r, "Requested posts")
	v.Data = postsData{Posts: page.Items, Status: st}
	v.Pager = paging.New(page.Meta, r.URL.Path, r.URL.Query())
	h.render(w, r, http.StatusOK, "admin_requested_posts", v)
}

// Status advances a requested post one step along its lifecycle.
// Stale submissions (the post already moved) are rejected before reaching the API.
func (h PostsHandler) Status(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		h.notFound(w, r)
		return
	}
	var f validation.StatusForm
	errs := validation.Bind(postForm(r), &f)
	back := backTo(r, "/admin/requested-posts")
	to, valid := domain.ParsePostStatus(f.Status)
	if errs != nil || !valid {
		h.flash(w, r, "error", "Choose a valid status.")
		redirect(w, r, back)
		return
	}

	cur, err := h.d.API.RequestedPosts().Get(r.Context(), id)
	if err != nil {
		h.apiFailed(w, r, err, back)
		return
	}
	if !cur.Status.CanAdvanceTo(to) {
		h.flash(w, r, "error", "This post is "+cur.Status.Label()+" and cannot move to "+to.Label()+". Refresh and try again.")
		redirect(w, r, back)
		return
	}
	p, err := h.d.API.UpdateRequestedPostStatus(r.Context(), id, to)
	if err != nil {
		h.apiFailed(w, r, err, back)
		return
	}
	if p.Status == "" {
		p.Status = to
	}
	msg := cur.Post.Name + " moved to " + p.Status.Label()
	h.publish(r, events.RequestedPostStatusChanged, msg, map[string]any{"id": id, "status": p.Status})
	h.flash(w, r, "success", msg+".")
	redirect(w, r, back)
}

// ApplicantsPDF lists every applicant of a requested post, walking the API pages.
func (h PostsHandler) ApplicantsPDF(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		h.notFound(w, r)
		return
	}
	post, err := h.d.API.RequestedPosts().Get(r.Context(), id)
	if err != nil {
		h.apiFailed(w, r, err, "")
		return
	}
	apps, err := allApplications(r, h.d.API, map[string]string{"requestedPostId": itoa(id)}, h.cfg().Pagination.MaxPageSize)
	if err != nil {
		h.apiFailed(w, r, err, "")
		return
	}
	now := h.d.now()
	writePDF(w, r, report.Filename("applicants", id), func(out io.Writer) error {
		return report.ApplicantList(out, post, apps, now)
	})
}

func allApplications(r *http.Request, api *apiclient.Client, filters map[string]string, limit int) ([]domain.Application, error) {
	var out []domain.Application
	for p := 1; p <= maxReportPages; p++ {
		page, err := api.Applications().List(r.Context(), apiclient.ListQuery{Page: p, Limit: limit, Filters: filters})
		if err != nil {
			return nil, err
		}
		out = append(out, page.Items...)
		if p >= page.Meta.TotalPages || len(page.Items) == 0 {
			break
		}
	}
	return out, nil
}
