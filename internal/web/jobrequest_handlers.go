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

type JobRequestsHandler struct{ base }

type jobRequestFormData struct {
	ID            int64
	Organizations []domain.Option
}

type jobRequestData struct {
	Request    domain.JobRequest
	Posts      []domain.Option
	Categories []domain.Option
	Zones      []domain.Option
}

func jobRequestPath(id int64) string { return "/admin/job-requests/" + itoa(id) }

func (h JobRequestsHandler) List(w http.ResponseWriter, r *http.Request) {
	page, err := h.d.API.JobRequests().List(r.Context(), h.listQuery(r, "organization"))
	if err != nil {
		h.apiFailed(w, r, err, "")
		return
	}
	v := h.view(w, r, "Job requests")
	v.Data = page.Items
	v.Pager = paging.New(page.Meta, r.URL.Path, r.URL.Query())
	h.render(w, r, http.StatusOK, "admin_job_requests", v)
}

func (h JobRequestsHandler) New(w http.ResponseWriter, r *http.Request) {
	f := validation.JobRequestForm{RequestDate: h.d.now().Format(validation.DateLayout)}
	h.form(w, r, http.StatusOK, 0, f, nil)
}

func (h JobRequestsHandler) form(w http.ResponseWriter, r *http.Request, status int, id int64, f validation.JobRequestForm, errs validation.Errors) {
	title := "New job request"
	if id > 0 {
		title = "Edit job request"
	}
	v := h.view(w, r, title)
	v.Form = f
	v.Errors = errs
	v.Data = jobRequestFormData{ID: id, Organizations: h.options(r, "organizations")}
	h.render(w, r, status, "admin_job_request_form", v)
}

func (h JobRequestsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var f validation.JobRequestForm
	if errs := validation.Bind(postForm(r), &f); errs != nil {
		h.form(w, r, http.StatusUnprocessableEntity, 0, f, errs)
		return
	}
	jr, err := h.d.API.JobRequests().Create(r.Context(), f.Payload())
	if err != nil {
		var errs validation.Errors
		if formFailed(err, &errs) {
			h.form(w, r, http.StatusUnprocessableEntity, 0, f, errs)
			return
		}
		h.apiFailed(w, r, err, "/admin/job-requests/new")
		return
	}
	h.publish(r, events.JobRequestCreated, "Job request "+jr.MemoNo+" created", map[string]any{"id": jr.ID})
	h.flash(w, r, "success", "Job request created. Add the requested posts below.")
	redirect(w, r, jobRequestPath(jr.ID))
}

func (h JobRequestsHandler) Show(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		h.notFound(w, r)
		return
	}
	h.show(w, r, http.StatusOK, id, validation.RequestedPostForm{Quantity: 1}, nil)
}

func (h JobRequestsHandler) show(w http.ResponseWriter, r *http.Request, status int, id int64, f validation.RequestedPostForm, errs validation.Errors) {
	jr, err := h.d.API.JobRequests().Get(r.Context(), id)
	if err != nil {
		h.apiFailed(w, r, err, "")
		return
	}
	v := h.view(w, r, "Job request "+jr.MemoNo)
	v.Form = f
	v.Errors = errs
	v.Data = jobRequestData{
		Request:    jr,
		Posts:      h.options(r, "posts"),
		Categories: h.options(r, "outsourcing-categories"),
		Zones:      h.options(r, "zones"),
	}
	h.render(w, r, status, "admin_job_request", v)
}

func (h JobRequestsHandler) Edit(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		h.notFound(w, r)
		return
	}
	jr, err := h.d.API.JobRequests().Get(r.Context(), id)
	if err != nil {
		h.apiFailed(w, r, err, "")
		return
	}
	h.form(w, r, http.StatusOK, id, validation.JobRequestFormFrom(jr), nil)
}

func (h JobRequestsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		h.notFound(w, r)
		return
	}
	var f validation.JobRequestForm
	if errs := validation.Bind(postForm(r), &f); errs != nil {
		h.form(w, r, http.StatusUnprocessableEntity, id, f, errs)
		return
	}
	jr, err := h.d.API.JobRequests().Update(r.Context(), id, f.Payload())
	if err != nil {
		var errs validation.Errors
		if formFailed(err, &errs) {
			h.form(w, r, http.StatusUnprocessableEntity, id, f, errs)
			return
		}
		h.apiFailed(w, r, err, jobRequestPath(id)+"/edit")
		return
	}
	h.publish(r, events.JobRequestUpdated, "Job request "+jr.MemoNo+" updated", map[string]any{"id": id})
	h.flash(w, r, "success", "Job request updated.")
	redirect(w, r, jobRequestPath(id))
}

func (h JobRequestsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		h.notFound(w, r)
		return
	}
	if err := h.d.API.JobRequests().Delete(r.Context(), id); err != nil {
		h.apiFailed(w, r, err, jobRequestPath(id))
		return
	}
	h.publish(r, events.JobRequestDeleted, "Job request deleted", map[string]any{"id": id})
	h.flash(w, r, "success", "Job request deleted.")
	redirect(w, r, "/admin/job-requests")
}

// AddPost appends a requested post; validation errors re-render the detail page.
func (h JobRequestsHandler) AddPost(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		h.notFound(w, r)
		return
	}
	var f validation.RequestedPostForm
	if errs := validation.Bind(postForm(r), &f); errs != nil {
		h.show(w, r, http.StatusUnprocessableEntity, id, f, errs)
		return
	}
	p, err := h.d.API.AddRequestedPost(r.Context(), id, apiclient.RequestedPostInput{
		PostID:     f.PostID,
		CategoryID: f.CategoryID,
		ZoneID:     f.ZoneID,
		Quantity:   f.Quantity,
		Salary:     f.Salary,
	})
	if err != nil {
		var errs validation.Errors
		if formFailed(err, &errs) {
			h.show(w, r, http.StatusUnprocessableEntity, id, f, errs)
			return
		}
		h.apiFailed(w, r, err, jobRequestPath(id))
		return
	}
	h.publish(r, events.JobRequestUpdated, "Post "+p.Post.Name+" added", map[string]any{"id": id, "postId": p.ID})
	h.flash(w, r, "success", "Requested post added.")
	redirect(w, r, jobRequestPath(id))
}

func (h JobRequestsHandler) Report(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		h.notFound(w, r)
		return
	}
	jr, err := h.d.API.JobRequests().Get(r.Context(), id)
	if err != nil {
		h.apiFailed(w, r, err, "")
		return
	}
	now := h.d.now()
	writePDF(w, r, report.Filename("job-request", id), func(out io.Writer) error {
		return report.JobRequestSummary(out, jr, now)
	})
}
