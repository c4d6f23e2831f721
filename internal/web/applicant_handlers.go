package web

import (
	"net/http"

	"jobportal/internal/domain"
	"jobportal/internal/events"
	"jobportal/internal/paging"
	"jobportal/internal/validation"
)

type ApplicantsHandler struct{ base }

type applicantsData struct {
	Applications []domain.Application
	Status       domain.ApplicationStatus
}

func (h ApplicantsHandler) List(w http.ResponseWriter, r *http.Request) {
	lq := h.listQuery(r, "requestedPostId", "circularId")
	st, ok := domain.ParseApplicationStatus(r.URL.Query().Get("status"))
	if ok {
		if lq.Filters == nil {
			lq.Filters = map[string]string{}
		}
		lq.Filters["status"] = string(st)
	}
	page, err := h.d.API.Applications().List(r.Context(), lq)
	if err != nil {
		h.apiFailed(w, r, err, "")
		return
	}
	v := h.view(w, r, "Applicants")
	v.Data = applicantsData{Applications: page.Items, Status: st}
	v.Pager = paging.New(page.Meta, r.URL.Path, r.URL.Query())
	h.render(w, r, http.StatusOK, "admin_applicants", v)
}

func (h ApplicantsHandler) Show(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		h.notFound(w, r)
		return
	}
	app, err := h.d.API.Applications().Get(r.Context(), id)
	if err != nil {
		h.apiFailed(w, r, err, "")
		return
	}
	v := h.view(w, r, "Application "+app.Roll)
	v.Data = app
	h.render(w, r, http.StatusOK, "admin_applicant", v)
}

// Status records a decision. Selected and rejected are final.
func (h ApplicantsHandler) Status(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		h.notFound(w, r)
		return
	}
	var f validation.StatusForm
	errs := validation.Bind(postForm(r), &f)
	back := backTo(r, "/admin/applicants/"+itoa(id))
	to, valid := domain.ParseApplicationStatus(f.Status)
	if errs != nil || !valid {
		h.flash(w, r, "error", "Choose a valid status.")
		redirect(w, r, back)
		return
	}

	cur, err := h.d.API.Applications().Get(r.Context(), id)
	if err != nil {
		h.apiFailed(w, r, err, back)
		return
	}
	if cur.Status.Final() {
		h.flash(w, r, "error", "A decision was already recorded for this application.")
		redirect(w, r, back)
		return
	}
	if cur.Status == to {
		h.flash(w, r, "info", "Status unchanged.")
		redirect(w, r, back)
		return
	}
	if _, err := h.d.API.UpdateApplicationStatus(r.Context(), id, to); err != nil {
		h.apiFailed(w, r, err, back)
		return
	}
	msg := "Application " + cur.Roll + " marked " + to.Label()
	h.publish(r, events.ApplicationStatusChanged, msg, map[string]any{"id": id, "status": to})
	h.flash(w, r, "success", msg+".")
	redirect(w, r, back)
}
