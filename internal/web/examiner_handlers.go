package web

import (
	"net/http"

	"jobportal/internal/events"
	"jobportal/internal/paging"
	"jobportal/internal/validation"
)

type ExaminersHandler struct{ base }

func (h ExaminersHandler) List(w http.ResponseWriter, r *http.Request) {
	page, err := h.d.API.Examiners().List(r.Context(), h.listQuery(r))
	if err != nil {
		h.apiFailed(w, r, err, "")
		return
	}
	v := h.view(w, r, "Examiners")
	v.Data = page.Items
	v.Pager = paging.New(page.Meta, r.URL.Path, r.URL.Query())
	h.render(w, r, http.StatusOK, "admin_examiners", v)
}

func (h ExaminersHandler) form(w http.ResponseWriter, r *http.Request, status int, id int64, f validation.ExaminerForm, errs validation.Errors) {
	title := "New examiner"
	if id > 0 {
		title = "Edit examiner"
	}
	v := h.view(w, r, title)
	v.Form = f
	v.Errors = errs
	v.Data = id
	h.render(w, r, status, "admin_examiner_form", v)
}

func (h ExaminersHandler) New(w http.ResponseWriter, r *http.Request) {
	h.form(w, r, http.StatusOK, 0, validation.ExaminerForm{Active: true}, nil)
}

func (h ExaminersHandler) Edit(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		h.notFound(w, r)
		return
	}
	e, err := h.d.API.Examiners().Get(r.Context(), id)
	if err != nil {
		h.apiFailed(w, r, err, "")
		return
	}
	h.form(w, r, http.StatusOK, id, validation.ExaminerFormFrom(e), nil)
}

// Save handles both create (no id in the path) and update.
func (h ExaminersHandler) Save(w http.ResponseWriter, r *http.Request) {
	var id int64
	if r.PathValue("id") != "" {
		var ok bool
		if id, ok = pathID(r, "id"); !ok {
			h.notFound(w, r)
			return
		}
	}
	var f validation.ExaminerForm
	if errs := validation.Bind(postForm(r), &f); errs != nil {
		h.form(w, r, http.StatusUnprocessableEntity, id, f, errs)
		return
	}

	var err error
	if id == 0 {
		_, err = h.d.API.Examiners().Create(r.Context(), f.Examiner())
	} else {
		_, err = h.d.API.Examiners().Update(r.Context(), id, f.Examiner())
	}
	if err != nil {
		var errs validation.Errors
		if formFailed(err, &errs) {
			h.form(w, r, http.StatusUnprocessableEntity, id, f, errs)
			return
		}
		h.apiFailed(w, r, err, "/admin/examiners")
		return
	}
	msg := "Examiner saved."
	if id == 0 {
		msg = "Examiner added."
	}
	h.publish(r, events.ExaminerChanged, msg, map[string]any{"id": id})
	h.flash(w, r, "success", msg)
	redirect(w, r, "/admin/examiners")
}

func (h ExaminersHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		h.notFound(w, r)
		return
	}
	if err := h.d.API.Examiners().Delete(r.Context(), id); err != nil {
		h.apiFailed(w, r, err, "/admin/examiners")
		return
	}
	h.publish(r, events.ExaminerChanged, "Examiner removed", map[string]any{"id": id})
	h.flash(w, r, "success", "Examiner deleted.")
	redirect(w, r, "/admin/examiners")
}
