package web

import (
	"log"
	"net/http"

	"jobportal/internal/domain"
	"jobportal/internal/events"
	"jobportal/internal/paging"
	"jobportal/internal/validation"
)

// MasterHandler serves the same CRUD screens for every master data kind.
type MasterHandler struct{ base }

type masterData struct {
	Kind    domain.MasterKind
	Records []domain.MasterRecord
	EditID  int64
}

func (h MasterHandler) kind(w http.ResponseWriter, r *http.Request) (domain.MasterKind, bool) {
	k, ok := domain.LookupMasterKind(r.PathValue("kind"))
	if !ok {
		h.notFound(w, r)
	}
	return k, ok
}

func masterPath(k domain.MasterKind) string { return "/admin/master/" + k.Slug }

func (h MasterHandler) List(w http.ResponseWriter, r *http.Request) {
	k, ok := h.kind(w, r)
	if !ok {
		return
	}
	h.list(w, r, http.StatusOK, k, validation.MasterForm{Active: true}, nil)
}

// list renders the collection with the inline create form.
func (h MasterHandler) list(w http.ResponseWriter, r *http.Request, status int, k domain.MasterKind, f validation.MasterForm, errs validation.Errors) {
	page, err := h.d.API.Master(k).List(r.Context(), h.listQuery(r))
	if err != nil {
		h.apiFailed(w, r, err, "")
		return
	}
	v := h.view(w, r, k.Title)
	v.Form = f
	v.Errors = errs
	v.Data = masterData{Kind: k, Records: page.Items}
	v.Pager = paging.New(page.Meta, r.URL.Path, r.URL.Query())
	h.render(w, r, status, "admin_master", v)
}

func (h MasterHandler) Create(w http.ResponseWriter, r *http.Request) {
	k, ok := h.kind(w, r)
	if !ok {
		return
	}
	var f validation.MasterForm
	errs := validation.Decode(postForm(r), &f)
	if errs == nil {
		errs = validation.CheckMaster(&f, k)
	}
	if errs != nil {
		h.list(w, r, http.StatusUnprocessableEntity, k, f, errs)
		return
	}
	if _, err := h.d.API.Master(k).Create(r.Context(), f.Record()); err != nil {
		if formFailed(err, &errs) {
			h.list(w, r, http.StatusUnprocessableEntity, k, f, errs)
			return
		}
		h.apiFailed(w, r, err, masterPath(k))
		return
	}
	h.changed(r, k, k.Singular+" "+f.Name+" added")
	h.flash(w, r, "success", k.Singular+" added.")
	redirect(w, r, masterPath(k))
}

func (h MasterHandler) Edit(w http.ResponseWriter, r *http.Request) {
	k, ok := h.kind(w, r)
	if !ok {
		return
	}
	id, ok := pathID(r, "id")
	if !ok {
		h.notFound(w, r)
		return
	}
	rec, err := h.d.API.Master(k).Get(r.Context(), id)
	if err != nil {
		h.apiFailed(w, r, err, "")
		return
	}
	h.edit(w, r, http.StatusOK, k, id, validation.MasterFormFrom(rec), nil)
}

func (h MasterHandler) edit(w http.ResponseWriter, r *http.Request, status int, k domain.MasterKind, id int64, f validation.MasterForm, errs validation.Errors) {
	v := h.view(w, r, "Edit "+k.Singular)
	v.Form = f
	v.Errors = errs
	v.Data = masterData{Kind: k, EditID: id}
	h.render(w, r, status, "admin_master_form", v)
}

func (h MasterHandler) Update(w http.ResponseWriter, r *http.Request) {
	k, ok := h.kind(w, r)
	if !ok {
		return
	}
	id, ok := pathID(r, "id")
	if !ok {
		h.notFound(w, r)
		return
	}
	var f validation.MasterForm
	errs := validation.Decode(postForm(r), &f)
	if errs == nil {
		errs = validation.CheckMaster(&f, k)
	}
	if errs != nil {
		h.edit(w, r, http.StatusUnprocessableEntity, k, id, f, errs)
		return
	}
	if _, err := h.d.API.Master(k).Update(r.Context(), id, f.Record()); err != nil {
		if formFailed(err, &errs) {
			h.edit(w, r, http.StatusUnprocessableEntity, k, id, f, errs)
			return
		}
		h.apiFailed(w, r, err, masterPath(k)+"/"+itoa(id))
		return
	}
	h.changed(r, k, k.Singular+" "+f.Name+" updated")
	h.flash(w, r, "success", k.Singular+" updated.")
	redirect(w, r, masterPath(k))
}

func (h MasterHandler) Delete(w http.ResponseWriter, r *http.Request) {
	k, ok := h.kind(w, r)
	if !ok {
		return
	}
	id, ok := pathID(r, "id")
	if !ok {
		h.notFound(w, r)
		return
	}
	if err := h.d.API.Master(k).Delete(r.Context(), id); err != nil {
		h.apiFailed(w, r, err, masterPath(k))
		return
	}
	h.changed(r, k, k.Singular+" deleted")
	h.flash(w, r, "success", k.Singular+" deleted.")
	redirect(w, r, masterPath(k))
}

// changed drops the cached dropdown for k and notifies open admin consoles.
func (h MasterHandler) changed(r *http.Request, k domain.MasterKind, msg string) {
	if h.d.Lookup != nil {
		if err := h.d.Lookup.Invalidate(r.Context(), k.Slug); err != nil {
			log.Printf("level=warn msg=\"lookup invalidate failed\" request_id=%s kind=%s err=%v", RequestIDFrom(r.Context()), k.Slug, err)
		}
	}
	h.publish(r, events.MasterDataChanged, msg, map[string]any{"kind": k.Slug})
}

