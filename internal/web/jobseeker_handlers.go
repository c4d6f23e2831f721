package web

import (
	"errors"
	"io"
	"log"
	"net/http"

	"golang.org/x/sync/errgroup"

	"jobportal/internal/apiclient"
	"jobportal/internal/domain"
	"jobportal/internal/paging"
	"jobportal/internal/report"
	"jobportal/internal/validation"
)

type JobseekerHandler struct{ base }

type jobseekerDashboard struct {
	Profile    domain.Jobseeker
	Done       int
	Total      int
	Recent     []domain.Application
	Applied    int
	LoadFailed bool
}

func (h JobseekerHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var data jobseekerDashboard
	var profileErr, appsErr error

	var g errgroup.Group
	g.Go(func() error {
		data.Profile, profileErr = h.d.API.Profile(ctx)
		return nil
	})
	g.Go(func() error {
		page, err := h.d.API.MyApplications().List(ctx, apiclient.ListQuery{Page: 1, Limit: 5})
		appsErr = err
		if err == nil {
			data.Recent = page.Items
			data.Applied = page.Meta.Total
		}
		return nil
	})
	_ = g.Wait()

	for _, err := range []error{profileErr, appsErr} {
		if errors.Is(err, apiclient.ErrUnauthorized) {
			h.expire(w, r)
			return
		}
		if err != nil {
			data.LoadFailed = true
			log.Printf("level=warn msg=\"dashboard load failed\" request_id=%s err=%v", RequestIDFrom(ctx), err)
		}
	}
	data.Done, data.Total = data.Profile.Completion()

	v := h.view(w, r, "My dashboard")
	v.Data = data
	h.render(w, r, http.StatusOK, "js_dashboard", v)
}

func (h JobseekerHandler) Profile(w http.ResponseWriter, r *http.Request) {
	p, err := h.d.API.Profile(r.Context())
	if err != nil {
		h.apiFailed(w, r, err, "")
		return
	}
	v := h.view(w, r, "My profile")
	v.Data = p
	h.render(w, r, http.StatusOK, "js_profile", v)
}

type sectionData struct {
	Section      domain.ProfileSection
	Profile      domain.Jobseeker
	Zones        []domain.Option
	DegreeLevels []domain.Option
	Institutions []domain.Option
	Skills       []domain.Option
}

var sectionTitles = map[domain.ProfileSection]string{
	domain.SectionPersonal:   "Personal information",
	domain.SectionAddress:    "Address",
	domain.SectionEducation:  "Education",
	domain.SectionExperience: "Experience",
	domain.SectionSkills:     "Skills",
}

func sectionPath(sec domain.ProfileSection) string { return "/jobseeker/profile/" + string(sec) }

// sectionForm prefills the edit form of a single-valued section; repeated sections start empty.
func sectionForm(sec domain.ProfileSection, p domain.Jobseeker) any {
	switch sec {
	case domain.SectionPersonal:
		f := validation.PersonalFormFrom(p.Personal)
		if f.FullName == "" {
			f.FullName, f.Email, f.Mobile = p.User.Name, p.User.Email, p.User.Mobile
		}
		return f
	case domain.SectionAddress:
		return validation.AddressFormFrom(p.Address)
	case domain.SectionEducation:
		return validation.EducationForm{}
	case domain.SectionExperience:
		return validation.ExperienceForm{}
	default:
		ids := make([]int64, 0, len(p.Skills))
		for _, s := range p.Skills {
			ids = append(ids, s.ID)
		}
		return validation.SkillsForm{SkillIDs: ids}
	}
}

func (h JobseekerHandler) section(w http.ResponseWriter, r *http.Request) (domain.ProfileSection, bool) {
	sec, ok := domain.ParseProfileSection(r.PathValue("section"))
	if !ok {
		h.notFound(w, r)
	}
	return sec, ok
}

func (h JobseekerHandler) Section(w http.ResponseWriter, r *http.Request) {
	sec, ok := h.section(w, r)
	if !ok {
		return
	}
	h.renderSection(w, r, http.StatusOK, sec, nil, nil)
}

// renderSection reloads the profile; f == nil means prefill from it.
func (h JobseekerHandler) renderSection(w http.ResponseWriter, r *http.Request, status int, sec domain.ProfileSection, f any, errs validation.Errors) {
	p, err := h.d.API.Profile(r.Context())
	if err != nil {
		h.apiFailed(w, r, err, "")
		return
	}
	if f == nil {
		f = sectionForm(sec, p)
	}
	data := sectionData{Section: sec, Profile: p}
	switch sec {
	case domain.SectionAddress:
		data.Zones = h.options(r, "zones")
	case domain.SectionEducation:
		data.DegreeLevels = h.options(r, "degree-levels")
		data.Institutions = h.options(r, "institutions")
	case domain.SectionSkills:
		data.Skills = h.options(r, "skills")
	}
	v := h.view(w, r, sectionTitles[sec])
	v.Form = f
	v.Errors = errs
	v.Data = data
	h.render(w, r, status, "js_section", v)
}

// SaveSection replaces a single-valued section or appends an entry to a repeated one.
func (h JobseekerHandler) SaveSection(w http.ResponseWriter, r *http.Request) {
	sec, ok := h.section(w, r)
	if !ok {
		return
	}
	values := postForm(r)

	var (
		form    any
		payload any
		errs    validation.Errors
	)
	switch sec {
	case domain.SectionPersonal:
		var f validation.PersonalForm
		errs = validation.Bind(values, &f)
		form, payload = f, f.Payload()
	case domain.SectionAddress:
		var f validation.AddressForm
		errs = validation.Bind(values, &f)
		form, payload = f, f.Payload()
	case domain.SectionEducation:
		var f validation.EducationForm
		errs = validation.Bind(values, &f)
		form, payload = f, f.Payload()
	case domain.SectionExperience:
		var f validation.ExperienceForm
		errs = validation.Bind(values, &f)
		form, payload = f, f.Payload()
	case domain.SectionSkills:
		var f validation.SkillsForm
		errs = validation.Bind(values, &f)
		form, payload = f, f.Payload()
	}
	if errs != nil {
		h.renderSection(w, r, http.StatusUnprocessableEntity, sec, form, errs)
		return
	}

	var err error
	if sec.Repeated() {
		err = h.d.API.AddProfileEntry(r.Context(), sec, payload)
	} else {
		err = h.d.API.UpdateProfileSection(r.Context(), sec, payload)
	}
	if err != nil {
		if formFailed(err, &errs) {
			h.renderSection(w, r, http.StatusUnprocessableEntity, sec, form, errs)
			return
		}
		h.apiFailed(w, r, err, sectionPath(sec))
		return
	}
	if sec.Repeated() {
		h.flash(w, r, "success", sectionTitles[sec]+" entry added.")
		redirect(w, r, sectionPath(sec))
		return
	}
	h.flash(w, r, "success", sectionTitles[sec]+" saved.")
	redirect(w, r, "/jobseeker/profile")
}

func (h JobseekerHandler) DeleteEntry(w http.ResponseWriter, r *http.Request) {
	sec, ok := h.section(w, r)
	if !ok {
		return
	}
	id, ok := pathID(r, "id")
	if !ok || !sec.Repeated() {
		h.notFound(w, r)
		return
	}
	if err := h.d.API.DeleteProfileEntry(r.Context(), sec, id); err != nil {
		h.apiFailed(w, r, err, sectionPath(sec))
		return
	}
	h.flash(w, r, "success", sectionTitles[sec]+" entry removed.")
	redirect(w, r, sectionPath(sec))
}

type applicationsData struct {
	Applications []domain.Application
	Status       domain.ApplicationStatus
}

func (h JobseekerHandler) Applications(w http.ResponseWriter, r *http.Request) {
	lq := h.listQuery(r)
	st, ok := domain.ParseApplicationStatus(r.URL.Query().Get("status"))
	if ok {
		lq.Filters = map[string]string{"status": string(st)}
	}
	page, err := h.d.API.MyApplications().List(r.Context(), lq)
	if err != nil {
		h.apiFailed(w, r, err, "")
		return
	}
	v := h.view(w, r, "My applications")
	v.Data = applicationsData{Applications: page.Items, Status: st}
	v.Pager = paging.New(page.Meta, r.URL.Path, r.URL.Query())
	h.render(w, r, http.StatusOK, "js_applications", v)
}

// Apply submits an application after checking the circular is open, the post belongs to it
// and the profile has its personal section filled in.
func (h JobseekerHandler) Apply(w http.ResponseWriter, r *http.Request) {
	var f validation.ApplyForm
	if errs := validation.Bind(postForm(r), &f); errs != nil {
		h.flash(w, r, "error", "Choose a post to apply for.")
		redirect(w, r, backTo(r, "/circulars"))
		return
	}
	back := "/circulars/" + itoa(f.CircularID)

	c, err := h.d.API.Circulars().Get(r.Context(), f.CircularID)
	if err != nil {
		h.apiFailed(w, r, err, back)
		return
	}
	if !c.Open(h.d.now()) {
		h.flash(w, r, "error", "Applications for this circular are closed.")
		redirect(w, r, back)
		return
	}
	if len(c.Posts) > 0 && !hasPost(c, f.RequestedPostID) {
		h.flash(w, r, "error", "That post is not part of this circular.")
		redirect(w, r, back)
		return
	}

	p, err := h.d.API.Profile(r.Context())
	if err != nil {
		h.apiFailed(w, r, err, back)
		return
	}
	if p.Personal.FullName == "" {
		h.flash(w, r, "error", "Complete your personal information before applying.")
		redirect(w, r, sectionPath(domain.SectionPersonal))
		return
	}

	app, err := h.d.API.Apply(r.Context(), apiclient.ApplyRequest{CircularID: f.CircularID, RequestedPostID: f.RequestedPostID})
	if err != nil {
		h.apiFailed(w, r, err, back)
		return
	}
	msg := "Application submitted."
	if app.Roll != "" {
		msg = "Application submitted. Your roll number is " + app.Roll + "."
	}
	h.flash(w, r, "success", msg)
	redirect(w, r, "/jobseeker/applications")
}

func hasPost(c domain.Circular, postID int64) bool {
	for _, p := range c.Posts {
		if p.ID == postID {
			return true
		}
	}
	return false
}

func (h JobseekerHandler) Copy(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		h.notFound(w, r)
		return
	}
	ctx := r.Context()
	var (
		app        domain.Application
		profile    domain.Jobseeker
		appErr     error
		profileErr error
	)
	var g errgroup.Group
	g.Go(func() error { app, appErr = h.d.API.MyApplication(ctx, id); return nil })
	g.Go(func() error { profile, profileErr = h.d.API.Profile(ctx); return nil })
	_ = g.Wait()
	if err := errors.Join(appErr, profileErr); err != nil {
		h.apiFailed(w, r, err, "")
		return
	}
	now := h.d.now()
	writePDF(w, r, report.Filename("application", id), func(out io.Writer) error {
		return report.ApplicationCopy(out, app, profile, now)
	})
}

func (h JobseekerHandler) PasswordForm(w http.ResponseWriter, r *http.Request) {
	v := h.view(w, r, "Change password")
	v.Form = validation.ChangePasswordForm{}
	h.render(w, r, http.StatusOK, "js_password", v)
}

func (h JobseekerHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var f validation.ChangePasswordForm
	errs := validation.Bind(postForm(r), &f)
	if errs == nil {
		err := h.d.API.ChangePassword(r.Context(), apiclient.PasswordChange{
			CurrentPassword: f.CurrentPassword,
			NewPassword:     f.NewPassword,
		})
		if err == nil {
			h.flash(w, r, "success", "Your password was changed.")
			redirect(w, r, "/jobseeker")
			return
		}
		if !formFailed(err, &errs) {
			var ae *apiclient.APIError
			if errors.Is(err, apiclient.ErrUnauthorized) || !errors.As(err, &ae) || ae.StatusCode < 400 || ae.StatusCode >= 500 {
				h.apiFailed(w, r, err, "/jobseeker/password")
				return
			}
			errs = validation.Errors{"_form": apiclient.UserMessage(err)}
		}
	}
	v := h.view(w, r, "Change password")
	v.Form = validation.ChangePasswordForm{}
	v.Errors = errs
	h.render(w, r, http.StatusUnprocessableEntity, "js_password", v)
}
