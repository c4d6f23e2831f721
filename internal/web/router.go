package web

import (
	"io/fs"
	"net/http"

	"jobportal/internal/domain"
)

// NewMux returns the raw mux so main() can still attach /internal/shutdown (needs srv+token).
func NewMux(d Deps) (*http.ServeMux, error) {
	views, err := NewRenderer()
	if err != nil {
		return nil, err
	}
	b := base{d: d, views: views, sess: sessions{d: d}}
	admin := func(h http.HandlerFunc) http.HandlerFunc { return b.sess.RequireRole(domain.RoleAdmin, h) }
	seeker := func(h http.HandlerFunc) http.HandlerFunc { return b.sess.RequireRole(domain.RoleJobseeker, h) }

	mux := http.NewServeMux()

	static, err := fs.Sub(staticFS, "static")
	if err != nil {
		return nil, err
	}
	mux.Handle("/static/", http.StripPrefix("/static/", http.FileServerFS(static)))

	// Public
	ph := PublicHandler{b}
	mux.HandleFunc("/", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: ph.Home,
	}))
	mux.HandleFunc("/circulars", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: ph.Circulars,
	}))
	mux.HandleFunc("/circulars/{id}", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: ph.Circular,
	}))
	mux.HandleFunc("/pages/{slug}", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: ph.Page,
	}))

	// Auth
	ah := AuthHandler{b}
	mux.HandleFunc("/login", methodMux(map[string]http.HandlerFunc{
		http.MethodGet:  b.sess.GuestOnly(ah.LoginForm),
		http.MethodPost: b.sess.GuestOnly(ah.Login),
	}))
	mux.HandleFunc("/signup", methodMux(map[string]http.HandlerFunc{
		http.MethodGet:  b.sess.GuestOnly(ah.SignupForm),
		http.MethodPost: b.sess.GuestOnly(ah.Signup),
	}))
	mux.HandleFunc("/logout", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: ah.Logout,
	}))

	// Admin console
	adm := AdminHandler{b}
	mux.HandleFunc("/admin", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: admin(adm.Dashboard),
	}))

	jr := JobRequestsHandler{b}
	mux.HandleFunc("/admin/job-requests", methodMux(map[string]http.HandlerFunc{
		http.MethodGet:  admin(jr.List),
		http.MethodPost: admin(jr.Create),
	}))
	mux.HandleFunc("/admin/job-requests/new", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: admin(jr.New),
	}))
	mux.HandleFunc("/admin/job-requests/{id}", methodMux(map[string]http.HandlerFunc{
		http.MethodGet:  admin(jr.Show),
		http.MethodPost: admin(jr.Update),
	}))
	mux.HandleFunc("/admin/job-requests/{id}/edit", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: admin(jr.Edit),
	}))
	mux.HandleFunc("/admin/job-requests/{id}/delete", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: admin(jr.Delete),
	}))
	mux.HandleFunc("/admin/job-requests/{id}/posts", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: admin(jr.AddPost),
	}))
	mux.HandleFunc("/admin/job-requests/{id}/report.pdf", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: admin(jr.Report),
	}))

	ps := PostsHandler{b}
	mux.HandleFunc("/admin/requested-posts", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: admin(ps.List),
	}))
	mux.HandleFunc("/admin/requested-posts/{id}/status", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: admin(ps.Status),
	}))
	mux.HandleFunc("/admin/requested-posts/{id}/applicants.pdf", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: admin(ps.ApplicantsPDF),
	}))

	ap := ApplicantsHandler{b}
	mux.HandleFunc("/admin/applicants", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: admin(ap.List),
	}))
	mux.HandleFunc("/admin/applicants/{id}", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: admin(ap.Show),
	}))
	mux.HandleFunc("/admin/applicants/{id}/status", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: admin(ap.Status),
	}))

	ex := ExaminersHandler{b}
	mux.HandleFunc("/admin/examiners", methodMux(map[string]http.HandlerFunc{
		http.MethodGet:  admin(ex.List),
		http.MethodPost: admin(ex.Save),
	}))
	mux.HandleFunc("/admin/examiners/new", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: admin(ex.New),
	}))
	mux.HandleFunc("/admin/examiners/{id}", methodMux(map[string]http.HandlerFunc{
		http.MethodGet:  admin(ex.Edit),
		http.MethodPost: admin(ex.Save),
	}))
	mux.HandleFunc("/admin/examiners/{id}/delete", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: admin(ex.Delete),
	}))

	mh := MasterHandler{b}
	mux.HandleFunc("/admin/master/{kind}", methodMux(map[string]http.HandlerFunc{
		http.MethodGet:  admin(mh.List),
		http.MethodPost: admin(mh.Create),
	}))
	mux.HandleFunc("/admin/master/{kind}/{id}", methodMux(map[string]http.HandlerFunc{
		http.MethodGet:  admin(mh.Edit),
		http.MethodPost: admin(mh.Update),
	}))
	mux.HandleFunc("/admin/master/{kind}/{id}/delete", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: admin(mh.Delete),
	}))

	if d.Hub != nil {
		eh := EventsHandler{Hub: d.Hub}
		mux.HandleFunc("/admin/events", methodMux(map[string]http.HandlerFunc{
			http.MethodGet: admin(eh.ServeSSE),
		}))
	}

	sh := SettingsHandler{d: d}
	mux.HandleFunc("/admin/settings", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: admin(sh.Get),
		http.MethodPut: admin(sh.Put),
	}))
	sec := SecretsHandler{d: d}
	mux.HandleFunc("/admin/settings/service-token", methodMux(map[string]http.HandlerFunc{
		http.MethodGet:    admin(sec.GetServiceToken),
		http.MethodPut:    admin(sec.SetServiceToken),
		http.MethodDelete: admin(sec.DeleteServiceToken),
	}))

	// Jobseeker console
	js := JobseekerHandler{b}
	mux.HandleFunc("/jobseeker", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: seeker(js.Dashboard),
	}))
	mux.HandleFunc("/jobseeker/profile", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: seeker(js.Profile),
	}))
	mux.HandleFunc("/jobseeker/profile/{section}", methodMux(map[string]http.HandlerFunc{
		http.MethodGet:  seeker(js.Section),
		http.MethodPost: seeker(js.SaveSection),
	}))
	mux.HandleFunc("/jobseeker/profile/{section}/{id}/delete", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: seeker(js.DeleteEntry),
	}))
	mux.HandleFunc("/jobseeker/applications", methodMux(map[string]http.HandlerFunc{
		http.MethodGet:  seeker(js.Applications),
		http.MethodPost: seeker(js.Apply),
	}))
	mux.HandleFunc("/jobseeker/applications/{id}/copy.pdf", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: seeker(js.Copy),
	}))
	mux.HandleFunc("/jobseeker/password", methodMux(map[string]http.HandlerFunc{
		http.MethodGet:  seeker(js.PasswordForm),
		http.MethodPost: seeker(js.ChangePassword),
	}))

	// Ops
	hh := HealthHandler{d: d}
	mux.HandleFunc("/health", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: hh.Health,
	}))
	dh := DBHandler{d: d}
	mux.HandleFunc("/internal/checkpoint", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: RequireOps(d.OpsToken, dh.Checkpoint),
	}))

	return mux, nil
}

// Wrap applies the middleware stack every request goes through.
func Wrap(d Deps, h http.Handler) http.Handler {
	s := sessions{d: d}
	return Chain(h, RequestID, AccessLog, Recover, SecurityHeaders, s.Load, s.CSRF)
}
