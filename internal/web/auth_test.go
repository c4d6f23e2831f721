package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"testing"
	"time"

	"jobportal/internal/apiclient"
	"jobportal/internal/domain"
	"jobportal/internal/store"
)

func loginAPI(role domain.Role) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var c apiclient.Credentials
		_ = json.NewDecoder(r.Body).Decode(&c)
		if c.Password != "secret123" {
			writeEnvelope(w, http.StatusUnauthorized, nil, nil, "Invalid credentials")
			return
		}
		writeEnvelope(w, http.StatusOK, apiclient.LoginResult{
			Token: "user-token",
			User:  domain.User{ID: 3, Name: "Rahim", Email: c.Email, Role: role},
		}, nil, "ok")
	})
	return mux
}

func TestAnonymousRedirectedToLogin(t *testing.T) {
	app := newTestApp(t, http.NotFoundHandler())

	assertRedirect(t, app.get("/admin/job-requests?page=2"), "/login?next=%2Fadmin%2Fjob-requests%3Fpage%3D2")
	assertRedirect(t, app.get("/jobseeker/profile"), "/login?next=%2Fjobseeker%2Fprofile")
}

func TestWrongRoleGoesHome(t *testing.T) {
	app := newTestApp(t, http.NotFoundHandler())
	c, _ := app.signIn("jobseeker", "tok")

	assertRedirect(t, app.get("/admin", c), "/jobseeker")
	fl := app.flashes(c.Value)
	if len(fl) != 1 || fl[0].Kind != "error" || fl[0].Message != msgForbidden {
		t.Fatalf("flashes = %+v", fl)
	}
}

func TestSignedInUserSkipsLogin(t *testing.T) {
	app := newTestApp(t, http.NotFoundHandler())
	c, _ := app.signIn("admin", "tok")
	assertRedirect(t, app.get("/login", c), "/admin")
	assertRedirect(t, app.get("/signup", c), "/admin")
}

func TestLoginStartsSessionAndHonoursNext(t *testing.T) {
	app := newTestApp(t, loginAPI(domain.RoleAdmin))

	rec := app.post("/login", url.Values{
		"email": {"admin@example.com"}, "password": {"secret123"}, "next": {"/admin/examiners"},
	})
	assertRedirect(t, rec, "/admin/examiners")

	c := cookieNamed(rec, "portal_session")
	if c == nil || c.Value == "" || !c.HttpOnly {
		t.Fatalf("session cookie = %+v", c)
	}
	s, err := store.GetSession(context.Background(), app.db.Pool, c.Value, testNow)
	if err != nil {
		t.Fatal(err)
	}
	if s.APIToken != "user-token" || s.Role != "admin" || s.CSRF == "" {
		t.Fatalf("session = %+v", s)
	}
	if fl := app.flashes(c.Value); len(fl) != 1 || !strings.Contains(fl[0].Message, "Rahim") {
		t.Fatalf("flashes = %+v", fl)
	}
}

func TestLoginIgnoresForeignNext(t *testing.T) {
	cases := map[string]string{
		"//evil.example/x":     "/jobseeker",
		"https://evil.example": "/jobseeker",
		"/admin":               "/jobseeker", // not allowed for the role
		"/circulars/4":         "/circulars/4",
	}
	for next, want := range cases {
		app := newTestApp(t, loginAPI(domain.RoleJobseeker))
		rec := app.post("/login", url.Values{"email": {"a@b.co"}, "password": {"secret123"}, "next": {next}})
		assertRedirect(t, rec, want)
	}
}

func TestLoginFailures(t *testing.T) {
	app := newTestApp(t, loginAPI(domain.RoleAdmin))

	rec := app.post("/login", url.Values{"email": {"admin@example.com"}, "password": {"wrong"}})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d", rec.Code)
	}
	d := doc(t, rec)
	if got := d.Find(".alert-error").Text(); got != "Invalid email or password." {
		t.Fatalf("alert = %q", got)
	}
	if v, _ := d.Find(`input[name="email"]`).Attr("value"); v != "admin@example.com" {
		t.Fatalf("email not kept: %q", v)
	}

	rec = app.post("/login", url.Values{"email": {"not-an-email"}})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d", rec.Code)
	}
	if n := doc(t, rec).Find(".field-error").Length(); n != 2 {
		t.Fatalf("field errors = %d, want 2", n)
	}
}

func TestLoginThrottled(t *testing.T) {
	app := newTestApp(t, loginAPI(domain.RoleAdmin))
	lim := app.deps.LoginLimiter
	lim.perMin, lim.burst = 1, 1
	lim.now = func() time.Time { return testNow }

	form := url.Values{"email": {"admin@example.com"}, "password": {"wrong"}}
	if rec := app.post("/login", form); rec.Code != http.StatusUnauthorized {
		t.Fatalf("first attempt status = %d", rec.Code)
	}
	rec := app.post("/login", form)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("second attempt status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Too many login attempts") {
		t.Fatal("missing throttle message")
	}
}

func TestLogoutClearsSession(t *testing.T) {
	var loggedOut bool
	api := http.NewServeMux()
	api.HandleFunc("POST /api/v1/auth/logout", func(w http.ResponseWriter, r *http.Request) {
		loggedOut = r.Header.Get("Authorization") == "Bearer tok"
		writeEnvelope(w, http.StatusOK, nil, nil, "bye")
	})
	app := newTestApp(t, api)
	c, csrf := app.signIn("admin", "tok")

	rec := app.post("/logout", url.Values{"_csrf": {csrf}}, c)
	assertRedirect(t, rec, "/")
	if !loggedOut {
		t.Fatal("api logout not called with the user token")
	}
	if _, err := store.GetSession(context.Background(), app.db.Pool, c.Value, testNow); !errors.Is(err, store.ErrSessionNotFound) {
		t.Fatalf("session still present: %v", err)
	}
	if cookieNamed(rec, flashCookie) == nil {
		t.Fatal("logout toast not queued for the anonymous visitor")
	}
}

func TestUnauthorizedAPIExpiresSession(t *testing.T) {
	api := http.NewServeMux()
	api.HandleFunc("GET /api/v1/job-requests", func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusUnauthorized, nil, nil, "token expired")
	})
	app := newTestApp(t, api)
	c, _ := app.signIn("admin", "stale")

	rec := app.get("/admin/job-requests", c)
	assertRedirect(t, rec, "/login?next=%2Fadmin%2Fjob-requests")
	if _, err := store.GetSession(context.Background(), app.db.Pool, c.Value, testNow); !errors.Is(err, store.ErrSessionNotFound) {
		t.Fatalf("session not destroyed: %v", err)
	}
	fc := cookieNamed(rec, flashCookie)
	if fc == nil {
		t.Fatal("no flash cookie")
	}

	page := app.get("/login", fc)
	if got := doc(t, page).Find(".toast-error").Text(); got != msgExpired {
		t.Fatalf("toast = %q", got)
	}
}

func TestCSRFRequiredForSessionPosts(t *testing.T) {
	app := newTestApp(t, http.NotFoundHandler())
	c, _ := app.signIn("admin", "tok")

	rec := app.post("/admin/examiners", url.Values{"name": {"X"}}, c)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d", rec.Code)
	}
	rec = app.post("/admin/examiners", url.Values{"name": {"X"}, "_csrf": {"wrong"}}, c)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestSafeNext(t *testing.T) {
	cases := map[string]string{
		"":                  "",
		"/admin?x=1":        "/admin?x=1",
		"//evil.com":        "",
		"/\\evil.com":       "",
		"http://evil.com/a": "",
		"admin":             "",
		" /circulars ":      "/circulars",
	}
	for in, want := range cases {
		if got := safeNext(in); got != want {
			t.Errorf("safeNext(%q) = %q, want %q", in, got, want)
		}
	}
}
