package web

import (
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"

	"jobportal/internal/apiclient"
	"jobportal/internal/domain"
	"jobportal/internal/events"
)

// fakeAPI records what the portal sent so tests can assert on it.
type fakeAPI struct {
	mu    sync.Mutex
	calls []string
	auth  []string
	query []url.Values
	body  []string
}

func (f *fakeAPI) record(r *http.Request) {
	b, _ := io.ReadAll(r.Body)
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, r.Method+" "+r.URL.Path)
	f.auth = append(f.auth, r.Header.Get("Authorization"))
	f.query = append(f.query, r.URL.Query())
	f.body = append(f.body, string(b))
}

func (f *fakeAPI) called(call string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c == call {
			n++
		}
	}
	return n
}

func (f *fakeAPI) wrap(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f.record(r)
		h(w, r)
	}
}

func testJobRequests(n int) []domain.JobRequest {
	out := make([]domain.JobRequest, n)
	for i := range out {
		out[i] = domain.JobRequest{
			ID:           int64(i + 1),
			MemoNo:       "MEMO-" + itoa(int64(i+1)),
			Organization: domain.Ref{ID: 1, Name: "Water Board"},
			RequestDate:  time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC),
		}
	}
	return out
}

func TestJobRequestListRendersPager(t *testing.T) {
	fake := &fakeAPI{}
	api := http.NewServeMux()
	api.HandleFunc("GET /api/v1/job-requests", fake.wrap(func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusOK, testJobRequests(10), &apiclient.Meta{Page: 2, Limit: 10, Total: 45, TotalPages: 5}, "ok")
	}))
	app := newTestApp(t, api)
	c, _ := app.signIn("admin", "admin-token")

	rec := app.get("/admin/job-requests?page=2&q=water", c)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", rec.Code, rec.Body.String())
	}
	d := doc(t, rec)
	if n := d.Find("table.list tbody tr").Length(); n != 10 {
		t.Fatalf("rows = %d, want 10", n)
	}
	if got := d.Find("nav.pager .current").Text(); got != "2" {
		t.Fatalf("current page = %q", got)
	}
	if d.Find("nav.pager a.prev").Length() != 1 || d.Find("nav.pager a.next").Length() != 1 {
		t.Fatal("prev/next links missing")
	}
	href, _ := d.Find("nav.pager a.next").Attr("href")
	if !strings.Contains(href, "page=3") || !strings.Contains(href, "q=water") {
		t.Fatalf("next href = %q", href)
	}

	if fake.auth[0] != "Bearer admin-token" {
		t.Fatalf("authorization = %q", fake.auth[0])
	}
	q := fake.query[0]
	if q.Get("page") != "2" || q.Get("limit") != "10" || q.Get("search") != "water" {
		t.Fatalf("api query = %v", q)
	}
}

func postsAPI(fake *fakeAPI, current domain.PostStatus) http.Handler {
	api := http.NewServeMux()
	api.HandleFunc("GET /api/v1/requested-posts/{id}", fake.wrap(func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusOK, domain.RequestedPost{ID: 5, Post: domain.Ref{Name: "Clerk"}, Status: current}, nil, "ok")
	}))
	api.HandleFunc("PUT /api/v1/requested-posts/{id}/status", fake.wrap(func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusOK, domain.RequestedPost{ID: 5, Post: domain.Ref{Name: "Clerk"}, Status: domain.PostProcessing}, nil, "ok")
	}))
	return api
}

func TestPostStatusAdvances(t *testing.T) {
	fake := &fakeAPI{}
	app := newTestApp(t, postsAPI(fake, domain.PostPending))
	c, csrf := app.signIn("admin", "tok")
	ch := app.hub.Subscribe()
	defer app.hub.Unsubscribe(ch)

	rec := app.post("/admin/requested-posts/5/status", url.Values{
		"_csrf": {csrf}, "status": {"processing"}, "back": {"/admin/requested-posts?status=pending"},
	}, c)
	assertRedirect(t, rec, "/admin/requested-posts?status=pending")

	if fake.called("PUT /api/v1/requested-posts/5/status") != 1 {
		t.Fatalf("calls = %v", fake.calls)
	}
	var sent map[string]string
	if err := json.Unmarshal([]byte(fake.body[len(fake.body)-1]), &sent); err != nil || sent["status"] != "processing" {
		t.Fatalf("put body = %q", fake.body[len(fake.body)-1])
	}

	select {
	case msg := <-ch:
		if !strings.Contains(msg, events.RequestedPostStatusChanged) || !strings.Contains(msg, "Clerk moved to") {
			t.Fatalf("event = %s", msg)
		}
	case <-time.After(time.Second):
		t.Fatal("no event published")
	}

	fl := app.flashes(c.Value)
	if len(fl) != 1 || fl[0].Kind != "success" {
		t.Fatalf("flashes = %+v", fl)
	}
}

func TestPostStatusRejectsStaleTransition(t *testing.T) {
	fake := &fakeAPI{}
	app := newTestApp(t, postsAPI(fake, domain.PostShortlisted))
	c, csrf := app.signIn("admin", "tok")

	rec := app.post("/admin/requested-posts/5/status", url.Values{"_csrf": {csrf}, "status": {"processing"}}, c)
	assertRedirect(t, rec, "/admin/requested-posts")
	if n := fake.called("PUT /api/v1/requested-posts/5/status"); n != 0 {
		t.Fatalf("stale transition reached the api %d times", n)
	}
	fl := app.flashes(c.Value)
	if len(fl) != 1 || fl[0].Kind != "error" || !strings.Contains(fl[0].Message, "cannot move") {
		t.Fatalf("flashes = %+v", fl)
	}
}

func TestExaminerValidationStaysOnForm(t *testing.T) {
	fake := &fakeAPI{}
	api := http.NewServeMux()
	api.HandleFunc("/", fake.wrap(func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusOK, domain.Examiner{ID: 1}, nil, "ok")
	}))
	app := newTestApp(t, api)
	c, csrf := app.signIn("admin", "tok")

	rec := app.post("/admin/examiners", url.Values{
		"_csrf": {csrf}, "name": {"Al"}, "designation": {"Professor"}, "organization": {"DU"},
		"email": {"bad"}, "mobile": {"123"},
	}, c)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d", rec.Code)
	}
	d := doc(t, rec)
	if n := d.Find(".field-error").Length(); n != 3 {
		t.Fatalf("field errors = %d, want 3", n)
	}
	if v, _ := d.Find(`input[name="designation"]`).Attr("value"); v != "Professor" {
		t.Fatalf("designation not kept: %q", v)
	}
	if len(fake.calls) != 0 {
		t.Fatalf("api called: %v", fake.calls)
	}
}

func TestExaminerAPIFieldErrors(t *testing.T) {
	api := http.NewServeMux()
	api.HandleFunc("POST /api/v1/examiners", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = io.WriteString(w, `{"body":{"errors":{"email":"Email already registered"}},"message":"Validation failed","status":422}`)
	})
	app := newTestApp(t, api)
	c, csrf := app.signIn("admin", "tok")

	rec := app.post("/admin/examiners", url.Values{
		"_csrf": {csrf}, "name": {"Dr Karim"}, "designation": {"Professor"}, "organization": {"DU"},
		"email": {"karim@example.com"}, "mobile": {"01712345678"},
	}, c)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := doc(t, rec).Find(".field-error").Text(); got != "Email already registered" {
		t.Fatalf("field error = %q", got)
	}
}

func TestUnknownMasterKindIs404(t *testing.T) {
	app := newTestApp(t, http.NotFoundHandler())
	c, _ := app.signIn("admin", "tok")
	if rec := app.get("/admin/master/planets", c); rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestDashboardDegradesPerCounter(t *testing.T) {
	api := http.NewServeMux()
	api.HandleFunc("GET /api/v1/job-requests", func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusOK, testJobRequests(1), &apiclient.Meta{Page: 1, Limit: 1, Total: 12, TotalPages: 12}, "ok")
	})
	api.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusInternalServerError, nil, nil, "boom")
	})
	app := newTestApp(t, api)
	c, _ := app.signIn("admin", "tok")

	rec := app.get("/admin", c)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	vals := doc(t, rec).Find(".counter .value").Map(func(_ int, s *goquery.Selection) string { return s.Text() })
	want := []string{"–", "12", "–", "–", "–"}
	if strings.Join(vals, ",") != strings.Join(want, ",") {
		t.Fatalf("counters = %v, want %v", vals, want)
	}
}

func TestJobRequestReportIsPDF(t *testing.T) {
	api := http.NewServeMux()
	api.HandleFunc("GET /api/v1/job-requests/{id}", func(w http.ResponseWriter, r *http.Request) {
		jr := testJobRequests(1)[0]
		jr.Posts = []domain.RequestedPost{{ID: 1, Post: domain.Ref{Name: "Clerk"}, Quantity: 3, Salary: 22000, Status: domain.PostPending}}
		writeEnvelope(w, http.StatusOK, jr, nil, "ok")
	})
	app := newTestApp(t, api)
	c, _ := app.signIn("admin", "tok")

	rec := app.get("/admin/job-requests/1/report.pdf", c)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/pdf" {
		t.Fatalf("content type = %q", ct)
	}
	if !strings.Contains(rec.Header().Get("Content-Disposition"), "job-request-1.pdf") {
		t.Fatalf("disposition = %q", rec.Header().Get("Content-Disposition"))
	}
	if !strings.HasPrefix(rec.Body.String(), "%PDF-") {
		t.Fatal("body is not a PDF")
	}
}

func TestHealth(t *testing.T) {
	api := http.NewServeMux()
	api.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusOK, nil, nil, "ok")
	})
	app := newTestApp(t, api)

	rec := app.get("/health")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var got map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if got["ok"] != true || got["db"] != true {
		t.Fatalf("health = %v", got)
	}
	if rec.Header().Get("X-Request-ID") == "" {
		t.Fatal("missing request id header")
	}
}

func applicantAPI(fake *fakeAPI, cur domain.Application) http.Handler {
	api := http.NewServeMux()
	api.HandleFunc("GET /api/v1/applications/{id}", fake.wrap(func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusOK, cur, nil, "ok")
	}))
	api.HandleFunc("PUT /api/v1/applications/{id}/status", fake.wrap(func(w http.ResponseWriter, r *http.Request) {
		updated := cur
		updated.Status = domain.ApplicationShortlisted
		writeEnvelope(w, http.StatusOK, updated, nil, "ok")
	}))
	return api
}

func TestApplicantStatusFinalIsLocked(t *testing.T) {
	for _, final := range []domain.ApplicationStatus{domain.ApplicationSelected, domain.ApplicationRejected} {
		fake := &fakeAPI{}
		app := newTestApp(t, applicantAPI(fake, domain.Application{ID: 9, Roll: "R-0009", Status: final}))
		c, csrf := app.signIn("admin", "tok")

		rec := app.post("/admin/applicants/9/status", url.Values{"_csrf": {csrf}, "status": {"shortlisted"}}, c)
		assertRedirect(t, rec, "/admin/applicants/9")

		if n := fake.called("PUT /api/v1/applications/9/status"); n != 0 {
			t.Fatalf("%s: status sent %d times", final, n)
		}
		fl := app.flashes(c.Value)
		if len(fl) != 1 || fl[0].Kind != "error" || !strings.Contains(fl[0].Message, "already recorded") {
			t.Fatalf("%s: flashes = %+v", final, fl)
		}
	}
}

func TestApplicantStatusChange(t *testing.T) {
	fake := &fakeAPI{}
	app := newTestApp(t, applicantAPI(fake, domain.Application{ID: 9, Roll: "R-0009", Status: domain.ApplicationApplied}))
	c, csrf := app.signIn("admin", "tok")
	ch := app.hub.Subscribe()
	defer app.hub.Unsubscribe(ch)

	rec := app.post("/admin/applicants/9/status", url.Values{
		"_csrf": {csrf}, "status": {"shortlisted"}, "back": {"/admin/applicants?status=applied"},
	}, c)
	assertRedirect(t, rec, "/admin/applicants?status=applied")

	if fake.called("PUT /api/v1/applications/9/status") != 1 {
		t.Fatalf("calls = %v", fake.calls)
	}
	if body := fake.body[len(fake.body)-1]; !strings.Contains(body, `"shortlisted"`) {
		t.Fatalf("put body = %s", body)
	}
	select {
	case msg := <-ch:
		if !strings.Contains(msg, events.ApplicationStatusChanged) || !strings.Contains(msg, "R-0009") {
			t.Fatalf("event = %s", msg)
		}
	case <-time.After(time.Second):
		t.Fatal("no event published")
	}

	// same status again is a no-op
	rec = app.post("/admin/applicants/9/status", url.Values{"_csrf": {csrf}, "status": {"applied"}}, c)
	assertRedirect(t, rec, "/admin/applicants/9")
	if fake.called("PUT /api/v1/applications/9/status") != 1 {
		t.Fatal("unchanged status was sent")
	}

	rec = app.post("/admin/applicants/9/status", url.Values{"_csrf": {csrf}, "status": {"hired"}}, c)
	assertRedirect(t, rec, "/admin/applicants/9")
	fl := app.flashes(c.Value)
	if len(fl) != 3 || fl[1].Kind != "info" || fl[2].Message != "Choose a valid status." {
		t.Fatalf("flashes = %+v", fl)
	}
}
